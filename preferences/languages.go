package preferences

import (
	"strings"

	"golang.org/x/text/language"

	"github.com/yllada/gterm/common"
)

// LanguageOption is a selectable UI language.
type LanguageOption struct {
	Code  string `yaml:"code"`
	Label string `yaml:"label"`
}

// LanguageTable describes the supported languages and how OS locale tags
// map onto them. It is configuration, not code: see config.Config.
type LanguageTable struct {
	// Default is used when no preferred OS locale is supported.
	Default string `yaml:"default"`
	// Options lists the supported languages in display order.
	Options []LanguageOption `yaml:"options"`
	// Aliases maps normalized locale tags (e.g. "zh-hk") to a supported
	// code. Consulted before the base-language match.
	Aliases map[string]string `yaml:"aliases,omitempty"`
}

// DefaultLanguageTable returns the built-in table: English and Simplified
// Chinese, defaulting to English.
func DefaultLanguageTable() LanguageTable {
	return LanguageTable{
		Default: common.DefaultLanguage,
		Options: []LanguageOption{
			{Code: "en", Label: "English"},
			{Code: "zh", Label: "简体中文"},
		},
	}
}

// Supports reports whether code is an explicit supported language.
func (t LanguageTable) Supports(code string) bool {
	for _, o := range t.Options {
		if o.Code == code {
			return true
		}
	}
	return false
}

// Codes returns the supported codes in display order.
func (t LanguageTable) Codes() []string {
	codes := make([]string, 0, len(t.Options))
	for _, o := range t.Options {
		codes = append(codes, o.Code)
	}
	return codes
}

// Match maps a single OS locale tag onto a supported code.
func (t LanguageTable) Match(tag string) (string, bool) {
	norm := NormalizeTag(tag)
	if norm == "" {
		return "", false
	}
	if code, ok := t.Aliases[norm]; ok && t.Supports(code) {
		return code, true
	}
	if t.Supports(norm) {
		return norm, true
	}

	if parsed, err := language.Parse(norm); err == nil {
		if base, conf := parsed.Base(); conf != language.No {
			b := base.String()
			if code, ok := t.Aliases[b]; ok && t.Supports(code) {
				return code, true
			}
			if t.Supports(b) {
				return b, true
			}
		}
	}

	primary, _, _ := strings.Cut(norm, "-")
	if t.Supports(primary) {
		return primary, true
	}
	return "", false
}

// Resolve picks the first locale in preference order that maps onto a
// supported code, falling back to the table default.
func (t LanguageTable) Resolve(locales []string) string {
	for _, tag := range locales {
		if code, ok := t.Match(tag); ok {
			return code
		}
	}
	return t.Default
}

// NormalizeTag lowercases a locale tag, strips POSIX encoding and
// modifier suffixes, and uses '-' as the separator:
// "zh_CN.UTF-8@pinyin" becomes "zh-cn". "C" and "POSIX" normalize to "".
func NormalizeTag(tag string) string {
	tag = strings.TrimSpace(tag)
	if i := strings.IndexAny(tag, ".@"); i >= 0 {
		tag = tag[:i]
	}
	tag = strings.ToLower(strings.ReplaceAll(tag, "_", "-"))
	if tag == "c" || tag == "posix" {
		return ""
	}
	return tag
}

// withDefaults fills a zero table with the built-in one and makes sure
// Default is itself supported.
func (t LanguageTable) withDefaults() LanguageTable {
	if len(t.Options) == 0 {
		return DefaultLanguageTable()
	}
	if !t.Supports(t.Default) {
		t.Default = t.Options[0].Code
	}
	return t
}
