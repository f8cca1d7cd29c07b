package system

import (
	"os"
	"strings"
)

// EnvLocales returns the user's preferred locales from the environment,
// in the order gettext consults them: LANGUAGE (colon-separated), LC_ALL,
// LC_MESSAGES, LANG. Empty, "C" and "POSIX" entries and duplicates are
// skipped.
func EnvLocales() []string {
	return localesFrom(os.Getenv)
}

func localesFrom(getenv func(string) string) []string {
	var raw []string
	raw = append(raw, strings.Split(getenv("LANGUAGE"), ":")...)
	raw = append(raw, getenv("LC_ALL"), getenv("LC_MESSAGES"), getenv("LANG"))

	seen := make(map[string]bool, len(raw))
	locales := make([]string, 0, len(raw))
	for _, l := range raw {
		l = strings.TrimSpace(l)
		if l == "" || l == "C" || l == "POSIX" || strings.HasPrefix(l, "C.") || seen[l] {
			continue
		}
		seen[l] = true
		locales = append(locales, l)
	}
	return locales
}
