package preferences

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/yllada/gterm/common"
	"github.com/yllada/gterm/events"
)

// ThemeMode is the user's theme choice.
type ThemeMode string

const (
	ThemeLight ThemeMode = common.ThemeLight
	ThemeDark  ThemeMode = common.ThemeDark
	ThemeAuto  ThemeMode = common.ThemeAuto
)

// ParseThemeMode parses a persisted or user-supplied theme mode.
func ParseThemeMode(s string) (ThemeMode, bool) {
	switch m := ThemeMode(strings.ToLower(strings.TrimSpace(s))); m {
	case ThemeLight, ThemeDark, ThemeAuto:
		return m, true
	default:
		return "", false
	}
}

// LanguageAuto follows the OS locale list.
const LanguageAuto = common.LanguageAuto

// Options configures a Store.
type Options struct {
	// Persistence is required.
	Persistence Persistence
	// Signals defaults to a source reporting a light scheme and no locales.
	Signals SystemSignals
	// Publisher defaults to discarding notifications.
	Publisher Publisher
	// Languages defaults to DefaultLanguageTable().
	Languages LanguageTable
	Logger    common.Logger
}

// Snapshot is a point-in-time copy of all preference values.
type Snapshot struct {
	ThemeMode        ThemeMode
	IsDark           bool
	Language         string
	ResolvedLanguage string
	SidebarWidth     int
}

// Store owns the persisted user preferences and the values derived from
// them and the OS settings. Construct one per process with New and pass
// it to the consumers that need it.
type Store struct {
	mu        sync.RWMutex
	persist   Persistence
	signals   SystemSignals
	publisher Publisher
	table     LanguageTable
	logger    common.Logger
	cancels   []func()

	themeMode        ThemeMode
	resolvedDark     bool
	language         string
	resolvedLanguage string
	sidebarWidth     int
}

// New loads the persisted preferences, resolves them against the current
// OS settings and subscribes to OS setting changes. Malformed persisted
// values fall back to their defaults.
func New(opts Options) (*Store, error) {
	if opts.Persistence == nil {
		return nil, fmt.Errorf("%w: no persistence configured", common.ErrStorageUnavailable)
	}

	s := &Store{
		persist:   opts.Persistence,
		signals:   opts.Signals,
		publisher: opts.Publisher,
		table:     opts.Languages.withDefaults(),
		logger:    common.LoggerOrDefault(opts.Logger),
	}
	if s.signals == nil {
		s.signals = noSignals{}
	}
	if s.publisher == nil {
		s.publisher = discard{}
	}

	s.load()

	s.cancels = append(s.cancels, s.signals.OnColorSchemeChange(func(bool) {
		s.RefreshThemeFromSystem()
	}))
	if w, ok := s.signals.(LocaleWatcher); ok {
		s.cancels = append(s.cancels, w.OnLocalesChange(func([]string) {
			s.RefreshLanguageFromSystem()
		}))
	}

	return s, nil
}

func (s *Store) load() {
	s.themeMode = ThemeAuto
	if raw, ok := s.persist.Get(common.KeyThemeMode); ok {
		if mode, valid := ParseThemeMode(raw); valid {
			s.themeMode = mode
		} else {
			s.logger.Warn("Ignoring stored theme mode %q, using %s", raw, ThemeAuto)
		}
	}
	s.resolvedDark = resolveDark(s.themeMode, s.signals.PrefersDark())

	s.language = LanguageAuto
	if raw, ok := s.persist.Get(common.KeyLanguage); ok {
		if raw == LanguageAuto || s.table.Supports(raw) {
			s.language = raw
		} else {
			s.logger.Warn("Ignoring stored language %q, using %s", raw, LanguageAuto)
		}
	}
	if s.language == LanguageAuto {
		s.resolvedLanguage = s.table.Resolve(s.signals.PreferredLocales())
	} else {
		s.resolvedLanguage = s.language
	}

	s.sidebarWidth = common.DefaultSidebarWidth
	if raw, ok := s.persist.Get(common.KeySidebarWidth); ok {
		if px, valid := parseWidth(raw); valid {
			s.sidebarWidth = px
		} else {
			s.logger.Warn("Ignoring stored sidebar width %q, using %d", raw, common.DefaultSidebarWidth)
		}
	}

	s.logger.Debug("Preferences loaded: theme=%s dark=%v language=%s (%s) sidebar=%d",
		s.themeMode, s.resolvedDark, s.language, s.resolvedLanguage, s.sidebarWidth)
}

// maxSidebarWidth bounds persisted widths; larger values are corrupt.
const maxSidebarWidth = 100000

// parseWidth accepts finite positive numbers up to maxSidebarWidth,
// rounding fractions.
func parseWidth(raw string) (int, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f > maxSidebarWidth {
		return 0, false
	}
	px := int(math.Round(f))
	if px <= 0 {
		return 0, false
	}
	return px, true
}

func resolveDark(mode ThemeMode, systemDark bool) bool {
	switch mode {
	case ThemeDark:
		return true
	case ThemeLight:
		return false
	default:
		return systemDark
	}
}

// Close detaches the store from OS setting notifications.
func (s *Store) Close() {
	s.mu.Lock()
	cancels := s.cancels
	s.cancels = nil
	s.mu.Unlock()

	for _, cancel := range cancels {
		if cancel != nil {
			cancel()
		}
	}
}

// save must be called with s.mu held. Failures are logged and returned;
// the in-memory value stays applied.
func (s *Store) save(key, value string) error {
	if err := s.persist.Set(key, value); err != nil {
		s.logger.Warn("Could not persist %s=%s: %v", key, value, err)
		return fmt.Errorf("%w: %s: %w", common.ErrPreferenceSave, key, err)
	}
	return nil
}

// UpdateThemeMode sets and persists the theme mode, then recomputes the
// resolved dark flag.
func (s *Store) UpdateThemeMode(mode ThemeMode) error {
	switch mode {
	case ThemeLight, ThemeDark, ThemeAuto:
	default:
		return fmt.Errorf("%w: %q", common.ErrInvalidThemeMode, mode)
	}
	systemDark := s.signals.PrefersDark()

	s.mu.Lock()
	s.themeMode = mode
	err := s.save(common.KeyThemeMode, string(mode))
	changed := s.setDark(resolveDark(mode, systemDark))
	dark := s.resolvedDark
	s.mu.Unlock()

	s.logger.Info("Theme mode set to %s (dark=%v)", mode, dark)
	if changed {
		s.publish(events.TopicThemeChanged, dark)
	}
	return err
}

// RefreshThemeFromSystem recomputes the resolved dark flag from the OS
// color scheme when the theme mode is auto. Redundant calls are harmless.
func (s *Store) RefreshThemeFromSystem() {
	systemDark := s.signals.PrefersDark()

	s.mu.Lock()
	if s.themeMode != ThemeAuto {
		s.mu.Unlock()
		return
	}
	changed := s.setDark(systemDark)
	s.mu.Unlock()

	if changed {
		s.logger.Debug("System color scheme changed (dark=%v)", systemDark)
		s.publish(events.TopicThemeChanged, systemDark)
	}
}

// setDark must be called with s.mu held.
func (s *Store) setDark(dark bool) bool {
	if s.resolvedDark == dark {
		return false
	}
	s.resolvedDark = dark
	return true
}

// UpdateLanguage sets and persists the language. An explicit supported
// code is applied directly; LanguageAuto resolves from the OS locales.
func (s *Store) UpdateLanguage(code string) error {
	if code == LanguageAuto {
		s.mu.Lock()
		s.language = LanguageAuto
		err := s.save(common.KeyLanguage, LanguageAuto)
		s.mu.Unlock()

		s.logger.Info("Language set to follow the system")
		s.RefreshLanguageFromSystem()
		return err
	}

	if !s.table.Supports(code) {
		return fmt.Errorf("%w: %q", common.ErrUnsupportedLanguage, code)
	}

	s.mu.Lock()
	s.language = code
	err := s.save(common.KeyLanguage, code)
	s.resolvedLanguage = code
	s.mu.Unlock()

	s.logger.Info("Language set to %s", code)
	s.publish(events.TopicLanguageChanged, code)
	return err
}

// RefreshLanguageFromSystem resolves the active language from the OS
// locale list when the language is auto, and applies it.
func (s *Store) RefreshLanguageFromSystem() {
	locales := s.signals.PreferredLocales()

	s.mu.Lock()
	if s.language != LanguageAuto {
		s.mu.Unlock()
		return
	}
	resolved := s.table.Resolve(locales)
	s.resolvedLanguage = resolved
	s.mu.Unlock()

	s.logger.Debug("Resolved language %s from system locales %v", resolved, locales)
	s.publish(events.TopicLanguageChanged, resolved)
}

// UpdateSidebarWidth persists the width and broadcasts it.
func (s *Store) UpdateSidebarWidth(px int) error {
	if px <= 0 || px > maxSidebarWidth {
		return fmt.Errorf("%w: %d", common.ErrInvalidSidebarWidth, px)
	}

	s.mu.Lock()
	s.sidebarWidth = px
	err := s.save(common.KeySidebarWidth, strconv.Itoa(px))
	s.mu.Unlock()

	s.publish(events.TopicSidebarWidthChanged, px)
	return err
}

// ResetSidebarWidth clears the persisted override and reapplies the
// default width, which is persisted and broadcast like any update.
func (s *Store) ResetSidebarWidth() error {
	s.mu.Lock()
	delErr := s.persist.Delete(common.KeySidebarWidth)
	s.mu.Unlock()
	if delErr != nil {
		s.logger.Warn("Could not clear stored sidebar width: %v", delErr)
		delErr = fmt.Errorf("%w: %s: %w", common.ErrPreferenceSave, common.KeySidebarWidth, delErr)
	}

	return errors.Join(delErr, s.UpdateSidebarWidth(common.DefaultSidebarWidth))
}

func (s *Store) publish(topic events.Topic, payload interface{}) {
	s.publisher.Publish(events.Event{Topic: topic, Payload: payload})
}

// ThemeMode returns the configured theme mode.
func (s *Store) ThemeMode() ThemeMode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.themeMode
}

// IsDark returns the resolved dark flag.
func (s *Store) IsDark() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.resolvedDark
}

// Language returns the configured language code or LanguageAuto.
func (s *Store) Language() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.language
}

// ResolvedLanguage returns the active language code.
func (s *Store) ResolvedLanguage() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.resolvedLanguage
}

// SidebarWidth returns the sidebar width in pixels.
func (s *Store) SidebarWidth() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sidebarWidth
}

// Languages returns the supported language options.
func (s *Store) Languages() []LanguageOption {
	out := make([]LanguageOption, len(s.table.Options))
	copy(out, s.table.Options)
	return out
}

// Snapshot returns all current values at once.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		ThemeMode:        s.themeMode,
		IsDark:           s.resolvedDark,
		Language:         s.language,
		ResolvedLanguage: s.resolvedLanguage,
		SidebarWidth:     s.sidebarWidth,
	}
}

type noSignals struct{}

func (noSignals) PrefersDark() bool          { return false }
func (noSignals) PreferredLocales() []string { return nil }

func (noSignals) OnColorSchemeChange(func(bool)) func() {
	return func() {}
}

type discard struct{}

func (discard) Publish(events.Event) {}
