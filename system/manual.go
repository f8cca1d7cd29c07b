// Package system reads operating system appearance and locale settings
// and reports changes to them.
package system

import "sync"

// Manual is a signal source whose values are set by the caller. It backs
// tests and is the fallback when no desktop settings service is reachable.
type Manual struct {
	mu       sync.RWMutex
	dark     bool
	locales  []string
	nextID   int
	schemes  map[int]func(bool)
	localeFn map[int]func([]string)
}

// NewManual creates a source with the given initial values.
func NewManual(dark bool, locales []string) *Manual {
	return &Manual{
		dark:     dark,
		locales:  append([]string(nil), locales...),
		schemes:  make(map[int]func(bool)),
		localeFn: make(map[int]func([]string)),
	}
}

// PrefersDark reports the current color scheme.
func (m *Manual) PrefersDark() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.dark
}

// PreferredLocales returns a copy of the current locale list.
func (m *Manual) PreferredLocales() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.locales...)
}

// OnColorSchemeChange registers fn for SetDark changes.
func (m *Manual) OnColorSchemeChange(fn func(dark bool)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	id := m.nextID
	m.schemes[id] = fn
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.schemes, id)
	}
}

// OnLocalesChange registers fn for SetLocales changes.
func (m *Manual) OnLocalesChange(fn func(locales []string)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	id := m.nextID
	m.localeFn[id] = fn
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.localeFn, id)
	}
}

// SetDark updates the color scheme and notifies subscribers if it changed.
func (m *Manual) SetDark(dark bool) {
	m.mu.Lock()
	if m.dark == dark {
		m.mu.Unlock()
		return
	}
	m.dark = dark
	fns := make([]func(bool), 0, len(m.schemes))
	for _, fn := range m.schemes {
		fns = append(fns, fn)
	}
	m.mu.Unlock()

	for _, fn := range fns {
		fn(dark)
	}
}

// SetLocales replaces the locale list and notifies subscribers.
func (m *Manual) SetLocales(locales []string) {
	m.mu.Lock()
	m.locales = append([]string(nil), locales...)
	fns := make([]func([]string), 0, len(m.localeFn))
	for _, fn := range m.localeFn {
		fns = append(fns, fn)
	}
	m.mu.Unlock()

	for _, fn := range fns {
		fn(append([]string(nil), locales...))
	}
}

// Subscribers returns the number of registered callbacks.
func (m *Manual) Subscribers() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.schemes) + len(m.localeFn)
}
