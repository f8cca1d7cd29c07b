package preferences

import "github.com/yllada/gterm/events"

// Persistence is key/value string storage for user preferences.
// Missing keys are reported with ok == false, never as an error.
type Persistence interface {
	Get(key string) (value string, ok bool)
	Set(key, value string) error
	Delete(key string) error
}

// SystemSignals exposes operating system appearance and locale settings.
type SystemSignals interface {
	// PrefersDark reports whether the OS color scheme is dark.
	PrefersDark() bool
	// PreferredLocales returns the OS locale tags in preference order.
	PreferredLocales() []string
	// OnColorSchemeChange registers fn for color-scheme changes and
	// returns a function that removes it.
	OnColorSchemeChange(fn func(dark bool)) (cancel func())
}

// LocaleWatcher is implemented by signal sources that can also report
// changes to the locale list.
type LocaleWatcher interface {
	OnLocalesChange(fn func(locales []string)) (cancel func())
}

// Publisher receives the store's outgoing notifications.
type Publisher interface {
	Publish(events.Event)
}
