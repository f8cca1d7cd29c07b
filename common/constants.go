// Package common provides shared constants, types, and utilities
// used across gterm.
package common

// Application metadata.
const (
	// AppName is the display name of the application.
	AppName = "GTerm"
	// ConfigDirName is the name of the configuration directory.
	ConfigDirName = "gterm"
)

// File names used by the application.
const (
	ConfigFileName      = "config.yaml"
	PreferencesFileName = "preferences.yaml"
	DatabaseFileName    = "gterm.db"
	LogFileName         = "gterm.log"
)

// Persistence keys for user preferences.
const (
	KeyThemeMode    = "themeMode"
	KeyLanguage     = "language"
	KeySidebarWidth = "sidebarWidth"
)

// Layout defaults.
const (
	// DefaultSidebarWidth is the sidebar width in pixels used when no
	// valid override is persisted.
	DefaultSidebarWidth = 250
)

// Theme values.
const (
	ThemeAuto  = "auto"
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// Language values.
const (
	// LanguageAuto follows the operating system locale list.
	LanguageAuto = "auto"
	// DefaultLanguage is used when no system locale is supported.
	DefaultLanguage = "en"
)

// Storage backends for persisted preferences.
const (
	StorageYAML   = "yaml"
	StorageSQLite = "sqlite"
	StorageMemory = "memory"
)
