// Package common provides shared constants, types, and utilities
// used across gterm.
package common

import "errors"

// Sentinel errors for the state layer.
// These can be checked with errors.Is() for proper error handling.
var (
	// Session registry errors.
	ErrDuplicateID     = errors.New("session id already registered")
	ErrInvalidSession  = errors.New("invalid session data")
	ErrSessionNotFound = errors.New("session not found")

	// Preference errors.
	ErrInvalidThemeMode    = errors.New("invalid theme mode")
	ErrUnsupportedLanguage = errors.New("unsupported language")
	ErrInvalidSidebarWidth = errors.New("invalid sidebar width")
	ErrPreferenceSave      = errors.New("failed to persist preference")

	// Adapter errors.
	ErrStorageUnavailable = errors.New("preference storage unavailable")
	ErrSignalsUnavailable = errors.New("system settings unavailable")
	ErrBackendCall        = errors.New("backend call failed")

	// Configuration errors.
	ErrConfigLoad = errors.New("failed to load configuration")
	ErrConfigSave = errors.New("failed to save configuration")
)

// WrapError wraps an error with additional context.
func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return &wrappedError{
		msg: message,
		err: err,
	}
}

type wrappedError struct {
	msg string
	err error
}

func (e *wrappedError) Error() string {
	return e.msg + ": " + e.err.Error()
}

func (e *wrappedError) Unwrap() error {
	return e.err
}
