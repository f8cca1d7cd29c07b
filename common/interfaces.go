// Package common provides shared constants, types, and utilities
// used across gterm.
package common

// Logger defines the interface for levelled, printf-style logging.
// Stores accept a Logger so callers can route or silence their output.
type Logger interface {
	// Debug logs a debug message.
	Debug(msg string, args ...interface{})
	// Info logs an informational message.
	Info(msg string, args ...interface{})
	// Warn logs a warning message.
	Warn(msg string, args ...interface{})
	// Error logs an error message.
	Error(msg string, args ...interface{})
}

// NopLogger discards everything. Useful in tests.
type NopLogger struct{}

func (NopLogger) Debug(string, ...interface{}) {}
func (NopLogger) Info(string, ...interface{})  {}
func (NopLogger) Warn(string, ...interface{})  {}
func (NopLogger) Error(string, ...interface{}) {}

// LoggerOrDefault returns l, or the process logger when l is nil.
func LoggerOrDefault(l Logger) Logger {
	if l == nil {
		return GetLogger()
	}
	return l
}
