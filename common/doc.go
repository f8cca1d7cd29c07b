// Package common provides shared constants, types, utilities, and interfaces
// used throughout gterm.
//
//   - Constants: application name, file names, persistence keys, defaults
//   - Errors: sentinel errors checked with errors.Is
//   - Interfaces: the Logger abstraction accepted by the stores
//   - Logger: levelled logging to stdout and a rotated log file
//   - Utils: configuration and data directory helpers
//
// # Usage
//
//	common.LogInfo("Restored %d preferences", n)
//
//	if errors.Is(err, common.ErrDuplicateID) {
//	    // upstream id generator handed out the same id twice
//	}
package common
