// Package preferences implements the persisted user settings of gterm:
// theme mode, UI language and sidebar width.
//
// # Resolution
//
// Theme mode and language may be set to "auto". The Store then derives
// the effective values (dark or light, a concrete language code) from the
// operating system through the SystemSignals port and keeps them current
// as the OS reports changes. Derived values are never persisted.
//
// # Ports
//
// The Store talks to the outside world only through three interfaces:
//
//   - Persistence: key/value strings (see package storage)
//   - SystemSignals: OS color scheme and locale list (see package system)
//   - Publisher: outgoing notifications (see package events)
//
// # Fallbacks
//
// Persisted values come from outside the process. Anything unparseable or
// unsupported is logged and replaced by its default; it never fails New.
package preferences
