// Package session tracks the connection sessions (tabs) a user has open
// and which one is in the foreground.
package session

import (
	"github.com/google/uuid"
)

// Status represents the current state of a session's connection.
type Status int

const (
	// StatusConnecting indicates the transport is still establishing the connection.
	StatusConnecting Status = iota
	// StatusConnected indicates an established connection.
	StatusConnected
	// StatusError indicates the connection failed.
	StatusError
)

// String returns a human-readable representation of the status.
func (s Status) String() string {
	switch s {
	case StatusConnecting:
		return "Connecting..."
	case StatusConnected:
		return "Connected"
	case StatusError:
		return "Error"
	default:
		return "Unknown"
	}
}

// Session is one tracked connection attempt/tab.
type Session struct {
	// ID is assigned by the caller and unique while the session is registered.
	ID string `json:"id"`
	// Label is the display name, unique among registered sessions.
	Label string `json:"label"`
	// Host and Username identify the connection target.
	Host     string `json:"host"`
	Username string `json:"username"`

	IsConnecting    bool   `json:"isConnecting"`
	ConnectionError bool   `json:"connectionError"`
	ErrorMessage    string `json:"errorMessage,omitempty"`
	ErrorDetails    string `json:"errorDetails,omitempty"`
}

// Status derives the connection status from the session flags.
// A connection error takes precedence over the connecting flag.
func (s Session) Status() Status {
	switch {
	case s.ConnectionError:
		return StatusError
	case s.IsConnecting:
		return StatusConnecting
	default:
		return StatusConnected
	}
}

// NewID returns a fresh session identifier.
func NewID() string {
	return uuid.NewString()
}

// StatusPatch is a partial update of the status-related fields of a
// session. Nil fields are left untouched.
type StatusPatch struct {
	IsConnecting    *bool
	ConnectionError *bool
	ErrorMessage    *string
	ErrorDetails    *string
}

func boolPtr(b bool) *bool       { return &b }
func stringPtr(s string) *string { return &s }

// Connecting returns a patch that marks a session as connecting again.
func Connecting() StatusPatch {
	return StatusPatch{IsConnecting: boolPtr(true), ConnectionError: boolPtr(false)}
}

// Connected returns a patch that marks a session as established.
func Connected() StatusPatch {
	return StatusPatch{IsConnecting: boolPtr(false), ConnectionError: boolPtr(false)}
}

// Failed returns a patch that marks a session as failed with the given
// message and details.
func Failed(message, details string) StatusPatch {
	return StatusPatch{
		IsConnecting:    boolPtr(false),
		ConnectionError: boolPtr(true),
		ErrorMessage:    stringPtr(message),
		ErrorDetails:    stringPtr(details),
	}
}

// IsZero reports whether the patch changes nothing.
func (p StatusPatch) IsZero() bool {
	return p.IsConnecting == nil && p.ConnectionError == nil &&
		p.ErrorMessage == nil && p.ErrorDetails == nil
}

// apply merges p into s. Error text only survives while s is in StatusError.
func (p StatusPatch) apply(s *Session) {
	if p.IsConnecting != nil {
		s.IsConnecting = *p.IsConnecting
	}
	if p.ConnectionError != nil {
		s.ConnectionError = *p.ConnectionError
	}
	if p.ErrorMessage != nil {
		s.ErrorMessage = *p.ErrorMessage
	}
	if p.ErrorDetails != nil {
		s.ErrorDetails = *p.ErrorDetails
	}
	if s.Status() != StatusError {
		s.ErrorMessage = ""
		s.ErrorDetails = ""
	}
}
