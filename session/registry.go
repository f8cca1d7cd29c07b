// Package session tracks the connection sessions (tabs) a user has open
// and which one is in the foreground.
package session

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/yllada/gterm/common"
)

// ChangeKind identifies what a registry mutation did.
type ChangeKind int

const (
	ChangeAdded ChangeKind = iota
	ChangeUpdated
	ChangeRemoved
	ChangeActivated
)

// String returns the name of the change kind.
func (k ChangeKind) String() string {
	switch k {
	case ChangeAdded:
		return "added"
	case ChangeUpdated:
		return "updated"
	case ChangeRemoved:
		return "removed"
	case ChangeActivated:
		return "activated"
	default:
		return "unknown"
	}
}

// Change describes an effective registry mutation.
type Change struct {
	Kind ChangeKind
	// ID is the session the change applies to.
	ID string
	// ActiveID is the active pointer after the change ("" when cleared).
	ActiveID string
}

// Registry owns the ordered list of sessions and the active pointer.
// It is safe for concurrent use; backend status callbacks may arrive on
// any goroutine.
type Registry struct {
	mu       sync.RWMutex
	sessions []*Session
	activeID string
	// suffixes records the highest "(n)" suffix handed out per base
	// label so numbers freed by Remove are never reused.
	suffixes map[string]int
	onChange func(Change)
	logger   common.Logger
}

// NewRegistry creates an empty registry. A nil logger uses the process logger.
func NewRegistry(logger common.Logger) *Registry {
	return &Registry{
		sessions: make([]*Session, 0),
		suffixes: make(map[string]int),
		logger:   common.LoggerOrDefault(logger),
	}
}

// SetOnChange sets a callback invoked after every effective mutation.
// No-op operations do not trigger it.
func (r *Registry) SetOnChange(callback func(Change)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onChange = callback
}

func (r *Registry) notify(c Change, callback func(Change)) {
	if callback != nil {
		callback(c)
	}
}

// Add registers a new session and makes it the active one.
// If another session already uses the exact label, the label is rewritten
// to "<label> (<n>)" with n one above any suffix in use or previously
// issued for that label. The session always starts in StatusConnecting.
// The stored copy is returned.
func (r *Registry) Add(s Session) (Session, error) {
	if s.Label == "" || s.Host == "" || s.Username == "" {
		return Session{}, fmt.Errorf("%w: label, host and username are required", common.ErrInvalidSession)
	}
	if s.ID == "" {
		return Session{}, fmt.Errorf("%w: id is required", common.ErrInvalidSession)
	}

	r.mu.Lock()
	if r.indexOf(s.ID) >= 0 {
		r.mu.Unlock()
		return Session{}, fmt.Errorf("%w: %s", common.ErrDuplicateID, s.ID)
	}

	base := s.Label
	if r.labelInUse(base) {
		n := r.nextSuffix(base)
		r.suffixes[base] = n
		s.Label = fmt.Sprintf("%s (%d)", base, n)
	}

	s.IsConnecting = true
	s.ConnectionError = false
	s.ErrorMessage = ""
	s.ErrorDetails = ""

	stored := s
	r.sessions = append(r.sessions, &stored)
	r.activeID = s.ID
	callback := r.onChange
	r.mu.Unlock()

	r.logger.Debug("Session %s added as %q (%s@%s)", s.ID, s.Label, s.Username, s.Host)
	r.notify(Change{Kind: ChangeAdded, ID: s.ID, ActiveID: s.ID}, callback)
	return s, nil
}

func (r *Registry) labelInUse(label string) bool {
	for _, s := range r.sessions {
		if s.Label == label {
			return true
		}
	}
	return false
}

// nextSuffix returns one above the largest suffix currently used by a
// label of the form "<base> (<k>)" or previously issued for base.
func (r *Registry) nextSuffix(base string) int {
	highest := r.suffixes[base]
	for _, s := range r.sessions {
		if k, ok := parseSuffix(base, s.Label); ok && k > highest && k < maxSuffix {
			highest = k
		}
	}
	return highest + 1
}

// maxSuffix bounds the user-written suffixes nextSuffix counts, so the
// next number cannot overflow.
const maxSuffix = math.MaxInt32

// parseSuffix extracts k from "<base> (<k>)". Whitespace between the base
// and the parenthesis is optional.
func parseSuffix(base, label string) (int, bool) {
	rest, ok := strings.CutPrefix(label, base)
	if !ok {
		return 0, false
	}
	rest = strings.TrimLeft(rest, " \t")
	if !strings.HasPrefix(rest, "(") || !strings.HasSuffix(rest, ")") || len(rest) < 3 {
		return 0, false
	}
	digits := rest[1 : len(rest)-1]
	for _, c := range digits {
		if c < '0' || c > '9' {
			return 0, false
		}
	}
	k, err := strconv.Atoi(digits)
	if err != nil {
		return 0, false
	}
	return k, true
}

// UpdateStatus merges patch into the session with the given id.
// Unknown ids are ignored: a backend callback may race with the user
// closing the session. An empty patch changes nothing and is not
// reported to the change callback.
func (r *Registry) UpdateStatus(id string, patch StatusPatch) {
	r.UpdateStatusIf(id, nil, patch)
}

// UpdateStatusIf merges patch only if cond, evaluated under the registry
// lock against the current session, returns true. A nil cond always
// applies. It reports whether the patch was applied.
func (r *Registry) UpdateStatusIf(id string, cond func(Session) bool, patch StatusPatch) bool {
	if patch.IsZero() {
		return false
	}

	r.mu.Lock()
	i := r.indexOf(id)
	if i < 0 {
		r.mu.Unlock()
		r.logger.Debug("Dropping status update for unknown session %s", id)
		return false
	}
	if cond != nil && !cond(*r.sessions[i]) {
		r.mu.Unlock()
		return false
	}
	patch.apply(r.sessions[i])
	active := r.activeID
	callback := r.onChange
	r.mu.Unlock()

	r.notify(Change{Kind: ChangeUpdated, ID: id, ActiveID: active}, callback)
	return true
}

// Remove deletes the session with the given id, if present. When the
// active session is removed, the first remaining session becomes active,
// or the pointer is cleared if none remain.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	i := r.indexOf(id)
	if i < 0 {
		r.mu.Unlock()
		return
	}
	copy(r.sessions[i:], r.sessions[i+1:])
	r.sessions[len(r.sessions)-1] = nil
	r.sessions = r.sessions[:len(r.sessions)-1]
	if r.activeID == id {
		r.activeID = ""
		if len(r.sessions) > 0 {
			r.activeID = r.sessions[0].ID
		}
	}
	active := r.activeID
	callback := r.onChange
	r.mu.Unlock()

	r.logger.Debug("Session %s removed, active is now %q", id, active)
	r.notify(Change{Kind: ChangeRemoved, ID: id, ActiveID: active}, callback)
}

// SetActive points the active pointer at id. The id is not validated;
// passing an unknown id is a caller bug and makes ActiveSession report
// no session.
func (r *Registry) SetActive(id string) {
	r.mu.Lock()
	r.activeID = id
	callback := r.onChange
	r.mu.Unlock()

	r.notify(Change{Kind: ChangeActivated, ID: id, ActiveID: id}, callback)
}

// ActiveID returns the active pointer and whether it is set.
func (r *Registry) ActiveID() (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.activeID, r.activeID != ""
}

// ActiveSession returns a copy of the session the active pointer names.
func (r *Registry) ActiveSession() (Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.activeID == "" {
		return Session{}, false
	}
	i := r.indexOf(r.activeID)
	if i < 0 {
		return Session{}, false
	}
	return *r.sessions[i], true
}

// HasSessions reports whether any session is registered.
func (r *Registry) HasSessions() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions) > 0
}

// Len returns the number of registered sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Get returns a copy of the session with the given id.
func (r *Registry) Get(id string) (Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i := r.indexOf(id)
	if i < 0 {
		return Session{}, fmt.Errorf("%w: %s", common.ErrSessionNotFound, id)
	}
	return *r.sessions[i], nil
}

// List returns copies of all sessions in registry order.
func (r *Registry) List() []Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sessions := make([]Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		sessions = append(sessions, *s)
	}
	return sessions
}

// indexOf must be called with r.mu held.
func (r *Registry) indexOf(id string) int {
	for i, s := range r.sessions {
		if s.ID == id {
			return i
		}
	}
	return -1
}
