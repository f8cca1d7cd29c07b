// Package dialog tracks which modal dialogs are open and what, if anything,
// is being edited. The state is transient and never persisted.
//
// Each dialog's visibility flag is independent: opening one dialog does
// not close another. Callers that want mutual exclusion enforce it
// themselves.
package dialog

import "sync"

// Kind identifies a dialog.
type Kind int

const (
	// About shows application information.
	About Kind = iota
	// Preferences edits the user preferences.
	Preferences
	// Host adds or edits a host or connection.
	Host
	// Group adds or edits a host group.
	Group
)

// String returns a human-readable name for the dialog.
func (k Kind) String() string {
	switch k {
	case About:
		return "about"
	case Preferences:
		return "preferences"
	case Host:
		return "host"
	case Group:
		return "group"
	default:
		return "unknown"
	}
}

// EntityRef identifies the entity a dialog is editing by value. Holding
// one does not keep the entity alive; it may have been removed since.
type EntityRef struct {
	Kind string
	ID   string
}

// Snapshot is a point-in-time copy of the dialog state.
type Snapshot struct {
	AboutVisible       bool
	PreferencesVisible bool
	HostVisible        bool
	GroupVisible       bool
	EditMode           bool
	EditTarget         *EntityRef
}

// State holds the dialog visibility flags, the shared edit-mode flag and
// the edit target slot.
type State struct {
	mu       sync.RWMutex
	visible  map[Kind]bool
	editMode bool
	target   *EntityRef
}

// NewState returns a state with every dialog closed.
func NewState() *State {
	return &State{visible: make(map[Kind]bool)}
}

// OpenAboutDialog shows the about dialog.
func (s *State) OpenAboutDialog() { s.setVisible(About, true) }

// CloseAboutDialog hides the about dialog.
func (s *State) CloseAboutDialog() { s.setVisible(About, false) }

// OpenPreferencesDialog shows the preferences dialog.
func (s *State) OpenPreferencesDialog() { s.setVisible(Preferences, true) }

// ClosePreferencesDialog hides the preferences dialog.
func (s *State) ClosePreferencesDialog() { s.setVisible(Preferences, false) }

// OpenHostDialog shows the host dialog. With edit set, target names the
// host or connection being edited; a nil target opens it in add mode.
func (s *State) OpenHostDialog(edit bool, target *EntityRef) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.editMode = edit
	if target != nil {
		ref := *target
		s.target = &ref
	} else {
		s.target = nil
	}
	s.visible[Host] = true
}

// CloseHostDialog hides the host dialog and clears the edit target so it
// cannot leak into the next add flow.
func (s *State) CloseHostDialog() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.visible[Host] = false
	s.target = nil
}

// OpenGroupDialog shows the group dialog in add or edit mode.
func (s *State) OpenGroupDialog(edit bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.editMode = edit
	s.visible[Group] = true
}

// CloseGroupDialog hides the group dialog.
func (s *State) CloseGroupDialog() { s.setVisible(Group, false) }

func (s *State) setVisible(k Kind, v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.visible[k] = v
}

// IsVisible reports whether dialog k is open.
func (s *State) IsVisible(k Kind) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.visible[k]
}

// IsEditMode reports the shared edit-mode flag.
func (s *State) IsEditMode() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.editMode
}

// EditTarget returns a copy of the entity under edit, if any.
func (s *State) EditTarget() (EntityRef, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.target == nil {
		return EntityRef{}, false
	}
	return *s.target, true
}

// Snapshot returns all flags at once.
func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := Snapshot{
		AboutVisible:       s.visible[About],
		PreferencesVisible: s.visible[Preferences],
		HostVisible:        s.visible[Host],
		GroupVisible:       s.visible[Group],
		EditMode:           s.editMode,
	}
	if s.target != nil {
		ref := *s.target
		snap.EditTarget = &ref
	}
	return snap
}
