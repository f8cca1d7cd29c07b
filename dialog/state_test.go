package dialog

import (
	"sync"
	"testing"
)

func TestNewState_AllClosed(t *testing.T) {
	s := NewState()
	want := Snapshot{}
	got := s.Snapshot()
	if got != want {
		t.Errorf("Snapshot() = %+v, want all closed", got)
	}
	for _, k := range []Kind{About, Preferences, Host, Group} {
		if s.IsVisible(k) {
			t.Errorf("%s dialog open on a new state", k)
		}
	}
}

func TestDialogsAreIndependent(t *testing.T) {
	s := NewState()

	s.OpenAboutDialog()
	s.OpenPreferencesDialog()
	s.OpenGroupDialog(false)

	if !s.IsVisible(About) || !s.IsVisible(Preferences) || !s.IsVisible(Group) {
		t.Fatalf("opening one dialog closed another: %+v", s.Snapshot())
	}

	s.ClosePreferencesDialog()
	if !s.IsVisible(About) || s.IsVisible(Preferences) || !s.IsVisible(Group) {
		t.Errorf("closing preferences affected other dialogs: %+v", s.Snapshot())
	}

	s.CloseAboutDialog()
	s.CloseGroupDialog()
	if s.IsVisible(About) || s.IsVisible(Group) {
		t.Errorf("dialogs still open: %+v", s.Snapshot())
	}
}

func TestHostDialog_EditFlow(t *testing.T) {
	s := NewState()
	target := &EntityRef{Kind: "host", ID: "h-42"}

	s.OpenHostDialog(true, target)
	target.ID = "mutated"

	if !s.IsVisible(Host) || !s.IsEditMode() {
		t.Fatalf("Snapshot() = %+v, want host dialog open in edit mode", s.Snapshot())
	}
	got, ok := s.EditTarget()
	if !ok || got != (EntityRef{Kind: "host", ID: "h-42"}) {
		t.Errorf("EditTarget() = %+v, %v", got, ok)
	}

	s.CloseHostDialog()
	if s.IsVisible(Host) {
		t.Error("host dialog still open")
	}
	if _, ok := s.EditTarget(); ok {
		t.Error("CloseHostDialog() must clear the edit target")
	}
}

func TestHostDialog_AddAfterEditHasNoStaleTarget(t *testing.T) {
	s := NewState()

	s.OpenHostDialog(true, &EntityRef{Kind: "connection", ID: "c-1"})
	s.CloseHostDialog()
	s.OpenHostDialog(false, nil)

	snap := s.Snapshot()
	if snap.EditMode || snap.EditTarget != nil {
		t.Errorf("add flow inherited edit state: %+v", snap)
	}
}

func TestHostDialog_ReopenReplacesTarget(t *testing.T) {
	s := NewState()

	s.OpenHostDialog(true, &EntityRef{Kind: "host", ID: "a"})
	s.OpenHostDialog(false, nil)

	if _, ok := s.EditTarget(); ok {
		t.Error("reopening in add mode must drop the previous target")
	}
}

func TestGroupDialog_SetsEditMode(t *testing.T) {
	s := NewState()

	s.OpenGroupDialog(true)
	if !s.IsEditMode() {
		t.Error("IsEditMode() = false after OpenGroupDialog(true)")
	}
	s.OpenGroupDialog(false)
	if s.IsEditMode() {
		t.Error("IsEditMode() = true after OpenGroupDialog(false)")
	}
}

func TestSnapshot_CopiesTarget(t *testing.T) {
	s := NewState()
	s.OpenHostDialog(true, &EntityRef{Kind: "host", ID: "a"})

	snap := s.Snapshot()
	snap.EditTarget.ID = "b"

	if got, _ := s.EditTarget(); got.ID != "a" {
		t.Errorf("Snapshot() leaked internal state, target is now %q", got.ID)
	}
}

func TestKind_String(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{About, "about"},
		{Preferences, "preferences"},
		{Host, "host"},
		{Group, "group"},
		{Kind(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("Kind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestState_ConcurrentAccess(t *testing.T) {
	s := NewState()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				s.OpenHostDialog(i%2 == 0, &EntityRef{Kind: "host", ID: "x"})
				_ = s.Snapshot()
				s.CloseHostDialog()
			}
		}(i)
	}
	wg.Wait()

	if s.IsVisible(Host) {
		t.Error("host dialog left open")
	}
}
