package session

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/yllada/gterm/common"
)

func newWatchdogFixture(t *testing.T) (*Registry, *Watchdog, *clockwork.FakeClock) {
	t.Helper()
	reg := NewRegistry(common.NopLogger{})
	clock := clockwork.NewFakeClock()
	w := NewWatchdog(reg, WatchdogConfig{ConnectTimeout: 10 * time.Second, TimeoutMessage: "timed out"}, clock, common.NopLogger{})
	return reg, w, clock
}

func addSession(t *testing.T, reg *Registry, id string) {
	t.Helper()
	if _, err := reg.Add(Session{ID: id, Label: id, Host: "example.com", Username: "root"}); err != nil {
		t.Fatalf("Add(%s) error = %v", id, err)
	}
}

func TestDefaultWatchdogConfig(t *testing.T) {
	config := DefaultWatchdogConfig()

	if config.CheckInterval != time.Second {
		t.Errorf("CheckInterval = %v, want 1s", config.CheckInterval)
	}
	if config.ConnectTimeout != 30*time.Second {
		t.Errorf("ConnectTimeout = %v, want 30s", config.ConnectTimeout)
	}
	if config.TimeoutMessage == "" {
		t.Error("TimeoutMessage should not be empty")
	}
}

func TestNewWatchdog_FillsDefaults(t *testing.T) {
	w := NewWatchdog(NewRegistry(nil), WatchdogConfig{}, nil, nil)

	if w.config != DefaultWatchdogConfig() {
		t.Errorf("config = %+v, want defaults", w.config)
	}
	if w.clock == nil {
		t.Error("clock should default to the real clock")
	}
}

func TestWatchdog_TimesOutStuckSession(t *testing.T) {
	reg, w, clock := newWatchdogFixture(t)
	addSession(t, reg, "a")

	var timedOut []string
	w.SetOnTimeout(func(id string, waited time.Duration) {
		timedOut = append(timedOut, id)
		if waited < 10*time.Second {
			t.Errorf("waited = %v, want >= 10s", waited)
		}
	})

	w.Check()
	clock.Advance(5 * time.Second)
	w.Check()
	if s, _ := reg.Get("a"); s.Status() != StatusConnecting {
		t.Fatalf("status = %v before the timeout", s.Status())
	}

	clock.Advance(5 * time.Second)
	w.Check()

	s, _ := reg.Get("a")
	if s.Status() != StatusError || s.ErrorMessage != "timed out" || s.ErrorDetails == "" {
		t.Errorf("session = %+v, want failed with timeout message", s)
	}
	if len(timedOut) != 1 || timedOut[0] != "a" {
		t.Errorf("timed out = %v, want [a]", timedOut)
	}
	if _, ok := w.Tracking("a"); ok {
		t.Error("timed-out session still tracked")
	}
}

func TestWatchdog_ConnectedSessionIsForgotten(t *testing.T) {
	reg, w, clock := newWatchdogFixture(t)
	addSession(t, reg, "a")

	w.Track("a")
	clock.Advance(5 * time.Second)
	reg.UpdateStatus("a", Connected())
	w.Check()

	if _, ok := w.Tracking("a"); ok {
		t.Error("connected session still tracked")
	}

	clock.Advance(time.Minute)
	w.Check()
	if s, _ := reg.Get("a"); s.Status() != StatusConnected {
		t.Errorf("status = %v, want Connected", s.Status())
	}
}

func TestWatchdog_RetryRestartsClock(t *testing.T) {
	reg, w, clock := newWatchdogFixture(t)
	addSession(t, reg, "a")

	w.Track("a")
	clock.Advance(8 * time.Second)
	reg.UpdateStatus("a", Failed("refused", ""))
	w.Check()

	reg.UpdateStatus("a", Connecting())
	w.Track("a")
	clock.Advance(8 * time.Second)
	w.Check()

	if s, _ := reg.Get("a"); s.Status() != StatusConnecting {
		t.Errorf("status = %v, retry should get a fresh timeout", s.Status())
	}
}

func TestWatchdog_TrackDoesNotReset(t *testing.T) {
	reg, w, clock := newWatchdogFixture(t)
	addSession(t, reg, "a")

	w.Track("a")
	first, _ := w.Tracking("a")
	clock.Advance(3 * time.Second)
	w.Track("a")

	if got, _ := w.Tracking("a"); !got.Equal(first) {
		t.Errorf("Tracking() = %v, want %v", got, first)
	}
}

func TestWatchdog_RemovedSessionIsForgotten(t *testing.T) {
	reg, w, _ := newWatchdogFixture(t)
	addSession(t, reg, "a")

	w.Track("a")
	reg.Remove("a")
	w.Check()

	if _, ok := w.Tracking("a"); ok {
		t.Error("removed session still tracked")
	}
}

func TestWatchdog_StartStop(t *testing.T) {
	_, w, _ := newWatchdogFixture(t)

	if w.IsRunning() {
		t.Error("watchdog should not be running initially")
	}

	w.Start()
	w.Start()
	if !w.IsRunning() {
		t.Error("watchdog should be running after Start()")
	}

	w.Stop()
	w.Stop()
	if w.IsRunning() {
		t.Error("watchdog should not be running after Stop()")
	}
}

// connectOnWarn reports the session connected the moment the watchdog
// logs its timeout warning, between the scan and the status patch.
type connectOnWarn struct {
	common.NopLogger
	registry *Registry
	id       string
}

func (l connectOnWarn) Warn(string, ...interface{}) {
	l.registry.UpdateStatus(l.id, Connected())
}

func TestWatchdog_DoesNotFailSessionThatConnectsDuringCheck(t *testing.T) {
	reg := NewRegistry(common.NopLogger{})
	clock := clockwork.NewFakeClock()
	w := NewWatchdog(reg, WatchdogConfig{ConnectTimeout: 10 * time.Second}, clock,
		connectOnWarn{registry: reg, id: "a"})
	addSession(t, reg, "a")
	w.Track("a")

	fired := false
	w.SetOnTimeout(func(string, time.Duration) { fired = true })

	clock.Advance(11 * time.Second)
	w.Check()

	s, _ := reg.Get("a")
	if s.Status() != StatusConnected || s.ErrorMessage != "" {
		t.Errorf("session = %+v, want connected", s)
	}
	if fired {
		t.Error("timeout callback fired for a session that connected")
	}
	if _, ok := w.Tracking("a"); ok {
		t.Error("session should no longer be tracked")
	}
}
