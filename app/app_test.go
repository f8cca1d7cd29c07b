package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/yllada/gterm/backend"
	"github.com/yllada/gterm/common"
	"github.com/yllada/gterm/config"
	"github.com/yllada/gterm/events"
	"github.com/yllada/gterm/preferences"
	"github.com/yllada/gterm/session"
	"github.com/yllada/gterm/system"
)

func memoryConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Storage = common.StorageMemory
	cfg.FollowSystem = false
	return cfg
}

func newTestApp(t *testing.T, opts Options) *App {
	t.Helper()
	if opts.Config == nil {
		opts.Config = memoryConfig()
	}
	if opts.Logger == nil {
		opts.Logger = common.NopLogger{}
	}
	a, err := New(opts)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { a.Close() })
	return a
}

func TestNew_WiresStores(t *testing.T) {
	a := newTestApp(t, Options{Signals: system.NewManual(true, []string{"zh-CN"})})

	if a.Bus == nil || a.Sessions == nil || a.Preferences == nil || a.Dialogs == nil || a.Messages == nil {
		t.Fatalf("App has unset components: %+v", a)
	}
	if a.Watchdog == nil {
		t.Error("Watchdog should be built with the default connect timeout")
	}

	snap := a.Preferences.Snapshot()
	if !snap.IsDark || snap.ResolvedLanguage != "zh" {
		t.Errorf("Snapshot() = %+v, want dark zh from the system", snap)
	}
}

func TestNew_PreferencesPublishOnBus(t *testing.T) {
	a := newTestApp(t, Options{})

	var widths []int
	a.Bus.Subscribe(events.TopicSidebarWidthChanged, func(e events.Event) {
		widths = append(widths, e.Payload.(int))
	})

	if err := a.Preferences.UpdateSidebarWidth(320); err != nil {
		t.Fatal(err)
	}
	if len(widths) != 1 || widths[0] != 320 {
		t.Errorf("widths = %v, want [320]", widths)
	}
}

func TestNew_SessionChangesPublishOnBus(t *testing.T) {
	a := newTestApp(t, Options{})

	var changes []session.Change
	a.Bus.Subscribe(events.TopicSessionChanged, func(e events.Event) {
		changes = append(changes, e.Payload.(session.Change))
	})

	s, err := a.Sessions.Add(session.Session{ID: "s1", Label: "db", Host: "db.internal", Username: "ops"})
	if err != nil {
		t.Fatal(err)
	}
	a.Sessions.Remove(s.ID)

	if len(changes) != 2 || changes[0].Kind != session.ChangeAdded || changes[1].Kind != session.ChangeRemoved {
		t.Errorf("changes = %+v", changes)
	}
}

func TestNew_LanguageTableFromConfig(t *testing.T) {
	cfg := memoryConfig()
	cfg.Languages = preferences.LanguageTable{
		Default: "de",
		Options: []preferences.LanguageOption{{Code: "de", Label: "Deutsch"}},
	}

	a := newTestApp(t, Options{Config: cfg, Signals: system.NewManual(false, []string{"en-US"})})

	if got := a.Preferences.ResolvedLanguage(); got != "de" {
		t.Errorf("ResolvedLanguage() = %q, want de", got)
	}
}

func TestNew_ConnectTimeoutDisabled(t *testing.T) {
	cfg := memoryConfig()
	cfg.ConnectTimeout = 0

	a := newTestApp(t, Options{Config: cfg})
	a.Start()

	if a.Watchdog != nil {
		t.Error("Watchdog should be nil when the timeout is disabled")
	}
}

func TestConnect(t *testing.T) {
	a := newTestApp(t, Options{Signals: system.NewManual(false, []string{"en-US"})})

	s, res, err := a.Connect(context.Background(), "prod", "10.0.0.5", "root", func(context.Context) (*backend.Response, error) {
		return backend.Fail(backend.CodeAuthFailed, "ssh: unable to authenticate"), nil
	})
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	if res.OK || res.Msg != "Authentication failed" {
		t.Errorf("result = %+v", res)
	}
	if s.Status() != session.StatusError || s.ErrorMessage != "Authentication failed" {
		t.Errorf("session = %+v", s)
	}
	if id, _ := a.Sessions.ActiveID(); id != s.ID {
		t.Errorf("ActiveID() = %q, want %q", id, s.ID)
	}
}

func TestConnect_InvalidSession(t *testing.T) {
	a := newTestApp(t, Options{})

	_, _, err := a.Connect(context.Background(), "", "host", "root", nil)
	if !errors.Is(err, common.ErrInvalidSession) {
		t.Errorf("Connect() error = %v, want ErrInvalidSession", err)
	}
}

func TestWatchdog_UsesTranslatedMessage(t *testing.T) {
	clock := clockwork.NewFakeClock()
	cfg := memoryConfig()
	cfg.ConnectTimeout = 5 * time.Second

	a := newTestApp(t, Options{Config: cfg, Clock: clock, Signals: system.NewManual(false, []string{"en-US"})})

	if err := a.Preferences.UpdateLanguage("zh"); err != nil {
		t.Fatal(err)
	}
	s, err := a.Sessions.Add(session.Session{ID: "s1", Label: "slow", Host: "slow.example", Username: "root"})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := a.Watchdog.Tracking(s.ID); !ok {
		t.Fatal("added session is not tracked by the watchdog")
	}

	clock.Advance(6 * time.Second)
	a.Watchdog.Check()

	got, _ := a.Sessions.Get(s.ID)
	if got.Status() != session.StatusError || got.ErrorMessage != "连接超时" {
		t.Errorf("session = %+v", got)
	}
}

func TestOpenStorage(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		storage string
		path    string
	}{
		{"memory", common.StorageMemory, ""},
		{"yaml", common.StorageYAML, filepath.Join(dir, "prefs.yaml")},
		{"sqlite", common.StorageSQLite, filepath.Join(dir, "prefs.db")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := memoryConfig()
			cfg.Storage = tt.storage
			cfg.StoragePath = tt.path

			b, err := OpenStorage(cfg, common.NopLogger{})
			if err != nil {
				t.Fatalf("OpenStorage() error = %v", err)
			}
			defer b.Close()

			if err := b.Set(common.KeyLanguage, "zh"); err != nil {
				t.Fatalf("Set() error = %v", err)
			}
			if v, ok := b.Get(common.KeyLanguage); !ok || v != "zh" {
				t.Errorf("Get() = %q, %v", v, ok)
			}
		})
	}
}

func TestNew_MalformedPreferencesFallBackToDefaults(t *testing.T) {
	tests := []struct {
		name      string
		data      string
		wantTheme preferences.ThemeMode
		moved     bool
	}{
		{"non-scalar value", "themeMode: dark\nsidebarWidth: [1, 2]\n", preferences.ThemeDark, false},
		{"not a mapping", "- not\n- a mapping\n", preferences.ThemeAuto, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "prefs.yaml")
			if err := os.WriteFile(path, []byte(tt.data), 0600); err != nil {
				t.Fatal(err)
			}

			cfg := memoryConfig()
			cfg.Storage = common.StorageYAML
			cfg.StoragePath = path

			a := newTestApp(t, Options{Config: cfg, Signals: system.NewManual(false, []string{"en-US"})})

			snap := a.Preferences.Snapshot()
			if snap.ThemeMode != tt.wantTheme {
				t.Errorf("ThemeMode = %v, want %v", snap.ThemeMode, tt.wantTheme)
			}
			if snap.SidebarWidth != common.DefaultSidebarWidth {
				t.Errorf("SidebarWidth = %d, want default", snap.SidebarWidth)
			}
			if _, err := os.Stat(path + ".bak"); (err == nil) != tt.moved {
				t.Errorf("backup present = %v, want %v", err == nil, tt.moved)
			}
		})
	}
}

func TestOpenStorage_UnreadableYAML(t *testing.T) {
	cfg := memoryConfig()
	cfg.Storage = common.StorageYAML
	cfg.StoragePath = t.TempDir()

	if _, err := OpenStorage(cfg, common.NopLogger{}); !errors.Is(err, common.ErrStorageUnavailable) {
		t.Errorf("OpenStorage() error = %v, want ErrStorageUnavailable", err)
	}
}

func TestClose_Idempotent(t *testing.T) {
	a, err := New(Options{Config: memoryConfig(), Logger: common.NopLogger{}})
	if err != nil {
		t.Fatal(err)
	}
	a.Start()

	if err := a.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if err := a.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}
