// Package app assembles the gterm state layer: it loads the configuration,
// opens the preference storage and the system settings source, and
// constructs every store exactly once.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/jonboulle/clockwork"

	"github.com/yllada/gterm/backend"
	"github.com/yllada/gterm/common"
	"github.com/yllada/gterm/config"
	"github.com/yllada/gterm/dialog"
	"github.com/yllada/gterm/events"
	"github.com/yllada/gterm/preferences"
	"github.com/yllada/gterm/session"
	"github.com/yllada/gterm/storage"
	"github.com/yllada/gterm/system"
)

// Backend is preference persistence that must be closed on shutdown.
type Backend interface {
	preferences.Persistence
	Close() error
}

// Options overrides parts of the assembly, mainly for tests.
type Options struct {
	// Config defaults to config.Load(), falling back to defaults.
	Config *config.Config
	// Storage overrides the backend selected by Config.Storage.
	Storage Backend
	// Signals overrides the system settings source.
	Signals preferences.SystemSignals
	// Clock drives the connect watchdog. Defaults to the real clock.
	Clock  clockwork.Clock
	Logger common.Logger
}

// App owns the stores and the adapters they were built on.
type App struct {
	Config      *config.Config
	Bus         *events.Bus
	Sessions    *session.Registry
	Preferences *preferences.Store
	Dialogs     *dialog.State
	Messages    *backend.Catalog
	// Watchdog is nil when the connect timeout is disabled.
	Watchdog *session.Watchdog

	storage Backend
	signals preferences.SystemSignals
	closers []func() error
	logger  common.Logger
}

// New builds the application state.
func New(opts Options) (*App, error) {
	logger := common.LoggerOrDefault(opts.Logger)

	cfg := opts.Config
	if cfg == nil {
		loaded, err := config.Load()
		if err != nil {
			logger.Warn("Using default configuration: %v", err)
			loaded = config.DefaultConfig()
		}
		cfg = loaded
	}

	a := &App{
		Config:   cfg,
		Bus:      events.NewBus(),
		Sessions: session.NewRegistry(logger),
		Dialogs:  dialog.NewState(),
		Messages: backend.NewCatalog(),
		logger:   logger,
	}

	a.storage = opts.Storage
	if a.storage == nil {
		backendStore, err := OpenStorage(cfg, logger)
		if err != nil {
			return nil, err
		}
		a.storage = backendStore
	}
	a.closers = append(a.closers, a.storage.Close)

	a.signals = opts.Signals
	if a.signals == nil {
		a.signals = a.openSignals()
	}

	prefs, err := preferences.New(preferences.Options{
		Persistence: a.storage,
		Signals:     a.signals,
		Publisher:   a.Bus,
		Languages:   cfg.Languages,
		Logger:      logger,
	})
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Preferences = prefs

	if cfg.ConnectTimeout > 0 {
		a.Watchdog = session.NewWatchdog(a.Sessions, session.WatchdogConfig{
			ConnectTimeout: cfg.ConnectTimeout,
			TimeoutMessage: a.translate(backend.CodeConnectionTimeout, "Connection timeout"),
		}, opts.Clock, logger)
		a.Bus.Subscribe(events.TopicLanguageChanged, func(events.Event) {
			a.Watchdog.SetTimeoutMessage(a.translate(backend.CodeConnectionTimeout, "Connection timeout"))
		})
	}

	a.Sessions.SetOnChange(a.onSessionChange)

	logger.Debug("Application state ready (storage=%s)", cfg.Storage)
	return a, nil
}

// OpenStorage opens the preference backend selected by cfg.
func OpenStorage(cfg *config.Config, logger common.Logger) (Backend, error) {
	switch cfg.Storage {
	case common.StorageMemory:
		return storage.NewMemory(nil), nil

	case common.StorageSQLite:
		path := cfg.StoragePath
		if path == "" {
			p, err := storage.DefaultSQLitePath()
			if err != nil {
				return nil, fmt.Errorf("%w: %w", common.ErrStorageUnavailable, err)
			}
			path = p
		}
		db, err := storage.OpenSQLite(path, logger)
		if err != nil {
			return nil, err
		}
		return db, nil

	default:
		path := cfg.StoragePath
		if path == "" {
			p, err := storage.DefaultYAMLPath()
			if err != nil {
				return nil, fmt.Errorf("%w: %w", common.ErrStorageUnavailable, err)
			}
			path = p
		}
		f, err := storage.OpenYAML(path, logger)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", common.ErrStorageUnavailable, err)
		}
		return f, nil
	}
}

// openSignals connects to the desktop portal when enabled, falling back
// to a static light scheme with the environment locales.
func (a *App) openSignals() preferences.SystemSignals {
	if a.Config.FollowSystem {
		portal, err := system.OpenPortal(a.logger)
		if err == nil {
			a.closers = append(a.closers, portal.Close)
			return portal
		}
		a.logger.Warn("Not following desktop settings: %v", err)
	}
	return system.NewManual(false, system.EnvLocales())
}

func (a *App) onSessionChange(c session.Change) {
	if c.Kind == session.ChangeAdded && a.Watchdog != nil {
		a.Watchdog.Track(c.ID)
	}
	a.Bus.Publish(events.Event{Topic: events.TopicSessionChanged, Payload: c})
}

// Translator returns a translator for the currently resolved language.
func (a *App) Translator() backend.Translator {
	return a.Messages.Translator(a.Preferences.ResolvedLanguage())
}

func (a *App) translate(code, fallback string) string {
	if a.Preferences == nil {
		return fallback
	}
	return backend.Translate(a.Translator(), code, fallback)
}

// Start begins background work.
func (a *App) Start() {
	if a.Watchdog != nil {
		a.Watchdog.Start()
	}
}

// Connect registers a new session for host and runs connect against the
// backend, recording the outcome on the session. The stored session is
// returned even when the connection failed; the error only reports
// invalid session data.
func (a *App) Connect(ctx context.Context, label, host, username string, connect backend.Func) (session.Session, backend.Result[any], error) {
	s, err := a.Sessions.Add(session.Session{
		ID:       session.NewID(),
		Label:    label,
		Host:     host,
		Username: username,
	})
	if err != nil {
		return session.Session{}, backend.Result[any]{}, err
	}

	res := backend.Connect[any](ctx, a.Sessions, s.ID, connect, a.Translator())
	if current, err := a.Sessions.Get(s.ID); err == nil {
		s = current
	}
	return s, res, nil
}

// Close stops background work and releases the adapters.
func (a *App) Close() error {
	if a.Watchdog != nil {
		a.Watchdog.Stop()
	}
	if a.Preferences != nil {
		a.Preferences.Close()
	}

	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
