package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/yllada/gterm/common"
)

// WatchdogConfig holds configuration for the connect watchdog.
type WatchdogConfig struct {
	// CheckInterval is how often sessions are scanned.
	CheckInterval time.Duration
	// ConnectTimeout is how long a session may stay connecting before it
	// is marked failed.
	ConnectTimeout time.Duration
	// TimeoutMessage is the error message recorded on timed-out sessions.
	TimeoutMessage string
}

// DefaultWatchdogConfig returns sensible defaults for the watchdog.
func DefaultWatchdogConfig() WatchdogConfig {
	return WatchdogConfig{
		CheckInterval:  time.Second,
		ConnectTimeout: 30 * time.Second,
		TimeoutMessage: "Connection timeout",
	}
}

// Watchdog fails sessions that stay in StatusConnecting longer than the
// configured timeout, so a backend that never answers cannot leave a tab
// spinning forever.
type Watchdog struct {
	mu        sync.Mutex
	config    WatchdogConfig
	registry  *Registry
	clock     clockwork.Clock
	logger    common.Logger
	running   bool
	stopChan  chan struct{}
	since     map[string]time.Time
	onTimeout func(id string, waited time.Duration)
}

// NewWatchdog creates a watchdog over registry. A nil clock uses the
// real one.
func NewWatchdog(registry *Registry, config WatchdogConfig, clock clockwork.Clock, logger common.Logger) *Watchdog {
	defaults := DefaultWatchdogConfig()
	if config.CheckInterval <= 0 {
		config.CheckInterval = defaults.CheckInterval
	}
	if config.ConnectTimeout <= 0 {
		config.ConnectTimeout = defaults.ConnectTimeout
	}
	if config.TimeoutMessage == "" {
		config.TimeoutMessage = defaults.TimeoutMessage
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Watchdog{
		config:   config,
		registry: registry,
		clock:    clock,
		logger:   common.LoggerOrDefault(logger),
		since:    make(map[string]time.Time),
	}
}

// SetOnTimeout sets a callback for sessions that timed out.
func (w *Watchdog) SetOnTimeout(callback func(id string, waited time.Duration)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onTimeout = callback
}

// SetTimeoutMessage replaces the message recorded on timed-out sessions,
// e.g. after the UI language changed.
func (w *Watchdog) SetTimeoutMessage(message string) {
	if message == "" {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.config.TimeoutMessage = message
}

// Start begins the scanning loop.
func (w *Watchdog) Start() {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return
	}
	w.running = true
	w.stopChan = make(chan struct{})
	stop := w.stopChan
	w.mu.Unlock()

	w.logger.Debug("Connect watchdog started (timeout: %v)", w.config.ConnectTimeout)

	go w.runLoop(stop)
}

// Stop stops the scanning loop.
func (w *Watchdog) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.running {
		return
	}
	w.running = false
	close(w.stopChan)
	w.logger.Debug("Connect watchdog stopped")
}

// IsRunning returns whether the scanning loop is active.
func (w *Watchdog) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

func (w *Watchdog) runLoop(stop <-chan struct{}) {
	ticker := w.clock.NewTicker(w.config.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.Chan():
			w.Check()
		}
	}
}

// Track starts the timeout clock for session id unless it is already
// running. Sessions not tracked explicitly are picked up by the next scan.
func (w *Watchdog) Track(id string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.since[id]; !ok {
		w.since[id] = w.clock.Now()
	}
}

// Tracking returns when the watchdog first saw session id connecting.
func (w *Watchdog) Tracking(id string) (time.Time, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	t, ok := w.since[id]
	return t, ok
}

type expiry struct {
	id     string
	label  string
	waited time.Duration
}

// Check performs one scan: sessions that stopped connecting are
// forgotten, and sessions connecting for longer than the timeout are
// marked failed.
func (w *Watchdog) Check() {
	sessions := w.registry.List()
	now := w.clock.Now()

	w.mu.Lock()
	connecting := make(map[string]bool, len(sessions))
	var expired []expiry
	for _, s := range sessions {
		if s.Status() != StatusConnecting {
			continue
		}
		connecting[s.ID] = true
		start, ok := w.since[s.ID]
		if !ok {
			w.since[s.ID] = now
			continue
		}
		if waited := now.Sub(start); waited >= w.config.ConnectTimeout {
			expired = append(expired, expiry{id: s.ID, label: s.Label, waited: waited})
			delete(w.since, s.ID)
		}
	}
	for id := range w.since {
		if !connecting[id] {
			delete(w.since, id)
		}
	}
	message := w.config.TimeoutMessage
	callback := w.onTimeout
	w.mu.Unlock()

	for _, e := range expired {
		w.logger.Warn("Session %q still connecting after %v, marking failed", e.label, e.waited)
		patch := Failed(message, fmt.Sprintf("no response after %v", e.waited))
		if !w.registry.UpdateStatusIf(e.id, isConnecting, patch) {
			w.logger.Debug("Session %q left connecting before it was marked failed", e.label)
			continue
		}
		if callback != nil {
			callback(e.id, e.waited)
		}
	}
}

func isConnecting(s Session) bool {
	return s.Status() == StatusConnecting
}
