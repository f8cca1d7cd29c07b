package system

import (
	"fmt"
	"sync"

	"github.com/godbus/dbus/v5"

	"github.com/yllada/gterm/common"
)

// XDG desktop portal settings interface.
const (
	portalDest     = "org.freedesktop.portal.Desktop"
	portalPath     = dbus.ObjectPath("/org/freedesktop/portal/desktop")
	settingsIface  = "org.freedesktop.portal.Settings"
	settingChanged = settingsIface + ".SettingChanged"
	appearanceNS   = "org.freedesktop.appearance"
	colorSchemeKey = "color-scheme"
)

// Color scheme values defined by the portal.
const (
	schemeNoPreference uint32 = iota
	schemePreferDark
	schemePreferLight
)

// Portal reads the color scheme from the XDG desktop portal on the
// session bus and follows SettingChanged signals. Locales come from the
// environment at open time.
type Portal struct {
	conn    *dbus.Conn
	signals chan *dbus.Signal
	logger  common.Logger

	mu      sync.RWMutex
	dark    bool
	locales []string
	nextID  int
	subs    map[int]func(bool)
}

func newPortal(conn *dbus.Conn, logger common.Logger) *Portal {
	return &Portal{
		conn:    conn,
		logger:  common.LoggerOrDefault(logger),
		locales: EnvLocales(),
		subs:    make(map[int]func(bool)),
	}
}

// OpenPortal connects to the session bus, reads the current color scheme
// and starts following changes. It fails with ErrSignalsUnavailable when
// no bus or portal is reachable.
func OpenPortal(logger common.Logger) (*Portal, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("%w: session bus: %w", common.ErrSignalsUnavailable, err)
	}

	p := newPortal(conn, logger)
	dark, err := p.readColorScheme()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("%w: read color scheme: %w", common.ErrSignalsUnavailable, err)
	}
	p.dark = dark

	if err := conn.AddMatchSignal(
		dbus.WithMatchObjectPath(portalPath),
		dbus.WithMatchInterface(settingsIface),
		dbus.WithMatchMember("SettingChanged"),
	); err != nil {
		conn.Close()
		return nil, fmt.Errorf("%w: subscribe: %w", common.ErrSignalsUnavailable, err)
	}

	p.signals = make(chan *dbus.Signal, 16)
	conn.Signal(p.signals)
	go p.watch()

	p.logger.Debug("Desktop portal connected (dark=%v)", dark)
	return p, nil
}

func (p *Portal) readColorScheme() (bool, error) {
	obj := p.conn.Object(portalDest, portalPath)

	var v dbus.Variant
	err := obj.Call(settingsIface+".ReadOne", 0, appearanceNS, colorSchemeKey).Store(&v)
	if err != nil {
		// Portals older than version 2 only implement the deprecated Read.
		if errRead := obj.Call(settingsIface+".Read", 0, appearanceNS, colorSchemeKey).Store(&v); errRead != nil {
			return false, err
		}
	}
	return isDarkScheme(v.Value()), nil
}

// isDarkScheme unwraps nested variants and maps the portal value.
func isDarkScheme(v interface{}) bool {
	for {
		inner, ok := v.(dbus.Variant)
		if !ok {
			break
		}
		v = inner.Value()
	}
	switch n := v.(type) {
	case uint32:
		return n == schemePreferDark
	case int32:
		return n == int32(schemePreferDark)
	default:
		return false
	}
}

func (p *Portal) watch() {
	for sig := range p.signals {
		p.handleSignal(sig)
	}
}

func (p *Portal) handleSignal(sig *dbus.Signal) {
	if sig == nil || sig.Name != settingChanged || len(sig.Body) < 3 {
		return
	}
	ns, _ := sig.Body[0].(string)
	key, _ := sig.Body[1].(string)
	if ns != appearanceNS || key != colorSchemeKey {
		return
	}

	dark := isDarkScheme(sig.Body[2])

	p.mu.Lock()
	if p.dark == dark {
		p.mu.Unlock()
		return
	}
	p.dark = dark
	fns := make([]func(bool), 0, len(p.subs))
	for _, fn := range p.subs {
		fns = append(fns, fn)
	}
	p.mu.Unlock()

	p.logger.Debug("Desktop color scheme changed (dark=%v)", dark)
	for _, fn := range fns {
		fn(dark)
	}
}

// PrefersDark reports the last known color scheme.
func (p *Portal) PrefersDark() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.dark
}

// PreferredLocales returns the environment locales read at open time.
func (p *Portal) PreferredLocales() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]string(nil), p.locales...)
}

// OnColorSchemeChange registers fn for color-scheme changes.
func (p *Portal) OnColorSchemeChange(fn func(dark bool)) func() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.nextID++
	id := p.nextID
	p.subs[id] = fn
	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		delete(p.subs, id)
	}
}

// Close stops following changes and closes the bus connection.
func (p *Portal) Close() error {
	if p.conn == nil {
		return nil
	}
	if p.signals != nil {
		p.conn.RemoveSignal(p.signals)
		close(p.signals)
		p.signals = nil
	}
	return p.conn.Close()
}
