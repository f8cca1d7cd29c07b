// Package cli provides command-line interface functionality for gterm.
// It inspects and changes user preferences from the terminal without
// launching the GUI.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/yllada/gterm/app"
	"github.com/yllada/gterm/backend"
	"github.com/yllada/gterm/common"
	"github.com/yllada/gterm/preferences"
)

// CLI represents the command-line interface.
type CLI struct {
	app    *app.App
	out    io.Writer
	styles styles
}

// New creates a CLI over an assembled application writing to out.
// A nil out writes to stdout.
func New(a *app.App, out io.Writer) *CLI {
	if out == nil {
		out = os.Stdout
	}
	return &CLI{
		app:    a,
		out:    out,
		styles: newStyles(out, a.Preferences.IsDark()),
	}
}

// ShowPreferences prints the current preference values.
func (c *CLI) ShowPreferences() error {
	snap := c.app.Preferences.Snapshot()

	fmt.Fprintln(c.out, c.styles.Heading("Preferences"))

	w := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
	// Notes sit in the last, unterminated cell so styling cannot skew the columns.
	fmt.Fprintf(w, "Theme\t%s\t%s\n", snap.ThemeMode, c.styles.Muted("(dark: "+yesNo(snap.IsDark)+")"))
	fmt.Fprintf(w, "Language\t%s\t%s\n", snap.Language, c.styles.Muted("(active: "+c.languageLabel(snap.ResolvedLanguage)+")"))
	fmt.Fprintf(w, "Sidebar width\t%dpx\t\n", snap.SidebarWidth)
	fmt.Fprintf(w, "Storage\t%s\t\n", c.app.Config.Storage)
	return w.Flush()
}

// SetTheme sets the theme mode: light, dark or auto.
func (c *CLI) SetTheme(value string) error {
	mode, ok := preferences.ParseThemeMode(value)
	if !ok {
		return fmt.Errorf("%w: %q (use light, dark or auto)", common.ErrInvalidThemeMode, value)
	}
	if err := c.app.Preferences.UpdateThemeMode(mode); err != nil {
		return err
	}
	c.success(fmt.Sprintf("Theme set to %s", mode))
	return nil
}

// SetLanguage sets the UI language by code, or "auto" to follow the system.
func (c *CLI) SetLanguage(value string) error {
	code := strings.ToLower(strings.TrimSpace(value))
	if err := c.app.Preferences.UpdateLanguage(code); err != nil {
		if errors.Is(err, common.ErrUnsupportedLanguage) {
			codes := c.app.Preferences.Languages()
			supported := make([]string, 0, len(codes)+1)
			for _, o := range codes {
				supported = append(supported, o.Code)
			}
			supported = append(supported, preferences.LanguageAuto)
			return fmt.Errorf("%w (use one of: %s)", err, strings.Join(supported, ", "))
		}
		return err
	}
	c.success(fmt.Sprintf("Language set to %s (active: %s)", code, c.languageLabel(c.app.Preferences.ResolvedLanguage())))
	return nil
}

// SetSidebarWidth sets the sidebar width in pixels.
func (c *CLI) SetSidebarWidth(px int) error {
	if err := c.app.Preferences.UpdateSidebarWidth(px); err != nil {
		return err
	}
	c.success(fmt.Sprintf("Sidebar width set to %dpx", px))
	return nil
}

// ResetSidebarWidth restores the default sidebar width.
func (c *CLI) ResetSidebarWidth() error {
	if err := c.app.Preferences.ResetSidebarWidth(); err != nil {
		return err
	}
	c.success(fmt.Sprintf("Sidebar width reset to %dpx", c.app.Preferences.SidebarWidth()))
	return nil
}

// ListLanguages lists the supported languages, marking the active one.
func (c *CLI) ListLanguages() error {
	active := c.app.Preferences.ResolvedLanguage()

	fmt.Fprintln(c.out, c.styles.Heading("Languages"))

	w := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CODE\tNAME\tACTIVE")
	fmt.Fprintln(w, "----\t----\t------")
	for _, o := range c.app.Preferences.Languages() {
		marker := ""
		if o.Code == active {
			marker = "*"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", o.Code, o.Label, marker)
	}
	return w.Flush()
}

// ListMessages prints every known backend message code with its text in
// the active language.
func (c *CLI) ListMessages() error {
	tr := c.app.Translator()

	codes := append([]string(nil), messageCodes...)
	sort.Strings(codes)

	fmt.Fprintln(c.out, c.styles.Heading("Backend messages"))

	w := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CODE\tMESSAGE")
	fmt.Fprintln(w, "----\t-------")
	for _, code := range codes {
		fmt.Fprintf(w, "%s\t%s\n", code, backend.Translate(tr, code, "-"))
	}
	return w.Flush()
}

var messageCodes = []string{
	backend.CodeCreateSuccess,
	backend.CodeUpdateSuccess,
	backend.CodeDeleteSuccess,
	backend.CodeConnected,
	backend.CodeDisconnected,
	backend.CodeConnectionClosed,
	backend.CodeReadLimitExceeded,
	backend.CodeConnectionTimeout,
	backend.CodeConnectionRefused,
	backend.CodeNoRoute,
	backend.CodeAuthFailed,
	backend.CodeUnknownError,
	backend.CodeInvalidCredentials,
	backend.CodePermissionDenied,
	backend.CodeHostUnreachable,
	backend.CodeSSHServiceDown,
	backend.CodeNetworkError,
	backend.CodeProtocolError,
	backend.CodeResourceExhausted,
	backend.CodeSessionEnded,
	backend.CodeFingerprintSend,
	backend.CodeFingerprintRead,
	backend.CodeFingerprintParse,
	backend.CodeFingerprintAdd,
	backend.CodeFingerprintRejected,
}

func (c *CLI) languageLabel(code string) string {
	for _, o := range c.app.Preferences.Languages() {
		if o.Code == code {
			return fmt.Sprintf("%s, %s", code, o.Label)
		}
	}
	return code
}

func (c *CLI) success(msg string) {
	fmt.Fprintln(c.out, c.styles.OK("✓ ")+msg)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// PrintHelp prints CLI usage help.
func PrintHelp(out io.Writer) {
	if out == nil {
		out = os.Stdout
	}
	fmt.Fprintln(out, `GTerm - Command Line Interface

Usage:
  gterm [OPTIONS]

Options:
  --version              Show version and exit
  --verbose              Enable verbose logging
  --show                 Show current preferences
  --theme MODE           Set the theme: light, dark or auto
  --language CODE        Set the UI language, or auto to follow the system
  --sidebar-width PX     Set the sidebar width in pixels
  --reset-sidebar        Restore the default sidebar width
  --languages            List supported languages
  --messages             List backend message codes in the active language
  --help                 Show this help message

Examples:
  gterm --show
  gterm --theme dark
  gterm --language auto
  gterm --sidebar-width 300

Notes:
  - Preferences are stored according to ~/.config/gterm/config.yaml
  - Several setters may be combined; they are applied in the order above`)
}
