package cli

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Palette holds the colors used for terminal output.
type Palette struct {
	Primary   lipgloss.Color
	Text      lipgloss.Color
	Secondary lipgloss.Color
	Success   lipgloss.Color
	Error     lipgloss.Color
}

var (
	lightPalette = Palette{
		Primary:   lipgloss.Color("#4098FC"),
		Text:      lipgloss.Color("#1F2937"),
		Secondary: lipgloss.Color("#6B7280"),
		Success:   lipgloss.Color("#16A34A"),
		Error:     lipgloss.Color("#DC2626"),
	}
	darkPalette = Palette{
		Primary:   lipgloss.Color("#60A5FA"),
		Text:      lipgloss.Color("#F3F4F6"),
		Secondary: lipgloss.Color("#9CA3AF"),
		Success:   lipgloss.Color("#4ADE80"),
		Error:     lipgloss.Color("#F87171"),
	}
)

// PaletteFor returns the palette matching the resolved theme.
func PaletteFor(dark bool) Palette {
	if dark {
		return darkPalette
	}
	return lightPalette
}

// styles renders headings and status words. A plain styles value returns
// its input unchanged.
type styles struct {
	plain   bool
	heading lipgloss.Style
	muted   lipgloss.Style
	ok      lipgloss.Style
}

func newStyles(out io.Writer, dark bool) styles {
	if !isTerminal(out) {
		return styles{plain: true}
	}

	r := lipgloss.NewRenderer(out)
	p := PaletteFor(dark)
	return styles{
		heading: r.NewStyle().Bold(true).Foreground(p.Primary),
		muted:   r.NewStyle().Foreground(p.Secondary),
		ok:      r.NewStyle().Foreground(p.Success),
	}
}

func isTerminal(out io.Writer) bool {
	f, ok := out.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func (s styles) render(st lipgloss.Style, text string) string {
	if s.plain {
		return text
	}
	return st.Render(text)
}

func (s styles) Heading(text string) string { return s.render(s.heading, text) }
func (s styles) Muted(text string) string   { return s.render(s.muted, text) }
func (s styles) OK(text string) string      { return s.render(s.ok, text) }
