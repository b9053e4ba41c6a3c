package output

import (
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// ColorScheme holds the colors used by the text report and the logger.
type ColorScheme struct {
	Title   *color.Color
	Label   *color.Color
	Value   *color.Color
	Success *color.Color
	Error   *color.Color
	Warning *color.Color
	Info    *color.Color
}

func DefaultColorScheme() *ColorScheme {
	return &ColorScheme{
		Title:   color.New(color.FgMagenta, color.Bold),
		Label:   color.New(color.FgCyan),
		Value:   color.New(color.FgWhite, color.Bold),
		Success: color.New(color.FgGreen),
		Error:   color.New(color.FgRed),
		Warning: color.New(color.FgYellow, color.Bold),
		Info:    color.New(color.FgBlue),
	}
}

// NoColorScheme returns a scheme with every color disabled.
func NoColorScheme() *ColorScheme {
	scheme := DefaultColorScheme()
	for _, c := range scheme.all() {
		c.DisableColor()
	}
	return scheme
}

// SchemeFor picks a scheme for w. Colors are used only when w is a terminal,
// noColor is false and NO_COLOR is unset.
func SchemeFor(w io.Writer, noColor bool) *ColorScheme {
	if noColor || os.Getenv("NO_COLOR") != "" || !IsTerminal(w) {
		return NoColorScheme()
	}
	scheme := DefaultColorScheme()
	// color.NoColor only looks at stdout; w may be stderr.
	for _, c := range scheme.all() {
		c.EnableColor()
	}
	return scheme
}

func (s *ColorScheme) all() []*color.Color {
	return []*color.Color{s.Title, s.Label, s.Value, s.Success, s.Error, s.Warning, s.Info}
}

// IsTerminal reports whether w is a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
