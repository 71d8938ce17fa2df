package output

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// Color palette.
const (
	ColorAccent    = "154"
	ColorAccentDim = "106"
	ColorWhite     = "255"
	ColorGray      = "245"
	ColorDarkGray  = "238"
	ColorRed       = "196"
	ColorYellow    = "220"
)

// Styles holds the lipgloss styles used for terminal output.
type Styles struct {
	Header  lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Dim     lipgloss.Style
	Label   lipgloss.Style
	Accent  lipgloss.Style
	Border  lipgloss.Style
}

// DefaultStyles returns the colored styles.
func DefaultStyles() Styles {
	return Styles{
		Header:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorAccent)),
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color(ColorAccent)),
		Warning: lipgloss.NewStyle().Foreground(lipgloss.Color(ColorYellow)),
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color(ColorRed)),
		Dim:     lipgloss.NewStyle().Foreground(lipgloss.Color(ColorDarkGray)),
		Label:   lipgloss.NewStyle().Foreground(lipgloss.Color(ColorGray)),
		Accent:  lipgloss.NewStyle().Foreground(lipgloss.Color(ColorAccentDim)),
		Border:  lipgloss.NewStyle().Foreground(lipgloss.Color(ColorDarkGray)),
	}
}

// NoColorStyles returns unstyled components for plain output.
func NoColorStyles() Styles {
	plain := lipgloss.NewStyle()
	return Styles{
		Header:  plain,
		Success: plain,
		Warning: plain,
		Error:   plain,
		Dim:     plain,
		Label:   plain,
		Accent:  plain,
		Border:  plain,
	}
}

// IsTTY checks if output is a terminal.
func IsTTY(w io.Writer) bool {
	if f, ok := w.(*os.File); ok {
		return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return false
}

// DetectNoColor checks if the NO_COLOR environment variable is set.
func DetectNoColor() bool {
	_, exists := os.LookupEnv("NO_COLOR")
	return exists
}

// UseColor reports whether colored output should be written to w.
func UseColor(w io.Writer) bool {
	return IsTTY(w) && !DetectNoColor()
}
