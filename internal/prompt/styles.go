package prompt

import (
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Styles contains the style definitions for the prompt
type Styles struct {
	Marker   lipgloss.Style
	Row      lipgloss.Style
	Selected lipgloss.Style
}

// NewStyles creates the default styles for output rendered by r
func NewStyles(r *lipgloss.Renderer) Styles {
	return Styles{
		Marker:   r.NewStyle().Foreground(lipgloss.Color("99")).Bold(true),
		Row:      r.NewStyle(),
		Selected: r.NewStyle().Foreground(lipgloss.Color("226")).Bold(true),
	}
}

// PlainStyles returns styles that never emit escape sequences
func PlainStyles() Styles {
	r := lipgloss.NewRenderer(io.Discard)
	r.SetColorProfile(termenv.Ascii)
	return NewStyles(r)
}
