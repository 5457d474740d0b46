package tui

import (
	"github.com/charmbracelet/lipgloss"
	colorful "github.com/lucasb-eyer/go-colorful"

	"tableflip.dev/focussync/pkg/task"
	"tableflip.dev/focussync/pkg/timeutil"
)

// Theme centralizes Lip Gloss styles for the focus UI.
type Theme struct {
	Header   lipgloss.Style
	Title    lipgloss.Style
	Muted    lipgloss.Style
	Hot      lipgloss.Style
	Selected lipgloss.Style
	Error    lipgloss.Style
	Success  lipgloss.Style
	Help     lipgloss.Style
	Panel    lipgloss.Style
	Modal    lipgloss.Style
	Clock    lipgloss.Style
}

// DefaultTheme returns the built-in theme used across the UI.
func DefaultTheme() Theme {
	return Theme{
		Header:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#74c7ec")),
		Title:    lipgloss.NewStyle().Bold(true),
		Muted:    lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
		Hot:      lipgloss.NewStyle().Foreground(lipgloss.Color("#fab387")).Bold(true),
		Selected: lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true),
		Error:    lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")),
		Success:  lipgloss.NewStyle().Foreground(lipgloss.Color("#34D399")),
		Help:     lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		Panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(1, 2),
		Modal: lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(lipgloss.Color("#b4befe")).
			Padding(1, 2),
		Clock: lipgloss.NewStyle().Bold(true).Padding(1, 4),
	}
}

var vibeHex = map[task.Vibe]string{
	task.Calm:      "#60A5FA",
	task.Focus:     "#A78BFA",
	task.Creative:  "#F472B6",
	task.Energetic: "#FBBF24",
}

// Accent is the vibe color pulled toward the band color as focus deepens.
func Accent(v task.Vibe, band timeutil.FocusBand) lipgloss.Color {
	target, err := colorful.Hex(band.Color())
	if err != nil {
		return lipgloss.Color(band.Color())
	}
	base, err := colorful.Hex(vibeHex[v])
	if err != nil {
		return lipgloss.Color(target.Hex())
	}
	t := 0.6 * float64(band) / float64(timeutil.Ultra)
	return lipgloss.Color(base.BlendLab(target, t).Clamped().Hex())
}
