package tui

import "github.com/charmbracelet/lipgloss"

const (
	colorAccent = "#7D56F4"
	colorOK     = "#4ECDC4"
	colorWarn   = "#F4BF75"
	colorMuted  = "#6B7280"
	colorBorder = "#3B3F51"
)

type Theme struct {
	Title   lipgloss.Style
	Command lipgloss.Style
	Meta    lipgloss.Style
	Active  lipgloss.Style
	Row     lipgloss.Style
	Hint    lipgloss.Style
	Warn    lipgloss.Style
	Box     lipgloss.Style
}

func NewTheme() Theme {
	return Theme{
		Title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(colorAccent)),
		Command: lipgloss.NewStyle().Bold(true),
		Meta:    lipgloss.NewStyle().Foreground(lipgloss.Color(colorMuted)),
		Active:  lipgloss.NewStyle().Foreground(lipgloss.Color(colorOK)).Bold(true),
		Row:     lipgloss.NewStyle(),
		Hint:    lipgloss.NewStyle().Foreground(lipgloss.Color(colorMuted)),
		Warn:    lipgloss.NewStyle().Foreground(lipgloss.Color(colorWarn)),
		Box: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(colorBorder)).
			Padding(0, 1),
	}
}
