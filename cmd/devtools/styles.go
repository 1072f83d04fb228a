package main

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle = lipgloss.NewStyle().Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#5A56E0", Dark: "#7571F9"})
	headerStyle = lipgloss.NewStyle().Bold(true).Underline(true)
	labelStyle  = lipgloss.NewStyle().Faint(true)
	okStyle     = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#02BA84", Dark: "#02BF87"})
	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#D97706", Dark: "#F59E0B"})
	dataStyle = lipgloss.NewStyle().PaddingLeft(2)
)

// column pads s to width cells
func column(s string, width int) string {
	return lipgloss.NewStyle().Width(width).Render(s)
}
