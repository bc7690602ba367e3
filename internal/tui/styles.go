package tui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(colorPrimary)

	dimStyle = lipgloss.NewStyle().
		Foreground(colorDim)

	warnStyle = lipgloss.NewStyle().
		Foreground(colorWarning)

	errorStyle = lipgloss.NewStyle().
		Foreground(colorDanger)

	headerBarStyle = lipgloss.NewStyle().
		Bold(true).
		Background(colorSubtle).
		Foreground(colorText).
		Padding(0, 1)

	footerStyle = lipgloss.NewStyle().
		Foreground(colorDim)

	dimSlotStyle = lipgloss.NewStyle().
		Foreground(colorSecondary)
)
