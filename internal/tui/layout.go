package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// renderHeader draws the breadcrumb bar, clipped to width.
func renderHeader(breadcrumb string, width int) string {
	inner := width - headerBarStyle.GetHorizontalPadding()
	if inner < 1 {
		inner = 1
	}
	line := runewidth.Truncate(breadcrumb, inner, "…")
	return headerBarStyle.Width(width).Render(line) + "\n"
}

// renderFooter draws a footer with keybind hints.
func renderFooter(hints string) string {
	return footerStyle.Render(hints)
}

// renderProgressBar draws a progress bar of the given width.
// ratio should be between 0.0 and 1.0.
func renderProgressBar(ratio float64, width int, failed bool) string {
	if ratio < 0 {
		ratio = 0
	}
	if ratio > 1 {
		ratio = 1
	}
	filled := int(ratio * float64(width))
	if filled == 0 && ratio > 0 {
		filled = 1
	}
	empty := width - filled
	fillStyle := lipgloss.NewStyle().Foreground(barColor(ratio, failed))
	return "[" + fillStyle.Render(strings.Repeat("█", filled)) + strings.Repeat("░", empty) + "]"
}
