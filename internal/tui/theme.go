package tui

import "github.com/charmbracelet/lipgloss"

// ---------------------------------------------------------------------------
// Color palette -- single source of truth for the TUI chrome. Treemap cell
// fills come from the palette package.
// Values are ANSI-256 color codes passed to lipgloss.Color().
// ---------------------------------------------------------------------------

var (
	colorPrimary   = lipgloss.Color("170")
	colorSecondary = lipgloss.Color("212")
	colorSuccess   = lipgloss.Color("82")
	colorWarning   = lipgloss.Color("214")
	colorDanger    = lipgloss.Color("196")
	colorDim       = lipgloss.Color("241")
	colorSubtle    = lipgloss.Color("236")
	colorText      = lipgloss.Color("252")
)

// ---------------------------------------------------------------------------
// Bar colors -- used for the source loading bar.
// ---------------------------------------------------------------------------

var (
	barColorDone    = colorSuccess
	barColorLoading = colorWarning
	barColorFailed  = colorDanger
)

// barColor returns the loading bar color for a 0.0-1.0 ratio.
//   - any failed source -> failed (red)
//   - >= 1.0            -> done (green)
//   - otherwise         -> loading (orange)
func barColor(ratio float64, failed bool) lipgloss.Color {
	switch {
	case failed:
		return barColorFailed
	case ratio >= 1:
		return barColorDone
	default:
		return barColorLoading
	}
}
