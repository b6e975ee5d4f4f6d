// Package style holds the lipgloss palette shared by the TUI and the
// headless printer.
package style

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/steveyegge/srmauto/internal/constants"
)

// Color palette shared with the dashboard. Adaptive colors pick the light
// or dark variant from the detected terminal background.
var (
	ColorAccent  = lipgloss.AdaptiveColor{Light: "27", Dark: "39"}   // blue
	ColorSuccess = lipgloss.AdaptiveColor{Light: "28", Dark: "76"}   // green
	ColorWarning = lipgloss.AdaptiveColor{Light: "166", Dark: "214"} // orange
	ColorError   = lipgloss.AdaptiveColor{Light: "160", Dark: "196"} // red
	ColorMuted   = lipgloss.AdaptiveColor{Light: "245", Dark: "242"} // gray
)

// Shared styles for command-line output.
var (
	Bold    = lipgloss.NewStyle().Bold(true)
	Dim     = lipgloss.NewStyle().Foreground(ColorMuted)
	Accent  = lipgloss.NewStyle().Foreground(ColorAccent).Bold(true)
	Success = lipgloss.NewStyle().Foreground(ColorSuccess)
	Warning = lipgloss.NewStyle().Foreground(ColorWarning)
	Error   = lipgloss.NewStyle().Foreground(ColorError).Bold(true)
)

// ApplyTheme forces the light or dark palette. "auto" keeps lipgloss'
// own background detection.
func ApplyTheme(theme string, detectedDark bool) {
	switch theme {
	case constants.ThemeLight:
		lipgloss.SetHasDarkBackground(false)
	case constants.ThemeDark:
		lipgloss.SetHasDarkBackground(true)
	default:
		lipgloss.SetHasDarkBackground(detectedDark)
	}
}

// ForStatus returns the style of a presentation status.
func ForStatus(status string) lipgloss.Style {
	switch status {
	case constants.StatusSuccess:
		return Success
	case constants.StatusFailed:
		return Error
	case constants.StatusCancelled:
		return Warning
	case constants.StatusRunning:
		return Accent
	default:
		return Dim
	}
}

// StatusLabel renders a status with its emoji, e.g. "✓ success".
func StatusLabel(status string, emoji bool) string {
	text := status
	if emoji {
		text = constants.StatusEmoji(status) + " " + status
	}
	return ForStatus(status).Render(text)
}
