package dashboard

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/steveyegge/srmauto/internal/style"
)

// Styles for the dashboard
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(style.ColorAccent)

	stateStyle = lipgloss.NewStyle().
			Bold(true)

	logBorderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(style.ColorMuted)

	formBorderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(style.ColorAccent).
			Padding(0, 1)

	labelStyle = lipgloss.NewStyle().
			Foreground(style.ColorMuted).
			Width(14)

	focusedLabelStyle = lipgloss.NewStyle().
				Foreground(style.ColorAccent).
				Bold(true).
				Width(14)

	warnLineStyle = lipgloss.NewStyle().
			Foreground(style.ColorWarning)

	errorLineStyle = lipgloss.NewStyle().
			Foreground(style.ColorError)

	errorStyle = lipgloss.NewStyle().
			Foreground(style.ColorError).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(style.ColorSuccess)

	statusStyle = lipgloss.NewStyle().
			Foreground(style.ColorMuted).
			Italic(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(style.ColorMuted)
)
