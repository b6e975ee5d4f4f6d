package dashboard

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/steveyegge/srmauto/internal/constants"
	"github.com/steveyegge/srmauto/internal/style"
	"github.com/steveyegge/srmauto/internal/workflow"
)

// View renders the model
func (m *Model) View() string {
	if m.settings != nil {
		return m.settingsView()
	}

	var b strings.Builder
	b.WriteString(m.headerView())
	b.WriteString("\n")
	b.WriteString(logBorderStyle.Width(m.logWidth()).Render(m.logView()))
	b.WriteString("\n")
	if s := m.resultView(); s != "" {
		b.WriteString(s)
		b.WriteString("\n")
	}
	b.WriteString(statusStyle.Render(m.status))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render(m.help.View(m.keys)))
	return b.String()
}

func (m *Model) headerView() string {
	title := titleStyle.Render("Steam ROM Manager")

	state := stateStyle.Render(m.state.Label())
	if m.run != nil {
		state = m.spinner.View() + " " + state
	} else if m.result != nil {
		state = style.StatusLabel(m.result.Status(), m.emoji)
	} else {
		state = style.StatusLabel(constants.StatusReady, m.emoji)
	}

	right := m.steamView()
	left := title + "  " + state
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 2 {
		gap = 2
	}
	return left + strings.Repeat(" ", gap) + right
}

// steamView shows whether Steam is currently running.
func (m *Model) steamView() string {
	switch {
	case m.steam == nil:
		return helpStyle.Render("Steam: ?")
	case *m.steam:
		return warnLineStyle.Render("Steam: running")
	default:
		return successStyle.Render("Steam: stopped")
	}
}

func (m *Model) logView() string {
	if len(m.lines) == 0 {
		return helpStyle.Render("No output yet.")
	}
	return m.log.View()
}

// resultView shows the rendered summary, or the short error while the
// summary is still being rendered.
func (m *Model) resultView() string {
	if m.result == nil {
		return ""
	}
	if m.summary != "" {
		return m.summary
	}
	if m.result.Outcome == workflow.OutcomeFailure {
		msg := m.result.ShortError()
		if hint := m.result.Hint(); hint != "" {
			msg += "\n" + hint
		}
		return errorStyle.Render(msg)
	}
	return successStyle.Render(fmt.Sprintf("Done in %s", m.result.Duration().Round(100*time.Millisecond)))
}

func (m *Model) settingsView() string {
	var b strings.Builder
	b.WriteString(m.settings.view())
	b.WriteString("\n")
	b.WriteString(helpStyle.Render(m.help.View(settingsKeys{m.keys})))
	return b.String()
}

func (m *Model) logWidth() int {
	w := m.width - 2
	if w < 20 {
		w = 78
	}
	return w
}

// resizeLog fits the viewport into the space left by the other sections.
func (m *Model) resizeLog() {
	m.log.Width = m.logWidth()

	used := 1 /* header */ + 2 /* border */ + 1 /* status */ + 1 /* help */
	if m.showHelp {
		used += 3
	}
	if m.summary != "" {
		used += lipgloss.Height(m.summary) + 1
	} else if m.result != nil {
		used += 3
	}
	h := m.height - used
	if h < 3 {
		h = 3
	}
	m.log.Height = h
}
