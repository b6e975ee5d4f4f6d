// Package dashboard is the interactive terminal interface: it starts
// workflow runs, renders their progress from the event bus and edits the
// settings file.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/steveyegge/srmauto/internal/config"
	"github.com/steveyegge/srmauto/internal/constants"
	"github.com/steveyegge/srmauto/internal/eventbus"
	"github.com/steveyegge/srmauto/internal/style"
	"github.com/steveyegge/srmauto/internal/workflow"
)

// maxLogLines bounds the status log kept for the viewport.
const maxLogLines = 2000

// Options configures a Model.
type Options struct {
	Orchestrator *workflow.Orchestrator
	Config       *config.Config

	// AutoStart starts a run as soon as the UI opens.
	AutoStart bool

	// Save persists edited settings and applies them to future runs.
	Save func(*config.Config) error

	// DarkBackground is the detected terminal background, used when the
	// theme is "auto".
	DarkBackground bool

	Emoji bool
}

// Model is the bubbletea model for the dashboard.
type Model struct {
	// Dimensions
	width  int
	height int

	orch   *workflow.Orchestrator
	cfg    *config.Config
	save   func(*config.Config) error
	events <-chan eventbus.Event
	unsub  func()

	autoStart bool
	darkBg    bool
	emoji     bool

	// Run state, fed only by bus events and run results.
	state  workflow.State
	run    *workflow.Run
	result *workflow.Result
	steam  *bool
	lines  []workflow.Line

	summary string // rendered markdown of the last result

	// UI state
	keys     KeyMap
	help     help.Model
	showHelp bool
	spinner  spinner.Model
	log      viewport.Model
	settings *settingsForm
	status   string
	quitting bool

	done      chan struct{}
	closeOnce sync.Once
}

// New creates the dashboard model. It subscribes to the orchestrator's bus
// immediately so no event published after New is missed.
func New(opts Options) *Model {
	events, unsub := opts.Orchestrator.Bus().Subscribe()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(style.ColorAccent)

	h := help.New()
	h.ShowAll = false

	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}

	return &Model{
		orch:      opts.Orchestrator,
		cfg:       cfg,
		save:      opts.Save,
		events:    events,
		unsub:     unsub,
		autoStart: opts.AutoStart,
		darkBg:    opts.DarkBackground,
		emoji:     opts.Emoji,
		keys:      DefaultKeyMap(),
		help:      h,
		spinner:   sp,
		log:       viewport.New(0, 0),
		status:    "Press enter to update Steam shortcuts",
		done:      make(chan struct{}),
	}
}

// Done is closed when the model has quit.
func (m *Model) Done() <-chan struct{} {
	return m.done
}

func (m *Model) close() {
	m.closeOnce.Do(func() {
		m.unsub()
		close(m.done)
	})
}

// busEventMsg carries one event from the workflow bus.
type busEventMsg struct {
	event eventbus.Event
}

// busClosedMsg is sent when the bus shut down.
type busClosedMsg struct{}

// finishedMsg carries the result of a run from Run.Wait.
type finishedMsg struct {
	result workflow.Result
}

// summaryMsg carries the rendered result summary.
type summaryMsg struct {
	runID    string
	rendered string
}

// savedMsg is sent after settings were persisted.
type savedMsg struct {
	cfg *config.Config
	err error
}

// autoStartMsg triggers the initial run when auto start is on.
type autoStartMsg struct{}

// Init initializes the model
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		m.listen(),
		m.spinner.Tick,
		tea.SetWindowTitle("Steam ROM Manager automation"),
	}
	if m.autoStart {
		cmds = append(cmds, func() tea.Msg { return autoStartMsg{} })
	}
	return tea.Batch(cmds...)
}

// listen waits for the next bus event.
func (m *Model) listen() tea.Cmd {
	events := m.events
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return busClosedMsg{}
		}
		return busEventMsg{event: ev}
	}
}

func waitForRun(run *workflow.Run) tea.Cmd {
	return func() tea.Msg {
		return finishedMsg{result: run.Wait()}
	}
}

// Update handles messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.resizeLog()
		if m.settings != nil {
			m.settings.setWidth(msg.Width)
		}

	case tea.KeyMsg:
		return m.handleKey(msg)

	case autoStartMsg:
		cmds = append(cmds, m.startRun())

	case busEventMsg:
		m.handleEvent(msg.event)
		cmds = append(cmds, m.listen())

	case busClosedMsg:
		// Nothing more will arrive; results still come through Run.Wait.

	case finishedMsg:
		res := msg.result
		m.result = &res
		m.run = nil
		m.state = res.State
		m.status = m.resultStatus(res)
		cmds = append(cmds, m.renderSummary(res))
		if m.quitting {
			m.close()
			return m, tea.Quit
		}

	case summaryMsg:
		if m.result != nil && m.result.RunID == msg.runID {
			m.summary = msg.rendered
			m.resizeLog()
		}

	case savedMsg:
		if msg.err != nil {
			if m.settings != nil {
				m.settings.err = msg.err
			}
			m.status = "Could not save settings"
			break
		}
		m.cfg = msg.cfg
		m.settings = nil
		style.ApplyTheme(m.cfg.Theme, m.darkBg)
		m.status = "Settings saved"

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.settings != nil {
		return m.handleSettingsKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		if m.run != nil {
			// Kill the tool before leaving; quit once the run settles.
			m.quitting = true
			m.run.Cancel()
			m.status = "Cancelling run before quitting..."
			return m, nil
		}
		m.close()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		m.help.ShowAll = m.showHelp
		m.resizeLog()

	case key.Matches(msg, m.keys.Start):
		return m, m.startRun()

	case key.Matches(msg, m.keys.Cancel):
		if m.run != nil {
			m.run.Cancel()
			m.status = "Cancelling..."
		}

	case key.Matches(msg, m.keys.Settings):
		if m.run != nil {
			m.status = "Settings are locked while a run is in progress"
			break
		}
		m.settings = newSettingsForm(m.cfg)
		m.settings.setWidth(m.width)

	case key.Matches(msg, m.keys.Up):
		m.log.LineUp(1)
	case key.Matches(msg, m.keys.Down):
		m.log.LineDown(1)
	case key.Matches(msg, m.keys.PageUp):
		m.log.HalfViewUp()
	case key.Matches(msg, m.keys.PageDown):
		m.log.HalfViewDown()
	}
	return m, nil
}

func (m *Model) handleSettingsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.close()
		return m, tea.Quit
	}
	save, back, cmd := m.settings.update(msg, m.keys)
	switch {
	case back:
		m.settings = nil
		m.status = "Settings unchanged"
		return m, nil
	case save:
		cfg, err := m.settings.result()
		if err != nil {
			m.settings.err = err
			return m, nil
		}
		return m, m.saveSettings(cfg)
	}
	return m, cmd
}

func (m *Model) saveSettings(cfg *config.Config) tea.Cmd {
	save := m.save
	return func() tea.Msg {
		if save == nil {
			return savedMsg{cfg: cfg}
		}
		return savedMsg{cfg: cfg, err: save(cfg)}
	}
}

// startRun starts the workflow unless one is already active.
func (m *Model) startRun() tea.Cmd {
	run, err := m.orch.Start(context.Background())
	if errors.Is(err, workflow.ErrBusy) {
		m.status = "A run is already in progress"
		return nil
	}
	if err != nil {
		m.status = fmt.Sprintf("Could not start: %v", err)
		return nil
	}
	m.run = run
	m.result = nil
	m.summary = ""
	m.lines = nil
	m.status = "Running..."
	m.resizeLog()
	m.refreshLog()
	return tea.Batch(waitForRun(run), m.spinner.Tick)
}

func (m *Model) handleEvent(ev eventbus.Event) {
	switch ev.Type {
	case eventbus.EventStateChanged:
		if sc, ok := ev.Data.(workflow.StateChange); ok && m.isCurrent(ev.RunID) {
			m.state = sc.To
		}
	case eventbus.EventStatusLine:
		if l, ok := ev.Data.(workflow.Line); ok && m.isCurrent(ev.RunID) {
			m.lines = append(m.lines, l)
			if len(m.lines) > maxLogLines {
				m.lines = m.lines[len(m.lines)-maxLogLines:]
			}
			m.refreshLog()
		}
	case eventbus.EventSteamStatus:
		if running, ok := ev.Data.(bool); ok {
			m.steam = &running
		}
	}
}

// isCurrent filters out events of runs this model did not start.
func (m *Model) isCurrent(runID string) bool {
	return m.run != nil && m.run.ID == runID
}

func (m *Model) refreshLog() {
	var b strings.Builder
	for i, l := range m.lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		text := l.String()
		switch {
		case l.Level >= slog.LevelError:
			text = errorLineStyle.Render(text)
		case l.Level >= slog.LevelWarn:
			text = warnLineStyle.Render(text)
		}
		b.WriteString(text)
	}
	m.log.SetContent(b.String())
	m.log.GotoBottom()
}

func (m *Model) resultStatus(res workflow.Result) string {
	switch res.Status() {
	case constants.StatusSuccess:
		if res.Outcome == workflow.OutcomePartialFailure {
			return "Finished with warnings"
		}
		return "Finished"
	case constants.StatusCancelled:
		return "Run cancelled"
	default:
		return "Run failed"
	}
}

// renderSummary renders the result markdown off the update loop.
func (m *Model) renderSummary(res workflow.Result) tea.Cmd {
	width := m.width - 4
	if width < 40 {
		width = 76
	}
	glamourStyle := "light"
	if lipgloss.HasDarkBackground() {
		glamourStyle = "dark"
	}
	md := res.Markdown()
	return func() tea.Msg {
		r, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(glamourStyle),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return summaryMsg{runID: res.RunID, rendered: md}
		}
		out, err := r.Render(md)
		if err != nil {
			return summaryMsg{runID: res.RunID, rendered: md}
		}
		return summaryMsg{runID: res.RunID, rendered: strings.Trim(out, "\n")}
	}
}
