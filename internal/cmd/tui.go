package cmd

import (
	"context"
	"errors"
	"fmt"
	"os/signal"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/steveyegge/srmauto/internal/constants"
	"github.com/steveyegge/srmauto/internal/eventbus"
	"github.com/steveyegge/srmauto/internal/tui/dashboard"
)

// runTUI opens the dashboard and blocks until the user quits.
func runTUI(ctx context.Context, sess *session, runNow bool) error {
	ctx, stop := signal.NotifyContext(ctx, shutdownSignals...)
	defer stop()

	cfg := sess.Config()

	poller := eventbus.NewStatusPoller(sess.bus, steamProbe(sess, cfg.SteamPattern),
		constants.SteamStatusInterval, sess.logger.With("component", "steam-status"))
	poller.Start(ctx)
	defer poller.Stop()

	m := dashboard.New(dashboard.Options{
		Orchestrator:   sess.orch,
		Config:         cfg,
		AutoStart:      runNow || cfg.AutoStart,
		Save:           sess.SaveConfig,
		DarkBackground: sess.darkBackground,
		Emoji:          sess.emoji,
	})

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return closeDashboard(ctx, sess, err)
}

// closeDashboard stops a run the dashboard left behind and maps the error
// of the program loop. Being interrupted or signalled is a normal close.
func closeDashboard(ctx context.Context, sess *session, err error) error {
	if res, ok := sess.orch.Shutdown(); ok {
		sess.logger.Warn("cancelled active run on exit", "run_id", res.RunID, "outcome", res.Outcome)
	}

	switch {
	case err == nil:
	case errors.Is(err, tea.ErrInterrupted),
		errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil:
		sess.logger.Info("dashboard stopped by signal", "error", err)
	default:
		sess.logger.Error("dashboard failed", "error", err)
		return startupError(sess.dirs, fmt.Errorf("running dashboard: %w", err))
	}
	sess.logger.Info("dashboard closed")
	return nil
}

// steamProbe reports whether any Steam process is running.
func steamProbe(sess *session, pattern string) eventbus.Probe {
	return func(ctx context.Context) (bool, error) {
		return sess.term.Running(ctx, pattern)
	}
}
