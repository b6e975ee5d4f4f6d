package process

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/steveyegge/srmauto/internal/app"
	"github.com/steveyegge/srmauto/internal/constants"
	"github.com/steveyegge/srmauto/internal/telemetry"
	"github.com/steveyegge/srmauto/internal/util"
)

// Terminator stops processes matching a Target.
type Terminator struct {
	table Table
	log   *slog.Logger

	names []string
	grace time.Duration
	force bool

	pollInterval time.Duration
	confirmWait  time.Duration
	listRetry    util.RetryConfig

	// exclude never matches, so the app cannot kill itself or its launcher.
	exclude map[int]bool
}

// NewTerminator returns a Terminator configured from the app context.
// A nil table selects the OS process table.
func NewTerminator(actx app.Context, table Table) *Terminator {
	if table == nil {
		table = NewOSTable()
	}
	cfg := actx.Settings()
	retry := util.DefaultRetryConfig()
	retry.InitialDelay = 200 * time.Millisecond

	return &Terminator{
		table:        table,
		log:          actx.Log().With("component", "terminator"),
		names:        append([]string(nil), cfg.SteamProcesses...),
		grace:        cfg.Grace(),
		force:        cfg.ForceKill,
		pollInterval: constants.PollInterval,
		confirmWait:  constants.KillConfirmWait,
		listRetry:    retry,
		exclude:      map[int]bool{os.Getpid(): true, os.Getppid(): true},
	}
}

// SetPollInterval overrides how often exits are polled.
func (t *Terminator) SetPollInterval(d time.Duration) {
	if d > 0 {
		t.pollInterval = d
	}
}

// SetConfirmWait overrides the wait after a forced kill.
func (t *Terminator) SetConfirmWait(d time.Duration) {
	if d > 0 {
		t.confirmWait = d
	}
}

// Target returns the configured target for a name pattern.
func (t *Terminator) Target(pattern string) Target {
	return Target{
		Pattern: pattern,
		Names:   t.names,
		Grace:   t.grace,
		Force:   t.force,
	}
}

// StopAll stops every process matching pattern or one of the configured
// exact names, using the configured grace period and force flag.
func (t *Terminator) StopAll(ctx context.Context, pattern string) Report {
	return t.Stop(ctx, t.Target(pattern))
}

// Running reports whether any process matches pattern.
func (t *Terminator) Running(ctx context.Context, pattern string) (bool, error) {
	matches, err := t.Find(ctx, t.Target(pattern))
	if err != nil {
		return false, err
	}
	return len(matches) > 0, nil
}

// Find returns the processes selected by target.
func (t *Terminator) Find(ctx context.Context, target Target) ([]Info, error) {
	all, err := util.Retry(ctx, t.listRetry, t.table.List)
	if err != nil {
		return nil, fmt.Errorf("listing processes: %w", err)
	}

	var matches []Info
	for _, p := range all {
		if t.exclude[p.PID] || p.PID <= 0 {
			continue
		}
		if target.Matches(p.Name) {
			matches = append(matches, p)
		}
	}
	return matches, nil
}

// Stop terminates every process selected by target. It never returns early
// because of a single process: each outcome lands in the Report.
func (t *Terminator) Stop(ctx context.Context, target Target) Report {
	start := time.Now()
	report := t.stop(ctx, target)
	report.Duration = time.Since(start)

	telemetry.RecordTermination(ctx, report.Matched, report.Terminated, report.ForceKilled, report.Failed(), report.Err)
	if report.Err != nil {
		t.log.Error("termination aborted", "target", target.String(), "error", report.Err)
	} else {
		t.log.Info("termination finished",
			"target", target.String(),
			"matched", report.Matched,
			"terminated", report.Terminated,
			"force_killed", report.ForceKilled,
			"failed", report.Failed(),
			"duration", report.Duration)
	}
	return report
}

func (t *Terminator) stop(ctx context.Context, target Target) Report {
	matches, err := t.Find(ctx, target)
	if err != nil {
		return Report{Err: err}
	}

	report := Report{Matched: len(matches)}
	if len(matches) == 0 {
		return report
	}

	// Phase 1: ask nicely.
	var pending []Info
	for _, p := range matches {
		err := t.table.Terminate(p.PID)
		switch {
		case err == nil:
			t.log.Debug("sent termination request", "pid", p.PID, "name", p.Name)
			pending = append(pending, p)
		case errors.Is(err, ErrNotFound):
			// Exited between listing and signalling.
			report.Terminated++
		case errors.Is(err, ErrAccessDenied):
			t.log.Warn("termination denied", "pid", p.PID, "name", p.Name, "error", err)
			report.Failures = append(report.Failures, Failure{PID: p.PID, Name: p.Name, Reason: ReasonAccessDenied, Err: err})
		default:
			// Leave it to escalation.
			t.log.Warn("termination request failed", "pid", p.PID, "name", p.Name, "error", err)
			pending = append(pending, p)
		}
	}

	// Phase 2: wait out the grace period.
	survivors := t.waitForExit(ctx, pending, target.Grace)
	report.Terminated += len(pending) - len(survivors)
	if len(survivors) == 0 {
		return report
	}

	if !target.Force {
		for _, p := range survivors {
			report.Failures = append(report.Failures, Failure{PID: p.PID, Name: p.Name, Reason: ReasonTimeout,
				Err: fmt.Errorf("still running after %s", target.Grace)})
		}
		return report
	}

	// Phase 3: force kill the stubborn ones.
	var killed []Info
	for _, p := range survivors {
		err := t.table.Kill(p.PID)
		switch {
		case err == nil:
			t.log.Info("force-killed process", "pid", p.PID, "name", p.Name)
			killed = append(killed, p)
		case errors.Is(err, ErrNotFound) && !t.table.Alive(p.PID):
			report.Terminated++
		default:
			report.Failures = append(report.Failures, Failure{PID: p.PID, Name: p.Name, Reason: classify(err), Err: err})
		}
	}

	// Phase 4: confirm. Bounded independently of ctx so a cancelled run
	// still learns whether the kills landed.
	confirmCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), t.confirmWait)
	defer cancel()
	stubborn := t.waitForExit(confirmCtx, killed, t.confirmWait)
	report.ForceKilled += len(killed) - len(stubborn)
	for _, p := range stubborn {
		report.Failures = append(report.Failures, Failure{PID: p.PID, Name: p.Name, Reason: ReasonTimeout,
			Err: errors.New("still running after forced kill")})
	}

	return report
}

// waitForExit polls until every process has exited, the timeout elapses or
// ctx is done. It returns the processes still alive.
func (t *Terminator) waitForExit(ctx context.Context, procs []Info, timeout time.Duration) []Info {
	alive := t.stillAlive(procs)
	if len(alive) == 0 || timeout <= 0 {
		return alive
	}

	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	ticker := time.NewTicker(t.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return t.stillAlive(alive)
		case <-deadline.C:
			return t.stillAlive(alive)
		case <-ticker.C:
			alive = t.stillAlive(alive)
			if len(alive) == 0 {
				return nil
			}
		}
	}
}

func (t *Terminator) stillAlive(procs []Info) []Info {
	var out []Info
	for _, p := range procs {
		if t.table.Alive(p.PID) {
			out = append(out, p)
		}
	}
	return out
}
