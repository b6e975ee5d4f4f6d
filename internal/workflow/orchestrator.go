// Package workflow sequences the Steam shutdown and the Steam ROM Manager
// invocation as a small state machine:
//
//	Idle → KillingSteam → RunningTool → Completed | Failed
//
// Every transition and status line is published on the event bus; nothing
// is shared with the presentation layer besides those events and the
// Result returned by Run.Wait.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/steveyegge/srmauto/internal/app"
	"github.com/steveyegge/srmauto/internal/config"
	"github.com/steveyegge/srmauto/internal/constants"
	"github.com/steveyegge/srmauto/internal/eventbus"
	"github.com/steveyegge/srmauto/internal/process"
	"github.com/steveyegge/srmauto/internal/runner"
	"github.com/steveyegge/srmauto/internal/telemetry"
)

// Terminator stops the processes selected by a target.
type Terminator interface {
	Stop(ctx context.Context, target process.Target) process.Report
}

// ToolRunner runs an external executable.
type ToolRunner interface {
	Run(ctx context.Context, inv runner.Invocation) (runner.Result, error)
}

// Orchestrator runs at most one workflow at a time.
type Orchestrator struct {
	term Terminator
	tool ToolRunner
	bus  *eventbus.Bus
	now  func() time.Time

	mu           sync.Mutex
	actx         app.Context
	notFoundHint string
	state        State
	active       *Run
	last         *Result
}

// New returns an idle Orchestrator. A nil bus gets a private one.
func New(actx app.Context, term Terminator, tool ToolRunner, bus *eventbus.Bus) *Orchestrator {
	if bus == nil {
		bus = eventbus.New()
	}
	return &Orchestrator{
		term: term,
		tool: tool,
		bus:  bus,
		now:  time.Now,
		actx: actx,

		notFoundHint: ToolNotFoundHint,
	}
}

// Bus returns the bus events are published on.
func (o *Orchestrator) Bus() *eventbus.Bus {
	return o.bus
}

// State returns the current state. Between runs it is Idle.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Last returns the result of the most recent finished run.
func (o *Orchestrator) Last() (Result, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.last == nil {
		return Result{}, false
	}
	return *o.last, true
}

// Reconfigure swaps the settings used by future runs.
func (o *Orchestrator) Reconfigure(actx app.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.active != nil {
		return ErrBusy
	}
	o.actx = actx
	return nil
}

// SetToolNotFoundHint replaces the advice attached to a ToolNotFound
// failure in future runs.
func (o *Orchestrator) SetToolNotFoundHint(hint string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.notFoundHint = hint
}

// Run is the handle of one started workflow run.
type Run struct {
	ID string

	cancel context.CancelFunc
	done   chan struct{}
	result Result
}

// Cancel asks the run to stop. A running tool is killed before the run
// settles as Failed with kind Cancelled.
func (r *Run) Cancel() {
	r.cancel()
}

// Done is closed once the run has finished.
func (r *Run) Done() <-chan struct{} {
	return r.done
}

// Wait blocks until the run finishes and returns its result.
func (r *Run) Wait() Result {
	<-r.done
	return r.result
}

// Shutdown cancels the active run, if any, and waits until it has settled,
// so a running Steam ROM Manager is killed before the caller exits. It
// reports whether a run was active.
func (o *Orchestrator) Shutdown() (Result, bool) {
	o.mu.Lock()
	run := o.active
	o.mu.Unlock()
	if run == nil {
		return Result{}, false
	}
	run.Cancel()
	return run.Wait(), true
}

// Start begins a run on a background goroutine. It returns ErrBusy while
// another run is active; runs are never queued.
func (o *Orchestrator) Start(ctx context.Context) (*Run, error) {
	o.mu.Lock()
	if o.active != nil {
		o.mu.Unlock()
		return nil, ErrBusy
	}
	runCtx, cancel := context.WithCancel(ctx)
	run := &Run{
		ID:     uuid.NewString(),
		cancel: cancel,
		done:   make(chan struct{}),
	}
	o.active = run
	cfg := o.actx.Settings().Clone()
	log := o.actx.Log().With("component", "workflow", "run_id", run.ID)
	hint := o.notFoundHint
	o.mu.Unlock()

	e := &execution{
		o:            o,
		run:          run,
		cfg:          cfg,
		log:          log,
		notFoundHint: hint,
		res:          Result{RunID: run.ID, Started: o.now()},
	}
	e.log.Info("workflow started")
	e.transition(runCtx, KillingSteam)

	go e.execute(runCtx)
	return run, nil
}

// execution is the state of one run, owned by its goroutine.
type execution struct {
	o   *Orchestrator
	run *Run
	cfg *config.Config
	log *slog.Logger

	notFoundHint string

	// mu guards res.Lines, which tool output callbacks append to.
	mu  sync.Mutex
	res Result
}

func (e *execution) execute(ctx context.Context) {
	defer e.run.cancel()

	err := e.safeSteps(ctx)
	e.finish(ctx, err)
}

// safeSteps converts a panic in either step into an UnexpectedError.
func (e *execution) safeSteps(ctx context.Context) (err error) {
	defer func() {
		if p := recover(); p != nil {
			e.log.Error("workflow panicked", "panic", p, "stack", string(debug.Stack()))
			err = newError(UnexpectedError, fmt.Errorf("panic: %v", p), "unexpected error")
		}
	}()
	return e.steps(ctx)
}

func (e *execution) steps(ctx context.Context) error {
	partial, err := e.killSteam(ctx)
	if err != nil {
		return err
	}

	e.transition(ctx, RunningTool)
	if err := e.runTool(ctx); err != nil {
		return err
	}

	if partial != "" {
		e.res.Outcome = OutcomePartialFailure
		e.res.Reason = partial
	} else {
		e.res.Outcome = OutcomeSuccess
	}
	return nil
}

// killSteam returns a non-empty reason when stubborn processes were tolerated.
func (e *execution) killSteam(ctx context.Context) (string, error) {
	target := process.Target{
		Pattern: e.cfg.SteamPattern,
		Names:   e.cfg.SteamProcesses,
		Grace:   e.cfg.Grace(),
		Force:   e.cfg.ForceKill,
	}
	e.line(slog.LevelInfo, "Stopping Steam (%s)...", target)

	killCtx, cancel := context.WithTimeout(ctx, e.cfg.SteamTimeout())
	report := e.o.term.Stop(killCtx, target)
	cancel()
	e.res.Termination = report

	if ctx.Err() != nil {
		return "", newError(Cancelled, ctx.Err(), "cancelled while stopping Steam")
	}
	if report.Err != nil {
		return "", newError(UnexpectedError, report.Err, "could not list running processes")
	}

	if report.Matched == 0 {
		e.line(slog.LevelInfo, "Steam is not running")
	} else {
		e.line(slog.LevelInfo, "Steam: %s", report.Summary())
	}
	if report.Failed() == 0 {
		return "", nil
	}

	for _, f := range report.Failures {
		e.line(slog.LevelWarn, "Could not stop %s", f)
	}
	reason := fmt.Sprintf("%d Steam process(es) could not be stopped", report.Failed())
	if e.cfg.StrictTermination {
		return "", newError(ProcessTerminationPartialFailure, nil, "%s", reason)
	}
	e.line(slog.LevelWarn, "Some Steam processes are stubborn but usually safe to proceed")
	return reason, nil
}

func (e *execution) runTool(ctx context.Context) error {
	inv := runner.Invocation{
		Path:    e.cfg.ResolveSRMPath(),
		Args:    e.cfg.SRMArgs,
		Timeout: e.cfg.SRMTimeout(),
		OnLine: func(_ runner.Stream, line string) {
			if strings.TrimSpace(line) != "" {
				e.line(slog.LevelInfo, "  %s", line)
			}
		},
	}
	e.line(slog.LevelInfo, "Running Steam ROM Manager: %s", strings.TrimSpace(inv.Path+" "+strings.Join(inv.Args, " ")))

	res, err := e.o.tool.Run(ctx, inv)
	if err == nil || res.PID != 0 {
		e.res.Tool = &res
	}

	var nf *runner.NotFoundError
	switch {
	case errors.As(err, &nf):
		we := newError(ToolNotFound, err, "Steam ROM Manager not found")
		we.Hint = e.notFoundHint
		return we
	case err != nil && ctx.Err() != nil:
		return newError(Cancelled, err, "cancelled while Steam ROM Manager was running")
	case err != nil:
		return newError(UnexpectedError, err, "running Steam ROM Manager")
	case res.TimedOut:
		return newError(ToolTimedOut, nil, "Steam ROM Manager did not finish within %s", inv.Timeout)
	case res.ExitCode != 0:
		detail := strings.TrimSpace(res.Stderr)
		if detail == "" {
			return newError(ToolNonZeroExit, nil, "Steam ROM Manager exited with code %d", res.ExitCode)
		}
		return newError(ToolNonZeroExit, errors.New(detail), "Steam ROM Manager exited with code %d", res.ExitCode)
	}

	e.line(slog.LevelInfo, "Steam ROM Manager finished in %s", res.Duration.Round(100*time.Millisecond))
	return nil
}

func (e *execution) finish(ctx context.Context, err error) {
	final := Completed
	if err != nil {
		final = Failed
		e.res.Outcome = OutcomeFailure
		e.res.Err = err
		e.res.Reason = string(KindOf(err))
		e.log.Error("workflow failed", "kind", KindOf(err), "error", err)
		e.line(slog.LevelError, "Failed: %s", Truncate(err.Error(), constants.MaxDisplayError))
		var we *Error
		if errors.As(err, &we) && we.Hint != "" {
			e.line(slog.LevelInfo, "Hint: %s", we.Hint)
		}
	} else {
		e.line(slog.LevelInfo, "Done")
	}

	e.res.State = final
	e.res.Finished = e.o.now()
	e.transition(ctx, final)

	telemetry.RecordWorkflow(context.WithoutCancel(ctx), e.res.RunID, string(e.res.Outcome), string(KindOf(err)),
		float64(e.res.Duration().Milliseconds()), err)
	e.log.Info("workflow finished", "outcome", e.res.Outcome, "duration", e.res.Duration())

	e.mu.Lock()
	res := e.res
	res.Lines = append([]Line(nil), e.res.Lines...)
	e.mu.Unlock()
	e.o.bus.PublishFinished(e.run.ID, res)

	e.o.mu.Lock()
	e.o.state = Idle
	e.o.active = nil
	e.o.last = &res
	e.o.mu.Unlock()

	e.run.result = res
	close(e.run.done)
}

func (e *execution) transition(ctx context.Context, to State) {
	e.o.mu.Lock()
	from := e.o.state
	e.o.state = to
	e.o.mu.Unlock()

	e.log.Debug("state change", "from", from, "to", to)
	telemetry.RecordStateChange(context.WithoutCancel(ctx), e.run.ID, from.String(), to.String())
	e.o.bus.PublishState(e.run.ID, StateChange{From: from, To: to, At: e.o.now()})
}

func (e *execution) line(level slog.Level, format string, args ...any) {
	l := Line{Time: e.o.now(), Level: level, Text: fmt.Sprintf(format, args...)}
	e.mu.Lock()
	e.res.Lines = append(e.res.Lines, l)
	e.mu.Unlock()
	e.log.Log(context.Background(), level, l.Text)
	e.o.bus.PublishLine(e.run.ID, l)
}
