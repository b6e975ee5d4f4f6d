// Package runner launches an external executable with a timeout and
// captures its output.
//
// The child runs in its own process group (a job object on Windows) so a
// timeout or cancellation kills everything it spawned, not just the
// top-level process.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/steveyegge/srmauto/internal/app"
	"github.com/steveyegge/srmauto/internal/telemetry"
)

// ErrNotFound is matched by every *NotFoundError.
var ErrNotFound = errors.New("executable not found")

// NotFoundError reports an executable that cannot be launched.
type NotFoundError struct {
	Path   string
	Reason string
}

func (e *NotFoundError) Error() string {
	if e.Path == "" {
		return "executable not found: " + e.Reason
	}
	return fmt.Sprintf("executable not found: %s %s", e.Path, e.Reason)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// Validate checks that path names an existing executable file without
// starting anything.
func Validate(path string) error {
	if strings.TrimSpace(path) == "" {
		return &NotFoundError{Reason: "no path configured"}
	}
	fi, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return &NotFoundError{Path: path, Reason: "does not exist"}
	case err != nil:
		return &NotFoundError{Path: path, Reason: err.Error()}
	case fi.IsDir():
		return &NotFoundError{Path: path, Reason: "is a directory"}
	}
	if reason := notExecutable(path, fi); reason != "" {
		return &NotFoundError{Path: path, Reason: reason}
	}
	return nil
}

// Stream names the output a line came from.
type Stream string

const (
	Stdout Stream = "stdout"
	Stderr Stream = "stderr"
)

// Invocation describes one run of an external tool.
type Invocation struct {
	Path    string
	Args    []string
	Dir     string        // defaults to the executable's directory
	Timeout time.Duration // zero means no timeout

	// OnLine, if set, receives every output line as it is produced.
	// Calls are serialized.
	OnLine func(stream Stream, line string)
}

// Result is the outcome of a run that got as far as spawning the process.
type Result struct {
	ExitCode int // -1 when the process never exited on its own
	Stdout   string
	Stderr   string
	TimedOut bool
	Duration time.Duration
	PID      int
}

// MaxOutput caps how much of each stream is kept in a Result.
const MaxOutput = 1 << 20

// Runner starts external tools.
type Runner struct {
	log       *slog.Logger
	waitDelay time.Duration
}

// New returns a Runner logging through the app context.
func New(actx app.Context) *Runner {
	return &Runner{
		log:       actx.Log().With("component", "runner"),
		waitDelay: 2 * time.Second,
	}
}

// Run starts the tool and waits for it. A non-zero exit or a timeout is
// reported in the Result, not as an error. Errors are reserved for tools
// that cannot be started (*NotFoundError among them) and for caller
// cancellation, in which case ctx.Err() is returned with the partial result.
func (r *Runner) Run(ctx context.Context, inv Invocation) (Result, error) {
	res, err := r.run(ctx, inv)
	telemetry.RecordToolRun(ctx, filepath.Base(inv.Path), res.ExitCode, res.TimedOut,
		float64(res.Duration.Milliseconds()), err)
	return res, err
}

func (r *Runner) run(ctx context.Context, inv Invocation) (Result, error) {
	res := Result{ExitCode: -1}
	if err := Validate(inv.Path); err != nil {
		return res, err
	}

	runCtx, cancel := ctx, context.CancelFunc(func() {})
	if inv.Timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, inv.Timeout)
	}
	defer cancel()

	cmd := exec.CommandContext(runCtx, inv.Path, inv.Args...)
	cmd.Dir = inv.Dir
	if cmd.Dir == "" {
		cmd.Dir = filepath.Dir(inv.Path)
	}
	g := newGroup(cmd)
	cmd.Cancel = g.kill
	cmd.WaitDelay = r.waitDelay

	out := newOutput(inv.OnLine)
	cmd.Stdout = out.writer(Stdout)
	cmd.Stderr = out.writer(Stderr)

	start := time.Now()
	if err := cmd.Start(); err != nil {
		res.Duration = time.Since(start)
		if errors.Is(err, fs.ErrNotExist) {
			return res, &NotFoundError{Path: inv.Path, Reason: "does not exist"}
		}
		return res, fmt.Errorf("starting %s: %w", inv.Path, err)
	}
	res.PID = cmd.Process.Pid
	if err := g.started(); err != nil {
		r.log.Warn("could not group child processes", "pid", res.PID, "error", err)
	}
	defer g.close()
	r.log.Info("tool started", "path", inv.Path, "args", inv.Args, "pid", res.PID, "timeout", inv.Timeout)

	waitErr := cmd.Wait()
	res.Duration = time.Since(start)
	res.Stdout, res.Stderr = out.finish()

	if waitErr != nil && runCtx.Err() != nil {
		// Kill stragglers that left the group leader's exit behind.
		_ = g.kill()
		if ctx.Err() != nil {
			r.log.Info("tool cancelled", "pid", res.PID, "duration", res.Duration)
			return res, ctx.Err()
		}
		res.TimedOut = true
		r.log.Warn("tool timed out", "pid", res.PID, "timeout", inv.Timeout)
		return res, nil
	}

	var exitErr *exec.ExitError
	switch {
	case waitErr == nil:
		res.ExitCode = 0
	case errors.As(waitErr, &exitErr):
		res.ExitCode = exitErr.ExitCode()
	case errors.Is(waitErr, exec.ErrWaitDelay):
		// Exited, but a grandchild kept the output pipes open.
		res.ExitCode = cmd.ProcessState.ExitCode()
		_ = g.kill()
	default:
		return res, fmt.Errorf("waiting for %s: %w", inv.Path, waitErr)
	}

	r.log.Info("tool exited", "pid", res.PID, "exit_code", res.ExitCode, "duration", res.Duration)
	return res, nil
}
