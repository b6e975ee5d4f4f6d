package workflow

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/steveyegge/srmauto/internal/constants"
	"github.com/steveyegge/srmauto/internal/exitcode"
	"github.com/steveyegge/srmauto/internal/process"
	"github.com/steveyegge/srmauto/internal/runner"
)

// Outcome is the tagged result of a run.
type Outcome string

const (
	OutcomeSuccess        Outcome = "success"
	OutcomePartialFailure Outcome = "partial_failure"
	OutcomeFailure        Outcome = "failure"
)

// Line is one timestamped status line.
type Line struct {
	Time  time.Time
	Level slog.Level
	Text  string
}

func (l Line) String() string {
	return l.Time.Format("15:04:05") + " " + l.Text
}

// StateChange is the payload of a state transition event.
type StateChange struct {
	From State
	To   State
	At   time.Time
}

// Result is everything a finished run produced.
type Result struct {
	RunID   string
	State   State // Completed or Failed
	Outcome Outcome
	Reason  string // why the outcome is not a plain success
	Err     error  // *Error when the run failed

	Termination process.Report
	Tool        *runner.Result // nil when the tool never started

	Started  time.Time
	Finished time.Time
	Lines    []Line
}

// Kind returns the failure kind, or ProcessTerminationPartialFailure for a
// tolerated partial failure.
func (r Result) Kind() Kind {
	if r.Err != nil {
		return KindOf(r.Err)
	}
	if r.Outcome == OutcomePartialFailure {
		return ProcessTerminationPartialFailure
	}
	return KindNone
}

// Duration is the wall-clock time of the run.
func (r Result) Duration() time.Duration {
	return r.Finished.Sub(r.Started)
}

// Hint returns remediation advice for the failure, if any.
func (r Result) Hint() string {
	var we *Error
	if errors.As(r.Err, &we) {
		return we.Hint
	}
	return ""
}

// ShortError returns the error abbreviated for display. The full text is
// only written to the log.
func (r Result) ShortError() string {
	if r.Err == nil {
		return ""
	}
	return Truncate(r.Err.Error(), constants.MaxDisplayError)
}

// Truncate shortens s to at most max runes, marking the cut with "…".
func Truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "…"
}

// Status maps the result onto the presentation status names.
func (r Result) Status() string {
	switch {
	case r.Kind() == Cancelled:
		return constants.StatusCancelled
	case r.Outcome == OutcomeFailure:
		return constants.StatusFailed
	default:
		return constants.StatusSuccess
	}
}

// ExitCode maps the result onto a process exit code for headless runs.
func (r Result) ExitCode() int {
	if r.Outcome != OutcomeFailure {
		return exitcode.Success
	}
	switch r.Kind() {
	case ToolNotFound:
		return exitcode.ErrToolNotFound
	case ToolTimedOut:
		return exitcode.ErrTimeout
	case ToolNonZeroExit:
		return exitcode.ErrToolFailed
	case ProcessTerminationPartialFailure:
		return exitcode.ErrStubbornSteam
	case Cancelled:
		return exitcode.ErrCancelled
	default:
		return exitcode.ErrInternal
	}
}

// Markdown renders a short run summary.
func (r Result) Markdown() string {
	var b strings.Builder

	switch r.Outcome {
	case OutcomeSuccess:
		b.WriteString("## Shortcuts updated\n\n")
	case OutcomePartialFailure:
		b.WriteString("## Shortcuts updated, with warnings\n\n")
	default:
		fmt.Fprintf(&b, "## Run failed: %s\n\n", strings.ReplaceAll(string(r.Kind()), "_", " "))
	}

	fmt.Fprintf(&b, "- **Run:** `%s`\n", r.RunID)
	fmt.Fprintf(&b, "- **Duration:** %s\n", r.Duration().Round(100*time.Millisecond))
	fmt.Fprintf(&b, "- **Steam:** %s\n", r.Termination.Summary())
	if r.Tool != nil {
		switch {
		case r.Tool.TimedOut:
			fmt.Fprintf(&b, "- **Steam ROM Manager:** timed out after %s\n", r.Tool.Duration.Round(time.Second))
		default:
			fmt.Fprintf(&b, "- **Steam ROM Manager:** exit code %d in %s\n", r.Tool.ExitCode, r.Tool.Duration.Round(100*time.Millisecond))
		}
	}

	if r.Reason != "" {
		fmt.Fprintf(&b, "\n> %s\n", r.Reason)
	}
	if msg := r.ShortError(); msg != "" {
		fmt.Fprintf(&b, "\n```\n%s\n```\n", msg)
	}
	if hint := r.Hint(); hint != "" {
		fmt.Fprintf(&b, "\n**Hint:** %s\n", hint)
	}
	return b.String()
}
