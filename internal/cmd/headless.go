package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/steveyegge/srmauto/internal/eventbus"
	"github.com/steveyegge/srmauto/internal/exitcode"
	"github.com/steveyegge/srmauto/internal/style"
	"github.com/steveyegge/srmauto/internal/workflow"
)

// shutdownSignals end srmauto. Each cancels the active run, which kills
// Steam ROM Manager before the process exits.
var shutdownSignals = []os.Signal{os.Interrupt, syscall.SIGTERM, syscall.SIGHUP}

// runHeadless runs the workflow once, printing status lines as they arrive
// and a summary at the end. It returns the exit code of the outcome.
func runHeadless(ctx context.Context, sess *session, out io.Writer) int {
	ctx, stop := signal.NotifyContext(ctx, shutdownSignals...)
	defer stop()

	sess.orch.SetToolNotFoundHint(workflow.HeadlessToolNotFoundHint)

	events, unsub := sess.bus.Subscribe()
	defer unsub()

	run, err := sess.orch.Start(ctx)
	if err != nil {
		fmt.Fprintf(out, "%s %v\n", style.Error.Render("Error:"), err)
		return exitcode.ErrBusy
	}

	p := &printer{out: out, runID: run.ID}
	p.follow(events, run.Done())

	res := run.Wait()
	printSummary(out, res, sess.emoji)
	return res.ExitCode()
}

// printer writes the status lines of one run.
type printer struct {
	out   io.Writer
	runID string
}

// follow prints events until the run finishes. Events still buffered when
// the run is done are drained so no line is lost.
func (p *printer) follow(events <-chan eventbus.Event, done <-chan struct{}) {
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			if p.handle(ev) {
				return
			}
		case <-done:
			for {
				select {
				case ev, ok := <-events:
					if !ok || p.handle(ev) {
						return
					}
				default:
					return
				}
			}
		}
	}
}

// handle prints one event and reports whether it ended the run.
func (p *printer) handle(ev eventbus.Event) bool {
	if ev.RunID != p.runID {
		return false
	}
	switch ev.Type {
	case eventbus.EventStatusLine:
		if l, ok := ev.Data.(workflow.Line); ok {
			fmt.Fprintln(p.out, renderLine(l))
		}
	case eventbus.EventStateChanged:
		if sc, ok := ev.Data.(workflow.StateChange); ok && sc.To.Active() {
			fmt.Fprintln(p.out, style.Accent.Render("==> "+sc.To.Label()))
		}
	case eventbus.EventRunFinished:
		return true
	}
	return false
}

func renderLine(l workflow.Line) string {
	text := l.String()
	switch {
	case l.Level >= slog.LevelError:
		return style.Error.Render(text)
	case l.Level >= slog.LevelWarn:
		return style.Warning.Render(text)
	default:
		return text
	}
}

// printSummary writes the final outcome, with a table of the Steam
// processes that survived termination.
func printSummary(out io.Writer, res workflow.Result, emoji bool) {
	fmt.Fprintln(out)
	fmt.Fprintf(out, "%s  %s\n", style.Bold.Render("Result:"), style.StatusLabel(res.Status(), emoji))
	fmt.Fprintf(out, "%s  %s\n", style.Dim.Render("Run:   "), res.RunID)
	fmt.Fprintf(out, "%s  %s\n", style.Dim.Render("Time:  "), res.Duration().Round(100*time.Millisecond))
	fmt.Fprintf(out, "%s  %s\n", style.Dim.Render("Steam: "), res.Termination.Summary())
	if res.Tool != nil {
		tool := "exit code " + strconv.Itoa(res.Tool.ExitCode)
		if res.Tool.TimedOut {
			tool = "timed out"
		}
		fmt.Fprintf(out, "%s  %s\n", style.Dim.Render("SRM:   "), tool)
	}

	if len(res.Termination.Failures) > 0 {
		tbl := style.NewTable(
			style.Column{Name: "PID", Width: 8, Align: style.AlignRight},
			style.Column{Name: "PROCESS", Width: 24},
			style.Column{Name: "REASON", Width: 16},
		)
		for _, f := range res.Termination.Failures {
			tbl.AddRow(strconv.Itoa(f.PID), f.Name, string(f.Reason))
		}
		fmt.Fprintln(out)
		fmt.Fprintln(out, style.Warning.Render("Steam processes still running:"))
		fmt.Fprint(out, tbl.Render())
	}

	if res.Reason != "" && res.Outcome == workflow.OutcomePartialFailure {
		fmt.Fprintf(out, "\n%s %s\n", style.Warning.Render("Warning:"), res.Reason)
	}
	if msg := res.ShortError(); msg != "" {
		fmt.Fprintf(out, "\n%s %s\n", style.Error.Render("Error:"), msg)
	}
	if hint := res.Hint(); hint != "" {
		fmt.Fprintf(out, "%s %s\n", style.Dim.Render("Hint:"), hint)
	}
}
