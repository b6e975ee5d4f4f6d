// Package process finds and stops OS processes by name.
//
// The Terminator enumerates matching processes, asks each to exit, waits out
// a grace period and then force-kills survivors. It never fails as a whole
// because one process would not die: every outcome is tallied in a Report.
// OS access goes through the Table interface so the algorithm can be tested
// against a fake process table.
package process

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// Sentinel errors returned by Table implementations.
var (
	// ErrNotFound means the PID no longer refers to a process.
	ErrNotFound = errors.New("process not found")

	// ErrAccessDenied means the caller may not signal the process.
	ErrAccessDenied = errors.New("access denied")
)

// Info describes one entry of the OS process table.
type Info struct {
	PID  int
	Name string // image name (comm on Unix, image name on Windows)
}

// Table is the OS process table as the Terminator sees it.
type Table interface {
	// List returns a fresh snapshot of running processes.
	List() ([]Info, error)

	// Terminate asks a process to exit (SIGTERM, taskkill without /F).
	Terminate(pid int) error

	// Kill forcibly ends a process (SIGKILL, TerminateProcess).
	Kill(pid int) error

	// Alive reports whether the process still exists. Zombies count as dead.
	Alive(pid int) bool
}

// Target selects the processes to stop and how hard to try.
type Target struct {
	// Pattern matches image names case-insensitively as a substring.
	Pattern string

	// Names match image names exactly, ignoring case and a .exe suffix.
	Names []string

	// Grace is how long to wait after the termination request.
	Grace time.Duration

	// Force escalates to a forced kill once Grace expires.
	Force bool
}

// Matches reports whether an image name is selected by the target.
func (t Target) Matches(name string) bool {
	base := strings.ToLower(filepath.Base(strings.ReplaceAll(name, `\`, "/")))
	if base == "" || base == "." || base == "/" {
		return false
	}
	if p := strings.ToLower(strings.TrimSpace(t.Pattern)); p != "" && strings.Contains(base, p) {
		return true
	}
	stem := strings.TrimSuffix(base, ".exe")
	for _, n := range t.Names {
		if strings.TrimSuffix(strings.ToLower(strings.TrimSpace(n)), ".exe") == stem {
			return true
		}
	}
	return false
}

// String describes the target for logs.
func (t Target) String() string {
	var parts []string
	if t.Pattern != "" {
		parts = append(parts, fmt.Sprintf("*%s*", t.Pattern))
	}
	parts = append(parts, t.Names...)
	return strings.Join(parts, ", ")
}

// Reason classifies why a process could not be stopped.
type Reason string

const (
	ReasonNotFound     Reason = "not-found"
	ReasonAccessDenied Reason = "access-denied"
	ReasonTimeout      Reason = "timeout"
	ReasonError        Reason = "error"
)

// Failure records one process that could not be stopped.
type Failure struct {
	PID    int
	Name   string
	Reason Reason
	Err    error
}

// String renders the failure as a status line.
func (f Failure) String() string {
	if f.Err != nil {
		return fmt.Sprintf("%s (PID %d): %s: %v", f.Name, f.PID, f.Reason, f.Err)
	}
	return fmt.Sprintf("%s (PID %d): %s", f.Name, f.PID, f.Reason)
}

// Report summarizes one StopAll/Stop call.
type Report struct {
	Matched     int
	Terminated  int // exited after the graceful request (or before it)
	ForceKilled int
	Failures    []Failure
	Duration    time.Duration

	// Err is set when the process table could not be read at all.
	Err error
}

// Failed returns the number of processes that could not be stopped.
func (r Report) Failed() int {
	return len(r.Failures)
}

// Clean reports whether every matched process is gone.
func (r Report) Clean() bool {
	return r.Err == nil && len(r.Failures) == 0
}

// Summary renders the counts as a single status line.
func (r Report) Summary() string {
	if r.Err != nil {
		return fmt.Sprintf("could not list processes: %v", r.Err)
	}
	if r.Matched == 0 {
		return "no matching processes running"
	}
	return fmt.Sprintf("%d matched: %d terminated, %d force-killed, %d failed",
		r.Matched, r.Terminated, r.ForceKilled, r.Failed())
}

func classify(err error) Reason {
	switch {
	case errors.Is(err, ErrNotFound):
		return ReasonNotFound
	case errors.Is(err, ErrAccessDenied):
		return ReasonAccessDenied
	default:
		return ReasonError
	}
}
