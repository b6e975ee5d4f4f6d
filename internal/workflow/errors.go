package workflow

import (
	"errors"
	"fmt"
)

// ErrBusy is returned by Start while a run is active.
var ErrBusy = errors.New("a workflow run is already in progress")

// Kind classifies why a run did not fully succeed.
type Kind string

const (
	KindNone                         Kind = ""
	DependencyMissing                Kind = "dependency_missing"
	ProcessTerminationPartialFailure Kind = "process_termination_partial_failure"
	ToolNotFound                     Kind = "tool_not_found"
	ToolTimedOut                     Kind = "tool_timed_out"
	ToolNonZeroExit                  Kind = "tool_nonzero_exit"
	UnexpectedError                  Kind = "unexpected_error"
	Cancelled                        Kind = "cancelled"
)

// Hints telling the user how to fix a missing Steam ROM Manager. The
// dashboard has a settings form; a headless run only has the file and the
// environment.
const (
	ToolNotFoundHint         = "open Settings (s) and set the Steam ROM Manager path"
	HeadlessToolNotFoundHint = "set srm_path in config.toml or the SRM_SRM_PATH environment variable"
)

// Error is a classified workflow failure.
type Error struct {
	Kind Kind
	Msg  string
	Hint string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the Kind of err, or UnexpectedError for unclassified errors.
func KindOf(err error) Kind {
	if err == nil {
		return KindNone
	}
	var we *Error
	if errors.As(err, &we) {
		return we.Kind
	}
	return UnexpectedError
}

func newError(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: err}
}
