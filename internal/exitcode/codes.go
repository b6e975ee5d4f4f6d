// Package exitcode defines structured exit codes for srmauto.
//
// The interactive UI only ever exits with Success or ErrGeneral. Headless
// runs (--headless) map workflow failures to the more specific codes below
// so scripts and schedulers can react without parsing output.
//
// # Exit Code Ranges
//
//   - 0: Success
//   - 1-9: General errors (startup, usage, internal)
//   - 10-19: Resource not found (Steam ROM Manager executable)
//   - 40-49: Timeout errors
//   - 50-59: Conflict/state errors
//   - 60-69: External tool failures
//
// # Usage
//
//	return exitcode.Wrap(exitcode.ErrGeneral, "startup failed", err)
//	code := exitcode.Code(err) // ErrGeneral for non-coded errors
package exitcode

import (
	"errors"
	"fmt"
)

const (
	// Success indicates a normal close.
	Success = 0

	// General errors (1-9)
	ErrGeneral  = 1 // Startup dependency failure or unhandled error
	ErrUsage    = 2 // Invalid arguments or usage
	ErrInternal = 3 // Internal error (bug)

	// Resource not found (10-19)
	ErrToolNotFound = 10 // Steam ROM Manager executable missing or invalid

	// Timeout errors (40-49)
	ErrTimeout = 40 // Steam ROM Manager timed out

	// Conflict/state errors (50-59)
	ErrBusy          = 52 // A workflow run is already active
	ErrStubbornSteam = 53 // Steam processes survived termination (strict mode)
	ErrCancelled     = 54 // Run cancelled by the user

	// External tool failures (60-69)
	ErrToolFailed = 60 // Steam ROM Manager exited non-zero
)

// Error wraps an error with a specific exit code.
type Error struct {
	Code    int
	Message string
	Cause   error
}

// Error returns the error message.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Wrap wraps an existing error with a code and message.
func Wrap(code int, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// Code extracts the exit code from an error.
// Returns ErrGeneral (1) if the error doesn't have a code.
func Code(err error) int {
	if err == nil {
		return Success
	}
	var coded *Error
	if errors.As(err, &coded) {
		return coded.Code
	}
	return ErrGeneral
}
