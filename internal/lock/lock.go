// Package lock provides the single-instance guard for srmauto.
//
// Two copies of the app terminating Steam and rewriting shortcuts at the
// same time would fight over the same process table and shortcut files, so
// the second instance refuses to start. The lock is an advisory flock held
// for the life of the process; the OS releases it if the process dies.
package lock

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

// ErrHeld is returned when another instance holds the lock.
var ErrHeld = errors.New("another srmauto instance is running")

// DefaultTimeout is how long Acquire retries before giving up.
const DefaultTimeout = 2 * time.Second

const retryInterval = 100 * time.Millisecond

// Instance is a held single-instance lock.
type Instance struct {
	fl *flock.Flock
}

// Acquire takes the lock at path, retrying for up to timeout.
// The caller must call Release when done.
func Acquire(path string, timeout time.Duration) (*Instance, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating lock directory: %w", err)
	}

	fl := flock.New(path)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	locked, err := fl.TryLockContext(ctx, retryInterval)
	if err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return nil, fmt.Errorf("lock acquisition failed: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("%w (lock held: %s)", ErrHeld, path)
	}

	return &Instance{fl: fl}, nil
}

// Path returns the lock file path.
func (i *Instance) Path() string {
	return i.fl.Path()
}

// Release unlocks. Safe to call more than once.
func (i *Instance) Release() error {
	if i == nil || i.fl == nil {
		return nil
	}
	return i.fl.Unlock()
}
