package lock

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquireRelease(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "srmauto.lock")

	inst, err := Acquire(path, time.Second)
	require.NoError(t, err)
	assert.Equal(t, path, inst.Path())
	assert.FileExists(t, path)

	require.NoError(t, inst.Release())
	require.NoError(t, inst.Release(), "second release is a no-op")

	again, err := Acquire(path, time.Second)
	require.NoError(t, err)
	require.NoError(t, again.Release())
}

func TestAcquire_Held(t *testing.T) {
	path := filepath.Join(t.TempDir(), "srmauto.lock")

	first, err := Acquire(path, time.Second)
	require.NoError(t, err)
	defer first.Release()

	// flock locks are per open file description, so a second handle in the
	// same process contends like another instance would.
	start := time.Now()
	_, err = Acquire(path, 300*time.Millisecond)
	assert.ErrorIs(t, err, ErrHeld)
	assert.GreaterOrEqual(t, time.Since(start), 250*time.Millisecond)
}

func TestRelease_Nil(t *testing.T) {
	var inst *Instance
	assert.NoError(t, inst.Release())
}
