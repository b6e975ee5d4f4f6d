//go:build !windows

package util

import (
	"errors"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecWithOutput_TrimsProcessTable(t *testing.T) {
	out, err := ExecWithOutput("", "sh", "-c", `printf '  1 Ss init\n 42 S  steam\n\n'`)

	require.NoError(t, err)
	assert.Equal(t, "1 Ss init\n 42 S  steam", out)
}

func TestExecWithOutput_ErrorCarriesStderr(t *testing.T) {
	_, err := ExecWithOutput("", "sh", "-c", "echo 'ps: illegal option -- q' >&2; exit 1")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "sh: exit status 1: ps: illegal option -- q")
	assert.False(t, IsPermanent(err), "a failing tool may succeed on the next attempt")

	var exitErr *exec.ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 1, exitErr.ExitCode())
}

func TestExecWithOutput_MissingToolIsPermanent(t *testing.T) {
	_, err := ExecWithOutput("", "srmauto-no-such-tool-xyz", "-axo", "pid=")

	require.Error(t, err)
	assert.True(t, IsPermanent(err))
	assert.True(t, errors.Is(err, exec.ErrNotFound))
	assert.Contains(t, err.Error(), "srmauto-no-such-tool-xyz")
}

func TestExecWithOutput_WorkDir(t *testing.T) {
	dir := t.TempDir()
	out, err := ExecWithOutput(dir, "pwd")

	require.NoError(t, err)
	// Temp dirs can sit behind a symlink on macOS.
	want, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	got, err := filepath.EvalSymlinks(out)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestExecRun(t *testing.T) {
	assert.NoError(t, ExecRun("", "sh", "-c", "echo discarded"))

	err := ExecRun("", "sh", "-c", "echo 'taskkill: access denied' >&2; exit 5")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access denied")
}
