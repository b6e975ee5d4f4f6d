package runner

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steveyegge/srmauto/internal/app"
)

func TestValidate(t *testing.T) {
	dir := t.TempDir()

	err := Validate("")
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "no path configured", nf.Reason)

	err = Validate(filepath.Join(dir, "missing"))
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "does not exist", nf.Reason)
	assert.ErrorIs(t, err, ErrNotFound)

	err = Validate(dir)
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "is a directory", nf.Reason)
}

func TestRun_MissingExecutableSpawnsNothing(t *testing.T) {
	r := New(app.New(nil, nil))
	path := filepath.Join(t.TempDir(), "nope", "srm")

	res, err := r.Run(context.Background(), Invocation{Path: path})

	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, path, nf.Path)
	assert.Contains(t, err.Error(), path)
	assert.Zero(t, res.PID)
	assert.Equal(t, -1, res.ExitCode)
}

func TestOutput_LinesAndCap(t *testing.T) {
	var mu sync.Mutex
	var lines []string
	o := newOutput(func(s Stream, line string) {
		mu.Lock()
		defer mu.Unlock()
		lines = append(lines, string(s)+":"+line)
	})

	_, _ = o.writer(Stdout).Write([]byte("one\r\ntw"))
	_, _ = o.writer(Stderr).Write([]byte("oops\n"))
	_, _ = o.writer(Stdout).Write([]byte("o\nthree"))
	stdout, stderr := o.finish()

	assert.Equal(t, []string{"stdout:one", "stderr:oops", "stdout:two", "stdout:three"}, lines)
	assert.Equal(t, "one\r\ntwo\nthree", stdout)
	assert.Equal(t, "oops\n", stderr)

	big := newOutput(nil)
	chunk := []byte(strings.Repeat("x", 4096))
	for i := 0; i < MaxOutput/len(chunk)+2; i++ {
		_, _ = big.writer(Stdout).Write(chunk)
	}
	stdout, _ = big.finish()
	assert.True(t, strings.HasSuffix(stdout, "[output truncated]"))
	assert.LessOrEqual(t, len(stdout), MaxOutput+len("\n[output truncated]"))
}

func TestNotFoundError(t *testing.T) {
	err := error(&NotFoundError{Path: "/opt/srm", Reason: "is not executable"})
	assert.Equal(t, "executable not found: /opt/srm is not executable", err.Error())
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(errors.New("x"), ErrNotFound))
}
