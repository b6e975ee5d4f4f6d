//go:build !windows

package cmd

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steveyegge/srmauto/internal/workflow"
)

func TestSession_SaveConfigWhileRunningWritesNothing(t *testing.T) {
	dirs := testDirs(t)
	tool := filepath.Join(t.TempDir(), "srm.sh")
	require.NoError(t, os.WriteFile(tool, []byte("#!/bin/sh\nsleep 30\n"), 0755))
	t.Setenv("SRM_SRM_PATH", tool)
	t.Setenv("SRM_STEAM_PATTERN", "zz-no-such-steam-process")
	t.Setenv("SRM_STEAM_PROCESSES", "zz-no-such-steam-process")

	sess, err := openSessionIn(context.Background(), dirs, rootOptions{}, io.Discard)
	require.NoError(t, err)
	defer sess.Close()
	before, err := os.ReadFile(dirs.ConfigFile())
	require.NoError(t, err)

	run, err := sess.orch.Start(context.Background())
	require.NoError(t, err)
	defer func() {
		run.Cancel()
		run.Wait()
	}()

	cfg := sess.Config().Clone()
	cfg.TimeoutSRM = 300
	assert.ErrorIs(t, sess.SaveConfig(cfg), workflow.ErrBusy)

	after, err := os.ReadFile(dirs.ConfigFile())
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after))
	assert.NotEqual(t, 300, sess.Config().TimeoutSRM)
}
