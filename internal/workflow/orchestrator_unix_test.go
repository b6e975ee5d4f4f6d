//go:build !windows

package workflow

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steveyegge/srmauto/internal/app"
	"github.com/steveyegge/srmauto/internal/config"
	"github.com/steveyegge/srmauto/internal/runner"
)

func scriptOrchestrator(t *testing.T, body string) *Orchestrator {
	t.Helper()
	path := filepath.Join(t.TempDir(), "steam-rom-manager")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0755))

	cfg := config.Default()
	cfg.SRMPath = path
	cfg.TimeoutSRM = 10
	actx := app.New(cfg, nil)
	return New(actx, &fakeTerminator{}, runner.New(actx), nil)
}

func TestRun_ScriptPrintsDone(t *testing.T) {
	o := scriptOrchestrator(t, "echo Done")

	run, err := o.Start(context.Background())
	require.NoError(t, err)
	res := run.Wait()

	assert.Equal(t, Completed, res.State)
	require.NotNil(t, res.Tool)
	assert.Equal(t, "Done", strings.TrimSpace(res.Tool.Stdout))
}

func TestRun_ScriptExitsTwo(t *testing.T) {
	o := scriptOrchestrator(t, "echo 'cannot read userdata' >&2; exit 2")

	run, err := o.Start(context.Background())
	require.NoError(t, err)
	res := run.Wait()

	assert.Equal(t, Failed, res.State)
	assert.Equal(t, ToolNonZeroExit, res.Kind())
	require.NotNil(t, res.Tool)
	assert.Equal(t, 2, res.Tool.ExitCode)
	assert.Contains(t, res.ShortError(), "cannot read userdata")
}
