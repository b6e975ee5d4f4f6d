package cmd

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steveyegge/srmauto/internal/config"
	"github.com/steveyegge/srmauto/internal/exitcode"
)

func testDirs(t *testing.T) config.Dirs {
	t.Helper()
	root := t.TempDir()
	return config.Dirs{
		Config: filepath.Join(root, "config"),
		Log:    filepath.Join(root, "logs"),
		State:  filepath.Join(root, "state"),
	}
}

func TestOpenSession_CreatesConfigAndLog(t *testing.T) {
	dirs := testDirs(t)

	sess, err := openSessionIn(context.Background(), dirs, rootOptions{}, io.Discard)
	require.NoError(t, err)
	defer sess.Close()

	assert.FileExists(t, dirs.ConfigFile())
	assert.FileExists(t, dirs.LogFile())
	assert.NotNil(t, sess.orch)
	assert.Equal(t, config.Default().TimeoutSRM, sess.Config().TimeoutSRM)
}

func TestOpenSession_SecondInstanceFails(t *testing.T) {
	dirs := testDirs(t)

	first, err := openSessionIn(context.Background(), dirs, rootOptions{}, io.Discard)
	require.NoError(t, err)
	defer first.Close()

	_, err = openSessionIn(context.Background(), dirs, rootOptions{}, io.Discard)
	require.Error(t, err)
	assert.Equal(t, exitcode.ErrGeneral, exitcode.Code(err))

	data, readErr := os.ReadFile(dirs.ErrorLogFile())
	require.NoError(t, readErr)
	assert.Contains(t, string(data), "another srmauto instance is running")
}

func TestOpenSession_ExplicitConfigMissing(t *testing.T) {
	dirs := testDirs(t)
	opts := rootOptions{configPath: filepath.Join(t.TempDir(), "missing.toml")}

	_, err := openSessionIn(context.Background(), dirs, opts, io.Discard)
	require.Error(t, err)
	assert.Equal(t, exitcode.ErrGeneral, exitcode.Code(err))
	assert.Contains(t, err.Error(), "config file not found")

	data, readErr := os.ReadFile(dirs.ErrorLogFile())
	require.NoError(t, readErr)
	assert.Contains(t, string(data), "missing.toml")
}

func TestOpenSession_BrokenConfigFallsBackToDefaults(t *testing.T) {
	dirs := testDirs(t)
	require.NoError(t, os.MkdirAll(dirs.Config, 0755))
	require.NoError(t, os.WriteFile(dirs.ConfigFile(), []byte("timeout_srm = \"soon\"\n"), 0644))

	var stderr bytes.Buffer
	sess, err := openSessionIn(context.Background(), dirs, rootOptions{}, &stderr)
	require.NoError(t, err)
	defer sess.Close()

	assert.Equal(t, config.Default().TimeoutSRM, sess.Config().TimeoutSRM)
	assert.Contains(t, stderr.String(), "using default settings")
}

func TestSession_SaveConfig(t *testing.T) {
	dirs := testDirs(t)
	sess, err := openSessionIn(context.Background(), dirs, rootOptions{}, io.Discard)
	require.NoError(t, err)
	defer sess.Close()

	cfg := sess.Config().Clone()
	cfg.TimeoutSRM = 300
	require.NoError(t, sess.SaveConfig(cfg))

	assert.Equal(t, 300, sess.Config().TimeoutSRM)
	loaded, err := config.Load(dirs.ConfigFile())
	require.NoError(t, err)
	assert.Equal(t, 300, loaded.TimeoutSRM)
}

func TestSession_SaveConfigKeepsEnvOverridesOutOfFile(t *testing.T) {
	t.Setenv("SRM_SRM_PATH", "/env/steam-rom-manager")
	dirs := testDirs(t)
	sess, err := openSessionIn(context.Background(), dirs, rootOptions{}, io.Discard)
	require.NoError(t, err)
	defer sess.Close()
	require.Equal(t, "/env/steam-rom-manager", sess.Config().SRMPath)

	cfg := sess.Config().Clone()
	cfg.TimeoutSRM = 240
	require.NoError(t, sess.SaveConfig(cfg))

	data, err := os.ReadFile(dirs.ConfigFile())
	require.NoError(t, err)
	assert.NotContains(t, string(data), "/env/steam-rom-manager")
	assert.Contains(t, string(data), "240")

	onDisk, err := config.LoadFile(dirs.ConfigFile())
	require.NoError(t, err)
	assert.Equal(t, config.Default().SRMPath, onDisk.SRMPath)
	assert.Equal(t, "/env/steam-rom-manager", sess.Config().SRMPath, "the override still applies")
}

func TestSession_CloseIsSafeWhenPartial(t *testing.T) {
	s := &session{}
	assert.NotPanics(t, s.Close)
}
