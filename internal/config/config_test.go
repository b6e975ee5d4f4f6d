package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steveyegge/srmauto/internal/constants"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, constants.AutoDetect, cfg.SRMPath)
	assert.Equal(t, []string{"add"}, cfg.SRMArgs)
	assert.Equal(t, "steam", cfg.SteamPattern)
	assert.True(t, cfg.AutoStart)
	assert.True(t, cfg.ForceKill)
	assert.False(t, cfg.StrictTermination)
	assert.Equal(t, 120*time.Second, cfg.SRMTimeout())
	assert.Equal(t, 30*time.Second, cfg.SteamTimeout())
	assert.Equal(t, 5*time.Second, cfg.Grace())
}

func TestValidate(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"theme case folded", func(c *Config) { c.Theme = "DARK" }, false},
		{"bad theme", func(c *Config) { c.Theme = "neon" }, true},
		{"warn alias", func(c *Config) { c.LogLevel = "WARN" }, false},
		{"bad log level", func(c *Config) { c.LogLevel = "trace" }, true},
		{"steam timeout low", func(c *Config) { c.TimeoutSteam = 4 }, true},
		{"steam timeout high", func(c *Config) { c.TimeoutSteam = 301 }, true},
		{"srm timeout low", func(c *Config) { c.TimeoutSRM = 9 }, true},
		{"srm timeout high", func(c *Config) { c.TimeoutSRM = 601 }, true},
		{"grace zero", func(c *Config) { c.GracePeriod = 0 }, true},
		{"grace beyond steam timeout", func(c *Config) { c.GracePeriod = 31 }, true},
		{"no process selector", func(c *Config) { c.SteamPattern = ""; c.SteamProcesses = nil }, true},
		{"exact names only", func(c *Config) { c.SteamPattern = "" }, false},
		{"srm path is directory", func(c *Config) { c.SRMPath = dir }, true},
		{"srm path missing is allowed", func(c *Config) { c.SRMPath = filepath.Join(dir, "nope") }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidate_Normalizes(t *testing.T) {
	cfg := Default()
	cfg.Theme = " Light "
	cfg.LogLevel = "Warn"

	require.NoError(t, cfg.Validate())
	assert.Equal(t, "light", cfg.Theme)
	assert.Equal(t, "warning", cfg.LogLevel)
}

func TestClone_IsDeep(t *testing.T) {
	cfg := Default()
	clone := cfg.Clone()
	clone.SRMArgs[0] = "remove"
	clone.SteamProcesses = append(clone.SteamProcesses, "extra.exe")

	assert.Equal(t, "add", cfg.SRMArgs[0])
	assert.Len(t, cfg.SteamProcesses, len(constants.DefaultSteamProcesses))
}

func TestResolveSRMPath_Explicit(t *testing.T) {
	cfg := Default()
	cfg.SRMPath = "/opt/srm/srm"
	assert.Equal(t, "/opt/srm/srm", cfg.ResolveSRMPath())
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg := Default()
	cfg.SRMPath = "/opt/srm/srm"
	cfg.SRMArgs = []string{"add", "--verbose"}
	cfg.Theme = "dark"
	cfg.TimeoutSRM = 300
	cfg.StrictTermination = true

	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("theme = \"light\"\ntimeout_srm = 60\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "light", cfg.Theme)
	assert.Equal(t, 60, cfg.TimeoutSRM)
	assert.Equal(t, 30, cfg.TimeoutSteam)
	assert.Equal(t, "steam", cfg.SteamPattern)
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.ErrorIs(t, err, ErrNotExist)
}

func TestLoad_Invalid(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.toml")

	require.NoError(t, os.WriteFile(path, []byte("timeout_srm = 5\n"), 0644))
	_, err := Load(path)
	assert.ErrorContains(t, err, "timeout_srm")

	require.NoError(t, os.WriteFile(path, []byte("theme = [unterminated\n"), 0644))
	_, err = Load(path)
	assert.ErrorContains(t, err, "parsing")
}

func TestLoad_EnvOverride(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, Save(path, Default()))

	t.Setenv("SRM_THEME", "dark")
	t.Setenv("SRM_AUTO_START", "false")
	t.Setenv("SRM_TIMEOUT_SRM", "45")
	t.Setenv("SRM_STEAM_PROCESSES", "steam, steamwebhelper")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "dark", cfg.Theme)
	assert.False(t, cfg.AutoStart)
	assert.Equal(t, 45, cfg.TimeoutSRM)
	assert.Equal(t, []string{"steam", "steamwebhelper"}, cfg.SteamProcesses)
}

func TestApplyEnv_BadValue(t *testing.T) {
	env := map[string]string{"SRM_TIMEOUT_SRM": "soon"}
	err := ApplyEnv(Default(), func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	})
	assert.ErrorContains(t, err, "SRM_TIMEOUT_SRM")
}

func TestApplyEnv_LowercaseName(t *testing.T) {
	env := map[string]string{"srm_srm_path": "/usr/bin/steam-rom-manager"}
	cfg := Default()
	err := ApplyEnv(cfg, func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	})
	require.NoError(t, err)
	assert.Equal(t, "/usr/bin/steam-rom-manager", cfg.SRMPath)
}

func TestLoadFile_IgnoresEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("theme = \"light\"\n"), 0644))
	t.Setenv("SRM_THEME", "dark")

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "light", cfg.Theme)
	assert.Equal(t, Default().TimeoutSRM, cfg.TimeoutSRM)
}

func TestPersistable(t *testing.T) {
	env := map[string]string{
		"SRM_SRM_PATH":    "/env/srm",
		"SRM_TIMEOUT_SRM": "45",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	onDisk := Default()
	onDisk.SRMPath = "/file/srm"

	loaded := onDisk.Clone()
	require.NoError(t, ApplyEnv(loaded, lookup))
	require.Equal(t, "/env/srm", loaded.SRMPath)

	edited := loaded.Clone()
	edited.Theme = "dark"
	edited.TimeoutSRM = 90

	out := Persistable(edited, loaded, onDisk, lookup)
	assert.Equal(t, "/file/srm", out.SRMPath, "an untouched override stays out of the file")
	assert.Equal(t, 90, out.TimeoutSRM, "an edit wins over the override")
	assert.Equal(t, "dark", out.Theme)
	assert.Equal(t, "/env/srm", edited.SRMPath, "edited is not modified")
}

func TestSettingField_CoversEveryOverride(t *testing.T) {
	cfg := Default()
	for key := range envOverrides {
		assert.NotPanics(t, func() { settingField(cfg, key) }, key)
	}
}

func TestLoadOrInit_WritesDefaults(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "cfg", "config.toml")

	cfg, migrated, err := LoadOrInit(path, filepath.Join(dir, "srm_config.json"))
	require.NoError(t, err)
	assert.False(t, migrated)
	assert.Equal(t, Default(), cfg)
	assert.FileExists(t, path)
}

func TestLoadOrInit_MigratesLegacy(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	legacy := filepath.Join(dir, "srm_config.json")
	path := filepath.Join(dir, "cfg", "config.toml")
	require.NoError(t, os.WriteFile(legacy, []byte(`{
  "srm_path": "C:\\SRM\\Steam ROM Manager.exe",
  "theme": "light",
  "auto_start": false,
  "log_level": "debug",
  "timeout_steam": 20,
  "timeout_srm": 90,
  "backup_shortcuts": true
}`), 0644))

	cfg, migrated, err := LoadOrInit(path, legacy)
	require.NoError(t, err)
	assert.True(t, migrated)
	assert.Equal(t, `C:\SRM\Steam ROM Manager.exe`, cfg.SRMPath)
	assert.Equal(t, "light", cfg.Theme)
	assert.False(t, cfg.AutoStart)
	assert.Equal(t, 20, cfg.TimeoutSteam)
	assert.Equal(t, 90, cfg.TimeoutSRM)
	assert.FileExists(t, legacy, "legacy file is left in place")

	// A second call must not re-import over the existing TOML file.
	require.NoError(t, os.WriteFile(legacy, []byte(`{"theme": "dark"}`), 0644))
	cfg, migrated, err = LoadOrInit(path, legacy)
	require.NoError(t, err)
	assert.False(t, migrated)
	assert.Equal(t, "light", cfg.Theme)
}

func TestMigrateLegacy_Corrupt(t *testing.T) {
	dir := t.TempDir()
	legacy := filepath.Join(dir, "srm_config.json")
	require.NoError(t, os.WriteFile(legacy, []byte("{not json"), 0644))

	ok, err := MigrateLegacy(legacy, filepath.Join(dir, "config.toml"))
	assert.False(t, ok)
	assert.Error(t, err)
}

// clearEnv removes SRM_* overrides inherited from the test environment.
func clearEnv(t *testing.T) {
	t.Helper()
	for key := range envOverrides {
		if _, ok := os.LookupEnv(EnvName(key)); ok {
			t.Setenv(EnvName(key), "")
			os.Unsetenv(EnvName(key))
		}
	}
}
