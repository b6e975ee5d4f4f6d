// Package config provides settings loading, persistence and environment
// variable overrides for srmauto.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/steveyegge/srmauto/internal/constants"
)

// Config is the resolved application configuration. Durations are stored in
// whole seconds to keep the settings file readable.
type Config struct {
	// SRMPath is the Steam ROM Manager executable, or "auto-detect".
	SRMPath string `toml:"srm_path" json:"srm_path"`

	// SRMArgs are passed to Steam ROM Manager verbatim.
	SRMArgs []string `toml:"srm_args" json:"srm_args"`

	// Theme is auto, light or dark.
	Theme string `toml:"theme" json:"theme"`

	// AutoStart runs the workflow as soon as the UI opens.
	AutoStart bool `toml:"auto_start" json:"auto_start"`

	// LogLevel is debug, info, warning or error.
	LogLevel string `toml:"log_level" json:"log_level"`

	// TimeoutSteam bounds the whole Steam termination step (5-300).
	TimeoutSteam int `toml:"timeout_steam" json:"timeout_steam"`

	// GracePeriod is the wait after a graceful termination request before
	// escalating to a forced kill.
	GracePeriod int `toml:"grace_period" json:"grace_period"`

	// TimeoutSRM bounds a Steam ROM Manager invocation (10-600).
	TimeoutSRM int `toml:"timeout_srm" json:"timeout_srm"`

	// SteamPattern is matched case-insensitively as a substring of process names.
	SteamPattern string `toml:"steam_pattern" json:"steam_pattern"`

	// SteamProcesses are exact image names matched in addition to the pattern.
	SteamProcesses []string `toml:"steam_processes" json:"steam_processes"`

	// ForceKill escalates to a forced kill after the grace period.
	ForceKill bool `toml:"force_kill" json:"force_kill"`

	// StrictTermination fails the run when Steam processes survive
	// termination instead of proceeding with a warning.
	StrictTermination bool `toml:"strict_termination" json:"strict_termination"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		SRMPath:        constants.AutoDetect,
		SRMArgs:        append([]string(nil), constants.DefaultSRMArgs...),
		Theme:          constants.ThemeAuto,
		AutoStart:      true,
		LogLevel:       "info",
		TimeoutSteam:   int(constants.DefaultSteamTimeout / time.Second),
		GracePeriod:    int(constants.DefaultGracePeriod / time.Second),
		TimeoutSRM:     int(constants.DefaultSRMTimeout / time.Second),
		SteamPattern:   constants.DefaultSteamPattern,
		SteamProcesses: append([]string(nil), constants.DefaultSteamProcesses...),
		ForceKill:      true,
	}
}

var (
	validThemes    = []string{constants.ThemeAuto, constants.ThemeLight, constants.ThemeDark}
	validLogLevels = []string{"debug", "info", "warning", "error"}
)

// Validate normalizes case-insensitive fields and checks ranges.
func (c *Config) Validate() error {
	c.Theme = strings.ToLower(strings.TrimSpace(c.Theme))
	if !contains(validThemes, c.Theme) {
		return fmt.Errorf("theme must be one of: %s (got %q)", strings.Join(validThemes, ", "), c.Theme)
	}

	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	if c.LogLevel == "warn" {
		c.LogLevel = "warning"
	}
	if !contains(validLogLevels, c.LogLevel) {
		return fmt.Errorf("log_level must be one of: %s (got %q)", strings.Join(validLogLevels, ", "), c.LogLevel)
	}

	if c.TimeoutSteam < 5 || c.TimeoutSteam > 300 {
		return fmt.Errorf("timeout_steam must be between 5 and 300 seconds (got %d)", c.TimeoutSteam)
	}
	if c.TimeoutSRM < 10 || c.TimeoutSRM > 600 {
		return fmt.Errorf("timeout_srm must be between 10 and 600 seconds (got %d)", c.TimeoutSRM)
	}
	if c.GracePeriod < 1 || c.GracePeriod > c.TimeoutSteam {
		return fmt.Errorf("grace_period must be between 1 and timeout_steam (%d) seconds (got %d)", c.TimeoutSteam, c.GracePeriod)
	}

	if strings.TrimSpace(c.SteamPattern) == "" && len(c.SteamProcesses) == 0 {
		return fmt.Errorf("steam_pattern or steam_processes must be set")
	}

	if c.SRMPath != "" && c.SRMPath != constants.AutoDetect {
		if info, err := os.Stat(c.SRMPath); err == nil && info.IsDir() {
			return fmt.Errorf("srm_path must be a file, not a directory: %s", c.SRMPath)
		}
	}

	return nil
}

// SteamTimeout returns TimeoutSteam as a duration.
func (c *Config) SteamTimeout() time.Duration {
	return time.Duration(c.TimeoutSteam) * time.Second
}

// Grace returns GracePeriod as a duration.
func (c *Config) Grace() time.Duration {
	return time.Duration(c.GracePeriod) * time.Second
}

// SRMTimeout returns TimeoutSRM as a duration.
func (c *Config) SRMTimeout() time.Duration {
	return time.Duration(c.TimeoutSRM) * time.Second
}

// Clone returns a deep copy, so the settings view can edit without racing a run.
func (c *Config) Clone() *Config {
	out := *c
	out.SRMArgs = append([]string(nil), c.SRMArgs...)
	out.SteamProcesses = append([]string(nil), c.SteamProcesses...)
	return &out
}

// ResolveSRMPath returns the configured executable, running install-path
// detection when the setting is empty or "auto-detect". Returns "" when
// nothing was found.
func (c *Config) ResolveSRMPath() string {
	if c.SRMPath != "" && c.SRMPath != constants.AutoDetect {
		return c.SRMPath
	}
	return DetectSRMPath(DefaultSRMCandidates())
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
