package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/steveyegge/srmauto/internal/constants"
)

// Dirs are the per-user directories srmauto reads and writes.
type Dirs struct {
	Config string
	Log    string
	State  string
}

// DefaultDirs returns platform-appropriate directories:
// config under os.UserConfigDir, logs and state under os.UserCacheDir.
func DefaultDirs() (Dirs, error) {
	configRoot, err := os.UserConfigDir()
	if err != nil {
		return Dirs{}, fmt.Errorf("locating config dir: %w", err)
	}
	cacheRoot, err := os.UserCacheDir()
	if err != nil {
		return Dirs{}, fmt.Errorf("locating cache dir: %w", err)
	}

	logDir := filepath.Join(cacheRoot, constants.AppName, "logs")
	if runtime.GOOS == "darwin" {
		if home, err := os.UserHomeDir(); err == nil {
			logDir = filepath.Join(home, "Library", "Logs", constants.AppName)
		}
	}

	return Dirs{
		Config: filepath.Join(configRoot, constants.AppName),
		Log:    logDir,
		State:  filepath.Join(cacheRoot, constants.AppName),
	}, nil
}

// Ensure creates every directory.
func (d Dirs) Ensure() error {
	for _, dir := range []string{d.Config, d.Log, d.State} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	return nil
}

// ConfigFile returns the settings file path.
func (d Dirs) ConfigFile() string {
	return filepath.Join(d.Config, constants.ConfigFileName)
}

// LogFile returns the run log path.
func (d Dirs) LogFile() string {
	return filepath.Join(d.Log, constants.LogFileName)
}

// ErrorLogFile returns the startup error log path.
func (d Dirs) ErrorLogFile() string {
	return filepath.Join(d.Log, constants.ErrorLogFileName)
}

// LockFile returns the single-instance lock path.
func (d Dirs) LockFile() string {
	return filepath.Join(d.State, constants.LockFileName)
}

// LegacyConfigFile returns the pre-TOML settings file in the working directory.
func LegacyConfigFile() string {
	wd, err := os.Getwd()
	if err != nil {
		return ""
	}
	return filepath.Join(wd, constants.LegacyConfigFileName)
}
