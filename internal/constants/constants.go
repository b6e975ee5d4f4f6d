// Package constants holds names, defaults and well-known locations shared
// across srmauto.
package constants

import "time"

// Application identity.
const (
	AppName = "srmauto"

	// EnvPrefix prefixes every environment override (SRM_THEME, SRM_TIMEOUT_SRM, ...).
	EnvPrefix = "SRM_"

	// ConfigFileName is the settings file inside the user config dir.
	ConfigFileName = "config.toml"

	// LegacyConfigFileName is the JSON settings file older releases wrote
	// next to the executable. It is imported once when no config.toml exists.
	LegacyConfigFileName = "srm_config.json"

	// LogFileName is the run log inside the user log dir.
	LogFileName = "srmauto.log"

	// ErrorLogFileName receives startup failures that prevent the UI from opening.
	ErrorLogFileName = "error.log"

	// LockFileName guards against two instances driving Steam at once.
	LockFileName = "srmauto.lock"

	// AutoDetect is the srm_path value that triggers install-path detection.
	AutoDetect = "auto-detect"
)

// Default timeouts and limits.
const (
	DefaultSteamTimeout = 30 * time.Second
	DefaultGracePeriod  = 5 * time.Second
	DefaultSRMTimeout   = 120 * time.Second

	// PollInterval is how often the terminator re-checks whether a signalled
	// process has exited.
	PollInterval = 100 * time.Millisecond

	// KillConfirmWait bounds the wait after a forced kill.
	KillConfirmWait = 2 * time.Second

	// SteamStatusInterval is how often the UI re-checks whether Steam runs.
	SteamStatusInterval = 3 * time.Second

	// MaxDisplayError is how much of an unexpected error the UI shows; the
	// full text only goes to the log file.
	MaxDisplayError = 500
)

// DefaultSteamPattern matches every Steam client process by substring.
const DefaultSteamPattern = "steam"

// DefaultSteamProcesses lists the exact Steam image names to stop in addition
// to the pattern. Matching ignores case and an optional .exe suffix.
var DefaultSteamProcesses = []string{
	"steam.exe",
	"steamservice.exe",
	"steamwebhelper.exe",
}

// DefaultSRMArgs is the Steam ROM Manager CLI command that regenerates shortcuts.
var DefaultSRMArgs = []string{"add"}

// Status names shown by the presentation layer.
const (
	StatusReady     = "ready"
	StatusRunning   = "running"
	StatusSuccess   = "success"
	StatusFailed    = "failed"
	StatusCancelled = "cancelled"
)

// Themes accepted by the theme setting.
const (
	ThemeAuto  = "auto"
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// StatusEmoji returns the decoration used in front of a status label.
func StatusEmoji(status string) string {
	switch status {
	case StatusReady:
		return "○"
	case StatusRunning:
		return "◐"
	case StatusSuccess:
		return "✓"
	case StatusFailed:
		return "✗"
	case StatusCancelled:
		return "⊘"
	default:
		return "?"
	}
}
