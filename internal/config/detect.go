package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// DefaultSRMCandidates returns the usual Steam ROM Manager install
// locations for the current platform, most likely first.
func DefaultSRMCandidates() []string {
	home, _ := os.UserHomeDir()
	return srmCandidates(runtime.GOOS, home, os.Getenv)
}

func srmCandidates(goos, home string, getenv func(string) string) []string {
	switch goos {
	case "windows":
		var out []string
		if local := getenv("LOCALAPPDATA"); local != "" {
			out = append(out, filepath.Join(local, "Programs", "steam-rom-manager", "Steam ROM Manager.exe"))
		}
		if user := getenv("USERNAME"); user != "" {
			out = append(out, filepath.Join(`C:\Users`, user, "AppData", "Local", "Programs", "steam-rom-manager", "Steam ROM Manager.exe"))
		}
		return append(out,
			`C:\Program Files\Steam ROM Manager\Steam ROM Manager.exe`,
			`C:\Program Files (x86)\Steam ROM Manager\Steam ROM Manager.exe`,
		)
	case "darwin":
		return []string{
			"/Applications/Steam ROM Manager.app/Contents/MacOS/Steam ROM Manager",
			filepath.Join(home, "Applications", "Steam ROM Manager.app", "Contents", "MacOS", "Steam ROM Manager"),
		}
	default:
		return []string{
			filepath.Join(home, "Applications", "Steam-ROM-Manager.AppImage"),
			filepath.Join(home, ".local", "bin", "steam-rom-manager"),
			"/usr/bin/steam-rom-manager",
			"/opt/Steam ROM Manager/steam-rom-manager",
		}
	}
}

// DetectSRMPath returns the first candidate that exists as a regular file,
// or "" if none do.
func DetectSRMPath(candidates []string) string {
	for _, path := range candidates {
		if path == "" {
			continue
		}
		if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
			return path
		}
	}
	return ""
}
