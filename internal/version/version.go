// Package version reports build metadata for the srmauto binary.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Set at build time via -ldflags "-X github.com/steveyegge/srmauto/internal/version.Version=...".
var (
	Version   = "0.1.0-dev"
	Commit    = ""
	BuildTime = ""
)

// SetCommit overrides the embedded commit hash.
func SetCommit(commit string) {
	Commit = commit
}

// ShortCommit returns the first 12 characters of a commit hash.
func ShortCommit(hash string) string {
	if len(hash) > 12 {
		return hash[:12]
	}
	return hash
}

// resolveCommitHash prefers the ldflags value and falls back to the VCS
// stamp embedded by the go toolchain.
func resolveCommitHash() string {
	if Commit != "" {
		return Commit
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	for _, s := range info.Settings {
		if s.Key == "vcs.revision" {
			return s.Value
		}
	}
	return ""
}

// String is the one-line version shown by --version.
func String() string {
	s := Version
	if c := ShortCommit(resolveCommitHash()); c != "" {
		s += " (" + c + ")"
	}
	if BuildTime != "" {
		s += " built " + BuildTime
	}
	return fmt.Sprintf("%s %s/%s", s, runtime.GOOS, runtime.GOARCH)
}
