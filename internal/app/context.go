// Package app holds the explicitly constructed context passed to the core
// components (terminator, runner, orchestrator) instead of global singletons.
package app

import (
	"log/slog"

	"github.com/steveyegge/srmauto/internal/config"
	"github.com/steveyegge/srmauto/internal/logging"
)

// Context carries the resolved configuration and the logger. It is built
// once at startup and copied by value into each component; rebuilding it
// (for example after settings change) never affects a run in progress.
type Context struct {
	Config *config.Config
	Logger *slog.Logger
}

// New returns a Context, filling nil fields with defaults.
func New(cfg *config.Config, logger *slog.Logger) Context {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return Context{Config: cfg, Logger: logger}
}

// With returns a copy whose logger carries the given attributes.
func (c Context) With(args ...any) Context {
	c.Logger = c.Log().With(args...)
	return c
}

// Log returns the logger, never nil.
func (c Context) Log() *slog.Logger {
	if c.Logger == nil {
		return logging.Discard()
	}
	return c.Logger
}

// Settings returns the configuration, never nil.
func (c Context) Settings() *config.Config {
	if c.Config == nil {
		return config.Default()
	}
	return c.Config
}
