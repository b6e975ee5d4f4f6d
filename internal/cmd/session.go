package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/steveyegge/srmauto/internal/app"
	"github.com/steveyegge/srmauto/internal/config"
	"github.com/steveyegge/srmauto/internal/constants"
	"github.com/steveyegge/srmauto/internal/eventbus"
	"github.com/steveyegge/srmauto/internal/exitcode"
	"github.com/steveyegge/srmauto/internal/lock"
	"github.com/steveyegge/srmauto/internal/logging"
	"github.com/steveyegge/srmauto/internal/process"
	"github.com/steveyegge/srmauto/internal/runner"
	"github.com/steveyegge/srmauto/internal/style"
	"github.com/steveyegge/srmauto/internal/telemetry"
	"github.com/steveyegge/srmauto/internal/ui"
	"github.com/steveyegge/srmauto/internal/version"
	"github.com/steveyegge/srmauto/internal/workflow"
)

const telemetryShutdownTimeout = 5 * time.Second

// session is everything one srmauto process builds at startup.
type session struct {
	dirs       config.Dirs
	configPath string

	mu  sync.Mutex
	cfg *config.Config

	logger  *slog.Logger
	logFile *os.File
	otel    *telemetry.Provider
	lock    *lock.Instance

	darkBackground bool
	emoji          bool

	bus  *eventbus.Bus
	term *process.Terminator
	orch *workflow.Orchestrator
}

// openSession performs the startup sequence. Any failure, including an
// explicit --config path that does not exist, is written to error.log and
// returned as an ErrGeneral coded error.
func openSession(ctx context.Context, opts rootOptions, stderr io.Writer) (*session, error) {
	dirs, err := config.DefaultDirs()
	if err != nil {
		return nil, startupError(dirs, err)
	}
	return openSessionIn(ctx, dirs, opts, stderr)
}

func openSessionIn(ctx context.Context, dirs config.Dirs, opts rootOptions, stderr io.Writer) (_ *session, err error) {
	s := &session{dirs: dirs, configPath: dirs.ConfigFile()}
	defer func() {
		if err != nil {
			s.Close()
		}
	}()

	if err := dirs.Ensure(); err != nil {
		return nil, startupError(dirs, err)
	}

	cfg, err := s.loadConfig(opts.configPath, stderr)
	if err != nil {
		return nil, err
	}
	s.cfg = cfg

	level := cfg.LogLevel
	if opts.logLevel != "" {
		level = opts.logLevel
	}
	s.logFile, err = logging.OpenFile(dirs.LogFile())
	if err != nil {
		return nil, startupError(dirs, err)
	}
	var w io.Writer = s.logFile
	if opts.headless {
		w = io.MultiWriter(s.logFile, stderr)
	}
	s.logger = logging.New(w, level).With("app_pid", os.Getpid())
	s.logger.Info("srmauto starting", "version", version.String(), "config", s.configPath)

	if p, err := telemetry.Init(ctx, constants.AppName, version.Version); err != nil {
		s.logger.Warn("telemetry disabled", "error", err)
	} else {
		s.otel = p
	}

	s.lock, err = lock.Acquire(dirs.LockFile(), lock.DefaultTimeout)
	if err != nil {
		return nil, startupError(dirs, err)
	}

	if !ui.ShouldUseColor() {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
	s.darkBackground = ui.HasDarkBackground()
	s.emoji = ui.ShouldUseEmoji()
	style.ApplyTheme(cfg.Theme, s.darkBackground)

	actx := app.New(cfg, s.logger)
	s.bus = eventbus.New()
	s.term = process.NewTerminator(actx, nil)
	s.orch = workflow.New(actx, s.term, runner.New(actx), s.bus)
	return s, nil
}

// loadConfig reads the settings file. The default location is created on
// first use and a broken file falls back to the defaults so the dashboard
// can still open and rewrite it. An explicit --config must exist.
func (s *session) loadConfig(explicit string, stderr io.Writer) (*config.Config, error) {
	if explicit != "" {
		s.configPath = explicit
		if _, err := os.Stat(explicit); errors.Is(err, os.ErrNotExist) {
			return nil, startupError(s.dirs, fmt.Errorf("config file not found: %s", explicit))
		}
		cfg, err := config.Load(explicit)
		if err != nil {
			return nil, startupError(s.dirs, err)
		}
		return cfg, nil
	}

	cfg, migrated, err := config.LoadOrInit(s.configPath, config.LegacyConfigFile())
	switch {
	case err == nil:
		if migrated {
			fmt.Fprintf(stderr, "Imported settings from %s\n", constants.LegacyConfigFileName)
		}
		return cfg, nil
	case errors.Is(err, os.ErrPermission):
		return nil, startupError(s.dirs, err)
	default:
		fmt.Fprintf(stderr, "Warning: %v; using default settings\n", err)
		cfg = config.Default()
		if envErr := config.ApplyProcessEnv(cfg); envErr != nil {
			fmt.Fprintf(stderr, "Warning: %v\n", envErr)
		}
		return cfg, nil
	}
}

// Config returns the current settings.
func (s *session) Config() *config.Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg
}

// SaveConfig applies cfg to the next run and persists it. Nothing is written
// while a run is active. Settings still carrying their SRM_* override keep
// the value the file had.
func (s *session) SaveConfig(cfg *config.Config) error {
	prev := s.Config()
	if err := s.orch.Reconfigure(app.New(cfg, s.logger)); err != nil {
		return err
	}

	onDisk, err := config.LoadFile(s.configPath)
	if err != nil {
		onDisk = config.Default()
	}
	if err := config.Save(s.configPath, config.Persistable(cfg, prev, onDisk, os.LookupEnv)); err != nil {
		_ = s.orch.Reconfigure(app.New(prev, s.logger))
		return err
	}

	s.mu.Lock()
	s.cfg = cfg
	s.mu.Unlock()
	s.logger.Info("settings saved", "path", s.configPath)
	return nil
}

// Close releases everything openSession acquired, cancelling an active
// run first so no Steam ROM Manager outlives the app. Safe on a partly
// built session.
func (s *session) Close() {
	if s.orch != nil {
		if res, ok := s.orch.Shutdown(); ok && s.logger != nil {
			s.logger.Warn("cancelled active run on close", "run_id", res.RunID)
		}
	}
	if s.bus != nil {
		s.bus.Close()
	}
	if s.otel != nil {
		ctx, cancel := context.WithTimeout(context.Background(), telemetryShutdownTimeout)
		if err := s.otel.Shutdown(ctx); err != nil && s.logger != nil {
			s.logger.Warn("telemetry shutdown", "error", err)
		}
		cancel()
		s.otel = nil
	}
	if s.lock != nil {
		_ = s.lock.Release()
		s.lock = nil
	}
	if s.logFile != nil {
		_ = s.logFile.Close()
		s.logFile = nil
	}
}

// startupError records err in error.log and marks it as a startup failure.
func startupError(dirs config.Dirs, err error) error {
	path := ""
	if dirs.Log != "" {
		path = dirs.ErrorLogFile()
	}
	logging.WriteErrorLog(path, err)
	return exitcode.Wrap(exitcode.ErrGeneral, "startup failed", err)
}

func defaultErrorLog() string {
	dirs, err := config.DefaultDirs()
	if err != nil {
		return ""
	}
	return dirs.ErrorLogFile()
}
