// Package cmd provides the srmauto command line.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/steveyegge/srmauto/internal/exitcode"
	"github.com/steveyegge/srmauto/internal/logging"
	"github.com/steveyegge/srmauto/internal/ui"
	"github.com/steveyegge/srmauto/internal/version"
)

// rootOptions holds the parsed command-line flags.
type rootOptions struct {
	configPath string
	headless   bool
	logLevel   string
	run        bool
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "srmauto",
		Short: "Stop Steam and run Steam ROM Manager in one step",
		Long: `srmauto closes every running Steam process and then runs Steam ROM
Manager to regenerate your non-Steam game shortcuts.

With a terminal it opens an interactive dashboard. Without one, or with
--headless, it runs the workflow once, prints the result and exits with a
code describing the outcome.`,
		Version:       version.String(),
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRoot(cmd.Context(), opts, stdout, stderr)
		},
	}

	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return exitcode.Wrap(exitcode.ErrUsage, "invalid arguments", err)
	})

	flags := cmd.Flags()
	flags.StringVar(&opts.configPath, "config", "", "settings file (default: user config dir)")
	flags.BoolVar(&opts.headless, "headless", false, "run once without the dashboard and exit")
	flags.StringVar(&opts.logLevel, "log-level", "", "override log_level (debug, info, warning, error)")
	flags.BoolVar(&opts.run, "run", false, "start the workflow immediately (overrides auto_start)")

	return cmd
}

func runRoot(ctx context.Context, opts *rootOptions, stdout, stderr io.Writer) error {
	interactive := !opts.headless && ui.CanRunTUI()

	sess, err := openSession(ctx, *opts, stderr)
	if err != nil {
		return err
	}
	defer sess.Close()

	if !interactive {
		sess.logger.Info("running headless")
		code := runHeadless(ctx, sess, stdout)
		if code != exitcode.Success {
			return silentExit(code)
		}
		return nil
	}
	return runTUI(ctx, sess, opts.run)
}

// Execute runs the root command and returns an exit code.
// The caller (main) should call os.Exit with this code.
func Execute() (code int) {
	defer func() {
		if p := recover(); p != nil {
			err := fmt.Errorf("panic: %v\n%s", p, debug.Stack())
			logging.WriteErrorLog(defaultErrorLog(), err)
			fmt.Fprintf(os.Stderr, "srmauto: unexpected error: %v\n", p)
			code = exitcode.ErrGeneral
		}
	}()

	root := newRootCmd(os.Stdout, os.Stderr)
	return exitCode(root.ExecuteContext(context.Background()), os.Stderr)
}

// exitCode reports err on w and maps it to a process exit code.
func exitCode(err error, w io.Writer) int {
	if err == nil {
		return exitcode.Success
	}
	if code, ok := IsSilentExit(err); ok {
		return code
	}
	fmt.Fprintf(w, "Error: %v\n", err)
	return exitcode.Code(err)
}

// silentExitError carries an exit code for outcomes that were already
// reported, such as a failed headless run.
type silentExitError struct {
	code int
}

func (e *silentExitError) Error() string {
	return fmt.Sprintf("exit %d", e.code)
}

func silentExit(code int) error {
	return &silentExitError{code: code}
}

// IsSilentExit reports whether err only carries an exit code.
func IsSilentExit(err error) (int, bool) {
	var se *silentExitError
	if errors.As(err, &se) {
		return se.code, true
	}
	return 0, false
}
