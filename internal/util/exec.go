package util

import (
	"bytes"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// ExecWithOutput runs a command in workDir and returns its trimmed stdout.
// On failure the returned error includes stderr, which is usually the only
// useful diagnostic from tools like ps and tasklist. A tool missing from
// PATH is marked permanent, since no retry will make it appear.
func ExecWithOutput(workDir, name string, args ...string) (string, error) {
	cmd := exec.Command(name, args...)
	if workDir != "" {
		cmd.Dir = workDir
	}
	hideWindow(cmd)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return "", MarkPermanent(fmt.Errorf("%s: %w", name, err))
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("%s: %w: %s", name, err, msg)
		}
		return "", fmt.Errorf("%s: %w", name, err)
	}

	return strings.TrimSpace(stdout.String()), nil
}

// ExecRun runs a command in workDir, discarding stdout.
func ExecRun(workDir, name string, args ...string) error {
	_, err := ExecWithOutput(workDir, name, args...)
	return err
}
