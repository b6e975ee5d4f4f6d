//go:build !windows

package process

import (
	"bufio"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"syscall"

	"golang.org/x/sys/unix"

	"github.com/steveyegge/srmauto/internal/util"
)

type osTable struct{}

// NewOSTable returns the process table of the running system, read with
// ps(1) and driven with signals.
func NewOSTable() Table {
	return osTable{}
}

// List runs ps and parses pid, state and command name. Zombies are skipped:
// they have already exited and cannot be signalled away.
func (osTable) List() ([]Info, error) {
	out, err := util.ExecWithOutput("", "ps", "-axo", "pid=,stat=,comm=")
	if err != nil {
		return nil, err
	}
	return parsePS(out), nil
}

func parsePS(out string) []Info {
	var procs []Info
	scanner := bufio.NewScanner(strings.NewReader(out))
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 3 {
			continue
		}
		pid, err := strconv.Atoi(fields[0])
		if err != nil {
			continue
		}
		if strings.HasPrefix(fields[1], "Z") {
			continue
		}
		// comm may contain spaces on macOS ("Steam ROM Manager").
		procs = append(procs, Info{PID: pid, Name: strings.Join(fields[2:], " ")})
	}
	return procs
}

func (osTable) Terminate(pid int) error {
	return signal(pid, unix.SIGTERM)
}

func (osTable) Kill(pid int) error {
	return signal(pid, unix.SIGKILL)
}

func (osTable) Alive(pid int) bool {
	if pid <= 0 {
		return false
	}
	// Signal 0 checks existence; EPERM means it exists but isn't ours.
	if err := unix.Kill(pid, 0); err != nil && !errors.Is(err, unix.EPERM) {
		return false
	}
	return !isZombie(pid)
}

func signal(pid int, sig syscall.Signal) error {
	if pid <= 0 {
		return fmt.Errorf("pid %d: %w", pid, ErrNotFound)
	}
	err := unix.Kill(pid, sig)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, unix.ESRCH):
		return fmt.Errorf("pid %d: %w", pid, ErrNotFound)
	case errors.Is(err, unix.EPERM):
		return fmt.Errorf("pid %d: %w", pid, ErrAccessDenied)
	default:
		return fmt.Errorf("signal %s to pid %d: %w", unix.SignalName(sig), pid, err)
	}
}
