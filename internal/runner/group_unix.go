//go:build !windows

package runner

import (
	"errors"
	"io/fs"
	"os"
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"
)

// group is the process group led by the spawned tool.
type group struct {
	cmd *exec.Cmd
}

func newGroup(cmd *exec.Cmd) *group {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	return &group{cmd: cmd}
}

func (g *group) started() error { return nil }

func (g *group) close() {}

// kill sends SIGKILL to the whole group.
func (g *group) kill() error {
	if g.cmd.Process == nil {
		return nil
	}
	err := unix.Kill(-g.cmd.Process.Pid, unix.SIGKILL)
	if errors.Is(err, unix.ESRCH) {
		return os.ErrProcessDone
	}
	return err
}

func notExecutable(_ string, fi fs.FileInfo) string {
	if fi.Mode().Perm()&0o111 == 0 {
		return "is not executable"
	}
	return ""
}
