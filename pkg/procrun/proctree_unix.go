//go:build unix

package procrun

import (
	"errors"
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"
)

// processTree is the child's process group. The child leads its own group so
// compiler drivers take their cc1/ld subprocesses down with them.
type processTree struct {
	pgid int
}

func prepareTree(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

func attachTree(cmd *exec.Cmd) processTree {
	return processTree{pgid: cmd.Process.Pid}
}

func (t processTree) kill() error {
	if err := unix.Kill(-t.pgid, unix.SIGKILL); err != nil && !errors.Is(err, unix.ESRCH) {
		return err
	}
	return nil
}

func (t processTree) release() {}
