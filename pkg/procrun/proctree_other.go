//go:build !unix && !windows

package procrun

import "os/exec"

// processTree falls back to the child alone where process groups are unavailable.
type processTree struct {
	cmd *exec.Cmd
}

func prepareTree(cmd *exec.Cmd) {}

func attachTree(cmd *exec.Cmd) processTree { return processTree{cmd: cmd} }

func (t processTree) kill() error { return t.cmd.Process.Kill() }

func (t processTree) release() {}
