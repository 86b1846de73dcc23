// Package procrun runs external tools with inherited stdio and a hard timeout.
package procrun

import (
	"errors"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"native-launchers/go/pkg/logbowl"
)

// waitDelay bounds how long Wait blocks on stdio copying after a kill.
const waitDelay = 2 * time.Second

var errEmptyCommand = errors.New("empty command line")

// Invocation is a single external command. It is built fresh for every run.
type Invocation struct {
	Dir  string
	Argv []string
}

// CommandLine renders the argv the way it is shown in logs and errors.
func (inv Invocation) CommandLine() string {
	return strings.Join(inv.Argv, " ")
}

// Runner starts child processes whose standard streams are connected to its
// own Stdin, Stdout and Stderr.
type Runner struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Clock  clockwork.Clock
	Log    logbowl.Logger
}

// NewRunner returns a Runner wired to the process's own standard streams.
func NewRunner(log logbowl.Logger) *Runner {
	return &Runner{
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Clock:  clockwork.NewRealClock(),
		Log:    log,
	}
}

// Run executes inv and blocks until it exits or timeout elapses. A child that
// outlives the timeout is killed together with every process it started
// before TimedOut is returned.
func (r *Runner) Run(inv Invocation, timeout time.Duration) Outcome {
	if len(inv.Argv) == 0 {
		return LaunchFailed{Cause: errEmptyCommand}
	}
	r.Log.Info("process", "execute", "progress", "Executing ["+inv.CommandLine()+"]", "dir", inv.Dir)

	cmd := exec.Command(inv.Argv[0], inv.Argv[1:]...)
	cmd.Dir = inv.Dir
	cmd.Stdin = r.Stdin
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr
	cmd.WaitDelay = waitDelay
	prepareTree(cmd)
	if err := cmd.Start(); err != nil {
		r.Log.Error("process", "execute", "error", "Execution failed", "command", inv.Argv[0], "error", err)
		return LaunchFailed{Cause: err}
	}
	tree := attachTree(cmd)
	defer tree.release()

	clock := r.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	select {
	case err := <-done:
		return r.classify(inv, err)
	case <-clock.After(timeout):
		r.Log.Error("process", "execute", "timeout", "Execution timed out, killing process tree", "command", inv.Argv[0], "pid", cmd.Process.Pid, "timeout", timeout)
		if err := tree.kill(); err != nil {
			r.Log.Warn("process", "execute", "warning", "Failed to kill process tree, killing child only", "pid", cmd.Process.Pid, "error", err)
			if err := cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
				r.Log.Warn("process", "execute", "warning", "Failed to kill timed out process", "pid", cmd.Process.Pid, "error", err)
			}
		}
		<-done
		return TimedOut{After: timeout}
	}
}

func (r *Runner) classify(inv Invocation, err error) Outcome {
	if err == nil {
		r.Log.Debug("process", "execute", "success", "Execution finished", "command", inv.Argv[0])
		return Success{}
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		r.Log.Error("process", "execute", "failure", "Execution returned a non-zero status", "command", inv.Argv[0], "code", exitErr.ExitCode())
		return NonZeroExit{Code: exitErr.ExitCode()}
	}
	r.Log.Error("process", "execute", "error", "Execution failed", "command", inv.Argv[0], "error", err)
	return LaunchFailed{Cause: err}
}
