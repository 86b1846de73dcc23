package launchers

import (
	"errors"
	"fmt"
)

// ErrorKind classifies why a build run failed. Every kind is fatal for the run.
type ErrorKind int

const (
	InvalidConfiguration ErrorKind = iota + 1
	TemplateLoadFailure
	FileSystemFailure
	CompilerNotFound
	ProcessLaunchFailure
	ProcessTimeout
	ProcessNonZeroExit
)

func (k ErrorKind) String() string {
	switch k {
	case InvalidConfiguration:
		return "invalid configuration"
	case TemplateLoadFailure:
		return "template load failure"
	case FileSystemFailure:
		return "file system failure"
	case CompilerNotFound:
		return "compiler not found"
	case ProcessLaunchFailure:
		return "process launch failure"
	case ProcessTimeout:
		return "process timeout"
	case ProcessNonZeroExit:
		return "process exited with non-zero status"
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// BuildError is returned by the Orchestrator for any failure.
type BuildError struct {
	Kind     ErrorKind
	Launcher string
	// Command is the failing command line, if a process was involved.
	Command string
	// ExitCode is set for ProcessNonZeroExit.
	ExitCode int
	Err      error
}

func (e *BuildError) Error() string {
	msg := e.Kind.String()
	if e.Launcher != "" {
		msg = fmt.Sprintf("launcher %s: %s", e.Launcher, msg)
	}
	if e.Command != "" {
		msg = fmt.Sprintf("%s [%s]", msg, e.Command)
	}
	if e.Kind == ProcessNonZeroExit {
		msg = fmt.Sprintf("%s (exit status %d)", msg, e.ExitCode)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *BuildError) Unwrap() error { return e.Err }

// KindOf returns the kind of a BuildError in err's chain, or 0.
func KindOf(err error) ErrorKind {
	var be *BuildError
	if errors.As(err, &be) {
		return be.Kind
	}
	return 0
}
