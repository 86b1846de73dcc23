package procrun

import (
	"fmt"
	"time"
)

// Outcome is the terminal result of one external process run. It is one of
// Success, NonZeroExit, TimedOut or LaunchFailed.
type Outcome interface {
	fmt.Stringer
	outcome()
}

// Success means the child exited with status 0 within the timeout.
type Success struct{}

// NonZeroExit means the child exited with a non-zero status. Code is -1 when
// the platform reports no exit status (for example when killed by a signal).
type NonZeroExit struct {
	Code int
}

// TimedOut means the child was still running when the timeout elapsed. The
// child has been killed and reaped by the time this is returned.
type TimedOut struct {
	After time.Duration
}

// LaunchFailed means the child could not be started.
type LaunchFailed struct {
	Cause error
}

func (Success) outcome()      {}
func (NonZeroExit) outcome()  {}
func (TimedOut) outcome()     {}
func (LaunchFailed) outcome() {}

func (Success) String() string       { return "success" }
func (o NonZeroExit) String() string { return fmt.Sprintf("exited with status %d", o.Code) }
func (o TimedOut) String() string    { return fmt.Sprintf("timed out after %s", o.After) }
func (o LaunchFailed) String() string {
	return fmt.Sprintf("failed to launch: %v", o.Cause)
}

// Succeeded reports whether o is Success.
func Succeeded(o Outcome) bool {
	_, ok := o.(Success)
	return ok
}
