//go:build windows

package procrun

import (
	"os/exec"
	"unsafe"

	"golang.org/x/sys/windows"
)

// processTree is a job object holding the child and everything it spawns.
// Without a job only the child itself can be killed.
type processTree struct {
	cmd *exec.Cmd
	job windows.Handle
}

func prepareTree(cmd *exec.Cmd) {}

func attachTree(cmd *exec.Cmd) processTree {
	t := processTree{cmd: cmd}
	job, err := windows.CreateJobObject(nil, nil)
	if err != nil {
		return t
	}
	info := windows.JOBOBJECT_EXTENDED_LIMIT_INFORMATION{
		BasicLimitInformation: windows.JOBOBJECT_BASIC_LIMIT_INFORMATION{
			LimitFlags: windows.JOB_OBJECT_LIMIT_KILL_ON_JOB_CLOSE,
		},
	}
	if _, err := windows.SetInformationJobObject(job, windows.JobObjectExtendedLimitInformation,
		uintptr(unsafe.Pointer(&info)), uint32(unsafe.Sizeof(info))); err != nil {
		windows.CloseHandle(job)
		return t
	}
	proc, err := windows.OpenProcess(windows.PROCESS_SET_QUOTA|windows.PROCESS_TERMINATE, false, uint32(cmd.Process.Pid))
	if err != nil {
		windows.CloseHandle(job)
		return t
	}
	defer windows.CloseHandle(proc)
	if err := windows.AssignProcessToJobObject(job, proc); err != nil {
		windows.CloseHandle(job)
		return t
	}
	t.job = job
	return t
}

func (t processTree) kill() error {
	if t.job != 0 {
		return windows.TerminateJobObject(t.job, 1)
	}
	return t.cmd.Process.Kill()
}

func (t processTree) release() {
	if t.job != 0 {
		windows.CloseHandle(t.job)
	}
}
