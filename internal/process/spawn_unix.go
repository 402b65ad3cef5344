//go:build !windows

package process

import (
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"
)

// configureProcAttr places the child in a new process group so signals
// sent to the group reach everything it spawns.
func configureProcAttr(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setpgid: true,
	}
}

// groupID returns the process group of pid, falling back to pid itself
// (which is the group id when Setpgid was used).
func groupID(pid int) int {
	pgid, err := unix.Getpgid(pid)
	if err != nil || pgid <= 0 {
		return pid
	}
	return pgid
}

// killGroup forcefully kills cmd's process group.
func killGroup(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return nil
	}
	err := unix.Kill(-groupID(cmd.Process.Pid), unix.SIGKILL)
	if err == unix.ESRCH {
		return nil
	}
	return err
}
