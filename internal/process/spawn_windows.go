//go:build windows

package process

import (
	"os/exec"
	"syscall"
)

// configureProcAttr detaches the child into its own process group.
func configureProcAttr(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		CreationFlags: syscall.CREATE_NEW_PROCESS_GROUP,
	}
}

// groupID is always 0: there is no group-wide signal delivery.
func groupID(int) int {
	return 0
}

// killGroup kills only the direct child.
func killGroup(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return nil
	}
	return cmd.Process.Kill()
}
