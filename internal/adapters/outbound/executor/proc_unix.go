//go:build unix

package executor

import (
	"os/exec"
	"syscall"
)

// setProcGroup places the child in its own process group so the whole
// subtree can be signalled at once.
func setProcGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

// killTree kills the process group rooted at cmd. A leaked descendant
// after a timeout would be a defect in this tool, not the target's.
func killTree(cmd *exec.Cmd) {
	if cmd.Process == nil {
		return
	}
	if err := syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL); err != nil {
		_ = cmd.Process.Kill()
	}
}

// exitCode reports the child's exit code using the shell convention: a
// process killed by a signal maps to 128+signal, so a segfault reads as
// 139 instead of the -1 that ExitCode reports for signal death.
func exitCode(err *exec.ExitError) int {
	if ws, ok := err.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return 128 + int(ws.Signal())
	}
	return err.ExitCode()
}
