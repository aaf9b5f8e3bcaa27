//go:build windows

package executor

import "os/exec"

func setProcGroup(cmd *exec.Cmd) {}

// killTree on Windows kills only the direct child; there is no process
// group to signal.
func killTree(cmd *exec.Cmd) {
	if cmd.Process != nil {
		_ = cmd.Process.Kill()
	}
}

// exitCode on Windows has no signal convention to translate.
func exitCode(err *exec.ExitError) int {
	return err.ExitCode()
}
