//go:build windows

package runner

import "os/exec"

func configure(*exec.Cmd) {}

// terminate kills directly; Windows has no SIGTERM.
func terminate(cmd *exec.Cmd) {
	cmd.Process.Kill()
}

func kill(cmd *exec.Cmd) {
	cmd.Process.Kill()
}
