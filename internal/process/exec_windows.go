//go:build windows

package process

import "os/exec"

func setProcessGroup(*exec.Cmd) {}

// terminate kills the process. Windows has no SIGTERM to deliver.
func terminate(cmd *exec.Cmd) error {
	return cmd.Process.Kill()
}
