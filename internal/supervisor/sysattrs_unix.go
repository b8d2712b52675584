//go:build !windows

package supervisor

import (
	"os/exec"
	"syscall"
)

// configureSysProcAttr places the launched application in its own process
// group so the timeout kill reaches the whole process tree, worker
// included.
func configureSysProcAttr(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

// killGroup force-terminates the process group. Graceful shutdown is
// deliberately not attempted: a runaway CAD session ignores SIGTERM.
func killGroup(pid int) {
	_ = syscall.Kill(-pid, syscall.SIGKILL)
}
