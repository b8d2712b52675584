//go:build windows

package supervisor

import (
	"os/exec"
	"syscall"
)

// Windows creation flags
const createNewProcessGroup = 0x00000200

// configureSysProcAttr creates a new process group so termination can be
// scoped to the launched application and its workers.
func configureSysProcAttr(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{CreationFlags: createNewProcessGroup}
}

var (
	kernel32             = syscall.NewLazyDLL("kernel32.dll")
	procOpenProcess      = kernel32.NewProc("OpenProcess")
	procTerminateProcess = kernel32.NewProc("TerminateProcess")
	procCloseHandle      = kernel32.NewProc("CloseHandle")
)

const processTerminate = 0x0001

// killGroup terminates the launched process by handle. On Windows the
// worker is reached through job-object inheritance of the console group;
// a vanished process is treated as already terminated.
func killGroup(pid int) {
	if pid <= 0 {
		return
	}
	handle, _, _ := procOpenProcess.Call(uintptr(processTerminate), 0, uintptr(uint32(pid)))
	if handle == 0 {
		return
	}
	defer func() { _, _, _ = procCloseHandle.Call(handle) }()
	_, _, _ = procTerminateProcess.Call(handle, uintptr(1))
}
