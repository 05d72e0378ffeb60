//go:build windows

package launcher

import (
	"os"
	"os/exec"
	"syscall"

	"golang.org/x/sys/windows"
)

// applyProcAttr opens a separate console window when requested.
func applyProcAttr(cmd *exec.Cmd, c Command) {
	if c.NewConsole {
		cmd.SysProcAttr = &syscall.SysProcAttr{CreationFlags: windows.CREATE_NEW_CONSOLE}
	}
}

// exitSignal is always empty on Windows.
func exitSignal(*os.ProcessState) string {
	return ""
}
