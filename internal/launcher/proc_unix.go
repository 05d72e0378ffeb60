//go:build unix

package launcher

import (
	"os"
	"os/exec"
	"syscall"
)

// applyProcAttr puts the terminal in its own process group so a Ctrl+C in
// the editor does not reach it.
func applyProcAttr(cmd *exec.Cmd, _ Command) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

// exitSignal returns the name of the signal that terminated the process, if any.
func exitSignal(ps *os.ProcessState) string {
	if ps == nil {
		return ""
	}
	ws, ok := ps.Sys().(syscall.WaitStatus)
	if !ok || !ws.Signaled() {
		return ""
	}
	return ws.Signal().String()
}
