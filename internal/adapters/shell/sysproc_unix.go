//go:build !windows

package shell

import "syscall"

// sysProcAttr makes the pty the controlling terminal of a new session.
func sysProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{
		Setsid:  true,
		Setctty: true,
	}
}
