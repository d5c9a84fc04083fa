//go:build windows

package shell

import "syscall"

func sysProcAttr() *syscall.SysProcAttr {
	return nil
}
