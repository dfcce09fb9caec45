//go:build unix

package native

import (
	"fmt"
	"syscall"

	"golang.org/x/sys/unix"
)

// systemReason describes errno using the platform table. Values without a
// symbolic name are reported as unknown.
func systemReason(errno uintptr) (string, bool) {
	e := syscall.Errno(errno)
	name := unix.ErrnoName(e)
	if name == "" {
		return "", false
	}
	return fmt.Sprintf("%s (%s)", e.Error(), name), true
}
