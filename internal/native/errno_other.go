//go:build !unix

package native

import (
	"strings"
	"syscall"
)

func systemReason(errno uintptr) (string, bool) {
	if errno == 0 {
		return "", false
	}
	msg := syscall.Errno(errno).Error()
	if strings.HasPrefix(msg, "errno ") || strings.HasPrefix(msg, "winapi error") {
		return "", false
	}
	return msg, true
}
