package simplessl

import (
	"fmt"

	"github.com/sensiblebit/simplessl/internal/native"
)

// UnknownError is the message for codes missing from the catalog.
const UnknownError = "unknown error"

// ErrorString returns "ok" for code 0, the catalog rendering of a known
// code, or UnknownError.
func ErrorString(code ErrorCode) string {
	if code == 0 {
		return "ok"
	}
	if s, ok := native.ErrorString(code); ok {
		return s
	}
	return UnknownError
}

// Error is a failed Result seen as a Go error.
type Error struct {
	Code ErrorCode
}

func (e *Error) Error() string {
	return fmt.Sprintf("simplessl: %s", ErrorString(e.Code))
}

// Is matches any *Error with the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// Lib returns the library part of the code.
func (e *Error) Lib() int { return native.ErrLib(e.Code) }

// Reason returns the reason part of the code.
func (e *Error) Reason() int { return native.ErrReason(e.Code) }
