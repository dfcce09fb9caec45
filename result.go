package simplessl

import (
	"fmt"
	"log/slog"

	"github.com/sensiblebit/simplessl/internal/native"
)

// ErrorCode is a packed engine error code. Zero means success.
type ErrorCode = native.ErrorCode

// Empty is the payload of operations that produce no value.
type Empty = struct{}

// Result is either a payload of type T or a nonzero error code. In the error
// state the payload is always the zero value of T.
type Result[T any] struct {
	value T
	code  ErrorCode
}

// OK returns a successful Result holding v.
func OK[T any](v T) Result[T] {
	return Result[T]{value: v}
}

// Done returns a successful Result without a payload.
func Done() Result[Empty] {
	return Result[Empty]{}
}

// Err returns a failed Result. A zero code is replaced by
// native.ErrInternalCode so that a failure can never read as success.
func Err[T any](code ErrorCode) Result[T] {
	if code == 0 {
		code = native.ErrInternalCode
	}
	return Result[T]{code: code}
}

// Fail is Err for operations without a payload.
func Fail(code ErrorCode) Result[Empty] {
	return Err[Empty](code)
}

// FromLastError reads and clears the engine's last-error slot and returns it
// as a failed Result. op names the failing call in the debug log.
func FromLastError[T any](op string) Result[T] {
	code := native.ErrGetError()
	if code == 0 {
		slog.Debug("native call failed without an error code", "op", op)
		return Err[T](native.ErrInternalCode)
	}
	slog.Debug("native call failed", "op", op, "code", fmt.Sprintf("%#08x", uint64(code)))
	return Err[T](code)
}

// Succeeded reports whether the Result holds a payload.
func (r Result[T]) Succeeded() bool { return r.code == 0 }

// Failed reports whether the Result holds an error code.
func (r Result[T]) Failed() bool { return r.code != 0 }

// HasValue is an alias for Succeeded.
func (r Result[T]) HasValue() bool { return r.code == 0 }

// HasError is an alias for Failed.
func (r Result[T]) HasError() bool { return r.code != 0 }

// ErrorCode returns the stored code, 0 on success.
func (r Result[T]) ErrorCode() ErrorCode { return r.code }

// Message returns "ok" on success. Otherwise it returns the catalog text for
// the code, or "unknown error" when the code is not in the catalog.
func (r Result[T]) Message() string {
	return ErrorString(r.code)
}

// Value returns the payload, or the zero value of T on failure.
func (r Result[T]) Value() T {
	return r.value
}

// Take moves the payload out. The Result keeps its code and holds the zero
// value afterwards, so a moved *Owned is not reachable twice.
func (r *Result[T]) Take() T {
	v := r.value
	var zero T
	r.value = zero
	return v
}

// Err returns nil on success and an *Error carrying the code otherwise.
func (r Result[T]) Err() error {
	if r.code == 0 {
		return nil
	}
	return &Error{Code: r.code}
}

// Unwrap returns the payload and Err together.
func (r Result[T]) Unwrap() (T, error) {
	return r.value, r.Err()
}

// String implements fmt.Stringer.
func (r Result[T]) String() string {
	if r.code == 0 {
		return fmt.Sprintf("ok(%v)", r.value)
	}
	return fmt.Sprintf("error(%#08x: %s)", uint64(r.code), r.Message())
}
