// Package native is the handle-based cryptography engine that simplessl
// wraps. Its contract mirrors a C library's: objects are referenced through
// opaque Handle values, constructors signal failure by returning a null
// handle (or a zero status), every object kind has its own free function,
// and the reason for the most recent failure is recorded as a packed numeric
// code in a single process-wide last-error slot.
//
// Callers are expected to read the slot (ErrGetError) immediately after a
// failing call. Nothing in this package retains ownership of a handle after
// it has been returned; freeing it is the caller's job.
package native
