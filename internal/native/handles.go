package native

import (
	"sync"
	"sync/atomic"
)

// Handle is an opaque reference to an engine object. The zero Handle is null.
type Handle uintptr

// Null is the null handle returned by failed constructors.
const Null Handle = 0

var (
	mu   sync.Mutex
	next Handle = 1
	reg         = map[Handle]any{}

	frees atomic.Uint64
)

// put registers obj and returns its new handle.
func put(obj any) Handle {
	mu.Lock()
	h := next
	next++
	reg[h] = obj
	mu.Unlock()
	return h
}

// lookup returns the object registered under h if it has type T.
// A null, unknown or wrongly typed handle records ErrInvalidHandle.
func lookup[T any](h Handle) (T, bool) {
	var zero T
	if h == Null {
		raise(LibCrypto, ReasonPassedNullParameter)
		return zero, false
	}
	mu.Lock()
	v, ok := reg[h]
	mu.Unlock()
	if !ok {
		raise(LibCrypto, ReasonInvalidHandle)
		return zero, false
	}
	obj, ok := v.(T)
	if !ok {
		raise(LibCrypto, ReasonInvalidHandle)
		return zero, false
	}
	return obj, true
}

// drop removes h from the registry if it holds a T.
func drop[T any](h Handle) (T, bool) {
	var zero T
	if h == Null {
		return zero, false
	}
	mu.Lock()
	defer mu.Unlock()
	v, ok := reg[h]
	if !ok {
		raise(LibCrypto, ReasonInvalidHandle)
		return zero, false
	}
	obj, ok := v.(T)
	if !ok {
		raise(LibCrypto, ReasonInvalidHandle)
		return zero, false
	}
	delete(reg, h)
	frees.Add(1)
	return obj, true
}

// LiveObjects returns the number of handles that have not been freed.
func LiveObjects() int {
	mu.Lock()
	defer mu.Unlock()
	return len(reg)
}

// FreeCount returns the number of successful frees since process start.
func FreeCount() uint64 {
	return frees.Load()
}

// IsLive reports whether h currently references an object.
func IsLive(h Handle) bool {
	if h == Null {
		return false
	}
	mu.Lock()
	defer mu.Unlock()
	_, ok := reg[h]
	return ok
}
