package simplessl

import (
	"runtime"

	"github.com/sensiblebit/simplessl/internal/native"
)

// noCopy makes `go vet` report copies of the struct that embeds it.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// Owned is the single owner of an engine handle of kind K. Use it through a
// pointer; the zero value and an Owned holding native.Null are inert.
type Owned[K Kind] struct {
	_ noCopy

	raw     native.Handle
	cleanup runtime.Cleanup
	armed   bool
}

// Own takes ownership of raw, which may be native.Null.
func Own[K Kind](raw native.Handle) *Owned[K] {
	o := &Owned[K]{raw: raw}
	o.arm()
	return o
}

func (o *Owned[K]) arm() {
	if o.raw == native.Null {
		return
	}
	var k K
	o.cleanup = runtime.AddCleanup(o, k.free, o.raw)
	o.armed = true
}

// disarm detaches the handle from o and stops its cleanup.
func (o *Owned[K]) disarm() native.Handle {
	if o.armed {
		o.cleanup.Stop()
		o.armed = false
	}
	raw := o.raw
	o.raw = native.Null
	return raw
}

// Move transfers ownership to a new Owned. o is left null.
func (o *Owned[K]) Move() *Owned[K] {
	if o == nil {
		return Own[K](native.Null)
	}
	return Own[K](o.disarm())
}

// Close frees the handle if one is held. Calling it again is a no-op.
func (o *Owned[K]) Close() error {
	if o == nil {
		return nil
	}
	if raw := o.disarm(); raw != native.Null {
		var k K
		k.free(raw)
	}
	return nil
}

// Get returns the raw handle without giving up ownership. o must stay
// reachable until the engine is done with the handle; callers that pass the
// handle on follow the call with runtime.KeepAlive(o).
func (o *Owned[K]) Get() native.Handle {
	if o == nil {
		return native.Null
	}
	return o.raw
}

// Release gives up ownership and returns the raw handle. The caller, or the
// engine call it is passed to, becomes responsible for freeing it.
func (o *Owned[K]) Release() native.Handle {
	if o == nil {
		return native.Null
	}
	return o.disarm()
}

// Valid reports whether o holds a non-null handle.
func (o *Owned[K]) Valid() bool {
	return o != nil && o.raw != native.Null
}
