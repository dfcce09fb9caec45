package certs

import (
	"runtime"
	"time"

	"github.com/sensiblebit/simplessl"
	"github.com/sensiblebit/simplessl/internal/native"
)

// LoadMozillaStore returns a trust store with the Mozilla root program's
// certificates.
func LoadMozillaStore() simplessl.Result[*simplessl.Store] {
	h := native.X509StoreLoadMozilla()
	if h == native.Null {
		return simplessl.FromLastError[*simplessl.Store]("X509StoreLoadMozilla")
	}
	return simplessl.OK(simplessl.Own[simplessl.StoreKind](h))
}

// NewStore returns a trust store holding copies of roots. The caller keeps
// ownership of roots.
func NewStore(roots ...*simplessl.Cert) simplessl.Result[*simplessl.Store] {
	store := simplessl.Own[simplessl.StoreKind](native.X509StoreNew())
	for _, root := range roots {
		if !native.X509StoreAddCert(store.Get(), root.Get()) {
			store.Close()
			return simplessl.FromLastError[*simplessl.Store]("X509StoreAddCert")
		}
	}
	return simplessl.OK(store)
}

// VerifyChain builds a chain from cert to a root in store at the current
// time. intermediates may be nil.
func VerifyChain(store *simplessl.Store, cert *simplessl.Cert, intermediates *simplessl.CertStack) simplessl.Result[simplessl.Empty] {
	return VerifyChainAt(store, cert, intermediates, time.Time{})
}

// VerifyChainAt is VerifyChain evaluated at the given time.
func VerifyChainAt(store *simplessl.Store, cert *simplessl.Cert, intermediates *simplessl.CertStack, at time.Time) simplessl.Result[simplessl.Empty] {
	defer runtime.KeepAlive(store)
	defer runtime.KeepAlive(cert)
	defer runtime.KeepAlive(intermediates)
	if !native.X509VerifyCert(store.Get(), cert.Get(), intermediates.Get(), at) {
		return simplessl.FromLastError[simplessl.Empty]("X509VerifyCert")
	}
	return simplessl.Done()
}
