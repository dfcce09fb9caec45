package simplessl

import "github.com/sensiblebit/simplessl/internal/native"

// Kind binds an Owned to the engine function that frees its handle. The set
// of kinds is closed.
type Kind interface {
	free(native.Handle)
}

type (
	CertKind      struct{}
	CRLKind       struct{}
	PKeyKind      struct{}
	RSAKind       struct{}
	ECKeyKind     struct{}
	BigNumKind    struct{}
	CertStackKind struct{}
	StoreKind     struct{}
)

func (CertKind) free(h native.Handle)      { native.X509Free(h) }
func (CRLKind) free(h native.Handle)       { native.X509CRLFree(h) }
func (PKeyKind) free(h native.Handle)      { native.EVPPKeyFree(h) }
func (RSAKind) free(h native.Handle)       { native.RSAFree(h) }
func (ECKeyKind) free(h native.Handle)     { native.ECKeyFree(h) }
func (BigNumKind) free(h native.Handle)    { native.BNFree(h) }
func (CertStackKind) free(h native.Handle) { native.SKX509PopFree(h) }
func (StoreKind) free(h native.Handle)     { native.X509StoreFree(h) }

type (
	Cert      = Owned[CertKind]
	CRL       = Owned[CRLKind]
	PKey      = Owned[PKeyKind]
	RSAKey    = Owned[RSAKind]
	ECKey     = Owned[ECKeyKind]
	BigNum    = Owned[BigNumKind]
	CertStack = Owned[CertStackKind]
	Store     = Owned[StoreKind]
)
