// Package keys converts keys between encodings and engine handles, generates
// keys, and signs and verifies with SHA-256.
package keys

import (
	"github.com/sensiblebit/simplessl"
	"github.com/sensiblebit/simplessl/internal/native"
)

// KeyType is the algorithm of a key.
type KeyType int

const (
	KeyUnknown KeyType = iota
	KeyRSA
	KeyEC
	KeyEd25519
	KeyDSA
)

func (k KeyType) String() string {
	switch k {
	case KeyRSA:
		return "RSA"
	case KeyEC:
		return "EC"
	case KeyEd25519:
		return "Ed25519"
	case KeyDSA:
		return "DSA"
	}
	return "unknown"
}

// KeyTypeOf maps a public key algorithm NID to a KeyType.
func KeyTypeOf(nid int) KeyType {
	switch nid {
	case native.NIDRSAEncryption:
		return KeyRSA
	case native.NIDECPublicKey:
		return KeyEC
	case native.NIDED25519:
		return KeyEd25519
	case native.NIDDSA:
		return KeyDSA
	}
	return KeyUnknown
}

// Curve is a named elliptic curve, identified by its NID.
type Curve int

const (
	CurveUnknown Curve = native.NIDUndef
	Secp224r1    Curve = native.NIDSecp224r1
	Prime256v1   Curve = native.NIDPrime256v1
	Secp384r1    Curve = native.NIDSecp384r1
	Secp521r1    Curve = native.NIDSecp521r1
)

func ownPKey(h native.Handle, op string) simplessl.Result[*simplessl.PKey] {
	if h == native.Null {
		return simplessl.FromLastError[*simplessl.PKey](op)
	}
	return simplessl.OK(simplessl.Own[simplessl.PKeyKind](h))
}
