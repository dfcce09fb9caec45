package keys

import (
	"runtime"

	"github.com/sensiblebit/simplessl"
	"github.com/sensiblebit/simplessl/internal/native"
)

// ConvertToRsa returns an RSA view of pkey. The view is owned separately
// and may outlive pkey.
func ConvertToRsa(pkey *simplessl.PKey) simplessl.Result[*simplessl.RSAKey] {
	defer runtime.KeepAlive(pkey)
	h := native.EVPPKeyGet1RSA(pkey.Get())
	if h == native.Null {
		return simplessl.FromLastError[*simplessl.RSAKey]("EVPPKeyGet1RSA")
	}
	return simplessl.OK(simplessl.Own[simplessl.RSAKind](h))
}

// GetRsaKeyBits returns the modulus size in bits.
func GetRsaKeyBits(key *simplessl.RSAKey) simplessl.Result[int] {
	defer runtime.KeepAlive(key)
	bits := native.RSABits(key.Get())
	if bits == 0 {
		return simplessl.FromLastError[int]("RSABits")
	}
	return simplessl.OK(bits)
}
