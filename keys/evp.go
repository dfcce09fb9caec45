package keys

import (
	"runtime"

	"github.com/sensiblebit/simplessl"
	"github.com/sensiblebit/simplessl/internal/native"
)

// ConvertPubKeyToDer returns the SubjectPublicKeyInfo DER of pkey.
func ConvertPubKeyToDer(pkey *simplessl.PKey) simplessl.Result[[]byte] {
	defer runtime.KeepAlive(pkey)
	der := native.I2DPubKey(pkey.Get())
	if der == nil {
		return simplessl.FromLastError[[]byte]("I2DPubKey")
	}
	return simplessl.OK(der)
}

// ConvertPubKeyToPem returns the public key as a PUBLIC KEY block.
func ConvertPubKeyToPem(pkey *simplessl.PKey) simplessl.Result[string] {
	defer runtime.KeepAlive(pkey)
	out := native.PEMWritePubKey(pkey.Get())
	if out == nil {
		return simplessl.FromLastError[string]("PEMWritePubKey")
	}
	return simplessl.OK(string(out))
}

// ConvertDerToPubKey parses a SubjectPublicKeyInfo.
func ConvertDerToPubKey(der []byte) simplessl.Result[*simplessl.PKey] {
	return ownPKey(native.D2IPubKey(der), "D2IPubKey")
}

// ConvertPemToPubKey parses the first PUBLIC KEY block.
func ConvertPemToPubKey(pem []byte) simplessl.Result[*simplessl.PKey] {
	return ownPKey(native.PEMReadPubKey(pem), "PEMReadPubKey")
}

// ConvertPemToPrivKey parses a private key in PKCS#1, PKCS#8, SEC1, legacy
// encrypted PEM or OpenSSH form. Encrypted keys are tried with each password
// in order.
func ConvertPemToPrivKey(pem []byte, passwords []string) simplessl.Result[*simplessl.PKey] {
	return ownPKey(native.PEMReadPrivateKey(pem, passwords), "PEMReadPrivateKey")
}

// ConvertPemFileToPrivKey reads a private key from path.
func ConvertPemFileToPrivKey(path string, passwords []string) simplessl.Result[*simplessl.PKey] {
	data, ok := native.BIOReadFile(path)
	if !ok {
		return simplessl.FromLastError[*simplessl.PKey]("BIOReadFile")
	}
	return ConvertPemToPrivKey(data, passwords)
}

// ConvertPrivKeyToPem returns the private key as an unencrypted PKCS#8 block.
func ConvertPrivKeyToPem(pkey *simplessl.PKey) simplessl.Result[string] {
	defer runtime.KeepAlive(pkey)
	out := native.PEMWritePrivateKey(pkey.Get())
	if out == nil {
		return simplessl.FromLastError[string]("PEMWritePrivateKey")
	}
	return simplessl.OK(string(out))
}

// GetKeyType returns the algorithm of pkey.
func GetKeyType(pkey *simplessl.PKey) simplessl.Result[KeyType] {
	defer runtime.KeepAlive(pkey)
	nid := native.EVPPKeyID(pkey.Get())
	if nid == native.NIDUndef {
		return simplessl.FromLastError[KeyType]("EVPPKeyID")
	}
	return simplessl.OK(KeyTypeOf(nid))
}

// HasPrivate reports whether pkey carries private key material.
func HasPrivate(pkey *simplessl.PKey) bool {
	defer runtime.KeepAlive(pkey)
	return native.EVPPKeyHasPrivate(pkey.Get())
}

// CreateRsaKey generates an RSA key. Sizes below 1024 bits are rejected.
func CreateRsaKey(bits int) simplessl.Result[*simplessl.PKey] {
	return ownPKey(native.RSAGenerate(bits), "RSAGenerate")
}

// CreateEcKey generates an EC key on curve.
func CreateEcKey(curve Curve) simplessl.Result[*simplessl.PKey] {
	return ownPKey(native.ECGenerate(int(curve)), "ECGenerate")
}

// CreateEd25519Key generates an Ed25519 key.
func CreateEd25519Key() simplessl.Result[*simplessl.PKey] {
	return ownPKey(native.ED25519Generate(), "ED25519Generate")
}

// SignSha256 signs data with a private key. Ed25519 keys sign data directly.
func SignSha256(data []byte, pkey *simplessl.PKey) simplessl.Result[[]byte] {
	defer runtime.KeepAlive(pkey)
	sig := native.EVPSignSHA256(pkey.Get(), data)
	if sig == nil {
		return simplessl.FromLastError[[]byte]("EVPSignSHA256")
	}
	return simplessl.OK(sig)
}

// VerifySha256Signature checks sig over data.
func VerifySha256Signature(sig, data []byte, pkey *simplessl.PKey) simplessl.Result[simplessl.Empty] {
	defer runtime.KeepAlive(pkey)
	if !native.EVPVerifySHA256(pkey.Get(), sig, data) {
		return simplessl.FromLastError[simplessl.Empty]("EVPVerifySHA256")
	}
	return simplessl.Done()
}

// GetSignatureSize returns the maximum signature length for pkey in bytes.
func GetSignatureSize(pkey *simplessl.PKey) simplessl.Result[int] {
	defer runtime.KeepAlive(pkey)
	n := native.EVPPKeySize(pkey.Get())
	if n == 0 {
		return simplessl.FromLastError[int]("EVPPKeySize")
	}
	return simplessl.OK(n)
}

// GetPubKeyFingerprint returns the OpenSSH-style SHA256 fingerprint.
func GetPubKeyFingerprint(pkey *simplessl.PKey) simplessl.Result[string] {
	defer runtime.KeepAlive(pkey)
	fp := native.EVPPKeyFingerprint(pkey.Get())
	if fp == "" {
		return simplessl.FromLastError[string]("EVPPKeyFingerprint")
	}
	return simplessl.OK(fp)
}
