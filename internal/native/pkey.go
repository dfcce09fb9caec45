package native

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/pem"
	"errors"

	"golang.org/x/crypto/ssh"
)

type pkeyObj struct {
	pub  crypto.PublicKey
	priv crypto.Signer
}

type rsaObj struct {
	pub  *rsa.PublicKey
	priv *rsa.PrivateKey
}

type ecObj struct {
	pub  *ecdsa.PublicKey
	priv *ecdsa.PrivateKey
}

func newPKey(priv crypto.PrivateKey) (Handle, bool) {
	priv = normalizeKey(priv)
	signer, ok := priv.(crypto.Signer)
	if !ok {
		raise(LibEVP, ReasonUnsupportedAlgorithm)
		return Null, false
	}
	switch signer.(type) {
	case *rsa.PrivateKey, *ecdsa.PrivateKey, ed25519.PrivateKey:
	default:
		raise(LibEVP, ReasonUnsupportedAlgorithm)
		return Null, false
	}
	return put(&pkeyObj{pub: signer.Public(), priv: signer}), true
}

// normalizeKey dereferences *ed25519.PrivateKey, which ssh.ParseRawPrivateKey
// returns, so type switches only need the value form.
func normalizeKey(key crypto.PrivateKey) crypto.PrivateKey {
	if ptr, ok := key.(*ed25519.PrivateKey); ok {
		return *ptr
	}
	return key
}

// D2IPubKey parses a DER SubjectPublicKeyInfo.
func D2IPubKey(der []byte) Handle {
	if len(der) == 0 {
		raise(LibCrypto, ReasonPassedNullParameter)
		return Null
	}
	pub, err := x509.ParsePKIXPublicKey(der)
	if err != nil {
		if _, _, ok := spkiAlgorithm(der); ok {
			raise(LibX509, ReasonUnknownKeyType)
		} else {
			raiseDER(der)
		}
		return Null
	}
	switch pub.(type) {
	case *rsa.PublicKey, *ecdsa.PublicKey, ed25519.PublicKey:
	default:
		raise(LibX509, ReasonUnknownKeyType)
		return Null
	}
	return put(&pkeyObj{pub: pub})
}

// PEMReadPubKey parses the first PUBLIC KEY block in data.
func PEMReadPubKey(data []byte) Handle {
	der, ok := pemBlock(data, "PUBLIC KEY")
	if !ok {
		return Null
	}
	return D2IPubKey(der)
}

// I2DPubKey returns the DER SubjectPublicKeyInfo of pkey.
func I2DPubKey(h Handle) []byte {
	key, ok := lookup[*pkeyObj](h)
	if !ok {
		return nil
	}
	der, err := x509.MarshalPKIXPublicKey(key.pub)
	if err != nil {
		raise(LibX509, ReasonUnknownKeyType)
		return nil
	}
	return der
}

// PEMWritePubKey returns pkey's public half as a PUBLIC KEY block.
func PEMWritePubKey(h Handle) []byte {
	der := I2DPubKey(h)
	if der == nil {
		return nil
	}
	return pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})
}

// PEMReadPrivateKey parses a PEM private key in PKCS#1, PKCS#8, SEC1 or
// OpenSSH form. Encrypted keys (legacy RFC 1423 or OpenSSH) are tried with
// each password in order.
func PEMReadPrivateKey(data []byte, passwords []string) Handle {
	if len(data) == 0 {
		raise(LibCrypto, ReasonPassedNullParameter)
		return Null
	}
	block, _ := pem.Decode(data)
	if block == nil {
		raise(LibPEM, ReasonNoStartLine)
		return Null
	}

	if block.Type == "OPENSSH PRIVATE KEY" {
		key, err := ssh.ParseRawPrivateKey(data)
		if err == nil {
			h, _ := newPKey(key)
			return h
		}
		var missing *ssh.PassphraseMissingError
		if !errors.As(err, &missing) {
			raise(LibASN1, ReasonDecodeError)
			return Null
		}
		for _, password := range passwords {
			if password == "" {
				continue
			}
			if key, err := ssh.ParseRawPrivateKeyWithPassphrase(data, []byte(password)); err == nil {
				h, _ := newPKey(key)
				return h
			}
		}
		raise(LibPEM, ReasonBadDecrypt)
		return Null
	}

	//nolint:staticcheck // legacy encrypted PEM is still common in the wild
	if x509.IsEncryptedPEMBlock(block) {
		for _, password := range passwords {
			//nolint:staticcheck // see above
			der, err := x509.DecryptPEMBlock(block, []byte(password))
			if err != nil {
				continue
			}
			if key, ok := parsePrivateDER(block.Type, der); ok {
				h, _ := newPKey(key)
				return h
			}
		}
		raise(LibPEM, ReasonBadDecrypt)
		return Null
	}

	switch block.Type {
	case "RSA PRIVATE KEY", "EC PRIVATE KEY", "PRIVATE KEY":
	default:
		raise(LibPEM, ReasonUnsupportedKeyBlock)
		return Null
	}
	key, ok := parsePrivateDER(block.Type, block.Bytes)
	if !ok {
		raise(LibASN1, ReasonDecodeError)
		return Null
	}
	h, _ := newPKey(key)
	return h
}

// parsePrivateDER decodes a private key body. "PRIVATE KEY" blocks fall back
// to PKCS#1 and SEC1 because some tools mislabel them.
func parsePrivateDER(blockType string, der []byte) (crypto.PrivateKey, bool) {
	switch blockType {
	case "RSA PRIVATE KEY":
		k, err := x509.ParsePKCS1PrivateKey(der)
		return k, err == nil
	case "EC PRIVATE KEY":
		k, err := x509.ParseECPrivateKey(der)
		return k, err == nil
	}
	if k, err := x509.ParsePKCS8PrivateKey(der); err == nil {
		return k, true
	}
	if k, err := x509.ParsePKCS1PrivateKey(der); err == nil {
		return k, true
	}
	if k, err := x509.ParseECPrivateKey(der); err == nil {
		return k, true
	}
	return nil, false
}

// PEMWritePrivateKey returns pkey as an unencrypted PKCS#8 PRIVATE KEY block.
func PEMWritePrivateKey(h Handle) []byte {
	key, ok := lookup[*pkeyObj](h)
	if !ok {
		return nil
	}
	if key.priv == nil {
		raise(LibCrypto, ReasonPassedInvalidArgument)
		return nil
	}
	der, err := x509.MarshalPKCS8PrivateKey(key.priv)
	if err != nil {
		raise(LibEVP, ReasonUnsupportedAlgorithm)
		return nil
	}
	return pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der})
}

// EVPPKeyFree releases a key handle.
func EVPPKeyFree(h Handle) {
	drop[*pkeyObj](h)
}

// EVPPKeyID returns the key algorithm NID.
func EVPPKeyID(h Handle) int {
	key, ok := lookup[*pkeyObj](h)
	if !ok {
		return NIDUndef
	}
	switch key.pub.(type) {
	case *rsa.PublicKey:
		return NIDRSAEncryption
	case *ecdsa.PublicKey:
		return NIDECPublicKey
	case ed25519.PublicKey:
		return NIDED25519
	}
	return NIDUndef
}

// EVPPKeyHasPrivate reports whether pkey carries private material.
func EVPPKeyHasPrivate(h Handle) bool {
	key, ok := lookup[*pkeyObj](h)
	return ok && key.priv != nil
}

// EVPPKeyGet1RSA returns a new RSA handle sharing pkey's key material.
func EVPPKeyGet1RSA(h Handle) Handle {
	key, ok := lookup[*pkeyObj](h)
	if !ok {
		return Null
	}
	pub, ok := key.pub.(*rsa.PublicKey)
	if !ok {
		raise(LibEVP, ReasonExpectingAnRSAKey)
		return Null
	}
	obj := &rsaObj{pub: pub}
	if priv, ok := key.priv.(*rsa.PrivateKey); ok {
		obj.priv = priv
	}
	return put(obj)
}

// EVPPKeyGet1ECKey returns a new EC key handle sharing pkey's key material.
func EVPPKeyGet1ECKey(h Handle) Handle {
	key, ok := lookup[*pkeyObj](h)
	if !ok {
		return Null
	}
	pub, ok := key.pub.(*ecdsa.PublicKey)
	if !ok {
		raise(LibEVP, ReasonExpectingAnECKey)
		return Null
	}
	obj := &ecObj{pub: pub}
	if priv, ok := key.priv.(*ecdsa.PrivateKey); ok {
		obj.priv = priv
	}
	return put(obj)
}

// RSAFree releases an RSA handle.
func RSAFree(h Handle) {
	drop[*rsaObj](h)
}

// ECKeyFree releases an EC key handle.
func ECKeyFree(h Handle) {
	drop[*ecObj](h)
}

// RSABits returns the modulus size in bits, or 0.
func RSABits(h Handle) int {
	key, ok := lookup[*rsaObj](h)
	if !ok {
		return 0
	}
	return key.pub.N.BitLen()
}

// ECKeyCurveNID returns the NID of the key's named curve.
func ECKeyCurveNID(h Handle) int {
	key, ok := lookup[*ecObj](h)
	if !ok {
		return NIDUndef
	}
	nid := curveNID(key.pub.Curve)
	if nid == NIDUndef {
		raise(LibEC, ReasonUnknownGroup)
	}
	return nid
}

// ECKeyDegree returns the field size of the key's curve in bits, or 0.
func ECKeyDegree(h Handle) int {
	key, ok := lookup[*ecObj](h)
	if !ok {
		return 0
	}
	return key.pub.Curve.Params().BitSize
}

var curves = []struct {
	nid   int
	curve func() elliptic.Curve
}{
	{NIDSecp224r1, elliptic.P224},
	{NIDPrime256v1, elliptic.P256},
	{NIDSecp384r1, elliptic.P384},
	{NIDSecp521r1, elliptic.P521},
}

func curveNID(c elliptic.Curve) int {
	for _, e := range curves {
		if e.curve() == c {
			return e.nid
		}
	}
	return NIDUndef
}

func curveByNID(nid int) (elliptic.Curve, bool) {
	for _, e := range curves {
		if e.nid == nid {
			return e.curve(), true
		}
	}
	return nil, false
}

// RSAGenerate creates a new RSA key of the given size.
func RSAGenerate(bits int) Handle {
	if bits < 1024 {
		raise(LibRSA, ReasonKeySizeTooSmall)
		return Null
	}
	key, err := rsa.GenerateKey(rand.Reader, bits)
	if err != nil {
		raise(LibRSA, ReasonKeySizeTooSmall)
		return Null
	}
	h, _ := newPKey(key)
	return h
}

// ECGenerate creates a new EC key on the curve identified by nid.
func ECGenerate(nid int) Handle {
	curve, ok := curveByNID(nid)
	if !ok {
		raise(LibEC, ReasonUnknownGroup)
		return Null
	}
	key, err := ecdsa.GenerateKey(curve, rand.Reader)
	if err != nil {
		raise(LibCrypto, ReasonInternalError)
		return Null
	}
	h, _ := newPKey(key)
	return h
}

// ED25519Generate creates a new Ed25519 key.
func ED25519Generate() Handle {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		raise(LibCrypto, ReasonInternalError)
		return Null
	}
	h, _ := newPKey(priv)
	return h
}

// EVPSignSHA256 signs data with pkey. RSA uses PKCS#1 v1.5, ECDSA produces
// an ASN.1 signature, and Ed25519 signs data directly.
func EVPSignSHA256(h Handle, data []byte) []byte {
	key, ok := lookup[*pkeyObj](h)
	if !ok {
		return nil
	}
	if key.priv == nil {
		raise(LibCrypto, ReasonPassedInvalidArgument)
		return nil
	}
	var (
		sig []byte
		err error
	)
	if _, ok := key.priv.(ed25519.PrivateKey); ok {
		sig, err = key.priv.Sign(rand.Reader, data, crypto.Hash(0))
	} else {
		digest := sha256.Sum256(data)
		sig, err = key.priv.Sign(rand.Reader, digest[:], crypto.SHA256)
	}
	if err != nil {
		raise(LibEVP, ReasonUnsupportedAlgorithm)
		return nil
	}
	return sig
}

// EVPVerifySHA256 verifies sig over data with pkey.
func EVPVerifySHA256(h Handle, sig, data []byte) bool {
	key, ok := lookup[*pkeyObj](h)
	if !ok {
		return false
	}
	nid := NIDSHA256WithRSA
	switch key.pub.(type) {
	case *ecdsa.PublicKey:
		nid = NIDECDSAWithSHA256
	case ed25519.PublicKey:
		nid = NIDED25519
	}
	if err := checkSignature(nid, key.pub, data, sig); err != nil {
		if nid == NIDSHA256WithRSA {
			raise(LibRSA, ReasonBadSignature)
		} else {
			raise(LibEVP, ReasonVerifyFailure)
		}
		return false
	}
	return true
}

// EVPPKeySize returns the maximum signature size for pkey in bytes, or 0.
func EVPPKeySize(h Handle) int {
	key, ok := lookup[*pkeyObj](h)
	if !ok {
		return 0
	}
	switch k := key.pub.(type) {
	case *rsa.PublicKey:
		return k.Size()
	case *ecdsa.PublicKey:
		return ecdsaSigSize((k.Curve.Params().N.BitLen() + 7) / 8)
	case ed25519.PublicKey:
		return ed25519.SignatureSize
	}
	return 0
}

// ecdsaSigSize is the DER size of SEQUENCE { INTEGER r, INTEGER s } when
// both integers need a leading zero byte.
func ecdsaSigSize(orderLen int) int {
	intLen := orderLen + 1
	integer := 1 + derLenSize(intLen) + intLen
	body := 2 * integer
	return 1 + derLenSize(body) + body
}

func derLenSize(n int) int {
	size := 1
	if n >= 0x80 {
		for ; n > 0; n >>= 8 {
			size++
		}
	}
	return size
}

// EVPPKeyFingerprint returns the OpenSSH SHA256 fingerprint of the public key.
func EVPPKeyFingerprint(h Handle) string {
	key, ok := lookup[*pkeyObj](h)
	if !ok {
		return ""
	}
	pub, err := ssh.NewPublicKey(key.pub)
	if err != nil {
		raise(LibEVP, ReasonUnsupportedAlgorithm)
		return ""
	}
	return ssh.FingerprintSHA256(pub)
}

func privateKey(h Handle) (crypto.Signer, bool) {
	key, ok := lookup[*pkeyObj](h)
	if !ok {
		return nil, false
	}
	if key.priv == nil {
		raise(LibCrypto, ReasonPassedInvalidArgument)
		return nil, false
	}
	return key.priv, true
}
