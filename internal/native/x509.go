package native

import (
	stdx509 "crypto/x509"
	"encoding/pem"
	"time"

	ctx509 "github.com/google/certificate-transparency-go/x509"
	"github.com/google/certificate-transparency-go/x509util"
)

// D2IX509 parses a DER certificate. Non-fatal deviations from RFC 5280 are
// tolerated so that real-world certificates can still be inspected.
func D2IX509(der []byte) Handle {
	if len(der) == 0 {
		raise(LibCrypto, ReasonPassedNullParameter)
		return Null
	}
	cert, ok := parseCert(der)
	if !ok {
		return Null
	}
	return put(cert)
}

func parseCert(der []byte) (*ctx509.Certificate, bool) {
	if _, ok := splitSigned(der); !ok {
		raiseDER(der)
		return nil, false
	}
	cert, err := ctx509.ParseCertificate(der)
	if cert == nil || (err != nil && ctx509.IsFatal(err)) {
		raise(LibASN1, ReasonNestedASN1Error)
		return nil, false
	}
	return cert, true
}

// raiseDER picks a reason for DER that fails outer structure checks.
func raiseDER(der []byte) {
	switch {
	case len(der) < 2:
		raise(LibASN1, ReasonNotEnoughData)
	case der[0] != 0x30:
		raise(LibASN1, ReasonWrongTag)
	default:
		raise(LibASN1, ReasonHeaderTooLong)
	}
}

// PEMReadX509 parses the first CERTIFICATE block in data.
func PEMReadX509(data []byte) Handle {
	der, ok := pemBlock(data, "CERTIFICATE", "X509 CERTIFICATE", "TRUSTED CERTIFICATE")
	if !ok {
		return Null
	}
	return D2IX509(der)
}

func pemBlock(data []byte, types ...string) ([]byte, bool) {
	if len(data) == 0 {
		raise(LibCrypto, ReasonPassedNullParameter)
		return nil, false
	}
	rest := data
	for {
		var block *pem.Block
		block, rest = pem.Decode(rest)
		if block == nil {
			raise(LibPEM, ReasonNoStartLine)
			return nil, false
		}
		for _, t := range types {
			if block.Type == t {
				return block.Bytes, true
			}
		}
	}
}

// X509Free releases a certificate handle.
func X509Free(h Handle) {
	drop[*ctx509.Certificate](h)
}

// X509Dup returns a new handle for the same certificate. Both handles must
// be freed.
func X509Dup(h Handle) Handle {
	cert, ok := lookup[*ctx509.Certificate](h)
	if !ok {
		return Null
	}
	return put(cert)
}

// I2DX509 returns the DER encoding of a certificate.
func I2DX509(h Handle) []byte {
	cert, ok := lookup[*ctx509.Certificate](h)
	if !ok {
		return nil
	}
	return append([]byte(nil), cert.Raw...)
}

// PEMWriteX509 returns the PEM encoding of a certificate.
func PEMWriteX509(h Handle) []byte {
	der := I2DX509(h)
	if der == nil {
		return nil
	}
	return pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})
}

// X509GetVersion returns the raw version field (0 for v1, 2 for v3), or -1.
func X509GetVersion(h Handle) int64 {
	cert, ok := lookup[*ctx509.Certificate](h)
	if !ok {
		return -1
	}
	s, _ := splitSigned(cert.Raw)
	v, ok := readVersion(&s.tbsBody, true)
	if !ok {
		raise(LibASN1, ReasonDecodeError)
		return -1
	}
	return v
}

// X509GetSerialNumber returns the content octets of the serial INTEGER.
func X509GetSerialNumber(h Handle) []byte {
	cert, ok := lookup[*ctx509.Certificate](h)
	if !ok {
		return nil
	}
	serial, ok := certSerialContent(cert.Raw)
	if !ok {
		raise(LibASN1, ReasonDecodeError)
		return nil
	}
	return serial
}

// X509GetSerialNumberBN returns the serial number as a new BIGNUM handle.
func X509GetSerialNumberBN(h Handle) Handle {
	cert, ok := lookup[*ctx509.Certificate](h)
	if !ok {
		return Null
	}
	if cert.SerialNumber == nil {
		raise(LibASN1, ReasonDecodeError)
		return Null
	}
	return newBN(cert.SerialNumber)
}

// X509GetSubjectName decodes the subject.
func X509GetSubjectName(h Handle) (Name, bool) {
	cert, ok := lookup[*ctx509.Certificate](h)
	if !ok {
		return Name{}, false
	}
	return decodeName(cert.RawSubject)
}

// X509GetIssuerName decodes the issuer.
func X509GetIssuerName(h Handle) (Name, bool) {
	cert, ok := lookup[*ctx509.Certificate](h)
	if !ok {
		return Name{}, false
	}
	return decodeName(cert.RawIssuer)
}

func decodeName(der []byte) (Name, bool) {
	n, ok := parseName(der)
	if !ok {
		raise(LibASN1, ReasonDecodeError)
		return Name{}, false
	}
	return n, true
}

// X509GetValidity returns notBefore and notAfter.
func X509GetValidity(h Handle) (notBefore, notAfter time.Time, ok bool) {
	cert, ok := lookup[*ctx509.Certificate](h)
	if !ok {
		return time.Time{}, time.Time{}, false
	}
	return cert.NotBefore, cert.NotAfter, true
}

// X509GetPubKey returns a new public-key handle for the certificate's key.
func X509GetPubKey(h Handle) Handle {
	cert, ok := lookup[*ctx509.Certificate](h)
	if !ok {
		return Null
	}
	return D2IPubKey(cert.RawSubjectPublicKeyInfo)
}

// X509GetPubKeyNID returns the NID of the public key algorithm.
func X509GetPubKeyNID(h Handle) int {
	cert, ok := lookup[*ctx509.Certificate](h)
	if !ok {
		return NIDUndef
	}
	alg, _, ok := spkiAlgorithm(cert.RawSubjectPublicKeyInfo)
	if !ok {
		raise(LibASN1, ReasonDecodeError)
		return NIDUndef
	}
	return oidToNID(alg)
}

// X509GetSignature returns the signature bits.
func X509GetSignature(h Handle) []byte {
	cert, ok := lookup[*ctx509.Certificate](h)
	if !ok {
		return nil
	}
	s, ok := splitSigned(cert.Raw)
	if !ok {
		raise(LibASN1, ReasonDecodeError)
		return nil
	}
	return append([]byte(nil), s.signature...)
}

// X509GetSignatureNID returns the NID of the outer signature algorithm, or
// NIDUndef when it is not in the object table.
func X509GetSignatureNID(h Handle) int {
	cert, ok := lookup[*ctx509.Certificate](h)
	if !ok {
		return NIDUndef
	}
	s, _ := splitSigned(cert.Raw)
	return oidToNID(s.sigAlg)
}

// X509GetExtensions returns the certificate's extensions in encoding order.
func X509GetExtensions(h Handle) ([]Extension, bool) {
	cert, ok := lookup[*ctx509.Certificate](h)
	if !ok {
		return nil, false
	}
	exts := make([]Extension, 0, len(cert.Extensions))
	for _, e := range cert.Extensions {
		exts = append(exts, makeExtension(rawExtension{
			oid:      e.Id.String(),
			critical: e.Critical,
			value:    e.Value,
		}))
	}
	return exts, true
}

// X509Verify checks the certificate's signature against the key in pkey.
func X509Verify(h, pkey Handle) bool {
	cert, ok := lookup[*ctx509.Certificate](h)
	if !ok {
		return false
	}
	key, ok := lookup[*pkeyObj](pkey)
	if !ok {
		return false
	}
	s, ok := splitSigned(cert.Raw)
	if !ok {
		raise(LibASN1, ReasonDecodeError)
		return false
	}
	return verifySigned(s, key.pub)
}

// X509SelfSigned reports whether the certificate's issuer equals its subject
// and its signature verifies under its own key. A clean "no" leaves the slot
// untouched.
func X509SelfSigned(h Handle) (selfSigned, ok bool) {
	cert, ok := lookup[*ctx509.Certificate](h)
	if !ok {
		return false, false
	}
	if string(cert.RawSubject) != string(cert.RawIssuer) {
		return false, true
	}
	pub, err := stdx509.ParsePKIXPublicKey(cert.RawSubjectPublicKeyInfo)
	if err != nil {
		return false, true
	}
	s, ok := splitSigned(cert.Raw)
	if !ok {
		return false, true
	}
	return checkSignature(oidToNID(s.sigAlg), pub, s.tbs, s.signature) == nil, true
}

// X509Print renders the certificate in `openssl x509 -text` layout.
func X509Print(h Handle) string {
	cert, ok := lookup[*ctx509.Certificate](h)
	if !ok {
		return ""
	}
	return x509util.CertificateToString(cert)
}

// stdCert converts an engine certificate for libraries that expect the
// standard library type.
func stdCert(cert *ctx509.Certificate) (*stdx509.Certificate, bool) {
	c, err := stdx509.ParseCertificate(cert.Raw)
	if err != nil {
		raise(LibASN1, ReasonNestedASN1Error)
		return nil, false
	}
	return c, true
}
