package native

import (
	"crypto/x509"
	"encoding/pem"
	"time"
)

// RevokedEntry is one revokedCertificates element.
type RevokedEntry struct {
	Serial     []byte
	Revocation time.Time
	Extensions []Extension
}

// D2IX509CRL parses a DER certificate revocation list.
func D2IX509CRL(der []byte) Handle {
	if len(der) == 0 {
		raise(LibCrypto, ReasonPassedNullParameter)
		return Null
	}
	if _, ok := splitSigned(der); !ok {
		raiseDER(der)
		return Null
	}
	crl, err := x509.ParseRevocationList(der)
	if err != nil {
		raise(LibASN1, ReasonNestedASN1Error)
		return Null
	}
	return put(crl)
}

// PEMReadX509CRL parses the first X509 CRL block in data.
func PEMReadX509CRL(data []byte) Handle {
	der, ok := pemBlock(data, "X509 CRL")
	if !ok {
		return Null
	}
	return D2IX509CRL(der)
}

// X509CRLFree releases a CRL handle.
func X509CRLFree(h Handle) {
	drop[*x509.RevocationList](h)
}

// I2DX509CRL returns the DER encoding of a CRL.
func I2DX509CRL(h Handle) []byte {
	crl, ok := lookup[*x509.RevocationList](h)
	if !ok {
		return nil
	}
	return append([]byte(nil), crl.Raw...)
}

// PEMWriteX509CRL returns the PEM encoding of a CRL.
func PEMWriteX509CRL(h Handle) []byte {
	der := I2DX509CRL(h)
	if der == nil {
		return nil
	}
	return pem.EncodeToMemory(&pem.Block{Type: "X509 CRL", Bytes: der})
}

// X509CRLGetVersion returns the raw version (0 for v1, 1 for v2), or -1.
func X509CRLGetVersion(h Handle) int64 {
	crl, ok := lookup[*x509.RevocationList](h)
	if !ok {
		return -1
	}
	s, _ := splitSigned(crl.Raw)
	v, ok := readVersion(&s.tbsBody, false)
	if !ok {
		raise(LibASN1, ReasonDecodeError)
		return -1
	}
	return v
}

// X509CRLGetIssuer decodes the CRL issuer.
func X509CRLGetIssuer(h Handle) (Name, bool) {
	crl, ok := lookup[*x509.RevocationList](h)
	if !ok {
		return Name{}, false
	}
	return decodeName(crl.RawIssuer)
}

// X509CRLGetUpdates returns thisUpdate and nextUpdate. nextUpdate is zero
// when the CRL omits it.
func X509CRLGetUpdates(h Handle) (thisUpdate, nextUpdate time.Time, ok bool) {
	crl, ok := lookup[*x509.RevocationList](h)
	if !ok {
		return time.Time{}, time.Time{}, false
	}
	return crl.ThisUpdate, crl.NextUpdate, true
}

// X509CRLGetExtensions returns the crlExtensions in encoding order.
func X509CRLGetExtensions(h Handle) ([]Extension, bool) {
	crl, ok := lookup[*x509.RevocationList](h)
	if !ok {
		return nil, false
	}
	exts := make([]Extension, 0, len(crl.Extensions))
	for _, e := range crl.Extensions {
		exts = append(exts, makeExtension(rawExtension{
			oid:      e.Id.String(),
			critical: e.Critical,
			value:    e.Value,
		}))
	}
	return exts, true
}

// X509CRLGetRevoked returns the revoked entries with serials exactly as
// encoded.
func X509CRLGetRevoked(h Handle) ([]RevokedEntry, bool) {
	crl, ok := lookup[*x509.RevocationList](h)
	if !ok {
		return nil, false
	}
	out := make([]RevokedEntry, 0, len(crl.RevokedCertificateEntries))
	for _, rc := range crl.RevokedCertificateEntries {
		serial, ok := entrySerialContent(rc.Raw)
		if !ok {
			raise(LibASN1, ReasonDecodeError)
			return nil, false
		}
		entry := RevokedEntry{
			Serial:     serial,
			Revocation: rc.RevocationTime,
		}
		for _, e := range rc.Extensions {
			entry.Extensions = append(entry.Extensions, makeExtension(rawExtension{
				oid:      e.Id.String(),
				critical: e.Critical,
				value:    e.Value,
			}))
		}
		out = append(out, entry)
	}
	return out, true
}

// X509CRLGetSignature returns the signature bits.
func X509CRLGetSignature(h Handle) []byte {
	crl, ok := lookup[*x509.RevocationList](h)
	if !ok {
		return nil
	}
	return append([]byte(nil), crl.Signature...)
}

// X509CRLGetSignatureNID returns the NID of the signature algorithm.
func X509CRLGetSignatureNID(h Handle) int {
	crl, ok := lookup[*x509.RevocationList](h)
	if !ok {
		return NIDUndef
	}
	s, _ := splitSigned(crl.Raw)
	return oidToNID(s.sigAlg)
}

// X509CRLVerify checks the CRL signature against pkey.
func X509CRLVerify(h, pkey Handle) bool {
	crl, ok := lookup[*x509.RevocationList](h)
	if !ok {
		return false
	}
	key, ok := lookup[*pkeyObj](pkey)
	if !ok {
		return false
	}
	s, ok := splitSigned(crl.Raw)
	if !ok {
		raise(LibASN1, ReasonDecodeError)
		return false
	}
	return verifySigned(s, key.pub)
}
