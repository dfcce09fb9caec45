package certs

import (
	"log/slog"
	"runtime"
	"time"

	"github.com/sensiblebit/simplessl"
	"github.com/sensiblebit/simplessl/internal/native"
)

// Revoked is one entry of a CRL's revokedCertificates list.
type Revoked struct {
	Serial     []byte
	Date       time.Time
	Extensions []CRLExtension
}

// UpdateTimes holds thisUpdate and nextUpdate. Next is zero when the CRL
// omits it.
type UpdateTimes struct {
	This time.Time
	Next time.Time
}

func ownCRL(h native.Handle, op string) simplessl.Result[*simplessl.CRL] {
	if h == native.Null {
		return simplessl.FromLastError[*simplessl.CRL](op)
	}
	return simplessl.OK(simplessl.Own[simplessl.CRLKind](h))
}

// ConvertPemFileToCRL reads the first X509 CRL block from a PEM file.
func ConvertPemFileToCRL(path string) simplessl.Result[*simplessl.CRL] {
	data, ok := readFile(path)
	if !ok {
		return simplessl.FromLastError[*simplessl.CRL]("BIOReadFile")
	}
	return ConvertPemToCRL(data)
}

// ConvertPemToCRL parses the first X509 CRL block in pem.
func ConvertPemToCRL(pem []byte) simplessl.Result[*simplessl.CRL] {
	return ownCRL(native.PEMReadX509CRL(pem), "PEMReadX509CRL")
}

// ConvertDerToCRL parses a DER CRL.
func ConvertDerToCRL(der []byte) simplessl.Result[*simplessl.CRL] {
	return ownCRL(native.D2IX509CRL(der), "D2IX509CRL")
}

// ConvertDerFileToCRL reads a DER CRL from path.
func ConvertDerFileToCRL(path string) simplessl.Result[*simplessl.CRL] {
	data, ok := readFile(path)
	if !ok {
		return simplessl.FromLastError[*simplessl.CRL]("BIOReadFile")
	}
	return ConvertDerToCRL(data)
}

func ConvertCRLToDer(crl *simplessl.CRL) simplessl.Result[[]byte] {
	defer runtime.KeepAlive(crl)
	return bytesResult(native.I2DX509CRL(crl.Get()), "I2DX509CRL")
}

func ConvertCRLToDerFile(crl *simplessl.CRL, path string) simplessl.Result[simplessl.Empty] {
	defer runtime.KeepAlive(crl)
	der := native.I2DX509CRL(crl.Get())
	if der == nil {
		return simplessl.FromLastError[simplessl.Empty]("I2DX509CRL")
	}
	return writeFile(path, der, "BIOWriteFile")
}

func ConvertCRLToPem(crl *simplessl.CRL) simplessl.Result[string] {
	defer runtime.KeepAlive(crl)
	out := native.PEMWriteX509CRL(crl.Get())
	if out == nil {
		return simplessl.FromLastError[string]("PEMWriteX509CRL")
	}
	return simplessl.OK(string(out))
}

// GetCRLVersion returns the decoded version and the raw field value. A v1
// CRL omits the field and reads as V1, 0.
func GetCRLVersion(crl *simplessl.CRL) (Version, int64) {
	defer runtime.KeepAlive(crl)
	raw := native.X509CRLGetVersion(crl.Get())
	if raw < 0 {
		slog.Debug("reading CRL version failed", "code", native.ErrGetError())
	}
	return versionOf(raw), raw
}

func GetCRLIssuer(crl *simplessl.CRL) simplessl.Result[Name] {
	defer runtime.KeepAlive(crl)
	n, ok := native.X509CRLGetIssuer(crl.Get())
	if !ok {
		return simplessl.FromLastError[Name]("X509CRLGetIssuer")
	}
	return simplessl.OK(nameOf(n))
}

func GetCRLUpdateTimes(crl *simplessl.CRL) simplessl.Result[UpdateTimes] {
	defer runtime.KeepAlive(crl)
	this, next, ok := native.X509CRLGetUpdates(crl.Get())
	if !ok {
		return simplessl.FromLastError[UpdateTimes]("X509CRLGetUpdates")
	}
	return simplessl.OK(UpdateTimes{This: this, Next: next})
}

func GetCRLExtensions(crl *simplessl.CRL) simplessl.Result[[]CRLExtension] {
	defer runtime.KeepAlive(crl)
	exts, ok := native.X509CRLGetExtensions(crl.Get())
	if !ok {
		return simplessl.FromLastError[[]CRLExtension]("X509CRLGetExtensions")
	}
	return simplessl.OK(extensionsOf(exts))
}

// GetRevoked returns the revoked entries in encoding order. An empty list is
// a success.
func GetRevoked(crl *simplessl.CRL) simplessl.Result[[]Revoked] {
	defer runtime.KeepAlive(crl)
	entries, ok := native.X509CRLGetRevoked(crl.Get())
	if !ok {
		return simplessl.FromLastError[[]Revoked]("X509CRLGetRevoked")
	}
	out := make([]Revoked, 0, len(entries))
	for _, e := range entries {
		out = append(out, Revoked{
			Serial:     e.Serial,
			Date:       e.Revocation,
			Extensions: extensionsOf(e.Extensions),
		})
	}
	return simplessl.OK(out)
}

func GetCRLSignature(crl *simplessl.CRL) simplessl.Result[[]byte] {
	defer runtime.KeepAlive(crl)
	return bytesResult(native.X509CRLGetSignature(crl.Get()), "X509CRLGetSignature")
}

// GetCRLSignatureAlgorithm returns the signature algorithm NID, or
// native.NIDUndef.
func GetCRLSignatureAlgorithm(crl *simplessl.CRL) int {
	defer runtime.KeepAlive(crl)
	return native.X509CRLGetSignatureNID(crl.Get())
}

// VerifyCRLSignature checks the CRL's signature with the issuer's key.
func VerifyCRLSignature(crl *simplessl.CRL, pkey *simplessl.PKey) simplessl.Result[simplessl.Empty] {
	defer runtime.KeepAlive(crl)
	defer runtime.KeepAlive(pkey)
	if !native.X509CRLVerify(crl.Get(), pkey.Get()) {
		return simplessl.FromLastError[simplessl.Empty]("X509CRLVerify")
	}
	return simplessl.Done()
}
