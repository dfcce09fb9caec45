package certs

import (
	"log/slog"
	"runtime"

	"github.com/sensiblebit/simplessl"
	"github.com/sensiblebit/simplessl/internal/native"
)

func ownCert(h native.Handle, op string) simplessl.Result[*simplessl.Cert] {
	if h == native.Null {
		return simplessl.FromLastError[*simplessl.Cert](op)
	}
	return simplessl.OK(simplessl.Own[simplessl.CertKind](h))
}

// ConvertPemFileToX509 reads the first certificate from a PEM file.
func ConvertPemFileToX509(path string) simplessl.Result[*simplessl.Cert] {
	data, ok := readFile(path)
	if !ok {
		return simplessl.FromLastError[*simplessl.Cert]("BIOReadFile")
	}
	return ConvertPemToX509(data)
}

// ConvertPemToX509 parses the first CERTIFICATE block in pem.
func ConvertPemToX509(pem []byte) simplessl.Result[*simplessl.Cert] {
	return ownCert(native.PEMReadX509(pem), "PEMReadX509")
}

// ConvertDerToX509 parses a DER certificate.
func ConvertDerToX509(der []byte) simplessl.Result[*simplessl.Cert] {
	return ownCert(native.D2IX509(der), "D2IX509")
}

// ConvertDerFileToX509 reads a DER certificate from path.
func ConvertDerFileToX509(path string) simplessl.Result[*simplessl.Cert] {
	data, ok := readFile(path)
	if !ok {
		return simplessl.FromLastError[*simplessl.Cert]("BIOReadFile")
	}
	return ConvertDerToX509(data)
}

// ConvertX509ToDer returns the certificate's DER encoding.
func ConvertX509ToDer(cert *simplessl.Cert) simplessl.Result[[]byte] {
	defer runtime.KeepAlive(cert)
	return bytesResult(native.I2DX509(cert.Get()), "I2DX509")
}

// ConvertX509ToDerFile writes the certificate's DER encoding to path.
func ConvertX509ToDerFile(cert *simplessl.Cert, path string) simplessl.Result[simplessl.Empty] {
	defer runtime.KeepAlive(cert)
	der := native.I2DX509(cert.Get())
	if der == nil {
		return simplessl.FromLastError[simplessl.Empty]("I2DX509")
	}
	return writeFile(path, der, "BIOWriteFile")
}

// ConvertX509ToPem returns the certificate as a PEM block.
func ConvertX509ToPem(cert *simplessl.Cert) simplessl.Result[string] {
	defer runtime.KeepAlive(cert)
	out := native.PEMWriteX509(cert.Get())
	if out == nil {
		return simplessl.FromLastError[string]("PEMWriteX509")
	}
	return simplessl.OK(string(out))
}

// ConvertX509ToPemFile writes the certificate as PEM to path.
func ConvertX509ToPemFile(cert *simplessl.Cert, path string) simplessl.Result[simplessl.Empty] {
	defer runtime.KeepAlive(cert)
	out := native.PEMWriteX509(cert.Get())
	if out == nil {
		return simplessl.FromLastError[simplessl.Empty]("PEMWriteX509")
	}
	return writeFile(path, out, "BIOWriteFile")
}

// ConvertX509ToText renders the certificate in `openssl x509 -text` layout.
func ConvertX509ToText(cert *simplessl.Cert) simplessl.Result[string] {
	defer runtime.KeepAlive(cert)
	return stringResult(native.X509Print(cert.Get()), "X509Print")
}

// DupX509 returns a second owner for the same certificate.
func DupX509(cert *simplessl.Cert) simplessl.Result[*simplessl.Cert] {
	defer runtime.KeepAlive(cert)
	return ownCert(native.X509Dup(cert.Get()), "X509Dup")
}

// GetVersion returns the decoded version and the raw field value. A failed
// read yields VX and -1.
func GetVersion(cert *simplessl.Cert) (Version, int64) {
	defer runtime.KeepAlive(cert)
	raw := native.X509GetVersion(cert.Get())
	if raw < 0 {
		slog.Debug("reading certificate version failed", "code", native.ErrGetError())
	}
	return versionOf(raw), raw
}

// GetSerialNumber returns the content octets of the serial INTEGER, leading
// zero included.
func GetSerialNumber(cert *simplessl.Cert) simplessl.Result[[]byte] {
	defer runtime.KeepAlive(cert)
	return bytesResult(native.X509GetSerialNumber(cert.Get()), "X509GetSerialNumber")
}

// GetSerialNumberBN returns the serial number as an owned BIGNUM.
func GetSerialNumberBN(cert *simplessl.Cert) simplessl.Result[*simplessl.BigNum] {
	defer runtime.KeepAlive(cert)
	h := native.X509GetSerialNumberBN(cert.Get())
	if h == native.Null {
		return simplessl.FromLastError[*simplessl.BigNum]("X509GetSerialNumberBN")
	}
	return simplessl.OK(simplessl.Own[simplessl.BigNumKind](h))
}

// GetSubject returns the subject name.
func GetSubject(cert *simplessl.Cert) simplessl.Result[Name] {
	defer runtime.KeepAlive(cert)
	n, ok := native.X509GetSubjectName(cert.Get())
	if !ok {
		return simplessl.FromLastError[Name]("X509GetSubjectName")
	}
	return simplessl.OK(nameOf(n))
}

// GetIssuer returns the issuer name.
func GetIssuer(cert *simplessl.Cert) simplessl.Result[Name] {
	defer runtime.KeepAlive(cert)
	n, ok := native.X509GetIssuerName(cert.Get())
	if !ok {
		return simplessl.FromLastError[Name]("X509GetIssuerName")
	}
	return simplessl.OK(nameOf(n))
}

// GetValidity returns notBefore and notAfter.
func GetValidity(cert *simplessl.Cert) simplessl.Result[Validity] {
	defer runtime.KeepAlive(cert)
	nb, na, ok := native.X509GetValidity(cert.Get())
	if !ok {
		return simplessl.FromLastError[Validity]("X509GetValidity")
	}
	return simplessl.OK(Validity{NotBefore: nb, NotAfter: na})
}

// GetPubKey returns the certificate's public key as an owned handle.
func GetPubKey(cert *simplessl.Cert) simplessl.Result[*simplessl.PKey] {
	defer runtime.KeepAlive(cert)
	h := native.X509GetPubKey(cert.Get())
	if h == native.Null {
		return simplessl.FromLastError[*simplessl.PKey]("X509GetPubKey")
	}
	return simplessl.OK(simplessl.Own[simplessl.PKeyKind](h))
}

// GetPubKeyAlgorithm returns the NID of the public key algorithm, or
// native.NIDUndef.
func GetPubKeyAlgorithm(cert *simplessl.Cert) int {
	defer runtime.KeepAlive(cert)
	return native.X509GetPubKeyNID(cert.Get())
}

// GetSignature returns the signature bits.
func GetSignature(cert *simplessl.Cert) simplessl.Result[[]byte] {
	defer runtime.KeepAlive(cert)
	return bytesResult(native.X509GetSignature(cert.Get()), "X509GetSignature")
}

// GetSignatureAlgorithm returns the NID of the signature algorithm, or
// native.NIDUndef.
func GetSignatureAlgorithm(cert *simplessl.Cert) int {
	defer runtime.KeepAlive(cert)
	return native.X509GetSignatureNID(cert.Get())
}

// GetExtensions returns the extensions in encoding order.
func GetExtensions(cert *simplessl.Cert) simplessl.Result[[]CertExtension] {
	defer runtime.KeepAlive(cert)
	exts, ok := native.X509GetExtensions(cert.Get())
	if !ok {
		return simplessl.FromLastError[[]CertExtension]("X509GetExtensions")
	}
	return simplessl.OK(extensionsOf(exts))
}

// GetExtensionCount returns the number of extensions.
func GetExtensionCount(cert *simplessl.Cert) simplessl.Result[int] {
	defer runtime.KeepAlive(cert)
	exts, ok := native.X509GetExtensions(cert.Get())
	if !ok {
		return simplessl.FromLastError[int]("X509GetExtensions")
	}
	return simplessl.OK(len(exts))
}

// VerifySignature checks the certificate's signature with pkey.
func VerifySignature(cert *simplessl.Cert, pkey *simplessl.PKey) simplessl.Result[simplessl.Empty] {
	defer runtime.KeepAlive(cert)
	defer runtime.KeepAlive(pkey)
	if !native.X509Verify(cert.Get(), pkey.Get()) {
		return simplessl.FromLastError[simplessl.Empty]("X509Verify")
	}
	return simplessl.Done()
}

// IsSelfSigned reports whether the certificate is signed by its own key
// under its own name.
func IsSelfSigned(cert *simplessl.Cert) simplessl.Result[bool] {
	defer runtime.KeepAlive(cert)
	self, ok := native.X509SelfSigned(cert.Get())
	if !ok {
		return simplessl.FromLastError[bool]("X509SelfSigned")
	}
	return simplessl.OK(self)
}
