package certs

import (
	"errors"
	"runtime"

	"github.com/sensiblebit/simplessl"
	"github.com/sensiblebit/simplessl/internal/native"
)

func ownStack(h native.Handle, op string) simplessl.Result[*simplessl.CertStack] {
	if h == native.Null {
		return simplessl.FromLastError[*simplessl.CertStack](op)
	}
	return simplessl.OK(simplessl.Own[simplessl.CertStackKind](h))
}

// NewStack returns an empty certificate stack.
func NewStack() *simplessl.CertStack {
	return simplessl.Own[simplessl.CertStackKind](native.SKX509New())
}

// StackCount returns the number of certificates on the stack.
func StackCount(stack *simplessl.CertStack) simplessl.Result[int] {
	defer runtime.KeepAlive(stack)
	n := native.SKX509Num(stack.Get())
	if n < 0 {
		return simplessl.FromLastError[int]("SKX509Num")
	}
	return simplessl.OK(n)
}

// StackCert returns an owned duplicate of the i-th certificate. Closing it
// does not affect the stack.
func StackCert(stack *simplessl.CertStack, i int) simplessl.Result[*simplessl.Cert] {
	defer runtime.KeepAlive(stack)
	item := native.SKX509Value(stack.Get(), i)
	if item == native.Null {
		return simplessl.FromLastError[*simplessl.Cert]("SKX509Value")
	}
	return ownCert(native.X509Dup(item), "X509Dup")
}

// StackCerts returns owned duplicates of every certificate on the stack, in
// order. On failure nothing is left open.
func StackCerts(stack *simplessl.CertStack) simplessl.Result[[]*simplessl.Cert] {
	n := StackCount(stack)
	if n.Failed() {
		return simplessl.Err[[]*simplessl.Cert](n.ErrorCode())
	}
	out := make([]*simplessl.Cert, 0, n.Value())
	for i := range n.Value() {
		r := StackCert(stack, i)
		if r.Failed() {
			for _, c := range out {
				c.Close()
			}
			return simplessl.Err[[]*simplessl.Cert](r.ErrorCode())
		}
		out = append(out, r.Value())
	}
	return simplessl.OK(out)
}

// StackPush appends cert to the stack, which takes ownership of it. On
// success cert is left null; on failure the caller still owns it.
func StackPush(stack *simplessl.CertStack, cert *simplessl.Cert) simplessl.Result[simplessl.Empty] {
	defer runtime.KeepAlive(stack)
	defer runtime.KeepAlive(cert)
	if !native.SKX509Push(stack.Get(), cert.Get()) {
		return simplessl.FromLastError[simplessl.Empty]("SKX509Push")
	}
	cert.Release()
	return simplessl.Done()
}

// ConvertPkcs7ToCerts extracts the certificates of a DER or PEM PKCS#7
// SignedData.
func ConvertPkcs7ToCerts(data []byte) simplessl.Result[*simplessl.CertStack] {
	if len(data) > 0 && data[0] == '-' {
		return ownStack(native.PEMReadPKCS7Certs(data), "PEMReadPKCS7Certs")
	}
	return ownStack(native.D2IPKCS7Certs(data), "D2IPKCS7Certs")
}

// ConvertCertsToPkcs7 encodes the stack as a degenerate (certs-only) PKCS#7.
func ConvertCertsToPkcs7(stack *simplessl.CertStack) simplessl.Result[[]byte] {
	defer runtime.KeepAlive(stack)
	return bytesResult(native.I2DPKCS7Certs(stack.Get()), "I2DPKCS7Certs")
}

// Pkcs12Parts holds the owned contents of a PFX. CA may be empty but is
// never nil on success.
type Pkcs12Parts struct {
	Key  *simplessl.PKey
	Cert *simplessl.Cert
	CA   *simplessl.CertStack
}

// Close frees all three parts.
func (p *Pkcs12Parts) Close() error {
	if p == nil {
		return nil
	}
	return errors.Join(p.Key.Close(), p.Cert.Close(), p.CA.Close())
}

// ConvertPkcs12ToParts decodes a PFX, trying each password in turn. An empty
// list tries the empty password.
func ConvertPkcs12ToParts(data []byte, passwords []string) simplessl.Result[*Pkcs12Parts] {
	parts, ok := native.PKCS12Parse(data, passwords)
	if !ok {
		return simplessl.FromLastError[*Pkcs12Parts]("PKCS12Parse")
	}
	return simplessl.OK(&Pkcs12Parts{
		Key:  simplessl.Own[simplessl.PKeyKind](parts.Key),
		Cert: simplessl.Own[simplessl.CertKind](parts.Cert),
		CA:   simplessl.Own[simplessl.CertStackKind](parts.CA),
	})
}

// ConvertPartsToPkcs12 encodes key, cert and an optional CA stack as a PFX.
// The inputs stay owned by the caller.
func ConvertPartsToPkcs12(key *simplessl.PKey, cert *simplessl.Cert, ca *simplessl.CertStack, password string) simplessl.Result[[]byte] {
	defer runtime.KeepAlive(key)
	defer runtime.KeepAlive(cert)
	defer runtime.KeepAlive(ca)
	return bytesResult(native.PKCS12Create(key.Get(), cert.Get(), ca.Get(), password), "PKCS12Create")
}

// ConvertJksToCerts loads a Java KeyStore and returns its certificates:
// each private key entry's chain, then the trusted certificate entries.
func ConvertJksToCerts(data []byte, passwords []string) simplessl.Result[*simplessl.CertStack] {
	return ownStack(native.JKSLoad(data, passwords), "JKSLoad")
}

// ConvertKeyToJks encodes a private key entry with its chain as a JKS.
func ConvertKeyToJks(key *simplessl.PKey, cert *simplessl.Cert, ca *simplessl.CertStack, password string) simplessl.Result[[]byte] {
	defer runtime.KeepAlive(key)
	defer runtime.KeepAlive(cert)
	defer runtime.KeepAlive(ca)
	return bytesResult(native.JKSStore(key.Get(), cert.Get(), ca.Get(), password), "JKSStore")
}

// ConvertCertsToJks encodes every certificate on the stack as a trusted
// certificate entry.
func ConvertCertsToJks(stack *simplessl.CertStack, password string) simplessl.Result[[]byte] {
	defer runtime.KeepAlive(stack)
	return bytesResult(native.JKSStoreTrusted(stack.Get(), password), "JKSStoreTrusted")
}
