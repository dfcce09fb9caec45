package native

import (
	"bytes"
	stdx509 "crypto/x509"
	"errors"
	"fmt"
	"time"

	ctx509 "github.com/google/certificate-transparency-go/x509"
	"github.com/pavlo-v-chernykh/keystore-go/v4"
	"github.com/smallstep/pkcs7"
	gopkcs12 "software.sslmate.com/src/go-pkcs12"
)

// D2IPKCS7Certs extracts the certificates of a DER PKCS#7 bundle into a new
// stack.
func D2IPKCS7Certs(der []byte) Handle {
	if len(der) == 0 {
		raise(LibCrypto, ReasonPassedNullParameter)
		return Null
	}
	p7, err := pkcs7.Parse(der)
	if err != nil {
		raise(LibPKCS7, ReasonPKCS7DecodeError)
		return Null
	}
	if len(p7.Certificates) == 0 {
		raise(LibPKCS7, ReasonPKCS7NoCertificates)
		return Null
	}
	stack := SKX509New()
	for _, c := range p7.Certificates {
		if !pushDER(stack, c.Raw) {
			SKX509PopFree(stack)
			return Null
		}
	}
	return stack
}

// PEMReadPKCS7Certs does the same for a PEM "PKCS7" block.
func PEMReadPKCS7Certs(data []byte) Handle {
	der, ok := pemBlock(data, "PKCS7")
	if !ok {
		return Null
	}
	return D2IPKCS7Certs(der)
}

// I2DPKCS7Certs encodes the stack as a certs-only PKCS#7 SignedData.
func I2DPKCS7Certs(stack Handle) []byte {
	certs, ok := stackCerts(stack)
	if !ok {
		return nil
	}
	if len(certs) == 0 {
		raise(LibPKCS7, ReasonPKCS7NoCertificates)
		return nil
	}
	var der []byte
	for _, c := range certs {
		der = append(der, c.Raw...)
	}
	out, err := pkcs7.DegenerateCertificate(der)
	if err != nil {
		raise(LibPKCS7, ReasonPKCS7DecodeError)
		return nil
	}
	return out
}

// PKCS12Parts holds the handles produced by PKCS12Parse. CA is a stack and
// may be empty; all three must be freed by the caller.
type PKCS12Parts struct {
	Key  Handle
	Cert Handle
	CA   Handle
}

// PKCS12Parse decodes a PFX, trying each password in order.
func PKCS12Parse(data []byte, passwords []string) (PKCS12Parts, bool) {
	if len(data) == 0 {
		raise(LibCrypto, ReasonPassedNullParameter)
		return PKCS12Parts{}, false
	}
	if len(passwords) == 0 {
		passwords = []string{""}
	}
	var lastErr error
	for _, password := range passwords {
		key, leaf, cas, err := gopkcs12.DecodeChain(data, password)
		if err != nil {
			lastErr = err
			continue
		}
		return pkcs12Handles(key, leaf, cas)
	}
	if errors.Is(lastErr, gopkcs12.ErrIncorrectPassword) {
		raise(LibPKCS12, ReasonPKCS12MacVerifyFailure)
	} else {
		raise(LibPKCS12, ReasonPKCS12ParseError)
	}
	return PKCS12Parts{}, false
}

func pkcs12Handles(key any, leaf *stdx509.Certificate, cas []*stdx509.Certificate) (PKCS12Parts, bool) {
	var parts PKCS12Parts
	var ok bool
	if parts.Key, ok = newPKey(key); !ok {
		return PKCS12Parts{}, false
	}
	if parts.Cert = D2IX509(leaf.Raw); parts.Cert == Null {
		EVPPKeyFree(parts.Key)
		return PKCS12Parts{}, false
	}
	parts.CA = SKX509New()
	for _, ca := range cas {
		if !pushDER(parts.CA, ca.Raw) {
			EVPPKeyFree(parts.Key)
			X509Free(parts.Cert)
			SKX509PopFree(parts.CA)
			return PKCS12Parts{}, false
		}
	}
	return parts, true
}

// PKCS12Create encodes key, cert and the optional CA stack as a PFX using
// modern (AES/PBKDF2) protection.
func PKCS12Create(key, cert, ca Handle, password string) []byte {
	priv, leaf, chain, ok := bundleInputs(key, cert, ca)
	if !ok {
		return nil
	}
	out, err := gopkcs12.Modern.Encode(priv, leaf, chain, password)
	if err != nil {
		raise(LibPKCS12, ReasonPKCS12EncodeError)
		return nil
	}
	return out
}

func bundleInputs(key, cert, ca Handle) (any, *stdx509.Certificate, []*stdx509.Certificate, bool) {
	priv, ok := privateKey(key)
	if !ok {
		return nil, nil, nil, false
	}
	c, ok := lookup[*ctx509.Certificate](cert)
	if !ok {
		return nil, nil, nil, false
	}
	leaf, ok := stdCert(c)
	if !ok {
		return nil, nil, nil, false
	}
	var chain []*stdx509.Certificate
	if ca != Null {
		certs, ok := stackCerts(ca)
		if !ok {
			return nil, nil, nil, false
		}
		for _, c := range certs {
			sc, ok := stdCert(c)
			if !ok {
				return nil, nil, nil, false
			}
			chain = append(chain, sc)
		}
	}
	return priv, leaf, chain, true
}

// JKSLoad reads a Java KeyStore and returns every certificate it holds,
// trusted entries and private-key chains alike. Each password is tried for
// the store and then for the key entries.
func JKSLoad(data []byte, passwords []string) Handle {
	if len(data) == 0 {
		raise(LibCrypto, ReasonPassedNullParameter)
		return Null
	}
	if len(passwords) == 0 {
		passwords = []string{""}
	}
	for _, password := range passwords {
		ks := keystore.New(keystore.WithOrderedAliases())
		if err := ks.Load(bytes.NewReader(data), []byte(password)); err != nil {
			continue
		}
		return jksCerts(ks, passwords)
	}
	raise(LibKeystore, ReasonKeystoreLoadFailure)
	return Null
}

func jksCerts(ks keystore.KeyStore, passwords []string) Handle {
	prev := ErrPeekLastError()
	stack := SKX509New()
	for _, alias := range ks.Aliases() {
		if ks.IsTrustedCertificateEntry(alias) {
			entry, err := ks.GetTrustedCertificateEntry(alias)
			if err != nil {
				continue
			}
			pushDER(stack, entry.Certificate.Content)
		}
		if ks.IsPrivateKeyEntry(alias) {
			for _, password := range passwords {
				entry, err := ks.GetPrivateKeyEntry(alias, []byte(password))
				if err != nil {
					continue
				}
				for _, c := range entry.CertificateChain {
					pushDER(stack, c.Content)
				}
				break
			}
		}
	}
	raiseCode(prev)
	if SKX509Num(stack) == 0 {
		SKX509PopFree(stack)
		raise(LibKeystore, ReasonKeystoreNoEntries)
		return Null
	}
	return stack
}

// JKSStore encodes key, cert and the optional CA stack as a JKS with one
// private key entry under alias "server". The password protects both the
// store and the entry.
func JKSStore(key, cert, ca Handle, password string) []byte {
	priv, leaf, chain, ok := bundleInputs(key, cert, ca)
	if !ok {
		return nil
	}
	pkcs8, err := stdx509.MarshalPKCS8PrivateKey(priv)
	if err != nil {
		raise(LibEVP, ReasonUnsupportedAlgorithm)
		return nil
	}
	entries := []keystore.Certificate{{Type: "X.509", Content: leaf.Raw}}
	for _, c := range chain {
		entries = append(entries, keystore.Certificate{Type: "X.509", Content: c.Raw})
	}
	ks := keystore.New()
	if err := ks.SetPrivateKeyEntry("server", keystore.PrivateKeyEntry{
		CreationTime:     time.Now(),
		PrivateKey:       pkcs8,
		CertificateChain: entries,
	}, []byte(password)); err != nil {
		raise(LibKeystore, ReasonKeystoreStoreFailure)
		return nil
	}
	return storeJKS(ks, password)
}

// JKSStoreTrusted encodes every certificate on the stack as a trusted
// certificate entry named "cert-<n>".
func JKSStoreTrusted(stack Handle, password string) []byte {
	certs, ok := stackCerts(stack)
	if !ok {
		return nil
	}
	ks := keystore.New()
	for i, c := range certs {
		if err := ks.SetTrustedCertificateEntry(fmt.Sprintf("cert-%d", i), keystore.TrustedCertificateEntry{
			CreationTime: time.Now(),
			Certificate:  keystore.Certificate{Type: "X.509", Content: c.Raw},
		}); err != nil {
			raise(LibKeystore, ReasonKeystoreStoreFailure)
			return nil
		}
	}
	return storeJKS(ks, password)
}

func storeJKS(ks keystore.KeyStore, password string) []byte {
	var buf bytes.Buffer
	if err := ks.Store(&buf, []byte(password)); err != nil {
		raise(LibKeystore, ReasonKeystoreStoreFailure)
		return nil
	}
	return buf.Bytes()
}
