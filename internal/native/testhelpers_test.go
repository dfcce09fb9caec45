package native

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"testing"
	"time"
)

// testCA holds a CA certificate and its private key for signing leaves and CRLs.
type testCA struct {
	cert    *x509.Certificate
	certDER []byte
	certPEM []byte
	key     crypto.Signer
}

// newRSACA generates a self-signed RSA root CA.
func newRSACA(t *testing.T) testCA {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate RSA CA key: %v", err)
	}
	return selfSign(t, key, "Test RSA Root CA", 1)
}

// newECDSACA generates a self-signed ECDSA P-256 root CA.
func newECDSACA(t *testing.T) testCA {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("generate ECDSA CA key: %v", err)
	}
	return selfSign(t, key, "Test ECDSA Root CA", 2)
}

func selfSign(t *testing.T, key crypto.Signer, cn string, serial int64) testCA {
	t.Helper()
	tmpl := &x509.Certificate{
		SerialNumber:          big.NewInt(serial),
		Subject:               pkix.Name{CommonName: cn, Organization: []string{"TestOrg"}, Country: []string{"US"}},
		NotBefore:             time.Now().Add(-1 * time.Hour),
		NotAfter:              time.Now().Add(10 * 365 * 24 * time.Hour),
		KeyUsage:              x509.KeyUsageCertSign | x509.KeyUsageCRLSign,
		BasicConstraintsValid: true,
		IsCA:                  true,
		SubjectKeyId:          []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17, 18, 19, 20},
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, key.Public(), key)
	if err != nil {
		t.Fatalf("create CA cert: %v", err)
	}
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		t.Fatalf("parse CA cert: %v", err)
	}
	return testCA{
		cert:    cert,
		certDER: der,
		certPEM: pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}),
		key:     key,
	}
}

// newLeaf generates an ECDSA leaf signed by ca with a fixed high-bit serial so
// that the encoded INTEGER carries a leading zero byte.
func newLeaf(t *testing.T, ca testCA, cn string) (der []byte, key *ecdsa.PrivateKey) {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("generate leaf key: %v", err)
	}
	tmpl := &x509.Certificate{
		SerialNumber:   big.NewInt(0x8001),
		Subject:        pkix.Name{CommonName: cn},
		NotBefore:      time.Now().Add(-1 * time.Hour),
		NotAfter:       time.Now().Add(24 * time.Hour),
		KeyUsage:       x509.KeyUsageDigitalSignature,
		ExtKeyUsage:    []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		DNSNames:       []string{cn},
		AuthorityKeyId: ca.cert.SubjectKeyId,
	}
	der, err = x509.CreateCertificate(rand.Reader, tmpl, ca.cert, &key.PublicKey, ca.key)
	if err != nil {
		t.Fatalf("create leaf cert: %v", err)
	}
	return der, key
}

// newCRL issues a v2 CRL from ca revoking the given serials.
func newCRL(t *testing.T, ca testCA, serials ...int64) []byte {
	t.Helper()
	var entries []x509.RevocationListEntry
	for _, s := range serials {
		entries = append(entries, x509.RevocationListEntry{
			SerialNumber:   big.NewInt(s),
			RevocationTime: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
			ReasonCode:     1,
		})
	}
	tmpl := &x509.RevocationList{
		Number:                    big.NewInt(42),
		ThisUpdate:                time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC),
		NextUpdate:                time.Date(2024, 2, 3, 0, 0, 0, 0, time.UTC),
		RevokedCertificateEntries: entries,
	}
	der, err := x509.CreateRevocationList(rand.Reader, tmpl, ca.cert, ca.key)
	if err != nil {
		t.Fatalf("create CRL: %v", err)
	}
	return der
}

// mustCert registers der and frees it when the test ends.
func mustCert(t *testing.T, der []byte) Handle {
	t.Helper()
	h := D2IX509(der)
	if h == Null {
		t.Fatalf("D2IX509 failed: %#x", ErrGetError())
	}
	t.Cleanup(func() { X509Free(h) })
	return h
}

// mustPKCS8PEM encodes key as an unencrypted PKCS#8 PEM block.
func mustPKCS8PEM(t *testing.T, key crypto.PrivateKey) []byte {
	t.Helper()
	der, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		t.Fatalf("marshal PKCS#8: %v", err)
	}
	return pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der})
}
