package internal

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
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sensiblebit/simplessl"
	"github.com/sensiblebit/simplessl/certs"
	"github.com/sensiblebit/simplessl/keys"
)

// testCA holds a CA certificate and its private key for signing leaf certs.
type testCA struct {
	cert    *x509.Certificate
	certDER []byte
	certPEM []byte
	key     crypto.Signer
}

// testLeaf holds a leaf certificate signed by a CA, plus its private key.
type testLeaf struct {
	certDER []byte
	certPEM []byte
	keyPEM  []byte
}

// newRSACA generates a self-signed RSA root CA.
func newRSACA(t *testing.T, cn string) testCA {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate RSA CA key: %v", err)
	}
	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject: pkix.Name{
			CommonName:   cn,
			Country:      []string{"US"},
			Locality:     []string{"Springfield"},
			Organization: []string{"TestOrg"},
			Province:     []string{"Oregon"},
		},
		NotBefore:             time.Now().Add(-1 * time.Hour),
		NotAfter:              time.Now().Add(10 * 365 * 24 * time.Hour),
		KeyUsage:              x509.KeyUsageCertSign | x509.KeyUsageCRLSign,
		BasicConstraintsValid: true,
		IsCA:                  true,
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
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

// newLeaf issues an ECDSA P-256 leaf from ca, valid for the given duration.
func newLeaf(t *testing.T, ca testCA, cn string, validFor time.Duration) testLeaf {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("generate leaf key: %v", err)
	}
	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(0x0abc),
		Subject:      pkix.Name{CommonName: cn},
		NotBefore:    time.Now().Add(-1 * time.Hour),
		NotAfter:     time.Now().Add(validFor),
		KeyUsage:     x509.KeyUsageDigitalSignature,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		DNSNames:     []string{cn},
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, ca.cert, &key.PublicKey, ca.key)
	if err != nil {
		t.Fatalf("create leaf cert: %v", err)
	}
	pkcs8, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		t.Fatalf("marshal leaf key: %v", err)
	}
	return testLeaf{
		certDER: der,
		certPEM: pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}),
		keyPEM:  pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: pkcs8}),
	}
}

// newCRLPEM issues a v2 CRL from ca revoking the given serials.
func newCRLPEM(t *testing.T, ca testCA, serials ...int64) []byte {
	t.Helper()
	var entries []x509.RevocationListEntry
	for _, s := range serials {
		entries = append(entries, x509.RevocationListEntry{
			SerialNumber:   big.NewInt(s),
			RevocationTime: time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC),
			ReasonCode:     1,
		})
	}
	der, err := x509.CreateRevocationList(rand.Reader, &x509.RevocationList{
		Number:                    big.NewInt(7),
		ThisUpdate:                time.Date(2024, 5, 7, 0, 0, 0, 0, time.UTC),
		NextUpdate:                time.Date(2024, 6, 7, 0, 0, 0, 0, time.UTC),
		RevokedCertificateEntries: entries,
	}, ca.cert, ca.key)
	if err != nil {
		t.Fatalf("create CRL: %v", err)
	}
	return pem.EncodeToMemory(&pem.Block{Type: "X509 CRL", Bytes: der})
}

// writeTemp writes data to a file in a per-test directory.
func writeTemp(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

// mustCert parses der and closes the owner when the test ends.
func mustCert(t *testing.T, der []byte) *simplessl.Cert {
	t.Helper()
	r := certs.ConvertDerToX509(der)
	if r.Failed() {
		t.Fatalf("ConvertDerToX509: %s", r.Message())
	}
	c := r.Value()
	t.Cleanup(func() { c.Close() })
	return c
}

// mustKey parses a PEM private key and closes the owner when the test ends.
func mustKey(t *testing.T, pemData []byte) *simplessl.PKey {
	t.Helper()
	r := keys.ConvertPemToPrivKey(pemData, nil)
	if r.Failed() {
		t.Fatalf("ConvertPemToPrivKey: %s", r.Message())
	}
	k := r.Value()
	t.Cleanup(func() { k.Close() })
	return k
}

// mustStack builds a stack holding copies of the given certificates.
func mustStack(t *testing.T, ders ...[]byte) *simplessl.CertStack {
	t.Helper()
	stack := certs.NewStack()
	t.Cleanup(func() { stack.Close() })
	for _, der := range ders {
		r := certs.ConvertDerToX509(der)
		if r.Failed() {
			t.Fatalf("ConvertDerToX509: %s", r.Message())
		}
		cert := r.Value()
		if push := certs.StackPush(stack, cert); push.Failed() {
			cert.Close()
			t.Fatalf("StackPush: %s", push.Message())
		}
	}
	return stack
}
