package internal

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/sensiblebit/simplessl"
	"github.com/sensiblebit/simplessl/certs"
)

func TestVerifyCert_KeyMatch(t *testing.T) {
	ca := newRSACA(t, "Verify CA")
	leaf := newLeaf(t, ca, "verify.example.com", 24*time.Hour)
	other := newLeaf(t, ca, "other.example.com", 24*time.Hour)

	tests := []struct {
		name      string
		keyPEM    []byte
		wantMatch bool
	}{
		{"matching", leaf.keyPEM, true},
		{"mismatched", other.keyPEM, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := VerifyCert(&VerifyInput{
				Cert: mustCert(t, leaf.certDER),
				Key:  mustKey(t, tt.keyPEM),
			})
			if err != nil {
				t.Fatal(err)
			}
			if result.KeyMatch == nil || *result.KeyMatch != tt.wantMatch {
				t.Fatalf("KeyMatch = %v, want %v", result.KeyMatch, tt.wantMatch)
			}
			if result.KeyInfo != "EC prime256v1 (256 bit)" {
				t.Errorf("KeyInfo = %q", result.KeyInfo)
			}
			if got := len(result.Errors) == 0; got != tt.wantMatch {
				t.Errorf("Errors = %v", result.Errors)
			}
		})
	}
}

func TestVerifyCert_Chain(t *testing.T) {
	// WHY: A private root verifies only when supplied as a custom root; the
	// Mozilla store must reject it.
	ca := newRSACA(t, "Chain CA")
	leaf := newLeaf(t, ca, "chain.example.com", 24*time.Hour)

	tests := []struct {
		name      string
		store     string
		roots     []*simplessl.Cert
		wantValid bool
	}{
		{"custom_root", "custom", []*simplessl.Cert{mustCert(t, ca.certDER)}, true},
		{"mozilla", "mozilla", nil, false},
		{"custom_without_roots", "custom", nil, false},
		{"unknown_store", "system", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := VerifyCert(&VerifyInput{
				Cert:        mustCert(t, leaf.certDER),
				CustomRoots: tt.roots,
				CheckChain:  true,
				TrustStore:  tt.store,
			})
			if err != nil {
				t.Fatal(err)
			}
			if result.ChainValid == nil || *result.ChainValid != tt.wantValid {
				t.Fatalf("ChainValid = %v, want %v (err %q)", result.ChainValid, tt.wantValid, result.ChainErr)
			}
			if !tt.wantValid && result.ChainErr == "" {
				t.Error("ChainErr empty for invalid chain")
			}
		})
	}
}

func TestVerifyCert_Expiry(t *testing.T) {
	ca := newRSACA(t, "Expiry CA")
	leaf := newLeaf(t, ca, "expiry.example.com", 10*24*time.Hour)

	tests := []struct {
		name   string
		window time.Duration
		want   bool
	}{
		{"within_window", 30 * 24 * time.Hour, true},
		{"outside_window", 24 * time.Hour, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := VerifyCert(&VerifyInput{
				Cert:           mustCert(t, leaf.certDER),
				ExpiryDuration: tt.window,
			})
			if err != nil {
				t.Fatal(err)
			}
			if result.Expiry == nil || *result.Expiry != tt.want {
				t.Fatalf("Expiry = %v, want %v", result.Expiry, tt.want)
			}
		})
	}
}

func TestVerifyCert_NullCert(t *testing.T) {
	if _, err := VerifyCert(&VerifyInput{}); err == nil {
		t.Fatal("expected error for a null certificate")
	}
}

func TestLoadCertBundle(t *testing.T) {
	ca := newRSACA(t, "Bundle Load CA")
	leaf := newLeaf(t, ca, "load.example.com", 24*time.Hour)
	data := append(append([]byte{}, leaf.certPEM...), ca.certPEM...)

	cert, stack, err := LoadCertBundle(writeTemp(t, "chain.pem", data))
	if err != nil {
		t.Fatal(err)
	}
	defer cert.Close()
	defer stack.Close()

	der := certs.ConvertX509ToDer(cert)
	if !bytes.Equal(der.Value(), leaf.certDER) {
		t.Error("leaf is not the first certificate")
	}
	if n := certs.StackCount(stack).Value(); n != 1 {
		t.Errorf("intermediates = %d, want 1", n)
	}

	if _, _, err := LoadCertBundle(writeTemp(t, "empty.pem", []byte("nothing"))); err == nil {
		t.Error("expected error for a file without certificates")
	}
}

func TestFormatVerifyResult(t *testing.T) {
	t.Parallel()
	valid := false
	match := true
	out := FormatVerifyResult(&VerifyResult{
		Subject:    "CN=x",
		NotAfter:   "2030-01-01T00:00:00Z",
		KeyMatch:   &match,
		KeyInfo:    "RSA (2048 bit)",
		ChainValid: &valid,
		ChainErr:   "untrusted",
		Errors:     []string{"chain validation: untrusted"},
	})
	for _, want := range []string{
		"Certificate: CN=x\n",
		"  Key Match: OK (RSA (2048 bit))\n",
		"      Chain: INVALID (untrusted)\n",
		"Verification FAILED (1 error(s))\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\n%s", want, out)
		}
	}
}
