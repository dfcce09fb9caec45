package main

import (
	"bytes"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
)

// selfSignedPEM writes a self-signed ECDSA certificate and returns its path.
func selfSignedPEM(t *testing.T, cn string) string {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	tmpl := &x509.Certificate{
		SerialNumber:          big.NewInt(42),
		Subject:               pkix.Name{CommonName: cn},
		NotBefore:             time.Now().Add(-1 * time.Hour),
		NotAfter:              time.Now().Add(24 * time.Hour),
		KeyUsage:              x509.KeyUsageCertSign,
		BasicConstraintsValid: true,
		IsCA:                  true,
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	if err != nil {
		t.Fatalf("create cert: %v", err)
	}
	path := filepath.Join(t.TempDir(), "cert.pem")
	if err := os.WriteFile(path, pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

// execute runs the root command with args and returns its stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
		dbPath = ""
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func TestParseDuration(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{"30d", 30 * 24 * time.Hour, false},
		{"720h", 720 * time.Hour, false},
		{"1h30m", 90 * time.Minute, false},
		{"xd", 0, true},
		{"soon", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			got, err := parseDuration(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEnumValue(t *testing.T) {
	t.Parallel()
	v := newEnum("type", "cert", "cert", "crl")
	if err := v.Set("CRL"); err != nil {
		t.Fatalf("Set(CRL): %v", err)
	}
	if v.String() != "crl" {
		t.Errorf("String = %q, want crl", v.String())
	}
	if err := v.Set("p7"); err == nil {
		t.Error("accepted a value outside the set")
	}
	if v.String() != "crl" {
		t.Errorf("rejected Set changed the value to %q", v.String())
	}
	if v.Type() != "type" {
		t.Errorf("Type = %q", v.Type())
	}
}

func TestCompletions(t *testing.T) {
	t.Parallel()
	got, dir := enumCompletion(newEnum("format", "text", "text", "json"))(nil, nil, "")
	if strings.Join(got, ",") != "text,json" || dir != cobra.ShellCompDirectiveNoFileComp {
		t.Errorf("enumCompletion = %v, %v", got, dir)
	}
	exts, dir := certFileCompletion(nil, nil, "")
	if dir != cobra.ShellCompDirectiveFilterFileExt || !slices.Contains(exts, "crl") || !slices.Contains(exts, "p12") {
		t.Errorf("certFileCompletion = %v, %v", exts, dir)
	}
}

func TestParseErrorCode(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in      string
		want    uint64
		wantErr bool
	}{
		{"0480006C", 0x0480006C, false},
		{"0x80000002", 0x80000002, false},
		{"zz", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			got, err := parseErrorCode(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if uint64(got) != tt.want {
				t.Errorf("got %#x, want %#x", uint64(got), tt.want)
			}
		})
	}
}

func TestErrstrCommand(t *testing.T) {
	out, err := execute(t, "errstr", "0480006C")
	if err != nil {
		t.Fatal(err)
	}
	if out != "error:0480006C:PEM routines::no start line\n" {
		t.Errorf("output = %q", out)
	}
}

func TestInspectCommand(t *testing.T) {
	// WHY: A readable certificate prints the field report; a missing file
	// prints the library's message and still exits cleanly.
	path := selfSignedPEM(t, "cli.example.com")
	db := filepath.Join(t.TempDir(), "history.db")

	out, err := execute(t, "-f", path, "-t", "cert", "--format", "text", "--color", "never", "--db", db)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"Version: 3 (2)\n", "Serial: 2a\n", "\tCommonName: cli.example.com\n", "PublicKey: id-ecPublicKey prime256v1 (256 bit)\n"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\n%s", want, out)
		}
	}

	missing := filepath.Join(t.TempDir(), "absent.pem")
	out, err = execute(t, "-f", missing, "-t", "cert", "--format", "text", "--color", "never", "--db", db)
	if err != nil {
		t.Fatalf("missing file should not fail the command: %v", err)
	}
	if strings.TrimSpace(out) == "" {
		t.Error("no message printed for missing file")
	}

	out, err = execute(t, "history", "--db", db, "--summary", "--format", "text")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Inspections:  2\n") || !strings.Contains(out, "Failed:       1\n") {
		t.Errorf("summary output:\n%s", out)
	}
}

func TestHashCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "abc.txt")
	if err := os.WriteFile(path, []byte("abc"), 0o600); err != nil {
		t.Fatal(err)
	}
	out, err := execute(t, "hash", "-a", "sha256", path)
	if err != nil {
		t.Fatal(err)
	}
	want := "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad  " + path + "\n"
	if out != want {
		t.Errorf("output = %q, want %q", out, want)
	}
}

func TestHistoryCommand_RequiresDB(t *testing.T) {
	if _, err := execute(t, "history"); err == nil {
		t.Fatal("expected error without --db")
	}
}
