package internal

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

func TestProcessPasswords_Order(t *testing.T) {
	// WHY: Containers are tried with passwords in order; defaults come first
	// and a repeated password must only be tried once.
	t.Parallel()
	path := filepath.Join(t.TempDir(), "passwords.txt")
	if err := os.WriteFile(path, []byte("filepass\nchangeit\n"), 0o600); err != nil {
		t.Fatalf("write password file: %v", err)
	}

	got, err := ProcessPasswords([]string{"cli", "password"}, path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"", "password", "changeit", "keypassword", "cli", "filepass"}
	if !slices.Equal(got, want) {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestProcessPasswords_BadFileReturnsError(t *testing.T) {
	// WHY: A missing password file must be an error; ignoring it would turn
	// into a confusing MAC failure on the container.
	t.Parallel()
	_, err := ProcessPasswords(nil, "/nonexistent/passwords.txt")
	if err == nil {
		t.Fatal("expected error for nonexistent password file, got nil")
	}
	if !strings.Contains(err.Error(), "loading passwords from file") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestLoadPasswordsFromFile_BlankLines(t *testing.T) {
	// WHY: Blank and whitespace-only lines must be skipped.
	t.Parallel()
	path := filepath.Join(t.TempDir(), "passwords.txt")
	if err := os.WriteFile(path, []byte("pass1\n\n  \npass2\n\n"), 0o600); err != nil {
		t.Fatalf("write password file: %v", err)
	}

	passwords, err := LoadPasswordsFromFile(path)
	if err != nil {
		t.Fatalf("load passwords: %v", err)
	}
	if !slices.Equal(passwords, []string{"pass1", "pass2"}) {
		t.Errorf("got %v, want [pass1 pass2]", passwords)
	}
}
