// Package certs converts between encoded certificates, CRLs and trust
// containers and engine handles, and reads their fields. Every call returns a
// simplessl.Result; handles come back as owned values that must be closed.
package certs

import (
	"log/slog"
	"time"

	"github.com/sensiblebit/simplessl"
	"github.com/sensiblebit/simplessl/internal/native"
)

// Version is the decoded X.509 version field.
type Version int

const (
	V1 Version = iota
	V2
	V3
	// VX is an unrecognized or unreadable version.
	VX
)

func (v Version) String() string {
	switch v {
	case V1:
		return "v1"
	case V2:
		return "v2"
	case V3:
		return "v3"
	}
	return "unknown"
}

func versionOf(raw int64) Version {
	switch raw {
	case 0:
		return V1
	case 1:
		return V2
	case 2:
		return V3
	}
	return VX
}

// NameEntry is one attribute of a distinguished name.
type NameEntry struct {
	NID   int
	OID   string
	Value string
}

// Name is a decoded distinguished name. Text is the one-line form, for
// example "C=US, O=Example, CN=example.com".
type Name struct {
	Entries []NameEntry
	Text    string
	DER     []byte
}

func (n Name) String() string { return n.Text }

func nameOf(n native.Name) Name {
	out := Name{Text: n.Text, DER: n.DER}
	for _, e := range n.Entries {
		out.Entries = append(out.Entries, NameEntry{NID: e.NID, OID: e.OID, Value: e.Value})
	}
	return out
}

// Validity is the certificate's validity window.
type Validity struct {
	NotBefore time.Time
	NotAfter  time.Time
}

// Extension is a decoded extension. Text holds the rendered value for
// extensions the engine knows; otherwise it is empty and Value carries the
// raw extnValue octets.
type Extension struct {
	NID      int
	OID      string
	Name     string
	Critical bool
	Value    []byte
	Text     string
}

type (
	CertExtension = Extension
	CRLExtension  = Extension
)

// Known reports whether the extension has a rendered text form.
func (e Extension) Known() bool { return e.Text != "" }

func extensionsOf(in []native.Extension) []Extension {
	out := make([]Extension, 0, len(in))
	for _, e := range in {
		name := e.OID
		if e.NID != native.NIDUndef {
			name = native.OBJNid2ln(e.NID)
		}
		out = append(out, Extension{
			NID:      e.NID,
			OID:      e.OID,
			Name:     name,
			Critical: e.Critical,
			Value:    e.Value,
			Text:     e.Text,
		})
	}
	return out
}

// readFile loads path through the engine so I/O failures carry engine codes.
func readFile(path string) ([]byte, bool) {
	data, ok := native.BIOReadFile(path)
	if ok {
		slog.Debug("read file", "path", path, "bytes", len(data))
	}
	return data, ok
}

func writeFile(path string, data []byte, op string) simplessl.Result[simplessl.Empty] {
	if !native.BIOWriteFile(path, data) {
		return simplessl.FromLastError[simplessl.Empty](op)
	}
	slog.Debug("wrote file", "path", path, "bytes", len(data))
	return simplessl.Done()
}

// bytesResult wraps an engine byte return, where nil means failure.
func bytesResult(b []byte, op string) simplessl.Result[[]byte] {
	if b == nil {
		return simplessl.FromLastError[[]byte](op)
	}
	return simplessl.OK(b)
}

func stringResult(s string, op string) simplessl.Result[string] {
	if s == "" {
		return simplessl.FromLastError[string](op)
	}
	return simplessl.OK(s)
}
