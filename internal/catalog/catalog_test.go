package catalog

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/sensiblebit/simplessl/internal"
)

func sampleReports() []internal.Report {
	return []internal.Report{
		{
			Kind:     internal.KindCertificate,
			Source:   "leaf.pem",
			Version:  "3 (2)",
			Serial:   "0abc",
			Subject:  &internal.NameFields{Text: "CN=leaf.example.com", CommonName: "leaf.example.com"},
			Issuer:   &internal.NameFields{Text: "O=TestOrg, CN=Test CA", CommonName: "Test CA"},
			NotAfter: "2030-01-01T00:00:00Z",
			SHA256:   "AA:BB",
		},
		{
			Kind:    internal.KindCRL,
			Source:  "ca.crl",
			Version: "2 (1)",
			Issuer:  &internal.NameFields{Text: "CN=Test CA", CommonName: "Test CA"},
		},
		{
			Kind:      internal.KindCertificate,
			Source:    "missing.pem",
			Error:     "error:80000002:system library::No such file or directory",
			ErrorCode: 0x80000002,
		},
	}
}

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := NewDB()
	if err != nil {
		t.Fatalf("NewDB: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestNewDB_Schema(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	var count int
	if err := db.Get(&count, "SELECT COUNT(*) FROM inspections"); err != nil {
		t.Fatalf("inspections table should exist: %v", err)
	}
	if count != 0 {
		t.Errorf("fresh catalog has %d rows", count)
	}
}

func TestRecordAndList(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	at := time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)
	for _, r := range sampleReports() {
		if err := db.RecordAt(r, at); err != nil {
			t.Fatalf("RecordAt(%s): %v", r.Source, err)
		}
	}

	recs, err := db.List(0)
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 3 {
		t.Fatalf("List returned %d records, want 3", len(recs))
	}
	if recs[0].Source != "missing.pem" || recs[2].Source != "leaf.pem" {
		t.Errorf("order = %s, %s, %s; want newest first", recs[0].Source, recs[1].Source, recs[2].Source)
	}
	if !recs[2].InspectedAt.Equal(at) {
		t.Errorf("InspectedAt = %v, want %v", recs[2].InspectedAt, at)
	}
	if !recs[2].Subject.Valid || recs[2].Subject.String != "CN=leaf.example.com" {
		t.Errorf("Subject = %+v", recs[2].Subject)
	}
	if recs[1].Subject.Valid {
		t.Error("CRL record has a subject")
	}
	if recs[0].ErrorCode != 0x80000002 {
		t.Errorf("ErrorCode = %#x", recs[0].ErrorCode)
	}

	limited, err := db.List(1)
	if err != nil {
		t.Fatal(err)
	}
	if len(limited) != 1 || limited[0].Source != "missing.pem" {
		t.Errorf("List(1) = %+v", limited)
	}

	rep, err := recs[2].Report()
	if err != nil {
		t.Fatal(err)
	}
	if rep.Serial != "0abc" || rep.Issuer == nil || rep.Issuer.CommonName != "Test CA" {
		t.Errorf("decoded report = %+v", rep)
	}
}

func TestFindBySHA256(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	reports := sampleReports()
	for range 2 {
		if err := db.Record(reports[0]); err != nil {
			t.Fatal(err)
		}
	}
	if err := db.Record(reports[1]); err != nil {
		t.Fatal(err)
	}

	recs, err := db.FindBySHA256("AA:BB")
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 2 {
		t.Errorf("got %d records, want 2", len(recs))
	}
	none, err := db.FindBySHA256("CC:DD")
	if err != nil {
		t.Fatal(err)
	}
	if len(none) != 0 {
		t.Errorf("got %d records for unknown fingerprint", len(none))
	}
}

func TestGetSummary(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	for _, r := range sampleReports() {
		if err := db.Record(r); err != nil {
			t.Fatal(err)
		}
	}
	s, err := db.GetSummary()
	if err != nil {
		t.Fatal(err)
	}
	want := Summary{Total: 3, Certificates: 2, CRLs: 1, Failed: 1}
	if *s != want {
		t.Errorf("summary = %+v, want %+v", *s, want)
	}
}

func TestSaveAndLoadFromDisk(t *testing.T) {
	// WHY: History persists across runs by copying the in-memory database
	// to a file and attaching it on the next start.
	t.Parallel()
	path := filepath.Join(t.TempDir(), "history.db")

	first := newTestDB(t)
	for _, r := range sampleReports() {
		if err := first.Record(r); err != nil {
			t.Fatal(err)
		}
	}
	if err := first.SaveToDisk(path); err != nil {
		t.Fatalf("SaveToDisk: %v", err)
	}

	second := newTestDB(t)
	if err := second.LoadFromDisk(path); err != nil {
		t.Fatalf("LoadFromDisk: %v", err)
	}
	recs, err := second.List(0)
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 3 {
		t.Fatalf("loaded %d records, want 3", len(recs))
	}
	if err := second.Record(sampleReports()[1]); err != nil {
		t.Fatal(err)
	}
	recs, err = second.List(1)
	if err != nil {
		t.Fatal(err)
	}
	if recs[0].ID != 4 {
		t.Errorf("new record ID = %d, want 4", recs[0].ID)
	}
}

func TestLoadFromDisk_Missing(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	if err := db.LoadFromDisk(filepath.Join(t.TempDir(), "absent", "history.db")); err == nil {
		t.Fatal("expected error for unreachable path")
	}
}
