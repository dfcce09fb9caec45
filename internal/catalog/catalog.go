// Package catalog keeps a history of inspection reports in SQLite.
package catalog

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"github.com/sensiblebit/simplessl/internal"
	_ "modernc.org/sqlite"
)

// DB represents the database connection.
type DB struct {
	*sqlx.DB
}

// InspectionRecord is one stored inspection.
type InspectionRecord struct {
	ID          int64          `db:"id" json:"id"`
	InspectedAt time.Time      `db:"inspected_at" json:"inspected_at"`
	Kind        string         `db:"kind" json:"kind"`
	Source      string         `db:"source" json:"source"`
	Subject     sql.NullString `db:"subject" json:"-"`
	Issuer      sql.NullString `db:"issuer" json:"-"`
	Serial      sql.NullString `db:"serial" json:"-"`
	NotAfter    sql.NullString `db:"not_after" json:"-"`
	SHA256      sql.NullString `db:"sha256" json:"-"`
	ErrorCode   int64          `db:"error_code" json:"error_code,omitempty"`
	Error       string         `db:"error" json:"error,omitempty"`
	ReportJSON  types.JSONText `db:"report" json:"report"`
}

// Summary holds aggregate counts over the stored history.
type Summary struct {
	Total        int `json:"total"`
	Certificates int `json:"certificates"`
	CRLs         int `json:"crls"`
	Failed       int `json:"failed"`
}

// NewDB creates and initializes a new in-memory database connection. Use
// SaveToDisk and LoadFromDisk to persist or restore history.
func NewDB() (*DB, error) {
	// Each :memory: connection is a separate database, so the pool is
	// pinned to one connection.
	dsn := "file::memory:?_pragma=temp_store(2)&_pragma=journal_mode(off)&_pragma=synchronous(off)"
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	db.SetMaxOpenConns(1)

	dbObj := &DB{DB: db}

	if err := dbObj.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}

	slog.Debug("catalog initialized")

	return dbObj, nil
}

func (db *DB) initSchema() error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS inspections (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			inspected_at timestamp NOT NULL,
			kind         text NOT NULL,
			source       text NOT NULL,
			subject      text,
			issuer       text,
			serial       text,
			not_after    text,
			sha256       text,
			error_code   integer NOT NULL DEFAULT 0,
			error        text NOT NULL DEFAULT '',
			report       text NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("creating inspections table: %w", err)
	}

	_, err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_inspections_sha256 ON inspections (sha256);
	`)
	if err != nil {
		return fmt.Errorf("creating sha256 index on inspections table: %w", err)
	}
	return nil
}

// SaveToDisk writes the in-memory database to a file at the given path.
// VACUUM INTO refuses to overwrite, so an existing file must have been
// loaded and removed by the caller first.
func (db *DB) SaveToDisk(path string) error {
	_, err := db.Exec("VACUUM INTO ?", path)
	if err != nil {
		return fmt.Errorf("saving database to %s: %w", path, err)
	}
	slog.Info("catalog saved to disk", "path", path)
	return nil
}

// LoadFromDisk copies the history in an on-disk database into the in-memory
// database. The file is read once and then detached.
func (db *DB) LoadFromDisk(path string) error {
	_, err := db.Exec("ATTACH DATABASE ? AS diskdb", path)
	if err != nil {
		return fmt.Errorf("attaching database %s: %w", path, err)
	}
	defer func() {
		if _, err := db.Exec("DETACH DATABASE diskdb"); err != nil {
			slog.Warn("detaching database", "path", path, "error", err)
		}
	}()

	_, err = db.Exec("INSERT OR IGNORE INTO inspections SELECT * FROM diskdb.inspections")
	if err != nil {
		return fmt.Errorf("loading inspections from %s: %w", path, err)
	}

	slog.Info("catalog loaded from disk", "path", path)
	return nil
}

// Record stores a report with the current time.
func (db *DB) Record(r internal.Report) error {
	return db.RecordAt(r, time.Now())
}

// RecordAt stores a report with the given inspection time.
func (db *DB) RecordAt(r internal.Report, at time.Time) error {
	report, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encoding report for %s: %w", r.Source, err)
	}
	rec := InspectionRecord{
		InspectedAt: at.UTC(),
		Kind:        r.Kind,
		Source:      r.Source,
		Serial:      nullString(r.Serial),
		NotAfter:    nullString(r.NotAfter),
		SHA256:      nullString(r.SHA256),
		ErrorCode:   int64(r.ErrorCode),
		Error:       r.Error,
		ReportJSON:  types.JSONText(report),
	}
	if r.Subject != nil {
		rec.Subject = nullString(r.Subject.Text)
	}
	if r.Issuer != nil {
		rec.Issuer = nullString(r.Issuer.Text)
	}

	_, err = db.NamedExec(`
		INSERT INTO inspections (inspected_at, kind, source, subject, issuer, serial, not_after, sha256, error_code, error, report)
		VALUES (:inspected_at, :kind, :source, :subject, :issuer, :serial, :not_after, :sha256, :error_code, :error, :report)
	`, rec)
	if err != nil {
		return fmt.Errorf("inserting inspection: %w", err)
	}
	slog.Debug("recorded inspection", "kind", r.Kind, "source", r.Source, "failed", r.Failed())
	return nil
}

// List returns the most recent inspections first. A limit of zero or less
// returns every record.
func (db *DB) List(limit int) ([]InspectionRecord, error) {
	if limit <= 0 {
		limit = -1
	}
	var recs []InspectionRecord
	err := db.Select(&recs, "SELECT * FROM inspections ORDER BY id DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("listing inspections: %w", err)
	}
	return recs, nil
}

// FindBySHA256 returns every inspection of the certificate with the given
// colon-separated SHA-256 fingerprint, oldest first.
func (db *DB) FindBySHA256(fingerprint string) ([]InspectionRecord, error) {
	var recs []InspectionRecord
	err := db.Select(&recs, "SELECT * FROM inspections WHERE sha256 = ? ORDER BY id", fingerprint)
	if err != nil {
		return nil, fmt.Errorf("finding inspections by fingerprint: %w", err)
	}
	return recs, nil
}

// GetSummary queries the database for aggregate counts.
func (db *DB) GetSummary() (*Summary, error) {
	s := &Summary{}

	if err := db.Get(&s.Total, "SELECT COUNT(*) FROM inspections"); err != nil {
		return nil, fmt.Errorf("counting inspections: %w", err)
	}
	if err := db.Get(&s.Certificates, "SELECT COUNT(*) FROM inspections WHERE kind = ?", internal.KindCertificate); err != nil {
		return nil, fmt.Errorf("counting certificates: %w", err)
	}
	if err := db.Get(&s.CRLs, "SELECT COUNT(*) FROM inspections WHERE kind = ?", internal.KindCRL); err != nil {
		return nil, fmt.Errorf("counting CRLs: %w", err)
	}
	if err := db.Get(&s.Failed, "SELECT COUNT(*) FROM inspections WHERE error_code != 0"); err != nil {
		return nil, fmt.Errorf("counting failures: %w", err)
	}

	return s, nil
}

// Report decodes the stored report.
func (r *InspectionRecord) Report() (internal.Report, error) {
	var rep internal.Report
	if err := json.Unmarshal(r.ReportJSON, &rep); err != nil {
		return internal.Report{}, fmt.Errorf("decoding stored report %d: %w", r.ID, err)
	}
	return rep, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
