// Package snapshot persists parsed paper tables in SQLite so that a restart
// does not re-parse an unchanged source file. The CSV stays the source of
// truth; every snapshot can be rebuilt from it.
package snapshot

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/matsen/paperdash/internal/paper"
	_ "modernc.org/sqlite"
)

// Meta describes one stored snapshot.
type Meta struct {
	Key     string    `json:"key"`
	Path    string    `json:"path"`
	Rows    int       `json:"rows"`
	Dropped int       `json:"dropped"`
	Records int       `json:"records"`
	SavedAt time.Time `json:"saved_at"`
}

// DB wraps a SQLite database connection.
type DB struct {
	db *sql.DB
}

// Open opens or creates a snapshot database at the given path.
func Open(path string) (*DB, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating snapshot directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite doesn't support concurrent writes

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &DB{db: db}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

func createSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS snapshots (
			key TEXT PRIMARY KEY,
			path TEXT NOT NULL,
			row_count INTEGER NOT NULL,
			dropped INTEGER NOT NULL,
			record_count INTEGER NOT NULL,
			saved_at INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS records (
			snapshot_key TEXT NOT NULL,
			seq INTEGER NOT NULL,
			cord_uid TEXT,
			doi TEXT,
			source TEXT,
			title TEXT,
			journal TEXT,
			publish_time TEXT NOT NULL,
			PRIMARY KEY (snapshot_key, seq)
		);
	`

	_, err := db.Exec(schema)
	return err
}

// Save replaces the snapshot stored under meta.Key with records.
func (d *DB) Save(meta Meta, records []paper.Record) error {
	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM records WHERE snapshot_key = ?`, meta.Key); err != nil {
		return fmt.Errorf("clearing records of %s: %w", meta.Key, err)
	}
	if _, err := tx.Exec(`DELETE FROM snapshots WHERE key = ?`, meta.Key); err != nil {
		return fmt.Errorf("clearing snapshot %s: %w", meta.Key, err)
	}

	savedAt := meta.SavedAt
	if savedAt.IsZero() {
		savedAt = time.Now()
	}
	_, err = tx.Exec(`
		INSERT INTO snapshots (key, path, row_count, dropped, record_count, saved_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, meta.Key, meta.Path, meta.Rows, meta.Dropped, len(records), savedAt.Unix())
	if err != nil {
		return fmt.Errorf("inserting snapshot %s: %w", meta.Key, err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO records (snapshot_key, seq, cord_uid, doi, source, title, journal, publish_time)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing record insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range records {
		_, err := stmt.Exec(
			meta.Key, i,
			nullableStringValue(r.CordUID), nullableStringValue(r.DOI), nullableStringValue(r.Source),
			nullablePtr(r.Title), nullablePtr(r.Journal),
			r.PublishTime.UTC().Format(time.RFC3339Nano),
		)
		if err != nil {
			return fmt.Errorf("inserting record %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing snapshot %s: %w", meta.Key, err)
	}
	return nil
}

// Load returns the snapshot stored under key. found is false when no
// snapshot exists for the key.
func (d *DB) Load(key string) (meta Meta, records []paper.Record, found bool, err error) {
	meta, found, err = d.meta(key)
	if err != nil || !found {
		return meta, nil, found, err
	}

	rows, err := d.db.Query(`
		SELECT cord_uid, doi, source, title, journal, publish_time
		FROM records WHERE snapshot_key = ? ORDER BY seq
	`, key)
	if err != nil {
		return meta, nil, false, fmt.Errorf("querying records: %w", err)
	}
	defer rows.Close()

	records = make([]paper.Record, 0, meta.Records)
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return meta, nil, false, err
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return meta, nil, false, err
	}
	if len(records) != meta.Records {
		return meta, nil, false, fmt.Errorf("snapshot %s is incomplete: %d of %d records", key, len(records), meta.Records)
	}

	return meta, records, true, nil
}

func (d *DB) meta(key string) (Meta, bool, error) {
	var m Meta
	var savedAt int64
	err := d.db.QueryRow(`
		SELECT key, path, row_count, dropped, record_count, saved_at FROM snapshots WHERE key = ?
	`, key).Scan(&m.Key, &m.Path, &m.Rows, &m.Dropped, &m.Records, &savedAt)
	if err == sql.ErrNoRows {
		return Meta{}, false, nil
	}
	if err != nil {
		return Meta{}, false, fmt.Errorf("querying snapshot %s: %w", key, err)
	}
	m.SavedAt = time.Unix(savedAt, 0)
	return m, true, nil
}

// List returns metadata for all stored snapshots, newest first.
func (d *DB) List() ([]Meta, error) {
	rows, err := d.db.Query(`
		SELECT key, path, row_count, dropped, record_count, saved_at FROM snapshots ORDER BY saved_at DESC, key
	`)
	if err != nil {
		return nil, fmt.Errorf("listing snapshots: %w", err)
	}
	defer rows.Close()

	var metas []Meta
	for rows.Next() {
		var m Meta
		var savedAt int64
		if err := rows.Scan(&m.Key, &m.Path, &m.Rows, &m.Dropped, &m.Records, &savedAt); err != nil {
			return nil, err
		}
		m.SavedAt = time.Unix(savedAt, 0)
		metas = append(metas, m)
	}
	return metas, rows.Err()
}

// Prune deletes every snapshot except keep and returns how many were removed.
func (d *DB) Prune(keep string) (int, error) {
	tx, err := d.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM records WHERE snapshot_key != ?`, keep); err != nil {
		return 0, fmt.Errorf("pruning records: %w", err)
	}
	res, err := tx.Exec(`DELETE FROM snapshots WHERE key != ?`, keep)
	if err != nil {
		return 0, fmt.Errorf("pruning snapshots: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), tx.Commit()
}

// PrunePath deletes the snapshots of path other than keep, leaving
// snapshots of other files alone. It returns how many were removed.
func (d *DB) PrunePath(path, keep string) (int, error) {
	tx, err := d.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		DELETE FROM records WHERE snapshot_key IN (
			SELECT key FROM snapshots WHERE path = ? AND key != ?
		)
	`, path, keep)
	if err != nil {
		return 0, fmt.Errorf("pruning records of %s: %w", path, err)
	}
	res, err := tx.Exec(`DELETE FROM snapshots WHERE path = ? AND key != ?`, path, keep)
	if err != nil {
		return 0, fmt.Errorf("pruning snapshots of %s: %w", path, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), tx.Commit()
}

// scanner interface for sql.Row and sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(s scanner) (paper.Record, error) {
	var r paper.Record
	var cordUID, doi, source, title, journal sql.NullString
	var published string

	if err := s.Scan(&cordUID, &doi, &source, &title, &journal, &published); err != nil {
		return r, err
	}

	t, err := time.Parse(time.RFC3339Nano, published)
	if err != nil {
		return r, fmt.Errorf("parsing stored publish_time %q: %w", published, err)
	}

	r.CordUID = cordUID.String
	r.DOI = doi.String
	r.Source = source.String
	if title.Valid {
		r.Title = paper.String(title.String)
	}
	if journal.Valid {
		r.Journal = paper.String(journal.String)
	}
	r.PublishTime = t
	return r, nil
}

// nullableStringValue converts a string to sql.NullString, treating empty as NULL.
func nullableStringValue(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// nullablePtr converts an optional string to sql.NullString, keeping empty strings.
func nullablePtr(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
