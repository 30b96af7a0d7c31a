// CLAUDE:SUMMARY SQLite ledger of conversion runs and the fixes they applied.
// Package audit persists conversion run summaries so fixes remain reviewable
// after the run: which documents were touched, what was repaired, and where.
package audit

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/hazyhaar/adoctext/convert"
)

// Schema for the audit tables. Call Store.Init() or apply manually.
const Schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id TEXT PRIMARY KEY,
	started INTEGER NOT NULL,
	finished INTEGER NOT NULL,
	succeeded INTEGER NOT NULL,
	failed INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS fixes (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id TEXT NOT NULL,
	file TEXT NOT NULL,
	stage TEXT NOT NULL,
	location TEXT,
	description TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_fixes_run ON fixes(run_id);
`

// Store persists run summaries to SQLite.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the ledger at path and applies the schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open audit db %s: %w", path, err)
	}
	s := NewStore(db)
	if err := s.Init(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init audit db %s: %w", path, err)
	}
	return s, nil
}

// NewStore wraps an existing database connection.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Init creates the audit tables if they don't exist.
func (s *Store) Init() error {
	_, err := s.db.Exec(Schema)
	return err
}

// Close releases the underlying connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// RecordRun writes one run summary and all its fixes in a single
// transaction.
func (s *Store) RecordRun(sum convert.Summary) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("audit: begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`INSERT INTO runs (run_id, started, finished, succeeded, failed) VALUES (?, ?, ?, ?, ?)`,
		sum.RunID, sum.Started.Unix(), sum.Finished.Unix(), len(sum.Succeeded), len(sum.Failed),
	); err != nil {
		return fmt.Errorf("audit: insert run %s: %w", sum.RunID, err)
	}

	stmt, err := tx.Prepare(
		`INSERT INTO fixes (run_id, file, stage, location, description) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("audit: prepare fixes insert: %w", err)
	}
	defer stmt.Close()

	for _, f := range sum.Fixes {
		if _, err := stmt.Exec(sum.RunID, f.File, f.Stage, f.Location, f.Description); err != nil {
			return fmt.Errorf("audit: insert fix: %w", err)
		}
	}
	return tx.Commit()
}

// ListFixes returns a run's fixes in the order they were recorded.
func (s *Store) ListFixes(runID string) ([]convert.FixRecord, error) {
	rows, err := s.db.Query(
		`SELECT file, stage, location, description FROM fixes WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("audit: list fixes for %s: %w", runID, err)
	}
	defer rows.Close()

	var fixes []convert.FixRecord
	for rows.Next() {
		var f convert.FixRecord
		if err := rows.Scan(&f.File, &f.Stage, &f.Location, &f.Description); err != nil {
			return nil, fmt.Errorf("audit: scan fix: %w", err)
		}
		fixes = append(fixes, f)
	}
	return fixes, rows.Err()
}
