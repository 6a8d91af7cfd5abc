package storage

import (
	"database/sql"
	"fmt"

	"github.com/matsen/citecheck/internal/kb"
	_ "modernc.org/sqlite"
)

// DB wraps a SQLite knowledge-base snapshot.
type DB struct {
	db *sql.DB
}

// OpenDB opens or creates a SQLite database at the given path.
func OpenDB(path string) (*DB, error) {
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

// createSchema creates the database schema if it doesn't exist.
func createSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS verified (
			citation TEXT PRIMARY KEY
		);

		CREATE TABLE IF NOT EXISTS suspicious (
			key TEXT PRIMARY KEY,
			reason TEXT NOT NULL
		);

		-- One row per source in build order
		CREATE TABLE IF NOT EXISTS sources (
			position INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			tier TEXT NOT NULL,
			bytes INTEGER NOT NULL,
			citations INTEGER NOT NULL,
			identifiers INTEGER NOT NULL,
			skipped INTEGER NOT NULL,
			skip_reason TEXT
		);
	`

	_, err := db.Exec(schema)
	return err
}

// SaveKnowledgeBase replaces the snapshot contents with base.
func (d *DB) SaveKnowledgeBase(base *kb.KnowledgeBase) error {
	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"verified", "suspicious", "sources"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("clearing %s table: %w", table, err)
		}
	}

	verifiedStmt, err := tx.Prepare(`INSERT INTO verified (citation) VALUES (?)`)
	if err != nil {
		return fmt.Errorf("preparing verified insert: %w", err)
	}
	defer verifiedStmt.Close()
	for _, key := range base.VerifiedKeys() {
		if _, err := verifiedStmt.Exec(key); err != nil {
			return fmt.Errorf("inserting verified %s: %w", key, err)
		}
	}

	suspiciousStmt, err := tx.Prepare(`INSERT INTO suspicious (key, reason) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing suspicious insert: %w", err)
	}
	defer suspiciousStmt.Close()
	for _, f := range base.Flags() {
		if _, err := suspiciousStmt.Exec(f.Key, f.Reason); err != nil {
			return fmt.Errorf("inserting suspicious %s: %w", f.Key, err)
		}
	}

	sourcesStmt, err := tx.Prepare(`
		INSERT INTO sources (position, name, tier, bytes, citations, identifiers, skipped, skip_reason)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing sources insert: %w", err)
	}
	defer sourcesStmt.Close()
	for i, s := range base.Sources() {
		_, err := sourcesStmt.Exec(i, s.Name, string(s.Tier), s.Bytes, s.Citations, s.Identifiers,
			s.Skipped, nullableStringValue(s.SkipReason))
		if err != nil {
			return fmt.Errorf("inserting source %s: %w", s.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing snapshot: %w", err)
	}
	return nil
}

// Lookup reports the snapshot's view of a citation or identifier key.
func (d *DB) Lookup(key string) (verified, suspicious bool, reason string, err error) {
	var n int
	if err := d.db.QueryRow(`SELECT COUNT(*) FROM verified WHERE citation = ?`, key).Scan(&n); err != nil {
		return false, false, "", fmt.Errorf("querying verified: %w", err)
	}
	verified = n > 0

	err = d.db.QueryRow(`SELECT reason FROM suspicious WHERE key = ?`, key).Scan(&reason)
	switch {
	case err == sql.ErrNoRows:
		return verified, false, "", nil
	case err != nil:
		return false, false, "", fmt.Errorf("querying suspicious: %w", err)
	}
	return verified, true, reason, nil
}

// Counts returns the number of rows in each snapshot table.
func (d *DB) Counts() (verified, suspicious, sources int, err error) {
	for table, dst := range map[string]*int{"verified": &verified, "suspicious": &suspicious, "sources": &sources} {
		if err := d.db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(dst); err != nil {
			return 0, 0, 0, fmt.Errorf("counting %s: %w", table, err)
		}
	}
	return verified, suspicious, sources, nil
}

func nullableStringValue(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
