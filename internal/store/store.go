// Package store owns the normalized SQLite schema for ingested manifests
// and the read operations served over it. The four tables (model,
// column_def, edge, search_doc) are created by embedded migrations; all
// data is replaced wholesale on every rebuild.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // SQLite driver (pure Go)
)

// ErrNotFound indicates a point lookup for an id that has no row. It is a
// normal absent result, not a server failure.
var ErrNotFound = errors.New("not found")

// SQLiteStore wraps a connection to the store file.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// New creates an unopened store handle.
func New() *SQLiteStore {
	return &SQLiteStore{}
}

// NewWithDB wraps an existing connection. Used by tests that inject a
// mocked or pre-opened database.
func NewWithDB(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Open opens the store file, creating parent directories as needed.
// Use ":memory:" for an in-memory store.
func (s *SQLiteStore) Open(path string) error {
	dsn := path
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return fmt.Errorf("failed to create store directory: %w", err)
			}
		}
		dsn = path + "?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)"
	} else {
		dsn = ":memory:?_pragma=foreign_keys(1)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open store at %s: %w", path, err)
	}
	if path == ":memory:" {
		// Each pooled connection would otherwise get its own empty database.
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to open store at %s: %w", path, err)
	}

	s.db = db
	s.path = path
	return nil
}

// OpenReadOnly opens an existing store file without write access. The file
// must already exist; a missing store is reported with its resolved path.
func (s *SQLiteStore) OpenReadOnly(path string) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("failed to open store at %s: %w", path, err)
	}

	db, err := sql.Open("sqlite", path+"?mode=ro&_pragma=foreign_keys(1)")
	if err != nil {
		return fmt.Errorf("failed to open store at %s: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to open store at %s: %w", path, err)
	}

	s.db = db
	s.path = path
	return nil
}

// Close closes the underlying connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// DB exposes the underlying connection for ad-hoc read queries.
func (s *SQLiteStore) DB() *sql.DB { return s.db }

// Path returns the path the store was opened against.
func (s *SQLiteStore) Path() string { return s.path }

// Ping verifies the store answers a trivial query.
func (s *SQLiteStore) Ping() error {
	if s.db == nil {
		return fmt.Errorf("store not opened")
	}
	var ok int
	if err := s.db.QueryRow(`SELECT 1`).Scan(&ok); err != nil {
		return fmt.Errorf("store ping failed: %w", err)
	}
	return nil
}
