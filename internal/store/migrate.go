package store

import (
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Migrate creates the schema if absent. It is idempotent and safe to call
// on every store open.
func (s *SQLiteStore) Migrate() error {
	if s.db == nil {
		return fmt.Errorf("store not opened")
	}
	return MigrateWithDB(s.db)
}

// MigrateWithDB runs migrations against a raw connection. Useful for tests
// that manage their own database handle.
func MigrateWithDB(db *sql.DB) error {
	goose.SetBaseFS(migrations)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect("sqlite"); err != nil {
		return fmt.Errorf("failed to set dialect: %w", err)
	}
	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}
