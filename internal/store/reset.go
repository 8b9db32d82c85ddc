package store

import (
	"database/sql"
	"fmt"
)

// ResetData deletes all rows from all four tables, children before parents.
// It must run inside the same transaction as the subsequent inserts so a
// failed rebuild leaves the prior contents intact.
func ResetData(tx *sql.Tx) error {
	for _, table := range []string{"search_doc", "edge", "column_def", "model"} {
		if _, err := tx.Exec(`DELETE FROM ` + table); err != nil {
			return fmt.Errorf("failed to reset %s: %w", table, err)
		}
	}
	return nil
}
