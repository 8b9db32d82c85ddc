package store

import (
	"database/sql"
	"fmt"
	"strings"
)

// DefaultSearchLimit caps search results when the caller passes no limit.
const DefaultSearchLimit = 50

// Search performs a case-insensitive substring match against search
// document names, descriptions, and tags. A blank query returns an empty
// result list without touching the store.
func (s *SQLiteStore) Search(query string, limit int) ([]SearchResult, error) {
	if s.db == nil {
		return nil, fmt.Errorf("store not opened")
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return []SearchResult{}, nil
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	term := "%" + strings.ToLower(query) + "%"
	rows, err := s.db.Query(
		`SELECT doc_type, doc_id, model_unique_id, name, description
		 FROM search_doc
		 WHERE LOWER(name) LIKE ? OR LOWER(description) LIKE ? OR LOWER(tags) LIKE ?
		 LIMIT ?`,
		term, term, term, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}
	defer rows.Close()

	results := []SearchResult{}
	for rows.Next() {
		var r SearchResult
		var desc sql.NullString
		if err := rows.Scan(&r.DocType, &r.DocID, &r.ModelUniqueID, &r.Name, &desc); err != nil {
			return nil, fmt.Errorf("failed to scan search result: %w", err)
		}
		r.Description = desc.String
		results = append(results, r)
	}
	return results, rows.Err()
}
