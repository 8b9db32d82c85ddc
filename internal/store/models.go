package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Listing bounds. Out-of-range values are clamped, never rejected.
const (
	DefaultListLimit = 20
	MinListLimit     = 1
	MaxListLimit     = 200
)

// ListModels returns one page of models ordered by name ascending, the
// unfiltered total, and the global facets.
func (s *SQLiteStore) ListModels(limit, offset int) (*ModelPage, error) {
	if s.db == nil {
		return nil, fmt.Errorf("store not opened")
	}

	limit = clamp(limit, MinListLimit, MaxListLimit)
	if offset < 0 {
		offset = 0
	}

	var total int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM model`).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count models: %w", err)
	}

	rows, err := s.db.Query(
		`SELECT unique_id, name, description, schema_name, package_name, materialized, resource_type, tags_json
		 FROM model
		 ORDER BY name
		 LIMIT ? OFFSET ?`,
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list models: %w", err)
	}
	defer rows.Close()

	items := make([]ModelSummary, 0, limit)
	for rows.Next() {
		item, err := scanSummary(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list models: %w", err)
	}

	facets, err := s.facets()
	if err != nil {
		return nil, err
	}

	return &ModelPage{Total: total, Items: items, Facets: *facets}, nil
}

// GetModel returns the full row for one model with its columns ordered by
// name. Returns ErrNotFound when no row matches.
func (s *SQLiteStore) GetModel(id string) (*ModelDetail, error) {
	if s.db == nil {
		return nil, fmt.Errorf("store not opened")
	}

	var d ModelDetail
	var pkg, path, database, schema, alias sql.NullString
	var materialized, description, resourceType sql.NullString
	var tagsJSON, metaJSON, configJSON sql.NullString

	err := s.db.QueryRow(
		`SELECT unique_id, name, resource_type, package_name, path, database_name, schema_name,
		        alias, materialized, description, tags_json, meta_json, config_json
		 FROM model WHERE unique_id = ?`,
		id,
	).Scan(&d.UniqueID, &d.Name, &resourceType, &pkg, &path, &database, &schema,
		&alias, &materialized, &description, &tagsJSON, &metaJSON, &configJSON)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("model %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get model: %w", err)
	}

	d.PackageName = pkg.String
	d.Path = path.String
	d.Database = database.String
	d.Schema = schema.String
	d.Alias = alias.String
	d.Materialization = stringOr(materialized, "view")
	d.ResourceType = stringOr(resourceType, "model")
	d.Description = description.String
	d.Tags = parseTags(tagsJSON)
	d.Meta = parseJSONMap(metaJSON)
	d.Config = parseJSONMap(configJSON)

	cols, err := s.db.Query(
		`SELECT name, description FROM column_def WHERE model_unique_id = ? ORDER BY name`,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get columns: %w", err)
	}
	defer cols.Close()

	d.Columns = []ColumnDetail{}
	for cols.Next() {
		var c ColumnDetail
		var desc sql.NullString
		if err := cols.Scan(&c.Name, &desc); err != nil {
			return nil, fmt.Errorf("failed to scan column: %w", err)
		}
		c.Description = desc.String
		d.Columns = append(d.Columns, c)
	}
	if err := cols.Err(); err != nil {
		return nil, fmt.Errorf("failed to get columns: %w", err)
	}

	return &d, nil
}

// AllModelsAndEdges returns every model and every edge, unfiltered and
// ordered by package/schema/name. Intended for global-overview consumers on
// bounded-size projects.
func (s *SQLiteStore) AllModelsAndEdges() (*Graph, error) {
	if s.db == nil {
		return nil, fmt.Errorf("store not opened")
	}

	rows, err := s.db.Query(
		`SELECT unique_id, name, description, schema_name, package_name, materialized, resource_type, tags_json
		 FROM model
		 ORDER BY package_name, schema_name, name`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list models: %w", err)
	}
	defer rows.Close()

	g := &Graph{Nodes: []GraphNode{}, Edges: []GraphEdge{}, Models: []ModelSummary{}}
	for rows.Next() {
		m, err := scanSummary(rows)
		if err != nil {
			return nil, err
		}
		g.Models = append(g.Models, m)
		g.Nodes = append(g.Nodes, summaryToNode(m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list models: %w", err)
	}
	g.Total = len(g.Nodes)

	edges, err := s.db.Query(`SELECT src_unique_id, dst_unique_id FROM edge`)
	if err != nil {
		return nil, fmt.Errorf("failed to list edges: %w", err)
	}
	defer edges.Close()

	for edges.Next() {
		var e GraphEdge
		if err := edges.Scan(&e.Source, &e.Target); err != nil {
			return nil, fmt.Errorf("failed to scan edge: %w", err)
		}
		g.Edges = append(g.Edges, e)
	}
	if err := edges.Err(); err != nil {
		return nil, fmt.Errorf("failed to list edges: %w", err)
	}

	return g, nil
}

// DatabaseTree groups models by database then schema for the navigation
// sidebar. Null database/schema names fall back to "default"/"public".
func (s *SQLiteStore) DatabaseTree() ([]DatabaseGroup, error) {
	if s.db == nil {
		return nil, fmt.Errorf("store not opened")
	}

	rows, err := s.db.Query(
		`SELECT database_name, schema_name, unique_id, name
		 FROM model
		 ORDER BY database_name, schema_name, name`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query navigation tree: %w", err)
	}
	defer rows.Close()

	// Rows arrive ordered, so groups can be appended as the keys change.
	tree := []DatabaseGroup{}
	for rows.Next() {
		var dbName, schemaName sql.NullString
		var ref ModelRef
		if err := rows.Scan(&dbName, &schemaName, &ref.UniqueID, &ref.Name); err != nil {
			return nil, fmt.Errorf("failed to scan navigation row: %w", err)
		}

		database := stringOr(dbName, "default")
		schema := stringOr(schemaName, "public")

		if len(tree) == 0 || tree[len(tree)-1].Name != database {
			tree = append(tree, DatabaseGroup{Name: database})
		}
		dg := &tree[len(tree)-1]

		if len(dg.Schemas) == 0 || dg.Schemas[len(dg.Schemas)-1].Name != schema {
			dg.Schemas = append(dg.Schemas, SchemaGroup{Name: schema})
		}
		sg := &dg.Schemas[len(dg.Schemas)-1]
		sg.Models = append(sg.Models, ref)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to query navigation tree: %w", err)
	}

	return tree, nil
}

// facets computes the four distinct-value lists. Schema, package, and
// materialization come straight from indexed DISTINCT queries; tags are
// unioned across all rows and sorted with a locale-aware collator.
func (s *SQLiteStore) facets() (*Facets, error) {
	f := &Facets{
		Tags:             []string{},
		Schemas:          []string{},
		Packages:         []string{},
		Materializations: []string{},
	}

	for _, q := range []struct {
		column string
		dest   *[]string
	}{
		{"schema_name", &f.Schemas},
		{"package_name", &f.Packages},
		{"materialized", &f.Materializations},
	} {
		values, err := s.distinctColumn(q.column)
		if err != nil {
			return nil, err
		}
		*q.dest = values
	}

	rows, err := s.db.Query(`SELECT tags_json FROM model WHERE tags_json IS NOT NULL`)
	if err != nil {
		return nil, fmt.Errorf("failed to query tags: %w", err)
	}
	defer rows.Close()

	seen := make(map[string]struct{})
	for rows.Next() {
		var tagsJSON sql.NullString
		if err := rows.Scan(&tagsJSON); err != nil {
			return nil, fmt.Errorf("failed to scan tags: %w", err)
		}
		for _, tag := range parseTags(tagsJSON) {
			if _, ok := seen[tag]; !ok {
				seen[tag] = struct{}{}
				f.Tags = append(f.Tags, tag)
			}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to query tags: %w", err)
	}

	collate.New(language.Und).SortStrings(f.Tags)
	return f, nil
}

func (s *SQLiteStore) distinctColumn(column string) ([]string, error) {
	query := fmt.Sprintf(
		`SELECT DISTINCT %[1]s FROM model WHERE %[1]s IS NOT NULL AND %[1]s != '' ORDER BY %[1]s`,
		column,
	)
	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query distinct %s: %w", column, err)
	}
	defer rows.Close()

	values := []string{}
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", column, err)
		}
		values = append(values, v)
	}
	return values, rows.Err()
}

// scanSummary scans the common summary column set:
// unique_id, name, description, schema_name, package_name, materialized,
// resource_type, tags_json.
func scanSummary(rows *sql.Rows) (ModelSummary, error) {
	var m ModelSummary
	var desc, schema, pkg, materialized, resourceType, tagsJSON sql.NullString

	if err := rows.Scan(&m.UniqueID, &m.Name, &desc, &schema, &pkg, &materialized, &resourceType, &tagsJSON); err != nil {
		return m, fmt.Errorf("failed to scan model: %w", err)
	}

	m.Description = desc.String
	m.Schema = schema.String
	m.PackageName = pkg.String
	m.Materialization = stringOr(materialized, "view")
	m.ResourceType = stringOr(resourceType, "model")
	m.Tags = parseTags(tagsJSON)
	return m, nil
}

func summaryToNode(m ModelSummary) GraphNode {
	return GraphNode{
		ID:              m.UniqueID,
		Label:           m.Name,
		Schema:          m.Schema,
		PackageName:     m.PackageName,
		Materialization: m.Materialization,
		ResourceType:    m.ResourceType,
		Tags:            m.Tags,
	}
}

// parseTags decodes a stored tag list. Malformed encodings degrade to an
// empty list so one corrupt row never breaks a listing.
func parseTags(tagsJSON sql.NullString) []string {
	if !tagsJSON.Valid || tagsJSON.String == "" {
		return []string{}
	}
	var raw []any
	if err := json.Unmarshal([]byte(tagsJSON.String), &raw); err != nil {
		return []string{}
	}
	tags := make([]string, 0, len(raw))
	for _, t := range raw {
		if s, ok := t.(string); ok {
			if s = strings.TrimSpace(s); s != "" {
				tags = append(tags, s)
			}
		}
	}
	return tags
}

// parseJSONMap decodes a stored object. Malformed encodings degrade to an
// empty map.
func parseJSONMap(v sql.NullString) map[string]any {
	if !v.Valid || v.String == "" {
		return map[string]any{}
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(v.String), &m); err != nil || m == nil {
		return map[string]any{}
	}
	return m
}

func stringOr(v sql.NullString, fallback string) string {
	if v.Valid && v.String != "" {
		return v.String
	}
	return fallback
}

func clamp(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
