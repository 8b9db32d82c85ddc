// Package ingest compiles a dbt manifest into the catalog store.
//
// A build is a single transaction: clear the derived tables, then insert
// models, columns, edges, and search documents. Either the whole manifest
// lands or nothing changes, so readers never observe a half-built catalog.
package ingest

import (
	"fmt"
	"strings"

	"github.com/dbtui-dev/dbtui/internal/manifest"
	"github.com/dbtui-dev/dbtui/internal/store"
)

// Result reports how many rows each pass produced.
type Result struct {
	Models     int
	Columns    int
	Edges      int
	SearchDocs int
}

// Build parses the manifest at manifestPath and replaces the contents of st
// with the compiled catalog.
func Build(manifestPath string, st *store.SQLiteStore) (*Result, error) {
	m, err := manifest.Parse(manifestPath)
	if err != nil {
		return nil, err
	}
	return BuildFromManifest(m, st)
}

// BuildFromManifest compiles an already-parsed manifest into st.
func BuildFromManifest(m *manifest.Manifest, st *store.SQLiteStore) (*Result, error) {
	nodes := m.ModelNodes()

	tx, err := st.DB().Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin ingestion: %w", err)
	}
	defer tx.Rollback()

	if err := store.ResetData(tx); err != nil {
		return nil, err
	}

	res := &Result{}

	insertModel, err := tx.Prepare(
		`INSERT INTO model (unique_id, name, resource_type, package_name, path, database_name,
		                    schema_name, alias, materialized, description, tags_json, meta_json, config_json)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare model insert: %w", err)
	}
	defer insertModel.Close()

	insertColumn, err := tx.Prepare(
		`INSERT INTO column_def (model_unique_id, name, description, meta_json)
		 VALUES (?, ?, ?, ?)`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare column insert: %w", err)
	}
	defer insertColumn.Close()

	insertEdge, err := tx.Prepare(
		`INSERT OR IGNORE INTO edge (src_unique_id, dst_unique_id, edge_type)
		 VALUES (?, ?, 'depends_on')`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare edge insert: %w", err)
	}
	defer insertEdge.Close()

	insertDoc, err := tx.Prepare(
		`INSERT INTO search_doc (doc_type, doc_id, model_unique_id, name, description, tags, schema_name, package_name, path)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare search doc insert: %w", err)
	}
	defer insertDoc.Close()

	for _, n := range nodes {
		id := n.UniqueID()

		_, err := insertModel.Exec(
			id, n.Name(), n.ResourceType(), n.PackageName(), n.Path(), n.Database(),
			n.Schema(), n.Alias(), n.Materialized(), n.Description(),
			manifest.SafeJSON(n.Tags()), manifest.SafeJSON(n.Meta()), manifest.SafeJSON(n.Config()),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to insert model %s: %w", id, err)
		}
		res.Models++

		for _, col := range n.Columns() {
			if _, err := insertColumn.Exec(id, col.Name, col.Description, manifest.SafeJSON(col.Meta)); err != nil {
				return nil, fmt.Errorf("failed to insert column %s.%s: %w", id, col.Name, err)
			}
			res.Columns++
		}

		for _, dep := range n.DependsOn() {
			r, err := insertEdge.Exec(id, dep)
			if err != nil {
				return nil, fmt.Errorf("failed to insert edge %s -> %s: %w", id, dep, err)
			}
			// INSERT OR IGNORE reports 0 rows for duplicates; only count
			// edges that actually landed.
			if affected, err := r.RowsAffected(); err == nil && affected > 0 {
				res.Edges++
			}
		}

		for _, d := range searchDocs(n) {
			if _, err := insertDoc.Exec(d.docType, d.docID, d.modelID, d.name, d.description, d.tags, d.schema, d.pkg, d.path); err != nil {
				return nil, fmt.Errorf("failed to insert search doc %s: %w", d.docID, err)
			}
			res.SearchDocs++
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit ingestion: %w", err)
	}
	return res, nil
}

type searchDoc struct {
	docType     string
	docID       string
	modelID     string
	name        string
	description *string
	tags        *string
	schema      *string
	pkg         *string
	path        *string
}

// searchDocs derives one model document plus one document per column.
// Column documents inherit the model's tags, schema, package, and path so
// a tag or grouping query can surface columns alongside their model.
func searchDocs(n manifest.Node) []searchDoc {
	id := n.UniqueID()

	var tags *string
	if joined := strings.Join(n.Tags(), " "); joined != "" {
		tags = &joined
	}

	docs := []searchDoc{{
		docType:     "model",
		docID:       id,
		modelID:     id,
		name:        n.Name(),
		description: n.Description(),
		tags:        tags,
		schema:      n.Schema(),
		pkg:         n.PackageName(),
		path:        n.Path(),
	}}

	for _, col := range n.Columns() {
		docs = append(docs, searchDoc{
			docType:     "column",
			docID:       id + "::" + col.Name,
			modelID:     id,
			name:        col.Name,
			description: col.Description,
			tags:        tags,
			schema:      n.Schema(),
			pkg:         n.PackageName(),
			path:        n.Path(),
		})
	}
	return docs
}
