package manifest

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "manifest.json")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write manifest: %v", err)
	}
	return path
}

func TestParse_MissingFile(t *testing.T) {
	_, err := Parse(filepath.Join(t.TempDir(), "nope.json"))
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestParse_InvalidJSON(t *testing.T) {
	path := writeManifest(t, "{not json")
	_, err := Parse(path)

	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("expected ParseError, got %v", err)
	}
	if perr.Path != path {
		t.Errorf("expected path %q in error, got %q", path, perr.Path)
	}
}

func TestParse_EmptyNodes(t *testing.T) {
	m, err := Parse(writeManifest(t, `{"nodes": {}}`))
	if err != nil {
		t.Fatalf("failed to parse: %v", err)
	}
	if len(m.ModelNodes()) != 0 {
		t.Errorf("expected no model nodes, got %d", len(m.ModelNodes()))
	}
}

func TestModelNodes_FiltersAndSorts(t *testing.T) {
	m, err := Parse(writeManifest(t, `{"nodes": {
		"model.p.b": {"unique_id": "model.p.b", "resource_type": "model", "name": "b"},
		"model.p.a": {"unique_id": "model.p.a", "resource_type": "model", "name": "a"},
		"test.p.t":  {"unique_id": "test.p.t",  "resource_type": "test",  "name": "t"},
		"seed.p.s":  {"unique_id": "seed.p.s",  "resource_type": "seed",  "name": "s"},
		"broken":    {"resource_type": "model", "name": "no_id"}
	}}`))
	if err != nil {
		t.Fatalf("failed to parse: %v", err)
	}

	nodes := m.ModelNodes()
	if len(nodes) != 2 {
		t.Fatalf("expected 2 model nodes, got %d", len(nodes))
	}
	if nodes[0].UniqueID() != "model.p.a" || nodes[1].UniqueID() != "model.p.b" {
		t.Errorf("expected nodes sorted by unique_id, got %q, %q",
			nodes[0].UniqueID(), nodes[1].UniqueID())
	}
}

func TestNode_Accessors(t *testing.T) {
	n := Node{
		"unique_id":          "model.jaffle.orders",
		"name":               "orders",
		"resource_type":      "model",
		"package_name":       "jaffle",
		"database":           "analytics",
		"schema":             "marts",
		"alias":              "orders_final",
		"description":        "All orders",
		"original_file_path": "models/marts/orders.sql",
		"path":               "marts/orders.sql",
		"config":             map[string]any{"materialized": "table"},
	}

	if got := n.UniqueID(); got != "model.jaffle.orders" {
		t.Errorf("UniqueID = %q", got)
	}
	if got := n.Name(); got != "orders" {
		t.Errorf("Name = %q", got)
	}
	if got := n.PackageName(); got == nil || *got != "jaffle" {
		t.Errorf("PackageName = %v", got)
	}
	if got := n.Path(); got == nil || *got != "models/marts/orders.sql" {
		t.Errorf("Path should prefer original_file_path, got %v", got)
	}
	if got := n.Materialized(); got == nil || *got != "table" {
		t.Errorf("Materialized = %v", got)
	}
}

func TestNode_PathFallback(t *testing.T) {
	n := Node{"path": "marts/orders.sql"}
	if got := n.Path(); got == nil || *got != "marts/orders.sql" {
		t.Errorf("Path should fall back to path field, got %v", got)
	}

	empty := Node{}
	if got := empty.Path(); got != nil {
		t.Errorf("Path on empty node should be nil, got %v", got)
	}
}

func TestNode_MissingFieldsAreNil(t *testing.T) {
	n := Node{"unique_id": "model.p.x", "name": "x"}

	if n.Description() != nil {
		t.Error("Description should be nil")
	}
	if n.Schema() != nil {
		t.Error("Schema should be nil")
	}
	if n.Materialized() != nil {
		t.Error("Materialized should be nil")
	}
}

func TestNode_TagsDropsNonStrings(t *testing.T) {
	n := Node{"tags": []any{"core", 42, "pii", nil, true}}

	tags := n.Tags()
	if len(tags) != 2 || tags[0] != "core" || tags[1] != "pii" {
		t.Errorf("expected [core pii], got %v", tags)
	}
}

func TestNode_TagsMalformed(t *testing.T) {
	for _, v := range []any{nil, "core", 7, map[string]any{}} {
		n := Node{"tags": v}
		if tags := n.Tags(); len(tags) != 0 {
			t.Errorf("tags %v: expected empty slice, got %v", v, tags)
		}
	}
}

func TestNode_ColumnsSorted(t *testing.T) {
	n := Node{"columns": map[string]any{
		"zip":    map[string]any{"description": "Zip code"},
		"amount": map[string]any{},
		"id":     "not an object",
	}}

	cols := n.Columns()
	if len(cols) != 3 {
		t.Fatalf("expected 3 columns, got %d", len(cols))
	}
	if cols[0].Name != "amount" || cols[1].Name != "id" || cols[2].Name != "zip" {
		t.Errorf("columns not sorted by name: %v", cols)
	}
	if cols[2].Description == nil || *cols[2].Description != "Zip code" {
		t.Errorf("zip description = %v", cols[2].Description)
	}
	if cols[1].Description != nil {
		t.Errorf("non-object column should have nil description")
	}
}

func TestNode_DependsOnKeepsStringsOnly(t *testing.T) {
	n := Node{"depends_on": map[string]any{
		"nodes":  []any{"model.p.a", 13, "source.p.raw"},
		"macros": []any{"macro.p.m"},
	}}

	deps := n.DependsOn()
	if len(deps) != 2 || deps[0] != "model.p.a" || deps[1] != "source.p.raw" {
		t.Errorf("expected [model.p.a source.p.raw], got %v", deps)
	}
}

func TestSafeJSON(t *testing.T) {
	if got := SafeJSON(nil); got != nil {
		t.Errorf("SafeJSON(nil) = %v", got)
	}

	if got := SafeJSON(map[string]any{"owner": "data"}); got == nil || *got != `{"owner":"data"}` {
		t.Errorf("SafeJSON(map) = %v", got)
	}

	// NaN is not representable in JSON; failures degrade to nil
	if got := SafeJSON(math.NaN()); got != nil {
		t.Errorf("SafeJSON(NaN) should be nil, got %v", got)
	}
}
