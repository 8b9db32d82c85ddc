// Package features provides shared test utilities for API feature tests.
package features

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/dbtui-dev/dbtui/internal/ingest"
	"github.com/dbtui-dev/dbtui/internal/store"
)

// TestModel is a helper to create manifest model nodes with minimal
// boilerplate.
type TestModel struct {
	UniqueID     string
	Name         string
	Schema       string
	Database     string
	Package      string
	Description  string
	Materialized string
	Tags         []string
	Columns      map[string]string // name -> description
	DependsOn    []string
}

// TestFixture holds the dependencies needed for API handler tests.
type TestFixture struct {
	Cache     *store.Cache
	StorePath string
}

// SetupTestFixture compiles the given models into a catalog store in a temp
// directory and returns a handle cache over it.
func SetupTestFixture(t *testing.T, models ...TestModel) *TestFixture {
	t.Helper()

	tmpDir := t.TempDir()
	manifestPath := filepath.Join(tmpDir, "manifest.json")
	storePath := filepath.Join(tmpDir, "catalog.sqlite")

	require.NoError(t, os.WriteFile(manifestPath, buildManifest(t, models), 0o600))

	st := store.New()
	require.NoError(t, st.Open(storePath))
	require.NoError(t, st.Migrate())
	_, err := ingest.Build(manifestPath, st)
	require.NoError(t, err)
	require.NoError(t, st.Close())

	cache := store.NewCache(storePath)
	t.Cleanup(func() { _ = cache.Close() })

	return &TestFixture{Cache: cache, StorePath: storePath}
}

func buildManifest(t *testing.T, models []TestModel) []byte {
	t.Helper()

	nodes := map[string]any{}
	for _, m := range models {
		node := map[string]any{
			"unique_id":     m.UniqueID,
			"name":          m.Name,
			"resource_type": "model",
		}
		if m.Schema != "" {
			node["schema"] = m.Schema
		}
		if m.Database != "" {
			node["database"] = m.Database
		}
		if m.Package != "" {
			node["package_name"] = m.Package
		}
		if m.Description != "" {
			node["description"] = m.Description
		}
		if m.Materialized != "" {
			node["config"] = map[string]any{"materialized": m.Materialized}
		}
		if len(m.Tags) > 0 {
			tags := make([]any, len(m.Tags))
			for i, tag := range m.Tags {
				tags[i] = tag
			}
			node["tags"] = tags
		}
		if len(m.Columns) > 0 {
			cols := map[string]any{}
			for name, desc := range m.Columns {
				col := map[string]any{}
				if desc != "" {
					col["description"] = desc
				}
				cols[name] = col
			}
			node["columns"] = cols
		}
		if len(m.DependsOn) > 0 {
			deps := make([]any, len(m.DependsOn))
			for i, d := range m.DependsOn {
				deps[i] = d
			}
			node["depends_on"] = map[string]any{"nodes": deps}
		}
		nodes[m.UniqueID] = node
	}

	data, err := json.Marshal(map[string]any{"nodes": nodes})
	require.NoError(t, err)
	return data
}

// RequestWithPathParam attaches a chi URL parameter to the request context,
// for testing handlers outside a router.
func RequestWithPathParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}
