package navigation

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbtui-dev/dbtui/internal/store"
	"github.com/dbtui-dev/dbtui/internal/ui/features"
)

func TestDatabaseTree(t *testing.T) {
	fixture := features.SetupTestFixture(t,
		features.TestModel{UniqueID: "model.p.a", Name: "a", Database: "analytics", Schema: "marts"},
		features.TestModel{UniqueID: "model.p.b", Name: "b", Database: "analytics", Schema: "staging"},
		features.TestModel{UniqueID: "model.p.c", Name: "c"},
	)
	h := NewHandlers(fixture.Cache)

	req := httptest.NewRequest(http.MethodGet, "/api/nav/database", nil)
	rec := httptest.NewRecorder()
	h.DatabaseTree(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var tree Tree
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tree))
	require.Len(t, tree.Databases, 2)

	byName := map[string][]store.SchemaGroup{}
	for _, db := range tree.Databases {
		byName[db.Name] = db.Schemas
	}
	assert.Len(t, byName["analytics"], 2)
	require.Len(t, byName["default"], 1)
	assert.Equal(t, "public", byName["default"][0].Name)
}

func TestHealth(t *testing.T) {
	fixture := features.SetupTestFixture(t,
		features.TestModel{UniqueID: "model.p.a", Name: "a"},
	)
	h := NewHandlers(fixture.Cache)

	req := httptest.NewRequest(http.MethodGet, "/api/db", nil)
	rec := httptest.NewRecorder()
	h.Health(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, fixture.StorePath, body["path"])
}

func TestHealth_MissingStore(t *testing.T) {
	h := NewHandlers(store.NewCache(t.TempDir() + "/absent.sqlite"))

	req := httptest.NewRequest(http.MethodGet, "/api/db", nil)
	rec := httptest.NewRecorder()
	h.Health(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, "health degrades, never errors")

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, false, body["ok"])
	assert.NotEmpty(t, body["error"])
}
