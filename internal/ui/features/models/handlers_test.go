package models

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

func setupTestHandlers(t *testing.T, models ...features.TestModel) *Handlers {
	t.Helper()
	fixture := features.SetupTestFixture(t, models...)
	return NewHandlers(fixture.Cache)
}

func jaffleModels() []features.TestModel {
	return []features.TestModel{
		{
			UniqueID:     "model.jaffle.stg_orders",
			Name:         "stg_orders",
			Schema:       "staging",
			Package:      "jaffle",
			Materialized: "view",
			Tags:         []string{"staging"},
		},
		{
			UniqueID:     "model.jaffle.orders",
			Name:         "orders",
			Schema:       "marts",
			Package:      "jaffle",
			Description:  "All orders",
			Materialized: "table",
			Columns:      map[string]string{"order_id": "Primary key", "status": ""},
			DependsOn:    []string{"model.jaffle.stg_orders"},
		},
	}
}

func TestList(t *testing.T) {
	h := setupTestHandlers(t, jaffleModels()...)

	req := httptest.NewRequest(http.MethodGet, "/api/models", nil)
	rec := httptest.NewRecorder()
	h.List(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var page store.ModelPage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Equal(t, 2, page.Total)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "orders", page.Items[0].Name, "listing should be ordered by name")
	assert.Contains(t, page.Facets.Schemas, "staging")
	assert.Contains(t, page.Facets.Tags, "staging")
}

func TestList_Pagination(t *testing.T) {
	h := setupTestHandlers(t, jaffleModels()...)

	req := httptest.NewRequest(http.MethodGet, "/api/models?limit=1&offset=1", nil)
	rec := httptest.NewRecorder()
	h.List(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var page store.ModelPage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Equal(t, 2, page.Total)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "stg_orders", page.Items[0].Name)
}

func TestList_MalformedLimitFallsBack(t *testing.T) {
	h := setupTestHandlers(t, jaffleModels()...)

	req := httptest.NewRequest(http.MethodGet, "/api/models?limit=banana", nil)
	rec := httptest.NewRecorder()
	h.List(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var page store.ModelPage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Len(t, page.Items, 2)
}

func TestList_MissingStore(t *testing.T) {
	h := NewHandlers(store.NewCache(t.TempDir() + "/absent.sqlite"))

	req := httptest.NewRequest(http.MethodGet, "/api/models", nil)
	rec := httptest.NewRecorder()
	h.List(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body["error"], "run a build first")
}

func TestDetail(t *testing.T) {
	h := setupTestHandlers(t, jaffleModels()...)

	req := httptest.NewRequest(http.MethodGet, "/api/models/model.jaffle.orders", nil)
	req = features.RequestWithPathParam(req, "id", "model.jaffle.orders")
	rec := httptest.NewRecorder()
	h.Detail(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var d store.ModelDetail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &d))
	assert.Equal(t, "orders", d.Name)
	assert.Equal(t, "table", d.Materialization)
	assert.Equal(t, "All orders", d.Description)
	require.Len(t, d.Columns, 2)
	assert.Equal(t, "order_id", d.Columns[0].Name)
}

func TestDetail_NotFound(t *testing.T) {
	h := setupTestHandlers(t, jaffleModels()...)

	req := httptest.NewRequest(http.MethodGet, "/api/models/model.jaffle.ghost", nil)
	req = features.RequestWithPathParam(req, "id", "model.jaffle.ghost")
	rec := httptest.NewRecorder()
	h.Detail(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "model not found", body["error"])
}
