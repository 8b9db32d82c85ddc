// Package search provides the catalog search API.
package search

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/dbtui-dev/dbtui/internal/store"
	"github.com/dbtui-dev/dbtui/internal/ui/features/common"
)

// Handlers provides HTTP handlers for the search feature.
type Handlers struct {
	cache *store.Cache
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(cache *store.Cache) *Handlers {
	return &Handlers{cache: cache}
}

// Results is the search response envelope.
type Results struct {
	Results []store.SearchResult `json:"results"`
}

// Search matches the q parameter against model and column documents. A
// blank or whitespace-only query returns an empty result set without
// opening the store.
func (h *Handlers) Search(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		common.WriteJSON(w, http.StatusOK, Results{Results: []store.SearchResult{}})
		return
	}

	st, err := h.cache.Store()
	if err != nil {
		slog.Error("store unavailable", "error", err)
		common.WriteError(w, http.StatusServiceUnavailable, "catalog store unavailable; run a build first")
		return
	}

	results, err := st.Search(q, store.DefaultSearchLimit)
	if err != nil {
		slog.Error("search failed", "query", q, "error", err)
		common.WriteError(w, http.StatusInternalServerError, "search failed")
		return
	}
	common.WriteJSON(w, http.StatusOK, Results{Results: results})
}
