// Package lineage provides the dependency graph API.
package lineage

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dbtui-dev/dbtui/internal/store"
	"github.com/dbtui-dev/dbtui/internal/ui/features/common"
)

// DefaultDepth is the traversal depth used when the caller passes none.
const DefaultDepth = 1

// Handlers provides HTTP handlers for the lineage feature.
type Handlers struct {
	cache *store.Cache
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(cache *store.Cache) *Handlers {
	return &Handlers{cache: cache}
}

// Graph returns the bounded-depth neighborhood of one model.
func (h *Handlers) Graph(w http.ResponseWriter, r *http.Request) {
	st, err := h.cache.Store()
	if err != nil {
		slog.Error("store unavailable", "error", err)
		common.WriteError(w, http.StatusServiceUnavailable, "catalog store unavailable; run a build first")
		return
	}

	id := chi.URLParam(r, "id")
	depth := common.QueryInt(r, "depth", DefaultDepth)

	lineage, err := st.Lineage(id, depth)
	if err != nil {
		slog.Error("failed to compute lineage", "id", id, "error", err)
		common.WriteError(w, http.StatusInternalServerError, "failed to compute lineage")
		return
	}
	common.WriteJSON(w, http.StatusOK, lineage)
}

// All returns the full project graph.
func (h *Handlers) All(w http.ResponseWriter, r *http.Request) {
	st, err := h.cache.Store()
	if err != nil {
		slog.Error("store unavailable", "error", err)
		common.WriteError(w, http.StatusServiceUnavailable, "catalog store unavailable; run a build first")
		return
	}

	graph, err := st.AllModelsAndEdges()
	if err != nil {
		slog.Error("failed to load full graph", "error", err)
		common.WriteError(w, http.StatusInternalServerError, "failed to load graph")
		return
	}
	common.WriteJSON(w, http.StatusOK, graph)
}
