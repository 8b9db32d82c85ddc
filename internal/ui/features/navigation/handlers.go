// Package navigation provides the sidebar tree and store health API.
package navigation

import (
	"log/slog"
	"net/http"

	"github.com/dbtui-dev/dbtui/internal/store"
	"github.com/dbtui-dev/dbtui/internal/ui/features/common"
)

// Handlers provides HTTP handlers for the navigation feature.
type Handlers struct {
	cache *store.Cache
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(cache *store.Cache) *Handlers {
	return &Handlers{cache: cache}
}

// Tree is the navigation response envelope.
type Tree struct {
	Databases []store.DatabaseGroup `json:"databases"`
}

// DatabaseTree returns models grouped by database and schema.
func (h *Handlers) DatabaseTree(w http.ResponseWriter, r *http.Request) {
	st, err := h.cache.Store()
	if err != nil {
		slog.Error("store unavailable", "error", err)
		common.WriteError(w, http.StatusServiceUnavailable, "catalog store unavailable; run a build first")
		return
	}

	tree, err := st.DatabaseTree()
	if err != nil {
		slog.Error("failed to build navigation tree", "error", err)
		common.WriteError(w, http.StatusInternalServerError, "failed to build navigation tree")
		return
	}
	common.WriteJSON(w, http.StatusOK, Tree{Databases: tree})
}

// Health reports whether the catalog store is reachable.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	st, err := h.cache.Store()
	if err != nil {
		common.WriteJSON(w, http.StatusOK, map[string]any{
			"ok":    false,
			"path":  h.cache.Path(),
			"error": err.Error(),
		})
		return
	}
	if err := st.Ping(); err != nil {
		common.WriteJSON(w, http.StatusOK, map[string]any{
			"ok":    false,
			"path":  h.cache.Path(),
			"error": err.Error(),
		})
		return
	}
	common.WriteJSON(w, http.StatusOK, map[string]any{
		"ok":   true,
		"path": h.cache.Path(),
	})
}
