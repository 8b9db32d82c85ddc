// Package models provides the model listing and detail API.
package models

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dbtui-dev/dbtui/internal/store"
	"github.com/dbtui-dev/dbtui/internal/ui/features/common"
)

// Handlers provides HTTP handlers for the models feature.
type Handlers struct {
	cache *store.Cache
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(cache *store.Cache) *Handlers {
	return &Handlers{cache: cache}
}

// List returns one page of models with the global facets.
func (h *Handlers) List(w http.ResponseWriter, r *http.Request) {
	st, err := h.cache.Store()
	if err != nil {
		slog.Error("store unavailable", "error", err)
		common.WriteError(w, http.StatusServiceUnavailable, "catalog store unavailable; run a build first")
		return
	}

	limit := common.QueryInt(r, "limit", store.DefaultListLimit)
	offset := common.QueryInt(r, "offset", 0)

	page, err := st.ListModels(limit, offset)
	if err != nil {
		slog.Error("failed to list models", "error", err)
		common.WriteError(w, http.StatusInternalServerError, "failed to list models")
		return
	}
	common.WriteJSON(w, http.StatusOK, page)
}

// Detail returns the full record for one model.
func (h *Handlers) Detail(w http.ResponseWriter, r *http.Request) {
	st, err := h.cache.Store()
	if err != nil {
		slog.Error("store unavailable", "error", err)
		common.WriteError(w, http.StatusServiceUnavailable, "catalog store unavailable; run a build first")
		return
	}

	id := chi.URLParam(r, "id")
	detail, err := st.GetModel(id)
	if errors.Is(err, store.ErrNotFound) {
		common.WriteError(w, http.StatusNotFound, "model not found")
		return
	}
	if err != nil {
		slog.Error("failed to get model", "id", id, "error", err)
		common.WriteError(w, http.StatusInternalServerError, "failed to get model")
		return
	}
	common.WriteJSON(w, http.StatusOK, detail)
}
