package search

import (
	"github.com/go-chi/chi/v5"

	"github.com/dbtui-dev/dbtui/internal/store"
)

// SetupRoutes registers the search feature routes.
func SetupRoutes(router chi.Router, cache *store.Cache) error {
	handlers := NewHandlers(cache)

	router.Get("/api/search", handlers.Search)

	return nil
}
