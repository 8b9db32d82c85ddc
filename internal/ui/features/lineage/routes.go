package lineage

import (
	"github.com/go-chi/chi/v5"

	"github.com/dbtui-dev/dbtui/internal/store"
)

// SetupRoutes registers the lineage feature routes.
func SetupRoutes(router chi.Router, cache *store.Cache) error {
	handlers := NewHandlers(cache)

	router.Route("/api/lineage", func(r chi.Router) {
		r.Get("/all", handlers.All)
		r.Get("/{id}", handlers.Graph)
	})

	return nil
}
