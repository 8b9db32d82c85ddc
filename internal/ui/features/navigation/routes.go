package navigation

import (
	"github.com/go-chi/chi/v5"

	"github.com/dbtui-dev/dbtui/internal/store"
)

// SetupRoutes registers the navigation feature routes.
func SetupRoutes(router chi.Router, cache *store.Cache) error {
	handlers := NewHandlers(cache)

	router.Get("/api/nav/database", handlers.DatabaseTree)
	router.Get("/api/db", handlers.Health)

	return nil
}
