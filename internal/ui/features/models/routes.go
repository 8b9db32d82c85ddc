package models

import (
	"github.com/go-chi/chi/v5"

	"github.com/dbtui-dev/dbtui/internal/store"
)

// SetupRoutes registers the models feature routes.
func SetupRoutes(router chi.Router, cache *store.Cache) error {
	handlers := NewHandlers(cache)

	router.Route("/api/models", func(r chi.Router) {
		r.Get("/", handlers.List)
		r.Get("/{id}", handlers.Detail)
	})

	return nil
}
