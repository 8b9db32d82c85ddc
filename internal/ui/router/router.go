// Package router sets up HTTP routes for the API server.
package router

import (
	"github.com/go-chi/chi/v5"

	"github.com/dbtui-dev/dbtui/internal/store"
	lineageFeature "github.com/dbtui-dev/dbtui/internal/ui/features/lineage"
	modelsFeature "github.com/dbtui-dev/dbtui/internal/ui/features/models"
	navigationFeature "github.com/dbtui-dev/dbtui/internal/ui/features/navigation"
	searchFeature "github.com/dbtui-dev/dbtui/internal/ui/features/search"
)

// SetupRoutes configures all routes for the API server.
func SetupRoutes(router chi.Router, cache *store.Cache) error {
	if err := modelsFeature.SetupRoutes(router, cache); err != nil {
		return err
	}

	if err := lineageFeature.SetupRoutes(router, cache); err != nil {
		return err
	}

	if err := searchFeature.SetupRoutes(router, cache); err != nil {
		return err
	}

	if err := navigationFeature.SetupRoutes(router, cache); err != nil {
		return err
	}

	return nil
}
