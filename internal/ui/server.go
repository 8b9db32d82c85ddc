// Package ui provides the catalog API server.
package ui

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/dbtui-dev/dbtui/internal/ingest"
	"github.com/dbtui-dev/dbtui/internal/store"
	"github.com/dbtui-dev/dbtui/internal/ui/router"
)

// Server is the catalog API server.
type Server struct {
	cache        *store.Cache
	manifestPath string
	port         int
	watch        bool
	logger       *slog.Logger
}

// Config holds configuration for the API server.
type Config struct {
	Cache        *store.Cache
	ManifestPath string
	Port         int
	Watch        bool
	Logger       *slog.Logger
}

// NewServer creates a new API server instance.
func NewServer(cfg Config) *Server {
	return &Server{
		cache:        cfg.Cache,
		manifestPath: cfg.ManifestPath,
		port:         cfg.Port,
		watch:        cfg.Watch,
		logger:       cfg.Logger,
	}
}

// Serve starts the API server and blocks until the context is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.port)
	s.logger.Info("starting API server", "addr", fmt.Sprintf("http://localhost:%d", s.port))

	eg, egctx := errgroup.WithContext(ctx)

	r := chi.NewMux()
	r.Use(
		middleware.Logger,
		middleware.Recoverer,
		middleware.Compress(5),
	)

	if err := router.SetupRoutes(r, s.cache); err != nil {
		return fmt.Errorf("failed to setup routes: %w", err)
	}

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	if s.watch {
		eg.Go(func() error {
			return s.watchManifest(egctx)
		})
	}

	eg.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown
	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Debug("shutting down API server...")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

// watchManifest rebuilds the catalog whenever the manifest file changes.
// The parent directory is watched rather than the file itself: dbt writes
// the manifest with a rename, which drops a watch placed on the path.
func (s *Server) watchManifest(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	dir := filepath.Dir(s.manifestPath)
	if err := watcher.Add(dir); err != nil {
		s.logger.Error("failed to watch manifest directory", "dir", dir, "error", err)
		// Don't fail - continue without watching
		return nil
	}
	s.logger.Info("watching manifest for changes", "path", s.manifestPath)

	var debounceTimer *time.Timer

	for {
		select {
		case <-ctx.Done():
			return nil

		case event := <-watcher.Events:
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if filepath.Base(event.Name) != filepath.Base(s.manifestPath) {
				continue
			}

			// Debounce
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(250*time.Millisecond, func() {
				s.logger.Debug("manifest changed, rebuilding", "file", event.Name)
				s.rebuild()
			})

		case err := <-watcher.Errors:
			s.logger.Error("watcher error", "error", err)
		}
	}
}

// rebuild recompiles the manifest into the store and invalidates the cached
// handle so readers pick up the new contents.
func (s *Server) rebuild() {
	st := store.New()
	if err := st.Open(s.cache.Path()); err != nil {
		s.logger.Error("rebuild failed to open store", "error", err)
		return
	}
	defer func() { _ = st.Close() }()

	if err := st.Migrate(); err != nil {
		s.logger.Error("rebuild failed to migrate store", "error", err)
		return
	}

	res, err := ingest.Build(s.manifestPath, st)
	if err != nil {
		s.logger.Error("rebuild failed", "error", err)
		return
	}

	s.cache.Invalidate()
	s.logger.Info("catalog rebuilt",
		"models", res.Models,
		"columns", res.Columns,
		"edges", res.Edges,
		"search_docs", res.SearchDocs,
	)
}
