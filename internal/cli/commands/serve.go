package commands

import (
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dbtui-dev/dbtui/internal/cli/config"
	"github.com/dbtui-dev/dbtui/internal/store"
	"github.com/dbtui-dev/dbtui/internal/ui"
)

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	var (
		port  int
		watch bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the catalog over a JSON API",
		Long: `Serve models, lineage, search, and navigation from the catalog store.

The store is reopened automatically when its file changes, so running
'dbtui build' against a live server is safe. With --watch the manifest
itself is watched and rebuilt into the store on change.`,
		Example: `  # Serve the default catalog on port 8080
  dbtui serve

  # Rebuild automatically when dbt recompiles the manifest
  dbtui serve --watch`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.GetCurrentConfig()
			if cmd.Flags().Changed("port") {
				cfg.Port = port
			}

			cache := store.NewCache(cfg.StorePath)
			defer func() { _ = cache.Close() }()

			srv := ui.NewServer(ui.Config{
				Cache:        cache,
				ManifestPath: cfg.ManifestPath,
				Port:         cfg.Port,
				Watch:        watch,
				Logger:       slog.Default(),
			})

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if err := srv.Serve(ctx); err != nil && ctx.Err() == nil {
				return err
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", config.DefaultPort, "Port to listen on")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Rebuild the catalog when the manifest changes")

	return cmd
}
