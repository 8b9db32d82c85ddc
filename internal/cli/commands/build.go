package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dbtui-dev/dbtui/internal/cli/config"
	"github.com/dbtui-dev/dbtui/internal/ingest"
	"github.com/dbtui-dev/dbtui/internal/manifest"
	"github.com/dbtui-dev/dbtui/internal/store"
)

// NewBuildCommand creates the build command.
func NewBuildCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "build",
		Short: "Compile a dbt manifest into the catalog store",
		Long: `Compile a dbt manifest.json into the SQLite catalog.

The build replaces the catalog contents in a single transaction: models,
columns, dependency edges, and search documents. Rerunning the build against
the same manifest is safe and produces identical counts.`,
		Example: `  # Build from the default target/manifest.json
  dbtui build

  # Build a specific manifest into a specific store
  dbtui build --manifest path/to/manifest.json --store catalog.sqlite`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.GetCurrentConfig()

			st := store.New()
			if err := st.Open(cfg.StorePath); err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			if err := st.Migrate(); err != nil {
				return err
			}

			res, err := ingest.Build(cfg.ManifestPath, st)
			if errors.Is(err, manifest.ErrNotFound) {
				return fmt.Errorf("%w (run 'dbt compile' or pass --manifest)", err)
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Built catalog at %s\n", cfg.StorePath)
			fmt.Fprintf(out, "  models:      %d\n", res.Models)
			fmt.Fprintf(out, "  columns:     %d\n", res.Columns)
			fmt.Fprintf(out, "  edges:       %d\n", res.Edges)
			fmt.Fprintf(out, "  search docs: %d\n", res.SearchDocs)
			return nil
		},
	}
}
