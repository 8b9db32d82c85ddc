package commands

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dbtui-dev/dbtui/internal/cli/config"

	// sqlite driver for catalog queries.
	_ "modernc.org/sqlite"
)

// openCatalogReadOnly opens the catalog store in read-only mode.
func openCatalogReadOnly(path string) (*sql.DB, error) {
	return sql.Open("sqlite", path+"?mode=ro")
}

// QueryOptions holds options for the query command.
type QueryOptions struct {
	Format string
	Input  string
}

// NewQueryCommand creates the query command.
func NewQueryCommand() *cobra.Command {
	opts := &QueryOptions{}

	cmd := &cobra.Command{
		Use:   "query [SQL]",
		Short: "Query the catalog store",
		Long: `Query the catalog store directly.

Execute SQL queries against the compiled catalog to inspect models, columns,
edges, and search documents. Supports multiple output formats for scripting
and integration.

When invoked without arguments, enters interactive REPL mode.`,
		Example: `  # Execute SQL directly
  dbtui query "SELECT name, materialized FROM model LIMIT 10"

  # List available tables
  dbtui query tables

  # Show schema for a table
  dbtui query schema model

  # Search the catalog
  dbtui query search "revenue"

  # Output as JSON
  dbtui query "SELECT * FROM edge" --format json

  # Interactive mode
  dbtui query`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, args, opts)
		},
	}

	// Flags
	cmd.Flags().StringVarP(&opts.Format, "format", "f", "table", "Output format: table, json, csv, md")
	cmd.Flags().StringVarP(&opts.Input, "input", "i", "", "Read SQL from file")

	// Subcommands
	cmd.AddCommand(newQueryTablesCommand(opts))
	cmd.AddCommand(newQuerySchemaCommand(opts))
	cmd.AddCommand(newQuerySearchCommand(opts))

	return cmd
}

func runQuery(cmd *cobra.Command, args []string, opts *QueryOptions) error {
	storePath := config.GetCurrentConfig().StorePath

	if _, err := os.Stat(storePath); os.IsNotExist(err) {
		return fmt.Errorf("catalog store not found at %s (run 'dbtui build' first)", storePath)
	}

	// Determine SQL source
	var sqlQuery string

	switch {
	case len(args) > 0:
		sqlQuery = strings.Join(args, " ")
	case opts.Input != "":
		content, err := os.ReadFile(opts.Input)
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}
		sqlQuery = string(content)
	case !isTerminal(os.Stdin):
		// Read from stdin (piped input)
		content, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		sqlQuery = string(content)
	default:
		// No input, TTY detected - enter REPL mode
		return runQueryREPL(cmd, storePath, opts)
	}

	return executeAndRender(cmd.Context(), cmd, storePath, sqlQuery, opts.Format)
}

func executeAndRender(ctx context.Context, cmd *cobra.Command, storePath, sqlQuery, format string) error {
	db, err := openCatalogReadOnly(storePath)
	if err != nil {
		return fmt.Errorf("failed to open catalog: %w", err)
	}
	defer func() { _ = db.Close() }()

	rows, err := db.QueryContext(ctx, sqlQuery)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return renderResults(cmd.OutOrStdout(), rows, format)
}

// newQueryTablesCommand creates the tables subcommand.
func newQueryTablesCommand(opts *QueryOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tables",
		Short: "List all tables in the catalog store",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return listTables(cmd, config.GetCurrentConfig().StorePath, opts.Format)
		},
	}
}

// newQuerySchemaCommand creates the schema subcommand.
func newQuerySchemaCommand(opts *QueryOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "schema <table>",
		Short: "Show schema for a catalog table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return showSchema(cmd, config.GetCurrentConfig().StorePath, args[0], opts.Format)
		},
	}
}

// newQuerySearchCommand creates the search subcommand.
func newQuerySearchCommand(opts *QueryOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "search <term>",
		Short: "Search models and columns",
		Long: `Search the catalog's search documents.

Matches the term case-insensitively against model and column names,
descriptions, and tags.`,
		Example: `  dbtui query search "revenue"
  dbtui query search "customer" --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return searchCatalog(cmd, config.GetCurrentConfig().StorePath, args[0], opts.Format)
		},
	}
}

func searchCatalog(cmd *cobra.Command, storePath, term, format string) error {
	query := `
		SELECT doc_type, model_unique_id, name, description
		FROM search_doc
		WHERE LOWER(name) LIKE ? OR LOWER(description) LIKE ? OR LOWER(tags) LIKE ?
		LIMIT 50
	`
	like := "%" + strings.ToLower(term) + "%"

	db, err := openCatalogReadOnly(storePath)
	if err != nil {
		return fmt.Errorf("failed to open catalog: %w", err)
	}
	defer func() { _ = db.Close() }()

	rows, err := db.QueryContext(cmd.Context(), query, like, like, like)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return renderResults(cmd.OutOrStdout(), rows, format)
}

func isTerminal(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}
