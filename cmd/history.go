package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/huangsam/brewwater/internal/contract"
	"github.com/huangsam/brewwater/internal/iocache"
	"github.com/huangsam/brewwater/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// historyBackendFromConfig reads and validates the history backend settings.
// An empty backend is treated as NoneBackend.
func historyBackendFromConfig() (schema.DatabaseBackend, string, error) {
	if err := loadConfigFile(); err != nil {
		return "", "", err
	}

	backend := schema.DatabaseBackend(strings.ToLower(strings.TrimSpace(viper.GetString("history-backend"))))
	if backend == "" {
		backend = schema.NoneBackend
	}
	if _, ok := schema.ValidDatabaseBackends[backend]; !ok {
		return "", "", fmt.Errorf("invalid history backend '%s'. must be sqlite, mysql, postgresql, none", backend)
	}

	connStr := viper.GetString("history-db-connect")
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return "", "", err
	}
	return backend, connStr, nil
}

// historySetup loads minimal configuration needed for history operations.
// This is used by commands that need history access without full shared setup.
func historySetup() error {
	backend, connStr, err := historyBackendFromConfig()
	if err != nil {
		return err
	}

	if err := iocache.InitStores(backend, connStr); err != nil {
		return fmt.Errorf("failed to initialize history: %w", err)
	}

	cfg.HistoryBackend = backend
	cfg.HistoryDBConnect = connStr
	cfg.OutputFile = viper.GetString("output-file")
	return nil
}

// historySetupWrapper wraps historySetup to provide PreRunE for history commands.
func historySetupWrapper(_ *cobra.Command, _ []string) error {
	return historySetup()
}

// historyMigrateSetup loads minimal configuration needed for migrate operations.
// It does NOT open the store, so migrations can run on a fresh database.
func historyMigrateSetup(_ *cobra.Command, _ []string) error {
	backend, connStr, err := historyBackendFromConfig()
	if err != nil {
		return err
	}

	// For SQLite backend with empty connection string, use default path
	if backend == schema.SQLiteBackend && connStr == "" {
		connStr = contract.GetHistoryDBFilePath()
	}

	cfg.HistoryBackend = backend
	cfg.HistoryDBConnect = connStr
	return nil
}

// historyCmd focused on recipe history management.
//
// Note: history subcommands use minimal initialization (historySetup) instead of
// the full sharedSetup, so a bad preset or profile in the config does not block them.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Manage the recipe history store and exports",
	Long: `Manage the history of computed recipes.

When a history backend is set, every 'recipe' run is stored with:
- Timestamp, preset key, profile and rounding strategy
- The GH/KH target, shares and volume
- The rounded drops and the delivered Na/K milligrams

Supported backends: SQLite, MySQL, PostgreSQL, or None. History is off
unless --history-backend (or BREWWATER_HISTORY_BACKEND) is set.

Subcommands:
  status  - Show history statistics
  export  - Export recipe runs to Parquet
  clear   - Remove all recipe history
  migrate - Run database schema migrations

Examples:
  # Record recipes in the local SQLite file
  export BREWWATER_HISTORY_BACKEND=sqlite
  brewwater recipe bright-juicy
  brewwater history status`,
}

// historyStatusCmd shows history status.
var historyStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display recipe history statistics and connection details",
	Long: `Show the backend, run count, first and last run, total drops dispensed,
the most used preset and the table sizes.

Examples:
  brewwater history status --history-backend sqlite`,
	PreRunE: historySetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		store := iocache.Manager.GetHistoryStore()
		if store == nil {
			contract.LogFatal("Failed to get history status", fmt.Errorf("history store is not initialized"))
		}
		status, err := store.GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get history status", err)
		}
		iocache.PrintHistoryStatus(os.Stdout, status)
	},
}

// historyExportCmd exports recipe runs to a Parquet file.
var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export recipe history to Parquet for notebooks and BI tools",
	Long: `Export all stored recipe runs to <output-file>.recipe_runs.parquet.

Requires: --output-file parameter

Examples:
  brewwater history export --history-backend sqlite --output-file brews
  duckdb -c "SELECT preset_key, count(*) FROM read_parquet('brews.recipe_runs.parquet') GROUP BY 1"`,
	PreRunE: historySetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		runsFile, err := iocache.ExecuteHistoryExport(os.Stdout, iocache.Manager.GetHistoryStore(), cfg.OutputFile)
		if err != nil {
			contract.LogFatal("Failed to export recipe history", err)
		}
		_, _ = fmt.Fprintf(os.Stderr, "💾 Wrote Parquet to %s\n", runsFile)
	},
}

// historyClearCmd clears the recipe history.
var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all recipe history",
	Long: `Delete all stored recipe runs.

For SQLite the database file is removed. For MySQL and PostgreSQL the
history table is dropped.

WARNING: This action cannot be undone. Consider exporting data first.

Examples:
  brewwater history export --output-file backup
  brewwater history clear`,
	PreRunE: historyMigrateSetup,
	Run: func(_ *cobra.Command, _ []string) {
		var dbFilePath string
		if cfg.HistoryBackend == schema.SQLiteBackend {
			dbFilePath = cfg.HistoryDBConnect
		}
		if err := iocache.ClearHistory(cfg.HistoryBackend, dbFilePath, cfg.HistoryDBConnect); err != nil {
			contract.LogFatal("Failed to clear recipe history", err)
		}
		fmt.Println("Recipe history cleared successfully.")
	},
}

// historyMigrateCmd runs database migrations for the history store.
var historyMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage database schema versions for the recipe history store.

By default, migrates to the latest version. Use --target-version for specific versions.

Examples:
  # Migrate to latest version (default)
  brewwater history migrate --history-backend sqlite

  # Migrate to specific version
  brewwater history migrate --target-version 1

  # Rollback to initial state
  brewwater history migrate --target-version 0`,
	PreRunE: historyMigrateSetup,
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		if err := iocache.MigrateHistory(cfg.HistoryBackend, cfg.HistoryDBConnect, targetVersion); err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
	},
}
