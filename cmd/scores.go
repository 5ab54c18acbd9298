package cmd

import (
	"fmt"

	"github.com/aeswibon/dora/internal/contract"
	"github.com/aeswibon/dora/internal/iostore"
	"github.com/aeswibon/dora/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// storeSetup loads minimal configuration needed for store operations.
// This is used by commands that need store access without full shared setup.
func storeSetup() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	// Get store-related config values
	backend := schema.DatabaseBackend(viper.GetString("backend"))
	connStr := viper.GetString("db-connect")

	// Basic validation for database backends
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}

	// Initialize persistence with the loaded config
	if err := iostore.InitStores(backend, connStr); err != nil {
		return fmt.Errorf("failed to initialize stores: %w", err)
	}
	if storeManager == nil {
		storeManager = iostore.Manager
	}

	cfg.Backend = backend
	cfg.DBConnect = connStr

	return nil
}

// storeSetupWrapper wraps storeSetup to provide PreRunE for store commands.
func storeSetupWrapper(_ *cobra.Command, _ []string) error {
	return storeSetup()
}

// scoresCmd focused on score store management.
//
// Note: Scores subcommands use minimal initialization (storeSetup) instead of
// the full sharedSetup used by compute commands. This avoids date-range
// validation for simple store operations.
var scoresCmd = &cobra.Command{
	Use:   "scores",
	Short: "Manage the persisted score store (the metric cache)",
	Long: `Manage the score store that holds computed DORA metrics.

Dora persists every computed window so repeated queries over the same
range never re-read the activity tables.

Supported backends: SQLite (default), MySQL, PostgreSQL, or None (no persistence)

Subcommands:
  status  - Show score store statistics and connection info
  clear   - Remove all persisted scores
  export  - Export persisted scores to a Parquet file
  migrate - Run schema migrations

Examples:
  # Check score store status
  dora scores status

  # Clear persisted scores after re-ingesting activity
  dora scores clear`,
}

// scoresClearCmd clears the persisted scores.
var scoresClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all persisted scores",
	Long: `Delete all persisted scores from the configured backend.

Use this when:
- Activity data was re-ingested or corrected
- Scores may be stale or corrupted
- Testing computation without the cache

For SQLite: Drops the scores table inside the database file
For MySQL/PostgreSQL: Drops the scores table

Examples:
  # Clear SQLite scores (default)
  dora scores clear

  # Clear MySQL scores (set connection string via env variable)
  DORA_BACKEND=mysql DORA_DB_CONNECT="..." dora scores clear`,
	PreRunE: storeSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iostore.ClearScores(cfg.Backend, cfg.DBConnect); err != nil {
			contract.LogFatal("Failed to clear scores", err)
		}
		fmt.Println("Scores cleared successfully.")
	},
}

// scoresStatusCmd shows score store status.
var scoresStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display score store statistics and connection details",
	Long: `Show detailed information about the persisted score store.

Displays:
- Backend type and connection status
- Total number of persisted score rows
- Newest and oldest computation timestamps

Examples:
  # Check score store status
  dora scores status`,
	PreRunE: storeSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		status, err := storeManager.GetScoreStore().GetStatus(rootCtx)
		if err != nil {
			contract.LogFatal("Failed to get score store status", err)
		}
		iostore.PrintStoreStatus(status)
	},
}

// scoresExportCmd exports persisted scores to Parquet.
var scoresExportCmd = &cobra.Command{
	Use:   "export <org>",
	Short: "Export persisted scores to a Parquet file",
	Long: `Export every persisted score row for an organization to a Parquet file.

The Parquet files can be used with Apache Spark, Apache Arrow,
Pandas (via pyarrow), DuckDB, and other Parquet-compatible tools.

Examples:
  # Export persisted daily scores
  dora scores export acme --granularity day --output-file acme_scores.parquet`,
	Args:    cobra.ExactArgs(1),
	PreRunE: storeSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		org := args[0]
		granularity := schema.Granularity(viper.GetString("granularity"))
		outputFile := viper.GetString("output-file")
		if err := iostore.ExecuteScoreExport(rootCtx, storeManager, org, granularity, outputFile); err != nil {
			contract.LogFatal("Failed to export scores", err)
		}
	},
}

// scoresMigrateCmd runs schema migrations for the configured backend.
var scoresMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run schema migrations for the activity and score tables",
	Long: `Apply or roll back schema migrations on the configured backend.

Use --target-version to control the migration target:
  -1 (default) migrates to the latest version
   0 rolls back all migrations
   N migrates to version N

Examples:
  # Migrate to the latest schema
  dora scores migrate

  # Roll back everything
  dora scores migrate --target-version 0`,
	Run: func(_ *cobra.Command, _ []string) {
		if err := loadConfigFile(); err != nil {
			contract.LogFatal("Failed to load config", err)
		}
		backend := schema.DatabaseBackend(viper.GetString("backend"))
		connStr := viper.GetString("db-connect")
		targetVersion := viper.GetInt("target-version")
		if err := iostore.MigrateStores(backend, connStr, targetVersion); err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
	},
}
