// Package cmd defines the command-line interface for dora.
package cmd

import (
	"github.com/aeswibon/dora/internal/contract"
	"github.com/aeswibon/dora/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(computeCmd)
	rootCmd.AddCommand(reposCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(scoresCmd)

	// Add the scores subcommands to the parent scores command
	scoresCmd.AddCommand(scoresClearCmd)
	scoresCmd.AddCommand(scoresStatusCmd)
	scoresCmd.AddCommand(scoresExportCmd)
	scoresCmd.AddCommand(scoresMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().StringP("repo", "r", "", "Restrict computation to a single repository")
	rootCmd.PersistentFlags().String("start", "", "Start date (YYYY-MM-DD or RFC3339)")
	rootCmd.PersistentFlags().String("end", "", "End date (YYYY-MM-DD or RFC3339)")
	rootCmd.PersistentFlags().StringP("granularity", "g", string(schema.DayGranularity), "Window granularity: day or week or month")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("backend", string(schema.SQLiteBackend), "Storage backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of scoresMigrateCmd to Viper
	scoresMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(scoresMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding scores migrate flags", err)
	}
}
