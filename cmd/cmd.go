// Package cmd defines the command-line interface for brewwater.
package cmd

import (
	"github.com/huangsam/brewwater/internal/contract"
	"github.com/huangsam/brewwater/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(recipeCmd)
	rootCmd.AddCommand(presetsCmd)
	rootCmd.AddCommand(profilesCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(versionCmd)

	// Add the history subcommands to the parent history command
	historyCmd.AddCommand(historyStatusCmd)
	historyCmd.AddCommand(historyExportCmd)
	historyCmd.AddCommand(historyClearCmd)
	historyCmd.AddCommand(historyMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("profile", schema.StandardProfile, "Concentrate profile: standard or compact or one from the config file")
	rootCmd.PersistentFlags().String("rounding", string(schema.IndependentRounding), "Rounding strategy: independent or balanced")
	rootCmd.PersistentFlags().Float64("volume", schema.DefaultVolumeMl, "Water volume in mL")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("history-backend", "", "Recipe history backend: sqlite or mysql or postgresql or none (empty = disabled)")
	rootCmd.PersistentFlags().String("history-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("pprof", "", "Enable profiling and write profiles to files with this prefix")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of recipeCmd to Viper
	recipeCmd.Flags().Float64("gh", schema.CustomBuildDefaults.GeneralHardness, "General hardness in ppm")
	recipeCmd.Flags().Float64("kh", schema.CustomBuildDefaults.CarbonateHardness, "Carbonate hardness in ppm")
	recipeCmd.Flags().Float64("mg-share", schema.CustomBuildDefaults.MagnesiumPct, "Percent of GH from magnesium (the rest is calcium)")
	recipeCmd.Flags().Float64("k-share", schema.CustomBuildDefaults.PotassiumPct, "Percent of KH from potassium bicarbonate (the rest is sodium bicarbonate)")
	recipeCmd.Flags().Bool("effects", false, "Print the taste effect of each mineral")
	recipeCmd.Flags().Bool("no-history", false, "Do not record this recipe in the history store")
	if err := viper.BindPFlags(recipeCmd.Flags()); err != nil {
		contract.LogFatal("Error binding recipe flags", err)
	}

	// Bind all flags of historyMigrateCmd to Viper
	historyMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(historyMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding history migrate flags", err)
	}
}
