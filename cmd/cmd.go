// Package cmd defines the command-line interface for regpulse.
package cmd

import (
	"github.com/regpulse/regpulse/internal/contract"
	"github.com/regpulse/regpulse/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(eventsCmd)
	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(goalsCmd)
	rootCmd.AddCommand(rankingCmd)
	rootCmd.AddCommand(insightsCmd)
	rootCmd.AddCommand(metricsCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(sourceCmd)
	rootCmd.AddCommand(versionCmd)

	// Add the source subcommands to the parent source command
	sourceCmd.AddCommand(sourceMigrateCmd)
	sourceCmd.AddCommand(sourceStatusCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().StringP("source", "s", "", "Feed URL, file path or database connection string")
	rootCmd.PersistentFlags().String("source-backend", string(schema.HTTPSource), "Source backend: http or file or sqlite or mysql or postgresql")
	rootCmd.PersistentFlags().String("source-table", contract.DefaultSourceTable, "Table to read events from for SQL backends")
	rootCmd.PersistentFlags().String("fetch-timeout", "", "Timeout for one fetch, e.g. 30s (empty = none)")
	rootCmd.PersistentFlags().String("poll-interval", schema.DefaultPollInterval.String(), "How often serve and mcp re-fetch the feed")
	rootCmd.PersistentFlags().StringP("product", "p", "", "Restrict to one product (default All)")
	rootCmd.PersistentFlags().StringP("quarter", "q", "", "Restrict to one quarter label, e.g. 'Q1 2026' (default All)")
	rootCmd.PersistentFlags().String("now", "", "Treat this date as today (RFC3339 or YYYY-MM-DD)")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("log-level", contract.DefaultLogLevel, "Log level: debug or info or warn or error")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of eventsCmd to Viper
	eventsCmd.Flags().String("sort", string(schema.ColumnDate), "Column to sort by")
	eventsCmd.Flags().String("dir", string(schema.Descending), "Sort direction: asc or desc")
	eventsCmd.Flags().Bool("check", false, "Report events that break a record identity instead of listing them")
	if err := viper.BindPFlags(eventsCmd.Flags()); err != nil {
		contract.LogFatal("Error binding events flags", err)
	}

	// Bind all flags of serveCmd to Viper
	serveCmd.Flags().String("addr", contract.DefaultAddr, "Address to listen on")
	if err := viper.BindPFlags(serveCmd.Flags()); err != nil {
		contract.LogFatal("Error binding serve flags", err)
	}

	// Bind all flags of sourceMigrateCmd to Viper
	sourceMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(sourceMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding source migrate flags", err)
	}
}
