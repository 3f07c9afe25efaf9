package cmd

import (
	"fmt"

	"github.com/regpulse/regpulse/internal/contract"
	"github.com/regpulse/regpulse/internal/outwriter"
	"github.com/regpulse/regpulse/internal/source"
	"github.com/regpulse/regpulse/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// sqlSetup runs the shared setup and rejects non-SQL backends.
func sqlSetup(cmd *cobra.Command, args []string) error {
	if err := sharedSetupWrapper(cmd, args); err != nil {
		return err
	}
	if _, ok := schema.SQLBackends[cfg.SourceBackend]; !ok {
		return fmt.Errorf("%s requires a SQL source backend (sqlite, mysql, postgresql), got %s", cmd.CommandPath(), cfg.SourceBackend)
	}
	return nil
}

// sourceCmd groups the SQL source management commands.
var sourceCmd = &cobra.Command{
	Use:   "source",
	Short: "Manage the SQL snapshot table",
	Long: `Manage the table that regpulse reads events from when the source backend is
sqlite, mysql or postgresql.

Regpulse never writes events. An upstream loader owns the rows; these commands
only lay down the table schema and report on its contents.

Subcommands:
  migrate - Create or upgrade the table schema
  status  - Show row counts, date coverage and schema version`,
}

// sourceMigrateCmd applies the embedded schema migrations.
var sourceMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or upgrade the snapshot table schema",
	Long: `Apply the embedded migrations to the configured database.

Examples:
  # Create the table in a local sqlite file
  regpulse source migrate --source-backend sqlite --source ./events.db

  # Roll everything back
  regpulse source migrate --source-backend sqlite --source ./events.db --target-version 0`,
	PreRunE: sqlSetup,
	Run: func(cmd *cobra.Command, _ []string) {
		target := viper.GetInt("target-version")
		result, err := source.Migrate(cfg.SourceBackend, cfg.Source, target)
		if err != nil {
			contract.LogFatal("Cannot migrate source", err)
		}
		if !result.Changed {
			cmd.Printf("✅ Source schema already at version %d\n", result.To)
			return
		}
		cmd.Printf("✅ Migrated source schema from version %d to %d\n", result.From, result.To)
	},
}

// sourceStatusCmd reports on the snapshot table.
var sourceStatusCmd = &cobra.Command{
	Use:     "status",
	Short:   "Show snapshot table statistics",
	PreRunE: sqlSetup,
	Run: func(_ *cobra.Command, _ []string) {
		src, err := source.NewSQLSource(cfg.SourceBackend, cfg.Source, cfg.SourceTable)
		if err != nil {
			contract.LogFatal("Cannot open source", err)
		}
		defer func() { _ = src.Close() }()

		status, err := src.Status(rootCtx)
		if err != nil {
			contract.LogFatal("Cannot read source status", err)
		}
		if status.Connected {
			version, dirty, err := source.SchemaVersion(cfg.SourceBackend, cfg.Source)
			if err != nil {
				contract.LogWarn("Cannot read schema version", err)
			}
			status.SchemaVersion, status.Dirty = version, dirty
		}
		if err := outwriter.NewOutWriter().WriteSourceStatus(status, cfg); err != nil {
			contract.LogFatal("Cannot write source status", err)
		}
	},
}
