package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/regpulse/regpulse/core"
	"github.com/regpulse/regpulse/core/feed"
	"github.com/regpulse/regpulse/core/store"
	"github.com/regpulse/regpulse/internal/contract"
	"github.com/regpulse/regpulse/internal/source"
	"github.com/regpulse/regpulse/schema"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// All linker flags will be set by goreleaser infra at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCtx is the root context for all operations.
var rootCtx = context.Background()

// cfg will hold the validated, final configuration.
var cfg = &contract.Config{}

// input holds the raw, unvalidated configuration from all sources (file, env, flags).
// Viper will unmarshal into this struct.
var input = &contract.ConfigRawInput{}

// rootCmd is the command-line entrypoint for all other commands.
var rootCmd = &cobra.Command{
	Use:   "regpulse",
	Short: "Track marketing-event registrations against quarterly goals.",
	Long: `Regpulse turns a feed of event registration records into goal attainment,
quarter-end forecasts, a product ranking and plain-language insights.`,
	Version:            version,
	SilenceErrors:      true,
	SilenceUsage:       true,
	DisableSuggestions: true,
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	// Check if a specific config file is provided
	if configFile := viper.GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.SetConfigName(".regpulse")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME")
	}

	viper.SetEnvPrefix("REGPULSE")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("source-backend", schema.HTTPSource)
	viper.SetDefault("source-table", contract.DefaultSourceTable)
	viper.SetDefault("poll-interval", schema.DefaultPollInterval.String())
	viper.SetDefault("precision", contract.DefaultPrecision)
	viper.SetDefault("output", schema.TextOut)
	viper.SetDefault("color", "yes")
	viper.SetDefault("log-level", contract.DefaultLogLevel)
	viper.SetDefault("addr", contract.DefaultAddr)
}

// readConfig merges defaults, file, env and flags and unmarshals them into input.
func readConfig() error {
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found, which is fine; we'll use defaults/env/flags.
	}
	if err := viper.Unmarshal(input); err != nil {
		return fmt.Errorf("unable to unmarshal config: %w", err)
	}
	return nil
}

// sharedSetup unmarshals config and runs validation.
func sharedSetup(_ context.Context, _ *cobra.Command, _ []string) error {
	if err := readConfig(); err != nil {
		return err
	}
	return contract.ProcessAndValidate(cfg, input)
}

// sharedSetupWrapper wraps sharedSetup to provide context for Cobra's PreRunE.
func sharedSetupWrapper(cmd *cobra.Command, args []string) error {
	return sharedSetup(rootCtx, cmd, args)
}

// offlineSetup validates everything but the snapshot source, for commands that never fetch.
func offlineSetup(_ *cobra.Command, _ []string) error {
	if err := readConfig(); err != nil {
		return err
	}
	return contract.ProcessOffline(cfg, input)
}

// newLogger builds the process logger on stderr so stdout stays clean for reports.
func newLogger() zerolog.Logger {
	logger, err := contract.NewLogger(cfg.LogLevel, os.Stderr)
	if err != nil {
		contract.LogFatal("Cannot configure logging", err)
	}
	return logger
}

// loadEngine performs a single sync against the configured source and returns an
// engine over the resulting snapshot. The sync error is returned next to a usable
// engine so that callers can still report the error state.
func loadEngine(ctx context.Context) (*core.Engine, error) {
	src, closeSrc, err := source.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open source: %w", err)
	}
	defer closeSrc()

	st := store.New(src.Describe())
	st.Select(cfg.Selection)
	ctrl := feed.New(src, st, feed.WithLogger(newLogger()))
	defer ctrl.Close()

	syncErr := ctrl.Sync(ctx)
	return core.NewEngine(st, cfg.Goals, cfg.Clock()), syncErr
}

// mustLoadEngine is loadEngine for report commands, which have nothing to show
// without data.
func mustLoadEngine() *core.Engine {
	engine, err := loadEngine(rootCtx)
	if err != nil {
		contract.LogFatal("Cannot load registration data", err)
	}
	return engine
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
