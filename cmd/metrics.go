package cmd

import (
	"github.com/regpulse/regpulse/core/algo"
	"github.com/regpulse/regpulse/internal/contract"
	"github.com/regpulse/regpulse/internal/outwriter"
	"github.com/spf13/cobra"
)

// metricsCmd displays the formal definitions of the ranking score and insight rules.
var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Display the ranking formula, projection and insight rules",
	Long: `Show the composite score formula with its factor weights, how quarter-end
projections are computed and the threshold of every insight rule.

No data is fetched - this is purely informational.

Examples:
  # Show the definitions with the built-in goals
  regpulse metrics

  # View with the attendance ratio from a config file
  regpulse metrics --config .regpulse.yaml`,
	PreRunE: offlineSetup,
	Run: func(_ *cobra.Command, _ []string) {
		model := algo.Definitions(cfg.Goals.AttendanceRatio())
		if err := outwriter.NewOutWriter().WriteMetrics(model, cfg); err != nil {
			contract.LogFatal("Cannot display metrics", err)
		}
	},
}
