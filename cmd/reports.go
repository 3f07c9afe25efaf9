package cmd

import (
	"github.com/regpulse/regpulse/core/listing"
	"github.com/regpulse/regpulse/internal/contract"
	"github.com/regpulse/regpulse/internal/outwriter"
	"github.com/spf13/cobra"
)

// statusCmd reports whether the feed can be read and how fresh it is.
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Fetch the feed once and show its sync status",
	Long: `Fetch the configured source once and report the resulting sync state:
status (live, stale or error), last update, event count and the last error.

A failed fetch is reported, not fatal, so this command doubles as a feed probe.

Examples:
  # Probe the production feed
  regpulse status --source https://example.com/registrations.json

  # Probe a local export
  regpulse status --source-backend file --source ./events.json`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		engine, err := loadEngine(rootCtx)
		if engine == nil {
			contract.LogFatal("Cannot open source", err)
		}
		if err := outwriter.NewOutWriter().WriteStatus(engine.Status(), cfg); err != nil {
			contract.LogFatal("Cannot write status", err)
		}
	},
}

// eventsCmd lists individual event records.
var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "List event records, sorted and filtered",
	Long: `List the individual event records in the current selection.

Sort by any column with --sort and --dir. With --check, report the events that
break a record identity (reg = icpR + nicpR, att = icpA + nicpA, dR + pR <= reg),
quarter labels that do not resolve and products outside the enumeration.

Examples:
  # Largest events of one product first
  regpulse events --product TD --sort reg --dir desc

  # Validate a feed before publishing it
  regpulse events --check --source-backend file --source ./events.json`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		engine := mustLoadEngine()
		ow := outwriter.NewOutWriter()
		if cfg.Check {
			if err := ow.WriteCheck(engine.Check(cfg.Selection), cfg); err != nil {
				contract.LogFatal("Cannot write check", err)
			}
			return
		}
		state := listing.SortState{Column: cfg.SortColumn, Direction: cfg.SortDirection}
		if err := ow.WriteEvents(engine.SortedEvents(cfg.Selection, state), cfg); err != nil {
			contract.LogFatal("Cannot write events", err)
		}
	},
}

// summaryCmd shows totals and the per-product and per-quarter aggregates.
var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show registration totals by product and quarter",
	Long: `Show total registrations, attendees, ICP mix and conversion for the selection,
followed by the per-product and per-quarter breakdown.

Examples:
  regpulse summary
  regpulse summary --quarter "Q1 2026" --output csv`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		engine := mustLoadEngine()
		if err := outwriter.NewOutWriter().WriteSummary(engine.Summary(cfg.Selection), cfg); err != nil {
			contract.LogFatal("Cannot write summary", err)
		}
	},
}

// goalsCmd shows quarter-end projections against goals.
var goalsCmd = &cobra.Command{
	Use:   "goals",
	Short: "Project quarter-end registrations against goals",
	Long: `Project every product and quarter in the selection to quarter end using its
run rate so far, and compare the projection with the goal.

Completed quarters report their actual total. Goals come from the goals block of
.regpulse.yaml, falling back to the built-in table.

Examples:
  regpulse goals --quarter "Q1 2026"
  regpulse goals --now 2026-02-15 --output json`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		engine := mustLoadEngine()
		cards, bars := engine.GoalCards(cfg.Selection), engine.GoalBars(cfg.Selection)
		if err := outwriter.NewOutWriter().WriteGoals(cards, bars, cfg); err != nil {
			contract.LogFatal("Cannot write goals", err)
		}
	},
}

// rankingCmd ranks products by composite score.
var rankingCmd = &cobra.Command{
	Use:   "ranking",
	Short: "Rank products by composite performance score",
	Long: `Rank the products in the selection by a weighted composite of goal attainment,
ICP attainment, conversion, ICP ratio, ICP conversion and average event size.

Run 'regpulse metrics' to see the exact weights.`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		engine := mustLoadEngine()
		if err := outwriter.NewOutWriter().WriteRanking(engine.Ranking(cfg.Selection), cfg); err != nil {
			contract.LogFatal("Cannot write ranking", err)
		}
	},
}

// insightsCmd lists concerns and positives.
var insightsCmd = &cobra.Command{
	Use:   "insights",
	Short: "List concerns and positives for the selection",
	Long: `Evaluate the insight rules for every product and quarter in the selection and
list the concerns (most recent quarter and most severe first) and the positives.`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		engine := mustLoadEngine()
		if err := outwriter.NewOutWriter().WriteInsights(engine.Insights(cfg.Selection), cfg); err != nil {
			contract.LogFatal("Cannot write insights", err)
		}
	},
}
