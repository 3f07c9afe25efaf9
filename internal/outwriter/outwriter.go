// Package outwriter has output and writer logic.
package outwriter

import (
	"github.com/regpulse/regpulse/internal/contract"
	"github.com/regpulse/regpulse/schema"
)

// OutWriter provides a unified interface for all output operations.
// It encapsulates the various output formats and provides a clean API for the commands.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteStatus prints the sync state of the event snapshot.
func (ow *OutWriter) WriteStatus(state schema.SyncState, cfg *contract.Config) error {
	return WriteStatusResults(state, cfg)
}

// WriteSourceStatus prints the status of a SQL snapshot table.
func (ow *OutWriter) WriteSourceStatus(status schema.SourceStatus, cfg *contract.Config) error {
	return WriteSourceStatusResults(status, cfg)
}

// WriteEvents prints the event list in the order given.
func (ow *OutWriter) WriteEvents(events []schema.Event, cfg *contract.Config) error {
	return WriteEventResults(events, cfg)
}

// WriteCheck prints the well-formedness report of a snapshot.
func (ow *OutWriter) WriteCheck(result schema.CheckResult, cfg *contract.Config) error {
	return WriteCheckResults(result, cfg)
}

// WriteSummary prints totals and the per-product and per-quarter aggregates.
func (ow *OutWriter) WriteSummary(summary schema.Summary, cfg *contract.Config) error {
	return WriteSummaryResults(summary, cfg)
}

// WriteGoals prints goal cards and goal bars.
func (ow *OutWriter) WriteGoals(cards []schema.ProjectionResult, bars []schema.GoalBar, cfg *contract.Config) error {
	return WriteGoalResults(cards, bars, cfg)
}

// WriteRanking prints the product ranking.
func (ow *OutWriter) WriteRanking(scores []schema.PerformanceScore, cfg *contract.Config) error {
	return WriteRankingResults(scores, cfg)
}

// WriteInsights prints concerns and positives.
func (ow *OutWriter) WriteInsights(report schema.InsightReport, cfg *contract.Config) error {
	return WriteInsightResults(report, cfg)
}

// WriteMetrics prints the scoring and rule definitions.
func (ow *OutWriter) WriteMetrics(model schema.MetricsRenderModel, cfg *contract.Config) error {
	return PrintMetricsDefinitions(model, cfg)
}
