package outwriter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/regpulse/regpulse/internal/contract"
	"github.com/regpulse/regpulse/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var updated = time.Date(2026, 1, 30, 8, 0, 0, 0, time.UTC)

func testConfig(output schema.OutputMode) *contract.Config {
	return &contract.Config{Output: output, Precision: 1, Width: 200, UseColors: false}
}

func sampleEvents() []schema.Event {
	return []schema.Event{
		{Date: time.Date(2026, 1, 12, 0, 0, 0, 0, time.UTC), Product: "TD", Quarter: "Q1 2026", Reg: 40, IcpR: 24, NicpR: 16, Att: 20, IcpA: 16, NicpA: 4, DR: 30, PR: 10},
		{Date: time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC), Product: "BOA", Quarter: "Q1 2026", Reg: 30, IcpR: 10, NicpR: 20, Att: 6, IcpA: 2, NicpA: 4, DR: 20, PR: 10},
	}
}

func sampleReport() schema.InsightReport {
	return schema.InsightReport{
		Concerns: []schema.Insight{{
			Product: "BOA", Quarter: "Q1 2026", Rule: schema.RuleRegBehind, Severity: schema.SeverityCritical,
			Title: "BOA far behind pace", Detail: "11.5% of goal with 33% of the quarter gone.", Recommendation: "Add events.",
		}},
		Positives: []schema.Insight{{
			Product: "TD", Quarter: "Q1 2026", Rule: schema.RuleOnTrack, Severity: schema.SeverityInfo, IsPositive: true,
			Title: "TD on track", Detail: "Ahead of pace.",
		}},
	}
}

func readCSV(t *testing.T, data string) [][]string {
	t.Helper()
	records, err := csv.NewReader(strings.NewReader(data)).ReadAll()
	require.NoError(t, err)
	return records
}

func TestStatusOutput(t *testing.T) {
	state := schema.SyncState{Status: schema.StatusStale, UpdatedAt: updated, Error: "HTTP 503 from https://feed", Events: 2, Source: "https://feed"}

	var buf bytes.Buffer
	require.NoError(t, writeStatusTable(&buf, state, testConfig(schema.TextOut)))
	out := buf.String()
	assert.Contains(t, out, "stale")
	assert.Contains(t, out, "2026-01-30T08:00:00Z")
	assert.Contains(t, out, "HTTP 503 from https://feed")
	assert.NotContains(t, out, "Loading")

	buf.Reset()
	require.NoError(t, writeCSVStatus(&buf, state))
	records := readCSV(t, buf.String())
	require.Len(t, records, 2)
	assert.Equal(t, []string{"stale", "https://feed", "2", "2026-01-30T08:00:00Z", "false", "HTTP 503 from https://feed"}, records[1])
}

func TestStatusPlaceholder(t *testing.T) {
	tests := []struct {
		name     string
		state    schema.SyncState
		empty    bool
		contains string
	}{
		{"loading", schema.SyncState{Status: schema.StatusLoading}, true, "Loading registration data"},
		{"error without data", schema.SyncState{Status: schema.StatusError, Error: "boom"}, true, "Could not load data: boom"},
		{"stale with data", schema.SyncState{Status: schema.StatusStale, UpdatedAt: updated}, false, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			empty, err := writeStatusPlaceholder(&buf, tt.state)
			require.NoError(t, err)
			assert.Equal(t, tt.empty, empty)
			if tt.contains == "" {
				assert.Empty(t, buf.String())
			} else {
				assert.Contains(t, buf.String(), tt.contains)
			}
		})
	}
}

func TestSourceStatusOutput(t *testing.T) {
	status := schema.SourceStatus{Backend: "sqlite", Table: "registration_events", Connected: true, TotalRows: 4, Products: 2, Quarters: 1,
		FirstEvent: time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC), SchemaVersion: 1, Dirty: true}

	var buf bytes.Buffer
	require.NoError(t, writeSourceStatusTable(&buf, status))
	out := buf.String()
	assert.Contains(t, out, "registration_events")
	assert.Contains(t, out, "1 (dirty)")
	assert.Contains(t, out, "2026-01-05")
	assert.Contains(t, out, "never")
	assert.Equal(t, "-", dateOrDash(time.Time{}))
}

func TestEventOutput(t *testing.T) {
	events := sampleEvents()

	var buf bytes.Buffer
	require.NoError(t, writeCSVEvents(&buf, events))
	records := readCSV(t, buf.String())
	require.Len(t, records, 3)
	assert.Equal(t, eventHeader, records[0])
	assert.Equal(t, []string{"2026-01-12", "TD", "Q1 2026", "40", "24", "16", "20", "16", "4", "30", "10"}, records[1])

	buf.Reset()
	cfg := testConfig(schema.TextOut)
	cfg.SortColumn = schema.ColumnReg
	cfg.SortDirection = schema.Ascending
	require.NoError(t, writeEventTable(&buf, events, cfg))
	assert.Contains(t, buf.String(), "▲")
	assert.Contains(t, buf.String(), "Showing 2 events (registrations: 70, attendees: 26)")
}

func TestCheckOutput(t *testing.T) {
	result := schema.CheckResult{
		TotalEvents: 3,
		FailedEvents: []schema.CheckFailedEvent{
			{Index: 2, Event: schema.Event{Product: "XYZ", Quarter: "Winter"}, Issues: []string{"missing or invalid date"}},
		},
		Unresolved: []string{"Winter"},
		Unknown:    []string{"XYZ"},
	}

	var buf bytes.Buffer
	require.NoError(t, writeCheckText(&buf, result, testConfig(schema.TextOut)))
	out := buf.String()
	assert.Contains(t, out, "1 of 3 events")
	assert.Contains(t, out, "missing or invalid date")
	assert.Contains(t, out, "Unresolved quarter labels: Winter")
	assert.Contains(t, out, "Products outside the enumeration: XYZ")

	buf.Reset()
	require.NoError(t, writeCSVCheck(&buf, result))
	records := readCSV(t, buf.String())
	require.Len(t, records, 2)
	assert.Equal(t, "2", records[1][0])
	assert.Equal(t, "missing or invalid date", records[1][len(records[1])-1])

	buf.Reset()
	require.NoError(t, writeCheckText(&buf, schema.CheckResult{Passed: true, TotalEvents: 5}, testConfig(schema.TextOut)))
	assert.Contains(t, buf.String(), "All 5 events are well-formed")
}

func TestSummaryOutput(t *testing.T) {
	summary := schema.Summary{
		Selection: schema.Selection{Product: "All", Quarter: "Q1 2026"},
		Sync:      schema.SyncState{Status: schema.StatusLive, UpdatedAt: updated},
		Goal:      1186,
		Totals:    schema.AggregateBucket{Key: "All", Reg: 70, IcpR: 34, NicpR: 36, Att: 26, Events: 2, Conversion: 37.142857},
		ByProduct: []schema.AggregateBucket{{Key: "TD", Reg: 40, Events: 1}, {Key: "BOA", Reg: 30, Events: 1}},
		ByQuarter: []schema.AggregateBucket{{Key: "Q1 2026", Reg: 70, Events: 2}},
	}
	fmtFloat, _ := createFormatters(1)

	var buf bytes.Buffer
	require.NoError(t, writeSummaryText(&buf, summary, testConfig(schema.TextOut), fmtFloat))
	out := buf.String()
	assert.Contains(t, out, "All / Q1 2026")
	assert.Contains(t, out, "Registrations: 70 of 1186 goal (5.9%) across 2 events")
	assert.Contains(t, out, "conversion: 37.1%")
	assert.Contains(t, out, "By product")
	assert.Contains(t, out, "BOA")

	buf.Reset()
	require.NoError(t, writeCSVAggregates(&buf, summary, fmtFloat))
	records := readCSV(t, buf.String())
	require.Len(t, records, 5)
	assert.Equal(t, []string{"total", "All"}, records[1][:2])
	assert.Equal(t, []string{"product", "TD"}, records[2][:2])
	assert.Equal(t, []string{"quarter", "Q1 2026"}, records[4][:2])

	buf.Reset()
	summary.Sync = schema.SyncState{Status: schema.StatusLoading}
	require.NoError(t, writeSummaryText(&buf, summary, testConfig(schema.TextOut), fmtFloat))
	assert.Contains(t, buf.String(), "Loading registration data")
	assert.NotContains(t, buf.String(), "By product")
}

func TestGoalOutput(t *testing.T) {
	cards := []schema.ProjectionResult{
		{Product: "TD", Quarter: "Q1 2026", Events: 2, Actual: 100, Goal: 262, Variance: -162, Attainment: 38.2, Projected: 300, Attained: true, Label: "33% through quarter"},
		{Product: "BOA", Quarter: "Q1 2026", Events: 1, Actual: 30, Goal: 262, Variance: -232, Projected: 90, Shortfall: 172, Label: "33% through quarter"},
	}
	fmtFloat, _ := createFormatters(1)

	var buf bytes.Buffer
	require.NoError(t, writeGoalTable(&buf, cards, testConfig(schema.TextOut), fmtFloat))
	out := buf.String()
	assert.Contains(t, out, "33% through quarter")
	assert.Contains(t, out, "met")
	assert.Contains(t, out, "behind")
	assert.Contains(t, out, "1 of 2 product quarters projected to reach goal")

	buf.Reset()
	require.NoError(t, writeCSVGoals(&buf, cards, fmtFloat))
	records := readCSV(t, buf.String())
	require.Len(t, records, 3)
	assert.Equal(t, []string{"BOA", "Q1 2026", "1", "30", "262", "-232"}, records[2][:6])
	assert.Equal(t, "172", records[2][8])
}

func TestGoalJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "goals.json")
	cfg := testConfig(schema.JSONOut)
	cfg.OutputFile = path
	require.NoError(t, WriteGoalResults(nil, nil, cfg))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	var decoded map[string][]any
	require.NoError(t, json.Unmarshal(content, &decoded))
	assert.NotNil(t, decoded["cards"])
	assert.Empty(t, decoded["cards"])
	assert.NotNil(t, decoded["bars"])
}

func TestRankingOutput(t *testing.T) {
	scores := []schema.PerformanceScore{
		{Rank: 1, Product: "TD", Score: 82.4, Events: 2, Reg: 100, Goal: 262, Breakdown: map[schema.BreakdownKey]float64{
			schema.BreakdownAttainment: 11.5, schema.BreakdownConversion: 10, schema.BreakdownAvgPerEvent: 10,
		}},
		{Rank: 2, Product: "BOA", Score: 12.0},
	}
	fmtFloat, _ := createFormatters(1)

	var buf bytes.Buffer
	require.NoError(t, writeRankingTable(&buf, scores, fmtFloat))
	out := buf.String()
	assert.Contains(t, out, "Strong")
	assert.Contains(t, out, "Weak")
	assert.Contains(t, out, "attainment > conversion")
	assert.Contains(t, out, "Ranked 2 products")

	buf.Reset()
	require.NoError(t, writeJSONRanking(&buf, scores))
	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, "Strong", decoded[0]["label"])
	assert.Equal(t, float64(1), decoded[0]["rank"])

	buf.Reset()
	require.NoError(t, writeCSVRanking(&buf, scores, fmtFloat))
	records := readCSV(t, buf.String())
	assert.Equal(t, []string{"1", "TD", "82.4", "Strong"}, records[1][:4])
}

func TestFormatTopFactors(t *testing.T) {
	assert.Equal(t, "-", formatTopFactors(schema.PerformanceScore{}))
	s := schema.PerformanceScore{Breakdown: map[schema.BreakdownKey]float64{
		schema.BreakdownICPRatio: 5, schema.BreakdownConversion: 5, schema.BreakdownAttainment: 1,
	}}
	assert.Equal(t, "conversion > icp_ratio", formatTopFactors(s), "ties keep formula order")
}

func TestInsightOutput(t *testing.T) {
	report := sampleReport()

	var buf bytes.Buffer
	require.NoError(t, writeInsightText(&buf, report, testConfig(schema.TextOut)))
	out := buf.String()
	assert.Contains(t, out, "Concerns (1)")
	assert.Contains(t, out, "Positives (1)")
	assert.Contains(t, out, "critical")
	assert.Contains(t, out, "positive")
	assert.Less(t, strings.Index(out, "BOA far behind pace"), strings.Index(out, "TD on track"))

	buf.Reset()
	require.NoError(t, writeCSVInsights(&buf, report))
	records := readCSV(t, buf.String())
	require.Len(t, records, 3)
	assert.Equal(t, []string{"concern", "BOA", "Q1 2026", "reg-behind", "critical"}, records[1][:5])
	assert.Equal(t, "Add events.", records[1][7])
	assert.Equal(t, "positive", records[2][0])

	buf.Reset()
	require.NoError(t, writeInsightText(&buf, schema.InsightReport{}, testConfig(schema.TextOut)))
	assert.Contains(t, buf.String(), "No insights")

	normalized := normalizeReport(schema.InsightReport{})
	assert.NotNil(t, normalized.Concerns)
	assert.NotNil(t, normalized.Positives)
}

func TestMetricsOutput(t *testing.T) {
	model := schema.MetricsRenderModel{
		Title:       "Registration Performance Metrics",
		Description: "weighted sum",
		Formula:     "Score = 0.30*attainment",
		Factors:     []schema.MetricsFactor{{Key: schema.BreakdownAttainment, Name: "Attainment", Weight: 0.3, Meaning: "reg / goal"}},
		Projection:  "run rate",
		Rules: []schema.MetricsRule{
			{Rule: schema.RuleMissedGoal, Severity: schema.SeverityCritical, Condition: "quarter completed below goal"},
			{Rule: schema.RuleGoalHit, Severity: schema.SeverityInfo, Positive: true, Condition: "quarter completed at or above goal"},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, printMetricsText(&buf, model))
	out := buf.String()
	assert.Contains(t, out, "Registration Performance Metrics")
	assert.Contains(t, out, "Score = 0.30*attainment")
	assert.Contains(t, out, "missed-goal")

	buf.Reset()
	require.NoError(t, writeCSVMetrics(&buf, model))
	records := readCSV(t, buf.String())
	require.Len(t, records, 4)
	assert.Equal(t, []string{"factor", "attainment", "", "0.30", "reg / goal"}, records[1])
	assert.Equal(t, "positive", records[3][0])
}

func TestUnsupportedParquet(t *testing.T) {
	cfg := testConfig(schema.ParquetOut)
	cfg.OutputFile = filepath.Join(t.TempDir(), "x.parquet")
	assert.Error(t, WriteStatusResults(schema.SyncState{}, cfg))
	assert.Error(t, PrintMetricsDefinitions(schema.MetricsRenderModel{}, cfg))

	require.NoError(t, NewOutWriter().WriteInsights(sampleReport(), cfg))
	_, err := os.Stat(cfg.OutputFile)
	assert.NoError(t, err)
}
