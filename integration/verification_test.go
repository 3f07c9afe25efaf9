//go:build basic

// Package integration contains integration tests for regpulse.
// These tests are excluded from normal test runs due to build tags.
// To run these tests: go test -tags basic ./integration
// Or with databases: go test -tags database ./integration
package integration

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/regpulse/regpulse/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const feedFixture = `{
  "updatedAt": "2026-02-01T09:30:00Z",
  "events": [
    {"date": "2026-01-08", "product": "TD",  "q": "Q1 2026", "reg": 40, "icpR": 30, "nicpR": 10, "att": 24, "icpA": 20, "nicpA": 4, "dR": 30, "pR": 10},
    {"date": "2026-01-21", "product": "BOA", "q": "Q1 2026", "reg": "25", "icpR": 10, "nicpR": 15, "att": 5, "icpA": 3, "nicpA": 2, "dR": 20, "pR": 5},
    {"date": "2025-11-12", "product": "TD",  "q": "Q4 2025", "reg": 300, "icpR": 200, "nicpR": 100, "att": 190, "icpA": 150, "nicpA": 40, "dR": 250, "pR": 50},
    {"date": "2026-01-30", "product": "VET", "q": "Q1 2026", "reg": 12, "icpR": 4, "nicpR": 5, "att": null, "dR": 12, "pR": 3}
  ]
}`

func writeFixture(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "events.json")
	require.NoError(t, os.WriteFile(path, []byte(feedFixture), 0o644))
	return path
}

func fileArgs(path string, args ...string) []string {
	return append(args, "--source-backend", "file", "--source", path, "--now", "2026-02-01")
}

// TestSummaryMatchesFixture sums the fixture by hand and compares it with the CLI.
func TestSummaryMatchesFixture(t *testing.T) {
	path := writeFixture(t)

	out, err := runRegpulse(t, fileArgs(path, "summary", "--output", "json")...)
	require.NoError(t, err)

	var summary schema.Summary
	require.NoError(t, json.Unmarshal([]byte(out), &summary))
	assert.Equal(t, schema.StatusLive, summary.Sync.Status)
	assert.Equal(t, 4, summary.Totals.Events)
	assert.Equal(t, 40+25+300+12, summary.Totals.Reg)
	assert.Equal(t, 24+5+190, summary.Totals.Att)
	require.Len(t, summary.ByProduct, 3)
	assert.Equal(t, "TD", summary.ByProduct[0].Key)
	assert.Equal(t, 1186, summary.Goal)
}

// TestGoalsCompletedQuarter checks that a finished quarter projects to its actual.
func TestGoalsCompletedQuarter(t *testing.T) {
	path := writeFixture(t)

	out, err := runRegpulse(t, fileArgs(path, "goals", "--output", "json", "--quarter", "Q4 2025")...)
	require.NoError(t, err)

	var body struct {
		Cards []schema.ProjectionResult `json:"cards"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &body))
	require.Len(t, body.Cards, 1)
	assert.True(t, body.Cards[0].Done)
	assert.Equal(t, 300, body.Cards[0].Projected)
	assert.True(t, body.Cards[0].Attained)
}

// TestEventsCheck reports the VET record, whose ICP split does not add up.
func TestEventsCheck(t *testing.T) {
	path := writeFixture(t)

	out, err := runRegpulse(t, fileArgs(path, "events", "--check", "--output", "json")...)
	require.NoError(t, err)

	var result schema.CheckResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.False(t, result.Passed)
	require.Len(t, result.FailedEvents, 1)
	assert.Equal(t, "VET", result.FailedEvents[0].Event.Product)
}

// TestStatusReportsFetchError keeps going when the feed is missing.
func TestStatusReportsFetchError(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.json")

	out, err := runRegpulse(t, fileArgs(missing, "status", "--output", "json")...)
	require.NoError(t, err)

	var state schema.SyncState
	require.NoError(t, json.Unmarshal([]byte(out), &state))
	assert.Equal(t, schema.StatusError, state.Status)
	assert.NotEmpty(t, state.Error)
}

func TestMetricsNeedsNoSource(t *testing.T) {
	out, err := runRegpulse(t, "metrics", "--output", "csv")
	require.NoError(t, err)
	assert.Contains(t, out, "kind,key,severity,weight,definition")
}
