package parquet

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/regpulse/regpulse/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readAll[T any](t *testing.T, data []byte) []T {
	t.Helper()
	reader := parquet.NewGenericReader[T](bytes.NewReader(data))
	defer func() { _ = reader.Close() }()

	rows := make([]T, reader.NumRows())
	n, err := reader.Read(rows)
	if err != nil && err != io.EOF {
		require.NoError(t, err)
	}
	return rows[:n]
}

func TestRecordStructTags(t *testing.T) {
	tests := []struct {
		name    string
		model   any
		columns []string
	}{
		{"events", new(EventRecord), []string{"event_date", "product", "quarter", "reg", "icp_r", "nicp_r", "att", "icp_a", "nicp_a", "d_r", "p_r"}},
		{"aggregates", new(AggregateRecord), []string{"scope", "key", "events", "reg", "conversion_pct", "avg_per_event"}},
		{"goal cards", new(GoalCardRecord), []string{"product", "quarter", "actual", "goal", "projected", "shortfall", "label"}},
		{"ranking", new(RankingRecord), []string{"rank", "product", "score", "attainment_pct", "avg_per_event"}},
		{"insights", new(InsightRecord), []string{"product", "quarter", "rule", "severity", "positive", "recommendation"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := parquet.SchemaOf(tt.model)
			for _, col := range tt.columns {
				_, ok := s.Lookup(col)
				assert.True(t, ok, "column %s should exist", col)
			}
		})
	}
}

func TestWriteEvents(t *testing.T) {
	events := []schema.Event{
		{Date: time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC), Product: "TD", Quarter: "Q1 2026", Reg: 20, IcpR: 12, NicpR: 8, Att: 10, IcpA: 6, NicpA: 4, DR: 15, PR: 5},
		{Date: time.Date(2026, 1, 12, 0, 0, 0, 0, time.UTC), Product: "BOA", Quarter: "Q1 2026", Reg: 7},
	}
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, ConvertEvents(events)))

	rows := readAll[EventRecord](t, buf.Bytes())
	require.Len(t, rows, 2)
	assert.Equal(t, "TD", rows[0].Product)
	assert.Equal(t, int32(20), rows[0].Reg)
	assert.Equal(t, int32(5), rows[0].PR)
	assert.True(t, events[0].Date.Equal(rows[0].EventDate))
	assert.Equal(t, int32(7), rows[1].Reg)
}

func TestWriteInsightsNullableRecommendation(t *testing.T) {
	report := schema.InsightReport{
		Concerns:  []schema.Insight{{Product: "TD", Quarter: "Q1 2026", Rule: schema.RuleRegBehind, Severity: schema.SeverityCritical, Recommendation: "Add events."}},
		Positives: []schema.Insight{{Product: "BOA", Quarter: "Q1 2026", Rule: schema.RuleOnTrack, Severity: schema.SeverityInfo, IsPositive: true}},
	}
	records := ConvertInsights(report)
	require.Len(t, records, 2)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, records))
	rows := readAll[InsightRecord](t, buf.Bytes())
	require.Len(t, rows, 2)

	require.NotNil(t, rows[0].Recommendation)
	assert.Equal(t, "Add events.", *rows[0].Recommendation)
	assert.Equal(t, "critical", rows[0].Severity)
	assert.Nil(t, rows[1].Recommendation)
	assert.True(t, rows[1].Positive)
}

func TestConvertGoalCardsAndRanking(t *testing.T) {
	cards := ConvertGoalCards([]schema.ProjectionResult{{Product: "TD", Quarter: "Q1 2026", Actual: 100, Goal: 262, Projected: 300, ICPShortfall: 3, Label: "33% through quarter"}})
	require.Len(t, cards, 1)
	assert.Equal(t, int32(300), cards[0].Projected)
	assert.Equal(t, int32(3), cards[0].ICPShortfall)

	ranking := ConvertRanking([]schema.PerformanceScore{{Rank: 1, Product: "TD", Score: 73, Goal: 524}})
	require.Len(t, ranking, 1)
	assert.Equal(t, int32(524), ranking[0].Goal)
	assert.InDelta(t, 73.0, ranking[0].Score, 1e-9)
}

func TestConvertAggregates(t *testing.T) {
	records := ConvertAggregates("product", []schema.AggregateBucket{
		{Key: "TD", Reg: 100, Events: 2, Conversion: 50},
		{Key: "BOA", Reg: 30, Events: 1},
	})
	require.Len(t, records, 2)
	assert.Equal(t, "product", records[1].Scope)
	assert.Equal(t, "BOA", records[1].Key)
	assert.Equal(t, int32(100), records[0].Reg)
	assert.InDelta(t, 50.0, records[0].Conversion, 1e-9)
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ranking.parquet")
	require.NoError(t, WriteFile([]RankingRecord{{Rank: 1, Product: "TD", Score: 50}}, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	rows := readAll[RankingRecord](t, data)
	require.Len(t, rows, 1)
	assert.Equal(t, "TD", rows[0].Product)

	// Empty input still produces a valid file with the schema.
	empty := filepath.Join(t.TempDir(), "empty.parquet")
	require.NoError(t, WriteFile([]RankingRecord{}, empty))
	info, err := os.Stat(empty)
	require.NoError(t, err)
	assert.Positive(t, info.Size())

	assert.Error(t, WriteFile([]RankingRecord{}, filepath.Join(t.TempDir(), "missing", "x.parquet")))
}
