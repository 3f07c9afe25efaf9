package algo

import (
	"testing"

	"github.com/regpulse/regpulse/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompositeScore(t *testing.T) {
	tests := []struct {
		name     string
		in       ScoreInputs
		expected float64
	}{
		{"zero inputs", ScoreInputs{}, 0},
		{"formula", ScoreInputs{Attainment: 100, ICPAttainment: 100, Conversion: 50, ICPRatio: 60, ICPConversion: 40, AvgPerEvent: 25}, 73},
		{"uncapped attainment", ScoreInputs{Attainment: 200}, 60},
		{"avg per event at reference", ScoreInputs{AvgPerEvent: 50}, 10},
		{"avg per event capped", ScoreInputs{AvgPerEvent: 5000}, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, breakdown := CompositeScore(tt.in)
			assert.InDelta(t, tt.expected, score, 1e-9)
			assert.Len(t, breakdown, len(schema.AllBreakdownKeys))
		})
	}
}

// TestCompositeScorePure checks identical inputs give identical scores and that the
// average-per-event term stops moving past its cap.
func TestCompositeScorePure(t *testing.T) {
	in := ScoreInputs{Attainment: 38.2, ICPAttainment: 32.8, Conversion: 50, ICPRatio: 60, ICPConversion: 66.7, AvgPerEvent: 20}
	a, _ := CompositeScore(in)
	b, _ := CompositeScore(in)
	assert.Equal(t, a, b)

	base := in
	base.AvgPerEvent = 50
	capped, _ := CompositeScore(base)
	for _, avg := range []float64{51, 80, 1000} {
		base.AvgPerEvent = avg
		score, breakdown := CompositeScore(base)
		assert.Equal(t, capped, score)
		assert.Equal(t, 10.0, breakdown[schema.BreakdownAvgPerEvent])
	}
}

func TestRankStableTies(t *testing.T) {
	scores := []schema.PerformanceScore{
		{Product: "TD", Score: 40},
		{Product: "BOA", Score: 55},
		{Product: "VET", Score: 40},
		{Product: "LAW", Score: 40},
	}
	ranked := Rank(scores)
	require.Len(t, ranked, 4)
	assert.Equal(t, []string{"BOA", "TD", "VET", "LAW"}, products(ranked))
	for i, r := range ranked {
		assert.Equal(t, i+1, r.Rank)
	}
	assert.Zero(t, scores[0].Rank, "input must not be modified")
}

func TestRanking(t *testing.T) {
	goals := schema.DefaultGoalConfig()

	t.Run("goal scales with quarters in scope", func(t *testing.T) {
		ranked := Ranking(mixedEvents(), goals, schema.Selection{Product: "TD"})
		require.Len(t, ranked, 1)
		td := ranked[0]
		assert.Equal(t, 2, td.Events)
		assert.Equal(t, 75, td.Reg)
		assert.Equal(t, 524, td.Goal)
		assert.Equal(t, 366, td.ICPGoal)
		assert.InDelta(t, 75.0/524*100, td.Attainment, 1e-9)
		assert.InDelta(t, 60.0, td.Conversion, 1e-9)
		assert.InDelta(t, 37.5, td.AvgPerEvent, 1e-9)
		assert.Equal(t, 1, td.Rank)
	})

	t.Run("quarter filter", func(t *testing.T) {
		ranked := Ranking(mixedEvents(), goals, schema.Selection{Quarter: "Q1 2026"})
		assert.ElementsMatch(t, []string{"TD", "BOA"}, products(ranked))
		for _, r := range ranked {
			assert.Equal(t, goals.Goal(r.Product), r.Goal)
		}
	})

	t.Run("only products with events", func(t *testing.T) {
		ranked := Ranking(mixedEvents(), goals, schema.Selection{})
		assert.ElementsMatch(t, []string{"TD", "BOA", "VET"}, products(ranked))
		assert.Empty(t, Ranking(nil, goals, schema.Selection{}))
	})

	t.Run("ties keep enumeration order", func(t *testing.T) {
		same := schema.Event{Quarter: "Q1 2026", Reg: 20, IcpR: 10, Att: 10, IcpA: 5}
		boa, td := same, same
		boa.Product, td.Product = "BOA", "TD"
		flat := schema.NewGoalConfig([]string{"TD", "BOA"}, map[string]int{"TD": 100, "BOA": 100}, map[string]int{"TD": 50, "BOA": 50}, 0.6, 0)
		ranked := Ranking([]schema.Event{boa, td}, flat, schema.Selection{})
		require.Len(t, ranked, 2)
		assert.Equal(t, ranked[0].Score, ranked[1].Score)
		assert.Equal(t, []string{"TD", "BOA"}, products(ranked))
	})

	t.Run("unresolved quarter labels add no goal", func(t *testing.T) {
		events := []schema.Event{
			{Product: "TD", Quarter: "Q1 2026", Reg: 100, IcpR: 50, Att: 60, IcpA: 30},
			{Product: "TD", Quarter: "Q5 2026", Reg: 50, IcpR: 20, Att: 30, IcpA: 10},
		}
		ranked := Ranking(events, goals, schema.Selection{})
		require.Len(t, ranked, 1)
		assert.Equal(t, 150, ranked[0].Reg)
		assert.Equal(t, 262, ranked[0].Goal)
		assert.Equal(t, 183, ranked[0].ICPGoal)
		assert.InDelta(t, 150.0/262*100, ranked[0].Attainment, 1e-9)
	})
}

func products(scores []schema.PerformanceScore) []string {
	out := make([]string, len(scores))
	for i, s := range scores {
		out[i] = s.Product
	}
	return out
}

func TestDefinitions(t *testing.T) {
	defs := Definitions(0.6)
	require.Len(t, defs.Factors, len(schema.AllBreakdownKeys))
	for i, f := range defs.Factors {
		assert.Equal(t, schema.AllBreakdownKeys[i], f.Key, "factors follow formula order")
	}
	assert.Equal(t, "Score = 0.30*attainment + 0.15*icp_attainment + 0.20*conversion + 0.15*icp_ratio + 0.10*icp_conversion + 1.00*avg_per_event", defs.Formula)

	var positives int
	for _, r := range defs.Rules {
		if r.Positive {
			positives++
			assert.Equal(t, schema.SeverityInfo, r.Severity)
		}
	}
	assert.Equal(t, 6, positives)
	assert.Len(t, defs.Rules, 16)
	assert.Contains(t, defs.Rules[3].Condition, "registrations x 0.60")
}
