package schema

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPct(t *testing.T) {
	tests := []struct {
		name     string
		a, b     float64
		expected float64
	}{
		{"zero denominator", 10, 0, 0},
		{"half", 50, 100, 50},
		{"above one hundred", 300, 262, 300.0 / 262.0 * 100},
		{"zero numerator", 0, 10, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, Pct(tt.a, tt.b), 1e-9)
		})
	}
}

func TestRatio(t *testing.T) {
	assert.Equal(t, 0.0, Ratio(1, 0))
	assert.Equal(t, 0.25, Ratio(1, 4))
}

func TestRoundHalfUp(t *testing.T) {
	tests := []struct {
		in       float64
		expected int
	}{
		{299.99999, 300},
		{2.5, 3},
		{-2.5, -2},
		{-2.6, -3},
		{0.49, 0},
		{0, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, RoundHalfUp(tt.in), "input %v", tt.in)
	}
	assert.NotEqual(t, int(math.Round(-2.5)), RoundHalfUp(-2.5))
}

func TestSelection(t *testing.T) {
	e := Event{Product: "TD", Quarter: "Q1 2026"}

	t.Run("wildcards match everything", func(t *testing.T) {
		assert.True(t, Selection{}.Match(e))
		assert.True(t, Selection{Product: "All", Quarter: "all"}.Match(e))
	})

	t.Run("exact values", func(t *testing.T) {
		assert.True(t, Selection{Product: "TD", Quarter: "Q1 2026"}.Match(e))
		assert.False(t, Selection{Product: "BOA"}.Match(e))
		assert.False(t, Selection{Quarter: "Q4 2025"}.Match(e))
	})

	t.Run("normalized", func(t *testing.T) {
		n := Selection{Product: " ", Quarter: "Q1 2026"}.Normalized()
		assert.Equal(t, AllSelector, n.Product)
		assert.Equal(t, "Q1 2026", n.Quarter)
		assert.Equal(t, "All / Q1 2026", Selection{Quarter: "Q1 2026"}.String())
	})
}

func TestSeverityRank(t *testing.T) {
	assert.Less(t, SeverityCritical.Rank(), SeverityWarning.Rank())
	assert.Less(t, SeverityWarning.Rank(), SeverityInfo.Rank())
}

func TestFormatPct(t *testing.T) {
	assert.Equal(t, "38.2%", FormatPct(38.167))
	assert.Equal(t, "0.0%", FormatPct(0))
}
