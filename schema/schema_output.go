package schema

import "time"

// Summary is every derived view of one snapshot under one selection.
type Summary struct {
	Selection   Selection          `json:"selection"`
	Sync        SyncState          `json:"sync"`
	GeneratedAt time.Time          `json:"generated_at"`
	Goal        int                `json:"goal"` // total registration goal across the enumeration
	Totals      AggregateBucket    `json:"totals"`
	ByProduct   []AggregateBucket  `json:"by_product"`
	ByQuarter   []AggregateBucket  `json:"by_quarter"`
	GoalCards   []ProjectionResult `json:"goal_cards"`
	GoalBars    []GoalBar          `json:"goal_bars"`
	Ranking     []PerformanceScore `json:"ranking"`
	Insights    InsightReport      `json:"insights"`
}

// GetPlainLabel returns a plain text label for a composite score.
func GetPlainLabel(score float64) string {
	switch {
	case score >= 80:
		return "Strong"
	case score >= 60:
		return "Solid"
	case score >= 40:
		return "Fair"
	default:
		return "Weak"
	}
}
