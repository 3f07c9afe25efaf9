package algo

import (
	"slices"

	"github.com/regpulse/regpulse/core/calendar"
	"github.com/regpulse/regpulse/schema"
)

// ScoreInputs are the six values the composite score is computed from.
type ScoreInputs struct {
	Attainment    float64
	ICPAttainment float64
	Conversion    float64
	ICPRatio      float64
	ICPConversion float64
	AvgPerEvent   float64
}

// Weights of the composite score.
const (
	wAttainment    = 0.30
	wICPAttainment = 0.15
	wConversion    = 0.20
	wICPRatio      = 0.15
	wICPConversion = 0.10
	wAvgPerEvent   = 1.0

	avgPerEventRef = 50.0 // an average of this many registrations per event earns the full term
	avgPerEventCap = 10.0
)

// CompositeScore weighs the ranking inputs into one score and returns the per-term
// breakdown. Attainment terms are uncapped; the average-per-event term contributes
// at most 10 points.
func CompositeScore(in ScoreInputs) (float64, map[schema.BreakdownKey]float64) {
	breakdown := map[schema.BreakdownKey]float64{
		schema.BreakdownAttainment:    in.Attainment * wAttainment,
		schema.BreakdownICPAttainment: in.ICPAttainment * wICPAttainment,
		schema.BreakdownConversion:    in.Conversion * wConversion,
		schema.BreakdownICPRatio:      in.ICPRatio * wICPRatio,
		schema.BreakdownICPConversion: in.ICPConversion * wICPConversion,
		schema.BreakdownAvgPerEvent:   min(in.AvgPerEvent/avgPerEventRef*10, avgPerEventCap) * wAvgPerEvent,
	}
	var score float64
	for _, k := range schema.AllBreakdownKeys {
		score += breakdown[k]
	}
	return score, breakdown
}

// Rank sorts scores by composite score in descending order and assigns 1-based ranks.
// Equal scores keep their incoming order.
func Rank(scores []schema.PerformanceScore) []schema.PerformanceScore {
	out := slices.Clone(scores)
	slices.SortStableFunc(out, func(a, b schema.PerformanceScore) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		default:
			return 0
		}
	})
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}

// Ranking scores every product in scope from its to-date actuals and returns them
// ranked. Products are visited in enumeration order and only those with at least one
// event in scope are ranked. The goal of a product is its per-quarter goal times the
// number of quarters in scope whose label resolves.
func Ranking(events []schema.Event, goals schema.GoalConfig, sel schema.Selection) []schema.PerformanceScore {
	quarters := 0
	for _, q := range ScopeQuarters(events, sel) {
		if _, ok := calendar.Resolve(q); ok {
			quarters++
		}
	}
	var scores []schema.PerformanceScore
	for _, p := range ScopeProducts(goals, sel) {
		ps := schema.PerformanceScore{Product: p}
		for _, e := range events {
			if e.Product != p || !sel.MatchQuarter(e.Quarter) {
				continue
			}
			ps.Events++
			ps.Reg += e.Reg
			ps.IcpR += e.IcpR
			ps.Att += e.Att
			ps.IcpA += e.IcpA
			ps.DR += e.DR
			ps.PR += e.PR
		}
		if ps.Events == 0 {
			continue
		}
		ps.Goal = goals.Goal(p) * quarters
		ps.ICPGoal = goals.ICPGoal(p) * quarters
		ps.Attainment = schema.Pct(float64(ps.Reg), float64(ps.Goal))
		ps.ICPAttainment = schema.Pct(float64(ps.IcpR), float64(ps.ICPGoal))
		ps.Conversion = schema.Pct(float64(ps.Att), float64(ps.Reg))
		ps.ICPRatio = schema.Pct(float64(ps.IcpR), float64(ps.Reg))
		ps.ICPConversion = schema.Pct(float64(ps.IcpA), float64(ps.IcpR))
		ps.AvgPerEvent = schema.Ratio(float64(ps.Reg), float64(ps.Events))
		ps.Score, ps.Breakdown = CompositeScore(ScoreInputs{
			Attainment:    ps.Attainment,
			ICPAttainment: ps.ICPAttainment,
			Conversion:    ps.Conversion,
			ICPRatio:      ps.ICPRatio,
			ICPConversion: ps.ICPConversion,
			AvgPerEvent:   ps.AvgPerEvent,
		})
		scores = append(scores, ps)
	}
	return Rank(scores)
}
