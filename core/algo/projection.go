package algo

import (
	"fmt"
	"time"

	"github.com/regpulse/regpulse/core/calendar"
	"github.com/regpulse/regpulse/schema"
)

const completedLabel = "Quarter completed"

// Project forecasts the quarter-end registrations of one (product, quarter) scope by
// extrapolating the per-day run rate observed so far across the nominal quarter length.
// The events may span any scope; only those matching product and quarter are counted.
// The second return value is false when the quarter label does not resolve.
//
// Elapsed days are not clamped from below: before the quarter starts the elapsed
// value is negative and the run rate falls back to 0.
func Project(product, quarter string, events []schema.Event, goals schema.GoalConfig, now time.Time) (schema.ProjectionResult, bool) {
	r, ok := calendar.Resolve(quarter)
	if !ok {
		return schema.ProjectionResult{}, false
	}

	res := schema.ProjectionResult{
		Product:  product,
		Quarter:  quarter,
		Goal:     goals.Goal(product),
		ICPGoal:  goals.ICPGoal(product),
		Duration: r.Duration,
	}
	for _, e := range events {
		if e.Product != product || e.Quarter != quarter {
			continue
		}
		res.Events++
		res.Actual += e.Reg
		res.ICPActual += e.IcpR
		res.Attendees += e.Att
		res.ICPAttendees += e.IcpA
	}
	res.Variance = res.Actual - res.Goal
	res.Attainment = schema.Pct(float64(res.Actual), float64(res.Goal))
	res.ICPAttainment = schema.Pct(float64(res.ICPActual), float64(res.ICPGoal))

	duration := float64(r.Duration)
	res.Elapsed = min(now.Sub(r.Start).Hours()/24, duration)
	res.ElapsedFraction = res.Elapsed / duration
	res.Done = now.After(r.End)

	if res.Done {
		res.Projected = res.Actual
		res.ICPProjected = res.ICPActual
		res.Label = completedLabel
	} else {
		res.Projected = runRate(res.Actual, res.Elapsed, res.ElapsedFraction, duration)
		res.ICPProjected = runRate(res.ICPActual, res.Elapsed, res.ElapsedFraction, duration)
		res.Label = fmt.Sprintf("%d%% through quarter", schema.RoundHalfUp(res.ElapsedFraction*100))
	}

	res.Attained = res.Projected >= res.Goal
	res.ICPAttained = res.ICPProjected >= res.ICPGoal
	if !res.Attained {
		res.Shortfall = res.Goal - res.Projected
	}
	if !res.ICPAttained {
		res.ICPShortfall = res.ICPGoal - res.ICPProjected
	}
	return res, true
}

func runRate(actual int, elapsed, fraction, duration float64) int {
	if fraction <= 0 {
		return 0
	}
	return schema.RoundHalfUp(float64(actual) / elapsed * duration)
}

// ScopeQuarters returns the quarters a selection covers: the selected quarter when one
// is chosen, otherwise every quarter present in the events in chronological order.
func ScopeQuarters(events []schema.Event, sel schema.Selection) []string {
	if !schema.IsAll(sel.Quarter) {
		return []string{sel.Quarter}
	}
	return calendar.Discover(events)
}

// ScopeProducts returns the configured products admitted by the selection, in
// enumeration order.
func ScopeProducts(goals schema.GoalConfig, sel schema.Selection) []string {
	var out []string
	for _, p := range goals.Products() {
		if sel.MatchProduct(p) {
			out = append(out, p)
		}
	}
	return out
}

// GoalCards projects every (quarter, product) in scope that has at least one event.
// Cards are quarter-major and follow the product enumeration within a quarter.
// Quarters whose label does not resolve produce no cards.
func GoalCards(events []schema.Event, goals schema.GoalConfig, sel schema.Selection, now time.Time) []schema.ProjectionResult {
	counts := scopeCounts(events)
	var cards []schema.ProjectionResult
	for _, q := range ScopeQuarters(events, sel) {
		for _, p := range ScopeProducts(goals, sel) {
			if counts[scopeKey{p, q}] == 0 {
				continue
			}
			if res, ok := Project(p, q, events, goals, now); ok {
				cards = append(cards, res)
			}
		}
	}
	return cards
}

// GoalBars returns actual-versus-goal for every (quarter, product) in scope. Unlike
// GoalCards it keeps scopes without events as long as the product has a goal.
func GoalBars(events []schema.Event, goals schema.GoalConfig, sel schema.Selection) []schema.GoalBar {
	actuals := make(map[scopeKey]int)
	for _, e := range events {
		actuals[scopeKey{e.Product, e.Quarter}] += e.Reg
	}
	var bars []schema.GoalBar
	for _, q := range ScopeQuarters(events, sel) {
		for _, p := range ScopeProducts(goals, sel) {
			actual := actuals[scopeKey{p, q}]
			goal := goals.Goal(p)
			if actual == 0 && goal == 0 {
				continue
			}
			bars = append(bars, schema.GoalBar{
				Name:    p + " " + q,
				Product: p,
				Quarter: q,
				Actual:  actual,
				Goal:    goal,
			})
		}
	}
	return bars
}

type scopeKey struct {
	product string
	quarter string
}

func scopeCounts(events []schema.Event) map[scopeKey]int {
	counts := make(map[scopeKey]int)
	for _, e := range events {
		counts[scopeKey{e.Product, e.Quarter}]++
	}
	return counts
}
