// Package core has the query surface over the event store: every derived view the
// CLI, HTTP API and MCP server render comes from an Engine.
package core

import (
	"time"

	"github.com/regpulse/regpulse/core/agg"
	"github.com/regpulse/regpulse/core/algo"
	"github.com/regpulse/regpulse/core/listing"
	"github.com/regpulse/regpulse/core/store"
	"github.com/regpulse/regpulse/schema"
)

// Engine computes derived views on demand from the current snapshot. It holds no
// derived state, so every call reflects the latest successful sync.
type Engine struct {
	st    *store.Store
	goals schema.GoalConfig
	clock func() time.Time
}

// NewEngine returns an engine over the store with an immutable goal table.
// A nil clock means the wall clock.
func NewEngine(st *store.Store, goals schema.GoalConfig, clock func() time.Time) *Engine {
	if clock == nil {
		clock = time.Now
	}
	return &Engine{st: st, goals: goals, clock: clock}
}

// Store returns the backing store.
func (e *Engine) Store() *store.Store { return e.st }

// Goals returns the goal table.
func (e *Engine) Goals() schema.GoalConfig { return e.goals }

// Now returns the engine's notion of today.
func (e *Engine) Now() time.Time { return e.clock() }

// Status returns the sync state of the current snapshot.
func (e *Engine) Status() schema.SyncState { return e.st.State() }

// Selection returns the store's active selection.
func (e *Engine) Selection() schema.Selection { return e.st.Selection() }

// Filtered returns the events admitted by sel.
func (e *Engine) Filtered(sel schema.Selection) []schema.Event {
	return listing.Filter(e.st.Events(), sel)
}

// Totals aggregates every event in scope into one bucket keyed "All".
func (e *Engine) Totals(sel schema.Selection) schema.AggregateBucket {
	return agg.Totals(e.Filtered(sel))
}

// ByProduct aggregates the events in scope per product, registrations descending.
func (e *Engine) ByProduct(sel schema.Selection) []schema.AggregateBucket {
	return agg.ByProductView(e.Filtered(sel))
}

// ByQuarter aggregates the events in scope per quarter, in first-seen order.
func (e *Engine) ByQuarter(sel schema.Selection) []schema.AggregateBucket {
	return agg.ByQuarterView(e.Filtered(sel))
}

// GoalCards projects every (quarter, product) in scope that has events.
func (e *Engine) GoalCards(sel schema.Selection) []schema.ProjectionResult {
	return algo.GoalCards(e.st.Events(), e.goals, sel, e.clock())
}

// GoalBars returns actual-versus-goal for every (quarter, product) in scope.
func (e *Engine) GoalBars(sel schema.Selection) []schema.GoalBar {
	return algo.GoalBars(e.st.Events(), e.goals, sel)
}

// Ranking returns the products in scope ranked by composite score.
func (e *Engine) Ranking(sel schema.Selection) []schema.PerformanceScore {
	return algo.Ranking(e.st.Events(), e.goals, sel)
}

// Insights returns the ordered concerns and positives for the scope.
func (e *Engine) Insights(sel schema.Selection) schema.InsightReport {
	return algo.Insights(e.st.Events(), e.goals, sel, e.clock())
}

// SortedEvents returns the events in scope ordered by the sort state.
func (e *Engine) SortedEvents(sel schema.Selection, state listing.SortState) []schema.Event {
	return state.Apply(e.Filtered(sel))
}

// Timeline returns the events in scope by date ascending.
func (e *Engine) Timeline(sel schema.Selection) []schema.Event {
	return listing.Timeline(e.Filtered(sel))
}

// Summary computes every view from a single snapshot so that the parts agree with
// each other even when a sync lands mid-way.
func (e *Engine) Summary(sel schema.Selection) schema.Summary {
	snap := e.st.Snapshot()
	now := e.clock()
	filtered := listing.Filter(snap.Events, sel)
	return schema.Summary{
		Selection:   sel.Normalized(),
		Sync:        snap.Sync,
		GeneratedAt: now,
		Goal:        e.goals.Total(),
		Totals:      agg.Totals(filtered),
		ByProduct:   agg.ByProductView(filtered),
		ByQuarter:   agg.ByQuarterView(filtered),
		GoalCards:   algo.GoalCards(snap.Events, e.goals, sel, now),
		GoalBars:    algo.GoalBars(snap.Events, e.goals, sel),
		Ranking:     algo.Ranking(snap.Events, e.goals, sel),
		Insights:    algo.Insights(snap.Events, e.goals, sel, now),
	}
}

// Check reports events in scope that break the record invariants, quarter labels that
// do not resolve and products outside the enumeration.
func (e *Engine) Check(sel schema.Selection) schema.CheckResult {
	return Check(e.Filtered(sel), e.goals)
}
