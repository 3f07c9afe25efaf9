package core

import (
	"github.com/regpulse/regpulse/core/calendar"
	"github.com/regpulse/regpulse/schema"
)

// Check validates events against the record invariants. It only reports: the
// snapshot is used as-is whatever the outcome.
func Check(events []schema.Event, goals schema.GoalConfig) schema.CheckResult {
	result := schema.CheckResult{TotalEvents: len(events), FailedEvents: []schema.CheckFailedEvent{}}
	unresolved := map[string]struct{}{}
	unknown := map[string]struct{}{}

	for i, ev := range events {
		if issues := ev.Validate(); len(issues) > 0 {
			result.FailedEvents = append(result.FailedEvents, schema.CheckFailedEvent{Index: i, Event: ev, Issues: issues})
		}
		if _, ok := calendar.Resolve(ev.Quarter); !ok {
			if _, seen := unresolved[ev.Quarter]; !seen {
				unresolved[ev.Quarter] = struct{}{}
				result.Unresolved = append(result.Unresolved, ev.Quarter)
			}
		}
		if !goals.HasProduct(ev.Product) {
			if _, seen := unknown[ev.Product]; !seen {
				unknown[ev.Product] = struct{}{}
				result.Unknown = append(result.Unknown, ev.Product)
			}
		}
	}
	result.Passed = len(result.FailedEvents) == 0
	return result
}
