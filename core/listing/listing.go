// Package listing filters and sorts the literal event list.
package listing

import (
	"cmp"
	"slices"
	"strings"

	"github.com/regpulse/regpulse/schema"
)

// Filter keeps the events admitted by the selection. The result is a new slice.
func Filter(events []schema.Event, sel schema.Selection) []schema.Event {
	out := make([]schema.Event, 0, len(events))
	for _, e := range events {
		if sel.Match(e) {
			out = append(out, e)
		}
	}
	return out
}

// Sort returns a stably sorted copy of the events. Dates compare as timestamps,
// product and quarter lexically, every other column numerically. Unknown columns
// compare every event as 0 and leave the order untouched.
func Sort(events []schema.Event, column schema.SortColumn, dir schema.SortDirection) []schema.Event {
	out := slices.Clone(events)
	compare := comparator(column)
	slices.SortStableFunc(out, func(a, b schema.Event) int {
		if dir == schema.Ascending {
			return compare(a, b)
		}
		return compare(b, a)
	})
	return out
}

// Timeline returns the events in ascending date order.
func Timeline(events []schema.Event) []schema.Event {
	return Sort(events, schema.ColumnDate, schema.Ascending)
}

func comparator(column schema.SortColumn) func(a, b schema.Event) int {
	switch column {
	case schema.ColumnDate:
		return func(a, b schema.Event) int { return a.Date.Compare(b.Date) }
	case schema.ColumnProduct:
		return func(a, b schema.Event) int { return strings.Compare(a.Product, b.Product) }
	case schema.ColumnQuarter:
		return func(a, b schema.Event) int { return strings.Compare(a.Quarter, b.Quarter) }
	default:
		return func(a, b schema.Event) int { return cmp.Compare(NumericValue(a, column), NumericValue(b, column)) }
	}
}

// NumericValue returns the count stored under a numeric column, or 0 for columns
// that are not numeric.
func NumericValue(e schema.Event, column schema.SortColumn) int {
	switch column {
	case schema.ColumnReg:
		return e.Reg
	case schema.ColumnIcpR:
		return e.IcpR
	case schema.ColumnNicpR:
		return e.NicpR
	case schema.ColumnAtt:
		return e.Att
	case schema.ColumnIcpA:
		return e.IcpA
	case schema.ColumnNicpA:
		return e.NicpA
	case schema.ColumnDR:
		return e.DR
	case schema.ColumnPR:
		return e.PR
	default:
		return 0
	}
}

// SortState is the column and direction of the event list.
type SortState struct {
	Column    schema.SortColumn    `json:"column"`
	Direction schema.SortDirection `json:"direction"`
}

// DefaultSortState is newest first.
func DefaultSortState() SortState {
	return SortState{Column: schema.ColumnDate, Direction: schema.Descending}
}

// Toggle returns the state after selecting a column: the same column flips the
// direction, a different column starts descending.
func (s SortState) Toggle(column schema.SortColumn) SortState {
	if s.Column == column {
		if s.Direction == schema.Descending {
			return SortState{Column: column, Direction: schema.Ascending}
		}
		return SortState{Column: column, Direction: schema.Descending}
	}
	return SortState{Column: column, Direction: schema.Descending}
}

// Apply sorts the events by the state.
func (s SortState) Apply(events []schema.Event) []schema.Event {
	return Sort(events, s.Column, s.Direction)
}
