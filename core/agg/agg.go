// Package agg has aggregation logic for registration events.
package agg

import (
	"slices"

	"github.com/regpulse/regpulse/schema"
)

// KeyFunc maps an event to its grouping key.
type KeyFunc func(schema.Event) string

// ByAll groups every event into a single "All" bucket.
func ByAll(schema.Event) string { return schema.AllSelector }

// ByProduct groups events by product code.
func ByProduct(e schema.Event) string { return e.Product }

// ByQuarter groups events by quarter label.
func ByQuarter(e schema.Event) string { return e.Quarter }

// Aggregate groups events by key in first-seen order, sums the numeric fields
// and derives the ratio columns. It never fails: empty input yields no buckets.
func Aggregate(events []schema.Event, key KeyFunc) []schema.AggregateBucket {
	index := make(map[string]int)
	var buckets []schema.AggregateBucket
	for _, e := range events {
		k := key(e)
		i, ok := index[k]
		if !ok {
			i = len(buckets)
			index[k] = i
			buckets = append(buckets, schema.AggregateBucket{Key: k})
		}
		accumulate(&buckets[i], e)
	}
	for i := range buckets {
		derive(&buckets[i])
	}
	return buckets
}

// Totals returns the single bucket summing every event. With no events all sums
// and ratios are 0.
func Totals(events []schema.Event) schema.AggregateBucket {
	buckets := Aggregate(events, ByAll)
	if len(buckets) == 0 {
		return schema.AggregateBucket{Key: schema.AllSelector}
	}
	return buckets[0]
}

// ByProductView aggregates per product, sorted by registrations descending.
// Ties keep first-seen order.
func ByProductView(events []schema.Event) []schema.AggregateBucket {
	buckets := Aggregate(events, ByProduct)
	slices.SortStableFunc(buckets, func(a, b schema.AggregateBucket) int {
		return b.Reg - a.Reg
	})
	return buckets
}

// ByQuarterView aggregates per quarter label in first-seen order.
func ByQuarterView(events []schema.Event) []schema.AggregateBucket {
	return Aggregate(events, ByQuarter)
}

// Sum folds a set of buckets back into one, recomputing the ratios from the sums.
func Sum(key string, buckets []schema.AggregateBucket) schema.AggregateBucket {
	out := schema.AggregateBucket{Key: key}
	for _, b := range buckets {
		out.Reg += b.Reg
		out.IcpR += b.IcpR
		out.NicpR += b.NicpR
		out.Att += b.Att
		out.IcpA += b.IcpA
		out.NicpA += b.NicpA
		out.DR += b.DR
		out.PR += b.PR
		out.Events += b.Events
	}
	derive(&out)
	return out
}

func accumulate(b *schema.AggregateBucket, e schema.Event) {
	b.Reg += e.Reg
	b.IcpR += e.IcpR
	b.NicpR += e.NicpR
	b.Att += e.Att
	b.IcpA += e.IcpA
	b.NicpA += e.NicpA
	b.DR += e.DR
	b.PR += e.PR
	b.Events++
}

func derive(b *schema.AggregateBucket) {
	b.Conversion = schema.Pct(float64(b.Att), float64(b.Reg))
	b.ICPRatio = schema.Pct(float64(b.IcpR), float64(b.Reg))
	b.ICPConversion = schema.Pct(float64(b.IcpA), float64(b.IcpR))
	b.AvgPerEvent = schema.Ratio(float64(b.Reg), float64(b.Events))
}
