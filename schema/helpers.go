package schema

import (
	"fmt"
	"math"
	"strings"
)

// Pct returns a/b as a percentage, or 0 when b is 0.
func Pct(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b * 100
}

// Ratio returns a/b, or 0 when b is 0.
func Ratio(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}

// RoundHalfUp rounds to the nearest integer with halves going towards +Inf,
// so -2.5 becomes -2. Negative projections rely on this tie rule.
func RoundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}

// FormatPct renders a percentage with one decimal, e.g. "38.2%".
func FormatPct(v float64) string {
	return fmt.Sprintf("%.1f%%", v)
}

// IsAll reports whether a selector value means "no restriction".
func IsAll(v string) bool {
	v = strings.TrimSpace(v)
	return v == "" || strings.EqualFold(v, AllSelector)
}

// NormalizeSelector maps empty and case-variant wildcards to AllSelector.
func NormalizeSelector(v string) string {
	if IsAll(v) {
		return AllSelector
	}
	return strings.TrimSpace(v)
}

// MatchProduct reports whether the selection admits the product.
func (s Selection) MatchProduct(product string) bool {
	return IsAll(s.Product) || s.Product == product
}

// MatchQuarter reports whether the selection admits the quarter.
func (s Selection) MatchQuarter(quarter string) bool {
	return IsAll(s.Quarter) || s.Quarter == quarter
}

// Match reports whether the event falls inside the selection.
func (s Selection) Match(e Event) bool {
	return s.MatchProduct(e.Product) && s.MatchQuarter(e.Quarter)
}

// Normalized returns the selection with wildcards spelled as AllSelector.
func (s Selection) Normalized() Selection {
	return Selection{Product: NormalizeSelector(s.Product), Quarter: NormalizeSelector(s.Quarter)}
}

// String renders the selection for headers, e.g. "TD / Q1 2026".
func (s Selection) String() string {
	n := s.Normalized()
	return n.Product + " / " + n.Quarter
}
