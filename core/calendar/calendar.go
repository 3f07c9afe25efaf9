// Package calendar resolves quarter labels such as "Q1 2026" into calendar ranges.
package calendar

import (
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/regpulse/regpulse/schema"
)

var labelPattern = regexp.MustCompile(`^Q([1-4])\s+(\d{4})$`)

// quarterBounds holds the first and last (month, day) of each quarter of the year.
var quarterBounds = map[int][2][2]int{
	1: {{1, 1}, {3, 31}},
	2: {{4, 1}, {6, 30}},
	3: {{7, 1}, {9, 30}},
	4: {{10, 1}, {12, 31}},
}

// Resolve parses a quarter label. The second return value is false for labels that do
// not match "Q<n> <year>"; callers treat that as "no scope".
// Start and End are UTC midnight of the first and last day of the quarter.
func Resolve(label string) (schema.CalendarRange, bool) {
	n, year, ok := parse(label)
	if !ok {
		return schema.CalendarRange{}, false
	}
	b := quarterBounds[n]
	return schema.CalendarRange{
		Label:    strings.TrimSpace(label),
		Number:   n,
		Year:     year,
		Start:    time.Date(year, time.Month(b[0][0]), b[0][1], 0, 0, 0, 0, time.UTC),
		End:      time.Date(year, time.Month(b[1][0]), b[1][1], 0, 0, 0, 0, time.UTC),
		Duration: schema.QuarterDurations[n],
	}, true
}

// Label formats a quarter number and year back into its label.
func Label(n, year int) string {
	return "Q" + strconv.Itoa(n) + " " + strconv.Itoa(year)
}

// Compare orders two labels chronologically. Unparseable labels sort after
// parseable ones and lexically among themselves.
func Compare(a, b string) int {
	na, ya, okA := parse(a)
	nb, yb, okB := parse(b)
	switch {
	case okA && okB:
		if ya != yb {
			return ya - yb
		}
		return na - nb
	case okA:
		return -1
	case okB:
		return 1
	default:
		return strings.Compare(a, b)
	}
}

// SortChronological returns the labels ordered by year then quarter number, ascending.
func SortChronological(labels []string) []string {
	out := slices.Clone(labels)
	slices.SortStableFunc(out, Compare)
	return out
}

// Discover returns the distinct quarter labels present in the events, oldest first.
func Discover(events []schema.Event) []string {
	seen := make(map[string]struct{})
	var labels []string
	for _, e := range events {
		if e.Quarter == "" {
			continue
		}
		if _, ok := seen[e.Quarter]; ok {
			continue
		}
		seen[e.Quarter] = struct{}{}
		labels = append(labels, e.Quarter)
	}
	return SortChronological(labels)
}

// Containing returns the label of the quarter that contains t.
func Containing(t time.Time) string {
	t = t.UTC()
	return Label((int(t.Month())-1)/3+1, t.Year())
}

func parse(label string) (int, int, bool) {
	m := labelPattern.FindStringSubmatch(strings.TrimSpace(label))
	if m == nil {
		return 0, 0, false
	}
	n, _ := strconv.Atoi(m[1])
	year, _ := strconv.Atoi(m[2])
	return n, year, true
}
