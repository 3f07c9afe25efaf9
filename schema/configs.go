package schema

import (
	"maps"
	"slices"
	"time"
)

// DefaultPollInterval is how often the sync controller re-fetches the snapshot.
const DefaultPollInterval = 120 * time.Second

// DefaultAttendanceRatio is the fraction of registrants expected to attend.
const DefaultAttendanceRatio = 0.6

// QuarterDurations is the nominal length in days of each quarter of the year.
// It is a fixed table, not calendar math; projections depend on these exact values.
var QuarterDurations = map[int]int{1: 90, 2: 91, 3: 92, 4: 92}

// DefaultProducts is the ordered product enumeration used when none is configured.
var DefaultProducts = []string{"TD", "BOA", "VET", "LAW", "VET-I", "BOA-I"}

// GoalConfig holds per-quarter registration targets. It is built once at startup and
// never mutated afterwards; accessors return copies.
type GoalConfig struct {
	products        []string
	registration    map[string]int
	icp             map[string]int
	attendanceRatio float64
	total           int
}

// NewGoalConfig builds an immutable goal configuration. A non-positive total is replaced
// by the sum of the per-product registration goals.
func NewGoalConfig(products []string, registration, icp map[string]int, attendanceRatio float64, total int) GoalConfig {
	gc := GoalConfig{
		products:        slices.Clone(products),
		registration:    maps.Clone(registration),
		icp:             maps.Clone(icp),
		attendanceRatio: attendanceRatio,
		total:           total,
	}
	if gc.registration == nil {
		gc.registration = map[string]int{}
	}
	if gc.icp == nil {
		gc.icp = map[string]int{}
	}
	if gc.total <= 0 {
		for _, p := range gc.products {
			gc.total += gc.registration[p]
		}
	}
	return gc
}

// DefaultGoalConfig returns the built-in goal table.
func DefaultGoalConfig() GoalConfig {
	return NewGoalConfig(
		DefaultProducts,
		map[string]int{"TD": 262, "BOA": 262, "VET": 77, "LAW": 77, "VET-I": 173, "BOA-I": 335},
		map[string]int{"TD": 183, "BOA": 183, "VET": 54, "LAW": 54, "VET-I": 121, "BOA-I": 234},
		DefaultAttendanceRatio,
		0,
	)
}

// Products returns the ordered product enumeration.
func (g GoalConfig) Products() []string {
	return slices.Clone(g.products)
}

// Goal returns the registration goal of a product, 0 when unknown.
func (g GoalConfig) Goal(product string) int {
	return g.registration[product]
}

// ICPGoal returns the ICP registration goal of a product, 0 when unknown.
func (g GoalConfig) ICPGoal(product string) int {
	return g.icp[product]
}

// AttendanceRatio returns the expected attendees-per-registrant fraction.
func (g GoalConfig) AttendanceRatio() float64 {
	return g.attendanceRatio
}

// Total returns the aggregate registration goal across all products.
func (g GoalConfig) Total() int {
	return g.total
}

// HasProduct reports whether the product is part of the enumeration.
func (g GoalConfig) HasProduct(product string) bool {
	return slices.Contains(g.products, product)
}
