// Package schema has configs, models and constants for all parts of regpulse.
package schema

import "time"

// Event is a single marketing-event registration record as delivered by the feed.
// Well-formed records satisfy Reg = IcpR + NicpR, Att = IcpA + NicpA and DR + PR <= Reg,
// but nothing in the engine relies on those identities holding.
type Event struct {
	Date    time.Time `json:"date"`    // Calendar date of the event
	Product string    `json:"product"` // Product code from the configured enumeration
	Quarter string    `json:"q"`       // Quarter label such as "Q1 2026"
	Reg     int       `json:"reg"`     // Registrations
	IcpR    int       `json:"icpR"`    // ICP registrations
	NicpR   int       `json:"nicpR"`   // Non-ICP registrations
	Att     int       `json:"att"`     // Attendees
	IcpA    int       `json:"icpA"`    // ICP attendees
	NicpA   int       `json:"nicpA"`   // Non-ICP attendees
	DR      int       `json:"dR"`      // Direct registrations
	PR      int       `json:"pR"`      // Partner registrations
}

// CalendarRange is the resolved calendar window of a quarter label.
// Duration is the nominal length in days from QuarterDurations, not the true day count.
type CalendarRange struct {
	Label    string    `json:"label"`
	Number   int       `json:"number"`
	Year     int       `json:"year"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	Duration int       `json:"duration_days"`
}

// Selection is the active filter scope. Empty fields and AllSelector both mean "no restriction".
type Selection struct {
	Product string `json:"product"`
	Quarter string `json:"quarter"`
}

// AggregateBucket holds summed counts and derived ratios for one grouping key.
// Ratios are percentages and are 0 whenever their denominator is 0.
type AggregateBucket struct {
	Key           string  `json:"key"`
	Reg           int     `json:"reg"`
	IcpR          int     `json:"icpR"`
	NicpR         int     `json:"nicpR"`
	Att           int     `json:"att"`
	IcpA          int     `json:"icpA"`
	NicpA         int     `json:"nicpA"`
	DR            int     `json:"dR"`
	PR            int     `json:"pR"`
	Events        int     `json:"events"`
	Conversion    float64 `json:"conversion_pct"`
	ICPRatio      float64 `json:"icp_ratio_pct"`
	ICPConversion float64 `json:"icp_conversion_pct"`
	AvgPerEvent   float64 `json:"avg_per_event"`
}

// ProjectionResult is the quarter-end forecast for one (product, quarter) scope.
type ProjectionResult struct {
	Product         string  `json:"product"`
	Quarter         string  `json:"quarter"`
	Events          int     `json:"events"`
	Actual          int     `json:"actual"`
	ICPActual       int     `json:"icp_actual"`
	Attendees       int     `json:"attendees"`
	ICPAttendees    int     `json:"icp_attendees"`
	Goal            int     `json:"goal"`
	ICPGoal         int     `json:"icp_goal"`
	Variance        int     `json:"variance"`
	Attainment      float64 `json:"attainment_pct"`
	ICPAttainment   float64 `json:"icp_attainment_pct"`
	Elapsed         float64 `json:"elapsed_days"` // may be negative before the quarter starts
	ElapsedFraction float64 `json:"elapsed_fraction"`
	Duration        int     `json:"duration_days"`
	Done            bool    `json:"done"`
	Projected       int     `json:"projected"`
	ICPProjected    int     `json:"icp_projected"`
	Attained        bool    `json:"attained"`
	ICPAttained     bool    `json:"icp_attained"`
	Shortfall       int     `json:"shortfall"`
	ICPShortfall    int     `json:"icp_shortfall"`
	Label           string  `json:"label"`
}

// GoalBar is actual-versus-goal for one (product, quarter), including scopes without events.
type GoalBar struct {
	Name    string `json:"name"`
	Product string `json:"product"`
	Quarter string `json:"quarter"`
	Actual  int    `json:"actual"`
	Goal    int    `json:"goal"`
}

// PerformanceScore is the ranking row of one product over the selected quarters.
// It is computed from to-date actuals, never from projections.
type PerformanceScore struct {
	Rank          int                      `json:"rank"`
	Product       string                   `json:"product"`
	Events        int                      `json:"events"`
	Reg           int                      `json:"reg"`
	IcpR          int                      `json:"icpR"`
	Att           int                      `json:"att"`
	IcpA          int                      `json:"icpA"`
	DR            int                      `json:"dR"`
	PR            int                      `json:"pR"`
	Goal          int                      `json:"goal"`
	ICPGoal       int                      `json:"icp_goal"`
	Attainment    float64                  `json:"attainment_pct"`
	ICPAttainment float64                  `json:"icp_attainment_pct"`
	Conversion    float64                  `json:"conversion_pct"`
	ICPRatio      float64                  `json:"icp_ratio_pct"`
	ICPConversion float64                  `json:"icp_conversion_pct"`
	AvgPerEvent   float64                  `json:"avg_per_event"`
	Score         float64                  `json:"score"`
	Breakdown     map[BreakdownKey]float64 `json:"breakdown,omitempty"`
}

// Insight is one fired rule for a (product, quarter) scope.
type Insight struct {
	Product        string      `json:"product"`
	Quarter        string      `json:"quarter"`
	Rule           InsightRule `json:"rule"`
	Severity       Severity    `json:"severity"`
	Title          string      `json:"title"`
	Detail         string      `json:"detail"`
	Recommendation string      `json:"recommendation"`
	IsPositive     bool        `json:"is_positive"`
}

// InsightReport splits fired insights into concerns and positives, each already ordered.
type InsightReport struct {
	Concerns  []Insight `json:"concerns"`
	Positives []Insight `json:"positives"`
}

// SyncState is the freshness indicator of the event snapshot.
type SyncState struct {
	Status     SyncStatus `json:"status"`
	UpdatedAt  time.Time  `json:"updated_at"`
	Error      string     `json:"error,omitempty"`
	Refreshing bool       `json:"refreshing"`
	Events     int        `json:"events"`
	Source     string     `json:"source,omitempty"`
}

// HasData reports whether a snapshot was ever loaded successfully.
func (s SyncState) HasData() bool {
	return !s.UpdatedAt.IsZero()
}

// Snapshot is the immutable unit published by the event store: the events and the
// sync state that produced them are always swapped together.
type Snapshot struct {
	Events []Event   `json:"events"`
	Sync   SyncState `json:"sync"`
}
