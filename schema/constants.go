package schema

// Custom string types for type safety.
type (
	// BreakdownKey represents keys used in composite score breakdowns.
	BreakdownKey string

	// OutputMode represents the format of the output.
	OutputMode string

	// SyncStatus represents the freshness state of the event snapshot.
	SyncStatus string

	// Severity represents the urgency of an insight.
	Severity string

	// InsightRule identifies the rule that produced an insight.
	InsightRule string

	// SourceBackend represents where snapshots are read from.
	SourceBackend string

	// SortColumn names an event field used by the event list sort.
	SortColumn string

	// SortDirection is asc or desc.
	SortDirection string
)

// AllSelector is the wildcard value for product and quarter filters.
const AllSelector = "All"

// Breakdown keys used in the composite score.
const (
	BreakdownAttainment    BreakdownKey = "attainment"
	BreakdownICPAttainment BreakdownKey = "icp_attainment"
	BreakdownConversion    BreakdownKey = "conversion"
	BreakdownICPRatio      BreakdownKey = "icp_ratio"
	BreakdownICPConversion BreakdownKey = "icp_conversion"
	BreakdownAvgPerEvent   BreakdownKey = "avg_per_event"
)

// AllBreakdownKeys lists breakdown keys in formula order.
var AllBreakdownKeys = []BreakdownKey{
	BreakdownAttainment,
	BreakdownICPAttainment,
	BreakdownConversion,
	BreakdownICPRatio,
	BreakdownICPConversion,
	BreakdownAvgPerEvent,
}

// All output modes supported.
const (
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// All sync states.
const (
	StatusLoading SyncStatus = "loading"
	StatusLive    SyncStatus = "live"
	StatusStale   SyncStatus = "stale"
	StatusError   SyncStatus = "error"
)

// All severities, most urgent first.
const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
	SeverityInfo     Severity = "info"
)

// Rank orders severities for sorting: lower is more urgent.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 0
	case SeverityWarning:
		return 1
	default:
		return 2
	}
}

// Concern rules.
const (
	RuleRegBehind         InsightRule = "reg-behind"
	RuleLowConversion     InsightRule = "low-conversion"
	RuleAttendeeShortfall InsightRule = "attendee-shortfall"
	RuleICPBehind         InsightRule = "icp-behind"
	RuleLowICPRatio       InsightRule = "low-icp-ratio"
	RuleMissedGoal        InsightRule = "missed-goal"
	RuleMissedICPGoal     InsightRule = "missed-icp-goal"
)

// Positive rules.
const (
	RuleOnTrack             InsightRule = "on-track"
	RuleGoalHit             InsightRule = "goal-hit"
	RuleICPOnTrack          InsightRule = "icp-on-track"
	RuleICPGoalHit          InsightRule = "icp-goal-hit"
	RuleExcellentConversion InsightRule = "excellent-conversion"
	RuleAttendeeTargetMet   InsightRule = "attendee-target-met"
)

// All snapshot source backends supported.
const (
	HTTPSource       SourceBackend = "http" // default
	FileSource       SourceBackend = "file"
	SQLiteSource     SourceBackend = "sqlite"
	MySQLSource      SourceBackend = "mysql"
	PostgreSQLSource SourceBackend = "postgresql"
)

// Event list columns.
const (
	ColumnDate    SortColumn = "date"
	ColumnProduct SortColumn = "product"
	ColumnQuarter SortColumn = "q"
	ColumnReg     SortColumn = "reg"
	ColumnIcpR    SortColumn = "icpR"
	ColumnNicpR   SortColumn = "nicpR"
	ColumnAtt     SortColumn = "att"
	ColumnIcpA    SortColumn = "icpA"
	ColumnNicpA   SortColumn = "nicpA"
	ColumnDR      SortColumn = "dR"
	ColumnPR      SortColumn = "pR"
)

// Sort directions.
const (
	Ascending  SortDirection = "asc"
	Descending SortDirection = "desc" // default
)

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:     {},
	TextOut:    {},
	JSONOut:    {},
	ParquetOut: {},
}

// ValidSourceBackends lists all valid snapshot sources.
var ValidSourceBackends = map[SourceBackend]struct{}{
	HTTPSource:       {},
	FileSource:       {},
	SQLiteSource:     {},
	MySQLSource:      {},
	PostgreSQLSource: {},
}

// SQLBackends lists the backends served by the SQL source.
var SQLBackends = map[SourceBackend]struct{}{
	SQLiteSource:     {},
	MySQLSource:      {},
	PostgreSQLSource: {},
}

// ValidSortColumns lists every column the event list can be sorted by.
var ValidSortColumns = map[SortColumn]struct{}{
	ColumnDate:    {},
	ColumnProduct: {},
	ColumnQuarter: {},
	ColumnReg:     {},
	ColumnIcpR:    {},
	ColumnNicpR:   {},
	ColumnAtt:     {},
	ColumnIcpA:    {},
	ColumnNicpA:   {},
	ColumnDR:      {},
	ColumnPR:      {},
}
