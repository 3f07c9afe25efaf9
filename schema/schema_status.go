package schema

import "time"

// SourceStatus represents the status of the SQL snapshot table.
type SourceStatus struct {
	Backend       string    `json:"backend"`
	Table         string    `json:"table"`
	Connected     bool      `json:"connected"`
	TotalRows     int       `json:"total_rows"`
	Products      int       `json:"products"`
	Quarters      int       `json:"quarters"`
	FirstEvent    time.Time `json:"first_event"`
	LastEvent     time.Time `json:"last_event"`
	LastLoadedAt  time.Time `json:"last_loaded_at"`
	SchemaVersion uint      `json:"schema_version"`
	Dirty         bool      `json:"dirty"`
}

// SQLEventRow is one row of the snapshot table as written by the upstream loader.
// Nullable counts scan as 0.
type SQLEventRow struct {
	EventDate time.Time
	Product   string
	Quarter   string
	Reg       int
	IcpR      int
	NicpR     int
	Att       int
	IcpA      int
	NicpA     int
	DR        int
	PR        int
}

// Event converts the row to the in-memory event model.
func (r SQLEventRow) Event() Event {
	return Event{
		Date:    r.EventDate,
		Product: r.Product,
		Quarter: r.Quarter,
		Reg:     r.Reg,
		IcpR:    r.IcpR,
		NicpR:   r.NicpR,
		Att:     r.Att,
		IcpA:    r.IcpA,
		NicpA:   r.NicpA,
		DR:      r.DR,
		PR:      r.PR,
	}
}
