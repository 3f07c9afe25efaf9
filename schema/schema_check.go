package schema

// CheckResult holds the outcome of the well-formedness check over a snapshot.
// A failed check never rejects the snapshot; it only reports.
type CheckResult struct {
	Passed       bool               `json:"passed"`
	TotalEvents  int                `json:"total_events"`
	FailedEvents []CheckFailedEvent `json:"failed_events"`
	Unresolved   []string           `json:"unresolved_quarters,omitempty"` // quarter labels that do not parse
	Unknown      []string           `json:"unknown_products,omitempty"`    // products outside the enumeration
}

// CheckFailedEvent represents an event that violates at least one invariant.
type CheckFailedEvent struct {
	Index  int      `json:"index"` // position in the snapshot
	Event  Event    `json:"event"`
	Issues []string `json:"issues"`
}
