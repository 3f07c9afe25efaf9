package schema

// MetricsFactor is one weighted term of the composite score.
type MetricsFactor struct {
	Key     BreakdownKey `json:"key"`
	Name    string       `json:"name"`
	Weight  float64      `json:"weight"`
	Meaning string       `json:"meaning"`
}

// MetricsRule is one insight rule with its firing condition.
type MetricsRule struct {
	Rule      InsightRule `json:"rule"`
	Severity  Severity    `json:"severity"`
	Positive  bool        `json:"positive"`
	Condition string      `json:"condition"`
}

// MetricsRenderModel contains all processed data needed for displaying metrics definitions.
type MetricsRenderModel struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Formula     string          `json:"formula"`
	Factors     []MetricsFactor `json:"factors"`
	Projection  string          `json:"projection"`
	Rules       []MetricsRule   `json:"rules"`
}
