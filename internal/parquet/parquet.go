// Package parquet provides record types and writers for exporting regpulse views
// to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/regpulse/regpulse/schema"
)

// EventRecord is one registration event.
type EventRecord struct {
	EventDate time.Time `parquet:"event_date,snappy"`
	Product   string    `parquet:"product,snappy,dict"`
	Quarter   string    `parquet:"quarter,snappy,dict"`
	Reg       int32     `parquet:"reg,snappy"`
	IcpR      int32     `parquet:"icp_r,snappy"`
	NicpR     int32     `parquet:"nicp_r,snappy"`
	Att       int32     `parquet:"att,snappy"`
	IcpA      int32     `parquet:"icp_a,snappy"`
	NicpA     int32     `parquet:"nicp_a,snappy"`
	DR        int32     `parquet:"d_r,snappy"`
	PR        int32     `parquet:"p_r,snappy"`
}

// AggregateRecord is one aggregation bucket. Scope is "total", "product" or "quarter".
type AggregateRecord struct {
	Scope         string  `parquet:"scope,snappy,dict"`
	Key           string  `parquet:"key,snappy"`
	Events        int32   `parquet:"events,snappy"`
	Reg           int32   `parquet:"reg,snappy"`
	IcpR          int32   `parquet:"icp_r,snappy"`
	NicpR         int32   `parquet:"nicp_r,snappy"`
	Att           int32   `parquet:"att,snappy"`
	IcpA          int32   `parquet:"icp_a,snappy"`
	NicpA         int32   `parquet:"nicp_a,snappy"`
	DR            int32   `parquet:"d_r,snappy"`
	PR            int32   `parquet:"p_r,snappy"`
	Conversion    float64 `parquet:"conversion_pct,snappy"`
	ICPRatio      float64 `parquet:"icp_ratio_pct,snappy"`
	ICPConversion float64 `parquet:"icp_conversion_pct,snappy"`
	AvgPerEvent   float64 `parquet:"avg_per_event,snappy"`
}

// GoalCardRecord is the projection of one (product, quarter).
type GoalCardRecord struct {
	Product         string  `parquet:"product,snappy,dict"`
	Quarter         string  `parquet:"quarter,snappy,dict"`
	Events          int32   `parquet:"events,snappy"`
	Actual          int32   `parquet:"actual,snappy"`
	Goal            int32   `parquet:"goal,snappy"`
	Projected       int32   `parquet:"projected,snappy"`
	Shortfall       int32   `parquet:"shortfall,snappy"`
	ICPActual       int32   `parquet:"icp_actual,snappy"`
	ICPGoal         int32   `parquet:"icp_goal,snappy"`
	ICPProjected    int32   `parquet:"icp_projected,snappy"`
	ICPShortfall    int32   `parquet:"icp_shortfall,snappy"`
	Attainment      float64 `parquet:"attainment_pct,snappy"`
	ElapsedFraction float64 `parquet:"elapsed_fraction,snappy"`
	Done            bool    `parquet:"done,snappy"`
	Label           string  `parquet:"label,snappy"`
}

// RankingRecord is one ranked product.
type RankingRecord struct {
	Rank          int32   `parquet:"rank,snappy"`
	Product       string  `parquet:"product,snappy,dict"`
	Score         float64 `parquet:"score,snappy"`
	Events        int32   `parquet:"events,snappy"`
	Reg           int32   `parquet:"reg,snappy"`
	Goal          int32   `parquet:"goal,snappy"`
	Attainment    float64 `parquet:"attainment_pct,snappy"`
	ICPAttainment float64 `parquet:"icp_attainment_pct,snappy"`
	Conversion    float64 `parquet:"conversion_pct,snappy"`
	ICPRatio      float64 `parquet:"icp_ratio_pct,snappy"`
	ICPConversion float64 `parquet:"icp_conversion_pct,snappy"`
	AvgPerEvent   float64 `parquet:"avg_per_event,snappy"`
}

// InsightRecord is one fired insight rule.
type InsightRecord struct {
	Product        string  `parquet:"product,snappy,dict"`
	Quarter        string  `parquet:"quarter,snappy,dict"`
	Rule           string  `parquet:"rule,snappy,dict"`
	Severity       string  `parquet:"severity,snappy,dict"`
	Positive       bool    `parquet:"positive,snappy"`
	Title          string  `parquet:"title,snappy"`
	Detail         string  `parquet:"detail,snappy"`
	Recommendation *string `parquet:"recommendation,optional,snappy"` // nil for positives
}

// Write encodes rows as a Parquet file to w. The schema is derived from the struct tags.
func Write[T any](w io.Writer, rows []T) error {
	writer := parquet.NewGenericWriter[T](w)
	if _, err := writer.Write(rows); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// WriteFile writes rows to a new Parquet file at outputPath.
func WriteFile[T any](rows []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := Write(file, rows); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}

// ConvertEvents converts events for Parquet export.
func ConvertEvents(events []schema.Event) []EventRecord {
	result := make([]EventRecord, len(events))
	for i, e := range events {
		result[i] = EventRecord{
			EventDate: e.Date,
			Product:   e.Product,
			Quarter:   e.Quarter,
			Reg:       int32(e.Reg),
			IcpR:      int32(e.IcpR),
			NicpR:     int32(e.NicpR),
			Att:       int32(e.Att),
			IcpA:      int32(e.IcpA),
			NicpA:     int32(e.NicpA),
			DR:        int32(e.DR),
			PR:        int32(e.PR),
		}
	}
	return result
}

// ConvertAggregates converts buckets for Parquet export, tagging each with scope.
func ConvertAggregates(scope string, buckets []schema.AggregateBucket) []AggregateRecord {
	result := make([]AggregateRecord, len(buckets))
	for i, b := range buckets {
		result[i] = AggregateRecord{
			Scope:         scope,
			Key:           b.Key,
			Events:        int32(b.Events),
			Reg:           int32(b.Reg),
			IcpR:          int32(b.IcpR),
			NicpR:         int32(b.NicpR),
			Att:           int32(b.Att),
			IcpA:          int32(b.IcpA),
			NicpA:         int32(b.NicpA),
			DR:            int32(b.DR),
			PR:            int32(b.PR),
			Conversion:    b.Conversion,
			ICPRatio:      b.ICPRatio,
			ICPConversion: b.ICPConversion,
			AvgPerEvent:   b.AvgPerEvent,
		}
	}
	return result
}

// ConvertGoalCards converts projections for Parquet export.
func ConvertGoalCards(cards []schema.ProjectionResult) []GoalCardRecord {
	result := make([]GoalCardRecord, len(cards))
	for i, c := range cards {
		result[i] = GoalCardRecord{
			Product:         c.Product,
			Quarter:         c.Quarter,
			Events:          int32(c.Events),
			Actual:          int32(c.Actual),
			Goal:            int32(c.Goal),
			Projected:       int32(c.Projected),
			Shortfall:       int32(c.Shortfall),
			ICPActual:       int32(c.ICPActual),
			ICPGoal:         int32(c.ICPGoal),
			ICPProjected:    int32(c.ICPProjected),
			ICPShortfall:    int32(c.ICPShortfall),
			Attainment:      c.Attainment,
			ElapsedFraction: c.ElapsedFraction,
			Done:            c.Done,
			Label:           c.Label,
		}
	}
	return result
}

// ConvertRanking converts performance scores for Parquet export.
func ConvertRanking(scores []schema.PerformanceScore) []RankingRecord {
	result := make([]RankingRecord, len(scores))
	for i, s := range scores {
		result[i] = RankingRecord{
			Rank:          int32(s.Rank),
			Product:       s.Product,
			Score:         s.Score,
			Events:        int32(s.Events),
			Reg:           int32(s.Reg),
			Goal:          int32(s.Goal),
			Attainment:    s.Attainment,
			ICPAttainment: s.ICPAttainment,
			Conversion:    s.Conversion,
			ICPRatio:      s.ICPRatio,
			ICPConversion: s.ICPConversion,
			AvgPerEvent:   s.AvgPerEvent,
		}
	}
	return result
}

// ConvertInsights converts concerns followed by positives for Parquet export.
func ConvertInsights(report schema.InsightReport) []InsightRecord {
	result := make([]InsightRecord, 0, len(report.Concerns)+len(report.Positives))
	for _, in := range append(append([]schema.Insight{}, report.Concerns...), report.Positives...) {
		rec := InsightRecord{
			Product:  in.Product,
			Quarter:  in.Quarter,
			Rule:     string(in.Rule),
			Severity: string(in.Severity),
			Positive: in.IsPositive,
			Title:    in.Title,
			Detail:   in.Detail,
		}
		if in.Recommendation != "" {
			r := in.Recommendation
			rec.Recommendation = &r
		}
		result = append(result, rec)
	}
	return result
}
