package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/regpulse/regpulse/internal/contract"
	"github.com/regpulse/regpulse/internal/parquet"
	"github.com/regpulse/regpulse/schema"
)

const topNFactors = 2

// WriteRankingResults outputs the product ranking, dispatching on the configured format.
func WriteRankingResults(scores []schema.PerformanceScore, cfg *contract.Config) error {
	fmtFloat, _ := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSONRanking(w, scores)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVRanking(w, scores, fmtFloat)
		}, "Wrote CSV")
	case schema.ParquetOut:
		return writeParquetFile(cfg.OutputFile, parquet.ConvertRanking(scores))
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeRankingTable(w, scores, fmtFloat)
		}, "Wrote table")
	}
}

// formatTopFactors names the breakdown terms contributing most to the score.
func formatTopFactors(s schema.PerformanceScore) string {
	keys := make([]schema.BreakdownKey, 0, len(s.Breakdown))
	for _, k := range schema.AllBreakdownKeys {
		if s.Breakdown[k] > 0 {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return "-"
	}
	slices.SortStableFunc(keys, func(a, b schema.BreakdownKey) int {
		switch {
		case s.Breakdown[a] > s.Breakdown[b]:
			return -1
		case s.Breakdown[a] < s.Breakdown[b]:
			return 1
		default:
			return 0
		}
	})
	parts := make([]string, 0, topNFactors)
	for _, k := range keys[:min(len(keys), topNFactors)] {
		parts = append(parts, string(k))
	}
	return strings.Join(parts, " > ")
}

func writeJSONRanking(w io.Writer, scores []schema.PerformanceScore) error {
	type jsonScore struct {
		Label string `json:"label"`
		schema.PerformanceScore
	}
	output := make([]jsonScore, len(scores))
	for i, s := range scores {
		output[i] = jsonScore{Label: schema.GetPlainLabel(s.Score), PerformanceScore: s}
	}
	return writeJSON(w, output)
}

func writeCSVRanking(w io.Writer, scores []schema.PerformanceScore, fmtFloat func(float64) string) error {
	header := []string{
		"rank", "product", "score", "label", "events", "reg", "goal", "attainment_pct",
		"icp_attainment_pct", "conversion_pct", "icp_ratio_pct", "icp_conversion_pct", "avg_per_event",
	}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, s := range scores {
			rec := []string{
				itoa(s.Rank),
				s.Product,
				fmtFloat(s.Score),
				schema.GetPlainLabel(s.Score),
				itoa(s.Events),
				itoa(s.Reg),
				itoa(s.Goal),
				fmtFloat(s.Attainment),
				fmtFloat(s.ICPAttainment),
				fmtFloat(s.Conversion),
				fmtFloat(s.ICPRatio),
				fmtFloat(s.ICPConversion),
				fmtFloat(s.AvgPerEvent),
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

func writeRankingTable(w io.Writer, scores []schema.PerformanceScore, fmtFloat func(float64) string) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Rank", "Product", "Score", "Label", "Events", "Reg", "Goal", "Att %", "ICP Att %", "Conv %", "ICP %", "Avg/Event", "Drivers"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	data := make([][]string, 0, len(scores))
	for _, s := range scores {
		data = append(data, []string{
			itoa(s.Rank),
			s.Product,
			fmtFloat(s.Score),
			schema.GetPlainLabel(s.Score),
			itoa(s.Events),
			itoa(s.Reg),
			itoa(s.Goal),
			fmtFloat(s.Attainment),
			fmtFloat(s.ICPAttainment),
			fmtFloat(s.Conversion),
			fmtFloat(s.ICPRatio),
			fmtFloat(s.AvgPerEvent),
			formatTopFactors(s),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Ranked %d products\n", len(scores))
	return err
}
