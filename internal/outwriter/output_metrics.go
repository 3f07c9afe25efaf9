package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/regpulse/regpulse/internal/contract"
	"github.com/regpulse/regpulse/schema"
)

// PrintMetricsDefinitions displays the composite score and insight rule definitions.
// This is a static display that does not need any event data.
func PrintMetricsDefinitions(model schema.MetricsRenderModel, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, model)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVMetrics(w, model)
		}, "Wrote CSV")
	case schema.ParquetOut:
		return fmt.Errorf("parquet output is not supported for metrics")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return printMetricsText(w, model)
		}, "Wrote text")
	}
}

// writeCSVMetrics writes one row per factor and one per rule.
func writeCSVMetrics(w io.Writer, model schema.MetricsRenderModel) error {
	header := []string{"kind", "key", "severity", "weight", "definition"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, f := range model.Factors {
			rec := []string{"factor", string(f.Key), "", strconv.FormatFloat(f.Weight, 'f', 2, 64), f.Meaning}
			if err := cw.Write(rec); err != nil {
				return fmt.Errorf("failed to write CSV record: %w", err)
			}
		}
		for _, r := range model.Rules {
			kind := "concern"
			if r.Positive {
				kind = "positive"
			}
			rec := []string{kind, string(r.Rule), string(r.Severity), "", r.Condition}
			if err := cw.Write(rec); err != nil {
				return fmt.Errorf("failed to write CSV record: %w", err)
			}
		}
		return nil
	})
}

func printMetricsText(w io.Writer, model schema.MetricsRenderModel) error {
	lines := []string{
		"📈 " + model.Title,
		"================================",
		"",
		model.Description,
		"",
		"   " + model.Formula,
		"",
	}
	for _, f := range model.Factors {
		lines = append(lines, fmt.Sprintf("   %-16s %.2f  %s", f.Name, f.Weight, f.Meaning))
	}
	lines = append(lines, "", "🔮 Projection", "   "+model.Projection, "", "🧭 Insight rules")
	for _, r := range model.Rules {
		sev := string(r.Severity)
		if r.Positive {
			sev = "positive"
		}
		lines = append(lines, fmt.Sprintf("   %-22s %-9s %s", r.Rule, sev, r.Condition))
	}

	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
