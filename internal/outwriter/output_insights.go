package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/regpulse/regpulse/internal/contract"
	"github.com/regpulse/regpulse/internal/parquet"
	"github.com/regpulse/regpulse/schema"
)

// WriteInsightResults outputs concerns and positives, dispatching on the configured format.
func WriteInsightResults(report schema.InsightReport, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, normalizeReport(report))
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVInsights(w, report)
		}, "Wrote CSV")
	case schema.ParquetOut:
		return writeParquetFile(cfg.OutputFile, parquet.ConvertInsights(report))
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeInsightText(w, report, cfg)
		}, "Wrote table")
	}
}

// normalizeReport replaces nil lists so JSON consumers always see arrays.
func normalizeReport(report schema.InsightReport) schema.InsightReport {
	if report.Concerns == nil {
		report.Concerns = []schema.Insight{}
	}
	if report.Positives == nil {
		report.Positives = []schema.Insight{}
	}
	return report
}

func severityLabel(in schema.Insight, cfg *contract.Config) string {
	if cfg.UseColors {
		return contract.GetColorSeverityLabel(in)
	}
	return contract.GetSeverityLabel(in)
}

func writeCSVInsights(w io.Writer, report schema.InsightReport) error {
	header := []string{"kind", "product", "quarter", "rule", "severity", "title", "detail", "recommendation"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		write := func(kind string, list []schema.Insight) error {
			for _, in := range list {
				rec := []string{kind, in.Product, in.Quarter, string(in.Rule), string(in.Severity), in.Title, in.Detail, in.Recommendation}
				if err := cw.Write(rec); err != nil {
					return err
				}
			}
			return nil
		}
		if err := write("concern", report.Concerns); err != nil {
			return err
		}
		return write("positive", report.Positives)
	})
}

func writeInsightText(w io.Writer, report schema.InsightReport, cfg *contract.Config) error {
	if len(report.Concerns) == 0 && len(report.Positives) == 0 {
		_, err := fmt.Fprintln(w, "No insights for the current selection")
		return err
	}
	// Severity + Scope + Title columns with borders take roughly 60 columns.
	detailWidth := getMaxTableTextWidth(cfg, 60)

	sections := []struct {
		title string
		list  []schema.Insight
	}{
		{"🚨 Concerns (" + strconv.Itoa(len(report.Concerns)) + ")", report.Concerns},
		{"🌟 Positives (" + strconv.Itoa(len(report.Positives)) + ")", report.Positives},
	}
	for i, section := range sections {
		if len(section.list) == 0 {
			continue
		}
		prefix := ""
		if i > 0 && len(report.Concerns) > 0 {
			prefix = "\n"
		}
		if _, err := fmt.Fprintf(w, "%s%s\n", prefix, section.title); err != nil {
			return err
		}
		table := tablewriter.NewWriter(w)
		table.Header([]string{"Severity", "Scope", "Title", "Detail"})
		table.Configure(func(cfg *tablewriter.Config) {
			cfg.Row.Alignment.Global = tw.AlignLeft
		})
		data := make([][]string, 0, len(section.list))
		for _, in := range section.list {
			detail := in.Detail
			if in.Recommendation != "" {
				detail += " " + in.Recommendation
			}
			data = append(data, []string{
				severityLabel(in, cfg),
				in.Product + " " + in.Quarter,
				in.Title,
				contract.TruncateText(detail, detailWidth),
			})
		}
		if err := table.Bulk(data); err != nil {
			return err
		}
		if err := table.Render(); err != nil {
			return err
		}
	}
	return nil
}
