package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/regpulse/regpulse/internal/contract"
	"github.com/regpulse/regpulse/internal/parquet"
	"github.com/regpulse/regpulse/schema"
)

// Aggregate scopes used in CSV and Parquet rows.
const (
	scopeTotal   = "total"
	scopeProduct = "product"
	scopeQuarter = "quarter"
)

// WriteSummaryResults outputs totals, by-product and by-quarter aggregates,
// dispatching on the configured format. JSON carries every view of the summary.
func WriteSummaryResults(summary schema.Summary, cfg *contract.Config) error {
	fmtFloat, _ := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, summary)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVAggregates(w, summary, fmtFloat)
		}, "Wrote CSV")
	case schema.ParquetOut:
		rows := parquet.ConvertAggregates(scopeTotal, []schema.AggregateBucket{summary.Totals})
		rows = append(rows, parquet.ConvertAggregates(scopeProduct, summary.ByProduct)...)
		rows = append(rows, parquet.ConvertAggregates(scopeQuarter, summary.ByQuarter)...)
		return writeParquetFile(cfg.OutputFile, rows)
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeSummaryText(w, summary, cfg, fmtFloat)
		}, "Wrote table")
	}
}

func aggregateRow(scope string, b schema.AggregateBucket, fmtFloat func(float64) string) []string {
	return []string{
		scope,
		b.Key,
		itoa(b.Events),
		itoa(b.Reg),
		itoa(b.IcpR),
		itoa(b.NicpR),
		itoa(b.Att),
		itoa(b.IcpA),
		itoa(b.NicpA),
		itoa(b.DR),
		itoa(b.PR),
		fmtFloat(b.Conversion),
		fmtFloat(b.ICPRatio),
		fmtFloat(b.ICPConversion),
		fmtFloat(b.AvgPerEvent),
	}
}

func writeCSVAggregates(w io.Writer, summary schema.Summary, fmtFloat func(float64) string) error {
	header := []string{
		"scope", "key", "events", "reg", "icpR", "nicpR", "att", "icpA", "nicpA", "dR", "pR",
		"conversion_pct", "icp_ratio_pct", "icp_conversion_pct", "avg_per_event",
	}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		if err := cw.Write(aggregateRow(scopeTotal, summary.Totals, fmtFloat)); err != nil {
			return err
		}
		for _, b := range summary.ByProduct {
			if err := cw.Write(aggregateRow(scopeProduct, b, fmtFloat)); err != nil {
				return err
			}
		}
		for _, b := range summary.ByQuarter {
			if err := cw.Write(aggregateRow(scopeQuarter, b, fmtFloat)); err != nil {
				return err
			}
		}
		return nil
	})
}

func writeSummaryText(w io.Writer, summary schema.Summary, cfg *contract.Config, fmtFloat func(float64) string) error {
	if _, err := fmt.Fprintf(w, "📊 Registrations for %s (%s, updated %s)\n",
		summary.Selection, statusLabel(summary.Sync.Status, cfg), formatTime(summary.Sync.UpdatedAt)); err != nil {
		return err
	}
	if empty, err := writeStatusPlaceholder(w, summary.Sync); empty || err != nil {
		return err
	}

	t := summary.Totals
	goalPct := schema.Pct(float64(t.Reg), float64(summary.Goal))
	lines := []string{
		fmt.Sprintf("Registrations: %d of %d goal (%s%%) across %d events", t.Reg, summary.Goal, fmtFloat(goalPct), t.Events),
		fmt.Sprintf("ICP: %d, non-ICP: %d, ICP ratio: %s%%", t.IcpR, t.NicpR, fmtFloat(t.ICPRatio)),
		fmt.Sprintf("Attendees: %d (ICP %d), conversion: %s%%, ICP conversion: %s%%", t.Att, t.IcpA, fmtFloat(t.Conversion), fmtFloat(t.ICPConversion)),
		fmt.Sprintf("Direct: %d, partner: %d, avg per event: %s", t.DR, t.PR, fmtFloat(t.AvgPerEvent)),
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintln(w, "\nBy product"); err != nil {
		return err
	}
	if err := writeBucketTable(w, "Product", summary.ByProduct, fmtFloat); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, "\nBy quarter"); err != nil {
		return err
	}
	return writeBucketTable(w, "Quarter", summary.ByQuarter, fmtFloat)
}

func writeBucketTable(w io.Writer, keyName string, buckets []schema.AggregateBucket, fmtFloat func(float64) string) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{keyName, "Events", "Reg", "ICP R", "Att", "Conv %", "ICP %", "ICP Conv %", "Avg/Event"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	data := make([][]string, 0, len(buckets))
	for _, b := range buckets {
		data = append(data, []string{
			b.Key,
			itoa(b.Events),
			itoa(b.Reg),
			itoa(b.IcpR),
			itoa(b.Att),
			fmtFloat(b.Conversion),
			fmtFloat(b.ICPRatio),
			fmtFloat(b.ICPConversion),
			fmtFloat(b.AvgPerEvent),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}
