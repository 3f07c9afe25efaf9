package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/regpulse/regpulse/internal/contract"
	"github.com/regpulse/regpulse/internal/parquet"
	"github.com/regpulse/regpulse/schema"
)

var eventHeader = []string{"date", "product", "q", "reg", "icpR", "nicpR", "att", "icpA", "nicpA", "dR", "pR"}

// WriteEventResults outputs the event list, dispatching on the configured format.
func WriteEventResults(events []schema.Event, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, events)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVEvents(w, events)
		}, "Wrote CSV")
	case schema.ParquetOut:
		return writeParquetFile(cfg.OutputFile, parquet.ConvertEvents(events))
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeEventTable(w, events, cfg)
		}, "Wrote table")
	}
}

func eventRow(e schema.Event) []string {
	return []string{
		schema.FormatDate(e.Date),
		e.Product,
		e.Quarter,
		itoa(e.Reg),
		itoa(e.IcpR),
		itoa(e.NicpR),
		itoa(e.Att),
		itoa(e.IcpA),
		itoa(e.NicpA),
		itoa(e.DR),
		itoa(e.PR),
	}
}

func writeCSVEvents(w io.Writer, events []schema.Event) error {
	return writeCSVWithHeader(w, eventHeader, func(cw *csv.Writer) error {
		for _, e := range events {
			if err := cw.Write(eventRow(e)); err != nil {
				return err
			}
		}
		return nil
	})
}

func writeEventTable(w io.Writer, events []schema.Event, cfg *contract.Config) error {
	table := tablewriter.NewWriter(w)
	headers := []string{"Date", "Product", "Quarter", "Reg", "ICP R", "Non-ICP R", "Att", "ICP A", "Non-ICP A", "Direct", "Partner"}
	if cfg.SortColumn != "" {
		for i, col := range eventHeader {
			if schema.SortColumn(col) == cfg.SortColumn {
				arrow := "▼"
				if cfg.SortDirection == schema.Ascending {
					arrow = "▲"
				}
				headers[i] += " " + arrow
			}
		}
	}
	table.Header(headers)
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	data := make([][]string, 0, len(events))
	totalReg, totalAtt := 0, 0
	for _, e := range events {
		data = append(data, eventRow(e))
		totalReg += e.Reg
		totalAtt += e.Att
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Showing %d events (registrations: %d, attendees: %d)\n", len(events), totalReg, totalAtt)
	return err
}

// WriteCheckResults outputs the well-formedness report, dispatching on the configured format.
func WriteCheckResults(result schema.CheckResult, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, result)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVCheck(w, result)
		}, "Wrote CSV")
	case schema.ParquetOut:
		failed := make([]schema.Event, len(result.FailedEvents))
		for i, f := range result.FailedEvents {
			failed[i] = f.Event
		}
		return writeParquetFile(cfg.OutputFile, parquet.ConvertEvents(failed))
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCheckText(w, result, cfg)
		}, "Wrote table")
	}
}

func writeCSVCheck(w io.Writer, result schema.CheckResult) error {
	header := append([]string{"index"}, eventHeader...)
	header = append(header, "issues")
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, f := range result.FailedEvents {
			rec := append([]string{itoa(f.Index)}, eventRow(f.Event)...)
			rec = append(rec, strings.Join(f.Issues, "; "))
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

func writeCheckText(w io.Writer, result schema.CheckResult, cfg *contract.Config) error {
	if result.Passed {
		if _, err := fmt.Fprintf(w, "✅ All %d events are well-formed\n", result.TotalEvents); err != nil {
			return err
		}
	} else {
		if _, err := fmt.Fprintf(w, "⚠️  %d of %d events break a record identity\n", len(result.FailedEvents), result.TotalEvents); err != nil {
			return err
		}
		table := tablewriter.NewWriter(w)
		table.Header([]string{"Index", "Date", "Product", "Quarter", "Issues"})
		table.Configure(func(cfg *tablewriter.Config) {
			cfg.Row.Alignment.Global = tw.AlignLeft
		})
		maxWidth := getMaxTableTextWidth(cfg, 50)
		data := make([][]string, 0, len(result.FailedEvents))
		for _, f := range result.FailedEvents {
			data = append(data, []string{
				itoa(f.Index),
				dateOrDash(f.Event.Date),
				f.Event.Product,
				f.Event.Quarter,
				contract.TruncateText(strings.Join(f.Issues, "; "), maxWidth),
			})
		}
		if err := table.Bulk(data); err != nil {
			return err
		}
		if err := table.Render(); err != nil {
			return err
		}
	}
	if len(result.Unresolved) > 0 {
		if _, err := fmt.Fprintf(w, "Unresolved quarter labels: %s\n", strings.Join(result.Unresolved, ", ")); err != nil {
			return err
		}
	}
	if len(result.Unknown) > 0 {
		if _, err := fmt.Fprintf(w, "Products outside the enumeration: %s\n", strings.Join(result.Unknown, ", ")); err != nil {
			return err
		}
	}
	return nil
}
