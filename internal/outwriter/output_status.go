package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/regpulse/regpulse/internal/contract"
	"github.com/regpulse/regpulse/schema"
)

// WriteStatusResults outputs the sync state, dispatching on the configured format.
func WriteStatusResults(state schema.SyncState, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, state)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVStatus(w, state)
		}, "Wrote CSV")
	case schema.ParquetOut:
		return fmt.Errorf("parquet output is not supported for status")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeStatusTable(w, state, cfg)
		}, "Wrote table")
	}
}

// formatTime renders a timestamp, or "never" for the zero time.
func formatTime(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return t.Format(contract.DateTimeFormat)
}

func statusLabel(status schema.SyncStatus, cfg *contract.Config) string {
	if cfg.UseColors {
		return contract.GetColorStatus(status)
	}
	return string(status)
}

// writeStatusPlaceholder prints the line shown instead of data views when the store
// is empty. It returns false when there is data to show.
func writeStatusPlaceholder(w io.Writer, state schema.SyncState) (bool, error) {
	if state.HasData() {
		return false, nil
	}
	var err error
	if state.Status == schema.StatusError {
		_, err = fmt.Fprintf(w, "❌ Could not load data: %s\n", state.Error)
	} else {
		_, err = fmt.Fprintln(w, "⏳ Loading registration data...")
	}
	return true, err
}

func writeStatusTable(w io.Writer, state schema.SyncState, cfg *contract.Config) error {
	if _, err := writeStatusPlaceholder(w, state); err != nil {
		return err
	}

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Field", "Value"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignLeft
	})

	data := [][]string{
		{"Status", statusLabel(state.Status, cfg)},
		{"Source", state.Source},
		{"Events", itoa(state.Events)},
		{"Updated", formatTime(state.UpdatedAt)},
		{"Refreshing", strconv.FormatBool(state.Refreshing)},
	}
	if state.Error != "" {
		data = append(data, []string{"Error", contract.TruncateText(state.Error, getMaxTableTextWidth(cfg, 20))})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

func writeCSVStatus(w io.Writer, state schema.SyncState) error {
	header := []string{"status", "source", "events", "updated_at", "refreshing", "error"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		updated := ""
		if !state.UpdatedAt.IsZero() {
			updated = state.UpdatedAt.Format(contract.DateTimeFormat)
		}
		return cw.Write([]string{
			string(state.Status),
			state.Source,
			itoa(state.Events),
			updated,
			strconv.FormatBool(state.Refreshing),
			state.Error,
		})
	})
}

// WriteSourceStatusResults outputs the SQL source status, dispatching on the configured format.
func WriteSourceStatusResults(status schema.SourceStatus, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, status)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			header := []string{"backend", "table", "connected", "total_rows", "products", "quarters", "first_event", "last_event", "last_loaded_at", "schema_version", "dirty"}
			return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
				return cw.Write([]string{
					status.Backend,
					status.Table,
					strconv.FormatBool(status.Connected),
					itoa(status.TotalRows),
					itoa(status.Products),
					itoa(status.Quarters),
					schema.FormatDate(status.FirstEvent),
					schema.FormatDate(status.LastEvent),
					formatTime(status.LastLoadedAt),
					strconv.FormatUint(uint64(status.SchemaVersion), 10),
					strconv.FormatBool(status.Dirty),
				})
			})
		}, "Wrote CSV")
	case schema.ParquetOut:
		return fmt.Errorf("parquet output is not supported for source status")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeSourceStatusTable(w, status)
		}, "Wrote table")
	}
}

func writeSourceStatusTable(w io.Writer, status schema.SourceStatus) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Field", "Value"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignLeft
	})

	version := strconv.FormatUint(uint64(status.SchemaVersion), 10)
	if status.Dirty {
		version += " (dirty)"
	}
	data := [][]string{
		{"Backend", status.Backend},
		{"Table", status.Table},
		{"Connected", strconv.FormatBool(status.Connected)},
		{"Schema version", version},
		{"Rows", itoa(status.TotalRows)},
		{"Products", itoa(status.Products)},
		{"Quarters", itoa(status.Quarters)},
		{"First event", dateOrDash(status.FirstEvent)},
		{"Last event", dateOrDash(status.LastEvent)},
		{"Last loaded", formatTime(status.LastLoadedAt)},
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

func dateOrDash(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return schema.FormatDate(t)
}
