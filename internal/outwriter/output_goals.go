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

// goalsJSON is the JSON shape of the goals view.
type goalsJSON struct {
	Cards []schema.ProjectionResult `json:"cards"`
	Bars  []schema.GoalBar          `json:"bars"`
}

// WriteGoalResults outputs goal cards (and goal bars in JSON), dispatching on the
// configured format.
func WriteGoalResults(cards []schema.ProjectionResult, bars []schema.GoalBar, cfg *contract.Config) error {
	fmtFloat, _ := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			if cards == nil {
				cards = []schema.ProjectionResult{}
			}
			if bars == nil {
				bars = []schema.GoalBar{}
			}
			return writeJSON(w, goalsJSON{Cards: cards, Bars: bars})
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVGoals(w, cards, fmtFloat)
		}, "Wrote CSV")
	case schema.ParquetOut:
		return writeParquetFile(cfg.OutputFile, parquet.ConvertGoalCards(cards))
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeGoalTable(w, cards, cfg, fmtFloat)
		}, "Wrote table")
	}
}

func attainmentLabel(pct float64, cfg *contract.Config) string {
	if cfg.UseColors {
		return contract.GetColorAttainmentLabel(pct)
	}
	return contract.GetAttainmentLabel(pct)
}

func writeCSVGoals(w io.Writer, cards []schema.ProjectionResult, fmtFloat func(float64) string) error {
	header := []string{
		"product", "quarter", "events", "actual", "goal", "variance", "attainment_pct",
		"projected", "shortfall", "icp_actual", "icp_goal", "icp_attainment_pct",
		"icp_projected", "icp_shortfall", "done", "label",
	}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, c := range cards {
			rec := []string{
				c.Product,
				c.Quarter,
				itoa(c.Events),
				itoa(c.Actual),
				itoa(c.Goal),
				itoa(c.Variance),
				fmtFloat(c.Attainment),
				itoa(c.Projected),
				itoa(c.Shortfall),
				itoa(c.ICPActual),
				itoa(c.ICPGoal),
				fmtFloat(c.ICPAttainment),
				itoa(c.ICPProjected),
				itoa(c.ICPShortfall),
				strconv.FormatBool(c.Done),
				c.Label,
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

func writeGoalTable(w io.Writer, cards []schema.ProjectionResult, cfg *contract.Config, fmtFloat func(float64) string) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Quarter", "Product", "Events", "Actual", "Goal", "Att %", "Projected", "Short", "ICP", "ICP Goal", "ICP Proj", "Pace", "Progress"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	data := make([][]string, 0, len(cards))
	onTrack := 0
	for _, c := range cards {
		if c.Attained {
			onTrack++
		}
		data = append(data, []string{
			c.Quarter,
			c.Product,
			itoa(c.Events),
			itoa(c.Actual),
			itoa(c.Goal),
			fmtFloat(c.Attainment),
			itoa(c.Projected),
			itoa(c.Shortfall),
			itoa(c.ICPActual),
			itoa(c.ICPGoal),
			itoa(c.ICPProjected),
			attainmentLabel(schema.Pct(float64(c.Projected), float64(c.Goal)), cfg),
			c.Label,
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "%d of %d product quarters projected to reach goal\n", onTrack, len(cards))
	return err
}
