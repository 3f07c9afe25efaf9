package algo

import (
	"fmt"
	"slices"
	"time"

	"github.com/regpulse/regpulse/core/calendar"
	"github.com/regpulse/regpulse/schema"
)

// Thresholds of the insight rules. Percentages are on a 0-100 scale.
const (
	criticalPace = 0.7 // below 70% of the elapsed share of the quarter
	warningPace  = 0.9

	lowConversionPct       = 25.0
	excellentConversionPct = 60.0
	lowICPRatioPct         = 30.0
	minActualForRates      = 10 // rate rules need more than this many registrations
)

// scopeFacts is everything the rules look at for one (product, quarter).
type scopeFacts struct {
	schema.ProjectionResult
	ElapsedPct     float64
	Conversion     float64
	ICPRatio       float64
	AttendeeTarget float64
	AttendanceRate float64
}

// Insights evaluates the rule battery for every (product, quarter) in scope with at
// least one event. Concerns are ordered newest quarter first with critical concerns
// ahead of the rest within a quarter; positives newest quarter first. Both orders are
// stable, so non-critical concerns keep rule order.
func Insights(events []schema.Event, goals schema.GoalConfig, sel schema.Selection, now time.Time) schema.InsightReport {
	var report schema.InsightReport
	for _, card := range GoalCards(events, goals, sel, now) {
		f := scopeFacts{
			ProjectionResult: card,
			ElapsedPct:       card.ElapsedFraction * 100,
			Conversion:       schema.Pct(float64(card.Attendees), float64(card.Actual)),
			ICPRatio:         schema.Pct(float64(card.ICPActual), float64(card.Actual)),
			AttendeeTarget:   float64(card.Actual) * goals.AttendanceRatio(),
			AttendanceRate:   goals.AttendanceRatio(),
		}
		report.Concerns = append(report.Concerns, concerns(f)...)
		report.Positives = append(report.Positives, positives(f)...)
	}

	slices.SortStableFunc(report.Concerns, func(a, b schema.Insight) int {
		if c := calendar.Compare(b.Quarter, a.Quarter); c != 0 {
			return c
		}
		return criticalFirst(a.Severity) - criticalFirst(b.Severity)
	})
	slices.SortStableFunc(report.Positives, func(a, b schema.Insight) int {
		return calendar.Compare(b.Quarter, a.Quarter)
	})
	return report
}

func criticalFirst(s schema.Severity) int {
	if s == schema.SeverityCritical {
		return 0
	}
	return 1
}

func concerns(f scopeFacts) []schema.Insight {
	var out []schema.Insight
	add := func(rule schema.InsightRule, sev schema.Severity, title, detail, rec string) {
		out = append(out, schema.Insight{
			Product:        f.Product,
			Quarter:        f.Quarter,
			Rule:           rule,
			Severity:       sev,
			Title:          title,
			Detail:         detail,
			Recommendation: rec,
		})
	}

	if sev, ok := behindPace(f.Done, f.Attainment, f.ElapsedPct, f.Shortfall); ok {
		add(schema.RuleRegBehind, sev,
			fmt.Sprintf("%s registrations behind pace", f.Product),
			fmt.Sprintf("%d of %d registrations (%s) with %s of %s elapsed; projected %d, short by %d.",
				f.Actual, f.Goal, schema.FormatPct(f.Attainment), schema.FormatPct(f.ElapsedPct), f.Quarter, f.Projected, f.Shortfall),
			"Add events or expand promotion for the rest of the quarter.")
	}

	if f.Conversion < lowConversionPct && f.Actual > minActualForRates {
		add(schema.RuleLowConversion, schema.SeverityWarning,
			fmt.Sprintf("%s low attendee conversion", f.Product),
			fmt.Sprintf("Only %d of %d registrants attended (%s).", f.Attendees, f.Actual, schema.FormatPct(f.Conversion)),
			"Review reminder cadence and event timing.")
	}

	if float64(f.Attendees) < f.AttendeeTarget {
		sev := schema.SeverityWarning
		if float64(f.Attendees) < f.AttendeeTarget/2 {
			sev = schema.SeverityCritical
		}
		add(schema.RuleAttendeeShortfall, sev,
			fmt.Sprintf("%s attendees below target", f.Product),
			fmt.Sprintf("%d attendees against a target of %.0f (%s of %d registrations).",
				f.Attendees, f.AttendeeTarget, schema.FormatPct(f.AttendanceRate*100), f.Actual),
			"Follow up with registrants who have not attended.")
	}

	if sev, ok := behindPace(f.Done, f.ICPAttainment, f.ElapsedPct, f.ICPShortfall); ok {
		add(schema.RuleICPBehind, sev,
			fmt.Sprintf("%s ICP registrations behind pace", f.Product),
			fmt.Sprintf("%d of %d ICP registrations (%s) with %s of %s elapsed; projected %d, short by %d.",
				f.ICPActual, f.ICPGoal, schema.FormatPct(f.ICPAttainment), schema.FormatPct(f.ElapsedPct), f.Quarter, f.ICPProjected, f.ICPShortfall),
			"Target ideal-customer accounts directly.")
	}

	if f.ICPRatio < lowICPRatioPct && f.Actual > minActualForRates {
		add(schema.RuleLowICPRatio, schema.SeverityInfo,
			fmt.Sprintf("%s low ICP share", f.Product),
			fmt.Sprintf("%d of %d registrations are ICP (%s).", f.ICPActual, f.Actual, schema.FormatPct(f.ICPRatio)),
			"Refine audience targeting toward ideal-customer segments.")
	}

	if f.Done && f.Actual < f.Goal {
		add(schema.RuleMissedGoal, schema.SeverityCritical,
			fmt.Sprintf("%s missed %s registration goal", f.Product, f.Quarter),
			fmt.Sprintf("Finished with %d of %d registrations, %d short (%s).", f.Actual, f.Goal, f.Goal-f.Actual, schema.FormatPct(f.Attainment)),
			"Review the event plan before next quarter.")
	}

	if f.Done && f.ICPActual < f.ICPGoal {
		add(schema.RuleMissedICPGoal, schema.SeverityWarning,
			fmt.Sprintf("%s missed %s ICP goal", f.Product, f.Quarter),
			fmt.Sprintf("Finished with %d of %d ICP registrations, %d short (%s).", f.ICPActual, f.ICPGoal, f.ICPGoal-f.ICPActual, schema.FormatPct(f.ICPAttainment)),
			"Rebalance next quarter's events toward ICP audiences.")
	}
	return out
}

// behindPace reports the reg-behind severity. Critical and warning are exclusive.
func behindPace(done bool, attainment, elapsedPct float64, shortfall int) (schema.Severity, bool) {
	if done || shortfall <= 0 {
		return "", false
	}
	switch {
	case attainment < elapsedPct*criticalPace:
		return schema.SeverityCritical, true
	case attainment < elapsedPct*warningPace:
		return schema.SeverityWarning, true
	default:
		return "", false
	}
}

func positives(f scopeFacts) []schema.Insight {
	var out []schema.Insight
	add := func(rule schema.InsightRule, title, detail string) {
		out = append(out, schema.Insight{
			Product:    f.Product,
			Quarter:    f.Quarter,
			Rule:       rule,
			Severity:   schema.SeverityInfo,
			Title:      title,
			Detail:     detail,
			IsPositive: true,
		})
	}

	if !f.Done && f.Attainment >= f.ElapsedPct {
		add(schema.RuleOnTrack,
			fmt.Sprintf("%s registrations on track", f.Product),
			fmt.Sprintf("%s of goal with %s of %s elapsed; projected %d of %d.",
				schema.FormatPct(f.Attainment), schema.FormatPct(f.ElapsedPct), f.Quarter, f.Projected, f.Goal))
	}
	if f.Done && f.Actual >= f.Goal {
		add(schema.RuleGoalHit,
			fmt.Sprintf("%s hit %s registration goal", f.Product, f.Quarter),
			fmt.Sprintf("Finished with %d of %d registrations (%s).", f.Actual, f.Goal, schema.FormatPct(f.Attainment)))
	}
	if !f.Done && f.ICPAttainment >= f.ElapsedPct {
		add(schema.RuleICPOnTrack,
			fmt.Sprintf("%s ICP registrations on track", f.Product),
			fmt.Sprintf("%s of ICP goal with %s of %s elapsed; projected %d of %d.",
				schema.FormatPct(f.ICPAttainment), schema.FormatPct(f.ElapsedPct), f.Quarter, f.ICPProjected, f.ICPGoal))
	}
	if f.Done && f.ICPActual >= f.ICPGoal {
		add(schema.RuleICPGoalHit,
			fmt.Sprintf("%s hit %s ICP goal", f.Product, f.Quarter),
			fmt.Sprintf("Finished with %d of %d ICP registrations (%s).", f.ICPActual, f.ICPGoal, schema.FormatPct(f.ICPAttainment)))
	}
	if f.Conversion >= excellentConversionPct && f.Actual > minActualForRates {
		add(schema.RuleExcellentConversion,
			fmt.Sprintf("%s excellent attendee conversion", f.Product),
			fmt.Sprintf("%d of %d registrants attended (%s).", f.Attendees, f.Actual, schema.FormatPct(f.Conversion)))
	}
	if f.Actual > minActualForRates && float64(f.Attendees) >= f.AttendeeTarget {
		add(schema.RuleAttendeeTargetMet,
			fmt.Sprintf("%s attendee target met", f.Product),
			fmt.Sprintf("%d attendees against a target of %.0f.", f.Attendees, f.AttendeeTarget))
	}
	return out
}
