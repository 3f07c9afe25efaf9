package algo

import (
	"fmt"
	"strings"

	"github.com/regpulse/regpulse/schema"
)

// Definitions describes the composite score and the insight rules with the exact
// weights and thresholds in use. attendanceRatio is the configured ratio.
func Definitions(attendanceRatio float64) schema.MetricsRenderModel {
	factors := []schema.MetricsFactor{
		{Key: schema.BreakdownAttainment, Name: "Attainment", Weight: wAttainment, Meaning: "registrations / goal x 100, uncapped"},
		{Key: schema.BreakdownICPAttainment, Name: "ICP attainment", Weight: wICPAttainment, Meaning: "ICP registrations / ICP goal x 100, uncapped"},
		{Key: schema.BreakdownConversion, Name: "Conversion", Weight: wConversion, Meaning: "attendees / registrations x 100"},
		{Key: schema.BreakdownICPRatio, Name: "ICP ratio", Weight: wICPRatio, Meaning: "ICP registrations / registrations x 100"},
		{Key: schema.BreakdownICPConversion, Name: "ICP conversion", Weight: wICPConversion, Meaning: "ICP attendees / ICP registrations x 100"},
		{Key: schema.BreakdownAvgPerEvent, Name: "Avg per event", Weight: wAvgPerEvent,
			Meaning: fmt.Sprintf("min(registrations per event / %.0f x 10, %.0f)", avgPerEventRef, avgPerEventCap)},
	}
	terms := make([]string, len(factors))
	for i, f := range factors {
		terms[i] = fmt.Sprintf("%.2f*%s", f.Weight, f.Key)
	}

	target := fmt.Sprintf("registrations x %.2f", attendanceRatio)
	behind := func(metric string, pace float64) string {
		return fmt.Sprintf("quarter open, %s < elapsed%% x %.1f, projected short of goal", metric, pace)
	}
	rules := []schema.MetricsRule{
		{Rule: schema.RuleRegBehind, Severity: schema.SeverityCritical, Condition: behind("attainment", criticalPace)},
		{Rule: schema.RuleRegBehind, Severity: schema.SeverityWarning, Condition: behind("attainment", warningPace) + ", not critical"},
		{Rule: schema.RuleLowConversion, Severity: schema.SeverityWarning,
			Condition: fmt.Sprintf("conversion < %.0f%% and more than %d registrations", lowConversionPct, minActualForRates)},
		{Rule: schema.RuleAttendeeShortfall, Severity: schema.SeverityCritical, Condition: "attendees < half of " + target},
		{Rule: schema.RuleAttendeeShortfall, Severity: schema.SeverityWarning, Condition: "attendees < " + target},
		{Rule: schema.RuleICPBehind, Severity: schema.SeverityCritical, Condition: behind("ICP attainment", criticalPace)},
		{Rule: schema.RuleICPBehind, Severity: schema.SeverityWarning, Condition: behind("ICP attainment", warningPace) + ", not critical"},
		{Rule: schema.RuleLowICPRatio, Severity: schema.SeverityInfo,
			Condition: fmt.Sprintf("ICP ratio < %.0f%% and more than %d registrations", lowICPRatioPct, minActualForRates)},
		{Rule: schema.RuleMissedGoal, Severity: schema.SeverityCritical, Condition: "quarter completed below goal"},
		{Rule: schema.RuleMissedICPGoal, Severity: schema.SeverityWarning, Condition: "quarter completed below ICP goal"},
		{Rule: schema.RuleOnTrack, Severity: schema.SeverityInfo, Positive: true, Condition: "quarter open, attainment >= elapsed%"},
		{Rule: schema.RuleGoalHit, Severity: schema.SeverityInfo, Positive: true, Condition: "quarter completed at or above goal"},
		{Rule: schema.RuleICPOnTrack, Severity: schema.SeverityInfo, Positive: true, Condition: "quarter open, ICP attainment >= elapsed%"},
		{Rule: schema.RuleICPGoalHit, Severity: schema.SeverityInfo, Positive: true, Condition: "quarter completed at or above ICP goal"},
		{Rule: schema.RuleExcellentConversion, Severity: schema.SeverityInfo, Positive: true,
			Condition: fmt.Sprintf("conversion >= %.0f%% and more than %d registrations", excellentConversionPct, minActualForRates)},
		{Rule: schema.RuleAttendeeTargetMet, Severity: schema.SeverityInfo, Positive: true,
			Condition: fmt.Sprintf("more than %d registrations and attendees >= %s", minActualForRates, target)},
	}

	return schema.MetricsRenderModel{
		Title:       "Registration Performance Metrics",
		Description: "Products are ranked by a weighted sum of to-date ratios over the selected quarters",
		Formula:     "Score = " + strings.Join(terms, " + "),
		Factors:     factors,
		Projection:  "projected = round(actual / elapsed days x quarter days) while the quarter is open, actual once it ends",
		Rules:       rules,
	}
}
