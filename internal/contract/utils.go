package contract

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/regpulse/regpulse/schema"
)

// Color variables for console output.
var (
	CriticalColor = color.New(color.FgRed, color.Bold) // CriticalColor represents standard danger.
	WarningColor  = color.New(color.FgYellow)          // WarningColor represents standard caution, not bold.
	InfoColor     = color.New(color.FgCyan)            // InfoColor represents informational / low-priority signal.
	PositiveColor = color.New(color.FgGreen, color.Bold)
)

// GetSeverityLabel returns the plain severity label used in CSV, JSON and tables.
// Positive insights are labelled "positive" regardless of severity.
func GetSeverityLabel(in schema.Insight) string {
	if in.IsPositive {
		return "positive"
	}
	return string(in.Severity)
}

// GetColorSeverityLabel returns a colored severity label for console output (table).
func GetColorSeverityLabel(in schema.Insight) string {
	text := GetSeverityLabel(in)
	if in.IsPositive {
		return PositiveColor.Sprint(text)
	}
	switch in.Severity {
	case schema.SeverityCritical:
		return CriticalColor.Sprint(text)
	case schema.SeverityWarning:
		return WarningColor.Sprint(text)
	default:
		return InfoColor.Sprint(text)
	}
}

// GetColorStatus returns a colored sync status for console output.
func GetColorStatus(status schema.SyncStatus) string {
	text := string(status)
	switch status {
	case schema.StatusLive:
		return PositiveColor.Sprint(text)
	case schema.StatusStale:
		return WarningColor.Sprint(text)
	case schema.StatusError:
		return CriticalColor.Sprint(text)
	default:
		return InfoColor.Sprint(text)
	}
}

// GetAttainmentLabel buckets an attainment percentage the way goal cards are colored:
// at or above 100 is "met", at or above 70 is "close", anything lower is "behind".
func GetAttainmentLabel(pct float64) string {
	switch {
	case pct >= 100:
		return "met"
	case pct >= 70:
		return "close"
	default:
		return "behind"
	}
}

// GetColorAttainmentLabel returns GetAttainmentLabel colored for console output.
func GetColorAttainmentLabel(pct float64) string {
	text := GetAttainmentLabel(pct)
	switch text {
	case "met":
		return PositiveColor.Sprint(text)
	case "close":
		return WarningColor.Sprint(text)
	default:
		return CriticalColor.Sprint(text)
	}
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. An empty path means os.Stdout.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// TruncateText truncates a string to a maximum width with an ellipsis suffix.
// Requires maxWidth > 3 so there is room for "..." and at least one character.
func TruncateText(s string, maxWidth int) string {
	runes := []rune(s)
	if len(runes) > maxWidth && maxWidth > 3 {
		return string(runes[:maxWidth-3]) + "..."
	}
	return s
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
