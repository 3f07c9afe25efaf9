package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// DateFormat is the calendar date layout used by the feed.
const DateFormat = "2006-01-02"

// eventWire mirrors the feed's field names with raw values so that
// missing, null, stringly-typed or fractional numbers all decode.
type eventWire struct {
	Date    json.RawMessage `json:"date"`
	Product json.RawMessage `json:"product"`
	Quarter json.RawMessage `json:"q"`
	Reg     json.RawMessage `json:"reg"`
	IcpR    json.RawMessage `json:"icpR"`
	NicpR   json.RawMessage `json:"nicpR"`
	Att     json.RawMessage `json:"att"`
	IcpA    json.RawMessage `json:"icpA"`
	NicpA   json.RawMessage `json:"nicpA"`
	DR      json.RawMessage `json:"dR"`
	PR      json.RawMessage `json:"pR"`
}

// UnmarshalJSON decodes an event leniently. Only a non-object value is an error.
func (e *Event) UnmarshalJSON(data []byte) error {
	var w eventWire
	if err := json.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("event is not an object: %w", err)
	}
	*e = Event{
		Date:    ParseDate(lenientString(w.Date)),
		Product: strings.TrimSpace(lenientString(w.Product)),
		Quarter: strings.TrimSpace(lenientString(w.Quarter)),
		Reg:     lenientInt(w.Reg),
		IcpR:    lenientInt(w.IcpR),
		NicpR:   lenientInt(w.NicpR),
		Att:     lenientInt(w.Att),
		IcpA:    lenientInt(w.IcpA),
		NicpA:   lenientInt(w.NicpA),
		DR:      lenientInt(w.DR),
		PR:      lenientInt(w.PR),
	}
	return nil
}

// MarshalJSON encodes the event with the feed's field names and a calendar date.
func (e Event) MarshalJSON() ([]byte, error) {
	type plain struct {
		Date    string `json:"date"`
		Product string `json:"product"`
		Quarter string `json:"q"`
		Reg     int    `json:"reg"`
		IcpR    int    `json:"icpR"`
		NicpR   int    `json:"nicpR"`
		Att     int    `json:"att"`
		IcpA    int    `json:"icpA"`
		NicpA   int    `json:"nicpA"`
		DR      int    `json:"dR"`
		PR      int    `json:"pR"`
	}
	return json.Marshal(plain{
		Date:    FormatDate(e.Date),
		Product: e.Product,
		Quarter: e.Quarter,
		Reg:     e.Reg,
		IcpR:    e.IcpR,
		NicpR:   e.NicpR,
		Att:     e.Att,
		IcpA:    e.IcpA,
		NicpA:   e.NicpA,
		DR:      e.DR,
		PR:      e.PR,
	})
}

// Validate lists the well-formedness invariants this event violates.
// An empty result means the event is consistent.
func (e Event) Validate() []string {
	var issues []string
	if e.Reg != e.IcpR+e.NicpR {
		issues = append(issues, fmt.Sprintf("reg %d != icpR %d + nicpR %d", e.Reg, e.IcpR, e.NicpR))
	}
	if e.Att != e.IcpA+e.NicpA {
		issues = append(issues, fmt.Sprintf("att %d != icpA %d + nicpA %d", e.Att, e.IcpA, e.NicpA))
	}
	if e.DR+e.PR > e.Reg {
		issues = append(issues, fmt.Sprintf("dR %d + pR %d > reg %d", e.DR, e.PR, e.Reg))
	}
	if e.Date.IsZero() {
		issues = append(issues, "missing or invalid date")
	}
	return issues
}

// ParseDate accepts a calendar date or an RFC3339 timestamp and returns the zero time otherwise.
func ParseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	if t, err := time.Parse(DateFormat, s); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	return time.Time{}
}

// FormatDate renders a date as YYYY-MM-DD, or "" for the zero time.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateFormat)
}

func lenientString(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

func lenientInt(raw json.RawMessage) int {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return truncate(f)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return truncate(f)
		}
	}
	return 0
}

func truncate(f float64) int {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return int(f)
}
