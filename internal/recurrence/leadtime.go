package recurrence

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// LeadTimes is the reminder_days list of an event: lead times in days,
// fractions allowed (0.02 is roughly 30 minutes).
type LeadTimes []float64

// UnmarshalJSON accepts a JSON array, a string holding a JSON array, or a
// bracketed list literal. Entries that do not parse are dropped.
func (l *LeadTimes) UnmarshalJSON(b []byte) error {
	*l = ParseReminderDays(b)
	return nil
}

// ParseReminderDays normalizes the accepted reminder_days encodings.
func ParseReminderDays(raw []byte) LeadTimes {
	var items []any
	if err := json.Unmarshal(raw, &items); err == nil {
		return normalize(items)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return ParseReminderDaysString(s)
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return normalize([]any{n})
	}
	return LeadTimes{}
}

// ParseReminderDaysString handles the string forms: an encoded JSON array
// or a loose "[1, 0.5]" / "{1,0.5}" literal.
func ParseReminderDaysString(s string) LeadTimes {
	var items []any
	if err := json.Unmarshal([]byte(s), &items); err == nil {
		return normalize(items)
	}
	trimmed := strings.Trim(strings.TrimSpace(s), "[]{}")
	if strings.TrimSpace(trimmed) == "" {
		return LeadTimes{}
	}
	parts := strings.Split(trimmed, ",")
	items = make([]any, 0, len(parts))
	for _, p := range parts {
		items = append(items, strings.Trim(strings.TrimSpace(p), `"'`))
	}
	return normalize(items)
}

// Normalize applies the same filtering to an already numeric list.
func Normalize(days []float64) LeadTimes {
	items := make([]any, len(days))
	for i, d := range days {
		items[i] = d
	}
	return normalize(items)
}

func normalize(items []any) LeadTimes {
	out := make(LeadTimes, 0, len(items))
	seen := make(map[float64]struct{}, len(items))
	for _, it := range items {
		var v float64
		switch x := it.(type) {
		case float64:
			v = x
		case string:
			f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
			if err != nil {
				continue
			}
			v = f
		default:
			continue
		}
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// ReminderType is the dedup label for a lead time, e.g. "7d" or "0.02d".
func ReminderType(days float64) string {
	return strconv.FormatFloat(days, 'f', -1, 64) + "d"
}

// LeadDuration converts a lead time in days to a duration, rounded to the
// second.
func LeadDuration(days float64) time.Duration {
	return time.Duration(math.Round(days*24*60*60)) * time.Second
}
