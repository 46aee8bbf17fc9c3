package recurrence

import (
	"strings"
	"time"

	"github.com/teambition/rrule-go"
)

// Frequency is the repeat unit of a Descriptor.
type Frequency int

const (
	None Frequency = iota
	Daily
	Weekly
	Monthly
)

func (f Frequency) String() string {
	switch f {
	case Daily:
		return "DAILY"
	case Weekly:
		return "WEEKLY"
	case Monthly:
		return "MONTHLY"
	default:
		return "NONE"
	}
}

// Descriptor is the parsed form of an event's recurrence rule text.
// Day is only meaningful for Weekly and may be nil.
type Descriptor struct {
	Freq Frequency
	Day  *time.Weekday
}

var dayTokens = map[string]time.Weekday{
	"MO": time.Monday,
	"TU": time.Tuesday,
	"WE": time.Wednesday,
	"TH": time.Thursday,
	"FR": time.Friday,
	"SA": time.Saturday,
	"SU": time.Sunday,
}

// Parse reads a rule string. It never fails: blank text means no
// recurrence, and text naming no known frequency is treated as weekly.
func Parse(text string) Descriptor {
	upper := strings.ToUpper(strings.TrimSpace(text))
	if upper == "" {
		return Descriptor{Freq: None}
	}
	switch {
	case strings.Contains(upper, "DAILY"):
		return Descriptor{Freq: Daily}
	case strings.Contains(upper, "WEEKLY"):
		return Descriptor{Freq: Weekly, Day: parseDay(upper)}
	case strings.Contains(upper, "MONTHLY"):
		return Descriptor{Freq: Monthly}
	}
	return Descriptor{Freq: Weekly, Day: parseDay(upper)}
}

// FromRule parses a nullable stored rule.
func FromRule(rule *string) Descriptor {
	if rule == nil {
		return Descriptor{Freq: None}
	}
	return Parse(*rule)
}

func parseDay(upper string) *time.Weekday {
	if i := strings.Index(upper, "BYDAY="); i >= 0 && len(upper) >= i+8 {
		if wd, ok := dayTokens[upper[i+6:i+8]]; ok {
			return &wd
		}
	}
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		if strings.Contains(upper, strings.ToUpper(wd.String())) {
			d := wd
			return &d
		}
	}
	return nil
}

func (d Descriptor) IsRecurring() bool {
	return d.Freq != None
}

// Format renders the canonical rule text. The no-recurrence descriptor
// formats to "".
func (d Descriptor) Format() string {
	var opt rrule.ROption
	switch d.Freq {
	case Daily:
		opt.Freq = rrule.DAILY
	case Weekly:
		opt.Freq = rrule.WEEKLY
		if d.Day != nil {
			opt.Byweekday = []rrule.Weekday{rruleWeekday(*d.Day)}
		}
	case Monthly:
		opt.Freq = rrule.MONTHLY
	default:
		return ""
	}
	return opt.RRuleString()
}

// Rule returns the value stored in the recurrence_rule column.
func (d Descriptor) Rule() *string {
	if !d.IsRecurring() {
		return nil
	}
	s := d.Format()
	return &s
}

func rruleWeekday(wd time.Weekday) rrule.Weekday {
	return [...]rrule.Weekday{rrule.SU, rrule.MO, rrule.TU, rrule.WE, rrule.TH, rrule.FR, rrule.SA}[wd]
}
