package recurrence

import "time"

// Fallback iteration bounds when no explicit end date is set. A count-only
// series gets the longer window.
const (
	defaultHorizonYears = 1
	countedHorizonYears = 2
)

// Params describes one occurrence series.
type Params struct {
	Rule      Descriptor
	StartDate time.Time
	StartTime Clock
	EndDate   *time.Time
	Count     *int
}

func (p Params) hasCount() bool {
	return p.Count != nil && *p.Count > 0
}

// EndBound returns the last calendar day the generator may visit.
func (p Params) EndBound() time.Time {
	start := DateOf(p.StartDate)
	switch {
	case p.EndDate != nil:
		return DateOf(*p.EndDate)
	case p.hasCount():
		return start.AddDate(countedHorizonYears, 0, 0)
	default:
		return start.AddDate(defaultHorizonYears, 0, 0)
	}
}

// Generate returns the ordered occurrence instants of the series.
//
// A one-time event always yields its single instant. For recurring series
// the first instant is always kept, later ones only when they are not
// before now.
func Generate(p Params, now time.Time) []time.Time {
	start := DateOf(p.StartDate)
	if !p.Rule.IsRecurring() {
		return []time.Time{p.StartTime.On(start)}
	}

	end := p.EndBound()
	originalDay := start.Day()

	var out []time.Time
	for cur, first := start, true; !cur.After(end); cur, first = step(p.Rule.Freq, cur, originalDay), false {
		if p.hasCount() && len(out) >= *p.Count {
			break
		}
		at := p.StartTime.On(cur)
		if first || !at.Before(now) {
			out = append(out, at)
		}
	}
	return out
}

func step(freq Frequency, cur time.Time, originalDay int) time.Time {
	switch freq {
	case Daily:
		return cur.AddDate(0, 0, 1)
	case Monthly:
		y, m, _ := cur.Date()
		firstOfNext := time.Date(y, m+1, 1, 0, 0, 0, 0, cur.Location())
		day := min(originalDay, daysIn(firstOfNext.Year(), firstOfNext.Month(), cur.Location()))
		return time.Date(firstOfNext.Year(), firstOfNext.Month(), day, 0, 0, 0, 0, cur.Location())
	default:
		return cur.AddDate(0, 0, 7)
	}
}

func daysIn(year int, month time.Month, loc *time.Location) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
}
