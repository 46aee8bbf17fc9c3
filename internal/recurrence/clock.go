package recurrence

import (
	"fmt"
	"time"
)

// Clock is a wall-clock time of day stored as "HH:MM".
type Clock struct {
	Hour   int
	Minute int
}

// ParseClock accepts "HH:MM" and tolerates a trailing seconds part
// ("HH:MM:SS") as returned by some drivers.
func ParseClock(s string) (Clock, error) {
	if len(s) < 5 {
		return Clock{}, fmt.Errorf("invalid time of day %q", s)
	}
	t, err := time.Parse("15:04", s[:5])
	if err != nil {
		return Clock{}, fmt.Errorf("invalid time of day %q", s)
	}
	return Clock{Hour: t.Hour(), Minute: t.Minute()}, nil
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// On places the clock on the calendar day of date.
func (c Clock) On(date time.Time) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, c.Hour, c.Minute, 0, 0, date.Location())
}

// DateOf truncates t to midnight of its calendar day.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// Naive converts an instant to the wall clock of loc, re-expressed in UTC.
// Occurrence dates are stored as naive timestamps, so every "now" handed to
// the generator goes through here first.
func Naive(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	w := t.In(loc)
	return time.Date(w.Year(), w.Month(), w.Day(), w.Hour(), w.Minute(), w.Second(), w.Nanosecond(), time.UTC)
}
