package recurrence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teambition/rrule-go"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func at(y int, m time.Month, d, hh, mm int) time.Time {
	return time.Date(y, m, d, hh, mm, 0, 0, time.UTC)
}

var seven = Clock{Hour: 7}

func TestGenerateOneTime(t *testing.T) {
	now := at(2026, 10, 16, 9, 0)

	past := Generate(Params{StartDate: date(2026, 1, 5), StartTime: seven}, now)
	assert.Equal(t, []time.Time{at(2026, 1, 5, 7, 0)}, past)

	future := Generate(Params{StartDate: date(2027, 3, 1), StartTime: Clock{Hour: 18, Minute: 30}}, now)
	assert.Equal(t, []time.Time{at(2027, 3, 1, 18, 30)}, future)
}

func TestGenerateMorningPractice(t *testing.T) {
	now := at(2026, 10, 16, 9, 0)
	monday := date(2026, 10, 19)
	require.Equal(t, time.Monday, monday.Weekday())

	got := Generate(Params{Rule: Parse("FREQ=WEEKLY;BYDAY=MO"), StartDate: monday, StartTime: seven}, now)

	require.Len(t, got, 53)
	assert.Equal(t, at(2026, 10, 19, 7, 0), got[0])
	assert.Equal(t, at(2027, 10, 18, 7, 0), got[len(got)-1])
	for _, occ := range got {
		assert.Equal(t, time.Monday, occ.Weekday())
		assert.Equal(t, 7, occ.Hour())
		assert.Equal(t, 0, occ.Minute())
	}
}

func TestGenerateWeeklySpacingMatchesRRule(t *testing.T) {
	now := at(2026, 10, 16, 9, 0)
	start := date(2027, 4, 16)
	end := date(2027, 9, 1)
	p := Params{Rule: Parse("WEEKLY"), StartDate: start, StartTime: seven, EndDate: &end}

	got := Generate(p, now)
	require.NotEmpty(t, got)
	for i := 1; i < len(got); i++ {
		assert.Equal(t, 7*24*time.Hour, got[i].Sub(got[i-1]))
	}
	assert.False(t, DateOf(got[len(got)-1]).After(end))

	r, err := rrule.NewRRule(rrule.ROption{Freq: rrule.WEEKLY, Dtstart: seven.On(start), Until: seven.On(end)})
	require.NoError(t, err)
	assert.Equal(t, r.All(), got)
}

func TestGenerateDailyMatchesRRule(t *testing.T) {
	now := at(2026, 10, 16, 9, 0)
	start := date(2026, 11, 1)
	end := date(2026, 12, 15)
	p := Params{Rule: Parse("DAILY"), StartDate: start, StartTime: Clock{Hour: 6, Minute: 15}, EndDate: &end}

	r, err := rrule.NewRRule(rrule.ROption{Freq: rrule.DAILY, Dtstart: p.StartTime.On(start), Until: p.StartTime.On(end)})
	require.NoError(t, err)
	assert.Equal(t, r.All(), Generate(p, now))
}

func TestGenerateMonthlyClamp(t *testing.T) {
	now := at(2026, 10, 16, 9, 0)

	got := Generate(Params{Rule: Parse("MONTHLY"), StartDate: date(2027, 1, 31), StartTime: seven}, now)
	require.GreaterOrEqual(t, len(got), 4)
	assert.Equal(t, at(2027, 1, 31, 7, 0), got[0])
	assert.Equal(t, at(2027, 2, 28, 7, 0), got[1])
	assert.Equal(t, at(2027, 3, 31, 7, 0), got[2])
	assert.Equal(t, at(2027, 4, 30, 7, 0), got[3])

	leap := Generate(Params{Rule: Parse("MONTHLY"), StartDate: date(2028, 1, 31), StartTime: seven}, now)
	require.GreaterOrEqual(t, len(leap), 3)
	assert.Equal(t, at(2028, 2, 29, 7, 0), leap[1])
	assert.Equal(t, at(2028, 3, 31, 7, 0), leap[2])
}

func TestGenerateSkipsPastRecurrencesButKeepsFirst(t *testing.T) {
	now := at(2026, 10, 16, 9, 0)
	start := date(2026, 9, 28) // three Mondays ago
	end := date(2026, 11, 2)

	got := Generate(Params{Rule: Parse("WEEKLY"), StartDate: start, StartTime: seven, EndDate: &end}, now)
	assert.Equal(t, []time.Time{
		at(2026, 9, 28, 7, 0),
		at(2026, 10, 19, 7, 0),
		at(2026, 10, 26, 7, 0),
		at(2026, 11, 2, 7, 0),
	}, got)
}

func TestGenerateSameDayBoundary(t *testing.T) {
	start := date(2026, 10, 14)
	end := date(2026, 10, 17)
	p := Params{Rule: Parse("DAILY"), StartDate: start, StartTime: Clock{Hour: 9}, EndDate: &end}

	got := Generate(p, at(2026, 10, 16, 9, 0))
	assert.Equal(t, []time.Time{
		at(2026, 10, 14, 9, 0),
		at(2026, 10, 16, 9, 0),
		at(2026, 10, 17, 9, 0),
	}, got)
}

func TestGenerateCount(t *testing.T) {
	now := at(2026, 10, 16, 9, 0)
	count := 3

	got := Generate(Params{Rule: Parse("WEEKLY"), StartDate: date(2026, 11, 2), StartTime: seven, Count: &count}, now)
	assert.Equal(t, []time.Time{at(2026, 11, 2, 7, 0), at(2026, 11, 9, 7, 0), at(2026, 11, 16, 7, 0)}, got)

	end := date(2026, 11, 10)
	capped := Generate(Params{Rule: Parse("WEEKLY"), StartDate: date(2026, 11, 2), StartTime: seven, Count: &count, EndDate: &end}, now)
	assert.Len(t, capped, 2)
}

func TestEndBoundFallbacks(t *testing.T) {
	now := at(2026, 10, 16, 9, 0)
	start := date(2027, 1, 1)

	plain := Generate(Params{Rule: Parse("DAILY"), StartDate: start, StartTime: seven}, now)
	assert.Len(t, plain, 366)
	assert.Equal(t, at(2028, 1, 1, 7, 0), plain[len(plain)-1])

	count := 1000
	counted := Generate(Params{Rule: Parse("DAILY"), StartDate: start, StartTime: seven, Count: &count}, now)
	assert.Len(t, counted, 732)
	assert.Equal(t, at(2029, 1, 1, 7, 0), counted[len(counted)-1])
}
