package recurrence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	monday := time.Monday
	friday := time.Friday

	cases := []struct {
		name string
		in   string
		want Descriptor
	}{
		{"empty", "", Descriptor{Freq: None}},
		{"blank", "   ", Descriptor{Freq: None}},
		{"daily", "FREQ=DAILY", Descriptor{Freq: Daily}},
		{"daily lowercase", "daily", Descriptor{Freq: Daily}},
		{"weekly with day", "FREQ=WEEKLY;BYDAY=MO", Descriptor{Freq: Weekly, Day: &monday}},
		{"weekly day name", "weekly on friday", Descriptor{Freq: Weekly, Day: &friday}},
		{"weekly no day", "WEEKLY", Descriptor{Freq: Weekly}},
		{"monthly", "RRULE:FREQ=MONTHLY", Descriptor{Freq: Monthly}},
		{"daily wins over monthly", "DAILY MONTHLY", Descriptor{Freq: Daily}},
		{"garbage falls back to weekly", "every so often", Descriptor{Freq: Weekly}},
		{"unknown byday token", "FREQ=WEEKLY;BYDAY=XX", Descriptor{Freq: Weekly}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Parse(tc.in)
			assert.Equal(t, tc.want.Freq, got.Freq)
			if tc.want.Day == nil {
				assert.Nil(t, got.Day)
			} else {
				require.NotNil(t, got.Day)
				assert.Equal(t, *tc.want.Day, *got.Day)
			}
		})
	}
}

func TestFormatRoundTrip(t *testing.T) {
	wed := time.Wednesday
	for _, d := range []Descriptor{
		{Freq: Daily},
		{Freq: Weekly},
		{Freq: Weekly, Day: &wed},
		{Freq: Monthly},
	} {
		text := d.Format()
		assert.Contains(t, text, "FREQ="+d.Freq.String())
		assert.Equal(t, text, Parse(text).Format())
	}

	text := Descriptor{Freq: Weekly, Day: &wed}.Format()
	assert.Contains(t, text, "BYDAY=WE")
}

func TestFormatNone(t *testing.T) {
	d := Parse("")
	assert.Equal(t, "", d.Format())
	assert.Nil(t, d.Rule())
	assert.False(t, d.IsRecurring())

	rule := Parse("weekly").Rule()
	require.NotNil(t, rule)
	assert.Equal(t, Weekly, FromRule(rule).Freq)
	assert.Equal(t, None, FromRule(nil).Freq)
}

func TestParseClock(t *testing.T) {
	c, err := ParseClock("07:05")
	require.NoError(t, err)
	assert.Equal(t, Clock{Hour: 7, Minute: 5}, c)
	assert.Equal(t, "07:05", c.String())

	c, err = ParseClock("18:30:00")
	require.NoError(t, err)
	assert.Equal(t, "18:30", c.String())

	for _, bad := range []string{"", "7:5", "25:00", "ab:cd"} {
		_, err := ParseClock(bad)
		assert.Error(t, err, bad)
	}
}

func TestNaive(t *testing.T) {
	loc := time.FixedZone("EST", -5*60*60)
	instant := time.Date(2026, 10, 16, 3, 30, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 10, 15, 22, 30, 0, 0, time.UTC), Naive(instant, loc))
	assert.Equal(t, instant, Naive(instant, nil))
}
