package recurrence

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseReminderDays(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want LeadTimes
	}{
		{"native array", `[7, 1, 0.02]`, LeadTimes{7, 1, 0.02}},
		{"encoded array", `"[7,1,0.02]"`, LeadTimes{7, 1, 0.02}},
		{"bracketed literal", `"[7, '1', x, 0.02]"`, LeadTimes{7, 1, 0.02}},
		{"postgres literal", `"{3,1}"`, LeadTimes{3, 1}},
		{"string entries", `["2", "oops", 1]`, LeadTimes{2, 1}},
		{"drops negatives and duplicates", `[1, -1, 1, 2]`, LeadTimes{1, 2}},
		{"single number", `3`, LeadTimes{3}},
		{"null", `null`, LeadTimes{}},
		{"empty string", `""`, LeadTimes{}},
		{"object", `{"a":1}`, LeadTimes{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ParseReminderDays([]byte(tc.raw)))
		})
	}
}

func TestLeadTimesUnmarshal(t *testing.T) {
	var body struct {
		ReminderDays LeadTimes `json:"reminder_days"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"reminder_days":"[1, 0.5]"}`), &body))
	assert.Equal(t, LeadTimes{1, 0.5}, body.ReminderDays)
}

func TestReminderTypeAndDuration(t *testing.T) {
	assert.Equal(t, "7d", ReminderType(7))
	assert.Equal(t, "0.02d", ReminderType(0.02))
	assert.Equal(t, "1.5d", ReminderType(1.5))

	assert.Equal(t, 24*time.Hour, LeadDuration(1))
	assert.Equal(t, 28*time.Minute+48*time.Second, LeadDuration(0.02))
	assert.Equal(t, time.Duration(0), LeadDuration(0))
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, LeadTimes{1, 0.5}, Normalize([]float64{1, -2, 0.5, 1}))
	assert.Equal(t, LeadTimes{}, Normalize(nil))
}
