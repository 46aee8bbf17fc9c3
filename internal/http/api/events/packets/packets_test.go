package packets

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aligeramy/somas/internal/recurrence"
)

func TestUpdateEventRequestDistinguishesNullFromAbsent(t *testing.T) {
	var req UpdateEventRequest
	require.NoError(t, json.Unmarshal([]byte(`{"recurrence_end_date": null, "recurrence_count": 4}`), &req))

	assert.True(t, req.RecurrenceEndDate.Set)
	assert.Nil(t, req.RecurrenceEndDate.Value)
	assert.True(t, req.RecurrenceCount.Set)
	assert.Equal(t, 4, *req.RecurrenceCount.Value)
	assert.False(t, req.RecurrenceRule.Set)
	assert.Nil(t, req.ReminderDays)
}

func TestCreateEventRequestReminderDaysForms(t *testing.T) {
	cases := map[string]recurrence.LeadTimes{
		`[1, 0.02]`:      {1, 0.02},
		`"[1, 0.02]"`:    {1, 0.02},
		`"[7, 'x', 1]"`:  {7, 1},
		`["2", "oops"]`:  {2},
	}
	for raw, want := range cases {
		var req CreateEventRequest
		require.NoError(t, json.Unmarshal([]byte(`{"reminder_days": `+raw+`}`), &req), raw)
		assert.Equal(t, want, req.ReminderDays, raw)
	}
}
