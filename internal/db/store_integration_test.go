package db

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aligeramy/somas/internal/model"
)

// Runs against a real PostgreSQL when TEST_DATABASE_URL is set.
func TestStoreIntegration(t *testing.T) {
	store, err := InitTestDB("../../migrations")
	if err != nil {
		t.Skipf("integration database unavailable: %v", err)
	}
	ctx := context.Background()

	gymID, coachID := uuid.New(), uuid.New()
	_, err = DB.ExecContext(ctx, `INSERT INTO gyms (id, name) VALUES ($1, 'Integration Gym')`, gymID)
	require.NoError(t, err)
	_, err = DB.ExecContext(ctx,
		`INSERT INTO users (id, gym_id, email, role) VALUES ($1, $2, $3, 'coach')`,
		coachID, gymID, coachID.String()+"@example.com")
	require.NoError(t, err)
	t.Cleanup(func() {
		_, _ = DB.Exec(`DELETE FROM gyms WHERE id = $1`, gymID)
	})

	rule := "FREQ=WEEKLY;BYDAY=MO"
	event := &model.Event{
		GymID:          gymID,
		Title:          "Morning Practice",
		StartDate:      time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC),
		StartTime:      "07:00",
		EndTime:        "08:30",
		RecurrenceRule: &rule,
		ReminderDays:   []float64{1},
		CreatedBy:      coachID,
	}

	t.Run("Event Management", func(t *testing.T) {
		require.NoError(t, store.CreateEvent(ctx, event))

		got, err := store.GetEvent(ctx, gymID, event.ID)
		require.NoError(t, err)
		assert.Equal(t, "Morning Practice", got.Title)
		assert.Equal(t, rule, *got.RecurrenceRule)
	})

	t.Run("Occurrence Insert Is Idempotent", func(t *testing.T) {
		dates := []time.Time{
			time.Date(2026, 10, 19, 7, 0, 0, 0, time.UTC),
			time.Date(2026, 10, 26, 7, 0, 0, 0, time.UTC),
		}
		n, err := store.InsertOccurrences(ctx, event.ID, dates)
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)

		n, err = store.InsertOccurrences(ctx, event.ID, dates)
		require.NoError(t, err)
		assert.Zero(t, n)

		occ, err := store.ListOccurrences(ctx, event.ID, nil, nil)
		require.NoError(t, err)
		require.Len(t, occ, 2)
		assert.True(t, occ[0].Date.Equal(dates[0]))
	})

	t.Run("Custom Occurrence Conflict", func(t *testing.T) {
		err := store.InsertCustomOccurrence(ctx, &model.EventOccurrence{
			EventID: event.ID,
			Date:    time.Date(2026, 10, 19, 7, 0, 0, 0, time.UTC),
		})
		assert.True(t, IsUniqueViolation(err))
	})

	t.Run("RSVP Upsert", func(t *testing.T) {
		occ, err := store.ListOccurrences(ctx, event.ID, nil, nil)
		require.NoError(t, err)

		first := &model.RSVP{UserID: coachID, OccurrenceID: occ[0].ID, Status: model.RSVPGoing}
		require.NoError(t, store.UpsertRSVP(ctx, first))
		second := &model.RSVP{UserID: coachID, OccurrenceID: occ[0].ID, Status: model.RSVPNotGoing}
		require.NoError(t, store.UpsertRSVP(ctx, second))
		assert.Equal(t, first.ID, second.ID)

		rsvps, err := store.ListRSVPs(ctx, occ[0].ID)
		require.NoError(t, err)
		require.Len(t, rsvps, 1)
		assert.Equal(t, model.RSVPNotGoing, rsvps[0].Status)
	})
}
