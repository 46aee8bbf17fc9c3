package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aligeramy/somas/internal/model"
)

func TestReconcileOnEditPreservesHistory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)

	e, err := f.svc.CreateEvent(ctx, f.coach, morningPractice(date(2026, 9, 7)), created)
	require.NoError(t, err)
	all := f.occurrences(t, e.ID)
	require.Len(t, all, 53)

	var past []model.EventOccurrence
	var future model.EventOccurrence
	for _, o := range all {
		if o.Date.Before(date(2026, 10, 16)) {
			past = append(past, o)
		} else if future.Date.IsZero() {
			future = o
		}
	}
	require.Len(t, past, 6)
	pastRSVP, err := f.svc.UpsertRSVP(ctx, f.athlete, f.athlete.UserID, past[3].ID, model.RSVPGoing, created)
	require.NoError(t, err)
	_, err = f.svc.UpsertRSVP(ctx, f.athlete, f.athlete.UserID, future.ID, model.RSVPGoing, created)
	require.NoError(t, err)

	res, err := f.svc.ReconcileOnEdit(ctx, f.coach, e.ID, EventPatch{RecurrenceRule: ptr("daily")}, now)
	require.NoError(t, err)
	assert.True(t, res.Regenerated)
	assert.Equal(t, int64(47), res.Removed)
	assert.Equal(t, "FREQ=DAILY", *res.Event.RecurrenceRule)

	after := f.occurrences(t, e.ID)
	assert.Equal(t, past, after[:len(past)])

	rsvps, err := f.svc.ListRSVPs(ctx, f.coach, past[3].ID)
	require.NoError(t, err)
	require.Len(t, rsvps, 1)
	assert.Equal(t, pastRSVP.ID, rsvps[0].ID)

	_, err = f.svc.ListRSVPs(ctx, f.coach, future.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Zero(t, f.store.RSVPCount(future.ID))

	regenerated := after[len(past):]
	assert.Equal(t, int64(len(regenerated)), res.Inserted)
	assert.Equal(t, at(2026, 10, 17, 7, 0), regenerated[0].Date)
	assert.Equal(t, at(2027, 9, 7, 7, 0), regenerated[len(regenerated)-1].Date)
	for i := 1; i < len(regenerated); i++ {
		assert.Equal(t, 24*time.Hour, regenerated[i].Date.Sub(regenerated[i-1].Date))
	}
}

func TestReconcileOnEditIgnoresCosmeticChanges(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	e, err := f.svc.CreateEvent(ctx, f.coach, morningPractice(date(2026, 10, 19)), now)
	require.NoError(t, err)
	before := f.occurrences(t, e.ID)

	res, err := f.svc.ReconcileOnEdit(ctx, f.coach, e.ID, EventPatch{
		Title:          ptr("Early Practice"),
		Location:       ptr("Main hall"),
		RecurrenceRule: ptr("FREQ=WEEKLY;BYDAY=MO"),
		StartTime:      ptr("07:00:00"),
	}, now)
	require.NoError(t, err)
	assert.False(t, res.Regenerated)
	assert.Equal(t, "Early Practice", res.Event.Title)
	assert.Equal(t, before, f.occurrences(t, e.ID))
}

func TestReconcileOnEditStartTime(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	e, err := f.svc.CreateEvent(ctx, f.coach, morningPractice(date(2026, 10, 19)), now)
	require.NoError(t, err)

	res, err := f.svc.ReconcileOnEdit(ctx, f.coach, e.ID, EventPatch{StartTime: ptr("18:30")}, now)
	require.NoError(t, err)
	assert.True(t, res.Regenerated)
	assert.Equal(t, int64(53), res.Removed)

	occ := f.occurrences(t, e.ID)
	require.Len(t, occ, 53)
	for _, o := range occ {
		assert.Equal(t, 18, o.Date.Hour())
		assert.Equal(t, 30, o.Date.Minute())
	}
}

func TestReconcileOnEditEndDate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	fields := morningPractice(date(2026, 10, 19))
	fields.RecurrenceEndDate = ptr(date(2026, 11, 30))
	e, err := f.svc.CreateEvent(ctx, f.coach, fields, now)
	require.NoError(t, err)
	assert.Len(t, f.occurrences(t, e.ID), 7)

	res, err := f.svc.ReconcileOnEdit(ctx, f.coach, e.ID, EventPatch{ClearRecurrenceEndDate: true}, now)
	require.NoError(t, err)
	assert.True(t, res.Regenerated)
	assert.Nil(t, res.Event.RecurrenceEndDate)
	assert.Len(t, f.occurrences(t, e.ID), 53)

	_, err = f.svc.ReconcileOnEdit(ctx, f.coach, e.ID, EventPatch{RecurrenceEndDate: ptr(date(2026, 10, 19))}, now)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Len(t, f.occurrences(t, e.ID), 53)

	res, err = f.svc.ReconcileOnEdit(ctx, f.coach, e.ID, EventPatch{RecurrenceEndDate: ptr(date(2026, 10, 27))}, now)
	require.NoError(t, err)
	assert.True(t, res.Regenerated)
	assert.Len(t, f.occurrences(t, e.ID), 2)
}

func TestReconcileOnEditRequiresManager(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	e, err := f.svc.CreateEvent(ctx, f.coach, morningPractice(date(2026, 10, 19)), now)
	require.NoError(t, err)

	_, err = f.svc.ReconcileOnEdit(ctx, f.athlete, e.ID, EventPatch{Title: ptr("x")}, now)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.svc.ReconcileOnEdit(ctx, f.coach, e.ID, EventPatch{Title: ptr(" ")}, now)
	assert.ErrorIs(t, err, ErrValidation)
}
