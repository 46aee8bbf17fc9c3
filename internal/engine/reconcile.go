package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/aligeramy/somas/internal/db"
	"github.com/aligeramy/somas/internal/metrics"
	"github.com/aligeramy/somas/internal/model"
	"github.com/aligeramy/somas/internal/recurrence"
)

// EventPatch is a partial event update. Nil fields are left unchanged; an
// empty RecurrenceRule turns the event into a one-time event.
type EventPatch struct {
	Title                  *string    `validate:"omitempty,max=200"`
	Description            *string    `validate:"omitempty,max=2000"`
	Location               *string    `validate:"omitempty,max=200"`
	StartDate              *time.Time
	StartTime              *string    `validate:"omitempty,clock"`
	EndTime                *string    `validate:"omitempty,clock"`
	RecurrenceRule         *string    `validate:"omitempty,max=200"`
	RecurrenceEndDate      *time.Time
	ClearRecurrenceEndDate bool
	RecurrenceCount        *int       `validate:"omitempty,min=1"`
	ClearRecurrenceCount   bool
	ReminderDays           []float64
}

// EditResult reports what ReconcileOnEdit did to the occurrence set.
type EditResult struct {
	Event       *model.Event
	Regenerated bool
	Removed     int64
	Inserted    int64
}

func (p EventPatch) apply(e *model.Event) error {
	if p.Title != nil {
		title := strings.TrimSpace(*p.Title)
		if title == "" {
			return fmt.Errorf("%w: title is required", ErrValidation)
		}
		e.Title = title
	}
	if p.Description != nil {
		e.Description = p.Description
	}
	if p.Location != nil {
		e.Location = p.Location
	}
	if p.StartDate != nil {
		e.StartDate = recurrence.DateOf(p.StartDate.UTC())
	}
	if p.StartTime != nil {
		c, err := normalizeClock(*p.StartTime)
		if err != nil {
			return err
		}
		e.StartTime = c
	}
	if p.EndTime != nil {
		c, err := normalizeClock(*p.EndTime)
		if err != nil {
			return err
		}
		e.EndTime = c
	}
	if p.RecurrenceRule != nil {
		e.RecurrenceRule = recurrence.Parse(*p.RecurrenceRule).Rule()
	}
	switch {
	case p.ClearRecurrenceEndDate:
		e.RecurrenceEndDate = nil
	case p.RecurrenceEndDate != nil:
		e.RecurrenceEndDate = dateOnly(p.RecurrenceEndDate)
	}
	switch {
	case p.ClearRecurrenceCount:
		e.RecurrenceCount = nil
	case p.RecurrenceCount != nil:
		n := *p.RecurrenceCount
		e.RecurrenceCount = &n
	}
	if p.ReminderDays != nil {
		e.ReminderDays = pq.Float64Array(recurrence.Normalize(p.ReminderDays))
	}
	return nil
}

// seriesKey holds the fields whose change forces the future window to be
// rebuilt.
type seriesKey struct {
	rule      string
	startTime string
	endDate   *time.Time
}

func keyOf(e *model.Event) seriesKey {
	k := seriesKey{
		rule:      recurrence.FromRule(e.RecurrenceRule).Format(),
		startTime: e.StartTime,
		endDate:   dateOnly(e.RecurrenceEndDate),
	}
	if c, err := recurrence.ParseClock(e.StartTime); err == nil {
		k.startTime = c.String()
	}
	return k
}

func (k seriesKey) differs(o seriesKey) bool {
	if k.rule != o.rule || k.startTime != o.startTime {
		return true
	}
	if (k.endDate == nil) != (o.endDate == nil) {
		return true
	}
	return k.endDate != nil && !k.endDate.Equal(*o.endDate)
}

func createOccurrences(ctx context.Context, st db.Store, eventID uuid.UUID, p recurrence.Params, now time.Time) (int64, error) {
	dates := recurrence.Generate(p, now)
	n, err := st.InsertOccurrences(ctx, eventID, dates)
	if err != nil {
		return 0, fmt.Errorf("insert occurrences: %w", err)
	}
	return n, nil
}

// CreateOccurrences generates the series and inserts it, skipping dates
// the event already has. It returns the number of new rows.
func (s *Service) CreateOccurrences(ctx context.Context, eventID uuid.UUID, p recurrence.Params, now time.Time) (int64, error) {
	n, err := createOccurrences(ctx, s.store, eventID, p, now)
	if err != nil {
		return 0, err
	}
	metrics.OccurrencesGenerated.Add(float64(n))
	return n, nil
}

// ReconcileOnEdit applies patch to the event. When the rule, start time or
// end date changed, occurrences from today onward are dropped together with
// their RSVPs and the series is generated again. Earlier occurrences are
// never touched.
func (s *Service) ReconcileOnEdit(ctx context.Context, caller Caller, eventID uuid.UUID, patch EventPatch, now time.Time) (*EditResult, error) {
	if err := requireManager(caller); err != nil {
		return nil, err
	}
	if err := s.validateStruct(patch); err != nil {
		return nil, err
	}

	res := &EditResult{}
	err := s.store.InTx(ctx, func(tx db.Store) error {
		e, err := tx.GetEvent(ctx, caller.GymID, eventID)
		if err != nil {
			return storeErr(err, "event")
		}
		before := keyOf(e)
		if err := patch.apply(e); err != nil {
			return err
		}
		p, err := paramsFor(e)
		if err != nil {
			return err
		}
		if err := checkEndDate(p); err != nil {
			return err
		}
		if err := tx.UpdateEvent(ctx, e); err != nil {
			return storeErr(err, "update event")
		}
		res.Event = e

		if !before.differs(keyOf(e)) {
			return nil
		}

		ids, err := tx.ListOccurrenceIDsFrom(ctx, e.ID, recurrence.DateOf(now))
		if err != nil {
			return fmt.Errorf("list future occurrences: %w", err)
		}
		if res.Removed, err = deleteOccurrences(ctx, tx, ids); err != nil {
			return err
		}
		if res.Inserted, err = createOccurrences(ctx, tx, e.ID, p, now); err != nil {
			return err
		}
		res.Regenerated = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	if res.Regenerated {
		metrics.OccurrencesDeleted.WithLabelValues("regenerate").Add(float64(res.Removed))
		metrics.OccurrencesGenerated.Add(float64(res.Inserted))
		log.Info().
			Str("event_id", eventID.String()).
			Int64("removed", res.Removed).
			Int64("inserted", res.Inserted).
			Msg("future occurrences regenerated")
	}
	return res, nil
}
