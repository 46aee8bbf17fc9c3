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

// EventFields is the input of CreateEvent. StartDate and
// RecurrenceEndDate are calendar dates; only their date part is used.
type EventFields struct {
	Title             string     `validate:"required,max=200"`
	Description       *string    `validate:"omitempty,max=2000"`
	Location          *string    `validate:"omitempty,max=200"`
	StartDate         time.Time  `validate:"required"`
	StartTime         string     `validate:"required,clock"`
	EndTime           string     `validate:"required,clock"`
	RecurrenceRule    string     `validate:"max=200"`
	RecurrenceEndDate *time.Time
	RecurrenceCount   *int       `validate:"omitempty,min=1"`
	ReminderDays      []float64
}

// paramsFor builds generator input from a stored event.
func paramsFor(e *model.Event) (recurrence.Params, error) {
	clock, err := recurrence.ParseClock(e.StartTime)
	if err != nil {
		return recurrence.Params{}, fmt.Errorf("%w: start_time: %v", ErrValidation, err)
	}
	p := recurrence.Params{
		Rule:      recurrence.FromRule(e.RecurrenceRule),
		StartDate: recurrence.DateOf(e.StartDate.UTC()),
		StartTime: clock,
		Count:     e.RecurrenceCount,
	}
	if e.RecurrenceEndDate != nil {
		end := recurrence.DateOf(e.RecurrenceEndDate.UTC())
		p.EndDate = &end
	}
	return p, nil
}

// checkEndDate rejects an end date that does not fall strictly after the
// first occurrence instant.
func checkEndDate(p recurrence.Params) error {
	if p.EndDate == nil {
		return nil
	}
	if !p.EndDate.After(p.StartTime.On(p.StartDate)) {
		return fmt.Errorf("%w: recurrence end date must be after the start date and time", ErrValidation)
	}
	return nil
}

func normalizeClock(s string) (string, error) {
	c, err := recurrence.ParseClock(s)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return c.String(), nil
}

func dateOnly(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	d := recurrence.DateOf(t.UTC())
	return &d
}

// CreateEvent stores a new event and generates its occurrences in one
// transaction.
func (s *Service) CreateEvent(ctx context.Context, caller Caller, f EventFields, now time.Time) (*model.Event, error) {
	if err := requireManager(caller); err != nil {
		return nil, err
	}
	if err := s.validateStruct(f); err != nil {
		return nil, err
	}
	title := strings.TrimSpace(f.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrValidation)
	}
	startTime, err := normalizeClock(f.StartTime)
	if err != nil {
		return nil, err
	}
	endTime, err := normalizeClock(f.EndTime)
	if err != nil {
		return nil, err
	}

	e := &model.Event{
		GymID:             caller.GymID,
		Title:             title,
		Description:       f.Description,
		Location:          f.Location,
		StartDate:         recurrence.DateOf(f.StartDate.UTC()),
		StartTime:         startTime,
		EndTime:           endTime,
		RecurrenceRule:    recurrence.Parse(f.RecurrenceRule).Rule(),
		RecurrenceEndDate: dateOnly(f.RecurrenceEndDate),
		RecurrenceCount:   f.RecurrenceCount,
		ReminderDays:      pq.Float64Array(recurrence.Normalize(f.ReminderDays)),
		CreatedBy:         caller.UserID,
	}
	p, err := paramsFor(e)
	if err != nil {
		return nil, err
	}
	if err := checkEndDate(p); err != nil {
		return nil, err
	}

	var inserted int64
	err = s.store.InTx(ctx, func(tx db.Store) error {
		if err := tx.CreateEvent(ctx, e); err != nil {
			return fmt.Errorf("create event: %w", err)
		}
		n, err := createOccurrences(ctx, tx, e.ID, p, now)
		inserted = n
		return err
	})
	if err != nil {
		return nil, err
	}
	metrics.OccurrencesGenerated.Add(float64(inserted))

	log.Info().
		Str("event_id", e.ID.String()).
		Str("rule", p.Rule.Format()).
		Int64("occurrences", inserted).
		Msg("event created")
	return e, nil
}

func (s *Service) GetEvent(ctx context.Context, caller Caller, eventID uuid.UUID) (*model.Event, error) {
	e, err := s.store.GetEvent(ctx, caller.GymID, eventID)
	if err != nil {
		return nil, storeErr(err, "event")
	}
	return e, nil
}

func (s *Service) ListEvents(ctx context.Context, caller Caller) ([]model.Event, error) {
	events, err := s.store.ListEvents(ctx, caller.GymID)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

// DeleteEvent removes the event together with its occurrences, RSVPs and
// reminder logs.
func (s *Service) DeleteEvent(ctx context.Context, caller Caller, eventID uuid.UUID) error {
	if err := requireManager(caller); err != nil {
		return err
	}
	if err := s.store.DeleteEvent(ctx, caller.GymID, eventID); err != nil {
		return storeErr(err, "event")
	}
	log.Info().Str("event_id", eventID.String()).Msg("event deleted")
	return nil
}

// ListOccurrences returns the event's occurrences, optionally bounded by an
// inclusive [from, to] window.
func (s *Service) ListOccurrences(ctx context.Context, caller Caller, eventID uuid.UUID, from, to *time.Time) ([]model.EventOccurrence, error) {
	if from != nil && to != nil && to.Before(*from) {
		return nil, fmt.Errorf("%w: range end is before range start", ErrValidation)
	}
	if _, err := s.GetEvent(ctx, caller, eventID); err != nil {
		return nil, err
	}
	out, err := s.store.ListOccurrences(ctx, eventID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list occurrences: %w", err)
	}
	return out, nil
}
