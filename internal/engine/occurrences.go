package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/aligeramy/somas/internal/db"
	"github.com/aligeramy/somas/internal/metrics"
	"github.com/aligeramy/somas/internal/model"
)

// getOccurrence loads an occurrence and hides those of other gyms.
func getOccurrence(ctx context.Context, st db.Store, caller Caller, id uuid.UUID) (*model.EventOccurrence, error) {
	o, err := st.GetOccurrence(ctx, id)
	if err != nil {
		return nil, storeErr(err, "occurrence")
	}
	if o.GymID != caller.GymID {
		return nil, fmt.Errorf("%w: occurrence", ErrNotFound)
	}
	return o, nil
}

func (s *Service) setStatus(ctx context.Context, caller Caller, id uuid.UUID, status model.OccurrenceStatus) (*model.EventOccurrence, error) {
	if err := requireManager(caller); err != nil {
		return nil, err
	}
	o, err := getOccurrence(ctx, s.store, caller, id)
	if err != nil {
		return nil, err
	}
	if o.Status == status {
		return o, nil
	}
	if err := s.store.SetOccurrenceStatus(ctx, id, status); err != nil {
		return nil, storeErr(err, "occurrence")
	}
	o.Status = status
	log.Info().Str("occurrence_id", id.String()).Str("status", string(status)).Msg("occurrence status changed")
	return o, nil
}

// CancelOccurrence marks the occurrence canceled. Its RSVPs are kept and a
// repeated cancel is a no-op.
func (s *Service) CancelOccurrence(ctx context.Context, caller Caller, id uuid.UUID) (*model.EventOccurrence, error) {
	return s.setStatus(ctx, caller, id, model.OccurrenceCanceled)
}

// RestoreOccurrence puts a canceled occurrence back on the schedule.
func (s *Service) RestoreOccurrence(ctx context.Context, caller Caller, id uuid.UUID) (*model.EventOccurrence, error) {
	return s.setStatus(ctx, caller, id, model.OccurrenceScheduled)
}

// AddCustomOccurrence adds a session outside the recurrence pattern at the
// given wall-clock instant.
func (s *Service) AddCustomOccurrence(ctx context.Context, caller Caller, eventID uuid.UUID, at time.Time, note *string) (*model.EventOccurrence, error) {
	if err := requireManager(caller); err != nil {
		return nil, err
	}
	if at.IsZero() {
		return nil, fmt.Errorf("%w: date is required", ErrValidation)
	}
	e, err := s.GetEvent(ctx, caller, eventID)
	if err != nil {
		return nil, err
	}

	o := &model.EventOccurrence{
		EventID:  e.ID,
		GymID:    e.GymID,
		Date:     at.UTC().Truncate(time.Minute),
		Status:   model.OccurrenceScheduled,
		IsCustom: true,
		Note:     note,
	}
	if err := s.store.InsertCustomOccurrence(ctx, o); err != nil {
		if db.IsUniqueViolation(err) {
			return nil, fmt.Errorf("%w: event already has an occurrence at %s", ErrConflict, o.Date.Format("2006-01-02 15:04"))
		}
		return nil, fmt.Errorf("insert custom occurrence: %w", err)
	}
	return o, nil
}

// RemoveCustomOccurrence deletes a custom occurrence and its attendance.
// Generated occurrences can only be canceled.
func (s *Service) RemoveCustomOccurrence(ctx context.Context, caller Caller, id uuid.UUID) error {
	if err := requireManager(caller); err != nil {
		return err
	}
	o, err := getOccurrence(ctx, s.store, caller, id)
	if err != nil {
		return err
	}
	if !o.IsCustom {
		return fmt.Errorf("%w: only custom occurrences can be removed", ErrInvalidState)
	}

	err = s.store.InTx(ctx, func(tx db.Store) error {
		_, err := deleteOccurrences(ctx, tx, []uuid.UUID{id})
		return err
	})
	if err != nil {
		return err
	}
	metrics.OccurrencesDeleted.WithLabelValues("custom").Inc()
	return nil
}
