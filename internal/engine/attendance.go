package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/aligeramy/somas/internal/db"
	"github.com/aligeramy/somas/internal/model"
	"github.com/aligeramy/somas/internal/recurrence"
)

// CascadeDeleteForOccurrences removes every RSVP and reminder log that
// references ids. It must run before the occurrences themselves are deleted.
func CascadeDeleteForOccurrences(ctx context.Context, st db.Store, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	if _, err := st.DeleteRSVPsForOccurrences(ctx, ids); err != nil {
		return fmt.Errorf("delete rsvps: %w", err)
	}
	if _, err := st.DeleteReminderLogsForOccurrences(ctx, ids); err != nil {
		return fmt.Errorf("delete reminder logs: %w", err)
	}
	return nil
}

func deleteOccurrences(ctx context.Context, st db.Store, ids []uuid.UUID) (int64, error) {
	if err := CascadeDeleteForOccurrences(ctx, st, ids); err != nil {
		return 0, err
	}
	n, err := st.DeleteOccurrences(ctx, ids)
	if err != nil {
		return 0, fmt.Errorf("delete occurrences: %w", err)
	}
	return n, nil
}

// UpsertRSVP records userID's response to an occurrence. A zero userID
// means the caller. Answering for someone else needs a coach or owner.
func (s *Service) UpsertRSVP(ctx context.Context, caller Caller, userID, occurrenceID uuid.UUID, status model.RSVPStatus, now time.Time) (*model.RSVP, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown rsvp status %q", ErrValidation, status)
	}
	if userID == uuid.Nil {
		userID = caller.UserID
	}
	if userID != caller.UserID {
		if err := requireManager(caller); err != nil {
			return nil, err
		}
		u, err := s.store.GetUserByID(ctx, userID)
		if err != nil {
			return nil, storeErr(err, "user")
		}
		if u.GymID != caller.GymID {
			return nil, fmt.Errorf("%w: user", ErrNotFound)
		}
	}

	o, err := getOccurrence(ctx, s.store, caller, occurrenceID)
	if err != nil {
		return nil, err
	}
	if o.Date.Before(recurrence.DateOf(now)) {
		return nil, fmt.Errorf("%w: occurrence is in the past", ErrInvalidState)
	}
	if o.Status == model.OccurrenceCanceled {
		return nil, fmt.Errorf("%w: occurrence is canceled", ErrInvalidState)
	}

	r := &model.RSVP{UserID: userID, OccurrenceID: occurrenceID, Status: status}
	if err := s.store.UpsertRSVP(ctx, r); err != nil {
		return nil, fmt.Errorf("upsert rsvp: %w", err)
	}
	return r, nil
}

func (s *Service) ListRSVPs(ctx context.Context, caller Caller, occurrenceID uuid.UUID) ([]model.RSVP, error) {
	if _, err := getOccurrence(ctx, s.store, caller, occurrenceID); err != nil {
		return nil, err
	}
	out, err := s.store.ListRSVPs(ctx, occurrenceID)
	if err != nil {
		return nil, fmt.Errorf("list rsvps: %w", err)
	}
	return out, nil
}
