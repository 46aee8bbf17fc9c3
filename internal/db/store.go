// exposes a Store interface that the engine and API layers depend on
package db

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/aligeramy/somas/internal/model"
)

type Store interface {
	// users
	GetUserByID(ctx context.Context, id uuid.UUID) (*model.User, error)

	// events
	CreateEvent(ctx context.Context, e *model.Event) error
	GetEvent(ctx context.Context, gymID, eventID uuid.UUID) (*model.Event, error)
	ListEvents(ctx context.Context, gymID uuid.UUID) ([]model.Event, error)
	UpdateEvent(ctx context.Context, e *model.Event) error
	DeleteEvent(ctx context.Context, gymID, eventID uuid.UUID) error

	// occurrences
	InsertOccurrences(ctx context.Context, eventID uuid.UUID, dates []time.Time) (int64, error)
	InsertCustomOccurrence(ctx context.Context, o *model.EventOccurrence) error
	GetOccurrence(ctx context.Context, occurrenceID uuid.UUID) (*model.EventOccurrence, error)
	ListOccurrences(ctx context.Context, eventID uuid.UUID, from, to *time.Time) ([]model.EventOccurrence, error)
	ListOccurrenceIDsFrom(ctx context.Context, eventID uuid.UUID, from time.Time) ([]uuid.UUID, error)
	DeleteOccurrences(ctx context.Context, occurrenceIDs []uuid.UUID) (int64, error)
	SetOccurrenceStatus(ctx context.Context, occurrenceID uuid.UUID, status model.OccurrenceStatus) error

	// rsvps
	UpsertRSVP(ctx context.Context, r *model.RSVP) error
	ListRSVPs(ctx context.Context, occurrenceID uuid.UUID) ([]model.RSVP, error)
	DeleteRSVPsForOccurrences(ctx context.Context, occurrenceIDs []uuid.UUID) (int64, error)

	// reminders
	ListReminderTargets(ctx context.Context, now time.Time) ([]model.ReminderTarget, error)
	ListReminderRecipients(ctx context.Context, occurrenceID uuid.UUID) ([]uuid.UUID, error)
	ListReminderLogs(ctx context.Context, occurrenceIDs []uuid.UUID) ([]model.ReminderLog, error)
	InsertReminderLog(ctx context.Context, l *model.ReminderLog) (bool, error)
	DeleteReminderLogsForOccurrences(ctx context.Context, occurrenceIDs []uuid.UUID) (int64, error)

	// InTx runs fn against a Store bound to one transaction. Nested calls
	// reuse the outer transaction.
	InTx(ctx context.Context, fn func(Store) error) error
}

type pgStore struct {
	db *sqlx.DB
	q  sqlx.ExtContext
}

// compile-time check that pgStore implements Store
var _ Store = (*pgStore)(nil)

func NewStore(conn *sqlx.DB) Store {
	return &pgStore{db: conn, q: conn}
}

func (s *pgStore) InTx(ctx context.Context, fn func(Store) error) (err error) {
	if _, ok := s.q.(*sqlx.Tx); ok {
		return fn(s)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		log.Error().Err(err).Msg("InTx: begin failed")
		return err
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				log.Error().Err(rbErr).Msg("InTx: rollback failed")
			}
			return
		}
		err = tx.Commit()
	}()

	return fn(&pgStore{db: s.db, q: tx})
}

// IsUniqueViolation reports whether err is a PostgreSQL unique_violation.
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

func uuidArray(ids []uuid.UUID) interface{} {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return pq.Array(out)
}
