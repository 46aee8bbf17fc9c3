package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/aligeramy/somas/internal/model"
)

const eventColumns = `
	id, gym_id, title, description, location, start_date, start_time, end_time,
	recurrence_rule, recurrence_end_date, recurrence_count, reminder_days,
	created_by, created_at, updated_at`

func (s *pgStore) CreateEvent(ctx context.Context, e *model.Event) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	const q = `
	INSERT INTO events
	  (id, gym_id, title, description, location, start_date, start_time, end_time,
	   recurrence_rule, recurrence_end_date, recurrence_count, reminder_days,
	   created_by, created_at, updated_at)
	VALUES
	  ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, now(), now())
	RETURNING created_at, updated_at;`
	row := s.q.QueryRowxContext(ctx, q,
		e.ID, e.GymID, e.Title, e.Description, e.Location, e.StartDate, e.StartTime, e.EndTime,
		e.RecurrenceRule, e.RecurrenceEndDate, e.RecurrenceCount, e.ReminderDays, e.CreatedBy,
	)
	if err := row.Scan(&e.CreatedAt, &e.UpdatedAt); err != nil {
		log.Error().Err(err).Str("gym_id", e.GymID.String()).Msg("CreateEvent failed")
		return err
	}
	return nil
}

// GetEvent returns sql.ErrNoRows when the event does not exist in gymID.
func (s *pgStore) GetEvent(ctx context.Context, gymID, eventID uuid.UUID) (*model.Event, error) {
	var e model.Event
	q := `SELECT` + eventColumns + ` FROM events WHERE id = $1 AND gym_id = $2;`
	if err := sqlx.GetContext(ctx, s.q, &e, q, eventID, gymID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		log.Error().Err(err).Str("event_id", eventID.String()).Msg("GetEvent failed")
		return nil, err
	}
	return &e, nil
}

func (s *pgStore) ListEvents(ctx context.Context, gymID uuid.UUID) ([]model.Event, error) {
	out := []model.Event{}
	q := `SELECT` + eventColumns + ` FROM events WHERE gym_id = $1 ORDER BY start_date, start_time, id;`
	if err := sqlx.SelectContext(ctx, s.q, &out, q, gymID); err != nil {
		log.Error().Err(err).Str("gym_id", gymID.String()).Msg("ListEvents failed")
		return nil, err
	}
	return out, nil
}

func (s *pgStore) UpdateEvent(ctx context.Context, e *model.Event) error {
	const q = `
	UPDATE events
	   SET title               = $3,
	       description         = $4,
	       location            = $5,
	       start_date          = $6,
	       start_time          = $7,
	       end_time            = $8,
	       recurrence_rule     = $9,
	       recurrence_end_date = $10,
	       recurrence_count    = $11,
	       reminder_days       = $12,
	       updated_at          = now()
	 WHERE id = $1 AND gym_id = $2
	RETURNING updated_at;`
	row := s.q.QueryRowxContext(ctx, q,
		e.ID, e.GymID, e.Title, e.Description, e.Location, e.StartDate, e.StartTime, e.EndTime,
		e.RecurrenceRule, e.RecurrenceEndDate, e.RecurrenceCount, e.ReminderDays,
	)
	if err := row.Scan(&e.UpdatedAt); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			log.Error().Err(err).Str("event_id", e.ID.String()).Msg("UpdateEvent failed")
		}
		return err
	}
	return nil
}

// DeleteEvent removes the event; occurrences, RSVPs and reminder logs go
// with it through ON DELETE CASCADE.
func (s *pgStore) DeleteEvent(ctx context.Context, gymID, eventID uuid.UUID) error {
	res, err := s.q.ExecContext(ctx, `DELETE FROM events WHERE id = $1 AND gym_id = $2;`, eventID, gymID)
	if err != nil {
		log.Error().Err(err).Str("event_id", eventID.String()).Msg("DeleteEvent failed")
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
