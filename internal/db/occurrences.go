package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/aligeramy/somas/internal/model"
)

// occurrence dates are stored as timestamp without time zone
const naiveLayout = "2006-01-02 15:04:05"

const occurrenceSelect = `
	SELECT o.id, o.event_id, e.gym_id, o.date, o.status, o.is_custom, o.note, o.created_at
	  FROM event_occurrences o
	  JOIN events e ON e.id = o.event_id`

// InsertOccurrences inserts one scheduled occurrence per date. Dates that
// already exist for the event are skipped; the number actually inserted is
// returned.
func (s *pgStore) InsertOccurrences(ctx context.Context, eventID uuid.UUID, dates []time.Time) (int64, error) {
	if len(dates) == 0 {
		return 0, nil
	}
	ids := make([]string, len(dates))
	stamps := make([]string, len(dates))
	for i, d := range dates {
		ids[i] = uuid.NewString()
		stamps[i] = d.Format(naiveLayout)
	}

	const q = `
	INSERT INTO event_occurrences (id, event_id, date, status, is_custom, created_at)
	SELECT u.id, $1, u.date, 'scheduled', false, now()
	  FROM unnest($2::uuid[], $3::timestamp[]) AS u(id, date)
	ON CONFLICT (event_id, date) DO NOTHING;`
	res, err := s.q.ExecContext(ctx, q, eventID, pq.Array(ids), pq.Array(stamps))
	if err != nil {
		log.Error().Err(err).Str("event_id", eventID.String()).Int("dates", len(dates)).Msg("InsertOccurrences failed")
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return n, nil
}

// InsertCustomOccurrence returns the driver error untouched so callers can
// detect a duplicate date with IsUniqueViolation.
func (s *pgStore) InsertCustomOccurrence(ctx context.Context, o *model.EventOccurrence) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	const q = `
	INSERT INTO event_occurrences (id, event_id, date, status, is_custom, note, created_at)
	VALUES ($1, $2, $3::timestamp, $4, true, $5, now())
	RETURNING created_at;`
	o.IsCustom = true
	if o.Status == "" {
		o.Status = model.OccurrenceScheduled
	}
	row := s.q.QueryRowxContext(ctx, q, o.ID, o.EventID, o.Date.Format(naiveLayout), o.Status, o.Note)
	if err := row.Scan(&o.CreatedAt); err != nil {
		if !IsUniqueViolation(err) {
			log.Error().Err(err).Str("event_id", o.EventID.String()).Msg("InsertCustomOccurrence failed")
		}
		return err
	}
	return nil
}

// GetOccurrence returns sql.ErrNoRows when no such occurrence exists.
func (s *pgStore) GetOccurrence(ctx context.Context, occurrenceID uuid.UUID) (*model.EventOccurrence, error) {
	var o model.EventOccurrence
	q := occurrenceSelect + ` WHERE o.id = $1;`
	if err := sqlx.GetContext(ctx, s.q, &o, q, occurrenceID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		log.Error().Err(err).Str("occurrence_id", occurrenceID.String()).Msg("GetOccurrence failed")
		return nil, err
	}
	return &o, nil
}

// ListOccurrences returns the event's occurrences ordered by date. from and
// to are optional inclusive bounds.
func (s *pgStore) ListOccurrences(ctx context.Context, eventID uuid.UUID, from, to *time.Time) ([]model.EventOccurrence, error) {
	conds := []string{"o.event_id = $1"}
	args := []interface{}{eventID}
	if from != nil {
		args = append(args, from.Format(naiveLayout))
		conds = append(conds, fmt.Sprintf("o.date >= $%d::timestamp", len(args)))
	}
	if to != nil {
		args = append(args, to.Format(naiveLayout))
		conds = append(conds, fmt.Sprintf("o.date <= $%d::timestamp", len(args)))
	}
	q := occurrenceSelect + ` WHERE ` + strings.Join(conds, " AND ") + ` ORDER BY o.date;`

	out := []model.EventOccurrence{}
	if err := sqlx.SelectContext(ctx, s.q, &out, q, args...); err != nil {
		log.Error().Err(err).Str("event_id", eventID.String()).Msg("ListOccurrences failed")
		return nil, err
	}
	return out, nil
}

func (s *pgStore) ListOccurrenceIDsFrom(ctx context.Context, eventID uuid.UUID, from time.Time) ([]uuid.UUID, error) {
	const q = `
	SELECT id
	  FROM event_occurrences
	 WHERE event_id = $1 AND date >= $2::timestamp;`
	ids := []uuid.UUID{}
	if err := sqlx.SelectContext(ctx, s.q, &ids, q, eventID, from.Format(naiveLayout)); err != nil {
		log.Error().Err(err).Str("event_id", eventID.String()).Msg("ListOccurrenceIDsFrom failed")
		return nil, err
	}
	return ids, nil
}

func (s *pgStore) DeleteOccurrences(ctx context.Context, occurrenceIDs []uuid.UUID) (int64, error) {
	if len(occurrenceIDs) == 0 {
		return 0, nil
	}
	res, err := s.q.ExecContext(ctx, `DELETE FROM event_occurrences WHERE id = ANY($1::uuid[]);`, uuidArray(occurrenceIDs))
	if err != nil {
		log.Error().Err(err).Int("occurrences", len(occurrenceIDs)).Msg("DeleteOccurrences failed")
		return 0, err
	}
	return res.RowsAffected()
}

func (s *pgStore) SetOccurrenceStatus(ctx context.Context, occurrenceID uuid.UUID, status model.OccurrenceStatus) error {
	res, err := s.q.ExecContext(ctx, `UPDATE event_occurrences SET status = $2 WHERE id = $1;`, occurrenceID, status)
	if err != nil {
		log.Error().Err(err).Str("occurrence_id", occurrenceID.String()).Msg("SetOccurrenceStatus failed")
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
