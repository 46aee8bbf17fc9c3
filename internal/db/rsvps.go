package db

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/aligeramy/somas/internal/model"
)

// UpsertRSVP writes the user's response for an occurrence; a second call for
// the same pair replaces the status and keeps the original row id.
func (s *pgStore) UpsertRSVP(ctx context.Context, r *model.RSVP) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	const q = `
	INSERT INTO rsvps (id, user_id, occurrence_id, status, created_at, updated_at)
	VALUES ($1, $2, $3, $4, now(), now())
	ON CONFLICT (user_id, occurrence_id)
	DO UPDATE SET status = EXCLUDED.status, updated_at = now()
	RETURNING id, user_id, occurrence_id, status, created_at, updated_at;`
	if err := sqlx.GetContext(ctx, s.q, r, q, r.ID, r.UserID, r.OccurrenceID, r.Status); err != nil {
		log.Error().Err(err).
			Str("user_id", r.UserID.String()).
			Str("occurrence_id", r.OccurrenceID.String()).
			Msg("UpsertRSVP failed")
		return err
	}
	return nil
}

func (s *pgStore) ListRSVPs(ctx context.Context, occurrenceID uuid.UUID) ([]model.RSVP, error) {
	const q = `
	SELECT id, user_id, occurrence_id, status, created_at, updated_at
	  FROM rsvps
	 WHERE occurrence_id = $1
	 ORDER BY created_at, id;`
	out := []model.RSVP{}
	if err := sqlx.SelectContext(ctx, s.q, &out, q, occurrenceID); err != nil {
		log.Error().Err(err).Str("occurrence_id", occurrenceID.String()).Msg("ListRSVPs failed")
		return nil, err
	}
	return out, nil
}

func (s *pgStore) DeleteRSVPsForOccurrences(ctx context.Context, occurrenceIDs []uuid.UUID) (int64, error) {
	if len(occurrenceIDs) == 0 {
		return 0, nil
	}
	res, err := s.q.ExecContext(ctx, `DELETE FROM rsvps WHERE occurrence_id = ANY($1::uuid[]);`, uuidArray(occurrenceIDs))
	if err != nil {
		log.Error().Err(err).Int("occurrences", len(occurrenceIDs)).Msg("DeleteRSVPsForOccurrences failed")
		return 0, err
	}
	return res.RowsAffected()
}
