package db

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/aligeramy/somas/internal/model"
)

// ListReminderTargets returns scheduled occurrences after now whose event
// carries reminder lead times and that fall within the largest of them.
// Per-lead-time filtering happens in the engine.
func (s *pgStore) ListReminderTargets(ctx context.Context, now time.Time) ([]model.ReminderTarget, error) {
	const q = `
	SELECT o.id AS occurrence_id, e.id AS event_id, e.gym_id, e.title, o.date, e.reminder_days
	  FROM event_occurrences o
	  JOIN events e ON e.id = o.event_id
	 WHERE o.status = 'scheduled'
	   AND o.date > $1::timestamp
	   AND cardinality(e.reminder_days) > 0
	   AND o.date <= $1::timestamp + (SELECT max(d) FROM unnest(e.reminder_days) AS d) * interval '1 day'
	 ORDER BY o.date, o.id;`
	out := []model.ReminderTarget{}
	if err := sqlx.SelectContext(ctx, s.q, &out, q, now.Format(naiveLayout)); err != nil {
		log.Error().Err(err).Msg("ListReminderTargets failed")
		return nil, err
	}
	return out, nil
}

// ListReminderRecipients returns the members of the occurrence's gym who have
// not declined it.
func (s *pgStore) ListReminderRecipients(ctx context.Context, occurrenceID uuid.UUID) ([]uuid.UUID, error) {
	const q = `
	SELECT u.id
	  FROM event_occurrences o
	  JOIN events e ON e.id = o.event_id
	  JOIN users u ON u.gym_id = e.gym_id
	  LEFT JOIN rsvps r ON r.occurrence_id = o.id AND r.user_id = u.id
	 WHERE o.id = $1
	   AND (r.status IS NULL OR r.status <> 'not_going')
	 ORDER BY u.id;`
	ids := []uuid.UUID{}
	if err := sqlx.SelectContext(ctx, s.q, &ids, q, occurrenceID); err != nil {
		log.Error().Err(err).Str("occurrence_id", occurrenceID.String()).Msg("ListReminderRecipients failed")
		return nil, err
	}
	return ids, nil
}

func (s *pgStore) ListReminderLogs(ctx context.Context, occurrenceIDs []uuid.UUID) ([]model.ReminderLog, error) {
	out := []model.ReminderLog{}
	if len(occurrenceIDs) == 0 {
		return out, nil
	}
	const q = `
	SELECT id, occurrence_id, user_id, reminder_type, sent_at
	  FROM reminder_logs
	 WHERE occurrence_id = ANY($1::uuid[]);`
	if err := sqlx.SelectContext(ctx, s.q, &out, q, uuidArray(occurrenceIDs)); err != nil {
		log.Error().Err(err).Msg("ListReminderLogs failed")
		return nil, err
	}
	return out, nil
}

// InsertReminderLog records a sent reminder. It reports false when the same
// (occurrence, user, type) was already logged.
func (s *pgStore) InsertReminderLog(ctx context.Context, l *model.ReminderLog) (bool, error) {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	if l.SentAt.IsZero() {
		l.SentAt = time.Now().UTC()
	}
	const q = `
	INSERT INTO reminder_logs (id, occurrence_id, user_id, reminder_type, sent_at)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (occurrence_id, user_id, reminder_type) DO NOTHING;`
	res, err := s.q.ExecContext(ctx, q, l.ID, l.OccurrenceID, l.UserID, l.ReminderType, l.SentAt)
	if err != nil {
		log.Error().Err(err).
			Str("occurrence_id", l.OccurrenceID.String()).
			Str("reminder_type", l.ReminderType).
			Msg("InsertReminderLog failed")
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *pgStore) DeleteReminderLogsForOccurrences(ctx context.Context, occurrenceIDs []uuid.UUID) (int64, error) {
	if len(occurrenceIDs) == 0 {
		return 0, nil
	}
	res, err := s.q.ExecContext(ctx, `DELETE FROM reminder_logs WHERE occurrence_id = ANY($1::uuid[]);`, uuidArray(occurrenceIDs))
	if err != nil {
		log.Error().Err(err).Msg("DeleteReminderLogsForOccurrences failed")
		return 0, err
	}
	return res.RowsAffected()
}
