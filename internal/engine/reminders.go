package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/aligeramy/somas/internal/model"
	"github.com/aligeramy/somas/internal/recurrence"
)

// DueReminder is one reminder that should be delivered now.
type DueReminder struct {
	OccurrenceID uuid.UUID `json:"occurrence_id"`
	EventID      uuid.UUID `json:"event_id"`
	GymID        uuid.UUID `json:"gym_id"`
	UserID       uuid.UUID `json:"user_id"`
	ReminderType string    `json:"reminder_type"`
	Title        string    `json:"title"`
	Date         time.Time `json:"date"`
}

type logKey struct {
	occurrence uuid.UUID
	user       uuid.UUID
	kind       string
}

// DueReminders returns every (occurrence, user, type) whose trigger instant
// date-lead has passed and which has not been logged as sent. now is the
// naive wall-clock time.
func (s *Service) DueReminders(ctx context.Context, now time.Time) ([]DueReminder, error) {
	targets, err := s.store.ListReminderTargets(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("list reminder targets: %w", err)
	}
	if len(targets) == 0 {
		return nil, nil
	}

	ids := make([]uuid.UUID, len(targets))
	for i, t := range targets {
		ids[i] = t.OccurrenceID
	}
	logs, err := s.store.ListReminderLogs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("list reminder logs: %w", err)
	}
	sent := make(map[logKey]struct{}, len(logs))
	for _, l := range logs {
		sent[logKey{l.OccurrenceID, l.UserID, l.ReminderType}] = struct{}{}
	}

	var out []DueReminder
	for _, t := range targets {
		if !t.Date.After(now) {
			continue
		}
		var recipients []uuid.UUID
		loaded := false
		for _, lead := range recurrence.Normalize(t.ReminderDays) {
			trigger := t.Date.Add(-recurrence.LeadDuration(lead))
			if now.Before(trigger) {
				continue
			}
			if !loaded {
				if recipients, err = s.store.ListReminderRecipients(ctx, t.OccurrenceID); err != nil {
					return nil, fmt.Errorf("list reminder recipients: %w", err)
				}
				loaded = true
			}
			kind := recurrence.ReminderType(lead)
			for _, userID := range recipients {
				if _, done := sent[logKey{t.OccurrenceID, userID, kind}]; done {
					continue
				}
				out = append(out, DueReminder{
					OccurrenceID: t.OccurrenceID,
					EventID:      t.EventID,
					GymID:        t.GymID,
					UserID:       userID,
					ReminderType: kind,
					Title:        t.Title,
					Date:         t.Date,
				})
			}
		}
	}
	return out, nil
}

// RecordReminderSent logs a delivered reminder. It reports false when the
// reminder had already been logged.
func (s *Service) RecordReminderSent(ctx context.Context, d DueReminder, sentAt time.Time) (bool, error) {
	inserted, err := s.store.InsertReminderLog(ctx, &model.ReminderLog{
		OccurrenceID: d.OccurrenceID,
		UserID:       d.UserID,
		ReminderType: d.ReminderType,
		SentAt:       sentAt,
	})
	if err != nil {
		return false, fmt.Errorf("record reminder: %w", err)
	}
	return inserted, nil
}
