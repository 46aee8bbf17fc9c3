// Package reminders delivers the reminders the engine reports as due.
package reminders

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/aligeramy/somas/internal/engine"
)

// Notifier delivers one reminder. A returned error leaves the reminder
// unlogged so the next pass retries it.
type Notifier interface {
	Notify(ctx context.Context, r engine.DueReminder) error
	Close()
}

// Message is the payload published for a due reminder.
type Message struct {
	Type         string `json:"type"`
	OccurrenceID string `json:"occurrence_id"`
	EventID      string `json:"event_id"`
	GymID        string `json:"gym_id"`
	UserID       string `json:"user_id"`
	ReminderType string `json:"reminder_type"`
	Title        string `json:"title"`
	Date         string `json:"date"`
}

const messageType = "reminder.due"

func encode(r engine.DueReminder) ([]byte, error) {
	return json.Marshal(Message{
		Type:         messageType,
		OccurrenceID: r.OccurrenceID.String(),
		EventID:      r.EventID.String(),
		GymID:        r.GymID.String(),
		UserID:       r.UserID.String(),
		ReminderType: r.ReminderType,
		Title:        r.Title,
		Date:         r.Date.Format("2006-01-02T15:04:05"),
	})
}

// LogNotifier only writes the reminder to the log.
type LogNotifier struct{}

func (LogNotifier) Notify(ctx context.Context, r engine.DueReminder) error {
	log.Info().
		Str("occurrence_id", r.OccurrenceID.String()).
		Str("user_id", r.UserID.String()).
		Str("reminder_type", r.ReminderType).
		Str("title", r.Title).
		Time("date", r.Date).
		Msg("reminder due")
	return nil
}

func (LogNotifier) Close() {}
