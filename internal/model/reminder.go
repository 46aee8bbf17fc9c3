package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// ReminderLog marks a reminder of one type as delivered to one user for one
// occurrence. (OccurrenceID, UserID, ReminderType) is unique.
type ReminderLog struct {
	ID           uuid.UUID `db:"id"            json:"id"`
	OccurrenceID uuid.UUID `db:"occurrence_id" json:"occurrence_id"`
	UserID       uuid.UUID `db:"user_id"       json:"user_id"`
	ReminderType string    `db:"reminder_type" json:"reminder_type"`
	SentAt       time.Time `db:"sent_at"       json:"sent_at"`
}

// ReminderTarget is an upcoming scheduled occurrence joined with the
// reminder configuration of its event.
type ReminderTarget struct {
	OccurrenceID uuid.UUID       `db:"occurrence_id"`
	EventID      uuid.UUID       `db:"event_id"`
	GymID        uuid.UUID       `db:"gym_id"`
	Title        string          `db:"title"`
	Date         time.Time       `db:"date"`
	ReminderDays pq.Float64Array `db:"reminder_days"`
}
