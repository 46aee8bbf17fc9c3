package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Event is a session template; its concrete sessions are EventOccurrence rows.
type Event struct {
	ID                uuid.UUID       `db:"id"                  json:"id"`
	GymID             uuid.UUID       `db:"gym_id"              json:"gym_id"`
	Title             string          `db:"title"               json:"title"`
	Description       *string         `db:"description"         json:"description,omitempty"`
	Location          *string         `db:"location"            json:"location,omitempty"`
	StartDate         time.Time       `db:"start_date"          json:"start_date"`
	StartTime         string          `db:"start_time"          json:"start_time"` // "HH:MM"
	EndTime           string          `db:"end_time"            json:"end_time"`   // "HH:MM"
	RecurrenceRule    *string         `db:"recurrence_rule"     json:"recurrence_rule,omitempty"`
	RecurrenceEndDate *time.Time      `db:"recurrence_end_date" json:"recurrence_end_date,omitempty"`
	RecurrenceCount   *int            `db:"recurrence_count"    json:"recurrence_count,omitempty"`
	ReminderDays      pq.Float64Array `db:"reminder_days"       json:"reminder_days"`
	CreatedBy         uuid.UUID       `db:"created_by"          json:"created_by"`
	CreatedAt         time.Time       `db:"created_at"          json:"created_at"`
	UpdatedAt         time.Time       `db:"updated_at"          json:"updated_at"`
}
