package model

import (
	"time"

	"github.com/google/uuid"
)

type OccurrenceStatus string

const (
	OccurrenceScheduled OccurrenceStatus = "scheduled"
	OccurrenceCanceled  OccurrenceStatus = "canceled"
)

// EventOccurrence is one dated session of an Event. Date is a naive
// wall-clock timestamp; (EventID, Date) is unique.
type EventOccurrence struct {
	ID        uuid.UUID        `db:"id"         json:"id"`
	EventID   uuid.UUID        `db:"event_id"   json:"event_id"`
	GymID     uuid.UUID        `db:"gym_id"     json:"-"`
	Date      time.Time        `db:"date"       json:"date"`
	Status    OccurrenceStatus `db:"status"     json:"status"`
	IsCustom  bool             `db:"is_custom"  json:"is_custom"`
	Note      *string          `db:"note"       json:"note,omitempty"`
	CreatedAt time.Time        `db:"created_at" json:"created_at"`
}
