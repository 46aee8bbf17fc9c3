package model

import (
	"time"

	"github.com/google/uuid"
)

type RSVPStatus string

const (
	RSVPGoing    RSVPStatus = "going"
	RSVPNotGoing RSVPStatus = "not_going"
)

func (s RSVPStatus) Valid() bool {
	return s == RSVPGoing || s == RSVPNotGoing
}

type RSVP struct {
	ID           uuid.UUID  `db:"id"            json:"id"`
	UserID       uuid.UUID  `db:"user_id"       json:"user_id"`
	OccurrenceID uuid.UUID  `db:"occurrence_id" json:"occurrence_id"`
	Status       RSVPStatus `db:"status"        json:"status"`
	CreatedAt    time.Time  `db:"created_at"    json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at"    json:"updated_at"`
}
