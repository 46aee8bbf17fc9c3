package packets

import (
	"bytes"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/aligeramy/somas/internal/recurrence"
)

// Optional distinguishes an absent JSON key (Set == false) from an
// explicit null (Set == true, Value == nil).
type Optional[T any] struct {
	Set   bool
	Value *T
}

func (o *Optional[T]) UnmarshalJSON(b []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		o.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}

// Dates are "YYYY-MM-DD"; times of day are "HH:MM".
type CreateEventRequest struct {
	Title             string               `json:"title"               binding:"required"`
	Description       *string              `json:"description"`
	Location          *string              `json:"location"`
	StartDate         string               `json:"start_date"          binding:"required"`
	StartTime         string               `json:"start_time"          binding:"required"`
	EndTime           string               `json:"end_time"            binding:"required"`
	RecurrenceRule    string               `json:"recurrence_rule"`
	RecurrenceEndDate *string              `json:"recurrence_end_date"`
	RecurrenceCount   *int                 `json:"recurrence_count"`
	ReminderDays      recurrence.LeadTimes `json:"reminder_days"`
}

// UpdateEventRequest is a partial update. A null recurrence_rule makes the
// event one-time; null recurrence_end_date / recurrence_count clear them.
type UpdateEventRequest struct {
	Title             *string               `json:"title"`
	Description       *string               `json:"description"`
	Location          *string               `json:"location"`
	StartDate         *string               `json:"start_date"`
	StartTime         *string               `json:"start_time"`
	EndTime           *string               `json:"end_time"`
	RecurrenceRule    Optional[string]      `json:"recurrence_rule"`
	RecurrenceEndDate Optional[string]      `json:"recurrence_end_date"`
	RecurrenceCount   Optional[int]         `json:"recurrence_count"`
	ReminderDays      *recurrence.LeadTimes `json:"reminder_days"`
}

// Date is "YYYY-MM-DDTHH:MM" (or with seconds) in gym wall-clock time.
type CreateOccurrenceRequest struct {
	Date string  `json:"date" binding:"required"`
	Note *string `json:"note"`
}

// UserID defaults to the caller; coaches and owners may answer for members.
type RSVPRequest struct {
	Status string    `json:"status" binding:"required,oneof=going not_going"`
	UserID uuid.UUID `json:"user_id"`
}
