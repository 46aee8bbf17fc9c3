package packets

import (
	"time"

	"github.com/google/uuid"

	"github.com/aligeramy/somas/internal/engine"
	"github.com/aligeramy/somas/internal/model"
)

const (
	DateLayout      = "2006-01-02"
	LocalTimeLayout = "2006-01-02T15:04:05"
)

type EventResponse struct {
	ID                uuid.UUID `json:"id"`
	Title             string    `json:"title"`
	Description       *string   `json:"description,omitempty"`
	Location          *string   `json:"location,omitempty"`
	StartDate         string    `json:"start_date"`
	StartTime         string    `json:"start_time"`
	EndTime           string    `json:"end_time"`
	RecurrenceRule    *string   `json:"recurrence_rule"`
	RecurrenceEndDate *string   `json:"recurrence_end_date"`
	RecurrenceCount   *int      `json:"recurrence_count"`
	ReminderDays      []float64 `json:"reminder_days"`
	CreatedBy         uuid.UUID `json:"created_by"`
	CreatedAt         string    `json:"created_at"`
	UpdatedAt         string    `json:"updated_at"`
}

func NewEventResponse(e *model.Event) EventResponse {
	r := EventResponse{
		ID:              e.ID,
		Title:           e.Title,
		Description:     e.Description,
		Location:        e.Location,
		StartDate:       e.StartDate.Format(DateLayout),
		StartTime:       e.StartTime,
		EndTime:         e.EndTime,
		RecurrenceRule:  e.RecurrenceRule,
		RecurrenceCount: e.RecurrenceCount,
		ReminderDays:    []float64(e.ReminderDays),
		CreatedBy:       e.CreatedBy,
		CreatedAt:       e.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       e.UpdatedAt.Format(time.RFC3339),
	}
	if r.ReminderDays == nil {
		r.ReminderDays = []float64{}
	}
	if e.RecurrenceEndDate != nil {
		end := e.RecurrenceEndDate.Format(DateLayout)
		r.RecurrenceEndDate = &end
	}
	return r
}

type EditEventResponse struct {
	Event       EventResponse `json:"event"`
	Regenerated bool          `json:"regenerated"`
	Removed     int64         `json:"removed"`
	Inserted    int64         `json:"inserted"`
}

func NewEditEventResponse(res *engine.EditResult) EditEventResponse {
	return EditEventResponse{
		Event:       NewEventResponse(res.Event),
		Regenerated: res.Regenerated,
		Removed:     res.Removed,
		Inserted:    res.Inserted,
	}
}

type OccurrenceResponse struct {
	ID       uuid.UUID `json:"id"`
	EventID  uuid.UUID `json:"event_id"`
	Date     string    `json:"date"`
	Status   string    `json:"status"`
	IsCustom bool      `json:"is_custom"`
	Note     *string   `json:"note,omitempty"`
}

func NewOccurrenceResponse(o *model.EventOccurrence) OccurrenceResponse {
	return OccurrenceResponse{
		ID:       o.ID,
		EventID:  o.EventID,
		Date:     o.Date.Format(LocalTimeLayout),
		Status:   string(o.Status),
		IsCustom: o.IsCustom,
		Note:     o.Note,
	}
}

type RSVPResponse struct {
	ID           uuid.UUID `json:"id"`
	UserID       uuid.UUID `json:"user_id"`
	OccurrenceID uuid.UUID `json:"occurrence_id"`
	Status       string    `json:"status"`
	UpdatedAt    string    `json:"updated_at"`
}

func NewRSVPResponse(r *model.RSVP) RSVPResponse {
	return RSVPResponse{
		ID:           r.ID,
		UserID:       r.UserID,
		OccurrenceID: r.OccurrenceID,
		Status:       string(r.Status),
		UpdatedAt:    r.UpdatedAt.Format(time.RFC3339),
	}
}
