package endpoints

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/aligeramy/somas/internal/engine"
	"github.com/aligeramy/somas/internal/http/api"
	"github.com/aligeramy/somas/internal/http/api/events/packets"
	"github.com/aligeramy/somas/internal/model"
	"github.com/aligeramy/somas/internal/recurrence"
)

type EventController struct {
	svc *engine.Service
	loc *time.Location
	now func() time.Time
}

func newEventController(svc *engine.Service, loc *time.Location, now func() time.Time) *EventController {
	if loc == nil {
		loc = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	return &EventController{svc: svc, loc: loc, now: now}
}

// EventModule mounts the authenticated /events and /occurrences endpoints.
// loc is the gym's local time zone; now may be nil.
func EventModule(svc *engine.Service, loc *time.Location, now func() time.Time) api.Module {
	ctl := newEventController(svc, loc, now)
	return api.ModuleFunc(func(c *api.Controller) {
		// events
		c.GET("/events", ctl.listEvents)
		c.POST("/events", ctl.createEvent)
		c.GET("/events/:id", ctl.getEvent)
		c.PATCH("/events/:id", ctl.updateEvent)
		c.DELETE("/events/:id", ctl.deleteEvent)

		// occurrences of an event
		c.GET("/events/:id/occurrences", ctl.listOccurrences)
		c.POST("/events/:id/occurrences", ctl.addOccurrence)
		c.GET("/events/:id/calendar.ics", ctl.exportCalendar)

		// single occurrence
		c.POST("/occurrences/:id/cancel", ctl.cancelOccurrence)
		c.POST("/occurrences/:id/restore", ctl.restoreOccurrence)
		c.DELETE("/occurrences/:id", ctl.removeOccurrence)
		c.PUT("/occurrences/:id/rsvp", ctl.upsertRSVP)
		c.GET("/occurrences/:id/rsvps", ctl.listRSVPs)
	})
}

// wallClock is the current time in the gym's zone as a naive timestamp.
func (t *EventController) wallClock() time.Time {
	return recurrence.Naive(t.now(), t.loc)
}

func paramID(ctx *gin.Context) (uuid.UUID, *api.APIError) {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		log.Error().Err(err).Str("id_raw", ctx.Param("id")).Msg("invalid id in request")
		return uuid.Nil, &api.APIError{Code: http.StatusBadRequest, Message: "invalid id"}
	}
	return id, nil
}

func parseDate(field, s string) (time.Time, *api.APIError) {
	d, err := time.ParseInLocation(packets.DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, &api.APIError{Code: http.StatusBadRequest, Message: field + " must be YYYY-MM-DD"}
	}
	return d, nil
}

// GET /api/events
func (t *EventController) listEvents(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	all, err := t.svc.ListEvents(ctx.Request.Context(), engine.CallerOf(user))
	if err != nil {
		return nil, api.FromError(err, "could not list events")
	}
	out := make([]packets.EventResponse, 0, len(all))
	for i := range all {
		out = append(out, packets.NewEventResponse(&all[i]))
	}
	return out, nil
}

// POST /api/events
func (t *EventController) createEvent(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	var request packets.CreateEventRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	startDate, apiErr := parseDate("start_date", request.StartDate)
	if apiErr != nil {
		return nil, apiErr
	}
	fields := engine.EventFields{
		Title:           request.Title,
		Description:     request.Description,
		Location:        request.Location,
		StartDate:       startDate,
		StartTime:       request.StartTime,
		EndTime:         request.EndTime,
		RecurrenceRule:  request.RecurrenceRule,
		RecurrenceCount: request.RecurrenceCount,
		ReminderDays:    request.ReminderDays,
	}
	if request.RecurrenceEndDate != nil && *request.RecurrenceEndDate != "" {
		end, apiErr := parseDate("recurrence_end_date", *request.RecurrenceEndDate)
		if apiErr != nil {
			return nil, apiErr
		}
		fields.RecurrenceEndDate = &end
	}

	event, err := t.svc.CreateEvent(ctx.Request.Context(), engine.CallerOf(user), fields, t.wallClock())
	if err != nil {
		return nil, api.FromError(err, "could not create event")
	}
	return api.Created{Body: packets.NewEventResponse(event)}, nil
}

// GET /api/events/:id
func (t *EventController) getEvent(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	id, apiErr := paramID(ctx)
	if apiErr != nil {
		return nil, apiErr
	}
	event, err := t.svc.GetEvent(ctx.Request.Context(), engine.CallerOf(user), id)
	if err != nil {
		return nil, api.FromError(err, "could not load event")
	}
	return packets.NewEventResponse(event), nil
}

// PATCH /api/events/:id
func (t *EventController) updateEvent(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	id, apiErr := paramID(ctx)
	if apiErr != nil {
		return nil, apiErr
	}
	var request packets.UpdateEventRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	patch := engine.EventPatch{
		Title:       request.Title,
		Description: request.Description,
		Location:    request.Location,
		StartTime:   request.StartTime,
		EndTime:     request.EndTime,
	}
	if request.StartDate != nil {
		d, apiErr := parseDate("start_date", *request.StartDate)
		if apiErr != nil {
			return nil, apiErr
		}
		patch.StartDate = &d
	}
	if request.RecurrenceRule.Set {
		rule := ""
		if request.RecurrenceRule.Value != nil {
			rule = *request.RecurrenceRule.Value
		}
		patch.RecurrenceRule = &rule
	}
	if request.RecurrenceEndDate.Set {
		v := request.RecurrenceEndDate.Value
		if v == nil || *v == "" {
			patch.ClearRecurrenceEndDate = true
		} else {
			d, apiErr := parseDate("recurrence_end_date", *v)
			if apiErr != nil {
				return nil, apiErr
			}
			patch.RecurrenceEndDate = &d
		}
	}
	if request.RecurrenceCount.Set {
		if request.RecurrenceCount.Value == nil {
			patch.ClearRecurrenceCount = true
		} else {
			patch.RecurrenceCount = request.RecurrenceCount.Value
		}
	}
	if request.ReminderDays != nil {
		patch.ReminderDays = []float64(*request.ReminderDays)
		if patch.ReminderDays == nil {
			patch.ReminderDays = []float64{}
		}
	}

	res, err := t.svc.ReconcileOnEdit(ctx.Request.Context(), engine.CallerOf(user), id, patch, t.wallClock())
	if err != nil {
		return nil, api.FromError(err, "could not update event")
	}
	return packets.NewEditEventResponse(res), nil
}

// DELETE /api/events/:id
func (t *EventController) deleteEvent(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	id, apiErr := paramID(ctx)
	if apiErr != nil {
		return nil, apiErr
	}
	if err := t.svc.DeleteEvent(ctx.Request.Context(), engine.CallerOf(user), id); err != nil {
		return nil, api.FromError(err, "could not delete event")
	}
	return gin.H{"message": "event deleted"}, nil
}
