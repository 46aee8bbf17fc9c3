package endpoints

import (
	"net/http"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/gin-gonic/gin"

	"github.com/aligeramy/somas/internal/engine"
	"github.com/aligeramy/somas/internal/http/api"
	"github.com/aligeramy/somas/internal/model"
	"github.com/aligeramy/somas/internal/recurrence"
)

// floating date-time: calendar clients show it as local time
const icsLocalLayout = "20060102T150405"

// buildCalendar renders every occurrence of the event as its own VEVENT.
// Canceled occurrences stay in the feed with STATUS:CANCELLED so that
// subscribed clients drop them.
func buildCalendar(e *model.Event, occurrences []model.EventOccurrence, stamp time.Time) *ics.Calendar {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//somas//gym sessions//EN")

	end, endErr := recurrence.ParseClock(e.EndTime)
	for _, o := range occurrences {
		vevent := cal.AddEvent(o.ID.String() + "@somas")
		vevent.SetSummary(e.Title)
		vevent.SetDtStampTime(stamp)
		vevent.SetProperty(ics.ComponentPropertyDtStart, o.Date.Format(icsLocalLayout))
		if endErr == nil {
			finish := end.On(o.Date)
			if !finish.After(o.Date) {
				finish = finish.AddDate(0, 0, 1)
			}
			vevent.SetProperty(ics.ComponentPropertyDtEnd, finish.Format(icsLocalLayout))
		}
		if e.Location != nil {
			vevent.SetLocation(*e.Location)
		}
		switch {
		case o.Note != nil:
			vevent.SetDescription(*o.Note)
		case e.Description != nil:
			vevent.SetDescription(*e.Description)
		}
		if o.Status == model.OccurrenceCanceled {
			vevent.SetStatus(ics.ObjectStatusCancelled)
		} else {
			vevent.SetStatus(ics.ObjectStatusConfirmed)
		}
	}
	return cal
}

// GET /api/events/:id/calendar.ics
func (t *EventController) exportCalendar(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	id, apiErr := paramID(ctx)
	if apiErr != nil {
		return nil, apiErr
	}
	caller := engine.CallerOf(user)
	event, err := t.svc.GetEvent(ctx.Request.Context(), caller, id)
	if err != nil {
		return nil, api.FromError(err, "could not load event")
	}
	occurrences, err := t.svc.ListOccurrences(ctx.Request.Context(), caller, id, nil, nil)
	if err != nil {
		return nil, api.FromError(err, "could not list occurrences")
	}

	cal := buildCalendar(event, occurrences, t.now().UTC())
	ctx.Data(http.StatusOK, "text/calendar; charset=utf-8", []byte(cal.Serialize()))
	return nil, nil
}
