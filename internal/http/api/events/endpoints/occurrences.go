package endpoints

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/aligeramy/somas/internal/engine"
	"github.com/aligeramy/somas/internal/http/api"
	"github.com/aligeramy/somas/internal/http/api/events/packets"
	"github.com/aligeramy/somas/internal/model"
)

var localLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// parseLocal reads a gym wall-clock timestamp without zone information.
func parseLocal(s string) (time.Time, bool) {
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// parseBound accepts a date or a wall-clock timestamp. A bare date used as
// an upper bound covers the whole day.
func parseBound(field, s string, upper bool) (*time.Time, *api.APIError) {
	if s == "" {
		return nil, nil
	}
	if t, ok := parseLocal(s); ok {
		return &t, nil
	}
	d, apiErr := parseDate(field, s)
	if apiErr != nil {
		return nil, apiErr
	}
	if upper {
		d = d.AddDate(0, 0, 1).Add(-time.Microsecond)
	}
	return &d, nil
}

// GET /api/events/:id/occurrences?from=YYYY-MM-DD&to=YYYY-MM-DD
func (t *EventController) listOccurrences(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	id, apiErr := paramID(ctx)
	if apiErr != nil {
		return nil, apiErr
	}
	from, apiErr := parseBound("from", ctx.Query("from"), false)
	if apiErr != nil {
		return nil, apiErr
	}
	to, apiErr := parseBound("to", ctx.Query("to"), true)
	if apiErr != nil {
		return nil, apiErr
	}

	all, err := t.svc.ListOccurrences(ctx.Request.Context(), engine.CallerOf(user), id, from, to)
	if err != nil {
		return nil, api.FromError(err, "could not list occurrences")
	}
	out := make([]packets.OccurrenceResponse, 0, len(all))
	for i := range all {
		out = append(out, packets.NewOccurrenceResponse(&all[i]))
	}
	return out, nil
}

// POST /api/events/:id/occurrences
func (t *EventController) addOccurrence(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	id, apiErr := paramID(ctx)
	if apiErr != nil {
		return nil, apiErr
	}
	var request packets.CreateOccurrenceRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}
	at, ok := parseLocal(request.Date)
	if !ok {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "date must be YYYY-MM-DDTHH:MM"}
	}

	o, err := t.svc.AddCustomOccurrence(ctx.Request.Context(), engine.CallerOf(user), id, at, request.Note)
	if err != nil {
		return nil, api.FromError(err, "could not add occurrence")
	}
	return api.Created{Body: packets.NewOccurrenceResponse(o)}, nil
}

// POST /api/occurrences/:id/cancel
func (t *EventController) cancelOccurrence(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	id, apiErr := paramID(ctx)
	if apiErr != nil {
		return nil, apiErr
	}
	o, err := t.svc.CancelOccurrence(ctx.Request.Context(), engine.CallerOf(user), id)
	if err != nil {
		return nil, api.FromError(err, "could not cancel occurrence")
	}
	return packets.NewOccurrenceResponse(o), nil
}

// POST /api/occurrences/:id/restore
func (t *EventController) restoreOccurrence(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	id, apiErr := paramID(ctx)
	if apiErr != nil {
		return nil, apiErr
	}
	o, err := t.svc.RestoreOccurrence(ctx.Request.Context(), engine.CallerOf(user), id)
	if err != nil {
		return nil, api.FromError(err, "could not restore occurrence")
	}
	return packets.NewOccurrenceResponse(o), nil
}

// DELETE /api/occurrences/:id
func (t *EventController) removeOccurrence(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	id, apiErr := paramID(ctx)
	if apiErr != nil {
		return nil, apiErr
	}
	if err := t.svc.RemoveCustomOccurrence(ctx.Request.Context(), engine.CallerOf(user), id); err != nil {
		return nil, api.FromError(err, "could not remove occurrence")
	}
	return gin.H{"message": "occurrence removed"}, nil
}

// PUT /api/occurrences/:id/rsvp
func (t *EventController) upsertRSVP(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	id, apiErr := paramID(ctx)
	if apiErr != nil {
		return nil, apiErr
	}
	var request packets.RSVPRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	r, err := t.svc.UpsertRSVP(ctx.Request.Context(), engine.CallerOf(user), request.UserID, id, model.RSVPStatus(request.Status), t.wallClock())
	if err != nil {
		return nil, api.FromError(err, "could not save rsvp")
	}
	return packets.NewRSVPResponse(r), nil
}

// GET /api/occurrences/:id/rsvps
func (t *EventController) listRSVPs(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	id, apiErr := paramID(ctx)
	if apiErr != nil {
		return nil, apiErr
	}
	all, err := t.svc.ListRSVPs(ctx.Request.Context(), engine.CallerOf(user), id)
	if err != nil {
		return nil, api.FromError(err, "could not list rsvps")
	}
	out := make([]packets.RSVPResponse, 0, len(all))
	for i := range all {
		out = append(out, packets.NewRSVPResponse(&all[i]))
	}
	return out, nil
}
