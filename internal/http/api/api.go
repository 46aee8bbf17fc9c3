package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/aligeramy/somas/internal/engine"
	"github.com/aligeramy/somas/internal/http/middleware"
	"github.com/aligeramy/somas/internal/model"
)

type APIError struct {
	Code    int
	Message string
}

type HandlerFuncWithAuth func(ctx *gin.Context, user *model.User) (any, *APIError)
type HandlerFunc func(ctx *gin.Context) (any, *APIError)

// Created wraps a result that should be answered with 201.
type Created struct {
	Body any
}

func respond(ctx *gin.Context, result any, apiErr *APIError) {
	if apiErr != nil {
		ctx.JSON(apiErr.Code, gin.H{"error": apiErr.Message})
		return
	}
	// handlers that stream their own body (calendar export) return nil
	if ctx.Writer.Written() {
		return
	}
	if c, ok := result.(Created); ok {
		ctx.JSON(http.StatusCreated, c.Body)
		return
	}
	ctx.JSON(http.StatusOK, result)
}

func ResolveEndpointWithAuth(h HandlerFuncWithAuth) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		user, ok := middleware.GetCurrentUser(ctx)
		if !ok {
			ctx.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		result, apiErr := h(ctx, user)
		respond(ctx, result, apiErr)
	}
}

func ResolveEndpoint(h HandlerFunc) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		result, apiErr := h(ctx)
		respond(ctx, result, apiErr)
	}
}

// FromError maps an engine error to a response. message is used for
// unexpected failures so storage details never reach the client.
func FromError(err error, message string) *APIError {
	switch {
	case errors.Is(err, engine.ErrValidation):
		return &APIError{Code: http.StatusBadRequest, Message: err.Error()}
	case errors.Is(err, engine.ErrNotFound):
		return &APIError{Code: http.StatusNotFound, Message: err.Error()}
	case errors.Is(err, engine.ErrForbidden):
		return &APIError{Code: http.StatusForbidden, Message: err.Error()}
	case errors.Is(err, engine.ErrInvalidState):
		return &APIError{Code: http.StatusUnprocessableEntity, Message: err.Error()}
	case errors.Is(err, engine.ErrConflict):
		return &APIError{Code: http.StatusConflict, Message: err.Error()}
	}
	log.Error().Err(err).Msg(message)
	return &APIError{Code: http.StatusInternalServerError, Message: message}
}
