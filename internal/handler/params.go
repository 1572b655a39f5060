package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-scheduler/internal/scheduling"
	apperrors "github.com/jwalitptl/clinic-scheduler/pkg/errors"
)

// ParamID parses the named path parameter, answering 400 when it is not a UUID.
func ParamID(c *gin.Context, name, resource string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		RespondError(c, apperrors.BadRequest("invalid "+resource+" ID", err))
		return uuid.Nil, false
	}
	return id, true
}

// OptionalID parses an optional UUID; "" yields uuid.Nil.
func OptionalID(value string) (uuid.UUID, error) {
	if value == "" {
		return uuid.Nil, nil
	}
	return uuid.Parse(value)
}

// OptionalDate parses an optional date key; "" yields the zero Date.
func OptionalDate(value string) (scheduling.Date, error) {
	if value == "" {
		return scheduling.Date{}, nil
	}
	return scheduling.ParseDateKey(value)
}
