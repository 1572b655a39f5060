package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/clinic-scheduler/internal/repository"
	"github.com/jwalitptl/clinic-scheduler/internal/scheduling"
	apperrors "github.com/jwalitptl/clinic-scheduler/pkg/errors"
	"github.com/jwalitptl/clinic-scheduler/pkg/validator"
)

type Response struct {
	Status  string                 `json:"status"`
	Message string                 `json:"message,omitempty"`
	Reason  string                 `json:"reason,omitempty"`
	Errors  []validator.FieldError `json:"errors,omitempty"`
	Data    interface{}            `json:"data,omitempty"`
}

func NewSuccessResponse(data interface{}) *Response {
	return &Response{
		Status: "success",
		Data:   data,
	}
}

func NewErrorResponse(message string) *Response {
	return &Response{
		Status:  "error",
		Message: message,
	}
}

// RespondError writes err as a JSON error and records it on the context for
// the error-logging middleware.
func RespondError(c *gin.Context, err error) {
	_ = c.Error(err)
	if c.Writer.Written() {
		return
	}
	appErr := ToAppError(err)
	c.AbortWithStatusJSON(appErr.HTTPStatus(), &Response{
		Status:  "error",
		Message: appErr.Message,
		Reason:  appErr.Reason,
	})
}

// RespondBindError reports a request that failed binding or validation.
func RespondBindError(c *gin.Context, err error) {
	_ = c.Error(err).SetType(gin.ErrorTypeBind)
	resp := NewErrorResponse("invalid request")
	if fields, ok := validator.Translate(err); ok {
		resp.Errors = fields
	} else {
		resp.Message = "invalid request: " + err.Error()
	}
	c.AbortWithStatusJSON(http.StatusBadRequest, resp)
}

// ToAppError maps service and engine errors onto HTTP-facing errors.
// Scheduling rejections are 422 except overlaps, which are 409 like any
// write that lost a race.
func ToAppError(err error) *apperrors.AppError {
	if appErr, ok := apperrors.As(err); ok {
		return appErr
	}

	var schedErr *scheduling.Error
	if errors.As(err, &schedErr) {
		if schedErr.Code == scheduling.CodeShiftOverlap {
			return apperrors.Conflict(err.Error(), string(schedErr.Code), err)
		}
		return apperrors.Unprocessable(err.Error(), string(schedErr.Code), err)
	}

	switch {
	case errors.Is(err, repository.ErrConflict):
		return apperrors.Conflict("the schedule changed while saving, please retry", "Conflict", err)
	case errors.Is(err, repository.ErrNotFound):
		return apperrors.NotFound("resource", err)
	}
	return apperrors.Internal(err)
}
