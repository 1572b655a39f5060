package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/clinic-scheduler/internal/handler"
)

// ErrorHandler logs every error attached to the request and answers for
// handlers that attached one without responding.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		requestID := c.GetString(ContextRequestID)
		for _, e := range c.Errors {
			appErr := handler.ToAppError(e.Err)
			var event *zerolog.Event
			if appErr.HTTPStatus() >= 500 {
				event = log.Error()
			} else {
				event = log.Debug()
			}
			event.
				Err(e.Err).
				Str("request_id", requestID).
				Str("path", c.Request.URL.Path).
				Str("method", c.Request.Method).
				Str("reason", appErr.Reason).
				Msg("Request error")
		}

		if c.Writer.Written() {
			return
		}
		appErr := handler.ToAppError(c.Errors.Last().Err)
		c.JSON(appErr.HTTPStatus(), &handler.Response{
			Status:  "error",
			Message: appErr.Message,
			Reason:  appErr.Reason,
		})
	}
}
