package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-scheduler/internal/repository"
	"github.com/jwalitptl/clinic-scheduler/internal/scheduling"
	apperrors "github.com/jwalitptl/clinic-scheduler/pkg/errors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRespondErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		reason string
	}{
		{"overlap", fmt.Errorf("%w: 08:00-10:00", scheduling.ErrShiftOverlap), http.StatusConflict, "ShiftOverlap"},
		{"outside window", scheduling.ErrShiftOutsideWindow, http.StatusUnprocessableEntity, "ShiftOutsideWindow"},
		{"lead time", scheduling.ErrLeadTimeViolation, http.StatusUnprocessableEntity, "LeadTimeViolation"},
		{"no date", scheduling.ErrNoAvailableDate, http.StatusUnprocessableEntity, "NoAvailableDate"},
		{"race", fmt.Errorf("insert: %w", repository.ErrConflict), http.StatusConflict, "Conflict"},
		{"not found", apperrors.NotFound("shift", nil), http.StatusNotFound, ""},
		{"bad request", apperrors.BadRequest("invalid clinic ID", nil), http.StatusBadRequest, ""},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			RespondError(c, tt.err)

			assert.Equal(t, tt.status, w.Code)
			var body Response
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, "error", body.Status)
			assert.Equal(t, tt.reason, body.Reason)
			assert.NotEmpty(t, body.Message)
			assert.Len(t, c.Errors, 1)
		})
	}
}

func TestRespondErrorHidesInternalDetail(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	RespondError(c, errors.New("pq: password authentication failed"))

	assert.NotContains(t, w.Body.String(), "password")
}
