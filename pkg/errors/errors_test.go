package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPStatus(t *testing.T) {
	cause := fmt.Errorf("boom")
	tests := []struct {
		err  *AppError
		want int
	}{
		{NotFound("shift", cause), http.StatusNotFound},
		{BadRequest("bad", cause), http.StatusBadRequest},
		{Unauthorized(cause), http.StatusUnauthorized},
		{Conflict("taken", "ShiftOverlap", cause), http.StatusConflict},
		{Unprocessable("closed", "NoOperatingWindow", cause), http.StatusUnprocessableEntity},
		{Internal(cause), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.err.HTTPStatus(), tt.err.Message)
	}
}

func TestAsUnwrapsChain(t *testing.T) {
	appErr := Conflict("taken", "ShiftOverlap", nil)
	wrapped := fmt.Errorf("failed to create shift: %w", appErr)

	got, ok := As(wrapped)
	require.True(t, ok)
	assert.Equal(t, "ShiftOverlap", got.Reason)

	_, ok = As(fmt.Errorf("plain"))
	assert.False(t, ok)
}

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, "shift not found: gone", NotFound("shift", fmt.Errorf("gone")).Error())
	assert.Equal(t, "unauthorized", Unauthorized(nil).Error())
}
