package health

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type pinger struct{ err error }

func (p pinger) PingContext(context.Context) error { return p.err }

func TestHealth(t *testing.T) {
	gin.SetMode(gin.TestMode)

	for _, tt := range []struct {
		name   string
		db     Pinger
		path   string
		status int
	}{
		{"live", pinger{errors.New("down")}, "/health/live", http.StatusOK},
		{"ready", pinger{}, "/health/ready", http.StatusOK},
		{"not ready", pinger{errors.New("down")}, "/health/ready", http.StatusServiceUnavailable},
	} {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			NewHandler(tt.db).RegisterRoutes(r.Group(""))

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, tt.status, w.Code)
		})
	}
}
