package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
)

func TestCorrelationMiddleware(t *testing.T) {
	srv, _ := newBareServer(t, testConfig(), clockwork.NewRealClock())

	t.Run("generates an ID when absent", func(t *testing.T) {
		rec := doRequest(srv, http.MethodGet, "/health/live")
		assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	})

	t.Run("honors an incoming ID", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
		req.Header.Set("X-Request-ID", "req-123")
		rec := httptest.NewRecorder()
		srv.echo.ServeHTTP(rec, req)

		assert.Equal(t, "req-123", rec.Header().Get("X-Request-ID"))
	})
}
