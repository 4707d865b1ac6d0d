package router

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/deppfellow/visitor-function/internal/config"
	"github.com/deppfellow/visitor-function/internal/handler"
	"github.com/deppfellow/visitor-function/internal/metrics"
	"github.com/deppfellow/visitor-function/internal/repository"
	"github.com/deppfellow/visitor-function/internal/server"
	"github.com/deppfellow/visitor-function/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) *echo.Echo {
	t.Helper()

	log := zerolog.Nop()
	s := &server.Server{Config: config.Default(), Logger: &log, Metrics: metrics.New()}

	repos := &repository.Repositories{Visitors: repository.NewMemoryRepository()}
	services, err := service.NewServices(s, repos)
	require.NoError(t, err)

	return NewRouter(s, handler.NewHandlers(s, services))
}

func TestRouter_FunctionRoute(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/HttpExample", strings.NewReader(`{"name": "Ada"}`))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Hello Ada", rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))
}

func TestRouter_Rejection(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/HttpExample", strings.NewReader(""))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "missing body")
}

func TestRouter_SystemRoutes(t *testing.T) {
	r := newTestRouter(t)

	tests := []struct {
		path   string
		status int
		body   string
	}{
		{"/status", http.StatusOK, `"status":"healthy"`},
		{"/metrics", http.StatusOK, "visitor_requests_total"},
		{"/nope", http.StatusNotFound, "Route not found"},
	}

	// One request first so the request counter has a sample to expose.
	warm := httptest.NewRequest(http.MethodPost, "/api/HttpExample", strings.NewReader(`{"name": "Ada"}`))
	r.ServeHTTP(httptest.NewRecorder(), warm)

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.body)
		})
	}
}
