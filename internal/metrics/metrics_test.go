package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveRequest(t *testing.T) {
	m := New()
	m.ObserveRequest(OutcomeSuccess, 10*time.Millisecond)
	m.ObserveRequest(OutcomeSuccess, 20*time.Millisecond)
	m.ObserveRequest("MISSING_BODY", time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues(OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("MISSING_BODY")))
}

func TestObserveWrite(t *testing.T) {
	m := New()
	m.ObserveWrite("memory", nil, time.Millisecond)
	m.ObserveWrite("memory", errors.New("down"), time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.writes.WithLabelValues("memory", OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.writes.WithLabelValues("memory", OutcomeError)))
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveRequest(OutcomeSuccess, time.Second)
		m.ObserveWrite("memory", nil, time.Second)
	})
}

func TestHandler(t *testing.T) {
	m := New()
	m.ObserveRequest(OutcomeSuccess, time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `visitor_requests_total{outcome="success"} 1`))
}
