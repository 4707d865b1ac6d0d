// Package metrics exposes Prometheus collectors for the visitor function.
//
// Metrics (namespace "visitor"):
//
//   - requests_total (counter): invocations by outcome ("success" or a rejection code).
//   - request_duration_seconds (histogram): end-to-end handling time by outcome.
//   - store_writes_total (counter): sink writes by driver and status.
//   - store_write_duration_seconds (histogram): sink write latency by driver.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// Metrics holds the collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	writes          *prometheus.CounterVec
	writeDuration   *prometheus.HistogramVec
}

// New registers all collectors on a fresh registry, together with the Go
// runtime and process collectors.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)

	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "visitor",
			Name:      "requests_total",
			Help:      "Function invocations by outcome",
		}, []string{"outcome"}),
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "visitor",
			Name:      "request_duration_seconds",
			Help:      "Time spent handling an invocation",
			Buckets:   prometheus.DefBuckets,
		}, []string{"outcome"}),
		writes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "visitor",
			Name:      "store_writes_total",
			Help:      "Visitor documents written to the sink by driver and status",
		}, []string{"driver", "status"}),
		writeDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "visitor",
			Name:      "store_write_duration_seconds",
			Help:      "Sink write latency",
			Buckets:   []float64{.001, .005, .01, .05, .1, .25, .5, 1, 2.5, 5},
		}, []string{"driver"}),
	}
}

// ObserveRequest records one invocation.
func (m *Metrics) ObserveRequest(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(outcome).Inc()
	m.requestDuration.WithLabelValues(outcome).Observe(d.Seconds())
}

// ObserveWrite records one sink write.
func (m *Metrics) ObserveWrite(driver string, err error, d time.Duration) {
	if m == nil {
		return
	}
	status := OutcomeSuccess
	if err != nil {
		status = OutcomeError
	}
	m.writes.WithLabelValues(driver, status).Inc()
	m.writeDuration.WithLabelValues(driver).Observe(d.Seconds())
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
