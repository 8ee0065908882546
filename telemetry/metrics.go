// Package telemetry holds the Prometheus collectors and the OpenTelemetry
// tracer setup.
package telemetry

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics is safe to use as a nil pointer; every method is then a no-op.
type Metrics struct {
	registry       *prometheus.Registry
	httpRequests   *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
	decisions      *prometheus.CounterVec
	decisionErrors *prometheus.CounterVec
	bulkInflight   prometheus.Gauge
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "themis_http_requests_total",
				Help: "HTTP requests by method, route and status",
			},
			[]string{"method", "route", "status"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "themis_http_request_duration_seconds",
				Help:    "HTTP request latency",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		decisions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "themis_decisions_total",
				Help: "Access decisions by effect",
			},
			[]string{"effect"},
		),
		decisionErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "themis_decision_errors_total",
				Help: "Failed decisions by error kind",
			},
			[]string{"kind"},
		),
		bulkInflight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "themis_bulk_inflight",
				Help: "Bulk check items currently being evaluated",
			},
		),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests,
		m.httpDuration,
		m.decisions,
		m.decisionErrors,
		m.bulkInflight,
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveDecision(allowed bool) {
	if m == nil {
		return
	}
	effect := "deny"
	if allowed {
		effect = "allow"
	}
	m.decisions.WithLabelValues(effect).Inc()
}

func (m *Metrics) ObserveDecisionError(kind string) {
	if m == nil {
		return
	}
	m.decisionErrors.WithLabelValues(kind).Inc()
}

// TrackBulkItem marks one bulk item in flight; call the returned func when
// it finishes.
func (m *Metrics) TrackBulkItem() func() {
	if m == nil {
		return func() {}
	}
	m.bulkInflight.Inc()
	return m.bulkInflight.Dec
}
