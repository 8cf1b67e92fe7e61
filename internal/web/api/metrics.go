package api

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics are the Prometheus collectors of one API. Each Metrics owns its
// registry so several APIs can live in one process
type Metrics struct {
	registry *prometheus.Registry

	requests    *prometheus.HistogramVec
	validations *prometheus.CounterVec
	fieldErrors *prometheus.CounterVec
	predicates  *prometheus.CounterVec
	renders     *prometheus.CounterVec
}

// NewMetrics creates and registers the collectors
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "fieldmeta",
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests by route, method and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method", "status"}),
		validations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fieldmeta",
			Name:      "validations_total",
			Help:      "Validation requests by outcome.",
		}, []string{"outcome"}),
		fieldErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fieldmeta",
			Name:      "field_errors_total",
			Help:      "Rejected field values by error code.",
		}, []string{"code"}),
		predicates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fieldmeta",
			Name:      "predicates_total",
			Help:      "Filter compilations by outcome.",
		}, []string{"outcome"}),
		renders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fieldmeta",
			Name:      "renders_total",
			Help:      "Renders by mode and fragment cache result.",
		}, []string{"mode", "cache"}),
	}

	m.registry.MustRegister(
		m.requests,
		m.validations,
		m.fieldErrors,
		m.predicates,
		m.renders,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the registry the collectors live in
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) observeRequest(route, method, status string, d time.Duration) {
	m.requests.WithLabelValues(route, method, status).Observe(d.Seconds())
}
