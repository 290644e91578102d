package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service's Prometheus collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	// Flow metrics
	FlowRuns     *prometheus.CounterVec
	FlowDuration *prometheus.HistogramVec

	// Backend metrics
	BackendCalls    *prometheus.CounterVec
	BackendDuration *prometheus.HistogramVec

	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Visitor metrics
	VisitorsActive prometheus.Gauge
	RateLimited    prometheus.Counter
}

// NewMetrics creates a new metrics collector with process and Go runtime
// collectors registered.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		FlowRuns: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "job_assistant_flow_runs_total",
				Help: "Total number of finished flows",
			},
			[]string{"flow", "outcome"},
		),
		FlowDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "job_assistant_flow_duration_seconds",
				Help:    "Flow duration in seconds",
				Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"flow"},
		),

		BackendCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "job_assistant_backend_calls_total",
				Help: "Total number of backend API calls",
			},
			[]string{"endpoint", "outcome"},
		),
		BackendDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "job_assistant_backend_duration_seconds",
				Help:    "Backend API call duration in seconds",
				Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"endpoint"},
		),

		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "job_assistant_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "job_assistant_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "route"},
		),

		VisitorsActive: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "job_assistant_visitors_active",
				Help: "Number of visitor sessions held in memory",
			},
		),
		RateLimited: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "job_assistant_rate_limited_total",
				Help: "Total number of requests rejected by the rate limiter",
			},
		),
	}
}

// FlowFinished records a finished flow.
func (m *Metrics) FlowFinished(flow, outcome string, elapsed time.Duration) {
	m.FlowRuns.WithLabelValues(flow, outcome).Inc()
	m.FlowDuration.WithLabelValues(flow).Observe(elapsed.Seconds())
}

// BackendCall records a finished backend call.
func (m *Metrics) BackendCall(endpoint, outcome string, elapsed time.Duration) {
	m.BackendCalls.WithLabelValues(endpoint, outcome).Inc()
	m.BackendDuration.WithLabelValues(endpoint).Observe(elapsed.Seconds())
}

// ObserveRequest records a served HTTP request.
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	m.RequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.RequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// Registry returns the registry the collectors live on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
