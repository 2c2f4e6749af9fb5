// Package metrics collects and exposes Prometheus metrics for the server.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is what services and HTTP middleware report to.
type Recorder interface {
	RecordSession(state string)
	RecordLogin(outcome string)
	RecordRegistration(outcome string)
	RecordHTTPRequest(method, route string, status int, duration time.Duration)
}

// Collector is the Prometheus-backed Recorder.
type Collector struct {
	sessions      *prometheus.CounterVec
	logins        *prometheus.CounterVec
	registrations *prometheus.CounterVec
	httpRequests  *prometheus.CounterVec
	httpLatency   *prometheus.HistogramVec
}

// NewCollector creates a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		sessions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "taskkeeper_session_checks_total",
			Help: "Bearer checks by final session state.",
		}, []string{"state"}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "taskkeeper_logins_total",
			Help: "Login attempts by outcome.",
		}, []string{"outcome"}),
		registrations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "taskkeeper_registrations_total",
			Help: "Registration attempts by outcome.",
		}, []string{"outcome"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "taskkeeper_http_requests_total",
			Help: "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status_code"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "taskkeeper_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	reg.MustRegister(
		c.sessions,
		c.logins,
		c.registrations,
		c.httpRequests,
		c.httpLatency,
	)

	return c
}

func (c *Collector) RecordSession(state string) {
	c.sessions.WithLabelValues(state).Inc()
}

func (c *Collector) RecordLogin(outcome string) {
	c.logins.WithLabelValues(outcome).Inc()
}

func (c *Collector) RecordRegistration(outcome string) {
	c.registrations.WithLabelValues(outcome).Inc()
}

func (c *Collector) RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	c.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.httpLatency.WithLabelValues(method, route).Observe(duration.Seconds())
}

type nopRecorder struct{}

// NewNop returns a Recorder that drops every observation.
func NewNop() Recorder { return nopRecorder{} }

func (nopRecorder) RecordSession(string)                                 {}
func (nopRecorder) RecordLogin(string)                                   {}
func (nopRecorder) RecordRegistration(string)                            {}
func (nopRecorder) RecordHTTPRequest(string, string, int, time.Duration) {}

// Handler returns the Prometheus scrape handler for gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// SetupMetricsRoute returns a mux serving /metrics.
func SetupMetricsRoute(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(gatherer))
	return mux
}
