package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "cowork"

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status_code"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency distribution",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_in_flight",
			Help:      "Current number of HTTP requests being processed",
		},
	)
)

// Lead metrics
var (
	LeadSubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lead_submissions_total",
			Help:      "Total number of call back submissions by outcome",
		},
		[]string{"status"}, // "sent", "failed", "invalid", "in_flight"
	)

	LeadValidationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lead_validation_errors_total",
			Help:      "Total number of field-level validation failures",
		},
		[]string{"field", "kind"},
	)

	LeadDispatchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "lead_dispatch_duration_seconds",
			Help:      "Time spent in the external email send",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"provider"},
	)

	RateLimitedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the rate limiter",
		},
		[]string{"path"},
	)
)

// Submission outcomes
const (
	StatusSent     = "sent"
	StatusFailed   = "failed"
	StatusInvalid  = "invalid"
	StatusInFlight = "in_flight"
)

// LeadSubmitted records the outcome of one submission attempt.
func LeadSubmitted(status string) {
	LeadSubmissionsTotal.WithLabelValues(status).Inc()
}

// LeadFieldInvalid records a failed field.
func LeadFieldInvalid(field, kind string) {
	LeadValidationErrors.WithLabelValues(field, kind).Inc()
}

// LeadDispatched records the external send latency.
func LeadDispatched(provider string, duration time.Duration) {
	LeadDispatchDuration.WithLabelValues(provider).Observe(duration.Seconds())
}

// RateLimited records a request rejected by the rate limiter. Only the
// limited routes reach it, so path cardinality stays bounded.
func RateLimited(path string) {
	RateLimitedTotal.WithLabelValues(path).Inc()
}
