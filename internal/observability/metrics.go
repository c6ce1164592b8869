package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	httpErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_errors_total",
			Help: "Total number of HTTP error responses by error code",
		},
		[]string{"method", "endpoint", "code"},
	)

	complaintsSubmittedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "complaints_submitted_total",
			Help: "Total number of complaints submitted",
		},
		[]string{"category", "priority"},
	)

	statusTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "complaint_status_transitions_total",
			Help: "Total number of complaint status transitions",
		},
		[]string{"from", "to"},
	)

	sentimentCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentiment_calls_total",
			Help: "Total number of sentiment oracle calls",
		},
		[]string{"outcome"},
	)

	sentimentCallDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sentiment_call_duration_seconds",
			Help:    "Sentiment oracle call duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		},
	)
)

// RecordHTTPRequest records counters and latency for a completed request.
func RecordHTTPRequest(method, endpoint string, status int, duration time.Duration) {
	if endpoint == "" {
		endpoint = "unknown"
	}
	httpRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordHTTPError records an error response by domain error code.
func RecordHTTPError(method, endpoint, code string) {
	if endpoint == "" {
		endpoint = "unknown"
	}
	httpErrorsTotal.WithLabelValues(method, endpoint, code).Inc()
}

// RecordComplaintSubmitted records a successful complaint creation.
func RecordComplaintSubmitted(category, priority string) {
	complaintsSubmittedTotal.WithLabelValues(category, priority).Inc()
}

// RecordStatusTransition records an admin status change.
func RecordStatusTransition(from, to string) {
	statusTransitionsTotal.WithLabelValues(from, to).Inc()
}

// RecordSentimentCall records the outcome and latency of an oracle call.
func RecordSentimentCall(success bool, duration time.Duration) {
	outcome := "success"
	if !success {
		outcome = "degraded"
	}
	sentimentCallsTotal.WithLabelValues(outcome).Inc()
	sentimentCallDuration.Observe(duration.Seconds())
}
