// Package observability provides Prometheus metrics and HTTP middleware
// for monitoring the aufgabe service.
package observability

import "github.com/prometheus/client_golang/prometheus"

// APIBuckets defines histogram buckets suited for CRUD request latencies.
// Login and registration sit at the high end because bcrypt hashing is
// deliberately slow.
var APIBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5}

var (
	// RequestsTotal counts all HTTP requests by method, path, and status class.
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aufgabe_requests_total",
			Help: "Total requests",
		},
		[]string{"method", "path", "status"},
	)

	// RequestDuration records HTTP request duration in seconds by method and path.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "aufgabe_request_duration_seconds",
			Help:    "Request duration",
			Buckets: APIBuckets,
		},
		[]string{"method", "path"},
	)

	// AuthAttemptsTotal counts register and login attempts by outcome.
	AuthAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aufgabe_auth_attempts_total",
			Help: "Authentication attempts",
		},
		[]string{"operation", "outcome"},
	)

	// TokensRevokedTotal counts tokens removed by logout.
	TokensRevokedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "aufgabe_tokens_revoked_total",
			Help: "Tokens revoked",
		},
	)
)

func init() {
	prometheus.MustRegister(
		RequestsTotal,
		RequestDuration,
		AuthAttemptsTotal,
		TokensRevokedTotal,
	)
}
