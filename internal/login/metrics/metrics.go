// Package metrics holds the Prometheus collectors of the login service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "headcount_login"

// Login attempt results.
const (
	ResultSuccess  = "success"
	ResultFailure  = "failure"
	ResultUpgraded = "upgraded"
)

var (
	// LoginAttemptsTotal counts authentication attempts by result.
	LoginAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "attempts_total",
			Help:      "Authentication attempts by result.",
		},
		[]string{"result"},
	)

	// CredentialWritesTotal counts successful writes to the login table.
	CredentialWritesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "credential_writes_total",
			Help:      "Credential rows created or updated, by operation.",
		},
		[]string{"op"},
	)

	// SeedRowsInsertedTotal counts seed rows written.
	SeedRowsInsertedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "seed_rows_inserted_total",
			Help:      "Seed accounts inserted into the login table.",
		},
	)

	// RateLimitedTotal counts requests rejected by a rate limiter.
	RateLimitedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limited_total",
			Help:      "Requests rejected by rate limiting, by route.",
		},
		[]string{"route"},
	)

	// HTTPRequestsTotal counts requests by method, route pattern and status.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		},
		[]string{"method", "route", "status"},
	)

	// HTTPRequestDurationSeconds is request latency by route pattern.
	HTTPRequestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2.5, 10), // 1ms to ~9.3s; argon2 sits around 50ms
		},
		[]string{"method", "route"},
	)
)

// RateLimited returns a callback for httpx rate limiters that counts
// rejections under route.
func RateLimited(route string) func(*http.Request) {
	c := RateLimitedTotal.WithLabelValues(route)
	return func(*http.Request) { c.Inc() }
}

// HTTPMiddleware records request counts and latency. It must wrap the
// ServeMux directly so the matched pattern is visible after the call.
func HTTPMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		HTTPRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(rec.status)).Inc()
		HTTPRequestDurationSeconds.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}
