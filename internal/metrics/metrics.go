// Package metrics holds the process-wide Prometheus collectors.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "uniswipe_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "uniswipe_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "uniswipe_http_requests_in_flight",
			Help: "Number of HTTP requests currently being served",
		},
	)

	// Recommendations
	RecommendationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "uniswipe_recommendation_duration_seconds",
			Help:    "Time to load inputs and score recommendations for a user",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
	)

	RecommendationResults = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "uniswipe_recommendation_results",
			Help:    "Number of universities returned per recommendation run",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250},
		},
	)

	RecommendationRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "uniswipe_recommendation_runs_total",
			Help: "Recommendation runs by scoring path",
		},
		[]string{"path"}, // "scored", "fallback"
	)

	// Catalog snapshot
	CatalogRefreshes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "uniswipe_catalog_refreshes_total",
			Help: "Catalog snapshot refreshes by outcome",
		},
		[]string{"outcome"},
	)

	CatalogUniversities = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "uniswipe_catalog_universities",
			Help: "Universities in the current catalog snapshot",
		},
	)

	// Identity provider
	IdentityRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "uniswipe_identity_requests_total",
			Help: "Identity provider calls by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "uniswipe_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "uniswipe_circuit_breaker_transitions_total",
			Help: "Circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	// Jobs
	JobRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "uniswipe_job_runs_total",
			Help: "Background job executions by outcome",
		},
		[]string{"job", "outcome"},
	)
)

// RecordHTTPRequest records one served request
func RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	code := strconv.Itoa(status)
	HTTPRequestDuration.WithLabelValues(method, route, code).Observe(duration.Seconds())
	HTTPRequestsTotal.WithLabelValues(method, route, code).Inc()
}

// RecordRecommendation records one recommendation run
func RecordRecommendation(fallback bool, results int, duration time.Duration) {
	path := "scored"
	if fallback {
		path = "fallback"
	}
	RecommendationRuns.WithLabelValues(path).Inc()
	RecommendationResults.Observe(float64(results))
	RecommendationDuration.Observe(duration.Seconds())
}

// Outcome turns an error into a metric label
func Outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
