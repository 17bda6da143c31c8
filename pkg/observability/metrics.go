// Package observability provides Prometheus metrics for the anfrage client.
package observability

import "github.com/prometheus/client_golang/prometheus"

// LLMBuckets defines histogram buckets suited for LLM inference latencies,
// ranging from 100ms to 120s.
var LLMBuckets = []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120}

var (
	// RequestsTotal counts completed requests by model and outcome.
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "anfrage_requests_total",
			Help: "Total requests",
		},
		[]string{"model", "outcome"},
	)

	// RequestDuration records end-to-end request duration in seconds by model.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "anfrage_request_duration_seconds",
			Help:    "Request duration",
			Buckets: LLMBuckets,
		},
		[]string{"model"},
	)

	// StreamsActive tracks the number of SSE streams currently being consumed.
	StreamsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "anfrage_streams_active",
			Help: "Active SSE streams",
		},
	)

	// TokensTotal counts reported tokens by direction (input/output).
	TokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "anfrage_tokens_total",
			Help: "Token count",
		},
		[]string{"model", "direction"},
	)

	// TokenRefreshesTotal counts OAuth token exchanges by outcome.
	TokenRefreshesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "anfrage_token_refreshes_total",
			Help: "OAuth token refreshes",
		},
		[]string{"outcome"},
	)
)

func init() {
	prometheus.MustRegister(
		RequestsTotal,
		RequestDuration,
		StreamsActive,
		TokensTotal,
		TokenRefreshesTotal,
	)
}
