// Package metrics defines the Prometheus metrics exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// LLM metrics
	LLMRequestsTotal   *prometheus.CounterVec
	LLMDurationSeconds *prometheus.HistogramVec

	// Recommendation metrics
	RecommendationsTotal *prometheus.CounterVec
	MatchResults         *prometheus.HistogramVec

	// Query metrics
	IntentsTotal  *prometheus.CounterVec
	FeedbackTotal prometheus.Counter

	// Profile metrics
	ProfilesStored prometheus.Gauge

	// Dataset metrics
	DatasetRows        prometheus.Gauge
	DatasetLoadsTotal  *prometheus.CounterVec
	DatasetRowsDropped *prometheus.CounterVec

	// HTTP metrics
	HTTPErrorsTotal *prometheus.CounterVec

	// Rate limiter metrics
	RateLimiterDropped *prometheus.CounterVec
	RateLimiterUsers   *prometheus.GaugeVec

	// Singleflight metrics
	SingleflightDedupTotal *prometheus.CounterVec
}

// New creates a new Metrics instance with all metrics registered
func New(registry *prometheus.Registry) *Metrics {
	factory := promauto.With(registry)

	m := &Metrics{
		LLMRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "advisor_llm_requests_total",
				Help: "Total number of LLM completion calls by provider, purpose and status",
			},
			[]string{"provider", "purpose", "status"}, // status: success or an error kind (timeout, rate_limit, ...)
		),

		LLMDurationSeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "advisor_llm_duration_seconds",
				Help:    "LLM completion latency in seconds by provider and purpose",
				Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 45, 60}, // Covers the 45s default deadline
			},
			[]string{"provider", "purpose"}, // purpose: fallback, initial, suggest, query
		),

		RecommendationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "advisor_recommendations_total",
				Help: "Total number of recommendation replies by strategy and status",
			},
			[]string{"strategy", "status"}, // strategy: fallback, blended, suggest
		),

		MatchResults: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "advisor_match_results",
				Help:    "Number of dataset matches returned per recommendation",
				Buckets: []float64{0, 1, 2, 3, 4, 5},
			},
			[]string{"policy"},
		),

		IntentsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "advisor_query_intents_total",
				Help: "Total number of classified chat queries by intent",
			},
			[]string{"intent"},
		),

		FeedbackTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "advisor_feedback_total",
				Help: "Total number of feedback submissions",
			},
		),

		ProfilesStored: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "advisor_profiles_stored",
				Help: "Number of profiles held in memory",
			},
		),

		DatasetRows: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "advisor_dataset_rows",
				Help: "Number of university records in the active dataset",
			},
		),

		DatasetLoadsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "advisor_dataset_loads_total",
				Help: "Total number of dataset loads by source and status",
			},
			[]string{"source", "status"}, // source: sqlite, r2, file; status: success, empty, error
		),

		DatasetRowsDropped: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "advisor_dataset_rows_dropped_total",
				Help: "Total number of source rows dropped during normalization by reason",
			},
			[]string{"reason"}, // reason: malformed, incomplete, duplicate
		),

		HTTPErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "advisor_http_errors_total",
				Help: "Total HTTP errors by type and endpoint",
			},
			[]string{"error_type", "endpoint"}, // error_type: bad_request, rate_limit, service_error
		),

		RateLimiterDropped: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "advisor_rate_limiter_dropped_total",
				Help: "Total number of requests dropped by rate limiter",
			},
			[]string{"limiter_type"},
		),

		RateLimiterUsers: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "advisor_rate_limiter_active_keys",
				Help: "Number of keys currently tracked by a rate limiter",
			},
			[]string{"limiter_type"},
		),

		SingleflightDedupTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "advisor_singleflight_dedup_total",
				Help: "Total number of deduplicated calls (callers that waited instead of executing)",
			},
			[]string{"module"},
		),
	}

	return m
}

// RecordLLMRequest records a completion call outcome and latency
func (m *Metrics) RecordLLMRequest(provider, purpose, status string, duration float64) {
	m.LLMRequestsTotal.WithLabelValues(provider, purpose, status).Inc()
	m.LLMDurationSeconds.WithLabelValues(provider, purpose).Observe(duration)
}

// RecordRecommendation records a recommendation reply
func (m *Metrics) RecordRecommendation(strategy, status string) {
	m.RecommendationsTotal.WithLabelValues(strategy, status).Inc()
}

// RecordMatches records how many matches a policy produced
func (m *Metrics) RecordMatches(policy string, count int) {
	m.MatchResults.WithLabelValues(policy).Observe(float64(count))
}

// RecordIntent records a classified chat query
func (m *Metrics) RecordIntent(intent string) {
	m.IntentsTotal.WithLabelValues(intent).Inc()
}

// RecordFeedback records a feedback submission
func (m *Metrics) RecordFeedback() {
	m.FeedbackTotal.Inc()
}

// SetProfilesStored updates the stored profile gauge
func (m *Metrics) SetProfilesStored(n int) {
	m.ProfilesStored.Set(float64(n))
}

// RecordDatasetLoad records a dataset load attempt and, on success, the row count
func (m *Metrics) RecordDatasetLoad(source, status string, rows int) {
	m.DatasetLoadsTotal.WithLabelValues(source, status).Inc()
	if status != "error" {
		m.DatasetRows.Set(float64(rows))
	}
}

// RecordDatasetDrops records rows dropped during normalization
func (m *Metrics) RecordDatasetDrops(reason string, n int) {
	if n > 0 {
		m.DatasetRowsDropped.WithLabelValues(reason).Add(float64(n))
	}
}

// RecordHTTPError records HTTP error metrics
func (m *Metrics) RecordHTTPError(errorType, endpoint string) {
	m.HTTPErrorsTotal.WithLabelValues(errorType, endpoint).Inc()
}

// RecordRateLimiterDrop records a request dropped by rate limiter
func (m *Metrics) RecordRateLimiterDrop(limiterType string) {
	m.RateLimiterDropped.WithLabelValues(limiterType).Inc()
}

// SetRateLimiterKeys updates the number of tracked limiter keys
func (m *Metrics) SetRateLimiterKeys(limiterType string, n int) {
	m.RateLimiterUsers.WithLabelValues(limiterType).Set(float64(n))
}

// RecordSingleflightDedup records a deduplicated call
func (m *Metrics) RecordSingleflightDedup(module string) {
	m.SingleflightDedupTotal.WithLabelValues(module).Inc()
}
