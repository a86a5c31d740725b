// Tripmatch - Travel Companion Compatibility Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tripmatch

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Scoring Metrics
	CalculationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "compat_calculations_total",
			Help: "Total number of compatibility calculation requests",
		},
		[]string{"kind", "outcome"},
	)

	CalculationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "compat_calculation_duration_seconds",
			Help:    "Duration of compatibility calculation requests in seconds",
			Buckets: []float64{.0005, .001, .005, .01, .05, .1, .5, 1, 5},
		},
		[]string{"kind"},
	)

	FallbackDimensions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "compat_fallback_dimensions_total",
			Help: "Total number of dimensions scored with a fallback value",
		},
	)

	BulkPairs = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "compat_bulk_pairs",
			Help:    "Number of pairs scored per bulk request",
			Buckets: []float64{1, 3, 10, 45, 190, 435, 1225},
		},
	)

	// Score Cache Metrics
	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "compat_cache_hits_total",
			Help: "Total number of score cache hits",
		},
	)

	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "compat_cache_misses_total",
			Help: "Total number of score cache misses",
		},
	)

	CacheEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "compat_cache_entries",
			Help: "Current number of scores held in memory",
		},
	)

	CacheInvalidations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "compat_cache_invalidations_total",
			Help: "Total number of cache invalidations by trigger",
		},
		[]string{"trigger"},
	)

	CacheInvalidatedEntries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "compat_cache_invalidated_entries_total",
			Help: "Total number of entries removed by invalidation",
		},
	)

	CacheWriteFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "compat_cache_write_failures_total",
			Help: "Total number of score writes dropped after an error",
		},
	)

	CacheSweptEntries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "compat_cache_swept_entries_total",
			Help: "Total number of expired entries removed by the janitor",
		},
	)

	// Explanation Metrics
	ExplanationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "compat_explanations_total",
			Help: "Total number of explanation attempts by outcome",
		},
		[]string{"outcome"},
	)

	ExplainBreakerState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "compat_explain_breaker_state",
			Help: "Explanation circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
	)

	// Event Metrics
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "compat_events_published_total",
			Help: "Total number of invalidation events published",
		},
		[]string{"topic"},
	)

	EventsConsumed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "compat_events_consumed_total",
			Help: "Total number of invalidation events consumed",
		},
		[]string{"topic", "outcome"},
	)

	// Profile Store Metrics
	ProfileLoads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "compat_profile_loads_total",
			Help: "Total number of profile lookups by outcome",
		},
		[]string{"outcome"},
	)

	ProfileLoadDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "compat_profile_load_duration_seconds",
			Help:    "Duration of profile lookups in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Number of API requests currently being processed",
		},
	)

	// Application Info
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_info",
			Help: "Application information",
		},
		[]string{"version", "go_version"},
	)
)

// RecordCalculation records one pairwise or bulk request.
func RecordCalculation(kind string, duration time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	CalculationsTotal.WithLabelValues(kind, outcome).Inc()
	CalculationDuration.WithLabelValues(kind).Observe(duration.Seconds())
}

// RecordFallbacks adds to the fallback dimension count.
func RecordFallbacks(n int) {
	if n > 0 {
		FallbackDimensions.Add(float64(n))
	}
}

// RecordBulkPairs records the size of a bulk request.
func RecordBulkPairs(pairs int) {
	BulkPairs.Observe(float64(pairs))
}

// RecordCacheLookup records a cache hit or miss.
func RecordCacheLookup(hit bool) {
	if hit {
		CacheHits.Inc()
	} else {
		CacheMisses.Inc()
	}
}

// RecordCacheInvalidation records an invalidation and the entries it removed.
func RecordCacheInvalidation(trigger string, removed int) {
	CacheInvalidations.WithLabelValues(trigger).Inc()
	CacheInvalidatedEntries.Add(float64(removed))
}

// RecordCacheWriteFailure records a dropped cache write.
func RecordCacheWriteFailure() {
	CacheWriteFailures.Inc()
}

// RecordCacheSweep records a janitor pass.
func RecordCacheSweep(removed, entries int) {
	CacheSweptEntries.Add(float64(removed))
	CacheEntries.Set(float64(entries))
}

// SetCacheEntries sets the in-memory entry gauge.
func SetCacheEntries(n int) {
	CacheEntries.Set(float64(n))
}

// RecordExplanation records an explanation attempt outcome.
func RecordExplanation(outcome string) {
	ExplanationsTotal.WithLabelValues(outcome).Inc()
}

// SetExplainBreakerState records the breaker state (0=closed, 1=half-open, 2=open).
func SetExplainBreakerState(state int) {
	ExplainBreakerState.Set(float64(state))
}

// RecordEventPublished records a published event.
func RecordEventPublished(topic string) {
	EventsPublished.WithLabelValues(topic).Inc()
}

// RecordEventConsumed records a consumed event.
func RecordEventConsumed(topic string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	EventsConsumed.WithLabelValues(topic, outcome).Inc()
}

// RecordProfileLoad records a profile lookup.
func RecordProfileLoad(found bool, duration time.Duration, err error) {
	outcome := "found"
	switch {
	case err != nil:
		outcome = "error"
	case !found:
		outcome = "not_found"
	}
	ProfileLoads.WithLabelValues(outcome).Inc()
	ProfileLoadDuration.Observe(duration.Seconds())
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}
