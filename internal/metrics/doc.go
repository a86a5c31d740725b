// Tripmatch - Travel Companion Compatibility Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tripmatch

/*
Package metrics provides Prometheus metrics collection and export for observability.

All collectors are registered on the default registry through promauto and are
exposed at /metrics in Prometheus text format:

	curl http://localhost:8090/metrics

# Available Metrics

Scoring:
  - compat_calculations_total: Pairwise calculations (counter)
    Labels: kind (pairwise, bulk), outcome (ok, error)
  - compat_calculation_duration_seconds: Request latency (histogram)
    Labels: kind
  - compat_fallback_dimensions_total: Dimensions scored with a fallback (counter)
  - compat_bulk_pairs: Pairs per bulk request (histogram)

Score Cache:
  - compat_cache_hits_total / compat_cache_misses_total (counters)
  - compat_cache_entries: Entries held in memory (gauge)
  - compat_cache_invalidations_total: Invalidations (counter)
    Labels: trigger (manual, profile_update, group_change, algorithm_update)
  - compat_cache_write_failures_total: Writes dropped on error (counter)

Explanations:
  - compat_explanations_total: Explanation attempts (counter)
    Labels: outcome (ok, error, rejected, timeout)
  - compat_explain_breaker_state: Breaker state, 0=closed 1=half-open 2=open (gauge)

Events:
  - compat_events_published_total / compat_events_consumed_total (counters)
    Labels: topic

HTTP:
  - api_requests_total, api_request_duration_seconds, api_active_requests

# Usage

Components call the Record helpers directly:

	metrics.RecordCalculation("pairwise", time.Since(start), err)
	metrics.RecordCacheLookup(hit)
*/
package metrics
