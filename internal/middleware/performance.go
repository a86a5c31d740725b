// Tripmatch - Travel Companion Compatibility Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tripmatch

package middleware

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// DefaultSlowRequestThreshold is used when SlowRequests gets a zero threshold.
const DefaultSlowRequestThreshold = time.Second

// SlowRequests logs requests slower than threshold with their route pattern,
// status and request ID.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func SlowRequests(threshold time.Duration, logger zerolog.Logger) func(http.Handler) http.Handler {
	if threshold <= 0 {
		threshold = DefaultSlowRequestThreshold
	}
	logger = logger.With().Str("component", "http").Logger()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapper := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(wrapper, r)

			duration := time.Since(start)
			if duration <= threshold {
				return
			}
			logger.Warn().
				Str("method", r.Method).
				Str("route", RoutePattern(r)).
				Int("status", wrapper.statusCode).
				Str("request_id", w.Header().Get(RequestIDHeader)).
				Int64("duration_ms", duration.Milliseconds()).
				Int64("threshold_ms", threshold.Milliseconds()).
				Msg("Slow request detected")
		})
	}
}
