// Tripmatch - Travel Companion Compatibility Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tripmatch

/*
Package middleware provides HTTP middleware for the Tripmatch API.

All middleware has the chi signature func(http.Handler) http.Handler:

  - RequestID: reuses or generates X-Request-ID and stores it, with a
    correlation ID, in the request context for logging.Ctx.
  - PrometheusMetrics: request counts, durations and in-flight gauge, labelled
    by chi route pattern.
  - SlowRequests: warns about requests slower than a threshold.

Typical stack:

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.PrometheusMetrics)
	r.Use(middleware.SlowRequests(time.Second, logger))

Route patterns are only known after chi has matched the route, so
PrometheusMetrics and SlowRequests read them once the handler returns.
*/
package middleware
