// Tripmatch - Travel Companion Compatibility Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tripmatch

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/tomtom215/tripmatch/internal/middleware"
)

// Router builds the HTTP handler tree.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
	slowThreshold time.Duration
	logger        zerolog.Logger
}

// NewRouter creates a Router. A nil mw uses DefaultChiMiddlewareConfig.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewRouter(handler *Handler, mw *ChiMiddlewareConfig, slowThreshold time.Duration, logger zerolog.Logger) *Router {
	return &Router{
		handler:       handler,
		chiMiddleware: NewChiMiddleware(mw),
		slowThreshold: slowThreshold,
		logger:        logger,
	}
}

// SetupChi configures all HTTP routes.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()
	h := router.handler

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS())
	r.Use(middleware.PrometheusMetrics)
	r.Use(middleware.SlowRequests(router.slowThreshold, router.logger))
	r.Use(chimiddleware.Compress(5, "application/json"))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		NewResponseWriter(w, r).NotFound("route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		NewResponseWriter(w, r).Error(http.StatusMethodNotAllowed, ErrCodeMethodNotAllowed, "method not allowed")
	})

	r.Route("/api/v1/health", func(r chi.Router) {
		r.Get("/", h.Health)
		r.Get("/live", h.HealthLive)
	})

	r.Route("/api/v1/compatibility", func(r chi.Router) {
		r.Post("/pairwise", h.Pairwise)
		r.With(router.chiMiddleware.RateLimitBulk()).Post("/bulk", h.Bulk)

		r.Get("/algorithms", h.ListAlgorithms)
		r.Get("/algorithms/{algorithmID}", h.GetAlgorithm)
		r.Patch("/algorithms/{algorithmID}", h.UpdateAlgorithm)

		r.Get("/cache/stats", h.CacheStats)
		r.Get("/cache/{groupID}/{userID}", h.CachedScores)
		r.Delete("/cache", h.InvalidateCache)
	})

	r.Route("/api/v1/profiles/{userID}", func(r chi.Router) {
		r.Get("/", h.GetProfile)
		r.Put("/", h.PutProfile)
		r.Delete("/", h.DeleteProfile)
	})

	r.Post("/api/v1/groups/{groupID}/changed", h.GroupChanged)

	r.Handle("/metrics", promhttp.Handler())

	return r
}
