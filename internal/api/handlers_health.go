// Tripmatch - Travel Companion Compatibility Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tripmatch

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/tripmatch/internal/models"
)

// healthPingTimeout bounds the profile store ping.
const healthPingTimeout = 2 * time.Second

// HealthStatus is the body of GET /api/v1/health.
type HealthStatus struct {
	Status        string            `json:"status"`
	Version       string            `json:"version,omitempty"`
	UptimeSeconds float64           `json:"uptime_seconds"`
	ProfileStore  string            `json:"profile_store"`
	ExplainState  string            `json:"explain_breaker,omitempty"`
	EventsEnabled bool              `json:"events_enabled"`
	Cache         models.CacheStats `json:"cache"`
}

// Health handles GET /api/v1/health. It answers 503 when the profile store
// is unreachable.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	status := HealthStatus{
		Status:        "healthy",
		Version:       h.config.Version,
		UptimeSeconds: time.Since(h.startTime).Seconds(),
		ProfileStore:  "ok",
		EventsEnabled: h.eventsEnabled(),
		Cache:         h.service.GetCacheStats(),
	}
	if h.breaker != nil {
		status.ExplainState = h.breaker.State()
	}

	ctx, cancel := context.WithTimeout(r.Context(), healthPingTimeout)
	defer cancel()
	code := http.StatusOK
	if err := h.profiles.Ping(ctx); err != nil {
		h.logger.Warn().Err(err).Msg("Profile store health check failed")
		status.Status = "unhealthy"
		status.ProfileStore = "unavailable"
		code = http.StatusServiceUnavailable
	}

	rw.SuccessWithMeta(code, status, nil)
}

// HealthLive handles GET /api/v1/health/live.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(map[string]string{"status": "alive"})
}
