// Tripmatch - Travel Companion Compatibility Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tripmatch

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/tripmatch/internal/compat"
	"github.com/tomtom215/tripmatch/internal/models"
)

// anyGroup is the path segment that disables the group filter of cache
// lookups; with "other" set it selects the ungrouped pair.
const anyGroup = "-"

// Pairwise handles POST /api/v1/compatibility/pairwise.
func (h *Handler) Pairwise(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req compat.PairwiseRequest
	if !readRequest(rw, w, r, h.config.MaxBodyBytes, &req) {
		return
	}

	ctx, cancel := h.withTimeout(r.Context())
	defer cancel()

	res, err := h.service.CalculatePairwise(ctx, &req)
	if err != nil {
		writeServiceError(rw, r, err)
		return
	}
	rw.SuccessWithMeta(http.StatusOK, res.Data, &APIMeta{Calculation: res.Meta})
}

// Bulk handles POST /api/v1/compatibility/bulk.
func (h *Handler) Bulk(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req compat.BulkRequest
	if !readRequest(rw, w, r, h.config.MaxBodyBytes, &req) {
		return
	}

	ctx, cancel := h.withTimeout(r.Context())
	defer cancel()

	res, err := h.service.CalculateBulk(ctx, &req)
	if err != nil {
		writeServiceError(rw, r, err)
		return
	}
	rw.SuccessWithMeta(http.StatusOK, res.Data, &APIMeta{Calculation: res.Meta})
}

// ListAlgorithms handles GET /api/v1/compatibility/algorithms.
func (h *Handler) ListAlgorithms(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(h.service.ListAlgorithms())
}

// GetAlgorithm handles GET /api/v1/compatibility/algorithms/{algorithmID}.
// Unknown ids resolve to the default algorithm.
func (h *Handler) GetAlgorithm(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	id := chi.URLParam(r, "algorithmID")
	if !validID(rw, "algorithmID", id) {
		return
	}
	rw.Success(h.service.GetAlgorithmConfig(id))
}

// UpdateAlgorithm handles PATCH /api/v1/compatibility/algorithms/{algorithmID}.
func (h *Handler) UpdateAlgorithm(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	id := chi.URLParam(r, "algorithmID")
	if !validID(rw, "algorithmID", id) {
		return
	}

	var patch models.ScoringParametersPatch
	if !readRequest(rw, w, r, h.config.MaxBodyBytes, &patch) {
		return
	}

	params, err := h.service.UpdateAlgorithmConfig(r.Context(), id, &patch)
	if err != nil {
		writeServiceError(rw, r, err)
		return
	}
	rw.Success(params)
}

// CacheStats handles GET /api/v1/compatibility/cache/stats.
func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(h.service.GetCacheStats())
}

// CachedScores handles GET /api/v1/compatibility/cache/{groupID}/{userID}.
// The optional "other" query parameter narrows the result to one pair.
func (h *Handler) CachedScores(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	groupID := chi.URLParam(r, "groupID")
	if groupID == anyGroup {
		groupID = ""
	} else if !validID(rw, "groupID", groupID) {
		return
	}
	userID := chi.URLParam(r, "userID")
	if !validID(rw, "userID", userID) {
		return
	}
	other := r.URL.Query().Get("other")
	if other != "" && !validID(rw, "other", other) {
		return
	}

	scores, err := h.service.GetCachedScore(r.Context(), groupID, userID, other)
	if err != nil {
		writeServiceError(rw, r, err)
		return
	}
	rw.Success(scores)
}

// invalidationResult reports how many cache entries an operation removed.
type invalidationResult struct {
	Removed int `json:"removed"`
}

// InvalidateCache handles DELETE /api/v1/compatibility/cache. Without
// group_id and user_id the whole cache is cleared.
func (h *Handler) InvalidateCache(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	q := r.URL.Query()
	groupID, userID := q.Get("group_id"), q.Get("user_id")
	if groupID != "" && !validID(rw, "group_id", groupID) {
		return
	}
	if userID != "" && !validID(rw, "user_id", userID) {
		return
	}

	removed, err := h.service.InvalidateCache(r.Context(), groupID, userID)
	if err != nil {
		writeServiceError(rw, r, err)
		return
	}
	rw.Success(invalidationResult{Removed: removed})
}
