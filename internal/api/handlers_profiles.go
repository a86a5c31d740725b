// Tripmatch - Travel Companion Compatibility Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tripmatch

package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/tripmatch/internal/compat"
	"github.com/tomtom215/tripmatch/internal/database"
	"github.com/tomtom215/tripmatch/internal/logging"
	"github.com/tomtom215/tripmatch/internal/models"
)

// profileChange is returned by profile writes and group notifications.
type profileChange struct {
	Profile     *models.UserCompatibilityProfile `json:"profile,omitempty"`
	Invalidated int                              `json:"invalidated"`
	Published   bool                             `json:"published"`
}

// GetProfile handles GET /api/v1/profiles/{userID}.
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	userID := chi.URLParam(r, "userID")
	if !validID(rw, "userID", userID) {
		return
	}

	p, found, err := h.profiles.LoadProfile(r.Context(), userID)
	if err != nil {
		rw.DatabaseError(err)
		return
	}
	if !found {
		rw.Error(http.StatusNotFound, string(compat.CodeProfileNotFound), "no profile for user "+userID)
		return
	}
	rw.Success(p)
}

// PutProfile handles PUT /api/v1/profiles/{userID}. The stored profile
// replaces any previous one and the user's cached scores are invalidated.
func (h *Handler) PutProfile(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	userID := chi.URLParam(r, "userID")
	if !validID(rw, "userID", userID) {
		return
	}

	var p models.UserCompatibilityProfile
	if err := decodeJSON(w, r, h.config.MaxBodyBytes, &p); err != nil {
		if errors.Is(err, errBodyTooLarge) {
			rw.Error(http.StatusRequestEntityTooLarge, ErrCodeRequestTooLarge, err.Error())
			return
		}
		rw.BadRequest(err.Error())
		return
	}
	if p.UserID == "" {
		p.UserID = userID
	}
	if p.UserID != userID {
		rw.BadRequest("user_id does not match the path")
		return
	}
	if !validateBody(rw, &p) {
		return
	}

	if err := h.profiles.SaveProfile(r.Context(), &p); err != nil {
		rw.DatabaseError(err)
		return
	}

	change := h.profileChanged(r.Context(), userID)
	change.Profile = &p
	rw.Success(change)
}

// DeleteProfile handles DELETE /api/v1/profiles/{userID}.
func (h *Handler) DeleteProfile(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	userID := chi.URLParam(r, "userID")
	if !validID(rw, "userID", userID) {
		return
	}

	if err := h.profiles.DeleteProfile(r.Context(), userID); err != nil {
		if errors.Is(err, database.ErrProfileNotFound) {
			rw.Error(http.StatusNotFound, string(compat.CodeProfileNotFound), "no profile for user "+userID)
			return
		}
		rw.DatabaseError(err)
		return
	}
	rw.Success(h.profileChanged(r.Context(), userID))
}

// GroupChanged handles POST /api/v1/groups/{groupID}/changed, sent when a
// group's membership changes.
func (h *Handler) GroupChanged(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	groupID := chi.URLParam(r, "groupID")
	if !validID(rw, "groupID", groupID) {
		return
	}

	removed, err := h.service.GroupChanged(r.Context(), groupID)
	if err != nil {
		writeServiceError(rw, r, err)
		return
	}

	change := profileChange{Invalidated: removed}
	if h.eventsEnabled() {
		if err := h.events.PublishGroupChanged(r.Context(), groupID); err != nil {
			logging.Ctx(r.Context()).Warn().Err(err).Str("group_id", groupID).Msg("Failed to publish group change")
		} else {
			change.Published = true
		}
	}
	rw.Success(change)
}

// profileChanged invalidates locally and announces the change. Failures are
// logged; the write itself already succeeded.
func (h *Handler) profileChanged(ctx context.Context, userID string) profileChange {
	var change profileChange
	removed, err := h.service.ProfileUpdated(ctx, userID)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("user_id", userID).Msg("Cache invalidation after profile change failed")
	}
	change.Invalidated = removed

	if h.eventsEnabled() {
		if err := h.events.PublishProfileUpdated(ctx, userID); err != nil {
			logging.Ctx(ctx).Warn().Err(err).Str("user_id", userID).Msg("Failed to publish profile update")
		} else {
			change.Published = true
		}
	}
	return change
}
