// Tripmatch - Travel Companion Compatibility Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tripmatch

package api

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/tripmatch/internal/compat"
	"github.com/tomtom215/tripmatch/internal/database"
	"github.com/tomtom215/tripmatch/internal/models"
)

// CompatibilityService is the part of compat.Service the handlers use.
type CompatibilityService interface {
	CalculatePairwise(ctx context.Context, req *compat.PairwiseRequest) (*compat.PairwiseResult, error)
	CalculateBulk(ctx context.Context, req *compat.BulkRequest) (*compat.BulkResult, error)
	GetAlgorithmConfig(id string) models.ScoringParameters
	ListAlgorithms() []models.ScoringParameters
	UpdateAlgorithmConfig(ctx context.Context, id string, patch *models.ScoringParametersPatch) (models.ScoringParameters, error)
	ProfileUpdated(ctx context.Context, userID string) (int, error)
	GroupChanged(ctx context.Context, groupID string) (int, error)
	GetCachedScore(ctx context.Context, groupID, userID, otherUserID string) ([]*models.CompatibilityScore, error)
	InvalidateCache(ctx context.Context, groupID, userID string) (int, error)
	GetCacheStats() models.CacheStats
}

// EventPublisher announces profile and group changes to other instances.
type EventPublisher interface {
	Enabled() bool
	PublishProfileUpdated(ctx context.Context, userID string) error
	PublishGroupChanged(ctx context.Context, groupID string) error
}

// BreakerReporter reports the explanation circuit breaker state.
type BreakerReporter interface {
	State() string
}

// HandlerConfig holds request limits used by the handlers.
type HandlerConfig struct {
	// MaxBodyBytes bounds request bodies. Zero uses DefaultMaxBodyBytes.
	MaxBodyBytes int64

	// RequestTimeout bounds a scoring request. Zero disables it.
	RequestTimeout time.Duration

	// Version is reported by the health endpoint.
	Version string
}

// Handler serves the HTTP endpoints.
type Handler struct {
	service   CompatibilityService
	profiles  database.ProfileStore
	events    EventPublisher
	breaker   BreakerReporter
	config    HandlerConfig
	startTime time.Time
	logger    zerolog.Logger
}

// NewHandler creates a Handler. events and breaker may be nil.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewHandler(service CompatibilityService, profiles database.ProfileStore, events EventPublisher, breaker BreakerReporter, cfg HandlerConfig, logger zerolog.Logger) *Handler {
	return &Handler{
		service:   service,
		profiles:  profiles,
		events:    events,
		breaker:   breaker,
		config:    cfg,
		startTime: time.Now(),
		logger:    logger.With().Str("component", "api").Logger(),
	}
}

// withTimeout applies the configured request timeout.
func (h *Handler) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if h.config.RequestTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, h.config.RequestTimeout)
}

func (h *Handler) eventsEnabled() bool {
	return h.events != nil && h.events.Enabled()
}
