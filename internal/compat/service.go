// Tripmatch - Travel Companion Compatibility Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tripmatch

package compat

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/tripmatch/internal/cache"
	"github.com/tomtom215/tripmatch/internal/metrics"
	"github.com/tomtom215/tripmatch/internal/models"
)

// Invalidation triggers, used as metric labels and in logs.
const (
	TriggerManual          = "manual"
	TriggerProfileUpdate   = "profile_update"
	TriggerGroupChange     = "group_change"
	TriggerAlgorithmUpdate = "algorithm_update"
)

// PairwiseOptions tunes CalculatePairwise.
type PairwiseOptions struct {
	IncludeExplanation bool `json:"include_explanation"`
	CacheResult        bool `json:"cache_result"`
	ForceRecalculation bool `json:"force_recalculation"`

	// DetailedExplanation adds per-dimension lines to the explanation.
	DetailedExplanation bool `json:"detailed_explanation,omitempty"`
}

// PairwiseRequest scores two users.
type PairwiseRequest struct {
	User1ID     string          `json:"user1_id" validate:"required,max=128"`
	User2ID     string          `json:"user2_id" validate:"required,max=128"`
	GroupID     string          `json:"group_id,omitempty" validate:"omitempty,max=128"`
	AlgorithmID string          `json:"algorithm_id,omitempty" validate:"omitempty,max=64"`
	Options     PairwiseOptions `json:"options"`
}

// PairwiseMeta describes how a pairwise calculation ran.
type PairwiseMeta struct {
	CalculationTimeMs float64 `json:"calculation_time_ms"`
	CacheHit          bool    `json:"cache_hit"`
	AlgorithmVersion  string  `json:"algorithm_version"`
}

// PairwiseResult is the outcome of CalculatePairwise.
type PairwiseResult struct {
	Data *models.CompatibilityScore `json:"data"`
	Meta PairwiseMeta               `json:"meta"`
}

// Dependencies wires a Service. Profiles is required; a nil Engine, Registry
// or Cache is replaced with a default, and nil Explainer or Notifier disables
// that feature.
type Dependencies struct {
	Engine    *Engine
	Registry  *ParameterRegistry
	Cache     *cache.ScoreCache
	Profiles  ProfileLoader
	Explainer Explainer
	Notifier  Notifier

	// Workers bounds concurrent pair scoring. Zero uses runtime.NumCPU.
	Workers int

	// MaxBulkUsers caps bulk requests. Zero uses MaxBulkUsers.
	MaxBulkUsers int
}

// Service is the compatibility facade used by the transport layer.
type Service struct {
	engine    *Engine
	registry  *ParameterRegistry
	cache     *cache.ScoreCache
	profiles  ProfileLoader
	explainer Explainer
	notifier  Notifier
	bulk      *Orchestrator
	logger    zerolog.Logger
}

// NewService creates the compatibility service.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewService(deps Dependencies, logger zerolog.Logger) (*Service, error) {
	if deps.Profiles == nil {
		return nil, newError(CodeConfigurationError, "a profile loader is required")
	}
	if deps.Engine == nil {
		deps.Engine = NewEngine(logger)
	}
	if deps.Registry == nil {
		reg, err := NewParameterRegistry(models.DefaultScoringParameters(), logger)
		if err != nil {
			return nil, err
		}
		deps.Registry = reg
	}
	if deps.Cache == nil {
		c, err := cache.New(models.DefaultCacheStrategy(), cache.Options{Now: deps.Engine.now, Logger: logger})
		if err != nil {
			return nil, wrapError(CodeConfigurationError, err, "create score cache")
		}
		deps.Cache = c
	}

	analyzer := NewAnalyzer(deps.Engine, deps.Workers, logger)
	return &Service{
		engine:    deps.Engine,
		registry:  deps.Registry,
		cache:     deps.Cache,
		profiles:  deps.Profiles,
		explainer: deps.Explainer,
		notifier:  deps.Notifier,
		bulk:      NewOrchestrator(deps.Engine, analyzer, deps.Cache, deps.Profiles, deps.MaxBulkUsers, logger),
		logger:    logger.With().Str("component", "compat_service").Logger(),
	}, nil
}

// Engine returns the scoring engine.
func (s *Service) Engine() *Engine { return s.engine }

// Registry returns the algorithm registry.
func (s *Service) Registry() *ParameterRegistry { return s.registry }

// Cache returns the score cache.
func (s *Service) Cache() *cache.ScoreCache { return s.cache }

// CalculatePairwise scores two users, reading through the cache unless
// ForceRecalculation is set.
func (s *Service) CalculatePairwise(ctx context.Context, req *PairwiseRequest) (res *PairwiseResult, err error) {
	start := time.Now()
	defer func() { metrics.RecordCalculation("pairwise", time.Since(start), err) }()

	if req.User1ID == "" || req.User2ID == "" {
		return nil, newError(CodeInvalidRequest, "both user IDs are required")
	}
	if req.User1ID == req.User2ID {
		return nil, newError(CodeInvalidRequest, "cannot compare a user with themselves")
	}

	params := s.registry.LoadParameters(req.AlgorithmID)
	version := params.Formula.VersionTag()
	key := cache.NewKey(req.User1ID, req.User2ID, req.GroupID)

	var score *models.CompatibilityScore
	hit := false
	if !req.Options.ForceRecalculation {
		if cached, ok := s.cache.GetIf(ctx, key, ofVersion(version)); ok {
			score, hit = cached, true
		}
		metrics.RecordCacheLookup(hit)
	}

	if !hit {
		snapshot := s.engine.now()
		a, err := s.loadProfile(ctx, req.User1ID)
		if err != nil {
			return nil, err
		}
		b, err := s.loadProfile(ctx, req.User2ID)
		if err != nil {
			return nil, err
		}
		score, err = s.engine.ScoreAt(a, b, &params, snapshot)
		if err != nil {
			return nil, err
		}
		score.GroupID = req.GroupID
		metrics.RecordFallbacks(countFallbacks(score))

		if req.Options.CacheResult {
			if err := s.cache.Put(ctx, key, score); err != nil {
				metrics.RecordCacheWriteFailure()
				s.logger.Warn().Err(err).Str("key", key.String()).Msg("cache write failed")
			}
		}
	}

	if req.Options.IncludeExplanation {
		score.Explanation = s.explain(ctx, score, ExplainOptions{Detailed: req.Options.DetailedExplanation})
	}

	return &PairwiseResult{
		Data: score,
		Meta: PairwiseMeta{
			CalculationTimeMs: float64(time.Since(start).Microseconds()) / 1000,
			CacheHit:          hit,
			AlgorithmVersion:  version,
		},
	}, nil
}

// CalculateBulk scores every pair among req.UserIDs.
func (s *Service) CalculateBulk(ctx context.Context, req *BulkRequest) (res *BulkResult, err error) {
	start := time.Now()
	defer func() { metrics.RecordCalculation("bulk", time.Since(start), err) }()

	params := s.registry.LoadParameters(req.AlgorithmID)
	return s.bulk.CalculateBulk(ctx, req, &params)
}

// GetAlgorithmConfig returns the algorithm id, or the default when id is
// empty or unknown.
func (s *Service) GetAlgorithmConfig(id string) models.ScoringParameters {
	return s.registry.LoadParameters(id)
}

// ListAlgorithms returns every registered algorithm.
func (s *Service) ListAlgorithms() []models.ScoringParameters {
	return s.registry.List()
}

// UpdateAlgorithmConfig applies patch to the algorithm id, clears the cache
// when the strategy asks for it and announces the change.
func (s *Service) UpdateAlgorithmConfig(ctx context.Context, id string, patch *models.ScoringParametersPatch) (models.ScoringParameters, error) {
	next, _, err := s.registry.Update(id, patch)
	if err != nil {
		return models.ScoringParameters{}, err
	}
	s.invalidateForAlgorithm(ctx, next.Formula.ID)

	if s.notifier != nil {
		if err := s.notifier.AlgorithmUpdated(ctx, next); err != nil {
			s.logger.Warn().Err(err).Str("algorithm", next.Formula.ID).Msg("failed to announce algorithm update")
		}
	}
	return next, nil
}

// ApplyAlgorithmUpdate adopts parameters announced by another instance.
// Versions already known are ignored.
func (s *Service) ApplyAlgorithmUpdate(ctx context.Context, params models.ScoringParameters) error {
	changed, err := s.registry.Adopt(params)
	if err != nil || !changed {
		return err
	}
	s.logger.Info().Str("version", params.Formula.VersionTag()).Msg("adopted announced algorithm update")
	s.invalidateForAlgorithm(ctx, params.Formula.ID)
	return nil
}

func (s *Service) invalidateForAlgorithm(ctx context.Context, algorithmID string) {
	if !s.cache.Strategy().InvalidateOnAlgorithmUpdate {
		return
	}
	if _, err := s.invalidate(ctx, TriggerAlgorithmUpdate, "", ""); err != nil {
		s.logger.Warn().Err(err).Str("algorithm", algorithmID).Msg("cache invalidation after algorithm update failed")
	}
}

// ProfileUpdated clears the user's scores when the strategy asks for it.
func (s *Service) ProfileUpdated(ctx context.Context, userID string) (int, error) {
	if userID == "" {
		return 0, newError(CodeInvalidRequest, "user ID is required")
	}
	if !s.cache.Strategy().InvalidateOnProfileUpdate {
		return 0, nil
	}
	return s.invalidate(ctx, TriggerProfileUpdate, "", userID)
}

// GroupChanged clears the group's scores when the strategy asks for it.
func (s *Service) GroupChanged(ctx context.Context, groupID string) (int, error) {
	if groupID == "" {
		return 0, newError(CodeInvalidRequest, "group ID is required")
	}
	if !s.cache.Strategy().InvalidateOnGroupChange {
		return 0, nil
	}
	return s.invalidate(ctx, TriggerGroupChange, groupID, "")
}

// GetCachedScore returns cached scores for userID within groupID. With
// otherUserID set it returns at most the one pair.
func (s *Service) GetCachedScore(ctx context.Context, groupID, userID, otherUserID string) ([]*models.CompatibilityScore, error) {
	if userID == "" {
		return nil, newError(CodeInvalidRequest, "user ID is required")
	}
	if otherUserID != "" {
		if otherUserID == userID {
			return nil, newError(CodeInvalidRequest, "cannot compare a user with themselves")
		}
		score, ok := s.cache.Get(ctx, cache.NewKey(userID, otherUserID, groupID))
		if !ok {
			return []*models.CompatibilityScore{}, nil
		}
		return []*models.CompatibilityScore{score}, nil
	}
	scores := s.cache.Find(cache.Filter{UserID: userID, GroupID: groupID})
	if scores == nil {
		scores = []*models.CompatibilityScore{}
	}
	return scores, nil
}

// InvalidateCache removes cached scores by group and/or user; with neither
// it clears everything.
func (s *Service) InvalidateCache(ctx context.Context, groupID, userID string) (int, error) {
	return s.invalidate(ctx, TriggerManual, groupID, userID)
}

func (s *Service) invalidate(ctx context.Context, trigger, groupID, userID string) (int, error) {
	removed, err := s.cache.Invalidate(ctx, userID, groupID)
	metrics.RecordCacheInvalidation(trigger, removed)
	metrics.SetCacheEntries(s.cache.Len())
	if err != nil {
		if errors.Is(err, cache.ErrClosed) {
			return removed, wrapError(CodeCacheError, err, "score cache is closed")
		}
		// The in-memory tier is already clear; only the persistent tier failed.
		s.logger.Warn().Err(err).Str("trigger", trigger).Msg("persistent cache invalidation failed")
	}
	s.logger.Debug().
		Str("trigger", trigger).
		Str("group_id", groupID).
		Str("user_id", userID).
		Int("removed", removed).
		Msg("cache invalidated")
	return removed, nil
}

// GetCacheStats returns cache health.
func (s *Service) GetCacheStats() models.CacheStats {
	return s.cache.Stats()
}

func (s *Service) loadProfile(ctx context.Context, userID string) (*models.UserCompatibilityProfile, error) {
	p, skip, err := loadUsableProfile(ctx, s.profiles, userID)
	switch {
	case err != nil:
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, wrapError(CodeInternalError, err, "load profile %s", userID)
	case skip != nil:
		return nil, skip
	}
	return p, nil
}

// explain returns the explanation text, or "" when generation fails.
func (s *Service) explain(ctx context.Context, score *models.CompatibilityScore, opts ExplainOptions) string {
	if s.explainer == nil {
		return ""
	}
	text, err := s.explainer.GenerateExplanation(ctx, score, opts)
	if err != nil {
		s.logger.Debug().Err(err).Str("score_id", score.ID).Msg("explanation omitted")
		return ""
	}
	return text
}
