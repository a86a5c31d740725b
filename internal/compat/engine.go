// Tripmatch - Travel Companion Compatibility Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tripmatch

package compat

import (
	"math"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tomtom215/tripmatch/internal/compat/dimensions"
	"github.com/tomtom215/tripmatch/internal/models"
)

// Engine combines the five dimension scorers into a CompatibilityScore.
// It holds no per-request state and is safe for concurrent use.
type Engine struct {
	logger  zerolog.Logger
	scorers []dimensions.Scorer
	now     func() time.Time

	calculations atomic.Int64
	fallbacks    atomic.Int64
	renormalized atomic.Int64
}

// EngineStats are lifetime counters for an Engine.
type EngineStats struct {
	Calculations int64 `json:"calculations"`
	Fallbacks    int64 `json:"fallback_dimensions"`
	Renormalized int64 `json:"renormalized_weight_sets"`
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithClock overrides the engine's time source.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) { e.now = now }
}

// NewEngine creates a pairwise scoring engine.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(logger zerolog.Logger, opts ...EngineOption) *Engine {
	e := &Engine{
		logger:  logger.With().Str("component", "compat_engine").Logger(),
		scorers: dimensions.All(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Score computes the compatibility of a and b using p, stamped with the
// current time.
func (e *Engine) Score(a, b *models.UserCompatibilityProfile, p *models.ScoringParameters) (*models.CompatibilityScore, error) {
	return e.ScoreAt(a, b, p, e.now())
}

// ScoreAt computes the compatibility of a and b and records snapshot as the
// instant the profiles were read. The result does not depend on argument
// order.
func (e *Engine) ScoreAt(a, b *models.UserCompatibilityProfile, p *models.ScoringParameters, snapshot time.Time) (*models.CompatibilityScore, error) {
	if a == nil || b == nil || p == nil {
		return nil, newError(CodeInvalidRequest, "profiles and parameters are required")
	}
	if err := checkComplete(a); err != nil {
		return nil, err
	}
	if err := checkComplete(b); err != nil {
		return nil, err
	}

	weights, changed := p.Formula.Weights.Normalize()
	if changed {
		e.renormalized.Add(1)
		e.logger.Warn().
			Str("algorithm", p.Formula.ID).
			Float64("weight_sum", p.Formula.Weights.Sum()).
			Msg("dimension weights do not sum to 1.0, renormalizing")
	}

	dims := make([]models.CompatibilityDimension, 0, len(e.scorers))
	var overall float64
	fallbackCount := 0
	for _, s := range e.scorers {
		r := s.Score(a, b, p)
		w := weights.Weight(s.Dimension())
		overall += r.Score * w
		if r.UsedFallback {
			fallbackCount++
		}
		dims = append(dims, models.CompatibilityDimension{
			Type:         s.Dimension(),
			Score:        r.Score,
			Weight:       w,
			UsedFallback: r.UsedFallback,
			CalculatedAt: snapshot,
		})
	}
	overall = math.Max(0, math.Min(100, overall))

	e.calculations.Add(1)
	e.fallbacks.Add(int64(fallbackCount))

	return &models.CompatibilityScore{
		ID:               uuid.New().String(),
		User1ID:          a.UserID,
		User2ID:          b.UserID,
		OverallScore:     overall,
		Dimensions:       dims,
		Confidence:       confidence(fallbackCount, p.Fallback),
		Quality:          p.Thresholds.Classify(overall),
		AlgorithmVersion: p.Formula.VersionTag(),
		CalculatedAt:     snapshot,
	}, nil
}

// Stats returns the engine's lifetime counters.
func (e *Engine) Stats() EngineStats {
	return EngineStats{
		Calculations: e.calculations.Load(),
		Fallbacks:    e.fallbacks.Load(),
		Renormalized: e.renormalized.Load(),
	}
}

func checkComplete(p *models.UserCompatibilityProfile) error {
	switch {
	case p.Personality == nil:
		return newError(CodeProfileIncomplete, "profile %s has no personality profile", p.UserID)
	case p.Travel == nil:
		return newError(CodeProfileIncomplete, "profile %s has no travel preferences", p.UserID)
	default:
		return nil
	}
}

// confidence starts at 1.0 and loses the configured penalty for every
// dimension that needed a fallback, never dropping below the floor.
func confidence(fallbacks int, policy models.FallbackPolicy) float64 {
	c := 1.0 - policy.ConfidencePenalty*float64(fallbacks)
	return math.Max(policy.ConfidenceFloor, math.Min(1, c))
}
