// Tripmatch - Travel Companion Compatibility Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tripmatch

// Package dimensions implements the five per-dimension compatibility scorers.
//
// Every scorer is a pure function of two profiles and the scoring parameters.
// Scorers never fail: missing data is replaced according to the parameters'
// FallbackPolicy and reported through Result.UsedFallback so the engine can
// lower its confidence. All scorers are symmetric, so Score(a, b) equals
// Score(b, a) exactly.
//
//	for _, s := range dimensions.All() {
//	    r := s.Score(a, b, &params)
//	    fmt.Println(s.Dimension(), r.Score, r.UsedFallback)
//	}
package dimensions

import (
	"math"

	"github.com/tomtom215/tripmatch/internal/models"
)

// Result is a 0-100 sub-score.
type Result struct {
	Score        float64
	UsedFallback bool
}

// Scorer computes one dimension of compatibility.
type Scorer interface {
	Dimension() models.DimensionType
	Score(a, b *models.UserCompatibilityProfile, p *models.ScoringParameters) Result
}

// ScorerFunc adapts a plain function to the Scorer interface.
type ScorerFunc struct {
	Type models.DimensionType
	Fn   func(a, b *models.UserCompatibilityProfile, p *models.ScoringParameters) Result
}

// Dimension returns the dimension the function scores.
func (f ScorerFunc) Dimension() models.DimensionType { return f.Type }

// Score calls the wrapped function.
func (f ScorerFunc) Score(a, b *models.UserCompatibilityProfile, p *models.ScoringParameters) Result {
	return f.Fn(a, b, p)
}

// All returns the five scorers in canonical dimension order.
func All() []Scorer {
	return []Scorer{
		ScorerFunc{Type: models.DimensionPersonality, Fn: Personality},
		ScorerFunc{Type: models.DimensionTravel, Fn: Travel},
		ScorerFunc{Type: models.DimensionExperience, Fn: Experience},
		ScorerFunc{Type: models.DimensionBudget, Fn: Budget},
		ScorerFunc{Type: models.DimensionActivity, Fn: Activity},
	}
}

func neutral(p *models.ScoringParameters) Result {
	return Result{Score: p.Fallback.NeutralDimensionScore, UsedFallback: true}
}

func clamp(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}
