// Tripmatch - Travel Companion Compatibility Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tripmatch

package dimensions

import (
	"math"

	"github.com/tomtom215/tripmatch/internal/models"
)

// Personality scores trait similarity as the weighted mean of 100-|a-b|
// across the five traits. A missing planning trait takes the neutral value.
func Personality(a, b *models.UserCompatibilityProfile, p *models.ScoringParameters) Result {
	if a.Personality == nil || b.Personality == nil {
		return neutral(p)
	}
	pa, pb := a.Personality, b.Personality
	w := p.PersonalityWeights

	planA, fbA := planningTrait(pa, p.Fallback.NeutralTraitValue)
	planB, fbB := planningTrait(pb, p.Fallback.NeutralTraitValue)

	traits := []struct {
		weight float64
		a, b   float64
	}{
		{w.EnergyLevel, pa.EnergyLevel, pb.EnergyLevel},
		{w.SocialPreference, pa.SocialPreference, pb.SocialPreference},
		{w.AdventureStyle, pa.AdventureStyle, pb.AdventureStyle},
		{w.RiskTolerance, pa.RiskTolerance, pb.RiskTolerance},
		{w.PlanningStyle, planA, planB},
	}

	var weighted, total float64
	for _, t := range traits {
		weighted += t.weight * traitSimilarity(t.a, t.b)
		total += t.weight
	}
	if total <= 0 {
		return neutral(p)
	}
	return Result{Score: clamp(weighted / total), UsedFallback: fbA || fbB}
}

func planningTrait(pp *models.PersonalityProfile, fallback float64) (float64, bool) {
	if pp.PlanningStyle == nil {
		return fallback, true
	}
	return *pp.PlanningStyle, false
}

func traitSimilarity(a, b float64) float64 {
	return 100 - math.Abs(a-b)
}
