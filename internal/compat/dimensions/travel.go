// Tripmatch - Travel Companion Compatibility Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tripmatch

package dimensions

import (
	"strings"

	"github.com/tomtom215/tripmatch/internal/models"
)

var travelCategories = []string{
	models.TravelAdventureStyle,
	models.TravelBudgetPreference,
	models.TravelPlanningStyle,
	models.TravelGroupPreference,
}

// Travel scores categorical travel preferences as an exact-match ratio
// weighted per category. Categories unanswered by either user are left out
// of both numerator and denominator.
func Travel(a, b *models.UserCompatibilityProfile, p *models.ScoringParameters) Result {
	if a.Travel == nil || b.Travel == nil {
		return neutral(p)
	}

	var matched, total float64
	fallback := false
	for _, c := range travelCategories {
		va := strings.TrimSpace(a.Travel.Category(c))
		vb := strings.TrimSpace(b.Travel.Category(c))
		if va == "" || vb == "" {
			fallback = true
			continue
		}
		w := p.TravelWeights.Weight(c)
		total += w
		if strings.EqualFold(va, vb) {
			matched += w
		}
	}
	if total <= 0 {
		return neutral(p)
	}
	return Result{Score: clamp(100 * matched / total), UsedFallback: fallback}
}
