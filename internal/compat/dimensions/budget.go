// Tripmatch - Travel Companion Compatibility Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tripmatch

package dimensions

import (
	"math"
	"strings"

	"github.com/tomtom215/tripmatch/internal/models"
)

// pointRangeSpread is the half-width assumed for a single-value budget, as a
// fraction of that value, when widening it by flexibility.
const pointRangeSpread = 0.1

// Budget scores the overlap of two budget ranges as intersection/union after
// widening each range by flexibility × BudgetFlexibilityFactor × half-width
// on both ends. Different currencies are compared as raw numbers and
// reported as a fallback.
func Budget(a, b *models.UserCompatibilityProfile, p *models.ScoringParameters) Result {
	if a.Budget.IsZero() || b.Budget.IsZero() {
		return neutral(p)
	}

	loA, hiA := widen(a.Budget, p.Adjustments.BudgetFlexibilityFactor)
	loB, hiB := widen(b.Budget, p.Adjustments.BudgetFlexibilityFactor)

	fallback := a.Budget.Currency != "" && b.Budget.Currency != "" &&
		!strings.EqualFold(a.Budget.Currency, b.Budget.Currency)

	union := math.Max(hiA, hiB) - math.Min(loA, loB)
	if union <= 0 {
		// Both ranges collapse onto the same point.
		return Result{Score: 100, UsedFallback: fallback}
	}
	inter := math.Max(0, math.Min(hiA, hiB)-math.Max(loA, loB))
	return Result{Score: clamp(100 * inter / union), UsedFallback: fallback}
}

func widen(r models.BudgetRange, factor float64) (lo, hi float64) {
	lo, hi = r.Min, r.Max
	if hi < lo {
		lo, hi = hi, lo
	}
	spread := (hi - lo) / 2
	if spread == 0 {
		spread = hi * pointRangeSpread
	}
	stretch := r.Flexibility * factor * spread
	return math.Max(0, lo-stretch), hi + stretch
}
