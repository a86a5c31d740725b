// Tripmatch - Travel Companion Compatibility Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tripmatch

package dimensions

import (
	"math"
	"sort"

	"github.com/tomtom215/tripmatch/internal/models"
)

// experienceSpan is the penalty per level of difference at tolerance 1.0:
// four levels apart (1 vs 5) scores 0.
const experienceSpan = 25.0

// Experience scores closeness of experience levels as
// 100 - min(100, diff × 25/tolerance). diff averages the overall level and
// every per-category override either user has; a category set on one side
// only is compared against the other user's overall level.
func Experience(a, b *models.UserCompatibilityProfile, p *models.ScoringParameters) Result {
	levelA, fbA := overallLevel(a.Experience, p.Fallback.NeutralExperienceLevel)
	levelB, fbB := overallLevel(b.Experience, p.Fallback.NeutralExperienceLevel)

	diffs := []float64{math.Abs(float64(levelA - levelB))}
	for _, c := range categoryUnion(a.Experience.Categories, b.Experience.Categories) {
		ca, ok := a.Experience.Categories[c]
		if !ok {
			ca = levelA
		}
		cb, ok := b.Experience.Categories[c]
		if !ok {
			cb = levelB
		}
		diffs = append(diffs, math.Abs(float64(ca-cb)))
	}

	var sum float64
	for _, d := range diffs {
		sum += d
	}
	diff := sum / float64(len(diffs))

	tolerance := p.Adjustments.ExperienceLevelTolerance
	if tolerance <= 0 {
		tolerance = 1
	}
	factor := experienceSpan / tolerance
	return Result{
		Score:        clamp(100 - math.Min(100, diff*factor)),
		UsedFallback: fbA || fbB,
	}
}

func overallLevel(e models.ExperienceLevel, fallback int) (int, bool) {
	if e.Level < 1 || e.Level > 5 {
		return fallback, true
	}
	return e.Level, false
}

func categoryUnion(a, b map[string]int) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	for k := range a {
		seen[k] = struct{}{}
	}
	for k := range b {
		seen[k] = struct{}{}
	}
	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
