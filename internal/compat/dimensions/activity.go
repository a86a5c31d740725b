// Tripmatch - Travel Companion Compatibility Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tripmatch

package dimensions

import (
	"strings"

	"github.com/tomtom215/tripmatch/internal/models"
)

const (
	// activityBase is the starting score before overlap and conflicts.
	activityBase = 50.0
	// unexpressedScore applies when neither user likes anything. Nothing can
	// conflict, so the pair counts as a match, flagged as a fallback.
	unexpressedScore = 100.0
)

// Activity scores shared interests. Starting from 50 it adds up to 50 for the
// Jaccard overlap of liked activities (preferred ∪ must-have), adds the
// overlap bonus per shared must-have, and subtracts it per activity one user
// dislikes and the other likes. A deal-breaker liked by the other user
// overrides everything with the fallback policy's DealBreakerScore. When
// neither user lists a liked activity the score is 100 with UsedFallback set.
func Activity(a, b *models.UserCompatibilityProfile, p *models.ScoringParameters) Result {
	likesA := toSet(a.Activities.Preferred, a.Activities.MustHave)
	likesB := toSet(b.Activities.Preferred, b.Activities.MustHave)

	if intersects(toSet(a.Activities.DealBreakers), likesB) ||
		intersects(toSet(b.Activities.DealBreakers), likesA) {
		return Result{Score: p.Fallback.DealBreakerScore}
	}
	if len(likesA) == 0 && len(likesB) == 0 {
		return Result{Score: unexpressedScore, UsedFallback: true}
	}

	shared := 0
	for k := range likesA {
		if _, ok := likesB[k]; ok {
			shared++
		}
	}
	union := len(likesA) + len(likesB) - shared

	bonus := p.Adjustments.ActivityOverlapBonus
	score := activityBase + 50*float64(shared)/float64(union)

	mustA := toSet(a.Activities.MustHave)
	mustB := toSet(b.Activities.MustHave)
	for k := range likesA {
		if _, ok := likesB[k]; !ok {
			continue
		}
		_, inA := mustA[k]
		_, inB := mustB[k]
		if inA || inB {
			score += bonus
		}
	}

	conflicts := countIn(toSet(a.Activities.Disliked), likesB) + countIn(toSet(b.Activities.Disliked), likesA)
	score -= bonus * float64(conflicts)

	return Result{Score: clamp(score)}
}

func toSet(lists ...[]string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, l := range lists {
		for _, item := range l {
			k := strings.ToLower(strings.TrimSpace(item))
			if k != "" {
				set[k] = struct{}{}
			}
		}
	}
	return set
}

func intersects(a, b map[string]struct{}) bool {
	return countIn(a, b) > 0
}

func countIn(a, b map[string]struct{}) int {
	n := 0
	for k := range a {
		if _, ok := b[k]; ok {
			n++
		}
	}
	return n
}
