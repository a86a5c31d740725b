// Tripmatch - Travel Companion Compatibility Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tripmatch

/*
Package models defines the data structures shared by the scoring engine, the
profile store, the score cache and the HTTP API.

The package holds no behaviour beyond small helpers (validation, cloning,
classification) so it can be imported from every layer without cycles.

Key Components:

  - UserCompatibilityProfile: a traveler's personality, preferences,
    experience, budget and activities. Every section except UserID is
    optional; a missing section makes the matching dimension fall back.
  - CompatibilityScore: the result of a pairwise calculation with one
    CompatibilityDimension per DimensionType, a Quality label, confidence
    and the explanation text.
  - GroupCompatibilityAnalysis: bulk result with the pairwise
    CompatibilityMatrix, GroupDynamics and prioritized GroupRecommendation
    entries.
  - ScoringParameters: a versioned algorithm configuration (dimension
    weights, thresholds, adjustments, fallbacks). ScoringParametersPatch
    carries partial updates; Apply bumps the version.
  - CacheStrategy and CacheStats: score cache configuration and counters.

Scores:

All scores are on a 0-100 scale. Dimension weights must each be in [0,1] and
sum to 1 within a small tolerance; Normalize rescales weights that drifted.

	params := models.DefaultScoringParameters()
	if err := params.Validate(); err != nil {
		return err
	}
	quality := params.Thresholds.Classify(score.OverallScore)

JSON:

Field names use snake_case tags and are the wire format of the HTTP API and
of the persisted cache entries. The koanf tags on ScoringParameters and
CacheStrategy let the same structs be loaded from configuration.

Thread Safety:

Values are plain data. Callers that share a *CompatibilityScore or
*UserCompatibilityProfile across goroutines hand out Clone() copies.
*/
package models
