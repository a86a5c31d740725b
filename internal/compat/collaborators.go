// Tripmatch - Travel Companion Compatibility Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tripmatch

package compat

import (
	"context"

	"github.com/tomtom215/tripmatch/internal/models"
)

// ProfileLoader supplies compatibility profiles. found is false, with a nil
// error, for unknown users.
type ProfileLoader interface {
	LoadProfile(ctx context.Context, userID string) (profile *models.UserCompatibilityProfile, found bool, err error)
}

// ExplainOptions tunes explanation text.
type ExplainOptions struct {
	// Detailed adds one line per dimension.
	Detailed bool
}

// Explainer renders a human-readable account of a score. Failures are
// best-effort: callers omit the explanation and keep the score.
type Explainer interface {
	GenerateExplanation(ctx context.Context, score *models.CompatibilityScore, opts ExplainOptions) (string, error)
}

// Notifier announces algorithm changes to other instances, which adopt the
// new parameters through Service.ApplyAlgorithmUpdate.
type Notifier interface {
	AlgorithmUpdated(ctx context.Context, params models.ScoringParameters) error
}
