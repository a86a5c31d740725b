// Tripmatch - Travel Companion Compatibility Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tripmatch

// Package explain produces the optional plain-language explanation attached
// to pairwise scores.
//
// TemplateExplainer renders the explanation from the score alone. Guard wraps
// any compat.Explainer with a token-bucket rate limit, a per-call timeout and
// a circuit breaker; explanation failures never fail a scoring request.
package explain
