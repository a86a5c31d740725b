// Tripmatch - Travel Companion Compatibility Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tripmatch

package explain

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/tomtom215/tripmatch/internal/compat"
	"github.com/tomtom215/tripmatch/internal/metrics"
	"github.com/tomtom215/tripmatch/internal/models"
)

// ErrRateLimited is returned when the explanation budget is exhausted.
var ErrRateLimited = errors.New("explanation rate limit exceeded")

// Explanation outcomes, used as metric labels.
const (
	OutcomeSuccess     = "success"
	OutcomeFailure     = "failure"
	OutcomeTimeout     = "timeout"
	OutcomeRejected    = "rejected"
	OutcomeRateLimited = "rate_limited"
)

// GuardConfig tunes a Guard.
type GuardConfig struct {
	// Timeout bounds one explanation.
	Timeout time.Duration

	// RatePerSecond and Burst bound throughput across all callers.
	RatePerSecond float64
	Burst         int

	// BreakerFailures consecutive failures open the circuit for
	// BreakerTimeout, after which one trial request is let through.
	BreakerFailures uint32
	BreakerTimeout  time.Duration
}

// Guard wraps an Explainer with a rate limit, a timeout and a circuit
// breaker so that a slow or failing generator never delays scoring.
//
// The circuit breaker uses real time (via sony/gobreaker) for its open
// period.
type Guard struct {
	next    compat.Explainer
	cb      *gobreaker.CircuitBreaker[string]
	limiter *rate.Limiter
	timeout time.Duration
	logger  zerolog.Logger
}

// NewGuard wraps next.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewGuard(next compat.Explainer, cfg GuardConfig, logger zerolog.Logger) *Guard {
	logger = logger.With().Str("component", "explain_guard").Logger()
	failures := cfg.BreakerFailures
	if failures == 0 {
		failures = 5
	}

	metrics.SetExplainBreakerState(stateToInt(gobreaker.StateClosed))

	cb := gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:        "explainer",
		MaxRequests: 1,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		OnStateChange: func(_ string, from, to gobreaker.State) {
			logger.Info().Str("from", from.String()).Str("to", to.String()).Msg("Explanation circuit breaker state transition")
			metrics.SetExplainBreakerState(stateToInt(to))
		},
	})

	limit := rate.Limit(cfg.RatePerSecond)
	if cfg.RatePerSecond <= 0 {
		limit = rate.Inf
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}

	return &Guard{
		next:    next,
		cb:      cb,
		limiter: rate.NewLimiter(limit, burst),
		timeout: cfg.Timeout,
		logger:  logger,
	}
}

// GenerateExplanation implements compat.Explainer.
func (g *Guard) GenerateExplanation(ctx context.Context, score *models.CompatibilityScore, opts compat.ExplainOptions) (string, error) {
	if !g.limiter.Allow() {
		metrics.RecordExplanation(OutcomeRateLimited)
		return "", ErrRateLimited
	}

	text, err := g.cb.Execute(func() (string, error) {
		return g.call(ctx, score, opts)
	})

	switch {
	case err == nil:
		metrics.RecordExplanation(OutcomeSuccess)
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.RecordExplanation(OutcomeRejected)
	case errors.Is(err, context.DeadlineExceeded):
		metrics.RecordExplanation(OutcomeTimeout)
	default:
		metrics.RecordExplanation(OutcomeFailure)
	}
	return text, err
}

// call runs next under the timeout. It returns when the deadline passes even
// if next ignores its context.
func (g *Guard) call(ctx context.Context, score *models.CompatibilityScore, opts compat.ExplainOptions) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	type result struct {
		text string
		err  error
	}
	done := make(chan result, 1)
	go func() {
		text, err := g.next.GenerateExplanation(ctx, score, opts)
		done <- result{text, err}
	}()

	select {
	case r := <-done:
		return r.text, r.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// State returns the circuit breaker state: closed, half-open or open.
func (g *Guard) State() string {
	return g.cb.State().String()
}

func stateToInt(state gobreaker.State) int {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
