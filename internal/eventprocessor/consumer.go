// Tripmatch - Travel Companion Compatibility Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tripmatch

package eventprocessor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/rs/zerolog"

	"github.com/tomtom215/tripmatch/internal/metrics"
	"github.com/tomtom215/tripmatch/internal/models"
)

// Invalidator applies invalidation events. Satisfied by *compat.Service.
type Invalidator interface {
	ProfileUpdated(ctx context.Context, userID string) (int, error)
	GroupChanged(ctx context.Context, groupID string) (int, error)
	ApplyAlgorithmUpdate(ctx context.Context, params models.ScoringParameters) error
}

// ConsumerConfig tunes message handling.
type ConsumerConfig struct {
	// RetryMaxRetries is how often a failed handler is retried before the
	// message is dropped.
	RetryMaxRetries int

	// RetryInitialInterval is the first retry backoff.
	RetryInitialInterval time.Duration

	// CloseTimeout bounds in-flight handlers on shutdown.
	CloseTimeout time.Duration
}

// DefaultConsumerConfig returns production defaults.
func DefaultConsumerConfig() ConsumerConfig {
	return ConsumerConfig{
		RetryMaxRetries:      3,
		RetryInitialInterval: 100 * time.Millisecond,
		CloseTimeout:         10 * time.Second,
	}
}

// Consumer routes invalidation events to an Invalidator. It implements
// suture.Service; each Serve call builds a fresh Watermill router.
type Consumer struct {
	bus    *Bus
	target Invalidator
	config ConsumerConfig
	logger zerolog.Logger

	readyOnce sync.Once
	ready     chan struct{}
}

// NewConsumer creates a consumer for bus.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewConsumer(bus *Bus, target Invalidator, cfg ConsumerConfig, logger zerolog.Logger) (*Consumer, error) {
	if bus == nil || bus.subscriber == nil {
		return nil, ErrBusDisabled
	}
	if target == nil {
		return nil, fmt.Errorf("%w: invalidator is required", ErrInvalidConfig)
	}
	defaults := DefaultConsumerConfig()
	if cfg.RetryMaxRetries < 0 {
		cfg.RetryMaxRetries = 0
	}
	if cfg.RetryInitialInterval <= 0 {
		cfg.RetryInitialInterval = defaults.RetryInitialInterval
	}
	if cfg.CloseTimeout <= 0 {
		cfg.CloseTimeout = defaults.CloseTimeout
	}
	return &Consumer{
		bus:    bus,
		target: target,
		config: cfg,
		logger: logger.With().Str("component", "event_consumer").Logger(),
		ready:  make(chan struct{}),
	}, nil
}

// Ready is closed once the first router is subscribed.
func (c *Consumer) Ready() <-chan struct{} {
	return c.ready
}

// Serve implements suture.Service. It blocks until ctx is cancelled.
func (c *Consumer) Serve(ctx context.Context) error {
	router, err := c.newRouter()
	if err != nil {
		return err
	}

	go func() {
		select {
		case <-router.Running():
			c.readyOnce.Do(func() { close(c.ready) })
		case <-ctx.Done():
		}
	}()

	c.logger.Info().Msg("Event consumer started")
	if err := router.Run(ctx); err != nil {
		return fmt.Errorf("event router: %w", err)
	}
	return ctx.Err()
}

// String implements fmt.Stringer for suture logs.
func (c *Consumer) String() string {
	return "event-consumer"
}

func (c *Consumer) newRouter() (*message.Router, error) {
	router, err := message.NewRouter(message.RouterConfig{CloseTimeout: c.config.CloseTimeout}, c.bus.wmLogger)
	if err != nil {
		return nil, fmt.Errorf("create watermill router: %w", err)
	}

	router.AddMiddleware(middleware.Recoverer)
	if c.config.RetryMaxRetries > 0 {
		retry := middleware.Retry{
			MaxRetries:      c.config.RetryMaxRetries,
			InitialInterval: c.config.RetryInitialInterval,
			MaxInterval:     10 * c.config.RetryInitialInterval,
			Multiplier:      2,
			Logger:          c.bus.wmLogger,
		}
		router.AddMiddleware(retry.Middleware)
	}

	for name, handle := range map[string]message.NoPublishHandlerFunc{
		TopicProfileUpdated:   c.handleProfileUpdated,
		TopicGroupChanged:     c.handleGroupChanged,
		TopicAlgorithmUpdated: c.handleAlgorithmUpdated,
	} {
		router.AddConsumerHandler("invalidate_"+name, c.bus.Topic(name), keepOpen{c.bus.subscriber}, c.observe(name, handle))
	}
	return router, nil
}

// keepOpen stops the router from closing the bus subscriber on shutdown, so
// a restarted Serve can subscribe again. Bus.Close owns the subscriber.
type keepOpen struct {
	message.Subscriber
}

func (keepOpen) Close() error { return nil }

// observe records the outcome and drops undecodable messages so they are
// acked instead of retried.
func (c *Consumer) observe(name string, next message.NoPublishHandlerFunc) message.NoPublishHandlerFunc {
	return func(msg *message.Message) error {
		err := next(msg)
		metrics.RecordEventConsumed(name, err)
		if errors.Is(err, ErrInvalidEvent) {
			c.logger.Warn().Err(err).Str("topic", name).Str("message_id", msg.UUID).Msg("Dropping invalid event")
			return nil
		}
		return err
	}
}

func (c *Consumer) handleProfileUpdated(msg *message.Message) error {
	var event ProfileUpdatedEvent
	if err := decode(msg.Payload, &event); err != nil {
		return err
	}
	removed, err := c.target.ProfileUpdated(msg.Context(), event.UserID)
	if err != nil {
		return err
	}
	c.logger.Debug().Str("user_id", event.UserID).Int("removed", removed).Str("source", msg.Metadata.Get(MetadataSource)).Msg("Applied profile update")
	return nil
}

func (c *Consumer) handleGroupChanged(msg *message.Message) error {
	var event GroupChangedEvent
	if err := decode(msg.Payload, &event); err != nil {
		return err
	}
	removed, err := c.target.GroupChanged(msg.Context(), event.GroupID)
	if err != nil {
		return err
	}
	c.logger.Debug().Str("group_id", event.GroupID).Int("removed", removed).Str("source", msg.Metadata.Get(MetadataSource)).Msg("Applied group change")
	return nil
}

func (c *Consumer) handleAlgorithmUpdated(msg *message.Message) error {
	var event AlgorithmUpdatedEvent
	if err := decode(msg.Payload, &event); err != nil {
		return err
	}
	return c.target.ApplyAlgorithmUpdate(msg.Context(), event.Parameters)
}
