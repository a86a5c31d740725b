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

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
	natsgo "github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/tomtom215/tripmatch/internal/config"
	"github.com/tomtom215/tripmatch/internal/metrics"
	"github.com/tomtom215/tripmatch/internal/models"
)

// Bus publishes invalidation events and hands its subscriber to Consumer.
// A Bus with no transport accepts publishes and drops them.
type Bus struct {
	publisher  message.Publisher
	subscriber message.Subscriber
	prefix     string
	source     string
	wmLogger   watermill.LoggerAdapter
	logger     zerolog.Logger

	closeOnce sync.Once
	closeErr  error
	now       func() time.Time
}

// Open creates a Bus for the configured transport.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func Open(cfg *config.EventsConfig, logger zerolog.Logger) (*Bus, error) {
	logger = logger.With().Str("component", "event_bus").Logger()
	wmLogger := NewWatermillLogger(logger)

	switch cfg.Transport {
	case config.EventsTransportNone, "":
		return NewBus(nil, nil, cfg.TopicPrefix, logger), nil

	case config.EventsTransportGoChannel:
		gc := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 64}, wmLogger)
		return NewBus(gc, gc, cfg.TopicPrefix, logger), nil

	case config.EventsTransportNATS:
		pub, sub, err := openNATS(cfg, wmLogger)
		if err != nil {
			return nil, err
		}
		logger.Info().Str("url", cfg.NATSURL).Str("queue_group", cfg.QueueGroup).Msg("Connected event bus to NATS")
		return NewBus(pub, sub, cfg.TopicPrefix, logger), nil

	default:
		return nil, fmt.Errorf("%w: unknown events transport %q", ErrInvalidConfig, cfg.Transport)
	}
}

// NewBus wraps an existing publisher and subscriber. Either may be nil.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewBus(pub message.Publisher, sub message.Subscriber, prefix string, logger zerolog.Logger) *Bus {
	return &Bus{
		publisher:  pub,
		subscriber: sub,
		prefix:     prefix,
		source:     uuid.NewString(),
		wmLogger:   NewWatermillLogger(logger),
		logger:     logger,
		now:        time.Now,
	}
}

// openNATS connects a core NATS publisher and subscriber. JetStream is not
// used: invalidation events are only useful to instances that are running.
func openNATS(cfg *config.EventsConfig, wmLogger watermill.LoggerAdapter) (message.Publisher, message.Subscriber, error) {
	natsOpts := []natsgo.Option{
		natsgo.Name("tripmatch"),
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(-1),
		natsgo.ReconnectWait(2 * time.Second),
		natsgo.DisconnectErrHandler(func(_ *natsgo.Conn, err error) {
			if err != nil {
				wmLogger.Error("NATS disconnected", err, nil)
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			wmLogger.Info("NATS reconnected", watermill.LogFields{"url": nc.ConnectedUrl()})
		}),
	}

	pub, err := wmNats.NewPublisher(wmNats.PublisherConfig{
		URL:         cfg.NATSURL,
		NatsOptions: natsOpts,
		Marshaler:   &wmNats.NATSMarshaler{},
		JetStream:   wmNats.JetStreamConfig{Disabled: true},
	}, wmLogger)
	if err != nil {
		return nil, nil, fmt.Errorf("create NATS publisher: %w", err)
	}

	sub, err := wmNats.NewSubscriber(wmNats.SubscriberConfig{
		URL:              cfg.NATSURL,
		QueueGroupPrefix: cfg.QueueGroup,
		SubscribersCount: 1,
		AckWaitTimeout:   30 * time.Second,
		CloseTimeout:     10 * time.Second,
		NatsOptions:      natsOpts,
		Unmarshaler:      &wmNats.NATSMarshaler{},
		JetStream:        wmNats.JetStreamConfig{Disabled: true},
	}, wmLogger)
	if err != nil {
		_ = pub.Close()
		return nil, nil, fmt.Errorf("create NATS subscriber: %w", err)
	}
	return pub, sub, nil
}

// Enabled reports whether the bus has a transport.
func (b *Bus) Enabled() bool {
	return b.publisher != nil
}

// Source identifies this process in message metadata.
func (b *Bus) Source() string {
	return b.source
}

// Topic returns the full topic name for name.
func (b *Bus) Topic(name string) string {
	return b.prefix + name
}

// PublishProfileUpdated announces a profile change.
func (b *Bus) PublishProfileUpdated(ctx context.Context, userID string) error {
	return b.publish(ctx, TopicProfileUpdated, &ProfileUpdatedEvent{UserID: userID, OccurredAt: b.now().UTC()})
}

// PublishGroupChanged announces a group membership change.
func (b *Bus) PublishGroupChanged(ctx context.Context, groupID string) error {
	return b.publish(ctx, TopicGroupChanged, &GroupChangedEvent{GroupID: groupID, OccurredAt: b.now().UTC()})
}

// AlgorithmUpdated implements compat.Notifier.
func (b *Bus) AlgorithmUpdated(ctx context.Context, params models.ScoringParameters) error {
	return b.publish(ctx, TopicAlgorithmUpdated, &AlgorithmUpdatedEvent{Parameters: params, OccurredAt: b.now().UTC()})
}

func (b *Bus) publish(ctx context.Context, name string, event validatable) error {
	payload, err := encode(event)
	if err != nil {
		return err
	}
	if !b.Enabled() {
		return nil
	}

	msg := message.NewMessage(uuid.NewString(), payload)
	msg.SetContext(ctx)
	msg.Metadata.Set(MetadataSource, b.source)
	msg.Metadata.Set(MetadataEventType, name)

	topic := b.Topic(name)
	if err := b.publisher.Publish(topic, msg); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	metrics.RecordEventPublished(name)
	b.logger.Debug().Str("topic", topic).Str("message_id", msg.UUID).Msg("Published event")
	return nil
}

// Close closes the transport. The gochannel transport shares one value for
// both sides and is closed once.
func (b *Bus) Close() error {
	b.closeOnce.Do(func() {
		var errs []error
		if b.publisher != nil {
			errs = append(errs, b.publisher.Close())
		}
		if b.subscriber != nil && any(b.subscriber) != any(b.publisher) {
			errs = append(errs, b.subscriber.Close())
		}
		b.closeErr = errors.Join(errs...)
	})
	return b.closeErr
}
