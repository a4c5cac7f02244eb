// Comicrec - Comic Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/comicrec

package events

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/rs/zerolog"

	"github.com/tomtom215/comicrec/internal/cache"
	"github.com/tomtom215/comicrec/internal/metrics"
)

// Invalidator drops cached data derived from the catalog.
type Invalidator interface {
	Clear()
}

// ConsumerConfig tunes the consumer router.
type ConsumerConfig struct {
	RetryMaxRetries      int
	RetryInitialInterval time.Duration
	DedupTTL             time.Duration
	CloseTimeout         time.Duration
}

// DefaultConsumerConfig returns the default consumer settings.
func DefaultConsumerConfig() ConsumerConfig {
	return ConsumerConfig{
		RetryMaxRetries:      3,
		RetryInitialInterval: 100 * time.Millisecond,
		DedupTTL:             10 * time.Minute,
		CloseTimeout:         10 * time.Second,
	}
}

// deduplicator implements middleware.ExpiringKeyRepository on an LRU.
type deduplicator struct {
	seen *cache.LRU[struct{}]
}

func (d *deduplicator) IsDuplicate(_ context.Context, key string) (bool, error) {
	return d.seen.IsDuplicate(key), nil
}

// Consumer invalidates cached catalog data when catalog events arrive.
// Serve builds a fresh Watermill router each call so the supervisor can
// restart it.
type Consumer struct {
	subscriber  message.Subscriber
	invalidator Invalidator
	config      ConsumerConfig
	dedup       *deduplicator
	logger      zerolog.Logger

	consumed atomic.Int64

	ready     chan struct{}
	readyOnce sync.Once
}

// NewConsumer creates a consumer reading from subscriber.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewConsumer(subscriber message.Subscriber, invalidator Invalidator, cfg *ConsumerConfig, logger zerolog.Logger) *Consumer {
	c := DefaultConsumerConfig()
	if cfg != nil {
		c = *cfg
	}
	return &Consumer{
		subscriber:  subscriber,
		invalidator: invalidator,
		config:      c,
		dedup:       &deduplicator{seen: cache.NewLRU[struct{}](10000, c.DedupTTL)},
		logger:      logger.With().Str("component", "events-consumer").Logger(),
		ready:       make(chan struct{}),
	}
}

// Serve runs the consumer until ctx is canceled.
func (c *Consumer) Serve(ctx context.Context) error {
	router, err := message.NewRouter(message.RouterConfig{CloseTimeout: c.config.CloseTimeout}, WatermillLogger("events-consumer"))
	if err != nil {
		return fmt.Errorf("create watermill router: %w", err)
	}

	retry := middleware.Retry{
		MaxRetries:      c.config.RetryMaxRetries,
		InitialInterval: c.config.RetryInitialInterval,
		Multiplier:      2,
	}
	dedup := middleware.Deduplicator{
		KeyFactory: func(msg *message.Message) (string, error) {
			return msg.UUID, nil
		},
		Repository: c.dedup,
	}
	router.AddMiddleware(middleware.Recoverer, retry.Middleware, dedup.Middleware)

	for _, topic := range Topics {
		router.AddConsumerHandler("invalidate-"+topic, topic, c.subscriber, c.handle)
	}

	go func() {
		select {
		case <-router.Running():
			c.readyOnce.Do(func() { close(c.ready) })
		case <-ctx.Done():
		}
	}()

	c.logger.Info().Strs("topics", Topics).Msg("catalog event consumer started")
	if err := router.Run(ctx); err != nil {
		return fmt.Errorf("event consumer router: %w", err)
	}
	c.logger.Info().Msg("catalog event consumer stopped")
	return ctx.Err()
}

// Ready is closed once the consumer has subscribed to its topics.
func (c *Consumer) Ready() <-chan struct{} {
	return c.ready
}

// Consumed returns the number of events handled.
func (c *Consumer) Consumed() int64 {
	return c.consumed.Load()
}

// String implements fmt.Stringer for supervisor logs.
func (c *Consumer) String() string {
	return "events-consumer"
}

func (c *Consumer) handle(msg *message.Message) error {
	event, err := Unmarshal(msg.Payload)
	if err != nil {
		// Malformed payloads will not improve on retry.
		c.logger.Warn().Err(err).Str("message_uuid", msg.UUID).Msg("dropping malformed catalog event")
		return nil
	}

	if c.invalidator != nil {
		c.invalidator.Clear()
	}
	c.consumed.Add(1)
	metrics.RecordEventConsumed(event.Topic)

	c.logger.Debug().
		Str("topic", event.Topic).
		Str("event_id", event.EventID).
		Int64("comic_id", event.ComicID).
		Msg("catalog event consumed")
	return nil
}
