// Comicrec - Comic Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/comicrec

package events

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/rs/zerolog"

	"github.com/tomtom215/comicrec/internal/config"
	"github.com/tomtom215/comicrec/internal/logging"
	"github.com/tomtom215/comicrec/internal/metrics"
)

// ErrBusClosed is returned by Publish after Close.
var ErrBusClosed = errors.New("event bus is closed")

// Publisher publishes catalog events.
type Publisher interface {
	Publish(ctx context.Context, event *CatalogEvent) error
}

// NopPublisher drops every event. It is used when events are disabled.
type NopPublisher struct{}

// Publish implements Publisher.
func (NopPublisher) Publish(context.Context, *CatalogEvent) error { return nil }

// Bus is the in-process pub/sub for catalog events.
type Bus struct {
	pubsub *gochannel.GoChannel
	logger zerolog.Logger

	mu     sync.RWMutex
	closed bool
}

var _ Publisher = (*Bus)(nil)

// NewBus creates a GoChannel-backed bus.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewBus(cfg *config.EventsConfig, logger zerolog.Logger) *Bus {
	buffer := int64(256)
	if cfg != nil && cfg.OutputChannelBuffer > 0 {
		buffer = cfg.OutputChannelBuffer
	}

	return &Bus{
		pubsub: gochannel.NewGoChannel(
			gochannel.Config{OutputChannelBuffer: buffer},
			WatermillLogger("events-bus"),
		),
		logger: logger.With().Str("component", "events").Logger(),
	}
}

// WatermillLogger returns a Watermill logger backed by the application logger.
func WatermillLogger(component string) watermill.LoggerAdapter {
	return watermill.NewSlogLogger(logging.NewSlogLogger(component))
}

// Publish validates and publishes an event on its topic.
func (b *Bus) Publish(ctx context.Context, event *CatalogEvent) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return ErrBusClosed
	}
	if err := event.Validate(); err != nil {
		return err
	}

	payload, err := event.Marshal()
	if err != nil {
		return err
	}
	msg := message.NewMessage(event.EventID, payload)
	if event.RequestID != "" {
		msg.Metadata.Set("request_id", event.RequestID)
	}
	msg.SetContext(ctx)

	if err := b.pubsub.Publish(event.Topic, msg); err != nil {
		return fmt.Errorf("publish %s: %w", event.Topic, err)
	}

	metrics.RecordEventPublished(event.Topic)
	b.logger.Debug().
		Str("topic", event.Topic).
		Str("event_id", event.EventID).
		Int64("comic_id", event.ComicID).
		Msg("catalog event published")
	return nil
}

// Subscriber returns the subscriber side of the bus.
func (b *Bus) Subscriber() message.Subscriber {
	return b.pubsub
}

// Publisher returns the raw Watermill publisher.
func (b *Bus) Publisher() message.Publisher {
	return b.pubsub
}

// Close closes the bus. Subscriptions end and further publishes fail.
func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	return b.pubsub.Close()
}
