// Comicrec - Comic Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/comicrec

package events

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"

	"github.com/tomtom215/comicrec/internal/config"
	"github.com/tomtom215/comicrec/internal/metrics"
)

type countingInvalidator struct {
	n atomic.Int32
}

func (c *countingInvalidator) Clear() { c.n.Add(1) }

func TestCatalogEvent_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		event   *CatalogEvent
		wantErr bool
	}{
		{name: "comic created", event: ComicCreated(1, "Superhero")},
		{name: "rating upserted", event: RatingUpserted(2, 3, 4.5)},
		{name: "missing comic", event: ComicCreated(0, "Superhero"), wantErr: true},
		{name: "rating without user", event: RatingUpserted(0, 3, 4.5), wantErr: true},
		{name: "unknown topic", event: &CatalogEvent{EventID: "x", Topic: "catalog.other", ComicID: 1}, wantErr: true},
		{name: "missing id", event: &CatalogEvent{Topic: TopicComicCreated, ComicID: 1}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.event.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidEvent) {
				t.Errorf("error %v does not wrap ErrInvalidEvent", err)
			}
		})
	}
}

func TestCatalogEvent_RoundTrip(t *testing.T) {
	t.Parallel()

	in := RatingUpserted(7, 11, 3.5)
	in.RequestID = "req-9"
	data, err := in.Marshal()
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	out, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if out.EventID != in.EventID || out.UserID != 7 || out.ComicID != 11 || out.Rating != 3.5 || out.RequestID != "req-9" {
		t.Errorf("round trip = %+v, want %+v", out, in)
	}
	if !out.OccurredAt.Equal(in.OccurredAt) {
		t.Errorf("OccurredAt = %v, want %v", out.OccurredAt, in.OccurredAt)
	}

	if _, err := Unmarshal([]byte("{")); err == nil {
		t.Error("Unmarshal should reject malformed JSON")
	}
}

func TestBus_PublishSubscribe(t *testing.T) {
	t.Parallel()

	bus := NewBus(&config.EventsConfig{Enabled: true, OutputChannelBuffer: 8}, zerolog.Nop())
	defer bus.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	msgs, err := bus.Subscriber().Subscribe(ctx, TopicComicCreated)
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	before := testutil.ToFloat64(metrics.EventsPublished.WithLabelValues(TopicComicCreated))
	event := ComicCreated(42, "Fantasy")
	event.RequestID = "req-1"
	if err := bus.Publish(ctx, event); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	select {
	case msg := <-msgs:
		got, err := Unmarshal(msg.Payload)
		if err != nil {
			t.Fatalf("Unmarshal() error = %v", err)
		}
		if msg.UUID != event.EventID || got.ComicID != 42 || got.Genre != "Fantasy" {
			t.Errorf("received %s %+v", msg.UUID, got)
		}
		if msg.Metadata.Get("request_id") != "req-1" {
			t.Errorf("request_id metadata = %q", msg.Metadata.Get("request_id"))
		}
		msg.Ack()
	case <-ctx.Done():
		t.Fatal("timed out waiting for message")
	}

	if got := testutil.ToFloat64(metrics.EventsPublished.WithLabelValues(TopicComicCreated)); got < before+1 {
		t.Errorf("published counter = %v, want > %v", got, before)
	}
}

func TestBus_PublishErrors(t *testing.T) {
	t.Parallel()

	bus := NewBus(nil, zerolog.Nop())
	if err := bus.Publish(context.Background(), ComicCreated(0, "")); !errors.Is(err, ErrInvalidEvent) {
		t.Errorf("Publish(invalid) error = %v, want ErrInvalidEvent", err)
	}

	if err := bus.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := bus.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
	if err := bus.Publish(context.Background(), ComicCreated(1, "x")); !errors.Is(err, ErrBusClosed) {
		t.Errorf("Publish after Close error = %v, want ErrBusClosed", err)
	}
}

func TestNopPublisher(t *testing.T) {
	t.Parallel()
	var p Publisher = NopPublisher{}
	if err := p.Publish(context.Background(), ComicCreated(1, "x")); err != nil {
		t.Errorf("Publish() error = %v", err)
	}
}

func startConsumer(t *testing.T, bus *Bus, inv Invalidator) *Consumer {
	t.Helper()

	cfg := DefaultConsumerConfig()
	cfg.RetryInitialInterval = time.Millisecond
	c := NewConsumer(bus.Subscriber(), inv, &cfg, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Serve(ctx) }()
	t.Cleanup(func() {
		cancel()
		select {
		case <-done:
		case <-time.After(10 * time.Second):
			t.Error("consumer did not stop")
		}
	})

	select {
	case <-c.Ready():
	case <-time.After(5 * time.Second):
		t.Fatal("consumer did not become ready")
	}
	return c
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met before deadline")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestConsumer_InvalidatesOnEvents(t *testing.T) {
	t.Parallel()

	bus := NewBus(nil, zerolog.Nop())
	defer bus.Close()
	inv := &countingInvalidator{}
	c := startConsumer(t, bus, inv)

	ctx := context.Background()
	if err := bus.Publish(ctx, ComicCreated(1, "Superhero")); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if err := bus.Publish(ctx, RatingUpserted(1, 1, 5)); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	waitFor(t, func() bool { return c.Consumed() == 2 })
	if got := inv.n.Load(); got != 2 {
		t.Errorf("invalidations = %d, want 2", got)
	}
}

func TestConsumer_DeduplicatesByMessageID(t *testing.T) {
	t.Parallel()

	bus := NewBus(nil, zerolog.Nop())
	defer bus.Close()
	inv := &countingInvalidator{}
	c := startConsumer(t, bus, inv)

	event := ComicCreated(5, "Horror")
	payload, err := event.Marshal()
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	for i := 0; i < 3; i++ {
		if err := bus.Publisher().Publish(TopicComicCreated, message.NewMessage(event.EventID, payload)); err != nil {
			t.Fatalf("Publish() error = %v", err)
		}
	}
	follow := ComicCreated(6, "Horror")
	if err := bus.Publish(context.Background(), follow); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	waitFor(t, func() bool { return c.Consumed() >= 2 })
	time.Sleep(50 * time.Millisecond)
	if got := c.Consumed(); got != 2 {
		t.Errorf("consumed = %d, want 2 (duplicates dropped)", got)
	}
}

func TestConsumer_DropsMalformedPayload(t *testing.T) {
	t.Parallel()

	bus := NewBus(nil, zerolog.Nop())
	defer bus.Close()
	inv := &countingInvalidator{}
	c := startConsumer(t, bus, inv)

	if err := bus.Publisher().Publish(TopicRatingUpserted, message.NewMessage("bad-1", []byte("not json"))); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if err := bus.Publish(context.Background(), RatingUpserted(2, 3, 4)); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	waitFor(t, func() bool { return c.Consumed() == 1 })
	if got := inv.n.Load(); got != 1 {
		t.Errorf("invalidations = %d, want 1", got)
	}
}
