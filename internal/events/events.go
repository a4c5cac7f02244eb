// Comicrec - Comic Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/comicrec

package events

import (
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// Topics.
const (
	TopicComicCreated   = "catalog.comic_created"
	TopicRatingUpserted = "catalog.rating_upserted"
)

// Topics lists every catalog topic.
var Topics = []string{TopicComicCreated, TopicRatingUpserted}

// CatalogEvent describes one change to the catalog or its ratings.
type CatalogEvent struct {
	EventID    string    `json:"event_id"`
	Topic      string    `json:"topic"`
	ComicID    int64     `json:"comic_id"`
	UserID     int64     `json:"user_id,omitempty"`
	Rating     float64   `json:"rating,omitempty"`
	Genre      string    `json:"genre,omitempty"`
	RequestID  string    `json:"request_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// ErrInvalidEvent is returned for events missing required fields.
var ErrInvalidEvent = errors.New("invalid catalog event")

// ComicCreated returns the event for a newly created comic.
func ComicCreated(comicID int64, genre string) *CatalogEvent {
	return newEvent(TopicComicCreated, func(e *CatalogEvent) {
		e.ComicID = comicID
		e.Genre = genre
	})
}

// RatingUpserted returns the event for a created or updated rating.
func RatingUpserted(userID, comicID int64, rating float64) *CatalogEvent {
	return newEvent(TopicRatingUpserted, func(e *CatalogEvent) {
		e.UserID = userID
		e.ComicID = comicID
		e.Rating = rating
	})
}

func newEvent(topic string, fill func(*CatalogEvent)) *CatalogEvent {
	e := &CatalogEvent{
		EventID:    uuid.New().String(),
		Topic:      topic,
		OccurredAt: time.Now().UTC(),
	}
	fill(e)
	return e
}

// Validate checks that the event can be published.
func (e *CatalogEvent) Validate() error {
	switch {
	case e.EventID == "":
		return fmt.Errorf("%w: event_id is required", ErrInvalidEvent)
	case e.Topic != TopicComicCreated && e.Topic != TopicRatingUpserted:
		return fmt.Errorf("%w: unknown topic %q", ErrInvalidEvent, e.Topic)
	case e.ComicID <= 0:
		return fmt.Errorf("%w: comic_id is required", ErrInvalidEvent)
	case e.Topic == TopicRatingUpserted && e.UserID <= 0:
		return fmt.Errorf("%w: user_id is required for %s", ErrInvalidEvent, e.Topic)
	}
	return nil
}

// Marshal encodes the event as JSON.
func (e *CatalogEvent) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

// Unmarshal decodes a JSON event payload.
func Unmarshal(data []byte) (*CatalogEvent, error) {
	var e CatalogEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("unmarshal catalog event: %w", err)
	}
	return &e, nil
}
