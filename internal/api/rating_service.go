// Comicrec - Comic Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/comicrec

package api

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tomtom215/comicrec/internal/database"
	"github.com/tomtom215/comicrec/internal/events"
	"github.com/tomtom215/comicrec/internal/models"
	"github.com/tomtom215/comicrec/internal/wal"
)

// RatingStore is the database surface used to apply rating writes.
type RatingStore interface {
	UpsertRating(ctx context.Context, userID, comicID int64, rating float64) (*models.Rating, error)
}

// RatingWAL is the write-ahead log surface used by RatingService.
// *wal.BadgerWAL implements it.
type RatingWAL interface {
	Write(ctx context.Context, write wal.RatingWrite) (string, error)
	Confirm(ctx context.Context, entryID string) error
	UpdateAttempt(ctx context.Context, entryID, lastError string) error
	DeleteEntry(ctx context.Context, entryID string) error
	TryClaimEntry(entryID string) bool
	ReleaseEntry(entryID string)
}

// RateResult is the outcome of RatingService.Rate.
type RateResult struct {
	// Rating is the stored rating. Nil when Pending.
	Rating *models.Rating

	// Pending is true when the write is durable in the WAL but not yet
	// applied to the database. The retry loop applies it later.
	Pending bool

	// EntryID is the WAL entry for the write, empty without a WAL.
	EntryID string
}

// RatingService upserts ratings through the WAL when one is configured.
//
// The write path is: WAL write, claim, apply, confirm. The claim keeps the
// retry loop off the entry while the request applies it. A transient apply
// failure leaves the entry pending and reports Pending; an unknown comic
// removes the entry and returns database.ErrNotFound.
type RatingService struct {
	store     RatingStore
	wal       RatingWAL
	publisher events.Publisher
	logger    zerolog.Logger
}

var _ wal.Applier = (*RatingService)(nil)

// NewRatingService creates a rating service. w and publisher may be nil.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewRatingService(store RatingStore, w RatingWAL, publisher events.Publisher, logger zerolog.Logger) *RatingService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &RatingService{
		store:     store,
		wal:       w,
		publisher: publisher,
		logger:    logger.With().Str("component", "ratings").Logger(),
	}
}

// ApplyRating implements wal.Applier. A rating for an unknown comic is a
// permanent failure.
func (s *RatingService) ApplyRating(ctx context.Context, write wal.RatingWrite) error {
	_, err := s.apply(ctx, write)
	return err
}

func (s *RatingService) apply(ctx context.Context, write wal.RatingWrite) (*models.Rating, error) {
	rating, err := s.store.UpsertRating(ctx, write.UserID, write.ComicID, write.Rating)
	if errors.Is(err, database.ErrNotFound) {
		return nil, fmt.Errorf("%w: %w", wal.ErrPermanent, err)
	}
	if err != nil {
		return nil, err
	}

	if err := s.publisher.Publish(ctx, events.RatingUpserted(write.UserID, write.ComicID, write.Rating)); err != nil {
		s.logger.Warn().Err(err).Int64("comic_id", write.ComicID).Msg("failed to publish rating event")
	}
	return rating, nil
}

// Rate records a rating for userID. Later writes for the same user and
// comic supersede earlier ones.
func (s *RatingService) Rate(ctx context.Context, userID, comicID int64, rating float64, requestID string) (*RateResult, error) {
	write := wal.RatingWrite{UserID: userID, ComicID: comicID, Rating: rating, RequestID: requestID}

	if s.wal == nil {
		r, err := s.apply(ctx, write)
		if err != nil {
			return nil, err
		}
		return &RateResult{Rating: r}, nil
	}

	entryID, err := s.wal.Write(ctx, write)
	if err != nil {
		return nil, fmt.Errorf("wal write: %w", err)
	}
	if !s.wal.TryClaimEntry(entryID) {
		// The retry loop picked it up first.
		return &RateResult{Pending: true, EntryID: entryID}, nil
	}
	defer s.wal.ReleaseEntry(entryID)

	r, err := s.apply(ctx, write)
	switch {
	case errors.Is(err, wal.ErrPermanent):
		if delErr := s.wal.DeleteEntry(ctx, entryID); delErr != nil && !errors.Is(delErr, wal.ErrEntryNotFound) {
			s.logger.Error().Err(delErr).Str("entry_id", entryID).Msg("failed to delete rejected WAL entry")
		}
		return nil, err
	case err != nil:
		s.logger.Warn().Err(err).Str("entry_id", entryID).Msg("rating apply failed, left pending in WAL")
		if upErr := s.wal.UpdateAttempt(ctx, entryID, err.Error()); upErr != nil && !errors.Is(upErr, wal.ErrEntryNotFound) {
			s.logger.Error().Err(upErr).Str("entry_id", entryID).Msg("failed to record WAL attempt")
		}
		return &RateResult{Pending: true, EntryID: entryID}, nil
	}

	if err := s.wal.Confirm(ctx, entryID); err != nil && !errors.Is(err, wal.ErrEntryNotFound) {
		// Applied already; a later replay rewrites the same value.
		s.logger.Warn().Err(err).Str("entry_id", entryID).Msg("failed to confirm WAL entry")
	}
	return &RateResult{Rating: r, EntryID: entryID}, nil
}
