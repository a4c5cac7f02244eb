// Comicrec - Comic Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/comicrec

package wal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/comicrec/internal/logging"
	"github.com/tomtom215/comicrec/internal/metrics"
)

// Applier writes a rating to the primary store.
// Errors wrapping ErrPermanent cause the entry to be dropped.
type Applier interface {
	ApplyRating(ctx context.Context, write RatingWrite) error
}

// ApplierFunc adapts a function to Applier.
type ApplierFunc func(ctx context.Context, write RatingWrite) error

// ApplyRating implements Applier.
func (f ApplierFunc) ApplyRating(ctx context.Context, write RatingWrite) error {
	return f(ctx, write)
}

// RecoveryResult summarizes a recovery run.
type RecoveryResult struct {
	TotalPending int
	Recovered    int
	Failed       int
	Expired      int
	Abandoned    int
	Skipped      int
	Errors       []error
	Duration     time.Duration
}

// outcome is the result of processing one pending entry.
type outcome int

const (
	outcomeApplied outcome = iota
	outcomeFailed
	outcomeExpired
	outcomeAbandoned
	outcomeSkipped
)

// RecoverPending replays every pending entry once, oldest first. It is run
// at startup before the API accepts writes and is safe to call repeatedly.
func (w *BadgerWAL) RecoverPending(ctx context.Context, applier Applier) (*RecoveryResult, error) {
	if applier == nil {
		return nil, errors.New("applier cannot be nil")
	}

	start := time.Now()
	result := &RecoveryResult{}

	entries, err := w.GetPending(ctx)
	if err != nil {
		return nil, fmt.Errorf("get pending entries: %w", err)
	}

	result.TotalPending = len(entries)
	if result.TotalPending == 0 {
		logging.Info().Msg("WAL recovery: no pending entries found")
		result.Duration = time.Since(start)
		return result, nil
	}
	logging.Info().Int("pending_entries", result.TotalPending).Msg("WAL recovery found pending entries")

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			result.Errors = append(result.Errors, err)
			result.Duration = time.Since(start)
			return result, err
		}

		switch o, err := w.process(ctx, entry, applier); o {
		case outcomeApplied:
			result.Recovered++
		case outcomeExpired:
			result.Expired++
		case outcomeAbandoned:
			result.Abandoned++
		case outcomeSkipped:
			result.Skipped++
		default:
			result.Failed++
			if err != nil {
				result.Errors = append(result.Errors, fmt.Errorf("entry %s: %w", entry.ID, err))
			}
		}
	}

	result.Duration = time.Since(start)
	logging.Info().
		Int("recovered", result.Recovered).
		Int("failed", result.Failed).
		Int("expired", result.Expired).
		Int("abandoned", result.Abandoned).
		Int("skipped", result.Skipped).
		Dur("duration", result.Duration).
		Msg("WAL recovery complete")

	return result, nil
}

// process applies one entry under an in-process claim.
func (w *BadgerWAL) process(ctx context.Context, entry *Entry, applier Applier) (outcome, error) {
	if !w.TryClaimEntry(entry.ID) {
		return outcomeSkipped, nil
	}
	defer w.ReleaseEntry(entry.ID)

	if w.config.EntryTTL > 0 && time.Since(entry.CreatedAt) > w.config.EntryTTL {
		logging.Info().Str("entry_id", entry.ID).Msg("WAL: entry expired, removing")
		return outcomeExpired, w.drop(ctx, entry.ID)
	}
	if entry.Attempts >= w.config.MaxRetries {
		logging.Warn().
			Str("entry_id", entry.ID).
			Int("attempts", entry.Attempts).
			Msg("WAL: entry exceeded max retries, removing")
		return outcomeAbandoned, w.drop(ctx, entry.ID)
	}

	if err := applier.ApplyRating(ctx, entry.Write); err != nil {
		if errors.Is(err, ErrPermanent) {
			logging.Warn().Err(err).Str("entry_id", entry.ID).Msg("WAL: entry cannot be applied, removing")
			return outcomeAbandoned, w.drop(ctx, entry.ID)
		}
		logging.Error().Err(err).Str("entry_id", entry.ID).Int("attempt", entry.Attempts+1).Msg("WAL: failed to apply entry")
		metrics.RecordWALRetry("failure")
		if updateErr := w.UpdateAttempt(ctx, entry.ID, err.Error()); updateErr != nil && !errors.Is(updateErr, ErrEntryNotFound) {
			return outcomeFailed, fmt.Errorf("update attempt: %w", updateErr)
		}
		return outcomeFailed, err
	}

	if err := w.Confirm(ctx, entry.ID); err != nil {
		if errors.Is(err, ErrEntryNotFound) {
			// Superseded by a newer write confirmed meanwhile.
			return outcomeApplied, nil
		}
		return outcomeFailed, fmt.Errorf("confirm: %w", err)
	}
	metrics.RecordWALRetry("success")
	return outcomeApplied, nil
}

func (w *BadgerWAL) drop(ctx context.Context, entryID string) error {
	metrics.RecordWALRetry("abandoned")
	if err := w.DeleteEntry(ctx, entryID); err != nil && !errors.Is(err, ErrEntryNotFound) {
		return fmt.Errorf("delete entry: %w", err)
	}
	return nil
}
