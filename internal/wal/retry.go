// Comicrec - Comic Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/comicrec

package wal

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/tomtom215/comicrec/internal/logging"
)

// applyTimeout bounds a single replayed write.
const applyTimeout = 10 * time.Second

// RetryLoop periodically re-applies pending entries with exponential backoff.
type RetryLoop struct {
	wal     *BadgerWAL
	applier Applier
	config  Config

	mu       sync.Mutex
	cancel   context.CancelFunc
	running  bool
	stopping bool
	stopDone chan struct{}
}

// NewRetryLoop creates a retry loop replaying entries through applier.
func NewRetryLoop(w *BadgerWAL, applier Applier) *RetryLoop {
	return &RetryLoop{
		wal:     w,
		applier: applier,
		config:  w.GetConfig(),
	}
}

// Start launches the loop. It runs until Stop is called or ctx is canceled.
func (r *RetryLoop) Start(ctx context.Context) error {
	r.mu.Lock()

	// Wait for any in-progress Stop to complete.
	for r.stopping {
		stopDone := r.stopDone
		r.mu.Unlock()
		<-stopDone
		r.mu.Lock()
	}

	if r.running {
		r.mu.Unlock()
		return nil
	}

	loopCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.running = true
	r.stopDone = make(chan struct{})
	done := r.stopDone
	r.mu.Unlock()

	go r.run(loopCtx, done)

	logging.Info().
		Dur("interval", r.config.RetryInterval).
		Int("max_retries", r.config.MaxRetries).
		Msg("WAL retry loop started")
	return nil
}

// Stop stops the loop and waits for it to exit.
func (r *RetryLoop) Stop() {
	r.mu.Lock()
	if !r.running || r.stopping {
		r.mu.Unlock()
		return
	}
	r.cancel()
	r.running = false
	r.stopping = true
	stopDone := r.stopDone
	r.mu.Unlock()

	<-stopDone

	r.mu.Lock()
	r.stopping = false
	r.mu.Unlock()

	logging.Info().Msg("WAL retry loop stopped")
}

// IsRunning reports whether the loop is active.
func (r *RetryLoop) IsRunning() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

func (r *RetryLoop) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(r.config.RetryInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.retryPending(ctx)
		}
	}
}

// retryPending makes one pass over the pending entries.
func (r *RetryLoop) retryPending(ctx context.Context) {
	entries, err := r.wal.GetPending(ctx)
	if err != nil {
		logging.Error().Err(err).Msg("WAL retry: failed to get pending entries")
		return
	}
	if len(entries) == 0 {
		r.wal.Stats()
		return
	}

	var applied, failed, expired, abandoned int
	for _, entry := range entries {
		if ctx.Err() != nil {
			return
		}
		if !r.isReadyForRetry(entry) {
			continue
		}

		applyCtx, cancel := context.WithTimeout(ctx, applyTimeout)
		o, _ := r.wal.process(applyCtx, entry, r.applier)
		cancel()

		switch o {
		case outcomeApplied:
			applied++
		case outcomeFailed:
			failed++
		case outcomeExpired:
			expired++
		case outcomeAbandoned:
			abandoned++
		case outcomeSkipped:
		}
	}

	r.wal.Stats()
	if applied > 0 || failed > 0 || expired > 0 || abandoned > 0 {
		logging.Info().
			Int("applied", applied).
			Int("failed", failed).
			Int("expired", expired).
			Int("abandoned", abandoned).
			Msg("WAL retry complete")
	}
}

// isReadyForRetry reports whether the entry's backoff has elapsed.
func (r *RetryLoop) isReadyForRetry(entry *Entry) bool {
	if entry.LastAttemptAt.IsZero() {
		return true
	}
	return time.Since(entry.LastAttemptAt) >= r.calculateBackoff(entry.Attempts)
}

// calculateBackoff returns base * 2^attempts, capped at 5 minutes.
func (r *RetryLoop) calculateBackoff(attempts int) time.Duration {
	const maxBackoff = 5 * time.Minute
	if attempts > 50 {
		return maxBackoff
	}

	backoff := time.Duration(float64(r.config.RetryBackoff) * math.Pow(2, float64(attempts)))
	if backoff < 0 || backoff > maxBackoff {
		return maxBackoff
	}
	return backoff
}

// RetryStats summarizes the pending backlog.
type RetryStats struct {
	PendingCount  int       `json:"pending_count"`
	TotalAttempts int       `json:"total_attempts"`
	MaxAttempts   int       `json:"max_attempts"`
	OldestEntry   time.Time `json:"oldest_entry"`
}

// GetStats returns backlog statistics.
func (r *RetryLoop) GetStats(ctx context.Context) RetryStats {
	entries, err := r.wal.GetPending(ctx)
	if err != nil {
		return RetryStats{}
	}

	stats := RetryStats{PendingCount: len(entries)}
	for _, entry := range entries {
		stats.TotalAttempts += entry.Attempts
		if entry.Attempts > stats.MaxAttempts {
			stats.MaxAttempts = entry.Attempts
		}
		if stats.OldestEntry.IsZero() || entry.CreatedAt.Before(stats.OldestEntry) {
			stats.OldestEntry = entry.CreatedAt
		}
	}
	return stats
}
