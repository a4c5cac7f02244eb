// Comicrec - Comic Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/comicrec

package wal

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestRecoverPending_ReplaysInWriteOrder(t *testing.T) {
	t.Parallel()
	w := setupWAL(t)
	ctx := context.Background()

	writes := []RatingWrite{
		{UserID: 1, ComicID: 10, Rating: 2},
		{UserID: 1, ComicID: 11, Rating: 4},
		{UserID: 2, ComicID: 10, Rating: 5},
	}
	writeRatings(ctx, t, w, writes...)

	applier := &recordingApplier{}
	result, err := w.RecoverPending(ctx, applier)
	if err != nil {
		t.Fatalf("RecoverPending() error = %v", err)
	}
	if result.TotalPending != 3 || result.Recovered != 3 || result.Failed != 0 {
		t.Errorf("result = %+v", result)
	}

	applied := applier.snapshot()
	if len(applied) != len(writes) {
		t.Fatalf("applied %d writes, want %d", len(applied), len(writes))
	}
	for i := range writes {
		if applied[i] != writes[i] {
			t.Errorf("applied[%d] = %+v, want %+v", i, applied[i], writes[i])
		}
	}

	if n := w.Stats().PendingCount; n != 0 {
		t.Errorf("pending after recovery = %d, want 0", n)
	}

	// A second run finds nothing.
	result, err = w.RecoverPending(ctx, applier)
	if err != nil || result.TotalPending != 0 {
		t.Errorf("second RecoverPending() = %+v, %v", result, err)
	}
}

func TestRecoverPending_FailureKeepsEntry(t *testing.T) {
	t.Parallel()
	w := setupWAL(t)
	ctx := context.Background()

	writeRatings(ctx, t, w, RatingWrite{UserID: 1, ComicID: 10, Rating: 3})

	applier := &recordingApplier{}
	applier.setErr(errors.New("database is locked"))

	result, err := w.RecoverPending(ctx, applier)
	if err != nil {
		t.Fatalf("RecoverPending() error = %v", err)
	}
	if result.Failed != 1 || len(result.Errors) != 1 {
		t.Errorf("result = %+v", result)
	}

	pending, err := w.GetPending(ctx)
	if err != nil {
		t.Fatalf("GetPending() error = %v", err)
	}
	if len(pending) != 1 || pending[0].Attempts != 1 || pending[0].LastError != "database is locked" {
		t.Errorf("pending = %+v", pending)
	}
}

func TestRecoverPending_PermanentFailureDropsEntry(t *testing.T) {
	t.Parallel()
	w := setupWAL(t)
	ctx := context.Background()

	writeRatings(ctx, t, w, RatingWrite{UserID: 1, ComicID: 404, Rating: 3})

	applier := &recordingApplier{}
	applier.setErr(fmt.Errorf("%w: comic 404 not found", ErrPermanent))

	result, err := w.RecoverPending(ctx, applier)
	if err != nil {
		t.Fatalf("RecoverPending() error = %v", err)
	}
	if result.Abandoned != 1 {
		t.Errorf("result = %+v, want one abandoned entry", result)
	}
	if n := w.Stats().PendingCount; n != 0 {
		t.Errorf("pending = %d, want 0", n)
	}
}

func TestRecoverPending_MaxRetriesDropsEntry(t *testing.T) {
	t.Parallel()
	w := setupWAL(t)
	ctx := context.Background()

	ids := writeRatings(ctx, t, w, RatingWrite{UserID: 1, ComicID: 10, Rating: 3})
	for i := 0; i < w.config.MaxRetries; i++ {
		if err := w.UpdateAttempt(ctx, ids[0], "boom"); err != nil {
			t.Fatalf("UpdateAttempt() error = %v", err)
		}
	}

	applier := &recordingApplier{}
	result, err := w.RecoverPending(ctx, applier)
	if err != nil {
		t.Fatalf("RecoverPending() error = %v", err)
	}
	if result.Abandoned != 1 || len(applier.snapshot()) != 0 {
		t.Errorf("result = %+v, applied = %v", result, applier.snapshot())
	}
}

func TestRecoverPending_SkipsClaimedEntries(t *testing.T) {
	t.Parallel()
	w := setupWAL(t)
	ctx := context.Background()

	ids := writeRatings(ctx, t, w, RatingWrite{UserID: 1, ComicID: 10, Rating: 3})
	if !w.TryClaimEntry(ids[0]) {
		t.Fatal("claim failed")
	}
	defer w.ReleaseEntry(ids[0])

	result, err := w.RecoverPending(ctx, &recordingApplier{})
	if err != nil {
		t.Fatalf("RecoverPending() error = %v", err)
	}
	if result.Skipped != 1 {
		t.Errorf("result = %+v, want one skipped entry", result)
	}
}

func TestRecoverPending_Errors(t *testing.T) {
	t.Parallel()
	w := setupWAL(t)

	if _, err := w.RecoverPending(context.Background(), nil); err == nil {
		t.Error("RecoverPending(nil) should fail")
	}

	writeRatings(context.Background(), t, w, RatingWrite{UserID: 1, ComicID: 10, Rating: 3})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := w.RecoverPending(ctx, &recordingApplier{}); !errors.Is(err, context.Canceled) {
		t.Errorf("RecoverPending() with canceled ctx error = %v", err)
	}
}

func TestRetryLoop_AppliesAfterRecovery(t *testing.T) {
	t.Parallel()
	w := setupWAL(t)
	ctx := context.Background()

	writeRatings(ctx, t, w, RatingWrite{UserID: 5, ComicID: 6, Rating: 4})

	w.config.MaxRetries = 100
	applier := &recordingApplier{}
	applier.setErr(errors.New("database is locked"))

	loop := NewRetryLoop(w, applier)
	if err := loop.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer loop.Stop()
	if !loop.IsRunning() {
		t.Fatal("IsRunning() = false after Start")
	}

	// Let at least one failing pass happen, then heal the store.
	time.Sleep(120 * time.Millisecond)
	applier.setErr(nil)

	deadline := time.Now().Add(5 * time.Second)
	for w.Stats().PendingCount > 0 {
		if time.Now().After(deadline) {
			t.Fatalf("entry still pending; stats = %+v", loop.GetStats(ctx))
		}
		time.Sleep(20 * time.Millisecond)
	}
	if len(applier.snapshot()) != 1 {
		t.Errorf("applied = %v, want one write", applier.snapshot())
	}

	loop.Stop()
	if loop.IsRunning() {
		t.Error("IsRunning() = true after Stop")
	}
	loop.Stop()
}

func TestRetryLoop_CalculateBackoff(t *testing.T) {
	t.Parallel()
	w := setupWAL(t)
	loop := NewRetryLoop(w, &recordingApplier{})
	loop.config.RetryBackoff = time.Second

	tests := []struct {
		attempts int
		want     time.Duration
	}{
		{0, time.Second},
		{1, 2 * time.Second},
		{3, 8 * time.Second},
		{9, 5 * time.Minute},
		{100, 5 * time.Minute},
	}
	for _, tt := range tests {
		if got := loop.calculateBackoff(tt.attempts); got != tt.want {
			t.Errorf("calculateBackoff(%d) = %v, want %v", tt.attempts, got, tt.want)
		}
	}
}

func TestRetryLoop_RespectsBackoff(t *testing.T) {
	t.Parallel()
	w := setupWAL(t)
	loop := NewRetryLoop(w, &recordingApplier{})
	loop.config.RetryBackoff = time.Hour

	if !loop.isReadyForRetry(&Entry{}) {
		t.Error("never-attempted entry should be ready")
	}
	if loop.isReadyForRetry(&Entry{Attempts: 1, LastAttemptAt: time.Now()}) {
		t.Error("entry inside its backoff should not be ready")
	}
}

func TestCompactor_RemovesConfirmedEntries(t *testing.T) {
	t.Parallel()
	w := setupWAL(t)
	ctx := context.Background()

	ids := writeRatings(ctx, t, w,
		RatingWrite{UserID: 1, ComicID: 1, Rating: 3},
		RatingWrite{UserID: 1, ComicID: 2, Rating: 3},
		RatingWrite{UserID: 1, ComicID: 3, Rating: 3},
	)
	for _, id := range ids[:2] {
		if err := w.Confirm(ctx, id); err != nil {
			t.Fatalf("Confirm() error = %v", err)
		}
	}

	c := NewCompactor(w)
	c.RunNow()

	stats := w.Stats()
	if stats.ConfirmedCount != 0 || stats.PendingCount != 1 {
		t.Errorf("Stats() after compaction = %+v", stats)
	}
	if got := c.GetStats(); got.LastEntriesCount != 2 || got.LastRun.IsZero() {
		t.Errorf("GetStats() = %+v", got)
	}
	if !stats.LastCompaction.Equal(c.GetStats().LastRun) {
		t.Errorf("LastCompaction = %v, want %v", stats.LastCompaction, c.GetStats().LastRun)
	}
}

func TestCompactor_StartStop(t *testing.T) {
	t.Parallel()
	w := setupWAL(t)
	ctx := context.Background()

	ids := writeRatings(ctx, t, w, RatingWrite{UserID: 1, ComicID: 1, Rating: 3})
	if err := w.Confirm(ctx, ids[0]); err != nil {
		t.Fatalf("Confirm() error = %v", err)
	}

	c := NewCompactor(w)
	if err := c.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if !c.IsRunning() {
		t.Fatal("IsRunning() = false after Start")
	}

	deadline := time.Now().Add(5 * time.Second)
	for w.Stats().ConfirmedCount > 0 {
		if time.Now().After(deadline) {
			t.Fatal("compactor did not remove confirmed entry")
		}
		time.Sleep(20 * time.Millisecond)
	}

	c.Stop()
	if c.IsRunning() {
		t.Error("IsRunning() = true after Stop")
	}
}
