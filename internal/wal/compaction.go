// Comicrec - Comic Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/comicrec

package wal

import (
	"context"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/comicrec/internal/logging"
)

// Compactor periodically removes confirmed and expired entries and runs
// BadgerDB value log GC.
type Compactor struct {
	wal    *BadgerWAL
	config Config

	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu               sync.Mutex
	running          bool
	lastRun          time.Time
	lastEntriesCount int64
}

// NewCompactor creates a compactor for w.
func NewCompactor(w *BadgerWAL) *Compactor {
	return &Compactor{
		wal:    w,
		config: w.GetConfig(),
	}
}

// Start begins the background compaction loop.
func (c *Compactor) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return nil
	}
	loopCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.running = true
	c.mu.Unlock()

	c.wg.Add(1)
	go c.run(loopCtx)

	logging.Info().Dur("interval", c.config.CompactInterval).Msg("WAL compactor started")
	return nil
}

// Stop stops the loop and waits for it to exit.
func (c *Compactor) Stop() {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return
	}
	c.cancel()
	c.running = false
	c.mu.Unlock()

	c.wg.Wait()
	logging.Info().Msg("WAL compactor stopped")
}

// IsRunning reports whether the compactor is active.
func (c *Compactor) IsRunning() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

func (c *Compactor) run(ctx context.Context) {
	defer c.wg.Done()

	ticker := time.NewTicker(c.config.CompactInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.compact()
		}
	}
}

func (c *Compactor) compact() {
	start := time.Now()

	confirmed, err := c.deleteConfirmedEntries()
	if err != nil {
		logging.Error().Err(err).Msg("WAL compaction failed to delete confirmed entries")
	}
	expired, err := c.deleteExpiredEntries()
	if err != nil {
		logging.Error().Err(err).Msg("WAL compaction failed to delete expired entries")
	}
	if err := c.wal.RunGC(); err != nil {
		logging.Error().Err(err).Msg("WAL compaction GC error")
	}

	total := confirmed + expired
	now := time.Now()

	c.mu.Lock()
	c.lastRun = now
	c.lastEntriesCount = total
	c.mu.Unlock()

	c.wal.mu.Lock()
	c.wal.lastCompaction = now
	c.wal.mu.Unlock()

	if total > 0 {
		logging.Info().
			Int64("total_deleted", total).
			Int64("confirmed", confirmed).
			Int64("expired", expired).
			Dur("duration", time.Since(start)).
			Msg("WAL compaction removed entries")
	}
}

// deleteConfirmedEntries removes every confirmed entry.
func (c *Compactor) deleteConfirmedEntries() (int64, error) {
	return c.deleteWhere(prefixConfirmed, nil)
}

// deleteExpiredEntries removes pending entries older than EntryTTL.
func (c *Compactor) deleteExpiredEntries() (int64, error) {
	if c.config.EntryTTL <= 0 {
		return 0, nil
	}
	cutoff := time.Now().Add(-c.config.EntryTTL)
	return c.deleteWhere(prefixPending, func(val []byte) bool {
		var entry Entry
		if err := json.Unmarshal(val, &entry); err != nil {
			return false
		}
		return entry.CreatedAt.Before(cutoff)
	})
}

// deleteWhere deletes keys under prefix whose value matches. A nil match
// deletes every key.
func (c *Compactor) deleteWhere(prefix string, match func(val []byte) bool) (int64, error) {
	if err := c.wal.checkOpen(); err != nil {
		return 0, err
	}

	var count int64
	err := c.wal.db.Update(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefix)
		opts.PrefetchValues = match != nil
		it := txn.NewIterator(opts)

		var keys [][]byte
		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			if match != nil {
				var ok bool
				if err := item.Value(func(val []byte) error {
					ok = match(val)
					return nil
				}); err != nil || !ok {
					continue
				}
			}
			keys = append(keys, item.KeyCopy(nil))
		}
		it.Close()

		for _, key := range keys {
			if err := txn.Delete(key); err != nil {
				return err
			}
			count++
		}
		return nil
	})
	return count, err
}

// RunNow runs one compaction synchronously.
func (c *Compactor) RunNow() {
	c.compact()
}

// CompactorStats contains statistics about compaction.
type CompactorStats struct {
	LastRun          time.Time `json:"last_run"`
	LastEntriesCount int64     `json:"last_entries_count"`
}

// GetStats returns compaction statistics.
func (c *Compactor) GetStats() CompactorStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return CompactorStats{
		LastRun:          c.lastRun,
		LastEntriesCount: c.lastEntriesCount,
	}
}
