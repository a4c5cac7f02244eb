// Comicrec - Comic Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/comicrec

package wal

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/comicrec/internal/logging"
	"github.com/tomtom215/comicrec/internal/metrics"
)

// WAL persists rating writes before they are applied to DuckDB.
type WAL interface {
	// Write durably records a rating write and returns its entry ID.
	Write(ctx context.Context, write RatingWrite) (entryID string, err error)

	// Confirm marks an entry as applied. Older pending entries for the same
	// user and comic are confirmed with it since they can no longer win.
	Confirm(ctx context.Context, entryID string) error

	// GetPending returns all unconfirmed entries in write order.
	GetPending(ctx context.Context) ([]*Entry, error)

	// Stats returns WAL counters.
	Stats() Stats

	// Close gracefully shuts down the WAL.
	Close() error
}

// RatingWrite is one rating upsert awaiting application.
type RatingWrite struct {
	UserID    int64   `json:"user_id"`
	ComicID   int64   `json:"comic_id"`
	Rating    float64 `json:"rating"`
	RequestID string  `json:"request_id,omitempty"`
}

// Entry is a single WAL record.
type Entry struct {
	ID            string      `json:"id"`
	Write         RatingWrite `json:"write"`
	CreatedAt     time.Time   `json:"created_at"`
	Attempts      int         `json:"attempts"`
	LastAttemptAt time.Time   `json:"last_attempt_at,omitempty"`
	LastError     string      `json:"last_error,omitempty"`
	Confirmed     bool        `json:"confirmed"`
	ConfirmedAt   *time.Time  `json:"confirmed_at,omitempty"`
}

// Stats contains WAL counters for monitoring.
type Stats struct {
	PendingCount   int64     `json:"pending_count"`
	ConfirmedCount int64     `json:"confirmed_count"`
	TotalWrites    int64     `json:"total_writes"`
	TotalConfirms  int64     `json:"total_confirms"`
	TotalRetries   int64     `json:"total_retries"`
	LastCompaction time.Time `json:"last_compaction"`
	DBSizeBytes    int64     `json:"db_size_bytes"`
}

// BadgerWAL implements WAL on BadgerDB.
//
// Pending entries live under "pending:<uuidv7>" so key order is write order.
// The processing map keeps recovery and the retry loop from applying the same
// entry concurrently.
type BadgerWAL struct {
	db     *badger.DB
	config Config

	totalWrites   atomic.Int64
	totalConfirms atomic.Int64
	totalRetries  atomic.Int64

	lastCompaction time.Time
	mu             sync.RWMutex
	closed         bool

	processing sync.Map
}

const (
	prefixPending   = "pending:"
	prefixConfirmed = "confirmed:"
)

var _ WAL = (*BadgerWAL)(nil)

// Open validates cfg and opens (or creates) the BadgerDB at cfg.Path.
func Open(cfg *Config) (*BadgerWAL, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid WAL config: %w", err)
	}
	w, err := open(cfg)
	if err != nil {
		return nil, err
	}

	logging.Info().
		Str("path", cfg.Path).
		Bool("sync_writes", cfg.SyncWrites).
		Msg("WAL opened")
	return w, nil
}

// open skips validation so tests can use sub-second intervals.
func open(cfg *Config) (*BadgerWAL, error) {
	if cfg.NumCompactors < 2 {
		cfg.NumCompactors = 2
	}
	if cfg.GCRatio == 0 {
		cfg.GCRatio = 0.5
	}
	if cfg.CloseTimeout == 0 {
		cfg.CloseTimeout = 30 * time.Second
	}

	opts := badger.DefaultOptions(cfg.Path)
	opts.SyncWrites = cfg.SyncWrites
	if cfg.MemTableSize > 0 {
		opts.MemTableSize = cfg.MemTableSize
	}
	if cfg.ValueLogFileSize > 0 {
		opts.ValueLogFileSize = cfg.ValueLogFileSize
	}
	opts.NumCompactors = cfg.NumCompactors
	opts.Compression = options.Snappy
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open BadgerDB: %w", err)
	}

	return &BadgerWAL{
		db:             db,
		config:         *cfg,
		lastCompaction: time.Now(),
	}, nil
}

func (w *BadgerWAL) checkOpen() error {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		return ErrWALClosed
	}
	return nil
}

// Write persists a rating write. With SyncWrites the entry is fsynced
// before Write returns.
func (w *BadgerWAL) Write(ctx context.Context, write RatingWrite) (string, error) {
	if err := w.checkOpen(); err != nil {
		return "", err
	}
	if write.UserID <= 0 || write.ComicID <= 0 {
		return "", ErrInvalidWrite
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generate entry id: %w", err)
	}
	entry := &Entry{
		ID:        id.String(),
		Write:     write,
		CreatedAt: time.Now().UTC(),
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return "", fmt.Errorf("marshal entry: %w", err)
	}

	err = w.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry([]byte(prefixPending+entry.ID), data)
		if w.config.EntryTTL > 0 {
			e = e.WithTTL(w.config.EntryTTL)
		}
		return txn.SetEntry(e)
	})
	if err != nil {
		return "", fmt.Errorf("write to BadgerDB: %w", err)
	}

	w.totalWrites.Add(1)
	metrics.WALWrites.Inc()
	return entry.ID, nil
}

// Confirm moves an entry from pending to confirmed, together with any older
// pending entry for the same user and comic.
func (w *BadgerWAL) Confirm(ctx context.Context, entryID string) error {
	if err := w.checkOpen(); err != nil {
		return err
	}
	if entryID == "" {
		return ErrEmptyEntryID
	}

	var superseded int
	err := w.db.Update(func(txn *badger.Txn) error {
		pendingKey := []byte(prefixPending + entryID)
		entry, err := getEntry(txn, pendingKey)
		if err != nil {
			return err
		}

		older, err := olderPendingFor(txn, pendingKey, entry.Write)
		if err != nil {
			return err
		}
		if err := confirmEntry(txn, entry); err != nil {
			return err
		}
		for _, e := range older {
			if err := confirmEntry(txn, e); err != nil {
				return err
			}
		}
		superseded = len(older)
		return nil
	})
	if err != nil {
		return err
	}

	if superseded > 0 {
		logging.Debug().
			Str("entry_id", entryID).
			Int("superseded", superseded).
			Msg("WAL confirm superseded older entries")
	}
	w.totalConfirms.Add(1)
	metrics.WALConfirms.Inc()
	return nil
}

func getEntry(txn *badger.Txn, key []byte) (*Entry, error) {
	item, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrEntryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get entry: %w", err)
	}
	var entry Entry
	if err := item.Value(func(val []byte) error {
		return json.Unmarshal(val, &entry)
	}); err != nil {
		return nil, fmt.Errorf("unmarshal entry: %w", err)
	}
	return &entry, nil
}

// olderPendingFor returns pending entries written before key for the same
// user and comic.
func olderPendingFor(txn *badger.Txn, key []byte, write RatingWrite) ([]*Entry, error) {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = []byte(prefixPending)
	it := txn.NewIterator(opts)
	defer it.Close()

	var older []*Entry
	for it.Rewind(); it.Valid(); it.Next() {
		item := it.Item()
		if bytes.Compare(item.Key(), key) >= 0 {
			break
		}
		var e Entry
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &e)
		}); err != nil {
			continue
		}
		if e.Write.UserID == write.UserID && e.Write.ComicID == write.ComicID {
			older = append(older, &e)
		}
	}
	return older, nil
}

func confirmEntry(txn *badger.Txn, entry *Entry) error {
	now := time.Now().UTC()
	entry.Confirmed = true
	entry.ConfirmedAt = &now

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal confirmed entry: %w", err)
	}
	if err := txn.Set([]byte(prefixConfirmed+entry.ID), data); err != nil {
		return fmt.Errorf("set confirmed entry: %w", err)
	}
	if err := txn.Delete([]byte(prefixPending + entry.ID)); err != nil {
		return fmt.Errorf("delete pending entry: %w", err)
	}
	return nil
}

// GetPending returns all unconfirmed entries from a consistent snapshot,
// oldest first.
func (w *BadgerWAL) GetPending(ctx context.Context) ([]*Entry, error) {
	if err := w.checkOpen(); err != nil {
		return nil, err
	}

	var entries []*Entry
	err := w.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefixPending)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			item := it.Item()

			var entry Entry
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &entry)
			}); err != nil {
				logging.Warn().Err(err).Str("key", string(item.Key())).Msg("WAL failed to unmarshal entry")
				continue
			}
			entries = append(entries, &entry)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("iterate pending entries: %w", err)
	}
	return entries, nil
}

// UpdateAttempt records a failed apply of a pending entry.
func (w *BadgerWAL) UpdateAttempt(ctx context.Context, entryID, lastError string) error {
	if err := w.checkOpen(); err != nil {
		return err
	}

	key := []byte(prefixPending + entryID)
	err := w.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrEntryNotFound
		}
		if err != nil {
			return fmt.Errorf("get entry: %w", err)
		}
		expiresAt := item.ExpiresAt()

		var entry Entry
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &entry)
		}); err != nil {
			return fmt.Errorf("unmarshal entry: %w", err)
		}

		entry.Attempts++
		entry.LastAttemptAt = time.Now().UTC()
		entry.LastError = lastError

		data, err := json.Marshal(&entry)
		if err != nil {
			return fmt.Errorf("marshal entry: %w", err)
		}
		e := badger.NewEntry(key, data)
		e.ExpiresAt = expiresAt
		return txn.SetEntry(e)
	})
	if err != nil {
		return err
	}

	w.totalRetries.Add(1)
	return nil
}

// DeleteEntry permanently removes an entry, pending or confirmed.
func (w *BadgerWAL) DeleteEntry(ctx context.Context, entryID string) error {
	if err := w.checkOpen(); err != nil {
		return err
	}

	pendingKey := []byte(prefixPending + entryID)
	confirmedKey := []byte(prefixConfirmed + entryID)

	return w.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(pendingKey); err == nil {
			return txn.Delete(pendingKey)
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("get pending entry: %w", err)
		}
		if _, err := txn.Get(confirmedKey); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrEntryNotFound
			}
			return fmt.Errorf("get confirmed entry: %w", err)
		}
		return txn.Delete(confirmedKey)
	})
}

// Stats returns current WAL statistics and refreshes the pending gauge.
func (w *BadgerWAL) Stats() Stats {
	w.mu.RLock()
	closed := w.closed
	lastCompaction := w.lastCompaction
	w.mu.RUnlock()

	if closed {
		return Stats{}
	}

	var pendingCount, confirmedCount int64
	if err := w.db.View(func(txn *badger.Txn) error {
		pendingCount = countPrefix(txn, prefixPending)
		confirmedCount = countPrefix(txn, prefixConfirmed)
		return nil
	}); err != nil {
		logging.Warn().Err(err).Msg("WAL Stats failed to count entries")
	}

	lsm, vlog := w.db.Size()
	metrics.WALPending.Set(float64(pendingCount))

	return Stats{
		PendingCount:   pendingCount,
		ConfirmedCount: confirmedCount,
		TotalWrites:    w.totalWrites.Load(),
		TotalConfirms:  w.totalConfirms.Load(),
		TotalRetries:   w.totalRetries.Load(),
		LastCompaction: lastCompaction,
		DBSizeBytes:    lsm + vlog,
	}
}

func countPrefix(txn *badger.Txn, prefix string) int64 {
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	opts.Prefix = []byte(prefix)
	it := txn.NewIterator(opts)
	defer it.Close()

	var n int64
	for it.Rewind(); it.Valid(); it.Next() {
		n++
	}
	return n
}

// TryClaimEntry claims exclusive processing of an entry within this process.
// A successful claim must be released with ReleaseEntry.
func (w *BadgerWAL) TryClaimEntry(entryID string) bool {
	_, alreadyClaimed := w.processing.LoadOrStore(entryID, time.Now())
	return !alreadyClaimed
}

// ReleaseEntry releases a claim taken by TryClaimEntry.
func (w *BadgerWAL) ReleaseEntry(entryID string) {
	w.processing.Delete(entryID)
}

// Close shuts down the WAL, giving up after CloseTimeout.
func (w *BadgerWAL) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	timeout := w.config.CloseTimeout
	w.mu.Unlock()

	done := make(chan error, 1)
	go func() {
		done <- w.db.Close()
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("close BadgerDB: %w", err)
		}
		logging.Info().Msg("WAL closed")
		return nil
	case <-time.After(timeout):
		logging.Warn().Dur("timeout", timeout).Msg("BadgerDB close timed out")
		return fmt.Errorf("badgerdb close timeout after %v", timeout)
	}
}

// GetConfig returns the WAL configuration.
func (w *BadgerWAL) GetConfig() Config {
	return w.config
}

// RunGC runs value log garbage collection until nothing is rewritten.
func (w *BadgerWAL) RunGC() error {
	if err := w.checkOpen(); err != nil {
		return err
	}
	for {
		err := w.db.RunValueLogGC(w.config.GCRatio)
		if errors.Is(err, badger.ErrNoRewrite) || errors.Is(err, badger.ErrRejected) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("run GC: %w", err)
		}
	}
}

var (
	// ErrWALClosed is returned by operations on a closed WAL.
	ErrWALClosed = errors.New("WAL is closed")

	// ErrInvalidWrite is returned when a rating write lacks a user or comic.
	ErrInvalidWrite = errors.New("rating write requires user and comic IDs")

	// ErrEmptyEntryID is returned when an empty entry ID is provided.
	ErrEmptyEntryID = errors.New("entry ID cannot be empty")

	// ErrEntryNotFound is returned when an entry doesn't exist.
	ErrEntryNotFound = errors.New("entry not found")

	// ErrPermanent marks an apply failure that retrying cannot fix.
	// Appliers wrap it; such entries are dropped instead of retried.
	ErrPermanent = errors.New("permanent apply failure")
)
