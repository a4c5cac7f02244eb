// Comicrec - Comic Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/comicrec

// Package wal provides a durable write-ahead log for rating writes, backed
// by BadgerDB.
//
// A rating upsert is persisted to the WAL before it reaches DuckDB and is
// confirmed once DuckDB has accepted it:
//
//	RatingWrite → WAL Write (fsync) → DuckDB upsert → WAL Confirm
//	                                        ↓ (on failure)
//	                                  entry kept for retry
//
// # Components
//
//   - BadgerWAL: entry storage. Pending keys sort in write order (UUIDv7).
//   - RecoverPending: replays pending entries once at startup.
//   - RetryLoop: re-applies pending entries with exponential backoff.
//   - Compactor: removes confirmed and expired entries and runs value log GC.
//
// Confirming an entry also confirms older pending entries for the same user
// and comic, so a stale write is never replayed over a newer rating.
//
// # Usage
//
//	w, err := wal.Open(&cfg)
//	if err != nil {
//	    return err
//	}
//	defer w.Close()
//
//	id, err := w.Write(ctx, wal.RatingWrite{UserID: 1, ComicID: 7, Rating: 4.5})
//	if err != nil {
//	    return err
//	}
//	if err := applier.ApplyRating(ctx, write); err != nil {
//	    return err // entry stays pending; the retry loop picks it up
//	}
//	_ = w.Confirm(ctx, id)
//
// Appliers signal unrecoverable failures (for example an unknown comic) by
// wrapping ErrPermanent; such entries are dropped rather than retried.
package wal
