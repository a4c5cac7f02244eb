// Comicrec - Comic Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/comicrec

// Package database provides DuckDB persistence for Comicrec.
//
// It stores three tables: comics, users and user_ratings. A user has at
// most one rating per comic; UpsertRating replaces an earlier rating.
//
// *DB implements recommend.Store, so the recommendation engine reads the
// catalog and a user's ratings straight from DuckDB. BreakerStore wraps
// any recommend.Store in a sony/gobreaker circuit breaker so a failing
// database fails recommendation requests fast instead of piling up.
//
// # Usage
//
//	db, err := database.New(&cfg.Database)
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if cfg.Database.SeedCatalog {
//	    if _, err := db.SeedCatalog(ctx); err != nil {
//	        return err
//	    }
//	}
//
// # Errors
//
// Lookups that find nothing return ErrNotFound. Inserting a user with an
// email that is already registered returns ErrDuplicate. Other failures are
// wrapped with the operation that failed and can be inspected with
// errors.Is.
//
// # Testing
//
// Tests use in-memory databases (Path ":memory:"). DuckDB CGO calls are
// serialized across tests with a semaphore in setupTestDB.
package database
