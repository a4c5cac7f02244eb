// Comicrec - Comic Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/comicrec

/*
Package cache provides thread-safe in-memory caches.

  - Cache: key/value store with a default TTL, used for catalog statistics.
    Entries are dropped wholesale with Clear when catalog events arrive.
  - LRU: bounded, TTL-aware least recently used map, used for per-user rate
    limiters and event de-duplication.

Usage:

	c := cache.New(time.Minute, cache.WithCounters(metrics.StatsCacheHits, metrics.StatsCacheMisses))
	defer c.Close()

	if v, ok := c.Get("stats"); ok {
	    return v.(*models.CatalogStats), nil
	}
	stats, err := db.GetCatalogStats(ctx)
	if err != nil {
	    return nil, err
	}
	c.Set("stats", stats)
*/
package cache
