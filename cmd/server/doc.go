// Comicrec - Comic Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/comicrec

/*
Package main is the Comicrec server.

Comicrec recommends comics by TF-IDF content similarity to the comics a user
liked, and falls back to the best-rated comics for users without one.

# Startup

 1. Configuration: koanf v2 layering of defaults, config.yaml and the
    environment (a .env file is loaded first when present)
 2. Logging: zerolog with the configured level and format
 3. Database: DuckDB, optionally seeded with the embedded sample catalog
 4. Recommendation engine, with a circuit breaker around catalog reads when
    RECOMMEND_BREAKER_ENABLED=true
 5. Catalog event bus (watermill gochannel) when EVENTS_ENABLED=true
 6. Rating WAL (BadgerDB) when WAL_ENABLED=true, replaying pending writes
 7. HTTP API on chi with Swagger UI at /swagger/ and metrics at /metrics
 8. Supervisor tree

The tree:

	comicrec
	├── data-layer        wal-retry-loop, wal-compactor
	├── messaging-layer   catalog-event-consumer
	└── api-layer         http-server

SIGINT or SIGTERM cancels the tree. The HTTP server gets 10s to drain.

# Examples

Development, no authentication, sample data:

	export AUTH_MODE=none
	export SEED_CATALOG=true
	./comicrec

Production:

	export JWT_SECRET=$(openssl rand -base64 32)
	export WAL_ENABLED=true
	export WAL_PATH=/data/wal
	./comicrec
*/
package main
