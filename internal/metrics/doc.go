// Comicrec - Comic Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/comicrec

/*
Package metrics provides Prometheus metrics collection and export for observability.

All collectors are registered with the default registry through promauto and
exposed at /metrics in Prometheus text format:

	curl http://localhost:8000/metrics

# Available Metrics

HTTP Metrics:
  - api_requests_total: Total API requests (counter). Labels: method, endpoint, status_code
  - api_request_duration_seconds: Request latency (histogram). Labels: method, endpoint
  - api_active_requests: In-flight requests (gauge)
  - api_rate_limit_hits_total: Rate limit rejections (counter). Labels: endpoint

Database Metrics:
  - duckdb_query_duration_seconds: Query execution time (histogram). Labels: operation, table
  - duckdb_query_errors_total: Query errors (counter). Labels: operation, table, error_type

Recommendation Metrics:
  - recommend_requests_total: Requests by strategy (counter)
  - recommend_duration_seconds: Computation time (histogram)
  - recommend_items_returned: Result sizes (histogram)
  - recommend_catalog_size: Catalog size of the latest request (gauge)

Resilience Metrics:
  - circuit_breaker_state, circuit_breaker_requests_total,
    circuit_breaker_state_transitions_total
  - rating_wal_writes_total, rating_wal_confirms_total,
    rating_wal_retries_total, rating_wal_pending_entries

Catalog Metrics:
  - catalog_events_published_total, catalog_events_consumed_total
  - stats_cache_hits_total, stats_cache_misses_total
*/
package metrics
