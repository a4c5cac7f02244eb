// Comicrec - Comic Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/comicrec

/*
Package config provides centralized configuration management for Comicrec.

# Configuration Sources

Configuration is layered with Koanf v2, later sources overriding earlier ones:
  - Built-in defaults (defaultConfig)
  - A YAML file: CONFIG_PATH, or config.yaml / /etc/comicrec/config.yaml
  - Environment variables. A .env file (or DOTENV_PATH) is loaded into the
    environment first and never overrides variables that are already set.

Only mapped environment variables are read; see envMappings.

# Environment Variables

Database:
  - DUCKDB_PATH: Database file path, or :memory: (default: /data/comicrec.duckdb)
  - DUCKDB_MAX_MEMORY: DuckDB memory limit (default: 1GB)
  - SEED_CATALOG: Load the embedded sample catalog on startup (default: false)

HTTP Server:
  - HTTP_HOST, HTTP_PORT (default: 0.0.0.0:8000), HTTP_TIMEOUT (default: 30s)
  - ENVIRONMENT: development or production

Authentication:
  - AUTH_MODE: jwt (default) or none
  - JWT_SECRET (alias SECRET_KEY): signing secret, at least 32 characters
  - SESSION_TIMEOUT: token lifetime (default: 30m)
  - RATE_LIMIT_REQUESTS, RATE_LIMIT_WINDOW, DISABLE_RATE_LIMIT, CORS_ORIGINS
  - RECOMMEND_PER_MINUTE, RECOMMEND_BURST: per-user recommendation limits
  - AUTHZ_ENABLED (default: false): role checks on authenticated routes
  - CATALOG_EDITORS: comma-separated emails allowed to create comics

Recommendation Engine:
  - RECOMMEND_DEFAULT_K (default: 5), RECOMMEND_MAX_K (default: 100)
  - RECOMMEND_MAX_CATALOG_SIZE, RECOMMEND_REQUEST_TIMEOUT
  - RECOMMEND_BREAKER_ENABLED, RECOMMEND_BREAKER_MAX_FAILURES,
    RECOMMEND_BREAKER_OPEN_TIMEOUT

Rating Write-Ahead Log:
  - WAL_ENABLED (default: false), WAL_PATH, WAL_SYNC_WRITES,
    WAL_RETRY_INTERVAL, WAL_MAX_RETRIES, WAL_COMPACT_INTERVAL, WAL_ENTRY_TTL

Events:
  - EVENTS_ENABLED (default: true), EVENTS_BUFFER

Logging:
  - LOG_LEVEL, LOG_FORMAT, LOG_CALLER

# Validation

Load validates the result and fails fast on out-of-range values, unknown
modes, missing or placeholder secrets, and insecure production settings
(AUTH_MODE=none, wildcard CORS with authentication).
*/
package config
