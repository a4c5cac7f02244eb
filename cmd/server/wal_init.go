// Comicrec - Comic Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/comicrec

package main

import (
	"context"

	"github.com/tomtom215/comicrec/internal/config"
	"github.com/tomtom215/comicrec/internal/logging"
	"github.com/tomtom215/comicrec/internal/supervisor"
	"github.com/tomtom215/comicrec/internal/supervisor/services"
	"github.com/tomtom215/comicrec/internal/wal"
)

// InitWAL opens the rating write-ahead log and replays entries left over
// from the previous run. Returns nil when the WAL is disabled.
//
// Recovery is best-effort: a failure is logged and startup continues,
// because the retry loop picks up whatever is still pending.
func InitWAL(ctx context.Context, c *config.WALConfig, applier wal.Applier) (*wal.BadgerWAL, error) {
	cfg := wal.FromAppConfig(c)
	if !cfg.Enabled {
		logging.Info().Msg("WAL disabled (WAL_ENABLED=false), ratings are written directly")
		return nil, nil
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logging.Info().Str("path", cfg.Path).Bool("sync_writes", cfg.SyncWrites).Msg("Initializing WAL...")
	w, err := wal.Open(&cfg)
	if err != nil {
		return nil, err
	}

	result, err := w.RecoverPending(ctx, applier)
	switch {
	case err != nil:
		logging.Warn().Err(err).Msg("WAL recovery error")
	case result.TotalPending > 0:
		logging.Info().
			Int("total", result.TotalPending).
			Int("recovered", result.Recovered).
			Int("failed", result.Failed).
			Int("expired", result.Expired).
			Msg("WAL recovery finished")
	}
	return w, nil
}

// superviseWAL adds the retry loop and compactor to the data layer.
func superviseWAL(tree *supervisor.SupervisorTree, w *wal.BadgerWAL, applier wal.Applier) {
	tree.AddDataService(services.NewWALRetryLoopService(wal.NewRetryLoop(w, applier)))
	tree.AddDataService(services.NewWALCompactorService(wal.NewCompactor(w)))
	logging.Info().Msg("WAL retry loop and compactor added to supervisor tree")
}
