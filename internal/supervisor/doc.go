// Comicrec - Comic Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/comicrec

/*
Package supervisor runs Comicrec's long-lived services under a suture v4 tree.

	comicrec (root)
	├── data-layer
	│   ├── wal-retry-loop   (WAL enabled)
	│   └── wal-compactor    (WAL enabled)
	├── messaging-layer
	│   └── catalog-event-consumer
	└── api-layer
	    └── http-server

Crashed services restart with backoff. Each layer counts failures on its own.
Supervisor events are logged through sutureslog on the slog bridge from
internal/logging.

Usage:

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
	tree.AddMessagingService(consumer)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	errCh := tree.ServeBackground(ctx)
	<-errCh

See the services subpackage for the wrappers.
*/
package supervisor
