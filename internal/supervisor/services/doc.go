// Comicrec - Comic Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/comicrec

/*
Package services adapts Comicrec components to suture.Service.

  - HTTPServerService runs an *http.Server and drains it on shutdown.
  - StartStopService runs a Start/Stop component; NewWALRetryLoopService
    and NewWALCompactorService wrap the rating WAL's background loops.

The catalog event consumer (events.Consumer) already implements Serve and
is added to the tree directly.

Example:

	server := &http.Server{Addr: ":8080", Handler: router}
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
	tree.AddDataService(services.NewWALRetryLoopService(wal.NewRetryLoop(w, ratings)))
*/
package services
