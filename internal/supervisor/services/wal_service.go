// Comicrec - Comic Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/comicrec

package services

import (
	"context"
	"fmt"
)

// StartStopper is the lifecycle of wal.RetryLoop and wal.Compactor.
type StartStopper interface {
	Start(ctx context.Context) error
	Stop()
	IsRunning() bool
}

// StartStopService adapts a Start/Stop component to suture's Serve.
// Serve starts the component, blocks until the context ends, then calls
// Stop, which waits for the component's goroutine.
type StartStopService struct {
	component StartStopper
	name      string
}

// NewWALRetryLoopService supervises the rating WAL retry loop.
func NewWALRetryLoopService(retryLoop StartStopper) *StartStopService {
	return &StartStopService{component: retryLoop, name: "wal-retry-loop"}
}

// NewWALCompactorService supervises the rating WAL compactor.
func NewWALCompactorService(compactor StartStopper) *StartStopService {
	return &StartStopService{component: compactor, name: "wal-compactor"}
}

// Serve implements suture.Service. A Start error is returned so suture
// restarts the service with backoff.
func (s *StartStopService) Serve(ctx context.Context) error {
	if err := s.component.Start(ctx); err != nil {
		return fmt.Errorf("%s start failed: %w", s.name, err)
	}

	<-ctx.Done()
	s.component.Stop()
	return ctx.Err()
}

// Running reports whether the wrapped component is running.
func (s *StartStopService) Running() bool {
	return s.component.IsRunning()
}

// String implements fmt.Stringer for suture's logs.
func (s *StartStopService) String() string {
	return s.name
}
