// Comicrec - Comic Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/comicrec

package supervisor

import (
	"context"
	"errors"
	"sync/atomic"
)

// errSimulated is returned by a MockService while it has failures left.
var errSimulated = errors.New("simulated failure")

// MockService is a suture.Service for exercising the tree in tests.
// It fails the first N Serve calls, then blocks until canceled.
type MockService struct {
	name     string
	starts   atomic.Int32
	stops    atomic.Int32
	failures atomic.Int32
	running  chan struct{}
}

// NewMockService creates a mock that never fails.
func NewMockService(name string) *MockService {
	return &MockService{name: name, running: make(chan struct{}, 1)}
}

// FailTimes makes the next n Serve calls return an error.
func (m *MockService) FailTimes(n int) *MockService {
	m.failures.Store(int32(n))
	return m
}

// Serve implements suture.Service.
func (m *MockService) Serve(ctx context.Context) error {
	m.starts.Add(1)
	defer m.stops.Add(1)

	if m.failures.Add(-1) >= 0 {
		return errSimulated
	}

	select {
	case m.running <- struct{}{}:
	default:
	}
	<-ctx.Done()
	return ctx.Err()
}

// Running is signaled once Serve reaches its blocking state.
func (m *MockService) Running() <-chan struct{} {
	return m.running
}

// StartCount is the number of Serve calls.
func (m *MockService) StartCount() int32 { return m.starts.Load() }

// StopCount is the number of Serve returns.
func (m *MockService) StopCount() int32 { return m.stops.Load() }

func (m *MockService) String() string { return m.name }
