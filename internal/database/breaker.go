// Comicrec - Comic Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/comicrec

package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/comicrec/internal/metrics"
	"github.com/tomtom215/comicrec/internal/recommend"
)

// BreakerSettings configures a BreakerStore.
type BreakerSettings struct {
	// Name labels the breaker in logs and metrics.
	Name string

	// MaxFailures is the number of consecutive failures that opens the breaker.
	MaxFailures uint32

	// OpenTimeout is how long the breaker stays open before letting a trial
	// request through.
	OpenTimeout time.Duration
}

// BreakerStore wraps a recommend.Store with a circuit breaker. While the
// breaker is open, calls fail immediately with gobreaker.ErrOpenState.
// Errors from the wrapped store are returned unchanged.
type BreakerStore struct {
	store  recommend.Store
	cb     *gobreaker.CircuitBreaker[any]
	name   string
	logger zerolog.Logger
}

var _ recommend.Store = (*BreakerStore)(nil)

// NewBreakerStore wraps store.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewBreakerStore(store recommend.Store, s BreakerSettings, logger zerolog.Logger) *BreakerStore {
	if s.Name == "" {
		s.Name = "recommend-store"
	}
	if s.MaxFailures == 0 {
		s.MaxFailures = 5
	}
	if s.OpenTimeout <= 0 {
		s.OpenTimeout = 30 * time.Second
	}

	b := &BreakerStore{
		store:  store,
		name:   s.Name,
		logger: logger.With().Str("component", "circuit_breaker").Str("breaker", s.Name).Logger(),
	}

	metrics.CircuitBreakerState.WithLabelValues(s.Name).Set(0)

	b.cb = gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        s.Name,
		MaxRequests: 1,
		Timeout:     s.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			trip := counts.ConsecutiveFailures >= s.MaxFailures
			if trip {
				b.logger.Warn().Uint32("consecutive_failures", counts.ConsecutiveFailures).Msg("Opening circuit")
			}
			return trip
		},
		// A caller giving up is not a store failure.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			b.logger.Info().Str("from", stateToString(from)).Str("to", stateToString(to)).Msg("Circuit breaker state transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, stateToString(from), stateToString(to)).Inc()
		},
	})
	return b
}

// State returns the current breaker state.
func (b *BreakerStore) State() gobreaker.State {
	return b.cb.State()
}

func (b *BreakerStore) execute(fn func() (any, error)) (any, error) {
	result, err := b.cb.Execute(fn)
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.CircuitBreakerRequests.WithLabelValues(b.name, "rejected").Inc()
	case err != nil:
		metrics.CircuitBreakerRequests.WithLabelValues(b.name, "failure").Inc()
	default:
		metrics.CircuitBreakerRequests.WithLabelValues(b.name, "success").Inc()
	}
	return result, err
}

// castResult type-asserts a breaker result.
func castResult[T any](result any, err error) (T, error) {
	var zero T
	if err != nil {
		return zero, err
	}
	if result == nil {
		return zero, nil
	}
	typed, ok := result.(T)
	if !ok {
		return zero, fmt.Errorf("circuit breaker: unexpected result type %T", result)
	}
	return typed, nil
}

// ListItems implements recommend.Store.
func (b *BreakerStore) ListItems(ctx context.Context) ([]recommend.Item, error) {
	return castResult[[]recommend.Item](b.execute(func() (any, error) {
		return b.store.ListItems(ctx)
	}))
}

// ListUserRatings implements recommend.Store.
func (b *BreakerStore) ListUserRatings(ctx context.Context, userID recommend.UserID) ([]recommend.Rating, error) {
	return castResult[[]recommend.Rating](b.execute(func() (any, error) {
		return b.store.ListUserRatings(ctx, userID)
	}))
}

// ListItemsByMeanRating implements recommend.Store.
func (b *BreakerStore) ListItemsByMeanRating(ctx context.Context, limit int) ([]recommend.Item, error) {
	return castResult[[]recommend.Item](b.execute(func() (any, error) {
		return b.store.ListItemsByMeanRating(ctx, limit)
	}))
}

// ListUnratedItems implements recommend.Store.
func (b *BreakerStore) ListUnratedItems(ctx context.Context, limit int) ([]recommend.Item, error) {
	return castResult[[]recommend.Item](b.execute(func() (any, error) {
		return b.store.ListUnratedItems(ctx, limit)
	}))
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
