// Comicrec - Comic Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/comicrec

package auth

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/tomtom215/comicrec/internal/cache"
	"github.com/tomtom215/comicrec/internal/metrics"
	"golang.org/x/time/rate"
)

// UserRateLimiter is a per-user token bucket. Idle users are evicted after
// an hour or when more than maxUsers are tracked.
type UserRateLimiter struct {
	limiters *cache.LRU[*rate.Limiter]
	rate     rate.Limit
	burst    int
	endpoint string
}

const maxLimitedUsers = 50000

// NewUserRateLimiter allows perMinute requests per user per minute with the
// given burst. endpoint labels the rejection metric.
func NewUserRateLimiter(perMinute, burst int, endpoint string) *UserRateLimiter {
	if perMinute < 1 {
		perMinute = 1
	}
	if burst < 1 {
		burst = 1
	}
	return &UserRateLimiter{
		limiters: cache.NewLRU[*rate.Limiter](maxLimitedUsers, time.Hour),
		rate:     rate.Every(time.Minute / time.Duration(perMinute)),
		burst:    burst,
		endpoint: endpoint,
	}
}

// Allow reports whether the user may make a request now.
func (l *UserRateLimiter) Allow(userID int64) bool {
	return l.limiter(userID).Allow()
}

func (l *UserRateLimiter) limiter(userID int64) *rate.Limiter {
	return l.limiters.GetOrAdd(strconv.FormatInt(userID, 10), func() *rate.Limiter {
		return rate.NewLimiter(l.rate, l.burst)
	})
}

// Limit rejects requests over the user's budget with 429 and a Retry-After
// header. It must run after Authenticate; requests without a user pass.
func (l *UserRateLimiter) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := UserIDFromContext(r.Context())
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		res := l.limiter(userID).Reserve()
		if delay := res.Delay(); delay > 0 {
			res.Cancel()
			metrics.APIRateLimitHits.WithLabelValues(l.endpoint).Inc()
			w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(delay.Seconds()))))
			writeError(w, r, http.StatusTooManyRequests, "RATE_LIMITED", "Too many recommendation requests, slow down")
			return
		}
		next.ServeHTTP(w, r)
	})
}
