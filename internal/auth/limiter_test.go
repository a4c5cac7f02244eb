// Comicrec - Comic Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/comicrec

package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/tomtom215/comicrec/internal/metrics"
)

func TestUserRateLimiter_Allow(t *testing.T) {
	t.Parallel()
	l := NewUserRateLimiter(1, 2, "test-allow")

	if !l.Allow(1) || !l.Allow(1) {
		t.Fatal("burst of 2 should be allowed")
	}
	if l.Allow(1) {
		t.Error("third request within a minute should be rejected")
	}
	if !l.Allow(2) {
		t.Error("users must have independent buckets")
	}
}

func TestUserRateLimiter_Limit(t *testing.T) {
	t.Parallel()
	l := NewUserRateLimiter(1, 1, "test-limit")
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	h := l.Limit(ok)

	do := func(ctx context.Context) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/recommendations", http.NoBody).WithContext(ctx)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	user := WithUserID(context.Background(), 10)
	if rec := do(user); rec.Code != http.StatusOK {
		t.Fatalf("first request status = %d", rec.Code)
	}
	rec := do(user)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second request status = %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("missing Retry-After header")
	}
	if got := testutil.ToFloat64(metrics.APIRateLimitHits.WithLabelValues("test-limit")); got != 1 {
		t.Errorf("rate limit hits = %v, want 1", got)
	}

	// Rejections do not consume tokens, and anonymous requests pass.
	if rec := do(context.Background()); rec.Code != http.StatusOK {
		t.Errorf("anonymous request status = %d", rec.Code)
	}
}

func TestNewUserRateLimiter_ClampsInputs(t *testing.T) {
	t.Parallel()
	l := NewUserRateLimiter(0, 0, "test-clamp")
	if l.burst != 1 {
		t.Errorf("burst = %d, want 1", l.burst)
	}
	if !l.Allow(1) {
		t.Error("first request should be allowed")
	}
}
