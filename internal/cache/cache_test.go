// Comicrec - Comic Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/comicrec

package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func newTestCache(t *testing.T, ttl time.Duration, opts ...Option) *Cache {
	t.Helper()
	c := New(ttl, opts...)
	t.Cleanup(c.Close)
	return c
}

func TestCacheBasicOperations(t *testing.T) {
	t.Parallel()
	c := newTestCache(t, time.Minute)

	c.Set("stats", "value1")
	value, exists := c.Get("stats")
	if !exists || value != "value1" {
		t.Errorf("Get(stats) = %v, %v", value, exists)
	}
	if _, exists := c.Get("missing"); exists {
		t.Error("expected missing key to be absent")
	}
}

func TestCacheExpiration(t *testing.T) {
	t.Parallel()
	c := newTestCache(t, 50*time.Millisecond)

	c.Set("stats", "value1")
	if _, exists := c.Get("stats"); !exists {
		t.Fatal("expected key to exist immediately after Set")
	}

	time.Sleep(80 * time.Millisecond)
	if _, exists := c.Get("stats"); exists {
		t.Error("expected key to be expired")
	}
	if got := c.GetStats().Evictions; got != 1 {
		t.Errorf("Evictions = %d, want 1", got)
	}
}

func TestCacheDeleteAndClear(t *testing.T) {
	t.Parallel()
	c := newTestCache(t, time.Minute)

	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("c", 3)

	c.Delete("a")
	c.Delete("not-there")
	if _, exists := c.Get("a"); exists {
		t.Error("expected a to be deleted")
	}

	c.Clear()
	for _, key := range []string{"b", "c"} {
		if _, exists := c.Get(key); exists {
			t.Errorf("expected %s to be cleared", key)
		}
	}

	stats := c.GetStats()
	if stats.Evictions != 3 {
		t.Errorf("Evictions = %d, want 3", stats.Evictions)
	}
	if stats.TotalKeys != 0 {
		t.Errorf("TotalKeys = %d, want 0", stats.TotalKeys)
	}
}

func TestCacheStatsAndHitRate(t *testing.T) {
	t.Parallel()
	c := newTestCache(t, time.Minute)

	if c.HitRate() != 0 {
		t.Errorf("HitRate() with no traffic = %v", c.HitRate())
	}

	c.Set("k", "v")
	c.Get("k")
	c.Get("k")
	c.Get("k")
	c.Get("other")

	stats := c.GetStats()
	if stats.Hits != 3 || stats.Misses != 1 || stats.TotalKeys != 1 {
		t.Errorf("GetStats() = %+v", stats)
	}
	if got := c.HitRate(); got != 75 {
		t.Errorf("HitRate() = %v, want 75", got)
	}
}

func TestCacheWithCounters(t *testing.T) {
	t.Parallel()

	hits := prometheus.NewCounter(prometheus.CounterOpts{Name: "test_hits_total"})
	misses := prometheus.NewCounter(prometheus.CounterOpts{Name: "test_misses_total"})
	c := newTestCache(t, time.Minute, WithCounters(hits, misses))

	c.Get("stats")
	c.Set("stats", 1)
	c.Get("stats")
	c.Get("stats")

	if got := testutil.ToFloat64(hits); got != 2 {
		t.Errorf("hits = %v, want 2", got)
	}
	if got := testutil.ToFloat64(misses); got != 1 {
		t.Errorf("misses = %v, want 1", got)
	}
}

func TestCacheSetWithTTL(t *testing.T) {
	t.Parallel()
	c := newTestCache(t, time.Hour)

	c.SetWithTTL("short", "v", 30*time.Millisecond)
	c.Set("long", "v")
	time.Sleep(60 * time.Millisecond)

	if _, exists := c.Get("short"); exists {
		t.Error("custom TTL should override the default")
	}
	if _, exists := c.Get("long"); !exists {
		t.Error("default TTL entry should still exist")
	}
}

func TestCacheCleanup(t *testing.T) {
	t.Parallel()
	c := newTestCache(t, time.Hour)

	c.SetWithTTL("expired", 1, time.Nanosecond)
	c.Set("fresh", 2)
	time.Sleep(5 * time.Millisecond)
	c.cleanup()

	stats := c.GetStats()
	if stats.TotalKeys != 1 || stats.Evictions != 1 {
		t.Errorf("GetStats() after cleanup = %+v", stats)
	}
}

func TestCacheConcurrency(t *testing.T) {
	t.Parallel()
	c := newTestCache(t, time.Minute)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				key := fmt.Sprintf("k%d", i%10)
				c.Set(key, g)
				c.Get(key)
				if i%50 == 0 {
					c.Clear()
				}
			}
		}(g)
	}
	wg.Wait()

	stats := c.GetStats()
	if stats.Hits+stats.Misses != 8*200 {
		t.Errorf("hits+misses = %d, want %d", stats.Hits+stats.Misses, 8*200)
	}
}

func TestCacheClose(t *testing.T) {
	t.Parallel()
	c := New(time.Minute)
	c.Close()
	c.Close()

	c.Set("k", "v")
	if _, ok := c.Get("k"); !ok {
		t.Error("cache should remain usable after Close")
	}
}

func TestGenerateKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		a, b      any
		wantEqual bool
	}{
		{name: "same params", a: map[string]int{"limit": 10}, b: map[string]int{"limit": 10}, wantEqual: true},
		{name: "different params", a: map[string]int{"limit": 10}, b: map[string]int{"limit": 20}},
		{name: "nil params", a: nil, b: nil, wantEqual: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ka, kb := GenerateKey("sample", tt.a), GenerateKey("sample", tt.b)
			if (ka == kb) != tt.wantEqual {
				t.Errorf("GenerateKey equality = %v, want %v (%s, %s)", ka == kb, tt.wantEqual, ka, kb)
			}
		})
	}

	// Unmarshalable params fall back to a formatted key.
	if got := GenerateKey("sample", make(chan int)); got == "" {
		t.Error("GenerateKey with a channel returned an empty key")
	}
}
