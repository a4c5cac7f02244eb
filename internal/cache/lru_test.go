// Comicrec - Comic Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/comicrec

package cache

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestLRU_BasicOperations(t *testing.T) {
	t.Parallel()
	c := NewLRU[int](10, time.Minute)

	c.Add("a", 1)
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Errorf("Get(a) = %v, %v", v, ok)
	}
	if _, ok := c.Get("b"); ok {
		t.Error("Get(b) should miss")
	}

	c.Add("a", 2)
	if v, _ := c.Get("a"); v != 2 {
		t.Errorf("Get(a) after update = %v, want 2", v)
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
}

func TestLRU_EvictsLeastRecentlyUsed(t *testing.T) {
	t.Parallel()
	c := NewLRU[string](3, time.Minute)

	c.Add("a", "1")
	c.Add("b", "2")
	c.Add("c", "3")
	c.Get("a") // a is now newest
	c.Add("d", "4")

	if _, ok := c.Get("b"); ok {
		t.Error("b should have been evicted")
	}
	for _, key := range []string{"a", "c", "d"} {
		if _, ok := c.Get(key); !ok {
			t.Errorf("%s should still be present", key)
		}
	}
}

func TestLRU_TTLExpiration(t *testing.T) {
	t.Parallel()
	c := NewLRU[int](10, 30*time.Millisecond)

	c.Add("a", 1)
	time.Sleep(60 * time.Millisecond)
	if _, ok := c.Get("a"); ok {
		t.Error("entry should have expired")
	}
}

func TestLRU_GetOrAdd(t *testing.T) {
	t.Parallel()
	c := NewLRU[*int](10, time.Minute)

	var created atomic.Int32
	create := func() *int {
		created.Add(1)
		v := 42
		return &v
	}

	first := c.GetOrAdd("user:1", create)
	second := c.GetOrAdd("user:1", create)
	if first != second {
		t.Error("GetOrAdd should return the stored value")
	}
	if created.Load() != 1 {
		t.Errorf("create called %d times, want 1", created.Load())
	}
}

func TestLRU_IsDuplicate(t *testing.T) {
	t.Parallel()
	c := NewLRU[struct{}](10, time.Minute)

	if c.IsDuplicate("msg-1") {
		t.Error("first sighting should not be a duplicate")
	}
	if !c.IsDuplicate("msg-1") {
		t.Error("second sighting should be a duplicate")
	}
	if c.IsDuplicate("msg-2") {
		t.Error("different key should not be a duplicate")
	}
}

func TestLRU_RemoveClearCleanup(t *testing.T) {
	t.Parallel()
	c := NewLRU[int](10, time.Minute)

	c.Add("a", 1)
	if !c.Remove("a") {
		t.Error("Remove(a) = false")
	}
	if c.Remove("a") {
		t.Error("second Remove(a) = true")
	}

	c.Add("b", 2)
	c.Clear()
	if c.Len() != 0 {
		t.Errorf("Len() after Clear = %d", c.Len())
	}

	short := NewLRU[int](10, 10*time.Millisecond)
	short.Add("x", 1)
	short.Add("y", 2)
	time.Sleep(30 * time.Millisecond)
	short.Add("z", 3)
	if removed := short.CleanupExpired(); removed != 2 {
		t.Errorf("CleanupExpired() = %d, want 2", removed)
	}
	if short.Len() != 1 {
		t.Errorf("Len() = %d, want 1", short.Len())
	}
}

func TestLRU_Stats(t *testing.T) {
	t.Parallel()
	c := NewLRU[int](10, time.Minute)

	c.Add("a", 1)
	c.Get("a")
	c.Get("a")
	c.Get("b")

	hits, misses, size := c.Stats()
	if hits != 2 || misses != 1 || size != 1 {
		t.Errorf("Stats() = %d, %d, %d", hits, misses, size)
	}
}

func TestLRU_Concurrent(t *testing.T) {
	t.Parallel()
	c := NewLRU[int](50, time.Minute)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				key := fmt.Sprintf("k%d", (g*31+i)%100)
				c.Add(key, i)
				c.Get(key)
				c.IsDuplicate(key)
			}
		}(g)
	}
	wg.Wait()

	if c.Len() > 50 {
		t.Errorf("Len() = %d exceeds capacity", c.Len())
	}
}
