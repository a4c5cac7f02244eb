// Comicrec - Comic Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/comicrec

package auth

import (
	"testing"
	"time"
)

// fakeClock is a manually advanced time source.
type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestLockout(maxAttempts int) (*LockoutManager, *fakeClock) {
	m := NewLockoutManager(&LockoutConfig{
		MaxAttempts:        maxAttempts,
		LockoutDuration:    time.Minute,
		MaxLockoutDuration: 3 * time.Minute,
	})
	clock := &fakeClock{t: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	m.now = clock.now
	return m, clock
}

func TestLockoutManager_RecordFailedAttempt(t *testing.T) {
	t.Parallel()
	m, _ := newTestLockout(3)

	for i := 1; i < 3; i++ {
		if locked, _ := m.RecordFailedAttempt("reader@example.com"); locked {
			t.Fatalf("attempt %d locked the account early", i)
		}
	}
	locked, remaining := m.RecordFailedAttempt("reader@example.com")
	if !locked || remaining != time.Minute {
		t.Fatalf("third attempt = (%v, %v), want (true, 1m)", locked, remaining)
	}

	// Case and surrounding space do not create a separate subject.
	if locked, _ := m.CheckLocked("  Reader@Example.com "); !locked {
		t.Error("CheckLocked should normalize the email")
	}
	if locked, _ := m.CheckLocked("other@example.com"); locked {
		t.Error("other emails must not be locked")
	}
}

func TestLockoutManager_Expires(t *testing.T) {
	t.Parallel()
	m, clock := newTestLockout(1)

	m.RecordFailedAttempt("a@example.com")
	clock.advance(30 * time.Second)
	if locked, remaining := m.CheckLocked("a@example.com"); !locked || remaining != 30*time.Second {
		t.Errorf("CheckLocked = (%v, %v), want (true, 30s)", locked, remaining)
	}
	clock.advance(31 * time.Second)
	if locked, _ := m.CheckLocked("a@example.com"); locked {
		t.Error("lockout should have expired")
	}
}

func TestLockoutManager_ExponentialBackoff(t *testing.T) {
	t.Parallel()
	m, clock := newTestLockout(1)

	want := []time.Duration{time.Minute, 2 * time.Minute, 3 * time.Minute, 3 * time.Minute}
	for i, w := range want {
		locked, got := m.RecordFailedAttempt("a@example.com")
		if !locked || got != w {
			t.Fatalf("lockout %d = (%v, %v), want (true, %v)", i, locked, got, w)
		}
		clock.advance(got)
	}
}

func TestLockoutManager_AttemptWhileLocked(t *testing.T) {
	t.Parallel()
	m, clock := newTestLockout(2)
	m.RecordFailedAttempt("a@example.com")
	m.RecordFailedAttempt("a@example.com")

	clock.advance(10 * time.Second)
	locked, remaining := m.RecordFailedAttempt("a@example.com")
	if !locked || remaining != 50*time.Second {
		t.Errorf("attempt while locked = (%v, %v), want (true, 50s)", locked, remaining)
	}
}

func TestLockoutManager_RecordSuccessfulLogin(t *testing.T) {
	t.Parallel()
	m, _ := newTestLockout(2)

	m.RecordFailedAttempt("a@example.com")
	m.RecordSuccessfulLogin("a@example.com")
	if locked, _ := m.RecordFailedAttempt("a@example.com"); locked {
		t.Error("success should reset the failed attempt count")
	}
}

func TestLockoutManager_Disabled(t *testing.T) {
	t.Parallel()
	m, _ := newTestLockout(0)
	for i := 0; i < 10; i++ {
		if locked, _ := m.RecordFailedAttempt("a@example.com"); locked {
			t.Fatal("disabled manager must never lock")
		}
	}

	var nilManager *LockoutManager
	if locked, _ := nilManager.CheckLocked("a@example.com"); locked {
		t.Error("nil manager must never lock")
	}
	nilManager.RecordSuccessfulLogin("a@example.com")
}
