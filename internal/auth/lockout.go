// Comicrec - Comic Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/comicrec

package auth

import (
	"strings"
	"sync"
	"time"

	"github.com/tomtom215/comicrec/internal/cache"
	"github.com/tomtom215/comicrec/internal/logging"
)

// LockoutConfig holds configuration for the login lockout.
type LockoutConfig struct {
	// MaxAttempts is the number of failed attempts before lockout. Zero disables lockout.
	MaxAttempts int

	// LockoutDuration is the base lockout period.
	LockoutDuration time.Duration

	// MaxLockoutDuration caps the doubled lockout period of repeat offenders.
	MaxLockoutDuration time.Duration

	// MaxTracked bounds the number of emails tracked at once.
	MaxTracked int
}

// DefaultLockoutConfig returns sensible defaults.
func DefaultLockoutConfig() *LockoutConfig {
	return &LockoutConfig{
		MaxAttempts:        5,
		LockoutDuration:    15 * time.Minute,
		MaxLockoutDuration: 24 * time.Hour,
		MaxTracked:         10000,
	}
}

// lockoutEntry tracks failed login attempts for one email.
type lockoutEntry struct {
	failedAttempts int
	lockoutCount   int
	lockedUntil    time.Time
}

// LockoutManager locks an email after repeated failed logins. State is kept
// in memory and is lost on restart.
type LockoutManager struct {
	config  LockoutConfig
	mu      sync.Mutex
	entries *cache.LRU[*lockoutEntry]
	now     func() time.Time
}

// NewLockoutManager creates a lockout manager. A nil config uses DefaultLockoutConfig.
func NewLockoutManager(config *LockoutConfig) *LockoutManager {
	if config == nil {
		config = DefaultLockoutConfig()
	}
	cfg := *config
	if cfg.MaxLockoutDuration < cfg.LockoutDuration {
		cfg.MaxLockoutDuration = cfg.LockoutDuration
	}
	if cfg.MaxTracked <= 0 {
		cfg.MaxTracked = DefaultLockoutConfig().MaxTracked
	}

	return &LockoutManager{
		config: cfg,
		// Entries outlive the longest lockout so repeat offenders keep their count.
		entries: cache.NewLRU[*lockoutEntry](cfg.MaxTracked, 2*cfg.MaxLockoutDuration),
		now:     time.Now,
	}
}

func (m *LockoutManager) enabled() bool {
	return m != nil && m.config.MaxAttempts > 0
}

// CheckLocked reports whether email is locked and for how much longer.
func (m *LockoutManager) CheckLocked(email string) (bool, time.Duration) {
	if !m.enabled() {
		return false, 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries.Get(lockoutKey(email))
	if !ok {
		return false, 0
	}
	if remaining := entry.lockedUntil.Sub(m.now()); remaining > 0 {
		return true, remaining
	}
	return false, 0
}

// RecordFailedAttempt counts a failed login and reports whether the email
// is now locked.
func (m *LockoutManager) RecordFailedAttempt(email string) (bool, time.Duration) {
	if !m.enabled() {
		return false, 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	entry := m.entries.GetOrAdd(lockoutKey(email), func() *lockoutEntry { return &lockoutEntry{} })
	if remaining := entry.lockedUntil.Sub(now); remaining > 0 {
		return true, remaining
	}

	entry.failedAttempts++
	if entry.failedAttempts < m.config.MaxAttempts {
		return false, 0
	}

	duration := m.lockoutDuration(entry.lockoutCount)
	entry.lockedUntil = now.Add(duration)
	entry.lockoutCount++
	entry.failedAttempts = 0

	logging.Warn().
		Str("email", logging.SanitizeEmail(email)).
		Dur("duration", duration).
		Int("lockout_count", entry.lockoutCount).
		Msg("Account locked")

	return true, duration
}

// RecordSuccessfulLogin clears the lockout state for email.
func (m *LockoutManager) RecordSuccessfulLogin(email string) {
	if !m.enabled() {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries.Remove(lockoutKey(email))
}

// lockoutDuration doubles the base duration for each previous lockout.
func (m *LockoutManager) lockoutDuration(previous int) time.Duration {
	duration := m.config.LockoutDuration
	for i := 0; i < previous && duration < m.config.MaxLockoutDuration; i++ {
		duration *= 2
	}
	if duration > m.config.MaxLockoutDuration {
		return m.config.MaxLockoutDuration
	}
	return duration
}

func lockoutKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
