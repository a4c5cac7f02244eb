// Comicrec - Comic Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/comicrec

package logging

import (
	"strings"

	"github.com/rs/zerolog"
)

// AuthEvent is an authentication event written to the audit log.
type AuthEvent struct {
	Event     string // register, login, token_rejected
	UserID    int64
	Email     string
	IPAddress string
	UserAgent string
	Success   bool
	Reason    string
}

// AuthLogger writes authentication events with emails and free text masked.
type AuthLogger struct {
	logger zerolog.Logger
}

// NewAuthLogger creates an AuthLogger on top of logger.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewAuthLogger(logger zerolog.Logger) *AuthLogger {
	return &AuthLogger{logger: logger.With().Str("component", "auth").Logger()}
}

// Log writes ev. Failures are logged at warn level.
func (l *AuthLogger) Log(ev *AuthEvent) {
	e := l.logger.Info()
	status := "success"
	if !ev.Success {
		e = l.logger.Warn()
		status = "failed"
	}
	e = e.Str("event", ev.Event).Str("status", status)

	if ev.UserID != 0 {
		e = e.Int64("user_id", ev.UserID)
	}
	if ev.Email != "" {
		e = e.Str("email", SanitizeEmail(ev.Email))
	}
	if ev.IPAddress != "" {
		e = e.Str("ip", ev.IPAddress)
	}
	if ev.UserAgent != "" {
		e = e.Str("user_agent", truncate(ev.UserAgent, 100))
	}
	if ev.Reason != "" {
		e = e.Str("reason", SanitizeError(ev.Reason))
	}
	e.Msg("auth event")
}

// SanitizeToken masks a token, keeping the first and last four characters.
func SanitizeToken(token string) string {
	if token == "" {
		return ""
	}
	if len(token) <= 12 {
		return "***"
	}
	return token[:4] + "..." + token[len(token)-4:]
}

// SanitizeEmail keeps the first two characters of the local part.
//
//	"reader@example.com" -> "re***@example.com"
func SanitizeEmail(email string) string {
	if email == "" {
		return ""
	}
	at := strings.Index(email, "@")
	if at <= 0 {
		return "***"
	}
	local, domain := email[:at], email[at:]
	if len(local) <= 2 {
		return "***" + domain
	}
	return local[:2] + "***" + domain
}

// SanitizeError replaces messages that mention credentials with a generic
// text and truncates the rest.
func SanitizeError(msg string) string {
	lower := strings.ToLower(msg)
	for _, p := range []string{"password", "secret", "token", "bearer", "authorization"} {
		if strings.Contains(lower, p) {
			return "authentication error"
		}
	}
	return truncate(msg, 200)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
