// Comicrec - Comic Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/comicrec

package auth

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/tomtom215/comicrec/internal/logging"
)

// Authentication modes.
const (
	ModeJWT  = "jwt"
	ModeNone = "none"
)

// UserIDHeader carries the caller's user id in ModeNone.
const UserIDHeader = "X-User-ID"

type contextKey string

// ClaimsContextKey holds the validated *Claims in ModeJWT.
const ClaimsContextKey contextKey = "claims"

// Middleware authenticates requests and stores the user id in the context.
type Middleware struct {
	jwtManager *JWTManager
	authMode   string
	audit      *logging.AuthLogger
}

// NewMiddleware creates the authentication middleware. jwtManager may be
// nil only in ModeNone.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewMiddleware(jwtManager *JWTManager, authMode string, logger zerolog.Logger) *Middleware {
	if authMode == "" {
		authMode = ModeJWT
	}
	return &Middleware{
		jwtManager: jwtManager,
		authMode:   authMode,
		audit:      logging.NewAuthLogger(logger),
	}
}

// Mode returns the configured authentication mode.
func (m *Middleware) Mode() string {
	return m.authMode
}

// Authenticate rejects unauthenticated requests with 401.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.authMode == ModeNone {
			m.handleHeaderAuth(w, r, next)
			return
		}
		m.handleJWTAuth(w, r, next)
	})
}

// handleHeaderAuth trusts X-User-ID. Development only.
func (m *Middleware) handleHeaderAuth(w http.ResponseWriter, r *http.Request, next http.Handler) {
	userID, err := strconv.ParseInt(strings.TrimSpace(r.Header.Get(UserIDHeader)), 10, 64)
	if err != nil || userID <= 0 {
		writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized: X-User-ID header with a positive user id is required")
		return
	}
	next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
}

func (m *Middleware) handleJWTAuth(w http.ResponseWriter, r *http.Request, next http.Handler) {
	token := extractBearerToken(r.Header.Get("Authorization"))
	if token == "" {
		writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized: bearer token required")
		return
	}
	if m.jwtManager == nil {
		writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized: token authentication is not configured")
		return
	}

	claims, err := m.jwtManager.ValidateToken(token)
	if err != nil {
		m.audit.Log(&logging.AuthEvent{
			Event:     "token_rejected",
			IPAddress: clientIP(r),
			UserAgent: r.UserAgent(),
			Reason:    err.Error(),
		})
		writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized: invalid or expired token")
		return
	}

	ctx := context.WithValue(r.Context(), ClaimsContextKey, claims)
	next.ServeHTTP(w, r.WithContext(WithUserID(ctx, claims.UserID)))
}

// extractBearerToken returns the token of an "Authorization: Bearer" header value.
func extractBearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// WithUserID stores the authenticated user id in ctx.
func WithUserID(ctx context.Context, userID int64) context.Context {
	return logging.ContextWithUserID(ctx, userID)
}

// UserIDFromContext returns the authenticated user id.
func UserIDFromContext(ctx context.Context) (int64, bool) {
	return logging.UserIDFromContext(ctx)
}

// GetClaims returns the validated token claims, or nil outside ModeJWT.
func GetClaims(ctx context.Context) *Claims {
	claims, _ := ctx.Value(ClaimsContextKey).(*Claims)
	return claims
}

// clientIP returns the remote address; chi's RealIP middleware has
// already applied X-Forwarded-For when it is enabled.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// errorBody mirrors the API error envelope.
type errorBody struct {
	Success bool `json:"success"`
	Error   struct {
		Code      string `json:"code"`
		Message   string `json:"message"`
		RequestID string `json:"request_id,omitempty"`
	} `json:"error"`
	Meta struct {
		RequestID string    `json:"request_id,omitempty"`
		Timestamp time.Time `json:"timestamp"`
	} `json:"meta"`
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	var body errorBody
	requestID := logging.RequestIDFromContext(r.Context())
	body.Error.Code = code
	body.Error.Message = message
	body.Error.RequestID = requestID
	body.Meta.RequestID = requestID
	body.Meta.Timestamp = time.Now()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Failed to encode auth error")
	}
}
