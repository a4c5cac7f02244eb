// Comicrec - Comic Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/comicrec

package authz

import (
	"net/http"

	"github.com/tomtom215/comicrec/internal/auth"
	"github.com/tomtom215/comicrec/internal/logging"
	"github.com/tomtom215/comicrec/internal/metrics"
)

// DenyFunc writes the response for a refused request. status is 403 when the
// caller lacks a role and 500 when the decision itself failed.
type DenyFunc func(w http.ResponseWriter, r *http.Request, status int)

// Middleware enforces the policy on authenticated routes. It must run after
// auth.Middleware.Authenticate.
type Middleware struct {
	enforcer *Enforcer
	deny     DenyFunc
}

// NewMiddleware creates the middleware. A nil enforcer allows everything.
func NewMiddleware(enforcer *Enforcer, deny DenyFunc) *Middleware {
	if deny == nil {
		deny = func(w http.ResponseWriter, _ *http.Request, status int) {
			http.Error(w, http.StatusText(status), status)
		}
	}
	return &Middleware{enforcer: enforcer, deny: deny}
}

// Authorize checks the caller's roles against the request path and the
// action implied by its method.
func (m *Middleware) Authorize(next http.Handler) http.Handler {
	if m == nil || m.enforcer == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := auth.GetClaims(r.Context())
		if claims == nil {
			m.deny(w, r, http.StatusForbidden)
			return
		}

		action := methodToAction(r.Method)
		allowed, err := m.enforcer.Enforce(m.enforcer.RolesFor(claims), r.URL.Path, action)
		if err != nil {
			logging.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("Authorization error")
			metrics.AuthzDecisions.WithLabelValues(action, "error").Inc()
			m.deny(w, r, http.StatusInternalServerError)
			return
		}
		if !allowed {
			logging.Ctx(r.Context()).Info().
				Int64("user_id", claims.UserID).
				Str("path", r.URL.Path).
				Str("action", action).
				Msg("Request denied by policy")
			metrics.AuthzDecisions.WithLabelValues(action, "deny").Inc()
			m.deny(w, r, http.StatusForbidden)
			return
		}

		metrics.AuthzDecisions.WithLabelValues(action, "allow").Inc()
		next.ServeHTTP(w, r)
	})
}

func methodToAction(method string) string {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return ActionWrite
	default:
		return ActionRead
	}
}
