// Comicrec - Comic Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/comicrec

package api

import (
	"errors"
	"fmt"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/tomtom215/comicrec/internal/auth"
	"github.com/tomtom215/comicrec/internal/database"
	"github.com/tomtom215/comicrec/internal/logging"
	"github.com/tomtom215/comicrec/internal/models"
)

// dummyHash is compared against when the email is unknown so that login
// timing does not reveal which emails are registered.
var dummyHash = sync.OnceValue(func() string {
	hash, _ := auth.HashPassword("comicrec-timing-equalizer")
	return hash
})

// Register handles user registration.
//
// @Summary Register a user
// @Description Creates an account and returns an access token.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body models.RegisterRequest true "Credentials"
// @Success 201 {object} APIResponse{data=models.TokenResponse}
// @Failure 400 {object} APIResponse
// @Failure 409 {object} APIResponse
// @Router /auth/register [post]
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req models.RegisterRequest
	if !decodeAndValidate(rw, r, &req) {
		return
	}
	if problems := h.passwordPolicy.Check(req.Password, req.Email); len(problems) > 0 {
		rw.ErrorWithDetails(http.StatusBadRequest, ErrCodeValidation, "Password does not meet requirements",
			map[string]interface{}{"password": problems})
		return
	}
	if h.jwtManager == nil {
		rw.ServiceUnavailable("Token issuing is not configured")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		rw.InternalError("Failed to process password")
		return
	}

	user, err := h.store.CreateUser(r.Context(), req.Email, hash)
	if errors.Is(err, database.ErrDuplicate) {
		h.logAuth(r, "register", 0, req.Email, false, "email already registered")
		rw.Conflict("Email already registered")
		return
	}
	if err != nil {
		rw.DatabaseError(err)
		return
	}

	token, err := h.issueToken(user)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Failed to issue token")
		rw.InternalError("Failed to issue token")
		return
	}

	h.logAuth(r, "register", user.ID, user.Email, true, "")
	rw.Created(token)
}

// Login exchanges credentials for an access token.
//
// @Summary Log in
// @Description Validates credentials and returns an access token. Repeated failures lock the email temporarily.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body models.LoginRequest true "Credentials"
// @Success 200 {object} APIResponse{data=models.TokenResponse}
// @Failure 401 {object} APIResponse
// @Failure 429 {object} APIResponse
// @Router /auth/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req models.LoginRequest
	if !decodeAndValidate(rw, r, &req) {
		return
	}
	if h.jwtManager == nil {
		rw.ServiceUnavailable("Token issuing is not configured")
		return
	}

	if locked, remaining := h.lockout.CheckLocked(req.Email); locked {
		h.logAuth(r, "login", 0, req.Email, false, "account locked")
		tooManyAttempts(rw, w, remaining.Seconds())
		return
	}

	user, err := h.store.GetUserByEmail(r.Context(), req.Email)
	switch {
	case errors.Is(err, database.ErrNotFound):
		_ = auth.CheckPassword(dummyHash(), req.Password)
	case err != nil:
		rw.DatabaseError(err)
		return
	default:
		err = auth.CheckPassword(user.PasswordHash, req.Password)
	}

	if err != nil {
		h.logAuth(r, "login", 0, req.Email, false, "invalid credentials")
		if locked, remaining := h.lockout.RecordFailedAttempt(req.Email); locked {
			tooManyAttempts(rw, w, remaining.Seconds())
			return
		}
		rw.Unauthorized("Invalid email or password")
		return
	}

	h.lockout.RecordSuccessfulLogin(req.Email)

	token, err := h.issueToken(user)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Failed to issue token")
		rw.InternalError("Failed to issue token")
		return
	}

	h.logAuth(r, "login", user.ID, user.Email, true, "")
	rw.Success(token)
}

func (h *Handler) issueToken(user *models.User) (*models.TokenResponse, error) {
	token, expiresAt, err := h.jwtManager.GenerateToken(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}
	return &models.TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt,
		User:        user,
	}, nil
}

func tooManyAttempts(rw *ResponseWriter, w http.ResponseWriter, seconds float64) {
	w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(seconds))))
	rw.TooManyRequests("Too many failed login attempts, try again later")
}

func (h *Handler) logAuth(r *http.Request, event string, userID int64, email string, success bool, reason string) {
	ip := r.RemoteAddr
	if host, _, err := net.SplitHostPort(ip); err == nil {
		ip = host
	}
	h.authLogger.Log(&logging.AuthEvent{
		Event:     event,
		UserID:    userID,
		Email:     strings.ToLower(strings.TrimSpace(email)),
		IPAddress: ip,
		UserAgent: r.UserAgent(),
		Success:   success,
		Reason:    reason,
	})
}
