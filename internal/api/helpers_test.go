// Comicrec - Comic Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/comicrec

package api

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/comicrec/internal/auth"
	"github.com/tomtom215/comicrec/internal/authz"
	"github.com/tomtom215/comicrec/internal/config"
	"github.com/tomtom215/comicrec/internal/database"
	"github.com/tomtom215/comicrec/internal/models"
	"github.com/tomtom215/comicrec/internal/recommend"
)

// testDBSemaphore limits concurrent DuckDB instances.
var testDBSemaphore = make(chan struct{}, 4)

func setupTestDB(t *testing.T) *database.DB {
	t.Helper()

	testDBSemaphore <- struct{}{}
	t.Cleanup(func() { <-testDBSemaphore })

	db, err := database.New(&config.DatabaseConfig{Path: ":memory:", MaxMemory: "512MB", Threads: 2})
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	})
	return db
}

func insertComic(t *testing.T, db *database.DB, title, genre, description string, characters ...string) int64 {
	t.Helper()
	if characters == nil {
		characters = []string{}
	}
	c := &models.Comic{Title: title, Description: description, Characters: characters, Genre: genre}
	if err := db.CreateComic(context.Background(), c); err != nil {
		t.Fatalf("CreateComic(%q) error = %v", title, err)
	}
	return c.ID
}

func testConfig() *config.Config {
	return &config.Config{
		API: config.APIConfig{
			DefaultPageSize: 100,
			MaxPageSize:     1000,
			StatsCacheTTL:   time.Minute,
		},
		Security: config.SecurityConfig{
			AuthMode:           auth.ModeNone,
			JWTSecret:          "test-secret-key-at-least-32-characters-long",
			SessionTimeout:     time.Hour,
			RateLimitDisabled:  true,
			CORSOrigins:        []string{"*"},
			RecommendPerMinute: 1000,
			RecommendBurst:     100,
			LockoutAttempts:    3,
			LockoutDuration:    time.Minute,
		},
	}
}

// testServer bundles a router over an in-memory database.
type testServer struct {
	t       *testing.T
	db      *database.DB
	handler *Handler
	http    http.Handler
}

func newTestServer(t *testing.T, cfg *config.Config) *testServer {
	t.Helper()
	if cfg == nil {
		cfg = testConfig()
	}

	db := setupTestDB(t)
	ecfg := recommend.DefaultConfig()
	if cfg.Recommend.MaxK > 0 {
		ecfg.Limits.MaxK = cfg.Recommend.MaxK
	}
	engine, err := recommend.NewEngine(ecfg, db, nil, nil, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	jwtManager, err := auth.NewJWTManager(&cfg.Security)
	if err != nil {
		t.Fatalf("NewJWTManager() error = %v", err)
	}

	h := NewHandler(db, engine, cfg, HandlerDeps{JWTManager: jwtManager, Version: "test"}, zerolog.Nop())
	t.Cleanup(h.Close)

	router := NewRouter(h, auth.NewMiddleware(jwtManager, cfg.Security.AuthMode, zerolog.Nop()), cfg)
	if cfg.Security.AuthzEnabled {
		enforcer, err := authz.NewEnforcer(&authz.EnforcerConfig{Editors: cfg.Security.CatalogEditors})
		if err != nil {
			t.Fatalf("NewEnforcer() error = %v", err)
		}
		router.WithAuthorization(enforcer)
	}
	return &testServer{t: t, db: db, handler: h, http: router.SetupChi()}
}

// do sends a request as userID (0 for anonymous, header auth mode) and
// returns the recorder.
func (s *testServer) do(method, path string, body interface{}, userID int64) *httptest.ResponseRecorder {
	s.t.Helper()
	return s.doWithHeaders(method, path, body, func(req *http.Request) {
		if userID > 0 {
			req.Header.Set(auth.UserIDHeader, strconv.FormatInt(userID, 10))
		}
	})
}

func (s *testServer) doWithHeaders(method, path string, body interface{}, setup func(*http.Request)) *httptest.ResponseRecorder {
	s.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			s.t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if setup != nil {
		setup(req)
	}

	rec := httptest.NewRecorder()
	s.http.ServeHTTP(rec, req)
	return rec
}

// envelope is APIResponse with raw data for typed decoding.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *APIError       `json:"error"`
	Meta    *APIMeta        `json:"meta"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder, data interface{}) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v (body %q)", err, rec.Body.String())
	}
	if data != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, data); err != nil {
			t.Fatalf("decode data: %v (data %s)", err, env.Data)
		}
	}
	return env
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, want, rec.Body.String())
	}
}

func expectErrorCode(t *testing.T, rec *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	expectStatus(t, rec, status)
	env := decodeEnvelope(t, rec, nil)
	if env.Success || env.Error == nil {
		t.Fatalf("expected error envelope, got %s", rec.Body.String())
	}
	if env.Error.Code != code {
		t.Errorf("error code = %q, want %q", env.Error.Code, code)
	}
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
