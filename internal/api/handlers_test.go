// Comicrec - Comic Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/comicrec

package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tomtom215/comicrec/internal/auth"
	"github.com/tomtom215/comicrec/internal/covers"
	"github.com/tomtom215/comicrec/internal/models"
)

const testPassword = "Gotham4ever!Night"

func TestAuth_RegisterLoginAndUseToken(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.Security.AuthMode = auth.ModeJWT
	srv := newTestServer(t, cfg)

	creds := models.RegisterRequest{Email: "Reader@Example.com", Password: testPassword}

	rec := srv.do(http.MethodPost, "/api/v1/auth/register", creds, 0)
	expectStatus(t, rec, http.StatusCreated)
	var registered models.TokenResponse
	decodeEnvelope(t, rec, &registered)
	if registered.AccessToken == "" || registered.TokenType != "Bearer" {
		t.Fatalf("unexpected token response %+v", registered)
	}
	if registered.User == nil || registered.User.Email != "reader@example.com" {
		t.Errorf("user = %+v, want normalized email", registered.User)
	}

	rec = srv.do(http.MethodPost, "/api/v1/auth/register", creds, 0)
	expectErrorCode(t, rec, http.StatusConflict, ErrCodeConflict)

	rec = srv.do(http.MethodPost, "/api/v1/auth/login", models.LoginRequest{Email: "reader@example.com", Password: testPassword}, 0)
	expectStatus(t, rec, http.StatusOK)
	var login models.TokenResponse
	decodeEnvelope(t, rec, &login)

	rec = srv.doWithHeaders(http.MethodGet, "/api/v1/ratings", nil, func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+login.AccessToken)
	})
	expectStatus(t, rec, http.StatusOK)

	rec = srv.doWithHeaders(http.MethodGet, "/api/v1/ratings", nil, func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+login.AccessToken+"x")
	})
	expectErrorCode(t, rec, http.StatusUnauthorized, ErrCodeUnauthorized)

	rec = srv.do(http.MethodGet, "/api/v1/ratings", nil, 0)
	expectErrorCode(t, rec, http.StatusUnauthorized, ErrCodeUnauthorized)
}

func TestAuth_RegisterValidation(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, nil)

	tests := []struct {
		name string
		body interface{}
		code string
	}{
		{"bad email", models.RegisterRequest{Email: "not-an-email", Password: testPassword}, ErrCodeValidation},
		{"short password", models.RegisterRequest{Email: "a@example.com", Password: "x1"}, ErrCodeValidation},
		{"no digit", models.RegisterRequest{Email: "a@example.com", Password: "OnlyLettersHere"}, ErrCodeValidation},
		{"common password", models.RegisterRequest{Email: "a@example.com", Password: "password123"}, ErrCodeValidation},
		{"unknown field", map[string]string{"email": "a@example.com", "password": testPassword, "admin": "yes"}, ErrCodeBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := srv.do(http.MethodPost, "/api/v1/auth/register", tt.body, 0)
			expectErrorCode(t, rec, http.StatusBadRequest, tt.code)
		})
	}
}

func TestAuth_LoginLockout(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, nil)
	rec := srv.do(http.MethodPost, "/api/v1/auth/register", models.RegisterRequest{Email: "lock@example.com", Password: testPassword}, 0)
	expectStatus(t, rec, http.StatusCreated)

	bad := models.LoginRequest{Email: "lock@example.com", Password: "wrong-password-1"}
	for i := 0; i < 2; i++ {
		rec = srv.do(http.MethodPost, "/api/v1/auth/login", bad, 0)
		expectErrorCode(t, rec, http.StatusUnauthorized, ErrCodeUnauthorized)
	}

	rec = srv.do(http.MethodPost, "/api/v1/auth/login", bad, 0)
	expectErrorCode(t, rec, http.StatusTooManyRequests, ErrCodeRateLimited)
	if rec.Header().Get("Retry-After") == "" {
		t.Error("expected Retry-After header")
	}

	// Correct password is refused while locked.
	rec = srv.do(http.MethodPost, "/api/v1/auth/login", models.LoginRequest{Email: "lock@example.com", Password: testPassword}, 0)
	expectErrorCode(t, rec, http.StatusTooManyRequests, ErrCodeRateLimited)
}

func TestAuth_LoginUnknownEmail(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, nil)
	rec := srv.do(http.MethodPost, "/api/v1/auth/login", models.LoginRequest{Email: "nobody@example.com", Password: testPassword}, 0)
	expectErrorCode(t, rec, http.StatusUnauthorized, ErrCodeUnauthorized)
}

func TestAuthz_OnlyEditorsCreateComics(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.Security.AuthMode = auth.ModeJWT
	cfg.Security.AuthzEnabled = true
	cfg.Security.CatalogEditors = []string{"editor@example.com"}
	srv := newTestServer(t, cfg)

	token := func(email string) string {
		rec := srv.do(http.MethodPost, "/api/v1/auth/register", models.RegisterRequest{Email: email, Password: testPassword}, 0)
		expectStatus(t, rec, http.StatusCreated)
		var tok models.TokenResponse
		decodeEnvelope(t, rec, &tok)
		return tok.AccessToken
	}
	bearer := func(tok string) func(*http.Request) {
		return func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+tok) }
	}
	editor, reader := token("editor@example.com"), token("reader@example.com")

	create := models.CreateComicRequest{Title: "Hellboy", Genre: "Horror", Description: "A demon investigates the paranormal"}

	rec := srv.doWithHeaders(http.MethodPost, "/api/v1/comics", create, bearer(reader))
	expectErrorCode(t, rec, http.StatusForbidden, ErrCodeForbidden)

	rec = srv.doWithHeaders(http.MethodPost, "/api/v1/comics", create, bearer(editor))
	expectStatus(t, rec, http.StatusCreated)

	rec = srv.doWithHeaders(http.MethodGet, "/api/v1/recommendations", nil, bearer(reader))
	expectStatus(t, rec, http.StatusOK)

	rec = srv.doWithHeaders(http.MethodPost, "/api/v1/images/refresh-images", nil, bearer(reader))
	expectErrorCode(t, rec, http.StatusForbidden, ErrCodeForbidden)
	rec = srv.doWithHeaders(http.MethodPost, "/api/v1/images/refresh-images", nil, bearer(editor))
	expectStatus(t, rec, http.StatusOK)
}

func TestComics_ListGetCreate(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, nil)
	for _, title := range []string{"Amazing Fantasy", "Detective Comics", "Saga"} {
		insertComic(t, srv.db, title, "Superhero", title+" issue one")
	}

	rec := srv.do(http.MethodGet, "/api/v1/comics?skip=1&limit=1", nil, 0)
	expectStatus(t, rec, http.StatusOK)
	var page []models.Comic
	env := decodeEnvelope(t, rec, &page)
	if len(page) != 1 || page[0].Title != "Detective Comics" {
		t.Fatalf("page = %+v", page)
	}
	if p := env.Meta.Pagination; p == nil || p.Total != 3 || !p.HasMore || p.Skip != 1 || p.Limit != 1 {
		t.Errorf("pagination = %+v", env.Meta.Pagination)
	}

	rec = srv.do(http.MethodGet, "/api/v1/comics?limit=abc", nil, 0)
	expectErrorCode(t, rec, http.StatusBadRequest, ErrCodeBadRequest)
	rec = srv.do(http.MethodGet, "/api/v1/comics?skip=-1", nil, 0)
	expectErrorCode(t, rec, http.StatusBadRequest, ErrCodeValidation)

	rec = srv.do(http.MethodGet, "/api/v1/comics/"+itoa(page[0].ID), nil, 0)
	expectStatus(t, rec, http.StatusOK)
	rec = srv.do(http.MethodGet, "/api/v1/comics/99999", nil, 0)
	expectErrorCode(t, rec, http.StatusNotFound, ErrCodeNotFound)
	rec = srv.do(http.MethodGet, "/api/v1/comics/zero", nil, 0)
	expectErrorCode(t, rec, http.StatusBadRequest, ErrCodeBadRequest)

	create := models.CreateComicRequest{
		Title:       "Ms. Marvel",
		Description: "A teenager in Jersey City gains shape-shifting powers",
		Characters:  []string{"Kamala Khan"},
		Genre:       "Superhero",
	}
	rec = srv.do(http.MethodPost, "/api/v1/comics", create, 0)
	expectErrorCode(t, rec, http.StatusUnauthorized, ErrCodeUnauthorized)

	rec = srv.do(http.MethodPost, "/api/v1/comics", create, 1)
	expectStatus(t, rec, http.StatusCreated)
	var created models.Comic
	decodeEnvelope(t, rec, &created)
	if created.ID == 0 || created.Title != create.Title {
		t.Errorf("created = %+v", created)
	}
	if want := covers.Default().ByTitle(create.Title, nil).URL; created.ImageURL != want {
		t.Errorf("created image = %q, want resolved cover %q", created.ImageURL, want)
	}

	withImage := create
	withImage.Title = "Ms. Marvel Vol. 2"
	withImage.ImageURL = "https://example.com/kamala.jpg"
	rec = srv.do(http.MethodPost, "/api/v1/comics", withImage, 1)
	expectStatus(t, rec, http.StatusCreated)
	decodeEnvelope(t, rec, &created)
	if created.ImageURL != withImage.ImageURL {
		t.Errorf("supplied image replaced: %q", created.ImageURL)
	}

	rec = srv.do(http.MethodPost, "/api/v1/comics", models.CreateComicRequest{Title: " ", Genre: "x", Description: "d"}, 1)
	expectErrorCode(t, rec, http.StatusBadRequest, ErrCodeValidation)
}

func TestImages_Suggestions(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, nil)
	resolver := covers.Default()
	hellblazer := insertComic(t, srv.db, "Hellblazer", "Horror", "A con man fights demons in London", "John Constantine")
	thor := insertComic(t, srv.db, "Thor", "Superhero", "The god of thunder")

	rec := srv.do(http.MethodGet, "/api/v1/images/image-suggestions/"+itoa(hellblazer), nil, 0)
	expectStatus(t, rec, http.StatusOK)
	var got models.ImageSuggestions
	decodeEnvelope(t, rec, &got)
	if got.ComicID != hellblazer || got.ComicTitle != "Hellblazer" {
		t.Errorf("comic = %d %q", got.ComicID, got.ComicTitle)
	}
	s := got.Suggestions
	if s.Current != "" {
		t.Errorf("current = %q, want empty", s.Current)
	}
	if s.ByTitle.Source != string(covers.SourceDefault) {
		t.Errorf("by_title source = %q, want default", s.ByTitle.Source)
	}
	if s.ByGenre != resolver.ByGenre("Horror") {
		t.Errorf("by_genre = %q", s.ByGenre)
	}
	if s.Recommended.Source != string(covers.SourceGenre) || s.Recommended.URL != s.ByGenre {
		t.Errorf("recommended = %+v, want the horror genre image", s.Recommended)
	}

	rec = srv.do(http.MethodGet, "/api/v1/images/image-suggestions/"+itoa(thor), nil, 0)
	expectStatus(t, rec, http.StatusOK)
	decodeEnvelope(t, rec, &got)
	if got.Suggestions.Recommended.Source != string(covers.SourceTitle) {
		t.Errorf("recommended source = %q, want title", got.Suggestions.Recommended.Source)
	}

	rec = srv.do(http.MethodGet, "/api/v1/images/image-suggestions/99999", nil, 0)
	expectErrorCode(t, rec, http.StatusNotFound, ErrCodeNotFound)
	rec = srv.do(http.MethodGet, "/api/v1/images/image-suggestions/abc", nil, 0)
	expectErrorCode(t, rec, http.StatusBadRequest, ErrCodeBadRequest)
}

func TestImages_Refresh(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, nil)
	resolver := covers.Default()
	thor := insertComic(t, srv.db, "Thor", "Superhero", "The god of thunder")
	hellblazer := insertComic(t, srv.db, "Hellblazer", "Horror", "A con man fights demons in London")

	rec := srv.do(http.MethodPost, "/api/v1/images/refresh-images", nil, 0)
	expectErrorCode(t, rec, http.StatusUnauthorized, ErrCodeUnauthorized)

	rec = srv.do(http.MethodPost, "/api/v1/images/refresh-images", nil, 1)
	expectStatus(t, rec, http.StatusOK)
	var res models.ImageRefresh
	decodeEnvelope(t, rec, &res)
	if res.Updated != 2 || len(res.Comics) != 2 {
		t.Fatalf("refresh = %d updated, %d comics, want 2 and 2", res.Updated, len(res.Comics))
	}

	want := map[int64]string{
		thor:       resolver.ByTitle("Thor", nil).URL,
		hellblazer: resolver.ByGenre("Horror"),
	}
	for id, url := range want {
		rec = srv.do(http.MethodGet, "/api/v1/comics/"+itoa(id), nil, 0)
		expectStatus(t, rec, http.StatusOK)
		var c models.Comic
		decodeEnvelope(t, rec, &c)
		if c.ImageURL != url {
			t.Errorf("comic %d image = %q, want %q", id, c.ImageURL, url)
		}
	}
}

func TestRatings_UpsertAndLookup(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, nil)
	comicID := insertComic(t, srv.db, "Watchmen", "Drama", "Who watches the watchmen")

	rec := srv.do(http.MethodPost, "/api/v1/ratings", models.RateComicRequest{ComicID: comicID, Rating: 2}, 7)
	expectStatus(t, rec, http.StatusOK)

	rec = srv.do(http.MethodPost, "/api/v1/ratings", models.RateComicRequest{ComicID: comicID, Rating: 4.5}, 7)
	expectStatus(t, rec, http.StatusOK)

	rec = srv.do(http.MethodGet, "/api/v1/ratings/"+itoa(comicID), nil, 7)
	expectStatus(t, rec, http.StatusOK)
	var got models.Rating
	decodeEnvelope(t, rec, &got)
	if got.Rating != 4.5 {
		t.Errorf("rating = %v, want 4.5 (later write supersedes)", got.Rating)
	}

	rec = srv.do(http.MethodGet, "/api/v1/ratings", nil, 7)
	expectStatus(t, rec, http.StatusOK)
	var list []models.Rating
	decodeEnvelope(t, rec, &list)
	if len(list) != 1 {
		t.Errorf("ratings = %d, want 1", len(list))
	}

	rec = srv.do(http.MethodGet, "/api/v1/ratings/"+itoa(comicID), nil, 8)
	expectErrorCode(t, rec, http.StatusNotFound, ErrCodeNotFound)
}

func TestRatings_Errors(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, nil)
	comicID := insertComic(t, srv.db, "Sandman", "Fantasy", "Dream of the Endless")

	tests := []struct {
		name   string
		body   interface{}
		status int
		code   string
	}{
		{"rating above range", models.RateComicRequest{ComicID: comicID, Rating: 5.5}, http.StatusBadRequest, ErrCodeValidation},
		{"rating below range", models.RateComicRequest{ComicID: comicID, Rating: 0.5}, http.StatusBadRequest, ErrCodeValidation},
		{"missing comic id", map[string]float64{"rating": 3}, http.StatusBadRequest, ErrCodeValidation},
		{"unknown comic", models.RateComicRequest{ComicID: 424242, Rating: 3}, http.StatusNotFound, ErrCodeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := srv.do(http.MethodPost, "/api/v1/ratings", tt.body, 1)
			expectErrorCode(t, rec, tt.status, tt.code)
		})
	}
}

func TestRecommendations_Strategies(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, nil)
	spider := insertComic(t, srv.db, "Spider-Man", "Superhero", "Peter Parker swings through New York fighting crime", "Peter Parker")
	venom := insertComic(t, srv.db, "Venom", "Superhero", "Peter Parker fights the symbiote in New York", "Peter Parker", "Eddie Brock")
	insertComic(t, srv.db, "Bone", "Fantasy", "Three cousins lost in a valley of dragons")

	// No ratings anywhere: popularity fallback over unrated items.
	rec := srv.do(http.MethodGet, "/api/v1/recommendations?limit=2", nil, 1)
	expectStatus(t, rec, http.StatusOK)
	var list models.RecommendationList
	decodeEnvelope(t, rec, &list)
	if list.Strategy != "popularity" || len(list.Recommendations) != 2 {
		t.Fatalf("popularity list = %+v", list)
	}
	for _, r := range list.Recommendations {
		if r.SimilarityScore != 0 || r.Comic == nil {
			t.Errorf("popularity item = %+v", r)
		}
	}

	rec = srv.do(http.MethodPost, "/api/v1/ratings", models.RateComicRequest{ComicID: spider, Rating: 5}, 1)
	expectStatus(t, rec, http.StatusOK)

	rec = srv.do(http.MethodGet, "/api/v1/recommendations", nil, 1)
	expectStatus(t, rec, http.StatusOK)
	list = models.RecommendationList{}
	decodeEnvelope(t, rec, &list)
	if list.Strategy != "similarity" {
		t.Fatalf("strategy = %q, want similarity", list.Strategy)
	}
	if len(list.Recommendations) == 0 || list.Recommendations[0].Comic.ID != venom {
		t.Fatalf("first recommendation = %+v, want Venom", list.Recommendations)
	}
	for _, r := range list.Recommendations {
		if r.Comic.ID == spider {
			t.Error("rated comic was recommended")
		}
		if r.SimilarityScore < 0 || r.SimilarityScore > 1 {
			t.Errorf("score %v out of range", r.SimilarityScore)
		}
	}

	// User 2 only sees the mean-rated comic first.
	rec = srv.do(http.MethodGet, "/api/v1/recommendations?limit=1", nil, 2)
	expectStatus(t, rec, http.StatusOK)
	list = models.RecommendationList{}
	decodeEnvelope(t, rec, &list)
	if list.Strategy != "popularity" || len(list.Recommendations) != 1 || list.Recommendations[0].Comic.ID != spider {
		t.Errorf("popularity for new user = %+v", list)
	}

	rec = srv.do(http.MethodGet, "/api/v1/recommendations?limit=-1", nil, 1)
	expectErrorCode(t, rec, http.StatusBadRequest, ErrCodeBadRequest)
}

func TestRecommendations_Limit(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.Recommend.DefaultK = 2
	cfg.Recommend.MaxK = 3
	srv := newTestServer(t, cfg)
	for _, title := range []string{"Saga", "Bone", "Hellboy", "Sandman", "Watchmen"} {
		insertComic(t, srv.db, title, "Fantasy", title+" opens with a long journey")
	}

	tests := []struct {
		name        string
		query       string
		wantItems   int
		wantLimit   int
		wantClamped bool
		wantStrat   string
	}{
		{name: "default limit", query: "", wantItems: 2, wantLimit: 2, wantStrat: "popularity"},
		{name: "zero returns nothing", query: "?limit=0", wantItems: 0, wantLimit: 0, wantStrat: "none"},
		{name: "within cap", query: "?limit=3", wantItems: 3, wantLimit: 3, wantStrat: "popularity"},
		{name: "above cap is reported", query: "?limit=50", wantItems: 3, wantLimit: 3, wantClamped: true, wantStrat: "popularity"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := srv.do(http.MethodGet, "/api/v1/recommendations"+tt.query, nil, 1)
			expectStatus(t, rec, http.StatusOK)
			var list models.RecommendationList
			decodeEnvelope(t, rec, &list)
			if len(list.Recommendations) != tt.wantItems {
				t.Errorf("len(recommendations) = %d, want %d", len(list.Recommendations), tt.wantItems)
			}
			if list.Limit != tt.wantLimit || list.LimitClamped != tt.wantClamped {
				t.Errorf("limit = %d clamped = %v, want %d %v", list.Limit, list.LimitClamped, tt.wantLimit, tt.wantClamped)
			}
			if list.Strategy != tt.wantStrat {
				t.Errorf("strategy = %q, want %q", list.Strategy, tt.wantStrat)
			}
		})
	}
}

func TestRecommendations_PerUserLimit(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.Security.RecommendPerMinute = 1
	cfg.Security.RecommendBurst = 1
	srv := newTestServer(t, cfg)

	rec := srv.do(http.MethodGet, "/api/v1/recommendations", nil, 3)
	expectStatus(t, rec, http.StatusOK)

	rec = srv.do(http.MethodGet, "/api/v1/recommendations", nil, 3)
	expectErrorCode(t, rec, http.StatusTooManyRequests, ErrCodeRateLimited)

	// Another user has its own budget.
	rec = srv.do(http.MethodGet, "/api/v1/recommendations", nil, 4)
	expectStatus(t, rec, http.StatusOK)
}

func TestStats_CachedUntilCleared(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, nil)
	insertComic(t, srv.db, "Hellboy", "Horror", "Occult investigator")

	var stats models.CatalogStats
	rec := srv.do(http.MethodGet, "/api/v1/stats", nil, 0)
	expectStatus(t, rec, http.StatusOK)
	decodeEnvelope(t, rec, &stats)
	if stats.TotalComics != 1 {
		t.Fatalf("total = %d, want 1", stats.TotalComics)
	}

	insertComic(t, srv.db, "Locke & Key", "Horror", "Keys that open anything")

	rec = srv.do(http.MethodGet, "/api/v1/stats", nil, 0)
	decodeEnvelope(t, rec, &stats)
	if stats.TotalComics != 1 {
		t.Errorf("cached total = %d, want 1", stats.TotalComics)
	}

	srv.handler.Clear()

	rec = srv.do(http.MethodGet, "/api/v1/stats", nil, 0)
	decodeEnvelope(t, rec, &stats)
	if stats.TotalComics != 2 {
		t.Errorf("total after Clear = %d, want 2", stats.TotalComics)
	}
}

func TestStats_Sample(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, nil)
	for _, title := range []string{"A", "B", "C"} {
		insertComic(t, srv.db, title, "Comedy", "desc")
	}

	rec := srv.do(http.MethodGet, "/api/v1/stats/sample?limit=2", nil, 0)
	expectStatus(t, rec, http.StatusOK)
	var sample models.CatalogSample
	decodeEnvelope(t, rec, &sample)
	if len(sample.SampleComics) != 2 || sample.TotalAvailable != 3 {
		t.Errorf("sample = %+v", sample)
	}

	rec = srv.do(http.MethodGet, "/api/v1/stats/sample?limit=0", nil, 0)
	expectErrorCode(t, rec, http.StatusBadRequest, ErrCodeValidation)
}

func TestHealth(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, nil)

	rec := srv.do(http.MethodGet, "/api/v1/health", nil, 0)
	expectStatus(t, rec, http.StatusOK)
	var health models.HealthStatus
	decodeEnvelope(t, rec, &health)
	if health.Status != "healthy" || !health.DatabaseConnected || health.WALEnabled || health.Version != "test" {
		t.Errorf("health = %+v", health)
	}

	expectStatus(t, srv.do(http.MethodGet, "/api/v1/health/live", nil, 0), http.StatusOK)
	expectStatus(t, srv.do(http.MethodGet, "/api/v1/health/ready", nil, 0), http.StatusOK)
}

// downStore fails every ping.
type downStore struct{ Store }

func (downStore) Ping(context.Context) error { return errors.New("database is down") }

func TestHealthReady_DatabaseDown(t *testing.T) {
	t.Parallel()

	h := NewHandler(downStore{}, nil, testConfig(), HandlerDeps{}, zerolog.Nop())
	t.Cleanup(h.Close)

	rec := httptest.NewRecorder()
	h.HealthReady(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health/ready", nil))
	expectErrorCode(t, rec, http.StatusServiceUnavailable, ErrCodeServiceUnavailable)

	rec = httptest.NewRecorder()
	h.Health(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	expectStatus(t, rec, http.StatusOK)
	var health models.HealthStatus
	decodeEnvelope(t, rec, &health)
	if health.Status != "degraded" || health.DatabaseConnected {
		t.Errorf("health = %+v, want degraded", health)
	}
}

func TestRouter_NotFoundAndMetrics(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, nil)

	expectErrorCode(t, srv.do(http.MethodGet, "/api/v1/nope", nil, 0), http.StatusNotFound, ErrCodeNotFound)

	rec := srv.do(http.MethodGet, "/metrics", nil, 0)
	expectStatus(t, rec, http.StatusOK)

	rec = srv.do(http.MethodGet, "/api/v1/health/live", nil, 0)
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("expected X-Request-ID header")
	}
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("expected security headers on API routes")
	}
}
