package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mybglist/mybglist-server/internal/auth"
	"github.com/mybglist/mybglist-server/internal/cache"
	"github.com/mybglist/mybglist-server/internal/domain"
	"github.com/mybglist/mybglist-server/internal/ingest"
	"github.com/mybglist/mybglist-server/internal/query"
	"github.com/mybglist/mybglist-server/internal/ratelimit"
	"github.com/mybglist/mybglist-server/internal/service"
	"github.com/mybglist/mybglist-server/internal/store/sqlite"
	"github.com/mybglist/mybglist-server/internal/validation"
)

var testNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

const datasetHeader = "ID;Name;Year Published;Min Players;Max Players;Play Time;Min Age;Users Rated;Rating Average;BGG Rank;Complexity Average;Owned Users;Domains;Mechanics\n"

// spyStore counts list calls that reach storage.
type spyStore struct {
	*sqlite.Store
	lists int
}

func (s *spyStore) ListBoardGames(ctx context.Context, plan query.Plan) ([]domain.BoardGame, int, error) {
	s.lists++
	return s.Store.ListBoardGames(ctx, plan)
}

type testServer struct {
	*Server
	api    humatest.TestAPI
	store  *spyStore
	tokens *auth.TokenService
}

type serverOption func(*testSetup)

type testSetup struct {
	limiter *ratelimit.KeyedRateLimiter
	open    func(string) (ingest.Source, error)
}

func withLimiter(l *ratelimit.KeyedRateLimiter) serverOption {
	return func(s *testSetup) { s.limiter = l }
}

func withDataset(open func(string) (ingest.Source, error)) serverOption {
	return func(s *testSetup) { s.open = open }
}

func csvDataset(data string) func(string) (ingest.Source, error) {
	return func(string) (ingest.Source, error) {
		return ingest.NewCSVSource(strings.NewReader(datasetHeader + data))
	}
}

func setupTestServer(t *testing.T, opts ...serverOption) *testServer {
	t.Helper()

	setup := testSetup{open: csvDataset("")}
	for _, opt := range opts {
		opt(&setup)
	}

	logger := slog.New(slog.DiscardHandler)

	st, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	c, err := cache.Open("", time.Minute, logger)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })

	tokens, err := auth.NewTokenService([]byte(strings.Repeat("k", 32)), 15*time.Minute)
	require.NoError(t, err)

	spy := &spyStore{Store: st}
	services := &Services{
		Catalog: service.NewCatalogService(spy, c, logger),
		Seed:    service.NewSeedService(st, c, "dataset.csv", ingest.LinkAlways, logger, service.WithSourceOpener(setup.open)),
		Account: service.NewAccountService(st,
			auth.NewPasswordHasher(auth.Argon2Params{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}),
			tokens, validation.New(), logger),
	}

	s := NewServer(st, c, services, tokens, Options{CORSOrigins: []string{"*"}, AuthLimiter: setup.limiter}, logger)

	return &testServer{
		Server: s,
		api:    humatest.Wrap(t, s.API()),
		store:  spy,
		tokens: tokens,
	}
}

// seedGames commits games 1..n directly.
func (ts *testServer) seedGames(t *testing.T, games ...domain.BoardGame) {
	t.Helper()
	b := &ingest.Batch{Now: testNow}
	for _, g := range games {
		g.InitTimestamps(testNow)
		b.BoardGames = append(b.BoardGames, g)
	}
	for _, name := range []string{"Strategy Games", "Family Games"} {
		d := domain.Domain{Name: name}
		d.InitTimestamps(testNow)
		b.Domains = append(b.Domains, d)
	}
	require.NoError(t, ts.store.CommitBatch(context.Background(), b))
}

// bearer returns an Authorization header for a user holding roles.
func (ts *testServer) bearer(t *testing.T, roles ...domain.Role) string {
	t.Helper()
	token, _, err := ts.tokens.GenerateAccessToken(&domain.User{ID: "user-test", Email: "test@example.com", Roles: roles})
	require.NoError(t, err)
	return "Authorization: Bearer " + token
}

type apiError struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details"`
	TraceID string            `json:"traceId"`
}

func decode[T any](t *testing.T, body io.Reader) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(body).Decode(&v))
	return v
}

func TestHealth(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/health")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	health := decode[HealthResponse](t, resp.Body)
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, "healthy", health.Components["database"].Status)
	assert.Equal(t, "healthy", health.Components["cache"].Status)
}

func TestHealth_WithoutCacheIsDegraded(t *testing.T) {
	ts := setupTestServer(t)
	ts.cache = nil

	resp := ts.api.Get("/health")
	require.Equal(t, http.StatusOK, resp.Code)

	health := decode[HealthResponse](t, resp.Body)
	assert.Equal(t, "degraded", health.Status)
	assert.Equal(t, "healthy", health.Components["database"].Status)
}

func TestErrors_CarryTraceID(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/boardgames?pageSize=0")
	require.Equal(t, http.StatusBadRequest, resp.Code)

	body := decode[apiError](t, resp.Body)
	assert.NotEmpty(t, body.TraceID)
	assert.Equal(t, body.TraceID, resp.Header().Get("X-Request-Id"))
}

func TestRegisterAndLogin(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/account/register", map[string]any{
		"email":    "meeple@example.com",
		"password": "correct horse",
	})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	resp = ts.api.Post("/account/register", map[string]any{
		"email":    "meeple@example.com",
		"password": "another one",
	})
	require.Equal(t, http.StatusConflict, resp.Code)

	resp = ts.api.Post("/account/login", map[string]any{
		"email":    "meeple@example.com",
		"password": "wrong password",
	})
	require.Equal(t, http.StatusUnauthorized, resp.Code)
	assert.Equal(t, "INVALID_CREDENTIALS", decode[apiError](t, resp.Body).Code)

	resp = ts.api.Post("/account/login", map[string]any{
		"email":    "meeple@example.com",
		"password": "correct horse",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	login := decode[service.LoginResponse](t, resp.Body)
	require.NotEmpty(t, login.Token)

	// A fresh account holds no roles.
	resp = ts.api.Post("/api/v1/boardgames", "Authorization: Bearer "+login.Token, map[string]any{"Id": 1})
	assert.Equal(t, http.StatusForbidden, resp.Code)
}

func TestRegister_ValidationIs400(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/account/register", map[string]any{
		"email":    "not-an-email",
		"password": "short",
	})
	require.Equal(t, http.StatusBadRequest, resp.Code)

	body := decode[apiError](t, resp.Body)
	assert.Equal(t, "VALIDATION", body.Code)
	assert.Contains(t, body.Details, "email")
	assert.Contains(t, body.Details, "password")
}

func TestAccount_RateLimited(t *testing.T) {
	limiter := ratelimit.PerMinute(1, 1)
	t.Cleanup(limiter.Stop)
	ts := setupTestServer(t, withLimiter(limiter))

	login := map[string]any{"email": "nobody@example.com", "password": "whatever"}

	resp := ts.api.Post("/account/login", login)
	require.Equal(t, http.StatusUnauthorized, resp.Code)

	resp = ts.api.Post("/account/login", login)
	require.Equal(t, http.StatusTooManyRequests, resp.Code)
	assert.Equal(t, "RATE_LIMITED", decode[apiError](t, resp.Body).Code)

	// Catalog reads are not limited.
	resp = ts.api.Get("/api/v1/boardgames")
	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestClientIP(t *testing.T) {
	headers := map[string]string{}
	header := func(k string) string { return headers[k] }

	assert.Equal(t, "10.0.0.1", clientIP(header, "10.0.0.1:5555"))

	headers["X-Real-IP"] = "192.0.2.7"
	assert.Equal(t, "192.0.2.7", clientIP(header, "10.0.0.1:5555"))

	headers["X-Forwarded-For"] = "203.0.113.9, 10.0.0.2"
	assert.Equal(t, "203.0.113.9", clientIP(header, "10.0.0.1:5555"))
}
