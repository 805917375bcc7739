package http

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VineetPaun/expense-management/internal/adapter/http/handler"
	apimiddleware "github.com/VineetPaun/expense-management/internal/adapter/http/middleware"
	"github.com/VineetPaun/expense-management/internal/adapter/repository/memory"
	redisrepo "github.com/VineetPaun/expense-management/internal/adapter/repository/redis"
	"github.com/VineetPaun/expense-management/internal/infrastructure/auth"
	"github.com/VineetPaun/expense-management/internal/infrastructure/metrics"
	"github.com/VineetPaun/expense-management/internal/usecase"
)

type seqIDs struct{ n atomic.Int64 }

func (g *seqIDs) Generate() string { return fmt.Sprintf("id-%04d", g.n.Add(1)) }

type testServer struct {
	router http.Handler
	token  string
}

func newRouterConfig(t *testing.T, opts ...func(*RouterConfig)) RouterConfig {
	t.Helper()

	store := memory.NewStore()
	accounts := memory.NewAccountRepository(store)
	entries := memory.NewEntryRepository(store)
	txManager := memory.NewTxManager(store)
	locker := usecase.NewAccountLocker()
	ids := &seqIDs{}
	ucOpts := []usecase.Option{
		usecase.WithAudit(memory.NewAuditRepository(store)),
		usecase.WithOutbox(memory.NewOutboxRepository(store)),
	}

	jwt := auth.NewJWTManager("test-secret", time.Hour)
	accountUC := usecase.NewAccountUseCase(txManager, accounts, ids, locker, ucOpts...)
	reconciler := usecase.NewReconciliationUseCase(txManager, accounts, entries,
		memory.NewLedgerRepository(store), ids, locker, ucOpts...)
	entryUC := usecase.NewEntryUseCase(txManager, accounts, entries, ids, locker, reconciler, ucOpts...)
	userUC := usecase.NewUserUseCase(memory.NewUserRepository(store), ids, jwt)

	reg := prometheus.NewRegistry()
	cfg := RouterConfig{
		AccountHandler: handler.NewAccountHandler(accountUC),
		EntryHandler:   handler.NewEntryHandler(entryUC),
		AuthHandler:    handler.NewAuthHandler(userUC),
		LedgerHandler:  handler.NewLedgerHandler(reconciler, accountUC),
		HealthHandler:  handler.NewHealthHandler(),
		Verifier:       jwt,
		Metrics:        metrics.New(reg),
		MetricsHandler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		Logger:         zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

func newTestServer(t *testing.T, opts ...func(*RouterConfig)) *testServer {
	t.Helper()

	s := &testServer{router: NewRouter(newRouterConfig(t, opts...))}

	rec := s.do(t, http.MethodPost, "/api/v1/auth/register", `{"email":"asha@example.com","name":"Asha","password":"Secret123"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodPost, "/api/v1/auth/login", `{"email":"asha@example.com","password":"Secret123"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	s.token = decode(t, rec)["token"].(string)
	return s
}

func (s *testServer) do(t *testing.T, method, target, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()

	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	req.Header.Set("Content-Type", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestNewRouter_HealthEndpointAvailable(t *testing.T) {
	router := NewRouter(newRouterConfig(t))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestNewRouter_RateLimiterBlocksExcessRequests(t *testing.T) {
	router := NewRouter(newRouterConfig(t, func(cfg *RouterConfig) {
		cfg.RateLimiter = apimiddleware.NewRateLimiter(1, 1)
	}))

	req1 := httptest.NewRequest(http.MethodGet, "/health", nil)
	req1.RemoteAddr = "1.2.3.4:1234"
	rec1 := httptest.NewRecorder()
	router.ServeHTTP(rec1, req1)
	assert.Equal(t, http.StatusOK, rec1.Code)

	req2 := httptest.NewRequest(http.MethodGet, "/health", nil)
	req2.RemoteAddr = "1.2.3.4:1234"
	rec2 := httptest.NewRecorder()
	router.ServeHTTP(rec2, req2)
	assert.Equal(t, http.StatusTooManyRequests, rec2.Code)
}

func TestNewRouter_RequiresToken(t *testing.T) {
	router := NewRouter(newRouterConfig(t))

	for _, target := range []string{"/api/v1/accounts", "/api/v1/auth/me", "/api/v1/ledger/consistency"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code, target)
	}
}

func TestNewRouter_RegistersKeyRoutes(t *testing.T) {
	router := NewRouter(newRouterConfig(t))

	chiRoutes, ok := router.(chi.Routes)
	require.True(t, ok, "router does not implement chi.Routes")

	seen := map[string]bool{}
	require.NoError(t, chi.Walk(chiRoutes, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		seen[method+" "+route] = true
		return nil
	}))

	expected := []string{
		"GET /health",
		"GET /ready",
		"GET /metrics",
		"POST /api/v1/auth/register",
		"POST /api/v1/auth/login",
		"GET /api/v1/auth/me",
		"POST /api/v1/accounts/",
		"GET /api/v1/accounts/",
		"GET /api/v1/accounts/{id}",
		"PATCH /api/v1/accounts/{id}",
		"DELETE /api/v1/accounts/{id}",
		"GET /api/v1/accounts/{id}/transactions",
		"POST /api/v1/accounts/{id}/reconcile",
		"POST /api/v1/transactions/",
		"GET /api/v1/transactions/{id}",
		"PUT /api/v1/transactions/{id}",
		"DELETE /api/v1/transactions/{id}",
		"GET /api/v1/ledger/consistency",
		"GET /api/v1/audit-logs",
	}
	for _, route := range expected {
		assert.True(t, seen[route], "expected route %s to be registered", route)
	}
}

func TestNewRouter_LedgerFlow(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/v1/accounts/", `{"bank_name":"HDFC Bank","account_number":"0042","initial_balance":"100"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	accountID := decode(t, rec)["id"].(string)

	rec = s.do(t, http.MethodPost, "/api/v1/transactions/",
		fmt.Sprintf(`{"account_id":%q,"amount":"40","type":"debit","category":"Groceries"}`, accountID))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	entry := decode(t, rec)
	assert.Equal(t, "100.00", entry["opening_balance"])
	assert.Equal(t, "60.00", entry["closing_balance"])
	entryID := entry["id"].(string)

	rec = s.do(t, http.MethodPost, "/api/v1/transactions/",
		fmt.Sprintf(`{"account_id":%q,"amount":100,"type":"debit","category":"Rent"}`, accountID))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "insufficient_funds", decode(t, rec)["error"])

	rec = s.do(t, http.MethodPut, "/api/v1/transactions/"+entryID, `{"amount":"25","type":"credit","category":"Salary"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "125.00", decode(t, rec)["closing_balance"])

	rec = s.do(t, http.MethodGet, "/api/v1/accounts/"+accountID+"/transactions?type=credit&limit=5", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	stmt := decode(t, rec)
	assert.Equal(t, "125.00", stmt["current_balance"])
	assert.Len(t, stmt["transactions"], 1)
	assert.Equal(t, float64(1), stmt["pagination"].(map[string]any)["total_count"])
	assert.Equal(t, "25.00", stmt["summary"].(map[string]any)["total_credit"])

	rec = s.do(t, http.MethodDelete, "/api/v1/transactions/"+entryID, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "100.00", decode(t, rec)["new_balance"])

	rec = s.do(t, http.MethodGet, "/api/v1/ledger/consistency", "")
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodPost, "/api/v1/accounts/"+accountID+"/reconcile", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, true, decode(t, rec)["is_reconciled"])

	rec = s.do(t, http.MethodGet, "/api/v1/audit-logs?resource_id="+accountID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, decode(t, rec)["audit_logs"])

	rec = s.do(t, http.MethodGet, "/api/v1/auth/me", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "asha@example.com", decode(t, rec)["email"])

	rec = s.do(t, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `path="/api/v1/transactions/{id}"`)
}

func TestNewRouter_OtherUsersCannotSeeAccount(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodPost, "/api/v1/accounts/", `{"bank_name":"HDFC Bank"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	accountID := decode(t, rec)["id"].(string)

	other := &testServer{router: s.router}
	rec = other.do(t, http.MethodPost, "/api/v1/auth/register", `{"email":"ravi@example.com","name":"Ravi","password":"Secret123"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = other.do(t, http.MethodPost, "/api/v1/auth/login", `{"email":"ravi@example.com","password":"Secret123"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	other.token = decode(t, rec)["token"].(string)

	rec = other.do(t, http.MethodGet, "/api/v1/accounts/"+accountID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = other.do(t, http.MethodPost, "/api/v1/transactions/",
		fmt.Sprintf(`{"account_id":%q,"amount":"5","type":"credit","category":"Salary"}`, accountID))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestNewRouter_IdempotentReplay(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	s := newTestServer(t, func(cfg *RouterConfig) {
		cfg.IdempotencyStore = redisrepo.NewIdempotencyStore(client)
		cfg.IdempotencyTTL = time.Minute
	})

	rec := s.do(t, http.MethodPost, "/api/v1/accounts/", `{"bank_name":"HDFC Bank","initial_balance":"10"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	accountID := decode(t, rec)["id"].(string)

	body := fmt.Sprintf(`{"account_id":%q,"amount":"5","type":"credit","category":"Salary"}`, accountID)
	first := s.do(t, http.MethodPost, "/api/v1/transactions/", body, apimiddleware.IdempotencyKeyHeader, "pay-1")
	require.Equal(t, http.StatusCreated, first.Code, first.Body.String())

	second := s.do(t, http.MethodPost, "/api/v1/transactions/", body, apimiddleware.IdempotencyKeyHeader, "pay-1")
	require.Equal(t, http.StatusCreated, second.Code)
	assert.Equal(t, "true", second.Header().Get(apimiddleware.IdempotencyReplayHeader))
	assert.JSONEq(t, first.Body.String(), second.Body.String())

	rec = s.do(t, http.MethodGet, "/api/v1/accounts/"+accountID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "15.00", decode(t, rec)["balance"])
}
