package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mmynk/splitledger/internal/auth"
	"github.com/mmynk/splitledger/internal/cache"
	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/metrics"
	"github.com/mmynk/splitledger/internal/middleware"
	"github.com/mmynk/splitledger/internal/storage/sqlite"
	"github.com/mmynk/splitledger/pkg/api"
	"github.com/mmynk/splitledger/pkg/api/apiconnect"
)

const testSecret = "service-test-secret-0123456789abcdef"

// memoryCache is an in-process BalanceCache that counts what it serves.
type memoryCache struct {
	mu      sync.Mutex
	entries map[string]*calculator.GroupBalances
	hits    int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string]*calculator.GroupBalances)}
}

func (c *memoryCache) GetGroupBalances(_ context.Context, groupID string, version int64) (*calculator.GroupBalances, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.entries[cache.Key(groupID, version)]
	if ok {
		c.hits++
	}
	return b, ok, nil
}

func (c *memoryCache) SetGroupBalances(_ context.Context, groupID string, version int64, b *calculator.GroupBalances) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[cache.Key(groupID, version)] = b
	return nil
}

type testEnv struct {
	store       *sqlite.SQLiteStore
	cache       *memoryCache
	metrics     *metrics.Metrics
	auth        *apiconnect.AuthServiceClient
	groups      *apiconnect.GroupServiceClient
	expenses    *apiconnect.ExpenseServiceClient
	settlements *apiconnect.SettlementServiceClient
	balances    *apiconnect.BalanceServiceClient
}

type testUser struct {
	ID    string
	Token string
}

// newTestEnv serves every service over a real HTTP server backed by a
// temp-file SQLite store, with the production auth and logging interceptors.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	jwtManager := auth.NewJWTManager(testSecret, time.Hour)
	authenticator := auth.NewPasswordAuthenticator(store).WithCost(bcrypt.MinCost)
	m := metrics.New()
	mc := newMemoryCache()
	ledgers := NewLedgerLoader(store, mc, m)

	interceptors := connect.WithInterceptors(
		middleware.RequireAuth(jwtManager,
			apiconnect.AuthServiceRegisterProcedure,
			apiconnect.AuthServiceLoginProcedure,
		),
		middleware.LoggingInterceptor(m),
	)

	mux := http.NewServeMux()
	mux.Handle(apiconnect.NewAuthServiceHandler(NewAuthService(authenticator, jwtManager, store, nil), interceptors))
	mux.Handle(apiconnect.NewGroupServiceHandler(NewGroupService(store, ledgers), interceptors))
	mux.Handle(apiconnect.NewExpenseServiceHandler(NewExpenseService(store), interceptors))
	mux.Handle(apiconnect.NewSettlementServiceHandler(NewSettlementService(store), interceptors))
	mux.Handle(apiconnect.NewBalanceServiceHandler(NewBalanceService(store, ledgers, m), interceptors))

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return &testEnv{
		store:       store,
		cache:       mc,
		metrics:     m,
		auth:        apiconnect.NewAuthServiceClient(server.Client(), server.URL),
		groups:      apiconnect.NewGroupServiceClient(server.Client(), server.URL),
		expenses:    apiconnect.NewExpenseServiceClient(server.Client(), server.URL),
		settlements: apiconnect.NewSettlementServiceClient(server.Client(), server.URL),
		balances:    apiconnect.NewBalanceServiceClient(server.Client(), server.URL),
	}
}

func (e *testEnv) register(t *testing.T, name string) testUser {
	t.Helper()
	resp, err := e.auth.Register(context.Background(), connect.NewRequest(&api.RegisterRequest{
		Email:       strings.ToLower(name) + "@example.com",
		DisplayName: name,
		Password:    "password123",
	}))
	require.NoError(t, err)
	return testUser{ID: resp.Msg.User.ID, Token: resp.Msg.Token}
}

// authed wraps msg in a request carrying u's bearer token.
func authed[T any](u testUser, msg *T) *connect.Request[T] {
	req := connect.NewRequest(msg)
	req.Header().Set("Authorization", "Bearer "+u.Token)
	return req
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.Truef(t, dec(want).Equal(got), "want %s, got %s", want, got.String())
}

func requireCode(t *testing.T, want connect.Code, err error) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, want, connect.CodeOf(err), "error: %v", err)
}

func (e *testEnv) createExpense(t *testing.T, u testUser, req *api.CreateExpenseRequest) *api.CreateExpenseResponse {
	t.Helper()
	resp, err := e.expenses.CreateExpense(context.Background(), authed(u, req))
	require.NoError(t, err)
	return resp.Msg
}

func (e *testEnv) pairwise(t *testing.T, viewer testUser, counterpartID string) decimal.Decimal {
	t.Helper()
	resp, err := e.balances.GetPairwiseBalance(context.Background(), authed(viewer, &api.GetPairwiseBalanceRequest{CounterpartID: counterpartID}))
	require.NoError(t, err)
	return resp.Msg.Balance
}
