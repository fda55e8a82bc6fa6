package v1_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"shopledger/internal/core/apperror"
	"shopledger/internal/domain/auth"
	"shopledger/internal/domain/cash"
	"shopledger/internal/domain/cashflow"
	"shopledger/internal/domain/catalogs/counterparty"
	"shopledger/internal/domain/catalogs/product"
	"shopledger/internal/domain/documents"
	"shopledger/internal/domain/notification"
	"shopledger/internal/domain/reports"
	"shopledger/internal/domain/shop"
	v1 "shopledger/internal/infrastructure/http/v1"
	"shopledger/internal/infrastructure/storage/memory"
	"shopledger/internal/infrastructure/storage/postgres"
	"shopledger/pkg/logger"
)

type api struct {
	t      *testing.T
	router *gin.Engine
	store  *memory.Store
}

func newAPI(t *testing.T, idem *fakeIdempotency) *api {
	t.Helper()
	store := memory.New()

	jwtSvc := auth.NewJWTService(auth.DefaultJWTConfig("test-secret"))
	authCfg := auth.DefaultServiceConfig()
	authCfg.BcryptCost = bcrypt.MinCost

	shops := shop.NewService(store.Shops())
	deps := store.LedgerDeps(shops)

	cfg := v1.RouterConfig{
		Logger:       logger.Nop(),
		JWTValidator: jwtSvc,
		Services: v1.Services{
			Auth:          auth.NewService(store.Users(), jwtSvc, authCfg),
			Shops:         shops,
			Products:      product.NewService(store.Products(), store, store.Documents()),
			Counterparty:  counterparty.NewService(store.Counterparties(), store, store.Documents(), store.Transactions()),
			Stock:         deps.Stock,
			Sales:         documents.NewService(documents.SaleFlow, deps),
			Purchases:     documents.NewService(documents.PurchaseFlow, deps),
			Cash:          cash.NewAllocator(deps),
			Transactions:  cashflow.NewService(store.Transactions(), deps.Ledger),
			Reports:       reports.NewService(store.Reports()),
			Notifications: notification.NewService(store.Notifications(), store, nil),
		},
	}
	if idem != nil {
		cfg.Idempotency = idem
	}
	return &api{t: t, router: v1.NewRouter(cfg), store: store}
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Code    string          `json:"code"`
	Details map[string]any  `json:"details"`
}

func (a *api) do(method, path, token string, body any, headers ...string) (int, envelope) {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	var env envelope
	require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w.Code, env
}

func (a *api) data(env envelope) map[string]any {
	a.t.Helper()
	var m map[string]any
	require.NoError(a.t, json.Unmarshal(env.Data, &m))
	return m
}

// signup registers a user, opens a shop and returns the token and shop path.
func (a *api) signup(email string) (string, string) {
	a.t.Helper()
	status, env := a.do(http.MethodPost, "/api/v1/auth/register", "", map[string]any{
		"email": email, "password": "secret-pass", "firstName": "Owner",
	})
	require.Equal(a.t, http.StatusCreated, status, env.Message)
	token := a.data(env)["accessToken"].(string)

	status, env = a.do(http.MethodPost, "/api/v1/shops", token, map[string]any{"name": "Corner Store"})
	require.Equal(a.t, http.StatusCreated, status, env.Message)
	return token, "/api/v1/shops/" + a.data(env)["id"].(string)
}

func (a *api) create(token, path string, body any) map[string]any {
	a.t.Helper()
	status, env := a.do(http.MethodPost, path, token, body)
	require.Equal(a.t, http.StatusCreated, status, "%s: %s %v", path, env.Message, env.Details)
	return a.data(env)
}

func TestSaleLifecycle_OverHTTP(t *testing.T) {
	a := newAPI(t, nil)
	token, shopPath := a.signup("owner@example.com")

	p := a.create(token, shopPath+"/products", map[string]any{
		"name": "Rice 5kg", "purchasePrice": 100, "sellingPrice": 150, "quantity": 10,
	})
	c := a.create(token, shopPath+"/customers", map[string]any{"name": "Ram", "phone": "98000 00001"})

	sale := a.create(token, shopPath+"/sales", map[string]any{
		"customerId": c["id"],
		"items":      []map[string]any{{"productId": p["id"], "quantity": 2}},
		"amountPaid": 200,
	})
	assert.Equal(t, 300.0, sale["grandTotal"])
	assert.Equal(t, 100.0, sale["amountDue"])
	assert.Equal(t, "PARTIAL", sale["paymentStatus"])

	status, env := a.do(http.MethodGet, shopPath+"/customers/"+c["id"].(string), token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 100.0, a.data(env)["currentBalance"])

	status, env = a.do(http.MethodPost, shopPath+"/sales/"+sale["id"].(string)+"/cancel", token, nil)
	require.Equal(t, http.StatusOK, status, env.Message)
	assert.Equal(t, "CANCELLED", a.data(env)["status"])

	status, env = a.do(http.MethodGet, shopPath+"/products/"+p["id"].(string), token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 10.0, a.data(env)["quantity"])

	status, env = a.do(http.MethodGet, shopPath+"/transactions?type=CASH_OUT", token, nil)
	require.Equal(t, http.StatusOK, status)
	page := a.data(env)
	assert.Equal(t, 1.0, page["totalCount"])
}

func TestSale_OverpaidPaymentRejected(t *testing.T) {
	a := newAPI(t, nil)
	token, shopPath := a.signup("owner@example.com")

	p := a.create(token, shopPath+"/products", map[string]any{"name": "Oil", "sellingPrice": 50, "quantity": 5})
	c := a.create(token, shopPath+"/customers", map[string]any{"name": "Sita", "phone": "9800000002"})
	sale := a.create(token, shopPath+"/sales", map[string]any{
		"customerId": c["id"],
		"items":      []map[string]any{{"productId": p["id"], "quantity": 1}},
	})

	status, env := a.do(http.MethodPost, shopPath+"/sales/"+sale["id"].(string)+"/payments", token,
		map[string]any{"amount": 60})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.False(t, env.Success)
	assert.Equal(t, apperror.CodePaymentExceedsDue, env.Code)
}

func TestAuth_MissingToken(t *testing.T) {
	a := newAPI(t, nil)

	status, env := a.do(http.MethodGet, "/api/v1/shops", "", nil)

	assert.Equal(t, http.StatusUnauthorized, status)
	assert.False(t, env.Success)
	assert.Equal(t, apperror.CodeUnauthorized, env.Code)
}

func TestShopAccess_OtherOwnerForbidden(t *testing.T) {
	a := newAPI(t, nil)
	_, shopPath := a.signup("first@example.com")
	intruder, _ := a.signup("second@example.com")

	status, env := a.do(http.MethodGet, shopPath+"/products", intruder, nil)

	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, apperror.CodeForbidden, env.Code)
}

func TestBinding_ReportsFieldRules(t *testing.T) {
	a := newAPI(t, nil)
	token, shopPath := a.signup("owner@example.com")

	status, env := a.do(http.MethodPost, shopPath+"/products", token, map[string]any{
		"name": "Sugar", "sellingPrice": -1,
	})

	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, apperror.CodeValidation, env.Code)
	fields, ok := env.Details["fields"].(map[string]any)
	require.True(t, ok, "details: %v", env.Details)
	assert.Equal(t, "money", fields["sellingPrice"])
}

func TestCustomerDelete_GuardedByLedger(t *testing.T) {
	a := newAPI(t, nil)
	token, shopPath := a.signup("owner@example.com")

	p := a.create(token, shopPath+"/products", map[string]any{"name": "Tea", "sellingPrice": 20, "quantity": 5})
	used := a.create(token, shopPath+"/customers", map[string]any{"name": "Hari", "phone": "9800000003"})
	unused := a.create(token, shopPath+"/customers", map[string]any{"name": "Gita", "phone": "9800000004"})
	a.create(token, shopPath+"/sales", map[string]any{
		"customerId": used["id"],
		"items":      []map[string]any{{"productId": p["id"], "quantity": 1}},
	})

	status, env := a.do(http.MethodDelete, shopPath+"/customers/"+used["id"].(string), token, nil)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, apperror.CodeReferencedEntity, env.Code)

	status, _ = a.do(http.MethodDelete, shopPath+"/customers/"+unused["id"].(string), token, nil)
	assert.Equal(t, http.StatusOK, status)

	// a supplier route never sees a customer
	status, _ = a.do(http.MethodGet, shopPath+"/suppliers/"+used["id"].(string), token, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestIdempotencyKey_ReplaysSale(t *testing.T) {
	idem := newFakeIdempotency()
	a := newAPI(t, idem)
	token, shopPath := a.signup("owner@example.com")

	p := a.create(token, shopPath+"/products", map[string]any{"name": "Salt", "sellingPrice": 10, "quantity": 9})
	body := map[string]any{
		"items":      []map[string]any{{"productId": p["id"], "quantity": 3}},
		"amountPaid": 30,
	}

	status1, first := a.do(http.MethodPost, shopPath+"/sales", token, body, "Idempotency-Key", "sale-1")
	status2, second := a.do(http.MethodPost, shopPath+"/sales", token, body, "Idempotency-Key", "sale-1")

	require.Equal(t, http.StatusCreated, status1)
	assert.Equal(t, http.StatusCreated, status2)
	assert.JSONEq(t, string(first.Data), string(second.Data))

	status, env := a.do(http.MethodGet, shopPath+"/products/"+p["id"].(string), token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 6.0, a.data(env)["quantity"], "stock is decremented once")
}

func TestHealth_Live(t *testing.T) {
	a := newAPI(t, nil)

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health/live", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

type idemRecord struct {
	hash   string
	done   bool
	status int
	body   []byte
}

type fakeIdempotency struct {
	mu      sync.Mutex
	records map[string]*idemRecord
}

func newFakeIdempotency() *fakeIdempotency {
	return &fakeIdempotency{records: map[string]*idemRecord{}}
}

func (f *fakeIdempotency) AcquireKey(_ context.Context, key, _, _, hash string) (*postgres.IdempotencyReplay, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.records[key]
	switch {
	case !ok:
		f.records[key] = &idemRecord{hash: hash}
		return nil, nil
	case rec.hash != hash:
		return nil, apperror.NewIdempotencyMismatch(key)
	case !rec.done:
		return nil, apperror.NewIdempotencyConflict(key)
	}
	return &postgres.IdempotencyReplay{StatusCode: rec.status, Body: rec.body}, nil
}

func (f *fakeIdempotency) CompleteKey(_ context.Context, key string, status int, response any) error {
	return f.finish(key, status, response)
}

func (f *fakeIdempotency) FailKey(_ context.Context, key string, status int, response any) error {
	return f.finish(key, status, response)
}

func (f *fakeIdempotency) finish(key string, status int, response any) error {
	body, err := json.Marshal(response)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records[key].done = true
	f.records[key].status = status
	f.records[key].body = body
	return nil
}

