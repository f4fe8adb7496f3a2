package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	appbilling "github.com/tenantgrid/backend/internal/application/billing"
	"github.com/tenantgrid/backend/internal/application/tenantdata"
	"github.com/tenantgrid/backend/internal/domain/billing"
	"github.com/tenantgrid/backend/internal/domain/tenant"
	"github.com/tenantgrid/backend/internal/infrastructure/auth"
	"github.com/tenantgrid/backend/internal/infrastructure/config"
	"github.com/tenantgrid/backend/internal/infrastructure/telemetry"
	"github.com/tenantgrid/backend/internal/interfaces/http/middleware"
	"github.com/tenantgrid/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type memoryRecords struct {
	items map[string]map[string]json.RawMessage
}

func newMemoryRecords() *memoryRecords {
	return &memoryRecords{items: map[string]map[string]json.RawMessage{}}
}

func (r *memoryRecords) Get(ctx context.Context, scope tenant.Scope, itemID string) (*tenant.Record, error) {
	payload, ok := r.items[scope.TenantID()][itemID]
	if !ok {
		return nil, nil
	}
	return &tenant.Record{TenantID: scope.TenantID(), ItemID: itemID, Payload: payload}, nil
}

func (r *memoryRecords) Put(ctx context.Context, scope tenant.Scope, itemID string, payload json.RawMessage) error {
	if r.items[scope.TenantID()] == nil {
		r.items[scope.TenantID()] = map[string]json.RawMessage{}
	}
	r.items[scope.TenantID()][itemID] = payload
	return nil
}

type stubUsage struct {
	counters map[string]int64
}

func (s *stubUsage) AddUsage(ctx context.Context, tenantID string, delta int64) (int64, error) {
	s.counters[tenantID] += delta
	return s.counters[tenantID], nil
}

func (s *stubUsage) GetUsage(ctx context.Context, tenantID string) (int64, error) {
	return s.counters[tenantID], nil
}

type testEnv struct {
	engine  *gin.Engine
	jwt     *auth.JWTService
	records *memoryRecords
	usage   *stubUsage
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	mp, err := telemetry.NewMeterProvider(context.Background(), telemetry.MetricsConfig{Enabled: false}, zap.NewNop())
	require.NoError(t, err)
	metrics, err := telemetry.NewPlatformMetrics(mp)
	require.NoError(t, err)

	records := newMemoryRecords()
	usage := &stubUsage{counters: map[string]int64{}}
	logger := zap.NewNop()

	dataSvc := tenantdata.NewService(records, metrics, logger)
	billingSvc := appbilling.NewSummaryService(usage, billing.NewPricePerUnit(0.01), metrics, logger)

	jwtSvc := auth.NewJWTService(config.JWTConfig{
		Secret:     "test-secret-key-that-is-long-enough",
		Expiration: time.Hour,
		Issuer:     "tenantgrid-test",
	})

	engine := gin.New()
	r := router.NewRouter(engine,
		router.WithAuthMiddleware(middleware.JWTAuthMiddleware(jwtSvc, logger)),
	)
	r.Register(NewTenantDataHandler(dataSvc, logger))
	r.Register(NewBillingHandler(billingSvc, logger))
	r.Setup()

	return &testEnv{engine: engine, jwt: jwtSvc, records: records, usage: usage}
}

func (e *testEnv) tokenFor(t *testing.T, tenantID string) string {
	t.Helper()
	token, err := e.jwt.GenerateToken(tenantID, "user-1", "user@example.com")
	require.NoError(t, err)
	return token.AccessToken
}

func (e *testEnv) do(t *testing.T, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)
	return w
}

func TestStoreAndGetItem(t *testing.T) {
	env := newTestEnv(t)
	token := env.tokenFor(t, "tenant-a")

	w := env.do(t, http.MethodPost, "/api/v1/tenants/tenant-a/items/item-1", token,
		`{"payload":{"name":"widget","usage":5}}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = env.do(t, http.MethodGet, "/api/v1/tenants/tenant-a/items/item-1", token, "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			TenantID string          `json:"tenant_id"`
			ItemID   string          `json:"item_id"`
			Payload  json.RawMessage `json:"payload"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "tenant-a", resp.Data.TenantID)
	assert.JSONEq(t, `{"name":"widget","usage":5}`, string(resp.Data.Payload))
}

func TestCrossTenantAccessIsForbiddenNotNotFound(t *testing.T) {
	env := newTestEnv(t)
	tokenB := env.tokenFor(t, "tenant-b")

	// The record does not even exist; the guard still answers 403.
	w := env.do(t, http.MethodGet, "/api/v1/tenants/tenant-a/items/item-1", tokenB, "")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "FORBIDDEN")
	assert.NotContains(t, w.Body.String(), "tenant-a")

	w = env.do(t, http.MethodPost, "/api/v1/tenants/tenant-a/items/item-1", tokenB,
		`{"payload":{"x":1}}`)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestGetMissingItemIsNotFound(t *testing.T) {
	env := newTestEnv(t)
	token := env.tokenFor(t, "tenant-a")

	w := env.do(t, http.MethodGet, "/api/v1/tenants/tenant-a/items/no-such-item", token, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "NOT_FOUND")
}

func TestRequestsWithoutTokenAreUnauthorized(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/v1/tenants/tenant-a/items/item-1", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestStoreRejectsMissingPayload(t *testing.T) {
	env := newTestEnv(t)
	token := env.tokenFor(t, "tenant-a")

	w := env.do(t, http.MethodPost, "/api/v1/tenants/tenant-a/items/item-1", token, `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBillingSummary(t *testing.T) {
	env := newTestEnv(t)
	env.usage.counters["tenant-a"] = 150
	token := env.tokenFor(t, "tenant-a")

	w := env.do(t, http.MethodGet, "/api/v1/tenants/tenant-a/billing", token, "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			TenantID   string `json:"tenant_id"`
			UsageCount int64  `json:"usage_count"`
			TotalCost  string `json:"total_cost"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(150), resp.Data.UsageCount)
	assert.Equal(t, "1.50", resp.Data.TotalCost)
}

func TestBillingSummaryNewTenantIsZero(t *testing.T) {
	env := newTestEnv(t)
	token := env.tokenFor(t, "tenant-new")

	w := env.do(t, http.MethodGet, "/api/v1/tenants/tenant-new/billing", token, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"usage_count":0`)
	assert.Contains(t, w.Body.String(), `"0.00"`)
}

func TestBillingCrossTenantIsForbidden(t *testing.T) {
	env := newTestEnv(t)
	env.usage.counters["tenant-a"] = 150
	token := env.tokenFor(t, "tenant-b")

	w := env.do(t, http.MethodGet, "/api/v1/tenants/tenant-a/billing", token, "")
	assert.Equal(t, http.StatusForbidden, w.Code)
}
