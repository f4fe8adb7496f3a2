package tenantdata

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tenantgrid/backend/internal/domain/shared"
	"github.com/tenantgrid/backend/internal/domain/tenant"
	"github.com/tenantgrid/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

type memoryRecords struct {
	items map[string]map[string]json.RawMessage
	err   error
}

func newMemoryRecords() *memoryRecords {
	return &memoryRecords{items: map[string]map[string]json.RawMessage{}}
}

func (r *memoryRecords) Get(ctx context.Context, scope tenant.Scope, itemID string) (*tenant.Record, error) {
	if r.err != nil {
		return nil, r.err
	}
	payload, ok := r.items[scope.TenantID()][itemID]
	if !ok {
		return nil, nil
	}
	return &tenant.Record{TenantID: scope.TenantID(), ItemID: itemID, Payload: payload}, nil
}

func (r *memoryRecords) Put(ctx context.Context, scope tenant.Scope, itemID string, payload json.RawMessage) error {
	if r.err != nil {
		return r.err
	}
	if r.items[scope.TenantID()] == nil {
		r.items[scope.TenantID()] = map[string]json.RawMessage{}
	}
	r.items[scope.TenantID()][itemID] = payload
	return nil
}

func newTestService(t *testing.T, records tenant.RecordRepository) *Service {
	t.Helper()
	mp, err := telemetry.NewMeterProvider(context.Background(), telemetry.MetricsConfig{Enabled: false}, zap.NewNop())
	require.NoError(t, err)
	metrics, err := telemetry.NewPlatformMetrics(mp)
	require.NoError(t, err)
	return NewService(records, metrics, zap.NewNop())
}

func scopeFor(t *testing.T, tenantID string) tenant.Scope {
	t.Helper()
	scope, err := tenant.Authorize(tenant.Claims{TenantID: tenantID, SubjectID: "user-1"}, tenantID)
	require.NoError(t, err)
	return scope
}

func TestStoreThenGet(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, newMemoryRecords())
	scope := scopeFor(t, "tenant-a")

	payload := json.RawMessage(`{"name":"widget","usage":5}`)
	require.NoError(t, svc.Store(ctx, scope, "item-1", payload))

	record, err := svc.Get(ctx, scope, "item-1")
	require.NoError(t, err)
	assert.Equal(t, "tenant-a", record.TenantID)
	assert.JSONEq(t, string(payload), string(record.Payload))
}

func TestGetMissingRecordIsNotFound(t *testing.T) {
	svc := newTestService(t, newMemoryRecords())

	_, err := svc.Get(context.Background(), scopeFor(t, "tenant-a"), "no-such-item")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestStoreRejectsInvalidInput(t *testing.T) {
	svc := newTestService(t, newMemoryRecords())
	scope := scopeFor(t, "tenant-a")

	assert.ErrorIs(t, svc.Store(context.Background(), scope, "", json.RawMessage(`{}`)), shared.ErrInvalidInput)
	assert.ErrorIs(t, svc.Store(context.Background(), scope, "item-1", nil), shared.ErrInvalidInput)
	assert.ErrorIs(t, svc.Store(context.Background(), scope, "item-1", json.RawMessage(`{broken`)), shared.ErrInvalidInput)
}

func TestGetSurfacesStoreFailure(t *testing.T) {
	records := newMemoryRecords()
	records.err = errors.New("connection refused")
	svc := newTestService(t, records)

	_, err := svc.Get(context.Background(), scopeFor(t, "tenant-a"), "item-1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, shared.ErrNotFound)
}
