package metering

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tenantgrid/backend/internal/domain/billing"
	"github.com/tenantgrid/backend/internal/domain/tenant"
	"github.com/tenantgrid/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

type memoryUsageStore struct {
	mu       sync.Mutex
	counters map[string]int64
	failFor  map[string]error
}

func newMemoryUsageStore() *memoryUsageStore {
	return &memoryUsageStore{counters: map[string]int64{}, failFor: map[string]error{}}
}

func (s *memoryUsageStore) AddUsage(ctx context.Context, tenantID string, delta int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failFor[tenantID]; err != nil {
		return 0, err
	}
	s.counters[tenantID] += delta
	return s.counters[tenantID], nil
}

func (s *memoryUsageStore) GetUsage(ctx context.Context, tenantID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counters[tenantID], nil
}

type capturingNotices struct {
	notices []billing.Notice
	err     error
}

func (p *capturingNotices) PublishNotice(ctx context.Context, notice billing.Notice) error {
	if p.err != nil {
		return p.err
	}
	p.notices = append(p.notices, notice)
	return nil
}

func newTestService(t *testing.T, store billing.UsageStore, notices billing.NoticePublisher) *Service {
	t.Helper()
	mp, err := telemetry.NewMeterProvider(context.Background(), telemetry.MetricsConfig{Enabled: false}, zap.NewNop())
	require.NoError(t, err)
	metrics, err := telemetry.NewPlatformMetrics(mp)
	require.NoError(t, err)
	return NewService(store, notices, metrics, zap.NewNop())
}

func encode(t *testing.T, kind tenant.EventKind, tenantID string, delta *int64) []byte {
	t.Helper()
	raw, err := json.Marshal(tenant.ChangeEvent{
		Kind:          kind,
		TenantID:      tenantID,
		ItemID:        "item-1",
		NewUsageDelta: delta,
	})
	require.NoError(t, err)
	return raw
}

func ptr(v int64) *int64 { return &v }

func TestProcessBatchAccumulatesDeltas(t *testing.T) {
	ctx := context.Background()
	store := newMemoryUsageStore()
	notices := &capturingNotices{}
	svc := newTestService(t, store, notices)

	result := svc.ProcessBatch(ctx, [][]byte{
		encode(t, tenant.EventInsert, "tenant-a", ptr(5)),
		encode(t, tenant.EventModify, "tenant-a", ptr(3)),
		encode(t, tenant.EventInsert, "tenant-b", ptr(7)),
	})

	assert.Equal(t, BatchResult{Processed: 3}, result)

	total, err := store.GetUsage(ctx, "tenant-a")
	require.NoError(t, err)
	assert.Equal(t, int64(8), total)

	total, err = store.GetUsage(ctx, "tenant-b")
	require.NoError(t, err)
	assert.Equal(t, int64(7), total)

	require.Len(t, notices.notices, 3)
	assert.Equal(t, billing.Notice{TenantID: "tenant-a", UsageDelta: 5}, notices.notices[0])
}

func TestProcessBatchMissingDeltaDefaultsToZero(t *testing.T) {
	ctx := context.Background()
	store := newMemoryUsageStore()
	notices := &capturingNotices{}
	svc := newTestService(t, store, notices)

	result := svc.ProcessBatch(ctx, [][]byte{
		encode(t, tenant.EventInsert, "tenant-a", nil),
	})

	assert.Equal(t, BatchResult{Processed: 1}, result)

	total, err := store.GetUsage(ctx, "tenant-a")
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)

	// A zero-delta event still produces a notice; downstream decides.
	require.Len(t, notices.notices, 1)
	assert.Equal(t, int64(0), notices.notices[0].UsageDelta)
}

func TestProcessBatchSkipsRemoveEvents(t *testing.T) {
	ctx := context.Background()
	store := newMemoryUsageStore()
	notices := &capturingNotices{}
	svc := newTestService(t, store, notices)

	result := svc.ProcessBatch(ctx, [][]byte{
		encode(t, tenant.EventInsert, "tenant-a", ptr(5)),
		encode(t, tenant.EventRemove, "tenant-a", ptr(5)),
	})

	assert.Equal(t, BatchResult{Processed: 1, Skipped: 1}, result)

	total, err := store.GetUsage(ctx, "tenant-a")
	require.NoError(t, err)
	assert.Equal(t, int64(5), total, "deletions must not shrink billed usage")
}

func TestProcessBatchIsolatesMalformedRecords(t *testing.T) {
	ctx := context.Background()
	store := newMemoryUsageStore()
	notices := &capturingNotices{}
	svc := newTestService(t, store, notices)

	result := svc.ProcessBatch(ctx, [][]byte{
		[]byte(`{not json`),
		encode(t, tenant.EventInsert, "tenant-a", ptr(4)),
		[]byte(`{"event_kind":"INSERT"}`), // no tenant id
		[]byte(`{"event_kind":"TRUNCATE","tenant_id":"tenant-a"}`),
	})

	assert.Equal(t, BatchResult{Processed: 1, Skipped: 3}, result)

	total, err := store.GetUsage(ctx, "tenant-a")
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)
}

func TestProcessBatchIsolatesCounterFailures(t *testing.T) {
	ctx := context.Background()
	store := newMemoryUsageStore()
	store.failFor["tenant-broken"] = errors.New("connection refused")
	notices := &capturingNotices{}
	svc := newTestService(t, store, notices)

	result := svc.ProcessBatch(ctx, [][]byte{
		encode(t, tenant.EventInsert, "tenant-broken", ptr(2)),
		encode(t, tenant.EventInsert, "tenant-a", ptr(9)),
	})

	assert.Equal(t, BatchResult{Processed: 1, Failed: 1}, result)

	total, err := store.GetUsage(ctx, "tenant-a")
	require.NoError(t, err)
	assert.Equal(t, int64(9), total)

	// The failed event produced no notice.
	require.Len(t, notices.notices, 1)
	assert.Equal(t, "tenant-a", notices.notices[0].TenantID)
}

func TestProcessBatchNoticeFailureKeepsCounter(t *testing.T) {
	ctx := context.Background()
	store := newMemoryUsageStore()
	notices := &capturingNotices{err: errors.New("broker down")}
	svc := newTestService(t, store, notices)

	result := svc.ProcessBatch(ctx, [][]byte{
		encode(t, tenant.EventInsert, "tenant-a", ptr(6)),
	})

	assert.Equal(t, BatchResult{Processed: 1}, result)

	total, err := store.GetUsage(ctx, "tenant-a")
	require.NoError(t, err)
	assert.Equal(t, int64(6), total, "a failed notice never rolls back the counter")
}

func TestHandleBatchNeverReturnsError(t *testing.T) {
	store := newMemoryUsageStore()
	store.failFor["tenant-broken"] = errors.New("connection refused")
	svc := newTestService(t, store, &capturingNotices{})

	err := svc.HandleBatch(context.Background(), [][]byte{
		encode(t, tenant.EventInsert, "tenant-broken", ptr(1)),
	})
	assert.NoError(t, err)
}
