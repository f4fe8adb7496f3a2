package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tenantgrid/backend/internal/domain/tenant"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// capturingPublisher records published change events for assertions.
type capturingPublisher struct {
	events []tenant.ChangeEvent
	err    error
}

func (p *capturingPublisher) PublishChange(ctx context.Context, event tenant.ChangeEvent) error {
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

func newTestRepository(t *testing.T) (*GormRecordRepository, *capturingPublisher) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&recordModel{}))

	publisher := &capturingPublisher{}
	return NewGormRecordRepository(db, publisher, zap.NewNop()), publisher
}

func scopeFor(t *testing.T, tenantID string) tenant.Scope {
	t.Helper()
	scope, err := tenant.Authorize(tenant.Claims{TenantID: tenantID, SubjectID: "tester"}, tenantID)
	require.NoError(t, err)
	return scope
}

func TestGetMissingRecord(t *testing.T) {
	repo, _ := newTestRepository(t)

	record, err := repo.Get(context.Background(), scopeFor(t, "tenant-a"), "nope")
	require.NoError(t, err)
	assert.Nil(t, record)
}

func TestPutThenGet(t *testing.T) {
	ctx := context.Background()
	repo, publisher := newTestRepository(t)
	scope := scopeFor(t, "tenant-a")
	payload := json.RawMessage(`{"name":"widget","usage":5}`)

	require.NoError(t, repo.Put(ctx, scope, "item-1", payload))

	record, err := repo.Get(ctx, scope, "item-1")
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, "tenant-a", record.TenantID)
	assert.Equal(t, "item-1", record.ItemID)
	assert.JSONEq(t, string(payload), string(record.Payload))

	require.Len(t, publisher.events, 1)
	event := publisher.events[0]
	assert.Equal(t, tenant.EventInsert, event.Kind)
	assert.Equal(t, "tenant-a", event.TenantID)
	require.NotNil(t, event.NewUsageDelta)
	assert.Equal(t, int64(5), *event.NewUsageDelta)
}

func TestPutOverwritesLastWriteWins(t *testing.T) {
	ctx := context.Background()
	repo, publisher := newTestRepository(t)
	scope := scopeFor(t, "tenant-a")

	require.NoError(t, repo.Put(ctx, scope, "item-1", json.RawMessage(`{"v":1}`)))
	require.NoError(t, repo.Put(ctx, scope, "item-1", json.RawMessage(`{"v":2}`)))

	record, err := repo.Get(ctx, scope, "item-1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"v":2}`, string(record.Payload))

	require.Len(t, publisher.events, 2)
	assert.Equal(t, tenant.EventInsert, publisher.events[0].Kind)
	assert.Equal(t, tenant.EventModify, publisher.events[1].Kind)
}

func TestTenantPartitioning(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestRepository(t)

	require.NoError(t, repo.Put(ctx, scopeFor(t, "tenant-a"), "item-1", json.RawMessage(`{"owner":"a"}`)))

	// Same item ID under a different tenant is a separate record.
	record, err := repo.Get(ctx, scopeFor(t, "tenant-b"), "item-1")
	require.NoError(t, err)
	assert.Nil(t, record)
}

func TestPutSurfacesPublishFailure(t *testing.T) {
	ctx := context.Background()
	repo, publisher := newTestRepository(t)
	publisher.err = errors.New("broker unavailable")
	scope := scopeFor(t, "tenant-a")

	err := repo.Put(ctx, scope, "item-1", json.RawMessage(`{"usage":1}`))
	require.Error(t, err)

	// The write itself landed; a retried Put is safe and re-emits the event.
	record, getErr := repo.Get(ctx, scope, "item-1")
	require.NoError(t, getErr)
	assert.NotNil(t, record)
}

func TestExtractUsageDelta(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    *int64
	}{
		{"number", `{"usage":7}`, int64Ptr(7)},
		{"numeric string", `{"usage":"12"}`, int64Ptr(12)},
		{"absent", `{"name":"x"}`, nil},
		{"unparseable", `{"usage":"lots"}`, nil},
		{"not an object", `[1,2]`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := extractUsageDelta(json.RawMessage(tt.payload))
			if tt.want == nil {
				assert.Nil(t, got)
			} else {
				require.NotNil(t, got)
				assert.Equal(t, *tt.want, *got)
			}
		})
	}
}

func int64Ptr(v int64) *int64 { return &v }
