package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/tenantgrid/backend/internal/domain/tenant"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// recordModel is the GORM model for tenant records. The composite primary
// key makes (tenant_id, item_id) the unit of identity and keeps every query
// tenant-partitioned.
type recordModel struct {
	TenantID  string    `gorm:"type:varchar(64);primaryKey"`
	ItemID    string    `gorm:"type:varchar(255);primaryKey"`
	Payload   []byte    `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName sets the table name for recordModel.
func (recordModel) TableName() string {
	return "tenant_records"
}

// GormRecordRepository implements tenant.RecordRepository. Writes publish a
// change event through the injected publisher; the repository is the event
// source for the usage meter.
type GormRecordRepository struct {
	db        *gorm.DB
	publisher tenant.ChangePublisher
	logger    *zap.Logger
}

// NewGormRecordRepository creates a record repository that publishes change
// events through the given publisher.
func NewGormRecordRepository(db *gorm.DB, publisher tenant.ChangePublisher, logger *zap.Logger) *GormRecordRepository {
	return &GormRecordRepository{
		db:        db,
		publisher: publisher,
		logger:    logger,
	}
}

// Get implements tenant.RecordRepository. Absent records yield (nil, nil).
func (r *GormRecordRepository) Get(ctx context.Context, scope tenant.Scope, itemID string) (*tenant.Record, error) {
	var model recordModel
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND item_id = ?", scope.TenantID(), itemID).
		First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("record lookup failed: %w", err)
	}
	return model.toRecord(), nil
}

// Put implements tenant.RecordRepository. The write is an unconditional
// upsert (last-write-wins); on success a change event keyed to the tenant is
// published so the usage meter observes the mutation.
func (r *GormRecordRepository) Put(ctx context.Context, scope tenant.Scope, itemID string, payload json.RawMessage) error {
	model := recordModel{
		TenantID: scope.TenantID(),
		ItemID:   itemID,
		Payload:  payload,
	}

	kind := tenant.EventInsert
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&recordModel{}).
			Where("tenant_id = ? AND item_id = ?", scope.TenantID(), itemID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			kind = tenant.EventModify
		}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "tenant_id"}, {Name: "item_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"payload", "updated_at"}),
		}).Create(&model).Error
	})
	if err != nil {
		return fmt.Errorf("record write failed: %w", err)
	}

	event := tenant.ChangeEvent{
		Kind:          kind,
		TenantID:      scope.TenantID(),
		ItemID:        itemID,
		NewUsageDelta: extractUsageDelta(payload),
	}
	if err := r.publisher.PublishChange(ctx, event); err != nil {
		// The record is written; surfacing the error lets the caller retry
		// the (idempotent) write so the usage event is not silently lost.
		r.logger.Error("change event publish failed",
			zap.String("tenant_id", scope.TenantID()),
			zap.String("item_id", itemID),
			zap.Error(err),
		)
		return fmt.Errorf("change event publish failed: %w", err)
	}

	return nil
}

// extractUsageDelta pulls the usage figure out of a written payload. Returns
// nil when the payload has no parseable top-level "usage" field; the meter
// treats that as a zero delta.
func extractUsageDelta(payload json.RawMessage) *int64 {
	var body map[string]json.RawMessage
	if err := json.Unmarshal(payload, &body); err != nil {
		return nil
	}
	raw, ok := body["usage"]
	if !ok {
		return nil
	}

	var n int64
	if err := json.Unmarshal(raw, &n); err == nil {
		return &n
	}
	// Usage may arrive as a numeric string.
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if parsed, err := strconv.ParseInt(s, 10, 64); err == nil {
			return &parsed
		}
	}
	return nil
}

func (m *recordModel) toRecord() *tenant.Record {
	return &tenant.Record{
		TenantID:  m.TenantID,
		ItemID:    m.ItemID,
		Payload:   m.Payload,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// Ensure GormRecordRepository implements tenant.RecordRepository
var _ tenant.RecordRepository = (*GormRecordRepository)(nil)
