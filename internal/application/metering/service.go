// Package metering implements the usage meter: the stream processor that
// turns tenant data change events into billing counter updates and invoice
// queue notices.
package metering

import (
	"context"
	"encoding/json"

	"github.com/tenantgrid/backend/internal/domain/billing"
	"github.com/tenantgrid/backend/internal/domain/tenant"
	"github.com/tenantgrid/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// BatchResult reports what happened to one delivered batch. A batch is
// always fully consumed; Failed counts events whose counter update did not
// land and that will be retried on redelivery of the batch, if any.
type BatchResult struct {
	Processed int
	Skipped   int
	Failed    int
}

// Service consumes raw change records and applies usage deltas to the
// billing counter store.
type Service struct {
	usage   billing.UsageStore
	notices billing.NoticePublisher
	metrics *telemetry.PlatformMetrics
	logger  *zap.Logger
}

// NewService creates the usage meter service.
func NewService(usage billing.UsageStore, notices billing.NoticePublisher, metrics *telemetry.PlatformMetrics, logger *zap.Logger) *Service {
	return &Service{
		usage:   usage,
		notices: notices,
		metrics: metrics,
		logger:  logger,
	}
}

// ProcessBatch handles one batch of raw change records. Events are
// independent: a malformed or failing record is counted and logged, and the
// rest of the batch still runs. Insert and Modify events increment the
// tenant's usage counter by the event's delta (0 when absent); Remove
// events are skipped, so deletions never shrink billed usage.
//
// Counter updates are idempotent only at the delivery level the stream
// gives us: at-least-once delivery can double-count a delta if a commit is
// lost after the increment landed. The counter store's atomic increment
// keeps concurrent deliveries from losing updates, which is the stronger
// requirement.
func (s *Service) ProcessBatch(ctx context.Context, records [][]byte) BatchResult {
	var result BatchResult
	for _, raw := range records {
		switch s.processOne(ctx, raw) {
		case outcomeProcessed:
			result.Processed++
		case outcomeSkipped:
			result.Skipped++
		case outcomeFailed:
			result.Failed++
		}
	}
	return result
}

type outcome int

const (
	outcomeProcessed outcome = iota
	outcomeSkipped
	outcomeFailed
)

func (s *Service) processOne(ctx context.Context, raw []byte) outcome {
	var event tenant.ChangeEvent
	if err := json.Unmarshal(raw, &event); err != nil {
		s.logger.Warn("malformed change record, skipping",
			zap.Error(err),
			zap.Int("size", len(raw)),
		)
		s.metrics.RecordMalformedEvent(ctx)
		return outcomeSkipped
	}
	if event.TenantID == "" {
		s.logger.Warn("change record without tenant id, skipping")
		s.metrics.RecordMalformedEvent(ctx)
		return outcomeSkipped
	}

	switch event.Kind {
	case tenant.EventInsert, tenant.EventModify:
	case tenant.EventRemove:
		// Deletions do not reduce billed usage.
		return outcomeSkipped
	default:
		s.logger.Warn("change record with unknown kind, skipping",
			zap.String("event_kind", string(event.Kind)),
			zap.String("tenant_id", event.TenantID),
		)
		s.metrics.RecordMalformedEvent(ctx)
		return outcomeSkipped
	}

	var delta int64
	if event.NewUsageDelta != nil {
		delta = *event.NewUsageDelta
	}

	total, err := s.usage.AddUsage(ctx, event.TenantID, delta)
	if err != nil {
		s.logger.Error("usage counter update failed",
			zap.String("tenant_id", event.TenantID),
			zap.String("item_id", event.ItemID),
			zap.Int64("usage_delta", delta),
			zap.Error(err),
		)
		s.metrics.RecordError(ctx, "metering")
		return outcomeFailed
	}
	s.metrics.RecordBillingUpdate(ctx)
	s.logger.Info("usage counter updated",
		zap.String("tenant_id", event.TenantID),
		zap.Int64("usage_delta", delta),
		zap.Int64("usage_total", total),
	)

	// The counter is the source of truth; the notice is best-effort. A
	// failed publish is logged and metered but never rolls back the counter.
	notice := billing.Notice{TenantID: event.TenantID, UsageDelta: delta}
	if err := s.notices.PublishNotice(ctx, notice); err != nil {
		s.logger.Error("billing notice publish failed",
			zap.String("tenant_id", event.TenantID),
			zap.Int64("usage_delta", delta),
			zap.Error(err),
		)
		s.metrics.RecordQueuePublishFailure(ctx)
	}

	return outcomeProcessed
}

// HandleBatch adapts ProcessBatch to the stream consumer's handler shape.
// It never returns an error: every record's outcome has already been
// settled, and the offset should be committed either way.
func (s *Service) HandleBatch(ctx context.Context, records [][]byte) error {
	result := s.ProcessBatch(ctx, records)
	if result.Failed > 0 {
		s.logger.Warn("batch finished with failures",
			zap.Int("processed", result.Processed),
			zap.Int("skipped", result.Skipped),
			zap.Int("failed", result.Failed),
		)
	}
	return nil
}
