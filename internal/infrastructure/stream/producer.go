// Package stream carries the platform's asynchronous traffic over Kafka:
// the change-event topic the usage meter consumes, and the billing-notice
// topic the invoice pipeline reads. Messages are keyed by tenant ID so each
// tenant maps to one partition and keeps per-tenant ordering.
package stream

import (
	"context"
	"encoding/json"
	"fmt"

	kafka "github.com/segmentio/kafka-go"
	"github.com/tenantgrid/backend/internal/domain/billing"
	"github.com/tenantgrid/backend/internal/domain/tenant"
)

// Writer is the subset of kafka.Writer the producers need; tests inject a
// fake.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

func newWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    topic,
		Balancer: &kafka.Hash{}, // same key -> same partition
	}
}

// ChangeEventProducer publishes tenant data change events. It implements
// tenant.ChangePublisher.
type ChangeEventProducer struct {
	writer Writer
}

// NewChangeEventProducer creates a producer for the change-event topic.
func NewChangeEventProducer(brokers []string, topic string) *ChangeEventProducer {
	return &ChangeEventProducer{writer: newWriter(brokers, topic)}
}

// NewChangeEventProducerWithWriter allows injecting a test writer.
func NewChangeEventProducerWithWriter(w Writer) *ChangeEventProducer {
	return &ChangeEventProducer{writer: w}
}

// PublishChange implements tenant.ChangePublisher.
func (p *ChangeEventProducer) PublishChange(ctx context.Context, event tenant.ChangeEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("change event marshal failed: %w", err)
	}
	msg := kafka.Message{Key: []byte(event.TenantID), Value: value}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("change event write failed: %w", err)
	}
	return nil
}

// Close closes the underlying writer.
func (p *ChangeEventProducer) Close() error {
	return p.writer.Close()
}

// NoticeProducer publishes billing notices for asynchronous invoice
// generation. It implements billing.NoticePublisher.
type NoticeProducer struct {
	writer Writer
}

// NewNoticeProducer creates a producer for the billing-notice topic.
func NewNoticeProducer(brokers []string, topic string) *NoticeProducer {
	return &NoticeProducer{writer: newWriter(brokers, topic)}
}

// NewNoticeProducerWithWriter allows injecting a test writer.
func NewNoticeProducerWithWriter(w Writer) *NoticeProducer {
	return &NoticeProducer{writer: w}
}

// PublishNotice implements billing.NoticePublisher.
func (p *NoticeProducer) PublishNotice(ctx context.Context, notice billing.Notice) error {
	value, err := json.Marshal(notice)
	if err != nil {
		return fmt.Errorf("notice marshal failed: %w", err)
	}
	msg := kafka.Message{Key: []byte(notice.TenantID), Value: value}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("notice write failed: %w", err)
	}
	return nil
}

// Close closes the underlying writer.
func (p *NoticeProducer) Close() error {
	return p.writer.Close()
}

// Ensure producers implement the domain publisher interfaces
var (
	_ tenant.ChangePublisher  = (*ChangeEventProducer)(nil)
	_ billing.NoticePublisher = (*NoticeProducer)(nil)
)
