package stream

import (
	"context"
	"errors"
	"io"
	"time"

	kafka "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Reader is the subset of kafka.Reader the consumer needs; tests inject a
// fake.
type Reader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// BatchHandler processes a batch of raw change records. Implementations own
// per-record error handling; whatever they return, the consumer commits the
// offset (processing errors must not cause redelivery storms).
type BatchHandler func(ctx context.Context, records [][]byte) error

// ChangeEventConsumer runs a consumer-group loop over the change-event
// topic. Partitioning by tenant key gives in-order delivery per tenant;
// there is no ordering across tenants.
type ChangeEventConsumer struct {
	reader  Reader
	handler BatchHandler
	logger  *zap.Logger
}

// NewChangeEventConsumer creates a consumer for the change-event topic.
func NewChangeEventConsumer(brokers []string, topic, groupID string, handler BatchHandler, logger *zap.Logger) *ChangeEventConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 1,
		MaxBytes: 10e6,
		MaxWait:  500 * time.Millisecond,
	})
	return &ChangeEventConsumer{reader: reader, handler: handler, logger: logger}
}

// NewChangeEventConsumerWithReader allows injecting a test reader.
func NewChangeEventConsumerWithReader(reader Reader, handler BatchHandler, logger *zap.Logger) *ChangeEventConsumer {
	return &ChangeEventConsumer{reader: reader, handler: handler, logger: logger}
}

// Run consumes until the context is cancelled. Every fetched message is
// acknowledged, including ones the handler failed on: the handler has
// already logged and metered the failure, and redelivering a poison record
// forever would stall the whole partition.
func (c *ChangeEventConsumer) Run(ctx context.Context) error {
	c.logger.Info("change event consumer started")
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
				c.logger.Info("change event consumer stopped")
				return nil
			}
			c.logger.Error("fetch failed, backing off", zap.Error(err))
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(time.Second):
			}
			continue
		}

		if err := c.handler(ctx, [][]byte{msg.Value}); err != nil {
			c.logger.Error("batch handler failed",
				zap.String("topic", msg.Topic),
				zap.Int("partition", msg.Partition),
				zap.Int64("offset", msg.Offset),
				zap.Error(err),
			)
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			c.logger.Error("offset commit failed", zap.Error(err))
		}
	}
}

// Close closes the underlying reader.
func (c *ChangeEventConsumer) Close() error {
	return c.reader.Close()
}
