package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/tenantgrid/backend/internal/application/metering"
	"github.com/tenantgrid/backend/internal/infrastructure/cache"
	"github.com/tenantgrid/backend/internal/infrastructure/config"
	"github.com/tenantgrid/backend/internal/infrastructure/logger"
	"github.com/tenantgrid/backend/internal/infrastructure/stream"
	"github.com/tenantgrid/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting usage meter",
		zap.Strings("brokers", cfg.Kafka.Brokers),
		zap.String("topic", cfg.Kafka.ChangeEventTopic),
		zap.String("group", cfg.Kafka.ConsumerGroup),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Metrics
	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.ExportInterval,
		ServiceName:       cfg.Telemetry.ServiceName + "-meter",
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize metrics", zap.Error(err))
	}
	defer func() {
		if err := meterProvider.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down meter provider", zap.Error(err))
		}
	}()
	metrics, err := telemetry.NewPlatformMetrics(meterProvider)
	if err != nil {
		log.Fatal("Failed to create platform metrics", zap.Error(err))
	}

	// Usage counter store
	usageStore, err := cache.NewRedisUsageStore(cache.RedisConfig{
		Addr:      cfg.Redis.Addr(),
		Password:  cfg.Redis.Password,
		DB:        cfg.Redis.DB,
		KeyPrefix: cfg.Redis.KeyPrefix,
	})
	if err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer func() {
		if err := usageStore.Close(); err != nil {
			log.Error("Error closing Redis client", zap.Error(err))
		}
	}()

	// Billing notice queue
	noticeProducer := stream.NewNoticeProducer(cfg.Kafka.Brokers, cfg.Kafka.BillingTopic)
	defer func() {
		if err := noticeProducer.Close(); err != nil {
			log.Error("Error closing notice producer", zap.Error(err))
		}
	}()

	// Meter service and consumer loop
	meterService := metering.NewService(usageStore, noticeProducer, metrics, log)
	consumer := stream.NewChangeEventConsumer(
		cfg.Kafka.Brokers,
		cfg.Kafka.ChangeEventTopic,
		cfg.Kafka.ConsumerGroup,
		meterService.HandleBatch,
		log,
	)
	defer func() {
		if err := consumer.Close(); err != nil {
			log.Error("Error closing consumer", zap.Error(err))
		}
	}()

	if err := consumer.Run(ctx); err != nil {
		log.Fatal("Consumer terminated", zap.Error(err))
	}
	log.Info("Usage meter stopped")
}
