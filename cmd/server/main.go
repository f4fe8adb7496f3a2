package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	appauth "github.com/tenantgrid/backend/internal/application/auth"
	appbilling "github.com/tenantgrid/backend/internal/application/billing"
	"github.com/tenantgrid/backend/internal/application/onboarding"
	"github.com/tenantgrid/backend/internal/application/tenantdata"
	"github.com/tenantgrid/backend/internal/domain/billing"
	"github.com/tenantgrid/backend/internal/infrastructure/auth"
	"github.com/tenantgrid/backend/internal/infrastructure/cache"
	"github.com/tenantgrid/backend/internal/infrastructure/config"
	"github.com/tenantgrid/backend/internal/infrastructure/identity"
	"github.com/tenantgrid/backend/internal/infrastructure/logger"
	"github.com/tenantgrid/backend/internal/infrastructure/persistence"
	"github.com/tenantgrid/backend/internal/infrastructure/stream"
	"github.com/tenantgrid/backend/internal/infrastructure/telemetry"
	"github.com/tenantgrid/backend/internal/interfaces/http/handler"
	"github.com/tenantgrid/backend/internal/interfaces/http/middleware"
	"github.com/tenantgrid/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const version = "1.0.0"

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

	log.Info("Starting tenant data platform",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	ctx := context.Background()

	// Metrics
	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.ExportInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
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

	// Record store
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if err := db.Migrate(); err != nil {
		log.Fatal("Failed to migrate record store schema", zap.Error(err))
	}
	log.Info("Database connected")

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
	log.Info("Usage counter store connected")

	// Change-event stream
	changePublisher := stream.NewChangeEventProducer(cfg.Kafka.Brokers, cfg.Kafka.ChangeEventTopic)
	defer func() {
		if err := changePublisher.Close(); err != nil {
			log.Error("Error closing change event producer", zap.Error(err))
		}
	}()

	// Identity directory
	directory := identity.NewDirectory(db.DB)
	if err := directory.Migrate(); err != nil {
		log.Fatal("Failed to migrate directory schema", zap.Error(err))
	}

	// Repositories
	recordRepo := persistence.NewGormRecordRepository(db.DB, changePublisher, log)

	// Token service
	jwtService := auth.NewJWTService(cfg.JWT)

	// Application services
	dataService := tenantdata.NewService(recordRepo, metrics, log)
	billingService := appbilling.NewSummaryService(
		usageStore,
		billing.NewPricePerUnit(cfg.Billing.CostPerUnit),
		metrics,
		log,
	)
	onboardingService := onboarding.NewService(directory, recordRepo, metrics, log)
	loginService := appauth.NewService(directory, jwtService, metrics, log)

	// HTTP server
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(middleware.RequestID(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodyBytes))

	systemHandler := handler.NewSystemHandler(version, log)
	systemHandler.RegisterRoutes(engine)

	rateLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitPerMin, time.Minute)
	r := router.NewRouter(engine,
		router.WithAuthMiddleware(
			middleware.JWTAuthMiddleware(jwtService, log),
			middleware.RateLimit(rateLimiter),
		),
	)
	r.RegisterPublic(handler.NewOnboardingHandler(onboardingService, log))
	r.RegisterPublic(handler.NewAuthHandler(loginService, log))
	r.Register(handler.NewTenantDataHandler(dataService, log))
	r.Register(handler.NewBillingHandler(billingService, log))
	r.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Forced shutdown", zap.Error(err))
	}
	log.Info("Server stopped")
}
