// Command migrate creates or updates the platform's database schema: the
// tenant record store and the identity directory.
package main

import (
	"flag"

	"github.com/tenantgrid/backend/internal/infrastructure/config"
	"github.com/tenantgrid/backend/internal/infrastructure/identity"
	"github.com/tenantgrid/backend/internal/infrastructure/logger"
	"github.com/tenantgrid/backend/internal/infrastructure/persistence"
	"go.uber.org/zap"
)

func main() {
	var logLevel string
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	log, err := logger.New(&logger.Config{
		Level:  logLevel,
		Format: "console",
		Output: "stdout",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	db, err := persistence.NewDatabase(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()

	if err := db.Migrate(); err != nil {
		log.Fatal("Record store migration failed", zap.Error(err))
	}
	log.Info("Record store schema up to date")

	if err := identity.NewDirectory(db.DB).Migrate(); err != nil {
		log.Fatal("Directory migration failed", zap.Error(err))
	}
	log.Info("Directory schema up to date")
}
