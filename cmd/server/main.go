// Package main implements the entry point for the EduPlay API server,
// which manages parent accounts, child profiles, subscriptions, activity
// progress, and achievements for the learning app.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/cvelasquez/eduplay-api/internal/config"
	"github.com/cvelasquez/eduplay-api/internal/platform/logger"
	"github.com/cvelasquez/eduplay-api/internal/platform/postgres"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}

func run() error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	appLogger.Info("server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel)

	db, err := setupDatabase(cfg, appLogger)
	if err != nil {
		return err
	}

	if os.Getenv("EDUPLAY_SKIP_MIGRATIONS") == "" {
		if err := postgres.RunMigrations(ctx, db); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		appLogger.Info("database migrations applied")
	}

	app, err := newApplication(cfg, appLogger, db)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	return app.Run(ctx)
}
