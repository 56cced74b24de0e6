package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/cvelasquez/eduplay-api/internal/config"
	"github.com/cvelasquez/eduplay-api/internal/domain/achievement"
	"github.com/cvelasquez/eduplay-api/internal/domain/entitlement"
	"github.com/cvelasquez/eduplay-api/internal/domain/progress"
	"github.com/cvelasquez/eduplay-api/internal/platform/postgres"
	"github.com/cvelasquez/eduplay-api/internal/service"
	"github.com/cvelasquez/eduplay-api/internal/service/auth"
	"github.com/cvelasquez/eduplay-api/internal/store"
)

// application holds the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	// Stores (using interfaces for proper abstraction)
	userStore             store.UserStore
	childStore            store.ChildStore
	subscriptionStore     store.SubscriptionStore
	progressStore         store.ProgressStore
	achievementStore      store.AchievementStore
	childAchievementStore store.ChildAchievementStore

	// Domain engines
	entitlementEngine entitlement.Service
	progressEngine    progress.Service
	achievementEngine achievement.Service

	// Service interfaces
	jwtService          auth.JWTService
	passwordVerifier    auth.PasswordVerifier
	subscriptionService service.SubscriptionService
	familyService       service.FamilyService
	progressService     service.ProgressService
	achievementService  service.AchievementService
}

// newApplication creates a new application instance with all dependencies
// initialized. Configuration, logging, and the database connection must be
// established before this is called.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)

	app.passwordVerifier = auth.NewBcryptVerifier()

	// Stores
	app.userStore = postgres.NewPostgresUserStore(db, logger, bcrypt.DefaultCost)
	app.childStore = postgres.NewPostgresChildStore(db, logger)
	app.subscriptionStore = postgres.NewPostgresSubscriptionStore(db, logger)
	app.progressStore = postgres.NewPostgresProgressStore(db, logger)
	app.achievementStore = postgres.NewPostgresAchievementStore(db, logger)
	app.childAchievementStore = postgres.NewPostgresChildAchievementStore(db, logger)

	// Domain engines
	app.entitlementEngine = entitlement.NewDefaultService()
	app.progressEngine = progress.NewDefaultService()
	app.achievementEngine = achievement.NewDefaultService()

	// Services
	app.subscriptionService, err = service.NewSubscriptionService(
		db,
		app.subscriptionStore,
		app.entitlementEngine,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create subscription service: %w", err)
	}

	app.familyService, err = service.NewFamilyService(app.childStore, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create family service: %w", err)
	}

	app.progressService, err = service.NewProgressService(
		db,
		app.childStore,
		app.progressStore,
		app.subscriptionStore,
		app.progressEngine,
		app.entitlementEngine,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create progress service: %w", err)
	}

	app.achievementService, err = service.NewAchievementService(
		db,
		app.childStore,
		app.achievementStore,
		app.childAchievementStore,
		app.progressStore,
		app.achievementEngine,
		app.progressEngine,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create achievement service: %w", err)
	}

	logger.Info("application initialized successfully")
	return app, nil
}

// Run starts the application server, handling lifecycle and cleanup.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", "error", err)
		}
	}

	app.logger.Info("application shutdown completed")
}
