package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/cvelasquez/eduplay-api/internal/api"
	apiMiddleware "github.com/cvelasquez/eduplay-api/internal/api/middleware"
)

// setupRouter creates and configures the application router with all routes
// and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.NewTraceMiddleware(app.logger))

	authHandler := api.NewAuthHandler(
		app.userStore,
		app.subscriptionService,
		app.jwtService,
		app.passwordVerifier,
	)
	childrenHandler := api.NewChildrenHandler(app.familyService)
	subscriptionHandler := api.NewSubscriptionHandler(app.subscriptionService)
	progressHandler := api.NewProgressHandler(app.progressService, app.achievementService)
	achievementHandler := api.NewAchievementHandler(app.achievementService)

	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)

	r.Route("/api", func(r chi.Router) {
		// Authentication endpoints (public)
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/refresh", authHandler.RefreshToken)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			// Subscription lifecycle
			r.Get("/subscription", subscriptionHandler.Get)
			r.Post("/subscription/upgrade", subscriptionHandler.Upgrade)
			r.Post("/subscription/renew", subscriptionHandler.Renew)
			r.Post("/subscription/cancel", subscriptionHandler.Cancel)
			r.Post("/subscription/payment-failed", subscriptionHandler.PaymentFailure)
			r.Post("/subscription/restore", subscriptionHandler.Restore)

			// Child profiles
			r.Post("/children", childrenHandler.CreateChild)
			r.Get("/children", childrenHandler.ListChildren)
			r.Get("/children/{id}", childrenHandler.GetChild)

			// Activity progress
			r.Post("/children/{id}/activities/{activityID}/attempts", progressHandler.RecordAttempt)
			r.Get("/children/{id}/progress", progressHandler.ListProgress)

			// Achievements
			r.Get("/children/{id}/achievements", achievementHandler.ListAchievements)
			r.Post(
				"/children/{id}/achievements/{achievementID}/celebration",
				achievementHandler.AcknowledgeCelebration,
			)
		})
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response", "error", err)
		}
	})

	return r
}
