package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cvelasquez/eduplay-api/internal/domain"
	"github.com/cvelasquez/eduplay-api/internal/domain/entitlement"
	"github.com/cvelasquez/eduplay-api/internal/service"
	"github.com/cvelasquez/eduplay-api/internal/service/auth"
	"github.com/cvelasquez/eduplay-api/internal/store"
)

func TestMapErrorToStatusCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid token", auth.ErrInvalidToken, http.StatusUnauthorized},
		{"expired token", auth.ErrExpiredToken, http.StatusUnauthorized},
		{"expired refresh token", auth.ErrExpiredRefreshToken, http.StatusUnauthorized},
		{"unauthorized", domain.ErrUnauthorized, http.StatusUnauthorized},
		{"not owned", service.ErrNotOwned, http.StatusForbidden},
		{"daily limit reached", service.ErrDailyLimitReached, http.StatusForbidden},
		{"user not found", store.ErrUserNotFound, http.StatusNotFound},
		{"child not found", store.ErrChildNotFound, http.StatusNotFound},
		{"subscription not found", store.ErrSubscriptionNotFound, http.StatusNotFound},
		{"achievement not found", store.ErrAchievementNotFound, http.StatusNotFound},
		{"email exists", store.ErrEmailExists, http.StatusConflict},
		{"subscription exists", store.ErrSubscriptionExists, http.StatusConflict},
		{"invalid transition", entitlement.ErrInvalidTransition, http.StatusConflict},
		{"no celebration pending", service.ErrNoCelebrationPending, http.StatusConflict},
		{"invalid entity", store.ErrInvalidEntity, http.StatusBadRequest},
		{"validation", domain.ErrValidation, http.StatusBadRequest},
		{"invalid id", domain.ErrInvalidID, http.StatusBadRequest},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError},
		{"wrapped not found", fmt.Errorf("loading child: %w", store.ErrChildNotFound), http.StatusNotFound},
		{"wrapped limit", fmt.Errorf("recording attempt: %w", service.ErrDailyLimitReached), http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, MapErrorToStatusCode(tt.err))
		})
	}
}

func TestGetSafeErrorMessage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil error", nil, "An unexpected error occurred"},
		{"invalid token", auth.ErrInvalidToken, "Invalid token"},
		{"not owned", service.ErrNotOwned, "This child profile belongs to another account"},
		{"daily limit", service.ErrDailyLimitReached, "Daily activity limit reached"},
		{"child not found", store.ErrChildNotFound, "Child profile not found"},
		{"email exists", store.ErrEmailExists, "Email already exists"},
		{"invalid transition", entitlement.ErrInvalidTransition, "Subscription cannot make that transition"},
		{"unknown error with internals", errors.New("pq: connection refused host=10.0.0.5"), "An unexpected error occurred"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, GetSafeErrorMessage(tt.err))
		})
	}

	t.Run("validation error keeps field context", func(t *testing.T) {
		t.Parallel()
		err := domain.NewValidationError("age_years", "must be between 2 and 12", domain.ErrValidation)
		msg := GetSafeErrorMessage(err)
		assert.Contains(t, msg, "age_years")
		assert.Contains(t, msg, "must be between 2 and 12")
	})
}

func TestSanitizeValidationError(t *testing.T) {
	t.Parallel()

	t.Run("extracts field and tag", func(t *testing.T) {
		t.Parallel()
		err := errors.New(
			"Key: 'RegisterRequest.Email' Error:Field validation for 'Email' failed on the 'email' tag")
		assert.Equal(t, "Invalid Email: invalid email format", SanitizeValidationError(err))
	})

	t.Run("falls back on unexpected shape", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "Validation error", SanitizeValidationError(errors.New("random failure")))
	})
}
