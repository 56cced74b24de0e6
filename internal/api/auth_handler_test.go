package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cvelasquez/eduplay-api/internal/domain"
	"github.com/cvelasquez/eduplay-api/internal/mocks"
	"github.com/cvelasquez/eduplay-api/internal/service/auth"
)

func TestRegister(t *testing.T) {
	t.Parallel()

	// Test cases
	tests := []struct {
		name       string
		payload    map[string]interface{}
		wantStatus int
		wantToken  bool
	}{
		{
			name: "valid registration",
			payload: map[string]interface{}{
				"email":        "parent@example.com",
				"display_name": "Carmen",
				"password":     "password1234567",
			},
			wantStatus: http.StatusCreated,
			wantToken:  true,
		},
		{
			name: "invalid email",
			payload: map[string]interface{}{
				"email":        "invalid-email",
				"display_name": "Carmen",
				"password":     "password1234567",
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "password too short",
			payload: map[string]interface{}{
				"email":        "parent2@example.com",
				"display_name": "Carmen",
				"password":     "short",
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "missing display name",
			payload: map[string]interface{}{
				"email":    "parent3@example.com",
				"password": "password1234567",
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "missing password",
			payload: map[string]interface{}{
				"email":        "parent4@example.com",
				"display_name": "Carmen",
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "duplicate email",
			payload: map[string]interface{}{
				"email":        "taken@example.com",
				"display_name": "Carmen",
				"password":     "password1234567",
			},
			wantStatus: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			userStore := mocks.NewMockUserStore()
			existing, err := domain.NewUser("taken@example.com", "Taken", "password1234567", time.Now().UTC())
			require.NoError(t, err)
			require.NoError(t, userStore.Create(context.Background(), existing))

			subService := &MockSubscriptionService{}
			jwtService := &mocks.MockJWTService{Token: "test-token", RefreshToken: "test-refresh"}
			passwordVerifier := &mocks.MockPasswordVerifier{ShouldSucceed: true}

			handler := NewAuthHandler(userStore, subService, jwtService, passwordVerifier)

			payloadBytes, err := json.Marshal(tt.payload)
			require.NoError(t, err)

			req := httptest.NewRequest("POST", "/api/auth/register", bytes.NewBuffer(payloadBytes))
			req.Header.Set("Content-Type", "application/json")
			recorder := httptest.NewRecorder()

			handler.Register(recorder, req)

			assert.Equal(t, tt.wantStatus, recorder.Code)

			if tt.wantToken {
				var authResp AuthResponse
				err = json.NewDecoder(recorder.Body).Decode(&authResp)
				require.NoError(t, err)
				assert.NotEqual(t, uuid.Nil, authResp.UserID)
				assert.Equal(t, "test-token", authResp.AccessToken)
				assert.Equal(t, "test-refresh", authResp.RefreshToken)
				assert.Equal(t, 1, subService.StartTrialCallCount,
					"registration should start the account's trial")
			}
		})
	}
}

func TestLogin(t *testing.T) {
	t.Parallel()

	email := "parent@example.com"
	password := "password1234567"

	newHandler := func(verifierSucceeds bool) *AuthHandler {
		userStore := mocks.NewMockUserStore()
		user, err := domain.NewUser(email, "Carmen", password, time.Now().UTC())
		if err != nil {
			panic(err)
		}
		if err := userStore.Create(context.Background(), user); err != nil {
			panic(err)
		}

		return NewAuthHandler(
			userStore,
			&MockSubscriptionService{},
			&mocks.MockJWTService{Token: "test-token", RefreshToken: "test-refresh"},
			&mocks.MockPasswordVerifier{ShouldSucceed: verifierSucceeds},
		)
	}

	tests := []struct {
		name            string
		payload         map[string]interface{}
		verifierSuccess bool
		wantStatus      int
	}{
		{
			name:            "valid credentials",
			payload:         map[string]interface{}{"email": email, "password": password},
			verifierSuccess: true,
			wantStatus:      http.StatusOK,
		},
		{
			name:            "wrong password",
			payload:         map[string]interface{}{"email": email, "password": "wrong-password"},
			verifierSuccess: false,
			wantStatus:      http.StatusUnauthorized,
		},
		{
			name:            "unknown email",
			payload:         map[string]interface{}{"email": "nobody@example.com", "password": password},
			verifierSuccess: true,
			wantStatus:      http.StatusUnauthorized,
		},
		{
			name:            "malformed email",
			payload:         map[string]interface{}{"email": "nope", "password": password},
			verifierSuccess: true,
			wantStatus:      http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			payloadBytes, err := json.Marshal(tt.payload)
			require.NoError(t, err)

			req := httptest.NewRequest("POST", "/api/auth/login", bytes.NewBuffer(payloadBytes))
			req.Header.Set("Content-Type", "application/json")
			recorder := httptest.NewRecorder()

			newHandler(tt.verifierSuccess).Login(recorder, req)

			assert.Equal(t, tt.wantStatus, recorder.Code)
		})
	}
}

func TestRefreshTokenEndpoint(t *testing.T) {
	t.Parallel()

	userID := uuid.New()

	t.Run("valid refresh token", func(t *testing.T) {
		t.Parallel()

		jwtService := &mocks.MockJWTService{
			Token:        "new-access",
			RefreshToken: "new-refresh",
			Claims:       &auth.Claims{UserID: userID, TokenType: "refresh"},
		}
		handler := NewAuthHandler(
			mocks.NewMockUserStore(),
			&MockSubscriptionService{},
			jwtService,
			&mocks.MockPasswordVerifier{ShouldSucceed: true},
		)

		body := bytes.NewBufferString(`{"refresh_token": "old-refresh"}`)
		req := httptest.NewRequest("POST", "/api/auth/refresh", body)
		recorder := httptest.NewRecorder()

		handler.RefreshToken(recorder, req)

		require.Equal(t, http.StatusOK, recorder.Code)
		var resp RefreshTokenResponse
		require.NoError(t, json.NewDecoder(recorder.Body).Decode(&resp))
		assert.Equal(t, "new-access", resp.AccessToken)
		assert.Equal(t, "new-refresh", resp.RefreshToken)
	})

	t.Run("expired refresh token", func(t *testing.T) {
		t.Parallel()

		jwtService := &mocks.MockJWTService{ValidateErr: auth.ErrExpiredRefreshToken}
		handler := NewAuthHandler(
			mocks.NewMockUserStore(),
			&MockSubscriptionService{},
			jwtService,
			&mocks.MockPasswordVerifier{ShouldSucceed: true},
		)

		body := bytes.NewBufferString(`{"refresh_token": "stale"}`)
		req := httptest.NewRequest("POST", "/api/auth/refresh", body)
		recorder := httptest.NewRecorder()

		handler.RefreshToken(recorder, req)

		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})

	t.Run("missing refresh token", func(t *testing.T) {
		t.Parallel()

		handler := NewAuthHandler(
			mocks.NewMockUserStore(),
			&MockSubscriptionService{},
			&mocks.MockJWTService{},
			&mocks.MockPasswordVerifier{ShouldSucceed: true},
		)

		body := bytes.NewBufferString(`{}`)
		req := httptest.NewRequest("POST", "/api/auth/refresh", body)
		recorder := httptest.NewRecorder()

		handler.RefreshToken(recorder, req)

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})
}
