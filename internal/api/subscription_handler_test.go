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
	"github.com/cvelasquez/eduplay-api/internal/domain/entitlement"
	"github.com/cvelasquez/eduplay-api/internal/service"
	"github.com/cvelasquez/eduplay-api/internal/store"
)

func TestGetSubscription(t *testing.T) {
	t.Parallel()

	accountID := uuid.New()

	t.Run("returns subscription with entitlements", func(t *testing.T) {
		t.Parallel()

		subService := &MockSubscriptionService{
			GetFn: func(ctx context.Context, gotAccount uuid.UUID) (*domain.Subscription, *service.Entitlements, error) {
				assert.Equal(t, accountID, gotAccount)
				return &domain.Subscription{AccountID: accountID, Status: domain.SubscriptionStatusTrial},
					&service.Entitlements{
						Status:                   domain.SubscriptionStatusTrial,
						IsActive:                 true,
						DailyActivityLimit:       entitlement.UnlimitedDailyActivities,
						CrownChallengesAvailable: true,
					}, nil
			},
		}
		handler := NewSubscriptionHandler(subService)

		req := newTestRequest("GET", "/api/subscription", nil, accountID, nil)
		recorder := httptest.NewRecorder()

		handler.Get(recorder, req)

		require.Equal(t, http.StatusOK, recorder.Code)
		var resp SubscriptionResponse
		require.NoError(t, json.NewDecoder(recorder.Body).Decode(&resp))
		assert.Equal(t, domain.SubscriptionStatusTrial, resp.Subscription.Status)
		require.NotNil(t, resp.Entitlements)
		assert.True(t, resp.Entitlements.IsActive)
		assert.True(t, resp.Entitlements.CrownChallengesAvailable)
	})

	t.Run("no subscription record", func(t *testing.T) {
		t.Parallel()

		subService := &MockSubscriptionService{
			GetFn: func(ctx context.Context, gotAccount uuid.UUID) (*domain.Subscription, *service.Entitlements, error) {
				return nil, nil, store.ErrSubscriptionNotFound
			},
		}
		handler := NewSubscriptionHandler(subService)

		req := newTestRequest("GET", "/api/subscription", nil, accountID, nil)
		recorder := httptest.NewRecorder()

		handler.Get(recorder, req)

		assert.Equal(t, http.StatusNotFound, recorder.Code)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		t.Parallel()

		handler := NewSubscriptionHandler(&MockSubscriptionService{})

		req := newTestRequest("GET", "/api/subscription", nil, uuid.Nil, nil)
		recorder := httptest.NewRecorder()

		handler.Get(recorder, req)

		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})
}

func TestUpgradeSubscription(t *testing.T) {
	t.Parallel()

	accountID := uuid.New()

	tests := []struct {
		name       string
		payload    map[string]interface{}
		serviceErr error
		wantStatus int
	}{
		{
			name: "valid upgrade",
			payload: map[string]interface{}{
				"plan_id":        "premium_monthly",
				"price_cents":    499,
				"currency":       "USD",
				"billing_cycle":  "monthly",
				"provider":       "app_store",
				"transaction_id": "txn-123",
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "invalid billing cycle",
			payload: map[string]interface{}{
				"plan_id":        "premium_weekly",
				"price_cents":    199,
				"currency":       "USD",
				"billing_cycle":  "weekly",
				"provider":       "app_store",
				"transaction_id": "txn-124",
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "missing transaction id",
			payload: map[string]interface{}{
				"plan_id":       "premium_monthly",
				"price_cents":   499,
				"currency":      "USD",
				"billing_cycle": "monthly",
				"provider":      "app_store",
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "cancelled subscription cannot upgrade",
			payload: map[string]interface{}{
				"plan_id":        "premium_monthly",
				"price_cents":    499,
				"currency":       "USD",
				"billing_cycle":  "monthly",
				"provider":       "app_store",
				"transaction_id": "txn-125",
			},
			serviceErr: entitlement.ErrInvalidTransition,
			wantStatus: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			subService := &MockSubscriptionService{
				UpgradeFn: func(ctx context.Context, gotAccount uuid.UUID, upgrade entitlement.PlanUpgrade) (*domain.Subscription, error) {
					if tt.serviceErr != nil {
						return nil, tt.serviceErr
					}
					assert.Equal(t, accountID, gotAccount)
					assert.Equal(t, "premium_monthly", upgrade.PlanID)
					assert.Equal(t, domain.BillingCycleMonthly, upgrade.BillingCycle)
					return &domain.Subscription{AccountID: accountID, Status: domain.SubscriptionStatusActive}, nil
				},
			}
			handler := NewSubscriptionHandler(subService)

			payloadBytes, err := json.Marshal(tt.payload)
			require.NoError(t, err)

			req := newTestRequest("POST", "/api/subscription/upgrade", bytes.NewBuffer(payloadBytes), accountID, nil)
			recorder := httptest.NewRecorder()

			handler.Upgrade(recorder, req)

			assert.Equal(t, tt.wantStatus, recorder.Code)
		})
	}
}

func TestCancelSubscription(t *testing.T) {
	t.Parallel()

	accountID := uuid.New()
	periodEnd := time.Now().UTC().Add(20 * 24 * time.Hour)

	subService := &MockSubscriptionService{
		CancelFn: func(ctx context.Context, gotAccount uuid.UUID, reason string, immediate bool) (*domain.Subscription, error) {
			assert.Equal(t, "too expensive", reason)
			assert.False(t, immediate)
			return &domain.Subscription{
				AccountID:        accountID,
				Status:           domain.SubscriptionStatusCancelled,
				CurrentPeriodEnd: periodEnd,
			}, nil
		},
	}
	handler := NewSubscriptionHandler(subService)

	body := bytes.NewBufferString(`{"reason": "too expensive", "immediate": false}`)
	req := newTestRequest("POST", "/api/subscription/cancel", body, accountID, nil)
	recorder := httptest.NewRecorder()

	handler.Cancel(recorder, req)

	require.Equal(t, http.StatusOK, recorder.Code)
	var resp SubscriptionResponse
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&resp))
	assert.Equal(t, domain.SubscriptionStatusCancelled, resp.Subscription.Status)
}

func TestPaymentFailureAndRestore(t *testing.T) {
	t.Parallel()

	accountID := uuid.New()

	t.Run("payment failure opens grace window", func(t *testing.T) {
		t.Parallel()

		subService := &MockSubscriptionService{
			HandlePaymentFailureFn: func(ctx context.Context, gotAccount uuid.UUID, graceDays int) (*domain.Subscription, error) {
				assert.Equal(t, 0, graceDays, "zero selects the default grace window")
				return &domain.Subscription{AccountID: accountID, Status: domain.SubscriptionStatusPaymentFailed}, nil
			},
		}
		handler := NewSubscriptionHandler(subService)

		body := bytes.NewBufferString(`{}`)
		req := newTestRequest("POST", "/api/subscription/payment-failed", body, accountID, nil)
		recorder := httptest.NewRecorder()

		handler.PaymentFailure(recorder, req)

		assert.Equal(t, http.StatusOK, recorder.Code)
	})

	t.Run("restore after successful retry", func(t *testing.T) {
		t.Parallel()

		subService := &MockSubscriptionService{
			RestoreFn: func(ctx context.Context, gotAccount uuid.UUID, transactionID string) (*domain.Subscription, error) {
				assert.Equal(t, "txn-retry-1", transactionID)
				return &domain.Subscription{AccountID: accountID, Status: domain.SubscriptionStatusActive}, nil
			},
		}
		handler := NewSubscriptionHandler(subService)

		body := bytes.NewBufferString(`{"transaction_id": "txn-retry-1"}`)
		req := newTestRequest("POST", "/api/subscription/restore", body, accountID, nil)
		recorder := httptest.NewRecorder()

		handler.Restore(recorder, req)

		assert.Equal(t, http.StatusOK, recorder.Code)
	})
}
