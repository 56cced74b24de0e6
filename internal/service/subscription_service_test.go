package service

import (
	"context"
	"database/sql"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cvelasquez/eduplay-api/internal/domain"
	"github.com/cvelasquez/eduplay-api/internal/domain/entitlement"
	"github.com/cvelasquez/eduplay-api/internal/mocks"
	"github.com/cvelasquez/eduplay-api/internal/store"
)

func TestNewSubscriptionService(t *testing.T) {
	t.Parallel()

	db := &sql.DB{}
	subStore := mocks.NewMockSubscriptionStore()
	engine := entitlement.NewDefaultService()

	testCases := []struct {
		name     string
		db       *sql.DB
		subStore store.SubscriptionStore
		engine   entitlement.Service
		wantErr  bool
	}{
		{name: "all dependencies", db: db, subStore: subStore, engine: engine},
		{name: "nil db", db: nil, subStore: subStore, engine: engine, wantErr: true},
		{name: "nil store", db: db, subStore: nil, engine: engine, wantErr: true},
		{name: "nil engine", db: db, subStore: subStore, engine: nil, wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			svc, err := NewSubscriptionService(tc.db, tc.subStore, tc.engine, slog.Default())
			if tc.wantErr {
				require.Error(t, err)
				var svcErr *ServiceError
				assert.ErrorAs(t, err, &svcErr)
				assert.Nil(t, svc)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, svc)
		})
	}
}

func TestStartTrial(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	newService := func(t *testing.T, subStore *mocks.MockSubscriptionStore) SubscriptionService {
		t.Helper()
		svc, err := NewSubscriptionService(
			&sql.DB{}, subStore, entitlement.NewDefaultService(), slog.Default())
		require.NoError(t, err)
		return svc
	}

	t.Run("creates and persists the trial record", func(t *testing.T) {
		t.Parallel()
		subStore := mocks.NewMockSubscriptionStore()
		svc := newService(t, subStore)

		accountID := uuid.New()
		sub, err := svc.StartTrial(ctx, accountID)
		require.NoError(t, err)
		require.NotNil(t, sub)

		assert.Equal(t, accountID, sub.AccountID)
		assert.Equal(t, domain.SubscriptionStatusTrial, sub.Status)
		assert.Contains(t, subStore.Subscriptions, accountID)
	})

	t.Run("one subscription per account", func(t *testing.T) {
		t.Parallel()
		subStore := mocks.NewMockSubscriptionStore()
		svc := newService(t, subStore)

		accountID := uuid.New()
		_, err := svc.StartTrial(ctx, accountID)
		require.NoError(t, err)

		_, err = svc.StartTrial(ctx, accountID)
		assert.ErrorIs(t, err, store.ErrSubscriptionExists)
	})

	t.Run("rejects an empty account ID", func(t *testing.T) {
		t.Parallel()
		svc := newService(t, mocks.NewMockSubscriptionStore())

		_, err := svc.StartTrial(ctx, uuid.Nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, entitlement.ErrEmptyAccountID)
	})
}

func TestSubscriptionServiceGet(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	engine := entitlement.NewDefaultService()

	newService := func(t *testing.T, subStore *mocks.MockSubscriptionStore) SubscriptionService {
		t.Helper()
		svc, err := NewSubscriptionService(&sql.DB{}, subStore, engine, slog.Default())
		require.NoError(t, err)
		return svc
	}

	t.Run("derives entitlements for a live trial", func(t *testing.T) {
		t.Parallel()
		subStore := mocks.NewMockSubscriptionStore()
		svc := newService(t, subStore)

		accountID := uuid.New()
		_, err := svc.StartTrial(ctx, accountID)
		require.NoError(t, err)

		sub, ent, err := svc.Get(ctx, accountID)
		require.NoError(t, err)
		require.NotNil(t, sub)
		require.NotNil(t, ent)

		assert.Equal(t, domain.SubscriptionStatusTrial, ent.Status)
		assert.True(t, ent.IsActive)
		assert.False(t, ent.IsExpired)
		assert.Equal(t, entitlement.UnlimitedDailyActivities, ent.DailyActivityLimit)
		assert.True(t, ent.CrownChallengesAvailable)
		assert.Equal(t, 3, ent.DaysUntilExpiry)
	})

	t.Run("lapsed records fall back to the free tier", func(t *testing.T) {
		t.Parallel()
		accountID := uuid.New()
		past := time.Now().UTC().AddDate(0, 0, -30)

		sub, err := engine.NewTrial(accountID, past)
		require.NoError(t, err)

		subStore := mocks.NewMockSubscriptionStore()
		subStore.Subscriptions[accountID] = sub
		svc := newService(t, subStore)

		_, ent, err := svc.Get(ctx, accountID)
		require.NoError(t, err)
		assert.False(t, ent.IsActive)
		assert.True(t, ent.IsExpired)
		assert.Equal(t, 10, ent.DailyActivityLimit)
		assert.False(t, ent.CrownChallengesAvailable)
	})

	t.Run("missing subscription surfaces the store error", func(t *testing.T) {
		t.Parallel()
		svc := newService(t, mocks.NewMockSubscriptionStore())

		_, _, err := svc.Get(ctx, uuid.New())
		assert.ErrorIs(t, err, store.ErrSubscriptionNotFound)
	})
}
