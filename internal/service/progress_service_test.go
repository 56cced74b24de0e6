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
	"github.com/cvelasquez/eduplay-api/internal/domain/progress"
	"github.com/cvelasquez/eduplay-api/internal/mocks"
	"github.com/cvelasquez/eduplay-api/internal/store"
)

type progressServiceFixture struct {
	svc           *progressServiceImpl
	childStore    *mocks.MockChildStore
	progressStore *mocks.MockProgressStore
	subStore      *mocks.MockSubscriptionStore
}

func newProgressServiceFixture(t *testing.T) *progressServiceFixture {
	t.Helper()

	childStore := mocks.NewMockChildStore()
	progressStore := mocks.NewMockProgressStore()
	subStore := mocks.NewMockSubscriptionStore()

	svc, err := NewProgressService(
		&sql.DB{},
		childStore,
		progressStore,
		subStore,
		progress.NewDefaultService(),
		entitlement.NewDefaultService(),
		slog.Default(),
	)
	require.NoError(t, err)

	return &progressServiceFixture{
		svc:           svc.(*progressServiceImpl),
		childStore:    childStore,
		progressStore: progressStore,
		subStore:      subStore,
	}
}

// addChild seeds an owned child profile and returns it.
func (f *progressServiceFixture) addChild(t *testing.T, parentID uuid.UUID) *domain.Child {
	t.Helper()
	child, err := domain.NewChild(parentID, "Sofia", 5, time.Now().UTC())
	require.NoError(t, err)
	f.childStore.Add(child)
	return child
}

// completeActivities seeds n completed records for the child, finished at the
// given time.
func (f *progressServiceFixture) completeActivities(t *testing.T, childID uuid.UUID, n int, at time.Time) {
	t.Helper()
	engine := progress.NewDefaultService()
	for i := 0; i < n; i++ {
		rec, err := engine.NewRecord(childID, uuid.New(), 5, domain.DifficultyEasy, at)
		require.NoError(t, err)
		done, err := engine.RecordAttempt(rec, progress.Attempt{
			QuestionsAnswered: 5,
			CorrectAnswers:    5,
		}, at)
		require.NoError(t, err)
		f.progressStore.Add(done)
	}
}

func TestNewProgressService(t *testing.T) {
	t.Parallel()

	t.Run("rejects nil dependencies", func(t *testing.T) {
		t.Parallel()
		_, err := NewProgressService(
			nil,
			mocks.NewMockChildStore(),
			mocks.NewMockProgressStore(),
			mocks.NewMockSubscriptionStore(),
			progress.NewDefaultService(),
			entitlement.NewDefaultService(),
			slog.Default(),
		)
		require.Error(t, err)

		_, err = NewProgressService(
			&sql.DB{},
			nil,
			mocks.NewMockProgressStore(),
			mocks.NewMockSubscriptionStore(),
			progress.NewDefaultService(),
			entitlement.NewDefaultService(),
			slog.Default(),
		)
		require.Error(t, err)

		_, err = NewProgressService(
			&sql.DB{},
			mocks.NewMockChildStore(),
			mocks.NewMockProgressStore(),
			mocks.NewMockSubscriptionStore(),
			nil,
			entitlement.NewDefaultService(),
			slog.Default(),
		)
		require.Error(t, err)
	})
}

func TestRecordAttemptPreconditions(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	input := AttemptInput{
		TotalQuestions: 5,
		Difficulty:     domain.DifficultyEasy,
		Attempt:        progress.Attempt{QuestionsAnswered: 5, CorrectAnswers: 5},
	}

	t.Run("rejects another account's child", func(t *testing.T) {
		t.Parallel()
		f := newProgressServiceFixture(t)
		child := f.addChild(t, uuid.New())

		_, err := f.svc.RecordAttempt(ctx, uuid.New(), child.ID, uuid.New(), input)
		assert.ErrorIs(t, err, ErrNotOwned)
	})

	t.Run("reports a missing child", func(t *testing.T) {
		t.Parallel()
		f := newProgressServiceFixture(t)

		_, err := f.svc.RecordAttempt(ctx, uuid.New(), uuid.New(), uuid.New(), input)
		assert.ErrorIs(t, err, store.ErrChildNotFound)
	})

	t.Run("free tier stops at the daily limit", func(t *testing.T) {
		t.Parallel()
		f := newProgressServiceFixture(t)
		now := time.Date(2025, 6, 1, 15, 0, 0, 0, time.UTC)
		f.svc.timeFn = func() time.Time { return now }

		parentID := uuid.New()
		child := f.addChild(t, parentID)

		// No subscription record at all: the account is free tier.
		f.completeActivities(t, child.ID, 10, now)

		_, err := f.svc.RecordAttempt(ctx, parentID, child.ID, uuid.New(), input)
		assert.ErrorIs(t, err, ErrDailyLimitReached)
	})
}

func TestCheckDailyLimit(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 15, 0, 0, 0, time.UTC)

	t.Run("free tier under the limit passes", func(t *testing.T) {
		t.Parallel()
		f := newProgressServiceFixture(t)
		child := f.addChild(t, uuid.New())
		f.completeActivities(t, child.ID, 9, now)

		assert.NoError(t, f.svc.checkDailyLimit(ctx, child, now))
	})

	t.Run("free tier at the limit is rejected", func(t *testing.T) {
		t.Parallel()
		f := newProgressServiceFixture(t)
		child := f.addChild(t, uuid.New())
		f.completeActivities(t, child.ID, 10, now)

		assert.ErrorIs(t, f.svc.checkDailyLimit(ctx, child, now), ErrDailyLimitReached)
	})

	t.Run("yesterday's completions do not count", func(t *testing.T) {
		t.Parallel()
		f := newProgressServiceFixture(t)
		child := f.addChild(t, uuid.New())
		f.completeActivities(t, child.ID, 10, now.AddDate(0, 0, -1))

		assert.NoError(t, f.svc.checkDailyLimit(ctx, child, now))
	})

	t.Run("an active subscription lifts the limit", func(t *testing.T) {
		t.Parallel()
		f := newProgressServiceFixture(t)
		parentID := uuid.New()
		child := f.addChild(t, parentID)
		f.completeActivities(t, child.ID, 25, now)

		sub, err := entitlement.NewDefaultService().NewTrial(parentID, now)
		require.NoError(t, err)
		f.subStore.Subscriptions[parentID] = sub

		assert.NoError(t, f.svc.checkDailyLimit(ctx, child, now))
	})

	t.Run("subscription store failures propagate", func(t *testing.T) {
		t.Parallel()
		f := newProgressServiceFixture(t)
		child := f.addChild(t, uuid.New())
		f.subStore.GetError = store.ErrTransactionFailed

		assert.ErrorIs(t, f.svc.checkDailyLimit(ctx, child, now), store.ErrTransactionFailed)
	})
}

func TestListForChild(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("returns the child's records", func(t *testing.T) {
		t.Parallel()
		f := newProgressServiceFixture(t)
		parentID := uuid.New()
		child := f.addChild(t, parentID)
		f.completeActivities(t, child.ID, 3, time.Now().UTC())

		records, err := f.svc.ListForChild(ctx, parentID, child.ID)
		require.NoError(t, err)
		assert.Len(t, records, 3)
	})

	t.Run("rejects another account's child", func(t *testing.T) {
		t.Parallel()
		f := newProgressServiceFixture(t)
		child := f.addChild(t, uuid.New())

		_, err := f.svc.ListForChild(ctx, uuid.New(), child.ID)
		assert.ErrorIs(t, err, ErrNotOwned)
	})
}
