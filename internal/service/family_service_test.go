package service

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cvelasquez/eduplay-api/internal/domain"
	"github.com/cvelasquez/eduplay-api/internal/mocks"
	"github.com/cvelasquez/eduplay-api/internal/store"
)

func TestNewFamilyService(t *testing.T) {
	t.Parallel()

	t.Run("rejects a nil child store", func(t *testing.T) {
		t.Parallel()
		svc, err := NewFamilyService(nil, slog.Default())
		require.Error(t, err)
		assert.Nil(t, svc)

		var svcErr *ServiceError
		assert.ErrorAs(t, err, &svcErr)
	})

	t.Run("a nil logger falls back to the default", func(t *testing.T) {
		t.Parallel()
		svc, err := NewFamilyService(mocks.NewMockChildStore(), nil)
		require.NoError(t, err)
		assert.NotNil(t, svc)
	})
}

func TestFamilyServiceCreateChild(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("creates and persists a valid profile", func(t *testing.T) {
		t.Parallel()
		childStore := mocks.NewMockChildStore()
		svc, err := NewFamilyService(childStore, slog.Default())
		require.NoError(t, err)

		parentID := uuid.New()
		child, err := svc.CreateChild(ctx, parentID, "Sofia", 5)
		require.NoError(t, err)
		require.NotNil(t, child)

		assert.Equal(t, parentID, child.ParentID)
		assert.Equal(t, "Sofia", child.Name)
		assert.Equal(t, 5, child.AgeYears)
		assert.Contains(t, childStore.Children, child.ID)
	})

	t.Run("rejects an out-of-range age", func(t *testing.T) {
		t.Parallel()
		svc, err := NewFamilyService(mocks.NewMockChildStore(), slog.Default())
		require.NoError(t, err)

		child, err := svc.CreateChild(ctx, uuid.New(), "Sofia", 1)
		assert.ErrorIs(t, err, domain.ErrInvalidChildAge)
		assert.Nil(t, child)
	})

	t.Run("propagates store failures", func(t *testing.T) {
		t.Parallel()
		childStore := mocks.NewMockChildStore()
		childStore.CreateError = store.ErrTransactionFailed

		svc, err := NewFamilyService(childStore, slog.Default())
		require.NoError(t, err)

		_, err = svc.CreateChild(ctx, uuid.New(), "Sofia", 5)
		assert.ErrorIs(t, err, store.ErrTransactionFailed)
	})
}

func TestFamilyServiceGetChild(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	now := time.Now().UTC()

	parentID := uuid.New()
	child, err := domain.NewChild(parentID, "Sofia", 5, now)
	require.NoError(t, err)

	childStore := mocks.NewMockChildStore()
	childStore.Add(child)

	svc, err := NewFamilyService(childStore, slog.Default())
	require.NoError(t, err)

	t.Run("returns an owned profile", func(t *testing.T) {
		t.Parallel()
		got, err := svc.GetChild(ctx, parentID, child.ID)
		require.NoError(t, err)
		assert.Equal(t, child.ID, got.ID)
	})

	t.Run("denies access to another account's profile", func(t *testing.T) {
		t.Parallel()
		got, err := svc.GetChild(ctx, uuid.New(), child.ID)
		assert.ErrorIs(t, err, ErrNotOwned)
		assert.Nil(t, got)
	})

	t.Run("reports a missing profile", func(t *testing.T) {
		t.Parallel()
		_, err := svc.GetChild(ctx, parentID, uuid.New())
		assert.ErrorIs(t, err, store.ErrChildNotFound)
	})
}

func TestFamilyServiceListChildren(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	now := time.Now().UTC()

	parentID := uuid.New()
	childStore := mocks.NewMockChildStore()

	for _, name := range []string{"Sofia", "Mateo"} {
		child, err := domain.NewChild(parentID, name, 6, now)
		require.NoError(t, err)
		childStore.Add(child)
	}
	other, err := domain.NewChild(uuid.New(), "Luna", 4, now)
	require.NoError(t, err)
	childStore.Add(other)

	svc, err := NewFamilyService(childStore, slog.Default())
	require.NoError(t, err)

	children, err := svc.ListChildren(ctx, parentID)
	require.NoError(t, err)
	assert.Len(t, children, 2)
	for _, c := range children {
		assert.Equal(t, parentID, c.ParentID)
	}
}
