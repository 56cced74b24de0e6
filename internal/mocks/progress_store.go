package mocks

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/cvelasquez/eduplay-api/internal/domain"
	"github.com/cvelasquez/eduplay-api/internal/store"
)

type progressKey struct {
	childID    uuid.UUID
	activityID uuid.UUID
}

// MockProgressStore implements store.ProgressStore for testing
type MockProgressStore struct {
	// Function fields for customizable behavior
	CreateFn              func(ctx context.Context, rec *domain.ActivityProgress) error
	GetFn                 func(ctx context.Context, childID, activityID uuid.UUID) (*domain.ActivityProgress, error)
	UpdateFn              func(ctx context.Context, rec *domain.ActivityProgress) error
	ListByChildFn         func(ctx context.Context, childID uuid.UUID) ([]*domain.ActivityProgress, error)
	CountCompletedSinceFn func(ctx context.Context, childID uuid.UUID, since time.Time) (int, error)

	// Data for default implementation
	Records     map[progressKey]*domain.ActivityProgress
	CreateError error
	GetError    error
}

// NewMockProgressStore creates a new mock store with initialized defaults
func NewMockProgressStore() *MockProgressStore {
	return &MockProgressStore{
		Records: make(map[progressKey]*domain.ActivityProgress),
	}
}

// Add inserts a record directly into the backing map for test setup.
func (m *MockProgressStore) Add(rec *domain.ActivityProgress) {
	m.Records[progressKey{rec.ChildID, rec.ActivityID}] = rec
}

// Create implements the ProgressStore interface
func (m *MockProgressStore) Create(ctx context.Context, rec *domain.ActivityProgress) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, rec)
	}
	if m.CreateError != nil {
		return m.CreateError
	}
	key := progressKey{rec.ChildID, rec.ActivityID}
	if _, exists := m.Records[key]; exists {
		return store.ErrDuplicate
	}
	m.Records[key] = rec
	return nil
}

// Get implements the ProgressStore interface
func (m *MockProgressStore) Get(ctx context.Context, childID, activityID uuid.UUID) (*domain.ActivityProgress, error) {
	if m.GetFn != nil {
		return m.GetFn(ctx, childID, activityID)
	}
	if m.GetError != nil {
		return nil, m.GetError
	}
	rec, exists := m.Records[progressKey{childID, activityID}]
	if !exists {
		return nil, store.ErrProgressNotFound
	}
	return rec, nil
}

// GetForUpdate implements the ProgressStore interface; the mock takes no lock.
func (m *MockProgressStore) GetForUpdate(ctx context.Context, childID, activityID uuid.UUID) (*domain.ActivityProgress, error) {
	return m.Get(ctx, childID, activityID)
}

// Update implements the ProgressStore interface
func (m *MockProgressStore) Update(ctx context.Context, rec *domain.ActivityProgress) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, rec)
	}
	key := progressKey{rec.ChildID, rec.ActivityID}
	if _, exists := m.Records[key]; !exists {
		return store.ErrProgressNotFound
	}
	m.Records[key] = rec
	return nil
}

// ListByChild implements the ProgressStore interface
func (m *MockProgressStore) ListByChild(ctx context.Context, childID uuid.UUID) ([]*domain.ActivityProgress, error) {
	if m.ListByChildFn != nil {
		return m.ListByChildFn(ctx, childID)
	}
	if m.GetError != nil {
		return nil, m.GetError
	}
	records := make([]*domain.ActivityProgress, 0)
	for key, rec := range m.Records {
		if key.childID == childID {
			records = append(records, rec)
		}
	}
	return records, nil
}

// CountCompletedSince implements the ProgressStore interface
func (m *MockProgressStore) CountCompletedSince(ctx context.Context, childID uuid.UUID, since time.Time) (int, error) {
	if m.CountCompletedSinceFn != nil {
		return m.CountCompletedSinceFn(ctx, childID, since)
	}
	if m.GetError != nil {
		return 0, m.GetError
	}
	count := 0
	for key, rec := range m.Records {
		if key.childID != childID || rec.CompletedAt == nil {
			continue
		}
		if !rec.CompletedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

// WithTx implements the ProgressStore interface; the mock is not transactional.
func (m *MockProgressStore) WithTx(tx *sql.Tx) store.ProgressStore {
	return m
}
