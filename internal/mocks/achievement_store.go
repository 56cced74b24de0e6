package mocks

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/cvelasquez/eduplay-api/internal/domain"
	"github.com/cvelasquez/eduplay-api/internal/store"
)

// MockAchievementStore implements store.AchievementStore for testing. The
// catalog is backed by a plain slice populated during test setup.
type MockAchievementStore struct {
	// Function fields for customizable behavior
	GetByIDFn    func(ctx context.Context, id uuid.UUID) (*domain.Achievement, error)
	ListAllFn    func(ctx context.Context) ([]*domain.Achievement, error)
	ListForAgeFn func(ctx context.Context, ageYears int) ([]*domain.Achievement, error)

	Catalog  []*domain.Achievement
	GetError error
}

// NewMockAchievementStore creates a new mock store with initialized defaults
func NewMockAchievementStore() *MockAchievementStore {
	return &MockAchievementStore{}
}

// GetByID implements the AchievementStore interface
func (m *MockAchievementStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Achievement, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	if m.GetError != nil {
		return nil, m.GetError
	}
	for _, def := range m.Catalog {
		if def.ID == id {
			return def, nil
		}
	}
	return nil, store.ErrAchievementNotFound
}

// ListAll implements the AchievementStore interface
func (m *MockAchievementStore) ListAll(ctx context.Context) ([]*domain.Achievement, error) {
	if m.ListAllFn != nil {
		return m.ListAllFn(ctx)
	}
	if m.GetError != nil {
		return nil, m.GetError
	}
	return append([]*domain.Achievement{}, m.Catalog...), nil
}

// ListForAge implements the AchievementStore interface
func (m *MockAchievementStore) ListForAge(ctx context.Context, ageYears int) ([]*domain.Achievement, error) {
	if m.ListForAgeFn != nil {
		return m.ListForAgeFn(ctx, ageYears)
	}
	if m.GetError != nil {
		return nil, m.GetError
	}
	defs := make([]*domain.Achievement, 0)
	for _, def := range m.Catalog {
		if def.MinAgeYears > ageYears {
			continue
		}
		if def.MaxAgeYears != 0 && def.MaxAgeYears < ageYears {
			continue
		}
		defs = append(defs, def)
	}
	return defs, nil
}

// WithTx implements the AchievementStore interface; the mock is not transactional.
func (m *MockAchievementStore) WithTx(tx *sql.Tx) store.AchievementStore {
	return m
}

type childAchievementKey struct {
	childID       uuid.UUID
	achievementID uuid.UUID
}

// MockChildAchievementStore implements store.ChildAchievementStore for testing
type MockChildAchievementStore struct {
	// Function fields for customizable behavior
	CreateFn      func(ctx context.Context, state *domain.ChildAchievement) error
	GetFn         func(ctx context.Context, childID, achievementID uuid.UUID) (*domain.ChildAchievement, error)
	UpdateFn      func(ctx context.Context, state *domain.ChildAchievement) error
	ListByChildFn func(ctx context.Context, childID uuid.UUID) ([]*domain.ChildAchievement, error)

	States      map[childAchievementKey]*domain.ChildAchievement
	CreateError error
	GetError    error
}

// NewMockChildAchievementStore creates a new mock store with initialized defaults
func NewMockChildAchievementStore() *MockChildAchievementStore {
	return &MockChildAchievementStore{
		States: make(map[childAchievementKey]*domain.ChildAchievement),
	}
}

// Add inserts a state directly into the backing map for test setup.
func (m *MockChildAchievementStore) Add(state *domain.ChildAchievement) {
	m.States[childAchievementKey{state.ChildID, state.AchievementID}] = state
}

// Create implements the ChildAchievementStore interface
func (m *MockChildAchievementStore) Create(ctx context.Context, state *domain.ChildAchievement) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, state)
	}
	if m.CreateError != nil {
		return m.CreateError
	}
	key := childAchievementKey{state.ChildID, state.AchievementID}
	if _, exists := m.States[key]; exists {
		return store.ErrDuplicate
	}
	m.States[key] = state
	return nil
}

// Get implements the ChildAchievementStore interface
func (m *MockChildAchievementStore) Get(ctx context.Context, childID, achievementID uuid.UUID) (*domain.ChildAchievement, error) {
	if m.GetFn != nil {
		return m.GetFn(ctx, childID, achievementID)
	}
	if m.GetError != nil {
		return nil, m.GetError
	}
	state, exists := m.States[childAchievementKey{childID, achievementID}]
	if !exists {
		return nil, store.ErrChildAchievementNotFound
	}
	return state, nil
}

// Update implements the ChildAchievementStore interface
func (m *MockChildAchievementStore) Update(ctx context.Context, state *domain.ChildAchievement) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, state)
	}
	key := childAchievementKey{state.ChildID, state.AchievementID}
	if _, exists := m.States[key]; !exists {
		return store.ErrChildAchievementNotFound
	}
	m.States[key] = state
	return nil
}

// ListByChild implements the ChildAchievementStore interface
func (m *MockChildAchievementStore) ListByChild(ctx context.Context, childID uuid.UUID) ([]*domain.ChildAchievement, error) {
	if m.ListByChildFn != nil {
		return m.ListByChildFn(ctx, childID)
	}
	if m.GetError != nil {
		return nil, m.GetError
	}
	states := make([]*domain.ChildAchievement, 0)
	for key, state := range m.States {
		if key.childID == childID {
			states = append(states, state)
		}
	}
	return states, nil
}

// WithTx implements the ChildAchievementStore interface; the mock is not transactional.
func (m *MockChildAchievementStore) WithTx(tx *sql.Tx) store.ChildAchievementStore {
	return m
}
