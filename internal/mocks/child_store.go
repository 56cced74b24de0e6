package mocks

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/cvelasquez/eduplay-api/internal/domain"
	"github.com/cvelasquez/eduplay-api/internal/store"
)

// MockChildStore implements store.ChildStore for testing
type MockChildStore struct {
	// Function fields for customizable behavior
	CreateFn       func(ctx context.Context, child *domain.Child) error
	GetByIDFn      func(ctx context.Context, id uuid.UUID) (*domain.Child, error)
	ListByParentFn func(ctx context.Context, parentID uuid.UUID) ([]*domain.Child, error)
	UpdateFn       func(ctx context.Context, child *domain.Child) error

	// Data for default implementation, keyed by child ID
	Children    map[uuid.UUID]*domain.Child
	CreateError error
	GetError    error
}

// NewMockChildStore creates a new mock store with initialized defaults
func NewMockChildStore() *MockChildStore {
	return &MockChildStore{
		Children: make(map[uuid.UUID]*domain.Child),
	}
}

// Add inserts a child directly into the backing map for test setup.
func (m *MockChildStore) Add(child *domain.Child) {
	m.Children[child.ID] = child
}

// Create implements the ChildStore interface
func (m *MockChildStore) Create(ctx context.Context, child *domain.Child) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, child)
	}
	if m.CreateError != nil {
		return m.CreateError
	}
	m.Children[child.ID] = child
	return nil
}

// GetByID implements the ChildStore interface
func (m *MockChildStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Child, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	if m.GetError != nil {
		return nil, m.GetError
	}
	child, exists := m.Children[id]
	if !exists {
		return nil, store.ErrChildNotFound
	}
	return child, nil
}

// ListByParent implements the ChildStore interface
func (m *MockChildStore) ListByParent(ctx context.Context, parentID uuid.UUID) ([]*domain.Child, error) {
	if m.ListByParentFn != nil {
		return m.ListByParentFn(ctx, parentID)
	}
	if m.GetError != nil {
		return nil, m.GetError
	}
	children := make([]*domain.Child, 0)
	for _, child := range m.Children {
		if child.ParentID == parentID {
			children = append(children, child)
		}
	}
	return children, nil
}

// Update implements the ChildStore interface
func (m *MockChildStore) Update(ctx context.Context, child *domain.Child) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, child)
	}
	if _, exists := m.Children[child.ID]; !exists {
		return store.ErrChildNotFound
	}
	m.Children[child.ID] = child
	return nil
}

// WithTx implements the ChildStore interface; the mock is not transactional.
func (m *MockChildStore) WithTx(tx *sql.Tx) store.ChildStore {
	return m
}
