package mocks

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/cvelasquez/eduplay-api/internal/domain"
	"github.com/cvelasquez/eduplay-api/internal/store"
)

// MockSubscriptionStore implements store.SubscriptionStore for testing
type MockSubscriptionStore struct {
	// Function fields for customizable behavior
	CreateFn         func(ctx context.Context, sub *domain.Subscription) error
	GetByAccountIDFn func(ctx context.Context, accountID uuid.UUID) (*domain.Subscription, error)
	GetForUpdateFn   func(ctx context.Context, accountID uuid.UUID) (*domain.Subscription, error)
	UpdateFn         func(ctx context.Context, sub *domain.Subscription) error

	// Data for default implementation, keyed by account ID
	Subscriptions map[uuid.UUID]*domain.Subscription
	CreateError   error
	GetError      error
}

// NewMockSubscriptionStore creates a new mock store with initialized defaults
func NewMockSubscriptionStore() *MockSubscriptionStore {
	return &MockSubscriptionStore{
		Subscriptions: make(map[uuid.UUID]*domain.Subscription),
	}
}

// Create implements the SubscriptionStore interface
func (m *MockSubscriptionStore) Create(ctx context.Context, sub *domain.Subscription) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, sub)
	}
	if m.CreateError != nil {
		return m.CreateError
	}
	if _, exists := m.Subscriptions[sub.AccountID]; exists {
		return store.ErrSubscriptionExists
	}
	m.Subscriptions[sub.AccountID] = sub
	return nil
}

// GetByAccountID implements the SubscriptionStore interface
func (m *MockSubscriptionStore) GetByAccountID(ctx context.Context, accountID uuid.UUID) (*domain.Subscription, error) {
	if m.GetByAccountIDFn != nil {
		return m.GetByAccountIDFn(ctx, accountID)
	}
	if m.GetError != nil {
		return nil, m.GetError
	}
	sub, exists := m.Subscriptions[accountID]
	if !exists {
		return nil, store.ErrSubscriptionNotFound
	}
	return sub, nil
}

// GetForUpdate implements the SubscriptionStore interface; the mock takes no lock.
func (m *MockSubscriptionStore) GetForUpdate(ctx context.Context, accountID uuid.UUID) (*domain.Subscription, error) {
	if m.GetForUpdateFn != nil {
		return m.GetForUpdateFn(ctx, accountID)
	}
	return m.GetByAccountID(ctx, accountID)
}

// Update implements the SubscriptionStore interface
func (m *MockSubscriptionStore) Update(ctx context.Context, sub *domain.Subscription) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, sub)
	}
	if _, exists := m.Subscriptions[sub.AccountID]; !exists {
		return store.ErrSubscriptionNotFound
	}
	m.Subscriptions[sub.AccountID] = sub
	return nil
}

// WithTx implements the SubscriptionStore interface; the mock is not transactional.
func (m *MockSubscriptionStore) WithTx(tx *sql.Tx) store.SubscriptionStore {
	return m
}
