package store

import (
	"context"
	"database/sql"

	"github.com/cvelasquez/eduplay-api/internal/domain"
	"github.com/google/uuid"
)

// SubscriptionStore defines the interface for subscription record
// persistence. The store enforces the one-live-record-per-account invariant;
// lifecycle semantics live in the entitlement engine.
type SubscriptionStore interface {
	// Create saves a new subscription record.
	// It handles domain validation internally.
	// Returns ErrSubscriptionExists if the account already has a live record.
	Create(ctx context.Context, sub *domain.Subscription) error

	// GetByAccountID retrieves the account's live (non-deleted) record.
	// Returns ErrSubscriptionNotFound if none exists.
	GetByAccountID(ctx context.Context, accountID uuid.UUID) (*domain.Subscription, error)

	// GetForUpdate retrieves the account's live record with a row-level
	// lock using SELECT FOR UPDATE. Use within a transaction when the
	// record is about to be updated.
	// Returns ErrSubscriptionNotFound if none exists.
	GetForUpdate(ctx context.Context, accountID uuid.UUID) (*domain.Subscription, error)

	// Update modifies an existing subscription record.
	// It handles domain validation internally.
	// Returns ErrSubscriptionNotFound if the record does not exist.
	Update(ctx context.Context, sub *domain.Subscription) error

	// WithTx returns a new SubscriptionStore instance that uses the
	// provided transaction. The transaction is created and managed by the
	// caller.
	WithTx(tx *sql.Tx) SubscriptionStore
}
