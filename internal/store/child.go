package store

import (
	"context"
	"database/sql"

	"github.com/cvelasquez/eduplay-api/internal/domain"
	"github.com/google/uuid"
)

// ChildStore defines the interface for child profile persistence.
type ChildStore interface {
	// Create saves a new child profile.
	// It handles domain validation internally.
	Create(ctx context.Context, child *domain.Child) error

	// GetByID retrieves a child profile by its unique ID.
	// Returns ErrChildNotFound if the profile does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Child, error)

	// ListByParent retrieves all child profiles owned by the given parent
	// account, ordered by creation time.
	ListByParent(ctx context.Context, parentID uuid.UUID) ([]*domain.Child, error)

	// Update modifies an existing child profile.
	// Returns ErrChildNotFound if the profile does not exist.
	Update(ctx context.Context, child *domain.Child) error

	// WithTx returns a new ChildStore instance that uses the provided
	// transaction. The transaction is created and managed by the caller.
	WithTx(tx *sql.Tx) ChildStore
}
