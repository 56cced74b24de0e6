package store

import (
	"context"
	"database/sql"

	"github.com/cvelasquez/eduplay-api/internal/domain"
	"github.com/google/uuid"
)

// UserStore defines the interface for parent account persistence.
type UserStore interface {
	// Create saves a new parent account to the store.
	// It handles domain validation and password hashing internally.
	// Returns ErrEmailExists if the email is already taken.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a parent account by its unique ID.
	// Returns ErrUserNotFound if the account does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// GetByEmail retrieves a parent account by email address.
	// Returns ErrUserNotFound if the account does not exist.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// Update modifies an existing account. If a new plaintext Password is
	// set on the entity, it is hashed and the stored hash replaced.
	// Returns ErrUserNotFound if the account does not exist.
	Update(ctx context.Context, user *domain.User) error

	// WithTx returns a new UserStore instance that uses the provided
	// transaction. The transaction is created and managed by the caller.
	WithTx(tx *sql.Tx) UserStore
}
