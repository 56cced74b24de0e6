package store

import (
	"context"
	"database/sql"

	"github.com/cvelasquez/eduplay-api/internal/domain"
	"github.com/google/uuid"
)

// AchievementStore defines the read interface over the static achievement
// catalog. The catalog is content data supplied by the content collaborator;
// the core never writes to it.
type AchievementStore interface {
	// GetByID retrieves an achievement definition by its unique ID.
	// Returns ErrAchievementNotFound if the definition does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Achievement, error)

	// ListAll retrieves the full catalog, ordered by category and name.
	ListAll(ctx context.Context) ([]*domain.Achievement, error)

	// ListForAge retrieves the definitions whose age window includes the
	// given age.
	ListForAge(ctx context.Context, ageYears int) ([]*domain.Achievement, error)

	// WithTx returns a new AchievementStore instance that uses the provided
	// transaction. The transaction is created and managed by the caller.
	WithTx(tx *sql.Tx) AchievementStore
}

// ChildAchievementStore defines the interface for per-child achievement
// state persistence. States are unique per (child, achievement), created
// lazily on first observed progress, and never deleted while the child
// profile exists.
type ChildAchievementStore interface {
	// Create saves a new achievement state.
	// It handles domain validation internally.
	// Returns ErrDuplicate if a state already exists for the pair.
	Create(ctx context.Context, state *domain.ChildAchievement) error

	// Get retrieves the state for the (child, achievement) pair.
	// Returns ErrChildAchievementNotFound if no state exists.
	Get(ctx context.Context, childID, achievementID uuid.UUID) (*domain.ChildAchievement, error)

	// Update modifies an existing achievement state.
	// Returns ErrChildAchievementNotFound if the state does not exist.
	Update(ctx context.Context, state *domain.ChildAchievement) error

	// ListByChild retrieves all achievement states for a child.
	ListByChild(ctx context.Context, childID uuid.UUID) ([]*domain.ChildAchievement, error)

	// WithTx returns a new ChildAchievementStore instance that uses the
	// provided transaction. The transaction is created and managed by the
	// caller.
	WithTx(tx *sql.Tx) ChildAchievementStore
}
