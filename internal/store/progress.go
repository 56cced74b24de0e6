package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/cvelasquez/eduplay-api/internal/domain"
	"github.com/google/uuid"
)

// ProgressStore defines the interface for activity progress persistence.
// Records are unique per (child, activity) and are never deleted by the core.
type ProgressStore interface {
	// Create saves a new progress record, created on a child's first
	// attempt at an activity. It handles domain validation internally.
	// Returns ErrDuplicate if a record already exists for the pair.
	Create(ctx context.Context, rec *domain.ActivityProgress) error

	// Get retrieves the record for the (child, activity) pair.
	// Returns ErrProgressNotFound if no record exists.
	Get(ctx context.Context, childID, activityID uuid.UUID) (*domain.ActivityProgress, error)

	// GetForUpdate retrieves the record for the pair with a row-level lock
	// using SELECT FOR UPDATE. Use within a transaction when the record is
	// about to be updated.
	// Returns ErrProgressNotFound if no record exists.
	GetForUpdate(ctx context.Context, childID, activityID uuid.UUID) (*domain.ActivityProgress, error)

	// Update modifies an existing progress record.
	// Returns ErrProgressNotFound if the record does not exist.
	Update(ctx context.Context, rec *domain.ActivityProgress) error

	// ListByChild retrieves all progress records for a child, ordered by
	// last attempt time descending.
	ListByChild(ctx context.Context, childID uuid.UUID) ([]*domain.ActivityProgress, error)

	// CountCompletedSince counts the child's activities completed at or
	// after the given instant. The service layer uses it to enforce the
	// free-tier daily activity limit.
	CountCompletedSince(ctx context.Context, childID uuid.UUID, since time.Time) (int, error)

	// WithTx returns a new ProgressStore instance that uses the provided
	// transaction. The transaction is created and managed by the caller.
	WithTx(tx *sql.Tx) ProgressStore
}
