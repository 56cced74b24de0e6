package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cvelasquez/eduplay-api/internal/domain"
	"github.com/cvelasquez/eduplay-api/internal/platform/logger"
	"github.com/cvelasquez/eduplay-api/internal/store"
	"github.com/google/uuid"
)

// PostgresChildStore implements the store.ChildStore interface
// using a PostgreSQL database as the storage backend.
type PostgresChildStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresChildStore creates a new PostgreSQL implementation of the
// ChildStore interface. It accepts a database connection or transaction that
// should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresChildStore(db store.DBTX, logger *slog.Logger) *PostgresChildStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresChildStore{
		db:     db,
		logger: logger.With(slog.String("component", "child_store")),
	}
}

// Ensure PostgresChildStore implements store.ChildStore interface
var _ store.ChildStore = (*PostgresChildStore)(nil)

// Create implements store.ChildStore.Create
// Returns store.ErrInvalidEntity if the parent account doesn't exist.
func (s *PostgresChildStore) Create(ctx context.Context, child *domain.Child) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := child.Validate(); err != nil {
		log.Warn("child validation failed during create",
			slog.String("error", err.Error()),
			slog.String("child_id", child.ID.String()))
		return err
	}

	query := `
		INSERT INTO children (id, parent_id, name, age_years, preferred_difficulty,
			is_advanced, needs_sync, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		child.ID,
		child.ParentID,
		child.Name,
		child.AgeYears,
		child.PreferredDifficulty,
		child.IsAdvanced,
		child.NeedsSync,
		child.CreatedAt,
		child.UpdatedAt,
	)

	if err != nil {
		if IsForeignKeyViolation(err) {
			log.Warn("foreign key violation during child creation",
				slog.String("child_id", child.ID.String()),
				slog.String("parent_id", child.ParentID.String()))
			return fmt.Errorf("%w: parent with ID %s not found",
				store.ErrInvalidEntity, child.ParentID)
		}

		log.Error("failed to create child",
			slog.String("error", err.Error()),
			slog.String("child_id", child.ID.String()))
		return MapError(err)
	}

	log.Info("child created successfully",
		slog.String("child_id", child.ID.String()),
		slog.String("parent_id", child.ParentID.String()))
	return nil
}

// GetByID implements store.ChildStore.GetByID
// Returns store.ErrChildNotFound if the profile does not exist.
func (s *PostgresChildStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Child, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	log.Debug("retrieving child by ID", slog.String("child_id", id.String()))

	query := `
		SELECT id, parent_id, name, age_years, preferred_difficulty,
			is_advanced, needs_sync, created_at, updated_at
		FROM children
		WHERE id = $1
	`

	var child domain.Child
	var difficulty string

	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&child.ID,
		&child.ParentID,
		&child.Name,
		&child.AgeYears,
		&difficulty,
		&child.IsAdvanced,
		&child.NeedsSync,
		&child.CreatedAt,
		&child.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("child not found", slog.String("child_id", id.String()))
			return nil, store.ErrChildNotFound
		}
		log.Error("failed to get child by ID",
			slog.String("error", err.Error()),
			slog.String("child_id", id.String()))
		return nil, MapError(err)
	}

	child.PreferredDifficulty = domain.DifficultyLevel(difficulty)

	return &child, nil
}

// ListByParent implements store.ChildStore.ListByParent
// Returns an empty slice when the parent has no child profiles.
func (s *PostgresChildStore) ListByParent(ctx context.Context, parentID uuid.UUID) ([]*domain.Child, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, parent_id, name, age_years, preferred_difficulty,
			is_advanced, needs_sync, created_at, updated_at
		FROM children
		WHERE parent_id = $1
		ORDER BY created_at ASC
	`

	rows, err := s.db.QueryContext(ctx, query, parentID)
	if err != nil {
		log.Error("failed to query children by parent",
			slog.String("error", err.Error()),
			slog.String("parent_id", parentID.String()))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	var children []*domain.Child
	for rows.Next() {
		var child domain.Child
		var difficulty string

		err := rows.Scan(
			&child.ID,
			&child.ParentID,
			&child.Name,
			&child.AgeYears,
			&difficulty,
			&child.IsAdvanced,
			&child.NeedsSync,
			&child.CreatedAt,
			&child.UpdatedAt,
		)
		if err != nil {
			log.Error("failed to scan child row",
				slog.String("error", err.Error()))
			return nil, MapError(err)
		}

		child.PreferredDifficulty = domain.DifficultyLevel(difficulty)
		children = append(children, &child)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows",
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	if children == nil {
		children = []*domain.Child{}
	}

	log.Debug("listed children by parent",
		slog.String("parent_id", parentID.String()),
		slog.Int("count", len(children)))
	return children, nil
}

// Update implements store.ChildStore.Update
// Returns store.ErrChildNotFound if the profile does not exist.
func (s *PostgresChildStore) Update(ctx context.Context, child *domain.Child) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := child.Validate(); err != nil {
		log.Warn("child validation failed during update",
			slog.String("error", err.Error()),
			slog.String("child_id", child.ID.String()))
		return err
	}

	child.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE children
		SET name = $1, age_years = $2, preferred_difficulty = $3,
			is_advanced = $4, needs_sync = $5, updated_at = $6
		WHERE id = $7
	`

	result, err := s.db.ExecContext(
		ctx,
		query,
		child.Name,
		child.AgeYears,
		child.PreferredDifficulty,
		child.IsAdvanced,
		child.NeedsSync,
		child.UpdatedAt,
		child.ID,
	)

	if err != nil {
		log.Error("failed to update child",
			slog.String("error", err.Error()),
			slog.String("child_id", child.ID.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, store.ErrChildNotFound); err != nil {
		log.Debug("child not found for update",
			slog.String("child_id", child.ID.String()))
		return err
	}

	log.Info("child updated successfully",
		slog.String("child_id", child.ID.String()))
	return nil
}

// WithTx implements store.ChildStore.WithTx
// It returns a new store instance bound to the given transaction.
func (s *PostgresChildStore) WithTx(tx *sql.Tx) store.ChildStore {
	return &PostgresChildStore{
		db:     tx,
		logger: s.logger,
	}
}
