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

// childAchievementColumns is the column list shared by every state query.
// Keep it in sync with scanChildAchievement.
const childAchievementColumns = `id, child_id, achievement_id,
	current_progress, target_progress, progress_percent,
	is_in_progress, progress_started_at,
	is_earned, earned_at, earned_count, earn_context,
	celebration_shown, points_earned, bonus_multiplier, expires_at,
	needs_sync, created_at, updated_at`

// PostgresChildAchievementStore implements the store.ChildAchievementStore
// interface using a PostgreSQL database as the storage backend. A unique
// index on (child_id, achievement_id) enforces one state per pair.
type PostgresChildAchievementStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresChildAchievementStore creates a new PostgreSQL implementation
// of the ChildAchievementStore interface. It accepts a database connection
// or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresChildAchievementStore(db store.DBTX, logger *slog.Logger) *PostgresChildAchievementStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresChildAchievementStore{
		db:     db,
		logger: logger.With(slog.String("component", "child_achievement_store")),
	}
}

// Ensure PostgresChildAchievementStore implements store.ChildAchievementStore interface
var _ store.ChildAchievementStore = (*PostgresChildAchievementStore)(nil)

// Create implements store.ChildAchievementStore.Create
// Returns store.ErrDuplicate if a state already exists for the pair, and
// store.ErrInvalidEntity if the child or achievement doesn't exist.
func (s *PostgresChildAchievementStore) Create(ctx context.Context, state *domain.ChildAchievement) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := state.Validate(); err != nil {
		log.Warn("child achievement validation failed during create",
			slog.String("error", err.Error()),
			slog.String("state_id", state.ID.String()))
		return err
	}

	query := `
		INSERT INTO child_achievements (` + childAchievementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
			$11, $12, $13, $14, $15, $16, $17, $18, $19)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		state.ID,
		state.ChildID,
		state.AchievementID,
		state.CurrentProgress,
		state.TargetProgress,
		state.ProgressPercent,
		state.IsInProgress,
		state.ProgressStartedAt,
		state.IsEarned,
		state.EarnedAt,
		state.EarnedCount,
		state.EarnContext,
		state.CelebrationShown,
		state.PointsEarned,
		state.BonusMultiplier,
		state.ExpiresAt,
		state.NeedsSync,
		state.CreatedAt,
		state.UpdatedAt,
	)

	if err != nil {
		if IsUniqueViolation(err) {
			log.Warn("achievement state already exists for pair",
				slog.String("child_id", state.ChildID.String()),
				slog.String("achievement_id", state.AchievementID.String()))
			return fmt.Errorf("%w: %v", store.ErrDuplicate, err)
		}
		if IsForeignKeyViolation(err) {
			log.Warn("foreign key violation during achievement state creation",
				slog.String("child_id", state.ChildID.String()),
				slog.String("achievement_id", state.AchievementID.String()))
			return fmt.Errorf("%w: child or achievement not found",
				store.ErrInvalidEntity)
		}

		log.Error("failed to create achievement state",
			slog.String("error", err.Error()),
			slog.String("state_id", state.ID.String()))
		return MapError(err)
	}

	log.Info("achievement state created",
		slog.String("child_id", state.ChildID.String()),
		slog.String("achievement_id", state.AchievementID.String()))
	return nil
}

// Get implements store.ChildAchievementStore.Get
// Returns store.ErrChildAchievementNotFound if no state exists for the pair.
func (s *PostgresChildAchievementStore) Get(ctx context.Context, childID, achievementID uuid.UUID) (*domain.ChildAchievement, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT ` + childAchievementColumns + `
		FROM child_achievements
		WHERE child_id = $1 AND achievement_id = $2
	`

	state, err := scanChildAchievement(s.db.QueryRowContext(ctx, query, childID, achievementID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("achievement state not found",
				slog.String("child_id", childID.String()),
				slog.String("achievement_id", achievementID.String()))
			return nil, store.ErrChildAchievementNotFound
		}
		log.Error("failed to get achievement state",
			slog.String("error", err.Error()),
			slog.String("child_id", childID.String()),
			slog.String("achievement_id", achievementID.String()))
		return nil, MapError(err)
	}

	return state, nil
}

// Update implements store.ChildAchievementStore.Update
// Returns store.ErrChildAchievementNotFound if the state does not exist.
func (s *PostgresChildAchievementStore) Update(ctx context.Context, state *domain.ChildAchievement) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := state.Validate(); err != nil {
		log.Warn("child achievement validation failed during update",
			slog.String("error", err.Error()),
			slog.String("state_id", state.ID.String()))
		return err
	}

	state.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE child_achievements
		SET current_progress = $1, target_progress = $2, progress_percent = $3,
			is_in_progress = $4, progress_started_at = $5,
			is_earned = $6, earned_at = $7, earned_count = $8, earn_context = $9,
			celebration_shown = $10, points_earned = $11, bonus_multiplier = $12,
			expires_at = $13, needs_sync = $14, updated_at = $15
		WHERE id = $16
	`

	result, err := s.db.ExecContext(
		ctx,
		query,
		state.CurrentProgress,
		state.TargetProgress,
		state.ProgressPercent,
		state.IsInProgress,
		state.ProgressStartedAt,
		state.IsEarned,
		state.EarnedAt,
		state.EarnedCount,
		state.EarnContext,
		state.CelebrationShown,
		state.PointsEarned,
		state.BonusMultiplier,
		state.ExpiresAt,
		state.NeedsSync,
		state.UpdatedAt,
		state.ID,
	)

	if err != nil {
		log.Error("failed to update achievement state",
			slog.String("error", err.Error()),
			slog.String("state_id", state.ID.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, store.ErrChildAchievementNotFound); err != nil {
		log.Debug("achievement state not found for update",
			slog.String("state_id", state.ID.String()))
		return err
	}

	log.Debug("achievement state updated",
		slog.String("state_id", state.ID.String()),
		slog.Int("progress_percent", state.ProgressPercent),
		slog.Bool("is_earned", state.IsEarned))
	return nil
}

// ListByChild implements store.ChildAchievementStore.ListByChild
// Returns an empty slice when the child has no achievement states.
func (s *PostgresChildAchievementStore) ListByChild(ctx context.Context, childID uuid.UUID) ([]*domain.ChildAchievement, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT ` + childAchievementColumns + `
		FROM child_achievements
		WHERE child_id = $1
		ORDER BY created_at ASC
	`

	rows, err := s.db.QueryContext(ctx, query, childID)
	if err != nil {
		log.Error("failed to query achievement states by child",
			slog.String("error", err.Error()),
			slog.String("child_id", childID.String()))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	var states []*domain.ChildAchievement
	for rows.Next() {
		state, err := scanChildAchievement(rows)
		if err != nil {
			log.Error("failed to scan achievement state row",
				slog.String("error", err.Error()))
			return nil, MapError(err)
		}
		states = append(states, state)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows",
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	if states == nil {
		states = []*domain.ChildAchievement{}
	}

	log.Debug("listed achievement states by child",
		slog.String("child_id", childID.String()),
		slog.Int("count", len(states)))
	return states, nil
}

// WithTx implements store.ChildAchievementStore.WithTx
// It returns a new store instance bound to the given transaction.
func (s *PostgresChildAchievementStore) WithTx(tx *sql.Tx) store.ChildAchievementStore {
	return &PostgresChildAchievementStore{
		db:     tx,
		logger: s.logger,
	}
}

// scanChildAchievement reads one state row in childAchievementColumns order.
func scanChildAchievement(row rowScanner) (*domain.ChildAchievement, error) {
	var state domain.ChildAchievement

	err := row.Scan(
		&state.ID,
		&state.ChildID,
		&state.AchievementID,
		&state.CurrentProgress,
		&state.TargetProgress,
		&state.ProgressPercent,
		&state.IsInProgress,
		&state.ProgressStartedAt,
		&state.IsEarned,
		&state.EarnedAt,
		&state.EarnedCount,
		&state.EarnContext,
		&state.CelebrationShown,
		&state.PointsEarned,
		&state.BonusMultiplier,
		&state.ExpiresAt,
		&state.NeedsSync,
		&state.CreatedAt,
		&state.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &state, nil
}
