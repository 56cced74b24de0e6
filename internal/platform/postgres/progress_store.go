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

// progressColumns is the column list shared by every progress query.
// Keep it in sync with scanProgress.
const progressColumns = `id, child_id, activity_id,
	is_completed, stars_earned, total_score, max_score,
	attempt_count, correct_answers, total_questions, time_spent_seconds, hints_used,
	needed_extra_help, first_attempt_at, last_attempt_at, completed_at,
	difficulty_level, needs_sync, created_at, updated_at`

// PostgresProgressStore implements the store.ProgressStore interface
// using a PostgreSQL database as the storage backend. A unique index on
// (child_id, activity_id) enforces one record per pair.
type PostgresProgressStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresProgressStore creates a new PostgreSQL implementation of the
// ProgressStore interface. It accepts a database connection or transaction
// that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresProgressStore(db store.DBTX, logger *slog.Logger) *PostgresProgressStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresProgressStore{
		db:     db,
		logger: logger.With(slog.String("component", "progress_store")),
	}
}

// Ensure PostgresProgressStore implements store.ProgressStore interface
var _ store.ProgressStore = (*PostgresProgressStore)(nil)

// Create implements store.ProgressStore.Create
// Returns store.ErrDuplicate if a record already exists for the pair, and
// store.ErrInvalidEntity if the child doesn't exist.
func (s *PostgresProgressStore) Create(ctx context.Context, rec *domain.ActivityProgress) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := rec.Validate(); err != nil {
		log.Warn("progress validation failed during create",
			slog.String("error", err.Error()),
			slog.String("progress_id", rec.ID.String()))
		return err
	}

	query := `
		INSERT INTO activity_progress (` + progressColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
			$11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		rec.ID,
		rec.ChildID,
		rec.ActivityID,
		rec.IsCompleted,
		rec.StarsEarned,
		rec.TotalScore,
		rec.MaxScore,
		rec.AttemptCount,
		rec.CorrectAnswers,
		rec.TotalQuestions,
		rec.TimeSpentSeconds,
		rec.HintsUsed,
		rec.NeededExtraHelp,
		rec.FirstAttemptAt,
		rec.LastAttemptAt,
		rec.CompletedAt,
		rec.DifficultyLevel,
		rec.NeedsSync,
		rec.CreatedAt,
		rec.UpdatedAt,
	)

	if err != nil {
		if IsUniqueViolation(err) {
			log.Warn("progress record already exists for pair",
				slog.String("child_id", rec.ChildID.String()),
				slog.String("activity_id", rec.ActivityID.String()))
			return fmt.Errorf("%w: %v", store.ErrDuplicate, err)
		}
		if IsForeignKeyViolation(err) {
			log.Warn("foreign key violation during progress creation",
				slog.String("child_id", rec.ChildID.String()))
			return fmt.Errorf("%w: child with ID %s not found",
				store.ErrInvalidEntity, rec.ChildID)
		}

		log.Error("failed to create progress record",
			slog.String("error", err.Error()),
			slog.String("progress_id", rec.ID.String()))
		return MapError(err)
	}

	log.Info("progress record created",
		slog.String("child_id", rec.ChildID.String()),
		slog.String("activity_id", rec.ActivityID.String()))
	return nil
}

// Get implements store.ProgressStore.Get
// Returns store.ErrProgressNotFound if no record exists for the pair.
func (s *PostgresProgressStore) Get(ctx context.Context, childID, activityID uuid.UUID) (*domain.ActivityProgress, error) {
	return s.getPair(ctx, childID, activityID, false)
}

// GetForUpdate implements store.ProgressStore.GetForUpdate
// It locks the row with SELECT FOR UPDATE; callers must hold a transaction.
// Returns store.ErrProgressNotFound if no record exists for the pair.
func (s *PostgresProgressStore) GetForUpdate(ctx context.Context, childID, activityID uuid.UUID) (*domain.ActivityProgress, error) {
	return s.getPair(ctx, childID, activityID, true)
}

func (s *PostgresProgressStore) getPair(ctx context.Context, childID, activityID uuid.UUID, forUpdate bool) (*domain.ActivityProgress, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT ` + progressColumns + `
		FROM activity_progress
		WHERE child_id = $1 AND activity_id = $2
	`
	if forUpdate {
		query += " FOR UPDATE"
	}

	rec, err := scanProgress(s.db.QueryRowContext(ctx, query, childID, activityID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("progress record not found",
				slog.String("child_id", childID.String()),
				slog.String("activity_id", activityID.String()))
			return nil, store.ErrProgressNotFound
		}
		log.Error("failed to get progress record",
			slog.String("error", err.Error()),
			slog.String("child_id", childID.String()),
			slog.String("activity_id", activityID.String()))
		return nil, MapError(err)
	}

	return rec, nil
}

// Update implements store.ProgressStore.Update
// Returns store.ErrProgressNotFound if the record does not exist.
func (s *PostgresProgressStore) Update(ctx context.Context, rec *domain.ActivityProgress) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := rec.Validate(); err != nil {
		log.Warn("progress validation failed during update",
			slog.String("error", err.Error()),
			slog.String("progress_id", rec.ID.String()))
		return err
	}

	rec.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE activity_progress
		SET is_completed = $1, stars_earned = $2, total_score = $3, max_score = $4,
			attempt_count = $5, correct_answers = $6, total_questions = $7,
			time_spent_seconds = $8, hints_used = $9, needed_extra_help = $10,
			last_attempt_at = $11, completed_at = $12, difficulty_level = $13,
			needs_sync = $14, updated_at = $15
		WHERE id = $16
	`

	result, err := s.db.ExecContext(
		ctx,
		query,
		rec.IsCompleted,
		rec.StarsEarned,
		rec.TotalScore,
		rec.MaxScore,
		rec.AttemptCount,
		rec.CorrectAnswers,
		rec.TotalQuestions,
		rec.TimeSpentSeconds,
		rec.HintsUsed,
		rec.NeededExtraHelp,
		rec.LastAttemptAt,
		rec.CompletedAt,
		rec.DifficultyLevel,
		rec.NeedsSync,
		rec.UpdatedAt,
		rec.ID,
	)

	if err != nil {
		log.Error("failed to update progress record",
			slog.String("error", err.Error()),
			slog.String("progress_id", rec.ID.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, store.ErrProgressNotFound); err != nil {
		log.Debug("progress record not found for update",
			slog.String("progress_id", rec.ID.String()))
		return err
	}

	log.Debug("progress record updated",
		slog.String("progress_id", rec.ID.String()),
		slog.Int("attempt_count", rec.AttemptCount))
	return nil
}

// ListByChild implements store.ProgressStore.ListByChild
// Returns an empty slice when the child has no progress records.
func (s *PostgresProgressStore) ListByChild(ctx context.Context, childID uuid.UUID) ([]*domain.ActivityProgress, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT ` + progressColumns + `
		FROM activity_progress
		WHERE child_id = $1
		ORDER BY last_attempt_at DESC
	`

	rows, err := s.db.QueryContext(ctx, query, childID)
	if err != nil {
		log.Error("failed to query progress by child",
			slog.String("error", err.Error()),
			slog.String("child_id", childID.String()))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	var records []*domain.ActivityProgress
	for rows.Next() {
		rec, err := scanProgress(rows)
		if err != nil {
			log.Error("failed to scan progress row",
				slog.String("error", err.Error()))
			return nil, MapError(err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows",
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	if records == nil {
		records = []*domain.ActivityProgress{}
	}

	log.Debug("listed progress by child",
		slog.String("child_id", childID.String()),
		slog.Int("count", len(records)))
	return records, nil
}

// CountCompletedSince implements store.ProgressStore.CountCompletedSince
// It counts activities the child completed at or after the given instant.
func (s *PostgresProgressStore) CountCompletedSince(ctx context.Context, childID uuid.UUID, since time.Time) (int, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT COUNT(*)
		FROM activity_progress
		WHERE child_id = $1 AND completed_at IS NOT NULL AND completed_at >= $2
	`

	var count int
	err := s.db.QueryRowContext(ctx, query, childID, since).Scan(&count)
	if err != nil {
		log.Error("failed to count completed activities",
			slog.String("error", err.Error()),
			slog.String("child_id", childID.String()))
		return 0, MapError(err)
	}

	return count, nil
}

// WithTx implements store.ProgressStore.WithTx
// It returns a new store instance bound to the given transaction.
func (s *PostgresProgressStore) WithTx(tx *sql.Tx) store.ProgressStore {
	return &PostgresProgressStore{
		db:     tx,
		logger: s.logger,
	}
}

// scanProgress reads one progress row in progressColumns order.
func scanProgress(row rowScanner) (*domain.ActivityProgress, error) {
	var rec domain.ActivityProgress
	var difficulty string

	err := row.Scan(
		&rec.ID,
		&rec.ChildID,
		&rec.ActivityID,
		&rec.IsCompleted,
		&rec.StarsEarned,
		&rec.TotalScore,
		&rec.MaxScore,
		&rec.AttemptCount,
		&rec.CorrectAnswers,
		&rec.TotalQuestions,
		&rec.TimeSpentSeconds,
		&rec.HintsUsed,
		&rec.NeededExtraHelp,
		&rec.FirstAttemptAt,
		&rec.LastAttemptAt,
		&rec.CompletedAt,
		&difficulty,
		&rec.NeedsSync,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	rec.DifficultyLevel = domain.DifficultyLevel(difficulty)
	return &rec, nil
}
