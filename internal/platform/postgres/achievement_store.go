package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/cvelasquez/eduplay-api/internal/domain"
	"github.com/cvelasquez/eduplay-api/internal/platform/logger"
	"github.com/cvelasquez/eduplay-api/internal/store"
	"github.com/google/uuid"
)

// achievementColumns is the column list shared by every catalog query.
// Keep it in sync with scanAchievement.
const achievementColumns = `id, name, description, category, type, criteria,
	rarity, points, min_age_years, max_age_years,
	is_hidden, is_crown_only, is_repeatable, created_at, updated_at`

// PostgresAchievementStore implements the store.AchievementStore interface
// using a PostgreSQL database as the storage backend. The achievements table
// is content data loaded by migrations; this store only reads it.
type PostgresAchievementStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresAchievementStore creates a new PostgreSQL implementation of the
// AchievementStore interface. It accepts a database connection or transaction
// that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresAchievementStore(db store.DBTX, logger *slog.Logger) *PostgresAchievementStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresAchievementStore{
		db:     db,
		logger: logger.With(slog.String("component", "achievement_store")),
	}
}

// Ensure PostgresAchievementStore implements store.AchievementStore interface
var _ store.AchievementStore = (*PostgresAchievementStore)(nil)

// GetByID implements store.AchievementStore.GetByID
// Returns store.ErrAchievementNotFound if the definition does not exist.
func (s *PostgresAchievementStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Achievement, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT ` + achievementColumns + `
		FROM achievements
		WHERE id = $1
	`

	def, err := scanAchievement(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("achievement not found", slog.String("achievement_id", id.String()))
			return nil, store.ErrAchievementNotFound
		}
		log.Error("failed to get achievement by ID",
			slog.String("error", err.Error()),
			slog.String("achievement_id", id.String()))
		return nil, MapError(err)
	}

	return def, nil
}

// ListAll implements store.AchievementStore.ListAll
func (s *PostgresAchievementStore) ListAll(ctx context.Context) ([]*domain.Achievement, error) {
	query := `
		SELECT ` + achievementColumns + `
		FROM achievements
		ORDER BY category, name
	`
	return s.list(ctx, query)
}

// ListForAge implements store.AchievementStore.ListForAge
// A max_age_years of 0 means the window is open-ended.
func (s *PostgresAchievementStore) ListForAge(ctx context.Context, ageYears int) ([]*domain.Achievement, error) {
	query := `
		SELECT ` + achievementColumns + `
		FROM achievements
		WHERE min_age_years <= $1 AND (max_age_years = 0 OR max_age_years >= $1)
		ORDER BY category, name
	`
	return s.list(ctx, query, ageYears)
}

func (s *PostgresAchievementStore) list(ctx context.Context, query string, args ...any) ([]*domain.Achievement, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query achievements",
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	var defs []*domain.Achievement
	for rows.Next() {
		def, err := scanAchievement(rows)
		if err != nil {
			log.Error("failed to scan achievement row",
				slog.String("error", err.Error()))
			return nil, MapError(err)
		}
		defs = append(defs, def)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows",
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	if defs == nil {
		defs = []*domain.Achievement{}
	}

	log.Debug("listed achievements", slog.Int("count", len(defs)))
	return defs, nil
}

// WithTx implements store.AchievementStore.WithTx
// It returns a new store instance bound to the given transaction.
func (s *PostgresAchievementStore) WithTx(tx *sql.Tx) store.AchievementStore {
	return &PostgresAchievementStore{
		db:     tx,
		logger: s.logger,
	}
}

// scanAchievement reads one catalog row in achievementColumns order.
func scanAchievement(row rowScanner) (*domain.Achievement, error) {
	var def domain.Achievement
	var category, typ, rarity string
	var criteria []byte

	err := row.Scan(
		&def.ID,
		&def.Name,
		&def.Description,
		&category,
		&typ,
		&criteria,
		&rarity,
		&def.Points,
		&def.MinAgeYears,
		&def.MaxAgeYears,
		&def.IsHidden,
		&def.IsCrownOnly,
		&def.IsRepeatable,
		&def.CreatedAt,
		&def.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	def.Category = domain.AchievementCategory(category)
	def.Type = domain.AchievementType(typ)
	def.Rarity = domain.AchievementRarity(rarity)
	def.Criteria = criteria
	return &def, nil
}
