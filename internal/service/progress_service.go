package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/cvelasquez/eduplay-api/internal/domain"
	"github.com/cvelasquez/eduplay-api/internal/domain/entitlement"
	"github.com/cvelasquez/eduplay-api/internal/domain/progress"
	"github.com/cvelasquez/eduplay-api/internal/store"
	"github.com/google/uuid"
)

// AttemptInput carries one reported play-through plus the activity metadata
// the content catalog supplies on the first attempt.
type AttemptInput struct {
	TotalQuestions int
	Difficulty     domain.DifficultyLevel
	Attempt        progress.Attempt
}

// AttemptResult is what the caller gets back after an attempt is folded in:
// the updated record plus the engine's derived signals.
type AttemptResult struct {
	Record                 *domain.ActivityProgress `json:"record"`
	CrownChallengeEligible bool                     `json:"crown_challenge_eligible"`
	NeedsAdditionalSupport bool                     `json:"needs_additional_support"`
}

// ProgressService records activity attempts and reports per-child progress.
// Recording enforces the free tier's daily activity limit through the
// entitlement engine before any state changes.
type ProgressService interface {
	// RecordAttempt folds one attempt into the child's record for the
	// activity, creating the record on first attempt.
	// Returns ErrNotOwned when the child belongs to another account and
	// ErrDailyLimitReached when the free tier's allowance is used up.
	RecordAttempt(
		ctx context.Context,
		parentID, childID, activityID uuid.UUID,
		input AttemptInput,
	) (*AttemptResult, error)

	// ListForChild returns all of the child's progress records.
	// Returns ErrNotOwned when the child belongs to another account.
	ListForChild(ctx context.Context, parentID, childID uuid.UUID) ([]*domain.ActivityProgress, error)
}

// progressServiceImpl implements the ProgressService interface
type progressServiceImpl struct {
	db            *sql.DB
	childStore    store.ChildStore
	progressStore store.ProgressStore
	subStore      store.SubscriptionStore
	engine        progress.Service
	entitlements  entitlement.Service
	logger        *slog.Logger
	timeFn        func() time.Time
}

// NewProgressService creates a new ProgressService.
// It returns an error if any of the required dependencies are nil.
func NewProgressService(
	db *sql.DB,
	childStore store.ChildStore,
	progressStore store.ProgressStore,
	subStore store.SubscriptionStore,
	engine progress.Service,
	entitlements entitlement.Service,
	logger *slog.Logger,
) (ProgressService, error) {
	if db == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "db cannot be nil"}
	}
	if childStore == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "childStore cannot be nil"}
	}
	if progressStore == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "progressStore cannot be nil"}
	}
	if subStore == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "subStore cannot be nil"}
	}
	if engine == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "engine cannot be nil"}
	}
	if entitlements == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "entitlements cannot be nil"}
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &progressServiceImpl{
		db:            db,
		childStore:    childStore,
		progressStore: progressStore,
		subStore:      subStore,
		engine:        engine,
		entitlements:  entitlements,
		logger:        logger.With("component", "progress_service"),
		timeFn:        func() time.Time { return time.Now().UTC() },
	}, nil
}

// RecordAttempt implements ProgressService.RecordAttempt.
func (s *progressServiceImpl) RecordAttempt(
	ctx context.Context,
	parentID, childID, activityID uuid.UUID,
	input AttemptInput,
) (*AttemptResult, error) {
	now := s.timeFn()

	child, err := s.childStore.GetByID(ctx, childID)
	if err != nil {
		return nil, err
	}
	if child.ParentID != parentID {
		return nil, ErrNotOwned
	}

	if err := s.checkDailyLimit(ctx, child, now); err != nil {
		return nil, err
	}

	var rec *domain.ActivityProgress

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txStore := s.progressStore.WithTx(tx)

		existing, err := txStore.GetForUpdate(ctx, childID, activityID)
		switch {
		case errors.Is(err, store.ErrProgressNotFound):
			fresh, err := s.engine.NewRecord(childID, activityID, input.TotalQuestions, input.Difficulty, now)
			if err != nil {
				return &ServiceError{Operation: "record_attempt", Message: "failed to create progress record", Err: err}
			}
			next, err := s.engine.RecordAttempt(fresh, input.Attempt, now)
			if err != nil {
				return &ServiceError{Operation: "record_attempt", Message: "failed to apply attempt", Err: err}
			}
			if err := txStore.Create(ctx, next); err != nil {
				return err
			}
			rec = next
			return nil

		case err != nil:
			return err

		default:
			next, err := s.engine.RecordAttempt(existing, input.Attempt, now)
			if err != nil {
				return &ServiceError{Operation: "record_attempt", Message: "failed to apply attempt", Err: err}
			}
			if err := txStore.Update(ctx, next); err != nil {
				return err
			}
			rec = next
			return nil
		}
	})

	if err != nil {
		s.logger.Warn("failed to record attempt",
			"error", err,
			"child_id", childID,
			"activity_id", activityID)
		return nil, err
	}

	s.logger.Info("attempt recorded",
		"child_id", childID,
		"activity_id", activityID,
		"attempt_count", rec.AttemptCount,
		"is_completed", rec.IsCompleted,
		"stars_earned", rec.StarsEarned)

	return &AttemptResult{
		Record:                 rec,
		CrownChallengeEligible: s.engine.CrownChallengeEligible(rec),
		NeedsAdditionalSupport: s.engine.NeedsAdditionalSupport(rec),
	}, nil
}

// ListForChild implements ProgressService.ListForChild.
func (s *progressServiceImpl) ListForChild(
	ctx context.Context,
	parentID, childID uuid.UUID,
) ([]*domain.ActivityProgress, error) {
	child, err := s.childStore.GetByID(ctx, childID)
	if err != nil {
		return nil, err
	}
	if child.ParentID != parentID {
		return nil, ErrNotOwned
	}

	return s.progressStore.ListByChild(ctx, childID)
}

// checkDailyLimit rejects the attempt when the family's tier caps completed
// activities per day and the child has hit the cap. An account without a
// subscription record is treated as free tier.
func (s *progressServiceImpl) checkDailyLimit(ctx context.Context, child *domain.Child, now time.Time) error {
	sub, err := s.subStore.GetByAccountID(ctx, child.ParentID)
	if err != nil && !errors.Is(err, store.ErrSubscriptionNotFound) {
		return err
	}

	limit := s.entitlements.DailyActivityLimit(sub, now)
	if limit == entitlement.UnlimitedDailyActivities {
		return nil
	}

	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	completed, err := s.progressStore.CountCompletedSince(ctx, child.ID, dayStart)
	if err != nil {
		return err
	}

	if completed >= limit {
		s.logger.Info("daily activity limit reached",
			"child_id", child.ID,
			"completed_today", completed,
			"limit", limit)
		return ErrDailyLimitReached
	}

	return nil
}
