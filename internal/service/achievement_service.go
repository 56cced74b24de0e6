package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/cvelasquez/eduplay-api/internal/domain"
	"github.com/cvelasquez/eduplay-api/internal/domain/achievement"
	"github.com/cvelasquez/eduplay-api/internal/domain/progress"
	"github.com/cvelasquez/eduplay-api/internal/store"
	"github.com/google/uuid"
)

// AchievementView pairs a catalog definition with the child's state toward
// it. State is nil until the child has made some progress.
type AchievementView struct {
	Achievement        *domain.Achievement      `json:"achievement"`
	State              *domain.ChildAchievement `json:"state,omitempty"`
	CelebrationPending bool                     `json:"celebration_pending"`
}

// AchievementService applies the achievement engine over the catalog and the
// child's stored progress. Evaluation is snapshot based: the caller's learning
// event produces a snapshot and every applicable definition is re-checked
// against it.
type AchievementService interface {
	// BuildSnapshot derives an evaluation snapshot from the child's stored
	// progress records. Subject mastery flags are merged in by the sync
	// collaborator; this builder leaves them empty.
	BuildSnapshot(ctx context.Context, childID uuid.UUID) (achievement.Snapshot, error)

	// EvaluateForChild re-checks every definition applicable to the child
	// against the snapshot, creating state lazily and earning at 100%.
	// It returns the definitions newly earned by this evaluation.
	// Returns ErrNotOwned when the child belongs to another account.
	EvaluateForChild(
		ctx context.Context,
		parentID, childID uuid.UUID,
		snap achievement.Snapshot,
	) ([]*AchievementView, error)

	// ListForChild returns the child's achievements filtered by the
	// engine's visibility rules.
	// Returns ErrNotOwned when the child belongs to another account.
	ListForChild(ctx context.Context, parentID, childID uuid.UUID) ([]*AchievementView, error)

	// AcknowledgeCelebration clears a pending earn celebration.
	// Returns ErrNoCelebrationPending when there is nothing to acknowledge
	// and ErrNotOwned when the child belongs to another account.
	AcknowledgeCelebration(ctx context.Context, parentID, childID, achievementID uuid.UUID) (*domain.ChildAchievement, error)
}

// achievementServiceImpl implements the AchievementService interface
type achievementServiceImpl struct {
	db             *sql.DB
	childStore     store.ChildStore
	achStore       store.AchievementStore
	stateStore     store.ChildAchievementStore
	progressStore  store.ProgressStore
	engine         achievement.Service
	progressEngine progress.Service
	logger         *slog.Logger
	timeFn         func() time.Time
}

// NewAchievementService creates a new AchievementService.
// It returns an error if any of the required dependencies are nil.
func NewAchievementService(
	db *sql.DB,
	childStore store.ChildStore,
	achStore store.AchievementStore,
	stateStore store.ChildAchievementStore,
	progressStore store.ProgressStore,
	engine achievement.Service,
	progressEngine progress.Service,
	logger *slog.Logger,
) (AchievementService, error) {
	if db == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "db cannot be nil"}
	}
	if childStore == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "childStore cannot be nil"}
	}
	if achStore == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "achStore cannot be nil"}
	}
	if stateStore == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "stateStore cannot be nil"}
	}
	if progressStore == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "progressStore cannot be nil"}
	}
	if engine == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "engine cannot be nil"}
	}
	if progressEngine == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "progressEngine cannot be nil"}
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &achievementServiceImpl{
		db:             db,
		childStore:     childStore,
		achStore:       achStore,
		stateStore:     stateStore,
		progressStore:  progressStore,
		engine:         engine,
		progressEngine: progressEngine,
		logger:         logger.With("component", "achievement_service"),
		timeFn:         func() time.Time { return time.Now().UTC() },
	}, nil
}

// BuildSnapshot implements AchievementService.BuildSnapshot.
func (s *achievementServiceImpl) BuildSnapshot(ctx context.Context, childID uuid.UUID) (achievement.Snapshot, error) {
	records, err := s.progressStore.ListByChild(ctx, childID)
	if err != nil {
		return achievement.Snapshot{}, err
	}

	snap := achievement.Snapshot{
		MasteredSubjects: map[string]bool{},
	}

	var completedTime int
	activityDays := map[string]bool{}

	for _, rec := range records {
		activityDays[rec.LastAttemptAt.UTC().Format("2006-01-02")] = true

		if !rec.IsCompleted {
			continue
		}

		snap.ActivitiesCompleted++
		snap.TotalStars += rec.StarsEarned
		completedTime += rec.TimeSpentSeconds

		if s.progressEngine.CrownChallengeEligible(rec) {
			snap.CrownChallengesCompleted++
		}
	}

	if snap.ActivitiesCompleted > 0 {
		snap.AverageCompletionTimeSeconds = float64(completedTime) / float64(snap.ActivitiesCompleted)
	}

	snap.StreakDays = streakEndingAt(activityDays, s.timeFn())

	return snap, nil
}

// EvaluateForChild implements AchievementService.EvaluateForChild.
func (s *achievementServiceImpl) EvaluateForChild(
	ctx context.Context,
	parentID, childID uuid.UUID,
	snap achievement.Snapshot,
) ([]*AchievementView, error) {
	child, err := s.childStore.GetByID(ctx, childID)
	if err != nil {
		return nil, err
	}
	if child.ParentID != parentID {
		return nil, ErrNotOwned
	}

	defs, err := s.achStore.ListForAge(ctx, child.AgeYears)
	if err != nil {
		return nil, err
	}

	now := s.timeFn()
	var earned []*AchievementView

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txStates := s.stateStore.WithTx(tx)

		for _, def := range defs {
			// Definitions outside the child's age window never progress.
			if !def.AppliesTo(child.AgeYears) {
				continue
			}

			// Crown-only achievements are reserved for advanced children.
			if def.IsCrownOnly && !child.IsAdvanced {
				continue
			}

			state, created, err := s.loadOrCreateState(ctx, txStates, childID, def.ID, now)
			if err != nil {
				return err
			}

			wasEarned := state.IsEarned

			next, err := s.engine.ApplySnapshot(def, state, snap, now)
			if err != nil {
				return &ServiceError{Operation: "evaluate_achievements", Message: "failed to apply snapshot", Err: err}
			}

			if created {
				if err := txStates.Create(ctx, next); err != nil {
					return err
				}
			} else if err := txStates.Update(ctx, next); err != nil {
				return err
			}

			if next.IsEarned && !wasEarned {
				earned = append(earned, &AchievementView{
					Achievement:        def,
					State:              next,
					CelebrationPending: s.engine.ShouldShowCelebration(next),
				})
			}
		}

		return nil
	})

	if err != nil {
		s.logger.Warn("achievement evaluation failed",
			"error", err,
			"child_id", childID)
		return nil, err
	}

	if len(earned) > 0 {
		s.logger.Info("achievements earned",
			"child_id", childID,
			"count", len(earned))
	}

	return earned, nil
}

// ListForChild implements AchievementService.ListForChild.
func (s *achievementServiceImpl) ListForChild(
	ctx context.Context,
	parentID, childID uuid.UUID,
) ([]*AchievementView, error) {
	child, err := s.childStore.GetByID(ctx, childID)
	if err != nil {
		return nil, err
	}
	if child.ParentID != parentID {
		return nil, ErrNotOwned
	}

	defs, err := s.achStore.ListForAge(ctx, child.AgeYears)
	if err != nil {
		return nil, err
	}

	states, err := s.stateStore.ListByChild(ctx, childID)
	if err != nil {
		return nil, err
	}

	stateByID := make(map[uuid.UUID]*domain.ChildAchievement, len(states))
	for _, st := range states {
		stateByID[st.AchievementID] = st
	}

	views := make([]*AchievementView, 0, len(defs))
	for _, def := range defs {
		if !def.AppliesTo(child.AgeYears) {
			continue
		}
		state := stateByID[def.ID]
		if !s.engine.IsVisibleToChild(def, state, child.IsAdvanced) {
			continue
		}
		views = append(views, &AchievementView{
			Achievement:        def,
			State:              state,
			CelebrationPending: s.engine.ShouldShowCelebration(state),
		})
	}

	return views, nil
}

// AcknowledgeCelebration implements AchievementService.AcknowledgeCelebration.
func (s *achievementServiceImpl) AcknowledgeCelebration(
	ctx context.Context,
	parentID, childID, achievementID uuid.UUID,
) (*domain.ChildAchievement, error) {
	child, err := s.childStore.GetByID(ctx, childID)
	if err != nil {
		return nil, err
	}
	if child.ParentID != parentID {
		return nil, ErrNotOwned
	}

	state, err := s.stateStore.Get(ctx, childID, achievementID)
	if err != nil {
		return nil, err
	}

	now := s.timeFn()
	if state.IsExpired(now) || !s.engine.ShouldShowCelebration(state) {
		return nil, ErrNoCelebrationPending
	}

	next, err := s.engine.MarkCelebrationShown(state, now)
	if err != nil {
		return nil, &ServiceError{Operation: "acknowledge_celebration", Message: "failed to mark celebration", Err: err}
	}

	if err := s.stateStore.Update(ctx, next); err != nil {
		return nil, err
	}

	s.logger.Info("celebration acknowledged",
		"child_id", childID,
		"achievement_id", achievementID)
	return next, nil
}

// loadOrCreateState fetches the child's state for the definition, building a
// fresh zero-progress state when none exists yet.
func (s *achievementServiceImpl) loadOrCreateState(
	ctx context.Context,
	states store.ChildAchievementStore,
	childID, achievementID uuid.UUID,
	now time.Time,
) (*domain.ChildAchievement, bool, error) {
	state, err := states.Get(ctx, childID, achievementID)
	if err == nil {
		return state, false, nil
	}
	if !errors.Is(err, store.ErrChildAchievementNotFound) {
		return nil, false, err
	}

	fresh, err := domain.NewChildAchievement(childID, achievementID, now)
	if err != nil {
		return nil, false, &ServiceError{Operation: "evaluate_achievements", Message: "failed to create state", Err: err}
	}
	return fresh, true, nil
}

// streakEndingAt counts consecutive days with activity walking back from
// today. A day without activity before today breaks the streak; a quiet
// today does not, so an evening evaluation still sees yesterday's streak.
func streakEndingAt(days map[string]bool, now time.Time) int {
	day := now.UTC()
	streak := 0

	if !days[day.Format("2006-01-02")] {
		day = day.AddDate(0, 0, -1)
	}

	// Bounded scan; a streak cannot be longer than the number of distinct
	// active days.
	for i := 0; i <= len(days); i++ {
		if !days[day.Format("2006-01-02")] {
			break
		}
		streak++
		day = day.AddDate(0, 0, -1)
	}

	return streak
}
