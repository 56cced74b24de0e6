package progress

import (
	"errors"
	"time"

	"github.com/cvelasquez/eduplay-api/internal/domain"
	"github.com/google/uuid"
)

// Common errors
var (
	ErrNilRecord       = errors.New("activity progress record cannot be nil")
	ErrInvalidAttempt  = errors.New("attempt values cannot be negative")
	ErrNoQuestions     = errors.New("activity must have at least one question")
	ErrEmptyChildID    = errors.New("child ID cannot be empty")
	ErrEmptyActivityID = errors.New("activity ID cannot be empty")
)

// Attempt is one play-through of an activity as reported by the caller.
type Attempt struct {
	QuestionsAnswered int `json:"questions_answered"`
	CorrectAnswers    int `json:"correct_answers"`
	TimeSpentSeconds  int `json:"time_spent_seconds"`
	HintsUsed         int `json:"hints_used"`
}

// Service defines the progress-tracking operations. All operations take an
// explicit clock value and return new record instances rather than mutating
// their input.
type Service interface {
	// NewRecord creates the progress record for a (child, activity) pair on
	// the first attempt. totalQuestions comes from the content catalog.
	NewRecord(
		childID, activityID uuid.UUID,
		totalQuestions int,
		difficulty domain.DifficultyLevel,
		now time.Time,
	) (*domain.ActivityProgress, error)

	// RecordAttempt folds one attempt into the record: attempt count,
	// accumulated time and hints, and the running maximum of correct
	// answers. Completion is one-way, and the star rating latches on first
	// completion.
	RecordAttempt(
		rec *domain.ActivityProgress,
		attempt Attempt,
		now time.Time,
	) (*domain.ActivityProgress, error)

	// CrownChallengeEligible reports whether the record qualifies the child
	// for crown challenges on this activity: completed with three stars,
	// high accuracy, no hints, and no extra-help flag.
	CrownChallengeEligible(rec *domain.ActivityProgress) bool

	// NeedsAdditionalSupport is the complementary weak signal: repeated
	// attempts, heavy hint use, low completed accuracy, or the extra-help
	// flag.
	NeedsAdditionalSupport(rec *domain.ActivityProgress) bool
}

// defaultService is the standard implementation of the Service interface
type defaultService struct {
	params *Params
}

// NewDefaultService creates a new progress service with default parameters.
func NewDefaultService() Service {
	return &defaultService{
		params: NewDefaultParams(),
	}
}

// NewServiceWithParams creates a new progress service with custom parameters.
func NewServiceWithParams(params *Params) Service {
	return &defaultService{
		params: params,
	}
}

// NewRecord implements Service.NewRecord.
func (s *defaultService) NewRecord(
	childID, activityID uuid.UUID,
	totalQuestions int,
	difficulty domain.DifficultyLevel,
	now time.Time,
) (*domain.ActivityProgress, error) {
	if childID == uuid.Nil {
		return nil, ErrEmptyChildID
	}
	if activityID == uuid.Nil {
		return nil, ErrEmptyActivityID
	}
	if totalQuestions <= 0 {
		return nil, ErrNoQuestions
	}

	rec := &domain.ActivityProgress{
		ID:              uuid.New(),
		ChildID:         childID,
		ActivityID:      activityID,
		TotalQuestions:  totalQuestions,
		MaxScore:        totalQuestions,
		DifficultyLevel: difficulty,
		FirstAttemptAt:  now,
		LastAttemptAt:   now,
		NeedsSync:       true,
		AuditFields:     domain.NewAuditFields(now),
	}

	if err := rec.Validate(); err != nil {
		return nil, err
	}

	return rec, nil
}

// RecordAttempt implements Service.RecordAttempt.
func (s *defaultService) RecordAttempt(
	rec *domain.ActivityProgress,
	attempt Attempt,
	now time.Time,
) (*domain.ActivityProgress, error) {
	if rec == nil {
		return nil, ErrNilRecord
	}

	if attempt.QuestionsAnswered < 0 || attempt.CorrectAnswers < 0 ||
		attempt.TimeSpentSeconds < 0 || attempt.HintsUsed < 0 {
		return nil, ErrInvalidAttempt
	}

	next := applyAttempt(rec, attempt, now, s.params)

	if err := next.Validate(); err != nil {
		return nil, err
	}

	return next, nil
}

// CrownChallengeEligible implements Service.CrownChallengeEligible.
func (s *defaultService) CrownChallengeEligible(rec *domain.ActivityProgress) bool {
	if rec == nil || !rec.IsCompleted {
		return false
	}

	return rec.StarsEarned == domain.MaxStars &&
		rec.AccuracyPercent() >= s.params.CrownMinAccuracy &&
		rec.HintsUsed == 0 &&
		!rec.NeededExtraHelp
}

// NeedsAdditionalSupport implements Service.NeedsAdditionalSupport.
func (s *defaultService) NeedsAdditionalSupport(rec *domain.ActivityProgress) bool {
	if rec == nil {
		return false
	}

	if rec.AttemptCount > s.params.SupportAttemptThreshold {
		return true
	}

	if rec.HintsUsed > rec.TotalQuestions {
		return true
	}

	if rec.IsCompleted && rec.AccuracyPercent() < s.params.SupportAccuracyThreshold {
		return true
	}

	return rec.NeededExtraHelp
}
