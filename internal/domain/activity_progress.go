package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Star rating bounds for completed activities
const (
	MinStars = 0
	MaxStars = 3
)

// Common validation errors for ActivityProgress
var (
	ErrEmptyProgressID         = errors.New("activity progress ID cannot be empty")
	ErrEmptyProgressChildID    = errors.New("activity progress child ID cannot be empty")
	ErrEmptyProgressActivityID = errors.New("activity progress activity ID cannot be empty")
	ErrInvalidStars            = errors.New("stars earned must be between 0 and 3")
	ErrNegativeProgressCount   = errors.New("progress counters cannot be negative")
	ErrInvalidTotalQuestions   = errors.New("total questions cannot be negative")
)

// ActivityProgress is the unique per (child, activity) learning record. It is
// created on the first attempt and updated additively on every subsequent
// one; the core never deletes it. StarsEarned is only meaningful once
// IsCompleted is true and is always the output of the progress engine's
// rating function, never set independently.
type ActivityProgress struct {
	ID         uuid.UUID `json:"id"`
	ChildID    uuid.UUID `json:"child_id"`
	ActivityID uuid.UUID `json:"activity_id"`

	IsCompleted bool `json:"is_completed"`
	StarsEarned int  `json:"stars_earned"`

	TotalScore int `json:"total_score"`
	MaxScore   int `json:"max_score"`

	AttemptCount     int `json:"attempt_count"`
	CorrectAnswers   int `json:"correct_answers"`
	TotalQuestions   int `json:"total_questions"`
	TimeSpentSeconds int `json:"time_spent_seconds"`
	HintsUsed        int `json:"hints_used"`

	NeededExtraHelp bool `json:"needed_extra_help"`

	FirstAttemptAt time.Time  `json:"first_attempt_at"`
	LastAttemptAt  time.Time  `json:"last_attempt_at"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`

	DifficultyLevel DifficultyLevel `json:"difficulty_level"`

	NeedsSync bool `json:"needs_sync"`
	AuditFields
}

// Validate checks if the ActivityProgress has valid data.
// Returns an error if any field fails validation.
func (p *ActivityProgress) Validate() error {
	if p.ID == uuid.Nil {
		return ErrEmptyProgressID
	}

	if p.ChildID == uuid.Nil {
		return ErrEmptyProgressChildID
	}

	if p.ActivityID == uuid.Nil {
		return ErrEmptyProgressActivityID
	}

	if p.StarsEarned < MinStars || p.StarsEarned > MaxStars {
		return ErrInvalidStars
	}

	if p.TotalQuestions < 0 {
		return ErrInvalidTotalQuestions
	}

	if p.AttemptCount < 0 || p.CorrectAnswers < 0 ||
		p.TimeSpentSeconds < 0 || p.HintsUsed < 0 {
		return ErrNegativeProgressCount
	}

	return nil
}

// AccuracyPercent returns the child's accuracy for this activity as a
// percentage. A record with no questions yields 0 rather than failing.
func (p *ActivityProgress) AccuracyPercent() float64 {
	if p.TotalQuestions == 0 {
		return 0
	}
	return float64(p.CorrectAnswers) / float64(p.TotalQuestions) * 100
}

// AverageTimePerAttempt returns the mean seconds spent per attempt,
// or 0 when no attempts have been recorded.
func (p *ActivityProgress) AverageTimePerAttempt() float64 {
	if p.AttemptCount == 0 {
		return 0
	}
	return float64(p.TimeSpentSeconds) / float64(p.AttemptCount)
}
