package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common validation errors for ChildAchievement
var (
	ErrEmptyChildAchievementID = errors.New("child achievement ID cannot be empty")
	ErrEmptyStateChildID       = errors.New("child achievement child ID cannot be empty")
	ErrEmptyStateAchievementID = errors.New("child achievement achievement ID cannot be empty")
	ErrInvalidProgressPercent  = errors.New("progress percentage must be between 0 and 100")
	ErrNegativeProgress        = errors.New("progress values cannot be negative")
	ErrNegativeEarnedCount     = errors.New("earned count cannot be negative")
	ErrInvalidBonusMultiplier  = errors.New("bonus multiplier must be positive")
	ErrNegativePointsEarned    = errors.New("points earned cannot be negative")
)

// ChildAchievement is the unique per (child, achievement) progress state. It
// is created lazily on the first observed progress toward the achievement and
// updated only by the achievement engine; it is never deleted while the child
// profile exists.
type ChildAchievement struct {
	ID            uuid.UUID `json:"id"`
	ChildID       uuid.UUID `json:"child_id"`
	AchievementID uuid.UUID `json:"achievement_id"`

	CurrentProgress int `json:"current_progress"`
	TargetProgress  int `json:"target_progress"`
	ProgressPercent int `json:"progress_percent"` // Derived, 0-100

	IsInProgress      bool       `json:"is_in_progress"`
	ProgressStartedAt *time.Time `json:"progress_started_at,omitempty"`

	IsEarned    bool       `json:"is_earned"`
	EarnedAt    *time.Time `json:"earned_at,omitempty"`
	EarnedCount int        `json:"earned_count"`
	EarnContext string     `json:"earn_context,omitempty"`

	CelebrationShown bool `json:"celebration_shown"`

	PointsEarned    int     `json:"points_earned"`
	BonusMultiplier float64 `json:"bonus_multiplier"`

	ExpiresAt *time.Time `json:"expires_at,omitempty"`

	NeedsSync bool `json:"needs_sync"`
	AuditFields
}

// NewChildAchievement creates a fresh, zero-progress state for the given
// child and achievement pair.
func NewChildAchievement(childID, achievementID uuid.UUID, now time.Time) (*ChildAchievement, error) {
	state := &ChildAchievement{
		ID:              uuid.New(),
		ChildID:         childID,
		AchievementID:   achievementID,
		BonusMultiplier: 1.0,
		AuditFields:     NewAuditFields(now),
	}

	if err := state.Validate(); err != nil {
		return nil, err
	}

	return state, nil
}

// Validate checks if the ChildAchievement has valid data.
// Returns an error if any field fails validation.
func (s *ChildAchievement) Validate() error {
	if s.ID == uuid.Nil {
		return ErrEmptyChildAchievementID
	}

	if s.ChildID == uuid.Nil {
		return ErrEmptyStateChildID
	}

	if s.AchievementID == uuid.Nil {
		return ErrEmptyStateAchievementID
	}

	if s.CurrentProgress < 0 || s.TargetProgress < 0 {
		return ErrNegativeProgress
	}

	if s.ProgressPercent < 0 || s.ProgressPercent > 100 {
		return ErrInvalidProgressPercent
	}

	if s.EarnedCount < 0 {
		return ErrNegativeEarnedCount
	}

	if s.BonusMultiplier <= 0 {
		return ErrInvalidBonusMultiplier
	}

	if s.PointsEarned < 0 {
		return ErrNegativePointsEarned
	}

	return nil
}

// IsExpired reports whether the state carries an expiry timestamp that has
// already passed.
func (s *ChildAchievement) IsExpired(now time.Time) bool {
	return s.ExpiresAt != nil && now.After(*s.ExpiresAt)
}
