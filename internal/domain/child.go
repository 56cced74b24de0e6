package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// DifficultyLevel represents the difficulty tier of learning content.
type DifficultyLevel string

// Possible difficulty levels
const (
	DifficultyEasy   DifficultyLevel = "easy"
	DifficultyMedium DifficultyLevel = "medium"
	DifficultyHard   DifficultyLevel = "hard"
)

// Common validation errors for Child
var (
	ErrEmptyChildID       = errors.New("child ID cannot be empty")
	ErrEmptyChildParentID = errors.New("child parent ID cannot be empty")
	ErrEmptyChildName     = errors.New("child name cannot be empty")
	ErrInvalidChildAge    = errors.New("child age must be between 2 and 12 years")
	ErrInvalidDifficulty  = errors.New("invalid difficulty level")
)

// Child is a learner profile owned by a parent account. The IsAdvanced flag
// is maintained by the progress reporting path and gates crown-challenge
// achievements.
type Child struct {
	ID                  uuid.UUID       `json:"id"`
	ParentID            uuid.UUID       `json:"parent_id"`
	Name                string          `json:"name"`
	AgeYears            int             `json:"age_years"`
	PreferredDifficulty DifficultyLevel `json:"preferred_difficulty"`
	IsAdvanced          bool            `json:"is_advanced"`
	NeedsSync           bool            `json:"needs_sync"`
	AuditFields
}

// NewChild creates a new child profile under the given parent account.
// Returns an error if validation fails.
func NewChild(parentID uuid.UUID, name string, ageYears int, now time.Time) (*Child, error) {
	child := &Child{
		ID:                  uuid.New(),
		ParentID:            parentID,
		Name:                name,
		AgeYears:            ageYears,
		PreferredDifficulty: DifficultyEasy,
		AuditFields:         NewAuditFields(now),
	}

	if err := child.Validate(); err != nil {
		return nil, err
	}

	return child, nil
}

// Validate checks if the Child has valid data.
// Returns an error if any field fails validation.
func (c *Child) Validate() error {
	if c.ID == uuid.Nil {
		return ErrEmptyChildID
	}

	if c.ParentID == uuid.Nil {
		return ErrEmptyChildParentID
	}

	if c.Name == "" {
		return ErrEmptyChildName
	}

	if c.AgeYears < 2 || c.AgeYears > 12 {
		return ErrInvalidChildAge
	}

	if !isValidDifficulty(c.PreferredDifficulty) {
		return ErrInvalidDifficulty
	}

	return nil
}

// isValidDifficulty checks if the given level is a valid DifficultyLevel.
func isValidDifficulty(level DifficultyLevel) bool {
	switch level {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	default:
		return false
	}
}
