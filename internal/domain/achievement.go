package domain

import (
	"encoding/json"
	"errors"

	"github.com/google/uuid"
)

// AchievementType selects the criteria evaluator that decides when an
// achievement is earned.
type AchievementType string

// Possible achievement type values
const (
	AchievementTypeSubjectMaster AchievementType = "subject_master"
	AchievementTypeStarCollector AchievementType = "star_collector"
	AchievementTypeStreakKeeper  AchievementType = "streak_keeper"
	AchievementTypeCrownChampion AchievementType = "crown_champion"
	AchievementTypeFirstStep     AchievementType = "first_step"
	AchievementTypeSpeedLearner  AchievementType = "speed_learner"
)

// AchievementRarity is the rarity tier of an achievement, which scales the
// points awarded when it is earned.
type AchievementRarity string

// Possible rarity tiers
const (
	RarityCommon    AchievementRarity = "common"
	RarityRare      AchievementRarity = "rare"
	RarityEpic      AchievementRarity = "epic"
	RarityLegendary AchievementRarity = "legendary"
)

// AchievementCategory groups achievements for presentation.
type AchievementCategory string

// Possible achievement categories
const (
	CategoryMathematics AchievementCategory = "mathematics"
	CategoryReading     AchievementCategory = "reading"
	CategoryLogic       AchievementCategory = "logic"
	CategoryGeneral     AchievementCategory = "general"
)

// Common validation errors for Achievement
var (
	ErrEmptyAchievementID    = errors.New("achievement ID cannot be empty")
	ErrEmptyAchievementName  = errors.New("achievement name cannot be empty")
	ErrInvalidAchievementTyp = errors.New("invalid achievement type")
	ErrInvalidRarity         = errors.New("invalid achievement rarity")
	ErrNegativePoints        = errors.New("achievement points cannot be negative")
	ErrInvalidAgeWindow      = errors.New("achievement age window is invalid")
)

// Achievement is a static catalog entry describing one declarative goal. The
// engine treats it as immutable content data: the criteria payload is parsed
// once at catalog load, and authoring mistakes degrade to "not satisfied"
// rather than failing learning flows.
type Achievement struct {
	ID          uuid.UUID           `json:"id"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Category    AchievementCategory `json:"category"`
	Type        AchievementType     `json:"type"`

	// Criteria is the declarative payload keyed by Type. Its shape is
	// defined by the achievement engine's criteria variants.
	Criteria json.RawMessage `json:"criteria"`

	Rarity AchievementRarity `json:"rarity"`
	Points int               `json:"points"`

	MinAgeYears int `json:"min_age_years"`
	MaxAgeYears int `json:"max_age_years"`

	IsHidden     bool `json:"is_hidden"`
	IsCrownOnly  bool `json:"is_crown_only"`
	IsRepeatable bool `json:"is_repeatable"`
	AuditFields
}

// Validate checks if the Achievement has valid data.
// Returns an error if any field fails validation.
func (a *Achievement) Validate() error {
	if a.ID == uuid.Nil {
		return ErrEmptyAchievementID
	}

	if a.Name == "" {
		return ErrEmptyAchievementName
	}

	if !isValidAchievementType(a.Type) {
		return ErrInvalidAchievementTyp
	}

	if !isValidRarity(a.Rarity) {
		return ErrInvalidRarity
	}

	if a.Points < 0 {
		return ErrNegativePoints
	}

	// A zero MaxAgeYears means the window is open-ended.
	if a.MinAgeYears < 0 || (a.MaxAgeYears != 0 && a.MaxAgeYears < a.MinAgeYears) {
		return ErrInvalidAgeWindow
	}

	return nil
}

// AppliesTo reports whether the achievement's age window includes the given
// age. A zero MaxAgeYears means the window is open-ended.
func (a *Achievement) AppliesTo(ageYears int) bool {
	if ageYears < a.MinAgeYears {
		return false
	}
	if a.MaxAgeYears > 0 && ageYears > a.MaxAgeYears {
		return false
	}
	return true
}

// isValidAchievementType checks if the given type is a valid AchievementType.
func isValidAchievementType(typ AchievementType) bool {
	switch typ {
	case AchievementTypeSubjectMaster, AchievementTypeStarCollector,
		AchievementTypeStreakKeeper, AchievementTypeCrownChampion,
		AchievementTypeFirstStep, AchievementTypeSpeedLearner:
		return true
	default:
		return false
	}
}

// isValidRarity checks if the given rarity is a valid AchievementRarity.
func isValidRarity(rarity AchievementRarity) bool {
	switch rarity {
	case RarityCommon, RarityRare, RarityEpic, RarityLegendary:
		return true
	default:
		return false
	}
}
