package achievement

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cvelasquez/eduplay-api/internal/domain"
)

// Common criteria errors
var (
	ErrEmptyCriteria       = errors.New("criteria payload is empty")
	ErrUnknownCriteriaType = errors.New("unknown achievement type")
	ErrMissingCriteriaKey  = errors.New("criteria payload is missing a required key")
)

// Criteria is the strongly typed form of an achievement's declarative
// payload. Each achievement type has its own variant; payloads are parsed
// once at catalog load rather than per evaluation.
type Criteria interface {
	// Type returns the achievement type this criteria variant belongs to.
	Type() domain.AchievementType
}

// SubjectMasterCriteria is earned when the child has mastered the declared
// subject (every activity in it completed with at least MinStars).
type SubjectMasterCriteria struct {
	Subject  string `json:"subject"`
	MinStars int    `json:"min_stars"`
}

// Type implements Criteria.
func (SubjectMasterCriteria) Type() domain.AchievementType {
	return domain.AchievementTypeSubjectMaster
}

// StarCollectorCriteria is earned once the child's total stars reach MinStars.
type StarCollectorCriteria struct {
	MinStars int `json:"min_stars"`
}

// Type implements Criteria.
func (StarCollectorCriteria) Type() domain.AchievementType {
	return domain.AchievementTypeStarCollector
}

// StreakKeeperCriteria is earned once the child's learning streak reaches
// MinDays consecutive days.
type StreakKeeperCriteria struct {
	MinDays int `json:"min_days"`
}

// Type implements Criteria.
func (StreakKeeperCriteria) Type() domain.AchievementType {
	return domain.AchievementTypeStreakKeeper
}

// CrownChampionCriteria is earned once the child has completed
// MinCrownChallenges crown challenges.
type CrownChampionCriteria struct {
	MinCrownChallenges int `json:"min_crown_challenges"`
}

// Type implements Criteria.
func (CrownChampionCriteria) Type() domain.AchievementType {
	return domain.AchievementTypeCrownChampion
}

// FirstStepCriteria is earned on the child's first completed activity. It
// carries no configuration.
type FirstStepCriteria struct{}

// Type implements Criteria.
func (FirstStepCriteria) Type() domain.AchievementType {
	return domain.AchievementTypeFirstStep
}

// SpeedLearnerCriteria is earned while the child's average completion time
// stays at or under MaxAverageTimeSeconds.
type SpeedLearnerCriteria struct {
	MaxAverageTimeSeconds float64 `json:"max_average_time_seconds"`
}

// Type implements Criteria.
func (SpeedLearnerCriteria) Type() domain.AchievementType {
	return domain.AchievementTypeSpeedLearner
}

// ParseCriteria decodes the raw payload into the variant selected by the
// achievement type, reporting authoring mistakes explicitly. Evaluation
// paths must treat a parse error as "not satisfied", never as a failure of
// the learning flow that triggered it.
func ParseCriteria(typ domain.AchievementType, payload json.RawMessage) (Criteria, error) {
	if len(payload) == 0 {
		return nil, ErrEmptyCriteria
	}

	switch typ {
	case domain.AchievementTypeSubjectMaster:
		var c SubjectMasterCriteria
		if err := json.Unmarshal(payload, &c); err != nil {
			return nil, fmt.Errorf("parsing subject_master criteria: %w", err)
		}
		if c.Subject == "" {
			return nil, fmt.Errorf("%w: subject", ErrMissingCriteriaKey)
		}
		if c.MinStars <= 0 {
			return nil, fmt.Errorf("%w: min_stars", ErrMissingCriteriaKey)
		}
		return c, nil

	case domain.AchievementTypeStarCollector:
		var c StarCollectorCriteria
		if err := json.Unmarshal(payload, &c); err != nil {
			return nil, fmt.Errorf("parsing star_collector criteria: %w", err)
		}
		if c.MinStars <= 0 {
			return nil, fmt.Errorf("%w: min_stars", ErrMissingCriteriaKey)
		}
		return c, nil

	case domain.AchievementTypeStreakKeeper:
		var c StreakKeeperCriteria
		if err := json.Unmarshal(payload, &c); err != nil {
			return nil, fmt.Errorf("parsing streak_keeper criteria: %w", err)
		}
		if c.MinDays <= 0 {
			return nil, fmt.Errorf("%w: min_days", ErrMissingCriteriaKey)
		}
		return c, nil

	case domain.AchievementTypeCrownChampion:
		var c CrownChampionCriteria
		if err := json.Unmarshal(payload, &c); err != nil {
			return nil, fmt.Errorf("parsing crown_champion criteria: %w", err)
		}
		if c.MinCrownChallenges <= 0 {
			return nil, fmt.Errorf("%w: min_crown_challenges", ErrMissingCriteriaKey)
		}
		return c, nil

	case domain.AchievementTypeFirstStep:
		var c FirstStepCriteria
		if err := json.Unmarshal(payload, &c); err != nil {
			return nil, fmt.Errorf("parsing first_step criteria: %w", err)
		}
		return c, nil

	case domain.AchievementTypeSpeedLearner:
		var c SpeedLearnerCriteria
		if err := json.Unmarshal(payload, &c); err != nil {
			return nil, fmt.Errorf("parsing speed_learner criteria: %w", err)
		}
		if c.MaxAverageTimeSeconds <= 0 {
			return nil, fmt.Errorf("%w: max_average_time_seconds", ErrMissingCriteriaKey)
		}
		return c, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCriteriaType, typ)
	}
}
