package achievement

import (
	"math"
	"time"

	"github.com/cvelasquez/eduplay-api/internal/domain"
)

// applyProgress runs steps 1-4 of the progress update protocol on a copy of
// the state: store the new numbers, derive the percentage, refresh the
// in-progress flag, and latch the progress-started timestamp on first
// nonzero progress. Earning (step 5) is decided by the caller, which knows
// the definition.
func applyProgress(state *domain.ChildAchievement, current, target int, now time.Time) *domain.ChildAchievement {
	next := cloneState(state)

	next.CurrentProgress = current
	next.TargetProgress = target
	next.ProgressPercent = progressPercent(current, target)
	next.IsInProgress = next.ProgressPercent > 0 && !next.IsEarned

	if current > 0 && next.ProgressStartedAt == nil {
		startedAt := now
		next.ProgressStartedAt = &startedAt
	}

	next.NeedsSync = true
	next.Touch(now)
	return next
}

// applyEarn marks a copy of the state earned with the given bonus and
// context, arming the celebration and recomputing the points award. The
// caller has already checked repeatability.
func applyEarn(
	state *domain.ChildAchievement,
	def *domain.Achievement,
	bonusMultiplier float64,
	context string,
	now time.Time,
	params *Params,
) *domain.ChildAchievement {
	next := cloneState(state)

	next.IsEarned = true
	next.EarnedCount = state.EarnedCount + 1
	earnedAt := now
	next.EarnedAt = &earnedAt
	next.EarnContext = context
	next.CelebrationShown = false
	next.BonusMultiplier = bonusMultiplier
	next.PointsEarned = earnedPoints(def, bonusMultiplier, params)

	next.NeedsSync = true
	next.Touch(now)
	return next
}

// progressPercent derives the 0-100 percentage. A zero target always yields
// zero rather than dividing.
func progressPercent(current, target int) int {
	if target <= 0 {
		return 0
	}

	pct := int(math.Round(float64(current) / float64(target) * 100))
	if pct > 100 {
		pct = 100
	}
	if pct < 0 {
		pct = 0
	}
	return pct
}

// earnedPoints computes base points scaled by the bonus and rarity
// multipliers, rounded to the nearest whole point.
func earnedPoints(def *domain.Achievement, bonusMultiplier float64, params *Params) int {
	rarity, ok := params.RarityMultipliers[def.Rarity]
	if !ok {
		rarity = 1.0
	}
	return int(math.Round(float64(def.Points) * bonusMultiplier * rarity))
}

// cloneState returns a copy of state with its own optional timestamps.
func cloneState(state *domain.ChildAchievement) *domain.ChildAchievement {
	next := *state

	next.ProgressStartedAt = copyTime(state.ProgressStartedAt)
	next.EarnedAt = copyTime(state.EarnedAt)
	next.ExpiresAt = copyTime(state.ExpiresAt)

	return &next
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
