package progress

import (
	"time"

	"github.com/cvelasquez/eduplay-api/internal/domain"
)

// calculateStarRating maps a completed activity's error count to a star
// rating: a perfect run earns three stars, one or two errors earn two, and
// anything worse earns one.
func calculateStarRating(totalQuestions, correctAnswers int) int {
	errs := totalQuestions - correctAnswers

	switch {
	case errs <= 0:
		return 3
	case errs <= 2:
		return 2
	default:
		return 1
	}
}

// applyAttempt folds one attempt into a copy of the record.
//
// The fold is additive and never regresses: attempt count, time, and hints
// accumulate; the correct-answer count takes the running maximum so a worse
// later attempt cannot lower it; completion and the extra-help flag are
// one-way; the star rating latches on first completion.
func applyAttempt(
	rec *domain.ActivityProgress,
	attempt Attempt,
	now time.Time,
	params *Params,
) *domain.ActivityProgress {
	next := cloneRecord(rec)

	next.AttemptCount = rec.AttemptCount + 1
	next.TimeSpentSeconds = rec.TimeSpentSeconds + attempt.TimeSpentSeconds
	next.HintsUsed = rec.HintsUsed + attempt.HintsUsed
	next.LastAttemptAt = now

	if attempt.CorrectAnswers > next.CorrectAnswers {
		next.CorrectAnswers = attempt.CorrectAnswers
	}
	next.TotalScore = next.CorrectAnswers

	if !next.IsCompleted && attempt.QuestionsAnswered >= next.TotalQuestions {
		next.IsCompleted = true
		completedAt := now
		next.CompletedAt = &completedAt
		next.StarsEarned = calculateStarRating(next.TotalQuestions, next.CorrectAnswers)
	}

	if !next.NeededExtraHelp {
		next.NeededExtraHelp = detectExtraHelp(next, params)
	}

	next.NeedsSync = true
	next.Touch(now)
	return next
}

// detectExtraHelp reports whether the record has crossed either extra-help
// threshold: hints beyond half the questions, or too many attempts.
func detectExtraHelp(rec *domain.ActivityProgress, params *Params) bool {
	if float64(rec.HintsUsed) > float64(rec.TotalQuestions)/2 {
		return true
	}
	return rec.AttemptCount > params.MaxAttemptsBeforeExtraHelp
}

// cloneRecord returns a copy of rec with its own CompletedAt timestamp.
func cloneRecord(rec *domain.ActivityProgress) *domain.ActivityProgress {
	next := *rec

	if rec.CompletedAt != nil {
		completedAt := *rec.CompletedAt
		next.CompletedAt = &completedAt
	}

	return &next
}
