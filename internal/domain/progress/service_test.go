package progress

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cvelasquez/eduplay-api/internal/domain"
)

func TestNewRecord(t *testing.T) {
	t.Parallel()
	service := NewDefaultService()
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

	t.Run("creates a fresh record", func(t *testing.T) {
		t.Parallel()
		childID := uuid.New()
		activityID := uuid.New()

		rec, err := service.NewRecord(childID, activityID, 10, domain.DifficultyMedium, now)
		require.NoError(t, err)
		require.NotNil(t, rec)

		assert.Equal(t, childID, rec.ChildID)
		assert.Equal(t, activityID, rec.ActivityID)
		assert.Equal(t, 10, rec.TotalQuestions)
		assert.Equal(t, 10, rec.MaxScore)
		assert.Zero(t, rec.AttemptCount)
		assert.False(t, rec.IsCompleted)
		assert.Equal(t, now, rec.FirstAttemptAt)
		assert.True(t, rec.NeedsSync)
	})

	testCases := []struct {
		name           string
		childID        uuid.UUID
		activityID     uuid.UUID
		totalQuestions int
		wantErr        error
	}{
		{
			name:           "rejects an empty child ID",
			childID:        uuid.Nil,
			activityID:     uuid.New(),
			totalQuestions: 10,
			wantErr:        ErrEmptyChildID,
		},
		{
			name:           "rejects an empty activity ID",
			childID:        uuid.New(),
			activityID:     uuid.Nil,
			totalQuestions: 10,
			wantErr:        ErrEmptyActivityID,
		},
		{
			name:           "rejects zero questions",
			childID:        uuid.New(),
			activityID:     uuid.New(),
			totalQuestions: 0,
			wantErr:        ErrNoQuestions,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			rec, err := service.NewRecord(
				tc.childID, tc.activityID, tc.totalQuestions, domain.DifficultyEasy, now)
			assert.ErrorIs(t, err, tc.wantErr)
			assert.Nil(t, rec)
		})
	}
}

func TestRecordAttempt(t *testing.T) {
	t.Parallel()
	service := NewDefaultService()
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

	newRec := func(t *testing.T) *domain.ActivityProgress {
		t.Helper()
		rec, err := service.NewRecord(uuid.New(), uuid.New(), 10, domain.DifficultyEasy, now)
		require.NoError(t, err)
		return rec
	}

	t.Run("perfect first attempt earns three stars", func(t *testing.T) {
		t.Parallel()
		next, err := service.RecordAttempt(newRec(t), Attempt{
			QuestionsAnswered: 10,
			CorrectAnswers:    10,
			TimeSpentSeconds:  120,
		}, now)
		require.NoError(t, err)

		assert.Equal(t, 1, next.AttemptCount)
		assert.True(t, next.IsCompleted)
		require.NotNil(t, next.CompletedAt)
		assert.Equal(t, now, *next.CompletedAt)
		assert.Equal(t, 3, next.StarsEarned)
		assert.Equal(t, 10, next.CorrectAnswers)
		assert.Equal(t, 120, next.TimeSpentSeconds)
		assert.False(t, next.NeededExtraHelp)
	})

	t.Run("one or two errors earn two stars", func(t *testing.T) {
		t.Parallel()
		next, err := service.RecordAttempt(newRec(t), Attempt{
			QuestionsAnswered: 10,
			CorrectAnswers:    8,
		}, now)
		require.NoError(t, err)
		assert.Equal(t, 2, next.StarsEarned)
	})

	t.Run("three or more errors earn one star", func(t *testing.T) {
		t.Parallel()
		next, err := service.RecordAttempt(newRec(t), Attempt{
			QuestionsAnswered: 10,
			CorrectAnswers:    6,
		}, now)
		require.NoError(t, err)
		assert.Equal(t, 1, next.StarsEarned)
	})

	t.Run("partial attempt does not complete the record", func(t *testing.T) {
		t.Parallel()
		next, err := service.RecordAttempt(newRec(t), Attempt{
			QuestionsAnswered: 4,
			CorrectAnswers:    4,
		}, now)
		require.NoError(t, err)
		assert.False(t, next.IsCompleted)
		assert.Nil(t, next.CompletedAt)
		assert.Zero(t, next.StarsEarned)
	})

	t.Run("fold accumulates and never regresses", func(t *testing.T) {
		t.Parallel()
		rec := newRec(t)

		first, err := service.RecordAttempt(rec, Attempt{
			QuestionsAnswered: 10,
			CorrectAnswers:    9,
			TimeSpentSeconds:  100,
			HintsUsed:         1,
		}, now)
		require.NoError(t, err)
		assert.Equal(t, 2, first.StarsEarned)

		// A worse later attempt adds time and attempts but cannot lower the
		// correct-answer count, undo completion, or change the latched stars.
		later := now.Add(time.Hour)
		second, err := service.RecordAttempt(first, Attempt{
			QuestionsAnswered: 10,
			CorrectAnswers:    5,
			TimeSpentSeconds:  80,
			HintsUsed:         1,
		}, later)
		require.NoError(t, err)

		assert.Equal(t, 2, second.AttemptCount)
		assert.Equal(t, 180, second.TimeSpentSeconds)
		assert.Equal(t, 2, second.HintsUsed)
		assert.Equal(t, 9, second.CorrectAnswers)
		assert.Equal(t, 2, second.StarsEarned)
		assert.True(t, second.IsCompleted)
		require.NotNil(t, second.CompletedAt)
		assert.Equal(t, now, *second.CompletedAt)
		assert.Equal(t, later, second.LastAttemptAt)

		// Input record is untouched.
		assert.Equal(t, 1, first.AttemptCount)
	})

	t.Run("extra-help flag latches on heavy hint use", func(t *testing.T) {
		t.Parallel()
		next, err := service.RecordAttempt(newRec(t), Attempt{
			QuestionsAnswered: 10,
			CorrectAnswers:    10,
			HintsUsed:         6,
		}, now)
		require.NoError(t, err)
		assert.True(t, next.NeededExtraHelp)
	})

	t.Run("extra-help flag latches after too many attempts", func(t *testing.T) {
		t.Parallel()
		rec := newRec(t)
		var err error
		for i := 0; i < 3; i++ {
			rec, err = service.RecordAttempt(rec, Attempt{
				QuestionsAnswered: 4,
				CorrectAnswers:    2,
			}, now)
			require.NoError(t, err)
		}
		assert.True(t, rec.NeededExtraHelp)
	})

	t.Run("rejects negative attempt values", func(t *testing.T) {
		t.Parallel()
		_, err := service.RecordAttempt(newRec(t), Attempt{CorrectAnswers: -1}, now)
		assert.ErrorIs(t, err, ErrInvalidAttempt)
	})

	t.Run("rejects a nil record", func(t *testing.T) {
		t.Parallel()
		_, err := service.RecordAttempt(nil, Attempt{}, now)
		assert.ErrorIs(t, err, ErrNilRecord)
	})
}

func TestCrownChallengeEligible(t *testing.T) {
	t.Parallel()
	service := NewDefaultService()
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

	attempt := func(t *testing.T, a Attempt) *domain.ActivityProgress {
		t.Helper()
		rec, err := service.NewRecord(uuid.New(), uuid.New(), 10, domain.DifficultyHard, now)
		require.NoError(t, err)
		next, err := service.RecordAttempt(rec, a, now)
		require.NoError(t, err)
		return next
	}

	t.Run("perfect hint-free completion qualifies", func(t *testing.T) {
		t.Parallel()
		rec := attempt(t, Attempt{QuestionsAnswered: 10, CorrectAnswers: 10})
		assert.True(t, service.CrownChallengeEligible(rec))
	})

	t.Run("hints disqualify", func(t *testing.T) {
		t.Parallel()
		rec := attempt(t, Attempt{QuestionsAnswered: 10, CorrectAnswers: 10, HintsUsed: 1})
		assert.False(t, service.CrownChallengeEligible(rec))
	})

	t.Run("two stars disqualify", func(t *testing.T) {
		t.Parallel()
		rec := attempt(t, Attempt{QuestionsAnswered: 10, CorrectAnswers: 9})
		assert.False(t, service.CrownChallengeEligible(rec))
	})

	t.Run("incomplete record disqualifies", func(t *testing.T) {
		t.Parallel()
		rec := attempt(t, Attempt{QuestionsAnswered: 4, CorrectAnswers: 4})
		assert.False(t, service.CrownChallengeEligible(rec))
	})

	t.Run("nil record disqualifies", func(t *testing.T) {
		t.Parallel()
		assert.False(t, service.CrownChallengeEligible(nil))
	})
}

func TestNeedsAdditionalSupport(t *testing.T) {
	t.Parallel()
	service := NewDefaultService()
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

	base := func(t *testing.T) *domain.ActivityProgress {
		t.Helper()
		rec, err := service.NewRecord(uuid.New(), uuid.New(), 10, domain.DifficultyEasy, now)
		require.NoError(t, err)
		return rec
	}

	t.Run("fresh record needs no support", func(t *testing.T) {
		t.Parallel()
		next, err := service.RecordAttempt(base(t), Attempt{
			QuestionsAnswered: 10,
			CorrectAnswers:    9,
		}, now)
		require.NoError(t, err)
		assert.False(t, service.NeedsAdditionalSupport(next))
	})

	t.Run("repeated attempts trigger support", func(t *testing.T) {
		t.Parallel()
		rec := base(t)
		var err error
		for i := 0; i < 4; i++ {
			rec, err = service.RecordAttempt(rec, Attempt{QuestionsAnswered: 2}, now)
			require.NoError(t, err)
		}
		assert.True(t, service.NeedsAdditionalSupport(rec))
	})

	t.Run("low completed accuracy triggers support", func(t *testing.T) {
		t.Parallel()
		next, err := service.RecordAttempt(base(t), Attempt{
			QuestionsAnswered: 10,
			CorrectAnswers:    5,
		}, now)
		require.NoError(t, err)
		assert.True(t, service.NeedsAdditionalSupport(next))
	})

	t.Run("nil record needs no support", func(t *testing.T) {
		t.Parallel()
		assert.False(t, service.NeedsAdditionalSupport(nil))
	})
}
