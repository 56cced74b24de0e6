package achievement

// Snapshot is the caller-assembled set of aggregate values the evaluators
// read. The engine never computes aggregates itself: totals across many
// progress records are the reporting collaborator's job and arrive here as
// plain numbers.
type Snapshot struct {
	// TotalStars is the sum of stars earned across all completed activities.
	TotalStars int `json:"total_stars"`

	// StreakDays is the current consecutive-day learning streak.
	StreakDays int `json:"streak_days"`

	// CrownChallengesCompleted is the count of completed crown challenges.
	CrownChallengesCompleted int `json:"crown_challenges_completed"`

	// ActivitiesCompleted is the count of completed activities.
	ActivitiesCompleted int `json:"activities_completed"`

	// AverageCompletionTimeSeconds is the mean completion time across
	// completed activities. Zero means no completions have been recorded.
	AverageCompletionTimeSeconds float64 `json:"average_completion_time_seconds"`

	// MasteredSubjects flags each subject the child has mastered, as
	// computed by the reporting collaborator against the catalog's
	// star thresholds.
	MasteredSubjects map[string]bool `json:"mastered_subjects"`
}

// Evaluation is the outcome of checking one achievement's criteria against a
// snapshot: whether it is satisfied, and the progress numbers to feed into
// the state update protocol.
type Evaluation struct {
	Satisfied bool `json:"satisfied"`
	Current   int  `json:"current"`
	Target    int  `json:"target"`
}
