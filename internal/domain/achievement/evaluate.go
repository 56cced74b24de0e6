package achievement

// evaluate checks one parsed criteria variant against a snapshot and returns
// the progress numbers for the state update protocol. Boolean criteria
// (subject mastery, speed) report 0-or-1 progress toward a target of 1.
func evaluate(criteria Criteria, snap Snapshot) Evaluation {
	switch c := criteria.(type) {
	case SubjectMasterCriteria:
		return boolEvaluation(snap.MasteredSubjects[c.Subject])

	case StarCollectorCriteria:
		return countedEvaluation(snap.TotalStars, c.MinStars)

	case StreakKeeperCriteria:
		return countedEvaluation(snap.StreakDays, c.MinDays)

	case CrownChampionCriteria:
		return countedEvaluation(snap.CrownChallengesCompleted, c.MinCrownChallenges)

	case FirstStepCriteria:
		return countedEvaluation(snap.ActivitiesCompleted, 1)

	case SpeedLearnerCriteria:
		// No completions yet means no speed data, not a fast learner.
		if snap.AverageCompletionTimeSeconds <= 0 {
			return Evaluation{Target: 1}
		}
		return boolEvaluation(snap.AverageCompletionTimeSeconds <= c.MaxAverageTimeSeconds)

	default:
		return Evaluation{}
	}
}

// countedEvaluation expresses "current of target" progress for counter-based
// criteria.
func countedEvaluation(current, target int) Evaluation {
	return Evaluation{
		Satisfied: current >= target,
		Current:   current,
		Target:    target,
	}
}

// boolEvaluation expresses all-or-nothing progress for boolean criteria.
func boolEvaluation(satisfied bool) Evaluation {
	eval := Evaluation{Satisfied: satisfied, Target: 1}
	if satisfied {
		eval.Current = 1
	}
	return eval
}
