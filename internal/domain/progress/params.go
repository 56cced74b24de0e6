package progress

// Params defines all configurable thresholds for attempt recording, the
// extra-help heuristics, and crown-challenge eligibility.
type Params struct {
	// MaxAttemptsBeforeExtraHelp is the attempt count beyond which the
	// extra-help flag latches.
	MaxAttemptsBeforeExtraHelp int

	// CrownMinAccuracy is the minimum accuracy percentage required for
	// crown-challenge eligibility.
	CrownMinAccuracy float64

	// SupportAttemptThreshold is the attempt count beyond which a child is
	// considered to need additional support.
	SupportAttemptThreshold int

	// SupportAccuracyThreshold is the completed-activity accuracy below
	// which a child is considered to need additional support.
	SupportAccuracyThreshold float64
}

// ParamsConfig allows overriding the default parameters when creating a new
// Params instance.
type ParamsConfig struct {
	MaxAttemptsBeforeExtraHelp int
	CrownMinAccuracy           float64
	SupportAttemptThreshold    int
	SupportAccuracyThreshold   float64
}

// NewDefaultParams creates a new Params instance with default values.
func NewDefaultParams() *Params {
	return &Params{
		MaxAttemptsBeforeExtraHelp: 2,
		CrownMinAccuracy:           90,
		SupportAttemptThreshold:    3,
		SupportAccuracyThreshold:   60,
	}
}

// NewParams creates a new Params instance with custom configuration.
// Zero-valued fields keep their defaults.
func NewParams(config ParamsConfig) *Params {
	params := NewDefaultParams()

	if config.MaxAttemptsBeforeExtraHelp > 0 {
		params.MaxAttemptsBeforeExtraHelp = config.MaxAttemptsBeforeExtraHelp
	}
	if config.CrownMinAccuracy > 0 {
		params.CrownMinAccuracy = config.CrownMinAccuracy
	}
	if config.SupportAttemptThreshold > 0 {
		params.SupportAttemptThreshold = config.SupportAttemptThreshold
	}
	if config.SupportAccuracyThreshold > 0 {
		params.SupportAccuracyThreshold = config.SupportAccuracyThreshold
	}

	return params
}
