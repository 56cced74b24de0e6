package entitlement

// Params defines all configurable parameters for the subscription lifecycle
// and the entitlements derived from it.
type Params struct {
	// TrialDays is the length of the free trial granted to new accounts.
	TrialDays int

	// DefaultGraceDays is the grace window applied after a payment failure
	// when the caller does not supply one.
	DefaultGraceDays int

	// FreeDailyActivityLimit is the number of activities a child may play
	// per day without an active subscription.
	FreeDailyActivityLimit int
}

// ParamsConfig allows overriding the default parameters when creating a new
// Params instance.
type ParamsConfig struct {
	TrialDays              int
	DefaultGraceDays       int
	FreeDailyActivityLimit int
}

// NewDefaultParams creates a new Params instance with default values.
func NewDefaultParams() *Params {
	return &Params{
		TrialDays:              3,
		DefaultGraceDays:       3,
		FreeDailyActivityLimit: 10,
	}
}

// NewParams creates a new Params instance with custom configuration.
// Zero-valued fields keep their defaults.
func NewParams(config ParamsConfig) *Params {
	params := NewDefaultParams()

	if config.TrialDays > 0 {
		params.TrialDays = config.TrialDays
	}
	if config.DefaultGraceDays > 0 {
		params.DefaultGraceDays = config.DefaultGraceDays
	}
	if config.FreeDailyActivityLimit > 0 {
		params.FreeDailyActivityLimit = config.FreeDailyActivityLimit
	}

	return params
}
