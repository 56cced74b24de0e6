package achievement

import (
	"github.com/cvelasquez/eduplay-api/internal/domain"
)

// Params defines all configurable parameters for achievement progress,
// earning, and visibility.
type Params struct {
	// HiddenRevealPercent is the progress percentage at which a hidden
	// achievement becomes visible to the child.
	HiddenRevealPercent int

	// RarityMultipliers scale the base points awarded per rarity tier.
	RarityMultipliers map[domain.AchievementRarity]float64
}

// ParamsConfig allows overriding the default parameters when creating a new
// Params instance.
type ParamsConfig struct {
	HiddenRevealPercent int

	CommonMultiplier    float64
	RareMultiplier      float64
	EpicMultiplier      float64
	LegendaryMultiplier float64
}

// NewDefaultParams creates a new Params instance with default values.
func NewDefaultParams() *Params {
	return &Params{
		HiddenRevealPercent: 80,

		RarityMultipliers: map[domain.AchievementRarity]float64{
			domain.RarityCommon:    1.0,
			domain.RarityRare:      1.5,
			domain.RarityEpic:      2.0,
			domain.RarityLegendary: 3.0,
		},
	}
}

// NewParams creates a new Params instance with custom configuration.
// Zero-valued fields keep their defaults.
func NewParams(config ParamsConfig) *Params {
	params := NewDefaultParams()

	if config.HiddenRevealPercent > 0 {
		params.HiddenRevealPercent = config.HiddenRevealPercent
	}

	if config.CommonMultiplier > 0 {
		params.RarityMultipliers[domain.RarityCommon] = config.CommonMultiplier
	}
	if config.RareMultiplier > 0 {
		params.RarityMultipliers[domain.RarityRare] = config.RareMultiplier
	}
	if config.EpicMultiplier > 0 {
		params.RarityMultipliers[domain.RarityEpic] = config.EpicMultiplier
	}
	if config.LegendaryMultiplier > 0 {
		params.RarityMultipliers[domain.RarityLegendary] = config.LegendaryMultiplier
	}

	return params
}
