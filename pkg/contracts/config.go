package contracts

import (
	"github.com/XavierBriggs/fortuna/services/valuation-engine/pkg/models"
)

// InjuryConfig supplies the calibration tables for injury valuation.
type InjuryConfig interface {
	// InjuryCurve returns the capacity curve for a recognized injury type
	InjuryCurve(injuryType string) (models.InjuryCurve, bool)

	// StatusCapacity returns the flat fallback capacity for a report status
	StatusCapacity(status models.InjuryStatus) (float64, bool)

	// PositionValue returns the base point value for a position
	PositionValue(position string) (float64, bool)

	// LeagueAveragePositionValue is the fallback for unknown positions
	LeagueAveragePositionValue() float64

	// SeverityThresholds returns the team-level severity cutoffs
	SeverityThresholds() models.SeverityThresholds
}

// SituationalConfig supplies the S/E-factor and weather calibration.
type SituationalConfig interface {
	// SituationalFactor returns the configured point value for a factor key
	SituationalFactor(key string) (models.SituationalFactor, bool)

	// TravelMileThreshold is the distance beyond which long travel applies
	TravelMileThreshold() float64

	// WindBands returns wind bands ordered by ascending threshold (MPH)
	WindBands() []models.WeatherBand

	// ColdBands returns cold bands ordered by descending threshold (°F);
	// a band applies when the temperature is at or below its threshold
	ColdBands() []models.WeatherBand

	// PrecipBands returns precipitation-chance bands ordered ascending (%)
	PrecipBands() []models.WeatherBand

	// QBWeatherModifier returns a per-player spread modifier for a weather
	// condition ("cold", "wind", "precip"), in that player's team's favor
	// when positive. Absence of data is zero, never an error.
	QBWeatherModifier(player, condition string) (float64, bool)
}

// RatingConfig supplies the power-rating recurrence parameters.
type RatingConfig interface {
	// HomeFieldConstant is the fixed league home-field value in points
	HomeFieldConstant() float64

	// RatingCarryWeight is the weight on the prior rating (0.90); the
	// observed performance gets the complement
	RatingCarryWeight() float64

	// BaselineTotal is the league-average game total, used for the
	// offense/defense sub-rating derivation
	BaselineTotal() float64
}

// ProjectionConfig supplies the line-projection parameters.
type ProjectionConfig interface {
	HomeFieldConstant() float64
	BaselineTotal() float64
}

// DetectorConfig supplies edge classification and staking parameters.
type DetectorConfig interface {
	// TierBands returns the ordered, non-overlapping confidence bands
	TierBands() []models.TierBand

	// KeyNumbers returns the statistically significant final margins
	KeyNumbers() []float64

	// KeyNumberTolerance is how close a market spread must sit to a key
	// number for the rule to apply
	KeyNumberTolerance() float64

	// KeyNumberStakeFactor scales the stake when the rule applies
	KeyNumberStakeFactor() float64

	// MaxStakeFraction caps any recommended stake
	MaxStakeFraction() float64
}
