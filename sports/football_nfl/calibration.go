package football_nfl

import (
	"fmt"
	"os"

	"github.com/XavierBriggs/fortuna/services/valuation-engine/pkg/models"
	"gopkg.in/yaml.v3"
)

// Calibration is the YAML document for per-season recalibration. Every
// section is optional; present sections replace the compiled defaults
// wholesale (partial merges inside a table invite silent drift between the
// file and the defaults).
type Calibration struct {
	HomeFieldConstant *float64 `yaml:"home_field_constant"`
	RatingCarryWeight *float64 `yaml:"rating_carry_weight"`
	BaselineTotal     *float64 `yaml:"baseline_total"`

	PositionValues map[string]float64            `yaml:"position_values"`
	InjuryCurves   map[string]models.InjuryCurve `yaml:"injury_curves"`
	StatusCapacity map[string]float64            `yaml:"status_capacity"`
	Severity       *models.SeverityThresholds    `yaml:"severity_thresholds"`

	Factors     map[string]models.SituationalFactor `yaml:"situational_factors"`
	WindBands   []models.WeatherBand                `yaml:"wind_bands"`
	ColdBands   []models.WeatherBand                `yaml:"cold_bands"`
	PrecipBands []models.WeatherBand                `yaml:"precip_bands"`
	QBModifiers map[string]float64                  `yaml:"qb_weather_modifiers"`

	TierBands  []models.TierBand `yaml:"tier_bands"`
	KeyNumbers []float64         `yaml:"key_numbers"`
}

// LoadCalibration applies a YAML calibration file over the config. Call it
// before the config is handed to any component; the config is immutable
// after construction.
func (c *Config) LoadCalibration(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read calibration file: %w", err)
	}

	var cal Calibration
	if err := yaml.Unmarshal(data, &cal); err != nil {
		return fmt.Errorf("failed to parse calibration file: %w", err)
	}

	if cal.HomeFieldConstant != nil {
		c.HomeField = *cal.HomeFieldConstant
	}
	if cal.RatingCarryWeight != nil {
		c.CarryWeight = *cal.RatingCarryWeight
	}
	if cal.BaselineTotal != nil {
		c.LeagueTotal = *cal.BaselineTotal
	}
	if cal.PositionValues != nil {
		c.PositionValues = cal.PositionValues
	}
	if cal.InjuryCurves != nil {
		c.InjuryCurves = cal.InjuryCurves
	}
	if cal.StatusCapacity != nil {
		fallbacks := make(map[models.InjuryStatus]float64, len(cal.StatusCapacity))
		for status, capacity := range cal.StatusCapacity {
			fallbacks[models.InjuryStatus(status)] = capacity
		}
		c.StatusFallbacks = fallbacks
	}
	if cal.Severity != nil {
		c.Severity = *cal.Severity
	}
	if cal.Factors != nil {
		c.Factors = cal.Factors
	}
	if cal.WindBands != nil {
		c.Wind = cal.WindBands
	}
	if cal.ColdBands != nil {
		c.Cold = cal.ColdBands
	}
	if cal.PrecipBands != nil {
		c.Precip = cal.PrecipBands
	}
	if cal.QBModifiers != nil {
		c.QBModifiers = cal.QBModifiers
	}
	if cal.TierBands != nil {
		c.Tiers = cal.TierBands
	}
	if cal.KeyNumbers != nil {
		c.KeyNums = cal.KeyNumbers
	}

	return nil
}
