package football_nfl

import (
	"os"
	"strconv"

	"github.com/XavierBriggs/fortuna/services/valuation-engine/pkg/models"
)

// LeagueKey identifies this sport in stream keys and persisted records.
const LeagueKey = "football_nfl"

// Config holds NFL valuation calibration. It is built once at startup and
// treated as immutable afterwards; every component receives it at
// construction through the pkg/contracts interfaces.
type Config struct {
	HomeField      float64
	CarryWeight    float64
	LeagueTotal    float64
	MaxStakePct    float64
	KeyTolerance   float64
	KeyStakeFactor float64
	TravelMiles    float64

	PositionValues  map[string]float64
	AvgPositionVal  float64
	InjuryCurves    map[string]models.InjuryCurve
	StatusFallbacks map[models.InjuryStatus]float64
	Severity        models.SeverityThresholds

	Factors     map[string]models.SituationalFactor
	Wind        []models.WeatherBand
	Cold        []models.WeatherBand
	Precip      []models.WeatherBand
	QBModifiers map[string]float64 // "player|condition" -> spread points

	Tiers   []models.TierBand
	KeyNums []float64
}

// NewConfig creates the NFL configuration with documented defaults and
// environment overrides for the scalar knobs. Table calibration (curves,
// factors, bands, tiers) comes from defaults, optionally overridden by a
// YAML calibration file via LoadCalibration.
func NewConfig() *Config {
	return &Config{
		HomeField:      getEnvFloat("HOME_FIELD_CONSTANT", 2.0),
		CarryWeight:    getEnvFloat("RATING_CARRY_WEIGHT", 0.90),
		LeagueTotal:    getEnvFloat("LEAGUE_BASELINE_TOTAL", 44.5),
		MaxStakePct:    getEnvFloat("MAX_STAKE_PCT", 0.05),
		KeyTolerance:   getEnvFloat("KEY_NUMBER_TOLERANCE", 0.5),
		KeyStakeFactor: getEnvFloat("KEY_NUMBER_STAKE_FACTOR", 1.25),
		TravelMiles:    getEnvFloat("LONG_TRAVEL_MILES", 1500),

		PositionValues: defaultPositionValues(),
		AvgPositionVal: getEnvFloat("AVG_POSITION_VALUE", 1.0),

		InjuryCurves:    defaultInjuryCurves(),
		StatusFallbacks: defaultStatusFallbacks(),
		Severity:        models.SeverityThresholds{MinorMax: 2.0, ModerateMax: 4.0, MajorMax: 7.0},

		Factors:     defaultFactors(),
		Wind:        defaultWindBands(),
		Cold:        defaultColdBands(),
		Precip:      defaultPrecipBands(),
		QBModifiers: map[string]float64{},

		Tiers:   defaultTierBands(),
		KeyNums: []float64{3, 7, 10},
	}
}

// InjuryCurve implements contracts.InjuryConfig
func (c *Config) InjuryCurve(injuryType string) (models.InjuryCurve, bool) {
	curve, ok := c.InjuryCurves[injuryType]
	return curve, ok
}

// StatusCapacity implements contracts.InjuryConfig
func (c *Config) StatusCapacity(status models.InjuryStatus) (float64, bool) {
	capacity, ok := c.StatusFallbacks[status]
	return capacity, ok
}

// PositionValue implements contracts.InjuryConfig
func (c *Config) PositionValue(position string) (float64, bool) {
	value, ok := c.PositionValues[position]
	return value, ok
}

// LeagueAveragePositionValue implements contracts.InjuryConfig
func (c *Config) LeagueAveragePositionValue() float64 {
	return c.AvgPositionVal
}

// SeverityThresholds implements contracts.InjuryConfig
func (c *Config) SeverityThresholds() models.SeverityThresholds {
	return c.Severity
}

// SituationalFactor implements contracts.SituationalConfig
func (c *Config) SituationalFactor(key string) (models.SituationalFactor, bool) {
	factor, ok := c.Factors[key]
	return factor, ok
}

// TravelMileThreshold implements contracts.SituationalConfig
func (c *Config) TravelMileThreshold() float64 {
	return c.TravelMiles
}

// WindBands implements contracts.SituationalConfig
func (c *Config) WindBands() []models.WeatherBand {
	return c.Wind
}

// ColdBands implements contracts.SituationalConfig
func (c *Config) ColdBands() []models.WeatherBand {
	return c.Cold
}

// PrecipBands implements contracts.SituationalConfig
func (c *Config) PrecipBands() []models.WeatherBand {
	return c.Precip
}

// QBWeatherModifier implements contracts.SituationalConfig
func (c *Config) QBWeatherModifier(player, condition string) (float64, bool) {
	points, ok := c.QBModifiers[player+"|"+condition]
	return points, ok
}

// HomeFieldConstant implements contracts.RatingConfig and ProjectionConfig
func (c *Config) HomeFieldConstant() float64 {
	return c.HomeField
}

// RatingCarryWeight implements contracts.RatingConfig
func (c *Config) RatingCarryWeight() float64 {
	return c.CarryWeight
}

// BaselineTotal implements contracts.RatingConfig and ProjectionConfig
func (c *Config) BaselineTotal() float64 {
	return c.LeagueTotal
}

// TierBands implements contracts.DetectorConfig
func (c *Config) TierBands() []models.TierBand {
	return c.Tiers
}

// KeyNumbers implements contracts.DetectorConfig
func (c *Config) KeyNumbers() []float64 {
	return c.KeyNums
}

// KeyNumberTolerance implements contracts.DetectorConfig
func (c *Config) KeyNumberTolerance() float64 {
	return c.KeyTolerance
}

// KeyNumberStakeFactor implements contracts.DetectorConfig
func (c *Config) KeyNumberStakeFactor() float64 {
	return c.KeyStakeFactor
}

// MaxStakeFraction implements contracts.DetectorConfig
func (c *Config) MaxStakeFraction() float64 {
	return c.MaxStakePct
}

// Position base values in points, QB-heavy by design of the source model.
func defaultPositionValues() map[string]float64 {
	return map[string]float64{
		"QB": 7.0,
		"RB": 2.0,
		"WR": 1.5,
		"TE": 1.0,
		"OL": 1.0,
		"DL": 1.5,
		"LB": 1.5,
		"CB": 2.0,
		"S":  1.0,
		"K":  0.5,
		"P":  0.25,
	}
}

// Immediate capacity and recovery window per injury type. Recalibrated per
// season via the YAML calibration file, not by editing this table.
func defaultInjuryCurves() map[string]models.InjuryCurve {
	return map[string]models.InjuryCurve{
		"concussion": {ImmediateCapacity: 0.0, RecoveryDays: 10},
		"hamstring":  {ImmediateCapacity: 0.40, RecoveryDays: 21},
		"ankle":      {ImmediateCapacity: 0.55, RecoveryDays: 14},
		"knee":       {ImmediateCapacity: 0.30, RecoveryDays: 28},
		"shoulder":   {ImmediateCapacity: 0.60, RecoveryDays: 14},
		"groin":      {ImmediateCapacity: 0.45, RecoveryDays: 18},
		"back":       {ImmediateCapacity: 0.50, RecoveryDays: 14},
		"quad":       {ImmediateCapacity: 0.50, RecoveryDays: 14},
		"calf":       {ImmediateCapacity: 0.50, RecoveryDays: 17},
		"foot":       {ImmediateCapacity: 0.45, RecoveryDays: 21},
		"rib":        {ImmediateCapacity: 0.65, RecoveryDays: 21},
		"illness":    {ImmediateCapacity: 0.70, RecoveryDays: 4},
	}
}

// Flat capacity when only a status is known. "out" and injured reserve are
// zero capacity with no decay; "questionable" is a small, steady discount.
func defaultStatusFallbacks() map[models.InjuryStatus]float64 {
	return map[models.InjuryStatus]float64{
		models.StatusActive:         1.0,
		models.StatusQuestionable:   0.92,
		models.StatusDoubtful:       0.25,
		models.StatusOut:            0.0,
		models.StatusInjuredReserve: 0.0,
	}
}

// Situational factor point values. Spread points are home-margin terms:
// positive helps the home team.
func defaultFactors() map[string]models.SituationalFactor {
	return map[string]models.SituationalFactor{
		"home_short_week": {SpreadPoints: -1.5},
		"away_short_week": {SpreadPoints: 1.5},
		"home_off_bye":    {SpreadPoints: 1.0},
		"away_off_bye":    {SpreadPoints: -1.0},
		"home_rest_edge":  {SpreadPoints: 0.5},
		"away_rest_edge":  {SpreadPoints: -0.5},
		"long_travel":     {SpreadPoints: 1.0},
		"timezone_change": {SpreadPoints: 0.5}, // per zone crossed, away travelling
		"divisional":      {SpreadPoints: -0.5, TotalPoints: -1.0},
		"rivalry":         {SpreadPoints: -0.5},
	}
}

func defaultWindBands() []models.WeatherBand {
	return []models.WeatherBand{
		{Label: "wind_15", Threshold: 15, SpreadDelta: 0.5, TotalDelta: -2.0},
		{Label: "wind_20", Threshold: 20, SpreadDelta: 0.5, TotalDelta: -4.0},
		{Label: "wind_25", Threshold: 25, SpreadDelta: 1.0, TotalDelta: -6.0},
	}
}

func defaultColdBands() []models.WeatherBand {
	return []models.WeatherBand{
		{Label: "cold_25", Threshold: 25, SpreadDelta: 0.5, TotalDelta: -1.5},
		{Label: "cold_10", Threshold: 10, SpreadDelta: 1.0, TotalDelta: -3.0},
	}
}

func defaultPrecipBands() []models.WeatherBand {
	return []models.WeatherBand{
		{Label: "precip_50", Threshold: 50, SpreadDelta: 0.0, TotalDelta: -1.5},
		{Label: "precip_80", Threshold: 80, SpreadDelta: 0.5, TotalDelta: -3.0},
	}
}

// Confidence bands over abs(edge). Half-open [min, max); below the lowest
// actionable bound is no play. Win-rate labels are display only.
func defaultTierBands() []models.TierBand {
	return []models.TierBand{
		{Name: models.TierLow, MinEdge: 1.0, MaxEdge: 2.0, StakeFraction: 0.005, WinRateLabel: "52-54%"},
		{Name: models.TierModerate, MinEdge: 2.0, MaxEdge: 4.0, StakeFraction: 0.01, WinRateLabel: "54-57%"},
		{Name: models.TierStrong, MinEdge: 4.0, MaxEdge: 7.0, StakeFraction: 0.02, WinRateLabel: "57-60%"},
		{Name: models.TierPremium, MinEdge: 7.0, MaxEdge: 0, StakeFraction: 0.03, WinRateLabel: "60%+"},
	}
}

// Helper functions for environment variable parsing

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}
