package situational

import (
	"fmt"

	"github.com/XavierBriggs/fortuna/services/valuation-engine/pkg/contracts"
	"github.com/XavierBriggs/fortuna/services/valuation-engine/pkg/models"
)

// Model converts matchup context and weather into labeled point
// adjustments. Spread adjustments are in home-margin terms: positive helps
// the home team. Pure lookup over the injected config; no mutable state.
type Model struct {
	config contracts.SituationalConfig
}

// NewModel creates a new situational adjustment model
func NewModel(config contracts.SituationalConfig) *Model {
	return &Model{
		config: config,
	}
}

// Adjust evaluates every recognized factor for the matchup and returns the
// labeled adjustments. Each factor is applied at most once.
func (m *Model) Adjust(ctx models.MatchupContext) models.SituationalAdjustments {
	b := newBuilder(m.config)

	// Schedule factors
	if ctx.HomeShortWeek {
		b.apply("home_short_week", 1)
	}
	if ctx.AwayShortWeek {
		b.apply("away_short_week", 1)
	}
	if ctx.HomeOffBye {
		b.apply("home_off_bye", 1)
	}
	if ctx.AwayOffBye {
		b.apply("away_off_bye", 1)
	}

	// Rest differential, only when neither side's stronger factor already
	// covers it
	if !ctx.HomeOffBye && !ctx.AwayOffBye && !ctx.HomeShortWeek && !ctx.AwayShortWeek {
		if ctx.HomeRestDays > ctx.AwayRestDays {
			b.apply("home_rest_edge", 1)
		} else if ctx.AwayRestDays > ctx.HomeRestDays {
			b.apply("away_rest_edge", 1)
		}
	}

	// Travel factors apply against the away team
	if ctx.AwayTravelMiles >= m.config.TravelMileThreshold() {
		b.apply("long_travel", 1)
	}
	if zones := abs(ctx.TimeZonesCrossed); zones > 0 {
		b.apply("timezone_change", zones)
	}

	// Emotional factors
	if ctx.Divisional {
		b.apply("divisional", 1)
	}
	if ctx.Rivalry {
		b.apply("rivalry", 1)
	}

	m.applyWeather(b, ctx)

	return b.result
}

// applyWeather evaluates the three independent weather dimensions. A dome
// flag suppresses every weather adjustment unconditionally, including QB
// modifiers.
func (m *Model) applyWeather(b *builder, ctx models.MatchupContext) {
	obs := ctx.Weather
	if obs == nil || obs.Dome {
		return
	}

	var conditions []string

	if band, ok := worstAtOrAbove(m.config.WindBands(), obs.WindMPH); ok {
		b.applyBand(band)
		conditions = append(conditions, "wind")
	}
	if band, ok := worstAtOrBelow(m.config.ColdBands(), obs.TemperatureF); ok {
		b.applyBand(band)
		conditions = append(conditions, "cold")
	}
	if band, ok := worstAtOrAbove(m.config.PrecipBands(), obs.PrecipChance); ok {
		b.applyBand(band)
		conditions = append(conditions, "precip")
	}

	// Per-QB weather overlays: only when an explicit modifier exists for
	// the player and condition; absence of data is zero, never an error
	for _, condition := range conditions {
		if ctx.HomeQB != "" {
			if points, ok := m.config.QBWeatherModifier(ctx.HomeQB, condition); ok {
				b.addSpread(fmt.Sprintf("qb_%s_%s", condition, ctx.HomeQB), points)
			}
		}
		if ctx.AwayQB != "" {
			if points, ok := m.config.QBWeatherModifier(ctx.AwayQB, condition); ok {
				b.addSpread(fmt.Sprintf("qb_%s_%s", condition, ctx.AwayQB), -points)
			}
		}
	}
}

// builder accumulates adjustments and enforces once-per-factor application.
type builder struct {
	config  contracts.SituationalConfig
	applied map[string]bool
	result  models.SituationalAdjustments
}

func newBuilder(config contracts.SituationalConfig) *builder {
	return &builder{
		config:  config,
		applied: map[string]bool{},
	}
}

// apply looks up a configured factor and records it scaled by count
// (count > 1 only for per-unit factors like time zones).
func (b *builder) apply(key string, count int) {
	if b.applied[key] {
		return
	}
	factor, ok := b.config.SituationalFactor(key)
	if !ok {
		return
	}
	b.applied[key] = true

	scale := float64(count)
	if factor.SpreadPoints != 0 {
		b.result.Spread = append(b.result.Spread, models.Adjustment{Label: key, Points: factor.SpreadPoints * scale})
	}
	if factor.TotalPoints != 0 {
		b.result.Total = append(b.result.Total, models.Adjustment{Label: key, Points: factor.TotalPoints * scale})
	}
}

func (b *builder) applyBand(band models.WeatherBand) {
	if b.applied[band.Label] {
		return
	}
	b.applied[band.Label] = true

	if band.SpreadDelta != 0 {
		b.result.Spread = append(b.result.Spread, models.Adjustment{Label: band.Label, Points: band.SpreadDelta})
	}
	if band.TotalDelta != 0 {
		b.result.Total = append(b.result.Total, models.Adjustment{Label: band.Label, Points: band.TotalDelta})
	}
}

func (b *builder) addSpread(label string, points float64) {
	if b.applied[label] || points == 0 {
		return
	}
	b.applied[label] = true
	b.result.Spread = append(b.result.Spread, models.Adjustment{Label: label, Points: points})
}

// worstAtOrAbove returns the highest-threshold band the value reaches.
// Bands are ordered by ascending threshold.
func worstAtOrAbove(bands []models.WeatherBand, value float64) (models.WeatherBand, bool) {
	var matched models.WeatherBand
	found := false
	for _, band := range bands {
		if value >= band.Threshold {
			matched = band
			found = true
		}
	}
	return matched, found
}

// worstAtOrBelow returns the lowest-threshold band the value reaches.
// Bands are ordered by descending threshold.
func worstAtOrBelow(bands []models.WeatherBand, value float64) (models.WeatherBand, bool) {
	var matched models.WeatherBand
	found := false
	for _, band := range bands {
		if value <= band.Threshold {
			matched = band
			found = true
		}
	}
	return matched, found
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
