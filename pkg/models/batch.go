package models

import "time"

// WeatherObservation is the forecast/observation for a venue at game time.
type WeatherObservation struct {
	Venue        string    `json:"venue"`
	GameTime     time.Time `json:"game_time"`
	TemperatureF float64   `json:"temperature_f"`
	WindMPH      float64   `json:"wind_mph"`
	PrecipChance float64   `json:"precip_chance"` // 0-100
	PrecipType   string    `json:"precip_type,omitempty"`
	Dome         bool      `json:"dome"`
}

// MatchupContext is the structured schedule/travel/emotional context for an
// upcoming game, plus its weather observation if one exists.
type MatchupContext struct {
	HomeRestDays     int                 `json:"home_rest_days"`
	AwayRestDays     int                 `json:"away_rest_days"`
	HomeShortWeek    bool                `json:"home_short_week"`
	AwayShortWeek    bool                `json:"away_short_week"`
	HomeOffBye       bool                `json:"home_off_bye"`
	AwayOffBye       bool                `json:"away_off_bye"`
	AwayTravelMiles  float64             `json:"away_travel_miles"`
	TimeZonesCrossed int                 `json:"time_zones_crossed"` // positive = away team travels east
	Divisional       bool                `json:"divisional"`
	Rivalry          bool                `json:"rivalry"`
	HomeQB           string              `json:"home_qb,omitempty"`
	AwayQB           string              `json:"away_qb,omitempty"`
	Weather          *WeatherObservation `json:"weather,omitempty"`
}

// SituationalFactor is the configured point value of one recognized factor.
// SpreadPoints is in home-margin terms: positive helps the home team.
type SituationalFactor struct {
	SpreadPoints float64 `yaml:"spread_points" json:"spread_points"`
	TotalPoints  float64 `yaml:"total_points" json:"total_points"`
}

// WeatherBand is one threshold band for a weather dimension. The most
// severe band whose Threshold is crossed applies.
type WeatherBand struct {
	Label       string  `yaml:"label" json:"label"`
	Threshold   float64 `yaml:"threshold" json:"threshold"`
	SpreadDelta float64 `yaml:"spread_delta" json:"spread_delta"` // home-margin terms
	TotalDelta  float64 `yaml:"total_delta" json:"total_delta"`
}

// SituationalAdjustments is the labeled output of the situational model.
// Spread entries are in home-margin terms (positive helps the home team).
type SituationalAdjustments struct {
	Spread []Adjustment `json:"spread"`
	Total  []Adjustment `json:"total"`
}

// SpreadPoints sums the spread-side adjustments.
func (a SituationalAdjustments) SpreadPoints() float64 {
	sum := 0.0
	for _, adj := range a.Spread {
		sum += adj.Points
	}
	return sum
}

// TotalPoints sums the total-side adjustments.
func (a SituationalAdjustments) TotalPoints() float64 {
	sum := 0.0
	for _, adj := range a.Total {
		sum += adj.Points
	}
	return sum
}

// UpcomingGame is one game to project in the coming week.
type UpcomingGame struct {
	GameID   string         `json:"game_id"`
	League   string         `json:"league"`
	Week     int            `json:"week"`
	HomeTeam string         `json:"home_team"`
	AwayTeam string         `json:"away_team"`
	Context  MatchupContext `json:"context"`
}

// WeekBatch is everything the engine needs for one weekly run: the
// completed week's results and injury snapshot, the upcoming games to
// project, and whatever market lines have been observed so far.
type WeekBatch struct {
	League        string         `json:"league"`
	CompletedWeek int            `json:"completed_week"`
	Results       []GameResult   `json:"results"`
	Injuries      []InjuryRecord `json:"injuries"`
	Upcoming      []UpcomingGame `json:"upcoming"`
	Lines         []MarketLine   `json:"lines"`
	AsOf          time.Time      `json:"as_of"`
}

// SkippedGame records a game the batch could not process and why, so a bad
// record never silently disappears from the weekly output.
type SkippedGame struct {
	GameID string `json:"game_id"`
	Stage  string `json:"stage"` // "ratings", "projection", "detection"
	Reason string `json:"reason"`
}

// WeekReport is the user-visible result of one weekly run.
type WeekReport struct {
	League         string           `json:"league"`
	CompletedWeek  int              `json:"completed_week"`
	RatingsUpdated []TeamRating     `json:"ratings_updated"`
	Projections    []GameProjection `json:"projections"`
	Edges          []EdgeResult     `json:"edges"`
	Skipped        []SkippedGame    `json:"skipped"`
	RanAt          time.Time        `json:"ran_at"`
}
