package models

import "time"

// TeamRating is one row of the append-only power-rating history.
// Exactly one rating exists per (team, league, week); once a later week has
// been derived from it the row is never modified.
type TeamRating struct {
	TeamKey       string    `json:"team_key"`
	League        string    `json:"league"`
	Week          int       `json:"week"`
	Rating        float64   `json:"rating"`
	OffenseRating float64   `json:"offense_rating"`
	DefenseRating float64   `json:"defense_rating"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// RatingSeed is the externally supplied preseason (week 0) rating for a team.
type RatingSeed struct {
	TeamKey       string  `json:"team_key"`
	League        string  `json:"league"`
	Rating        float64 `json:"rating"`
	OffenseRating float64 `json:"offense_rating"`
	DefenseRating float64 `json:"defense_rating"`
}

// GameResult is a completed game as supplied by the results feed.
type GameResult struct {
	GameID    string `json:"game_id"`
	League    string `json:"league"`
	Week      int    `json:"week"`
	HomeTeam  string `json:"home_team"`
	AwayTeam  string `json:"away_team"`
	HomeScore int    `json:"home_score"`
	AwayScore int    `json:"away_score"`
}

// Adjustment is one labeled, signed term contributing to a projection or a
// stake calculation. Breakdowns are kept on every output for auditability.
type Adjustment struct {
	Label  string  `json:"label"`
	Points float64 `json:"points"`
}

// GameProjection is the engine's own line for an upcoming game.
// Spread is in book convention: negative means the home team is favored.
type GameProjection struct {
	GameID      string       `json:"game_id"`
	League      string       `json:"league"`
	Week        int          `json:"week"`
	HomeTeam    string       `json:"home_team"`
	AwayTeam    string       `json:"away_team"`
	Spread      float64      `json:"spread"`
	Total       float64      `json:"total"`
	Breakdown   []Adjustment `json:"breakdown"`
	ProjectedAt time.Time    `json:"projected_at"`
}
