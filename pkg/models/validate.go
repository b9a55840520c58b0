package models

import (
	"fmt"
	"math"
)

// Plausibility bounds for ingestion validation. Out-of-range inputs are
// rejected, never clamped: a clamped bad record would still enter the
// append-only history.
const (
	maxPlausibleSpread = 60.0
	minPlausibleTotal  = 10.0
	maxPlausibleTotal  = 100.0
)

// Validate rejects malformed or implausible market-line snapshots.
func (l MarketLine) Validate() error {
	if l.GameID == "" {
		return fmt.Errorf("market line from %s missing game_id", l.Source)
	}
	if l.Spread != nil && math.Abs(*l.Spread) > maxPlausibleSpread {
		return fmt.Errorf("implausible spread %.1f for game %s", *l.Spread, l.GameID)
	}
	if l.Total != nil && (*l.Total < minPlausibleTotal || *l.Total > maxPlausibleTotal) {
		return fmt.Errorf("implausible total %.1f for game %s", *l.Total, l.GameID)
	}
	return nil
}

// Validate rejects malformed game results.
func (g GameResult) Validate() error {
	if g.HomeTeam == "" || g.AwayTeam == "" {
		return fmt.Errorf("game %s missing team identifier", g.GameID)
	}
	if g.Week < 1 {
		return fmt.Errorf("game %s has invalid week %d", g.GameID, g.Week)
	}
	if g.HomeScore < 0 || g.AwayScore < 0 {
		return fmt.Errorf("game %s has negative score %d-%d", g.GameID, g.HomeScore, g.AwayScore)
	}
	return nil
}

// Validate rejects physically impossible weather observations.
func (w WeatherObservation) Validate() error {
	if w.WindMPH < 0 {
		return fmt.Errorf("negative wind speed %.1f at %s", w.WindMPH, w.Venue)
	}
	if w.PrecipChance < 0 || w.PrecipChance > 100 {
		return fmt.Errorf("precipitation chance %.1f outside [0, 100] at %s", w.PrecipChance, w.Venue)
	}
	return nil
}
