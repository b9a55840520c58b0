package projector_test

import (
	"math"
	"testing"

	"github.com/XavierBriggs/fortuna/services/valuation-engine/internal/projector"
	"github.com/XavierBriggs/fortuna/services/valuation-engine/pkg/models"
	"github.com/XavierBriggs/fortuna/services/valuation-engine/sports/football_nfl"
)

func TestProjectSpreadAndTotal(t *testing.T) {
	p := projector.NewProjector(football_nfl.NewConfig())

	game := models.UpcomingGame{
		GameID:   "2025-w7-buf-mia",
		League:   football_nfl.LeagueKey,
		Week:     7,
		HomeTeam: "BUF",
		AwayTeam: "MIA",
	}
	home := models.TeamRating{TeamKey: "BUF", Week: 6, Rating: 8.0}
	away := models.TeamRating{TeamKey: "MIA", Week: 6, Rating: 3.0}
	adjustments := models.SituationalAdjustments{
		Spread: []models.Adjustment{{Label: "away_short_week", Points: 1.5}},
		Total:  []models.Adjustment{{Label: "wind_15", Points: -2.0}},
	}

	got := p.Project(game, home, away, nil, nil, adjustments)

	// margin = (8-3) + 2.0 home field + 1.5 = 8.5, book convention flips it
	if math.Abs(got.Spread-(-8.5)) > 0.001 {
		t.Errorf("spread = %f, want -8.5", got.Spread)
	}
	if math.Abs(got.Total-42.5) > 0.001 {
		t.Errorf("total = %f, want 42.5", got.Total)
	}
	if got.GameID != game.GameID || got.HomeTeam != "BUF" || got.Week != 7 {
		t.Errorf("projection identity fields wrong: %+v", got)
	}
}

func TestProjectInjuryDifferential(t *testing.T) {
	p := projector.NewProjector(football_nfl.NewConfig())

	game := models.UpcomingGame{GameID: "g1", HomeTeam: "BUF", AwayTeam: "MIA", Week: 3}
	home := models.TeamRating{TeamKey: "BUF", Rating: 5.0}
	away := models.TeamRating{TeamKey: "MIA", Rating: 5.0}
	homeInjury := &models.TeamInjuryImpact{TeamKey: "BUF", TotalPoints: 7.0}
	awayInjury := &models.TeamInjuryImpact{TeamKey: "MIA", TotalPoints: 1.0}

	got := p.Project(game, home, away, homeInjury, awayInjury, models.SituationalAdjustments{})

	// Even teams, home field +2.0, injuries swing 6.0 against the home side:
	// margin = 0 + 2.0 + (1.0-7.0) = -4.0, so the home team is a +4.0 underdog
	if math.Abs(got.Spread-4.0) > 0.001 {
		t.Errorf("spread = %f, want +4.0", got.Spread)
	}
}

func TestProjectBreakdownAccountsForEveryTerm(t *testing.T) {
	config := football_nfl.NewConfig()
	p := projector.NewProjector(config)

	game := models.UpcomingGame{GameID: "g2", HomeTeam: "GB", AwayTeam: "CHI", Week: 10}
	home := models.TeamRating{TeamKey: "GB", Rating: 4.0}
	away := models.TeamRating{TeamKey: "CHI", Rating: -1.0}
	homeInjury := &models.TeamInjuryImpact{TotalPoints: 2.0}
	adjustments := models.SituationalAdjustments{
		Spread: []models.Adjustment{
			{Label: "divisional", Points: -0.5},
			{Label: "cold_25", Points: 0.5},
		},
		Total: []models.Adjustment{
			{Label: "divisional", Points: -1.0},
			{Label: "cold_25", Points: -1.5},
		},
	}

	got := p.Project(game, home, away, homeInjury, nil, adjustments)

	labels := map[string]float64{}
	for _, term := range got.Breakdown {
		labels[term.Label] = term.Points
	}
	for _, want := range []string{"rating_differential", "home_field", "injury_differential", "baseline_total", "divisional", "cold_25"} {
		if _, ok := labels[want]; !ok {
			t.Errorf("breakdown missing %s", want)
		}
	}

	// The spread-side terms must sum to the (negated) published spread
	marginSum := labels["rating_differential"] + labels["home_field"] + labels["injury_differential"] + adjustments.SpreadPoints()
	if math.Abs(-marginSum-got.Spread) > 0.001 {
		t.Errorf("spread terms sum to %f, published spread %f", marginSum, got.Spread)
	}

	// The total-side terms must sum to the published total
	totalSum := labels["baseline_total"] + adjustments.TotalPoints()
	if math.Abs(totalSum-got.Total) > 0.001 {
		t.Errorf("total terms sum to %f, published total %f", totalSum, got.Total)
	}
}

func TestProjectNeverClamps(t *testing.T) {
	p := projector.NewProjector(football_nfl.NewConfig())

	game := models.UpcomingGame{GameID: "g3", HomeTeam: "A", AwayTeam: "B", Week: 1}
	home := models.TeamRating{TeamKey: "A", Rating: 30.0}
	away := models.TeamRating{TeamKey: "B", Rating: -30.0}

	got := p.Project(game, home, away, nil, nil, models.SituationalAdjustments{})
	if math.Abs(got.Spread-(-62.0)) > 0.001 {
		t.Errorf("spread = %f, want the unclamped -62.0", got.Spread)
	}
}
