package projector

import (
	"time"

	"github.com/XavierBriggs/fortuna/services/valuation-engine/pkg/contracts"
	"github.com/XavierBriggs/fortuna/services/valuation-engine/pkg/models"
)

// Projector combines two teams' current ratings, the home-field constant,
// and situational adjustments into a projected spread and total. The
// projected line is never clamped: implausible outputs are surfaced so
// data-quality problems stay visible upstream.
type Projector struct {
	config contracts.ProjectionConfig
}

// NewProjector creates a new line projector
func NewProjector(config contracts.ProjectionConfig) *Projector {
	return &Projector{
		config: config,
	}
}

// Project builds the projection for one upcoming game. Internally the
// spread is computed as expected home margin (positive = home better) and
// converted to book convention (negative = home favored) on the way out.
// Injury impacts are the upcoming week's fresh team aggregates; nil means
// no known injuries. The breakdown lists every contributing term with its
// signed magnitude.
func (p *Projector) Project(game models.UpcomingGame, home, away models.TeamRating, homeInjury, awayInjury *models.TeamInjuryImpact, adjustments models.SituationalAdjustments) models.GameProjection {
	homeField := p.config.HomeFieldConstant()
	ratingDiff := home.Rating - away.Rating
	injuryDiff := impactPoints(awayInjury) - impactPoints(homeInjury)

	margin := ratingDiff + homeField + injuryDiff + adjustments.SpreadPoints()
	total := p.config.BaselineTotal() + adjustments.TotalPoints()

	breakdown := make([]models.Adjustment, 0, 4+len(adjustments.Spread)+len(adjustments.Total))
	breakdown = append(breakdown,
		models.Adjustment{Label: "rating_differential", Points: ratingDiff},
		models.Adjustment{Label: "home_field", Points: homeField},
		models.Adjustment{Label: "injury_differential", Points: injuryDiff},
	)
	breakdown = append(breakdown, adjustments.Spread...)
	breakdown = append(breakdown, models.Adjustment{Label: "baseline_total", Points: p.config.BaselineTotal()})
	breakdown = append(breakdown, adjustments.Total...)

	return models.GameProjection{
		GameID:      game.GameID,
		League:      game.League,
		Week:        game.Week,
		HomeTeam:    game.HomeTeam,
		AwayTeam:    game.AwayTeam,
		Spread:      -margin,
		Total:       total,
		Breakdown:   breakdown,
		ProjectedAt: time.Now().UTC(),
	}
}

func impactPoints(impact *models.TeamInjuryImpact) float64 {
	if impact == nil {
		return 0
	}
	return impact.TotalPoints
}
