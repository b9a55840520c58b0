package detector

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/XavierBriggs/fortuna/services/valuation-engine/pkg/contracts"
	"github.com/XavierBriggs/fortuna/services/valuation-engine/pkg/models"
)

// ErrMissingMarketLine means the book posted no line for a market we
// projected. Hard error for that game: an edge needs both lines.
var ErrMissingMarketLine = errors.New("missing market line")

// EdgeDetector compares projections to market lines and classifies the
// divergence into confidence tiers with Kelly-derived stake fractions.
type EdgeDetector struct {
	config contracts.DetectorConfig
}

// NewEdgeDetector creates a new edge detector
func NewEdgeDetector(config contracts.DetectorConfig) *EdgeDetector {
	return &EdgeDetector{
		config: config,
	}
}

// Detect evaluates the spread and total markets for one game against one
// market-line snapshot. Each observed snapshot yields fresh EdgeResults;
// history is retained downstream, never overwritten.
func (d *EdgeDetector) Detect(projection models.GameProjection, line models.MarketLine) ([]models.EdgeResult, error) {
	if line.Spread == nil && line.Total == nil {
		return nil, fmt.Errorf("%w: game %s from %s", ErrMissingMarketLine, line.GameID, line.Source)
	}

	results := make([]models.EdgeResult, 0, 2)

	if line.Spread != nil {
		results = append(results, d.classify(projection, line, models.MarketSpread, projection.Spread, *line.Spread))
	}
	if line.Total != nil {
		results = append(results, d.classify(projection, line, models.MarketTotal, projection.Total, *line.Total))
	}

	return results, nil
}

// classify grades one market. Both lines share the same sign convention,
// so the signed edge makes the betting side unambiguous.
func (d *EdgeDetector) classify(projection models.GameProjection, line models.MarketLine, market models.MarketKey, projected, posted float64) models.EdgeResult {
	edge := projected - posted
	band, ok := d.tierFor(math.Abs(edge))

	result := models.EdgeResult{
		GameID:        projection.GameID,
		League:        projection.League,
		Week:          projection.Week,
		Market:        market,
		ProjectedLine: projected,
		MarketLine:    posted,
		Edge:          edge,
		Tier:          models.TierNoPlay,
		Breakdown:     projection.Breakdown,
		Source:        line.Source,
		DetectedAt:    time.Now().UTC(),
	}

	if !ok {
		return result
	}

	result.Tier = band.Name
	result.WinRateLabel = band.WinRateLabel
	stake := band.StakeFraction
	result.Breakdown = append(result.Breakdown, models.Adjustment{Label: "tier_stake", Points: band.StakeFraction})

	// Key-number proximity is a separate, labeled stake adjustment. It
	// never changes the tier itself.
	if market == models.MarketSpread && d.nearKeyNumber(posted) {
		result.KeyNumber = true
		factor := d.config.KeyNumberStakeFactor()
		stake *= factor
		result.Breakdown = append(result.Breakdown, models.Adjustment{Label: "key_number_factor", Points: factor})
	}

	if limit := d.config.MaxStakeFraction(); stake > limit {
		stake = limit
	}
	result.StakeFraction = stake

	return result
}

// tierFor finds the band containing absEdge. Bands are half-open
// [min, max) with max 0 meaning unbounded, so every value maps to at most
// one band; anything below the lowest bound (including exactly 0) is no
// play.
func (d *EdgeDetector) tierFor(absEdge float64) (models.TierBand, bool) {
	if absEdge == 0 {
		return models.TierBand{}, false
	}
	for _, band := range d.config.TierBands() {
		if absEdge >= band.MinEdge && (band.MaxEdge == 0 || absEdge < band.MaxEdge) {
			return band, true
		}
	}
	return models.TierBand{}, false
}

// nearKeyNumber reports whether the posted spread sits on or adjacent to a
// configured key number.
func (d *EdgeDetector) nearKeyNumber(spread float64) bool {
	tolerance := d.config.KeyNumberTolerance()
	for _, key := range d.config.KeyNumbers() {
		if math.Abs(math.Abs(spread)-key) <= tolerance {
			return true
		}
	}
	return false
}
