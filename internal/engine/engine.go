package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/XavierBriggs/fortuna/services/valuation-engine/internal/consumer"
	"github.com/XavierBriggs/fortuna/services/valuation-engine/internal/detector"
	"github.com/XavierBriggs/fortuna/services/valuation-engine/internal/injury"
	"github.com/XavierBriggs/fortuna/services/valuation-engine/internal/projector"
	"github.com/XavierBriggs/fortuna/services/valuation-engine/internal/publisher"
	"github.com/XavierBriggs/fortuna/services/valuation-engine/internal/ratings"
	"github.com/XavierBriggs/fortuna/services/valuation-engine/internal/situational"
	"github.com/XavierBriggs/fortuna/services/valuation-engine/internal/writer"
	"github.com/XavierBriggs/fortuna/services/valuation-engine/pkg/models"
)

// Engine orchestrates the weekly valuation batch and live market-snapshot
// reprocessing. Store and publisher may be nil (compute-only mode, used by
// tests); all valuation state lives in the tracker and the projection
// cache.
type Engine struct {
	tracker          *ratings.Tracker
	injuryModel      *injury.Model
	situationalModel *situational.Model
	lineProjector    *projector.Projector
	edgeDetector     *detector.EdgeDetector
	streamConsumer   *consumer.StreamConsumer
	streamPublisher  *publisher.StreamPublisher
	store            *writer.Store

	// Projection cache for live snapshot reprocessing
	projections sync.Map // gameID -> models.GameProjection

	// Metrics
	detectedCount int64
	skippedCount  int64
	errorCount    int64
	mu            sync.Mutex
}

// NewEngine creates a new valuation engine
func NewEngine(
	tracker *ratings.Tracker,
	injuryModel *injury.Model,
	situationalModel *situational.Model,
	lineProjector *projector.Projector,
	edgeDetector *detector.EdgeDetector,
	streamConsumer *consumer.StreamConsumer,
	streamPublisher *publisher.StreamPublisher,
	store *writer.Store,
) *Engine {
	return &Engine{
		tracker:          tracker,
		injuryModel:      injuryModel,
		situationalModel: situationalModel,
		lineProjector:    lineProjector,
		edgeDetector:     edgeDetector,
		streamConsumer:   streamConsumer,
		streamPublisher:  streamPublisher,
		store:            store,
	}
}

// RunWeek executes one weekly batch: advance ratings from the completed
// week's results, project the upcoming games, and grade whatever market
// lines the batch supplied. Per-record failures are reported in the
// returned WeekReport and never abort the rest of the batch.
func (e *Engine) RunWeek(ctx context.Context, batch models.WeekBatch) (models.WeekReport, error) {
	report := models.WeekReport{
		League:        batch.League,
		CompletedWeek: batch.CompletedWeek,
		RanAt:         time.Now().UTC(),
	}

	asOf := batch.AsOf
	if asOf.IsZero() {
		asOf = time.Now().UTC()
	}

	e.advanceRatings(ctx, batch, asOf, &report)
	e.projectUpcoming(ctx, batch, asOf, &report)
	e.detectEdges(ctx, batch, &report)

	fmt.Printf("✓ Week %d batch: %d ratings, %d projections, %d edges, %d skipped\n",
		batch.CompletedWeek, len(report.RatingsUpdated), len(report.Projections),
		len(report.Edges), len(report.Skipped))

	return report, nil
}

// advanceRatings applies the completed week's results team by team, then
// carries byes forward so every team's weekly sequence stays contiguous.
func (e *Engine) advanceRatings(ctx context.Context, batch models.WeekBatch, asOf time.Time, report *models.WeekReport) {
	played := map[string]bool{}

	for _, result := range batch.Results {
		if err := result.Validate(); err != nil {
			e.skip(ctx, batch, report, models.SkippedGame{
				GameID: result.GameID,
				Stage:  "ratings",
				Reason: err.Error(),
			})
			continue
		}

		homeInjury := e.injuryModel.TeamImpact(result.HomeTeam, batch.CompletedWeek, batch.Injuries, asOf)
		awayInjury := e.injuryModel.TeamImpact(result.AwayTeam, batch.CompletedWeek, batch.Injuries, asOf)

		home, away, err := e.tracker.Advance(result, &homeInjury, &awayInjury)
		if err != nil {
			e.skip(ctx, batch, report, models.SkippedGame{
				GameID: result.GameID,
				Stage:  "ratings",
				Reason: err.Error(),
			})
			continue
		}

		played[result.HomeTeam] = true
		played[result.AwayTeam] = true
		report.RatingsUpdated = append(report.RatingsUpdated, home, away)
	}

	for _, teamKey := range e.tracker.Teams() {
		if played[teamKey] {
			continue
		}
		rating, err := e.tracker.AdvanceBye(teamKey, batch.CompletedWeek)
		if err != nil {
			// Team already out of sequence; reported, not imputed
			fmt.Printf("bye advance failed for %s: %v\n", teamKey, err)
			continue
		}
		report.RatingsUpdated = append(report.RatingsUpdated, rating)
	}

	if e.store != nil && len(report.RatingsUpdated) > 0 {
		if err := e.store.WriteRatings(ctx, report.RatingsUpdated); err != nil {
			fmt.Printf("error persisting ratings: %v\n", err)
			e.incrementErrorCount()
		}
	}
}

// projectUpcoming builds and caches projections for the coming week using
// the just-updated ratings plus fresh injury and situational inputs.
func (e *Engine) projectUpcoming(ctx context.Context, batch models.WeekBatch, asOf time.Time, report *models.WeekReport) {
	for _, game := range batch.Upcoming {
		if game.Context.Weather != nil {
			if err := game.Context.Weather.Validate(); err != nil {
				e.skip(ctx, batch, report, models.SkippedGame{
					GameID: game.GameID,
					Stage:  "projection",
					Reason: err.Error(),
				})
				continue
			}
		}

		home, homeOK := e.tracker.Current(game.HomeTeam)
		away, awayOK := e.tracker.Current(game.AwayTeam)
		if !homeOK || !awayOK {
			e.skip(ctx, batch, report, models.SkippedGame{
				GameID: game.GameID,
				Stage:  "projection",
				Reason: "no rating history for one or both teams",
			})
			continue
		}

		homeInjury := e.injuryModel.TeamImpact(game.HomeTeam, game.Week, batch.Injuries, asOf)
		awayInjury := e.injuryModel.TeamImpact(game.AwayTeam, game.Week, batch.Injuries, asOf)
		adjustments := e.situationalModel.Adjust(game.Context)

		projection := e.lineProjector.Project(game, home, away, &homeInjury, &awayInjury, adjustments)
		e.projections.Store(game.GameID, projection)
		report.Projections = append(report.Projections, projection)

		if e.store != nil {
			if err := e.store.WriteProjection(ctx, projection); err != nil {
				fmt.Printf("error persisting projection for %s: %v\n", game.GameID, err)
				e.incrementErrorCount()
			}
		}
	}
}

// detectEdges grades the batch's market lines against the cached
// projections. Games with a projection but no line are reported as
// skipped, per the missing-input policy.
func (e *Engine) detectEdges(ctx context.Context, batch models.WeekBatch, report *models.WeekReport) {
	linesByGame := map[string][]models.MarketLine{}
	for _, line := range batch.Lines {
		linesByGame[line.GameID] = append(linesByGame[line.GameID], line)
	}

	for _, game := range batch.Upcoming {
		lines, ok := linesByGame[game.GameID]
		if !ok {
			if _, projected := e.projections.Load(game.GameID); projected {
				e.skip(ctx, batch, report, models.SkippedGame{
					GameID: game.GameID,
					Stage:  "detection",
					Reason: "missing market line",
				})
			}
			continue
		}

		for _, line := range lines {
			results, err := e.processLine(ctx, line)
			if err != nil {
				e.skip(ctx, batch, report, models.SkippedGame{
					GameID: game.GameID,
					Stage:  "detection",
					Reason: err.Error(),
				})
				continue
			}
			report.Edges = append(report.Edges, results...)
		}
	}
}

// processLine grades one market-line snapshot against the cached
// projection, persists every result (append-only history), and publishes
// the actionable ones.
func (e *Engine) processLine(ctx context.Context, line models.MarketLine) ([]models.EdgeResult, error) {
	if err := line.Validate(); err != nil {
		return nil, err
	}

	value, ok := e.projections.Load(line.GameID)
	if !ok {
		return nil, fmt.Errorf("no projection for game %s", line.GameID)
	}
	projection := value.(models.GameProjection)

	results, err := e.edgeDetector.Detect(projection, line)
	if err != nil {
		return nil, err
	}

	for i := range results {
		if e.store != nil {
			id, err := e.store.WriteEdgeResult(ctx, results[i])
			if err != nil {
				fmt.Printf("error persisting edge result for %s: %v\n", line.GameID, err)
				e.incrementErrorCount()
			} else {
				results[i].ID = id
			}
		}

		if results[i].Actionable() {
			e.incrementDetectedCount()
			if e.streamPublisher != nil {
				if err := e.streamPublisher.PublishEdgeResult(ctx, results[i]); err != nil {
					fmt.Printf("error publishing edge result for %s: %v\n", line.GameID, err)
					e.incrementErrorCount()
				}
			}
			fmt.Printf("✓ Detected %s edge: game=%s edge=%.2f tier=%s stake=%.3f\n",
				results[i].Market, results[i].GameID, results[i].Edge,
				results[i].Tier, results[i].StakeFraction)
		}
	}

	return results, nil
}

// Start begins live reprocessing of market-line snapshots for a league.
// Every snapshot is graded against the cached projection for its game; a
// new snapshot produces a new EdgeResult.
func (e *Engine) Start(ctx context.Context, league string) error {
	if e.streamConsumer == nil {
		return fmt.Errorf("no stream consumer configured")
	}

	streamKey := fmt.Sprintf("lines.observed.%s", league)
	fmt.Printf("✓ Starting valuation engine for stream: %s\n", streamKey)

	messageCh, errorCh := e.streamConsumer.ConsumeStream(ctx, streamKey)

	for {
		select {
		case <-ctx.Done():
			return nil

		case err := <-errorCh:
			if err != nil {
				fmt.Printf("stream error: %v\n", err)
			}

		case msg, ok := <-messageCh:
			if !ok {
				return nil
			}

			if _, err := e.processLine(ctx, msg.Line); err != nil {
				fmt.Printf("error processing snapshot %s: %v\n", msg.ID, err)
				e.incrementErrorCount()
			}

			if err := e.streamConsumer.AckMessage(ctx, msg.StreamKey, msg.ID); err != nil {
				fmt.Printf("error acknowledging message %s: %v\n", msg.ID, err)
			}
		}
	}
}

// Projection returns the cached projection for a game, if any.
func (e *Engine) Projection(gameID string) (models.GameProjection, bool) {
	value, ok := e.projections.Load(gameID)
	if !ok {
		return models.GameProjection{}, false
	}
	return value.(models.GameProjection), true
}

// skip records a per-game failure in the report and persists it so the
// weekly output names every omission.
func (e *Engine) skip(ctx context.Context, batch models.WeekBatch, report *models.WeekReport, skipped models.SkippedGame) {
	report.Skipped = append(report.Skipped, skipped)
	e.incrementSkippedCount()
	fmt.Printf("skipped game %s at %s: %s\n", skipped.GameID, skipped.Stage, skipped.Reason)

	if e.store != nil {
		if err := e.store.WriteSkipReport(ctx, batch.League, batch.CompletedWeek, skipped); err != nil {
			fmt.Printf("error persisting skip report: %v\n", err)
		}
	}
}

func (e *Engine) incrementDetectedCount() {
	e.mu.Lock()
	e.detectedCount++
	e.mu.Unlock()
}

func (e *Engine) incrementSkippedCount() {
	e.mu.Lock()
	e.skippedCount++
	e.mu.Unlock()
}

func (e *Engine) incrementErrorCount() {
	e.mu.Lock()
	e.errorCount++
	e.mu.Unlock()
}

// GetMetrics returns current engine counters
func (e *Engine) GetMetrics() (detected, skipped, errors int64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.detectedCount, e.skippedCount, e.errorCount
}
