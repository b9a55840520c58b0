package writer

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/XavierBriggs/fortuna/services/valuation-engine/internal/clv"
	"github.com/XavierBriggs/fortuna/services/valuation-engine/pkg/models"
)

// Store persists the engine's append-only history to postgres: weekly team
// ratings, edge results, CLV records, and per-game skip reports. Ratings
// and edge results are insert-only; CLV closing lines are guarded
// single-write at the database level.
type Store struct {
	db *sql.DB
}

// NewStore creates a new store
func NewStore(db *sql.DB) *Store {
	return &Store{
		db: db,
	}
}

// LoadSeeds reads the externally supplied preseason ratings for a league.
func (s *Store) LoadSeeds(ctx context.Context, league string) ([]models.RatingSeed, error) {
	query := `
		SELECT team_key, league, rating, offense_rating, defense_rating
		FROM rating_seeds
		WHERE league = $1
	`

	rows, err := s.db.QueryContext(ctx, query, league)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var seeds []models.RatingSeed
	for rows.Next() {
		var seed models.RatingSeed
		err := rows.Scan(
			&seed.TeamKey,
			&seed.League,
			&seed.Rating,
			&seed.OffenseRating,
			&seed.DefenseRating,
		)
		if err != nil {
			return nil, err
		}
		seeds = append(seeds, seed)
	}

	return seeds, rows.Err()
}

// WriteRatings appends one week's rating rows. The unique
// (team_key, league, week) index makes accidental overwrites a conflict
// error rather than a silent update.
func (s *Store) WriteRatings(ctx context.Context, ratings []models.TeamRating) error {
	if len(ratings) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // Rollback if commit doesn't happen

	query := `
		INSERT INTO team_ratings (
			team_key, league, week, rating, offense_rating, defense_rating, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	for _, rating := range ratings {
		_, err = tx.ExecContext(ctx, query,
			rating.TeamKey,
			rating.League,
			rating.Week,
			rating.Rating,
			rating.OffenseRating,
			rating.DefenseRating,
			rating.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert rating for %s week %d: %w", rating.TeamKey, rating.Week, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// WriteEdgeResult appends one edge result with its breakdown terms.
// Returns the result ID on success.
func (s *Store) WriteEdgeResult(ctx context.Context, result models.EdgeResult) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	resultQuery := `
		INSERT INTO edge_results (
			game_id, league, week, market, projected_line, market_line,
			edge, tier, win_rate_label, stake_fraction, key_number, source, detected_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id
	`

	var resultID int64
	err = tx.QueryRowContext(ctx, resultQuery,
		result.GameID,
		result.League,
		result.Week,
		string(result.Market),
		result.ProjectedLine,
		result.MarketLine,
		result.Edge,
		result.Tier,
		result.WinRateLabel,
		result.StakeFraction,
		result.KeyNumber,
		result.Source,
		result.DetectedAt,
	).Scan(&resultID)
	if err != nil {
		return 0, fmt.Errorf("failed to insert edge result: %w", err)
	}

	termQuery := `
		INSERT INTO edge_result_terms (edge_result_id, label, points)
		VALUES ($1, $2, $3)
	`

	for _, term := range result.Breakdown {
		if _, err = tx.ExecContext(ctx, termQuery, resultID, term.Label, term.Points); err != nil {
			return 0, fmt.Errorf("failed to insert edge result term: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return resultID, nil
}

// WriteCLVEntry persists a newly recorded bet entry.
func (s *Store) WriteCLVEntry(ctx context.Context, record models.CLVRecord) error {
	query := `
		INSERT INTO clv_records (bet_id, game_id, market, side, entry_line, entry_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := s.db.ExecContext(ctx, query,
		record.BetID,
		record.GameID,
		string(record.Market),
		string(record.Side),
		record.EntryLine,
		record.EntryAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert clv entry: %w", err)
	}

	return nil
}

// CloseCLV writes the closing line for a bet. The WHERE clause makes the
// write single-shot: a row that already has a closing line is not touched,
// and the caller gets ErrAlreadyClosed instead of a silent overwrite.
func (s *Store) CloseCLV(ctx context.Context, record models.CLVRecord) error {
	if !record.Closed() {
		return fmt.Errorf("clv record %s has no closing line", record.BetID)
	}

	query := `
		UPDATE clv_records
		SET closing_line = $2, closed_at = $3, clv = $4
		WHERE bet_id = $1 AND closing_line IS NULL
	`

	res, err := s.db.ExecContext(ctx, query,
		record.BetID,
		*record.ClosingLine,
		*record.ClosedAt,
		*record.CLV,
	)
	if err != nil {
		return fmt.Errorf("failed to close clv record: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check close result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", clv.ErrAlreadyClosed, record.BetID)
	}

	return nil
}

// WriteSkipReport records why a game could not be processed, so the weekly
// run's output names every omission instead of dropping it silently.
func (s *Store) WriteSkipReport(ctx context.Context, league string, week int, skipped models.SkippedGame) error {
	query := `
		INSERT INTO skip_reports (league, week, game_id, stage, reason, reported_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
	`

	_, err := s.db.ExecContext(ctx, query, league, week, skipped.GameID, skipped.Stage, skipped.Reason)
	if err != nil {
		return fmt.Errorf("failed to insert skip report: %w", err)
	}

	return nil
}

// WriteProjection appends a projection with its breakdown as JSON for
// later audits.
func (s *Store) WriteProjection(ctx context.Context, projection models.GameProjection) error {
	breakdown, err := json.Marshal(projection.Breakdown)
	if err != nil {
		return fmt.Errorf("failed to marshal breakdown: %w", err)
	}

	query := `
		INSERT INTO game_projections (
			game_id, league, week, home_team, away_team, spread, total, breakdown, projected_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err = s.db.ExecContext(ctx, query,
		projection.GameID,
		projection.League,
		projection.Week,
		projection.HomeTeam,
		projection.AwayTeam,
		projection.Spread,
		projection.Total,
		breakdown,
		projection.ProjectedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert projection: %w", err)
	}

	return nil
}
