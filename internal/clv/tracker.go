package clv

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/XavierBriggs/fortuna/services/valuation-engine/pkg/models"
	"github.com/google/uuid"
)

var (
	// ErrUnknownBet means no entry was recorded for the bet ID.
	ErrUnknownBet = errors.New("unknown bet id")

	// ErrAlreadyClosed means a second close for the same bet. Always a
	// hard error: the closing line is the ground-truth metric and must
	// never be overwritten.
	ErrAlreadyClosed = errors.New("closing line already recorded")
)

// Tracker records entry and closing lines per bet and reports average
// closing-line value. Lines are quoted in home/over convention; CLV sign
// is normalized by bet side so positive always means the bettor got the
// better number. The mutex enforces the single-writer invariant on close.
type Tracker struct {
	mu      sync.Mutex
	records map[string]*models.CLVRecord
}

// NewTracker creates a new closing line tracker
func NewTracker() *Tracker {
	return &Tracker{
		records: map[string]*models.CLVRecord{},
	}
}

// RecordEntry logs a bet at its entry line and returns the record with its
// minted bet ID.
func (t *Tracker) RecordEntry(gameID string, market models.MarketKey, side models.BetSide, entryLine float64, entryAt time.Time) models.CLVRecord {
	if entryAt.IsZero() {
		entryAt = time.Now().UTC()
	}

	record := models.CLVRecord{
		BetID:     uuid.NewString(),
		GameID:    gameID,
		Market:    market,
		Side:      side,
		EntryLine: entryLine,
		EntryAt:   entryAt,
	}

	t.mu.Lock()
	t.records[record.BetID] = &record
	t.mu.Unlock()

	return record
}

// RecordClose records the closing line for a bet exactly once. A second
// call for the same bet ID is a hard error and leaves the record
// untouched.
func (t *Tracker) RecordClose(betID string, closingLine float64, closedAt time.Time) (models.CLVRecord, error) {
	if closedAt.IsZero() {
		closedAt = time.Now().UTC()
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	record, ok := t.records[betID]
	if !ok {
		return models.CLVRecord{}, fmt.Errorf("%w: %s", ErrUnknownBet, betID)
	}
	if record.Closed() {
		return models.CLVRecord{}, fmt.Errorf("%w: %s", ErrAlreadyClosed, betID)
	}

	clv := normalizedCLV(record.Side, record.EntryLine, closingLine)
	record.ClosingLine = &closingLine
	record.ClosedAt = &closedAt
	record.CLV = &clv

	return *record, nil
}

// Record returns a copy of the record for a bet ID.
func (t *Tracker) Record(betID string) (models.CLVRecord, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	record, ok := t.records[betID]
	if !ok {
		return models.CLVRecord{}, false
	}
	return *record, true
}

// Filter narrows which closed records contribute to a summary. Zero-valued
// fields are ignored.
type Filter struct {
	GameID string
	Market models.MarketKey
	Since  time.Time
	Until  time.Time
}

func (f Filter) matches(record models.CLVRecord) bool {
	if f.GameID != "" && record.GameID != f.GameID {
		return false
	}
	if f.Market != "" && record.Market != f.Market {
		return false
	}
	if !f.Since.IsZero() && record.EntryAt.Before(f.Since) {
		return false
	}
	if !f.Until.IsZero() && record.EntryAt.After(f.Until) {
		return false
	}
	return true
}

// AverageCLV aggregates closed records matching the filter. In-flight
// records (no closing line yet) are excluded entirely, not treated as
// zero. Trend is the mean of the chronologically later half minus the mean
// of the earlier half.
func (t *Tracker) AverageCLV(filter Filter) models.CLVSummary {
	t.mu.Lock()
	var closed []models.CLVRecord
	for _, record := range t.records {
		if record.Closed() && filter.matches(*record) {
			closed = append(closed, *record)
		}
	}
	t.mu.Unlock()

	if len(closed) == 0 {
		return models.CLVSummary{}
	}

	sort.Slice(closed, func(i, j int) bool {
		return closed[i].EntryAt.Before(closed[j].EntryAt)
	})

	sum := 0.0
	for _, record := range closed {
		sum += *record.CLV
	}

	summary := models.CLVSummary{
		Mean:  sum / float64(len(closed)),
		Count: len(closed),
	}

	if len(closed) >= 2 {
		mid := len(closed) / 2
		summary.Trend = mean(closed[mid:]) - mean(closed[:mid])
	}

	return summary
}

func mean(records []models.CLVRecord) float64 {
	if len(records) == 0 {
		return 0
	}
	sum := 0.0
	for _, record := range records {
		sum += *record.CLV
	}
	return sum / float64(len(records))
}

// normalizedCLV computes closing - entry with the sign flipped for
// away/under bets, since stored lines are in home/over convention. A
// positive result always means the bettor beat the closing number.
func normalizedCLV(side models.BetSide, entry, closing float64) float64 {
	clv := closing - entry
	if side == models.SideAway || side == models.SideUnder {
		clv = -clv
	}
	return clv
}
