package models

import "time"

// MarketKey identifies which market a line or edge refers to.
type MarketKey string

const (
	MarketSpread    MarketKey = "spread"
	MarketTotal     MarketKey = "total"
	MarketMoneyline MarketKey = "moneyline"
)

// BetSide identifies which side of a market a bet was taken on.
type BetSide string

const (
	SideHome  BetSide = "home"
	SideAway  BetSide = "away"
	SideOver  BetSide = "over"
	SideUnder BetSide = "under"
)

// MarketLine is an observed book line for a game. Read-only input; a nil
// Spread or Total means the book did not post that market.
type MarketLine struct {
	GameID        string    `json:"game_id"`
	League        string    `json:"league"`
	HomeTeam      string    `json:"home_team"`
	AwayTeam      string    `json:"away_team"`
	Spread        *float64  `json:"spread,omitempty"` // book convention, home perspective
	Total         *float64  `json:"total,omitempty"`
	SpreadPrice   int       `json:"spread_price,omitempty"` // American odds
	TotalPrice    int       `json:"total_price,omitempty"`
	MoneylineHome int       `json:"moneyline_home,omitempty"`
	MoneylineAway int       `json:"moneyline_away,omitempty"`
	Source        string    `json:"source"`
	ObservedAt    time.Time `json:"observed_at"`
}

// Tier names. TierNoPlay marks edges too small to act on.
const (
	TierNoPlay   = "no_play"
	TierLow      = "low"
	TierModerate = "moderate"
	TierStrong   = "strong"
	TierPremium  = "premium"
)

// TierBand is one confidence band over abs(edge). Bands are half-open
// [MinEdge, MaxEdge); MaxEdge 0 means unbounded above.
type TierBand struct {
	Name          string  `yaml:"name" json:"name"`
	MinEdge       float64 `yaml:"min_edge" json:"min_edge"`
	MaxEdge       float64 `yaml:"max_edge" json:"max_edge"`
	StakeFraction float64 `yaml:"stake_fraction" json:"stake_fraction"`
	WinRateLabel  string  `yaml:"win_rate_label" json:"win_rate_label"` // display only
}

// EdgeResult is one detection outcome for one market of one game. A new
// market snapshot produces a new EdgeResult; history is never overwritten.
type EdgeResult struct {
	ID            int64        `json:"id,omitempty"` // populated after write
	GameID        string       `json:"game_id"`
	League        string       `json:"league"`
	Week          int          `json:"week"`
	Market        MarketKey    `json:"market"`
	ProjectedLine float64      `json:"projected_line"`
	MarketLine    float64      `json:"market_line"`
	Edge          float64      `json:"edge"` // projected - market, signed
	Tier          string       `json:"tier"`
	WinRateLabel  string       `json:"win_rate_label,omitempty"`
	StakeFraction float64      `json:"stake_fraction"`
	KeyNumber     bool         `json:"key_number"`
	Breakdown     []Adjustment `json:"breakdown,omitempty"`
	Source        string       `json:"source"`
	DetectedAt    time.Time    `json:"detected_at"`
}

// Actionable reports whether the result recommends a bet.
func (e EdgeResult) Actionable() bool {
	return e.Tier != TierNoPlay && e.StakeFraction > 0
}

// CLVRecord tracks one bet's entry and closing lines. Lines are stored in
// home/over convention; the sign of CLV is normalized by Side so a positive
// value always means the bettor got the better number. ClosingLine is
// written exactly once, after which the record is immutable.
type CLVRecord struct {
	BetID       string     `json:"bet_id"`
	GameID      string     `json:"game_id"`
	Market      MarketKey  `json:"market"`
	Side        BetSide    `json:"side"`
	EntryLine   float64    `json:"entry_line"`
	EntryAt     time.Time  `json:"entry_at"`
	ClosingLine *float64   `json:"closing_line,omitempty"`
	ClosedAt    *time.Time `json:"closed_at,omitempty"`
	CLV         *float64   `json:"clv,omitempty"`
}

// Closed reports whether the closing line has been recorded.
func (r CLVRecord) Closed() bool {
	return r.ClosingLine != nil
}

// CLVSummary aggregates closed CLV records. Trend is the mean of the second
// half of the window minus the mean of the first half.
type CLVSummary struct {
	Mean  float64 `json:"mean"`
	Count int     `json:"count"`
	Trend float64 `json:"trend"`
}
