package ratings

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/XavierBriggs/fortuna/services/valuation-engine/pkg/contracts"
	"github.com/XavierBriggs/fortuna/services/valuation-engine/pkg/models"
)

var (
	// ErrUnknownTeam means a game referenced a team with no rating history.
	// The game must be skipped and reported; imputing a rating would
	// corrupt the recurrence.
	ErrUnknownTeam = errors.New("no rating history for team")

	// ErrOutOfOrderWeek means a game would skip or rewind a team's weekly
	// sequence. Always a hard failure: the recurrence is strictly
	// week-ordered per team.
	ErrOutOfOrderWeek = errors.New("game week out of order for team")
)

// Tracker maintains the append-only power-rating history, one rating per
// (team, league, week). Week advancement is strictly ordered per team;
// different teams are independent.
type Tracker struct {
	config  contracts.RatingConfig
	league  string
	mu      sync.Mutex
	history map[string][]models.TeamRating
}

// NewTracker seeds a tracker with the externally supplied week-0 ratings.
func NewTracker(config contracts.RatingConfig, league string, seeds []models.RatingSeed) *Tracker {
	t := &Tracker{
		config:  config,
		league:  league,
		history: make(map[string][]models.TeamRating, len(seeds)),
	}
	now := time.Now().UTC()
	for _, seed := range seeds {
		t.history[seed.TeamKey] = []models.TeamRating{{
			TeamKey:       seed.TeamKey,
			League:        league,
			Week:          0,
			Rating:        seed.Rating,
			OffenseRating: seed.OffenseRating,
			DefenseRating: seed.DefenseRating,
			UpdatedAt:     now,
		}}
	}
	return t
}

// AdvanceWeek is the rating recurrence as a pure function:
//
//	true_performance = net_score + opponent_prior
//	                 + (team_injury_impact - opponent_injury_impact)
//	                 - home_field (if home) / + home_field (if away)
//	new_rating = carry*prior + (1-carry)*true_performance
//
// The carry weight is a fixed, documented constant (0.90 by default), not
// adaptive.
func AdvanceWeek(prior, opponentPrior float64, netScore int, teamImpact, oppImpact float64, isHome bool, homeField, carryWeight float64) float64 {
	truePerformance := float64(netScore) + opponentPrior + (teamImpact - oppImpact)
	if isHome {
		truePerformance -= homeField
	} else {
		truePerformance += homeField
	}
	return carryWeight*prior + (1.0-carryWeight)*truePerformance
}

// Advance applies one completed game to both teams' histories. Injury
// impacts may be nil, which is the documented "no known injuries" default
// of zero. A missing prior rating for either team, or a game week that is
// not exactly the next week for both teams, is a hard error and nothing is
// written.
func (t *Tracker) Advance(result models.GameResult, homeImpact, awayImpact *models.TeamInjuryImpact) (models.TeamRating, models.TeamRating, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	homePrior, err := t.priorLocked(result.HomeTeam, result.Week)
	if err != nil {
		return models.TeamRating{}, models.TeamRating{}, err
	}
	awayPrior, err := t.priorLocked(result.AwayTeam, result.Week)
	if err != nil {
		return models.TeamRating{}, models.TeamRating{}, err
	}

	homeInjury := impactPoints(homeImpact)
	awayInjury := impactPoints(awayImpact)
	carry := t.config.RatingCarryWeight()
	homeField := t.config.HomeFieldConstant()
	netScore := result.HomeScore - result.AwayScore

	homeRating := AdvanceWeek(homePrior.Rating, awayPrior.Rating, netScore, homeInjury, awayInjury, true, homeField, carry)
	awayRating := AdvanceWeek(awayPrior.Rating, homePrior.Rating, -netScore, awayInjury, homeInjury, false, homeField, carry)

	// Offense/defense sub-ratings follow the same carry/observe blend
	// against league-average scoring
	leagueAvg := t.config.BaselineTotal() / 2.0
	now := time.Now().UTC()

	home := models.TeamRating{
		TeamKey:       result.HomeTeam,
		League:        t.league,
		Week:          result.Week,
		Rating:        homeRating,
		OffenseRating: carry*homePrior.OffenseRating + (1.0-carry)*(float64(result.HomeScore)-leagueAvg),
		DefenseRating: carry*homePrior.DefenseRating + (1.0-carry)*(leagueAvg-float64(result.AwayScore)),
		UpdatedAt:     now,
	}
	away := models.TeamRating{
		TeamKey:       result.AwayTeam,
		League:        t.league,
		Week:          result.Week,
		Rating:        awayRating,
		OffenseRating: carry*awayPrior.OffenseRating + (1.0-carry)*(float64(result.AwayScore)-leagueAvg),
		DefenseRating: carry*awayPrior.DefenseRating + (1.0-carry)*(leagueAvg-float64(result.HomeScore)),
		UpdatedAt:     now,
	}

	t.history[result.HomeTeam] = append(t.history[result.HomeTeam], home)
	t.history[result.AwayTeam] = append(t.history[result.AwayTeam], away)

	return home, away, nil
}

// AdvanceBye appends a carried-forward rating for a team that did not play
// in the given week, keeping the weekly sequence contiguous.
func (t *Tracker) AdvanceBye(teamKey string, week int) (models.TeamRating, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	prior, err := t.priorLocked(teamKey, week)
	if err != nil {
		return models.TeamRating{}, err
	}

	rating := prior
	rating.Week = week
	rating.UpdatedAt = time.Now().UTC()
	t.history[teamKey] = append(t.history[teamKey], rating)
	return rating, nil
}

// priorLocked fetches the team's latest rating and enforces that the game
// week is exactly the next week in the team's sequence.
func (t *Tracker) priorLocked(teamKey string, week int) (models.TeamRating, error) {
	rows, ok := t.history[teamKey]
	if !ok || len(rows) == 0 {
		return models.TeamRating{}, fmt.Errorf("%w: %s", ErrUnknownTeam, teamKey)
	}
	prior := rows[len(rows)-1]
	if prior.Week != week-1 {
		return models.TeamRating{}, fmt.Errorf("%w: %s is at week %d, got game for week %d",
			ErrOutOfOrderWeek, teamKey, prior.Week, week)
	}
	return prior, nil
}

// Rating returns the rating for a team at a specific week.
func (t *Tracker) Rating(teamKey string, week int) (models.TeamRating, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, rating := range t.history[teamKey] {
		if rating.Week == week {
			return rating, true
		}
	}
	return models.TeamRating{}, false
}

// Current returns a team's most recent rating.
func (t *Tracker) Current(teamKey string) (models.TeamRating, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	rows := t.history[teamKey]
	if len(rows) == 0 {
		return models.TeamRating{}, false
	}
	return rows[len(rows)-1], true
}

// Snapshot returns every team's rating for a week, sorted by team key.
// Teams with no rating for that week are omitted.
func (t *Tracker) Snapshot(week int) []models.TeamRating {
	t.mu.Lock()
	defer t.mu.Unlock()

	var snapshot []models.TeamRating
	for _, rows := range t.history {
		for _, rating := range rows {
			if rating.Week == week {
				snapshot = append(snapshot, rating)
				break
			}
		}
	}
	sort.Slice(snapshot, func(i, j int) bool {
		return snapshot[i].TeamKey < snapshot[j].TeamKey
	})
	return snapshot
}

// Teams returns every team key with rating history, sorted.
func (t *Tracker) Teams() []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	teams := make([]string, 0, len(t.history))
	for teamKey := range t.history {
		teams = append(teams, teamKey)
	}
	sort.Strings(teams)
	return teams
}

func impactPoints(impact *models.TeamInjuryImpact) float64 {
	if impact == nil {
		return 0
	}
	return impact.TotalPoints
}
