package detector_test

import (
	"errors"
	"math"
	"testing"

	"github.com/XavierBriggs/fortuna/services/valuation-engine/internal/detector"
	"github.com/XavierBriggs/fortuna/services/valuation-engine/pkg/models"
	"github.com/XavierBriggs/fortuna/services/valuation-engine/sports/football_nfl"
)

func ptr(v float64) *float64 { return &v }

func TestDetectSpreadTiers(t *testing.T) {
	d := detector.NewEdgeDetector(football_nfl.NewConfig())
	projection := models.GameProjection{GameID: "g1", Week: 7, Spread: -4.5}

	tests := []struct {
		name      string
		posted    float64
		wantEdge  float64
		wantTier  string
		wantStake float64
		wantKey   bool
	}{
		{
			name:      "Two point divergence is moderate",
			posted:    -2.5,
			wantEdge:  -2.0,
			wantTier:  models.TierModerate,
			wantStake: 0.0125, // 0.01 tier stake * 1.25 key factor: -2.5 sits within 0.5 of key 3
			wantKey:   true,
		},
		{
			name:      "Matching line is no play",
			posted:    -4.5,
			wantEdge:  0,
			wantTier:  models.TierNoPlay,
			wantStake: 0,
		},
		{
			name:      "Sub-point divergence is no play",
			posted:    -5.0,
			wantEdge:  0.5,
			wantTier:  models.TierNoPlay,
			wantStake: 0,
		},
		{
			name:      "Boundary value belongs to the higher band",
			posted:    -8.5,
			wantEdge:  4.0,
			wantTier:  models.TierStrong,
			wantStake: 0.02,
		},
		{
			name:      "Huge divergence is premium with unbounded band",
			posted:    8.0,
			wantEdge:  -12.5,
			wantTier:  models.TierPremium,
			wantStake: 0.03,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line := models.MarketLine{GameID: "g1", Spread: ptr(tt.posted), Source: "pinnacle"}
			results, err := d.Detect(projection, line)
			if err != nil {
				t.Fatalf("Detect: %v", err)
			}
			if len(results) != 1 {
				t.Fatalf("got %d results, want 1", len(results))
			}

			got := results[0]
			if got.Market != models.MarketSpread {
				t.Errorf("market = %s, want spread", got.Market)
			}
			if math.Abs(got.Edge-tt.wantEdge) > 0.001 {
				t.Errorf("edge = %f, want %f", got.Edge, tt.wantEdge)
			}
			if got.Tier != tt.wantTier {
				t.Errorf("tier = %s, want %s", got.Tier, tt.wantTier)
			}
			if math.Abs(got.StakeFraction-tt.wantStake) > 0.0001 {
				t.Errorf("stake = %f, want %f", got.StakeFraction, tt.wantStake)
			}
			if got.KeyNumber != tt.wantKey {
				t.Errorf("key number = %v, want %v", got.KeyNumber, tt.wantKey)
			}
		})
	}
}

func TestDetectTotalMarket(t *testing.T) {
	d := detector.NewEdgeDetector(football_nfl.NewConfig())
	projection := models.GameProjection{GameID: "g2", Week: 7, Spread: -3.0, Total: 47.5}

	line := models.MarketLine{
		GameID: "g2",
		Spread: ptr(-3.0),
		Total:  ptr(42.5),
		Source: "draftkings",
	}
	results, err := d.Detect(projection, line)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want spread and total", len(results))
	}

	total := results[1]
	if total.Market != models.MarketTotal {
		t.Fatalf("second result market = %s, want total", total.Market)
	}
	if math.Abs(total.Edge-5.0) > 0.001 {
		t.Errorf("total edge = %f, want 5.0", total.Edge)
	}
	if total.Tier != models.TierStrong {
		t.Errorf("total tier = %s, want strong", total.Tier)
	}
	// Key numbers apply to spreads only
	if total.KeyNumber {
		t.Error("total market flagged a key number")
	}
}

func TestDetectMissingBothMarkets(t *testing.T) {
	d := detector.NewEdgeDetector(football_nfl.NewConfig())
	projection := models.GameProjection{GameID: "g3", Spread: -3.0, Total: 44.0}

	line := models.MarketLine{GameID: "g3", Source: "caesars"}
	_, err := d.Detect(projection, line)
	if !errors.Is(err, detector.ErrMissingMarketLine) {
		t.Errorf("err = %v, want ErrMissingMarketLine", err)
	}
}

func TestKeyNumberNeverChangesTier(t *testing.T) {
	d := detector.NewEdgeDetector(football_nfl.NewConfig())

	// Same 2.5-point edge, one posted on a key number and one off it
	onKey := models.MarketLine{GameID: "g4", Spread: ptr(-7.0), Source: "pinnacle"}
	offKey := models.MarketLine{GameID: "g4", Spread: ptr(-12.0), Source: "pinnacle"}

	resOn, err := d.Detect(models.GameProjection{GameID: "g4", Spread: -9.5}, onKey)
	if err != nil {
		t.Fatalf("Detect on key: %v", err)
	}
	resOff, err := d.Detect(models.GameProjection{GameID: "g4", Spread: -14.5}, offKey)
	if err != nil {
		t.Fatalf("Detect off key: %v", err)
	}

	if resOn[0].Tier != resOff[0].Tier {
		t.Errorf("key number changed tier: %s vs %s", resOn[0].Tier, resOff[0].Tier)
	}
	if !resOn[0].KeyNumber || resOff[0].KeyNumber {
		t.Errorf("key flags = %v/%v, want true/false", resOn[0].KeyNumber, resOff[0].KeyNumber)
	}
	if math.Abs(resOn[0].StakeFraction-resOff[0].StakeFraction*1.25) > 0.0001 {
		t.Errorf("key stake %f is not 1.25x base stake %f", resOn[0].StakeFraction, resOff[0].StakeFraction)
	}

	labels := map[string]bool{}
	for _, term := range resOn[0].Breakdown {
		labels[term.Label] = true
	}
	if !labels["tier_stake"] || !labels["key_number_factor"] {
		t.Errorf("breakdown missing stake terms: %v", resOn[0].Breakdown)
	}
}

func TestStakeCappedAtMaxFraction(t *testing.T) {
	config := football_nfl.NewConfig()
	config.MaxStakePct = 0.02
	d := detector.NewEdgeDetector(config)

	// Premium tier at 0.03 boosted by the key factor would be 0.0375
	line := models.MarketLine{GameID: "g5", Spread: ptr(-3.0), Source: "pinnacle"}
	results, err := d.Detect(models.GameProjection{GameID: "g5", Spread: -11.0}, line)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if got := results[0].StakeFraction; math.Abs(got-0.02) > 0.0001 {
		t.Errorf("stake = %f, want capped 0.02", got)
	}
}

func TestTierBandsPartitionTheEdgeAxis(t *testing.T) {
	bands := football_nfl.NewConfig().TierBands()
	if len(bands) == 0 {
		t.Fatal("no tier bands configured")
	}

	for i := 1; i < len(bands); i++ {
		if bands[i].MinEdge != bands[i-1].MaxEdge {
			t.Errorf("gap or overlap between %s and %s: %f != %f",
				bands[i-1].Name, bands[i].Name, bands[i-1].MaxEdge, bands[i].MinEdge)
		}
	}
	if last := bands[len(bands)-1]; last.MaxEdge != 0 {
		t.Errorf("top band %s is bounded at %f", last.Name, last.MaxEdge)
	}
}
