package injury_test

import (
	"math"
	"testing"
	"time"

	"github.com/XavierBriggs/fortuna/services/valuation-engine/internal/injury"
	"github.com/XavierBriggs/fortuna/services/valuation-engine/pkg/models"
	"github.com/XavierBriggs/fortuna/services/valuation-engine/sports/football_nfl"
)

func TestImpactCapacityCurve(t *testing.T) {
	model := injury.NewModel(football_nfl.NewConfig())

	tests := []struct {
		name         string
		baseValue    float64
		injuryType   string
		status       models.InjuryStatus
		daysSince    int
		wantCapacity float64
		wantImpact   float64
	}{
		{
			name:         "Hamstring day 0 uses immediate capacity",
			baseValue:    7.0,
			injuryType:   "hamstring",
			status:       models.StatusQuestionable,
			daysSince:    0,
			wantCapacity: 0.40,
			wantImpact:   4.2,
		},
		{
			name:         "Hamstring fully recovered at window end",
			baseValue:    7.0,
			injuryType:   "hamstring",
			status:       models.StatusQuestionable,
			daysSince:    21,
			wantCapacity: 1.0,
			wantImpact:   0.0,
		},
		{
			name:         "Hamstring clamps at 1.0 past the window",
			baseValue:    7.0,
			injuryType:   "hamstring",
			status:       models.StatusQuestionable,
			daysSince:    60,
			wantCapacity: 1.0,
			wantImpact:   0.0,
		},
		{
			name:         "Out status pins capacity to zero despite known type",
			baseValue:    7.0,
			injuryType:   "ankle",
			status:       models.StatusOut,
			daysSince:    10,
			wantCapacity: 0.0,
			wantImpact:   7.0,
		},
		{
			name:         "Unknown type falls back to status capacity",
			baseValue:    2.0,
			injuryType:   "",
			status:       models.StatusQuestionable,
			daysSince:    3,
			wantCapacity: 0.92,
			wantImpact:   0.16,
		},
		{
			name:         "Negative days treated as day zero",
			baseValue:    7.0,
			injuryType:   "hamstring",
			status:       models.StatusQuestionable,
			daysSince:    -5,
			wantCapacity: 0.40,
			wantImpact:   4.2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			impact := model.Impact(tt.baseValue, tt.injuryType, tt.status, tt.daysSince)

			if math.Abs(impact.Capacity-tt.wantCapacity) > 0.001 {
				t.Errorf("capacity = %f, want %f", impact.Capacity, tt.wantCapacity)
			}
			if math.Abs(impact.PointImpact-tt.wantImpact) > 0.001 {
				t.Errorf("point impact = %f, want %f", impact.PointImpact, tt.wantImpact)
			}
			if impact.PointImpact < 0 || impact.PointImpact > tt.baseValue+0.001 {
				t.Errorf("point impact %f outside [0, %f]", impact.PointImpact, tt.baseValue)
			}
		})
	}
}

func TestCapacityMonotonicInDays(t *testing.T) {
	config := football_nfl.NewConfig()
	model := injury.NewModel(config)

	for injuryType := range config.InjuryCurves {
		prev := -1.0
		for day := 0; day <= 45; day++ {
			impact := model.Impact(5.0, injuryType, models.StatusQuestionable, day)
			if impact.Capacity < prev {
				t.Fatalf("%s: capacity decreased from %f to %f at day %d", injuryType, prev, impact.Capacity, day)
			}
			if impact.Capacity > 1.0 {
				t.Fatalf("%s: capacity %f exceeds 1.0 at day %d", injuryType, impact.Capacity, day)
			}
			prev = impact.Capacity
		}
		if prev != 1.0 {
			t.Errorf("%s: capacity never reached 1.0 (got %f)", injuryType, prev)
		}
	}
}

func TestClassifyDescription(t *testing.T) {
	model := injury.NewModel(football_nfl.NewConfig())

	tests := []struct {
		description string
		want        string
	}{
		{"Left hamstring strain, limited in practice", "hamstring"},
		{"Concussion protocol", "concussion"},
		{"High ankle sprain", "ankle"},
		{"Coach's decision", ""},
		{"", ""},
	}

	for _, tt := range tests {
		if got := model.ClassifyDescription(tt.description); got != tt.want {
			t.Errorf("ClassifyDescription(%q) = %q, want %q", tt.description, got, tt.want)
		}
	}
}

func TestPlayerImpactFallbacks(t *testing.T) {
	config := football_nfl.NewConfig()
	model := injury.NewModel(config)
	now := time.Date(2025, 10, 12, 12, 0, 0, 0, time.UTC)

	// Unknown position uses the league-average base value
	record := models.InjuryRecord{
		Player:      "J. Doe",
		TeamKey:     "BUF",
		Position:    "LS",
		Status:      models.StatusOut,
		Description: "knee",
		ReportedAt:  now.AddDate(0, 0, -2),
	}

	impact := model.PlayerImpact(record, now)
	if impact.BaseValue != config.LeagueAveragePositionValue() {
		t.Errorf("base value = %f, want league average %f", impact.BaseValue, config.LeagueAveragePositionValue())
	}
	if impact.DaysSince != 2 {
		t.Errorf("days since = %d, want 2", impact.DaysSince)
	}

	// Missing report date assumes day 0
	record.ReportedAt = time.Time{}
	record.Status = models.StatusQuestionable
	record.Description = "hamstring"
	impact = model.PlayerImpact(record, now)
	if impact.DaysSince != 0 {
		t.Errorf("days since with missing date = %d, want 0", impact.DaysSince)
	}
}

func TestTeamImpactSeverity(t *testing.T) {
	model := injury.NewModel(football_nfl.NewConfig())
	now := time.Date(2025, 10, 12, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name         string
		records      []models.InjuryRecord
		wantSeverity string
	}{
		{
			name:         "No injuries is minor",
			records:      nil,
			wantSeverity: models.SeverityMinor,
		},
		{
			name: "QB out is major",
			records: []models.InjuryRecord{
				{Player: "QB1", TeamKey: "BUF", Position: "QB", Status: models.StatusOut, ReportedAt: now},
			},
			wantSeverity: models.SeverityMajor,
		},
		{
			name: "QB and corner out is critical",
			records: []models.InjuryRecord{
				{Player: "QB1", TeamKey: "BUF", Position: "QB", Status: models.StatusOut, ReportedAt: now},
				{Player: "CB1", TeamKey: "BUF", Position: "CB", Status: models.StatusOut, ReportedAt: now},
			},
			wantSeverity: models.SeverityCritical,
		},
		{
			name: "Single role player out is moderate",
			records: []models.InjuryRecord{
				{Player: "RB1", TeamKey: "BUF", Position: "RB", Status: models.StatusOut, ReportedAt: now},
			},
			wantSeverity: models.SeverityModerate,
		},
		{
			name: "Records for other teams are ignored",
			records: []models.InjuryRecord{
				{Player: "QB9", TeamKey: "MIA", Position: "QB", Status: models.StatusOut, ReportedAt: now},
			},
			wantSeverity: models.SeverityMinor,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			team := model.TeamImpact("BUF", 6, tt.records, now)
			if team.Severity != tt.wantSeverity {
				t.Errorf("severity = %s (total %f), want %s", team.Severity, team.TotalPoints, tt.wantSeverity)
			}
		})
	}
}
