package models

import "time"

// InjuryStatus is the report status for a player.
type InjuryStatus string

const (
	StatusActive         InjuryStatus = "active"
	StatusQuestionable   InjuryStatus = "questionable"
	StatusDoubtful       InjuryStatus = "doubtful"
	StatusOut            InjuryStatus = "out"
	StatusInjuredReserve InjuryStatus = "injured_reserve"
)

// InjuryRecord is a single player's entry from the injury feed. A new
// ingestion for the same player supersedes the prior record outright.
type InjuryRecord struct {
	Player      string       `json:"player"`
	TeamKey     string       `json:"team_key"`
	Position    string       `json:"position"`
	Status      InjuryStatus `json:"status"`
	Description string       `json:"description"`
	ReportedAt  time.Time    `json:"reported_at"`
}

// InjuryImpact is the derived point cost of one player's injury.
// Capacity is the fraction of the player's value they still contribute;
// PointImpact = BaseValue * (1 - Capacity).
type InjuryImpact struct {
	Player      string  `json:"player"`
	Position    string  `json:"position"`
	InjuryType  string  `json:"injury_type,omitempty"`
	BaseValue   float64 `json:"base_value"`
	Capacity    float64 `json:"capacity"`
	PointImpact float64 `json:"point_impact"`
	DaysSince   int     `json:"days_since_injury"`
	Explanation string  `json:"explanation"`
}

// Injury severity labels for a team's aggregate impact.
const (
	SeverityMinor    = "minor"
	SeverityModerate = "moderate"
	SeverityMajor    = "major"
	SeverityCritical = "critical"
)

// Confidence labels reflecting how much of the aggregate came from
// recognized injury types versus status-only fallbacks.
const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
	ConfidenceLow    = "low"
)

// TeamInjuryImpact is the summed roster impact for a team in a given week.
type TeamInjuryImpact struct {
	TeamKey     string         `json:"team_key"`
	Week        int            `json:"week"`
	TotalPoints float64        `json:"total_points"`
	Severity    string         `json:"severity"`
	Confidence  string         `json:"confidence"`
	Players     []InjuryImpact `json:"players"`
}

// InjuryCurve holds the two fixed parameters for a recognized injury type:
// the capacity remaining on day 0 and the length of the recovery window.
type InjuryCurve struct {
	ImmediateCapacity float64 `yaml:"immediate_capacity" json:"immediate_capacity"`
	RecoveryDays      int     `yaml:"recovery_days" json:"recovery_days"`
}

// SeverityThresholds are the non-overlapping point cutoffs for team-level
// severity labels: total < MinorMax is minor, < ModerateMax moderate,
// <= MajorMax major, anything above critical.
type SeverityThresholds struct {
	MinorMax    float64 `yaml:"minor_max" json:"minor_max"`
	ModerateMax float64 `yaml:"moderate_max" json:"moderate_max"`
	MajorMax    float64 `yaml:"major_max" json:"major_max"`
}
