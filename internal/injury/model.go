package injury

import (
	"fmt"
	"strings"
	"time"

	"github.com/XavierBriggs/fortuna/services/valuation-engine/pkg/contracts"
	"github.com/XavierBriggs/fortuna/services/valuation-engine/pkg/models"
)

// Model converts injury reports into point-value deductions. All parameters
// come from the injected config; the model itself holds no mutable state.
type Model struct {
	config contracts.InjuryConfig
}

// NewModel creates a new injury impact model
func NewModel(config contracts.InjuryConfig) *Model {
	return &Model{
		config: config,
	}
}

// Impact computes the point deduction for a single player given their base
// value, the resolved injury type (may be empty), report status, and days
// since the injury was reported. Capacity interpolates linearly from the
// type's immediate fraction to 1.0 over its recovery window. "out" and
// injured-reserve statuses pin capacity to their flat fallback regardless
// of type; unknown types fall back to status-only capacity.
func (m *Model) Impact(baseValue float64, injuryType string, status models.InjuryStatus, daysSince int) models.InjuryImpact {
	if baseValue < 0 {
		baseValue = 0
	}
	if daysSince < 0 {
		// Missing or bad report date: assume day 0, the maximum impact
		daysSince = 0
	}

	capacity, explanation := m.capacity(injuryType, status, daysSince)

	pointImpact := baseValue * (1.0 - capacity)
	if pointImpact < 0 {
		pointImpact = 0
	}
	if pointImpact > baseValue {
		pointImpact = baseValue
	}

	return models.InjuryImpact{
		InjuryType:  injuryType,
		BaseValue:   baseValue,
		Capacity:    capacity,
		PointImpact: pointImpact,
		DaysSince:   daysSince,
		Explanation: explanation,
	}
}

// capacity resolves the capacity fraction and a human-readable explanation.
func (m *Model) capacity(injuryType string, status models.InjuryStatus, daysSince int) (float64, string) {
	// Out / injured reserve: zero capacity with no decay, even when the
	// injury type is known
	if status == models.StatusOut || status == models.StatusInjuredReserve {
		capacity, _ := m.config.StatusCapacity(status)
		return capacity, fmt.Sprintf("status %s: flat capacity %.2f", status, capacity)
	}

	if injuryType != "" {
		if curve, ok := m.config.InjuryCurve(injuryType); ok {
			capacity := interpolate(curve, daysSince)
			return capacity, fmt.Sprintf("%s day %d/%d: capacity %.2f",
				injuryType, daysSince, curve.RecoveryDays, capacity)
		}
	}

	// Status-only fallback for unrecognized or missing injury types
	if capacity, ok := m.config.StatusCapacity(status); ok {
		return capacity, fmt.Sprintf("status %s fallback: capacity %.2f", status, capacity)
	}

	// Unknown status: treat as fully active rather than inventing impact
	fmt.Printf("unknown injury status %q, treating as active\n", status)
	return 1.0, fmt.Sprintf("unknown status %s: capacity 1.00", status)
}

// PlayerImpact derives a full impact from a feed record: base value from
// position (league average when unknown), injury type extracted from the
// free-text description, days since from the report date.
func (m *Model) PlayerImpact(record models.InjuryRecord, asOf time.Time) models.InjuryImpact {
	baseValue, ok := m.config.PositionValue(record.Position)
	if !ok {
		fmt.Printf("unknown position %q for %s, using league average\n", record.Position, record.Player)
		baseValue = m.config.LeagueAveragePositionValue()
	}

	daysSince := 0
	if !record.ReportedAt.IsZero() && asOf.After(record.ReportedAt) {
		daysSince = int(asOf.Sub(record.ReportedAt).Hours() / 24)
	}

	impact := m.Impact(baseValue, m.ClassifyDescription(record.Description), record.Status, daysSince)
	impact.Player = record.Player
	impact.Position = record.Position
	return impact
}

// ClassifyDescription extracts a recognized injury type from the free-text
// description by keyword match against the configured curves. Returns ""
// when nothing matches, which routes the player to status-only capacity.
func (m *Model) ClassifyDescription(description string) string {
	lowered := strings.ToLower(description)
	for _, injuryType := range knownTypes {
		if _, ok := m.config.InjuryCurve(injuryType); !ok {
			continue
		}
		if strings.Contains(lowered, injuryType) {
			return injuryType
		}
	}
	return ""
}

// knownTypes is the match order for description classification; more
// specific terms come before generic ones.
var knownTypes = []string{
	"concussion",
	"hamstring",
	"shoulder",
	"illness",
	"ankle",
	"groin",
	"knee",
	"back",
	"quad",
	"calf",
	"foot",
	"rib",
}

// TeamImpact aggregates a team's roster injuries for a week and labels the
// total with severity and a confidence reflecting how much of the sum came
// from recognized injury types versus status-only fallbacks.
func (m *Model) TeamImpact(teamKey string, week int, records []models.InjuryRecord, asOf time.Time) models.TeamInjuryImpact {
	var players []models.InjuryImpact
	total := 0.0
	typed := 0

	for _, record := range records {
		if record.TeamKey != teamKey {
			continue
		}

		impact := m.PlayerImpact(record, asOf)
		if impact.PointImpact == 0 {
			continue
		}

		players = append(players, impact)
		total += impact.PointImpact
		if impact.InjuryType != "" || record.Status == models.StatusOut || record.Status == models.StatusInjuredReserve {
			typed++
		}
	}

	return models.TeamInjuryImpact{
		TeamKey:     teamKey,
		Week:        week,
		TotalPoints: total,
		Severity:    m.severity(total),
		Confidence:  confidence(typed, len(players)),
		Players:     players,
	}
}

// severity maps a team's total impact onto the configured thresholds.
func (m *Model) severity(total float64) string {
	thresholds := m.config.SeverityThresholds()
	switch {
	case total < thresholds.MinorMax:
		return models.SeverityMinor
	case total < thresholds.ModerateMax:
		return models.SeverityModerate
	case total <= thresholds.MajorMax:
		return models.SeverityMajor
	default:
		return models.SeverityCritical
	}
}

// confidence labels data completeness: the share of contributing players
// whose impact came from a definite source (typed curve or out/IR status).
func confidence(typed, total int) string {
	if total == 0 {
		return models.ConfidenceHigh
	}
	share := float64(typed) / float64(total)
	switch {
	case share >= 0.75:
		return models.ConfidenceHigh
	case share >= 0.40:
		return models.ConfidenceMedium
	default:
		return models.ConfidenceLow
	}
}

// interpolate computes capacity on day d: linear from the immediate
// fraction at day 0 to 1.0 at the end of the recovery window, clamped at
// 1.0 thereafter.
func interpolate(curve models.InjuryCurve, daysSince int) float64 {
	if curve.RecoveryDays <= 0 {
		return 1.0
	}
	if daysSince >= curve.RecoveryDays {
		return 1.0
	}
	progress := float64(daysSince) / float64(curve.RecoveryDays)
	return curve.ImmediateCapacity + (1.0-curve.ImmediateCapacity)*progress
}
