package models_test

import (
	"testing"

	"github.com/XavierBriggs/fortuna/services/valuation-engine/pkg/models"
)

func ptr(v float64) *float64 { return &v }

func TestMarketLineValidate(t *testing.T) {
	tests := []struct {
		name    string
		line    models.MarketLine
		wantErr bool
	}{
		{"Typical line", models.MarketLine{GameID: "g1", Spread: ptr(-3.5), Total: ptr(44.5)}, false},
		{"Missing game id", models.MarketLine{Spread: ptr(-3.5)}, true},
		{"Implausible spread", models.MarketLine{GameID: "g1", Spread: ptr(-75.0)}, true},
		{"Implausible total", models.MarketLine{GameID: "g1", Total: ptr(350.0)}, true},
		{"Nil markets pass validation", models.MarketLine{GameID: "g1"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.line.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestGameResultValidate(t *testing.T) {
	tests := []struct {
		name    string
		result  models.GameResult
		wantErr bool
	}{
		{"Typical result", models.GameResult{GameID: "g1", Week: 1, HomeTeam: "BUF", AwayTeam: "MIA", HomeScore: 27, AwayScore: 20}, false},
		{"Missing away team", models.GameResult{GameID: "g1", Week: 1, HomeTeam: "BUF"}, true},
		{"Week zero", models.GameResult{GameID: "g1", Week: 0, HomeTeam: "BUF", AwayTeam: "MIA"}, true},
		{"Negative score", models.GameResult{GameID: "g1", Week: 1, HomeTeam: "BUF", AwayTeam: "MIA", AwayScore: -3}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.result.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestWeatherObservationValidate(t *testing.T) {
	tests := []struct {
		name    string
		weather models.WeatherObservation
		wantErr bool
	}{
		{"Typical forecast", models.WeatherObservation{TemperatureF: 40, WindMPH: 12, PrecipChance: 30}, false},
		{"Negative wind", models.WeatherObservation{WindMPH: -5}, true},
		{"Precip chance over 100", models.WeatherObservation{PrecipChance: 140}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.weather.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
