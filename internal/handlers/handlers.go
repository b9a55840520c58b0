package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/XavierBriggs/fortuna/services/valuation-engine/internal/clv"
	"github.com/XavierBriggs/fortuna/services/valuation-engine/internal/engine"
	"github.com/XavierBriggs/fortuna/services/valuation-engine/internal/ratings"
	"github.com/XavierBriggs/fortuna/services/valuation-engine/internal/writer"
	"github.com/XavierBriggs/fortuna/services/valuation-engine/pkg/models"
)

// Handler contains dependencies for HTTP handlers
type Handler struct {
	engine     *engine.Engine
	tracker    *ratings.Tracker
	clvTracker *clv.Tracker
	store      *writer.Store // may be nil in compute-only mode
}

// NewHandler creates a new handler
func NewHandler(valuationEngine *engine.Engine, tracker *ratings.Tracker, clvTracker *clv.Tracker, store *writer.Store) *Handler {
	return &Handler{
		engine:     valuationEngine,
		tracker:    tracker,
		clvTracker: clvTracker,
		store:      store,
	}
}

// HealthCheck returns service health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "valuation-engine",
	})
}

// RunWeek triggers one weekly batch and returns the full report,
// including every game that was skipped and why.
func (h *Handler) RunWeek(w http.ResponseWriter, r *http.Request) {
	var batch models.WeekBatch
	if err := json.NewDecoder(r.Body).Decode(&batch); err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid request: %v", err))
		return
	}

	if batch.CompletedWeek < 1 {
		respondError(w, http.StatusBadRequest, "completed_week must be >= 1")
		return
	}

	report, err := h.engine.RunWeek(r.Context(), batch)
	if err != nil {
		respondError(w, http.StatusInternalServerError, fmt.Sprintf("batch error: %v", err))
		return
	}

	respondJSON(w, http.StatusOK, report)
}

// RatingsSnapshot returns the weekly team-rating snapshot.
func (h *Handler) RatingsSnapshot(w http.ResponseWriter, r *http.Request) {
	weekParam := r.URL.Query().Get("week")
	if weekParam == "" {
		respondError(w, http.StatusBadRequest, "week query parameter is required")
		return
	}

	week, err := strconv.Atoi(weekParam)
	if err != nil || week < 0 {
		respondError(w, http.StatusBadRequest, "week must be a non-negative integer")
		return
	}

	respondJSON(w, http.StatusOK, h.tracker.Snapshot(week))
}

// CLVEntryRequest is the payload for logging a bet entry. Lines are in
// home/over convention.
type CLVEntryRequest struct {
	GameID    string           `json:"game_id"`
	Market    models.MarketKey `json:"market"`
	Side      models.BetSide   `json:"side"`
	EntryLine float64          `json:"entry_line"`
}

// RecordCLVEntry logs a bet at its entry line and returns the record with
// its minted bet ID.
func (h *Handler) RecordCLVEntry(w http.ResponseWriter, r *http.Request) {
	var req CLVEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid request: %v", err))
		return
	}

	if req.GameID == "" || req.Market == "" || req.Side == "" {
		respondError(w, http.StatusBadRequest, "game_id, market and side are required")
		return
	}

	record := h.clvTracker.RecordEntry(req.GameID, req.Market, req.Side, req.EntryLine, time.Now().UTC())

	if h.store != nil {
		if err := h.store.WriteCLVEntry(r.Context(), record); err != nil {
			fmt.Printf("error persisting clv entry %s: %v\n", record.BetID, err)
		}
	}

	respondJSON(w, http.StatusCreated, record)
}

// CLVCloseRequest is the payload for recording a closing line.
type CLVCloseRequest struct {
	BetID       string  `json:"bet_id"`
	ClosingLine float64 `json:"closing_line"`
}

// RecordCLVClose records the closing line for a bet. Exactly one close is
// permitted per bet; duplicates are a conflict.
func (h *Handler) RecordCLVClose(w http.ResponseWriter, r *http.Request) {
	var req CLVCloseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid request: %v", err))
		return
	}

	if req.BetID == "" {
		respondError(w, http.StatusBadRequest, "bet_id is required")
		return
	}

	record, err := h.clvTracker.RecordClose(req.BetID, req.ClosingLine, time.Now().UTC())
	if err != nil {
		switch {
		case errors.Is(err, clv.ErrAlreadyClosed):
			respondError(w, http.StatusConflict, err.Error())
		case errors.Is(err, clv.ErrUnknownBet):
			respondError(w, http.StatusNotFound, err.Error())
		default:
			respondError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	if h.store != nil {
		if err := h.store.CloseCLV(r.Context(), record); err != nil {
			fmt.Printf("error persisting clv close %s: %v\n", record.BetID, err)
		}
	}

	respondJSON(w, http.StatusOK, record)
}

// CLVSummary returns mean/count/trend over closed records in a date range.
func (h *Handler) CLVSummary(w http.ResponseWriter, r *http.Request) {
	filter := clv.Filter{
		GameID: r.URL.Query().Get("game_id"),
		Market: models.MarketKey(r.URL.Query().Get("market")),
	}

	if since := r.URL.Query().Get("since"); since != "" {
		parsed, err := time.Parse(time.RFC3339, since)
		if err != nil {
			respondError(w, http.StatusBadRequest, "since must be RFC3339")
			return
		}
		filter.Since = parsed
	}
	if until := r.URL.Query().Get("until"); until != "" {
		parsed, err := time.Parse(time.RFC3339, until)
		if err != nil {
			respondError(w, http.StatusBadRequest, "until must be RFC3339")
			return
		}
		filter.Until = parsed
	}

	respondJSON(w, http.StatusOK, h.clvTracker.AverageCLV(filter))
}

// Projection returns the cached projection for a game.
func (h *Handler) Projection(w http.ResponseWriter, r *http.Request) {
	gameID := r.URL.Query().Get("game_id")
	if gameID == "" {
		respondError(w, http.StatusBadRequest, "game_id query parameter is required")
		return
	}

	projection, ok := h.engine.Projection(gameID)
	if !ok {
		respondError(w, http.StatusNotFound, fmt.Sprintf("no projection for game %s", gameID))
		return
	}

	respondJSON(w, http.StatusOK, projection)
}

// respondJSON writes a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError writes an error response
func respondError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{
		"error": message,
	})
}
