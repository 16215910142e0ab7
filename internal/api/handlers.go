package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/mohamedkhairy/session-analytics/internal/data"
	"github.com/mohamedkhairy/session-analytics/internal/engine"
	"github.com/mohamedkhairy/session-analytics/internal/models"
	"github.com/mohamedkhairy/session-analytics/internal/storage"
	"github.com/mohamedkhairy/session-analytics/pkg/logger"
)

// SessionHandler serves session analytics for one exchange schedule.
type SessionHandler struct {
	loader data.Loader
	eng    *engine.Engine
	cache  *engine.RecordCache
	// boundary is optional; when set, serialized records are served
	// read-through from it.
	boundary storage.BoundaryCache
}

// NewSessionHandler creates a session analytics handler
func NewSessionHandler(loader data.Loader, eng *engine.Engine, cache *engine.RecordCache, boundary storage.BoundaryCache) *SessionHandler {
	return &SessionHandler{
		loader:   loader,
		eng:      eng,
		cache:    cache,
		boundary: boundary,
	}
}

// getBars fetches the bar series for an instrument, read-through cached.
func (h *SessionHandler) getBars(ctx context.Context, instrument string) ([]models.Bar, error) {
	if h.cache != nil {
		if bars, ok := h.cache.GetBars(instrument); ok {
			return bars, nil
		}
	}
	bars, err := h.loader.Load(ctx, instrument)
	if err != nil {
		return nil, err
	}
	if h.cache != nil && bars != nil {
		h.cache.PutBars(instrument, bars)
	}
	return bars, nil
}

// GetSessions handles GET /api/v1/instruments/{instrument}/sessions
// Responds with the full annotated record set in boundary form. An
// instrument with no data yields an empty list, not an error.
func (h *SessionHandler) GetSessions(w http.ResponseWriter, r *http.Request) {
	instrument := mux.Vars(r)["instrument"]

	if h.boundary != nil {
		if cached, err := h.boundary.GetSerialized(r.Context(), instrument); err == nil && cached != nil {
			respondWithJSON(w, http.StatusOK, map[string]interface{}{
				"instrument": instrument,
				"records":    cached,
				"count":      len(cached),
			})
			return
		}
	}

	bars, err := h.getBars(r.Context(), instrument)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load bars: "+err.Error())
		return
	}

	records, err := h.eng.Records(instrument, bars)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to compute sessions: "+err.Error())
		return
	}

	serialized := make([]map[string]interface{}, 0, len(records))
	for i := range records {
		serialized = append(serialized, records[i].ToMap())
	}

	if h.boundary != nil && len(serialized) > 0 {
		if err := h.boundary.PutSerialized(r.Context(), instrument, serialized); err != nil {
			logger.Warn("Failed to populate boundary cache",
				logger.ErrorField(err),
				logger.String("instrument", instrument),
			)
		}
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"instrument": instrument,
		"records":    serialized,
		"count":      len(serialized),
	})
}

// FilterDays handles POST /api/v1/instruments/{instrument}/filter-days
func (h *SessionHandler) FilterDays(w http.ResponseWriter, r *http.Request) {
	instrument := mux.Vars(r)["instrument"]

	var query models.FilterQuery
	if err := json.NewDecoder(r.Body).Decode(&query); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	bars, err := h.getBars(r.Context(), instrument)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load bars: "+err.Error())
		return
	}

	records, err := h.eng.Records(instrument, bars)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to compute sessions: "+err.Error())
		return
	}

	dates, err := h.eng.FilterDays(records, query)
	if err != nil {
		respondWithQueryError(w, err)
		return
	}

	formatted := make([]string, 0, len(dates))
	for _, d := range dates {
		formatted = append(formatted, d.Format("2006-01-02"))
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"instrument": instrument,
		"dates":      formatted,
		"count":      len(formatted),
	})
}

// compositeRequest is the POST body for composite path queries.
type compositeRequest struct {
	models.FilterQuery
	BucketMinutes int `json:"bucket_minutes,omitempty"`
}

// CompositePath handles POST /api/v1/instruments/{instrument}/composite
func (h *SessionHandler) CompositePath(w http.ResponseWriter, r *http.Request) {
	instrument := mux.Vars(r)["instrument"]

	var req compositeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	bars, err := h.getBars(r.Context(), instrument)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load bars: "+err.Error())
		return
	}

	records, err := h.eng.Records(instrument, bars)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to compute sessions: "+err.Error())
		return
	}

	dates, err := h.eng.FilterDays(records, req.FilterQuery)
	if err != nil {
		respondWithQueryError(w, err)
		return
	}

	points, err := h.eng.CompositePath(bars, dates, req.TargetSession, req.BucketMinutes)
	if err != nil {
		respondWithQueryError(w, err)
		return
	}

	serialized := make([]map[string]interface{}, 0, len(points))
	for i := range points {
		serialized = append(serialized, points[i].ToMap())
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"instrument":   instrument,
		"matched_days": len(dates),
		"path":         serialized,
	})
}

// ClearCache handles DELETE /api/v1/cache and /api/v1/cache/{instrument}
func (h *SessionHandler) ClearCache(w http.ResponseWriter, r *http.Request) {
	instrument := mux.Vars(r)["instrument"] // empty for the whole cache

	h.eng.ClearCache(instrument)
	if h.boundary != nil {
		if err := h.boundary.Invalidate(r.Context(), instrument); err != nil {
			logger.Warn("Failed to invalidate boundary cache",
				logger.ErrorField(err),
				logger.String("instrument", instrument),
			)
		}
	}

	logger.Info("Cache cleared",
		logger.String("instrument", instrument),
	)
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

// respondWithQueryError maps engine errors to status codes: malformed
// queries are the caller's fault, everything else is internal.
func respondWithQueryError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrUnknownSession),
		errors.Is(err, models.ErrInvalidFilter),
		errors.Is(err, models.ErrInvalidBucket):
		respondWithError(w, http.StatusBadRequest, err.Error())
	default:
		respondWithError(w, http.StatusInternalServerError, err.Error())
	}
}

// respondWithJSON writes a JSON response
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error("Failed to encode response",
			logger.ErrorField(err),
		)
	}
}

// respondWithError writes a JSON error response
func respondWithError(w http.ResponseWriter, code int, message string) {
	errorType := "client"
	if code >= http.StatusInternalServerError {
		errorType = "server"
	}
	logger.ErrorsTotal.WithLabelValues("api", errorType).Inc()
	respondWithJSON(w, code, map[string]string{"error": message})
}
