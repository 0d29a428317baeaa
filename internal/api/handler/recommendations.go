package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/pielsanaia/pielsana/internal/ai"
	"github.com/pielsanaia/pielsana/internal/api/response"
)

// NewRecommendationsHandler returns an http.HandlerFunc for POST /api/v1/recommendations.
func NewRecommendationsHandler(svc Recommender) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Prediction string `json:"prediccion"`
		}
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxFieldBytes*4)).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
			return
		}

		recs, err := svc.Recommend(r.Context(), req.Prediction)
		switch {
		case err == nil:
			response.JSON(w, recs)
		case errors.Is(err, ai.ErrEmptyPrediction):
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "prediccion is required", nil)
		case errors.Is(err, ai.ErrInferenceTimeout):
			response.Error(w, http.StatusGatewayTimeout, "RECOMMENDATIONS_TIMEOUT", "Recommendations timed out", nil)
		default:
			slog.Warn("recommendations failed", "error", err)
			response.Error(w, http.StatusBadGateway, "RECOMMENDATIONS_UNAVAILABLE", "Recommendations unavailable", nil)
		}
	}
}
