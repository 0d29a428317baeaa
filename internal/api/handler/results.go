package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/pielsanaia/pielsana/internal/analysis"
	"github.com/pielsanaia/pielsana/internal/api/response"
	"github.com/pielsanaia/pielsana/internal/skinapi"
	"github.com/pielsanaia/pielsana/internal/web"
	"github.com/pielsanaia/pielsana/pkg/models"
)

// NewResultsHandler returns an http.HandlerFunc for GET /results/{id}. A
// failed fetch renders the fallback payload, never an error page.
func NewResultsHandler(rd Renderer, svc Analyzer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		view, err := svc.Result(r.Context(), id)
		if err != nil {
			slog.Warn("result fetch failed", "id", id, "error", err)
			view = analysis.FallbackResult(id)
		}

		rd.Render(w, http.StatusOK, web.PageResults, page(r, "Resultado", web.ResultView{
			ID:              view.ID,
			Raw:             rawOf(view.Result),
			Prediction:      view.Result.Prediction,
			Probabilities:   view.Result.Probabilities,
			Recommendations: view.Recommendations,
		}))
	}
}

// NewAcneResultsHandler handles GET /results-acne. The acne payload only
// exists in the upload response, so a direct visit has nothing to show.
func NewAcneResultsHandler(rd Renderer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rd.Render(w, http.StatusNotFound, web.PageNotFound, page(r, "Resultado",
			web.NotFoundView{Message: "No hay resultado disponible"}))
	}
}

type resultResponse struct {
	ID              string                  `json:"id"`
	Result          *models.AnalysisResult  `json:"result"`
	Recommendations *models.Recommendations `json:"recommendations,omitempty"`
}

// NewResultAPIHandler returns an http.HandlerFunc for GET /api/v1/results/{id}.
func NewResultAPIHandler(svc Analyzer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		view, err := svc.Result(r.Context(), id)
		if errors.Is(err, skinapi.ErrNotFound) {
			response.Error(w, http.StatusNotFound, "RESULT_NOT_FOUND", "Result not found", nil)
			return
		}
		if err != nil {
			slog.Warn("result fetch failed", "id", id, "error", err)
			response.Error(w, http.StatusBadGateway, "BACKEND_UNAVAILABLE", "Analysis backend unavailable", nil)
			return
		}

		response.JSON(w, resultResponse{
			ID:              view.ID,
			Result:          view.Result,
			Recommendations: view.Recommendations,
		})
	}
}

func rawOf(res *models.AnalysisResult) json.RawMessage {
	if len(res.Raw) > 0 {
		return res.Raw
	}
	b, err := json.Marshal(res)
	if err != nil {
		return nil
	}
	return b
}
