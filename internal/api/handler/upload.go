package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/pielsanaia/pielsana/internal/analysis"
	"github.com/pielsanaia/pielsana/internal/api/response"
	"github.com/pielsanaia/pielsana/internal/web"
	"github.com/pielsanaia/pielsana/pkg/models"
)

// User-facing upload messages.
const (
	MsgUnknownType     = "Selecciona un tipo de análisis."
	MsgConsentRequired = "Debes aceptar el consentimiento informado antes de analizar la imagen."
	MsgInvalidImage    = "Por favor sube una imagen válida"
	MsgImageTooLarge   = "La imagen supera el tamaño máximo permitido."
	MsgAnalysisFailed  = "Error al analizar la imagen"
	MsgRateLimited     = "Demasiadas solicitudes. Intenta de nuevo en un minuto."
)

// NewUploadHandler returns an http.HandlerFunc for POST /upload.
func NewUploadHandler(rd Renderer, svc Analyzer, conds ConditionFinder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := readUpload(w, r, svc.MaxBytes())
		var sub *models.Submission
		if err == nil {
			sub, err = svc.Submit(r.Context(), req)
		}
		if err != nil {
			status, _, msg := uploadError(err)
			renderHome(w, r, rd, svc, conds, status, req.Type, msg)
			return
		}

		if sub.Payload != nil {
			rd.Render(w, http.StatusOK, web.PageResultsAcne, page(r, "Resultado",
				web.AcneView{Result: sub.Payload, Condition: matchCondition(r.Context(), conds, sub.Payload)}))
			return
		}
		http.Redirect(w, r, "/results/"+url.PathEscape(sub.ResultID), http.StatusSeeOther)
	}
}

// NewUploadRateLimitedHandler re-renders the uploader with a 429.
func NewUploadRateLimitedHandler(rd Renderer, svc Analyzer, conds ConditionFinder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		renderHome(w, r, rd, svc, conds, http.StatusTooManyRequests, "", MsgRateLimited)
	}
}

// NewAnalyzeAPIHandler returns an http.HandlerFunc for POST /api/v1/analyze.
func NewAnalyzeAPIHandler(svc Analyzer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := readUpload(w, r, svc.MaxBytes())
		var sub *models.Submission
		if err == nil {
			sub, err = svc.Submit(r.Context(), req)
		}
		if err != nil {
			status, code, msg := uploadError(err)
			response.Error(w, status, code, msg, nil)
			return
		}
		response.JSON(w, sub)
	}
}

func uploadError(err error) (status int, code, msg string) {
	switch {
	case errors.Is(err, analysis.ErrUnknownType):
		return http.StatusBadRequest, "INVALID_TYPE", MsgUnknownType
	case errors.Is(err, analysis.ErrConsentRequired):
		return http.StatusBadRequest, "CONSENT_REQUIRED", MsgConsentRequired
	case errors.Is(err, analysis.ErrImageTooLarge):
		return http.StatusRequestEntityTooLarge, "IMAGE_TOO_LARGE", MsgImageTooLarge
	case errors.Is(err, analysis.ErrInvalidImage):
		return http.StatusBadRequest, "INVALID_IMAGE", MsgInvalidImage
	default:
		slog.Warn("upload failed", "error", err)
		return http.StatusBadGateway, "ANALYSIS_FAILED", MsgAnalysisFailed
	}
}

// matchCondition finds the catalog entry named by an inline payload.
func matchCondition(ctx context.Context, conds ConditionFinder, res *models.AnalysisResult) *models.ConditionInfo {
	for _, name := range []string{res.Condition, res.Prediction} {
		if name == "" {
			continue
		}
		if info, err := conds.Lookup(ctx, name); err == nil {
			return info
		}
	}
	return nil
}
