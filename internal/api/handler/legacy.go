package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/pielsanaia/pielsana/internal/analysis"
	"github.com/pielsanaia/pielsana/internal/api/response"
	"github.com/pielsanaia/pielsana/internal/legacy"
	"github.com/pielsanaia/pielsana/internal/web"
)

const (
	MsgLegacyFormat = "Por favor, selecciona una imagen en formato JPG o PNG"
	MsgLegacyFailed = "Error al procesar la imagen"

	maxPayloadBytes = 1 << 20
)

// NewLegacyPageHandler returns an http.HandlerFunc for GET /legacy.
func NewLegacyPageHandler(rd Renderer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rd.Render(w, http.StatusOK, web.PageLegacy, page(r, "Análisis facial", web.LegacyView{}))
	}
}

// NewLegacyAnalyzeHandler returns an http.HandlerFunc for POST /legacy/analyze.
// The backend payload is normalized before rendering, whatever its shape.
func NewLegacyAnalyzeHandler(rd Renderer, svc Analyzer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render := func(status int, view web.LegacyView) {
			rd.Render(w, status, web.PageLegacy, page(r, "Análisis facial", view))
		}

		req, err := readUpload(w, r, svc.MaxBytes())
		if err == nil {
			var raw []byte
			raw, err = svc.SubmitLegacy(r.Context(), req)
			if err == nil {
				report, perr := legacy.Parse(raw)
				if perr != nil {
					slog.Warn("legacy payload rejected", "error", perr)
					render(http.StatusBadGateway, web.LegacyView{Error: MsgLegacyFailed})
					return
				}
				render(http.StatusOK, web.LegacyView{Report: report})
				return
			}
		}

		switch {
		case errors.Is(err, analysis.ErrConsentRequired):
			render(http.StatusBadRequest, web.LegacyView{Error: MsgConsentRequired})
		case errors.Is(err, analysis.ErrImageTooLarge):
			render(http.StatusRequestEntityTooLarge, web.LegacyView{Error: MsgImageTooLarge})
		case errors.Is(err, analysis.ErrInvalidImage):
			render(http.StatusBadRequest, web.LegacyView{Error: MsgLegacyFormat})
		default:
			slog.Warn("legacy analysis failed", "error", err)
			render(http.StatusBadGateway, web.LegacyView{Error: MsgLegacyFailed})
		}
	}
}

// NewNormalizeHandler returns an http.HandlerFunc for POST /api/v1/legacy/normalize.
func NewNormalizeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxPayloadBytes))
		if err != nil {
			response.Error(w, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "Payload too large", nil)
			return
		}

		report, err := legacy.Parse(body)
		if err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_PAYLOAD", "Payload must be a JSON object", nil)
			return
		}
		response.JSON(w, report)
	}
}
