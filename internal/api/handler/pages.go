package handler

import (
	"net/http"

	"github.com/pielsanaia/pielsana/internal/web"
	"github.com/pielsanaia/pielsana/pkg/models"
)

// NewHomeHandler returns an http.HandlerFunc for GET /.
func NewHomeHandler(rd Renderer, svc Analyzer, conds ConditionFinder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		renderHome(w, r, rd, svc, conds, http.StatusOK, "", "")
	}
}

func renderHome(w http.ResponseWriter, r *http.Request, rd Renderer, svc Analyzer, conds ConditionFinder, status int, selected models.AnalysisType, msg string) {
	rd.Render(w, status, web.PageHome, page(r, "", web.HomeView{
		Types:      models.AnalysisTypes,
		Selected:   selected,
		Conditions: conds.List(r.Context()),
		Error:      msg,
		MaxMB:      svc.MaxBytes() >> 20,
	}))
}

// NewAboutHandler returns an http.HandlerFunc for GET /about.
func NewAboutHandler(rd Renderer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rd.Render(w, http.StatusOK, web.PageAbout, page(r, "Acerca de", nil))
	}
}

// NewNotFoundHandler renders the not-found page for unknown HTML routes.
func NewNotFoundHandler(rd Renderer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rd.Render(w, http.StatusNotFound, web.PageNotFound, page(r, "No encontrado",
			web.NotFoundView{Message: "Página no encontrada"}))
	}
}
