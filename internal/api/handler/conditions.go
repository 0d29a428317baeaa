package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/pielsanaia/pielsana/internal/api/response"
	"github.com/pielsanaia/pielsana/internal/conditions"
	"github.com/pielsanaia/pielsana/internal/web"
)

// NewConditionPageHandler returns an http.HandlerFunc for GET /conditions/{slug}.
func NewConditionPageHandler(rd Renderer, conds ConditionFinder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		info, err := conds.Lookup(r.Context(), chi.URLParam(r, "slug"))
		if err != nil {
			rd.Render(w, http.StatusNotFound, web.PageNotFound, page(r, "No encontrado",
				web.NotFoundView{Message: "Condición no encontrada"}))
			return
		}
		rd.Render(w, http.StatusOK, web.PageCondition, page(r, info.Title, web.ConditionView{Info: info}))
	}
}

// NewListConditionsHandler returns an http.HandlerFunc for GET /api/v1/conditions.
func NewListConditionsHandler(conds ConditionFinder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list := conds.List(r.Context())
		response.Collection(w, list, response.PaginationMeta{
			Page:  1,
			Limit: len(list),
			Total: len(list),
		})
	}
}

// NewGetConditionHandler returns an http.HandlerFunc for GET /api/v1/conditions/{slug}.
func NewGetConditionHandler(conds ConditionFinder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		info, err := conds.Lookup(r.Context(), chi.URLParam(r, "slug"))
		if errors.Is(err, conditions.ErrNotFound) {
			response.Error(w, http.StatusNotFound, "CONDITION_NOT_FOUND", "Condition not found", nil)
			return
		}
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to look up condition", nil)
			return
		}
		response.JSON(w, info)
	}
}
