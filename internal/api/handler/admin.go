package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	mw "github.com/pielsanaia/pielsana/internal/api/middleware"
	"github.com/pielsanaia/pielsana/internal/api/response"
	"github.com/pielsanaia/pielsana/internal/conditions"
	"github.com/pielsanaia/pielsana/internal/store"
	"github.com/pielsanaia/pielsana/pkg/models"
)

const maxConditionBodyBytes = 256 << 10

// Curator writes curated condition records.
type Curator interface {
	UpsertCondition(ctx context.Context, info *models.ConditionInfo) (*models.ConditionInfo, error)
	DeleteCondition(ctx context.Context, slug string) error
}

// NewUpsertConditionHandler returns an http.HandlerFunc for
// PUT /api/v1/admin/conditions/{slug}.
func NewUpsertConditionHandler(st Curator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireAdmin(w, r) {
			return
		}
		slug := conditions.NormalizeSlug(chi.URLParam(r, "slug"))
		if slug == "" {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "slug is required", nil)
			return
		}

		var info models.ConditionInfo
		dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxConditionBodyBytes))
		if err := dec.Decode(&info); err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
			return
		}
		info.Title = strings.TrimSpace(info.Title)
		if info.Title == "" {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "title is required", nil)
			return
		}
		info.Slug = slug

		saved, err := st.UpsertCondition(r.Context(), &info)
		if errors.Is(err, store.ErrDuplicateKey) {
			response.Error(w, http.StatusConflict, "CONFLICT", "Condition id already in use", nil)
			return
		}
		if err != nil {
			slog.Error("upsert condition failed", "slug", slug, "error", err)
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to save condition", nil)
			return
		}

		slog.Info("condition curated", "slug", slug)
		if saved.CreatedAt.Equal(saved.UpdatedAt) {
			response.Created(w, saved)
			return
		}
		response.JSON(w, saved)
	}
}

// NewDeleteConditionHandler returns an http.HandlerFunc for
// DELETE /api/v1/admin/conditions/{slug}.
func NewDeleteConditionHandler(st Curator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireAdmin(w, r) {
			return
		}
		slug := conditions.NormalizeSlug(chi.URLParam(r, "slug"))

		err := st.DeleteCondition(r.Context(), slug)
		if errors.Is(err, store.ErrNotFound) {
			response.Error(w, http.StatusNotFound, "CONDITION_NOT_FOUND", "Condition not found", nil)
			return
		}
		if err != nil {
			slog.Error("delete condition failed", "slug", slug, "error", err)
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete condition", nil)
			return
		}

		slog.Info("condition removed", "slug", slug)
		response.NoContent(w)
	}
}

// requireAdmin rejects requests that did not pass AdminAuth, so a curation
// handler mounted without the middleware stays closed.
func requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	if mw.IsAdmin(r) {
		return true
	}
	slog.Warn("curation request without admin context", "path", r.URL.Path)
	response.Error(w, http.StatusForbidden, "FORBIDDEN", "Admin access required", nil)
	return false
}
