package middleware

import (
	"context"
	"net/http"

	"github.com/pielsanaia/pielsana/pkg/models"
)

type contextKey string

const (
	themeKey contextKey = "theme"
	adminKey contextKey = "admin"
)

// SetTheme stores the resolved colour scheme for the request.
func SetTheme(ctx context.Context, t models.Theme) context.Context {
	return context.WithValue(ctx, themeKey, t)
}

// GetTheme returns the request theme, light when the middleware did not run.
func GetTheme(r *http.Request) models.Theme {
	if t, ok := r.Context().Value(themeKey).(models.Theme); ok {
		return t
	}
	return models.ThemeLight
}

func setAdmin(ctx context.Context) context.Context {
	return context.WithValue(ctx, adminKey, true)
}

// IsAdmin reports whether AdminAuth accepted the request.
func IsAdmin(r *http.Request) bool {
	ok, _ := r.Context().Value(adminKey).(bool)
	return ok
}
