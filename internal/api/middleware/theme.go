package middleware

import (
	"net/http"

	"github.com/pielsanaia/pielsana/pkg/models"
)

const (
	// ThemeCookie persists the user's explicit choice.
	ThemeCookie = "theme"

	prefersColorSchemeHint = "Sec-CH-Prefers-Color-Scheme"
)

// Theme resolves the colour scheme for each request: a valid theme cookie,
// then the client hint, then light.
func Theme(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Accept-CH", prefersColorSchemeHint)
		w.Header().Add("Vary", prefersColorSchemeHint)
		w.Header().Add("Vary", "Cookie")

		next.ServeHTTP(w, r.WithContext(SetTheme(r.Context(), ResolveTheme(r))))
	})
}

// ResolveTheme applies the cookie, client hint, default order.
func ResolveTheme(r *http.Request) models.Theme {
	if c, err := r.Cookie(ThemeCookie); err == nil {
		if t, ok := models.ParseTheme(c.Value); ok {
			return t
		}
	}
	if t, ok := models.ParseTheme(r.Header.Get(prefersColorSchemeHint)); ok {
		return t
	}
	return models.ThemeLight
}

// ThemeCookieFor builds the one-year preference cookie.
func ThemeCookieFor(t models.Theme) *http.Cookie {
	return &http.Cookie{
		Name:     ThemeCookie,
		Value:    string(t),
		Path:     "/",
		MaxAge:   365 * 24 * 60 * 60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}
