package handler

import (
	"net/http"
	"strings"

	mw "github.com/pielsanaia/pielsana/internal/api/middleware"
)

// NewToggleThemeHandler returns an http.HandlerFunc for POST /theme. It flips
// the resolved theme, persists it and redirects back to a local path.
func NewToggleThemeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		next := mw.GetTheme(r).Toggle()
		http.SetCookie(w, mw.ThemeCookieFor(next))
		http.Redirect(w, r, safeReturn(r.FormValue("return")), http.StatusSeeOther)
	}
}

// safeReturn only accepts same-origin absolute paths.
func safeReturn(p string) string {
	if !strings.HasPrefix(p, "/") || strings.HasPrefix(p, "//") || strings.HasPrefix(p, "/\\") {
		return "/"
	}
	return p
}
