// Package web renders the server-side HTML pages.
package web

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"

	"github.com/pielsanaia/pielsana/pkg/models"
)

//go:embed templates
var templateFS embed.FS

// Page names accepted by Render.
const (
	PageHome        = "home"
	PageResults     = "results"
	PageResultsAcne = "results_acne"
	PageCondition   = "condition"
	PageNotFound    = "notfound"
	PageAbout       = "about"
	PageLegacy      = "legacy"
	PageError       = "error"
)

var pageNames = []string{
	PageHome, PageResults, PageResultsAcne, PageCondition,
	PageNotFound, PageAbout, PageLegacy, PageError,
}

// Page is the data every template receives. Data holds the page-specific view.
type Page struct {
	Title string
	Theme models.Theme
	Path  string
	Data  any
}

// Renderer holds one parsed template set per page.
type Renderer struct {
	pages map[string]*template.Template
}

// NewRenderer parses the embedded templates.
func NewRenderer() (*Renderer, error) {
	sub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		return nil, err
	}

	r := &Renderer{pages: make(map[string]*template.Template, len(pageNames))}
	for _, name := range pageNames {
		t, err := template.New("layout.html").Funcs(funcs).ParseFS(sub,
			"layout.html", "partials/*.html", name+".html")
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", name, err)
		}
		r.pages[name] = t
	}
	return r, nil
}

// Render writes page with the given status. Output is buffered so a template
// failure never produces a half-written document.
func (r *Renderer) Render(w http.ResponseWriter, status int, name string, p Page) {
	t, ok := r.pages[name]
	if !ok {
		slog.Error("unknown page template", "page", name)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout.html", p); err != nil {
		slog.Error("template execution failed", "page", name, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

var funcs = template.FuncMap{
	"pretty":     Pretty,
	"levelClass": levelClass,
}

// Pretty indents a JSON document for display. Invalid input is returned as is.
func Pretty(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return string(raw)
	}
	return buf.String()
}

func levelClass(level string) string {
	switch level {
	case "Excelente", "Bueno":
		return "good"
	case "Regular":
		return "fair"
	case "Bajo", "Muy bajo":
		return "poor"
	}
	return strings.ToLower(strings.ReplaceAll(level, " ", "-"))
}
