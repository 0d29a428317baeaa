package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pielsanaia/pielsana/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRenderer(t *testing.T) *Renderer {
	t.Helper()
	r, err := NewRenderer()
	require.NoError(t, err)
	return r
}

func TestNewRenderer_ParsesEveryPage(t *testing.T) {
	r := newRenderer(t)
	for _, name := range pageNames {
		assert.Contains(t, r.pages, name)
	}
}

func TestRender_Home(t *testing.T) {
	r := newRenderer(t)
	w := httptest.NewRecorder()

	r.Render(w, http.StatusBadRequest, PageHome, Page{
		Theme: models.ThemeDark,
		Path:  "/",
		Data: HomeView{
			Types:      models.AnalysisTypes,
			Selected:   models.AnalysisMoles,
			Conditions: []models.ConditionInfo{{Slug: "acne", Title: "Acné", Summary: "Resumen"}},
			Error:      "Por favor sube una imagen válida",
			MaxMB:      10,
		},
	})

	body := w.Body.String()
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, body, `data-theme="dark"`)
	assert.Contains(t, body, "Por favor sube una imagen válida")
	assert.Contains(t, body, "Ley N.º 25.326")
	assert.Contains(t, body, "contacto@pielsanaia.com")
	assert.Contains(t, body, `value="moles" checked`)
	assert.Contains(t, body, `href="/conditions/acne"`)
	assert.Contains(t, body, "Analizando...")
}

func TestRender_Results(t *testing.T) {
	r := newRenderer(t)
	w := httptest.NewRecorder()

	r.Render(w, http.StatusOK, PageResults, Page{
		Theme: models.ThemeLight,
		Data: ResultView{
			ID:            "abc",
			Raw:           json.RawMessage(`{"prediccion":"Nevus","probabilidades":{"Nevus":0.9}}`),
			Prediction:    "Nevus",
			Probabilities: json.RawMessage(`{"Nevus":0.9}`),
			Recommendations: &models.Recommendations{
				Description: "Lunar benigno",
				Items:       []string{"Usa protector solar"},
			},
		},
	})

	body := w.Body.String()
	assert.Contains(t, body, "Predicción: Nevus")
	assert.Contains(t, body, "Usa protector solar")
	assert.Contains(t, body, "&#34;Nevus&#34;: 0.9")
}

func TestRender_ResultsWithoutRecommendations(t *testing.T) {
	r := newRenderer(t)
	w := httptest.NewRecorder()

	r.Render(w, http.StatusOK, PageResults, Page{Data: ResultView{
		Raw:        json.RawMessage(`{"prediccion":"Nevus"}`),
		Prediction: "Nevus",
	}})

	body := w.Body.String()
	assert.Contains(t, body, "Predicción: Nevus")
	assert.NotContains(t, body, "Recomendaciones")
}

func TestRender_AcneFallsBackToCatalogDescription(t *testing.T) {
	r := newRenderer(t)
	w := httptest.NewRecorder()

	r.Render(w, http.StatusOK, PageResultsAcne, Page{Data: AcneView{
		Result:    &models.AnalysisResult{Prediction: "acne", Raw: json.RawMessage(`{"prediccion":"acne"}`)},
		Condition: &models.ConditionInfo{Slug: "acne", Title: "Acné", Description: "Folículos obstruidos"},
	}})

	body := w.Body.String()
	assert.Contains(t, body, "Predicción: acne")
	assert.Contains(t, body, "Folículos obstruidos")
	assert.Contains(t, body, `href="/conditions/acne"`)
}

func TestRender_Legacy(t *testing.T) {
	r := newRenderer(t)
	w := httptest.NewRecorder()

	r.Render(w, http.StatusOK, PageLegacy, Page{Data: LegacyView{Report: &models.SkinReport{
		Hydration: models.Metric{Score: 85, Level: "Excelente"},
		Health:    models.HealthReport{FatigueLevel: "No evaluado", NutritionLevel: "Adecuado", RednessLevel: "Normal"},
		Derm:      models.DermReport{Tone: "Normal", Conditions: []string{"Lunares totales: 0"}},
		Emotion:   &models.EmotionReport{Dominant: "Feliz", Top: []models.EmotionScore{{Name: "Feliz", Value: 80}}},
	}}})

	body := w.Body.String()
	assert.Contains(t, body, `<span class="good">Excelente</span>`)
	assert.Contains(t, body, "Lunares totales: 0")
	assert.Contains(t, body, "Emoción dominante: Feliz")
	assert.NotContains(t, body, "Edad aparente")
}

func TestRender_NotFoundAndError(t *testing.T) {
	r := newRenderer(t)

	w := httptest.NewRecorder()
	r.Render(w, http.StatusNotFound, PageNotFound, Page{Data: NotFoundView{Message: "No hay resultado disponible"}})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "No hay resultado disponible")

	w = httptest.NewRecorder()
	r.Render(w, http.StatusBadGateway, PageError, Page{Data: ErrorView{Message: "Error al analizar la imagen"}})
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "Error al analizar la imagen")
}

func TestRender_UnknownPage(t *testing.T) {
	r := newRenderer(t)
	w := httptest.NewRecorder()

	r.Render(w, http.StatusOK, "missing", Page{})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestPretty(t *testing.T) {
	assert.Equal(t, "{\n  \"a\": 1\n}", Pretty(json.RawMessage(`{"a":1}`)))
	assert.Equal(t, "not json", Pretty(json.RawMessage(`not json`)))
	assert.Equal(t, "", Pretty(nil))
}

func TestLevelClass(t *testing.T) {
	assert.Equal(t, "good", levelClass("Excelente"))
	assert.Equal(t, "good", levelClass("Bueno"))
	assert.Equal(t, "fair", levelClass("Regular"))
	assert.Equal(t, "poor", levelClass("Muy bajo"))
	assert.Equal(t, "no-evaluado", levelClass("No evaluado"))
}
