package legacy

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/pielsanaia/pielsana/pkg/models"
)

const (
	notEvaluated     = "No evaluado"
	defaultNutrition = "Adecuado"
	defaultRedness   = "Normal"
	defaultTone      = "Normal"
	maxEmotions      = 5
)

// CategoryLevel maps a 0-100 score onto its descriptive label.
func CategoryLevel(score float64) string {
	switch {
	case score >= 80:
		return "Excelente"
	case score >= 60:
		return "Bueno"
	case score >= 40:
		return "Regular"
	case score >= 20:
		return "Bajo"
	default:
		return "Muy bajo"
	}
}

// Parse decodes and normalizes raw in one step.
func Parse(raw []byte) (*models.SkinReport, error) {
	p, err := Decode(raw)
	if err != nil {
		return nil, err
	}
	return Normalize(p), nil
}

// Normalize reshapes any payload variant into the canonical report. Missing
// data is filled with defaults, never rejected.
func Normalize(p Payload) *models.SkinReport {
	st := p.parts()
	r := &models.SkinReport{
		Shape:    p.Shape(),
		ImageURL: st.ImageURL,
	}

	r.Hydration = metric(st, func(c *skinCondition) *number { return c.Hydration }, func(s *skinBlock) *metricBlock { return s.Hydration })
	r.Texture = metric(st, func(c *skinCondition) *number { return c.Texture }, func(s *skinBlock) *metricBlock { return s.Texture })
	r.Pores = metric(st, func(c *skinCondition) *number { return c.Pores }, func(s *skinBlock) *metricBlock { return s.Pores })
	r.Oiliness = metric(st, func(c *skinCondition) *number { return c.Oiliness }, func(s *skinBlock) *metricBlock { return s.Oiliness })

	r.Health = health(st.Health)
	r.Derm = derm(st)
	r.AgeGender = ageGender(st.AgeGender)
	r.Emotion = emotion(st.Emotion)
	return r
}

func metric(st *subtrees, fromCondition func(*skinCondition) *number, fromSkin func(*skinBlock) *metricBlock) models.Metric {
	var score float64
	switch {
	case st.SkinCondition != nil && fromCondition(st.SkinCondition) != nil:
		score = float64(*fromCondition(st.SkinCondition))
	case st.Skin != nil && fromSkin(st.Skin) != nil:
		score = float64(fromSkin(st.Skin).Score)
	}
	return models.Metric{Score: score, Level: CategoryLevel(score)}
}

func health(h *healthBlock) models.HealthReport {
	out := models.HealthReport{
		FatigueLevel:   notEvaluated,
		NutritionLevel: defaultNutrition,
		RednessLevel:   defaultRedness,
	}
	if h == nil {
		return out
	}
	if f := h.Fatigue; f != nil {
		out.FatigueLevel = orDefault(f.Level, notEvaluated)
		out.FatigueScore = float64(f.Score)
		out.HasDarkCircles = bool(f.HasDarkCircles)
		out.HasRedEyes = bool(f.HasRedEyes)
	}
	if h.Nutrition != nil {
		out.NutritionLevel = orDefault(h.Nutrition.Level, defaultNutrition)
	}
	if sc := h.SkinConditions; sc != nil && sc.Redness != nil {
		out.RednessLevel = orDefault(sc.Redness.Level, defaultRedness)
	}
	return out
}

func derm(st *subtrees) models.DermReport {
	out := models.DermReport{Tone: defaultTone}

	var features *skinFeatures
	if d := st.Derm; d != nil {
		out.Status = string(d.Status)
		out.EmbeddingDimensions = string(d.EmbeddingDimensions)
		features = d.SkinFeatures
	}

	switch {
	case st.SkinTone != nil && st.SkinTone.ToneName != "":
		out.Tone = string(st.SkinTone.ToneName)
	case features != nil && features.Tone != "":
		out.Tone = string(features.Tone)
	}

	if st.SkinTone == nil && st.MoleAnalysis == nil && features != nil && len(features.Conditions) > 0 {
		for _, c := range features.Conditions {
			if c != "" {
				out.Conditions = append(out.Conditions, string(c))
			}
		}
		if len(out.Conditions) > 0 {
			return out
		}
	}
	out.Conditions = conditionLines(st.SkinTone, st.MoleAnalysis)
	return out
}

// conditionLines derives the textual summary from tone and mole data.
func conditionLines(tone *skinTone, moles *moleAnalysis) []string {
	toneName, fitzpatrick := notEvaluated, notEvaluated
	if tone != nil {
		toneName = orDefault(tone.ToneName, notEvaluated)
		fitzpatrick = orDefault(tone.FitzpatrickType, notEvaluated)
	}
	var total, benign, suspicious number
	if moles != nil {
		total, benign, suspicious = moles.TotalCount, moles.BenignCount, moles.SuspiciousCount
	}
	return []string{
		"Tono de piel: " + toneName,
		"Tipo Fitzpatrick: " + fitzpatrick,
		"Lunares totales: " + formatCount(total),
		"Lunares benignos: " + formatCount(benign),
		"Lunares sospechosos: " + formatCount(suspicious),
	}
}

// formatCount prints a count as a whole number. Values are truncated and
// negatives read as 0; no integer conversion, so huge values cannot wrap.
func formatCount(n number) string {
	return strconv.FormatFloat(math.Max(0, math.Trunc(float64(n))), 'f', 0, 64)
}

func ageGender(a *ageGenderBlock) *models.AgeGenderReport {
	if a == nil {
		return nil
	}
	out := &models.AgeGenderReport{}
	if a.Age != nil {
		out.Years = float64(a.Age.Years)
		out.Range = string(a.Age.Range)
	}
	if a.Gender != nil {
		out.Gender = string(a.Gender.Label)
		out.GenderConfidence = float64(a.Gender.Confidence)
	}
	if a.Symmetry != nil {
		score := float64(a.Symmetry.Score)
		out.Symmetry = models.Metric{Score: score, Level: orDefault(a.Symmetry.Level, CategoryLevel(score))}
	}
	return out
}

func emotion(e *emotionBlock) *models.EmotionReport {
	if e == nil {
		return nil
	}
	out := &models.EmotionReport{
		Dominant:         capitalize(string(e.DominantEmotion)),
		SocialExpression: capitalize(string(e.SocialExpression)),
		Top:              TopEmotions(e.Emotions, maxEmotions),
	}
	if e.StressLevel != nil {
		out.StressLevel = string(e.StressLevel.Level)
		out.StressScore = float64(e.StressLevel.Score)
	}
	return out
}

// TopEmotions returns the n highest-scoring emotions, sorted descending.
// Ties are broken by name so the order is stable.
func TopEmotions[V ~float64](emotions map[string]V, n int) []models.EmotionScore {
	out := make([]models.EmotionScore, 0, len(emotions))
	for name, v := range emotions {
		out = append(out, models.EmotionScore{Name: capitalize(name), Value: float64(v)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Value != out[j].Value {
			return out[i].Value > out[j].Value
		}
		return out[i].Name < out[j].Name
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

func orDefault(t text, def string) string {
	if s := strings.TrimSpace(string(t)); s != "" {
		return s
	}
	return def
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	return strings.ToUpper(string(r[0])) + string(r[1:])
}
