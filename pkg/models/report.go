package models

// PayloadShape names the variant a legacy backend payload was decoded as.
type PayloadShape string

const (
	ShapeFormatted PayloadShape = "formatted"
	ShapeRaw       PayloadShape = "raw"
	ShapeUnknown   PayloadShape = "unknown"
)

// Metric is a 0-100 score with its category label.
type Metric struct {
	Score float64 `json:"score"`
	Level string  `json:"level"`
}

// SkinReport is the canonical view model rendered by the legacy page and the
// shared report template, whatever shape the backend returned.
type SkinReport struct {
	Shape    PayloadShape `json:"shape"`
	ImageURL string       `json:"image_url,omitempty"`

	Hydration Metric `json:"hydration"`
	Texture   Metric `json:"texture"`
	Pores     Metric `json:"pores"`
	Oiliness  Metric `json:"oiliness"`

	Health HealthReport `json:"health"`
	Derm   DermReport   `json:"derm_analysis"`

	AgeGender *AgeGenderReport `json:"age_gender,omitempty"`
	Emotion   *EmotionReport   `json:"emotion,omitempty"`
}

type HealthReport struct {
	FatigueLevel   string  `json:"fatigue_level"`
	FatigueScore   float64 `json:"fatigue_score"`
	HasDarkCircles bool    `json:"has_dark_circles"`
	HasRedEyes     bool    `json:"has_red_eyes"`
	NutritionLevel string  `json:"nutrition_level"`
	RednessLevel   string  `json:"redness_level"`
}

// DermReport holds the textual summary derived from tone and mole data.
type DermReport struct {
	Status              string   `json:"status"`
	EmbeddingDimensions string   `json:"embedding_dimensions,omitempty"`
	Tone                string   `json:"tone"`
	Conditions          []string `json:"conditions"`
}

type AgeGenderReport struct {
	Years            float64 `json:"years"`
	Range            string  `json:"range"`
	Gender           string  `json:"gender"`
	GenderConfidence float64 `json:"gender_confidence"`
	Symmetry         Metric  `json:"symmetry"`
}

type EmotionReport struct {
	Dominant         string         `json:"dominant"`
	StressLevel      string         `json:"stress_level"`
	StressScore      float64        `json:"stress_score"`
	SocialExpression string         `json:"social_expression"`
	Top              []EmotionScore `json:"top"`
}

type EmotionScore struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}
