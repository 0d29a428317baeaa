package web

import (
	"encoding/json"

	"github.com/pielsanaia/pielsana/pkg/models"
)

// HomeView backs the uploader page.
type HomeView struct {
	Types      []models.AnalysisType
	Selected   models.AnalysisType
	Conditions []models.ConditionInfo
	Error      string
	MaxMB      int64
}

// ResultView backs /results/{id}.
type ResultView struct {
	ID              string
	Raw             json.RawMessage
	Prediction      string
	Probabilities   json.RawMessage
	Recommendations *models.Recommendations
}

// AcneView backs /results-acne. Condition is the catalog entry matching the
// payload, when there is one.
type AcneView struct {
	Result    *models.AnalysisResult
	Condition *models.ConditionInfo
}

type ConditionView struct {
	Info *models.ConditionInfo
}

type NotFoundView struct {
	Message string
}

// LegacyView backs the legacy uploader and its report.
type LegacyView struct {
	Report *models.SkinReport
	Error  string
}

type ErrorView struct {
	Message string
}
