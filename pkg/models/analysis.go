package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// AnalysisType is the client-selected category that routes an upload to a
// specific backend endpoint.
type AnalysisType string

const (
	AnalysisAcne     AnalysisType = "acne"
	AnalysisRosacea  AnalysisType = "rosacea"
	AnalysisSunspots AnalysisType = "sunspots"
	AnalysisMoles    AnalysisType = "moles"
)

// AnalysisTypes lists the selectable types in display order.
var AnalysisTypes = []AnalysisType{AnalysisAcne, AnalysisRosacea, AnalysisSunspots, AnalysisMoles}

var analysisTypeInfo = map[AnalysisType]struct {
	label       string
	description string
	image       string
}{
	AnalysisAcne: {
		label:       "Acné",
		description: "Detección y análisis de lesiones acneicas.",
		image:       "https://images.pexels.com/photos/415829/pexels-photo-415829.jpeg?auto=compress&w=400",
	},
	AnalysisRosacea: {
		label:       "Rosácea",
		description: "Identificación de enrojecimiento y vasos sanguíneos.",
		image:       "https://images.pexels.com/photos/1138531/pexels-photo-1138531.jpeg?auto=compress&w=400",
	},
	AnalysisSunspots: {
		label:       "Manchas Solares",
		description: "Evaluación de hiperpigmentaciones solares.",
		image:       "https://images.pexels.com/photos/7479603/pexels-photo-7479603.jpeg?auto=compress&w=400",
	},
	AnalysisMoles: {
		label:       "Lunares",
		description: "Análisis de lunares y lesiones atípicas.",
		image:       "https://images.pexels.com/photos/1115128/pexels-photo-1115128.jpeg?auto=compress&w=400",
	},
}

// ParseAnalysisType validates a raw tag from a form or query string.
func ParseAnalysisType(s string) (AnalysisType, error) {
	t := AnalysisType(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := analysisTypeInfo[t]; !ok {
		return "", fmt.Errorf("unknown analysis type %q", s)
	}
	return t, nil
}

func (t AnalysisType) Label() string       { return analysisTypeInfo[t].label }
func (t AnalysisType) Description() string { return analysisTypeInfo[t].description }
func (t AnalysisType) Image() string       { return analysisTypeInfo[t].image }

// InlineResult reports whether the backend response for this type is rendered
// directly instead of being re-fetched by id.
func (t AnalysisType) InlineResult() bool {
	return t == AnalysisAcne
}

// ConsentState records whether the user accepted the data-processing
// disclosure for a single upload attempt. It is never persisted.
type ConsentState bool

// ParseConsent interprets a checkbox value.
func ParseConsent(v string) ConsentState {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "accepted", "on", "true", "1", "yes":
		return true
	}
	return false
}

func (c ConsentState) Accepted() bool { return bool(c) }

// AnalysisRequest carries one uploaded image to the analysis backend.
type AnalysisRequest struct {
	Type        AnalysisType
	Filename    string
	ContentType string
	Image       []byte
	Consent     ConsentState
}

// AnalysisResult is the backend's classification of an uploaded image.
// Fields are optional because the analyze endpoints return different subsets.
type AnalysisResult struct {
	ID              string          `json:"id,omitempty"`
	Filename        string          `json:"filename,omitempty"`
	ContentType     string          `json:"content_type,omitempty"`
	Prediction      string          `json:"prediccion,omitempty"`
	Probabilities   json.RawMessage `json:"probabilidades,omitempty"`
	Condition       string          `json:"afeccion,omitempty"`
	Description     string          `json:"descripcion,omitempty"`
	Recommendations []string        `json:"recomendaciones,omitempty"`
	Error           string          `json:"error,omitempty"`

	// Raw is the payload exactly as received, kept for display.
	Raw json.RawMessage `json:"-"`
}

// Ref returns the identifier used to route to the result page.
func (r *AnalysisResult) Ref() string {
	if r.ID != "" {
		return r.ID
	}
	return r.Filename
}

// Submission is the outcome of an upload: either a result id to navigate to
// or the payload itself.
type Submission struct {
	Type     AnalysisType    `json:"type"`
	ResultID string          `json:"result_id,omitempty"`
	Payload  *AnalysisResult `json:"payload,omitempty"`
}
