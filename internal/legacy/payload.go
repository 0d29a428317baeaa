// Package legacy decodes the payloads returned by the legacy /analyze
// endpoint and reshapes them into a models.SkinReport.
package legacy

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"github.com/pielsanaia/pielsana/pkg/models"
)

// ErrNotObject is returned when the payload is not a JSON object.
var ErrNotObject = errors.New("legacy payload is not a JSON object")

// Payload is one of FormattedPayload, RawPayload or UnknownPayload.
type Payload interface {
	Shape() models.PayloadShape
	parts() *subtrees
}

// FormattedPayload already carries the skin.{metric}.score block.
type FormattedPayload struct{ subtrees }

// RawPayload carries the analyzer's skin_condition, mole_analysis or
// skin_tone subtrees without the formatted skin block.
type RawPayload struct{ subtrees }

// UnknownPayload is a JSON object of neither known shape. Keys lists its
// top-level fields for diagnostics.
type UnknownPayload struct {
	subtrees
	Keys []string
}

func (p *FormattedPayload) Shape() models.PayloadShape { return models.ShapeFormatted }
func (p *RawPayload) Shape() models.PayloadShape       { return models.ShapeRaw }
func (p *UnknownPayload) Shape() models.PayloadShape   { return models.ShapeUnknown }

func (p *FormattedPayload) parts() *subtrees { return &p.subtrees }
func (p *RawPayload) parts() *subtrees       { return &p.subtrees }
func (p *UnknownPayload) parts() *subtrees   { return &p.subtrees }

// subtrees holds every independently decoded part. A nil pointer means the
// part was absent or had the wrong type.
type subtrees struct {
	ImageURL      string
	Skin          *skinBlock
	SkinCondition *skinCondition
	MoleAnalysis  *moleAnalysis
	SkinTone      *skinTone
	Health        *healthBlock
	Derm          *dermBlock
	AgeGender     *ageGenderBlock
	Emotion       *emotionBlock
}

type metricBlock struct {
	Score number `json:"score"`
	Level text   `json:"level"`
}

type skinBlock struct {
	Hydration *metricBlock
	Texture   *metricBlock
	Pores     *metricBlock
	Oiliness  *metricBlock
}

type skinCondition struct {
	Hydration *number `json:"hydration"`
	Texture   *number `json:"texture"`
	Pores     *number `json:"pores"`
	Oiliness  *number `json:"oiliness"`
}

type moleAnalysis struct {
	TotalCount      number `json:"total_count"`
	BenignCount     number `json:"benign_count"`
	SuspiciousCount number `json:"suspicious_count"`
}

type skinTone struct {
	ToneName        text `json:"tone_name"`
	FitzpatrickType text `json:"fitzpatrick_type"`
}

type levelBlock struct {
	Level text `json:"level"`
}

// The nested blocks below decode field by field so that one wrong-typed
// field only drops itself, never its siblings.

type healthBlock struct {
	SkinConditions *skinConditionsBlock
	Nutrition      *levelBlock
	Fatigue        *fatigueBlock
}

type skinConditionsBlock struct {
	Redness *levelBlock
}

type fatigueBlock struct {
	Level          text   `json:"level"`
	Score          number `json:"score"`
	HasDarkCircles flag   `json:"has_dark_circles"`
	HasRedEyes     flag   `json:"has_red_eyes"`
}

type dermBlock struct {
	Status              text
	EmbeddingDimensions text
	SkinFeatures        *skinFeatures
}

type skinFeatures struct {
	Tone       text
	Conditions []text
}

type ageGenderBlock struct {
	Age      *ageBlock
	Gender   *genderBlock
	Symmetry *metricBlock
}

type ageBlock struct {
	Years number `json:"years"`
	Range text   `json:"range"`
}

type genderBlock struct {
	Label      text   `json:"label"`
	Confidence number `json:"confidence"`
}

type emotionBlock struct {
	DominantEmotion  text
	StressLevel      *stressBlock
	SocialExpression text
	Emotions         map[string]number
}

type stressBlock struct {
	Level text   `json:"level"`
	Score number `json:"score"`
}

func (h *healthBlock) UnmarshalJSON(b []byte) error {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(b, &m); err != nil {
		return err
	}
	*h = healthBlock{
		SkinConditions: decodeObject[skinConditionsBlock](m["skin_conditions"]),
		Nutrition:      decodeObject[levelBlock](m["nutrition"]),
		Fatigue:        decodeObject[fatigueBlock](m["fatigue"]),
	}
	return nil
}

func (s *skinConditionsBlock) UnmarshalJSON(b []byte) error {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(b, &m); err != nil {
		return err
	}
	*s = skinConditionsBlock{Redness: decodeObject[levelBlock](m["redness"])}
	return nil
}

func (d *dermBlock) UnmarshalJSON(b []byte) error {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(b, &m); err != nil {
		return err
	}
	*d = dermBlock{SkinFeatures: decodeObject[skinFeatures](m["skin_features"])}
	decodeInto(m["status"], &d.Status)
	decodeInto(m["embedding_dimensions"], &d.EmbeddingDimensions)
	return nil
}

func (f *skinFeatures) UnmarshalJSON(b []byte) error {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(b, &m); err != nil {
		return err
	}
	*f = skinFeatures{}
	decodeInto(m["tone"], &f.Tone)
	if !decodeInto(m["conditions"], &f.Conditions) {
		f.Conditions = nil
	}
	return nil
}

func (a *ageGenderBlock) UnmarshalJSON(b []byte) error {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(b, &m); err != nil {
		return err
	}
	*a = ageGenderBlock{
		Age:      decodeObject[ageBlock](m["age"]),
		Gender:   decodeObject[genderBlock](m["gender"]),
		Symmetry: decodeObject[metricBlock](m["symmetry"]),
	}
	return nil
}

func (e *emotionBlock) UnmarshalJSON(b []byte) error {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(b, &m); err != nil {
		return err
	}
	*e = emotionBlock{StressLevel: decodeObject[stressBlock](m["stress_level"])}
	decodeInto(m["dominant_emotion"], &e.DominantEmotion)
	decodeInto(m["social_expression"], &e.SocialExpression)
	if scores := decodeObject[map[string]number](m["emotions"]); scores != nil {
		e.Emotions = *scores
	}
	return nil
}

// Decode validates raw at the boundary and returns the matching variant.
// Only a non-object document is an error; malformed subtrees are dropped.
func Decode(raw []byte) (Payload, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return nil, ErrNotObject
	}
	var top map[string]json.RawMessage
	if err := json.Unmarshal(raw, &top); err != nil {
		return nil, errors.Join(ErrNotObject, err)
	}

	var st subtrees
	var url text
	if decodeInto(top["image_url"], &url) {
		st.ImageURL = string(url)
	}
	st.Skin = decodeSkin(top["skin"])
	st.SkinCondition = decodeObject[skinCondition](top["skin_condition"])
	st.MoleAnalysis = decodeObject[moleAnalysis](top["mole_analysis"])
	st.SkinTone = decodeObject[skinTone](top["skin_tone"])
	st.Health = decodeObject[healthBlock](top["health"])
	st.Derm = decodeObject[dermBlock](top["derm_analysis"])
	st.AgeGender = decodeObject[ageGenderBlock](top["age_gender"])
	st.Emotion = decodeObject[emotionBlock](top["emotion"])

	switch {
	case st.Skin != nil:
		return &FormattedPayload{st}, nil
	case st.SkinCondition != nil || st.MoleAnalysis != nil || st.SkinTone != nil:
		return &RawPayload{st}, nil
	default:
		keys := make([]string, 0, len(top))
		for k := range top {
			keys = append(keys, k)
		}
		return &UnknownPayload{subtrees: st, Keys: keys}, nil
	}
}

func decodeSkin(raw json.RawMessage) *skinBlock {
	var m map[string]json.RawMessage
	if !decodeInto(raw, &m) || m == nil {
		return nil
	}
	sb := &skinBlock{
		Hydration: decodeObject[metricBlock](m["hydration"]),
		Texture:   decodeObject[metricBlock](m["texture"]),
		Pores:     decodeObject[metricBlock](m["pores"]),
		Oiliness:  decodeObject[metricBlock](m["oiliness"]),
	}
	if sb.Hydration == nil && sb.Texture == nil && sb.Pores == nil && sb.Oiliness == nil {
		return nil
	}
	return sb
}

// decodeObject decodes a JSON object into a new T, or returns nil.
func decodeObject[T any](raw json.RawMessage) *T {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return nil
	}
	v := new(T)
	if !decodeInto(raw, v) {
		return nil
	}
	return v
}

func decodeInto(raw json.RawMessage, v any) bool {
	if len(raw) == 0 {
		return false
	}
	return json.Unmarshal(raw, v) == nil
}

// number accepts a JSON number or a numeric string. Anything else is 0.
type number float64

func (n *number) UnmarshalJSON(b []byte) error {
	*n = 0
	var f float64
	if err := json.Unmarshal(b, &f); err == nil {
		*n = number(f)
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			*n = number(f)
		}
	}
	return nil
}

// text accepts a JSON string or number. Anything else is empty.
type text string

func (t *text) UnmarshalJSON(b []byte) error {
	*t = ""
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*t = text(s)
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err == nil {
		*t = text(strconv.FormatFloat(f, 'f', -1, 64))
	}
	return nil
}

// flag accepts only JSON true. Anything else is false.
type flag bool

func (f *flag) UnmarshalJSON(b []byte) error {
	*f = flag(bytes.Equal(bytes.TrimSpace(b), []byte("true")))
	return nil
}
