// Package analysis applies the upload rules in front of the analysis backend
// and assembles result views.
package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/pielsanaia/pielsana/internal/skinapi"
	"github.com/pielsanaia/pielsana/pkg/models"
)

var (
	ErrConsentRequired = errors.New("consent not accepted")
	ErrInvalidImage    = errors.New("invalid image")
	ErrImageTooLarge   = errors.New("image too large")
	ErrUnknownType     = errors.New("unknown analysis type")
	ErrAnalysisFailed  = errors.New("analysis failed")
)

// FallbackError is shown in place of a result that could not be fetched.
const FallbackError = "No se pudo obtener el resultado."

// Recommender produces recommendations for a prediction label.
type Recommender interface {
	Recommend(ctx context.Context, prediction string) (*models.Recommendations, error)
}

// ResultView is what a result page renders.
type ResultView struct {
	ID              string
	Result          *models.AnalysisResult
	Recommendations *models.Recommendations
}

// Service validates uploads and forwards them to the backend.
type Service struct {
	backend  skinapi.Client
	recs     Recommender
	maxBytes int64
}

// NewService creates a Service. recs may be nil, in which case results are
// rendered without recommendations.
func NewService(backend skinapi.Client, recs Recommender, maxBytes int64) *Service {
	return &Service{backend: backend, recs: recs, maxBytes: maxBytes}
}

// MaxBytes is the largest accepted image.
func (s *Service) MaxBytes() int64 { return s.maxBytes }

// Validate applies every local rule. Nothing is sent anywhere.
func (s *Service) Validate(req models.AnalysisRequest, allowed []ImageFormat) error {
	if _, err := models.ParseAnalysisType(string(req.Type)); err != nil {
		return fmt.Errorf("%w: %v", ErrUnknownType, err)
	}
	if !req.Consent.Accepted() {
		return ErrConsentRequired
	}
	if len(req.Image) == 0 {
		return fmt.Errorf("%w: no file", ErrInvalidImage)
	}
	if int64(len(req.Image)) > s.maxBytes {
		return fmt.Errorf("%w: %d bytes exceeds %d", ErrImageTooLarge, len(req.Image), s.maxBytes)
	}
	if _, err := ValidateImage(req.ContentType, req.Image, allowed); err != nil {
		return err
	}
	return nil
}

// Submit validates req and issues exactly one analyze call. The image buffer
// is zeroed once the call returns, whatever the outcome.
func (s *Service) Submit(ctx context.Context, req models.AnalysisRequest) (*models.Submission, error) {
	defer clear(req.Image)

	if err := s.Validate(req, UploadFormats); err != nil {
		return nil, err
	}

	res, err := s.backend.Analyze(ctx, req.Type, skinapi.Image{
		Filename:    req.Filename,
		ContentType: req.ContentType,
		Data:        req.Image,
	})
	if err != nil {
		slog.Warn("analysis call failed", "type", req.Type, "ext", filepath.Ext(req.Filename), "error", err)
		return nil, fmt.Errorf("%w: %w", ErrAnalysisFailed, err)
	}

	slog.Info("analysis submitted", "type", req.Type, "bytes", len(req.Image))

	if req.Type.InlineResult() {
		return &models.Submission{Type: req.Type, Payload: res}, nil
	}
	ref := res.Ref()
	if ref == "" {
		return nil, fmt.Errorf("%w: response carries neither id nor filename", ErrAnalysisFailed)
	}
	return &models.Submission{Type: req.Type, ResultID: ref}, nil
}

// SubmitLegacy forwards a JPEG or PNG to the legacy analyze endpoint and
// returns its raw payload. The consent gate applies here too.
func (s *Service) SubmitLegacy(ctx context.Context, req models.AnalysisRequest) (json.RawMessage, error) {
	defer clear(req.Image)

	if !req.Consent.Accepted() {
		return nil, ErrConsentRequired
	}
	if len(req.Image) == 0 {
		return nil, fmt.Errorf("%w: no file", ErrInvalidImage)
	}
	if int64(len(req.Image)) > s.maxBytes {
		return nil, fmt.Errorf("%w: %d bytes exceeds %d", ErrImageTooLarge, len(req.Image), s.maxBytes)
	}
	if _, err := ValidateImage(req.ContentType, req.Image, LegacyFormats); err != nil {
		return nil, err
	}

	raw, err := s.backend.AnalyzeLegacy(ctx, skinapi.Image{
		Filename:    req.Filename,
		ContentType: req.ContentType,
		Data:        req.Image,
	})
	if err != nil {
		slog.Warn("legacy analysis call failed", "ext", filepath.Ext(req.Filename), "error", err)
		return nil, fmt.Errorf("%w: %w", ErrAnalysisFailed, err)
	}
	return raw, nil
}

// Result fetches a stored result and, when it names a prediction, its
// recommendations. A recommendations failure is logged and otherwise ignored.
func (s *Service) Result(ctx context.Context, id string) (*ResultView, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("%w: empty id", skinapi.ErrNotFound)
	}

	res, err := s.backend.GetResult(ctx, id)
	if err != nil {
		return nil, err
	}

	view := &ResultView{ID: id, Result: res}
	view.Recommendations = s.Recommendations(ctx, res.Prediction)
	return view, nil
}

// Recommendations returns advice for prediction, or nil when there is no
// prediction or the step fails.
func (s *Service) Recommendations(ctx context.Context, prediction string) *models.Recommendations {
	if s.recs == nil || strings.TrimSpace(prediction) == "" {
		return nil
	}
	recs, err := s.recs.Recommend(ctx, prediction)
	if err != nil {
		slog.Warn("recommendations unavailable", "prediction", prediction, "error", err)
		return nil
	}
	if recs.Empty() {
		return nil
	}
	return recs
}

// FallbackResult is the payload rendered when a result cannot be fetched.
func FallbackResult(id string) *ResultView {
	return &ResultView{
		ID:     id,
		Result: &models.AnalysisResult{Error: FallbackError},
	}
}
