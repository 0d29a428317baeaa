package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/pielsanaia/pielsana/internal/skinapi"
	"github.com/pielsanaia/pielsana/internal/skinapi/mock"
	"github.com/pielsanaia/pielsana/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- helpers ---

func testImage() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.RGBA{R: 200, G: 150, B: 120, A: 255})
	return img
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, testImage()))
	return buf.Bytes()
}

func jpegBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, testImage(), nil))
	return buf.Bytes()
}

func gifBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, gif.Encode(&buf, testImage(), nil))
	return buf.Bytes()
}

func validRequest(t *testing.T, typ models.AnalysisType) models.AnalysisRequest {
	return models.AnalysisRequest{
		Type:        typ,
		Filename:    "face.png",
		ContentType: "image/png",
		Image:       pngBytes(t),
		Consent:     true,
	}
}

type stubRecommender struct {
	recs   *models.Recommendations
	err    error
	called []string
}

func (s *stubRecommender) Recommend(_ context.Context, prediction string) (*models.Recommendations, error) {
	s.called = append(s.called, prediction)
	return s.recs, s.err
}

// --- DetectFormat / ValidateImage ---

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want ImageFormat
	}{
		{"png", pngBytes(t), FormatPNG},
		{"jpeg", jpegBytes(t), FormatJPEG},
		{"gif", gifBytes(t), FormatGIF},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DetectFormat(tt.data)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDetectFormat_Rejects(t *testing.T) {
	_, err := DetectFormat(nil)
	assert.Error(t, err)

	_, err = DetectFormat([]byte("%PDF-1.7 definitely not an image"))
	assert.Error(t, err)
}

func TestValidateImage_DeclaredTypeMustBeImage(t *testing.T) {
	_, err := ValidateImage("application/pdf", pngBytes(t), UploadFormats)
	assert.ErrorIs(t, err, ErrInvalidImage)
}

func TestValidateImage_BytesMustDecode(t *testing.T) {
	_, err := ValidateImage("image/png", []byte("not really a png"), UploadFormats)
	assert.ErrorIs(t, err, ErrInvalidImage)
}

func TestValidateImage_ContentTypeParams(t *testing.T) {
	f, err := ValidateImage("Image/PNG; charset=binary", pngBytes(t), UploadFormats)
	require.NoError(t, err)
	assert.Equal(t, FormatPNG, f)
}

func TestValidateImage_LegacyAcceptsOnlyJPEGAndPNG(t *testing.T) {
	_, err := ValidateImage("image/jpeg", jpegBytes(t), LegacyFormats)
	assert.NoError(t, err)

	_, err = ValidateImage("image/gif", gifBytes(t), LegacyFormats)
	assert.ErrorIs(t, err, ErrInvalidImage)

	// Mislabelled GIF is caught by the byte check.
	_, err = ValidateImage("image/png", gifBytes(t), LegacyFormats)
	assert.ErrorIs(t, err, ErrInvalidImage)
}

// --- Submit ---

func TestSubmit_MolesReturnsResultID(t *testing.T) {
	backend := &mock.MockClient{
		AnalyzeFunc: func(_ context.Context, typ models.AnalysisType, img skinapi.Image) (*models.AnalysisResult, error) {
			assert.Equal(t, models.AnalysisMoles, typ)
			assert.Equal(t, "image/png", img.ContentType)
			assert.Equal(t, "face.png", img.Filename)
			return &models.AnalysisResult{ID: "abc123"}, nil
		},
	}
	svc := NewService(backend, nil, 1<<20)

	sub, err := svc.Submit(context.Background(), validRequest(t, models.AnalysisMoles))
	require.NoError(t, err)
	assert.Equal(t, "abc123", sub.ResultID)
	assert.Nil(t, sub.Payload)

	calls := backend.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "/skin/api/analyze-lunares", calls[0].Arg)
}

func TestSubmit_ExactlyOneCallPerType(t *testing.T) {
	for _, typ := range models.AnalysisTypes {
		t.Run(string(typ), func(t *testing.T) {
			backend := &mock.MockClient{
				AnalyzeFunc: func(context.Context, models.AnalysisType, skinapi.Image) (*models.AnalysisResult, error) {
					return &models.AnalysisResult{ID: "r1", Condition: "Acné"}, nil
				},
			}
			svc := NewService(backend, nil, 1<<20)

			_, err := svc.Submit(context.Background(), validRequest(t, typ))
			require.NoError(t, err)

			calls := backend.Calls()
			require.Len(t, calls, 1)
			assert.Equal(t, skinapi.EndpointFor(typ), calls[0].Arg)
		})
	}
}

func TestSubmit_GenericFallsBackToFilename(t *testing.T) {
	backend := &mock.MockClient{
		AnalyzeFunc: func(context.Context, models.AnalysisType, skinapi.Image) (*models.AnalysisResult, error) {
			return &models.AnalysisResult{Filename: "face.png", Prediction: "Rosacea"}, nil
		},
	}
	svc := NewService(backend, nil, 1<<20)

	sub, err := svc.Submit(context.Background(), validRequest(t, models.AnalysisRosacea))
	require.NoError(t, err)
	assert.Equal(t, "face.png", sub.ResultID)
}

func TestSubmit_AcneReturnsInlinePayload(t *testing.T) {
	backend := &mock.MockClient{
		AnalyzeFunc: func(context.Context, models.AnalysisType, skinapi.Image) (*models.AnalysisResult, error) {
			return &models.AnalysisResult{Condition: "Acné leve", Recommendations: []string{"Limpieza"}}, nil
		},
	}
	svc := NewService(backend, nil, 1<<20)

	sub, err := svc.Submit(context.Background(), validRequest(t, models.AnalysisAcne))
	require.NoError(t, err)
	assert.Empty(t, sub.ResultID)
	require.NotNil(t, sub.Payload)
	assert.Equal(t, "Acné leve", sub.Payload.Condition)
}

func TestSubmit_MissingReference(t *testing.T) {
	backend := &mock.MockClient{}
	svc := NewService(backend, nil, 1<<20)

	_, err := svc.Submit(context.Background(), validRequest(t, models.AnalysisMoles))
	assert.ErrorIs(t, err, ErrAnalysisFailed)
}

func TestSubmit_BackendFailure(t *testing.T) {
	backend := mock.NewFailingClient(skinapi.ErrBackendUnreachable)
	svc := NewService(backend, nil, 1<<20)

	_, err := svc.Submit(context.Background(), validRequest(t, models.AnalysisMoles))
	assert.ErrorIs(t, err, ErrAnalysisFailed)
	assert.ErrorIs(t, err, skinapi.ErrBackendUnreachable)
}

func TestSubmit_RejectedBeforeAnyNetworkCall(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*models.AnalysisRequest)
		wantErr error
	}{
		{"unknown type", func(r *models.AnalysisRequest) { r.Type = "psoriasis" }, ErrUnknownType},
		{"no consent", func(r *models.AnalysisRequest) { r.Consent = false }, ErrConsentRequired},
		{"no file", func(r *models.AnalysisRequest) { r.Image = nil }, ErrInvalidImage},
		{"pdf declared", func(r *models.AnalysisRequest) { r.ContentType = "application/pdf" }, ErrInvalidImage},
		{"text bytes", func(r *models.AnalysisRequest) { r.Image = []byte("hello world") }, ErrInvalidImage},
		{"too large", func(r *models.AnalysisRequest) { r.Image = make([]byte, 2<<20) }, ErrImageTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := &mock.MockClient{}
			svc := NewService(backend, nil, 1<<20)

			req := validRequest(t, models.AnalysisMoles)
			tt.mutate(&req)

			_, err := svc.Submit(context.Background(), req)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, backend.Calls())
		})
	}
}

func TestSubmit_ZeroesImageBuffer(t *testing.T) {
	backend := &mock.MockClient{
		AnalyzeFunc: func(context.Context, models.AnalysisType, skinapi.Image) (*models.AnalysisResult, error) {
			return &models.AnalysisResult{ID: "x"}, nil
		},
	}
	svc := NewService(backend, nil, 1<<20)

	req := validRequest(t, models.AnalysisMoles)
	_, err := svc.Submit(context.Background(), req)
	require.NoError(t, err)

	for i, b := range req.Image {
		if b != 0 {
			t.Fatalf("byte %d not zeroed", i)
		}
	}
}

// --- SubmitLegacy ---

func TestSubmitLegacy(t *testing.T) {
	backend := &mock.MockClient{
		AnalyzeLegacyFunc: func(_ context.Context, img skinapi.Image) (json.RawMessage, error) {
			assert.Equal(t, "image/png", img.ContentType)
			return json.RawMessage(`{"skin_condition":{"hydration":55}}`), nil
		},
	}
	svc := NewService(backend, nil, 1<<20)

	raw, err := svc.SubmitLegacy(context.Background(), validRequest(t, ""))
	require.NoError(t, err)
	assert.JSONEq(t, `{"skin_condition":{"hydration":55}}`, string(raw))
}

func TestSubmitLegacy_RejectsGIFWithoutCall(t *testing.T) {
	backend := &mock.MockClient{}
	svc := NewService(backend, nil, 1<<20)

	req := validRequest(t, "")
	req.ContentType = "image/gif"
	req.Image = gifBytes(t)

	_, err := svc.SubmitLegacy(context.Background(), req)
	assert.ErrorIs(t, err, ErrInvalidImage)
	assert.Empty(t, backend.Calls())
}

func TestSubmitLegacy_RequiresConsent(t *testing.T) {
	backend := &mock.MockClient{}
	svc := NewService(backend, nil, 1<<20)

	req := validRequest(t, "")
	req.Consent = false

	_, err := svc.SubmitLegacy(context.Background(), req)
	assert.ErrorIs(t, err, ErrConsentRequired)
	assert.Empty(t, backend.Calls())
}

// --- Result ---

func TestResult_WithRecommendations(t *testing.T) {
	backend := &mock.MockClient{
		GetResultFunc: func(_ context.Context, id string) (*models.AnalysisResult, error) {
			assert.Equal(t, "abc123", id)
			return &models.AnalysisResult{Prediction: "Nevus"}, nil
		},
	}
	recs := &stubRecommender{recs: &models.Recommendations{Items: []string{"Use protector solar"}}}
	svc := NewService(backend, recs, 1<<20)

	view, err := svc.Result(context.Background(), "abc123")
	require.NoError(t, err)
	assert.Equal(t, "Nevus", view.Result.Prediction)
	require.NotNil(t, view.Recommendations)
	assert.Equal(t, []string{"Nevus"}, recs.called)
}

func TestResult_RecommendationsFailureIgnored(t *testing.T) {
	backend := &mock.MockClient{
		GetResultFunc: func(context.Context, string) (*models.AnalysisResult, error) {
			return &models.AnalysisResult{Prediction: "Nevus"}, nil
		},
	}
	recs := &stubRecommender{err: errors.New("openai down")}
	svc := NewService(backend, recs, 1<<20)

	view, err := svc.Result(context.Background(), "abc123")
	require.NoError(t, err)
	assert.Equal(t, "Nevus", view.Result.Prediction)
	assert.Nil(t, view.Recommendations)
}

func TestResult_NoPredictionSkipsRecommendations(t *testing.T) {
	backend := &mock.MockClient{
		GetResultFunc: func(context.Context, string) (*models.AnalysisResult, error) {
			return &models.AnalysisResult{ID: "abc123"}, nil
		},
	}
	recs := &stubRecommender{}
	svc := NewService(backend, recs, 1<<20)

	_, err := svc.Result(context.Background(), "abc123")
	require.NoError(t, err)
	assert.Empty(t, recs.called)
}

func TestResult_NotFound(t *testing.T) {
	svc := NewService(&mock.MockClient{}, nil, 1<<20)

	_, err := svc.Result(context.Background(), "missing")
	assert.ErrorIs(t, err, skinapi.ErrNotFound)

	_, err = svc.Result(context.Background(), "  ")
	assert.ErrorIs(t, err, skinapi.ErrNotFound)
}

func TestFallbackResult(t *testing.T) {
	view := FallbackResult("abc")
	assert.Equal(t, FallbackError, view.Result.Error)
	assert.Nil(t, view.Recommendations)
}
