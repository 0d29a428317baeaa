// Package handler holds the HTTP handlers for the HTML pages and the JSON API.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/pielsanaia/pielsana/internal/analysis"
	mw "github.com/pielsanaia/pielsana/internal/api/middleware"
	"github.com/pielsanaia/pielsana/internal/web"
	"github.com/pielsanaia/pielsana/pkg/models"
)

// Renderer renders a named page.
type Renderer interface {
	Render(w http.ResponseWriter, status int, name string, p web.Page)
}

// Analyzer is the upload and result side of analysis.Service.
type Analyzer interface {
	MaxBytes() int64
	Submit(ctx context.Context, req models.AnalysisRequest) (*models.Submission, error)
	SubmitLegacy(ctx context.Context, req models.AnalysisRequest) (json.RawMessage, error)
	Result(ctx context.Context, id string) (*analysis.ResultView, error)
}

// ConditionFinder resolves condition reference content.
type ConditionFinder interface {
	Lookup(ctx context.Context, slug string) (*models.ConditionInfo, error)
	List(ctx context.Context) []models.ConditionInfo
}

// Recommender turns a prediction label into advice.
type Recommender interface {
	Recommend(ctx context.Context, prediction string) (*models.Recommendations, error)
}

const maxFieldBytes = 1 << 10

func page(r *http.Request, title string, data any) web.Page {
	return web.Page{
		Title: title,
		Theme: mw.GetTheme(r),
		Path:  r.URL.RequestURI(),
		Data:  data,
	}
}

// readUpload streams a multipart body into an AnalysisRequest without
// touching disk. At most maxBytes+1 image bytes are kept so the size rule can
// still be reported in validation order.
func readUpload(w http.ResponseWriter, r *http.Request, maxBytes int64) (models.AnalysisRequest, error) {
	var req models.AnalysisRequest

	r.Body = http.MaxBytesReader(w, r.Body, maxBytes+1<<20)
	mr, err := r.MultipartReader()
	if err != nil {
		return req, fmt.Errorf("%w: %v", analysis.ErrInvalidImage, err)
	}

	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			clear(req.Image)
			var tooBig *http.MaxBytesError
			if errors.As(err, &tooBig) {
				return models.AnalysisRequest{}, fmt.Errorf("%w: request body over %d bytes", analysis.ErrImageTooLarge, tooBig.Limit)
			}
			return models.AnalysisRequest{}, fmt.Errorf("%w: %v", analysis.ErrInvalidImage, err)
		}

		switch part.FormName() {
		case "type":
			req.Type = models.AnalysisType(strings.ToLower(strings.TrimSpace(readField(part))))
		case "consent":
			req.Consent = models.ParseConsent(readField(part))
		case "file":
			if part.FileName() == "" || req.Image != nil {
				break
			}
			data, err := io.ReadAll(io.LimitReader(part, maxBytes+1))
			if err != nil {
				clear(data)
				part.Close()
				var tooBig *http.MaxBytesError
				if errors.As(err, &tooBig) {
					return models.AnalysisRequest{}, fmt.Errorf("%w: request body over %d bytes", analysis.ErrImageTooLarge, tooBig.Limit)
				}
				return models.AnalysisRequest{}, fmt.Errorf("%w: %v", analysis.ErrInvalidImage, err)
			}
			req.Filename = part.FileName()
			req.ContentType = part.Header.Get("Content-Type")
			req.Image = data
		}
		part.Close()
	}
	return req, nil
}

func readField(part io.Reader) string {
	b, _ := io.ReadAll(io.LimitReader(part, maxFieldBytes))
	return string(b)
}
