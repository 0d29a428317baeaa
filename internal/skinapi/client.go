// Package skinapi is the HTTP client for the external skin analysis backend.
package skinapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/textproto"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/pielsanaia/pielsana/pkg/models"
)

// Sentinel errors for backend failures.
var (
	ErrBackendUnreachable = errors.New("analysis backend unreachable")
	ErrBackendTimeout     = errors.New("analysis backend timeout")
	ErrBackendStatus      = errors.New("analysis backend error status")
	ErrNotFound           = errors.New("analysis backend resource not found")
	ErrInvalidResponse    = errors.New("analysis backend returned invalid response")
)

// maxResponseBytes bounds how much of a backend response is read.
const maxResponseBytes = 4 << 20

// Image is an uploaded file as forwarded to the backend.
type Image struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Client is the interface for talking to the analysis backend.
type Client interface {
	Analyze(ctx context.Context, t models.AnalysisType, img Image) (*models.AnalysisResult, error)
	GetResult(ctx context.Context, id string) (*models.AnalysisResult, error)
	GetCondition(ctx context.Context, slug string) (*models.ConditionInfo, error)
	Recommend(ctx context.Context, prediction string) (*models.Recommendations, error)
	AnalyzeLegacy(ctx context.Context, img Image) (json.RawMessage, error)
	Ready(ctx context.Context) error
}

// EndpointFor returns the analyze path serving the given analysis type.
func EndpointFor(t models.AnalysisType) string {
	switch t {
	case models.AnalysisMoles:
		return "/skin/api/analyze-lunares"
	case models.AnalysisAcne:
		return "/skin/api/analyze-acne"
	default:
		return "/skin/api/analyze"
	}
}

// HTTPClient implements Client over the backend's HTTP API.
type HTTPClient struct {
	baseURL       string
	legacyBaseURL string
	client        *http.Client
}

// NewHTTPClient creates a new backend client. legacyBaseURL serves the
// same-origin /analyze endpoint used by the legacy page.
func NewHTTPClient(baseURL, legacyBaseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL:       strings.TrimRight(baseURL, "/"),
		legacyBaseURL: strings.TrimRight(legacyBaseURL, "/"),
		client:        &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClient) Analyze(ctx context.Context, t models.AnalysisType, img Image) (*models.AnalysisResult, error) {
	body, err := c.postImage(ctx, c.baseURL, EndpointFor(t), img)
	if err != nil {
		return nil, err
	}
	return decodeResult(body)
}

func (c *HTTPClient) GetResult(ctx context.Context, id string) (*models.AnalysisResult, error) {
	body, err := c.get(ctx, "/skin/api/analyze-lunares/"+url.PathEscape(id))
	if err != nil {
		return nil, err
	}
	return decodeResult(body)
}

func (c *HTTPClient) GetCondition(ctx context.Context, slug string) (*models.ConditionInfo, error) {
	body, err := c.get(ctx, "/skin/api/condition/"+url.PathEscape(slug))
	if err != nil {
		return nil, err
	}

	var info models.ConditionInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, fmt.Errorf("%w: decoding condition: %v", ErrInvalidResponse, err)
	}
	if info.Title == "" {
		return nil, fmt.Errorf("%w: condition without title", ErrInvalidResponse)
	}
	if info.Slug == "" {
		info.Slug = slug
	}
	info.Source = models.ConditionSourceRemote
	return &info, nil
}

func (c *HTTPClient) Recommend(ctx context.Context, prediction string) (*models.Recommendations, error) {
	payload, err := json.Marshal(map[string]string{"prediccion": prediction})
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	body, err := c.do(ctx, c.baseURL, http.MethodPost, "/skin/openai-recomendaciones",
		bytes.NewReader(payload), "application/json")
	if err != nil {
		return nil, err
	}

	var recs models.Recommendations
	if err := json.Unmarshal(body, &recs); err != nil {
		return nil, fmt.Errorf("%w: decoding recommendations: %v", ErrInvalidResponse, err)
	}
	return &recs, nil
}

func (c *HTTPClient) AnalyzeLegacy(ctx context.Context, img Image) (json.RawMessage, error) {
	body, err := c.postImage(ctx, c.legacyBaseURL, "/analyze", img)
	if err != nil {
		return nil, err
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("%w: body is not JSON", ErrInvalidResponse)
	}
	return json.RawMessage(body), nil
}

func (c *HTTPClient) Ready(ctx context.Context) error {
	_, err := c.get(ctx, "/")
	return err
}

func (c *HTTPClient) get(ctx context.Context, path string) ([]byte, error) {
	return c.do(ctx, c.baseURL, http.MethodGet, path, nil, "")
}

// postImage sends img as the multipart "file" field, keeping its declared
// content type so the backend's image/* check sees the real type.
func (c *HTTPClient) postImage(ctx context.Context, base, path string, img Image) ([]byte, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	name := img.Filename
	if name == "" {
		name = "upload" + extensionFor(img.ContentType)
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, escapeQuotes(filepath.Base(name))))
	h.Set("Content-Type", img.ContentType)

	part, err := mw.CreatePart(h)
	if err != nil {
		return nil, fmt.Errorf("building multipart body: %w", err)
	}
	if _, err := part.Write(img.Data); err != nil {
		return nil, fmt.Errorf("building multipart body: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("building multipart body: %w", err)
	}

	return c.do(ctx, base, http.MethodPost, path, &buf, mw.FormDataContentType())
}

func (c *HTTPClient) do(ctx context.Context, base, method, path string, body io.Reader, contentType string) ([]byte, error) {
	if base == "" {
		return nil, fmt.Errorf("%w: no backend URL configured", ErrBackendUnreachable)
	}

	req, err := http.NewRequestWithContext(ctx, method, base+path, body)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, classifyError(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, classifyError(err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s %s", ErrNotFound, method, path)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, fmt.Errorf("%w: %s %s returned status %d", ErrBackendStatus, method, path, resp.StatusCode)
	}
	return data, nil
}

// decodeResult parses an analysis envelope, keeping the raw body for display.
func decodeResult(body []byte) (*models.AnalysisResult, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, fmt.Errorf("%w: expected a JSON object", ErrInvalidResponse)
	}

	var res models.AnalysisResult
	if err := json.Unmarshal(trimmed, &res); err != nil {
		return nil, fmt.Errorf("%w: decoding analysis result: %v", ErrInvalidResponse, err)
	}
	res.Raw = json.RawMessage(trimmed)
	return &res, nil
}

// classifyError maps transport-level errors to sentinel errors.
func classifyError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %v", ErrBackendTimeout, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", ErrBackendTimeout, err)
	}

	return fmt.Errorf("%w: %v", ErrBackendUnreachable, err)
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	}
	return ""
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}

// Compile-time check that HTTPClient implements Client.
var _ Client = (*HTTPClient)(nil)
