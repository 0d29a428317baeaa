package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pielsanaia/pielsana/internal/api"
	mw "github.com/pielsanaia/pielsana/internal/api/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// --- stub cache that reports every client as over the limit ---

type exhaustedCache struct{}

func (exhaustedCache) Set(_ context.Context, _ string, _ []byte, _ time.Duration) error { return nil }
func (exhaustedCache) Get(_ context.Context, _ string) ([]byte, bool, error)            { return nil, false, nil }
func (exhaustedCache) Delete(_ context.Context, _ string) error                          { return nil }
func (exhaustedCache) Ping(_ context.Context) error                                      { return nil }
func (exhaustedCache) IncrWithExpiry(_ context.Context, _ string, _ time.Duration) (int64, error) {
	return 1000, nil
}

// --- helpers ---

func text(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(body))
	}
}

func serve(t *testing.T, h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func errCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Error.Code
}

func TestRouter_HealthIsPublic(t *testing.T) {
	r := api.NewRouter(api.Dependencies{HealthHandler: text("healthy")})

	w := serve(t, r, httptest.NewRequest("GET", "/api/v1/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", w.Body.String())
}

func TestRouter_UnsetHandlersReturn501(t *testing.T) {
	r := api.NewRouter(api.Dependencies{})

	for _, tc := range []struct{ method, path string }{
		{"GET", "/"},
		{"GET", "/about"},
		{"GET", "/results/abc"},
		{"GET", "/conditions/acne"},
		{"POST", "/upload"},
		{"GET", "/api/v1/health"},
		{"GET", "/api/v1/conditions"},
		{"POST", "/api/v1/analyze"},
	} {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			w := serve(t, r, httptest.NewRequest(tc.method, tc.path, nil))
			assert.Equal(t, http.StatusNotImplemented, w.Code)
			assert.Equal(t, "NOT_IMPLEMENTED", errCode(t, w))
		})
	}
}

func TestRouter_AdminWithoutKeyConfigured(t *testing.T) {
	r := api.NewRouter(api.Dependencies{UpsertCondition: text("saved")})

	req := httptest.NewRequest("PUT", "/api/v1/admin/conditions/acne", nil)
	req.Header.Set("Authorization", "Bearer anything")
	w := serve(t, r, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "FORBIDDEN", errCode(t, w))
}

func TestRouter_AdminKeyChecked(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("ps_admin_key"), bcrypt.MinCost)
	require.NoError(t, err)

	r := api.NewRouter(api.Dependencies{
		AdminAuth:       mw.NewAdminAuth(string(hash)),
		DeleteCondition: text("deleted"),
	})

	req := httptest.NewRequest("DELETE", "/api/v1/admin/conditions/acne", nil)
	req.Header.Set("Authorization", "Bearer ps_wrong")
	w := serve(t, r, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req = httptest.NewRequest("DELETE", "/api/v1/admin/conditions/acne", nil)
	req.Header.Set("Authorization", "Bearer ps_admin_key")
	w = serve(t, r, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "deleted", w.Body.String())

	// Upsert is unset: auth passes, then the placeholder answers.
	req = httptest.NewRequest("PUT", "/api/v1/admin/conditions/acne", nil)
	req.Header.Set("Authorization", "Bearer ps_admin_key")
	w = serve(t, r, req)
	assert.Equal(t, http.StatusNotImplemented, w.Code)
}

func TestRouter_UnknownAPIPathIsJSON404(t *testing.T) {
	r := api.NewRouter(api.Dependencies{NotFound: text("html not found")})

	w := serve(t, r, httptest.NewRequest("GET", "/api/v1/nope", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.Equal(t, "NOT_FOUND", errCode(t, w))
}

func TestRouter_UnknownPageUsesNotFoundHandler(t *testing.T) {
	r := api.NewRouter(api.Dependencies{NotFound: func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte("theme=" + string(mw.GetTheme(r))))
	}})

	req := httptest.NewRequest("GET", "/no-such-page", nil)
	req.AddCookie(&http.Cookie{Name: mw.ThemeCookie, Value: "dark"})
	w := serve(t, r, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "theme=dark", w.Body.String())
}

func TestRouter_PagesAdvertiseThemeHint(t *testing.T) {
	r := api.NewRouter(api.Dependencies{
		HomeHandler:    text("home"),
		ListConditions: text("[]"),
	})

	w := serve(t, r, httptest.NewRequest("GET", "/", nil))
	assert.Equal(t, "Sec-CH-Prefers-Color-Scheme", w.Header().Get("Accept-CH"))

	w = serve(t, r, httptest.NewRequest("GET", "/api/v1/conditions", nil))
	assert.Empty(t, w.Header().Get("Accept-CH"))
}

func TestRouter_CORSOnAPI(t *testing.T) {
	r := api.NewRouter(api.Dependencies{
		CORSOrigins:    []string{"https://app.pielsana.test"},
		ListConditions: text("[]"),
	})

	req := httptest.NewRequest("GET", "/api/v1/conditions", nil)
	req.Header.Set("Origin", "https://app.pielsana.test")
	w := serve(t, r, req)
	assert.Equal(t, "https://app.pielsana.test", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest("GET", "/api/v1/conditions", nil)
	req.Header.Set("Origin", "https://evil.test")
	w = serve(t, r, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouter_UploadRateLimited(t *testing.T) {
	r := api.NewRouter(api.Dependencies{
		RateLimit:     mw.NewRateLimit(exhaustedCache{}, 5),
		UploadHandler: text("uploaded"),
		UploadLimitedHandler: func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte("slow down"))
		},
		AnalyzeHandler: text("analyzed"),
		HomeHandler:    text("home"),
	})

	w := serve(t, r, httptest.NewRequest("POST", "/upload", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "slow down", w.Body.String())

	w = serve(t, r, httptest.NewRequest("POST", "/api/v1/analyze", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "RATE_LIMIT_EXCEEDED", errCode(t, w))

	w = serve(t, r, httptest.NewRequest("GET", "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_NoRateLimitConfigured(t *testing.T) {
	r := api.NewRouter(api.Dependencies{UploadHandler: text("uploaded")})

	for i := 0; i < 50; i++ {
		w := serve(t, r, httptest.NewRequest("POST", "/upload", nil))
		require.Equal(t, http.StatusOK, w.Code)
	}
}
