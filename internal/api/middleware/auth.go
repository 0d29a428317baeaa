package middleware

import (
	"net/http"
	"strings"

	"github.com/pielsanaia/pielsana/internal/api/response"
	"golang.org/x/crypto/bcrypt"
)

// AdminAuth guards curation routes with a single bcrypt-hashed bearer key.
type AdminAuth struct {
	keyHash []byte
}

// NewAdminAuth creates the middleware. An empty hash rejects every request.
func NewAdminAuth(keyHash string) *AdminAuth {
	return &AdminAuth{keyHash: []byte(keyHash)}
}

// Authenticate validates the Bearer token against the configured hash and
// marks the request context as admin.
func (a *AdminAuth) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if len(a.keyHash) == 0 {
			response.Error(w, http.StatusForbidden,
				"FORBIDDEN", "Admin access is not configured", nil)
			return
		}

		rawKey := extractBearerToken(r)
		if rawKey == "" {
			response.Error(w, http.StatusUnauthorized,
				"INVALID_TOKEN", "Missing or invalid Authorization header", nil)
			return
		}

		if bcrypt.CompareHashAndPassword(a.keyHash, []byte(rawKey)) != nil {
			response.Error(w, http.StatusUnauthorized,
				"INVALID_TOKEN", "Invalid API key", nil)
			return
		}

		next.ServeHTTP(w, r.WithContext(setAdmin(r.Context())))
	})
}

func extractBearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return ""
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
