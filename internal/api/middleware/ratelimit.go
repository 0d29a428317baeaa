package middleware

import (
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/pielsanaia/pielsana/internal/api/response"
	"github.com/pielsanaia/pielsana/internal/cache"
)

const defaultRequestsPerMinute = 30

// RateLimit provides fixed-window per-client rate limiting via Redis.
type RateLimit struct {
	cache          cache.Cache
	requestsPerMin int
}

// NewRateLimit creates a new RateLimit middleware.
func NewRateLimit(c cache.Cache, requestsPerMin int) *RateLimit {
	if requestsPerMin <= 0 {
		requestsPerMin = defaultRequestsPerMinute
	}
	if c == nil {
		c = cache.Nop{}
	}
	return &RateLimit{cache: c, requestsPerMin: requestsPerMin}
}

// Limit rejects over-limit requests with a JSON error.
func (rl *RateLimit) Limit(next http.Handler) http.Handler {
	return rl.LimitWith(nil)(next)
}

// LimitWith rejects over-limit requests with reject, or a JSON error when
// reject is nil. Clients are keyed by remote IP, so RealIP must run first.
func (rl *RateLimit) LimitWith(reject http.Handler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := cache.RateLimitKey(clientIP(r))
			count, err := rl.cache.IncrWithExpiry(r.Context(), key, 60*time.Second)
			if err != nil {
				// On Redis error, allow the request (fail open)
				next.ServeHTTP(w, r)
				return
			}

			remaining := rl.requestsPerMin - int(count)
			if remaining < 0 {
				remaining = 0
			}
			resetTime := time.Now().Add(60 * time.Second).Unix()

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(rl.requestsPerMin))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", resetTime))

			if count > int64(rl.requestsPerMin) {
				w.Header().Set("Retry-After", "60")
				if reject != nil {
					reject.ServeHTTP(w, r)
					return
				}
				response.Error(w, http.StatusTooManyRequests,
					"RATE_LIMIT_EXCEEDED", "Too many requests", nil)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
