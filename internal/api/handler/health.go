package handler

import (
	"context"
	"net/http"

	"github.com/pielsanaia/pielsana/internal/api/response"
)

// Pinger is anything whose connectivity can be checked.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// NewHealthHandler checks each named dependency. A nil Pinger is reported as
// disabled and does not degrade the service.
func NewHealthHandler(deps map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := make(map[string]string, len(deps))
		degraded := false
		for name, p := range deps {
			switch {
			case p == nil:
				checks[name] = "disabled"
			case p.Ping(r.Context()) != nil:
				checks[name] = "degraded"
				degraded = true
			default:
				checks[name] = "ok"
			}
		}

		if degraded {
			response.Error(w, http.StatusServiceUnavailable, "DEGRADED",
				"One or more services degraded", checks)
			return
		}

		response.JSON(w, map[string]any{
			"status":   "ok",
			"services": checks,
		})
	}
}
