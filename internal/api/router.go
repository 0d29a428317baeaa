package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	mw "github.com/pielsanaia/pielsana/internal/api/middleware"
	"github.com/pielsanaia/pielsana/internal/api/response"
)

// Dependencies holds all handler and middleware dependencies for the router.
type Dependencies struct {
	AdminAuth   *mw.AdminAuth
	RateLimit   *mw.RateLimit
	CORSOrigins []string

	// HTML pages
	HomeHandler          http.HandlerFunc
	AboutHandler         http.HandlerFunc
	UploadHandler        http.HandlerFunc
	UploadLimitedHandler http.HandlerFunc
	ResultsHandler       http.HandlerFunc
	AcneResultsHandler   http.HandlerFunc
	ConditionPage        http.HandlerFunc
	LegacyPage           http.HandlerFunc
	LegacyAnalyze        http.HandlerFunc
	ToggleTheme          http.HandlerFunc
	NotFound             http.HandlerFunc

	// JSON API
	HealthHandler          http.HandlerFunc
	AnalyzeHandler         http.HandlerFunc
	ResultHandler          http.HandlerFunc
	RecommendationsHandler http.HandlerFunc
	ListConditions         http.HandlerFunc
	GetCondition           http.HandlerFunc
	NormalizeHandler       http.HandlerFunc
	UpsertCondition        http.HandlerFunc
	DeleteCondition        http.HandlerFunc
}

// NewRouter builds the Chi router with middleware stack and all routes.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.RealIP)
	r.Use(chimw.RequestID)
	r.Use(mw.Logger)
	r.Use(mw.Recovery)

	rateLimit := deps.RateLimit
	if rateLimit == nil {
		rateLimit = mw.NewRateLimit(nil, 0)
	}

	// HTML pages
	r.Group(func(r chi.Router) {
		r.Use(mw.Theme)

		r.Get("/", orNotImplemented(deps.HomeHandler))
		r.Get("/about", orNotImplemented(deps.AboutHandler))
		r.Get("/results/{id}", orNotImplemented(deps.ResultsHandler))
		r.Get("/results-acne", orNotImplemented(deps.AcneResultsHandler))
		r.Get("/conditions/{slug}", orNotImplemented(deps.ConditionPage))
		r.Get("/legacy", orNotImplemented(deps.LegacyPage))
		r.Post("/theme", orNotImplemented(deps.ToggleTheme))

		r.Group(func(r chi.Router) {
			var reject http.Handler
			if deps.UploadLimitedHandler != nil {
				reject = deps.UploadLimitedHandler
			}
			r.Use(rateLimit.LimitWith(reject))

			r.Post("/upload", orNotImplemented(deps.UploadHandler))
			r.Post("/legacy/analyze", orNotImplemented(deps.LegacyAnalyze))
		})

		if deps.NotFound != nil {
			r.NotFound(deps.NotFound)
		}
	})

	// JSON API
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: deps.CORSOrigins,
			AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
			MaxAge:         300,
		}))
		r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
			response.Error(w, http.StatusNotFound, "NOT_FOUND", "Route not found", nil)
		})

		r.Get("/health", orNotImplemented(deps.HealthHandler))
		r.Get("/results/{id}", orNotImplemented(deps.ResultHandler))
		r.Post("/recommendations", orNotImplemented(deps.RecommendationsHandler))
		r.Get("/conditions", orNotImplemented(deps.ListConditions))
		r.Get("/conditions/{slug}", orNotImplemented(deps.GetCondition))
		r.Post("/legacy/normalize", orNotImplemented(deps.NormalizeHandler))

		r.With(rateLimit.Limit).Post("/analyze", orNotImplemented(deps.AnalyzeHandler))

		// Admin routes
		r.Group(func(r chi.Router) {
			auth := deps.AdminAuth
			if auth == nil {
				auth = mw.NewAdminAuth("")
			}
			r.Use(auth.Authenticate)

			r.Put("/admin/conditions/{slug}", orNotImplemented(deps.UpsertCondition))
			r.Delete("/admin/conditions/{slug}", orNotImplemented(deps.DeleteCondition))
		})
	})

	return r
}

// orNotImplemented returns the handler if non-nil, or a 501 placeholder.
func orNotImplemented(h http.HandlerFunc) http.HandlerFunc {
	if h != nil {
		return h
	}
	return func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, http.StatusNotImplemented, "NOT_IMPLEMENTED", "Endpoint not yet implemented", nil)
	}
}
