// Package main is the entrypoint for the Piel Sana web server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/pielsanaia/pielsana/internal/ai"
	"github.com/pielsanaia/pielsana/internal/analysis"
	"github.com/pielsanaia/pielsana/internal/api"
	"github.com/pielsanaia/pielsana/internal/api/handler"
	mw "github.com/pielsanaia/pielsana/internal/api/middleware"
	"github.com/pielsanaia/pielsana/internal/cache"
	"github.com/pielsanaia/pielsana/internal/conditions"
	"github.com/pielsanaia/pielsana/internal/config"
	"github.com/pielsanaia/pielsana/internal/skinapi"
	"github.com/pielsanaia/pielsana/internal/store"
	"github.com/pielsanaia/pielsana/internal/web"
)

const (
	shutdownTimeout = 30 * time.Second
	migrationsDir   = "migrations"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("could not read .env", "error", err)
	}

	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load config, failing fast on invalid values
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	slog.Info("config loaded",
		"env", cfg.Server.Env,
		"recommendations_provider", cfg.Recommendations.Provider,
		"backend_configured", cfg.Backend.BaseURL != "",
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Connect optional services and build the router
	app, err := setup(ctx, cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	// 3. Start HTTP server
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      app.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.Backend.Timeout + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		slog.Info("shutdown signal received, draining connections...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}

// application is the wired server plus the resources it must release.
type application struct {
	router  http.Handler
	closers []func()
}

func (a *application) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// setup connects the optional database and cache and wires every handler.
// Without DATABASE_URL the curated conditions and admin routes are disabled;
// without REDIS_URL caching and rate limiting are.
func setup(ctx context.Context, cfg *config.Config) (*application, error) {
	app := &application{}
	fail := func(err error) (*application, error) {
		app.Close()
		return nil, err
	}

	health := map[string]handler.Pinger{"database": nil, "cache": nil}

	var pgStore *store.PostgresStore
	if cfg.Database.URL != "" {
		pool, err := store.Connect(ctx, cfg.Database)
		if err != nil {
			return fail(fmt.Errorf("connect database: %w", err))
		}
		app.closers = append(app.closers, pool.Close)

		if err := store.RunMigrations(cfg.Database.URL, migrationsDir); err != nil {
			return fail(fmt.Errorf("run migrations: %w", err))
		}
		pgStore = store.NewPostgresStore(pool)
		health["database"] = pgStore
		slog.Info("database connected, migrations applied")
	} else {
		slog.Info("database disabled, curated conditions unavailable")
	}

	var ca cache.Cache = cache.Nop{}
	if cfg.Redis.URL != "" {
		rc, err := cache.NewRedisCache(cfg.Redis.URL)
		if err != nil {
			return fail(fmt.Errorf("create redis cache: %w", err))
		}
		app.closers = append(app.closers, func() { rc.Close() })

		if err := rc.Ping(ctx); err != nil {
			return fail(fmt.Errorf("ping redis: %w", err))
		}
		ca = rc
		health["cache"] = rc
		slog.Info("redis connected")
	} else {
		slog.Info("redis disabled, caching and rate limiting off")
	}

	client := skinapi.NewHTTPClient(cfg.Backend.BaseURL, cfg.Backend.LegacyBaseURL, cfg.Backend.Timeout)
	health["backend"] = handler.PingFunc(client.Ready)

	provider, err := ai.NewProvider(cfg.Recommendations, client)
	if err != nil {
		return fail(fmt.Errorf("create recommendations provider: %w", err))
	}
	recs := ai.NewService(provider, ca, cfg.Recommendations.Timeout, cfg.Recommendations.CacheTTL)
	slog.Info("recommendations provider initialized", "provider", recs.Name())

	svc := analysis.NewService(client, recs, cfg.Upload.MaxBytes)

	catalog, err := conditions.DefaultCatalog()
	if err != nil {
		return fail(fmt.Errorf("load condition catalog: %w", err))
	}
	var reader conditions.Reader
	if pgStore != nil {
		reader = pgStore
	}
	var remote conditions.Remote
	if cfg.Conditions.Remote {
		remote = client
	}
	conds := conditions.NewService(reader, catalog, remote, ca, cfg.Conditions.CacheTTL)

	rd, err := web.NewRenderer()
	if err != nil {
		return fail(fmt.Errorf("parse templates: %w", err))
	}

	deps := api.Dependencies{
		AdminAuth:   mw.NewAdminAuth(cfg.Admin.APIKeyHash),
		RateLimit:   mw.NewRateLimit(ca, cfg.Upload.RateLimitPerMinute),
		CORSOrigins: cfg.Server.CORSOrigins,

		HomeHandler:          handler.NewHomeHandler(rd, svc, conds),
		AboutHandler:         handler.NewAboutHandler(rd),
		UploadHandler:        handler.NewUploadHandler(rd, svc, conds),
		UploadLimitedHandler: handler.NewUploadRateLimitedHandler(rd, svc, conds),
		ResultsHandler:       handler.NewResultsHandler(rd, svc),
		AcneResultsHandler:   handler.NewAcneResultsHandler(rd),
		ConditionPage:        handler.NewConditionPageHandler(rd, conds),
		LegacyPage:           handler.NewLegacyPageHandler(rd),
		LegacyAnalyze:        handler.NewLegacyAnalyzeHandler(rd, svc),
		ToggleTheme:          handler.NewToggleThemeHandler(),
		NotFound:             handler.NewNotFoundHandler(rd),

		HealthHandler:          handler.NewHealthHandler(health),
		AnalyzeHandler:         handler.NewAnalyzeAPIHandler(svc),
		ResultHandler:          handler.NewResultAPIHandler(svc),
		RecommendationsHandler: handler.NewRecommendationsHandler(recs),
		ListConditions:         handler.NewListConditionsHandler(conds),
		GetCondition:           handler.NewGetConditionHandler(conds),
		NormalizeHandler:       handler.NewNormalizeHandler(),
	}
	if pgStore != nil {
		deps.UpsertCondition = handler.NewUpsertConditionHandler(pgStore)
		deps.DeleteCondition = handler.NewDeleteConditionHandler(pgStore)
	}

	app.router = api.NewRouter(deps)
	return app, nil
}
