// Package main is the entrypoint for the riskplan API server.
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

	"github.com/ocupalis/riskplan/internal/api"
	"github.com/ocupalis/riskplan/internal/api/handler"
	mw "github.com/ocupalis/riskplan/internal/api/middleware"
	"github.com/ocupalis/riskplan/internal/api/response"
	"github.com/ocupalis/riskplan/internal/cache"
	"github.com/ocupalis/riskplan/internal/config"
	"github.com/ocupalis/riskplan/internal/engine"
	"github.com/ocupalis/riskplan/internal/notify"
	"github.com/ocupalis/riskplan/internal/store"
)

const shutdownTimeout = 30 * time.Second

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load config — fail fast on invalid config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	slog.Info("config loaded", "env", cfg.Server.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Connect to database
	pool, err := store.Connect(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()
	slog.Info("database connected")

	// 3. Run migrations
	if err := store.RunMigrations(cfg.Database.URL, "migrations"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	slog.Info("database migrations applied")

	// 4. Create Redis cache
	redisCache, err := cache.NewRedisCache(cfg.Redis.URL)
	if err != nil {
		return fmt.Errorf("create redis cache: %w", err)
	}
	defer redisCache.Close()

	if err := redisCache.Ping(ctx); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	slog.Info("redis connected")

	// 5. Create store
	pgStore := store.NewPostgresStore(pool)

	// 6. Mailer client (optional)
	notifier := setupNotifier(ctx, cfg.Mailer)

	// 7. Build the collective risk engine
	riskEngine := engine.New(pgStore,
		engine.WithNotifier(notifier),
		engine.WithResultCache(redisCache, cfg.Analysis.ResultCacheTTL),
	)

	// 8. Build router with dependencies
	auth := mw.NewAuth(pgStore)
	rateLimit := mw.NewRateLimit(redisCache, 60)

	deps := api.Dependencies{
		Auth:      auth,
		RateLimit: rateLimit,

		HealthHandler:         healthHandler(pgStore, redisCache),
		RunAnalysisHandler:    handler.NewRunAnalysisHandler(riskEngine),
		LatestAnalysisHandler: handler.NewLatestAnalysisHandler(riskEngine),
		ListPlansHandler:      handler.NewListPlansHandler(pgStore),
		GetPlanHandler:        handler.NewGetPlanHandler(pgStore),
		ListPlanItemsHandler:  handler.NewListPlanItemsHandler(pgStore),
		CreateKeyHandler:      handler.NewCreateKeyHandler(pgStore),
		ListKeysHandler:       handler.NewListKeysHandler(pgStore),
		RevokeKeyHandler:      handler.NewRevokeKeyHandler(pgStore),
	}

	router := api.NewRouter(deps)

	// 9. Start HTTP server
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in background
	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Wait for shutdown signal or server error
	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		slog.Info("shutdown signal received, draining connections...")
	}

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}

// setupNotifier builds the mailer client when one is configured and probes
// its readiness. Notifications are best-effort, so an unreachable mailer is
// logged and the server still boots.
func setupNotifier(ctx context.Context, cfg config.MailerConfig) notify.Notifier {
	if cfg.BaseURL == "" {
		return notify.NopNotifier{}
	}
	client := notify.NewHTTPClient(cfg.BaseURL, cfg.APIKey, cfg.Timeout)
	if err := client.Ready(ctx); err != nil {
		slog.Warn("mailer not ready", "base_url", cfg.BaseURL, "error", err)
	} else {
		slog.Info("mailer ready", "base_url", cfg.BaseURL)
	}
	return client
}

// healthHandler checks database and cache connectivity.
func healthHandler(s store.Store, c cache.Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := map[string]string{
			"database": "ok",
			"cache":    "ok",
		}

		if err := s.Ping(r.Context()); err != nil {
			checks["database"] = "degraded"
		}
		if err := c.Ping(r.Context()); err != nil {
			checks["cache"] = "degraded"
		}

		degraded := checks["database"] != "ok" || checks["cache"] != "ok"
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
