package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/verona-marmoleria/backoffice-bff-go/internal/config"
	"github.com/verona-marmoleria/backoffice-bff-go/internal/domain"
	"github.com/verona-marmoleria/backoffice-bff-go/internal/handler"
	"github.com/verona-marmoleria/backoffice-bff-go/internal/infra/api"
	"github.com/verona-marmoleria/backoffice-bff-go/internal/infra/cache"
	"github.com/verona-marmoleria/backoffice-bff-go/internal/infra/observability"
	"github.com/verona-marmoleria/backoffice-bff-go/internal/infra/pdf"
	"github.com/verona-marmoleria/backoffice-bff-go/internal/infra/rates"
	"github.com/verona-marmoleria/backoffice-bff-go/internal/infra/resilience"
	"github.com/verona-marmoleria/backoffice-bff-go/internal/infra/session"
	"github.com/verona-marmoleria/backoffice-bff-go/internal/infra/storage"
	"github.com/verona-marmoleria/backoffice-bff-go/internal/port"
	"github.com/verona-marmoleria/backoffice-bff-go/internal/service"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	// --- Load .env file (for local development) ---
	_ = config.LoadDotEnv(".env")

	// --- Config ---
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "invalid configuration:", err)
		os.Exit(1)
	}

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.String("api_base_url", cfg.APIBaseURL),
		zap.Duration("http_timeout", cfg.HTTPTimeout),
		zap.Int("max_retries", cfg.MaxRetries),
		zap.Int("max_concurrency", cfg.MaxConcurrency),
		zap.Strings("rates_codes", cfg.RatesCodes),
		zap.Duration("session_ttl", cfg.SessionTTL),
	)
	if cfg.UsesDevSecret() {
		logger.Warn("SESSION_SECRET not set, using the development key")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Tracing ---
	shutdownTracer, err := observability.InitTracer(ctx, cfg.OTLPEndpoint, "verona-bff")
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdownTracer(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Clients ---
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	resilienceCfg := resilience.Config{
		MaxRetries:     cfg.MaxRetries,
		InitialBackoff: cfg.InitialBackoff,
		MaxConcurrency: cfg.MaxConcurrency,
	}

	remote := api.NewClient(httpClient, cfg.APIBaseURL, resilienceCfg, logger, metrics)
	ratesClient := rates.NewClient(httpClient, cfg.RatesAPIURL, resilienceCfg,
		cache.New[domain.CurrencyRate](cfg.RatesCacheTTL), metrics, logger)

	var photos port.PhotoStore
	s3cfg := storage.Config{
		Bucket:    cfg.S3Bucket,
		Region:    cfg.S3Region,
		Endpoint:  cfg.S3Endpoint,
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,
		PublicURL: cfg.S3PublicURL,
	}
	if s3cfg.Enabled() {
		store, err := storage.NewS3PhotoStore(ctx, s3cfg, logger)
		if err != nil {
			logger.Fatal("failed to init photo storage", zap.Error(err))
		}
		photos = store
		logger.Info("photo uploads enabled", zap.String("bucket", cfg.S3Bucket))
	} else {
		logger.Info("photo uploads disabled, only photo URLs are accepted")
	}

	// --- Sessions ---
	sessions := session.NewStore(session.Options{
		Secret: cfg.SessionSecret,
		TTL:    cfg.SessionTTL,
		Secure: cfg.CookieSecure,
	}, metrics, logger)
	defer sessions.Close()

	views := handler.NewViews(cfg.SessionTTL)
	defer views.Close()

	// --- Services ---
	router := handler.NewRouter(handler.Deps{
		Sessions:   sessions,
		Views:      views,
		Auth:       service.NewAuthService(remote, metrics, logger),
		Sales:      service.NewSalesService(remote, remote, metrics, logger),
		Blueprints: service.NewBlueprintService(remote, remote, photos, metrics, logger),
		Users:      service.NewUserAdminService(remote, remote, metrics, logger),
		Dashboard:  service.NewDashboardService(ratesClient, cfg.RatesCodes, logger),
		Receipts:   service.NewReceiptService(remote, remote, pdf.NewReceiptRenderer(), logger),
		Metrics:    metrics,
		Logger:     logger,
	})

	// --- Server ---
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("server starting", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	// --- Graceful shutdown ---
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("server shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("server stopped with error", zap.Error(err))
		return
	}
	logger.Info("server stopped")
}
