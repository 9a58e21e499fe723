// Command fakeapi serves an in-memory copy of the shop's remote API for
// local development.
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
	"github.com/verona-marmoleria/backoffice-bff-go/internal/fakeapi"
	"github.com/verona-marmoleria/backoffice-bff-go/internal/infra/observability"

	"go.uber.org/zap"
)

func main() {
	_ = config.LoadDotEnv(".env")

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "invalid configuration:", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	fake, err := fakeapi.New(fakeapi.Options{
		JWTSecret:     cfg.FakeAPIJWTSecret,
		TokenTTL:      cfg.FakeAPITokenTTL,
		AdminPassword: cfg.FakeAPIAdminPassword,
	}, logger)
	if err != nil {
		logger.Fatal("failed to seed fake api", zap.Error(err))
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.FakeAPIPort),
		Handler:           fake.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("fake api starting", zap.Int("port", cfg.FakeAPIPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("fake api failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("fake api forced shutdown", zap.Error(err))
	}
	logger.Info("fake api stopped")
}
