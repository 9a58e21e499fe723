// Command veronactl is a terminal client for the back office.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"

	"github.com/verona-marmoleria/backoffice-bff-go/internal/cli"
	"github.com/verona-marmoleria/backoffice-bff-go/internal/config"
	"github.com/verona-marmoleria/backoffice-bff-go/internal/infra/api"
	"github.com/verona-marmoleria/backoffice-bff-go/internal/infra/observability"
	"github.com/verona-marmoleria/backoffice-bff-go/internal/infra/resilience"
	"github.com/verona-marmoleria/backoffice-bff-go/internal/service"
)

func main() {
	_ = config.LoadDotEnv(".env")

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "invalid configuration:", err)
		os.Exit(1)
	}

	// Terminal output belongs to the prompt; only warnings reach the log.
	logger := observability.NewLogger("warn")
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	metrics := observability.NewMetrics()
	remote := api.NewClient(&http.Client{Timeout: cfg.HTTPTimeout}, cfg.APIBaseURL, resilience.Config{
		MaxRetries:     cfg.MaxRetries,
		InitialBackoff: cfg.InitialBackoff,
		MaxConcurrency: cfg.MaxConcurrency,
	}, logger, metrics)

	app := cli.NewApp(cli.Deps{
		Auth:       service.NewAuthService(remote, metrics, logger),
		Sales:      service.NewSalesService(remote, remote, metrics, logger),
		Blueprints: service.NewBlueprintService(remote, remote, nil, metrics, logger),
		Logger:     logger,
	}, os.Stdin, os.Stdout, int(os.Stdin.Fd()))

	if err := app.Run(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
