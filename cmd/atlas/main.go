package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/mapfolk/language-atlas/internal/adapter/fetch"
	"github.com/mapfolk/language-atlas/internal/adapter/httpapi"
	"github.com/mapfolk/language-atlas/internal/config"
	"github.com/mapfolk/language-atlas/internal/dataset"
	"github.com/mapfolk/language-atlas/internal/observability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	client := fetch.NewClient(
		cfg.GeometryURL, cfg.LanguageURL, cfg.PopulationURL,
		cfg.FetchTimeout, metrics, logger,
	)
	loader := dataset.New(client, logger, metrics)

	srv := httpapi.NewServer(cfg.HTTPAddr, loader, loader, metrics, cfg.QueryCacheSize, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server; /healthz answers during the load, /readyz and the
	// query API only after it succeeds.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// One-shot startup load: all three sources or nothing.
	if _, err := loader.Load(ctx); err != nil {
		logger.Error("dataset load failed", "error", err)
		stop()
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
}
