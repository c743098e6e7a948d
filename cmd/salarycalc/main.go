package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"golang.org/x/sync/errgroup"

	"salarycalc/internal/cli"
	apphttp "salarycalc/internal/http"
	"salarycalc/internal/log"
	"salarycalc/internal/services"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig(cli.SetupLogger(slog.LevelInfo))
	logger := cli.SetupLogger(cfg.SlogLevel())

	ctx := context.Background()
	ds := cli.MustLoadDataset(ctx, logger, cfg)
	defer func() {
		if ds.Cleanup != nil {
			if err := ds.Cleanup(); err != nil {
				logger.ErrorContext(ctx, "Failed to release dataset backend", log.FieldError, err)
			}
		}
	}()
	salaries := services.NewSalaryService(ds.Dataset)

	// Exports are optional: without a reachable broker the API answers 503.
	var publisher services.ExportPublisher
	queue, err := cli.ConnectExportQueue(ctx, logger, cfg)
	switch {
	case err != nil:
		logger.WarnContext(ctx, "Export queue unavailable, exports disabled", log.FieldError, err)
	case queue != nil:
		publisher = queue
		defer queue.Close()
	default:
		logger.InfoContext(ctx, "Exports disabled", "reason", cfg.ExportsDisabledReason())
	}
	exports := services.NewExportService(salaries, publisher, logger)

	srv := apphttp.NewServer(apphttp.Options{
		Addr:               ":" + cfg.Port,
		AllowedOrigins:     cfg.AllowedOrigins,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		HistogramBins:      cfg.HistogramBins,
		Logger:             logger,
		ReadyCheck:         ds.Ping,
	}, salaries, exports)

	runCtx, done := cli.GracefulShutdown(logger, cfg.ShutdownTimeout, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.ErrorContext(ctx, "Server shutdown error", log.FieldError, err)
		}
	})

	g, gctx := errgroup.WithContext(runCtx)
	g.Go(func() error {
		logger.InfoContext(gctx, "Starting salarycalc server",
			"port", cfg.Port,
			"backend", cfg.DataBackend,
			"exports_enabled", exports.Enabled())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen on :%s: %w", cfg.Port, err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.ErrorContext(ctx, "Server error", log.FieldError, err)
		_ = srv.Shutdown(ctx)
		os.Exit(1)
	}

	<-done
	logger.InfoContext(ctx, "Server stopped gracefully")
}
