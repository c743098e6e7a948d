package main

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"golang.org/x/sync/errgroup"

	"salarycalc/internal/backend"
	"salarycalc/internal/cli"
	"salarycalc/internal/log"
	"salarycalc/internal/services"
	"salarycalc/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig(cli.SetupLogger(slog.LevelInfo))
	logger := cli.SetupLogger(cfg.SlogLevel()).WithComponent(log.ComponentWorker)

	ctx := context.Background()
	if !cfg.ExportsEnabled() {
		logger.ErrorContext(ctx, "Export worker has nothing to do", "reason", cfg.ExportsDisabledReason())
		os.Exit(1)
	}

	ds := cli.MustLoadDataset(ctx, logger, cfg)
	defer func() {
		if ds.Cleanup != nil {
			_ = ds.Cleanup()
		}
	}()
	salaries := services.NewSalaryService(ds.Dataset)

	exporter, err := backend.NewFactory(logger.WithComponent(log.ComponentSheets).Logger).CreateExporter(ctx, ds.Backend)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to initialize exporter", log.FieldError, err)
		os.Exit(1)
	}

	queue, err := cli.ConnectExportQueue(ctx, logger, cfg)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to connect to export queue", log.FieldError, err)
		os.Exit(1)
	}
	defer queue.Close()

	exportWorker := worker.NewExportWorker(salaries, exporter.Exporter, logger)
	runCtx, done := cli.GracefulShutdown(logger, cfg.ShutdownTimeout, nil)

	g, gctx := errgroup.WithContext(runCtx)
	g.Go(func() error {
		logger.InfoContext(gctx, "Starting export worker",
			"queue", cfg.AMQPQueue,
			"exporter", exporter.Kind)
		return exportWorker.Run(gctx, queue)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.ErrorContext(ctx, "Export worker stopped", log.FieldError, err)
		os.Exit(1)
	}

	<-done
	logger.InfoContext(ctx, "Export worker stopped gracefully")
}
