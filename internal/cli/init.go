// Package cli provides common CLI initialization utilities.
// This package consolidates repeated initialization patterns across
// cmd/salarycalc, cmd/salarycalc-worker and cmd/salaryctl.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"salarycalc/internal/amqp"
	"salarycalc/internal/backend"
	"salarycalc/internal/config"
	"salarycalc/internal/core"
	"salarycalc/internal/log"
)

// SetupLogger initializes structured logging at level and sets it as the
// default logger.
func SetupLogger(level slog.Level) *log.Logger {
	cfg := log.DefaultConfig()
	cfg.Level = level
	logger := log.New(cfg)
	log.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it.
// Returns the config or exits the process on validation failure.
func LoadAndValidateConfig(logger *log.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.ErrorContext(context.Background(), "Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}
	return cfg
}

// Dataset is a loaded dataset plus whatever the backend needs released on
// exit.
type Dataset struct {
	*core.Dataset
	Backend backend.Config
	Cleanup backend.CleanupFunc

	// Ping checks the backing store, when it has one.
	Ping func(ctx context.Context) error
}

// LoadDataset loads the dataset from the configured backend.
func LoadDataset(ctx context.Context, logger *log.Logger, cfg *config.Config) (*Dataset, error) {
	backendConfig, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}

	factory := backend.NewFactory(logger.WithComponent(log.ComponentStorage).Logger)
	result, err := factory.CreateLoader(ctx, backendConfig)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	ds, err := result.Loader.Load(ctx)
	if err != nil {
		if result.Cleanup != nil {
			_ = result.Cleanup()
		}
		return nil, fmt.Errorf("load dataset: %w", err)
	}
	logger.DebugContext(ctx, "Dataset loaded",
		"backend", backendConfig.Type,
		"countries", len(ds.Countries()),
		log.FieldEntryCount, ds.Len(),
		log.FieldDuration, time.Since(start).Milliseconds())

	out := &Dataset{Dataset: ds, Backend: backendConfig, Cleanup: result.Cleanup}
	if pinger, ok := result.Loader.(interface{ Ping(context.Context) error }); ok {
		out.Ping = pinger.Ping
	}
	return out, nil
}

// MustLoadDataset is LoadDataset that exits the process on failure.
func MustLoadDataset(ctx context.Context, logger *log.Logger, cfg *config.Config) *Dataset {
	ds, err := LoadDataset(ctx, logger, cfg)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to load dataset",
			log.FieldError, err,
			"backend", cfg.DataBackend)
		os.Exit(1)
	}
	return ds
}

// ConnectExportQueue dials the AMQP broker. It returns nil, nil when no
// broker is configured.
func ConnectExportQueue(ctx context.Context, logger *log.Logger, cfg *config.Config) (*amqp.Client, error) {
	if !cfg.ExportsEnabled() {
		return nil, nil
	}
	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		return nil, fmt.Errorf("connect export queue: %w", err)
	}
	logger.WithComponent(log.ComponentAMQP).InfoContext(ctx, "Connected to export queue",
		"exchange", cfg.AMQPExchange,
		"queue", cfg.AMQPQueue)
	return client, nil
}

// GracefulShutdown sets up signal handling for graceful shutdown.
// Returns a context that will be cancelled on shutdown signals,
// and a channel that signals when shutdown is complete.
func GracefulShutdown(logger *log.Logger, timeout time.Duration, cleanup func(ctx context.Context)) (context.Context, <-chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.InfoContext(ctx, "Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
		defer shutdownCancel()

		if cleanup != nil {
			cleanup(shutdownCtx)
		}
		cancel()

		if shutdownCtx.Err() != nil {
			logger.WarnContext(ctx, "Shutdown timeout reached")
		} else {
			logger.InfoContext(ctx, "Shutdown complete")
		}
		close(done)
	}()

	return ctx, done
}
