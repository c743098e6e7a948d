package main

import (
	"context"
	"fmt"
	"log/slog"

	"salarycalc/internal/apiclient"
	"salarycalc/internal/backend"
	"salarycalc/internal/core"
	"salarycalc/internal/services"
)

// querier is what the query commands need. It is served either from local
// data or by a running server.
type querier interface {
	Countries(ctx context.Context) ([]string, error)
	Languages(ctx context.Context, country string) ([]string, error)
	ExperienceLevels(ctx context.Context, country, language string) ([]string, error)
	Entries(ctx context.Context, f core.Filter) ([]core.SalaryEntry, error)
	Stats(ctx context.Context, f core.Filter) (core.Stats, error)
	StatsByCategory(ctx context.Context, f core.Filter) ([]core.CategoryStats, error)
}

var (
	_ querier = (*apiclient.Client)(nil)
	_ querier = localQuerier{}
)

// localQuerier adapts SalaryService to querier.
type localQuerier struct {
	svc *services.SalaryService
}

func (q localQuerier) Countries(context.Context) ([]string, error) {
	return q.svc.Countries(), nil
}

func (q localQuerier) Languages(_ context.Context, country string) ([]string, error) {
	return q.svc.Languages(country), nil
}

func (q localQuerier) ExperienceLevels(_ context.Context, country, language string) ([]string, error) {
	return q.svc.ExperienceLevels(country, language), nil
}

func (q localQuerier) Entries(_ context.Context, f core.Filter) ([]core.SalaryEntry, error) {
	return q.svc.Entries(f), nil
}

func (q localQuerier) Stats(_ context.Context, f core.Filter) (core.Stats, error) {
	return q.svc.Stats(f)
}

func (q localQuerier) StatsByCategory(_ context.Context, f core.Filter) ([]core.CategoryStats, error) {
	return q.svc.StatsByCategory(f)
}

// localBackend picks the dataset backend from the --data and --db flags.
func localBackend(opts *rootOptions) backend.Config {
	if opts.dbPath != "" {
		return backend.Config{Type: backend.SQLiteBackend, SQLiteDBPath: opts.dbPath}
	}
	return backend.Config{Type: backend.JSONBackend, DataFile: opts.dataFile}
}

// loadLocal reads the whole dataset through the backend factory.
func loadLocal(ctx context.Context, config backend.Config) (*core.Dataset, error) {
	result, err := backend.NewFactory(slog.Default()).CreateLoader(ctx, config)
	if err != nil {
		return nil, err
	}
	if result.Cleanup != nil {
		defer result.Cleanup()
	}

	ds, err := result.Loader.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load dataset: %w", err)
	}
	return ds, nil
}

func newQuerier(ctx context.Context, opts *rootOptions) (querier, error) {
	if opts.apiURL != "" {
		slog.DebugContext(ctx, "Using remote API", "url", opts.apiURL)
		return apiclient.New(opts.apiURL, opts.timeout), nil
	}

	ds, err := loadLocal(ctx, localBackend(opts))
	if err != nil {
		return nil, err
	}
	return localQuerier{svc: services.NewSalaryService(ds)}, nil
}
