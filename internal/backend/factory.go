package backend

import (
	"context"
	"fmt"
	"log/slog"

	gsheet "salarycalc/internal/sheets/google"
	"salarycalc/internal/sheets/memory"
	"salarycalc/internal/source/jsonfile"
	"salarycalc/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{logger: logger}
}

// CreateLoader returns the dataset loader for config.Type.
func (f *DefaultFactory) CreateLoader(ctx context.Context, config Config) (*LoaderResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case JSONBackend:
		loader, err := jsonfile.New(config.DataFile)
		if err != nil {
			return nil, fmt.Errorf("create json loader: %w", err)
		}
		f.logger.InfoContext(ctx, "Initialized JSON dataset backend", "path", config.DataFile)
		return &LoaderResult{Loader: loader}, nil

	case SQLiteBackend:
		repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
		}
		f.logger.InfoContext(ctx, "Initialized SQLite dataset backend", "db_path", config.SQLiteDBPath)
		return &LoaderResult{Loader: repo, Cleanup: repo.Close}, nil

	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

// CreateExporter builds the exporter named by config.Exporter. An empty kind
// means Google Sheets. The memory exporter is only used when asked for.
func (f *DefaultFactory) CreateExporter(ctx context.Context, config Config) (*ExporterResult, error) {
	switch config.Exporter {
	case MemoryExporter:
		f.logger.WarnContext(ctx, "Using the memory export target, exported tables are discarded when the worker exits")
		return &ExporterResult{Exporter: memory.New(), Kind: MemoryExporter}, nil
	case GoogleSheetsExporter, "":
	default:
		return nil, fmt.Errorf("unsupported export target: %s", config.Exporter)
	}

	if config.SpreadsheetID == "" {
		return nil, fmt.Errorf("spreadsheet ID is required for the %s export target", GoogleSheetsExporter)
	}

	client, err := gsheet.New(ctx, gsheet.Options{
		SpreadsheetID:      config.SpreadsheetID,
		ServiceAccountJSON: config.ServiceAccountJSON,
		ServiceAccountFile: config.ServiceAccountFile,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
	}
	f.logger.InfoContext(ctx, "Initialized Google Sheets exporter", "spreadsheet_id", config.SpreadsheetID)
	return &ExporterResult{Exporter: client, Kind: GoogleSheetsExporter}, nil
}
