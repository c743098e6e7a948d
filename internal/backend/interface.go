package backend

import (
	"context"

	"salarycalc/internal/sheets"
	"salarycalc/internal/source"
)

// CleanupFunc releases resources held by a created component.
type CleanupFunc func() error

// LoaderResult contains the dataset loader and an optional cleanup function.
type LoaderResult struct {
	Loader  source.DatasetLoader
	Cleanup CleanupFunc
}

// ExporterResult reports which exporter was chosen.
type ExporterResult struct {
	Exporter sheets.TableExporter
	Kind     ExporterKind
}

// Factory creates the pluggable pieces selected by configuration.
type Factory interface {
	CreateLoader(ctx context.Context, config Config) (*LoaderResult, error)
	CreateExporter(ctx context.Context, config Config) (*ExporterResult, error)
}

type Config struct {
	Type BackendType

	// json
	DataFile string

	// sqlite
	SQLiteDBPath string

	// Export target. GoogleSheetsExporter needs SpreadsheetID.
	Exporter           ExporterKind
	SpreadsheetID      string
	ServiceAccountJSON string
	ServiceAccountFile string
}

// BackendType names where the dataset is read from.
type BackendType string

const (
	JSONBackend   BackendType = "json"
	SQLiteBackend BackendType = "sqlite"
)

func (bt BackendType) String() string {
	return string(bt)
}

func (bt BackendType) IsValid() bool {
	switch bt {
	case JSONBackend, SQLiteBackend:
		return true
	default:
		return false
	}
}

type ExporterKind string

const (
	GoogleSheetsExporter ExporterKind = "google_sheets"
	MemoryExporter       ExporterKind = "memory"
)
