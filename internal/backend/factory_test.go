package backend

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salarycalc/internal/config"
	"salarycalc/internal/core"
	"salarycalc/internal/storage"
)

const sampleDocument = `{
  "USA": {
    "Python": {"entries": [
      {"value": 100, "category": "Junior", "metadata": {}},
      {"value": 200, "category": "Senior", "metadata": {}}
    ]}
  }
}`

func TestFromAppConfig(t *testing.T) {
	cfg, err := FromAppConfig(&config.Config{
		DataBackend:         "sqlite",
		SQLiteDBPath:        "/tmp/x.db",
		ExportTarget:        "google_sheets",
		GoogleSpreadsheetID: "sheet",
	})
	require.NoError(t, err)
	assert.Equal(t, SQLiteBackend, cfg.Type)
	assert.Equal(t, "/tmp/x.db", cfg.SQLiteDBPath)
	assert.Equal(t, "sheet", cfg.SpreadsheetID)
	assert.Equal(t, GoogleSheetsExporter, cfg.Exporter)

	_, err = FromAppConfig(&config.Config{DataBackend: "memory"})
	assert.Error(t, err)

	_, err = FromAppConfig(nil)
	assert.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{name: "json", config: Config{Type: JSONBackend, DataFile: "data.json"}},
		{name: "json without file", config: Config{Type: JSONBackend}, wantErr: true},
		{name: "sqlite", config: Config{Type: SQLiteBackend, SQLiteDBPath: "salary.db"}},
		{name: "sqlite without path", config: Config{Type: SQLiteBackend}, wantErr: true},
		{name: "unknown", config: Config{Type: "sheets"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
	assert.Equal(t, []string{"json", "sqlite"}, GetBackendTypeStrings())
}

func TestCreateLoaderJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calculatorData.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleDocument), 0o644))

	res, err := NewFactory(nil).CreateLoader(context.Background(), Config{Type: JSONBackend, DataFile: path})
	require.NoError(t, err)
	assert.Nil(t, res.Cleanup)

	ds, err := res.Loader.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, ds.Len())
}

func TestCreateLoaderSQLite(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "salary.db")

	repo, err := storage.NewSQLiteRepository(dbPath)
	require.NoError(t, err)
	ds, err := core.NewDataset(map[string]map[string][]core.SalaryEntry{
		"Germany": {"Rust": {{Value: 90, Category: "Lead"}}},
	})
	require.NoError(t, err)
	require.NoError(t, repo.ReplaceDataset(context.Background(), ds))
	require.NoError(t, repo.Close())

	res, err := NewFactory(nil).CreateLoader(context.Background(), Config{Type: SQLiteBackend, SQLiteDBPath: dbPath})
	require.NoError(t, err)
	require.NotNil(t, res.Cleanup)
	defer res.Cleanup()

	loaded, err := res.Loader.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Germany"}, loaded.Countries())
}

func TestCreateLoaderInvalid(t *testing.T) {
	_, err := NewFactory(nil).CreateLoader(context.Background(), Config{Type: "csv"})
	assert.Error(t, err)
}

func TestCreateExporter(t *testing.T) {
	t.Run("memory when asked for", func(t *testing.T) {
		res, err := NewFactory(nil).CreateExporter(context.Background(), Config{Exporter: MemoryExporter})
		require.NoError(t, err)
		assert.Equal(t, MemoryExporter, res.Kind)
		assert.NotNil(t, res.Exporter)
	})

	t.Run("sheets without spreadsheet", func(t *testing.T) {
		for _, kind := range []ExporterKind{"", GoogleSheetsExporter} {
			res, err := NewFactory(nil).CreateExporter(context.Background(), Config{Exporter: kind})
			require.Error(t, err)
			assert.Nil(t, res)
			assert.Contains(t, err.Error(), "spreadsheet ID is required")
		}
	})

	t.Run("unknown target", func(t *testing.T) {
		_, err := NewFactory(nil).CreateExporter(context.Background(), Config{Exporter: "dropbox"})
		assert.ErrorContains(t, err, "unsupported export target")
	})

	t.Run("spreadsheet without credentials", func(t *testing.T) {
		_, err := NewFactory(nil).CreateExporter(context.Background(), Config{SpreadsheetID: "sheet"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "missing service account credentials")
	})
}
