package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"

	"salarycalc/internal/core"
	"salarycalc/internal/source"

	_ "modernc.org/sqlite"
)

// SQLiteRepository mirrors a Dataset in SQLite. The server only reads from it;
// ReplaceDataset is used by the offline import.
type SQLiteRepository struct {
	db *sqlx.DB
}

var _ source.DatasetLoader = (*SQLiteRepository)(nil)

type blockRow struct {
	Country  string `db:"country"`
	Language string `db:"language"`
}

type entryRow struct {
	Country  string `db:"country"`
	Language string `db:"language"`
	Position int    `db:"position"`
	Value    int    `db:"value"`
	Category string `db:"category"`
	Metadata string `db:"metadata"`
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	sqlDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// modernc registers as "sqlite"; sqlx needs the sqlite3 name to pick '?' binds.
	db := sqlx.NewDb(sqlDB, "sqlite3")

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping checks the database connection.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// ReplaceDataset removes every stored entry and writes ds in one transaction.
func (r *SQLiteRepository) ReplaceDataset(ctx context.Context, ds *core.Dataset) error {
	var (
		blocks  []blockRow
		entries []entryRow
		encErr  error
	)
	ds.Walk(func(country, language string, list []core.SalaryEntry) {
		blocks = append(blocks, blockRow{Country: country, Language: language})
		for i, e := range list {
			meta, err := json.Marshal(e.Metadata)
			if err != nil && encErr == nil {
				encErr = fmt.Errorf("encode metadata %s/%s/%d: %w", country, language, i, err)
			}
			entries = append(entries, entryRow{
				Country:  country,
				Language: language,
				Position: i,
				Value:    e.Value,
				Category: e.Category,
				Metadata: string(meta),
			})
		}
	})
	if encErr != nil {
		return encErr
	}

	err := runInTx(ctx, r.db, func(ctx context.Context, tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM salary_entries`); err != nil {
			return fmt.Errorf("clear entries: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM salary_blocks`); err != nil {
			return fmt.Errorf("clear blocks: %w", err)
		}
		for _, b := range blocks {
			if _, err := tx.NamedExecContext(ctx,
				`INSERT INTO salary_blocks (country, language) VALUES (:country, :language)`, b); err != nil {
				return fmt.Errorf("insert block %s/%s: %w", b.Country, b.Language, err)
			}
		}
		for _, e := range entries {
			if _, err := tx.NamedExecContext(ctx,
				`INSERT INTO salary_entries (country, language, position, value, category, metadata)
				 VALUES (:country, :language, :position, :value, :category, :metadata)`, e); err != nil {
				return fmt.Errorf("insert entry %s/%s/%d: %w", e.Country, e.Language, e.Position, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "Replaced salary dataset in SQLite",
		"blocks", len(blocks),
		"entry_count", len(entries))
	return nil
}

// Load implements source.DatasetLoader.
func (r *SQLiteRepository) Load(ctx context.Context) (*core.Dataset, error) {
	var blocks []blockRow
	if err := r.db.SelectContext(ctx, &blocks, `SELECT country, language FROM salary_blocks`); err != nil {
		return nil, fmt.Errorf("select blocks: %w", err)
	}

	var rows []entryRow
	if err := r.db.SelectContext(ctx, &rows,
		`SELECT country, language, position, value, category, metadata
		 FROM salary_entries
		 ORDER BY country, language, position`); err != nil {
		return nil, fmt.Errorf("select entries: %w", err)
	}

	raw := make(map[string]map[string][]core.SalaryEntry)
	for _, b := range blocks {
		if raw[b.Country] == nil {
			raw[b.Country] = make(map[string][]core.SalaryEntry)
		}
		raw[b.Country][b.Language] = []core.SalaryEntry{}
	}
	for _, row := range rows {
		var meta map[string]string
		if err := json.Unmarshal([]byte(row.Metadata), &meta); err != nil {
			return nil, fmt.Errorf("decode metadata %s/%s/%d: %w", row.Country, row.Language, row.Position, err)
		}
		if raw[row.Country] == nil {
			raw[row.Country] = make(map[string][]core.SalaryEntry)
		}
		raw[row.Country][row.Language] = append(raw[row.Country][row.Language], core.SalaryEntry{
			Value:    row.Value,
			Category: row.Category,
			Metadata: meta,
		})
	}

	ds, err := core.NewDataset(raw)
	if err != nil {
		return nil, fmt.Errorf("build dataset: %w", err)
	}

	slog.InfoContext(ctx, "Loaded salary dataset from SQLite",
		"countries", len(ds.Countries()),
		"entry_count", ds.Len())
	return ds, nil
}

// Count returns the number of stored entries.
func (r *SQLiteRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM salary_entries`); err != nil {
		return 0, fmt.Errorf("count entries: %w", err)
	}
	return n, nil
}

func runInTx(ctx context.Context, db *sqlx.DB, fn func(ctx context.Context, tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(ctx, tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback transaction: %w (original error: %v)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
