package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"salarycalc/internal/backend"
	"salarycalc/internal/storage"
)

func newImportCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import",
		Short: "Copy the --data JSON file into the SQLite database given by --db",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.dbPath == "" {
				return fmt.Errorf("--db is required")
			}
			ctx := cmd.Context()

			ds, err := loadLocal(ctx, backend.Config{Type: backend.JSONBackend, DataFile: opts.dataFile})
			if err != nil {
				return err
			}

			repo, err := storage.NewSQLiteRepository(opts.dbPath)
			if err != nil {
				return err
			}
			defer repo.Close()

			if err := repo.ReplaceDataset(ctx, ds); err != nil {
				return fmt.Errorf("import dataset: %w", err)
			}
			count, err := repo.Count(ctx)
			if err != nil {
				return fmt.Errorf("count imported entries: %w", err)
			}
			slog.DebugContext(ctx, "Dataset imported", "db_path", opts.dbPath, "entries", count)

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Imported %d entries from %s into %s\n", count, opts.dataFile, opts.dbPath)
			return err
		},
	}
}
