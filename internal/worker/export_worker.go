package worker

import (
	"context"
	"fmt"
	"log/slog"

	"salarycalc/internal/amqp"
	"salarycalc/internal/export"
	"salarycalc/internal/log"
	"salarycalc/internal/services"
	"salarycalc/internal/sheets"
)

// ExportConsumer delivers export requests to a handler until ctx ends.
// *amqp.Client implements it.
type ExportConsumer interface {
	ConsumeExports(ctx context.Context, handler func(context.Context, *amqp.ExportMessage) error) error
}

// ExportWorker turns queued export requests into exported tables.
type ExportWorker struct {
	salaries *services.SalaryService
	exporter sheets.TableExporter
	events   *log.StructuredLogger
}

func NewExportWorker(salaries *services.SalaryService, exporter sheets.TableExporter, logger *log.Logger) *ExportWorker {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &ExportWorker{
		salaries: salaries,
		exporter: exporter,
		events:   log.NewStructuredLogger(logger.WithComponent(log.ComponentWorker)),
	}
}

// HandleExportMessage re-runs the query for the message filter and exports
// the result. A filter that no longer matches anything is acknowledged
// without exporting; an exporter failure is returned so the message is
// requeued.
func (w *ExportWorker) HandleExportMessage(ctx context.Context, msg *amqp.ExportMessage) error {
	filter := msg.Filter()
	slog.InfoContext(ctx, "Processing export message",
		"export_id", msg.ID,
		"country", filter.Country,
		"language", filter.Language,
		"experience", filter.Experience)

	entries := w.salaries.Entries(filter)
	if len(entries) == 0 {
		slog.WarnContext(ctx, "Export matched no entries, skipping", "export_id", msg.ID)
		return nil
	}

	table := export.BuildTable(entries)
	ref, err := w.exporter.Export(ctx, export.Title(filter, msg.ID), table)
	if err != nil {
		w.events.LogError(ctx, "Export failed", err, log.ComponentWorker, log.OpExport,
			log.NewFields().WithFilter(filter))
		return fmt.Errorf("export %s: %w", msg.ID, err)
	}

	w.events.LogExportCompleted(ctx, msg.ID, ref, len(table.Rows))
	return nil
}

// Run consumes export messages until ctx is cancelled.
func (w *ExportWorker) Run(ctx context.Context, consumer ExportConsumer) error {
	return consumer.ConsumeExports(ctx, w.HandleExportMessage)
}
