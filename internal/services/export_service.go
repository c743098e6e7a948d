package services

import (
	"context"
	"errors"
	"fmt"

	"salarycalc/internal/amqp"
	"salarycalc/internal/core"
	"salarycalc/internal/log"
)

// ErrExportDisabled is returned when no export queue is configured.
var ErrExportDisabled = errors.New("exports are disabled: no export queue or target configured")

// ExportPublisher queues export requests. *amqp.Client implements it.
type ExportPublisher interface {
	PublishExport(ctx context.Context, msg *amqp.ExportMessage) error
}

// ExportService validates export requests against the dataset and hands
// them to the queue. The actual export happens in the worker.
type ExportService struct {
	salaries  *SalaryService
	publisher ExportPublisher
	events    *log.StructuredLogger
}

// NewExportService accepts a nil publisher; every request then fails with
// ErrExportDisabled.
func NewExportService(salaries *SalaryService, publisher ExportPublisher, logger *log.Logger) *ExportService {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &ExportService{
		salaries:  salaries,
		publisher: publisher,
		events:    log.NewStructuredLogger(logger),
	}
}

func (s *ExportService) Enabled() bool {
	return s.publisher != nil
}

// RequestExport queues an export of the entries matching f and returns the
// export id.
func (s *ExportService) RequestExport(ctx context.Context, f core.Filter) (string, error) {
	if s.publisher == nil {
		return "", ErrExportDisabled
	}

	matched := len(s.salaries.Entries(f))
	if matched == 0 {
		return "", core.ErrEmptyResult
	}

	msg := amqp.NewExportMessage(f)
	if err := s.publisher.PublishExport(ctx, msg); err != nil {
		return "", fmt.Errorf("queue export: %w", err)
	}

	s.events.LogExportQueued(ctx, msg.ID, f, matched)
	return msg.ID, nil
}
