package worker

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salarycalc/internal/amqp"
	"salarycalc/internal/core"
	"salarycalc/internal/export"
	"salarycalc/internal/log"
	"salarycalc/internal/services"
	"salarycalc/internal/sheets"
	"salarycalc/internal/sheets/memory"
)

func newTestWorker(t *testing.T, exporter sheets.TableExporter) *ExportWorker {
	t.Helper()
	ds, err := core.NewDataset(map[string]map[string][]core.SalaryEntry{
		"USA": {
			"Python": {
				{Value: 100, Category: "Junior", Metadata: map[string]string{"city": "NYC"}},
				{Value: 200, Category: "Senior"},
			},
		},
	})
	require.NoError(t, err)
	logger := log.New(log.Config{Output: &bytes.Buffer{}})
	return NewExportWorker(services.NewSalaryService(ds), exporter, logger)
}

func TestHandleExportMessage(t *testing.T) {
	store := memory.New()
	w := newTestWorker(t, store)
	msg := amqp.NewExportMessage(core.Filter{Country: "USA", Language: "Python"})

	require.NoError(t, w.HandleExportMessage(context.Background(), msg))

	tables := store.Tables()
	require.Len(t, tables, 1)
	assert.Equal(t, "USA - Python - All Experience Levels ("+msg.ID+")", tables[0].Title)
	assert.Equal(t, []string{"value", "category", "city"}, tables[0].Table.Header)
	assert.Equal(t, [][]string{{"100", "Junior", "NYC"}, {"200", "Senior", ""}}, tables[0].Table.Rows)
}

func TestHandleExportMessageRedelivered(t *testing.T) {
	store := memory.New()
	w := newTestWorker(t, store)
	msg := amqp.NewExportMessage(core.Filter{Country: "USA"})

	require.NoError(t, w.HandleExportMessage(context.Background(), msg))
	require.NoError(t, w.HandleExportMessage(context.Background(), msg))

	assert.Len(t, store.Tables(), 1)
}

func TestHandleExportMessageNoMatches(t *testing.T) {
	store := memory.New()
	w := newTestWorker(t, store)

	err := w.HandleExportMessage(context.Background(), amqp.NewExportMessage(core.Filter{Country: "Germany"}))
	require.NoError(t, err)
	assert.Empty(t, store.Tables())
}

type failingExporter struct{ err error }

func (f failingExporter) Export(context.Context, string, export.Table) (string, error) {
	return "", f.err
}

func TestHandleExportMessageExporterFailure(t *testing.T) {
	boom := errors.New("quota exceeded")
	w := newTestWorker(t, failingExporter{err: boom})

	err := w.HandleExportMessage(context.Background(), amqp.NewExportMessage(core.Filter{}))
	assert.ErrorIs(t, err, boom)
}

type fakeConsumer struct {
	messages []*amqp.ExportMessage
	results  []error
}

func (f *fakeConsumer) ConsumeExports(ctx context.Context, handler func(context.Context, *amqp.ExportMessage) error) error {
	for _, m := range f.messages {
		f.results = append(f.results, handler(ctx, m))
	}
	return context.Canceled
}

func TestRun(t *testing.T) {
	store := memory.New()
	w := newTestWorker(t, store)
	consumer := &fakeConsumer{messages: []*amqp.ExportMessage{
		amqp.NewExportMessage(core.Filter{Experience: "Senior"}),
		amqp.NewExportMessage(core.Filter{Experience: "Intern"}),
	}}

	err := w.Run(context.Background(), consumer)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []error{nil, nil}, consumer.results)
	assert.Len(t, store.Tables(), 1)
}
