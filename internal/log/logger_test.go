package log

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salarycalc/internal/core"
)

func newJSONLogger(buf *bytes.Buffer) *Logger {
	return New(Config{Level: slog.LevelDebug, Format: "json", Output: buf})
}

func decodeRecord(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	return rec
}

func TestLoggerStampsComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := newJSONLogger(&buf).WithComponent(ComponentStorage)

	logger.InfoContext(context.Background(), "Opened database", "path", "/tmp/x.db")

	rec := decodeRecord(t, &buf)
	assert.Equal(t, "Opened database", rec["msg"])
	assert.Equal(t, ComponentStorage, rec[FieldComponent])
	assert.Equal(t, "/tmp/x.db", rec["path"])
}

func TestLoggerLevelFilters(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelWarn, Format: "json", Output: &buf})

	logger.InfoContext(context.Background(), "hidden")
	assert.Zero(t, buf.Len())

	logger.WarnContext(context.Background(), "shown")
	assert.NotZero(t, buf.Len())
}

func TestMiddlewareAttachesRequestID(t *testing.T) {
	var buf bytes.Buffer
	base := newJSONLogger(&buf)

	handler := Middleware(base, func(*http.Request) string { return "req_abc" })(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			FromContext(r.Context()).InfoContext(r.Context(), "inside")
		}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/countries", nil))

	rec := decodeRecord(t, &buf)
	assert.Equal(t, "req_abc", rec[FieldRequestID])
}

func TestFromContextFallsBackToDefault(t *testing.T) {
	logger := FromContext(context.Background())
	require.NotNil(t, logger)
	assert.Equal(t, ComponentApp, logger.Component())
}

func TestStructuredLoggerEvents(t *testing.T) {
	t.Run("query", func(t *testing.T) {
		var buf bytes.Buffer
		sl := NewStructuredLogger(newJSONLogger(&buf))

		sl.LogQuery(context.Background(), OpStats, core.Filter{Country: "USA"}, 2, 3*time.Millisecond)

		rec := decodeRecord(t, &buf)
		assert.Equal(t, ComponentQuery, rec[FieldComponent])
		assert.Equal(t, "USA", rec[FieldCountry])
		assert.NotContains(t, rec, FieldLanguage)
		assert.EqualValues(t, 2, rec[FieldEntryCount])
	})

	t.Run("error", func(t *testing.T) {
		var buf bytes.Buffer
		sl := NewStructuredLogger(newJSONLogger(&buf))

		sl.LogError(context.Background(), "Export failed", errors.New("boom"), ComponentWorker, OpExport, nil)

		rec := decodeRecord(t, &buf)
		assert.Equal(t, "ERROR", rec["level"])
		assert.Equal(t, "boom", rec[FieldError])
		assert.Equal(t, ComponentWorker, rec[FieldComponent])
	})
}
