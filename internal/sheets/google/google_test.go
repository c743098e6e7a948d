package google

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	goption "google.golang.org/api/option"

	"salarycalc/internal/export"
)

func TestNew_MissingSpreadsheetID(t *testing.T) {
	_, err := New(context.Background(), Options{})
	require.Error(t, err)
	assert.Equal(t, "missing GOOGLE_SPREADSHEET_ID", err.Error())
}

func TestNew_MissingCredentials(t *testing.T) {
	_, err := New(context.Background(), Options{SpreadsheetID: "sheet"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing service account credentials")
}

func TestNew_UnreadableCredentialsFile(t *testing.T) {
	_, err := New(context.Background(), Options{
		SpreadsheetID:      "sheet",
		ServiceAccountFile: filepath.Join(t.TempDir(), "missing.json"),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestSheetTitleAndRange(t *testing.T) {
	assert.Equal(t, "USA - Go", sheetTitle("  USA - Go "))
	assert.Len(t, []rune(sheetTitle(strings.Repeat("é", 150))), export.MaxTitleLen)
	assert.Equal(t, "'USA - Go'!A1", a1Range("USA - Go"))
	assert.Equal(t, "'O''Reilly'!A1", a1Range("O'Reilly"))
}

type recordedCall struct {
	method string
	path   string
	query  string
	body   map[string]any
}

// fakeSheets is a stateful stand-in for the Sheets API: it remembers added
// tabs, rejects duplicate titles and can fail the first value writes.
type fakeSheets struct {
	mu          sync.Mutex
	titles      []string
	calls       []recordedCall
	failWrites  int
	failMessage string
}

func (f *fakeSheets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	raw, _ := io.ReadAll(r.Body)
	var body map[string]any
	_ = json.Unmarshal(raw, &body)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, recordedCall{method: r.Method, path: r.URL.Path, query: r.URL.RawQuery, body: body})

	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.Method == http.MethodGet:
		sheets := make([]map[string]any, 0, len(f.titles))
		for _, title := range f.titles {
			sheets = append(sheets, map[string]any{"properties": map[string]any{"title": title}})
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"spreadsheetId": "sheet123", "sheets": sheets})

	case strings.HasSuffix(r.URL.Path, ":batchUpdate"):
		title := addSheetTitle(body)
		if slices.Contains(f.titles, title) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = io.WriteString(w, `{"error":{"code":400,"message":"A sheet with the name already exists"}}`)
			return
		}
		f.titles = append(f.titles, title)
		_, _ = io.WriteString(w, `{"spreadsheetId":"sheet123","replies":[{"addSheet":{"properties":{"sheetId":7}}}]}`)

	case strings.Contains(r.URL.Path, "/values/"):
		if f.failWrites > 0 {
			f.failWrites--
			w.WriteHeader(http.StatusForbidden)
			_, _ = io.WriteString(w, `{"error":{"code":403,"message":"`+f.failMessage+`"}}`)
			return
		}
		_, _ = io.WriteString(w, `{"spreadsheetId":"sheet123","updatedRange":"'USA - Go'!A1:B3"}`)

	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (f *fakeSheets) recorded() []recordedCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.calls)
}

func addSheetTitle(body map[string]any) string {
	requests, _ := body["requests"].([]any)
	if len(requests) == 0 {
		return ""
	}
	req, _ := requests[0].(map[string]any)
	add, _ := req["addSheet"].(map[string]any)
	props, _ := add["properties"].(map[string]any)
	title, _ := props["title"].(string)
	return title
}

func newTestClient(t *testing.T, fake *fakeSheets) *Client {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	client, err := New(context.Background(), Options{SpreadsheetID: "sheet123"},
		goption.WithEndpoint(srv.URL+"/"),
		goption.WithoutAuthentication(),
		goption.WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	return client
}

var goTable = export.Table{
	Header: []string{"value", "category"},
	Rows:   [][]string{{"180", "Senior"}, {"150", "Middle"}},
}

func TestClient_Export(t *testing.T) {
	fake := &fakeSheets{}
	client := newTestClient(t, fake)

	ref, err := client.Export(context.Background(), "USA - Go", goTable)
	require.NoError(t, err)
	assert.Equal(t, "'USA - Go'!A1:B3", ref)

	calls := fake.recorded()
	require.Len(t, calls, 3)

	lookup := calls[0]
	assert.Equal(t, http.MethodGet, lookup.method)
	assert.True(t, strings.HasSuffix(lookup.path, "/spreadsheets/sheet123"), lookup.path)

	addSheet := calls[1]
	assert.Equal(t, http.MethodPost, addSheet.method)
	assert.True(t, strings.HasSuffix(addSheet.path, "/spreadsheets/sheet123:batchUpdate"), addSheet.path)
	assert.Equal(t, "USA - Go", addSheetTitle(addSheet.body))

	update := calls[2]
	assert.Equal(t, http.MethodPut, update.method)
	assert.Contains(t, update.path, "'USA - Go'!A1")
	assert.Contains(t, update.query, "valueInputOption=RAW")
	assert.Equal(t, []any{
		[]any{"value", "category"},
		[]any{float64(180), "Senior"},
		[]any{float64(150), "Middle"},
	}, update.body["values"])
}

func TestClient_ExportRetryAfterFailedWrite(t *testing.T) {
	fake := &fakeSheets{failWrites: 1, failMessage: "quota"}
	client := newTestClient(t, fake)
	ctx := context.Background()
	title := "USA - Go (exp_1)"

	_, err := client.Export(ctx, title, goTable)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota")

	// A redelivery of the same export reuses the tab added by the first attempt.
	for range 2 {
		_, err = client.Export(ctx, title, goTable)
		require.NoError(t, err)
	}

	assert.Equal(t, []string{title}, fake.titles)
	adds := 0
	for _, c := range fake.recorded() {
		if strings.HasSuffix(c.path, ":batchUpdate") {
			adds++
		}
	}
	assert.Equal(t, 1, adds)
}

func TestClient_ExportLookupFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = io.WriteString(w, `{"error":{"code":403,"message":"permission denied"}}`)
	}))
	t.Cleanup(srv.Close)
	client, err := New(context.Background(), Options{SpreadsheetID: "sheet123"},
		goption.WithEndpoint(srv.URL+"/"),
		goption.WithoutAuthentication(),
		goption.WithHTTPClient(srv.Client()))
	require.NoError(t, err)

	_, err = client.Export(context.Background(), "USA - Go", goTable)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list sheets")
}

func TestClient_ExportWithoutService(t *testing.T) {
	c := &Client{spreadsheetID: "sheet"}
	_, err := c.Export(context.Background(), "title", export.Table{})
	assert.EqualError(t, err, "sheets service not initialized")
}
