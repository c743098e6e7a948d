package jsonfile

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salarycalc/internal/source"
)

const usaPython = `{
  "USA": {
    "Python": {
      "entries": [
        {"value": 100, "category": "Junior", "metadata": {"company_size": "10-50"}},
        {"value": 200, "category": "Senior", "metadata": {}}
      ]
    }
  }
}`

func newValidator(t *testing.T) *source.Validator {
	t.Helper()
	v, err := source.NewValidator()
	require.NoError(t, err)
	return v
}

func TestDecode(t *testing.T) {
	ds, err := Decode(strings.NewReader(usaPython), newValidator(t))
	require.NoError(t, err)

	assert.Equal(t, []string{"USA"}, ds.Countries())
	entries, ok := ds.Entries("USA", "Python")
	require.True(t, ok)
	require.Len(t, entries, 2)
	assert.Equal(t, 100, entries[0].Value)
	assert.Equal(t, "Junior", entries[0].Category)
	assert.Equal(t, "10-50", entries[0].Metadata["company_size"])
}

func TestDecodeMissingMetadata(t *testing.T) {
	doc := `{"USA": {"Go": {"entries": [{"value": 5, "category": "Lead"}]}}}`
	ds, err := Decode(strings.NewReader(doc), newValidator(t))
	require.NoError(t, err)

	entries, _ := ds.Entries("USA", "Go")
	require.Len(t, entries, 1)
	assert.Empty(t, entries[0].Metadata)
}

func TestDecodeEmptyEntriesList(t *testing.T) {
	doc := `{"USA": {"Go": {"entries": []}}}`
	ds, err := Decode(strings.NewReader(doc), newValidator(t))
	require.NoError(t, err)
	assert.Equal(t, 0, ds.Len())
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantMsg string
	}{
		{name: "invalid json", doc: `{"USA":`, wantMsg: "decode json"},
		{name: "top level array", doc: `[]`, wantMsg: "decode json"},
		{name: "top level null", doc: `null`, wantMsg: "top level must be an object"},
		{name: "null languages", doc: `{"USA": null}`, wantMsg: "USA: languages must be an object"},
		{name: "missing entries", doc: `{"USA": {"Go": {}}}`, wantMsg: "USA/Go"},
		{name: "missing value", doc: `{"USA": {"Go": {"entries": [{"category": "A"}]}}}`, wantMsg: "entries[0].value"},
		{name: "negative value", doc: `{"USA": {"Go": {"entries": [{"value": -1, "category": "A"}]}}}`, wantMsg: "entries[0].value"},
		{name: "fractional value", doc: `{"USA": {"Go": {"entries": [{"value": 1.5, "category": "A"}]}}}`, wantMsg: "decode json"},
		{name: "empty category", doc: `{"USA": {"Go": {"entries": [{"value": 1, "category": ""}]}}}`, wantMsg: "entries[0].category"},
		{name: "non string metadata", doc: `{"USA": {"Go": {"entries": [{"value": 1, "category": "A", "metadata": {"k": 1}}]}}}`, wantMsg: "decode json"},
		{name: "trailing garbage", doc: usaPython + ` trailing garbage`, wantMsg: "decode json"},
		{name: "concatenated documents", doc: `{"USA": {"Go": {"entries": []}}}{"Atlantis": {}}`, wantMsg: "extra data"},
		{name: "empty country key", doc: `{"": {"Go": {"entries": []}}}`, wantMsg: "empty country or language key"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.doc), newValidator(t))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestDecodeAllowsTrailingWhitespace(t *testing.T) {
	ds, err := Decode(strings.NewReader(usaPython+"\n\n"), newValidator(t))
	require.NoError(t, err)
	assert.Equal(t, []string{"USA"}, ds.Countries())
}

func TestDecodeReportsValidationError(t *testing.T) {
	doc := `{"USA": {"Go": {"entries": [{"value": 1, "category": "A"}, {"value": 2}]}}}`
	_, err := Decode(strings.NewReader(doc), newValidator(t))

	var vErr *source.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "USA/Go", vErr.Path)
	require.Len(t, vErr.Problems, 1)
	assert.Contains(t, vErr.Problems[0], "entries[1].category")
}

func TestLoaderLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calculatorData.json")
	require.NoError(t, os.WriteFile(path, []byte(usaPython), 0o644))

	loader, err := New(path)
	require.NoError(t, err)

	ds, err := loader.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, ds.Len())
}

func TestLoaderMissingFile(t *testing.T) {
	loader, err := New(filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, err)

	_, err = loader.Load(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
