// Package jsonfile loads the survey Dataset from the calculator JSON document:
//
//	{"<country>": {"<language>": {"entries": [{"value": 1, "category": "c", "metadata": {}}]}}}
package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"salarycalc/internal/core"
	"salarycalc/internal/source"
)

type (
	document map[string]map[string]languageBlock

	languageBlock struct {
		Entries []entryRecord `json:"entries" validate:"required,dive"`
	}

	entryRecord struct {
		Value    *int              `json:"value" validate:"required,gte=0"`
		Category string            `json:"category" validate:"required"`
		Metadata map[string]string `json:"metadata"`
	}
)

// Loader reads the Dataset from a file on disk.
type Loader struct {
	path      string
	validator *source.Validator
}

var _ source.DatasetLoader = (*Loader)(nil)

func New(path string) (*Loader, error) {
	v, err := source.NewValidator()
	if err != nil {
		return nil, fmt.Errorf("create validator: %w", err)
	}
	return &Loader{path: path, validator: v}, nil
}

// Load opens the file and decodes it with Decode.
func (l *Loader) Load(ctx context.Context) (*core.Dataset, error) {
	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("open data file: %w", err)
	}
	defer f.Close()

	ds, err := Decode(f, l.validator)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", l.path, err)
	}

	slog.InfoContext(ctx, "Loaded salary dataset",
		"path", l.path,
		"countries", len(ds.Countries()),
		"entry_count", ds.Len())
	return ds, nil
}

// Decode parses and validates a calculator document. A missing metadata
// object is treated as empty.
func Decode(r io.Reader, v *source.Validator) (*core.Dataset, error) {
	var doc document
	dec := json.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, errors.New("decode json: extra data after the top-level object")
	}
	if doc == nil {
		return nil, fmt.Errorf("decode json: top level must be an object")
	}

	raw := make(map[string]map[string][]core.SalaryEntry, len(doc))
	for country, languages := range doc {
		if languages == nil {
			return nil, fmt.Errorf("%s: languages must be an object", country)
		}
		raw[country] = make(map[string][]core.SalaryEntry, len(languages))
		for language, block := range languages {
			if err := v.Check(country+"/"+language, block); err != nil {
				return nil, err
			}
			entries := make([]core.SalaryEntry, len(block.Entries))
			for i, rec := range block.Entries {
				entries[i] = core.SalaryEntry{
					Value:    *rec.Value,
					Category: rec.Category,
					Metadata: rec.Metadata,
				}
			}
			raw[country][language] = entries
		}
	}

	ds, err := core.NewDataset(raw)
	if err != nil {
		return nil, fmt.Errorf("build dataset: %w", err)
	}
	return ds, nil
}
