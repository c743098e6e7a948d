package core

import (
	"fmt"
	"slices"
)

// Dataset is the immutable Country -> Language -> []SalaryEntry mapping.
// Keys are iterated in sorted order. All accessors return copies.
type Dataset struct {
	countries []string
	languages map[string][]string
	entries   map[string]map[string][]SalaryEntry
	size      int
}

// NewDataset validates raw and builds a Dataset that shares no memory with it.
func NewDataset(raw map[string]map[string][]SalaryEntry) (*Dataset, error) {
	ds := &Dataset{
		languages: make(map[string][]string, len(raw)),
		entries:   make(map[string]map[string][]SalaryEntry, len(raw)),
	}

	for country, langs := range raw {
		if country == "" {
			return nil, ErrEmptyKey
		}
		ds.countries = append(ds.countries, country)
		ds.entries[country] = make(map[string][]SalaryEntry, len(langs))

		names := make([]string, 0, len(langs))
		for language, entries := range langs {
			if language == "" {
				return nil, fmt.Errorf("%s: %w", country, ErrEmptyKey)
			}
			copied := make([]SalaryEntry, len(entries))
			for i, e := range entries {
				if err := e.Validate(); err != nil {
					return nil, fmt.Errorf("%s/%s/entries[%d]: %w", country, language, i, err)
				}
				copied[i] = e.Clone()
			}
			names = append(names, language)
			ds.entries[country][language] = copied
			ds.size += len(copied)
		}
		slices.Sort(names)
		ds.languages[country] = names
	}
	slices.Sort(ds.countries)

	return ds, nil
}

// Countries returns all country keys.
func (d *Dataset) Countries() []string {
	return slices.Clone(d.countries)
}

// Languages returns the language keys under country, or false if it is absent.
func (d *Dataset) Languages(country string) ([]string, bool) {
	langs, ok := d.languages[country]
	if !ok {
		return nil, false
	}
	return slices.Clone(langs), true
}

// Entries returns the entries stored under country/language, in source order.
func (d *Dataset) Entries(country, language string) ([]SalaryEntry, bool) {
	byLang, ok := d.entries[country]
	if !ok {
		return nil, false
	}
	entries, ok := byLang[language]
	if !ok {
		return nil, false
	}
	out := make([]SalaryEntry, len(entries))
	for i, e := range entries {
		out[i] = e.Clone()
	}
	return out, true
}

// Walk calls fn for every country/language block in iteration order.
// Entries passed to fn are copies.
func (d *Dataset) Walk(fn func(country, language string, entries []SalaryEntry)) {
	for _, country := range d.countries {
		for _, language := range d.languages[country] {
			entries, _ := d.Entries(country, language)
			fn(country, language, entries)
		}
	}
}

// Len returns the total number of entries.
func (d *Dataset) Len() int {
	return d.size
}
