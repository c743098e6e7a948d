package services

import (
	"slices"

	"salarycalc/internal/core"
)

// SalaryService answers filter and aggregate queries over a loaded Dataset.
// The Dataset is read-only so the service is safe for concurrent use.
type SalaryService struct {
	dataset *core.Dataset
}

func NewSalaryService(ds *core.Dataset) *SalaryService {
	if ds == nil {
		ds, _ = core.NewDataset(nil)
	}
	return &SalaryService{dataset: ds}
}

// Countries lists every country in the dataset.
func (s *SalaryService) Countries() []string {
	return s.dataset.Countries()
}

// Languages lists the languages surveyed in country, or across all countries
// when country is empty. An unknown country yields an empty list.
func (s *SalaryService) Languages(country string) []string {
	if country != "" {
		langs, ok := s.dataset.Languages(country)
		if !ok {
			return []string{}
		}
		return langs
	}

	seen := make(map[string]struct{})
	out := []string{}
	for _, c := range s.dataset.Countries() {
		langs, _ := s.dataset.Languages(c)
		for _, l := range langs {
			if _, ok := seen[l]; ok {
				continue
			}
			seen[l] = struct{}{}
			out = append(out, l)
		}
	}
	slices.Sort(out)
	return out
}

// ExperienceLevels lists the distinct categories under country/language.
// Unless both are set the result covers the whole dataset.
func (s *SalaryService) ExperienceLevels(country, language string) []string {
	seen := make(map[string]struct{})
	out := []string{}
	add := func(entries []core.SalaryEntry) {
		for _, e := range entries {
			if _, ok := seen[e.Category]; ok {
				continue
			}
			seen[e.Category] = struct{}{}
			out = append(out, e.Category)
		}
	}

	if country != "" && language != "" {
		entries, _ := s.dataset.Entries(country, language)
		add(entries)
	} else {
		s.dataset.Walk(func(_, _ string, entries []core.SalaryEntry) {
			add(entries)
		})
	}
	slices.Sort(out)
	return out
}

// Entries returns the entries matching f, ordered by country, language and
// then source position.
func (s *SalaryService) Entries(f core.Filter) []core.SalaryEntry {
	countries := s.dataset.Countries()
	if f.Country != "" {
		countries = []string{f.Country}
	}

	out := []core.SalaryEntry{}
	for _, country := range countries {
		languages, ok := s.dataset.Languages(country)
		if !ok {
			continue
		}
		if f.Language != "" {
			languages = []string{f.Language}
		}
		for _, language := range languages {
			entries, ok := s.dataset.Entries(country, language)
			if !ok {
				continue
			}
			for _, e := range entries {
				if f.Matches(e) {
					out = append(out, e)
				}
			}
		}
	}
	return out
}

// Stats aggregates the entries matching f. It returns core.ErrEmptyResult
// when nothing matches.
func (s *SalaryService) Stats(f core.Filter) (core.Stats, error) {
	return core.ComputeStats(s.Entries(f))
}

func (s *SalaryService) StatsByCategory(f core.Filter) ([]core.CategoryStats, error) {
	return core.StatsByCategory(s.Entries(f))
}

func (s *SalaryService) Histogram(f core.Filter, bins int) ([]core.HistogramBin, error) {
	return core.BuildHistogram(s.Entries(f), bins)
}

// Size returns the number of entries in the dataset.
func (s *SalaryService) Size() int {
	return s.dataset.Len()
}
