package core

import (
	"errors"
	"fmt"
	"maps"
)

type (
	// SalaryEntry is one survey respondent. Value is expressed in thousands of USD.
	SalaryEntry struct {
		Value    int               `json:"value" yaml:"value"`
		Category string            `json:"category" yaml:"category"`
		Metadata map[string]string `json:"metadata" yaml:"metadata"`
	}

	// Filter narrows a query. An empty field means "not set".
	Filter struct {
		Country    string `json:"country,omitempty" yaml:"country,omitempty"`
		Language   string `json:"language,omitempty" yaml:"language,omitempty"`
		Experience string `json:"experience,omitempty" yaml:"experience,omitempty"`
	}
)

var (
	ErrEmptyResult   = errors.New("no salary data found for the given filters")
	ErrNegativeValue = errors.New("negative salary value")
	ErrEmptyCategory = errors.New("empty category")
	ErrEmptyKey      = errors.New("empty country or language key")
)

func (e SalaryEntry) Validate() error {
	if e.Value < 0 {
		return fmt.Errorf("%w: %d", ErrNegativeValue, e.Value)
	}
	if e.Category == "" {
		return ErrEmptyCategory
	}
	return nil
}

// Clone returns a copy that shares no memory with e.
func (e SalaryEntry) Clone() SalaryEntry {
	out := e
	if e.Metadata != nil {
		out.Metadata = maps.Clone(e.Metadata)
	} else {
		out.Metadata = map[string]string{}
	}
	return out
}

// IsZero reports whether no filter field is set.
func (f Filter) IsZero() bool {
	return f.Country == "" && f.Language == "" && f.Experience == ""
}

// Matches reports whether the entry passes the experience part of the filter.
func (f Filter) Matches(e SalaryEntry) bool {
	return f.Experience == "" || f.Experience == e.Category
}
