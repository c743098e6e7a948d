// Package http provides HTTP server and handler implementations.
//
// This file holds the helpers that turn query strings and form values into
// query-layer filters.

package http

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"salarycalc/internal/core"
	"salarycalc/internal/export"
)

// MaxHistogramBins bounds the bins query parameter.
const MaxHistogramBins = 200

// ParseFilter extracts country, language and experience from API query
// values. Values are taken verbatim: a blank value leaves the field unset and
// anything else must equal a dataset key to match.
func ParseFilter(values url.Values) core.Filter {
	return core.Filter{
		Country:    values.Get("country"),
		Language:   values.Get("language"),
		Experience: values.Get("experience"),
	}
}

// ParseFormFilter is ParseFilter for dashboard form values: input is
// sanitized and the "All ..." labels shown by the selects leave the field
// unset.
func ParseFormFilter(values url.Values) core.Filter {
	return core.Filter{
		Country:    formValue(values.Get("country"), export.AllCountries),
		Language:   formValue(values.Get("language"), export.AllLanguages),
		Experience: formValue(values.Get("experience"), export.AllExperienceLevels),
	}
}

func formValue(raw, all string) string {
	v := sanitizeInput(raw)
	if v == all {
		return ""
	}
	return v
}

// ParseBins reads the bins parameter. A missing value yields def.
func ParseBins(values url.Values, def int) (int, error) {
	raw := strings.TrimSpace(values.Get("bins"))
	if raw == "" {
		return def, nil
	}
	bins, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid bins %q: must be an integer", raw)
	}
	if bins < 1 || bins > MaxHistogramBins {
		return 0, fmt.Errorf("invalid bins %d: must be between 1 and %d", bins, MaxHistogramBins)
	}
	return bins, nil
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 || r == 127 {
			return -1
		}
		return r
	}, s)
}
