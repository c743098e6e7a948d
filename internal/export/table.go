// Package export turns query results into flat tables for CSV downloads and
// spreadsheet exports.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"

	"salarycalc/internal/core"
)

const (
	ColumnValue    = "value"
	ColumnCategory = "category"
)

// Table is a header plus string rows. Metadata keys become extra columns.
type Table struct {
	Header []string
	Rows   [][]string
}

// BuildTable lays out entries as value, category and then one column per
// metadata key seen in any entry, in sorted order. Missing keys are blank.
func BuildTable(entries []core.SalaryEntry) Table {
	keySet := make(map[string]struct{})
	for _, e := range entries {
		for k := range e.Metadata {
			keySet[k] = struct{}{}
		}
	}
	keys := make([]string, 0, len(keySet))
	for k := range keySet {
		if k == ColumnValue || k == ColumnCategory {
			continue
		}
		keys = append(keys, k)
	}
	slices.Sort(keys)

	header := append([]string{ColumnValue, ColumnCategory}, keys...)
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		row := make([]string, len(header))
		row[0] = strconv.Itoa(e.Value)
		row[1] = e.Category
		for i, k := range keys {
			row[i+2] = e.Metadata[k]
		}
		rows = append(rows, row)
	}
	return Table{Header: header, Rows: rows}
}

// Values returns the table as the [][]any matrix the Sheets API expects,
// header first. The value column stays numeric.
func (t Table) Values() [][]any {
	out := make([][]any, 0, len(t.Rows)+1)
	head := make([]any, len(t.Header))
	for i, h := range t.Header {
		head[i] = h
	}
	out = append(out, head)
	for _, r := range t.Rows {
		row := make([]any, len(r))
		for i, v := range r {
			row[i] = v
		}
		if n, err := strconv.Atoi(r[0]); err == nil {
			row[0] = n
		}
		out = append(out, row)
	}
	return out
}

func WriteCSV(w io.Writer, t Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return fmt.Errorf("write csv rows: %w", err)
	}
	return nil
}

// Labels the dashboard shows for an unset filter field.
const (
	AllCountries        = "All Countries"
	AllLanguages        = "All Languages"
	AllExperienceLevels = "All Experience Levels"
)

// FileName names a download after the filter, using the "All" labels for
// unset parts.
func FileName(f core.Filter) string {
	return fmt.Sprintf("salary_data_%s_%s_%s.csv",
		orAll(f.Country, AllCountries),
		orAll(f.Language, AllLanguages),
		orAll(f.Experience, AllExperienceLevels))
}

// MaxTitleLen is the longest sheet tab name, in runes, the Sheets API accepts.
const MaxTitleLen = 100

// Title is the sheet tab name used for an export. The filter part is
// shortened so that the " (id)" suffix always fits within MaxTitleLen.
func Title(f core.Filter, id string) string {
	parts := []string{
		orAll(f.Country, AllCountries),
		orAll(f.Language, AllLanguages),
		orAll(f.Experience, AllExperienceLevels),
	}
	title := strings.Join(parts, " - ")
	if id == "" {
		return truncateRunes(title, MaxTitleLen)
	}
	suffix := " (" + id + ")"
	room := MaxTitleLen - utf8.RuneCountInString(suffix)
	if room < 0 {
		return truncateRunes(suffix[1:], MaxTitleLen)
	}
	return strings.TrimSpace(truncateRunes(title, room)) + suffix
}

func truncateRunes(s string, n int) string {
	if r := []rune(s); len(r) > n {
		return string(r[:n])
	}
	return s
}
