package main

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strconv"
	"text/tabwriter"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"salarycalc/internal/core"
	"salarycalc/internal/export"
)

var outputFormats = []string{"table", "json", "yaml", "csv"}

func validOutput(format string) bool {
	return slices.Contains(outputFormats, format)
}

// printer writes one kind of result in the selected --output format.
type printer struct {
	w      io.Writer
	format string
}

func newPrinter(w io.Writer, format string) printer {
	return printer{w: w, format: format}
}

func (p printer) encode(v any) (bool, error) {
	switch p.format {
	case "json":
		enc := json.NewEncoder(p.w)
		enc.SetIndent("", "  ")
		return true, enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(p.w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return true, err
		}
		return true, enc.Close()
	}
	return false, nil
}

// Names prints a flat list such as countries or languages.
func (p printer) Names(header string, names []string) error {
	if done, err := p.encode(names); done {
		return err
	}
	rows := make([][]string, len(names))
	for i, n := range names {
		rows[i] = []string{n}
	}
	return p.table([]string{header}, rows)
}

func (p printer) Entries(entries []core.SalaryEntry) error {
	if done, err := p.encode(entries); done {
		return err
	}
	t := export.BuildTable(entries)
	return p.table(t.Header, t.Rows)
}

func (p printer) Stats(stats core.Stats) error {
	if done, err := p.encode(stats); done {
		return err
	}
	return p.table(statsHeader, [][]string{statsRow("", stats)[1:]})
}

func (p printer) CategoryStats(stats []core.CategoryStats) error {
	if done, err := p.encode(stats); done {
		return err
	}
	rows := make([][]string, len(stats))
	for i, cs := range stats {
		rows[i] = statsRow(cs.Category, cs.Stats)
	}
	return p.table(append([]string{"category"}, statsHeader...), rows)
}

var statsHeader = []string{"count", "min", "max", "median", "mean"}

func statsRow(category string, s core.Stats) []string {
	return []string{
		category,
		strconv.Itoa(s.Count),
		strconv.Itoa(s.Min),
		strconv.Itoa(s.Max),
		strconv.FormatFloat(s.Median, 'f', 1, 64),
		strconv.FormatFloat(s.Mean, 'f', 1, 64),
	}
}

// table renders header and rows as csv or as an aligned text table.
func (p printer) table(header []string, rows [][]string) error {
	if p.format == "csv" {
		return export.WriteCSV(p.w, export.Table{Header: header, Rows: rows})
	}

	tw := tabwriter.NewWriter(p.w, 0, 0, 2, ' ', 0)
	bold := color.New(color.Bold)
	for i, h := range header {
		if i > 0 {
			fmt.Fprint(tw, "\t")
		}
		fmt.Fprint(tw, bold.Sprint(h))
	}
	fmt.Fprintln(tw)
	for _, row := range rows {
		for i, v := range row {
			if i > 0 {
				fmt.Fprint(tw, "\t")
			}
			fmt.Fprint(tw, v)
		}
		fmt.Fprintln(tw)
	}
	return tw.Flush()
}
