package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"salarycalc/internal/core"
)

// filterFlags binds --country, --language and --experience as a core.Filter.
func filterFlags(cmd *cobra.Command, f *core.Filter, experience bool) {
	cmd.Flags().StringVar(&f.Country, "country", "", "restrict to one country")
	cmd.Flags().StringVar(&f.Language, "language", "", "restrict to one language")
	if experience {
		cmd.Flags().StringVar(&f.Experience, "experience", "", "restrict to one experience level")
	}
}

func newCountriesCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "countries",
		Short: "List the countries in the dataset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := newQuerier(cmd.Context(), opts)
			if err != nil {
				return err
			}
			countries, err := q.Countries(cmd.Context())
			if err != nil {
				return fmt.Errorf("list countries: %w", err)
			}
			return newPrinter(cmd.OutOrStdout(), opts.output).Names("country", countries)
		},
	}
}

func newLanguagesCommand(opts *rootOptions) *cobra.Command {
	var country string
	cmd := &cobra.Command{
		Use:   "languages",
		Short: "List languages, optionally for one country",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := newQuerier(cmd.Context(), opts)
			if err != nil {
				return err
			}
			languages, err := q.Languages(cmd.Context(), country)
			if err != nil {
				return fmt.Errorf("list languages: %w", err)
			}
			return newPrinter(cmd.OutOrStdout(), opts.output).Names("language", languages)
		},
	}
	cmd.Flags().StringVar(&country, "country", "", "restrict to one country")
	return cmd
}

func newLevelsCommand(opts *rootOptions) *cobra.Command {
	var f core.Filter
	cmd := &cobra.Command{
		Use:   "levels",
		Short: "List experience levels, optionally for a country and language",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := newQuerier(cmd.Context(), opts)
			if err != nil {
				return err
			}
			levels, err := q.ExperienceLevels(cmd.Context(), f.Country, f.Language)
			if err != nil {
				return fmt.Errorf("list experience levels: %w", err)
			}
			return newPrinter(cmd.OutOrStdout(), opts.output).Names("experience", levels)
		},
	}
	filterFlags(cmd, &f, false)
	return cmd
}

func newEntriesCommand(opts *rootOptions) *cobra.Command {
	var f core.Filter
	cmd := &cobra.Command{
		Use:   "entries",
		Short: "Print the salary entries matching the filters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := newQuerier(cmd.Context(), opts)
			if err != nil {
				return err
			}
			entries, err := q.Entries(cmd.Context(), f)
			if err != nil {
				return fmt.Errorf("query entries: %w", err)
			}
			return newPrinter(cmd.OutOrStdout(), opts.output).Entries(entries)
		},
	}
	filterFlags(cmd, &f, true)
	return cmd
}

func newStatsCommand(opts *rootOptions) *cobra.Command {
	var (
		f          core.Filter
		byCategory bool
	)
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Summarize salaries matching the filters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := newQuerier(cmd.Context(), opts)
			if err != nil {
				return err
			}
			p := newPrinter(cmd.OutOrStdout(), opts.output)

			if byCategory {
				stats, err := q.StatsByCategory(cmd.Context(), f)
				if err != nil {
					return statsError(err)
				}
				return p.CategoryStats(stats)
			}
			stats, err := q.Stats(cmd.Context(), f)
			if err != nil {
				return statsError(err)
			}
			return p.Stats(stats)
		},
	}
	filterFlags(cmd, &f, true)
	cmd.Flags().BoolVar(&byCategory, "by-category", false, "one row per experience level")
	return cmd
}

func statsError(err error) error {
	if errors.Is(err, core.ErrEmptyResult) {
		return core.ErrEmptyResult
	}
	return fmt.Errorf("compute statistics: %w", err)
}
