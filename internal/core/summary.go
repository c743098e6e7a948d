package core

import "slices"

// Stats is the aggregate record over a filtered set of entries.
type Stats struct {
	Min    int     `json:"min_salary" yaml:"min_salary"`
	Max    int     `json:"max_salary" yaml:"max_salary"`
	Median float64 `json:"median_salary" yaml:"median_salary"`
	Mean   float64 `json:"average_salary" yaml:"average_salary"`
	Count  int     `json:"count" yaml:"count"`
}

// CategoryStats is Stats restricted to one experience category.
type CategoryStats struct {
	Category string `json:"category" yaml:"category"`
	Stats    Stats  `json:"stats" yaml:"stats"`
}

// ComputeStats returns min, max, median, mean and count of the entry values.
// It fails with ErrEmptyResult when entries is empty.
func ComputeStats(entries []SalaryEntry) (Stats, error) {
	if len(entries) == 0 {
		return Stats{}, ErrEmptyResult
	}

	values := make([]int, len(entries))
	var sum int64
	for i, e := range entries {
		values[i] = e.Value
		sum += int64(e.Value)
	}
	slices.Sort(values)

	n := len(values)
	var median float64
	if n%2 == 1 {
		median = float64(values[n/2])
	} else {
		median = (float64(values[n/2-1]) + float64(values[n/2])) / 2
	}

	return Stats{
		Min:    values[0],
		Max:    values[n-1],
		Median: median,
		Mean:   float64(sum) / float64(n),
		Count:  n,
	}, nil
}

// StatsByCategory groups entries by category, in order of first appearance,
// and computes Stats for each group.
func StatsByCategory(entries []SalaryEntry) ([]CategoryStats, error) {
	if len(entries) == 0 {
		return nil, ErrEmptyResult
	}

	var order []string
	groups := make(map[string][]SalaryEntry)
	for _, e := range entries {
		if _, seen := groups[e.Category]; !seen {
			order = append(order, e.Category)
		}
		groups[e.Category] = append(groups[e.Category], e)
	}

	out := make([]CategoryStats, 0, len(order))
	for _, category := range order {
		stats, err := ComputeStats(groups[category])
		if err != nil {
			return nil, err
		}
		out = append(out, CategoryStats{Category: category, Stats: stats})
	}
	return out, nil
}
