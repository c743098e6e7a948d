package core

// DefaultHistogramBins matches the salary distribution chart on the dashboard.
const DefaultHistogramBins = 30

// HistogramBin counts values in [Lower, Upper). The last bin also includes Upper.
type HistogramBin struct {
	Lower float64 `json:"lower" yaml:"lower"`
	Upper float64 `json:"upper" yaml:"upper"`
	Count int     `json:"count" yaml:"count"`
}

// BuildHistogram splits [min, max] of the entry values into equal-width bins.
// When every value is equal a single bin is returned.
func BuildHistogram(entries []SalaryEntry, bins int) ([]HistogramBin, error) {
	if len(entries) == 0 {
		return nil, ErrEmptyResult
	}
	if bins <= 0 {
		bins = DefaultHistogramBins
	}

	lo, hi := entries[0].Value, entries[0].Value
	for _, e := range entries[1:] {
		lo = min(lo, e.Value)
		hi = max(hi, e.Value)
	}

	if lo == hi {
		return []HistogramBin{{Lower: float64(lo), Upper: float64(hi), Count: len(entries)}}, nil
	}

	width := float64(hi-lo) / float64(bins)
	out := make([]HistogramBin, bins)
	for i := range out {
		out[i].Lower = float64(lo) + float64(i)*width
		out[i].Upper = float64(lo) + float64(i+1)*width
	}
	out[bins-1].Upper = float64(hi)

	for _, e := range entries {
		idx := int(float64(e.Value-lo) / width)
		if idx >= bins {
			idx = bins - 1
		}
		out[idx].Count++
	}
	return out, nil
}
