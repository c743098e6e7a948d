package core

import (
	"math"
	"strconv"
)

// FormatThousands renders a value in thousands of USD, e.g. 1234.6 -> "$1,235K".
func FormatThousands(v float64) string {
	neg := v < 0
	if neg {
		v = -v
	}
	s := "$" + groupDigits(int64(math.RoundToEven(v))) + "K"
	if neg {
		return "-" + s
	}
	return s
}

// FormatRange renders the min/max pair shown on the dashboard, e.g. "$100K - $200K".
func FormatRange(lo, hi int) string {
	return FormatThousands(float64(lo)) + " - " + FormatThousands(float64(hi))
}

// FormatCount renders a sample size, e.g. 1234 -> "1,234 responses".
func FormatCount(n int) string {
	return groupDigits(int64(n)) + " responses"
}

func groupDigits(n int64) string {
	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}
	out := make([]byte, 0, len(s)+len(s)/3)
	pre := len(s) % 3
	if pre > 0 {
		out = append(out, s[:pre]...)
	}
	for i := pre; i < len(s); i += 3 {
		if len(out) > 0 {
			out = append(out, ',')
		}
		out = append(out, s[i:i+3]...)
	}
	return string(out)
}
