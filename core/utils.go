package core

import (
	"math"
	"strconv"

	"github.com/dustin/go-humanize"
)

// FormatNumber renders n with comma thousands separators, e.g. 1234567 -> "1,234,567".
func FormatNumber(n int64) string {
	return humanize.Comma(n)
}

// Nth returns n with its English ordinal suffix: 1st, 2nd, 3rd, 4th, 11th, 112th...
func Nth(n int) string {
	return humanize.Ordinal(n)
}

var compactUnits = []string{"K", "M", "B", "T"}

// CompactCount renders a count the short way: 999, 1.00K, 12.34K, 1.00M.
// Counts under a thousand are printed whole; anything larger keeps two decimals.
func CompactCount(n int64) string {
	if n < 1000 && n > -1000 {
		return strconv.FormatInt(n, 10)
	}
	value, unit := float64(n), ""
	for _, u := range compactUnits {
		// 999.995 and up would round to 1000.00 in the current unit
		if math.Abs(value) < 999.995 {
			break
		}
		value /= 1000
		unit = u
	}
	return strconv.FormatFloat(value, 'f', 2, 64) + unit
}
