package interval

import (
	"math"
)

// Percentile returns the p-th percentile (0..100) of sorted xs, linearly
// interpolating between the closest ranks: h = (n-1)p/100.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 || math.IsNaN(p) {
		return math.NaN()
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 100 {
		return sorted[n-1]
	}

	h := float64(n-1) * p / 100
	lo := int(math.Floor(h))
	if lo >= n-1 {
		return sorted[n-1]
	}
	frac := h - float64(lo)
	lower, upper := sorted[lo], sorted[lo+1]
	return lower + frac*(upper-lower)
}
