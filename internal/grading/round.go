package grading

import "math"

// round2 rounds half-up to two decimals.
func round2(v float64) float64 {
	return math.Floor(v*100+0.5) / 100
}

// roundPercent rounds a ratio to a whole percentage, half-up.
func roundPercent(num, den int) int {
	if den == 0 {
		return 0
	}
	return int(math.Floor(float64(num)*100/float64(den) + 0.5))
}
