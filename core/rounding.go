package core

import "math"

// RoundIndependent rounds a raw drop count to the nearest whole drop.
// Ties round half away from zero.
func RoundIndependent(raw float64) int {
	return int(math.Round(raw))
}

// RoundBalanced rounds two complementary raw drop counts in opposite
// directions: the larger one up, the smaller one down. This keeps the pair's
// sum within one drop of the unrounded total, where rounding both the same
// way can miss by two.
//
// When a == b, a is treated as the larger. The tie-break is arbitrary.
func RoundBalanced(a, b float64) (int, int) {
	if a >= b {
		return int(math.Ceil(a)), int(math.Floor(b))
	}
	return int(math.Floor(a)), int(math.Ceil(b))
}
