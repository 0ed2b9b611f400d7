package fsrs

import (
	"math"
	"time"
)

// Retrievability is the predicted probability of recall after elapsedDays
// for a memory of the given stability:
//
//	R = (1 + t/(9*S))^-1
//
// It returns 0 when stability is not positive. Negative elapsed time is
// treated as zero.
func Retrievability(stability, elapsedDays float64) float64 {
	if stability <= 0 {
		return 0
	}
	t := math.Max(0, elapsedDays)
	return 1 / (1 + t/(9*stability))
}

// NextInterval converts stability and target retention to an interval in days:
//
//	I = round(9 * S * (1/r - 1)), at least 1
func NextInterval(stability, targetRetention float64) int {
	if targetRetention <= 0 || targetRetention >= 1 {
		return 1
	}
	return max(1, int(math.Round(9*stability*(1/targetRetention-1))))
}

// ElapsedDays returns the fractional days between two instants, never negative.
func ElapsedDays(from, to time.Time) float64 {
	return math.Max(0, to.Sub(from).Hours()/24)
}
