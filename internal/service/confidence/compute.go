package confidence

import (
	"math"

	"github.com/heartmarshall/studyplanner-backend/internal/domain"
	"github.com/heartmarshall/studyplanner-backend/internal/service/srs/fsrs"
)

// FallbackStability is used for touched topics that have no card yet: the
// stability a first Good review would produce.
var FallbackStability = fsrs.DefaultWeights.InitialStability(fsrs.Good)

// AccuracyFactor scales retrievability by mock-test accuracy:
// 0.7 + 0.3*accuracy, or 1.0 without mock data.
func AccuracyFactor(mockAccuracy *float64) float64 {
	if mockAccuracy == nil {
		return 1.0
	}
	return 0.7 + 0.3*domain.Clamp(*mockAccuracy, 0, 1)
}

// Compute is the single confidence formula shared by reviews and the daily
// batch: clamp(round(R * accuracy_factor * 100), 0, 100).
func Compute(stability, elapsedDays float64, mockAccuracy *float64) (score int, retrievability float64) {
	retrievability = fsrs.Retrievability(stability, elapsedDays)
	raw := math.Round(retrievability * AccuracyFactor(mockAccuracy) * 100)
	return int(domain.Clamp(raw, 0, 100)), retrievability
}
