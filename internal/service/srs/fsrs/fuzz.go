package fsrs

import (
	"encoding/binary"
	"hash/fnv"
	"math"
	"math/rand"
	"time"
)

// fuzzTier widens the fuzz window by Factor per day of interval inside [Start, End).
type fuzzTier struct {
	Start  float64
	End    float64
	Factor float64
}

var fuzzTiers = []fuzzTier{
	{Start: 2.5, End: 7.0, Factor: 0.15},
	{Start: 7.0, End: 20.0, Factor: 0.10},
	{Start: 20.0, End: math.MaxFloat64, Factor: 0.05},
}

// fuzzWindow returns the inclusive bounds an interval may be fuzzed into.
func fuzzWindow(interval, elapsedDays float64, maxInterval int) (lo, hi int) {
	if interval < 2.5 {
		r := int(math.Round(interval))
		return r, r
	}

	delta := 1.0
	for _, t := range fuzzTiers {
		delta += t.Factor * math.Max(math.Min(interval, t.End)-t.Start, 0)
	}

	lo = max(2, int(math.Round(interval-delta)))
	hi = min(maxInterval, int(math.Round(interval+delta)))

	if interval > elapsedDays && lo <= int(elapsedDays) {
		lo = int(elapsedDays) + 1
	}
	return min(lo, hi), hi
}

// fuzz picks a deterministic interval inside the fuzz window.
func fuzz(interval int, elapsedDays float64, maxInterval int, seed int64) int {
	lo, hi := fuzzWindow(float64(interval), elapsedDays, maxInterval)
	if lo >= hi {
		return lo
	}
	//nolint:gosec // deterministic fuzz, not cryptographic
	rng := rand.New(rand.NewSource(seed))
	return lo + rng.Intn(hi-lo+1)
}

// fuzzSeed derives a deterministic seed from the review instant and card state.
func fuzzSeed(now time.Time, reps int, difficulty, stability float64) int64 {
	h := fnv.New64a()
	b := make([]byte, 8)
	for _, v := range []uint64{uint64(now.Unix()), uint64(reps), math.Float64bits(difficulty), math.Float64bits(stability)} {
		binary.LittleEndian.PutUint64(b, v)
		h.Write(b)
	}
	return int64(h.Sum64())
}
