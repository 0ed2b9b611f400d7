// Package fsrs implements the FSRS-5 forgetting-curve model and card scheduler.
package fsrs

import (
	"fmt"
	"math"
)

// MinStability is the floor for stability values.
const MinStability = 0.1

// Weights are the 19 FSRS-5 model parameters w[0]..w[18].
type Weights [19]float64

// DefaultWeights are the published FSRS-5 defaults.
var DefaultWeights = Weights{
	0.4072, 1.1829, 3.1262, 15.4722, // initial stability per first rating
	7.2102, 0.5316, // initial difficulty
	1.0651, 0.0046, // difficulty update and mean reversion
	1.5418, 0.1594, 1.01, // recall stability
	2.1791, 0.0292, 0.2788, 0.2229, // forget stability
	0.2604, 3.3928, // hard penalty, easy bonus
	0.2223, 0.6744, // short-term stability
}

// Rating is the learner's recall quality for a review.
type Rating int

const (
	Again Rating = 1
	Hard  Rating = 2
	Good  Rating = 3
	Easy  Rating = 4
)

func (r Rating) IsValid() bool { return r >= Again && r <= Easy }

func (r Rating) String() string {
	switch r {
	case Again:
		return "again"
	case Hard:
		return "hard"
	case Good:
		return "good"
	case Easy:
		return "easy"
	}
	return fmt.Sprintf("rating(%d)", int(r))
}

// Validate checks that all weights are finite and the initial stabilities positive.
func (w Weights) Validate() error {
	for i, v := range w {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("weight w[%d] is invalid: %v", i, v)
		}
	}
	if w[0] <= 0 || w[1] <= 0 || w[2] <= 0 || w[3] <= 0 {
		return fmt.Errorf("initial stability weights w[0]-w[3] must be positive")
	}
	return nil
}

// InitialStability is S0(G) = w[G-1], floored at MinStability.
func (w Weights) InitialStability(r Rating) float64 {
	if !r.IsValid() {
		r = Good
	}
	return math.Max(MinStability, w[r-1])
}

// InitialDifficulty is D0(G) = w4 - exp(w5*(G-1)) + 1, clamped to [1,10].
func (w Weights) InitialDifficulty(r Rating) float64 {
	return clampDifficulty(w[4] - math.Exp(w[5]*float64(r-1)) + 1)
}

// NextDifficulty reverts toward D0(Easy):
//
//	D' = w7*D0(4) + (1-w7)*(D - w6*(G-3))
func (w Weights) NextDifficulty(d float64, r Rating) float64 {
	return clampDifficulty(w[7]*w.InitialDifficulty(Easy) + (1-w[7])*(d-w[6]*(float64(r)-3)))
}

// RecallStability is the post-recall stability for Hard, Good and Easy:
//
//	S' = S * (e^w8 * (11-D) * S^-w9 * (e^(w10*(1-R)) - 1) * penalty * bonus + 1)
func (w Weights) RecallStability(s, d, retrievability float64, r Rating) float64 {
	modifier := 1.0
	switch r {
	case Hard:
		modifier = w[15]
	case Easy:
		modifier = w[16]
	}
	growth := math.Exp(w[8]) * (11 - d) * math.Pow(s, -w[9]) * (math.Exp(w[10]*(1-retrievability)) - 1) * modifier
	return math.Max(MinStability, s*(growth+1))
}

// ForgetStability is the post-lapse stability, capped so it never exceeds
// S / exp(w17*w18):
//
//	S'f = w11 * D^-w12 * ((S+1)^w13 - 1) * e^(w14*(1-R))
func (w Weights) ForgetStability(s, d, retrievability float64) float64 {
	sf := w[11] * math.Pow(d, -w[12]) * (math.Pow(s+1, w[13]) - 1) * math.Exp(w[14]*(1-retrievability))
	ceiling := s / math.Exp(w[17]*w[18])
	return math.Max(MinStability, math.Min(ceiling, sf))
}

// ShortTermStability is used for same-day learning steps:
//
//	S' = S * e^(w17*(G-3+w18))
func (w Weights) ShortTermStability(s float64, r Rating) float64 {
	return math.Max(MinStability, s*math.Exp(w[17]*(float64(r)-3+w[18])))
}

func clampDifficulty(d float64) float64 {
	return math.Max(1, math.Min(10, d))
}
