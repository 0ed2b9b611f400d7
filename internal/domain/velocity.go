package domain

import (
	"time"

	"github.com/google/uuid"
)

// Velocity status and trend bands.
const (
	VelocityAheadMin   = 1.1
	VelocityOnTrackMin = 0.9
	VelocityBehindMin  = 0.7

	BufferFloor = -5.0
)

// VelocitySnapshot is the single authoritative velocity row per learner and date.
type VelocitySnapshot struct {
	LearnerID            uuid.UUID
	Date                 time.Time
	RequiredVelocity     float64
	Actual7d             float64
	Actual14d            float64
	ActualVelocity       float64
	Ratio                float64
	Status               VelocityStatus
	Trend                VelocityTrend
	WeightedCompletion   float64
	UnweightedCompletion float64
	CompletedGravity     float64
	RemainingGravity     float64
	TotalGravity         float64
	DaysRemaining        int
	SignalVelocity       float64
	Stress               float64
	CreatedAt            time.Time
}

// ClassifyVelocity bands a velocity ratio.
func ClassifyVelocity(ratio float64) VelocityStatus {
	switch {
	case ratio >= VelocityAheadMin:
		return VelocityAhead
	case ratio >= VelocityOnTrackMin:
		return VelocityOnTrack
	case ratio >= VelocityBehindMin:
		return VelocityBehind
	default:
		return VelocityAtRisk
	}
}

// ClassifyTrend compares the 7-day average against the 14-day average.
func ClassifyTrend(avg7d, avg14d float64) VelocityTrend {
	switch {
	case avg7d > 1.1*avg14d:
		return TrendImproving
	case avg7d < 0.9*avg14d:
		return TrendDeclining
	default:
		return TrendStable
	}
}

// BufferTransaction is an append-only ledger entry.
type BufferTransaction struct {
	ID           uuid.UUID
	LearnerID    uuid.UUID
	Date         time.Time
	Type         BufferTxType
	Amount       float64
	BalanceAfter float64
	DeltaGravity float64
	Note         string
	CreatedAt    time.Time
}

// CascadeStrategyKind names a remediation offered when a learner falls behind.
type CascadeStrategyKind string

const (
	CascadeAbsorbBacklog CascadeStrategyKind = "absorb_backlog"
	CascadeConsumeBuffer CascadeStrategyKind = "consume_buffer"
	CascadeIncreaseHours CascadeStrategyKind = "increase_hours"
	CascadeReduceScope   CascadeStrategyKind = "reduce_scope"
)

// CascadeStrategy is one remediation option with its concrete numbers.
type CascadeStrategy struct {
	Kind             CascadeStrategyKind
	GravityPerDay    float64
	BufferAvailable  float64
	ExtraHoursPerDay float64
	DeferTopicIDs    []uuid.UUID
	DeferGravity     float64
}

// CascadeResult is the outcome of a cascade check.
type CascadeResult struct {
	Triggered  bool
	Reason     string
	Backlog    float64
	Strategies []CascadeStrategy
	Intents    []Intent
}
