package domain

import (
	"time"

	"github.com/google/uuid"
)

// PersonaSnapshot is an append-only version of a learner's persona params.
// The current version has a nil ValidTo.
type PersonaSnapshot struct {
	ID        uuid.UUID
	LearnerID uuid.UUID
	Params    PersonaParams
	Trigger   RecalibrationTrigger
	ValidFrom time.Time
	ValidTo   *time.Time
}

// RecalibrationSignals are the trailing averages a recalibration run reads.
type RecalibrationSignals struct {
	WindowDays          int     `json:"window_days"`
	DataPoints          int     `json:"data_points"`
	VelocityRatio       float64 `json:"velocity_ratio"`
	BRI                 float64 `json:"bri"`
	FatigueAvg          float64 `json:"fatigue_avg"`
	StressAvg           float64 `json:"stress_avg"`
	ConfidenceAvg       float64 `json:"confidence_avg"`
	CriticalWeaknessPct float64 `json:"critical_weakness_pct"`
}

// RecalibrationLogEntry documents every run, including skips and no-ops.
type RecalibrationLogEntry struct {
	ID         uuid.UUID
	LearnerID  uuid.UUID
	Trigger    RecalibrationTrigger
	Outcome    RecalibrationOutcome
	SkipReason string
	Before     PersonaParams
	After      PersonaParams
	Signals    RecalibrationSignals
	Reasons    map[TunableParam]string
	CreatedAt  time.Time
}

// RecalibrationResult is returned by every run. Skips are results, not errors.
type RecalibrationResult struct {
	Outcome    RecalibrationOutcome
	SkipReason string
	Trigger    RecalibrationTrigger
	Before     PersonaParams
	After      PersonaParams
	Signals    RecalibrationSignals
	Reasons    map[TunableParam]string
	Intents    []Intent
}

// Changed reports whether the run wrote new persona params.
func (r *RecalibrationResult) Changed() bool {
	return r.Outcome == OutcomeApplied
}
