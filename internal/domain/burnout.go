package domain

import (
	"time"

	"github.com/google/uuid"
)

// BurnoutSnapshot is the per learner and date health row. BRI is higher
// when healthier; FatigueScore is higher when worse.
type BurnoutSnapshot struct {
	LearnerID         uuid.UUID
	Date              time.Time
	BRI               int
	FatigueScore      int
	StressPersistence float64
	BufferHemorrhage  float64
	VelocityCollapse  float64
	EngagementDecay   float64
	Stress            float64
	InRecovery        bool
	CreatedAt         time.Time
}

// RecoveryLog is one recovery episode. At most one open episode per learner.
type RecoveryLog struct {
	ID         uuid.UUID
	LearnerID  uuid.UUID
	TriggerBRI int
	StartDate  time.Time
	EndDate    time.Time
	ExitedAt   *time.Time
	ExitReason string
	CreatedAt  time.Time
}

// IsOpen reports whether the episode has not been terminated.
func (r *RecoveryLog) IsOpen() bool {
	return r.ExitedAt == nil
}

// Recovery exit reasons.
const (
	RecoveryExitManual    = "manual"
	RecoveryExitCompleted = "completed"
)

// Recovery tuning.
const (
	RecoveryHoursFactor   = 0.5
	RecoverySevereBRI     = 40
	RecoveryDaysSevere    = 7
	RecoveryDaysModerate  = 5
	RecoveryTriggerStreak = 2
)

// RecoveryDuration is 7 days for a BRI below 40, else 5.
func RecoveryDuration(bri int) int {
	if bri < RecoverySevereBRI {
		return RecoveryDaysSevere
	}
	return RecoveryDaysModerate
}

// RecoveryRampMultiplier scales nominal hours after a recovery exit:
// 70% on the exit day, 85% the day after, then 100%. today is a local day
// key; the exit instant is converted to one in loc before comparing.
func RecoveryRampMultiplier(exitedAt *time.Time, today time.Time, loc *time.Location) float64 {
	if exitedAt == nil {
		return 1.0
	}
	switch DaysBetween(LocalDay(*exitedAt, loc), today) {
	case 0:
		return 0.70
	case 1:
		return 0.85
	}
	return 1.0
}
