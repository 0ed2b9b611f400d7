package domain

import (
	"time"

	"github.com/google/uuid"
)

// LearnerProfile holds the planning inputs and control state for one learner.
type LearnerProfile struct {
	LearnerID        uuid.UUID
	DailyHours       float64
	ExamDate         time.Time
	StrategyMode     StrategyMode
	ExamMode         ExamMode
	IsRepeater       bool
	AttemptNumber    int
	WeakSubjectIDs   []uuid.UUID
	StrongSubjectIDs []uuid.UUID
	BufferInitial    float64
	BufferBalance    float64
	AutoRecalibrate  bool
	InRecovery       bool
	RecoveryStart    *time.Time
	RecoveryEnd      *time.Time
	RecoveryExitedAt *time.Time
	Timezone         string
	Params           PersonaParams
	Active           bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// DaysRemaining returns the whole days from today until the exam, never negative.
func (p *LearnerProfile) DaysRemaining(today time.Time) int {
	d := DaysBetween(today, p.ExamDate)
	if d < 0 {
		return 0
	}
	return d
}

// IsWeakSubject reports whether the learner marked the subject as weak.
func (p *LearnerProfile) IsWeakSubject(id uuid.UUID) bool {
	for _, s := range p.WeakSubjectIDs {
		if s == id {
			return true
		}
	}
	return false
}

// IsStrongSubject reports whether the learner marked the subject as strong.
func (p *LearnerProfile) IsStrongSubject(id uuid.UUID) bool {
	for _, s := range p.StrongSubjectIDs {
		if s == id {
			return true
		}
	}
	return false
}

// Location returns the learner's timezone, falling back to UTC.
func (p *LearnerProfile) Location() *time.Location {
	return ParseTimezone(p.Timezone)
}

// InitialBuffer is the fixed onboarding buffer: days_remaining x buffer_capacity.
func InitialBuffer(daysRemaining int, bufferCapacity float64) float64 {
	return Round2(float64(daysRemaining) * bufferCapacity)
}
