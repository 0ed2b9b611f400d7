package domain

import (
	"time"

	"github.com/google/uuid"
)

// Card is the FSRS-5 spaced-repetition state for one learner and topic.
// It is created lazily on first engagement with the topic.
type Card struct {
	ID            uuid.UUID
	LearnerID     uuid.UUID
	TopicID       uuid.UUID
	State         CardState
	Step          int
	Stability     float64
	Difficulty    float64
	Due           time.Time
	LastReview    *time.Time
	Reps          int
	Lapses        int
	ScheduledDays int
	ElapsedDays   int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IsDue returns true if the card needs review at the given time.
//   - NEW cards are always due.
//   - Other cards are due when Due <= now.
func (c *Card) IsDue(now time.Time) bool {
	if c.State == CardStateNew {
		return true
	}
	return !c.Due.After(now)
}

// Snapshot captures the scheduling fields of the card.
func (c *Card) Snapshot() *CardSnapshot {
	return &CardSnapshot{
		State:         c.State,
		Step:          c.Step,
		Stability:     c.Stability,
		Difficulty:    c.Difficulty,
		Due:           c.Due,
		LastReview:    c.LastReview,
		Reps:          c.Reps,
		Lapses:        c.Lapses,
		ScheduledDays: c.ScheduledDays,
		ElapsedDays:   c.ElapsedDays,
	}
}

// ReviewLog records a single review event for a card. Append-only.
type ReviewLog struct {
	ID         uuid.UUID
	CardID     uuid.UUID
	LearnerID  uuid.UUID
	TopicID    uuid.UUID
	Rating     int
	PrevState  *CardSnapshot
	ReviewedAt time.Time
}

// CardSnapshot captures the FSRS state of a card before a review.
type CardSnapshot struct {
	State         CardState
	Step          int
	Stability     float64
	Difficulty    float64
	Due           time.Time
	LastReview    *time.Time
	Reps          int
	Lapses        int
	ScheduledDays int
	ElapsedDays   int
}

// ReviewSchedule is a pending revision obligation for a topic, produced either
// by a review (next due date) or by confidence decay.
type ReviewSchedule struct {
	ID          uuid.UUID
	LearnerID   uuid.UUID
	TopicID     uuid.UUID
	DueDate     time.Time
	Source      ScheduleSource
	Status      ScheduleStatus
	CreatedAt   time.Time
	CompletedAt *time.Time
}
