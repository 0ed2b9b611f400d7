package domain

import (
	"time"

	"github.com/google/uuid"
)

// Progress is the per learner x topic record.
type Progress struct {
	LearnerID        uuid.UUID
	TopicID          uuid.UUID
	Status           TopicStatus
	ConfidenceScore  int
	ConfidenceStatus ConfidenceStatus
	RevisionCount    int
	MockAccuracy     *float64
	LastTouched      *time.Time
	UpdatedAt        time.Time
}

// NewProgress returns an untouched record for the pair.
func NewProgress(learnerID, topicID uuid.UUID) Progress {
	return Progress{
		LearnerID:        learnerID,
		TopicID:          topicID,
		Status:           TopicStatusUntouched,
		ConfidenceStatus: ConfidenceDecayed,
	}
}

// StatusChange is an immutable audit row for a topic status transition.
type StatusChange struct {
	ID        uuid.UUID
	LearnerID uuid.UUID
	TopicID   uuid.UUID
	OldStatus TopicStatus
	NewStatus TopicStatus
	Reason    string
	ChangedAt time.Time
}

// ConfidenceSnapshot is appended whenever a topic's confidence is recomputed.
type ConfidenceSnapshot struct {
	ID         uuid.UUID
	LearnerID  uuid.UUID
	TopicID    uuid.UUID
	Score      int
	Status     ConfidenceStatus
	Retrieval  float64
	RecordedAt time.Time
}

// SubjectConfidence is the per-subject PYQ-weighted confidence cache.
type SubjectConfidence struct {
	LearnerID  uuid.UUID
	SubjectID  uuid.UUID
	Weighted   float64
	TopicCount int
	AtRisk     bool
	UpdatedAt  time.Time
}

// Confidence status thresholds (inclusive lower bounds).
const (
	ConfidenceFreshMin  = 70
	ConfidenceFadingMin = 45
	ConfidenceStaleMin  = 20

	SubjectAtRiskBelow = 40.0
)

// ClassifyConfidence buckets a 0-100 score.
func ClassifyConfidence(score int) ConfidenceStatus {
	switch {
	case score >= ConfidenceFreshMin:
		return ConfidenceFresh
	case score >= ConfidenceFadingMin:
		return ConfidenceFading
	case score >= ConfidenceStaleMin:
		return ConfidenceStale
	default:
		return ConfidenceDecayed
	}
}
