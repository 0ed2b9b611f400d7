package domain

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// Subject groups chapters and topics. ExamModes lists the exam modes under
// which the subject is active; a subject with no modes is active everywhere.
type Subject struct {
	ID        uuid.UUID
	Name      string
	ExamModes []ExamMode
	CreatedAt time.Time
}

// ActiveIn reports whether the subject participates in the given exam mode.
func (s Subject) ActiveIn(mode ExamMode) bool {
	if mode == ExamModeFull || len(s.ExamModes) == 0 {
		return true
	}
	return slices.Contains(s.ExamModes, mode)
}

type Chapter struct {
	ID        uuid.UUID
	SubjectID uuid.UUID
	Name      string
	Position  int
}

// Topic is an immutable catalog entry.
type Topic struct {
	ID                    uuid.UUID
	SubjectID             uuid.UUID
	ChapterID             uuid.UUID
	Name                  string
	PYQWeight             int
	Importance            int
	Difficulty            int
	EstimatedHours        float64
	EstimatedMicroMinutes int
}

// Gravity is the throughput unit for velocity, planning and buffer math.
func (t Topic) Gravity() float64 {
	return float64(t.PYQWeight)
}

const minItemHours = 0.25

// StudyHours is the time budgeted for a first pass, at least a quarter hour.
func (t Topic) StudyHours() float64 {
	return max(minItemHours, t.EstimatedHours)
}

// RevisionHours is the time budgeted for a revision: the micro-revision
// estimate when set, otherwise 35% of the first-pass estimate.
func (t Topic) RevisionHours() float64 {
	if t.EstimatedMicroMinutes > 0 {
		return max(minItemHours, Round2(float64(t.EstimatedMicroMinutes)/60))
	}
	return max(minItemHours, Round2(t.EstimatedHours*0.35))
}

// RevisionPriority is the base score of a revision candidate:
// pyq_weight*4 + importance*2 + 5.
func (t Topic) RevisionPriority() float64 {
	return float64(t.PYQWeight*4 + t.Importance*2 + 5)
}
