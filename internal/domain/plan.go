package domain

import (
	"time"

	"github.com/google/uuid"
)

// DailyPlan is the single plan for a learner and date.
type DailyPlan struct {
	ID             uuid.UUID
	LearnerID      uuid.UUID
	Date           time.Time
	AvailableHours float64
	IsLightDay     bool
	FatigueScore   int
	EnergyLevel    EnergyLevel
	RevisionRatio  float64
	Items          []PlanItem
	CreatedAt      time.Time
}

// TotalHours sums the estimated hours of all items.
func (p *DailyPlan) TotalHours() float64 {
	var sum float64
	for _, it := range p.Items {
		sum += it.EstimatedHours
	}
	return sum
}

// PlanItem is one allocated topic inside a DailyPlan. Type is fixed at creation.
type PlanItem struct {
	ID             uuid.UUID
	PlanID         uuid.UUID
	LearnerID      uuid.UUID
	PlanDate       time.Time
	TopicID        uuid.UUID
	SubjectID      uuid.UUID
	Type           PlanItemType
	EstimatedHours float64
	PriorityScore  float64
	DisplayOrder   int
	Status         PlanItemStatus
	Difficulty     int
	Gravity        float64
	ActualHours    *float64
	CompletedAt    *time.Time
	CreatedAt      time.Time
}

// StudyDay aggregates one calendar day of completed plan items.
type StudyDay struct {
	Date           time.Time
	Hours          float64
	AvgDifficulty  float64
	Gravity        float64
	ItemsCompleted int
}

// Studied reports whether any study happened that day.
func (d StudyDay) Studied() bool {
	return d.ItemsCompleted > 0 || d.Hours > 0
}
