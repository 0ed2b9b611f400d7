// Package memory provides in-process implementations of every repository
// port. It backs service tests and dry runs of the planner CLI.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/studyplanner-backend/internal/domain"
)

type pairKey struct {
	learner uuid.UUID
	other   uuid.UUID
}

type dateKey struct {
	learner uuid.UUID
	day     time.Time
}

func keyOn(learner uuid.UUID, t time.Time) dateKey {
	return dateKey{learner: learner, day: domain.Day(t)}
}

// Store holds all state behind a single mutex. The per-aggregate views
// returned by its accessors share that state.
type Store struct {
	mu sync.RWMutex

	learners map[uuid.UUID]domain.LearnerProfile

	subjects map[uuid.UUID]domain.Subject
	chapters map[uuid.UUID]domain.Chapter
	topics   map[uuid.UUID]domain.Topic

	progress      map[pairKey]domain.Progress
	statusChanges []domain.StatusChange
	confSnapshots []domain.ConfidenceSnapshot
	subjectConf   map[pairKey]domain.SubjectConfidence
	mockAccuracy  map[pairKey]float64
	insights      map[pairKey]map[domain.InsightKind]bool

	cards      map[pairKey]domain.Card
	reviewLogs []domain.ReviewLog
	schedules  []domain.ReviewSchedule

	plans map[dateKey]domain.DailyPlan
	items map[uuid.UUID]domain.PlanItem

	velocity map[dateKey]domain.VelocitySnapshot
	bufferTx []domain.BufferTransaction

	burnout    map[dateKey]domain.BurnoutSnapshot
	recoveries []domain.RecoveryLog

	personaSnapshots []domain.PersonaSnapshot
	recalLogs        []domain.RecalibrationLogEntry
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		learners:     map[uuid.UUID]domain.LearnerProfile{},
		subjects:     map[uuid.UUID]domain.Subject{},
		chapters:     map[uuid.UUID]domain.Chapter{},
		topics:       map[uuid.UUID]domain.Topic{},
		progress:     map[pairKey]domain.Progress{},
		subjectConf:  map[pairKey]domain.SubjectConfidence{},
		mockAccuracy: map[pairKey]float64{},
		insights:     map[pairKey]map[domain.InsightKind]bool{},
		cards:        map[pairKey]domain.Card{},
		plans:        map[dateKey]domain.DailyPlan{},
		items:        map[uuid.UUID]domain.PlanItem{},
		velocity:     map[dateKey]domain.VelocitySnapshot{},
		burnout:      map[dateKey]domain.BurnoutSnapshot{},
	}
}

// TxManager runs fn directly. The store has no rollback; callers see
// partial writes if fn fails midway.
type TxManager struct{}

func (TxManager) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func inRange(t, from, to time.Time) bool {
	d := domain.Day(t)
	return !d.Before(domain.Day(from)) && !d.After(domain.Day(to))
}
