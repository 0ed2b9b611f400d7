// Package confidence implements the confidence decay engine: it recomputes
// per-topic confidence from the forgetting curve, detects threshold
// crossings and applies their downgrade and reschedule side effects.
package confidence

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/studyplanner-backend/internal/domain"
)

type learnerRepo interface {
	Get(ctx context.Context, learnerID uuid.UUID) (*domain.LearnerProfile, error)
}

type catalogRepo interface {
	ListTopics(ctx context.Context, subjectIDs []uuid.UUID) ([]domain.Topic, error)
}

type progressRepo interface {
	ListByLearner(ctx context.Context, learnerID uuid.UUID) ([]domain.Progress, error)
	Upsert(ctx context.Context, p *domain.Progress) error
	UpsertSubjectConfidence(ctx context.Context, sc domain.SubjectConfidence) error
}

type cardRepo interface {
	ListByLearner(ctx context.Context, learnerID uuid.UUID) ([]domain.Card, error)
}

type auditLogger interface {
	LogStatusChange(ctx context.Context, change domain.StatusChange) error
	CreateConfidenceSnapshot(ctx context.Context, snap domain.ConfidenceSnapshot) error
}

type planRepo interface {
	GetByDate(ctx context.Context, learnerID uuid.UUID, date time.Time) (*domain.DailyPlan, error)
	AddItem(ctx context.Context, item *domain.PlanItem) error
}

type scheduleRepo interface {
	Create(ctx context.Context, s *domain.ReviewSchedule) error
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Config tunes decay scheduling.
type Config struct {
	// DecayItemsPerPlan caps decay_revision items added to one existing plan.
	DecayItemsPerPlan int
}

// Service recalculates confidence for a learner.
type Service struct {
	learners  learnerRepo
	catalog   catalogRepo
	progress  progressRepo
	cards     cardRepo
	audit     auditLogger
	plans     planRepo
	schedules scheduleRepo
	tx        txManager
	cfg       Config
	log       *slog.Logger
	clock     func() time.Time
}

// NewService creates a new confidence service.
func NewService(
	log *slog.Logger,
	cfg Config,
	learners learnerRepo,
	catalog catalogRepo,
	progress progressRepo,
	cards cardRepo,
	audit auditLogger,
	plans planRepo,
	schedules scheduleRepo,
	tx txManager,
) *Service {
	if cfg.DecayItemsPerPlan <= 0 {
		cfg.DecayItemsPerPlan = 3
	}
	return &Service{
		learners:  learners,
		catalog:   catalog,
		progress:  progress,
		cards:     cards,
		audit:     audit,
		plans:     plans,
		schedules: schedules,
		tx:        tx,
		cfg:       cfg,
		log:       log.With("service", "confidence"),
		clock:     time.Now,
	}
}

// RecalculateResult summarizes one batch recompute.
type RecalculateResult struct {
	Recalculated   int
	Transitions    int
	DecayScheduled int
	Downgraded     []uuid.UUID
	SubjectsAtRisk []uuid.UUID
	Intents        []domain.Intent
}
