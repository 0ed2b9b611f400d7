// Package planner builds each learner's daily study plan and drives the
// plan-item state machine.
package planner

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
	ActiveSubjectIDs(ctx context.Context, mode domain.ExamMode) ([]uuid.UUID, error)
	ListTopics(ctx context.Context, subjectIDs []uuid.UUID) ([]domain.Topic, error)
}

type progressRepo interface {
	Get(ctx context.Context, learnerID, topicID uuid.UUID) (*domain.Progress, error)
	ListByLearner(ctx context.Context, learnerID uuid.UUID) ([]domain.Progress, error)
	Upsert(ctx context.Context, p *domain.Progress) error
}

type auditLogger interface {
	LogStatusChange(ctx context.Context, c domain.StatusChange) error
}

type insightRepo interface {
	Insights(ctx context.Context, learnerID uuid.UUID) (domain.InsightSets, error)
}

type scheduleRepo interface {
	ListDue(ctx context.Context, learnerID uuid.UUID, until time.Time) ([]domain.ReviewSchedule, error)
	CompleteOldestPending(ctx context.Context, learnerID, topicID uuid.UUID, at time.Time) (bool, error)
}

type planRepo interface {
	GetByDate(ctx context.Context, learnerID uuid.UUID, date time.Time) (*domain.DailyPlan, error)
	Create(ctx context.Context, p *domain.DailyPlan) error
	Delete(ctx context.Context, learnerID uuid.UUID, date time.Time) error
	GetItem(ctx context.Context, itemID uuid.UUID) (*domain.PlanItem, error)
	UpdateItem(ctx context.Context, it *domain.PlanItem) error
	StudyDays(ctx context.Context, learnerID uuid.UUID, from, to time.Time) ([]domain.StudyDay, error)
	RecentSubjectCounts(ctx context.Context, learnerID uuid.UUID, before time.Time, n int) (map[uuid.UUID]int, error)
	DeferredTopicIDs(ctx context.Context, learnerID uuid.UUID, date time.Time) ([]uuid.UUID, error)
}

type fatigueScorer interface {
	CalculateFatigueScore(ctx context.Context, learnerID uuid.UUID, date time.Time) (int, error)
}

type cardEnsurer interface {
	EnsureCard(ctx context.Context, learnerID, topicID uuid.UUID) (*domain.Card, error)
}

// endOfDay aggregates the day after an item completes. Its failures never
// reach the caller of the completion.
type endOfDay interface {
	EndOfDay(ctx context.Context, learnerID uuid.UUID, date time.Time) error
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Config holds plan generation limits.
type Config struct {
	DefaultDailyHours      float64
	MaxTopicsPerDay        int
	SubjectShare           float64
	VarietyBonus           float64
	ChallengeCap           int
	StretchCap             int
	LightDayMaxDifficulty  int
	WeekendMultiplier      float64
	ProfessionalMinPYQ     int
	RecentPlans            int
	SubjectRepeatThreshold int
}

// DefaultConfig returns the production planning limits.
func DefaultConfig() Config {
	return Config{
		DefaultDailyHours:      6,
		MaxTopicsPerDay:        8,
		SubjectShare:           0.6,
		VarietyBonus:           2,
		ChallengeCap:           2,
		StretchCap:             1,
		LightDayMaxDifficulty:  2,
		WeekendMultiplier:      1.5,
		ProfessionalMinPYQ:     2,
		RecentPlans:            4,
		SubjectRepeatThreshold: 3,
	}
}

// Service generates daily plans and applies learner actions to plan items.
type Service struct {
	cfg       Config
	learners  learnerRepo
	catalog   catalogRepo
	progress  progressRepo
	audit     auditLogger
	insights  insightRepo
	schedules scheduleRepo
	plans     planRepo
	fatigue   fatigueScorer
	cards     cardEnsurer
	eod       endOfDay
	tx        txManager
	log       *slog.Logger
	clock     func() time.Time
}

// Deps groups the planner's collaborators.
type Deps struct {
	Learners  learnerRepo
	Catalog   catalogRepo
	Progress  progressRepo
	Audit     auditLogger
	Insights  insightRepo
	Schedules scheduleRepo
	Plans     planRepo
	Fatigue   fatigueScorer
	Cards     cardEnsurer
	// EndOfDay is optional.
	EndOfDay endOfDay
	Tx       txManager
}

// NewService creates a new planner service.
func NewService(log *slog.Logger, cfg Config, deps Deps) *Service {
	return &Service{
		cfg:       cfg,
		learners:  deps.Learners,
		catalog:   deps.Catalog,
		progress:  deps.Progress,
		audit:     deps.Audit,
		insights:  deps.Insights,
		schedules: deps.Schedules,
		plans:     deps.Plans,
		fatigue:   deps.Fatigue,
		cards:     deps.Cards,
		eod:       deps.EndOfDay,
		tx:        deps.Tx,
		log:       log.With("service", "planner"),
		clock:     time.Now,
	}
}
