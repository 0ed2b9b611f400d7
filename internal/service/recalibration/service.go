// Package recalibration nudges a learner's persona parameters toward what
// their trailing behaviour supports.
package recalibration

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/studyplanner-backend/internal/domain"
)

type learnerRepo interface {
	Get(ctx context.Context, learnerID uuid.UUID) (*domain.LearnerProfile, error)
	Update(ctx context.Context, p *domain.LearnerProfile) error
}

type velocityReader interface {
	ListSnapshots(ctx context.Context, learnerID uuid.UUID, from, to time.Time) ([]domain.VelocitySnapshot, error)
}

type burnoutReader interface {
	ListBurnout(ctx context.Context, learnerID uuid.UUID, from, to time.Time) ([]domain.BurnoutSnapshot, error)
}

type progressReader interface {
	ListByLearner(ctx context.Context, learnerID uuid.UUID) ([]domain.Progress, error)
}

type recalRepo interface {
	CloseCurrentSnapshot(ctx context.Context, learnerID uuid.UUID, at time.Time) error
	CreateSnapshot(ctx context.Context, snap *domain.PersonaSnapshot) error
	CreateLog(ctx context.Context, e *domain.RecalibrationLogEntry) error
	LastAppliedAt(ctx context.Context, learnerID uuid.UUID) (*time.Time, error)
	ListSnapshots(ctx context.Context, learnerID uuid.UUID) ([]domain.PersonaSnapshot, error)
	ListLogs(ctx context.Context, learnerID uuid.UUID) ([]domain.RecalibrationLogEntry, error)
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Config holds the controller's guardrails.
type Config struct {
	WindowDays         int
	ExtendedWindowDays int
	MinDataPoints      int
	CooldownDays       int
	DriftLimit         float64
}

// DefaultConfig returns the production guardrails.
func DefaultConfig() Config {
	return Config{
		WindowDays:         7,
		ExtendedWindowDays: 14,
		MinDataPoints:      5,
		CooldownDays:       3,
		DriftLimit:         0.2,
	}
}

// Service runs recalibration for one learner at a time.
type Service struct {
	cfg      Config
	learners learnerRepo
	velocity velocityReader
	burnout  burnoutReader
	progress progressReader
	recal    recalRepo
	tx       txManager
	log      *slog.Logger
	clock    func() time.Time
}

// NewService creates a new recalibration service.
func NewService(
	log *slog.Logger,
	cfg Config,
	learners learnerRepo,
	velocity velocityReader,
	burnout burnoutReader,
	progress progressReader,
	recal recalRepo,
	tx txManager,
) *Service {
	return &Service{
		cfg:      cfg,
		learners: learners,
		velocity: velocity,
		burnout:  burnout,
		progress: progress,
		recal:    recal,
		tx:       tx,
		log:      log.With("service", "recalibration"),
		clock:    time.Now,
	}
}
