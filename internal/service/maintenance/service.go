// Package maintenance runs the daily per-learner pipeline over all active
// learners and the lighter end-of-day pass triggered by plan completions.
package maintenance

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/studyplanner-backend/internal/domain"
	"github.com/heartmarshall/studyplanner-backend/internal/service/confidence"
	"github.com/heartmarshall/studyplanner-backend/internal/service/fatigue"
	"github.com/heartmarshall/studyplanner-backend/internal/service/velocity"
)

// Step names recorded on StepError.
const (
	StepLoadLearner      = "load_learner"
	StepConfidenceDecay  = "confidence_decay"
	StepHealth           = "health"
	StepVelocitySnapshot = "velocity_snapshot"
	StepBufferUpdate     = "buffer_update"
	StepBurnoutSnapshot  = "burnout_snapshot"
	StepBenchmark        = "benchmark"
	StepRecalibration    = "recalibration"
	StepCascade          = "cascade"
)

// JobStatusCompleted is reported whenever the learner loop finished.
const JobStatusCompleted = "completed"

type learnerRepo interface {
	Get(ctx context.Context, learnerID uuid.UUID) (*domain.LearnerProfile, error)
	ListActiveIDs(ctx context.Context) ([]uuid.UUID, error)
}

type decayEngine interface {
	RecalculateAll(ctx context.Context, learnerID uuid.UUID) (*confidence.RecalculateResult, error)
}

type healthEstimator interface {
	ExpireRecovery(ctx context.Context, learnerID uuid.UUID, date time.Time) (*fatigue.RecoveryResult, error)
	CalculateFatigueScore(ctx context.Context, learnerID uuid.UUID, date time.Time) (int, error)
	SnapshotBurnout(ctx context.Context, learnerID uuid.UUID, date time.Time) (*domain.BurnoutSnapshot, error)
	CheckRecoveryTrigger(ctx context.Context, learnerID uuid.UUID, date time.Time) (bool, int, error)
	ActivateRecovery(ctx context.Context, input fatigue.ActivateRecoveryInput) (*fatigue.RecoveryResult, error)
}

type ledger interface {
	CalculateVelocity(ctx context.Context, learnerID uuid.UUID, date time.Time) (*domain.VelocitySnapshot, error)
	UpdateBuffer(ctx context.Context, learnerID uuid.UUID, date time.Time) (*velocity.BufferUpdate, error)
	CheckCascade(ctx context.Context, learnerID uuid.UUID, date time.Time) (*domain.CascadeResult, error)
}

type recalibrator interface {
	Run(ctx context.Context, learnerID uuid.UUID, trigger domain.RecalibrationTrigger) (*domain.RecalibrationResult, error)
}

// benchmarker refreshes externally owned comparison data for a learner.
type benchmarker interface {
	Benchmark(ctx context.Context, learnerID uuid.UUID, date time.Time) error
}

type dispatcher interface {
	Dispatch(ctx context.Context, intents ...domain.Intent) int
}

// Config bounds one batch run.
type Config struct {
	PerLearnerTimeout time.Duration
	Parallelism       int
}

// Deps groups the runner's collaborators. Benchmark is optional.
type Deps struct {
	Learners      learnerRepo
	Confidence    decayEngine
	Health        healthEstimator
	Ledger        ledger
	Recalibration recalibrator
	Benchmark     benchmarker
	Outbox        dispatcher
}

// Runner orchestrates the per-learner steps.
type Runner struct {
	cfg      Config
	learners learnerRepo
	conf     decayEngine
	health   healthEstimator
	ledger   ledger
	recal    recalibrator
	bench    benchmarker
	outbox   dispatcher
	log      *slog.Logger
}

// NewRunner creates a runner. Non-positive limits fall back to 30s and 1.
func NewRunner(log *slog.Logger, cfg Config, deps Deps) *Runner {
	if cfg.PerLearnerTimeout <= 0 {
		cfg.PerLearnerTimeout = 30 * time.Second
	}
	if cfg.Parallelism < 1 {
		cfg.Parallelism = 1
	}
	return &Runner{
		cfg:      cfg,
		learners: deps.Learners,
		conf:     deps.Confidence,
		health:   deps.Health,
		ledger:   deps.Ledger,
		recal:    deps.Recalibration,
		bench:    deps.Benchmark,
		outbox:   deps.Outbox,
		log:      log.With("service", "maintenance"),
	}
}

// StepError records one failed step for one learner.
type StepError struct {
	LearnerID uuid.UUID
	Step      string
	Err       error
}

func (e StepError) Error() string {
	return e.Step + " " + e.LearnerID.String() + ": " + e.Err.Error()
}

func (e StepError) Unwrap() error { return e.Err }

// JobResult summarizes a batch run.
type JobResult struct {
	Status            string
	Date              time.Time
	LearnersProcessed int
	Errors            []StepError
}
