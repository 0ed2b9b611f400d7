package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/heartmarshall/studyplanner-backend/internal/adapter/postgres"
	"github.com/heartmarshall/studyplanner-backend/internal/adapter/postgres/audit"
	"github.com/heartmarshall/studyplanner-backend/internal/adapter/postgres/card"
	"github.com/heartmarshall/studyplanner-backend/internal/adapter/postgres/catalog"
	"github.com/heartmarshall/studyplanner-backend/internal/adapter/postgres/health"
	"github.com/heartmarshall/studyplanner-backend/internal/adapter/postgres/insight"
	"github.com/heartmarshall/studyplanner-backend/internal/adapter/postgres/learner"
	"github.com/heartmarshall/studyplanner-backend/internal/adapter/postgres/ledger"
	"github.com/heartmarshall/studyplanner-backend/internal/adapter/postgres/plan"
	"github.com/heartmarshall/studyplanner-backend/internal/adapter/postgres/progress"
	recalrepo "github.com/heartmarshall/studyplanner-backend/internal/adapter/postgres/recalibration"
	"github.com/heartmarshall/studyplanner-backend/internal/adapter/postgres/schedule"
	"github.com/heartmarshall/studyplanner-backend/internal/adapter/redis"
	"github.com/heartmarshall/studyplanner-backend/internal/config"
	"github.com/heartmarshall/studyplanner-backend/internal/service/confidence"
	"github.com/heartmarshall/studyplanner-backend/internal/service/fatigue"
	"github.com/heartmarshall/studyplanner-backend/internal/service/maintenance"
	"github.com/heartmarshall/studyplanner-backend/internal/service/outbox"
	"github.com/heartmarshall/studyplanner-backend/internal/service/planner"
	"github.com/heartmarshall/studyplanner-backend/internal/service/recalibration"
	"github.com/heartmarshall/studyplanner-backend/internal/service/srs"
	"github.com/heartmarshall/studyplanner-backend/internal/service/srs/fsrs"
	"github.com/heartmarshall/studyplanner-backend/internal/service/velocity"
)

// Database is what the container needs from a connection pool.
// *pgxpool.Pool and pgxmock pools satisfy it.
type Database interface {
	postgres.Querier
	postgres.Beginner
}

// Container holds the wired repositories and services shared by the
// command-line entry points.
type Container struct {
	Log *slog.Logger

	Learners *learner.Repo
	Catalog  *catalog.Repo
	Progress *progress.Repo
	Plans    *plan.Repo
	Insights *insight.Repo

	Audit      *audit.Repo
	Schedules  *schedule.Repo
	Snapshots  *ledger.VelocityRepo
	Buffer     *ledger.BufferRepo
	Health     *health.Repo
	RecalStore *recalrepo.Repo

	SRS           *srs.Service
	Confidence    *confidence.Service
	Fatigue       *fatigue.Service
	Velocity      *velocity.Service
	Recalibration *recalibration.Service
	Planner       *planner.Service
	Maintenance   *maintenance.Runner
	Outbox        *outbox.Dispatcher

	closers []func()
}

// NewContainer connects to PostgreSQL (and Redis when enabled) and wires
// every service. Call Close when done.
func NewContainer(ctx context.Context, cfg *config.Config, log *slog.Logger) (*Container, error) {
	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	var pub outbox.Publisher
	closers := []func(){pool.Close}

	if cfg.Redis.Enabled {
		rp, err := redis.NewPublisher(ctx, cfg.Redis)
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		pub = rp
		closers = append(closers, func() { _ = rp.Close() })
	}

	c := Wire(log, cfg, pool, pub)
	c.closers = closers

	log.Info("container ready",
		slog.String("version", BuildVersion()),
		slog.Bool("redis", cfg.Redis.Enabled),
		slog.Int("max_conns", int(pool.Config().MaxConns)),
	)
	return c, nil
}

// Wire builds the repositories and services over db. A nil publisher makes
// the outbox log intents instead of publishing them.
func Wire(log *slog.Logger, cfg *config.Config, db Database, pub outbox.Publisher) *Container {
	txm := postgres.NewTxManager(db)

	learners := learner.New(db)
	catalogRepo := catalog.New(db)
	progressRepo := progress.New(db)
	auditRepo := audit.New(db)
	cards := card.New(db)
	reviews := card.NewReviewLogs(db)
	schedules := schedule.New(db)
	plans := plan.New(db)
	snapshots := ledger.NewVelocity(db)
	buffer := ledger.NewBuffer(db)
	healthRepo := health.New(db)
	recal := recalrepo.New(db)
	insights := insight.New(db)

	dispatcher := outbox.NewDispatcher(log, pub)

	srsSvc := srs.NewService(log, SRSParameters(cfg.SRS),
		learners, catalogRepo, cards, reviews, progressRepo, auditRepo, schedules, txm)

	confSvc := confidence.NewService(log,
		confidence.Config{DecayItemsPerPlan: cfg.Planner.DecayItemsPerPlan},
		learners, catalogRepo, progressRepo, cards, auditRepo, plans, schedules, txm)

	recalSvc := recalibration.NewService(log, RecalibrationConfig(cfg.Recalibration),
		learners, snapshots, healthRepo, progressRepo, recal, txm)

	fatigueSvc := fatigue.NewService(log, learners, plans, healthRepo, snapshots, buffer, txm)

	velocitySvc := velocity.NewService(log,
		learners, catalogRepo, progressRepo, plans, snapshots, buffer, recalSvc, txm)

	runner := maintenance.NewRunner(log, maintenance.Config{
		PerLearnerTimeout: cfg.Maintenance.PerLearnerTimeout,
		Parallelism:       cfg.Maintenance.Parallelism,
	}, maintenance.Deps{
		Learners:      learners,
		Confidence:    confSvc,
		Health:        fatigueSvc,
		Ledger:        velocitySvc,
		Recalibration: recalSvc,
		Outbox:        dispatcher,
	})

	plannerSvc := planner.NewService(log, PlannerConfig(cfg.Planner), planner.Deps{
		Learners:  learners,
		Catalog:   catalogRepo,
		Progress:  progressRepo,
		Audit:     auditRepo,
		Insights:  insights,
		Schedules: schedules,
		Plans:     plans,
		Fatigue:   fatigueSvc,
		Cards:     srsSvc,
		EndOfDay:  runner,
		Tx:        txm,
	})

	return &Container{
		Log:           log,
		Learners:      learners,
		Catalog:       catalogRepo,
		Progress:      progressRepo,
		Plans:         plans,
		Insights:      insights,
		Audit:         auditRepo,
		Schedules:     schedules,
		Snapshots:     snapshots,
		Buffer:        buffer,
		Health:        healthRepo,
		RecalStore:    recal,
		SRS:           srsSvc,
		Confidence:    confSvc,
		Fatigue:       fatigueSvc,
		Velocity:      velocitySvc,
		Recalibration: recalSvc,
		Planner:       plannerSvc,
		Maintenance:   runner,
		Outbox:        dispatcher,
	}
}

// Close releases connections in reverse order of acquisition.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}

// SRSParameters maps the SRS config section onto scheduler parameters.
func SRSParameters(cfg config.SRSConfig) fsrs.Parameters {
	p := fsrs.DefaultParameters().WithRetention(cfg.DefaultRetention)
	if cfg.MaxIntervalDays > 0 {
		p.MaxIntervalDays = cfg.MaxIntervalDays
	}
	p.EnableFuzz = cfg.EnableFuzz
	if len(cfg.LearningSteps) > 0 {
		p.LearningSteps = cfg.LearningSteps
	}
	if len(cfg.RelearningSteps) > 0 {
		p.RelearningSteps = cfg.RelearningSteps
	}
	return p
}

// PlannerConfig maps the planner config section, keeping defaults for
// unset limits.
func PlannerConfig(cfg config.PlannerConfig) planner.Config {
	out := planner.DefaultConfig()
	if cfg.DefaultDailyHours > 0 {
		out.DefaultDailyHours = cfg.DefaultDailyHours
	}
	if cfg.MaxTopicsPerDay > 0 {
		out.MaxTopicsPerDay = cfg.MaxTopicsPerDay
	}
	if cfg.SubjectShare > 0 {
		out.SubjectShare = cfg.SubjectShare
	}
	if cfg.VarietyBonus > 0 {
		out.VarietyBonus = cfg.VarietyBonus
	}
	if cfg.ChallengeCap > 0 {
		out.ChallengeCap = cfg.ChallengeCap
	}
	if cfg.StretchCap > 0 {
		out.StretchCap = cfg.StretchCap
	}
	if cfg.LightDayMaxDifficulty > 0 {
		out.LightDayMaxDifficulty = cfg.LightDayMaxDifficulty
	}
	if cfg.WeekendMultiplier > 0 {
		out.WeekendMultiplier = cfg.WeekendMultiplier
	}
	if cfg.ProfessionalMinPYQ > 0 {
		out.ProfessionalMinPYQ = cfg.ProfessionalMinPYQ
	}
	if cfg.RecentPlans > 0 {
		out.RecentPlans = cfg.RecentPlans
	}
	if cfg.SubjectRepeatThreshold > 0 {
		out.SubjectRepeatThreshold = cfg.SubjectRepeatThreshold
	}
	return out
}

// RecalibrationConfig maps the recalibration config section, keeping
// defaults for unset guardrails.
func RecalibrationConfig(cfg config.RecalibrationConfig) recalibration.Config {
	out := recalibration.DefaultConfig()
	if cfg.WindowDays > 0 {
		out.WindowDays = cfg.WindowDays
	}
	if cfg.ExtendedWindowDays > 0 {
		out.ExtendedWindowDays = cfg.ExtendedWindowDays
	}
	if cfg.MinDataPoints > 0 {
		out.MinDataPoints = cfg.MinDataPoints
	}
	if cfg.CooldownDays > 0 {
		out.CooldownDays = cfg.CooldownDays
	}
	if cfg.DriftLimit > 0 {
		out.DriftLimit = cfg.DriftLimit
	}
	return out
}
