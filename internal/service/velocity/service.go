// Package velocity tracks required against actual study throughput and keeps
// the learner's buffer ledger.
package velocity

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

type catalogRepo interface {
	ActiveSubjectIDs(ctx context.Context, mode domain.ExamMode) ([]uuid.UUID, error)
	ListTopics(ctx context.Context, subjectIDs []uuid.UUID) ([]domain.Topic, error)
}

type progressRepo interface {
	ListByLearner(ctx context.Context, learnerID uuid.UUID) ([]domain.Progress, error)
}

type studyLog interface {
	StudyDays(ctx context.Context, learnerID uuid.UUID, from, to time.Time) ([]domain.StudyDay, error)
}

type snapshotRepo interface {
	UpsertSnapshot(ctx context.Context, snap *domain.VelocitySnapshot) error
	GetSnapshot(ctx context.Context, learnerID uuid.UUID, date time.Time) (*domain.VelocitySnapshot, error)
	ListSnapshots(ctx context.Context, learnerID uuid.UUID, from, to time.Time) ([]domain.VelocitySnapshot, error)
}

type bufferRepo interface {
	AppendTransactions(ctx context.Context, txs []domain.BufferTransaction) error
	ListTransactions(ctx context.Context, learnerID uuid.UUID, from, to time.Time) ([]domain.BufferTransaction, error)
}

// recalibrator is invoked out of band when the buffer goes into debt.
type recalibrator interface {
	Run(ctx context.Context, learnerID uuid.UUID, trigger domain.RecalibrationTrigger) (*domain.RecalibrationResult, error)
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service computes velocity snapshots, posts buffer transactions and
// detects when a learner needs a cascade of remediation options.
type Service struct {
	learners  learnerRepo
	catalog   catalogRepo
	progress  progressRepo
	study     studyLog
	snapshots snapshotRepo
	buffer    bufferRepo
	recal     recalibrator
	tx        txManager
	log       *slog.Logger
	clock     func() time.Time
}

// NewService creates a new velocity service. recal may be nil, in which
// case buffer debt does not trigger a recalibration.
func NewService(
	log *slog.Logger,
	learners learnerRepo,
	catalog catalogRepo,
	progress progressRepo,
	study studyLog,
	snapshots snapshotRepo,
	buffer bufferRepo,
	recal recalibrator,
	tx txManager,
) *Service {
	return &Service{
		learners:  learners,
		catalog:   catalog,
		progress:  progress,
		study:     study,
		snapshots: snapshots,
		buffer:    buffer,
		recal:     recal,
		tx:        tx,
		log:       log.With("service", "velocity"),
		clock:     time.Now,
	}
}
