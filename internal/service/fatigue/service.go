// Package fatigue estimates fatigue and burnout risk from a learner's
// recent study behaviour and drives the recovery state machine.
package fatigue

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

type studyLog interface {
	StudyDays(ctx context.Context, learnerID uuid.UUID, from, to time.Time) ([]domain.StudyDay, error)
}

type healthRepo interface {
	UpsertBurnout(ctx context.Context, snap *domain.BurnoutSnapshot) error
	ListBurnout(ctx context.Context, learnerID uuid.UUID, from, to time.Time) ([]domain.BurnoutSnapshot, error)
	OpenRecovery(ctx context.Context, learnerID uuid.UUID) (*domain.RecoveryLog, error)
	CreateRecovery(ctx context.Context, rec *domain.RecoveryLog) error
	CloseRecovery(ctx context.Context, id uuid.UUID, exitedAt time.Time, reason string) error
}

type velocityReader interface {
	LatestSnapshot(ctx context.Context, learnerID uuid.UUID, onOrBefore time.Time) (*domain.VelocitySnapshot, error)
}

type bufferReader interface {
	ListTransactions(ctx context.Context, learnerID uuid.UUID, from, to time.Time) ([]domain.BufferTransaction, error)
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service computes fatigue and burnout scores and manages recovery episodes.
type Service struct {
	learners learnerRepo
	study    studyLog
	health   healthRepo
	velocity velocityReader
	buffer   bufferReader
	tx       txManager
	log      *slog.Logger
	clock    func() time.Time
}

// NewService creates a new fatigue service.
func NewService(
	log *slog.Logger,
	learners learnerRepo,
	study studyLog,
	health healthRepo,
	velocity velocityReader,
	buffer bufferReader,
	tx txManager,
) *Service {
	return &Service{
		learners: learners,
		study:    study,
		health:   health,
		velocity: velocity,
		buffer:   buffer,
		tx:       tx,
		log:      log.With("service", "fatigue"),
		clock:    time.Now,
	}
}
