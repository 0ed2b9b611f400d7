// Package srs records spaced-repetition reviews and keeps the derived
// progress, confidence and review schedule in step with the card.
package srs

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/studyplanner-backend/internal/domain"
	"github.com/heartmarshall/studyplanner-backend/internal/service/srs/fsrs"
)

type learnerRepo interface {
	Get(ctx context.Context, learnerID uuid.UUID) (*domain.LearnerProfile, error)
}

type topicReader interface {
	GetTopic(ctx context.Context, topicID uuid.UUID) (*domain.Topic, error)
}

type cardRepo interface {
	GetByTopic(ctx context.Context, learnerID, topicID uuid.UUID) (*domain.Card, error)
	Upsert(ctx context.Context, card *domain.Card) error
}

type reviewLogRepo interface {
	Create(ctx context.Context, log *domain.ReviewLog) error
}

type progressRepo interface {
	Get(ctx context.Context, learnerID, topicID uuid.UUID) (*domain.Progress, error)
	Upsert(ctx context.Context, p *domain.Progress) error
}

type auditLogger interface {
	LogStatusChange(ctx context.Context, change domain.StatusChange) error
	CreateConfidenceSnapshot(ctx context.Context, snap domain.ConfidenceSnapshot) error
}

type scheduleRepo interface {
	Create(ctx context.Context, s *domain.ReviewSchedule) error
	SupersedePending(ctx context.Context, learnerID, topicID uuid.UUID, source domain.ScheduleSource) (int, error)
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service implements the side effects of the forgetting-curve model.
type Service struct {
	learners  learnerRepo
	topics    topicReader
	cards     cardRepo
	reviews   reviewLogRepo
	progress  progressRepo
	audit     auditLogger
	schedules scheduleRepo
	tx        txManager
	params    fsrs.Parameters
	log       *slog.Logger
	clock     func() time.Time
}

// NewService creates a new SRS service.
func NewService(
	log *slog.Logger,
	params fsrs.Parameters,
	learners learnerRepo,
	topics topicReader,
	cards cardRepo,
	reviews reviewLogRepo,
	progress progressRepo,
	audit auditLogger,
	schedules scheduleRepo,
	tx txManager,
) *Service {
	return &Service{
		learners:  learners,
		topics:    topics,
		cards:     cards,
		reviews:   reviews,
		progress:  progress,
		audit:     audit,
		schedules: schedules,
		tx:        tx,
		params:    params,
		log:       log.With("service", "srs"),
		clock:     time.Now,
	}
}
