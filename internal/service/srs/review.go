package srs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/studyplanner-backend/internal/domain"
	"github.com/heartmarshall/studyplanner-backend/internal/service/confidence"
	"github.com/heartmarshall/studyplanner-backend/internal/service/srs/fsrs"
)

// Status upgrade thresholds applied after a review.
const (
	examReadyRevisions  = 3
	examReadyConfidence = 70
	fastTrackMock       = 0.8
	revisedRevisions    = 2
)

// RecordReview applies a 1-4 rating to the learner's card for the topic,
// creating the card on first engagement, then recomputes confidence,
// evaluates status upgrades and schedules the next review.
func (s *Service) RecordReview(ctx context.Context, input RecordReviewInput) (*ReviewResult, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	profile, err := s.learners.Get(ctx, input.LearnerID)
	if err != nil {
		return nil, fmt.Errorf("get learner: %w", err)
	}
	if _, err := s.topics.GetTopic(ctx, input.TopicID); err != nil {
		return nil, fmt.Errorf("get topic: %w", err)
	}

	now := s.clock()

	card, err := s.loadCard(ctx, input.LearnerID, input.TopicID, now)
	if err != nil {
		return nil, err
	}
	prev := card.Snapshot()

	params := s.params.WithRetention(profile.Params.TargetRetention)
	updated, err := fsrs.Review(params, *card, fsrs.Rating(input.Rating), now)
	if err != nil {
		return nil, fmt.Errorf("fsrs review: %w", err)
	}
	updated.UpdatedAt = now

	progress, err := s.loadProgress(ctx, input.LearnerID, input.TopicID)
	if err != nil {
		return nil, err
	}
	oldStatus := progress.Status

	score, retrievability := confidence.Compute(updated.Stability, 0, progress.MockAccuracy)
	progress.ConfidenceScore = score
	progress.ConfidenceStatus = domain.ClassifyConfidence(score)
	progress.RevisionCount++
	progress.LastTouched = &now
	progress.UpdatedAt = now

	newStatus, reason := upgradeStatus(*progress)
	progress.Status = newStatus

	next := domain.ReviewSchedule{
		ID:        uuid.New(),
		LearnerID: input.LearnerID,
		TopicID:   input.TopicID,
		DueDate:   domain.LocalDay(updated.Due, profile.Location()),
		Source:    domain.ScheduleSourceReview,
		Status:    domain.ScheduleStatusPending,
		CreatedAt: now,
	}

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.cards.Upsert(txCtx, &updated); err != nil {
			return fmt.Errorf("upsert card: %w", err)
		}
		if err := s.reviews.Create(txCtx, &domain.ReviewLog{
			ID:         uuid.New(),
			CardID:     updated.ID,
			LearnerID:  input.LearnerID,
			TopicID:    input.TopicID,
			Rating:     input.Rating,
			PrevState:  prev,
			ReviewedAt: now,
		}); err != nil {
			return fmt.Errorf("create review log: %w", err)
		}
		if err := s.progress.Upsert(txCtx, progress); err != nil {
			return fmt.Errorf("upsert progress: %w", err)
		}
		if err := s.audit.CreateConfidenceSnapshot(txCtx, domain.ConfidenceSnapshot{
			ID:         uuid.New(),
			LearnerID:  input.LearnerID,
			TopicID:    input.TopicID,
			Score:      score,
			Status:     progress.ConfidenceStatus,
			Retrieval:  retrievability,
			RecordedAt: now,
		}); err != nil {
			return fmt.Errorf("confidence snapshot: %w", err)
		}
		if newStatus != oldStatus {
			if err := s.audit.LogStatusChange(txCtx, domain.StatusChange{
				ID:        uuid.New(),
				LearnerID: input.LearnerID,
				TopicID:   input.TopicID,
				OldStatus: oldStatus,
				NewStatus: newStatus,
				Reason:    reason,
				ChangedAt: now,
			}); err != nil {
				return fmt.Errorf("log status change: %w", err)
			}
		}
		if _, err := s.schedules.SupersedePending(txCtx, input.LearnerID, input.TopicID, domain.ScheduleSourceReview); err != nil {
			return fmt.Errorf("supersede schedules: %w", err)
		}
		if err := s.schedules.Create(txCtx, &next); err != nil {
			return fmt.Errorf("create schedule: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "review recorded",
		slog.String("learner_id", input.LearnerID.String()),
		slog.String("topic_id", input.TopicID.String()),
		slog.Int("rating", input.Rating),
		slog.String("state", updated.State.String()),
		slog.Int("confidence", score),
		slog.String("status", newStatus.String()),
	)

	return &ReviewResult{
		Card:             updated,
		Progress:         *progress,
		Confidence:       score,
		ConfidenceStatus: progress.ConfidenceStatus,
		PreviousStatus:   oldStatus,
		NextReview:       next,
	}, nil
}

// EnsureCard returns the learner's card for the topic, creating a NEW card
// on first engagement.
func (s *Service) EnsureCard(ctx context.Context, learnerID, topicID uuid.UUID) (*domain.Card, error) {
	card, err := s.cards.GetByTopic(ctx, learnerID, topicID)
	if err == nil {
		return card, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("get card: %w", err)
	}

	created := fsrs.NewCard(learnerID, topicID, s.clock())
	if err := s.cards.Upsert(ctx, &created); err != nil {
		return nil, fmt.Errorf("create card: %w", err)
	}
	s.log.DebugContext(ctx, "card created",
		slog.String("learner_id", learnerID.String()),
		slog.String("topic_id", topicID.String()),
	)
	return &created, nil
}

func (s *Service) loadCard(ctx context.Context, learnerID, topicID uuid.UUID, now time.Time) (*domain.Card, error) {
	card, err := s.cards.GetByTopic(ctx, learnerID, topicID)
	if errors.Is(err, domain.ErrNotFound) {
		c := fsrs.NewCard(learnerID, topicID, now)
		return &c, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get card: %w", err)
	}
	return card, nil
}

func (s *Service) loadProgress(ctx context.Context, learnerID, topicID uuid.UUID) (*domain.Progress, error) {
	p, err := s.progress.Get(ctx, learnerID, topicID)
	if errors.Is(err, domain.ErrNotFound) {
		np := domain.NewProgress(learnerID, topicID)
		return &np, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get progress: %w", err)
	}
	return p, nil
}

// upgradeStatus evaluates the post-review status rules. Statuses only move
// forward, and deferred_scope topics are left alone.
func upgradeStatus(p domain.Progress) (domain.TopicStatus, string) {
	if p.Status == domain.TopicStatusDeferredScope {
		return p.Status, ""
	}

	target, reason := domain.TopicStatusInProgress, domain.ReasonReviewUpgrade
	switch {
	case p.RevisionCount >= examReadyRevisions && p.ConfidenceScore >= examReadyConfidence:
		target = domain.TopicStatusExamReady
	case p.MockAccuracy != nil && *p.MockAccuracy >= fastTrackMock && p.RevisionCount >= revisedRevisions:
		target, reason = domain.TopicStatusExamReady, domain.ReasonReviewFastTrack
	case p.RevisionCount >= revisedRevisions:
		target = domain.TopicStatusRevised
	}

	if target.Rank() > p.Status.Rank() {
		return target, reason
	}
	return p.Status, ""
}
