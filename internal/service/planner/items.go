package planner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/heartmarshall/studyplanner-backend/internal/domain"
)

const revisedAfterRevisions = 2

// CompleteItemInput holds the parameters for CompletePlanItem.
type CompleteItemInput struct {
	LearnerID   uuid.UUID
	ItemID      uuid.UUID
	ActualHours *float64
}

// Validate checks all fields and collects all errors.
func (i CompleteItemInput) Validate() error {
	var errs []domain.FieldError
	if i.LearnerID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "learner_id", Message: "required"})
	}
	if i.ItemID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "item_id", Message: "required"})
	}
	if i.ActualHours != nil && (*i.ActualHours < 0 || *i.ActualHours > maxHoursOverride) {
		errs = append(errs, domain.FieldError{Field: "actual_hours", Message: "must be between 0 and 24"})
	}
	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// ItemActionInput identifies a plan item acted on by its owner.
type ItemActionInput struct {
	LearnerID uuid.UUID
	ItemID    uuid.UUID
}

// Validate checks all fields and collects all errors.
func (i ItemActionInput) Validate() error {
	var errs []domain.FieldError
	if i.LearnerID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "learner_id", Message: "required"})
	}
	if i.ItemID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "item_id", Message: "required"})
	}
	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// ItemResult is the updated item and the topic status it left behind.
type ItemResult struct {
	Item           domain.PlanItem
	TopicStatus    domain.TopicStatus
	PreviousStatus domain.TopicStatus
	Intents        []domain.Intent
}

// StatusChanged reports whether the action moved the topic status.
func (r *ItemResult) StatusChanged() bool {
	return r.TopicStatus != r.PreviousStatus
}

// CompletePlanItem marks a pending item completed and applies its effect
// on the topic: first-pass items may upgrade the status and create the
// review card, revision items close the oldest pending review schedule.
// The end-of-day aggregation then runs; its failure is logged only.
func (s *Service) CompletePlanItem(ctx context.Context, input CompleteItemInput) (*ItemResult, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	item, err := s.ownedPendingItem(ctx, input.LearnerID, input.ItemID)
	if err != nil {
		return nil, err
	}
	prog, err := s.loadProgress(ctx, input.LearnerID, item.TopicID)
	if err != nil {
		return nil, err
	}

	now := s.clock()
	oldStatus := prog.Status
	reason := ""

	switch item.Type {
	case domain.PlanItemNew, domain.PlanItemStretch:
		if prog.Status.Rank() >= 0 && prog.Status.Rank() < domain.TopicStatusFirstPass.Rank() {
			prog.Status, reason = domain.TopicStatusFirstPass, domain.ReasonPlanItemCompleted
		}
	case domain.PlanItemRevision, domain.PlanItemDecayRevision:
		prog.RevisionCount++
		if prog.RevisionCount >= revisedAfterRevisions &&
			prog.Status.Rank() >= 0 && prog.Status.Rank() < domain.TopicStatusRevised.Rank() {
			prog.Status, reason = domain.TopicStatusRevised, domain.ReasonRevisionUpgrade
		}
	case domain.PlanItemChallenge:
		prog.RevisionCount++
	}
	prog.LastTouched = &now
	prog.UpdatedAt = now

	item.Status = domain.PlanItemCompleted
	item.CompletedAt = &now
	item.ActualHours = input.ActualHours

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.plans.UpdateItem(txCtx, item); err != nil {
			return fmt.Errorf("update item: %w", err)
		}
		if err := s.progress.Upsert(txCtx, prog); err != nil {
			return fmt.Errorf("upsert progress: %w", err)
		}
		if reason != "" {
			if err := s.audit.LogStatusChange(txCtx, domain.StatusChange{
				ID:        uuid.New(),
				LearnerID: input.LearnerID,
				TopicID:   item.TopicID,
				OldStatus: oldStatus,
				NewStatus: prog.Status,
				Reason:    reason,
				ChangedAt: now,
			}); err != nil {
				return fmt.Errorf("log status change: %w", err)
			}
		}

		switch {
		case item.Type == domain.PlanItemNew || item.Type == domain.PlanItemStretch:
			if _, err := s.cards.EnsureCard(txCtx, input.LearnerID, item.TopicID); err != nil {
				return fmt.Errorf("ensure card: %w", err)
			}
		case item.Type.IsRevision():
			if _, err := s.schedules.CompleteOldestPending(txCtx, input.LearnerID, item.TopicID, now); err != nil {
				return fmt.Errorf("complete schedule: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "plan item completed",
		slog.String("learner_id", input.LearnerID.String()),
		slog.String("item_id", item.ID.String()),
		slog.String("type", item.Type.String()),
		slog.String("topic_status", prog.Status.String()),
	)

	if s.eod != nil {
		if err := s.eod.EndOfDay(ctx, input.LearnerID, item.PlanDate); err != nil {
			s.log.WarnContext(ctx, "end of day aggregation failed",
				slog.String("learner_id", input.LearnerID.String()),
				slog.String("error", err.Error()),
			)
		}
	}

	return &ItemResult{
		Item:           *item,
		TopicStatus:    prog.Status,
		PreviousStatus: oldStatus,
		Intents: []domain.Intent{
			domain.NewIntent(domain.IntentPlanItemCompleted, input.LearnerID, now, map[string]any{
				"item_id":      item.ID.String(),
				"topic_id":     item.TopicID.String(),
				"type":         item.Type.String(),
				"topic_status": prog.Status.String(),
			}),
		},
	}, nil
}

// DeferPlanItem moves a pending item to deferred. Deferred topics get a
// priority boost in the next day's plan.
func (s *Service) DeferPlanItem(ctx context.Context, input ItemActionInput) (*ItemResult, error) {
	return s.closeItem(ctx, input, domain.PlanItemDeferred)
}

// SkipPlanItem moves a pending item to skipped.
func (s *Service) SkipPlanItem(ctx context.Context, input ItemActionInput) (*ItemResult, error) {
	return s.closeItem(ctx, input, domain.PlanItemSkipped)
}

func (s *Service) closeItem(ctx context.Context, input ItemActionInput, status domain.PlanItemStatus) (*ItemResult, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	item, err := s.ownedPendingItem(ctx, input.LearnerID, input.ItemID)
	if err != nil {
		return nil, err
	}
	prog, err := s.loadProgress(ctx, input.LearnerID, item.TopicID)
	if err != nil {
		return nil, err
	}

	item.Status = status
	if err := s.plans.UpdateItem(ctx, item); err != nil {
		return nil, fmt.Errorf("update item: %w", err)
	}

	s.log.InfoContext(ctx, "plan item closed",
		slog.String("learner_id", input.LearnerID.String()),
		slog.String("item_id", item.ID.String()),
		slog.String("status", status.String()),
	)
	return &ItemResult{Item: *item, TopicStatus: prog.Status, PreviousStatus: prog.Status}, nil
}

// ownedPendingItem loads the item, hiding items of other learners as not found.
func (s *Service) ownedPendingItem(ctx context.Context, learnerID, itemID uuid.UUID) (*domain.PlanItem, error) {
	item, err := s.plans.GetItem(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	if item.LearnerID != learnerID {
		return nil, fmt.Errorf("get item: plan item %s: %w", itemID, domain.ErrNotFound)
	}
	if item.Status.IsTerminal() {
		return nil, fmt.Errorf("plan item %s is %s: %w", itemID, item.Status, domain.ErrInvalidTransition)
	}
	return item, nil
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
