package recalibration

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/heartmarshall/studyplanner-backend/internal/domain"
)

// CustomizeInput carries a learner's own persona overrides.
type CustomizeInput struct {
	LearnerID uuid.UUID
	Overrides domain.PersonaOverrides
	// Reset overlays onto the strategy mode defaults instead of the
	// learner's current params, discarding earlier recalibrations.
	Reset bool
}

// CustomizeResult holds the params before and after the overlay.
type CustomizeResult struct {
	Before domain.PersonaParams
	After  domain.PersonaParams
}

// Customize overlays learner-chosen values onto the persona and records a
// new snapshot. Tunable parameters are clamped to their absolute bounds; the
// drift limit does not apply. Customizing does not write a recalibration log
// entry and does not restart the cooldown.
func (s *Service) Customize(ctx context.Context, input CustomizeInput) (*CustomizeResult, error) {
	if input.LearnerID == uuid.Nil {
		return nil, domain.NewValidationError("learner_id", "required")
	}

	profile, err := s.learners.Get(ctx, input.LearnerID)
	if err != nil {
		return nil, fmt.Errorf("get learner: %w", err)
	}

	base := profile.Params
	if input.Reset {
		base = domain.DefaultPersonaParams(profile.StrategyMode)
	}
	after := input.Overrides.Overlay(base)
	if err := after.Validate(); err != nil {
		return nil, err
	}

	res := &CustomizeResult{Before: profile.Params, After: after}
	now := s.clock()
	profile.Params = after
	profile.UpdatedAt = now

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.recal.CloseCurrentSnapshot(txCtx, input.LearnerID, now); err != nil {
			return fmt.Errorf("close persona snapshot: %w", err)
		}
		if err := s.recal.CreateSnapshot(txCtx, &domain.PersonaSnapshot{
			ID:        uuid.New(),
			LearnerID: input.LearnerID,
			Params:    after,
			Trigger:   domain.TriggerManual,
			ValidFrom: now,
		}); err != nil {
			return fmt.Errorf("create persona snapshot: %w", err)
		}
		if err := s.learners.Update(txCtx, profile); err != nil {
			return fmt.Errorf("update learner: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "persona customized",
		slog.String("learner_id", input.LearnerID.String()),
		slog.Bool("reset", input.Reset),
	)
	return res, nil
}
