package fatigue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/studyplanner-backend/internal/domain"
)

// ActivateRecoveryInput holds the parameters for entering recovery.
type ActivateRecoveryInput struct {
	LearnerID  uuid.UUID
	Date       time.Time
	TriggerBRI int
}

// Validate checks all fields and collects all errors.
func (i ActivateRecoveryInput) Validate() error {
	var errs []domain.FieldError
	if i.LearnerID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "learner_id", Message: "required"})
	}
	if i.Date.IsZero() {
		errs = append(errs, domain.FieldError{Field: "date", Message: "required"})
	}
	if i.TriggerBRI < 0 || i.TriggerBRI > 100 {
		errs = append(errs, domain.FieldError{Field: "trigger_bri", Message: "must be between 0 and 100"})
	}
	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// ExitRecoveryInput holds the parameters for leaving recovery.
type ExitRecoveryInput struct {
	LearnerID uuid.UUID
	Reason    string
}

// Validate checks all fields and collects all errors.
func (i ExitRecoveryInput) Validate() error {
	var errs []domain.FieldError
	if i.LearnerID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "learner_id", Message: "required"})
	}
	if i.Reason == "" {
		errs = append(errs, domain.FieldError{Field: "reason", Message: "required"})
	}
	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// RecoveryResult is the recovery episode touched by an operation.
type RecoveryResult struct {
	Log     domain.RecoveryLog
	Intents []domain.Intent
}

// CheckRecoveryTrigger reports whether the learner's BRI has been below
// 100 - burnout_threshold on both date and the day before while not
// already recovering. It also returns the latest BRI.
func (s *Service) CheckRecoveryTrigger(ctx context.Context, learnerID uuid.UUID, date time.Time) (bool, int, error) {
	profile, err := s.learners.Get(ctx, learnerID)
	if err != nil {
		return false, 0, fmt.Errorf("get learner: %w", err)
	}
	if profile.InRecovery {
		return false, 0, nil
	}

	day := domain.Day(date)
	from := day.AddDate(0, 0, -(domain.RecoveryTriggerStreak - 1))
	snaps, err := s.health.ListBurnout(ctx, learnerID, from, day)
	if err != nil {
		return false, 0, fmt.Errorf("list burnout: %w", err)
	}
	if len(snaps) < domain.RecoveryTriggerStreak {
		return false, 0, nil
	}

	limit := 100 - profile.Params.BurnoutThreshold
	for _, snap := range snaps {
		if float64(snap.BRI) >= limit {
			return false, snaps[len(snaps)-1].BRI, nil
		}
	}
	return true, snaps[len(snaps)-1].BRI, nil
}

// ActivateRecovery opens a recovery episode lasting 7 days for a BRI
// below 40, else 5, and flags the profile.
func (s *Service) ActivateRecovery(ctx context.Context, input ActivateRecoveryInput) (*RecoveryResult, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	profile, err := s.learners.Get(ctx, input.LearnerID)
	if err != nil {
		return nil, fmt.Errorf("get learner: %w", err)
	}
	if profile.InRecovery {
		return nil, fmt.Errorf("activate recovery: already recovering: %w", domain.ErrInvalidTransition)
	}

	now := s.clock()
	start := domain.Day(input.Date)
	end := start.AddDate(0, 0, domain.RecoveryDuration(input.TriggerBRI))

	rec := domain.RecoveryLog{
		ID:         uuid.New(),
		LearnerID:  input.LearnerID,
		TriggerBRI: input.TriggerBRI,
		StartDate:  start,
		EndDate:    end,
		CreatedAt:  now,
	}

	profile.InRecovery = true
	profile.RecoveryStart = &start
	profile.RecoveryEnd = &end
	profile.RecoveryExitedAt = nil
	profile.UpdatedAt = now

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.health.CreateRecovery(txCtx, &rec); err != nil {
			return fmt.Errorf("create recovery: %w", err)
		}
		if err := s.learners.Update(txCtx, profile); err != nil {
			return fmt.Errorf("update learner: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "recovery activated",
		slog.String("learner_id", input.LearnerID.String()),
		slog.Int("trigger_bri", input.TriggerBRI),
		slog.String("end_date", end.Format(time.DateOnly)),
	)

	return &RecoveryResult{
		Log: rec,
		Intents: []domain.Intent{domain.NewIntent(domain.IntentRecoveryActivated, input.LearnerID, now, map[string]any{
			"trigger_bri": input.TriggerBRI,
			"end_date":    end.Format(time.DateOnly),
		})},
	}, nil
}

// ExitRecovery closes the open episode and starts the post-recovery ramp.
func (s *Service) ExitRecovery(ctx context.Context, input ExitRecoveryInput) (*RecoveryResult, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	profile, err := s.learners.Get(ctx, input.LearnerID)
	if err != nil {
		return nil, fmt.Errorf("get learner: %w", err)
	}
	if !profile.InRecovery {
		return nil, fmt.Errorf("exit recovery: not recovering: %w", domain.ErrInvalidTransition)
	}

	now := s.clock()
	var rec domain.RecoveryLog

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		open, err := s.health.OpenRecovery(txCtx, input.LearnerID)
		switch {
		case err == nil:
			if err := s.health.CloseRecovery(txCtx, open.ID, now, input.Reason); err != nil {
				return fmt.Errorf("close recovery: %w", err)
			}
			rec = *open
			rec.ExitedAt = &now
			rec.ExitReason = input.Reason
		case errors.Is(err, domain.ErrNotFound):
			s.log.WarnContext(ctx, "profile in recovery without open episode",
				slog.String("learner_id", input.LearnerID.String()))
		default:
			return fmt.Errorf("open recovery: %w", err)
		}

		profile.InRecovery = false
		profile.RecoveryExitedAt = &now
		profile.UpdatedAt = now
		if err := s.learners.Update(txCtx, profile); err != nil {
			return fmt.Errorf("update learner: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "recovery exited",
		slog.String("learner_id", input.LearnerID.String()),
		slog.String("reason", input.Reason),
	)

	return &RecoveryResult{
		Log: rec,
		Intents: []domain.Intent{domain.NewIntent(domain.IntentRecoveryExited, input.LearnerID, now, map[string]any{
			"reason": input.Reason,
		})},
	}, nil
}

// ExpireRecovery exits recovery once the episode's end date is reached.
// It returns nil when nothing changed.
func (s *Service) ExpireRecovery(ctx context.Context, learnerID uuid.UUID, date time.Time) (*RecoveryResult, error) {
	profile, err := s.learners.Get(ctx, learnerID)
	if err != nil {
		return nil, fmt.Errorf("get learner: %w", err)
	}
	if !profile.InRecovery || profile.RecoveryEnd == nil || domain.Day(date).Before(domain.Day(*profile.RecoveryEnd)) {
		return nil, nil
	}
	return s.ExitRecovery(ctx, ExitRecoveryInput{LearnerID: learnerID, Reason: domain.RecoveryExitCompleted})
}
