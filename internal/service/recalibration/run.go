package recalibration

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/studyplanner-backend/internal/domain"
)

// Run executes one recalibration for the learner. Gates that prevent a run
// produce a skipped result rather than an error, and every run is logged.
func (s *Service) Run(ctx context.Context, learnerID uuid.UUID, trigger domain.RecalibrationTrigger) (*domain.RecalibrationResult, error) {
	if learnerID == uuid.Nil {
		return nil, domain.NewValidationError("learner_id", "required")
	}
	if !trigger.IsValid() {
		return nil, domain.NewValidationError("trigger", "unknown trigger")
	}

	now := s.clock()
	res := &domain.RecalibrationResult{Trigger: trigger}

	profile, err := s.learners.Get(ctx, learnerID)
	if errors.Is(err, domain.ErrNotFound) {
		return s.skip(ctx, learnerID, res, domain.SkipProfileMissing, now)
	}
	if err != nil {
		return nil, fmt.Errorf("get learner: %w", err)
	}
	res.Before, res.After = profile.Params, profile.Params

	if trigger.IsAutomatic() && !profile.AutoRecalibrate {
		return s.skip(ctx, learnerID, res, domain.SkipAutoDisabled, now)
	}
	if profile.InRecovery {
		return s.skip(ctx, learnerID, res, domain.SkipInRecovery, now)
	}

	sig, err := s.signals(ctx, profile, now)
	if err != nil {
		return nil, err
	}
	res.Signals = sig
	if sig.DataPoints < s.cfg.MinDataPoints {
		return s.skip(ctx, learnerID, res, domain.SkipInsufficientData, now)
	}

	last, err := s.recal.LastAppliedAt(ctx, learnerID)
	if err != nil {
		return nil, fmt.Errorf("last applied: %w", err)
	}
	if last != nil && now.Sub(*last) < time.Duration(s.cfg.CooldownDays)*24*time.Hour {
		return s.skip(ctx, learnerID, res, domain.SkipCooldown, now)
	}

	after, reasons := ComputeAdjustments(sig, profile.Params, domain.DefaultPersonaParams(profile.StrategyMode), s.cfg.DriftLimit)
	res.After, res.Reasons = after, reasons

	if len(reasons) == 0 {
		res.Outcome = domain.OutcomeNoChange
		if err := s.recal.CreateLog(ctx, logEntry(learnerID, res, now)); err != nil {
			return nil, fmt.Errorf("create recalibration log: %w", err)
		}
		s.log.InfoContext(ctx, "recalibration no change",
			slog.String("learner_id", learnerID.String()),
			slog.String("trigger", trigger.String()),
		)
		return res, nil
	}

	res.Outcome = domain.OutcomeApplied
	profile.Params = after
	profile.UpdatedAt = now

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.recal.CloseCurrentSnapshot(txCtx, learnerID, now); err != nil {
			return fmt.Errorf("close persona snapshot: %w", err)
		}
		if err := s.recal.CreateSnapshot(txCtx, &domain.PersonaSnapshot{
			ID:        uuid.New(),
			LearnerID: learnerID,
			Params:    after,
			Trigger:   trigger,
			ValidFrom: now,
		}); err != nil {
			return fmt.Errorf("create persona snapshot: %w", err)
		}
		if err := s.learners.Update(txCtx, profile); err != nil {
			return fmt.Errorf("update learner: %w", err)
		}
		if err := s.recal.CreateLog(txCtx, logEntry(learnerID, res, now)); err != nil {
			return fmt.Errorf("create recalibration log: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	changed := make(map[string]any, len(reasons))
	for name := range reasons {
		changed[string(name)] = after.Get(name)
	}
	res.Intents = []domain.Intent{domain.NewIntent(domain.IntentRecalibrationApplied, learnerID, now, map[string]any{
		"trigger": trigger.String(),
		"changed": changed,
	})}

	s.log.InfoContext(ctx, "recalibration applied",
		slog.String("learner_id", learnerID.String()),
		slog.String("trigger", trigger.String()),
		slog.Int("changed", len(reasons)),
	)
	return res, nil
}

func (s *Service) skip(ctx context.Context, learnerID uuid.UUID, res *domain.RecalibrationResult, reason string, now time.Time) (*domain.RecalibrationResult, error) {
	res.Outcome = domain.OutcomeSkipped
	res.SkipReason = reason
	if err := s.recal.CreateLog(ctx, logEntry(learnerID, res, now)); err != nil {
		return nil, fmt.Errorf("create recalibration log: %w", err)
	}
	s.log.InfoContext(ctx, "recalibration skipped",
		slog.String("learner_id", learnerID.String()),
		slog.String("trigger", res.Trigger.String()),
		slog.String("reason", reason),
	)
	return res, nil
}

func logEntry(learnerID uuid.UUID, res *domain.RecalibrationResult, now time.Time) *domain.RecalibrationLogEntry {
	return &domain.RecalibrationLogEntry{
		ID:         uuid.New(),
		LearnerID:  learnerID,
		Trigger:    res.Trigger,
		Outcome:    res.Outcome,
		SkipReason: res.SkipReason,
		Before:     res.Before,
		After:      res.After,
		Signals:    res.Signals,
		Reasons:    res.Reasons,
		CreatedAt:  now,
	}
}

// signals gathers trailing averages over the window, extending it once
// when the short window holds too few data points.
func (s *Service) signals(ctx context.Context, profile *domain.LearnerProfile, now time.Time) (domain.RecalibrationSignals, error) {
	today := domain.LocalDay(now, profile.Location())

	var (
		sig      domain.RecalibrationSignals
		velocity []domain.VelocitySnapshot
		burnout  []domain.BurnoutSnapshot
	)
	for _, window := range []int{s.cfg.WindowDays, s.cfg.ExtendedWindowDays} {
		from := today.AddDate(0, 0, -(window - 1))
		var err error
		velocity, err = s.velocity.ListSnapshots(ctx, profile.LearnerID, from, today)
		if err != nil {
			return sig, fmt.Errorf("list velocity snapshots: %w", err)
		}
		burnout, err = s.burnout.ListBurnout(ctx, profile.LearnerID, from, today)
		if err != nil {
			return sig, fmt.Errorf("list burnout snapshots: %w", err)
		}
		sig.WindowDays = window
		sig.DataPoints = min(len(velocity), len(burnout))
		if sig.DataPoints >= s.cfg.MinDataPoints {
			break
		}
	}

	for _, v := range velocity {
		sig.VelocityRatio += v.Ratio
		sig.StressAvg += v.Stress
	}
	if n := float64(len(velocity)); n > 0 {
		sig.VelocityRatio = domain.Round2(sig.VelocityRatio / n)
		sig.StressAvg = domain.Round2(sig.StressAvg / n)
	}
	for _, b := range burnout {
		sig.BRI += float64(b.BRI)
		sig.FatigueAvg += float64(b.FatigueScore)
	}
	if n := float64(len(burnout)); n > 0 {
		sig.BRI = domain.Round2(sig.BRI / n)
		sig.FatigueAvg = domain.Round2(sig.FatigueAvg / n)
	}

	rows, err := s.progress.ListByLearner(ctx, profile.LearnerID)
	if err != nil {
		return sig, fmt.Errorf("list progress: %w", err)
	}
	sig.ConfidenceAvg, sig.CriticalWeaknessPct = confidenceSignals(rows)
	return sig, nil
}

// confidenceSignals averages confidence over touched topics and reports the
// share of them that decayed. Without touched topics both signals are
// neutral.
func confidenceSignals(rows []domain.Progress) (avg, weakPct float64) {
	var sum float64
	var touched, decayed int
	for _, p := range rows {
		if p.LastTouched == nil || p.Status == domain.TopicStatusDeferredScope {
			continue
		}
		touched++
		sum += float64(p.ConfidenceScore)
		if p.ConfidenceStatus == domain.ConfidenceDecayed {
			decayed++
		}
	}
	if touched == 0 {
		return 100, 0
	}
	return domain.Round2(sum / float64(touched)), domain.Round2(float64(decayed) / float64(touched) * 100)
}
