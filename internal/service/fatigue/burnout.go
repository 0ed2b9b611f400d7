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

// CalculateFatigueScore returns the learner's 0-100 fatigue score for date.
func (s *Service) CalculateFatigueScore(ctx context.Context, learnerID uuid.UUID, date time.Time) (int, error) {
	profile, err := s.learners.Get(ctx, learnerID)
	if err != nil {
		return 0, fmt.Errorf("get learner: %w", err)
	}
	return s.fatigue(ctx, profile, date)
}

func (s *Service) fatigue(ctx context.Context, profile *domain.LearnerProfile, date time.Time) (int, error) {
	day := domain.Day(date)
	days, err := s.study.StudyDays(ctx, profile.LearnerID, day.AddDate(0, 0, -14), day)
	if err != nil {
		return 0, fmt.Errorf("study days: %w", err)
	}
	in := InputsFromDays(days, day, profile.DailyHours)
	return FatigueScore(in, profile.Params.FatigueSensitivity), nil
}

// CalculateBRI computes the burnout risk index and its signals for date
// without persisting anything.
func (s *Service) CalculateBRI(ctx context.Context, learnerID uuid.UUID, date time.Time) (*domain.BurnoutSnapshot, error) {
	profile, err := s.learners.Get(ctx, learnerID)
	if err != nil {
		return nil, fmt.Errorf("get learner: %w", err)
	}
	return s.burnout(ctx, profile, date)
}

func (s *Service) burnout(ctx context.Context, profile *domain.LearnerProfile, date time.Time) (*domain.BurnoutSnapshot, error) {
	learnerID := profile.LearnerID
	day := domain.Day(date)

	fatigue, err := s.fatigue(ctx, profile, day)
	if err != nil {
		return nil, err
	}

	prior, err := s.health.ListBurnout(ctx, learnerID, day.AddDate(0, 0, -3), day.AddDate(0, 0, -1))
	if err != nil {
		return nil, fmt.Errorf("list burnout: %w", err)
	}
	highStress := 0
	for _, b := range prior {
		if b.Stress > stressHighMark {
			highStress++
		}
	}

	txs, err := s.buffer.ListTransactions(ctx, learnerID, day.AddDate(0, 0, -6), day)
	if err != nil {
		return nil, fmt.Errorf("list buffer transactions: %w", err)
	}
	negative := 0
	for _, tx := range txs {
		if tx.Amount < 0 {
			negative++
		}
	}

	var latestSignal *float64
	latest, err := s.velocity.LatestSnapshot(ctx, learnerID, day)
	switch {
	case err == nil:
		latestSignal = &latest.SignalVelocity
	case !errors.Is(err, domain.ErrNotFound):
		return nil, fmt.Errorf("latest velocity: %w", err)
	}

	var stress float64
	if latest != nil && domain.Day(latest.Date).Equal(day) {
		stress = latest.Stress
	}

	days, err := s.study.StudyDays(ctx, learnerID, day.AddDate(0, 0, -5), day)
	if err != nil {
		return nil, fmt.Errorf("study days: %w", err)
	}
	recent, priorHours := splitHours(days, day)

	sig := BRISignals{
		StressPersistence: StressPersistence(highStress),
		BufferHemorrhage:  BufferHemorrhage(negative),
		VelocityCollapse:  VelocityCollapse(latestSignal),
		EngagementDecay:   EngagementDecay(recent/3, priorHours/3),
	}

	return &domain.BurnoutSnapshot{
		LearnerID:         learnerID,
		Date:              day,
		BRI:               BRI(sig),
		FatigueScore:      fatigue,
		StressPersistence: sig.StressPersistence,
		BufferHemorrhage:  sig.BufferHemorrhage,
		VelocityCollapse:  sig.VelocityCollapse,
		EngagementDecay:   sig.EngagementDecay,
		Stress:            stress,
		InRecovery:        profile.InRecovery,
		CreatedAt:         s.clock(),
	}, nil
}

// splitHours sums hours for [day-2, day] and [day-5, day-3].
func splitHours(days []domain.StudyDay, day time.Time) (recent, prior float64) {
	for _, d := range days {
		switch offset := domain.DaysBetween(d.Date, day); {
		case offset >= 0 && offset <= 2:
			recent += d.Hours
		case offset >= 3 && offset <= 5:
			prior += d.Hours
		}
	}
	return recent, prior
}

// SnapshotBurnout computes and upserts the burnout snapshot for date.
// Re-running for the same date overwrites the row.
func (s *Service) SnapshotBurnout(ctx context.Context, learnerID uuid.UUID, date time.Time) (*domain.BurnoutSnapshot, error) {
	snap, err := s.CalculateBRI(ctx, learnerID, date)
	if err != nil {
		return nil, err
	}
	if err := s.health.UpsertBurnout(ctx, snap); err != nil {
		return nil, fmt.Errorf("upsert burnout: %w", err)
	}

	s.log.InfoContext(ctx, "burnout snapshot",
		slog.String("learner_id", learnerID.String()),
		slog.String("date", snap.Date.Format(time.DateOnly)),
		slog.Int("bri", snap.BRI),
		slog.Int("fatigue", snap.FatigueScore),
	)
	return snap, nil
}
