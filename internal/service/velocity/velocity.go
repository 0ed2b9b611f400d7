package velocity

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/studyplanner-backend/internal/domain"
)

// ErrRecoveryFreeze is returned by CalculateVelocity while the learner is
// recovering.
var ErrRecoveryFreeze = fmt.Errorf("velocity frozen during recovery: %w", domain.ErrConflict)

// CalculateVelocity computes the learner's velocity snapshot for date and
// upserts it. Re-running for the same date overwrites the row. No snapshot
// is written while the learner is recovering.
func (s *Service) CalculateVelocity(ctx context.Context, learnerID uuid.UUID, date time.Time) (*domain.VelocitySnapshot, error) {
	profile, err := s.learners.Get(ctx, learnerID)
	if err != nil {
		return nil, fmt.Errorf("get learner: %w", err)
	}
	if profile.InRecovery {
		return nil, ErrRecoveryFreeze
	}

	snap, err := s.compute(ctx, profile, date)
	if err != nil {
		return nil, err
	}
	if err := s.snapshots.UpsertSnapshot(ctx, snap); err != nil {
		return nil, fmt.Errorf("upsert velocity snapshot: %w", err)
	}

	s.log.InfoContext(ctx, "velocity snapshot",
		slog.String("learner_id", learnerID.String()),
		slog.String("date", snap.Date.Format(time.DateOnly)),
		slog.Float64("required", snap.RequiredVelocity),
		slog.Float64("actual", snap.ActualVelocity),
		slog.String("status", snap.Status.String()),
	)
	return snap, nil
}

func (s *Service) compute(ctx context.Context, profile *domain.LearnerProfile, date time.Time) (*domain.VelocitySnapshot, error) {
	day := domain.Day(date)

	g, err := s.gravity(ctx, profile)
	if err != nil {
		return nil, err
	}

	days, err := s.study.StudyDays(ctx, profile.LearnerID, day.AddDate(0, 0, -13), day)
	if err != nil {
		return nil, fmt.Errorf("study days: %w", err)
	}
	avg7 := AverageGravity(days, day, 7)
	avg14 := AverageGravity(days, day, 14)

	daysRemaining := profile.DaysRemaining(day)
	params := profile.Params
	required := RequiredVelocity(g.Remaining(), daysRemaining, params.BufferCapacity,
		params.RevisionRatio(daysRemaining), params.VelocityTargetMultiplier)
	actual := ActualVelocity(avg7, avg14)
	ratio := Ratio(actual, required)

	return &domain.VelocitySnapshot{
		LearnerID:            profile.LearnerID,
		Date:                 day,
		RequiredVelocity:     domain.Round2(required),
		Actual7d:             domain.Round2(avg7),
		Actual14d:            domain.Round2(avg14),
		ActualVelocity:       domain.Round2(actual),
		Ratio:                domain.Round2(ratio),
		Status:               domain.ClassifyVelocity(ratio),
		Trend:                domain.ClassifyTrend(avg7, avg14),
		WeightedCompletion:   g.WeightedCompletion(),
		UnweightedCompletion: g.UnweightedCompletion(),
		CompletedGravity:     g.Completed,
		RemainingGravity:     g.Remaining(),
		TotalGravity:         g.Total,
		DaysRemaining:        daysRemaining,
		SignalVelocity:       domain.Round2(SignalVelocity(ratio)),
		Stress:               Stress(ratio, profile.BufferBalance),
		CreatedAt:            s.clock(),
	}, nil
}

// gravity sums the catalog position over subjects active in the learner's
// exam mode. Topics the learner deferred out of scope are excluded.
func (s *Service) gravity(ctx context.Context, profile *domain.LearnerProfile) (Gravity, error) {
	var g Gravity

	subjects, err := s.catalog.ActiveSubjectIDs(ctx, profile.ExamMode)
	if err != nil {
		return g, fmt.Errorf("active subjects: %w", err)
	}
	if len(subjects) == 0 {
		return g, nil
	}
	topics, err := s.catalog.ListTopics(ctx, subjects)
	if err != nil {
		return g, fmt.Errorf("list topics: %w", err)
	}
	statuses, err := s.statuses(ctx, profile.LearnerID)
	if err != nil {
		return g, err
	}

	for _, t := range topics {
		status := statuses[t.ID]
		if status == domain.TopicStatusDeferredScope {
			continue
		}
		g.Total += t.Gravity()
		g.TopicCount++
		if status.IsCovered() {
			g.Completed += t.Gravity()
			g.CoveredCount++
		}
	}
	return g, nil
}

func (s *Service) statuses(ctx context.Context, learnerID uuid.UUID) (map[uuid.UUID]domain.TopicStatus, error) {
	rows, err := s.progress.ListByLearner(ctx, learnerID)
	if err != nil {
		return nil, fmt.Errorf("list progress: %w", err)
	}
	out := make(map[uuid.UUID]domain.TopicStatus, len(rows))
	for _, p := range rows {
		out[p.TopicID] = p.Status
	}
	return out, nil
}
