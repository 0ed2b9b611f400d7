package velocity

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/studyplanner-backend/internal/domain"
)

// CheckCascade fires when the velocity ratio stayed below 0.8 on the last
// three snapshots, or when the buffer is in debt. A fired cascade carries
// the remediation options that apply to the learner right now.
func (s *Service) CheckCascade(ctx context.Context, learnerID uuid.UUID, date time.Time) (*domain.CascadeResult, error) {
	day := domain.Day(date)

	profile, err := s.learners.Get(ctx, learnerID)
	if err != nil {
		return nil, fmt.Errorf("get learner: %w", err)
	}

	snaps, err := s.snapshots.ListSnapshots(ctx, learnerID, day.AddDate(0, 0, -(cascadeStreak-1)), day)
	if err != nil {
		return nil, fmt.Errorf("list velocity snapshots: %w", err)
	}

	res := &domain.CascadeResult{}
	switch {
	case lowStreak(snaps):
		res.Reason = domain.CascadeVelocityLow3d
	case profile.BufferBalance < 0:
		res.Reason = domain.CascadeBufferDebt
	default:
		return res, nil
	}
	res.Triggered = true
	res.Backlog = Backlog(snaps)

	strategies, err := s.strategies(ctx, profile, res.Backlog)
	if err != nil {
		return nil, err
	}
	res.Strategies = strategies
	res.Intents = []domain.Intent{domain.NewIntent(domain.IntentCascadeTriggered, learnerID, s.clock(), map[string]any{
		"reason":  res.Reason,
		"backlog": res.Backlog,
	})}

	s.log.InfoContext(ctx, "cascade triggered",
		slog.String("learner_id", learnerID.String()),
		slog.String("reason", res.Reason),
		slog.Float64("backlog", res.Backlog),
		slog.Int("strategies", len(strategies)),
	)
	return res, nil
}

func lowStreak(snaps []domain.VelocitySnapshot) bool {
	if len(snaps) < cascadeStreak {
		return false
	}
	for _, snap := range snaps {
		if snap.Ratio >= cascadeRatio {
			return false
		}
	}
	return true
}

// Backlog is the gravity shortfall accumulated over the snapshots.
func Backlog(snaps []domain.VelocitySnapshot) float64 {
	var sum float64
	for _, snap := range snaps {
		sum += math.Max(0, snap.RequiredVelocity-snap.ActualVelocity)
	}
	return domain.Round2(sum)
}

func (s *Service) strategies(ctx context.Context, profile *domain.LearnerProfile, backlog float64) ([]domain.CascadeStrategy, error) {
	var out []domain.CascadeStrategy

	if backlog > 0 {
		out = append(out, domain.CascadeStrategy{
			Kind:          domain.CascadeAbsorbBacklog,
			GravityPerDay: domain.Round2(backlog / backlogSpreadDays),
		})
	}
	if profile.BufferBalance > 0 {
		out = append(out, domain.CascadeStrategy{
			Kind:            domain.CascadeConsumeBuffer,
			BufferAvailable: profile.BufferBalance,
		})
	}
	if profile.DailyHours+extraHoursStep <= maxDailyHours {
		out = append(out, domain.CascadeStrategy{
			Kind:             domain.CascadeIncreaseHours,
			ExtraHoursPerDay: extraHoursStep,
		})
	}

	deferIDs, deferGravity, err := s.scopeCut(ctx, profile, backlog)
	if err != nil {
		return nil, err
	}
	if len(deferIDs) > 0 {
		out = append(out, domain.CascadeStrategy{
			Kind:          domain.CascadeReduceScope,
			DeferTopicIDs: deferIDs,
			DeferGravity:  deferGravity,
		})
	}
	return out, nil
}

// scopeCut picks the lowest-gravity untouched topics until their gravity
// covers the backlog. At least one topic is picked when any is available.
func (s *Service) scopeCut(ctx context.Context, profile *domain.LearnerProfile, backlog float64) ([]uuid.UUID, float64, error) {
	subjects, err := s.catalog.ActiveSubjectIDs(ctx, profile.ExamMode)
	if err != nil {
		return nil, 0, fmt.Errorf("active subjects: %w", err)
	}
	if len(subjects) == 0 {
		return nil, 0, nil
	}
	topics, err := s.catalog.ListTopics(ctx, subjects)
	if err != nil {
		return nil, 0, fmt.Errorf("list topics: %w", err)
	}
	statuses, err := s.statuses(ctx, profile.LearnerID)
	if err != nil {
		return nil, 0, err
	}

	var candidates []domain.Topic
	for _, t := range topics {
		if st, ok := statuses[t.ID]; !ok || st == domain.TopicStatusUntouched {
			candidates = append(candidates, t)
		}
	}
	slices.SortStableFunc(candidates, func(a, b domain.Topic) int {
		return cmp.Compare(a.Gravity(), b.Gravity())
	})

	var ids []uuid.UUID
	var gravity float64
	for _, t := range candidates {
		if len(ids) > 0 && gravity >= backlog {
			break
		}
		ids = append(ids, t.ID)
		gravity += t.Gravity()
	}
	return ids, gravity, nil
}
