package confidence

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/studyplanner-backend/internal/domain"
	"github.com/heartmarshall/studyplanner-backend/internal/service/srs/fsrs"
)

// decayWindowDays is the round-robin spread for fresh-to-fading reschedules.
const decayWindowDays = 3

type topicUpdate struct {
	progress  domain.Progress
	retrieval float64
	snapshot  bool
	downgrade *domain.StatusChange
	decayDay  *time.Time
	topic     domain.Topic
}

// RecalculateAll recomputes confidence for every touched topic of the
// learner, applies threshold-crossing side effects and refreshes the
// per-subject confidence cache.
func (s *Service) RecalculateAll(ctx context.Context, learnerID uuid.UUID) (*RecalculateResult, error) {
	profile, err := s.learners.Get(ctx, learnerID)
	if err != nil {
		return nil, fmt.Errorf("get learner: %w", err)
	}
	rows, err := s.progress.ListByLearner(ctx, learnerID)
	if err != nil {
		return nil, fmt.Errorf("list progress: %w", err)
	}
	cardList, err := s.cards.ListByLearner(ctx, learnerID)
	if err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}
	topicList, err := s.catalog.ListTopics(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("list topics: %w", err)
	}

	cards := make(map[uuid.UUID]domain.Card, len(cardList))
	for _, c := range cardList {
		cards[c.TopicID] = c
	}
	topics := make(map[uuid.UUID]domain.Topic, len(topicList))
	for _, t := range topicList {
		topics[t.ID] = t
	}

	now := s.clock()
	today := domain.LocalDay(now, profile.Location())
	res := &RecalculateResult{}

	var updates []topicUpdate
	subjects := map[uuid.UUID]*subjectAgg{}
	decayed := 0

	for _, p := range rows {
		if p.Status == domain.TopicStatusUntouched {
			continue
		}
		topic, ok := topics[p.TopicID]
		if !ok {
			continue
		}
		var card *domain.Card
		if c, ok := cards[p.TopicID]; ok {
			card = &c
		}
		stability, elapsed, ok := MemoryState(p, card, now)
		if !ok {
			continue
		}

		score, retrieval := Compute(stability, elapsed, p.MockAccuracy)
		oldConf := p.ConfidenceStatus
		newConf := domain.ClassifyConfidence(score)

		u := topicUpdate{progress: p, retrieval: retrieval, topic: topic}
		u.snapshot = score != p.ConfidenceScore || newConf != oldConf
		u.progress.ConfidenceScore = score
		u.progress.ConfidenceStatus = newConf
		u.progress.UpdatedAt = now
		res.Recalculated++

		if oldConf != newConf {
			res.Transitions++
		}
		if oldConf == domain.ConfidenceFresh && newConf == domain.ConfidenceFading {
			day := today.AddDate(0, 0, 1+decayed%decayWindowDays)
			u.decayDay = &day
			decayed++
		}
		if newConf == domain.ConfidenceDecayed &&
			(p.Status == domain.TopicStatusExamReady || p.Status == domain.TopicStatusRevised) {
			u.downgrade = &domain.StatusChange{
				ID:        uuid.New(),
				LearnerID: learnerID,
				TopicID:   p.TopicID,
				OldStatus: p.Status,
				NewStatus: domain.TopicStatusFirstPass,
				Reason:    domain.ReasonConfidenceDecayDowngrade,
				ChangedAt: now,
			}
			u.progress.Status = domain.TopicStatusFirstPass
		}

		agg := subjects[topic.SubjectID]
		if agg == nil {
			agg = &subjectAgg{}
			subjects[topic.SubjectID] = agg
		}
		agg.add(score, topic.Gravity())

		updates = append(updates, u)
	}

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		for i := range updates {
			u := &updates[i]
			if err := s.progress.Upsert(txCtx, &u.progress); err != nil {
				return fmt.Errorf("upsert progress: %w", err)
			}
			if u.snapshot {
				if err := s.audit.CreateConfidenceSnapshot(txCtx, domain.ConfidenceSnapshot{
					ID:         uuid.New(),
					LearnerID:  learnerID,
					TopicID:    u.progress.TopicID,
					Score:      u.progress.ConfidenceScore,
					Status:     u.progress.ConfidenceStatus,
					Retrieval:  u.retrieval,
					RecordedAt: now,
				}); err != nil {
					return fmt.Errorf("confidence snapshot: %w", err)
				}
			}
			if u.downgrade != nil {
				if err := s.audit.LogStatusChange(txCtx, *u.downgrade); err != nil {
					return fmt.Errorf("log status change: %w", err)
				}
			}
			if u.decayDay != nil {
				if err := s.scheduleDecay(txCtx, learnerID, u.topic, *u.decayDay, now); err != nil {
					return err
				}
			}
		}
		for subjectID, agg := range subjects {
			sc := agg.result(learnerID, subjectID, now)
			if err := s.progress.UpsertSubjectConfidence(txCtx, sc); err != nil {
				return fmt.Errorf("upsert subject confidence: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, u := range updates {
		if u.decayDay != nil {
			res.DecayScheduled++
		}
		if u.downgrade != nil {
			res.Downgraded = append(res.Downgraded, u.progress.TopicID)
			res.Intents = append(res.Intents, domain.NewIntent(domain.IntentTopicDowngraded, learnerID, now, map[string]any{
				"topic_id":   u.progress.TopicID.String(),
				"old_status": u.downgrade.OldStatus.String(),
				"confidence": u.progress.ConfidenceScore,
			}))
		}
	}
	for subjectID, agg := range subjects {
		if agg.result(learnerID, subjectID, now).AtRisk {
			res.SubjectsAtRisk = append(res.SubjectsAtRisk, subjectID)
		}
	}

	s.log.InfoContext(ctx, "confidence recalculated",
		slog.String("learner_id", learnerID.String()),
		slog.Int("recalculated", res.Recalculated),
		slog.Int("transitions", res.Transitions),
		slog.Int("downgraded", len(res.Downgraded)),
		slog.Int("decay_scheduled", res.DecayScheduled),
		slog.Int("subjects_at_risk", len(res.SubjectsAtRisk)),
	)

	return res, nil
}

// MemoryState picks the stability and elapsed days for a progress row: the
// card's when it has been reviewed, else the fallback stability measured
// from the last touch. It reports false when neither is available.
func MemoryState(p domain.Progress, card *domain.Card, now time.Time) (stability, elapsedDays float64, ok bool) {
	if card != nil && card.LastReview != nil && card.Stability > 0 {
		return card.Stability, fsrs.ElapsedDays(*card.LastReview, now), true
	}
	if p.LastTouched != nil {
		return FallbackStability, fsrs.ElapsedDays(*p.LastTouched, now), true
	}
	return 0, 0, false
}

// scheduleDecay adds a decay_revision item to the plan for day when one
// exists and has room, otherwise queues a pending decay schedule row.
func (s *Service) scheduleDecay(ctx context.Context, learnerID uuid.UUID, topic domain.Topic, day, now time.Time) error {
	plan, err := s.plans.GetByDate(ctx, learnerID, day)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("get plan: %w", err)
	}

	if plan != nil && countType(plan.Items, domain.PlanItemDecayRevision) < s.cfg.DecayItemsPerPlan {
		item := &domain.PlanItem{
			ID:             uuid.New(),
			PlanID:         plan.ID,
			TopicID:        topic.ID,
			SubjectID:      topic.SubjectID,
			Type:           domain.PlanItemDecayRevision,
			EstimatedHours: topic.RevisionHours(),
			PriorityScore:  topic.RevisionPriority(),
			DisplayOrder:   len(plan.Items),
			Status:         domain.PlanItemPending,
			Difficulty:     topic.Difficulty,
			Gravity:        topic.Gravity(),
			CreatedAt:      now,
		}
		if err := s.plans.AddItem(ctx, item); err != nil {
			return fmt.Errorf("add decay item: %w", err)
		}
		return nil
	}

	if err := s.schedules.Create(ctx, &domain.ReviewSchedule{
		ID:        uuid.New(),
		LearnerID: learnerID,
		TopicID:   topic.ID,
		DueDate:   day,
		Source:    domain.ScheduleSourceDecay,
		Status:    domain.ScheduleStatusPending,
		CreatedAt: now,
	}); err != nil {
		return fmt.Errorf("create decay schedule: %w", err)
	}
	return nil
}

func countType(items []domain.PlanItem, typ domain.PlanItemType) int {
	n := 0
	for _, it := range items {
		if it.Type == typ {
			n++
		}
	}
	return n
}

type subjectAgg struct {
	weighted float64
	weight   float64
	count    int
}

func (a *subjectAgg) add(score int, gravity float64) {
	a.weighted += float64(score) * gravity
	a.weight += gravity
	a.count++
}

func (a *subjectAgg) result(learnerID, subjectID uuid.UUID, now time.Time) domain.SubjectConfidence {
	var avg float64
	if a.weight > 0 {
		avg = domain.Round2(a.weighted / a.weight)
	}
	return domain.SubjectConfidence{
		LearnerID:  learnerID,
		SubjectID:  subjectID,
		Weighted:   avg,
		TopicCount: a.count,
		AtRisk:     avg < domain.SubjectAtRiskBelow,
		UpdatedAt:  now,
	}
}
