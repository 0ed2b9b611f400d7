package memory

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/studyplanner-backend/internal/domain"
)

// CardRepo stores spaced-repetition cards.
type CardRepo struct{ s *Store }

func (s *Store) Cards() *CardRepo { return &CardRepo{s: s} }

func (r *CardRepo) GetByTopic(_ context.Context, learnerID, topicID uuid.UUID) (*domain.Card, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.s.cards[pairKey{learnerID, topicID}]
	if !ok {
		return nil, fmt.Errorf("card %s/%s: %w", learnerID, topicID, domain.ErrNotFound)
	}
	return &c, nil
}

func (r *CardRepo) ListByLearner(_ context.Context, learnerID uuid.UUID) ([]domain.Card, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []domain.Card
	for k, c := range r.s.cards {
		if k.learner == learnerID {
			out = append(out, c)
		}
	}
	slices.SortFunc(out, func(a, b domain.Card) int { return compareUUID(a.TopicID, b.TopicID) })
	return out, nil
}

func (r *CardRepo) Upsert(_ context.Context, c *domain.Card) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	key := pairKey{c.LearnerID, c.TopicID}
	if existing, ok := r.s.cards[key]; ok {
		c.ID = existing.ID
		c.CreatedAt = existing.CreatedAt
	}
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	r.s.cards[key] = *c
	return nil
}

// ReviewLogRepo stores the append-only review log.
type ReviewLogRepo struct{ s *Store }

func (s *Store) ReviewLogs() *ReviewLogRepo { return &ReviewLogRepo{s: s} }

func (r *ReviewLogRepo) Create(_ context.Context, l *domain.ReviewLog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	r.s.reviewLogs = append(r.s.reviewLogs, *l)
	return nil
}

func (r *ReviewLogRepo) ListByLearner(_ context.Context, learnerID uuid.UUID) ([]domain.ReviewLog, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []domain.ReviewLog
	for _, l := range r.s.reviewLogs {
		if l.LearnerID == learnerID {
			out = append(out, l)
		}
	}
	return out, nil
}

// ScheduleRepo stores review_schedule rows.
type ScheduleRepo struct{ s *Store }

func (s *Store) Schedules() *ScheduleRepo { return &ScheduleRepo{s: s} }

func (r *ScheduleRepo) Create(_ context.Context, sch *domain.ReviewSchedule) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if sch.ID == uuid.Nil {
		sch.ID = uuid.New()
	}
	sch.DueDate = domain.Day(sch.DueDate)
	r.s.schedules = append(r.s.schedules, *sch)
	return nil
}

// ListDue returns pending rows due on or before until, oldest first.
func (r *ScheduleRepo) ListDue(_ context.Context, learnerID uuid.UUID, until time.Time) ([]domain.ReviewSchedule, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []domain.ReviewSchedule
	for _, sch := range r.s.schedules {
		if sch.LearnerID == learnerID && sch.Status == domain.ScheduleStatusPending &&
			!sch.DueDate.After(domain.Day(until)) {
			out = append(out, sch)
		}
	}
	slices.SortStableFunc(out, func(a, b domain.ReviewSchedule) int { return a.DueDate.Compare(b.DueDate) })
	return out, nil
}

// CompleteOldestPending marks the oldest pending row for the topic completed.
// It reports false when there was none.
func (r *ScheduleRepo) CompleteOldestPending(_ context.Context, learnerID, topicID uuid.UUID, at time.Time) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	idx := -1
	for i, sch := range r.s.schedules {
		if sch.LearnerID != learnerID || sch.TopicID != topicID || sch.Status != domain.ScheduleStatusPending {
			continue
		}
		if idx < 0 || sch.DueDate.Before(r.s.schedules[idx].DueDate) {
			idx = i
		}
	}
	if idx < 0 {
		return false, nil
	}
	r.s.schedules[idx].Status = domain.ScheduleStatusCompleted
	r.s.schedules[idx].CompletedAt = &at
	return true, nil
}

// SupersedePending retires pending rows of the given source for the topic.
func (r *ScheduleRepo) SupersedePending(_ context.Context, learnerID, topicID uuid.UUID, source domain.ScheduleSource) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	n := 0
	for i, sch := range r.s.schedules {
		if sch.LearnerID == learnerID && sch.TopicID == topicID &&
			sch.Source == source && sch.Status == domain.ScheduleStatusPending {
			r.s.schedules[i].Status = domain.ScheduleStatusSuperseded
			n++
		}
	}
	return n, nil
}

func (r *ScheduleRepo) ListByLearner(_ context.Context, learnerID uuid.UUID) ([]domain.ReviewSchedule, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []domain.ReviewSchedule
	for _, sch := range r.s.schedules {
		if sch.LearnerID == learnerID {
			out = append(out, sch)
		}
	}
	return out, nil
}
