package memory

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/studyplanner-backend/internal/domain"
)

// PlanRepo stores daily plans and their items.
type PlanRepo struct{ s *Store }

func (s *Store) Plans() *PlanRepo { return &PlanRepo{s: s} }

func (r *PlanRepo) itemsOf(planID uuid.UUID) []domain.PlanItem {
	var items []domain.PlanItem
	for _, it := range r.s.items {
		if it.PlanID == planID {
			items = append(items, it)
		}
	}
	slices.SortFunc(items, func(a, b domain.PlanItem) int { return a.DisplayOrder - b.DisplayOrder })
	return items
}

func (r *PlanRepo) GetByDate(_ context.Context, learnerID uuid.UUID, date time.Time) (*domain.DailyPlan, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.plans[keyOn(learnerID, date)]
	if !ok {
		return nil, fmt.Errorf("plan %s: %w", domain.Day(date).Format(time.DateOnly), domain.ErrNotFound)
	}
	p.Items = r.itemsOf(p.ID)
	return &p, nil
}

// Create stores the plan and its items. A second plan for the same
// learner and date fails with ErrAlreadyExists.
func (r *PlanRepo) Create(_ context.Context, p *domain.DailyPlan) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	key := keyOn(p.LearnerID, p.Date)
	if _, ok := r.s.plans[key]; ok {
		return fmt.Errorf("plan %s: %w", key.day.Format(time.DateOnly), domain.ErrAlreadyExists)
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.Date = key.day
	for i := range p.Items {
		it := &p.Items[i]
		if it.ID == uuid.Nil {
			it.ID = uuid.New()
		}
		it.PlanID, it.LearnerID, it.PlanDate = p.ID, p.LearnerID, p.Date
		r.s.items[it.ID] = *it
	}
	stored := *p
	stored.Items = nil
	r.s.plans[key] = stored
	return nil
}

func (r *PlanRepo) Delete(_ context.Context, learnerID uuid.UUID, date time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	key := keyOn(learnerID, date)
	p, ok := r.s.plans[key]
	if !ok {
		return nil
	}
	for id, it := range r.s.items {
		if it.PlanID == p.ID {
			delete(r.s.items, id)
		}
	}
	delete(r.s.plans, key)
	return nil
}

func (r *PlanRepo) AddItem(_ context.Context, it *domain.PlanItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var plan *domain.DailyPlan
	for _, p := range r.s.plans {
		if p.ID == it.PlanID {
			plan = &p
			break
		}
	}
	if plan == nil {
		return fmt.Errorf("plan %s: %w", it.PlanID, domain.ErrNotFound)
	}
	if it.ID == uuid.Nil {
		it.ID = uuid.New()
	}
	it.LearnerID, it.PlanDate = plan.LearnerID, plan.Date
	r.s.items[it.ID] = *it
	return nil
}

func (r *PlanRepo) GetItem(_ context.Context, itemID uuid.UUID) (*domain.PlanItem, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	it, ok := r.s.items[itemID]
	if !ok {
		return nil, fmt.Errorf("plan item %s: %w", itemID, domain.ErrNotFound)
	}
	return &it, nil
}

func (r *PlanRepo) UpdateItem(_ context.Context, it *domain.PlanItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.items[it.ID]
	if !ok {
		return fmt.Errorf("plan item %s: %w", it.ID, domain.ErrNotFound)
	}
	existing.Status = it.Status
	existing.ActualHours = it.ActualHours
	existing.CompletedAt = it.CompletedAt
	r.s.items[it.ID] = existing
	return nil
}

// StudyDays aggregates completed items per plan date within [from, to].
// Gravity counts first-pass work only (new and stretch items).
func (r *PlanRepo) StudyDays(_ context.Context, learnerID uuid.UUID, from, to time.Time) ([]domain.StudyDay, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	byDay := map[time.Time]*domain.StudyDay{}
	diffSum := map[time.Time]int{}
	for _, it := range r.s.items {
		if it.LearnerID != learnerID || it.Status != domain.PlanItemCompleted || !inRange(it.PlanDate, from, to) {
			continue
		}
		d := byDay[it.PlanDate]
		if d == nil {
			d = &domain.StudyDay{Date: it.PlanDate}
			byDay[it.PlanDate] = d
		}
		hours := it.EstimatedHours
		if it.ActualHours != nil {
			hours = *it.ActualHours
		}
		d.Hours += hours
		d.ItemsCompleted++
		diffSum[it.PlanDate] += it.Difficulty
		if it.Type == domain.PlanItemNew || it.Type == domain.PlanItemStretch {
			d.Gravity += it.Gravity
		}
	}

	out := make([]domain.StudyDay, 0, len(byDay))
	for day, d := range byDay {
		d.AvgDifficulty = float64(diffSum[day]) / float64(d.ItemsCompleted)
		d.Hours = domain.Round2(d.Hours)
		out = append(out, *d)
	}
	slices.SortFunc(out, func(a, b domain.StudyDay) int { return a.Date.Compare(b.Date) })
	return out, nil
}

// RecentSubjectCounts counts, per subject, how many of the learner's last n
// plans before the given date contain it.
func (r *PlanRepo) RecentSubjectCounts(_ context.Context, learnerID uuid.UUID, before time.Time, n int) (map[uuid.UUID]int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var plans []domain.DailyPlan
	for k, p := range r.s.plans {
		if k.learner == learnerID && k.day.Before(domain.Day(before)) {
			plans = append(plans, p)
		}
	}
	slices.SortFunc(plans, func(a, b domain.DailyPlan) int { return b.Date.Compare(a.Date) })
	if len(plans) > n {
		plans = plans[:n]
	}

	counts := map[uuid.UUID]int{}
	for _, p := range plans {
		seen := map[uuid.UUID]bool{}
		for _, it := range r.itemsOf(p.ID) {
			if !seen[it.SubjectID] {
				seen[it.SubjectID] = true
				counts[it.SubjectID]++
			}
		}
	}
	return counts, nil
}

func (r *PlanRepo) DeferredTopicIDs(_ context.Context, learnerID uuid.UUID, date time.Time) ([]uuid.UUID, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.plans[keyOn(learnerID, date)]
	if !ok {
		return nil, nil
	}
	var ids []uuid.UUID
	for _, it := range r.itemsOf(p.ID) {
		if it.Status == domain.PlanItemDeferred {
			ids = append(ids, it.TopicID)
		}
	}
	return ids, nil
}
