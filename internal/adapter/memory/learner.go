package memory

import (
	"bytes"
	"context"
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/heartmarshall/studyplanner-backend/internal/domain"
)

// LearnerRepo stores learner profiles.
type LearnerRepo struct{ s *Store }

func (s *Store) Learners() *LearnerRepo { return &LearnerRepo{s: s} }

func cloneProfile(p domain.LearnerProfile) domain.LearnerProfile {
	p.WeakSubjectIDs = slices.Clone(p.WeakSubjectIDs)
	p.StrongSubjectIDs = slices.Clone(p.StrongSubjectIDs)
	return p
}

func (r *LearnerRepo) Get(_ context.Context, learnerID uuid.UUID) (*domain.LearnerProfile, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.learners[learnerID]
	if !ok {
		return nil, fmt.Errorf("learner %s: %w", learnerID, domain.ErrNotFound)
	}
	p = cloneProfile(p)
	return &p, nil
}

func (r *LearnerRepo) Create(_ context.Context, p *domain.LearnerProfile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.learners[p.LearnerID]; ok {
		return fmt.Errorf("learner %s: %w", p.LearnerID, domain.ErrAlreadyExists)
	}
	r.s.learners[p.LearnerID] = cloneProfile(*p)
	return nil
}

func (r *LearnerRepo) Update(_ context.Context, p *domain.LearnerProfile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.learners[p.LearnerID]; !ok {
		return fmt.Errorf("learner %s: %w", p.LearnerID, domain.ErrNotFound)
	}
	r.s.learners[p.LearnerID] = cloneProfile(*p)
	return nil
}

func (r *LearnerRepo) ListActiveIDs(_ context.Context) ([]uuid.UUID, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var ids []uuid.UUID
	for id, p := range r.s.learners {
		if p.Active {
			ids = append(ids, id)
		}
	}
	slices.SortFunc(ids, func(a, b uuid.UUID) int { return compareUUID(a, b) })
	return ids, nil
}

func compareUUID(a, b uuid.UUID) int {
	return bytes.Compare(a[:], b[:])
}
