package memory

import (
	"context"
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/heartmarshall/studyplanner-backend/internal/domain"
)

// ProgressRepo stores per learner and topic progress plus the subject cache.
type ProgressRepo struct{ s *Store }

func (s *Store) Progress() *ProgressRepo { return &ProgressRepo{s: s} }

func (r *ProgressRepo) Get(_ context.Context, learnerID, topicID uuid.UUID) (*domain.Progress, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.progress[pairKey{learnerID, topicID}]
	if !ok {
		return nil, fmt.Errorf("progress %s/%s: %w", learnerID, topicID, domain.ErrNotFound)
	}
	return &p, nil
}

func (r *ProgressRepo) ListByLearner(_ context.Context, learnerID uuid.UUID) ([]domain.Progress, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []domain.Progress
	for k, p := range r.s.progress {
		if k.learner == learnerID {
			out = append(out, p)
		}
	}
	slices.SortFunc(out, func(a, b domain.Progress) int { return compareUUID(a.TopicID, b.TopicID) })
	return out, nil
}

func (r *ProgressRepo) Upsert(_ context.Context, p *domain.Progress) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.topics[p.TopicID]; !ok {
		return fmt.Errorf("topic %s: %w", p.TopicID, domain.ErrNotFound)
	}
	r.s.progress[pairKey{p.LearnerID, p.TopicID}] = *p
	return nil
}

func (r *ProgressRepo) UpsertSubjectConfidence(_ context.Context, sc domain.SubjectConfidence) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.subjectConf[pairKey{sc.LearnerID, sc.SubjectID}] = sc
	return nil
}

func (r *ProgressRepo) ListSubjectConfidence(_ context.Context, learnerID uuid.UUID) ([]domain.SubjectConfidence, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []domain.SubjectConfidence
	for k, sc := range r.s.subjectConf {
		if k.learner == learnerID {
			out = append(out, sc)
		}
	}
	slices.SortFunc(out, func(a, b domain.SubjectConfidence) int { return compareUUID(a.SubjectID, b.SubjectID) })
	return out, nil
}

// AuditRepo stores the append-only status change and confidence logs.
type AuditRepo struct{ s *Store }

func (s *Store) Audit() *AuditRepo { return &AuditRepo{s: s} }

func (r *AuditRepo) LogStatusChange(_ context.Context, c domain.StatusChange) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	r.s.statusChanges = append(r.s.statusChanges, c)
	return nil
}

func (r *AuditRepo) CreateConfidenceSnapshot(_ context.Context, snap domain.ConfidenceSnapshot) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if snap.ID == uuid.Nil {
		snap.ID = uuid.New()
	}
	r.s.confSnapshots = append(r.s.confSnapshots, snap)
	return nil
}

func (r *AuditRepo) ListStatusChanges(_ context.Context, learnerID uuid.UUID) ([]domain.StatusChange, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []domain.StatusChange
	for _, c := range r.s.statusChanges {
		if c.LearnerID == learnerID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *AuditRepo) ListConfidenceSnapshots(_ context.Context, learnerID uuid.UUID) ([]domain.ConfidenceSnapshot, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []domain.ConfidenceSnapshot
	for _, c := range r.s.confSnapshots {
		if c.LearnerID == learnerID {
			out = append(out, c)
		}
	}
	return out, nil
}

// InsightRepo serves the weakness-radar sets and mock-test accuracy.
type InsightRepo struct{ s *Store }

func (s *Store) Insights() *InsightRepo { return &InsightRepo{s: s} }

func (r *InsightRepo) MockAccuracy(_ context.Context, learnerID uuid.UUID) (map[uuid.UUID]float64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := map[uuid.UUID]float64{}
	for k, v := range r.s.mockAccuracy {
		if k.learner == learnerID {
			out[k.other] = v
		}
	}
	return out, nil
}

func (r *InsightRepo) Insights(_ context.Context, learnerID uuid.UUID) (domain.InsightSets, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	sets := domain.EmptyInsights()
	for k, kinds := range r.s.insights {
		if k.learner != learnerID {
			continue
		}
		for kind := range kinds {
			switch kind {
			case domain.InsightFalseSecurity:
				sets.FalseSecurity[k.other] = true
			case domain.InsightBlindSpot:
				sets.BlindSpot[k.other] = true
			case domain.InsightOverRevised:
				sets.OverRevised[k.other] = true
			}
		}
	}
	return sets, nil
}

// SetMockAccuracy records the latest mock accuracy and mirrors it onto the
// progress row when one exists.
func (r *InsightRepo) SetMockAccuracy(_ context.Context, learnerID, topicID uuid.UUID, accuracy float64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	key := pairKey{learnerID, topicID}
	r.s.mockAccuracy[key] = accuracy
	if p, ok := r.s.progress[key]; ok {
		p.MockAccuracy = &accuracy
		r.s.progress[key] = p
	}
	return nil
}

func (r *InsightRepo) SetInsight(_ context.Context, learnerID, topicID uuid.UUID, kind domain.InsightKind) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	key := pairKey{learnerID, topicID}
	if r.s.insights[key] == nil {
		r.s.insights[key] = map[domain.InsightKind]bool{}
	}
	r.s.insights[key][kind] = true
	return nil
}
