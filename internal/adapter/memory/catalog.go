package memory

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/heartmarshall/studyplanner-backend/internal/domain"
)

// CatalogRepo stores subjects, chapters and topics.
type CatalogRepo struct{ s *Store }

func (s *Store) Catalog() *CatalogRepo { return &CatalogRepo{s: s} }

func (r *CatalogRepo) ListSubjects(_ context.Context) ([]domain.Subject, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]domain.Subject, 0, len(r.s.subjects))
	for _, sub := range r.s.subjects {
		out = append(out, sub)
	}
	slices.SortFunc(out, func(a, b domain.Subject) int { return strings.Compare(a.Name, b.Name) })
	return out, nil
}

func (r *CatalogRepo) ActiveSubjectIDs(ctx context.Context, mode domain.ExamMode) ([]uuid.UUID, error) {
	subjects, _ := r.ListSubjects(ctx)
	var ids []uuid.UUID
	for _, sub := range subjects {
		if sub.ActiveIn(mode) {
			ids = append(ids, sub.ID)
		}
	}
	return ids, nil
}

// ListTopics returns topics of the given subjects, or all topics when
// subjectIDs is nil.
func (r *CatalogRepo) ListTopics(_ context.Context, subjectIDs []uuid.UUID) ([]domain.Topic, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []domain.Topic
	for _, t := range r.s.topics {
		if subjectIDs != nil && !slices.Contains(subjectIDs, t.SubjectID) {
			continue
		}
		out = append(out, t)
	}
	slices.SortFunc(out, func(a, b domain.Topic) int { return strings.Compare(a.Name, b.Name) })
	return out, nil
}

func (r *CatalogRepo) GetTopic(_ context.Context, topicID uuid.UUID) (*domain.Topic, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	t, ok := r.s.topics[topicID]
	if !ok {
		return nil, fmt.Errorf("topic %s: %w", topicID, domain.ErrNotFound)
	}
	return &t, nil
}

func (r *CatalogRepo) UpsertSubject(_ context.Context, sub *domain.Subject) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for id, existing := range r.s.subjects {
		if existing.Name == sub.Name {
			sub.ID = id
			break
		}
	}
	if sub.ID == uuid.Nil {
		sub.ID = uuid.New()
	}
	r.s.subjects[sub.ID] = *sub
	return nil
}

func (r *CatalogRepo) UpsertChapter(_ context.Context, ch *domain.Chapter) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.subjects[ch.SubjectID]; !ok {
		return fmt.Errorf("subject %s: %w", ch.SubjectID, domain.ErrNotFound)
	}
	for id, existing := range r.s.chapters {
		if existing.SubjectID == ch.SubjectID && existing.Name == ch.Name {
			ch.ID = id
			break
		}
	}
	if ch.ID == uuid.Nil {
		ch.ID = uuid.New()
	}
	r.s.chapters[ch.ID] = *ch
	return nil
}

func (r *CatalogRepo) UpsertTopic(_ context.Context, t *domain.Topic) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.chapters[t.ChapterID]; !ok {
		return fmt.Errorf("chapter %s: %w", t.ChapterID, domain.ErrNotFound)
	}
	for id, existing := range r.s.topics {
		if existing.ChapterID == t.ChapterID && existing.Name == t.Name {
			t.ID = id
			break
		}
	}
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	r.s.topics[t.ID] = *t
	return nil
}
