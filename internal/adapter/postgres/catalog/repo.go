// Package catalog implements the subject/chapter/topic repository using
// PostgreSQL. Fixed statements are raw SQL; the topic filter is built with
// squirrel.
package catalog

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	postgres "github.com/heartmarshall/studyplanner-backend/internal/adapter/postgres"
	"github.com/heartmarshall/studyplanner-backend/internal/domain"
)

// Repo provides catalog persistence backed by PostgreSQL.
type Repo struct {
	db postgres.Querier
}

// New creates a new catalog repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

// ---------------------------------------------------------------------------
// SQL
// ---------------------------------------------------------------------------

const listSubjectsSQL = `
SELECT id, name, exam_modes, created_at
FROM subjects
ORDER BY name`

// A subject with no exam modes is active in every mode; full mode
// activates everything.
const activeSubjectIDsSQL = `
SELECT id FROM subjects
WHERE $1 = 'full' OR cardinality(exam_modes) = 0 OR $1 = ANY(exam_modes)
ORDER BY name`

const topicColumns = `id, subject_id, chapter_id, name, pyq_weight, importance, difficulty,
       estimated_hours, estimated_micro_minutes`

const getTopicSQL = `SELECT ` + topicColumns + ` FROM topics WHERE id = $1`

const upsertSubjectSQL = `
INSERT INTO subjects (id, name, exam_modes)
VALUES ($1, $2, $3)
ON CONFLICT (name) DO UPDATE SET exam_modes = EXCLUDED.exam_modes
RETURNING id, created_at`

const upsertChapterSQL = `
INSERT INTO chapters (id, subject_id, name, position)
VALUES ($1, $2, $3, $4)
ON CONFLICT (subject_id, name) DO UPDATE SET position = EXCLUDED.position
RETURNING id`

const upsertTopicSQL = `
INSERT INTO topics (id, subject_id, chapter_id, name, pyq_weight, importance, difficulty,
                    estimated_hours, estimated_micro_minutes)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (chapter_id, name) DO UPDATE SET
    pyq_weight = EXCLUDED.pyq_weight,
    importance = EXCLUDED.importance,
    difficulty = EXCLUDED.difficulty,
    estimated_hours = EXCLUDED.estimated_hours,
    estimated_micro_minutes = EXCLUDED.estimated_micro_minutes
RETURNING id`

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// ListSubjects returns all subjects ordered by name.
func (r *Repo) ListSubjects(ctx context.Context) ([]domain.Subject, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	rows, err := q.Query(ctx, listSubjectsSQL)
	if err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}
	subjects, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Subject, error) {
		var (
			s     domain.Subject
			modes []string
		)
		if err := row.Scan(&s.ID, &s.Name, &modes, &s.CreatedAt); err != nil {
			return s, err
		}
		for _, m := range modes {
			s.ExamModes = append(s.ExamModes, domain.ExamMode(m))
		}
		return s, nil
	})
	if err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}
	return subjects, nil
}

// ActiveSubjectIDs returns the subjects studied in the given exam mode.
func (r *Repo) ActiveSubjectIDs(ctx context.Context, mode domain.ExamMode) ([]uuid.UUID, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	rows, err := q.Query(ctx, activeSubjectIDsSQL, string(mode))
	if err != nil {
		return nil, fmt.Errorf("active subjects: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
	if err != nil {
		return nil, fmt.Errorf("active subjects: %w", err)
	}
	return ids, nil
}

// ListTopics returns topics of the given subjects, or all topics when
// subjectIDs is nil. An empty non-nil slice matches nothing.
func (r *Repo) ListTopics(ctx context.Context, subjectIDs []uuid.UUID) ([]domain.Topic, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	b := postgres.Builder.
		Select(topicColumns).
		From("topics").
		OrderBy("name", "id")
	if subjectIDs != nil {
		b = b.Where("subject_id = ANY(?)", subjectIDs)
	}

	rows, err := postgres.QueryBuilt(ctx, q, b)
	if err != nil {
		return nil, fmt.Errorf("list topics: %w", err)
	}
	topics, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Topic, error) {
		return scanTopic(row)
	})
	if err != nil {
		return nil, fmt.Errorf("list topics: %w", err)
	}
	return topics, nil
}

// GetTopic returns one topic.
func (r *Repo) GetTopic(ctx context.Context, topicID uuid.UUID) (*domain.Topic, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	t, err := scanTopic(q.QueryRow(ctx, getTopicSQL, topicID))
	if err != nil {
		return nil, postgres.MapError(err, "topic", topicID)
	}
	return &t, nil
}

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// UpsertSubject inserts the subject or updates the one with the same name.
// The stored ID is written back to sub.
func (r *Repo) UpsertSubject(ctx context.Context, sub *domain.Subject) error {
	q := postgres.QuerierFromCtx(ctx, r.db)

	if sub.ID == uuid.Nil {
		sub.ID = uuid.New()
	}
	modes := make([]string, 0, len(sub.ExamModes))
	for _, m := range sub.ExamModes {
		modes = append(modes, string(m))
	}

	err := q.QueryRow(ctx, upsertSubjectSQL, sub.ID, sub.Name, modes).Scan(&sub.ID, &sub.CreatedAt)
	if err != nil {
		return postgres.MapError(err, "subject", sub.Name)
	}
	return nil
}

// UpsertChapter inserts the chapter or updates the one with the same
// subject and name.
func (r *Repo) UpsertChapter(ctx context.Context, ch *domain.Chapter) error {
	q := postgres.QuerierFromCtx(ctx, r.db)

	if ch.ID == uuid.Nil {
		ch.ID = uuid.New()
	}
	err := q.QueryRow(ctx, upsertChapterSQL, ch.ID, ch.SubjectID, ch.Name, ch.Position).Scan(&ch.ID)
	if err != nil {
		return postgres.MapError(err, "chapter", ch.Name)
	}
	return nil
}

// UpsertTopic inserts the topic or updates the one with the same chapter
// and name.
func (r *Repo) UpsertTopic(ctx context.Context, t *domain.Topic) error {
	q := postgres.QuerierFromCtx(ctx, r.db)

	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	err := q.QueryRow(ctx, upsertTopicSQL,
		t.ID, t.SubjectID, t.ChapterID, t.Name, t.PYQWeight, t.Importance, t.Difficulty,
		t.EstimatedHours, t.EstimatedMicroMinutes,
	).Scan(&t.ID)
	if err != nil {
		return postgres.MapError(err, "topic", t.Name)
	}
	return nil
}

func scanTopic(row pgx.Row) (domain.Topic, error) {
	var t domain.Topic
	err := row.Scan(
		&t.ID, &t.SubjectID, &t.ChapterID, &t.Name, &t.PYQWeight, &t.Importance, &t.Difficulty,
		&t.EstimatedHours, &t.EstimatedMicroMinutes,
	)
	return t, err
}
