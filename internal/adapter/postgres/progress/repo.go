// Package progress implements the topic progress and subject confidence
// repository using PostgreSQL.
package progress

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	postgres "github.com/heartmarshall/studyplanner-backend/internal/adapter/postgres"
	"github.com/heartmarshall/studyplanner-backend/internal/domain"
)

// Repo provides progress persistence backed by PostgreSQL.
type Repo struct {
	db postgres.Querier
}

// New creates a new progress repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

// ---------------------------------------------------------------------------
// SQL
// ---------------------------------------------------------------------------

const progressColumns = `learner_id, topic_id, status, confidence_score, confidence_status,
       revision_count, mock_accuracy, last_touched, updated_at`

const getSQL = `SELECT ` + progressColumns + `
FROM topic_progress
WHERE learner_id = $1 AND topic_id = $2`

const listByLearnerSQL = `SELECT ` + progressColumns + `
FROM topic_progress
WHERE learner_id = $1
ORDER BY topic_id`

const upsertSuffix = `ON CONFLICT (learner_id, topic_id) DO UPDATE SET
    status = EXCLUDED.status,
    confidence_score = EXCLUDED.confidence_score,
    confidence_status = EXCLUDED.confidence_status,
    revision_count = EXCLUDED.revision_count,
    mock_accuracy = EXCLUDED.mock_accuracy,
    last_touched = EXCLUDED.last_touched,
    updated_at = EXCLUDED.updated_at`

const upsertSubjectConfidenceSQL = `
INSERT INTO subject_confidence (learner_id, subject_id, weighted, topic_count, at_risk, updated_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (learner_id, subject_id) DO UPDATE SET
    weighted = EXCLUDED.weighted,
    topic_count = EXCLUDED.topic_count,
    at_risk = EXCLUDED.at_risk,
    updated_at = EXCLUDED.updated_at`

const listSubjectConfidenceSQL = `
SELECT learner_id, subject_id, weighted, topic_count, at_risk, updated_at
FROM subject_confidence
WHERE learner_id = $1
ORDER BY subject_id`

// ---------------------------------------------------------------------------
// Topic progress
// ---------------------------------------------------------------------------

// Get returns one progress row.
func (r *Repo) Get(ctx context.Context, learnerID, topicID uuid.UUID) (*domain.Progress, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	p, err := scanProgress(q.QueryRow(ctx, getSQL, learnerID, topicID))
	if err != nil {
		return nil, postgres.MapError(err, "progress", topicID)
	}
	return &p, nil
}

// ListByLearner returns every progress row of the learner.
func (r *Repo) ListByLearner(ctx context.Context, learnerID uuid.UUID) ([]domain.Progress, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	rows, err := q.Query(ctx, listByLearnerSQL, learnerID)
	if err != nil {
		return nil, fmt.Errorf("list progress: %w", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Progress, error) {
		return scanProgress(row)
	})
	if err != nil {
		return nil, fmt.Errorf("list progress: %w", err)
	}
	return out, nil
}

// Upsert writes the full row keyed by (learner, topic).
func (r *Repo) Upsert(ctx context.Context, p *domain.Progress) error {
	q := postgres.QuerierFromCtx(ctx, r.db)

	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = time.Now().UTC()
	}
	b := postgres.Builder.
		Insert("topic_progress").
		Columns("learner_id", "topic_id", "status", "confidence_score", "confidence_status",
			"revision_count", "mock_accuracy", "last_touched", "updated_at").
		Values(p.LearnerID, p.TopicID, string(p.Status), p.ConfidenceScore, string(p.ConfidenceStatus),
			p.RevisionCount, p.MockAccuracy, p.LastTouched, p.UpdatedAt).
		Suffix(upsertSuffix)

	if _, err := postgres.ExecBuilt(ctx, q, b); err != nil {
		return postgres.MapError(err, "progress", p.TopicID)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Subject confidence cache
// ---------------------------------------------------------------------------

// UpsertSubjectConfidence replaces the cached weighted confidence of a subject.
func (r *Repo) UpsertSubjectConfidence(ctx context.Context, sc domain.SubjectConfidence) error {
	q := postgres.QuerierFromCtx(ctx, r.db)

	if sc.UpdatedAt.IsZero() {
		sc.UpdatedAt = time.Now().UTC()
	}
	_, err := q.Exec(ctx, upsertSubjectConfidenceSQL,
		sc.LearnerID, sc.SubjectID, sc.Weighted, sc.TopicCount, sc.AtRisk, sc.UpdatedAt)
	if err != nil {
		return postgres.MapError(err, "subject_confidence", sc.SubjectID)
	}
	return nil
}

// ListSubjectConfidence returns the cached per-subject confidence rows.
func (r *Repo) ListSubjectConfidence(ctx context.Context, learnerID uuid.UUID) ([]domain.SubjectConfidence, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	rows, err := q.Query(ctx, listSubjectConfidenceSQL, learnerID)
	if err != nil {
		return nil, fmt.Errorf("list subject confidence: %w", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.SubjectConfidence, error) {
		var sc domain.SubjectConfidence
		err := row.Scan(&sc.LearnerID, &sc.SubjectID, &sc.Weighted, &sc.TopicCount, &sc.AtRisk, &sc.UpdatedAt)
		return sc, err
	})
	if err != nil {
		return nil, fmt.Errorf("list subject confidence: %w", err)
	}
	return out, nil
}

func scanProgress(row pgx.Row) (domain.Progress, error) {
	var (
		p                domain.Progress
		status, confStat string
	)
	err := row.Scan(
		&p.LearnerID, &p.TopicID, &status, &p.ConfidenceScore, &confStat,
		&p.RevisionCount, &p.MockAccuracy, &p.LastTouched, &p.UpdatedAt,
	)
	if err != nil {
		return p, err
	}
	p.Status = domain.TopicStatus(status)
	p.ConfidenceStatus = domain.ConfidenceStatus(confStat)
	return p, nil
}
