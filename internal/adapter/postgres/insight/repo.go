// Package insight stores per-topic mock test accuracy and the weakness
// insight flags derived from it.
package insight

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	postgres "github.com/heartmarshall/studyplanner-backend/internal/adapter/postgres"
	"github.com/heartmarshall/studyplanner-backend/internal/domain"
)

// Repo provides insight persistence backed by PostgreSQL.
type Repo struct {
	db postgres.Querier
}

// New creates a new insight repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

// ---------------------------------------------------------------------------
// SQL
// ---------------------------------------------------------------------------

const mockAccuracySQL = `
SELECT topic_id, accuracy::float8
FROM mock_topic_accuracy
WHERE learner_id = $1`

const insightsSQL = `
SELECT topic_id, kind
FROM weakness_insights
WHERE learner_id = $1`

const upsertMockAccuracySQL = `
INSERT INTO mock_topic_accuracy (learner_id, topic_id, accuracy, updated_at)
VALUES ($1, $2, $3, now())
ON CONFLICT (learner_id, topic_id) DO UPDATE SET
    accuracy = EXCLUDED.accuracy,
    updated_at = EXCLUDED.updated_at`

const mirrorMockAccuracySQL = `
UPDATE topic_progress SET mock_accuracy = $3, updated_at = now()
WHERE learner_id = $1 AND topic_id = $2`

const upsertInsightSQL = `
INSERT INTO weakness_insights (learner_id, topic_id, kind, updated_at)
VALUES ($1, $2, $3, now())
ON CONFLICT (learner_id, topic_id, kind) DO UPDATE SET updated_at = EXCLUDED.updated_at`

// ---------------------------------------------------------------------------
// Operations
// ---------------------------------------------------------------------------

// MockAccuracy returns the latest accuracy per topic.
func (r *Repo) MockAccuracy(ctx context.Context, learnerID uuid.UUID) (map[uuid.UUID]float64, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	rows, err := q.Query(ctx, mockAccuracySQL, learnerID)
	if err != nil {
		return nil, fmt.Errorf("mock accuracy: %w", err)
	}
	defer rows.Close()

	out := map[uuid.UUID]float64{}
	for rows.Next() {
		var (
			topicID uuid.UUID
			acc     float64
		)
		if err := rows.Scan(&topicID, &acc); err != nil {
			return nil, fmt.Errorf("mock accuracy: %w", err)
		}
		out[topicID] = acc
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("mock accuracy: %w", err)
	}
	return out, nil
}

// Insights groups the learner's flagged topics by kind. Unknown kinds are
// ignored.
func (r *Repo) Insights(ctx context.Context, learnerID uuid.UUID) (domain.InsightSets, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	sets := domain.EmptyInsights()
	rows, err := q.Query(ctx, insightsSQL, learnerID)
	if err != nil {
		return sets, fmt.Errorf("insights: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			topicID uuid.UUID
			kind    string
		)
		if err := rows.Scan(&topicID, &kind); err != nil {
			return sets, fmt.Errorf("insights: %w", err)
		}
		switch domain.InsightKind(kind) {
		case domain.InsightFalseSecurity:
			sets.FalseSecurity[topicID] = true
		case domain.InsightBlindSpot:
			sets.BlindSpot[topicID] = true
		case domain.InsightOverRevised:
			sets.OverRevised[topicID] = true
		}
	}
	if err := rows.Err(); err != nil {
		return sets, fmt.Errorf("insights: %w", err)
	}
	return sets, nil
}

// SetMockAccuracy records the latest mock accuracy and mirrors it onto the
// progress row when one exists.
func (r *Repo) SetMockAccuracy(ctx context.Context, learnerID, topicID uuid.UUID, accuracy float64) error {
	q := postgres.QuerierFromCtx(ctx, r.db)

	if _, err := q.Exec(ctx, upsertMockAccuracySQL, learnerID, topicID, accuracy); err != nil {
		return postgres.MapError(err, "mock accuracy", topicID)
	}
	if _, err := q.Exec(ctx, mirrorMockAccuracySQL, learnerID, topicID, accuracy); err != nil {
		return postgres.MapError(err, "progress", topicID)
	}
	return nil
}

// SetInsight flags the topic in the given weakness-radar set.
func (r *Repo) SetInsight(ctx context.Context, learnerID, topicID uuid.UUID, kind domain.InsightKind) error {
	q := postgres.QuerierFromCtx(ctx, r.db)

	if _, err := q.Exec(ctx, upsertInsightSQL, learnerID, topicID, string(kind)); err != nil {
		return postgres.MapError(err, "insight", topicID)
	}
	return nil
}
