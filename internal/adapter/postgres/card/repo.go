// Package card implements the FSRS card and review log repositories using
// PostgreSQL.
package card

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	postgres "github.com/heartmarshall/studyplanner-backend/internal/adapter/postgres"
	"github.com/heartmarshall/studyplanner-backend/internal/domain"
)

// Repo provides card persistence backed by PostgreSQL.
type Repo struct {
	db postgres.Querier
}

// New creates a new card repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

// ---------------------------------------------------------------------------
// SQL
// ---------------------------------------------------------------------------

const cardColumns = `id, learner_id, topic_id, state, step, stability, difficulty, due,
       last_review, reps, lapses, scheduled_days, elapsed_days, created_at, updated_at`

const getByTopicSQL = `SELECT ` + cardColumns + `
FROM srs_cards
WHERE learner_id = $1 AND topic_id = $2`

const listByLearnerSQL = `SELECT ` + cardColumns + `
FROM srs_cards
WHERE learner_id = $1
ORDER BY topic_id`

const upsertSQL = `
INSERT INTO srs_cards (id, learner_id, topic_id, state, step, stability, difficulty, due,
                       last_review, reps, lapses, scheduled_days, elapsed_days, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
ON CONFLICT (learner_id, topic_id) DO UPDATE SET
    state = EXCLUDED.state,
    step = EXCLUDED.step,
    stability = EXCLUDED.stability,
    difficulty = EXCLUDED.difficulty,
    due = EXCLUDED.due,
    last_review = EXCLUDED.last_review,
    reps = EXCLUDED.reps,
    lapses = EXCLUDED.lapses,
    scheduled_days = EXCLUDED.scheduled_days,
    elapsed_days = EXCLUDED.elapsed_days,
    updated_at = EXCLUDED.updated_at
RETURNING id, created_at`

// ---------------------------------------------------------------------------
// Operations
// ---------------------------------------------------------------------------

// GetByTopic returns the learner's card for a topic.
func (r *Repo) GetByTopic(ctx context.Context, learnerID, topicID uuid.UUID) (*domain.Card, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	c, err := scanCard(q.QueryRow(ctx, getByTopicSQL, learnerID, topicID))
	if err != nil {
		return nil, postgres.MapError(err, "card", topicID)
	}
	return &c, nil
}

// ListByLearner returns every card the learner owns.
func (r *Repo) ListByLearner(ctx context.Context, learnerID uuid.UUID) ([]domain.Card, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	rows, err := q.Query(ctx, listByLearnerSQL, learnerID)
	if err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Card, error) {
		return scanCard(row)
	})
	if err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}
	return out, nil
}

// Upsert writes the card keyed by (learner, topic). On conflict the stored
// ID and creation time win and are copied back into c.
func (r *Repo) Upsert(ctx context.Context, c *domain.Card) error {
	q := postgres.QuerierFromCtx(ctx, r.db)

	now := time.Now().UTC()
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now

	err := q.QueryRow(ctx, upsertSQL,
		c.ID, c.LearnerID, c.TopicID, string(c.State), c.Step, c.Stability, c.Difficulty, c.Due,
		c.LastReview, c.Reps, c.Lapses, c.ScheduledDays, c.ElapsedDays, c.CreatedAt, c.UpdatedAt,
	).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		return postgres.MapError(err, "card", c.TopicID)
	}
	return nil
}

func scanCard(row pgx.Row) (domain.Card, error) {
	var (
		c     domain.Card
		state string
	)
	err := row.Scan(
		&c.ID, &c.LearnerID, &c.TopicID, &state, &c.Step, &c.Stability, &c.Difficulty, &c.Due,
		&c.LastReview, &c.Reps, &c.Lapses, &c.ScheduledDays, &c.ElapsedDays, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return c, err
	}
	c.State = domain.CardState(state)
	return c, nil
}
