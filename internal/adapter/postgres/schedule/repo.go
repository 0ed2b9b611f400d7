// Package schedule implements the review_schedules repository using PostgreSQL.
package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	postgres "github.com/heartmarshall/studyplanner-backend/internal/adapter/postgres"
	"github.com/heartmarshall/studyplanner-backend/internal/domain"
)

// Repo provides review schedule persistence backed by PostgreSQL.
type Repo struct {
	db postgres.Querier
}

// New creates a new schedule repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

// ---------------------------------------------------------------------------
// SQL
// ---------------------------------------------------------------------------

const scheduleColumns = `id, learner_id, topic_id, due_date, source, status, created_at, completed_at`

const insertSQL = `
INSERT INTO review_schedules (id, learner_id, topic_id, due_date, source, status, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

const listDueSQL = `SELECT ` + scheduleColumns + `
FROM review_schedules
WHERE learner_id = $1 AND status = 'pending' AND due_date <= $2
ORDER BY due_date, created_at`

const completeOldestSQL = `
UPDATE review_schedules
SET status = 'completed', completed_at = $3
WHERE id = (
    SELECT id FROM review_schedules
    WHERE learner_id = $1 AND topic_id = $2 AND status = 'pending'
    ORDER BY due_date, created_at
    LIMIT 1
    FOR UPDATE
)`

const supersedeSQL = `
UPDATE review_schedules
SET status = 'superseded'
WHERE learner_id = $1 AND topic_id = $2 AND source = $3 AND status = 'pending'`

const listByLearnerSQL = `SELECT ` + scheduleColumns + `
FROM review_schedules
WHERE learner_id = $1
ORDER BY due_date, created_at`

// ---------------------------------------------------------------------------
// Operations
// ---------------------------------------------------------------------------

// Create inserts a schedule row. DueDate is truncated to the calendar day.
func (r *Repo) Create(ctx context.Context, s *domain.ReviewSchedule) error {
	q := postgres.QuerierFromCtx(ctx, r.db)

	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.Status == "" {
		s.Status = domain.ScheduleStatusPending
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	s.DueDate = domain.Day(s.DueDate)

	_, err := q.Exec(ctx, insertSQL,
		s.ID, s.LearnerID, s.TopicID, s.DueDate, string(s.Source), string(s.Status), s.CreatedAt)
	if err != nil {
		return postgres.MapError(err, "review_schedule", s.ID)
	}
	return nil
}

// ListDue returns pending rows due on or before until, oldest first.
func (r *Repo) ListDue(ctx context.Context, learnerID uuid.UUID, until time.Time) ([]domain.ReviewSchedule, error) {
	return r.list(ctx, "list due schedules", listDueSQL, learnerID, domain.Day(until))
}

// ListByLearner returns every scheduled review of the learner.
func (r *Repo) ListByLearner(ctx context.Context, learnerID uuid.UUID) ([]domain.ReviewSchedule, error) {
	return r.list(ctx, "list schedules", listByLearnerSQL, learnerID)
}

// CompleteOldestPending marks the oldest pending row for the topic completed.
// It reports false when there was none.
func (r *Repo) CompleteOldestPending(ctx context.Context, learnerID, topicID uuid.UUID, at time.Time) (bool, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	tag, err := q.Exec(ctx, completeOldestSQL, learnerID, topicID, at)
	if err != nil {
		return false, fmt.Errorf("complete schedule: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// SupersedePending retires pending rows of the given source for the topic.
func (r *Repo) SupersedePending(ctx context.Context, learnerID, topicID uuid.UUID, source domain.ScheduleSource) (int, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	tag, err := q.Exec(ctx, supersedeSQL, learnerID, topicID, string(source))
	if err != nil {
		return 0, fmt.Errorf("supersede schedules: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func (r *Repo) list(ctx context.Context, op, query string, args ...any) ([]domain.ReviewSchedule, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.ReviewSchedule, error) {
		var (
			s              domain.ReviewSchedule
			source, status string
		)
		if err := row.Scan(&s.ID, &s.LearnerID, &s.TopicID, &s.DueDate, &source, &status, &s.CreatedAt, &s.CompletedAt); err != nil {
			return s, err
		}
		s.Source, s.Status = domain.ScheduleSource(source), domain.ScheduleStatus(status)
		return s, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}
