// Package audit implements the append-only status change and confidence
// snapshot logs using PostgreSQL.
package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	postgres "github.com/heartmarshall/studyplanner-backend/internal/adapter/postgres"
	"github.com/heartmarshall/studyplanner-backend/internal/domain"
)

// Repo provides audit log persistence backed by PostgreSQL.
type Repo struct {
	db postgres.Querier
}

// New creates a new audit repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

// ---------------------------------------------------------------------------
// SQL
// ---------------------------------------------------------------------------

const insertStatusChangeSQL = `
INSERT INTO status_changes (id, learner_id, topic_id, old_status, new_status, reason, changed_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

const insertConfidenceSnapshotSQL = `
INSERT INTO confidence_snapshots (id, learner_id, topic_id, score, status, retrieval, recorded_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

const listStatusChangesSQL = `
SELECT id, learner_id, topic_id, old_status, new_status, reason, changed_at
FROM status_changes
WHERE learner_id = $1
ORDER BY changed_at DESC`

const listConfidenceSnapshotsSQL = `
SELECT id, learner_id, topic_id, score, status, retrieval, recorded_at
FROM confidence_snapshots
WHERE learner_id = $1
ORDER BY recorded_at DESC`

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// LogStatusChange appends one topic status transition.
func (r *Repo) LogStatusChange(ctx context.Context, c domain.StatusChange) error {
	q := postgres.QuerierFromCtx(ctx, r.db)

	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.ChangedAt.IsZero() {
		c.ChangedAt = time.Now().UTC()
	}
	_, err := q.Exec(ctx, insertStatusChangeSQL,
		c.ID, c.LearnerID, c.TopicID, string(c.OldStatus), string(c.NewStatus), c.Reason, c.ChangedAt)
	if err != nil {
		return postgres.MapError(err, "status_change", c.ID)
	}
	return nil
}

// CreateConfidenceSnapshot appends one confidence reading.
func (r *Repo) CreateConfidenceSnapshot(ctx context.Context, snap domain.ConfidenceSnapshot) error {
	q := postgres.QuerierFromCtx(ctx, r.db)

	if snap.ID == uuid.Nil {
		snap.ID = uuid.New()
	}
	_, err := q.Exec(ctx, insertConfidenceSnapshotSQL,
		snap.ID, snap.LearnerID, snap.TopicID, snap.Score, string(snap.Status), snap.Retrieval, snap.RecordedAt)
	if err != nil {
		return postgres.MapError(err, "confidence_snapshot", snap.ID)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// ListStatusChanges returns the learner's transitions, newest first.
func (r *Repo) ListStatusChanges(ctx context.Context, learnerID uuid.UUID) ([]domain.StatusChange, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	rows, err := q.Query(ctx, listStatusChangesSQL, learnerID)
	if err != nil {
		return nil, fmt.Errorf("list status changes: %w", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.StatusChange, error) {
		var (
			c        domain.StatusChange
			from, to string
		)
		if err := row.Scan(&c.ID, &c.LearnerID, &c.TopicID, &from, &to, &c.Reason, &c.ChangedAt); err != nil {
			return c, err
		}
		c.OldStatus, c.NewStatus = domain.TopicStatus(from), domain.TopicStatus(to)
		return c, nil
	})
	if err != nil {
		return nil, fmt.Errorf("list status changes: %w", err)
	}
	return out, nil
}

// ListConfidenceSnapshots returns the learner's confidence readings, newest first.
func (r *Repo) ListConfidenceSnapshots(ctx context.Context, learnerID uuid.UUID) ([]domain.ConfidenceSnapshot, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	rows, err := q.Query(ctx, listConfidenceSnapshotsSQL, learnerID)
	if err != nil {
		return nil, fmt.Errorf("list confidence snapshots: %w", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.ConfidenceSnapshot, error) {
		var (
			s      domain.ConfidenceSnapshot
			status string
		)
		if err := row.Scan(&s.ID, &s.LearnerID, &s.TopicID, &s.Score, &status, &s.Retrieval, &s.RecordedAt); err != nil {
			return s, err
		}
		s.Status = domain.ConfidenceStatus(status)
		return s, nil
	})
	if err != nil {
		return nil, fmt.Errorf("list confidence snapshots: %w", err)
	}
	return out, nil
}
