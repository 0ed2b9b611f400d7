// Package ledger implements the velocity snapshot and buffer transaction
// repositories using PostgreSQL.
package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	postgres "github.com/heartmarshall/studyplanner-backend/internal/adapter/postgres"
	"github.com/heartmarshall/studyplanner-backend/internal/domain"
)

// VelocityRepo stores one velocity snapshot per learner and date.
type VelocityRepo struct {
	db postgres.Querier
}

// NewVelocity creates a new velocity snapshot repository.
func NewVelocity(db postgres.Querier) *VelocityRepo {
	return &VelocityRepo{db: db}
}

// ---------------------------------------------------------------------------
// SQL
// ---------------------------------------------------------------------------

const velocityColumns = `learner_id, snapshot_date, required_velocity, actual_7d, actual_14d,
       actual_velocity, ratio, status, trend, weighted_completion, unweighted_completion,
       completed_gravity, remaining_gravity, total_gravity, days_remaining, signal_velocity,
       stress, created_at`

const upsertVelocitySQL = `
INSERT INTO velocity_snapshots (` + velocityColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
ON CONFLICT (learner_id, snapshot_date) DO UPDATE SET
    required_velocity = EXCLUDED.required_velocity,
    actual_7d = EXCLUDED.actual_7d,
    actual_14d = EXCLUDED.actual_14d,
    actual_velocity = EXCLUDED.actual_velocity,
    ratio = EXCLUDED.ratio,
    status = EXCLUDED.status,
    trend = EXCLUDED.trend,
    weighted_completion = EXCLUDED.weighted_completion,
    unweighted_completion = EXCLUDED.unweighted_completion,
    completed_gravity = EXCLUDED.completed_gravity,
    remaining_gravity = EXCLUDED.remaining_gravity,
    total_gravity = EXCLUDED.total_gravity,
    days_remaining = EXCLUDED.days_remaining,
    signal_velocity = EXCLUDED.signal_velocity,
    stress = EXCLUDED.stress,
    created_at = EXCLUDED.created_at`

const getVelocitySQL = `SELECT ` + velocityColumns + `
FROM velocity_snapshots
WHERE learner_id = $1 AND snapshot_date = $2`

const listVelocitySQL = `SELECT ` + velocityColumns + `
FROM velocity_snapshots
WHERE learner_id = $1 AND snapshot_date BETWEEN $2 AND $3
ORDER BY snapshot_date`

const latestVelocitySQL = `SELECT ` + velocityColumns + `
FROM velocity_snapshots
WHERE learner_id = $1 AND snapshot_date <= $2
ORDER BY snapshot_date DESC
LIMIT 1`

// ---------------------------------------------------------------------------
// Operations
// ---------------------------------------------------------------------------

// UpsertSnapshot replaces the snapshot for the learner's date.
func (r *VelocityRepo) UpsertSnapshot(ctx context.Context, s *domain.VelocitySnapshot) error {
	q := postgres.QuerierFromCtx(ctx, r.db)

	s.Date = domain.Day(s.Date)
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	_, err := q.Exec(ctx, upsertVelocitySQL,
		s.LearnerID, s.Date, s.RequiredVelocity, s.Actual7d, s.Actual14d,
		s.ActualVelocity, s.Ratio, string(s.Status), string(s.Trend), s.WeightedCompletion, s.UnweightedCompletion,
		s.CompletedGravity, s.RemainingGravity, s.TotalGravity, s.DaysRemaining, s.SignalVelocity,
		s.Stress, s.CreatedAt)
	if err != nil {
		return postgres.MapError(err, "velocity snapshot", s.Date.Format(time.DateOnly))
	}
	return nil
}

// GetSnapshot returns the snapshot for the day, or domain.ErrNotFound.
func (r *VelocityRepo) GetSnapshot(ctx context.Context, learnerID uuid.UUID, date time.Time) (*domain.VelocitySnapshot, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	day := domain.Day(date)
	s, err := scanVelocity(q.QueryRow(ctx, getVelocitySQL, learnerID, day))
	if err != nil {
		return nil, postgres.MapError(err, "velocity snapshot", day.Format(time.DateOnly))
	}
	return &s, nil
}

// ListSnapshots returns snapshots in [from, to], oldest first.
func (r *VelocityRepo) ListSnapshots(ctx context.Context, learnerID uuid.UUID, from, to time.Time) ([]domain.VelocitySnapshot, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	rows, err := q.Query(ctx, listVelocitySQL, learnerID, domain.Day(from), domain.Day(to))
	if err != nil {
		return nil, fmt.Errorf("list velocity snapshots: %w", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.VelocitySnapshot, error) {
		return scanVelocity(row)
	})
	if err != nil {
		return nil, fmt.Errorf("list velocity snapshots: %w", err)
	}
	return out, nil
}

// LatestSnapshot returns the newest snapshot on or before the date.
func (r *VelocityRepo) LatestSnapshot(ctx context.Context, learnerID uuid.UUID, onOrBefore time.Time) (*domain.VelocitySnapshot, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	s, err := scanVelocity(q.QueryRow(ctx, latestVelocitySQL, learnerID, domain.Day(onOrBefore)))
	if err != nil {
		return nil, postgres.MapError(err, "velocity snapshot", "latest")
	}
	return &s, nil
}

func scanVelocity(row pgx.Row) (domain.VelocitySnapshot, error) {
	var (
		s             domain.VelocitySnapshot
		status, trend string
	)
	err := row.Scan(
		&s.LearnerID, &s.Date, &s.RequiredVelocity, &s.Actual7d, &s.Actual14d,
		&s.ActualVelocity, &s.Ratio, &status, &trend, &s.WeightedCompletion, &s.UnweightedCompletion,
		&s.CompletedGravity, &s.RemainingGravity, &s.TotalGravity, &s.DaysRemaining, &s.SignalVelocity,
		&s.Stress, &s.CreatedAt,
	)
	if err != nil {
		return s, err
	}
	s.Status, s.Trend = domain.VelocityStatus(status), domain.VelocityTrend(trend)
	return s, nil
}
