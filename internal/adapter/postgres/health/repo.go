// Package health implements the burnout snapshot and recovery episode
// repository using PostgreSQL.
package health

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	postgres "github.com/heartmarshall/studyplanner-backend/internal/adapter/postgres"
	"github.com/heartmarshall/studyplanner-backend/internal/domain"
)

// Repo provides burnout and recovery persistence backed by PostgreSQL.
type Repo struct {
	db postgres.Querier
}

// New creates a new health repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

// ---------------------------------------------------------------------------
// SQL
// ---------------------------------------------------------------------------

const upsertBurnoutSQL = `
INSERT INTO burnout_snapshots (learner_id, snapshot_date, bri_score, fatigue_score, stress_persistence,
                               buffer_hemorrhage, velocity_collapse, engagement_decay, stress,
                               in_recovery, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
ON CONFLICT (learner_id, snapshot_date) DO UPDATE SET
    bri_score = EXCLUDED.bri_score,
    fatigue_score = EXCLUDED.fatigue_score,
    stress_persistence = EXCLUDED.stress_persistence,
    buffer_hemorrhage = EXCLUDED.buffer_hemorrhage,
    velocity_collapse = EXCLUDED.velocity_collapse,
    engagement_decay = EXCLUDED.engagement_decay,
    stress = EXCLUDED.stress,
    in_recovery = EXCLUDED.in_recovery,
    created_at = EXCLUDED.created_at`

const listBurnoutSQL = `
SELECT learner_id, snapshot_date, bri_score, fatigue_score, stress_persistence,
       buffer_hemorrhage, velocity_collapse, engagement_decay, stress, in_recovery, created_at
FROM burnout_snapshots
WHERE learner_id = $1 AND snapshot_date BETWEEN $2 AND $3
ORDER BY snapshot_date`

const openRecoverySQL = `
SELECT id, learner_id, trigger_bri, start_date, end_date, exited_at, exit_reason, created_at
FROM recovery_logs
WHERE learner_id = $1 AND exited_at IS NULL`

const insertRecoverySQL = `
INSERT INTO recovery_logs (id, learner_id, trigger_bri, start_date, end_date, created_at)
VALUES ($1, $2, $3, $4, $5, $6)`

const closeRecoverySQL = `
UPDATE recovery_logs
SET exited_at = $2, exit_reason = $3
WHERE id = $1 AND exited_at IS NULL`

// ---------------------------------------------------------------------------
// Burnout
// ---------------------------------------------------------------------------

// UpsertBurnout replaces the snapshot for the learner's date.
func (r *Repo) UpsertBurnout(ctx context.Context, s *domain.BurnoutSnapshot) error {
	q := postgres.QuerierFromCtx(ctx, r.db)

	s.Date = domain.Day(s.Date)
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	_, err := q.Exec(ctx, upsertBurnoutSQL,
		s.LearnerID, s.Date, s.BRI, s.FatigueScore, s.StressPersistence,
		s.BufferHemorrhage, s.VelocityCollapse, s.EngagementDecay, s.Stress,
		s.InRecovery, s.CreatedAt)
	if err != nil {
		return postgres.MapError(err, "burnout snapshot", s.Date.Format(time.DateOnly))
	}
	return nil
}

// ListBurnout returns snapshots in [from, to], oldest first.
func (r *Repo) ListBurnout(ctx context.Context, learnerID uuid.UUID, from, to time.Time) ([]domain.BurnoutSnapshot, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	rows, err := q.Query(ctx, listBurnoutSQL, learnerID, domain.Day(from), domain.Day(to))
	if err != nil {
		return nil, fmt.Errorf("list burnout: %w", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.BurnoutSnapshot, error) {
		var s domain.BurnoutSnapshot
		err := row.Scan(&s.LearnerID, &s.Date, &s.BRI, &s.FatigueScore, &s.StressPersistence,
			&s.BufferHemorrhage, &s.VelocityCollapse, &s.EngagementDecay, &s.Stress, &s.InRecovery, &s.CreatedAt)
		return s, err
	})
	if err != nil {
		return nil, fmt.Errorf("list burnout: %w", err)
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Recovery episodes
// ---------------------------------------------------------------------------

// OpenRecovery returns the learner's open episode or ErrNotFound.
func (r *Repo) OpenRecovery(ctx context.Context, learnerID uuid.UUID) (*domain.RecoveryLog, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	var rec domain.RecoveryLog
	err := q.QueryRow(ctx, openRecoverySQL, learnerID).Scan(
		&rec.ID, &rec.LearnerID, &rec.TriggerBRI, &rec.StartDate, &rec.EndDate,
		&rec.ExitedAt, &rec.ExitReason, &rec.CreatedAt,
	)
	if err != nil {
		return nil, postgres.MapError(err, "open recovery", learnerID)
	}
	return &rec, nil
}

// CreateRecovery opens an episode. A second open episode for the learner
// fails with ErrAlreadyExists.
func (r *Repo) CreateRecovery(ctx context.Context, rec *domain.RecoveryLog) error {
	q := postgres.QuerierFromCtx(ctx, r.db)

	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	_, err := q.Exec(ctx, insertRecoverySQL,
		rec.ID, rec.LearnerID, rec.TriggerBRI, domain.Day(rec.StartDate), domain.Day(rec.EndDate), rec.CreatedAt)
	if err != nil {
		return postgres.MapError(err, "open recovery", rec.LearnerID)
	}
	return nil
}

// CloseRecovery stamps the exit on an open episode.
func (r *Repo) CloseRecovery(ctx context.Context, id uuid.UUID, exitedAt time.Time, reason string) error {
	q := postgres.QuerierFromCtx(ctx, r.db)

	tag, err := q.Exec(ctx, closeRecoverySQL, id, exitedAt, reason)
	if err != nil {
		return postgres.MapError(err, "recovery", id)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("recovery %s: %w", id, domain.ErrNotFound)
	}
	return nil
}
