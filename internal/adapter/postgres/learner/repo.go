// Package learner implements the learner profile repository using PostgreSQL.
package learner

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	postgres "github.com/heartmarshall/studyplanner-backend/internal/adapter/postgres"
	"github.com/heartmarshall/studyplanner-backend/internal/domain"
)

// Repo provides learner profile persistence backed by PostgreSQL.
type Repo struct {
	db postgres.Querier
}

// New creates a new learner repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

// ---------------------------------------------------------------------------
// SQL
// ---------------------------------------------------------------------------

const profileColumns = `learner_id, daily_hours, exam_date, strategy_mode, exam_mode,
       is_repeater, attempt_number, weak_subject_ids, strong_subject_ids,
       buffer_initial, buffer_balance, auto_recalibrate, in_recovery,
       recovery_start, recovery_end, recovery_exited_at, timezone,
       persona_params, active, created_at, updated_at`

const getSQL = `SELECT ` + profileColumns + `
FROM learner_profiles
WHERE learner_id = $1`

const createSQL = `
INSERT INTO learner_profiles (` + profileColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)`

const updateSQL = `
UPDATE learner_profiles SET
    daily_hours = $2, exam_date = $3, strategy_mode = $4, exam_mode = $5,
    is_repeater = $6, attempt_number = $7, weak_subject_ids = $8, strong_subject_ids = $9,
    buffer_initial = $10, buffer_balance = $11, auto_recalibrate = $12, in_recovery = $13,
    recovery_start = $14, recovery_end = $15, recovery_exited_at = $16, timezone = $17,
    persona_params = $18, active = $19, updated_at = $20
WHERE learner_id = $1`

const listActiveIDsSQL = `
SELECT learner_id FROM learner_profiles
WHERE active
ORDER BY learner_id`

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// Get returns the learner's profile.
func (r *Repo) Get(ctx context.Context, learnerID uuid.UUID) (*domain.LearnerProfile, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	p, err := scanProfile(q.QueryRow(ctx, getSQL, learnerID))
	if err != nil {
		return nil, postgres.MapError(err, "learner", learnerID)
	}
	return p, nil
}

// ListActiveIDs returns the IDs of all active learners in a stable order.
func (r *Repo) ListActiveIDs(ctx context.Context) ([]uuid.UUID, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	rows, err := q.Query(ctx, listActiveIDsSQL)
	if err != nil {
		return nil, fmt.Errorf("list active learners: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
	if err != nil {
		return nil, fmt.Errorf("list active learners: %w", err)
	}
	return ids, nil
}

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// Create inserts a new profile. Zero timestamps are set to now.
func (r *Repo) Create(ctx context.Context, p *domain.LearnerProfile) error {
	q := postgres.QuerierFromCtx(ctx, r.db)

	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = now
	}
	params, err := json.Marshal(p.Params)
	if err != nil {
		return fmt.Errorf("learner %s marshal params: %w", p.LearnerID, err)
	}

	_, err = q.Exec(ctx, createSQL,
		p.LearnerID, p.DailyHours, domain.Day(p.ExamDate), string(p.StrategyMode), string(p.ExamMode),
		p.IsRepeater, p.AttemptNumber, nonNil(p.WeakSubjectIDs), nonNil(p.StrongSubjectIDs),
		p.BufferInitial, p.BufferBalance, p.AutoRecalibrate, p.InRecovery,
		p.RecoveryStart, p.RecoveryEnd, p.RecoveryExitedAt, p.Timezone,
		params, p.Active, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return postgres.MapError(err, "learner", p.LearnerID)
	}
	return nil
}

// Update overwrites every mutable column of the profile.
func (r *Repo) Update(ctx context.Context, p *domain.LearnerProfile) error {
	q := postgres.QuerierFromCtx(ctx, r.db)

	p.UpdatedAt = time.Now().UTC()
	params, err := json.Marshal(p.Params)
	if err != nil {
		return fmt.Errorf("learner %s marshal params: %w", p.LearnerID, err)
	}

	tag, err := q.Exec(ctx, updateSQL,
		p.LearnerID, p.DailyHours, domain.Day(p.ExamDate), string(p.StrategyMode), string(p.ExamMode),
		p.IsRepeater, p.AttemptNumber, nonNil(p.WeakSubjectIDs), nonNil(p.StrongSubjectIDs),
		p.BufferInitial, p.BufferBalance, p.AutoRecalibrate, p.InRecovery,
		p.RecoveryStart, p.RecoveryEnd, p.RecoveryExitedAt, p.Timezone,
		params, p.Active, p.UpdatedAt,
	)
	if err != nil {
		return postgres.MapError(err, "learner", p.LearnerID)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("learner %s: %w", p.LearnerID, domain.ErrNotFound)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Mapping helpers
// ---------------------------------------------------------------------------

func scanProfile(row pgx.Row) (*domain.LearnerProfile, error) {
	var (
		p            domain.LearnerProfile
		strategyMode string
		examMode     string
		params       []byte
	)
	err := row.Scan(
		&p.LearnerID, &p.DailyHours, &p.ExamDate, &strategyMode, &examMode,
		&p.IsRepeater, &p.AttemptNumber, &p.WeakSubjectIDs, &p.StrongSubjectIDs,
		&p.BufferInitial, &p.BufferBalance, &p.AutoRecalibrate, &p.InRecovery,
		&p.RecoveryStart, &p.RecoveryEnd, &p.RecoveryExitedAt, &p.Timezone,
		&params, &p.Active, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.StrategyMode = domain.StrategyMode(strategyMode)
	p.ExamMode = domain.ExamMode(examMode)
	p.ExamDate = domain.Day(p.ExamDate)

	// Rows written before a parameter was introduced keep the mode default
	// for it.
	p.Params = domain.DefaultPersonaParams(p.StrategyMode)
	if err := json.Unmarshal(params, &p.Params); err != nil {
		return nil, fmt.Errorf("learner %s unmarshal params: %w", p.LearnerID, err)
	}
	return &p, nil
}

func nonNil(ids []uuid.UUID) []uuid.UUID {
	if ids == nil {
		return []uuid.UUID{}
	}
	return ids
}
