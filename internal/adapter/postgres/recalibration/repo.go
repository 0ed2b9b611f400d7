// Package recalibration implements the persona snapshot history and the
// recalibration log using PostgreSQL.
package recalibration

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

// Repo provides recalibration persistence backed by PostgreSQL.
type Repo struct {
	db postgres.Querier
}

// New creates a new recalibration repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

// ---------------------------------------------------------------------------
// SQL
// ---------------------------------------------------------------------------

const closeSnapshotSQL = `
UPDATE persona_snapshots SET valid_to = $2
WHERE learner_id = $1 AND valid_to IS NULL`

const insertSnapshotSQL = `
INSERT INTO persona_snapshots (id, learner_id, params, trigger_kind, valid_from, valid_to)
VALUES ($1, $2, $3, $4, $5, $6)`

const listSnapshotsSQL = `
SELECT id, learner_id, params, trigger_kind, valid_from, valid_to
FROM persona_snapshots
WHERE learner_id = $1
ORDER BY valid_from`

const insertLogSQL = `
INSERT INTO recalibration_logs (id, learner_id, trigger_kind, outcome, skip_reason,
                                params_before, params_after, signals, reasons, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

const listLogsSQL = `
SELECT id, learner_id, trigger_kind, outcome, skip_reason,
       params_before, params_after, signals, reasons, created_at
FROM recalibration_logs
WHERE learner_id = $1
ORDER BY created_at`

const lastAppliedSQL = `
SELECT max(created_at)
FROM recalibration_logs
WHERE learner_id = $1 AND outcome = 'applied'`

// ---------------------------------------------------------------------------
// Persona snapshots
// ---------------------------------------------------------------------------

// CloseCurrentSnapshot ends the validity of the learner's current snapshot.
// No current snapshot is not an error.
func (r *Repo) CloseCurrentSnapshot(ctx context.Context, learnerID uuid.UUID, at time.Time) error {
	q := postgres.QuerierFromCtx(ctx, r.db)

	if _, err := q.Exec(ctx, closeSnapshotSQL, learnerID, at); err != nil {
		return fmt.Errorf("close persona snapshot: %w", err)
	}
	return nil
}

// CreateSnapshot inserts a persona snapshot.
func (r *Repo) CreateSnapshot(ctx context.Context, s *domain.PersonaSnapshot) error {
	q := postgres.QuerierFromCtx(ctx, r.db)

	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	params, err := json.Marshal(s.Params)
	if err != nil {
		return fmt.Errorf("marshal persona params: %w", err)
	}
	_, err = q.Exec(ctx, insertSnapshotSQL, s.ID, s.LearnerID, params, string(s.Trigger), s.ValidFrom, s.ValidTo)
	if err != nil {
		return postgres.MapError(err, "persona snapshot", s.LearnerID)
	}
	return nil
}

// ListSnapshots returns the learner's snapshot history, oldest first.
func (r *Repo) ListSnapshots(ctx context.Context, learnerID uuid.UUID) ([]domain.PersonaSnapshot, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	rows, err := q.Query(ctx, listSnapshotsSQL, learnerID)
	if err != nil {
		return nil, fmt.Errorf("list persona snapshots: %w", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.PersonaSnapshot, error) {
		var (
			s       domain.PersonaSnapshot
			params  []byte
			trigger string
		)
		if err := row.Scan(&s.ID, &s.LearnerID, &params, &trigger, &s.ValidFrom, &s.ValidTo); err != nil {
			return s, err
		}
		if err := json.Unmarshal(params, &s.Params); err != nil {
			return s, fmt.Errorf("unmarshal persona params: %w", err)
		}
		s.Trigger = domain.RecalibrationTrigger(trigger)
		return s, nil
	})
	if err != nil {
		return nil, fmt.Errorf("list persona snapshots: %w", err)
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Log
// ---------------------------------------------------------------------------

// CreateLog appends a recalibration log entry, skipped runs included.
func (r *Repo) CreateLog(ctx context.Context, e *domain.RecalibrationLogEntry) error {
	q := postgres.QuerierFromCtx(ctx, r.db)

	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	before, after, signals, reasons, err := marshalLog(e)
	if err != nil {
		return err
	}
	_, err = q.Exec(ctx, insertLogSQL,
		e.ID, e.LearnerID, string(e.Trigger), string(e.Outcome), e.SkipReason,
		before, after, signals, reasons, e.CreatedAt)
	if err != nil {
		return postgres.MapError(err, "recalibration log", e.ID)
	}
	return nil
}

// LastAppliedAt returns when the last parameter-changing run happened, or nil.
func (r *Repo) LastAppliedAt(ctx context.Context, learnerID uuid.UUID) (*time.Time, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	var last *time.Time
	if err := q.QueryRow(ctx, lastAppliedSQL, learnerID).Scan(&last); err != nil {
		return nil, fmt.Errorf("last applied recalibration: %w", err)
	}
	return last, nil
}

// ListLogs returns the learner's log entries, oldest first.
func (r *Repo) ListLogs(ctx context.Context, learnerID uuid.UUID) ([]domain.RecalibrationLogEntry, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	rows, err := q.Query(ctx, listLogsSQL, learnerID)
	if err != nil {
		return nil, fmt.Errorf("list recalibration logs: %w", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.RecalibrationLogEntry, error) {
		var (
			e                               domain.RecalibrationLogEntry
			trigger, outcome                string
			before, after, signals, reasons []byte
		)
		err := row.Scan(&e.ID, &e.LearnerID, &trigger, &outcome, &e.SkipReason,
			&before, &after, &signals, &reasons, &e.CreatedAt)
		if err != nil {
			return e, err
		}
		e.Trigger = domain.RecalibrationTrigger(trigger)
		e.Outcome = domain.RecalibrationOutcome(outcome)
		if err := unmarshalLog(&e, before, after, signals, reasons); err != nil {
			return e, err
		}
		return e, nil
	})
	if err != nil {
		return nil, fmt.Errorf("list recalibration logs: %w", err)
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// JSONB helpers
// ---------------------------------------------------------------------------

func marshalLog(e *domain.RecalibrationLogEntry) (before, after, signals, reasons []byte, err error) {
	if before, err = json.Marshal(e.Before); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("marshal params_before: %w", err)
	}
	if after, err = json.Marshal(e.After); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("marshal params_after: %w", err)
	}
	if signals, err = json.Marshal(e.Signals); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("marshal signals: %w", err)
	}
	r := e.Reasons
	if r == nil {
		r = map[domain.TunableParam]string{}
	}
	if reasons, err = json.Marshal(r); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("marshal reasons: %w", err)
	}
	return before, after, signals, reasons, nil
}

func unmarshalLog(e *domain.RecalibrationLogEntry, before, after, signals, reasons []byte) error {
	if err := json.Unmarshal(before, &e.Before); err != nil {
		return fmt.Errorf("unmarshal params_before: %w", err)
	}
	if err := json.Unmarshal(after, &e.After); err != nil {
		return fmt.Errorf("unmarshal params_after: %w", err)
	}
	if err := json.Unmarshal(signals, &e.Signals); err != nil {
		return fmt.Errorf("unmarshal signals: %w", err)
	}
	if err := json.Unmarshal(reasons, &e.Reasons); err != nil {
		return fmt.Errorf("unmarshal reasons: %w", err)
	}
	return nil
}
