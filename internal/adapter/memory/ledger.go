package memory

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/studyplanner-backend/internal/domain"
)

// VelocityRepo stores one velocity snapshot per learner and date.
type VelocityRepo struct{ s *Store }

func (s *Store) Velocity() *VelocityRepo { return &VelocityRepo{s: s} }

func (r *VelocityRepo) UpsertSnapshot(_ context.Context, snap *domain.VelocitySnapshot) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	snap.Date = domain.Day(snap.Date)
	r.s.velocity[keyOn(snap.LearnerID, snap.Date)] = *snap
	return nil
}

func (r *VelocityRepo) GetSnapshot(_ context.Context, learnerID uuid.UUID, date time.Time) (*domain.VelocitySnapshot, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	snap, ok := r.s.velocity[keyOn(learnerID, date)]
	if !ok {
		return nil, fmt.Errorf("velocity snapshot %s: %w", domain.Day(date).Format(time.DateOnly), domain.ErrNotFound)
	}
	return &snap, nil
}

// ListSnapshots returns snapshots in [from, to], oldest first.
func (r *VelocityRepo) ListSnapshots(_ context.Context, learnerID uuid.UUID, from, to time.Time) ([]domain.VelocitySnapshot, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []domain.VelocitySnapshot
	for k, snap := range r.s.velocity {
		if k.learner == learnerID && inRange(k.day, from, to) {
			out = append(out, snap)
		}
	}
	slices.SortFunc(out, func(a, b domain.VelocitySnapshot) int { return a.Date.Compare(b.Date) })
	return out, nil
}

// LatestSnapshot returns the newest snapshot on or before the date.
func (r *VelocityRepo) LatestSnapshot(_ context.Context, learnerID uuid.UUID, onOrBefore time.Time) (*domain.VelocitySnapshot, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var best *domain.VelocitySnapshot
	for k, snap := range r.s.velocity {
		if k.learner != learnerID || k.day.After(domain.Day(onOrBefore)) {
			continue
		}
		if best == nil || snap.Date.After(best.Date) {
			best = &snap
		}
	}
	if best == nil {
		return nil, fmt.Errorf("velocity snapshot: %w", domain.ErrNotFound)
	}
	return best, nil
}

// BufferRepo stores the append-only buffer transaction log.
type BufferRepo struct{ s *Store }

func (s *Store) Buffer() *BufferRepo { return &BufferRepo{s: s} }

func (r *BufferRepo) AppendTransactions(_ context.Context, txs []domain.BufferTransaction) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, tx := range txs {
		if tx.ID == uuid.Nil {
			tx.ID = uuid.New()
		}
		tx.Date = domain.Day(tx.Date)
		r.s.bufferTx = append(r.s.bufferTx, tx)
	}
	return nil
}

// ListTransactions returns transactions in [from, to] in insertion order.
func (r *BufferRepo) ListTransactions(_ context.Context, learnerID uuid.UUID, from, to time.Time) ([]domain.BufferTransaction, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []domain.BufferTransaction
	for _, tx := range r.s.bufferTx {
		if tx.LearnerID == learnerID && inRange(tx.Date, from, to) {
			out = append(out, tx)
		}
	}
	slices.SortStableFunc(out, func(a, b domain.BufferTransaction) int { return a.Date.Compare(b.Date) })
	return out, nil
}

// HealthRepo stores burnout snapshots and recovery episodes.
type HealthRepo struct{ s *Store }

func (s *Store) Health() *HealthRepo { return &HealthRepo{s: s} }

func (r *HealthRepo) UpsertBurnout(_ context.Context, snap *domain.BurnoutSnapshot) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	snap.Date = domain.Day(snap.Date)
	r.s.burnout[keyOn(snap.LearnerID, snap.Date)] = *snap
	return nil
}

func (r *HealthRepo) ListBurnout(_ context.Context, learnerID uuid.UUID, from, to time.Time) ([]domain.BurnoutSnapshot, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []domain.BurnoutSnapshot
	for k, snap := range r.s.burnout {
		if k.learner == learnerID && inRange(k.day, from, to) {
			out = append(out, snap)
		}
	}
	slices.SortFunc(out, func(a, b domain.BurnoutSnapshot) int { return a.Date.Compare(b.Date) })
	return out, nil
}

func (r *HealthRepo) OpenRecovery(_ context.Context, learnerID uuid.UUID) (*domain.RecoveryLog, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, rec := range r.s.recoveries {
		if rec.LearnerID == learnerID && rec.IsOpen() {
			return &rec, nil
		}
	}
	return nil, fmt.Errorf("open recovery: %w", domain.ErrNotFound)
}

func (r *HealthRepo) CreateRecovery(_ context.Context, rec *domain.RecoveryLog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.recoveries {
		if existing.LearnerID == rec.LearnerID && existing.IsOpen() {
			return fmt.Errorf("open recovery: %w", domain.ErrAlreadyExists)
		}
	}
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	r.s.recoveries = append(r.s.recoveries, *rec)
	return nil
}

func (r *HealthRepo) CloseRecovery(_ context.Context, id uuid.UUID, exitedAt time.Time, reason string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for i, rec := range r.s.recoveries {
		if rec.ID == id && rec.IsOpen() {
			r.s.recoveries[i].ExitedAt = &exitedAt
			r.s.recoveries[i].ExitReason = reason
			return nil
		}
	}
	return fmt.Errorf("recovery %s: %w", id, domain.ErrNotFound)
}

// RecalibrationRepo stores persona snapshots and the recalibration log.
type RecalibrationRepo struct{ s *Store }

func (s *Store) Recalibration() *RecalibrationRepo { return &RecalibrationRepo{s: s} }

func (r *RecalibrationRepo) CloseCurrentSnapshot(_ context.Context, learnerID uuid.UUID, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for i, snap := range r.s.personaSnapshots {
		if snap.LearnerID == learnerID && snap.ValidTo == nil {
			r.s.personaSnapshots[i].ValidTo = &at
		}
	}
	return nil
}

func (r *RecalibrationRepo) CreateSnapshot(_ context.Context, snap *domain.PersonaSnapshot) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if snap.ID == uuid.Nil {
		snap.ID = uuid.New()
	}
	r.s.personaSnapshots = append(r.s.personaSnapshots, *snap)
	return nil
}

func (r *RecalibrationRepo) CreateLog(_ context.Context, e *domain.RecalibrationLogEntry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	r.s.recalLogs = append(r.s.recalLogs, *e)
	return nil
}

// LastAppliedAt returns when the last parameter-changing run happened, or nil.
func (r *RecalibrationRepo) LastAppliedAt(_ context.Context, learnerID uuid.UUID) (*time.Time, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var last *time.Time
	for _, e := range r.s.recalLogs {
		if e.LearnerID == learnerID && e.Outcome == domain.OutcomeApplied {
			if last == nil || e.CreatedAt.After(*last) {
				at := e.CreatedAt
				last = &at
			}
		}
	}
	return last, nil
}

func (r *RecalibrationRepo) ListLogs(_ context.Context, learnerID uuid.UUID) ([]domain.RecalibrationLogEntry, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []domain.RecalibrationLogEntry
	for _, e := range r.s.recalLogs {
		if e.LearnerID == learnerID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *RecalibrationRepo) ListSnapshots(_ context.Context, learnerID uuid.UUID) ([]domain.PersonaSnapshot, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []domain.PersonaSnapshot
	for _, snap := range r.s.personaSnapshots {
		if snap.LearnerID == learnerID {
			out = append(out, snap)
		}
	}
	return out, nil
}
