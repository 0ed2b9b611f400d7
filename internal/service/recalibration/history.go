package recalibration

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/heartmarshall/studyplanner-backend/internal/domain"
)

// History is a learner's persona timeline, oldest first.
type History struct {
	Snapshots []domain.PersonaSnapshot
	Logs      []domain.RecalibrationLogEntry
}

// History returns the persona snapshots and the most recent limit
// recalibration log entries. A limit of zero or less returns every entry.
func (s *Service) History(ctx context.Context, learnerID uuid.UUID, limit int) (*History, error) {
	if learnerID == uuid.Nil {
		return nil, domain.NewValidationError("learner_id", "required")
	}
	if _, err := s.learners.Get(ctx, learnerID); err != nil {
		return nil, fmt.Errorf("get learner: %w", err)
	}

	snaps, err := s.recal.ListSnapshots(ctx, learnerID)
	if err != nil {
		return nil, fmt.Errorf("list persona snapshots: %w", err)
	}
	logs, err := s.recal.ListLogs(ctx, learnerID)
	if err != nil {
		return nil, fmt.Errorf("list recalibration logs: %w", err)
	}
	if limit > 0 && len(logs) > limit {
		logs = logs[len(logs)-limit:]
	}
	return &History{Snapshots: snaps, Logs: logs}, nil
}
