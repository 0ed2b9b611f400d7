package card

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

// ReviewLogRepo provides the append-only review log.
type ReviewLogRepo struct {
	db postgres.Querier
}

// NewReviewLogs creates a new review log repository.
func NewReviewLogs(db postgres.Querier) *ReviewLogRepo {
	return &ReviewLogRepo{db: db}
}

const insertReviewLogSQL = `
INSERT INTO review_logs (id, card_id, learner_id, topic_id, rating, prev_state, reviewed_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

const listReviewLogsSQL = `
SELECT id, card_id, learner_id, topic_id, rating, prev_state, reviewed_at
FROM review_logs
WHERE learner_id = $1
ORDER BY reviewed_at`

// Create appends a review log row.
func (r *ReviewLogRepo) Create(ctx context.Context, l *domain.ReviewLog) error {
	q := postgres.QuerierFromCtx(ctx, r.db)

	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	prev, err := marshalPrevState(l.PrevState)
	if err != nil {
		return fmt.Errorf("review_log marshal prev_state: %w", err)
	}
	_, err = q.Exec(ctx, insertReviewLogSQL,
		l.ID, l.CardID, l.LearnerID, l.TopicID, l.Rating, prev, l.ReviewedAt)
	if err != nil {
		return postgres.MapError(err, "review_log", l.ID)
	}
	return nil
}

// ListByLearner returns the learner's reviews, oldest first.
func (r *ReviewLogRepo) ListByLearner(ctx context.Context, learnerID uuid.UUID) ([]domain.ReviewLog, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	rows, err := q.Query(ctx, listReviewLogsSQL, learnerID)
	if err != nil {
		return nil, fmt.Errorf("list review logs: %w", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.ReviewLog, error) {
		var (
			l    domain.ReviewLog
			prev []byte
		)
		if err := row.Scan(&l.ID, &l.CardID, &l.LearnerID, &l.TopicID, &l.Rating, &prev, &l.ReviewedAt); err != nil {
			return l, err
		}
		ps, err := unmarshalPrevState(prev)
		if err != nil {
			return l, err
		}
		l.PrevState = ps
		return l, nil
	})
	if err != nil {
		return nil, fmt.Errorf("list review logs: %w", err)
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// prev_state JSONB
// ---------------------------------------------------------------------------

// cardSnapshotJSON mirrors domain.CardSnapshot, which carries no json tags.
type cardSnapshotJSON struct {
	State         string     `json:"state"`
	Step          int        `json:"step"`
	Stability     float64    `json:"stability"`
	Difficulty    float64    `json:"difficulty"`
	Due           time.Time  `json:"due"`
	LastReview    *time.Time `json:"last_review,omitempty"`
	Reps          int        `json:"reps"`
	Lapses        int        `json:"lapses"`
	ScheduledDays int        `json:"scheduled_days"`
	ElapsedDays   int        `json:"elapsed_days"`
}

// marshalPrevState returns nil for a nil snapshot so the column stays NULL.
func marshalPrevState(cs *domain.CardSnapshot) ([]byte, error) {
	if cs == nil {
		return nil, nil
	}
	return json.Marshal(cardSnapshotJSON{
		State:         string(cs.State),
		Step:          cs.Step,
		Stability:     cs.Stability,
		Difficulty:    cs.Difficulty,
		Due:           cs.Due.UTC(),
		LastReview:    cs.LastReview,
		Reps:          cs.Reps,
		Lapses:        cs.Lapses,
		ScheduledDays: cs.ScheduledDays,
		ElapsedDays:   cs.ElapsedDays,
	})
}

func unmarshalPrevState(data []byte) (*domain.CardSnapshot, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var j cardSnapshotJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return nil, fmt.Errorf("unmarshal prev_state: %w", err)
	}
	return &domain.CardSnapshot{
		State:         domain.CardState(j.State),
		Step:          j.Step,
		Stability:     j.Stability,
		Difficulty:    j.Difficulty,
		Due:           j.Due,
		LastReview:    j.LastReview,
		Reps:          j.Reps,
		Lapses:        j.Lapses,
		ScheduledDays: j.ScheduledDays,
		ElapsedDays:   j.ElapsedDays,
	}, nil
}
