package testhelper

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/heartmarshall/studyplanner-backend/internal/domain"
)

// uniqueSuffix returns a short unique string for generating non-conflicting test data.
func uniqueSuffix() string {
	return uuid.New().String()[:8]
}

// SeedLearner creates a balanced-mode learner with an exam 90 days out.
func SeedLearner(t *testing.T, pool *pgxpool.Pool) domain.LearnerProfile {
	t.Helper()
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Microsecond)
	params := domain.DefaultPersonaParams(domain.StrategyBalanced)
	p := domain.LearnerProfile{
		LearnerID:       uuid.New(),
		DailyHours:      6,
		ExamDate:        domain.Day(now).AddDate(0, 0, 90),
		StrategyMode:    domain.StrategyBalanced,
		ExamMode:        domain.ExamModeFull,
		AttemptNumber:   1,
		BufferInitial:   domain.InitialBuffer(90, params.BufferCapacity),
		AutoRecalibrate: true,
		Timezone:        "UTC",
		Params:          params,
		Active:          true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	p.BufferBalance = p.BufferInitial

	raw, err := json.Marshal(p.Params)
	if err != nil {
		t.Fatalf("testhelper: SeedLearner marshal params: %v", err)
	}

	_, err = pool.Exec(ctx,
		`INSERT INTO learner_profiles (learner_id, daily_hours, exam_date, strategy_mode, exam_mode,
		     buffer_initial, buffer_balance, timezone, persona_params, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		p.LearnerID, p.DailyHours, p.ExamDate, string(p.StrategyMode), string(p.ExamMode),
		p.BufferInitial, p.BufferBalance, p.Timezone, raw, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedLearner insert: %v", err)
	}

	return p
}

// SeedTopic creates a subject, chapter and one topic with the given weights.
func SeedTopic(t *testing.T, pool *pgxpool.Pool, pyq, difficulty int) domain.Topic {
	t.Helper()
	ctx := context.Background()

	suffix := uniqueSuffix()
	topic := domain.Topic{
		ID:             uuid.New(),
		SubjectID:      uuid.New(),
		ChapterID:      uuid.New(),
		Name:           "Topic " + suffix,
		PYQWeight:      pyq,
		Importance:     3,
		Difficulty:     difficulty,
		EstimatedHours: 1.5,
	}

	if _, err := pool.Exec(ctx, `INSERT INTO subjects (id, name) VALUES ($1, $2)`, topic.SubjectID, "Subject "+suffix); err != nil {
		t.Fatalf("testhelper: SeedTopic insert subject: %v", err)
	}
	if _, err := pool.Exec(ctx, `INSERT INTO chapters (id, subject_id, name) VALUES ($1, $2, $3)`, topic.ChapterID, topic.SubjectID, "Chapter "+suffix); err != nil {
		t.Fatalf("testhelper: SeedTopic insert chapter: %v", err)
	}
	_, err := pool.Exec(ctx,
		`INSERT INTO topics (id, subject_id, chapter_id, name, pyq_weight, importance, difficulty, estimated_hours)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		topic.ID, topic.SubjectID, topic.ChapterID, topic.Name, topic.PYQWeight, topic.Importance, topic.Difficulty, topic.EstimatedHours,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedTopic insert topic: %v", err)
	}

	return topic
}
