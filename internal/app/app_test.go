package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/studyplanner-backend/internal/adapter/postgres/testhelper"
	"github.com/heartmarshall/studyplanner-backend/internal/config"
	"github.com/heartmarshall/studyplanner-backend/internal/domain"
	"github.com/heartmarshall/studyplanner-backend/internal/service/planner"
	"github.com/heartmarshall/studyplanner-backend/internal/service/recalibration"
	"github.com/heartmarshall/studyplanner-backend/internal/service/srs/fsrs"
)

type recordingPublisher struct {
	got []domain.Intent
	err error
}

func (p *recordingPublisher) Publish(_ context.Context, in domain.Intent) error {
	if p.err != nil {
		return p.err
	}
	p.got = append(p.got, in)
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestWire_BuildsEveryService(t *testing.T) {
	t.Parallel()

	mock := testhelper.NewMockPool(t)
	c := Wire(discardLogger(), &config.Config{}, mock, nil)

	assert.NotNil(t, c.Learners)
	assert.NotNil(t, c.Catalog)
	assert.NotNil(t, c.Progress)
	assert.NotNil(t, c.Plans)
	assert.NotNil(t, c.Insights)
	assert.NotNil(t, c.Audit)
	assert.NotNil(t, c.Schedules)
	assert.NotNil(t, c.Snapshots)
	assert.NotNil(t, c.Buffer)
	assert.NotNil(t, c.Health)
	assert.NotNil(t, c.RecalStore)
	assert.NotNil(t, c.SRS)
	assert.NotNil(t, c.Confidence)
	assert.NotNil(t, c.Fatigue)
	assert.NotNil(t, c.Velocity)
	assert.NotNil(t, c.Recalibration)
	assert.NotNil(t, c.Planner)
	assert.NotNil(t, c.Maintenance)
	assert.NotNil(t, c.Outbox)

	// Close without acquired resources is a no-op.
	c.Close()
}

func TestWire_OutboxUsesPublisher(t *testing.T) {
	t.Parallel()

	pub := &recordingPublisher{}
	c := Wire(discardLogger(), &config.Config{}, testhelper.NewMockPool(t), pub)

	learnerID := uuid.New()
	n := c.Outbox.Dispatch(context.Background(),
		domain.NewIntent(domain.IntentBufferDebt, learnerID, time.Now(), nil),
		domain.NewIntent(domain.IntentCascadeTriggered, learnerID, time.Now(), nil),
	)
	assert.Equal(t, 2, n)
	require.Len(t, pub.got, 2)
	assert.Equal(t, domain.IntentBufferDebt, pub.got[0].Kind)
}

func TestWire_OutboxSwallowsPublishErrors(t *testing.T) {
	t.Parallel()

	pub := &recordingPublisher{err: errors.New("connection refused")}
	c := Wire(discardLogger(), &config.Config{}, testhelper.NewMockPool(t), pub)

	n := c.Outbox.Dispatch(context.Background(), domain.NewIntent(domain.IntentBufferDebt, uuid.New(), time.Now(), nil))
	assert.Zero(t, n)
}

func TestWire_MaintenanceWithNoLearners(t *testing.T) {
	t.Parallel()

	mock := testhelper.NewMockPool(t)
	mock.ExpectQuery(`SELECT learner_id FROM learner_profiles`).
		WillReturnRows(pgxmock.NewRows([]string{"learner_id"}))

	c := Wire(discardLogger(), &config.Config{
		Maintenance: config.MaintenanceConfig{PerLearnerTimeout: time.Second, Parallelism: 2},
	}, mock, nil)

	res, err := c.Maintenance.Run(context.Background(), time.Date(2025, 7, 16, 22, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "completed", res.Status)
	assert.Zero(t, res.LearnersProcessed)
	assert.Equal(t, time.Date(2025, 7, 16, 0, 0, 0, 0, time.UTC), res.Date)
}

func TestSRSParameters(t *testing.T) {
	t.Parallel()

	t.Run("from config", func(t *testing.T) {
		t.Parallel()
		p := SRSParameters(config.SRSConfig{
			DefaultRetention: 0.85,
			MaxIntervalDays:  180,
			EnableFuzz:       false,
			LearningSteps:    []time.Duration{2 * time.Minute},
			RelearningSteps:  []time.Duration{5 * time.Minute},
		})
		assert.InDelta(t, 0.85, p.TargetRetention, 1e-9)
		assert.Equal(t, 180, p.MaxIntervalDays)
		assert.False(t, p.EnableFuzz)
		assert.Equal(t, []time.Duration{2 * time.Minute}, p.LearningSteps)
		assert.Equal(t, []time.Duration{5 * time.Minute}, p.RelearningSteps)
		assert.Equal(t, fsrs.DefaultWeights, p.W)
	})

	t.Run("zero values keep defaults", func(t *testing.T) {
		t.Parallel()
		def := fsrs.DefaultParameters()
		p := SRSParameters(config.SRSConfig{EnableFuzz: true})
		assert.InDelta(t, def.TargetRetention, p.TargetRetention, 1e-9)
		assert.Equal(t, def.MaxIntervalDays, p.MaxIntervalDays)
		assert.Equal(t, def.LearningSteps, p.LearningSteps)
		assert.Equal(t, def.RelearningSteps, p.RelearningSteps)
	})
}

func TestPlannerConfig(t *testing.T) {
	t.Parallel()

	assert.Equal(t, planner.DefaultConfig(), PlannerConfig(config.PlannerConfig{}))

	got := PlannerConfig(config.PlannerConfig{MaxTopicsPerDay: 5, WeekendMultiplier: 1.2})
	want := planner.DefaultConfig()
	want.MaxTopicsPerDay = 5
	want.WeekendMultiplier = 1.2
	assert.Equal(t, want, got)
}

func TestRecalibrationConfig(t *testing.T) {
	t.Parallel()

	assert.Equal(t, recalibration.DefaultConfig(), RecalibrationConfig(config.RecalibrationConfig{}))

	got := RecalibrationConfig(config.RecalibrationConfig{CooldownDays: 5, DriftLimit: 0.1})
	assert.Equal(t, 5, got.CooldownDays)
	assert.InDelta(t, 0.1, got.DriftLimit, 1e-9)
	assert.Equal(t, recalibration.DefaultConfig().WindowDays, got.WindowDays)
}
