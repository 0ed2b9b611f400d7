package velocity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/heartmarshall/studyplanner-backend/internal/domain"
)

func TestRequiredVelocity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		remaining float64
		days      int
		buffer    float64
		revision  float64
		mult      float64
		want      float64
	}{
		{"nominal", 100, 50, 0.15, 0.25, 1, 3.3333},
		{"multiplier", 100, 50, 0.15, 0.25, 1.2, 4},
		{"nothing left", 0, 50, 0.15, 0.25, 1, 0},
		{"exam day counts as one day", 10, 0, 0.15, 0.25, 1, 16.6667},
		{"share floored", 10, 10, 0.30, 0.65, 1, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := RequiredVelocity(tt.remaining, tt.days, tt.buffer, tt.revision, tt.mult)
			assert.InDelta(t, tt.want, got, 1e-3)
		})
	}
}

func TestActualVelocity(t *testing.T) {
	t.Parallel()
	assert.InDelta(t, 4.0, ActualVelocity(5, 2.5), 1e-9)
}

func TestAverageGravity(t *testing.T) {
	t.Parallel()

	day := time.Date(2025, 7, 14, 0, 0, 0, 0, time.UTC)
	days := []domain.StudyDay{
		{Date: day, Gravity: 3, ItemsCompleted: 1},
		{Date: day.AddDate(0, 0, -6), Gravity: 4, ItemsCompleted: 1},
		{Date: day.AddDate(0, 0, -7), Gravity: 7, ItemsCompleted: 1},
		{Date: day.AddDate(0, 0, 1), Gravity: 100, ItemsCompleted: 1},
	}

	assert.InDelta(t, 1.0, AverageGravity(days, day, 7), 1e-9)
	assert.InDelta(t, 1.0, AverageGravity(days, day, 14), 1e-9)
	assert.Equal(t, 0.0, AverageGravity(days, day, 0))
}

func TestRatio(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 0.5, Ratio(2, 4), 1e-9)
	assert.Equal(t, domain.VelocityAheadMin, Ratio(1, 0))
}

func TestSignalVelocity(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 50.0, SignalVelocity(0.5))
	assert.Equal(t, 100.0, SignalVelocity(1.7))
	assert.Equal(t, 0.0, SignalVelocity(-1))
}

func TestStress(t *testing.T) {
	t.Parallel()

	tests := []struct {
		ratio, balance, want float64
	}{
		{0.5, -1, 0.7},
		{1.2, 5, 0},
		{0.8, 0.5, 0.32},
		{0, -3, 1},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, Stress(tt.ratio, tt.balance), 1e-9, "ratio %v balance %v", tt.ratio, tt.balance)
	}
}

func TestBufferEntry(t *testing.T) {
	t.Parallel()

	p := domain.DefaultPersonaParams(domain.StrategyBalanced)

	tests := []struct {
		name     string
		studied  bool
		actual   float64
		required float64
		days     int
		wantType domain.BufferTxType
		want     float64
	}{
		{"zero day", false, 0, 2, 30, domain.BufferTxZeroDayPenalty, -1},
		{"surplus", true, 3, 2, 30, domain.BufferTxDeposit, 0.3},
		{"surplus capped by days", true, 50, 0, 10, domain.BufferTxDeposit, 2},
		{"deficit", true, 1, 3, 30, domain.BufferTxWithdrawal, -1},
		{"deficit floored", true, 0, 20, 30, domain.BufferTxWithdrawal, -5},
		{"exact", true, 2, 2.005, 30, domain.BufferTxConsistencyBonus, 0.1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			typ, amount := BufferEntry(tt.studied, tt.actual, tt.required, tt.days, p)
			assert.Equal(t, tt.wantType, typ)
			assert.InDelta(t, tt.want, amount, 1e-9)
		})
	}
}

func TestClampBalance(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 15.0, ClampBalance(20, 15))
	assert.Equal(t, -5.0, ClampBalance(-7, 15))
	assert.Equal(t, 3.46, ClampBalance(3.456, 15))
}

func TestBacklog(t *testing.T) {
	t.Parallel()

	snaps := []domain.VelocitySnapshot{
		{RequiredVelocity: 3, ActualVelocity: 1},
		{RequiredVelocity: 2, ActualVelocity: 2.5},
	}
	assert.Equal(t, 2.0, Backlog(snaps))
	assert.Equal(t, 0.0, Backlog(nil))
}

func TestLowStreak(t *testing.T) {
	t.Parallel()

	low := []domain.VelocitySnapshot{{Ratio: 0.5}, {Ratio: 0.79}, {Ratio: 0.2}}
	assert.True(t, lowStreak(low))
	assert.False(t, lowStreak(low[:2]), "needs three snapshots")
	assert.False(t, lowStreak([]domain.VelocitySnapshot{{Ratio: 0.5}, {Ratio: 0.8}, {Ratio: 0.2}}))
}
