package recalibration

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/heartmarshall/studyplanner-backend/internal/domain"
)

func TestParamBounds(t *testing.T) {
	t.Parallel()

	b := ParamBounds(domain.ParamBufferCapacity, 0.15, 0.2)
	assert.InDelta(t, 0.12, b.Min, 1e-9)
	assert.InDelta(t, 0.18, b.Max, 1e-9)

	b = ParamBounds(domain.ParamTargetRetention, 0.9, 0.2)
	assert.InDelta(t, 0.80, b.Min, 1e-9, "absolute bound is tighter")
	assert.InDelta(t, 0.95, b.Max, 1e-9)
}

func TestComputeAdjustments(t *testing.T) {
	t.Parallel()

	defaults := domain.DefaultPersonaParams(domain.StrategyBalanced)

	tests := []struct {
		name    string
		sig     domain.RecalibrationSignals
		current domain.PersonaParams
		want    map[domain.TunableParam]float64
	}{
		{
			name:    "struggling learner",
			sig:     domain.RecalibrationSignals{VelocityRatio: 0.6, BRI: 35, FatigueAvg: 75, StressAvg: 0.7, ConfidenceAvg: 60},
			current: defaults,
			want: map[domain.TunableParam]float64{
				domain.ParamTargetRetention:  0.88,
				domain.ParamBurnoutThreshold: 53,
				domain.ParamBufferCapacity:   0.17,
				domain.ParamFatigueThreshold: 65,
			},
		},
		{
			name:    "thriving learner",
			sig:     domain.RecalibrationSignals{VelocityRatio: 1.2, BRI: 80, FatigueAvg: 30, StressAvg: 0.2, ConfidenceAvg: 80},
			current: defaults,
			want: map[domain.TunableParam]float64{
				domain.ParamBurnoutThreshold: 48,
				domain.ParamBufferCapacity:   0.14,
				domain.ParamFatigueThreshold: 73,
			},
		},
		{
			name:    "decayed topics with pace to spare",
			sig:     domain.RecalibrationSignals{VelocityRatio: 1.0, BRI: 65, FatigueAvg: 50, StressAvg: 0.4, ConfidenceAvg: 60, CriticalWeaknessPct: 40},
			current: defaults,
			want:    map[domain.TunableParam]float64{domain.ParamTargetRetention: 0.91},
		},
		{
			name:    "low confidence while ahead",
			sig:     domain.RecalibrationSignals{VelocityRatio: 1.05, BRI: 65, FatigueAvg: 50, StressAvg: 0.4, ConfidenceAvg: 40},
			current: defaults,
			want:    map[domain.TunableParam]float64{domain.ParamTargetRetention: 0.91},
		},
		{
			name:    "neutral signals",
			sig:     domain.RecalibrationSignals{VelocityRatio: 1.0, BRI: 60, FatigueAvg: 50, StressAvg: 0.4, ConfidenceAvg: 100},
			current: defaults,
			want:    map[domain.TunableParam]float64{},
		},
		{
			name:    "already at bound",
			sig:     domain.RecalibrationSignals{VelocityRatio: 0.7, BRI: 50, FatigueAvg: 50, StressAvg: 0.6, ConfidenceAvg: 60},
			current: defaults.With(domain.ParamTargetRetention, 0.80).With(domain.ParamBufferCapacity, 0.18),
			want:    map[domain.TunableParam]float64{},
		},
		{
			name:    "customized value outside drift with no rule firing",
			sig:     domain.RecalibrationSignals{VelocityRatio: 1.0, BRI: 60, FatigueAvg: 50, StressAvg: 0.4, ConfidenceAvg: 100},
			current: defaults.With(domain.ParamFatigueThreshold, 95),
			want:    map[domain.TunableParam]float64{domain.ParamFatigueThreshold: 84},
		},
		{
			name:    "customized value outside drift with a rule firing",
			sig:     domain.RecalibrationSignals{VelocityRatio: 1.2, BRI: 80, FatigueAvg: 30, StressAvg: 0.2, ConfidenceAvg: 80},
			current: defaults.With(domain.ParamBufferCapacity, 0.30),
			want: map[domain.TunableParam]float64{
				domain.ParamBurnoutThreshold: 48,
				domain.ParamBufferCapacity:   0.18,
				domain.ParamFatigueThreshold: 73,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			next, reasons := ComputeAdjustments(tt.sig, tt.current, defaults, 0.2)

			assert.Len(t, reasons, len(tt.want))
			for _, name := range domain.TunableParams {
				want, changed := tt.want[name]
				if !changed {
					assert.Equal(t, tt.current.Get(name), next.Get(name), "%s must not change", name)
					continue
				}
				assert.InDelta(t, want, next.Get(name), 1e-9, name)
				assert.NotEmpty(t, reasons[name])
			}
			for _, name := range domain.TunableParams {
				b := ParamBounds(name, defaults.Get(name), 0.2)
				assert.InDelta(t, domain.Clamp(next.Get(name), b.Min, b.Max), next.Get(name), 1e-9, "%s within drift bounds", name)
			}
		})
	}
}

func TestConfidenceSignals(t *testing.T) {
	t.Parallel()

	touched := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	rows := []domain.Progress{
		{ConfidenceScore: 80, ConfidenceStatus: domain.ConfidenceFresh, Status: domain.TopicStatusFirstPass, LastTouched: &touched},
		{ConfidenceScore: 10, ConfidenceStatus: domain.ConfidenceDecayed, Status: domain.TopicStatusFirstPass, LastTouched: &touched},
		{ConfidenceScore: 0, ConfidenceStatus: domain.ConfidenceDecayed, Status: domain.TopicStatusUntouched},
		{ConfidenceScore: 0, ConfidenceStatus: domain.ConfidenceDecayed, Status: domain.TopicStatusDeferredScope, LastTouched: &touched},
	}

	avg, weak := confidenceSignals(rows)
	assert.Equal(t, 45.0, avg)
	assert.Equal(t, 50.0, weak)

	avg, weak = confidenceSignals(nil)
	assert.Equal(t, 100.0, avg)
	assert.Equal(t, 0.0, weak)
}
