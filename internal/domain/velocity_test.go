package domain

import "testing"

func TestClassifyVelocity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		ratio float64
		want  VelocityStatus
	}{
		{1.5, VelocityAhead},
		{1.1, VelocityAhead},
		{1.09, VelocityOnTrack},
		{0.9, VelocityOnTrack},
		{0.89, VelocityBehind},
		{0.7, VelocityBehind},
		{0.69, VelocityAtRisk},
		{0, VelocityAtRisk},
	}
	for _, tt := range tests {
		if got := ClassifyVelocity(tt.ratio); got != tt.want {
			t.Errorf("ClassifyVelocity(%v) = %s, want %s", tt.ratio, got, tt.want)
		}
	}
}

func TestClassifyTrend(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		avg7d, avg14d float64
		want          VelocityTrend
	}{
		{"improving", 12, 10, TrendImproving},
		{"declining", 8, 10, TrendDeclining},
		{"stable upper edge", 11, 10, TrendStable},
		{"stable lower edge", 9, 10, TrendStable},
		{"both zero", 0, 0, TrendStable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := ClassifyTrend(tt.avg7d, tt.avg14d); got != tt.want {
				t.Errorf("ClassifyTrend(%v, %v) = %s, want %s", tt.avg7d, tt.avg14d, got, tt.want)
			}
		})
	}
}
