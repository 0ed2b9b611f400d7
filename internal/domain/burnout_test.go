package domain

import (
	"testing"
	"time"
)

func TestRecoveryDuration(t *testing.T) {
	t.Parallel()

	tests := []struct {
		bri  int
		want int
	}{
		{0, 7},
		{39, 7},
		{40, 5},
		{49, 5},
	}
	for _, tt := range tests {
		if got := RecoveryDuration(tt.bri); got != tt.want {
			t.Errorf("RecoveryDuration(%d) = %d, want %d", tt.bri, got, tt.want)
		}
	}
}

func TestRecoveryRampMultiplier(t *testing.T) {
	t.Parallel()

	exited := time.Date(2025, 4, 10, 18, 30, 0, 0, time.UTC)
	tests := []struct {
		name  string
		exit  *time.Time
		today time.Time
		want  float64
	}{
		{"never recovered", nil, exited, 1.0},
		{"exit day", &exited, time.Date(2025, 4, 10, 0, 0, 0, 0, time.UTC), 0.70},
		{"day after", &exited, time.Date(2025, 4, 11, 0, 0, 0, 0, time.UTC), 0.85},
		{"second day after", &exited, time.Date(2025, 4, 12, 0, 0, 0, 0, time.UTC), 1.0},
		{"long after", &exited, time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC), 1.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := RecoveryRampMultiplier(tt.exit, tt.today, time.UTC); got != tt.want {
				t.Errorf("RecoveryRampMultiplier = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRecoveryRampMultiplier_LocalExitDay(t *testing.T) {
	t.Parallel()

	// 22:30 on April 10 at UTC-4 is already April 11 in UTC.
	west := time.FixedZone("UTC-4", -4*3600)
	exited := time.Date(2025, 4, 10, 22, 30, 0, 0, west).UTC()

	days := []struct {
		today time.Time
		want  float64
	}{
		{time.Date(2025, 4, 10, 0, 0, 0, 0, time.UTC), 0.70},
		{time.Date(2025, 4, 11, 0, 0, 0, 0, time.UTC), 0.85},
		{time.Date(2025, 4, 12, 0, 0, 0, 0, time.UTC), 1.0},
	}
	for _, d := range days {
		if got := RecoveryRampMultiplier(&exited, d.today, west); got != d.want {
			t.Errorf("RecoveryRampMultiplier(%s) = %v, want %v", d.today.Format(time.DateOnly), got, d.want)
		}
	}
}

func TestRecoveryLog_IsOpen(t *testing.T) {
	t.Parallel()

	r := RecoveryLog{}
	if !r.IsOpen() {
		t.Error("log without exit should be open")
	}
	now := time.Now()
	r.ExitedAt = &now
	if r.IsOpen() {
		t.Error("log with exit should be closed")
	}
}
