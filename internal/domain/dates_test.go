package domain

import (
	"testing"
	"time"
)

func TestDay_TruncatesToUTCMidnight(t *testing.T) {
	t.Parallel()

	in := time.Date(2026, 3, 14, 23, 59, 0, 0, time.UTC)
	got := Day(in)
	want := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("Day() = %v, want %v", got, want)
	}
}

func TestLocalDay_UsesLearnerTimezone(t *testing.T) {
	t.Parallel()

	tz := time.FixedZone("IST", 5*3600+1800)
	now := time.Date(2026, 3, 14, 20, 0, 0, 0, time.UTC) // 01:30 next day in IST
	got := LocalDay(now, tz)
	want := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("LocalDay() = %v, want %v", got, want)
	}
}

func TestDaysBetween(t *testing.T) {
	t.Parallel()

	a := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	b := time.Date(2026, 1, 11, 2, 0, 0, 0, time.UTC)
	if got := DaysBetween(a, b); got != 10 {
		t.Errorf("DaysBetween() = %d, want 10", got)
	}
	if got := DaysBetween(b, a); got != -10 {
		t.Errorf("DaysBetween() reversed = %d, want -10", got)
	}
}

func TestRound2(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in, want float64
	}{
		{1.005, 1.0},
		{0.125, 0.13},
		{-4.999, -5},
		{2.0, 2.0},
	}
	for _, tt := range tests {
		if got := Round2(tt.in); got != tt.want {
			t.Errorf("Round2(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
