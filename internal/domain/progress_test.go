package domain

import "testing"

func TestClassifyConfidence(t *testing.T) {
	t.Parallel()

	tests := []struct {
		score int
		want  ConfidenceStatus
	}{
		{100, ConfidenceFresh},
		{70, ConfidenceFresh},
		{69, ConfidenceFading},
		{45, ConfidenceFading},
		{44, ConfidenceStale},
		{20, ConfidenceStale},
		{19, ConfidenceDecayed},
		{0, ConfidenceDecayed},
	}
	for _, tt := range tests {
		if got := ClassifyConfidence(tt.score); got != tt.want {
			t.Errorf("ClassifyConfidence(%d) = %s, want %s", tt.score, got, tt.want)
		}
	}
}

func TestClassifyConfidence_Total(t *testing.T) {
	t.Parallel()

	for score := 0; score <= 100; score++ {
		if !ClassifyConfidence(score).IsValid() {
			t.Fatalf("ClassifyConfidence(%d) returned invalid status", score)
		}
	}
}
