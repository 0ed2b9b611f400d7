package fsrs

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/studyplanner-backend/internal/domain"
)

var testNow = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

func newTestParams() Parameters {
	p := DefaultParameters()
	p.EnableFuzz = false
	return p
}

func reviewCard(stability, difficulty float64, daysSinceReview int) domain.Card {
	last := testNow.AddDate(0, 0, -daysSinceReview)
	return domain.Card{
		State:      domain.CardStateReview,
		Stability:  stability,
		Difficulty: difficulty,
		LastReview: &last,
		Reps:       4,
	}
}

func TestReview_New(t *testing.T) {
	t.Parallel()

	tests := []struct {
		rating    Rating
		wantState domain.CardState
		wantStep  int
		wantDue   time.Time
	}{
		{Again, domain.CardStateLearning, 0, testNow.Add(time.Minute)},
		{Hard, domain.CardStateLearning, 0, testNow.Add(330 * time.Second)},
		{Good, domain.CardStateLearning, 1, testNow.Add(10 * time.Minute)},
		{Easy, domain.CardStateReview, 0, testNow.AddDate(0, 0, 15)},
	}
	for _, tt := range tests {
		t.Run(tt.rating.String(), func(t *testing.T) {
			t.Parallel()
			got, err := Review(newTestParams(), NewCard(uuid.New(), uuid.New(), testNow), tt.rating, testNow)
			if err != nil {
				t.Fatalf("Review: %v", err)
			}
			if got.State != tt.wantState {
				t.Errorf("state = %s, want %s", got.State, tt.wantState)
			}
			if got.Step != tt.wantStep {
				t.Errorf("step = %d, want %d", got.Step, tt.wantStep)
			}
			if !got.Due.Equal(tt.wantDue) {
				t.Errorf("due = %v, want %v", got.Due, tt.wantDue)
			}
			if got.Stability != DefaultWeights[tt.rating-1] {
				t.Errorf("stability = %v, want %v", got.Stability, DefaultWeights[tt.rating-1])
			}
			if got.Reps != 1 || got.LastReview == nil || !got.LastReview.Equal(testNow) {
				t.Errorf("reps/last review not recorded: %d %v", got.Reps, got.LastReview)
			}
		})
	}
}

func TestReview_Learning_GraduatesOnLastStep(t *testing.T) {
	t.Parallel()

	card := domain.Card{State: domain.CardStateLearning, Step: 1, Stability: 3, Difficulty: 5}
	got, err := Review(newTestParams(), card, Good, testNow)
	if err != nil {
		t.Fatalf("Review: %v", err)
	}
	if got.State != domain.CardStateReview {
		t.Fatalf("state = %s, want REVIEW", got.State)
	}
	if got.ScheduledDays != 3 {
		t.Errorf("scheduledDays = %d, want 3", got.ScheduledDays)
	}
}

func TestReview_Learning_AgainResetsStep(t *testing.T) {
	t.Parallel()

	card := domain.Card{State: domain.CardStateLearning, Step: 1, Stability: 3, Difficulty: 5}
	got, err := Review(newTestParams(), card, Again, testNow)
	if err != nil {
		t.Fatalf("Review: %v", err)
	}
	if got.State != domain.CardStateLearning || got.Step != 0 {
		t.Errorf("got %s step %d, want LEARNING step 0", got.State, got.Step)
	}
	if got.Stability >= card.Stability {
		t.Errorf("stability should shrink on Again: %v -> %v", card.Stability, got.Stability)
	}
}

func TestReview_Review_IntervalOrdering(t *testing.T) {
	t.Parallel()

	for _, fuzzOn := range []bool{false, true} {
		p := newTestParams()
		p.EnableFuzz = fuzzOn

		days := map[Rating]int{}
		for _, r := range []Rating{Hard, Good, Easy} {
			got, err := Review(p, reviewCard(10, 5, 10), r, testNow)
			if err != nil {
				t.Fatalf("Review(%s): %v", r, err)
			}
			if got.State != domain.CardStateReview {
				t.Errorf("%s: state = %s, want REVIEW", r, got.State)
			}
			if got.ElapsedDays != 10 {
				t.Errorf("%s: elapsedDays = %d, want 10", r, got.ElapsedDays)
			}
			days[r] = got.ScheduledDays
		}
		if !(days[Hard] <= days[Good] && days[Good] < days[Easy]) {
			t.Errorf("fuzz=%v: want hard <= good < easy, got %v", fuzzOn, days)
		}
	}
}

func TestReview_Review_Lapse(t *testing.T) {
	t.Parallel()

	card := reviewCard(10, 5, 10)
	got, err := Review(newTestParams(), card, Again, testNow)
	if err != nil {
		t.Fatalf("Review: %v", err)
	}
	if got.State != domain.CardStateRelearning {
		t.Errorf("state = %s, want RELEARNING", got.State)
	}
	if got.Lapses != 1 {
		t.Errorf("lapses = %d, want 1", got.Lapses)
	}
	if got.Stability >= card.Stability {
		t.Errorf("stability should drop after a lapse: %v -> %v", card.Stability, got.Stability)
	}
	if !got.Due.Equal(testNow.Add(10 * time.Minute)) {
		t.Errorf("due = %v, want +10m", got.Due)
	}

	back, err := Review(newTestParams(), got, Good, testNow.Add(10*time.Minute))
	if err != nil {
		t.Fatalf("Review relearning: %v", err)
	}
	if back.State != domain.CardStateReview {
		t.Errorf("relearning Good: state = %s, want REVIEW", back.State)
	}
}

func TestReview_MaxIntervalClamp(t *testing.T) {
	t.Parallel()

	p := newTestParams()
	p.MaxIntervalDays = 30
	for _, r := range []Rating{Hard, Good, Easy} {
		got, err := Review(p, reviewCard(1000, 3, 200), r, testNow)
		if err != nil {
			t.Fatalf("Review(%s): %v", r, err)
		}
		if got.ScheduledDays > 30 || got.ScheduledDays < 1 {
			t.Errorf("%s: scheduledDays = %d, want in [1, 30]", r, got.ScheduledDays)
		}
	}
}

func TestReview_HigherRetentionShortensInterval(t *testing.T) {
	t.Parallel()

	loose, err := Review(newTestParams().WithRetention(0.80), reviewCard(10, 5, 10), Good, testNow)
	if err != nil {
		t.Fatal(err)
	}
	strict, err := Review(newTestParams().WithRetention(0.95), reviewCard(10, 5, 10), Good, testNow)
	if err != nil {
		t.Fatal(err)
	}
	if strict.ScheduledDays >= loose.ScheduledDays {
		t.Errorf("0.95 retention gave %d days, 0.80 gave %d", strict.ScheduledDays, loose.ScheduledDays)
	}
}

func TestReview_Errors(t *testing.T) {
	t.Parallel()

	if _, err := Review(newTestParams(), domain.Card{State: domain.CardStateNew}, Rating(0), testNow); err == nil {
		t.Error("expected error for invalid rating")
	}
	if _, err := Review(newTestParams(), domain.Card{State: "ARCHIVED"}, Good, testNow); err == nil {
		t.Error("expected error for unknown state")
	}
}

func TestReview_DoesNotMutateInput(t *testing.T) {
	t.Parallel()

	card := reviewCard(10, 5, 10)
	last := *card.LastReview
	if _, err := Review(newTestParams(), card, Good, testNow); err != nil {
		t.Fatal(err)
	}
	if card.Reps != 4 || !card.LastReview.Equal(last) || card.Stability != 10 {
		t.Errorf("input card mutated: %+v", card)
	}
}
