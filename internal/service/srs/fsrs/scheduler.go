package fsrs

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/studyplanner-backend/internal/domain"
)

const day = 24 * time.Hour

// Parameters configure a Scheduler.
type Parameters struct {
	W               Weights
	TargetRetention float64
	MaxIntervalDays int
	EnableFuzz      bool
	LearningSteps   []time.Duration
	RelearningSteps []time.Duration
}

// DefaultParameters returns the FSRS-5 defaults with 90% target retention.
func DefaultParameters() Parameters {
	return Parameters{
		W:               DefaultWeights,
		TargetRetention: 0.9,
		MaxIntervalDays: 365,
		EnableFuzz:      true,
		LearningSteps:   []time.Duration{time.Minute, 10 * time.Minute},
		RelearningSteps: []time.Duration{10 * time.Minute},
	}
}

// WithRetention returns a copy of p using the learner's target retention.
func (p Parameters) WithRetention(r float64) Parameters {
	if r > 0 && r < 1 {
		p.TargetRetention = r
	}
	return p
}

// Review applies a rating to the card at now and returns the updated card.
// The input card is not modified.
func Review(p Parameters, card domain.Card, rating Rating, now time.Time) (domain.Card, error) {
	if !rating.IsValid() {
		return card, fmt.Errorf("fsrs: invalid rating %d", rating)
	}

	if card.LastReview != nil {
		card.ElapsedDays = int(ElapsedDays(*card.LastReview, now))
	}
	card.Reps++
	card.LastReview = &now

	switch card.State {
	case domain.CardStateNew:
		return p.reviewNew(card, rating, now), nil
	case domain.CardStateLearning:
		return p.reviewLearning(card, rating, now, p.LearningSteps), nil
	case domain.CardStateRelearning:
		return p.reviewLearning(card, rating, now, p.RelearningSteps), nil
	case domain.CardStateReview:
		return p.reviewReview(card, rating, now), nil
	default:
		return domain.Card{}, fmt.Errorf("fsrs: unknown card state %q", card.State)
	}
}

// NewCard returns an unreviewed card due immediately.
func NewCard(learnerID, topicID uuid.UUID, now time.Time) domain.Card {
	return domain.Card{
		ID:        uuid.New(),
		LearnerID: learnerID,
		TopicID:   topicID,
		State:     domain.CardStateNew,
		Due:       now,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (p Parameters) reviewNew(card domain.Card, rating Rating, now time.Time) domain.Card {
	steps := stepsOrDefault(p.LearningSteps, time.Minute)
	s := p.W.InitialStability(rating)
	d := p.W.InitialDifficulty(rating)
	card.Stability, card.Difficulty = s, d

	switch rating {
	case Again:
		return learningStep(card, domain.CardStateLearning, 0, now.Add(steps[0]))
	case Hard:
		delay := steps[0]
		if len(steps) > 1 {
			delay = (steps[0] + steps[1]) / 2
		}
		return learningStep(card, domain.CardStateLearning, 0, now.Add(delay))
	case Good:
		if len(steps) > 1 {
			return learningStep(card, domain.CardStateLearning, 1, now.Add(steps[1]))
		}
		return p.graduate(card, now)
	default:
		card = p.graduate(card, now)
		return p.easyFloor(card, p.W.InitialStability(Good), now)
	}
}

func (p Parameters) reviewLearning(card domain.Card, rating Rating, now time.Time, steps []time.Duration) domain.Card {
	steps = stepsOrDefault(steps, time.Minute)
	preS := card.Stability

	card.Stability = p.W.ShortTermStability(card.Stability, rating)
	card.Difficulty = p.W.NextDifficulty(card.Difficulty, rating)

	switch rating {
	case Again:
		return learningStep(card, card.State, 0, now.Add(steps[0]))
	case Hard:
		step := min(card.Step, len(steps)-1)
		return learningStep(card, card.State, step, now.Add(steps[step]))
	case Good:
		if next := card.Step + 1; next < len(steps) {
			return learningStep(card, card.State, next, now.Add(steps[next]))
		}
		return p.graduate(card, now)
	default:
		card = p.graduate(card, now)
		return p.easyFloor(card, p.W.ShortTermStability(preS, Good), now)
	}
}

func (p Parameters) reviewReview(card domain.Card, rating Rating, now time.Time) domain.Card {
	elapsed := max(1, card.ElapsedDays)
	r := Retrievability(card.Stability, float64(elapsed))
	preD := card.Difficulty
	nextD := p.W.NextDifficulty(card.Difficulty, rating)

	if rating == Again {
		card.Lapses++
		card.Difficulty = nextD
		card.Stability = p.W.ForgetStability(card.Stability, preD, r)
		steps := stepsOrDefault(p.RelearningSteps, 10*time.Minute)
		return learningStep(card, domain.CardStateRelearning, 0, now.Add(steps[0]))
	}

	// All three recall outcomes use the pre-update difficulty so the
	// intervals can be ordered Hard <= Good < Easy.
	stab := map[Rating]float64{
		Hard: p.W.RecallStability(card.Stability, preD, r, Hard),
		Good: p.W.RecallStability(card.Stability, preD, r, Good),
		Easy: p.W.RecallStability(card.Stability, preD, r, Easy),
	}
	hard, good, easy := p.orderedIntervals(
		p.clamp(NextInterval(stab[Hard], p.TargetRetention)),
		p.clamp(NextInterval(stab[Good], p.TargetRetention)),
		p.clamp(NextInterval(stab[Easy], p.TargetRetention)),
	)

	if p.EnableFuzz {
		seed := fuzzSeed(now, card.Reps, card.Difficulty, card.Stability)
		hard, good, easy = p.orderedIntervals(
			fuzz(hard, float64(elapsed), p.MaxIntervalDays, seed),
			fuzz(good, float64(elapsed), p.MaxIntervalDays, seed+1),
			fuzz(easy, float64(elapsed), p.MaxIntervalDays, seed+2),
		)
	}

	interval := map[Rating]int{Hard: hard, Good: good, Easy: easy}[rating]

	card.Difficulty = nextD
	card.Stability = stab[rating]
	card.State = domain.CardStateReview
	card.Step = 0
	card.ScheduledDays = p.clamp(interval)
	card.Due = now.Add(time.Duration(card.ScheduledDays) * day)
	return card
}

// graduate moves a card into REVIEW at the interval implied by its stability.
func (p Parameters) graduate(card domain.Card, now time.Time) domain.Card {
	card.State = domain.CardStateReview
	card.Step = 0
	card.ScheduledDays = p.clamp(NextInterval(card.Stability, p.TargetRetention))
	card.Due = now.Add(time.Duration(card.ScheduledDays) * day)
	return card
}

// easyFloor keeps an Easy graduation strictly longer than the Good one would have been.
func (p Parameters) easyFloor(card domain.Card, goodStability float64, now time.Time) domain.Card {
	goodIvl := p.clamp(NextInterval(goodStability, p.TargetRetention))
	if card.ScheduledDays <= goodIvl {
		card.ScheduledDays = p.clamp(goodIvl + 1)
		card.Due = now.Add(time.Duration(card.ScheduledDays) * day)
	}
	return card
}

func (p Parameters) orderedIntervals(hard, good, easy int) (int, int, int) {
	hard = min(hard, good)
	if good <= hard {
		good = hard + 1
	}
	if easy <= good {
		easy = good + 1
	}
	return p.clamp(hard), p.clamp(good), p.clamp(easy)
}

func (p Parameters) clamp(interval int) int {
	return max(1, min(interval, max(1, p.MaxIntervalDays)))
}

func learningStep(card domain.Card, state domain.CardState, step int, due time.Time) domain.Card {
	card.State = state
	card.Step = step
	card.ScheduledDays = 0
	card.Due = due
	return card
}

func stepsOrDefault(steps []time.Duration, fallback time.Duration) []time.Duration {
	if len(steps) == 0 {
		return []time.Duration{fallback}
	}
	return steps
}
