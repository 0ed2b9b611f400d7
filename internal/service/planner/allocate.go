package planner

import (
	"github.com/google/uuid"

	"github.com/heartmarshall/studyplanner-backend/internal/domain"
)

const epsilon = 1e-9

// tally tracks the budgets consumed by a set of picks.
type tally struct {
	hours      float64
	revision   float64
	bySubject  map[uuid.UUID]float64
	challenges int
	stretches  int
	difficulty int
	count      int
}

func newTally(picks []Candidate) *tally {
	t := &tally{bySubject: map[uuid.UUID]float64{}}
	for _, p := range picks {
		t.add(p)
	}
	return t
}

func (t *tally) add(c Candidate) {
	t.hours += c.Hours
	t.bySubject[c.Topic.SubjectID] += c.Hours
	if c.Type.IsRevision() {
		t.revision += c.Hours
	}
	switch c.Type {
	case domain.PlanItemChallenge:
		t.challenges++
	case domain.PlanItemStretch:
		t.stretches++
	}
	t.difficulty += c.Topic.Difficulty
	t.count++
}

// fits reports whether c can join the picks without breaking a limit.
func (t *tally) fits(c Candidate, capa Capacity, cfg Config) bool {
	if t.count >= capa.MaxTopics {
		return false
	}
	if t.hours+c.Hours > capa.AvailableHours+epsilon {
		return false
	}
	if t.bySubject[c.Topic.SubjectID]+c.Hours > capa.SubjectBudget+epsilon {
		return false
	}
	if c.Type.IsRevision() && t.revision+c.Hours > capa.RevisionBudget+epsilon {
		return false
	}
	if c.Type == domain.PlanItemChallenge && t.challenges >= cfg.ChallengeCap {
		return false
	}
	if c.Type == domain.PlanItemStretch && t.stretches >= cfg.StretchCap {
		return false
	}
	if capa.MaxAvgDifficulty > 0 {
		avg := float64(t.difficulty+c.Topic.Difficulty) / float64(t.count+1)
		if avg > capa.MaxAvgDifficulty+epsilon {
			return false
		}
	}
	return true
}

// Allocate greedily fills the day from the scored candidates. Each round
// takes the feasible candidate with the best priority, plus the variety
// bonus when its subject differs from the previous pick. If everything
// picked shares one subject, the lowest-priority pick is swapped for the
// best feasible candidate from another subject.
func Allocate(cands []Candidate, capa Capacity, cfg Config) []Candidate {
	used := make([]bool, len(cands))
	var picks []Candidate
	t := newTally(nil)

	for {
		best, bestScore := -1, 0.0
		for i, c := range cands {
			if used[i] || !t.fits(c, capa, cfg) {
				continue
			}
			score := c.Priority
			if len(picks) > 0 && c.Topic.SubjectID != picks[len(picks)-1].Topic.SubjectID {
				score += cfg.VarietyBonus
			}
			if best < 0 || score > bestScore {
				best, bestScore = i, score
			}
		}
		if best < 0 {
			break
		}
		used[best] = true
		picks = append(picks, cands[best])
		t.add(cands[best])
	}

	return diversify(picks, cands, used, capa, cfg)
}

func diversify(picks, cands []Candidate, used []bool, capa Capacity, cfg Config) []Candidate {
	if len(picks) < 2 || subjectCount(picks) > 1 {
		return picks
	}

	victim := 0
	for i, p := range picks {
		if p.Priority < picks[victim].Priority {
			victim = i
		}
	}
	rest := make([]Candidate, 0, len(picks)-1)
	rest = append(rest, picks[:victim]...)
	rest = append(rest, picks[victim+1:]...)
	t := newTally(rest)

	subject := picks[0].Topic.SubjectID
	for i, c := range cands {
		if used[i] || c.Topic.SubjectID == subject || !t.fits(c, capa, cfg) {
			continue
		}
		picks[victim] = c
		return picks
	}
	return picks
}

func subjectCount(picks []Candidate) int {
	seen := map[uuid.UUID]bool{}
	for _, p := range picks {
		seen[p.Topic.SubjectID] = true
	}
	return len(seen)
}
