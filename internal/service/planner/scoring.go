package planner

import (
	"bytes"
	"slices"

	"github.com/google/uuid"

	"github.com/heartmarshall/studyplanner-backend/internal/domain"
)

// Priority boosts for new-topic candidates.
const (
	decayedBoost = 6.0
	staleBoost   = 4.0

	neverTouchedBoost = 3.0
	untouched14dBoost = 2.0
	untouched7dBoost  = 1.0
	touchedTodayBoost = -2.0

	mockLowBoost = 3.0
	mockMidBoost = 1.5

	falseSecurityBoost = 4.0
	blindSpotBoost     = 3.0
	overRevisedBoost   = -3.0

	deferredBoost      = 3.0
	prelimsBoost       = 2.0
	weekendBoost       = 1.0
	weekendHeavyBoost  = 2.0
	challengeBoost     = 2.0
	lastAttemptBoost   = 2.0
	stressHardPenalty  = -3.0
	stressEasyBoost    = 1.0
	repetitionPenalty  = 0.5
	maxUrgency         = 10.0
	weekendLongHours   = 1.5
	prelimsMinPYQ      = 4
	challengeMinPYQ    = 4
	challengeMinConf   = 65
	stretchDifficulty  = 5
	heavyTopicMinDiff  = 4
	easyTopicMaxDiff   = 2
	revisionWeakBoost  = 2.0
	revisionStrongCost = -1.0
)

// Candidate is a topic competing for a slot in the day's plan.
type Candidate struct {
	Topic    domain.Topic
	Type     domain.PlanItemType
	Hours    float64
	Priority float64
}

// Candidates filters the eligible topics and scores each one. The result
// is ordered by priority, highest first, with topic ID as the tie-break.
func Candidates(snap *Snapshot, c Capacity, cfg Config) []Candidate {
	p := &snap.Profile
	out := make([]Candidate, 0, len(snap.Topics))

	for _, t := range snap.Topics {
		prog, ok := snap.Progress[t.ID]
		if !ok {
			prog = domain.NewProgress(p.LearnerID, t.ID)
		}
		if prog.Status == domain.TopicStatusExamReady || prog.Status == domain.TopicStatusDeferredScope {
			continue
		}
		if c.IsLightDay && t.Difficulty > cfg.LightDayMaxDifficulty {
			continue
		}
		if p.StrategyMode == domain.StrategyWorkingProfessional && t.PYQWeight < cfg.ProfessionalMinPYQ {
			continue
		}

		if src, due := snap.DueRevisions[t.ID]; due {
			typ := domain.PlanItemRevision
			if src == domain.ScheduleSourceDecay {
				typ = domain.PlanItemDecayRevision
			}
			out = append(out, Candidate{
				Topic:    t,
				Type:     typ,
				Hours:    t.RevisionHours(),
				Priority: domain.Round2(revisionPriority(snap, t)),
			})
			continue
		}

		if prog.Status != domain.TopicStatusUntouched && prog.Status != domain.TopicStatusInProgress {
			continue
		}

		typ := domain.PlanItemNew
		switch {
		case p.IsRepeater && prog.ConfidenceScore >= challengeMinConf && t.PYQWeight >= challengeMinPYQ:
			typ = domain.PlanItemChallenge
		case c.Energy == domain.EnergyFull && t.Difficulty >= stretchDifficulty:
			typ = domain.PlanItemStretch
		}
		out = append(out, Candidate{
			Topic:    t,
			Type:     typ,
			Hours:    t.StudyHours(),
			Priority: domain.Round2(newPriority(snap, c, cfg, t, prog, typ)),
		})
	}

	slices.SortStableFunc(out, compareCandidates)
	return out
}

func compareCandidates(a, b Candidate) int {
	switch {
	case a.Priority > b.Priority:
		return -1
	case a.Priority < b.Priority:
		return 1
	}
	return bytes.Compare(a.Topic.ID[:], b.Topic.ID[:])
}

func revisionPriority(snap *Snapshot, t domain.Topic) float64 {
	p := &snap.Profile
	score := t.RevisionPriority()
	if p.ExamMode == domain.ExamModePrelims && t.PYQWeight >= prelimsMinPYQ {
		score += prelimsBoost
	}
	if p.IsRepeater {
		switch {
		case p.IsWeakSubject(t.SubjectID):
			score += revisionWeakBoost
		case p.IsStrongSubject(t.SubjectID):
			score += revisionStrongCost
		}
	}
	return score
}

func newPriority(snap *Snapshot, c Capacity, cfg Config, t domain.Topic, prog domain.Progress, typ domain.PlanItemType) float64 {
	p := &snap.Profile
	weekend := domain.IsWeekend(snap.Date)

	urgency := min(maxUrgency, (1-snap.SubjectCompletion[t.SubjectID])*maxUrgency)
	score := float64(t.PYQWeight)*4 + float64(effectiveImportance(p, t))*2 + urgency*2

	if prog.LastTouched != nil {
		switch prog.ConfidenceStatus {
		case domain.ConfidenceDecayed:
			score += decayedBoost
		case domain.ConfidenceStale:
			score += staleBoost
		}
	}
	score += freshness(prog, snap)

	if acc := prog.MockAccuracy; acc != nil {
		switch {
		case *acc < 0.5:
			score += mockLowBoost
		case *acc < 0.7:
			score += mockMidBoost
		}
	}
	if p.ExamMode == domain.ExamModePrelims && t.PYQWeight >= prelimsMinPYQ {
		score += prelimsBoost
	}
	score += insightBoost(snap.Insights, t.ID)
	if snap.DeferredYesterday[t.ID] {
		score += deferredBoost
	}
	if weekend && t.EstimatedHours >= weekendLongHours {
		score += weekendBoost
	}
	if typ == domain.PlanItemChallenge {
		score += challengeBoost
	}
	if p.IsRepeater && p.IsWeakSubject(t.SubjectID) {
		score += lastAttemptBoost
	}
	if c.Energy == domain.EnergyLow || c.Energy == domain.EnergyEmpty {
		switch {
		case t.Difficulty >= heavyTopicMinDiff:
			score += stressHardPenalty
		case t.Difficulty <= easyTopicMaxDiff:
			score += stressEasyBoost
		}
	}
	if p.StrategyMode == domain.StrategyWorkingProfessional && weekend && t.Difficulty >= heavyTopicMinDiff {
		score += weekendHeavyBoost
	}

	if snap.RecentSubjects[t.SubjectID] >= cfg.SubjectRepeatThreshold {
		score *= repetitionPenalty
	}
	return score
}

// effectiveImportance shifts importance by one for weak and strong subjects.
func effectiveImportance(p *domain.LearnerProfile, t domain.Topic) int {
	imp := t.Importance
	switch {
	case p.IsWeakSubject(t.SubjectID):
		imp++
	case p.IsStrongSubject(t.SubjectID):
		imp--
	}
	return min(5, max(1, imp))
}

func freshness(prog domain.Progress, snap *Snapshot) float64 {
	if prog.LastTouched == nil {
		return neverTouchedBoost
	}
	hours := snap.Date.Sub(*prog.LastTouched).Hours()
	switch {
	case hours > 14*24:
		return untouched14dBoost
	case hours > 7*24:
		return untouched7dBoost
	case hours < 24:
		return touchedTodayBoost
	}
	return 0
}

func insightBoost(sets domain.InsightSets, topicID uuid.UUID) float64 {
	var b float64
	if sets.FalseSecurity[topicID] {
		b += falseSecurityBoost
	}
	if sets.BlindSpot[topicID] {
		b += blindSpotBoost
	}
	if sets.OverRevised[topicID] {
		b += overRevisedBoost
	}
	return b
}
