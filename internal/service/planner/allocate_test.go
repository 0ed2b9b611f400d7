package planner

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/studyplanner-backend/internal/domain"
)

func cand(subject uuid.UUID, typ domain.PlanItemType, hours, priority float64, difficulty int) Candidate {
	return Candidate{
		Topic: domain.Topic{
			ID:         uuid.New(),
			SubjectID:  subject,
			PYQWeight:  3,
			Importance: 3,
			Difficulty: difficulty,
		},
		Type:     typ,
		Hours:    hours,
		Priority: priority,
	}
}

func roomy(hours float64) Capacity {
	return Capacity{
		AvailableHours: hours,
		MaxTopics:      20,
		RevisionRatio:  1,
		RevisionBudget: hours,
		SubjectBudget:  hours,
	}
}

func TestAllocate_NeverExceedsBudgets(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	subjects := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	types := []domain.PlanItemType{domain.PlanItemNew, domain.PlanItemRevision, domain.PlanItemDecayRevision, domain.PlanItemChallenge}

	for _, hours := range []float64{1, 2.5, 4, 6, 9} {
		t.Run(fmt.Sprintf("%.1fh", hours), func(t *testing.T) {
			t.Parallel()

			var cands []Candidate
			for i := 0; i < 30; i++ {
				cands = append(cands, cand(
					subjects[i%len(subjects)],
					types[i%len(types)],
					0.25+float64(i%5)*0.5,
					float64(40-i),
					1+i%5,
				))
			}
			capa := Capacity{
				AvailableHours: hours,
				MaxTopics:      8,
				RevisionRatio:  0.25,
				RevisionBudget: hours * 0.25,
				SubjectBudget:  hours * cfg.SubjectShare,
			}

			picks := Allocate(cands, capa, cfg)

			var total, revision float64
			bySubject := map[uuid.UUID]float64{}
			challenges := 0
			for _, p := range picks {
				total += p.Hours
				bySubject[p.Topic.SubjectID] += p.Hours
				if p.Type.IsRevision() {
					revision += p.Hours
				}
				if p.Type == domain.PlanItemChallenge {
					challenges++
				}
			}
			assert.LessOrEqual(t, total, capa.AvailableHours+epsilon)
			assert.LessOrEqual(t, revision, capa.RevisionBudget+epsilon)
			for _, h := range bySubject {
				assert.LessOrEqual(t, h, capa.SubjectBudget+epsilon)
			}
			assert.LessOrEqual(t, len(picks), capa.MaxTopics)
			assert.LessOrEqual(t, challenges, cfg.ChallengeCap)
		})
	}
}

func TestAllocate_VarietyBonusAlternatesSubjects(t *testing.T) {
	t.Parallel()

	a, b := uuid.New(), uuid.New()
	a1 := cand(a, domain.PlanItemNew, 1, 20, 3)
	a2 := cand(a, domain.PlanItemNew, 1, 19, 3)
	b1 := cand(b, domain.PlanItemNew, 1, 18, 3)

	picks := Allocate([]Candidate{a1, a2, b1}, roomy(10), DefaultConfig())

	require.Len(t, picks, 3)
	assert.Equal(t, a1.Topic.ID, picks[0].Topic.ID)
	assert.Equal(t, b1.Topic.ID, picks[1].Topic.ID, "18 + variety bonus beats 19 from the same subject")
	assert.Equal(t, a2.Topic.ID, picks[2].Topic.ID)
}

func TestAllocate_SwapsInSecondSubject(t *testing.T) {
	t.Parallel()

	a, b := uuid.New(), uuid.New()
	a1 := cand(a, domain.PlanItemNew, 1, 30, 3)
	a2 := cand(a, domain.PlanItemNew, 1, 29, 3)
	b1 := cand(b, domain.PlanItemNew, 1, 5, 3)

	capa := roomy(10)
	capa.MaxTopics = 2
	picks := Allocate([]Candidate{a1, a2, b1}, capa, DefaultConfig())

	require.Len(t, picks, 2)
	assert.Equal(t, a1.Topic.ID, picks[0].Topic.ID)
	assert.Equal(t, b1.Topic.ID, picks[1].Topic.ID)
}

func TestAllocate_NoSwapWithoutFeasibleAlternate(t *testing.T) {
	t.Parallel()

	a, b := uuid.New(), uuid.New()
	a1 := cand(a, domain.PlanItemNew, 1, 30, 3)
	a2 := cand(a, domain.PlanItemNew, 1, 29, 3)
	tooLong := cand(b, domain.PlanItemNew, 5, 5, 3)

	capa := roomy(3)
	picks := Allocate([]Candidate{a1, a2, tooLong}, capa, DefaultConfig())

	require.Len(t, picks, 2)
	assert.Equal(t, 1, subjectCount(picks))
}

func TestAllocate_ChallengeAndStretchCaps(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	var cands []Candidate
	for i := 0; i < 4; i++ {
		cands = append(cands, cand(uuid.New(), domain.PlanItemChallenge, 0.5, float64(50-i), 3))
		cands = append(cands, cand(uuid.New(), domain.PlanItemStretch, 0.5, float64(40-i), 5))
	}

	picks := Allocate(cands, roomy(20), cfg)

	counts := map[domain.PlanItemType]int{}
	for _, p := range picks {
		counts[p.Type]++
	}
	assert.Equal(t, cfg.ChallengeCap, counts[domain.PlanItemChallenge])
	assert.Equal(t, cfg.StretchCap, counts[domain.PlanItemStretch])
}

func TestAllocate_AverageDifficultyCap(t *testing.T) {
	t.Parallel()

	hard := cand(uuid.New(), domain.PlanItemNew, 1, 30, 5)
	easy1 := cand(uuid.New(), domain.PlanItemNew, 1, 20, 1)
	easy2 := cand(uuid.New(), domain.PlanItemNew, 1, 10, 1)

	capa := roomy(10)
	capa.MaxAvgDifficulty = 3
	picks := Allocate([]Candidate{hard, easy1, easy2}, capa, DefaultConfig())

	require.Len(t, picks, 3)
	assert.Equal(t, easy1.Topic.ID, picks[0].Topic.ID, "a difficulty 5 opener would break the cap")
	sum := 0
	for i, p := range picks {
		sum += p.Topic.Difficulty
		assert.LessOrEqual(t, float64(sum)/float64(i+1), capa.MaxAvgDifficulty)
	}
}

func TestAllocate_Empty(t *testing.T) {
	t.Parallel()

	assert.Empty(t, Allocate(nil, roomy(6), DefaultConfig()))
	assert.Empty(t, Allocate([]Candidate{cand(uuid.New(), domain.PlanItemNew, 1, 10, 3)}, roomy(0), DefaultConfig()))
}
