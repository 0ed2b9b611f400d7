package planner

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/studyplanner-backend/internal/domain"
	"github.com/heartmarshall/studyplanner-backend/internal/service/fatigue"
)

// heavyDifficulty marks a study day as heavy when its average item
// difficulty reaches it.
const heavyDifficulty = 4.0

// Snapshot is everything plan building reads. It is assembled before any
// write so the plan is computed over a consistent view.
type Snapshot struct {
	Profile domain.LearnerProfile
	Date    time.Time
	Fatigue int

	ConsecutiveStudyDays  int
	ConsecutiveMissedDays int
	PostHeavy             bool

	Topics   []domain.Topic
	Progress map[uuid.UUID]domain.Progress
	// DueRevisions maps a topic to the source of its oldest due schedule.
	DueRevisions      map[uuid.UUID]domain.ScheduleSource
	DeferredYesterday map[uuid.UUID]bool
	RecentSubjects    map[uuid.UUID]int
	SubjectCompletion map[uuid.UUID]float64
	Insights          domain.InsightSets

	// HoursOverride replaces the computed hour budget when set.
	HoursOverride *float64
}

func (s *Service) snapshot(ctx context.Context, profile *domain.LearnerProfile, day time.Time) (*Snapshot, error) {
	learnerID := profile.LearnerID
	snap := &Snapshot{
		Profile:           *profile,
		Date:              day,
		DueRevisions:      map[uuid.UUID]domain.ScheduleSource{},
		DeferredYesterday: map[uuid.UUID]bool{},
	}

	score, err := s.fatigue.CalculateFatigueScore(ctx, learnerID, day)
	if err != nil {
		return nil, fmt.Errorf("fatigue score: %w", err)
	}
	snap.Fatigue = score

	history, err := s.plans.StudyDays(ctx, learnerID, day.AddDate(0, 0, -14), day.AddDate(0, 0, -1))
	if err != nil {
		return nil, fmt.Errorf("study days: %w", err)
	}
	snap.ConsecutiveStudyDays = fatigue.ConsecutiveStudyDays(history, day)
	snap.ConsecutiveMissedDays = fatigue.ConsecutiveMissedDays(history, day)
	heavy := 0
	for _, d := range history {
		offset := domain.DaysBetween(d.Date, day)
		if (offset == 1 || offset == 2) && d.AvgDifficulty >= heavyDifficulty {
			heavy++
		}
	}
	snap.PostHeavy = heavy == 2

	subjects, err := s.catalog.ActiveSubjectIDs(ctx, profile.ExamMode)
	if err != nil {
		return nil, fmt.Errorf("active subjects: %w", err)
	}
	if len(subjects) > 0 {
		snap.Topics, err = s.catalog.ListTopics(ctx, subjects)
		if err != nil {
			return nil, fmt.Errorf("list topics: %w", err)
		}
	}

	rows, err := s.progress.ListByLearner(ctx, learnerID)
	if err != nil {
		return nil, fmt.Errorf("list progress: %w", err)
	}
	snap.Progress = make(map[uuid.UUID]domain.Progress, len(rows))
	for _, p := range rows {
		snap.Progress[p.TopicID] = p
	}
	snap.SubjectCompletion = subjectCompletion(snap.Topics, snap.Progress)

	due, err := s.schedules.ListDue(ctx, learnerID, day)
	if err != nil {
		return nil, fmt.Errorf("list due reviews: %w", err)
	}
	for _, sch := range due {
		if _, ok := snap.DueRevisions[sch.TopicID]; !ok {
			snap.DueRevisions[sch.TopicID] = sch.Source
		}
	}

	deferred, err := s.plans.DeferredTopicIDs(ctx, learnerID, day.AddDate(0, 0, -1))
	if err != nil {
		return nil, fmt.Errorf("deferred topics: %w", err)
	}
	for _, id := range deferred {
		snap.DeferredYesterday[id] = true
	}

	snap.RecentSubjects, err = s.plans.RecentSubjectCounts(ctx, learnerID, day, s.cfg.RecentPlans)
	if err != nil {
		return nil, fmt.Errorf("recent subjects: %w", err)
	}

	snap.Insights, err = s.insights.Insights(ctx, learnerID)
	if err != nil {
		return nil, fmt.Errorf("insights: %w", err)
	}
	return snap, nil
}

// subjectCompletion is the covered share of in-scope gravity per subject.
func subjectCompletion(topics []domain.Topic, progress map[uuid.UUID]domain.Progress) map[uuid.UUID]float64 {
	total := map[uuid.UUID]float64{}
	done := map[uuid.UUID]float64{}
	for _, t := range topics {
		p, ok := progress[t.ID]
		if ok && p.Status == domain.TopicStatusDeferredScope {
			continue
		}
		total[t.SubjectID] += t.Gravity()
		if ok && p.Status.IsCovered() {
			done[t.SubjectID] += t.Gravity()
		}
	}
	out := make(map[uuid.UUID]float64, len(total))
	for id, g := range total {
		if g > 0 {
			out[id] = done[id] / g
		}
	}
	return out
}
