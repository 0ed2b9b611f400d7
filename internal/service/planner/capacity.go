package planner

import (
	"github.com/heartmarshall/studyplanner-backend/internal/domain"
	"github.com/heartmarshall/studyplanner-backend/internal/service/fatigue"
)

const (
	lightDayStreak      = 6
	lightDayFactor      = 0.6
	coldRestartMissed   = 2
	coldRestartFactor   = 0.6
	strainedMaxTopics   = 3
	postHeavyMaxTopics  = 4
	strainedMaxAvgDiff  = 3.0
	postHeavyMaxAvgDiff = 3.0
)

// Capacity is the day's budget and the hard limits allocation must respect.
type Capacity struct {
	AvailableHours float64
	IsLightDay     bool
	Energy         domain.EnergyLevel
	MaxTopics      int
	// MaxAvgDifficulty caps the running average difficulty; zero means no cap.
	MaxAvgDifficulty float64
	RevisionRatio    float64
	RevisionBudget   float64
	SubjectBudget    float64
}

// AssessCapacity derives the day's hour budget and limits from the snapshot.
func AssessCapacity(snap *Snapshot, cfg Config) Capacity {
	p := snap.Profile
	params := p.Params
	strained := float64(snap.Fatigue) > params.FatigueThreshold

	c := Capacity{
		IsLightDay: strained || snap.ConsecutiveStudyDays >= lightDayStreak,
		Energy:     fatigue.EnergyLevel(snap.Fatigue),
	}

	hours := p.DailyHours
	if hours <= 0 {
		hours = cfg.DefaultDailyHours
	}
	if p.InRecovery {
		hours *= domain.RecoveryHoursFactor
	} else {
		hours *= domain.RecoveryRampMultiplier(p.RecoveryExitedAt, snap.Date, p.Location())
	}
	if c.IsLightDay {
		hours *= lightDayFactor
	}
	if snap.ConsecutiveMissedDays >= coldRestartMissed {
		hours *= coldRestartFactor
	}
	if p.StrategyMode == domain.StrategyWorkingProfessional && domain.IsWeekend(snap.Date) {
		hours *= cfg.WeekendMultiplier
	}
	if snap.HoursOverride != nil {
		hours = *snap.HoursOverride
	}
	c.AvailableHours = domain.Round2(hours)

	c.MaxTopics = cfg.MaxTopicsPerDay
	if params.MaxTopicsPerDay > 0 && params.MaxTopicsPerDay < c.MaxTopics {
		c.MaxTopics = params.MaxTopicsPerDay
	}
	switch {
	case strained:
		c.MaxTopics = min(c.MaxTopics, strainedMaxTopics)
		c.MaxAvgDifficulty = strainedMaxAvgDiff
	case snap.PostHeavy:
		c.MaxTopics = min(c.MaxTopics, postHeavyMaxTopics)
		c.MaxAvgDifficulty = postHeavyMaxAvgDiff
	}

	c.RevisionRatio = params.RevisionRatio(p.DaysRemaining(snap.Date))
	c.RevisionBudget = c.AvailableHours * c.RevisionRatio
	c.SubjectBudget = c.AvailableHours * cfg.SubjectShare
	return c
}
