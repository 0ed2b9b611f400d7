package fatigue

import (
	"math"
	"time"

	"github.com/heartmarshall/studyplanner-backend/internal/domain"
)

// minTargetHours floors the daily target in the hours term of the fatigue score.
const minTargetHours = 6.0

// FatigueInputs are the study-log features behind the fatigue score.
type FatigueInputs struct {
	ConsecutiveStudyDays int
	AvgDifficulty3d      float64
	Hours3d              float64
	TargetHours          float64
	RestDays7            int
}

// FatigueScore is
//
//	(consecutive*10 + avg_difficulty_3d*8 + hours_3d/max(target,6)*20 - rest_days_7*15) * sensitivity
//
// clamped to [0, 100]. Higher is more tired.
func FatigueScore(in FatigueInputs, sensitivity float64) int {
	if sensitivity <= 0 {
		sensitivity = 1
	}
	target := math.Max(in.TargetHours, minTargetHours)
	raw := float64(in.ConsecutiveStudyDays)*10 +
		in.AvgDifficulty3d*8 +
		in.Hours3d/target*20 -
		float64(in.RestDays7)*15
	return clampScore(raw * sensitivity)
}

// InputsFromDays derives fatigue inputs from aggregated study days. The
// windows end on date when the learner has studied that day, else on the
// day before, so a morning plan does not count today as rest.
func InputsFromDays(days []domain.StudyDay, date time.Time, targetHours float64) FatigueInputs {
	studied := studiedByDay(days)
	anchor := domain.Day(date)
	if _, ok := studied[anchor]; !ok {
		anchor = anchor.AddDate(0, 0, -1)
	}

	in := FatigueInputs{TargetHours: targetHours}
	for d := anchor; ; d = d.AddDate(0, 0, -1) {
		if _, ok := studied[d]; !ok {
			break
		}
		in.ConsecutiveStudyDays++
	}

	var diffSum float64
	var diffDays int
	for i := 0; i < 3; i++ {
		if sd, ok := studied[anchor.AddDate(0, 0, -i)]; ok {
			in.Hours3d += sd.Hours
			diffSum += sd.AvgDifficulty
			diffDays++
		}
	}
	if diffDays > 0 {
		in.AvgDifficulty3d = diffSum / float64(diffDays)
	}

	for i := 0; i < 7; i++ {
		if _, ok := studied[anchor.AddDate(0, 0, -i)]; !ok {
			in.RestDays7++
		}
	}
	return in
}

// ConsecutiveMissedDays counts non-study days between the last study day
// before today and today. A learner with no study in days has no missed streak.
func ConsecutiveMissedDays(days []domain.StudyDay, today time.Time) int {
	var last time.Time
	for _, d := range days {
		day := domain.Day(d.Date)
		if d.Studied() && day.Before(domain.Day(today)) && day.After(last) {
			last = day
		}
	}
	if last.IsZero() {
		return 0
	}
	return domain.DaysBetween(last, today) - 1
}

// ConsecutiveStudyDays counts study days ending yesterday.
func ConsecutiveStudyDays(days []domain.StudyDay, today time.Time) int {
	studied := studiedByDay(days)
	n := 0
	for d := domain.Day(today).AddDate(0, 0, -1); ; d = d.AddDate(0, 0, -1) {
		if _, ok := studied[d]; !ok {
			return n
		}
		n++
	}
}

func studiedByDay(days []domain.StudyDay) map[time.Time]domain.StudyDay {
	out := make(map[time.Time]domain.StudyDay, len(days))
	for _, d := range days {
		if d.Studied() {
			out[domain.Day(d.Date)] = d
		}
	}
	return out
}

// BRI weights.
const (
	weightStressPersistence = 0.30
	weightBufferHemorrhage  = 0.25
	weightVelocityCollapse  = 0.25
	weightEngagementDecay   = 0.20

	stressHighMark   = 0.5
	stressDayPoints  = 33
	negativeTxPoints = 20
)

// BRISignals are the four 0-100 sub-scores of the burnout risk index.
type BRISignals struct {
	StressPersistence float64
	BufferHemorrhage  float64
	VelocityCollapse  float64
	EngagementDecay   float64
}

// BRI is 100 - weighted sum of the signals, clamped to [0, 100].
// Higher is healthier.
func BRI(sig BRISignals) int {
	risk := sig.StressPersistence*weightStressPersistence +
		sig.BufferHemorrhage*weightBufferHemorrhage +
		sig.VelocityCollapse*weightVelocityCollapse +
		sig.EngagementDecay*weightEngagementDecay
	return clampScore(100 - risk)
}

// StressPersistence scores the number of recent high-stress days.
func StressPersistence(highStressDays int) float64 {
	return math.Min(100, float64(max(0, highStressDays)*stressDayPoints))
}

// BufferHemorrhage scores the number of negative buffer transactions.
func BufferHemorrhage(negativeTx int) float64 {
	return math.Min(100, float64(max(0, negativeTx)*negativeTxPoints))
}

// VelocityCollapse is 100 minus the latest signal velocity. Without a
// snapshot there is no collapse.
func VelocityCollapse(latestSignal *float64) float64 {
	if latestSignal == nil {
		return 0
	}
	return domain.Clamp(100-*latestSignal, 0, 100)
}

// EngagementDecay compares the recent and prior three-day average hours.
func EngagementDecay(recentAvg, priorAvg float64) float64 {
	if priorAvg <= 0 {
		return 0
	}
	return domain.Clamp((1-recentAvg/priorAvg)*100, 0, 100)
}

// EnergyLevel bands a fatigue score.
func EnergyLevel(fatigue int) domain.EnergyLevel {
	switch {
	case fatigue < 30:
		return domain.EnergyFull
	case fatigue < 55:
		return domain.EnergyModerate
	case fatigue < 80:
		return domain.EnergyLow
	default:
		return domain.EnergyEmpty
	}
}

func clampScore(v float64) int {
	if math.IsNaN(v) {
		return 0
	}
	return int(domain.Clamp(math.Round(v), 0, 100))
}
