package velocity

import (
	"math"
	"time"

	"github.com/heartmarshall/studyplanner-backend/internal/domain"
)

const (
	// minEffectiveShare floors the share of study time left for new material
	// after the buffer and revision reservations.
	minEffectiveShare = 0.1

	weight7d  = 0.6
	weight14d = 0.4

	zeroDayPenalty       = -1.0
	consistencyBonus     = 0.1
	streakBonus          = 0.1
	streakMilestone      = 7
	streakLookbackDays   = 366
	depositCapPerDay     = 0.2
	maxWithdrawal        = -5.0
	consistencyTolerance = 0.01
	stressRatioWeight    = 0.6
	stressDebt           = 0.4
	stressThinBuffer     = 0.2
	thinBufferBalance    = 1.0
	cascadeRatio         = 0.8
	cascadeStreak        = 3
	backlogSpreadDays    = 7
	extraHoursStep       = 0.5
	maxDailyHours        = 12.0
)

// Gravity is the catalog-wide throughput position of a learner.
type Gravity struct {
	Total        float64
	Completed    float64
	TopicCount   int
	CoveredCount int
}

// Remaining is the gravity still to be covered.
func (g Gravity) Remaining() float64 {
	return math.Max(0, g.Total-g.Completed)
}

// WeightedCompletion is the completed share of gravity in percent.
func (g Gravity) WeightedCompletion() float64 {
	if g.Total <= 0 {
		return 0
	}
	return domain.Round2(g.Completed / g.Total * 100)
}

// UnweightedCompletion is the covered share of topics in percent.
func (g Gravity) UnweightedCompletion() float64 {
	if g.TopicCount == 0 {
		return 0
	}
	return domain.Round2(float64(g.CoveredCount) / float64(g.TopicCount) * 100)
}

// RequiredVelocity is the daily gravity needed to finish on time:
//
//	remaining / (days * (1 - buffer_capacity - revision_ratio)) * multiplier
//
// The effective share is floored at 10% and a past exam counts as one day.
func RequiredVelocity(remaining float64, daysRemaining int, bufferCapacity, revisionRatio, multiplier float64) float64 {
	if remaining <= 0 {
		return 0
	}
	days := float64(max(1, daysRemaining))
	share := math.Max(minEffectiveShare, 1-bufferCapacity-revisionRatio)
	return remaining / (days * share) * multiplier
}

// ActualVelocity blends the 7 and 14 day averages of completed gravity.
func ActualVelocity(avg7d, avg14d float64) float64 {
	return weight7d*avg7d + weight14d*avg14d
}

// AverageGravity is the mean daily completed gravity over the window days
// ending on day. Days without study count as zero.
func AverageGravity(days []domain.StudyDay, day time.Time, window int) float64 {
	if window <= 0 {
		return 0
	}
	end := domain.Day(day)
	start := end.AddDate(0, 0, -(window - 1))
	var sum float64
	for _, d := range days {
		dd := domain.Day(d.Date)
		if !dd.Before(start) && !dd.After(end) {
			sum += d.Gravity
		}
	}
	return sum / float64(window)
}

// Ratio is actual over required. With nothing required the learner is
// treated as ahead.
func Ratio(actual, required float64) float64 {
	if required <= 0 {
		return domain.VelocityAheadMin
	}
	return actual / required
}

// SignalVelocity maps a ratio onto the 0-100 signal the burnout index reads.
func SignalVelocity(ratio float64) float64 {
	return domain.Clamp(ratio*100, 0, 100)
}

// Stress combines the velocity shortfall with the state of the buffer.
func Stress(ratio, balance float64) float64 {
	s := stressRatioWeight * math.Max(0, 1-ratio)
	switch {
	case balance < 0:
		s += stressDebt
	case balance < thinBufferBalance:
		s += stressThinBuffer
	}
	return domain.Round2(domain.Clamp(s, 0, 1))
}

// BufferEntry is the primary transaction for a day before clamping.
func BufferEntry(studied bool, actual, required float64, daysRemaining int, p domain.PersonaParams) (domain.BufferTxType, float64) {
	if !studied {
		return domain.BufferTxZeroDayPenalty, zeroDayPenalty
	}
	diff := actual - required
	switch {
	case math.Abs(diff) < consistencyTolerance:
		return domain.BufferTxConsistencyBonus, consistencyBonus
	case diff > 0:
		return domain.BufferTxDeposit, domain.Round2(math.Min(diff*p.DepositRate, float64(daysRemaining)*depositCapPerDay))
	default:
		return domain.BufferTxWithdrawal, domain.Round2(math.Max(diff*p.WithdrawalRate, maxWithdrawal))
	}
}

// ClampBalance bounds a balance to [-5, initial] and rounds it.
func ClampBalance(balance, initial float64) float64 {
	return domain.Round2(domain.Clamp(balance, domain.BufferFloor, math.Max(initial, domain.BufferFloor)))
}
