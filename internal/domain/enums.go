package domain

// TopicStatus is the learner's coverage stage for a topic.
type TopicStatus string

const (
	TopicStatusUntouched     TopicStatus = "untouched"
	TopicStatusInProgress    TopicStatus = "in_progress"
	TopicStatusFirstPass     TopicStatus = "first_pass"
	TopicStatusRevised       TopicStatus = "revised"
	TopicStatusExamReady     TopicStatus = "exam_ready"
	TopicStatusDeferredScope TopicStatus = "deferred_scope"
)

func (s TopicStatus) String() string { return string(s) }

func (s TopicStatus) IsValid() bool {
	switch s {
	case TopicStatusUntouched, TopicStatusInProgress, TopicStatusFirstPass,
		TopicStatusRevised, TopicStatusExamReady, TopicStatusDeferredScope:
		return true
	}
	return false
}

// IsCovered reports whether the topic counts toward completed gravity.
func (s TopicStatus) IsCovered() bool {
	switch s {
	case TopicStatusFirstPass, TopicStatusRevised, TopicStatusExamReady:
		return true
	}
	return false
}

// Rank orders the coverage stages. deferred_scope ranks below untouched.
func (s TopicStatus) Rank() int {
	switch s {
	case TopicStatusInProgress:
		return 1
	case TopicStatusFirstPass:
		return 2
	case TopicStatusRevised:
		return 3
	case TopicStatusExamReady:
		return 4
	case TopicStatusDeferredScope:
		return -1
	}
	return 0
}

// ConfidenceStatus buckets a 0-100 confidence score.
type ConfidenceStatus string

const (
	ConfidenceFresh   ConfidenceStatus = "fresh"
	ConfidenceFading  ConfidenceStatus = "fading"
	ConfidenceStale   ConfidenceStatus = "stale"
	ConfidenceDecayed ConfidenceStatus = "decayed"
)

func (s ConfidenceStatus) String() string { return string(s) }

func (s ConfidenceStatus) IsValid() bool {
	switch s {
	case ConfidenceFresh, ConfidenceFading, ConfidenceStale, ConfidenceDecayed:
		return true
	}
	return false
}

// CardState represents the FSRS-5 learning state of a card.
type CardState string

const (
	CardStateNew        CardState = "NEW"
	CardStateLearning   CardState = "LEARNING"
	CardStateReview     CardState = "REVIEW"
	CardStateRelearning CardState = "RELEARNING"
)

func (s CardState) String() string { return string(s) }

func (s CardState) IsValid() bool {
	switch s {
	case CardStateNew, CardStateLearning, CardStateReview, CardStateRelearning:
		return true
	}
	return false
}

// PlanItemType is fixed when the item is created.
type PlanItemType string

const (
	PlanItemNew           PlanItemType = "new"
	PlanItemRevision      PlanItemType = "revision"
	PlanItemDecayRevision PlanItemType = "decay_revision"
	PlanItemChallenge     PlanItemType = "challenge"
	PlanItemStretch       PlanItemType = "stretch"
)

func (t PlanItemType) String() string { return string(t) }

func (t PlanItemType) IsValid() bool {
	switch t {
	case PlanItemNew, PlanItemRevision, PlanItemDecayRevision, PlanItemChallenge, PlanItemStretch:
		return true
	}
	return false
}

// IsRevision reports whether the item consumes the revision-hours budget.
func (t PlanItemType) IsRevision() bool {
	return t == PlanItemRevision || t == PlanItemDecayRevision
}

// PlanItemStatus is the item-level state: pending, then one terminal state.
type PlanItemStatus string

const (
	PlanItemPending   PlanItemStatus = "pending"
	PlanItemCompleted PlanItemStatus = "completed"
	PlanItemSkipped   PlanItemStatus = "skipped"
	PlanItemDeferred  PlanItemStatus = "deferred"
)

func (s PlanItemStatus) String() string { return string(s) }

func (s PlanItemStatus) IsValid() bool {
	switch s {
	case PlanItemPending, PlanItemCompleted, PlanItemSkipped, PlanItemDeferred:
		return true
	}
	return false
}

func (s PlanItemStatus) IsTerminal() bool {
	return s == PlanItemCompleted || s == PlanItemSkipped || s == PlanItemDeferred
}

// EnergyLevel is banded from the fatigue score.
type EnergyLevel string

const (
	EnergyFull     EnergyLevel = "full"
	EnergyModerate EnergyLevel = "moderate"
	EnergyLow      EnergyLevel = "low"
	EnergyEmpty    EnergyLevel = "empty"
)

func (e EnergyLevel) String() string { return string(e) }

// VelocityStatus bands the actual/required velocity ratio.
type VelocityStatus string

const (
	VelocityAhead   VelocityStatus = "ahead"
	VelocityOnTrack VelocityStatus = "on_track"
	VelocityBehind  VelocityStatus = "behind"
	VelocityAtRisk  VelocityStatus = "at_risk"
)

func (s VelocityStatus) String() string { return string(s) }

// VelocityTrend compares the 7-day and 14-day averages.
type VelocityTrend string

const (
	TrendImproving VelocityTrend = "improving"
	TrendStable    VelocityTrend = "stable"
	TrendDeclining VelocityTrend = "declining"
)

func (t VelocityTrend) String() string { return string(t) }

// BufferTxType classifies a buffer ledger transaction.
type BufferTxType string

const (
	BufferTxDeposit          BufferTxType = "deposit"
	BufferTxWithdrawal       BufferTxType = "withdrawal"
	BufferTxZeroDayPenalty   BufferTxType = "zero_day_penalty"
	BufferTxConsistencyBonus BufferTxType = "consistency_bonus"
	BufferTxStreakBonus      BufferTxType = "streak_bonus"
)

func (t BufferTxType) String() string { return string(t) }

// StrategyMode selects the learner's default persona parameters.
type StrategyMode string

const (
	StrategyBalanced            StrategyMode = "balanced"
	StrategyAggressive          StrategyMode = "aggressive"
	StrategyConservative        StrategyMode = "conservative"
	StrategyWorkingProfessional StrategyMode = "working_professional"
)

func (m StrategyMode) String() string { return string(m) }

func (m StrategyMode) IsValid() bool {
	switch m {
	case StrategyBalanced, StrategyAggressive, StrategyConservative, StrategyWorkingProfessional:
		return true
	}
	return false
}

// ExamMode selects which subjects are active for planning and velocity.
type ExamMode string

const (
	ExamModePrelims ExamMode = "prelims"
	ExamModeMains   ExamMode = "mains"
	ExamModeFull    ExamMode = "full"
)

func (m ExamMode) String() string { return string(m) }

func (m ExamMode) IsValid() bool {
	switch m {
	case ExamModePrelims, ExamModeMains, ExamModeFull:
		return true
	}
	return false
}

// ScheduleSource records why a review_schedule row exists.
type ScheduleSource string

const (
	ScheduleSourceReview ScheduleSource = "review"
	ScheduleSourceDecay  ScheduleSource = "decay"
)

// ScheduleStatus is the lifecycle of a review_schedule row.
type ScheduleStatus string

const (
	ScheduleStatusPending    ScheduleStatus = "pending"
	ScheduleStatusCompleted  ScheduleStatus = "completed"
	ScheduleStatusSuperseded ScheduleStatus = "superseded"
)

// RecalibrationTrigger identifies what started a recalibration run.
type RecalibrationTrigger string

const (
	TriggerAutomatic  RecalibrationTrigger = "automatic"
	TriggerBufferDebt RecalibrationTrigger = "buffer_debt"
	TriggerCascade    RecalibrationTrigger = "cascade"
	TriggerManual     RecalibrationTrigger = "manual"
)

func (t RecalibrationTrigger) String() string { return string(t) }

func (t RecalibrationTrigger) IsValid() bool {
	switch t {
	case TriggerAutomatic, TriggerBufferDebt, TriggerCascade, TriggerManual:
		return true
	}
	return false
}

// IsAutomatic reports whether the trigger obeys the auto-recalibrate switch.
func (t RecalibrationTrigger) IsAutomatic() bool {
	return t != TriggerManual
}

// RecalibrationOutcome is the result class of a recalibration run.
type RecalibrationOutcome string

const (
	OutcomeApplied  RecalibrationOutcome = "applied"
	OutcomeNoChange RecalibrationOutcome = "no_change"
	OutcomeSkipped  RecalibrationOutcome = "skipped"
)

// Skip reasons recorded on skipped recalibration runs.
const (
	SkipProfileMissing   = "profile_missing"
	SkipAutoDisabled     = "auto_recalibrate_disabled"
	SkipInRecovery       = "in_recovery"
	SkipInsufficientData = "insufficient_data"
	SkipCooldown         = "cooldown"
)

// StatusChange reasons.
const (
	ReasonConfidenceDecayDowngrade = "confidence_decay_auto_downgrade"
	ReasonPlanItemCompleted        = "plan_item_completed"
	ReasonReviewUpgrade            = "review_auto_upgrade"
	ReasonReviewFastTrack          = "review_fast_track"
	ReasonRevisionUpgrade          = "revision_auto_upgrade"
)

// Cascade trigger reasons.
const (
	CascadeVelocityLow3d = "velocity_ratio_low_3d"
	CascadeBufferDebt    = "buffer_debt"
)
