package domain

import "fmt"

// PersonaParamsVersion is the current schema version of PersonaParams.
const PersonaParamsVersion = 1

// PersonaParams are the learner's tunable control parameters. The four
// recalibrated parameters are FatigueThreshold, BufferCapacity,
// TargetRetention and BurnoutThreshold; the rest are ancillary rates.
type PersonaParams struct {
	Version                  int     `json:"version"`
	FatigueThreshold         float64 `json:"fatigue_threshold"`
	BufferCapacity           float64 `json:"buffer_capacity"`
	TargetRetention          float64 `json:"fsrs_target_retention"`
	BurnoutThreshold         float64 `json:"burnout_threshold"`
	FatigueSensitivity       float64 `json:"fatigue_sensitivity"`
	DepositRate              float64 `json:"deposit_rate"`
	WithdrawalRate           float64 `json:"withdrawal_rate"`
	VelocityTargetMultiplier float64 `json:"velocity_target_multiplier"`
	BaseRevisionRatio        float64 `json:"base_revision_ratio"`
	TerminalRevisionRatio    float64 `json:"terminal_revision_ratio"`
	MaxTopicsPerDay          int     `json:"max_topics_per_day"`
}

// DefaultPersonaParams returns the defaults for a strategy mode. Unknown
// modes get the balanced defaults.
func DefaultPersonaParams(mode StrategyMode) PersonaParams {
	p := PersonaParams{
		Version:                  PersonaParamsVersion,
		FatigueThreshold:         70,
		BufferCapacity:           0.15,
		TargetRetention:          0.90,
		BurnoutThreshold:         50,
		FatigueSensitivity:       1.0,
		DepositRate:              0.3,
		WithdrawalRate:           0.5,
		VelocityTargetMultiplier: 1.0,
		BaseRevisionRatio:        0.25,
		TerminalRevisionRatio:    0.60,
		MaxTopicsPerDay:          6,
	}

	switch mode {
	case StrategyAggressive:
		p.FatigueThreshold = 80
		p.BufferCapacity = 0.10
		p.TargetRetention = 0.88
		p.BurnoutThreshold = 40
		p.FatigueSensitivity = 0.9
		p.DepositRate = 0.25
		p.WithdrawalRate = 0.6
		p.VelocityTargetMultiplier = 1.1
		p.BaseRevisionRatio = 0.20
		p.TerminalRevisionRatio = 0.55
		p.MaxTopicsPerDay = 8
	case StrategyConservative:
		p.FatigueThreshold = 60
		p.BufferCapacity = 0.20
		p.TargetRetention = 0.92
		p.BurnoutThreshold = 60
		p.FatigueSensitivity = 1.1
		p.DepositRate = 0.35
		p.WithdrawalRate = 0.4
		p.VelocityTargetMultiplier = 0.95
		p.BaseRevisionRatio = 0.30
		p.TerminalRevisionRatio = 0.65
		p.MaxTopicsPerDay = 5
	case StrategyWorkingProfessional:
		p.FatigueThreshold = 65
		p.BufferCapacity = 0.20
		p.BurnoutThreshold = 55
		p.VelocityTargetMultiplier = 0.9
		p.MaxTopicsPerDay = 4
	}
	return p
}

// PersonaOverrides is a partial customization applied on top of the mode defaults.
type PersonaOverrides struct {
	FatigueThreshold         *float64 `json:"fatigue_threshold,omitempty"`
	BufferCapacity           *float64 `json:"buffer_capacity,omitempty"`
	TargetRetention          *float64 `json:"fsrs_target_retention,omitempty"`
	BurnoutThreshold         *float64 `json:"burnout_threshold,omitempty"`
	FatigueSensitivity       *float64 `json:"fatigue_sensitivity,omitempty"`
	DepositRate              *float64 `json:"deposit_rate,omitempty"`
	WithdrawalRate           *float64 `json:"withdrawal_rate,omitempty"`
	VelocityTargetMultiplier *float64 `json:"velocity_target_multiplier,omitempty"`
	BaseRevisionRatio        *float64 `json:"base_revision_ratio,omitempty"`
	TerminalRevisionRatio    *float64 `json:"terminal_revision_ratio,omitempty"`
	MaxTopicsPerDay          *int     `json:"max_topics_per_day,omitempty"`
}

// Overlay returns base with every non-nil override applied. The four
// tunable parameters are clamped to their absolute bounds.
func (o PersonaOverrides) Overlay(base PersonaParams) PersonaParams {
	out := base
	setF := func(dst *float64, v *float64) {
		if v != nil {
			*dst = *v
		}
	}
	setF(&out.FatigueThreshold, o.FatigueThreshold)
	setF(&out.BufferCapacity, o.BufferCapacity)
	setF(&out.TargetRetention, o.TargetRetention)
	setF(&out.BurnoutThreshold, o.BurnoutThreshold)
	setF(&out.FatigueSensitivity, o.FatigueSensitivity)
	setF(&out.DepositRate, o.DepositRate)
	setF(&out.WithdrawalRate, o.WithdrawalRate)
	setF(&out.VelocityTargetMultiplier, o.VelocityTargetMultiplier)
	setF(&out.BaseRevisionRatio, o.BaseRevisionRatio)
	setF(&out.TerminalRevisionRatio, o.TerminalRevisionRatio)
	if o.MaxTopicsPerDay != nil {
		out.MaxTopicsPerDay = *o.MaxTopicsPerDay
	}

	for _, name := range TunableParams {
		b := AbsoluteBounds[name]
		out = out.With(name, Clamp(out.Get(name), b.Min, b.Max))
	}
	out.Version = PersonaParamsVersion
	return out
}

// TunableParam names a recalibrated parameter.
type TunableParam string

const (
	ParamTargetRetention  TunableParam = "fsrs_target_retention"
	ParamBurnoutThreshold TunableParam = "burnout_threshold"
	ParamBufferCapacity   TunableParam = "buffer_capacity"
	ParamFatigueThreshold TunableParam = "fatigue_threshold"
)

// TunableParams lists the recalibrated parameters in evaluation order.
var TunableParams = []TunableParam{
	ParamTargetRetention,
	ParamBurnoutThreshold,
	ParamBufferCapacity,
	ParamFatigueThreshold,
}

// Bounds is an inclusive [Min, Max] range.
type Bounds struct {
	Min float64
	Max float64
}

// AbsoluteBounds are the safety limits no recalibration may cross.
var AbsoluteBounds = map[TunableParam]Bounds{
	ParamFatigueThreshold: {Min: 40, Max: 95},
	ParamBufferCapacity:   {Min: 0.05, Max: 0.30},
	ParamTargetRetention:  {Min: 0.80, Max: 0.95},
	ParamBurnoutThreshold: {Min: 30, Max: 75},
}

// Get returns the value of a tunable parameter.
func (p PersonaParams) Get(name TunableParam) float64 {
	switch name {
	case ParamTargetRetention:
		return p.TargetRetention
	case ParamBurnoutThreshold:
		return p.BurnoutThreshold
	case ParamBufferCapacity:
		return p.BufferCapacity
	case ParamFatigueThreshold:
		return p.FatigueThreshold
	}
	panic(fmt.Sprintf("domain: unknown tunable param %q", name))
}

// With returns a copy of p with the tunable parameter set to v.
func (p PersonaParams) With(name TunableParam, v float64) PersonaParams {
	switch name {
	case ParamTargetRetention:
		p.TargetRetention = v
	case ParamBurnoutThreshold:
		p.BurnoutThreshold = v
	case ParamBufferCapacity:
		p.BufferCapacity = v
	case ParamFatigueThreshold:
		p.FatigueThreshold = v
	default:
		panic(fmt.Sprintf("domain: unknown tunable param %q", name))
	}
	return p
}

// Validate checks that the tunable parameters sit inside their absolute bounds.
func (p PersonaParams) Validate() error {
	var errs []FieldError
	for _, name := range TunableParams {
		b := AbsoluteBounds[name]
		if v := p.Get(name); v < b.Min || v > b.Max {
			errs = append(errs, FieldError{Field: string(name), Message: fmt.Sprintf("must be between %v and %v", b.Min, b.Max)})
		}
	}
	if p.MaxTopicsPerDay < 1 {
		errs = append(errs, FieldError{Field: "max_topics_per_day", Message: "must be at least 1"})
	}
	if p.BaseRevisionRatio < 0 || p.TerminalRevisionRatio > 1 || p.BaseRevisionRatio > p.TerminalRevisionRatio {
		errs = append(errs, FieldError{Field: "revision_ratio", Message: "must satisfy 0 <= base <= terminal <= 1"})
	}
	if len(errs) > 0 {
		return NewValidationErrors(errs)
	}
	return nil
}

// RevisionRatio ramps the revision share of daily hours from the base ratio
// toward the terminal ratio as the exam approaches, in three linear segments
// split at 120, 60 and 15 days remaining.
func (p PersonaParams) RevisionRatio(daysRemaining int) float64 {
	base, term := p.BaseRevisionRatio, p.TerminalRevisionRatio
	mid := (base + term) / 2
	d := float64(daysRemaining)

	switch {
	case daysRemaining >= 120:
		return base
	case daysRemaining >= 60:
		return Round2(mid + (base-mid)*(d-60)/60)
	case daysRemaining >= 15:
		return Round2(term + (mid-term)*(d-15)/45)
	default:
		return term
	}
}
