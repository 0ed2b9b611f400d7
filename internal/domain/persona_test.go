package domain

import (
	"errors"
	"testing"
)

func TestDefaultPersonaParams_WithinBounds(t *testing.T) {
	t.Parallel()

	modes := []StrategyMode{StrategyBalanced, StrategyAggressive, StrategyConservative, StrategyWorkingProfessional, StrategyMode("unknown")}
	for _, m := range modes {
		if err := DefaultPersonaParams(m).Validate(); err != nil {
			t.Errorf("DefaultPersonaParams(%s).Validate() = %v", m, err)
		}
	}
}

func TestDefaultPersonaParams_UnknownModeIsBalanced(t *testing.T) {
	t.Parallel()

	if DefaultPersonaParams("unknown") != DefaultPersonaParams(StrategyBalanced) {
		t.Error("unknown mode should fall back to balanced defaults")
	}
}

func TestPersonaOverrides_Overlay(t *testing.T) {
	t.Parallel()

	retention := 0.93
	topics := 3
	base := DefaultPersonaParams(StrategyBalanced)

	got := PersonaOverrides{TargetRetention: &retention, MaxTopicsPerDay: &topics}.Overlay(base)

	if got.TargetRetention != 0.93 {
		t.Errorf("TargetRetention = %v, want 0.93", got.TargetRetention)
	}
	if got.MaxTopicsPerDay != 3 {
		t.Errorf("MaxTopicsPerDay = %d, want 3", got.MaxTopicsPerDay)
	}
	if got.FatigueThreshold != base.FatigueThreshold {
		t.Errorf("FatigueThreshold changed without override: %v", got.FatigueThreshold)
	}
}

func TestPersonaOverrides_OverlayClampsTunables(t *testing.T) {
	t.Parallel()

	tooHigh := 0.99
	tooLow := 10.0
	got := PersonaOverrides{TargetRetention: &tooHigh, BurnoutThreshold: &tooLow}.Overlay(DefaultPersonaParams(StrategyBalanced))

	if got.TargetRetention != 0.95 {
		t.Errorf("TargetRetention = %v, want clamp to 0.95", got.TargetRetention)
	}
	if got.BurnoutThreshold != 30 {
		t.Errorf("BurnoutThreshold = %v, want clamp to 30", got.BurnoutThreshold)
	}
}

func TestPersonaParams_GetWith(t *testing.T) {
	t.Parallel()

	p := DefaultPersonaParams(StrategyBalanced)
	for _, name := range TunableParams {
		q := p.With(name, 42)
		if q.Get(name) != 42 {
			t.Errorf("With(%s, 42).Get() = %v", name, q.Get(name))
		}
		if p.Get(name) == 42 {
			t.Errorf("With(%s) mutated receiver", name)
		}
	}
}

func TestPersonaParams_ValidateRejectsOutOfBounds(t *testing.T) {
	t.Parallel()

	p := DefaultPersonaParams(StrategyBalanced)
	p.BufferCapacity = 0.5
	p.MaxTopicsPerDay = 0

	err := p.Validate()
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("Validate() error = %v, want ErrValidation", err)
	}
	var ve *ValidationError
	if !errors.As(err, &ve) || len(ve.Errors) != 2 {
		t.Errorf("Validate() errors = %+v, want 2 field errors", ve)
	}
}

func TestPersonaParams_RevisionRatio(t *testing.T) {
	t.Parallel()

	p := DefaultPersonaParams(StrategyBalanced) // base 0.25, terminal 0.60, mid 0.425

	tests := []struct {
		days int
		want float64
	}{
		{365, 0.25},
		{120, 0.25},
		{100, 0.31},
		{75, 0.38},
		{30, 0.54},
		{15, 0.60},
		{3, 0.60},
	}
	for _, tt := range tests {
		if got := p.RevisionRatio(tt.days); got != tt.want {
			t.Errorf("RevisionRatio(%d) = %v, want %v", tt.days, got, tt.want)
		}
	}

	prev := 0.0
	for d := 200; d >= 0; d-- {
		r := p.RevisionRatio(d)
		if r < prev {
			t.Fatalf("ratio decreased at %d days: %v < %v", d, r, prev)
		}
		prev = r
	}
}
