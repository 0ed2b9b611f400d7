package recalibration

import (
	"fmt"
	"math"

	"github.com/heartmarshall/studyplanner-backend/internal/domain"
)

type rule struct {
	step   float64
	reason string
}

// proposals evaluates the decision table of every tunable parameter. A
// parameter without a firing rule is absent from the result.
func proposals(sig domain.RecalibrationSignals) map[domain.TunableParam]rule {
	out := map[domain.TunableParam]rule{}

	switch {
	case sig.VelocityRatio < 0.75 || sig.BRI < 40:
		out[domain.ParamTargetRetention] = rule{-0.02, fmt.Sprintf("velocity ratio %.2f or BRI %.0f under pressure, easing retention", sig.VelocityRatio, sig.BRI)}
	case sig.CriticalWeaknessPct > 30 && sig.VelocityRatio >= 0.9:
		out[domain.ParamTargetRetention] = rule{0.01, fmt.Sprintf("%.0f%% of touched topics decayed with pace to spare", sig.CriticalWeaknessPct)}
	case sig.ConfidenceAvg < 50 && sig.VelocityRatio >= 1.0 && sig.BRI >= 60:
		out[domain.ParamTargetRetention] = rule{0.01, fmt.Sprintf("average confidence %.0f is low while ahead and healthy", sig.ConfidenceAvg)}
	}

	switch {
	case sig.BRI < 45 && sig.FatigueAvg > 60:
		out[domain.ParamBurnoutThreshold] = rule{3, fmt.Sprintf("BRI %.0f with fatigue %.0f, guarding earlier", sig.BRI, sig.FatigueAvg)}
	case sig.BRI >= 75 && sig.FatigueAvg < 40 && sig.StressAvg < 0.3:
		out[domain.ParamBurnoutThreshold] = rule{-2, fmt.Sprintf("BRI %.0f, fatigue %.0f and stress %.2f all healthy", sig.BRI, sig.FatigueAvg, sig.StressAvg)}
	}

	switch {
	case sig.VelocityRatio < 0.8 && sig.StressAvg > 0.5:
		out[domain.ParamBufferCapacity] = rule{0.02, fmt.Sprintf("behind at %.2f under stress %.2f, widening buffer", sig.VelocityRatio, sig.StressAvg)}
	case sig.VelocityRatio >= 1.1 && sig.StressAvg < 0.3:
		out[domain.ParamBufferCapacity] = rule{-0.01, fmt.Sprintf("ahead at %.2f with low stress, trimming buffer", sig.VelocityRatio)}
	}

	switch {
	case sig.FatigueAvg > 70 || sig.BRI < 40:
		out[domain.ParamFatigueThreshold] = rule{-5, fmt.Sprintf("fatigue %.0f or BRI %.0f critical, lowering ceiling", sig.FatigueAvg, sig.BRI)}
	case sig.FatigueAvg < 35 && sig.BRI >= 70 && sig.VelocityRatio >= 1.0:
		out[domain.ParamFatigueThreshold] = rule{3, fmt.Sprintf("fatigue %.0f low while ahead, raising ceiling", sig.FatigueAvg)}
	}

	return out
}

// ParamBounds is the tighter of the absolute safety bound and the allowed
// drift around the strategy default.
func ParamBounds(name domain.TunableParam, def float64, drift float64) domain.Bounds {
	abs := domain.AbsoluteBounds[name]
	lo := math.Max(abs.Min, def*(1-drift))
	hi := math.Min(abs.Max, def*(1+drift))
	if lo > hi {
		return abs
	}
	return domain.Bounds{Min: lo, Max: hi}
}

// ComputeAdjustments applies the decision tables to current and clamps
// every tunable into its bounds, whether or not a rule fired for it. A value
// left outside the drift bounds by a customization is pulled back in. Reasons
// are returned for parameters whose value actually changed.
func ComputeAdjustments(sig domain.RecalibrationSignals, current, defaults domain.PersonaParams, drift float64) (domain.PersonaParams, map[domain.TunableParam]string) {
	next := current
	reasons := map[domain.TunableParam]string{}

	props := proposals(sig)
	for _, name := range domain.TunableParams {
		cur := current.Get(name)
		b := ParamBounds(name, defaults.Get(name), drift)

		var v float64
		var reason string
		if r, ok := props[name]; ok {
			v = domain.Round2(domain.Clamp(cur+r.step, b.Min, b.Max))
			reason = r.reason
		} else {
			clamped := domain.Clamp(cur, b.Min, b.Max)
			if clamped == cur {
				continue
			}
			v = domain.Round2(clamped)
			reason = fmt.Sprintf("outside bounds [%v, %v] around the strategy default", domain.Round2(b.Min), domain.Round2(b.Max))
		}
		if v == cur {
			continue
		}
		next = next.With(name, v)
		reasons[name] = fmt.Sprintf("%s: %v -> %v", reason, cur, v)
	}
	return next, reasons
}
