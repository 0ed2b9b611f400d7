package config

import (
	"fmt"
	"strings"
	"time"
)

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if err := c.SRS.validate(); err != nil {
		return fmt.Errorf("srs: %w", err)
	}
	if err := c.Planner.validate(); err != nil {
		return fmt.Errorf("planner: %w", err)
	}
	if err := c.Maintenance.validate(); err != nil {
		return fmt.Errorf("maintenance: %w", err)
	}
	if err := c.Recalibration.validate(); err != nil {
		return fmt.Errorf("recalibration: %w", err)
	}
	if c.Redis.Enabled && c.Redis.Channel == "" {
		return fmt.Errorf("redis: channel is required when enabled")
	}
	return nil
}

func (s *SRSConfig) validate() error {
	if s.DefaultRetention <= 0 || s.DefaultRetention >= 1 {
		return fmt.Errorf("default_retention must be in (0,1) (got %v)", s.DefaultRetention)
	}
	if s.MaxIntervalDays <= 0 {
		return fmt.Errorf("max_interval_days must be > 0 (got %d)", s.MaxIntervalDays)
	}

	steps, err := ParseLearningSteps(s.LearningStepsRaw)
	if err != nil {
		return fmt.Errorf("learning_steps: %w", err)
	}
	s.LearningSteps = steps

	relearning, err := ParseLearningSteps(s.RelearningStepsRaw)
	if err != nil {
		return fmt.Errorf("relearning_steps: %w", err)
	}
	s.RelearningSteps = relearning

	return nil
}

func (p *PlannerConfig) validate() error {
	if p.DefaultDailyHours <= 0 || p.DefaultDailyHours > 24 {
		return fmt.Errorf("default_daily_hours must be in (0,24] (got %v)", p.DefaultDailyHours)
	}
	if p.MaxTopicsPerDay < 1 {
		return fmt.Errorf("max_topics_per_day must be >= 1 (got %d)", p.MaxTopicsPerDay)
	}
	if p.SubjectShare <= 0 || p.SubjectShare > 1 {
		return fmt.Errorf("subject_share must be in (0,1] (got %v)", p.SubjectShare)
	}
	if p.ChallengeCap < 0 || p.StretchCap < 0 || p.DecayItemsPerPlan < 0 {
		return fmt.Errorf("caps must be >= 0")
	}
	if p.LightDayMaxDifficulty < 1 || p.LightDayMaxDifficulty > 5 {
		return fmt.Errorf("light_day_max_difficulty must be in [1,5] (got %d)", p.LightDayMaxDifficulty)
	}
	if p.WeekendMultiplier <= 0 {
		return fmt.Errorf("weekend_multiplier must be > 0 (got %v)", p.WeekendMultiplier)
	}
	if p.RecentPlans < 1 {
		return fmt.Errorf("recent_plans must be >= 1 (got %d)", p.RecentPlans)
	}
	return nil
}

func (m *MaintenanceConfig) validate() error {
	if m.Parallelism < 1 {
		return fmt.Errorf("parallelism must be >= 1 (got %d)", m.Parallelism)
	}
	if m.PerLearnerTimeout <= 0 {
		return fmt.Errorf("per_learner_timeout must be > 0 (got %v)", m.PerLearnerTimeout)
	}
	if _, err := time.LoadLocation(m.Timezone); err != nil {
		return fmt.Errorf("timezone: %w", err)
	}
	return nil
}

func (r *RecalibrationConfig) validate() error {
	if r.WindowDays < 1 {
		return fmt.Errorf("window_days must be >= 1 (got %d)", r.WindowDays)
	}
	if r.ExtendedWindowDays < r.WindowDays {
		return fmt.Errorf("extended_window_days must be >= window_days (got %d < %d)", r.ExtendedWindowDays, r.WindowDays)
	}
	if r.MinDataPoints < 1 {
		return fmt.Errorf("min_data_points must be >= 1 (got %d)", r.MinDataPoints)
	}
	if r.CooldownDays < 0 {
		return fmt.Errorf("cooldown_days must be >= 0 (got %d)", r.CooldownDays)
	}
	if r.DriftLimit <= 0 || r.DriftLimit >= 1 {
		return fmt.Errorf("drift_limit must be in (0,1) (got %v)", r.DriftLimit)
	}
	return nil
}

// ParseLearningSteps parses a comma-separated string of durations (e.g. "1m,10m")
// into a slice of time.Duration. An empty string returns a nil slice.
func ParseLearningSteps(raw string) ([]time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	parts := strings.Split(raw, ",")
	steps := make([]time.Duration, 0, len(parts))

	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		d, err := time.ParseDuration(p)
		if err != nil {
			return nil, fmt.Errorf("invalid duration %q: %w", p, err)
		}
		steps = append(steps, d)
	}

	return steps, nil
}
