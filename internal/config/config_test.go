package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// validEnv sets the minimum required env vars for a valid config.
func validEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_DSN", "postgres://u:p@localhost:5432/testdb")
}

func writeYAML(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write yaml: %v", err)
	}
	return path
}

const validYAML = `
database:
  dsn: "postgres://u:p@localhost:5432/testdb"
  max_conns: 10
  min_conns: 2

log:
  level: "debug"
  format: "text"

redis:
  enabled: true
  addr: "redis:6379"
  channel: "intents"

srs:
  default_retention: 0.85
  max_interval_days: 180
  learning_steps: "1m,10m"
  relearning_steps: "5m"

planner:
  default_daily_hours: 5
  max_topics_per_day: 6
  subject_share: 0.5

maintenance:
  per_learner_timeout: "10s"
  parallelism: 8
  timezone: "Asia/Kolkata"

recalibration:
  window_days: 7
  extended_window_days: 21
  min_data_points: 4
  cooldown_days: 2
  drift_limit: 0.15
`

func TestLoad_ValidYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeYAML(t, dir, validYAML)
	t.Setenv("CONFIG_PATH", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Database
	if cfg.Database.DSN != "postgres://u:p@localhost:5432/testdb" {
		t.Errorf("database.dsn = %q", cfg.Database.DSN)
	}
	if cfg.Database.MaxConns != 10 {
		t.Errorf("database.max_conns = %d, want 10", cfg.Database.MaxConns)
	}
	if cfg.Database.AppName != "studyplanner" {
		t.Errorf("database.app_name = %q, want default %q", cfg.Database.AppName, "studyplanner")
	}

	// Log
	if cfg.Log.Level != "debug" {
		t.Errorf("log.level = %q, want %q", cfg.Log.Level, "debug")
	}
	if cfg.Log.Format != "text" {
		t.Errorf("log.format = %q, want %q", cfg.Log.Format, "text")
	}

	// Redis
	if !cfg.Redis.Enabled || cfg.Redis.Addr != "redis:6379" || cfg.Redis.Channel != "intents" {
		t.Errorf("redis = %+v", cfg.Redis)
	}

	// SRS
	if cfg.SRS.DefaultRetention != 0.85 {
		t.Errorf("srs.default_retention = %v, want 0.85", cfg.SRS.DefaultRetention)
	}
	if !cfg.SRS.EnableFuzz {
		t.Error("srs.enable_fuzz should default to true")
	}
	if len(cfg.SRS.LearningSteps) != 2 {
		t.Fatalf("srs.learning_steps len = %d, want 2", len(cfg.SRS.LearningSteps))
	}
	if cfg.SRS.LearningSteps[1] != 10*time.Minute {
		t.Errorf("srs.learning_steps[1] = %v, want 10m", cfg.SRS.LearningSteps[1])
	}
	if len(cfg.SRS.RelearningSteps) != 1 || cfg.SRS.RelearningSteps[0] != 5*time.Minute {
		t.Errorf("srs.relearning_steps = %v, want [5m]", cfg.SRS.RelearningSteps)
	}

	// Planner
	if cfg.Planner.DefaultDailyHours != 5 {
		t.Errorf("planner.default_daily_hours = %v, want 5", cfg.Planner.DefaultDailyHours)
	}
	if cfg.Planner.SubjectShare != 0.5 {
		t.Errorf("planner.subject_share = %v, want 0.5", cfg.Planner.SubjectShare)
	}
	if cfg.Planner.ChallengeCap != 2 {
		t.Errorf("planner.challenge_cap = %d, want default 2", cfg.Planner.ChallengeCap)
	}

	// Maintenance
	if cfg.Maintenance.PerLearnerTimeout != 10*time.Second {
		t.Errorf("maintenance.per_learner_timeout = %v, want 10s", cfg.Maintenance.PerLearnerTimeout)
	}
	if cfg.Maintenance.Parallelism != 8 {
		t.Errorf("maintenance.parallelism = %d, want 8", cfg.Maintenance.Parallelism)
	}

	// Recalibration
	if cfg.Recalibration.ExtendedWindowDays != 21 {
		t.Errorf("recalibration.extended_window_days = %d, want 21", cfg.Recalibration.ExtendedWindowDays)
	}
	if cfg.Recalibration.DriftLimit != 0.15 {
		t.Errorf("recalibration.drift_limit = %v, want 0.15", cfg.Recalibration.DriftLimit)
	}
}

func TestLoad_ENVOverridesYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeYAML(t, dir, validYAML)
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("MAINTENANCE_PARALLELISM", "2")
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Maintenance.Parallelism != 2 {
		t.Errorf("maintenance.parallelism = %d, want 2 (ENV override)", cfg.Maintenance.Parallelism)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("log.level = %q, want %q (ENV override)", cfg.Log.Level, "warn")
	}
}

func TestLoad_NoFile_ENVOnly(t *testing.T) {
	validEnv(t)

	// Unset CONFIG_PATH so the fallback path is used and the file is absent.
	t.Setenv("CONFIG_PATH", "")
	origDir, _ := os.Getwd()
	t.Cleanup(func() { _ = os.Chdir(origDir) })
	_ = os.Chdir(t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Planner.DefaultDailyHours != 6 {
		t.Errorf("planner.default_daily_hours = %v, want 6 (default)", cfg.Planner.DefaultDailyHours)
	}
	if cfg.Recalibration.WindowDays != 7 || cfg.Recalibration.MinDataPoints != 5 || cfg.Recalibration.CooldownDays != 3 {
		t.Errorf("recalibration defaults = %+v", cfg.Recalibration)
	}
	if cfg.Redis.Enabled {
		t.Error("redis should be disabled by default")
	}
}

func TestLoad_ExplicitPathNotFound(t *testing.T) {
	t.Setenv("CONFIG_PATH", "/nonexistent/config.yaml")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error for missing explicit config path")
	}
}

func TestLoadFrom_ArgumentWinsOverConfigPath(t *testing.T) {
	t.Setenv("CONFIG_PATH", "/nonexistent/config.yaml")
	path := writeYAML(t, t.TempDir(), validYAML)

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Maintenance.Timezone != "Asia/Kolkata" {
		t.Errorf("maintenance.timezone = %q, want %q", cfg.Maintenance.Timezone, "Asia/Kolkata")
	}
}

func TestLoadFrom_MissingArgument(t *testing.T) {
	validEnv(t)
	t.Setenv("CONFIG_PATH", "")

	if _, err := LoadFrom(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing explicit config path")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeYAML(t, dir, `{{{invalid yaml`)
	t.Setenv("CONFIG_PATH", path)

	_, err := Load()
	if err == nil {
		t.Fatal("expected error for invalid YAML")
	}
}

func TestValidate_Valid(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"retention zero", func(c *Config) { c.SRS.DefaultRetention = 0 }},
		{"retention one", func(c *Config) { c.SRS.DefaultRetention = 1 }},
		{"max interval zero", func(c *Config) { c.SRS.MaxIntervalDays = 0 }},
		{"bad learning steps", func(c *Config) { c.SRS.LearningStepsRaw = "1m,nope" }},
		{"bad relearning steps", func(c *Config) { c.SRS.RelearningStepsRaw = "x" }},
		{"daily hours zero", func(c *Config) { c.Planner.DefaultDailyHours = 0 }},
		{"daily hours over 24", func(c *Config) { c.Planner.DefaultDailyHours = 25 }},
		{"max topics zero", func(c *Config) { c.Planner.MaxTopicsPerDay = 0 }},
		{"subject share zero", func(c *Config) { c.Planner.SubjectShare = 0 }},
		{"subject share over one", func(c *Config) { c.Planner.SubjectShare = 1.1 }},
		{"negative challenge cap", func(c *Config) { c.Planner.ChallengeCap = -1 }},
		{"light day difficulty", func(c *Config) { c.Planner.LightDayMaxDifficulty = 0 }},
		{"parallelism zero", func(c *Config) { c.Maintenance.Parallelism = 0 }},
		{"timeout zero", func(c *Config) { c.Maintenance.PerLearnerTimeout = 0 }},
		{"unknown timezone", func(c *Config) { c.Maintenance.Timezone = "Mars/Olympus" }},
		{"extended window shorter", func(c *Config) { c.Recalibration.ExtendedWindowDays = 3 }},
		{"min data points zero", func(c *Config) { c.Recalibration.MinDataPoints = 0 }},
		{"drift limit zero", func(c *Config) { c.Recalibration.DriftLimit = 0 }},
		{"redis without channel", func(c *Config) { c.Redis.Enabled = true; c.Redis.Channel = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestValidate_SubjectShareUpperBoundInclusive(t *testing.T) {
	cfg := validConfig()
	cfg.Planner.SubjectShare = 1

	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error for share = 1: %v", err)
	}
}

func TestParseLearningSteps_Valid(t *testing.T) {
	steps, err := ParseLearningSteps("1m,10m")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(steps) != 2 {
		t.Fatalf("len = %d, want 2", len(steps))
	}
	if steps[0] != time.Minute {
		t.Errorf("[0] = %v, want 1m", steps[0])
	}
	if steps[1] != 10*time.Minute {
		t.Errorf("[1] = %v, want 10m", steps[1])
	}
}

func TestParseLearningSteps_WithSpaces(t *testing.T) {
	steps, err := ParseLearningSteps(" 1m , 10m , 1h ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(steps) != 3 {
		t.Fatalf("len = %d, want 3", len(steps))
	}
	if steps[2] != time.Hour {
		t.Errorf("[2] = %v, want 1h", steps[2])
	}
}

func TestParseLearningSteps_Empty(t *testing.T) {
	steps, err := ParseLearningSteps("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if steps != nil {
		t.Errorf("expected nil, got %v", steps)
	}
}

func TestParseLearningSteps_InvalidFormat(t *testing.T) {
	_, err := ParseLearningSteps("1m,invalid,10m")
	if err == nil {
		t.Fatal("expected error for invalid duration")
	}
}

func TestParseLearningSteps_SingleStep(t *testing.T) {
	steps, err := ParseLearningSteps("5m")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(steps) != 1 {
		t.Fatalf("len = %d, want 1", len(steps))
	}
	if steps[0] != 5*time.Minute {
		t.Errorf("[0] = %v, want 5m", steps[0])
	}
}

// validConfig returns a Config that passes all validation checks.
func validConfig() Config {
	return Config{
		SRS: SRSConfig{
			DefaultRetention:   0.9,
			MaxIntervalDays:    365,
			LearningStepsRaw:   "1m,10m",
			RelearningStepsRaw: "10m",
		},
		Planner: PlannerConfig{
			DefaultDailyHours:      6,
			MaxTopicsPerDay:        8,
			SubjectShare:           0.6,
			VarietyBonus:           2,
			ChallengeCap:           2,
			StretchCap:             1,
			LightDayMaxDifficulty:  2,
			WeekendMultiplier:      1.5,
			ProfessionalMinPYQ:     2,
			DecayItemsPerPlan:      3,
			RecentPlans:            4,
			SubjectRepeatThreshold: 3,
		},
		Maintenance: MaintenanceConfig{
			PerLearnerTimeout: 30 * time.Second,
			Parallelism:       4,
			Timezone:          "UTC",
		},
		Recalibration: RecalibrationConfig{
			WindowDays:         7,
			ExtendedWindowDays: 14,
			MinDataPoints:      5,
			CooldownDays:       3,
			DriftLimit:         0.2,
		},
	}
}
