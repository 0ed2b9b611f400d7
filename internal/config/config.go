package config

import (
	"time"
)

// Config is the root application configuration.
type Config struct {
	Database      DatabaseConfig      `yaml:"database"`
	Log           LogConfig           `yaml:"log"`
	Redis         RedisConfig         `yaml:"redis"`
	SRS           SRSConfig           `yaml:"srs"`
	Planner       PlannerConfig       `yaml:"planner"`
	Maintenance   MaintenanceConfig   `yaml:"maintenance"`
	Recalibration RecalibrationConfig `yaml:"recalibration"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"                env:"DATABASE_DSN"                env-required:"true"`
	MaxConns        int32         `yaml:"max_conns"          env:"DATABASE_MAX_CONNS"          env-default:"25"`
	MinConns        int32         `yaml:"min_conns"          env:"DATABASE_MIN_CONNS"          env-default:"5"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  env:"DATABASE_MAX_CONN_LIFETIME"  env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"30m"`
	AppName         string        `yaml:"app_name"           env:"DATABASE_APP_NAME"           env-default:"studyplanner"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}

// RedisConfig holds the intent publisher connection. When disabled, intents
// are only logged.
type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"  env:"REDIS_ENABLED"  env-default:"false"`
	Addr     string `yaml:"addr"     env:"REDIS_ADDR"     env-default:"localhost:6379"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db"       env:"REDIS_DB"       env-default:"0"`
	Channel  string `yaml:"channel"  env:"REDIS_CHANNEL"  env-default:"studyplanner.intents"`
}

// SRSConfig holds spaced-repetition system parameters.
type SRSConfig struct {
	DefaultRetention   float64 `yaml:"default_retention"  env:"SRS_DEFAULT_RETENTION" env-default:"0.9"`
	MaxIntervalDays    int     `yaml:"max_interval_days"  env:"SRS_MAX_INTERVAL"      env-default:"365"`
	EnableFuzz         bool    `yaml:"enable_fuzz"        env:"SRS_ENABLE_FUZZ"       env-default:"true"`
	LearningStepsRaw   string  `yaml:"learning_steps"     env:"SRS_LEARNING_STEPS"    env-default:"1m,10m"`
	RelearningStepsRaw string  `yaml:"relearning_steps"   env:"SRS_RELEARNING_STEPS"  env-default:"10m"`

	// LearningSteps is parsed from LearningStepsRaw during validation.
	LearningSteps []time.Duration `yaml:"-" env:"-"`
	// RelearningSteps is parsed from RelearningStepsRaw during validation.
	RelearningSteps []time.Duration `yaml:"-" env:"-"`
}

// PlannerConfig holds daily plan generation limits.
type PlannerConfig struct {
	DefaultDailyHours      float64 `yaml:"default_daily_hours"       env:"PLANNER_DEFAULT_DAILY_HOURS"       env-default:"6"`
	MaxTopicsPerDay        int     `yaml:"max_topics_per_day"        env:"PLANNER_MAX_TOPICS_PER_DAY"        env-default:"8"`
	SubjectShare           float64 `yaml:"subject_share"             env:"PLANNER_SUBJECT_SHARE"             env-default:"0.6"`
	VarietyBonus           float64 `yaml:"variety_bonus"             env:"PLANNER_VARIETY_BONUS"             env-default:"2"`
	ChallengeCap           int     `yaml:"challenge_cap"             env:"PLANNER_CHALLENGE_CAP"             env-default:"2"`
	StretchCap             int     `yaml:"stretch_cap"               env:"PLANNER_STRETCH_CAP"               env-default:"1"`
	LightDayMaxDifficulty  int     `yaml:"light_day_max_difficulty"  env:"PLANNER_LIGHT_DAY_MAX_DIFFICULTY"  env-default:"2"`
	WeekendMultiplier      float64 `yaml:"weekend_multiplier"        env:"PLANNER_WEEKEND_MULTIPLIER"        env-default:"1.5"`
	ProfessionalMinPYQ     int     `yaml:"professional_min_pyq"      env:"PLANNER_PROFESSIONAL_MIN_PYQ"      env-default:"2"`
	DecayItemsPerPlan      int     `yaml:"decay_items_per_plan"      env:"PLANNER_DECAY_ITEMS_PER_PLAN"      env-default:"3"`
	RecentPlans            int     `yaml:"recent_plans"              env:"PLANNER_RECENT_PLANS"              env-default:"4"`
	SubjectRepeatThreshold int     `yaml:"subject_repeat_threshold"  env:"PLANNER_SUBJECT_REPEAT_THRESHOLD"  env-default:"3"`
}

// MaintenanceConfig holds daily batch settings.
type MaintenanceConfig struct {
	PerLearnerTimeout time.Duration `yaml:"per_learner_timeout" env:"MAINTENANCE_PER_LEARNER_TIMEOUT" env-default:"30s"`
	Parallelism       int           `yaml:"parallelism"         env:"MAINTENANCE_PARALLELISM"         env-default:"4"`
	Timezone          string        `yaml:"timezone"            env:"MAINTENANCE_TIMEZONE"            env-default:"UTC"`
}

// RecalibrationConfig holds the controller's data and drift guardrails.
type RecalibrationConfig struct {
	WindowDays         int     `yaml:"window_days"          env:"RECALIBRATION_WINDOW_DAYS"          env-default:"7"`
	ExtendedWindowDays int     `yaml:"extended_window_days" env:"RECALIBRATION_EXTENDED_WINDOW_DAYS" env-default:"14"`
	MinDataPoints      int     `yaml:"min_data_points"      env:"RECALIBRATION_MIN_DATA_POINTS"      env-default:"5"`
	CooldownDays       int     `yaml:"cooldown_days"        env:"RECALIBRATION_COOLDOWN_DAYS"        env-default:"3"`
	DriftLimit         float64 `yaml:"drift_limit"          env:"RECALIBRATION_DRIFT_LIMIT"          env-default:"0.2"`
}
