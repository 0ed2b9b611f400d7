package config

import (
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

const defaultPath = "./config.yaml"

// Load reads configuration using the CONFIG_PATH environment variable.
// See LoadFrom.
func Load() (*Config, error) {
	return LoadFrom("")
}

// LoadFrom reads configuration from a YAML file overlaid with environment
// variables (ENV > YAML > env-default tags) and validates it.
//
// An empty path falls back to CONFIG_PATH, then to ./config.yaml. A path
// given explicitly, by argument or CONFIG_PATH, must exist; the implicit
// ./config.yaml may be absent, in which case only ENV and defaults apply.
func LoadFrom(path string) (*Config, error) {
	var cfg Config

	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	explicit := path != ""
	if !explicit {
		path = defaultPath
	}

	_, statErr := os.Stat(path)
	switch {
	case statErr == nil:
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	case explicit:
		return nil, fmt.Errorf("config: file %s: %w", path, statErr)
	default:
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("config: read env: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}

	return &cfg, nil
}
