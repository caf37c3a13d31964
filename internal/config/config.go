// Package config loads the process configuration from an optional YAML
// file (talus.yaml). Missing file means pure defaults; a present but
// broken file is fatal at startup per the error taxonomy.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// DefaultPath is where Load looks when no path is given.
const DefaultPath = "talus.yaml"

// EngineConfig selects and parameterizes the analysis engine.
type EngineConfig struct {
	// Kind is "process" (external bridge) or "stub" (offline demo).
	Kind string `mapstructure:"kind"`

	// Command and Args configure the bridge executable for kind=process.
	Command string   `mapstructure:"command"`
	Args    []string `mapstructure:"args"`

	// Timeout bounds one analysis call.
	Timeout time.Duration `mapstructure:"timeout"`
}

// StoreConfig selects session persistence.
type StoreConfig struct {
	// Kind is "memory", "file" or "redis".
	Kind string `mapstructure:"kind"`

	// Dir is the session directory for kind=file.
	Dir string `mapstructure:"dir"`

	// Redis connection settings for kind=redis.
	RedisAddr     string        `mapstructure:"redis_addr"`
	RedisPassword string        `mapstructure:"redis_password"`
	RedisDB       int           `mapstructure:"redis_db"`
	RedisTTL      time.Duration `mapstructure:"redis_ttl"`
}

// Config is the full process configuration.
type Config struct {
	Engine EngineConfig `mapstructure:"engine"`
	Store  StoreConfig  `mapstructure:"store"`

	// MaxFOS is the default all-planes plot filter.
	MaxFOS float64 `mapstructure:"max_fos"`

	// Example seeds new sessions with the documented example inputs.
	Example bool `mapstructure:"example"`

	// LogLevel: debug, info, warn, error.
	LogLevel string `mapstructure:"log_level"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Engine: EngineConfig{
			Kind:    "process",
			Command: "pyslope-bridge",
			Timeout: 120 * time.Second,
		},
		Store: StoreConfig{
			Kind: "file",
		},
		MaxFOS:   2.0,
		LogLevel: "info",
	}
}

// Load reads the config file at path, applying defaults for anything the
// file leaves out. A missing file at the default path is not an error;
// a missing file at an explicit path is.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	// Decode YAML to a raw map first, then mapstructure into the typed
	// config so duration strings ("120s") work and unknown keys fail
	// loudly instead of being ignored.
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	cfg := Default()
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      cfg,
		ErrorUnused: true,
		DecodeHook:  mapstructure.StringToTimeDurationHookFunc(),
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(raw); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Engine.Kind {
	case "process":
		if c.Engine.Command == "" {
			return fmt.Errorf("engine.command is required for engine.kind=process")
		}
	case "stub":
	default:
		return fmt.Errorf("unknown engine.kind %q", c.Engine.Kind)
	}

	switch c.Store.Kind {
	case "memory", "file":
	case "redis":
		if c.Store.RedisAddr == "" {
			return fmt.Errorf("store.redis_addr is required for store.kind=redis")
		}
	default:
		return fmt.Errorf("unknown store.kind %q", c.Store.Kind)
	}

	if c.MaxFOS <= 0 {
		return fmt.Errorf("max_fos must be positive")
	}

	return nil
}
