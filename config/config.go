// Package config loads the serving configuration from a YAML file with
// environment-variable overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"abalone/oracle"
)

// Config is the full serving configuration.
type Config struct {
	// Listen is the HTTP listen address.
	Listen string `yaml:"listen"`
	// ModelDir is the directory holding or receiving the evaluation model
	// artifacts. Empty disables model provisioning.
	ModelDir string `yaml:"model_dir"`
	// ModelURL is the archive to download when the model is absent.
	ModelURL string `yaml:"model_url"`
	// Workers is the simulation worker pool size.
	Workers int `yaml:"workers"`
	// Simulations is the number of simulation visits per move search.
	Simulations int `yaml:"simulations"`
	// MinVisits is the minimum visit count a sampled candidate must keep.
	MinVisits int `yaml:"min_visits"`
	// Depth cuts simulations off after this many moves, zero plays out.
	Depth int `yaml:"depth"`
	// PollIntervalMs is the progress polling interval in milliseconds.
	PollIntervalMs int `yaml:"poll_interval_ms"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Listen:         ":8080",
		ModelURL:       oracle.DefaultModelURL,
		Workers:        10,
		Simulations:    100,
		MinVisits:      1,
		Depth:          0,
		PollIntervalMs: 100,
	}
}

// Load reads the configuration file at path, falling back to the defaults
// when the file does not exist, and applies ABALONE_* environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return Config{}, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(raw, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config: %w", err)
			}
		}
	}
	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// PollInterval returns the polling interval as a duration.
func (c Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMs) * time.Millisecond
}

func applyEnv(cfg *Config) error {
	if v, ok := os.LookupEnv("ABALONE_LISTEN"); ok {
		cfg.Listen = v
	}
	if v, ok := os.LookupEnv("ABALONE_MODEL_DIR"); ok {
		cfg.ModelDir = v
	}
	if v, ok := os.LookupEnv("ABALONE_MODEL_URL"); ok {
		cfg.ModelURL = v
	}
	for name, target := range map[string]*int{
		"ABALONE_WORKERS":          &cfg.Workers,
		"ABALONE_SIMULATIONS":      &cfg.Simulations,
		"ABALONE_MIN_VISITS":       &cfg.MinVisits,
		"ABALONE_DEPTH":            &cfg.Depth,
		"ABALONE_POLL_INTERVAL_MS": &cfg.PollIntervalMs,
	} {
		v, ok := os.LookupEnv(name)
		if !ok {
			continue
		}
		parsed, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse %s: %w", name, err)
		}
		*target = parsed
	}
	return nil
}

func (c Config) validate() error {
	if c.Listen == "" {
		return fmt.Errorf("config: listen address required")
	}
	if c.Workers < 1 {
		return fmt.Errorf("config: workers must be at least 1, got %d", c.Workers)
	}
	if c.Simulations < 1 {
		return fmt.Errorf("config: simulations must be at least 1, got %d", c.Simulations)
	}
	if c.MinVisits < 0 {
		return fmt.Errorf("config: min_visits must not be negative, got %d", c.MinVisits)
	}
	if c.Depth < 0 {
		return fmt.Errorf("config: depth must not be negative, got %d", c.Depth)
	}
	if c.PollIntervalMs < 1 {
		return fmt.Errorf("config: poll_interval_ms must be at least 1, got %d", c.PollIntervalMs)
	}
	return nil
}
