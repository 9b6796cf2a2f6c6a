// Package config loads and validates the tunable pipeline settings. The
// game-count formula weights, clamp bounds and retry budget are deliberately
// configuration rather than code constants: they shape pipeline behavior but
// carry no structural invariants beyond the ranges enforced by Validate.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// CountFormula holds the deterministic game-count arithmetic: the weighted
// sum of the complexity breakdown, rounded and clamped to [MinGames,
// MaxGames].
type CountFormula struct {
	SimpleWeight  float64 `yaml:"simple_weight"`
	MediumWeight  float64 `yaml:"medium_weight"`
	ComplexWeight float64 `yaml:"complex_weight"`
	MinGames      int     `yaml:"min_games"`
	MaxGames      int     `yaml:"max_games"`
}

// Config is the full set of pipeline settings.
type Config struct {
	// Provider selects the capability adapter: "openai", "anthropic" or
	// "mock".
	Provider string `yaml:"provider"`
	// Model is the provider-specific model identifier. Empty selects the
	// adapter default.
	Model string `yaml:"model"`

	// MinWordCount is the minimum viable input size for analysis.
	MinWordCount int `yaml:"min_word_count"`
	// MinMarkupBytes is the shortest raw generation output accepted by the
	// synthesizer before counting the attempt as failed.
	MinMarkupBytes int `yaml:"min_markup_bytes"`

	Formula CountFormula `yaml:"formula"`

	// MaxAttempts bounds synthesis attempts per spec.
	MaxAttempts int `yaml:"max_attempts"`
	// BackoffBaseMS is the first retry delay; subsequent delays double.
	BackoffBaseMS int `yaml:"backoff_base_ms"`
	// Workers bounds concurrent spec generation.
	Workers int `yaml:"workers"`
	// MaxCapabilityCalls bounds total capability calls per run (0 =
	// unlimited).
	MaxCapabilityCalls int `yaml:"max_capability_calls"`
}

// Default returns the baseline configuration. The formula defaults implement
// clamp(round(simple*0.6 + medium*1.0 + complex*1.4), 3, 15).
func Default() Config {
	return Config{
		Provider:       "openai",
		MinWordCount:   10,
		MinMarkupBytes: 100,
		Formula: CountFormula{
			SimpleWeight:  0.6,
			MediumWeight:  1.0,
			ComplexWeight: 1.4,
			MinGames:      3,
			MaxGames:      15,
		},
		MaxAttempts:   3,
		BackoffBaseMS: 500,
		Workers:       4,
	}
}

// Load reads a YAML config file, layering it over the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks range constraints the pipeline relies on.
func (c Config) Validate() error {
	if c.Formula.MinGames < 1 || c.Formula.MaxGames < c.Formula.MinGames {
		return fmt.Errorf("config: invalid game count bounds [%d,%d]", c.Formula.MinGames, c.Formula.MaxGames)
	}
	if c.Formula.SimpleWeight < 0 || c.Formula.MediumWeight < 0 || c.Formula.ComplexWeight < 0 {
		return fmt.Errorf("config: formula weights must be non-negative")
	}
	if c.MaxAttempts < 1 {
		return fmt.Errorf("config: max_attempts must be at least 1, got %d", c.MaxAttempts)
	}
	if c.Workers < 1 {
		return fmt.Errorf("config: workers must be at least 1, got %d", c.Workers)
	}
	if c.MinWordCount < 1 {
		return fmt.Errorf("config: min_word_count must be at least 1, got %d", c.MinWordCount)
	}
	switch c.Provider {
	case "openai", "anthropic", "mock":
	default:
		return fmt.Errorf("config: unknown provider %q", c.Provider)
	}
	return nil
}
