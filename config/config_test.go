package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "eduforge.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 3, cfg.Formula.MinGames)
	assert.Equal(t, 15, cfg.Formula.MaxGames)
	assert.Equal(t, 3, cfg.MaxAttempts)
}

func TestLoad_LayersOverDefaults(t *testing.T) {
	path := writeConfig(t, `
provider: anthropic
model: claude-3-5-sonnet-20241022
workers: 2
formula:
  simple_weight: 0.5
  medium_weight: 1.0
  complex_weight: 1.5
  min_games: 3
  max_games: 10
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "anthropic", cfg.Provider)
	assert.Equal(t, 2, cfg.Workers)
	assert.Equal(t, 10, cfg.Formula.MaxGames)
	assert.Equal(t, 0.5, cfg.Formula.SimpleWeight)

	// Untouched keys keep their defaults.
	assert.Equal(t, 10, cfg.MinWordCount)
	assert.Equal(t, 3, cfg.MaxAttempts)
	assert.Equal(t, 500, cfg.BackoffBaseMS)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := writeConfig(t, "provider: [unterminated")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"inverted bounds", func(c *Config) { c.Formula.MinGames = 10; c.Formula.MaxGames = 5 }},
		{"zero min games", func(c *Config) { c.Formula.MinGames = 0 }},
		{"negative weight", func(c *Config) { c.Formula.MediumWeight = -1 }},
		{"zero attempts", func(c *Config) { c.MaxAttempts = 0 }},
		{"zero workers", func(c *Config) { c.Workers = 0 }},
		{"zero word count", func(c *Config) { c.MinWordCount = 0 }},
		{"unknown provider", func(c *Config) { c.Provider = "bard" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
