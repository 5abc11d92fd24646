package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// CONFIG TESTS
// =============================================================================

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Name != "mdslides" {
		t.Errorf("expected Name=mdslides, got %s", cfg.Name)
	}
	if cfg.Tuning.Selector.Weights.CategoryMatch != 0.4 {
		t.Errorf("expected CategoryMatch=0.4, got %v", cfg.Tuning.Selector.Weights.CategoryMatch)
	}
	if cfg.Tuning.Segmenter.MaxLines != 23 {
		t.Errorf("expected MaxLines=23, got %d", cfg.Tuning.Segmenter.MaxLines)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate, got %v", err)
	}
}

func TestConfig_SaveLoad(t *testing.T) {
	t.Setenv("MDSLIDES_INPUT_DIR", "")
	t.Setenv("MDSLIDES_OUTPUT_DIR", "")

	path := filepath.Join(t.TempDir(), "nested", "mdslides.yaml")

	cfg := DefaultConfig()
	cfg.Input.Dir = "talks/q3"
	cfg.Tuning.Optimizer.VarietyDivisor = 4
	cfg.Tuning.Selector.Weights.Complexity = 0.25

	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "talks/q3", loaded.Input.Dir)
	assert.Equal(t, 4, loaded.Tuning.Optimizer.VarietyDivisor)
	assert.InDelta(t, 0.25, loaded.Tuning.Selector.Weights.Complexity, 1e-9)
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultTuning(), cfg.Tuning)
}

func TestLoad_PartialOverrideKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mdslides.yaml")
	content := "tuning:\n  segmenter:\n    max_lines: 30\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 30, cfg.Tuning.Segmenter.MaxLines)
	assert.Equal(t, 800, cfg.Tuning.Segmenter.MaxChars)
	assert.Equal(t, 3, cfg.Tuning.Optimizer.VarietyDivisor)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("tuning: [unclosed"), 0644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config")
}

func TestConfig_EnvOverrides(t *testing.T) {
	t.Setenv("MDSLIDES_INPUT_DIR", "/srv/decks")
	t.Setenv("MDSLIDES_DEBUG", "true")
	t.Setenv("MDSLIDES_LOG_LEVEL", "debug")

	cfg, err := Load(filepath.Join(t.TempDir(), "none.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "/srv/decks", cfg.Input.Dir)
	assert.True(t, cfg.Logging.DebugMode)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestConfig_EnvOverrideIgnoresBadBool(t *testing.T) {
	t.Setenv("MDSLIDES_DEBUG", "sometimes")

	cfg, err := Load(filepath.Join(t.TempDir(), "none.yaml"))
	require.NoError(t, err)
	assert.False(t, cfg.Logging.DebugMode)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"wrong file count", func(c *Config) { c.Input.Files = []string{"a.md"} }, "exactly 5 files"},
		{"bad level", func(c *Config) { c.Logging.Level = "loud" }, "invalid logging.level"},
		{"negative weight", func(c *Config) { c.Tuning.Selector.Weights.Complexity = -1 }, "weights"},
		{"zero divisor", func(c *Config) { c.Tuning.Optimizer.VarietyDivisor = 0 }, "variety_divisor"},
		{"confidence out of range", func(c *Config) { c.Tuning.Selector.LowConfidence = 2 }, "low_confidence"},
		{"zero stage seconds", func(c *Config) { c.Pipeline.SecondsPerStage = 0 }, "seconds_per_stage"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoggingConfig_IsCategoryEnabled(t *testing.T) {
	lc := LoggingConfig{DebugMode: false}
	assert.False(t, lc.IsCategoryEnabled("pipeline"))

	lc.DebugMode = true
	assert.True(t, lc.IsCategoryEnabled("pipeline"))

	lc.Categories = map[string]bool{"pipeline": false}
	assert.False(t, lc.IsCategoryEnabled("pipeline"))
	assert.True(t, lc.IsCategoryEnabled("segmenter"))
}

func TestConfig_HistoryPath(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Workspace = "/work"
	assert.Equal(t, filepath.Join("/work", ".mdslides", "history.db"), cfg.HistoryPath())

	cfg.History.Path = "/var/lib/mdslides.db"
	assert.Equal(t, "/var/lib/mdslides.db", cfg.HistoryPath())
}
