package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds all mdslides configuration.
type Config struct {
	// Core settings
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	// Workspace root; logs and history live under <workspace>/.mdslides
	Workspace string `yaml:"workspace"`

	Input  InputConfig  `yaml:"input"`
	Output OutputConfig `yaml:"output"`

	// Heuristic weights and thresholds for every pipeline component
	Tuning Tuning `yaml:"tuning"`

	// Orchestrator reporting
	Pipeline PipelineConfig `yaml:"pipeline"`

	Logging LoggingConfig `yaml:"logging"`
	History HistoryConfig `yaml:"history"`
}

// InputConfig configures where the five stage documents are read from.
type InputConfig struct {
	Dir string `yaml:"dir"`
	// Files overrides the default stage file names, in stage order.
	Files []string `yaml:"files,omitempty"`
	// Strict turns loader warnings (short content) into errors.
	Strict bool `yaml:"strict"`
}

// OutputConfig configures emitted artifacts.
type OutputConfig struct {
	Dir          string `yaml:"dir"`
	MarpFile     string `yaml:"marp_file"`
	HTMLFile     string `yaml:"html_file"`
	ReportFile   string `yaml:"report_file"`
	Theme        string `yaml:"theme"`
	Paginate     bool   `yaml:"paginate"`
	IncludeNotes bool   `yaml:"include_notes"`
}

// PipelineConfig configures orchestrator progress and report heuristics.
type PipelineConfig struct {
	SecondsPerStage           int `yaml:"seconds_per_stage"`
	ProgressPerStage          int `yaml:"progress_per_stage"`
	RecommendMaxSlides        int `yaml:"recommend_max_slides"`
	RecommendMaxDurationMin   int `yaml:"recommend_max_duration_min"`
	RecommendMaxWarnings      int `yaml:"recommend_max_warnings"`
	DraftCompletenessWarnings int `yaml:"draft_completeness_warning"`
}

// HistoryConfig configures the run-history store.
type HistoryConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
	// Keep is the number of runs retained; 0 keeps everything.
	Keep int `yaml:"keep"`
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Name:      "mdslides",
		Version:   "0.3.0",
		Workspace: ".",

		Input: InputConfig{
			Dir: "docs",
		},

		Output: OutputConfig{
			Dir:        "out",
			MarpFile:   "slides.md",
			HTMLFile:   "slides.html",
			ReportFile: "report.json",
			Theme:      "default",
			Paginate:   true,
		},

		Tuning: DefaultTuning(),

		Pipeline: PipelineConfig{
			SecondsPerStage:           30,
			ProgressPerStage:          20,
			RecommendMaxSlides:        20,
			RecommendMaxDurationMin:   30,
			RecommendMaxWarnings:      3,
			DraftCompletenessWarnings: 80,
		},

		Logging: LoggingConfig{
			Level:     "info",
			Format:    "text",
			DebugMode: false,
		},

		History: HistoryConfig{
			Enabled: true,
			Path:    filepath.Join(".mdslides", "history.db"),
			Keep:    200,
		},
	}
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if dir := os.Getenv("MDSLIDES_INPUT_DIR"); dir != "" {
		c.Input.Dir = dir
	}
	if dir := os.Getenv("MDSLIDES_OUTPUT_DIR"); dir != "" {
		c.Output.Dir = dir
	}
	if ws := os.Getenv("MDSLIDES_WORKSPACE"); ws != "" {
		c.Workspace = ws
	}
	if path := os.Getenv("MDSLIDES_HISTORY_PATH"); path != "" {
		c.History.Path = path
	}
	if v := os.Getenv("MDSLIDES_DEBUG"); v != "" {
		if debug, err := strconv.ParseBool(v); err == nil {
			c.Logging.DebugMode = debug
		}
	}
	if lvl := os.Getenv("MDSLIDES_LOG_LEVEL"); lvl != "" {
		c.Logging.Level = lvl
	}
}

// HistoryPath resolves the history database path against the workspace.
func (c *Config) HistoryPath() string {
	if filepath.IsAbs(c.History.Path) {
		return c.History.Path
	}
	return filepath.Join(c.Workspace, c.History.Path)
}

// LogsDir returns the directory category logs are written to.
func (c *Config) LogsDir() string {
	return filepath.Join(c.Workspace, ".mdslides", "logs")
}

// Validate checks the configuration for obvious mistakes.
func (c *Config) Validate() error {
	if c.Input.Dir == "" && len(c.Input.Files) == 0 {
		return fmt.Errorf("input.dir or input.files must be set")
	}
	if n := len(c.Input.Files); n != 0 && n != StageCount {
		return fmt.Errorf("input.files must list exactly %d files, got %d", StageCount, n)
	}
	if c.Pipeline.SecondsPerStage <= 0 {
		return fmt.Errorf("pipeline.seconds_per_stage must be > 0")
	}
	if c.Pipeline.ProgressPerStage <= 0 || c.Pipeline.ProgressPerStage > 100 {
		return fmt.Errorf("pipeline.progress_per_stage must be in (0, 100]")
	}
	if !validLevel(c.Logging.Level) {
		return fmt.Errorf("invalid logging.level: %s (valid: debug, info, warn, error)", c.Logging.Level)
	}
	if err := c.Tuning.Validate(); err != nil {
		return fmt.Errorf("invalid tuning: %w", err)
	}
	return nil
}

// StageCount is the number of pipeline stages and source documents.
const StageCount = 5
