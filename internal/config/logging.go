package config

// LoggingConfig controls the category file logs under <workspace>/.mdslides/logs.
type LoggingConfig struct {
	Level      string          `yaml:"level" json:"level,omitempty"`           // debug, info, warn, error
	Format     string          `yaml:"format" json:"format,omitempty"`         // text or json
	DebugMode  bool            `yaml:"debug_mode" json:"debug_mode,omitempty"` // off: no category files at all
	Categories map[string]bool `yaml:"categories" json:"categories,omitempty"` // unlisted categories are on
}

// IsCategoryEnabled reports whether category writes a log file. Nothing is
// enabled unless DebugMode is set.
func (c *LoggingConfig) IsCategoryEnabled(category string) bool {
	if !c.DebugMode {
		return false
	}
	if on, listed := c.Categories[category]; listed {
		return on
	}
	return true
}

// JSONFormat reports whether category logs are written as JSON lines.
func (c *LoggingConfig) JSONFormat() bool {
	return c.Format == "json"
}

func validLevel(level string) bool {
	switch level {
	case "debug", "info", "warn", "warning", "error":
		return true
	}
	return false
}
