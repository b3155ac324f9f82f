package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	// Storage
	DataDir string `yaml:"data_dir"`

	Editor string `yaml:"editor"`

	// Ingestion
	IngestPattern    string   `yaml:"ingest_pattern"`
	IngestExtensions []string `yaml:"ingest_extensions"`

	// Export
	ExportDefaultName string `yaml:"export_default_name"`

	// Watch
	WatchDebounceMS int `yaml:"watch_debounce_ms"`

	// Logging
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	// UI Settings
	ColorTheme         string `yaml:"color_theme"`
	SyntaxHighlighting bool   `yaml:"syntax_highlighting"`
	TableWidth         int    `yaml:"table_width"`
}

const (
	defaultIngestPattern = "**/*.txt"
	defaultExportName    = "master.txt"
	defaultDebounceMS    = 500
	defaultLogLevel      = "info"
	defaultLogFormat     = "console"
)

// DefaultConfig returns a Config struct with default values
func DefaultConfig() *Config {
	return &Config{
		DataDir:            "",
		Editor:             "",
		IngestPattern:      defaultIngestPattern,
		IngestExtensions:   []string{".txt"},
		ExportDefaultName:  defaultExportName,
		WatchDebounceMS:    defaultDebounceMS,
		LogLevel:           defaultLogLevel,
		LogFormat:          defaultLogFormat,
		ColorTheme:         "auto",
		SyntaxHighlighting: true,
		TableWidth:         0,
	}
}

// Load reads configuration from the specified file path
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		// A missing file means defaults
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyDefaults()
	return cfg, nil
}

// applyDefaults restores essential values that were blanked out in the file
func (c *Config) applyDefaults() {
	if c.IngestPattern == "" {
		c.IngestPattern = defaultIngestPattern
	}
	if len(c.IngestExtensions) == 0 {
		c.IngestExtensions = []string{".txt"}
	}
	for i, ext := range c.IngestExtensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext != "" && !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		c.IngestExtensions[i] = ext
	}
	if c.ExportDefaultName == "" {
		c.ExportDefaultName = defaultExportName
	}
	if c.WatchDebounceMS <= 0 {
		c.WatchDebounceMS = defaultDebounceMS
	}
	if c.LogLevel == "" {
		c.LogLevel = defaultLogLevel
	}
	if !isValidLogFormat(c.LogFormat) {
		c.LogFormat = defaultLogFormat
	}
	if c.TableWidth < 0 {
		c.TableWidth = 0
	}
}

// Save persists the current configuration to the specified file path
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
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Marshal renders the configuration as YAML
func (c *Config) Marshal() (string, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("failed to marshal config: %w", err)
	}
	return string(data), nil
}

// HasExtension reports whether path ends in one of the ingest extensions
func (c *Config) HasExtension(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range c.IngestExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

func isValidLogFormat(format string) bool {
	return format == "console" || format == "json"
}
