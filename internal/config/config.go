// =============================================================================
// IPM to XML Converter - Configuration Module
// =============================================================================
//
// This module is responsible for loading the main application configuration.
//
// CONFIGURATION SOURCES (later wins):
//   1. Built-in defaults
//   2. The config file: config.yaml / config.yml (YAML) or config.toml (TOML)
//   3. Environment variables, optionally loaded from a .env file by the CLI:
//        IPM_ENCODING, IPM_TABLES_DIR, IPM_OUTPUT_DIR, IPM_LOG_LEVEL,
//        IPM_LOG_FORMAT
//
// Loading has no side effects: directories are created by the commands that
// need them, not here.
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/ginjaninja78/IPM-to-XML-conversion/internal/layout"
	"github.com/ginjaninja78/IPM-to-XML-conversion/internal/logging"
)

// Environment variables that override config file values.
const (
	EnvEncoding  = "IPM_ENCODING"
	EnvTablesDir = "IPM_TABLES_DIR"
	EnvOutputDir = "IPM_OUTPUT_DIR"
	EnvLogLevel  = "IPM_LOG_LEVEL"
	EnvLogFormat = "IPM_LOG_FORMAT"
)

// DefaultPath is the config file used when none is given explicitly.
const DefaultPath = "config.yaml"

// =============================================================================
// MAIN CONFIGURATION STRUCTURE
// =============================================================================

// MainConfig holds the global application configuration.
type MainConfig struct {
	// =========================================================================
	// DIRECTORY SETTINGS
	// =========================================================================

	// InputDir is the directory scanned for IPM files by the process command.
	// Default: "./input"
	InputDir string `yaml:"input_dir" toml:"input_dir"`

	// OutputDir is the directory where generated XML files are placed.
	// Default: "./output"
	OutputDir string `yaml:"output_dir" toml:"output_dir"`

	// InputArchiveDir is the directory where processed IPM files are moved.
	// Default: "./input_archive"
	InputArchiveDir string `yaml:"input_archive_dir" toml:"input_archive_dir"`

	// OutputArchiveDir is the directory where the processing summary is kept.
	// Default: "./output_archive"
	OutputArchiveDir string `yaml:"output_archive_dir" toml:"output_archive_dir"`

	// TablesDir overrides the embedded field-definition tables. Tables are
	// looked up as <TablesDir>/<table>.{yaml,yml,xlsx,csv}.
	// Default: "" (embedded tables)
	TablesDir string `yaml:"tables_dir" toml:"tables_dir"`

	// =========================================================================
	// DECODING SETTINGS
	// =========================================================================

	// Encoding selects the file layout: "ascii" (alias "text") or "ebcdic".
	// Default: "ebcdic"
	Encoding string `yaml:"encoding" toml:"encoding"`

	// InputPattern is the glob matched against file names in InputDir.
	// Default: "*.ipm"
	InputPattern string `yaml:"input_pattern" toml:"input_pattern"`

	// =========================================================================
	// OUTPUT SETTINGS
	// =========================================================================

	// Indent is written once per nesting level of the XML output.
	// Default: "\t"
	Indent string `yaml:"indent" toml:"indent"`

	// UUIDFormat defines the format for output file names.
	// Placeholders:
	//   {uuid}      - A random UUID
	//   {timestamp} - Current timestamp (YYYYMMDD_HHMMSS)
	//   {original}  - Input file name without extension
	//   {encoding}  - The layout name (ascii or ebcdic)
	// Default: "{original}_{uuid}.xml"
	UUIDFormat string `yaml:"uuid_format" toml:"uuid_format"`

	// =========================================================================
	// LOGGING SETTINGS
	// =========================================================================

	// LogLevel controls the verbosity of logging.
	// Valid values: "debug", "info", "warn", "error"
	// Default: "info"
	LogLevel string `yaml:"log_level" toml:"log_level"`

	// LogFormat selects "console" or "json" log output.
	// Default: "console"
	LogFormat string `yaml:"log_format" toml:"log_format"`

	// =========================================================================
	// PROCESSING SETTINGS
	// =========================================================================

	// MaxConcurrency is the maximum number of files to process concurrently.
	// Set to 1 for sequential processing.
	// Default: 4
	MaxConcurrency int `yaml:"max_concurrency" toml:"max_concurrency"`

	// ArchiveOnSuccess moves each successfully converted input file to
	// InputArchiveDir.
	// Default: false
	ArchiveOnSuccess bool `yaml:"archive_on_success" toml:"archive_on_success"`

	// UseTimestampSubdirs archives inputs under YYYY/MM/DD subdirectories of
	// InputArchiveDir.
	// Default: false
	UseTimestampSubdirs bool `yaml:"use_timestamp_subdirs" toml:"use_timestamp_subdirs"`
}

// Layout returns the configured layout.
func (c *MainConfig) Layout() (layout.Layout, error) {
	return layout.Parse(c.Encoding)
}

// =============================================================================
// CONFIGURATION LOADING FUNCTIONS
// =============================================================================

// Default returns the built-in configuration with environment overrides
// applied.
func Default() (*MainConfig, error) {
	var config MainConfig
	return finish(&config)
}

// LoadMainConfig loads the main configuration from a YAML or TOML file.
//
// PARAMETERS:
//   - configPath: The path to the configuration file. Files ending in .toml
//     are read as TOML, anything else as YAML.
//
// RETURNS:
//   - A pointer to the MainConfig struct.
//   - An error if the file cannot be read, parsed or validated.
func LoadMainConfig(configPath string) (*MainConfig, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config MainConfig
	switch strings.ToLower(filepath.Ext(configPath)) {
	case ".toml":
		if err := toml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	return finish(&config)
}

// Load loads configPath. When explicit is false and the file does not exist,
// the built-in defaults are used instead.
func Load(configPath string, explicit bool) (*MainConfig, error) {
	config, err := LoadMainConfig(configPath)
	if err != nil && !explicit && errors.Is(err, os.ErrNotExist) {
		return Default()
	}
	return config, err
}

func finish(config *MainConfig) (*MainConfig, error) {
	applyEnvOverrides(config)
	applyMainConfigDefaults(config)

	if err := validateMainConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return config, nil
}

// applyEnvOverrides replaces config values with any set IPM_* variables.
func applyEnvOverrides(config *MainConfig) {
	overrides := []struct {
		name   string
		target *string
	}{
		{EnvEncoding, &config.Encoding},
		{EnvTablesDir, &config.TablesDir},
		{EnvOutputDir, &config.OutputDir},
		{EnvLogLevel, &config.LogLevel},
		{EnvLogFormat, &config.LogFormat},
	}

	for _, o := range overrides {
		if v, ok := os.LookupEnv(o.name); ok && v != "" {
			*o.target = v
		}
	}
}

// applyMainConfigDefaults sets default values for any unset configuration options.
func applyMainConfigDefaults(config *MainConfig) {
	if config.InputDir == "" {
		config.InputDir = "./input"
	}
	if config.OutputDir == "" {
		config.OutputDir = "./output"
	}
	if config.InputArchiveDir == "" {
		config.InputArchiveDir = "./input_archive"
	}
	if config.OutputArchiveDir == "" {
		config.OutputArchiveDir = "./output_archive"
	}
	if config.Encoding == "" {
		config.Encoding = "ebcdic"
	}
	if config.InputPattern == "" {
		config.InputPattern = "*.ipm"
	}
	if config.Indent == "" {
		config.Indent = "\t"
	}
	if config.UUIDFormat == "" {
		config.UUIDFormat = "{original}_{uuid}.xml"
	}
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}
	if config.LogFormat == "" {
		config.LogFormat = logging.FormatConsole
	}
	if config.MaxConcurrency == 0 {
		config.MaxConcurrency = 4
	}
}

// validateMainConfig validates the main configuration.
func validateMainConfig(config *MainConfig) error {
	if _, err := config.Layout(); err != nil {
		return err
	}

	if config.MaxConcurrency < 1 {
		return fmt.Errorf("max_concurrency must be at least 1, got %d", config.MaxConcurrency)
	}

	switch strings.ToLower(config.LogFormat) {
	case logging.FormatConsole, logging.FormatJSON:
	default:
		return fmt.Errorf("log_format must be %q or %q, got %q", logging.FormatConsole, logging.FormatJSON, config.LogFormat)
	}

	if _, err := filepath.Match(config.InputPattern, ""); err != nil {
		return fmt.Errorf("invalid input_pattern %q: %w", config.InputPattern, err)
	}

	return nil
}
