package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/brettbedarf/treefs/internal/util"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// Verbosity levels accepted from the CLI and override files. Higher is louder.
const (
	ErrorVerbose = iota + 1
	WarnVerbose
	InfoVerbose
	DebugVerbose
	TraceVerbose
)

// Default configuration constants. See [Config] for field descriptions.
const (
	DefaultLogLvl = util.InfoLevel

	DefaultFsName = "treefs"
	DefaultName   = "treefs"

	// DefaultAttrTimeout is the attribute cache timeout in seconds
	DefaultAttrTimeout = 1.0

	// DefaultEntryTimeout is the directory entry cache timeout in seconds
	DefaultEntryTimeout = 1.0

	DefaultMakeIntermediateDirectories = true

	DefaultFileMode = 0o444
	DefaultDirMode  = 0o555

	// DefaultHTTPTimeout bounds each HTTP content fetch, in seconds
	DefaultHTTPTimeout = 30.0
)

// Config contains runtime configuration values for treefs tools.
type Config struct {
	MountOptions

	LogLvl util.LogLevel // Internal log level (Default Info)

	AttrTimeout  float64 // Attribute cache timeout in seconds (Default 1.0)
	EntryTimeout float64 // Directory entry cache timeout in seconds (Default 1.0)

	// Manifest loading

	MakeIntermediateDirectories bool    // Create missing parents of manifest entries (Default true)
	FileMode                    uint32  // Permission bits for files without a mode (Default 0444)
	DirMode                     uint32  // Permission bits for directories without a mode (Default 0555)
	HTTPTimeout                 float64 // Per-request timeout for http sources in seconds (Default 30)
}

// AttrTimeoutDuration returns AttrTimeout as a time.Duration
func (c *Config) AttrTimeoutDuration() time.Duration {
	return secondsToDuration(c.AttrTimeout)
}

// EntryTimeoutDuration returns EntryTimeout as a time.Duration
func (c *Config) EntryTimeoutDuration() time.Duration {
	return secondsToDuration(c.EntryTimeout)
}

// HTTPTimeoutDuration returns HTTPTimeout as a time.Duration
func (c *Config) HTTPTimeoutDuration() time.Duration {
	return secondsToDuration(c.HTTPTimeout)
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// ConfigOverride uses pointer fields to distinguish between unset and zero values
// when loading partial configuration. See [Config] for field descriptions.
type ConfigOverride struct {
	// LogLvl is a CLI style verbosity (1 error .. 5 trace), clamped to that range
	LogLvl                      *int     `yaml:"verbose,omitempty" json:"verbose,omitempty"`
	Debug                       *bool    `yaml:"debug,omitempty" json:"debug,omitempty"`
	FsName                      *string  `yaml:"fs_name,omitempty" json:"fs_name,omitempty"`
	Name                        *string  `yaml:"name,omitempty" json:"name,omitempty"`
	AttrTimeout                 *float64 `yaml:"attr_timeout,omitempty" json:"attr_timeout,omitempty"`
	EntryTimeout                *float64 `yaml:"entry_timeout,omitempty" json:"entry_timeout,omitempty"`
	MakeIntermediateDirectories *bool    `yaml:"make_intermediate_directories,omitempty" json:"make_intermediate_directories,omitempty"`
	FileMode                    *uint32  `yaml:"file_mode,omitempty" json:"file_mode,omitempty"`
	DirMode                     *uint32  `yaml:"dir_mode,omitempty" json:"dir_mode,omitempty"`
	HTTPTimeout                 *float64 `yaml:"http_timeout,omitempty" json:"http_timeout,omitempty"`
}

// NewDefaultConfig creates a new Config with all default values.
func NewDefaultConfig() *Config {
	return &Config{
		MountOptions: MountOptions{
			FsName: DefaultFsName,
			Name:   DefaultName,
		},
		LogLvl:                      DefaultLogLvl,
		AttrTimeout:                 DefaultAttrTimeout,
		EntryTimeout:                DefaultEntryTimeout,
		MakeIntermediateDirectories: DefaultMakeIntermediateDirectories,
		FileMode:                    DefaultFileMode,
		DirMode:                     DefaultDirMode,
		HTTPTimeout:                 DefaultHTTPTimeout,
	}
}

// NewConfig returns the defaults with override applied. A nil override
// yields the defaults.
func NewConfig(override *ConfigOverride) *Config {
	cfg := NewDefaultConfig()
	if override != nil {
		cfg.Merge(override)
	}
	return cfg
}

// Merge applies non-nil values from override onto this Config.
// This allows partial configuration updates while preserving existing values.
func (c *Config) Merge(override *ConfigOverride) {
	if override.LogLvl != nil {
		c.LogLvl = verbosityToLogLevel(*override.LogLvl)
	}
	if override.Debug != nil {
		c.Debug = *override.Debug
	}
	if override.FsName != nil {
		c.FsName = *override.FsName
	}
	if override.Name != nil {
		c.Name = *override.Name
	}
	if override.AttrTimeout != nil {
		c.AttrTimeout = *override.AttrTimeout
	}
	if override.EntryTimeout != nil {
		c.EntryTimeout = *override.EntryTimeout
	}
	if override.MakeIntermediateDirectories != nil {
		c.MakeIntermediateDirectories = *override.MakeIntermediateDirectories
	}
	if override.FileMode != nil {
		c.FileMode = *override.FileMode
	}
	if override.DirMode != nil {
		c.DirMode = *override.DirMode
	}
	if override.HTTPTimeout != nil {
		c.HTTPTimeout = *override.HTTPTimeout
	}
}

// verbosityToLogLevel maps 1 (errors only) .. 5 (trace) onto util log levels
func verbosityToLogLevel(verbose int) util.LogLevel {
	verbose = max(ErrorVerbose, min(TraceVerbose, verbose))
	return util.ErrorLevel - (verbose - ErrorVerbose)
}

// LoadConfigOverrideFile loads configuration overrides from a file without merging.
// Supports both YAML (.yaml, .yml) and JSON (.json, .jsonc) formats.
// JSON files may contain comments and trailing commas.
func LoadConfigOverrideFile(path string) (*ConfigOverride, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var override ConfigOverride

	// Determine format by file extension
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &override); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config file: %w", err)
		}
	case ".json", ".jsonc":
		if err := json.Unmarshal(jsonc.ToJSON(data), &override); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config file: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown config file extension: %s", path)
	}

	return &override, nil
}

// NewConfigFromFile creates a new Config by merging file overrides with defaults.
func NewConfigFromFile(path string) (*Config, error) {
	override, err := LoadConfigOverrideFile(path)
	if err != nil {
		return nil, err
	}
	return NewConfig(override), nil
}
