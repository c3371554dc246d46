// Package config holds the transkit CLI settings.
//
// Settings come from, in increasing priority: built-in defaults, a
// .transkit.yaml (or .transkit.toml) file in the working directory, and
// TRANSKIT_* environment variables. Command-line flags are applied on top by
// the CLI itself.
package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"

	"github.com/minios-linux/transkit/langmeta"
	"github.com/minios-linux/transkit/model"
	"github.com/minios-linux/transkit/registry"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "TRANSKIT_"

// DefaultMaxInputBytes bounds the size of a file the CLI will read.
const DefaultMaxInputBytes = 16 << 20

// Log levels accepted by LogLevel.
var logLevels = []string{"debug", "info", "warn", "error"}

// Config is the resolved CLI configuration.
type Config struct {
	// SourceLang is the language of source texts (default "en").
	SourceLang string `env:"SOURCE_LANG" yaml:"source_lang" toml:"source_lang"`
	// TargetLang is the language written on export. Empty keeps the
	// language of the input document.
	TargetLang string `env:"TARGET_LANG" yaml:"target_lang" toml:"target_lang"`
	// DefaultFormat is used when a file name does not identify its format.
	// Empty means detect from the file name.
	DefaultFormat string `env:"DEFAULT_FORMAT" yaml:"default_format" toml:"default_format"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `env:"LOG_LEVEL" yaml:"log_level" toml:"log_level"`
	// UILang selects the CLI message language. Empty means auto-detect
	// from LANGUAGE, LC_ALL, LC_MESSAGES and LANG.
	UILang string `env:"UI_LANG" yaml:"ui_lang" toml:"ui_lang"`
	// MaxInputBytes is the largest input file the CLI accepts.
	MaxInputBytes int64 `env:"MAX_INPUT_BYTES" yaml:"max_input_bytes" toml:"max_input_bytes"`

	// Path is the file the settings were read from, if any.
	Path string `env:"-" yaml:"-" toml:"-"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		SourceLang:    model.DefaultLanguage,
		LogLevel:      "info",
		MaxInputBytes: DefaultMaxInputBytes,
	}
}

// Load reads the config file in dir, if any, applies environment overrides
// and validates the result.
func Load(dir string) (*Config, error) {
	return load(dir, env.Options{Prefix: EnvPrefix})
}

func load(dir string, opts env.Options) (*Config, error) {
	cfg := Default()
	if err := cfg.readFile(dir); err != nil {
		return nil, err
	}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("reading %s* environment: %w", EnvPrefix, err)
	}
	if err := cfg.Validate(); err != nil {
		if cfg.Path != "" {
			return nil, fmt.Errorf("%s: %w", cfg.Path, err)
		}
		return nil, err
	}
	return cfg, nil
}

// Validate normalises language codes and checks every field.
func (c *Config) Validate() error {
	if c.SourceLang == "" {
		c.SourceLang = model.DefaultLanguage
	}
	lang, err := langmeta.Normalize(c.SourceLang)
	if err != nil {
		return fmt.Errorf("source_lang: %w", err)
	}
	c.SourceLang = lang

	if c.TargetLang != "" {
		lang, err := langmeta.Normalize(c.TargetLang)
		if err != nil {
			return fmt.Errorf("target_lang: %w", err)
		}
		c.TargetLang = lang
	}

	if c.DefaultFormat != "" {
		f, err := registry.ParseFormatID(c.DefaultFormat)
		if err != nil {
			return fmt.Errorf("default_format: %w", err)
		}
		c.DefaultFormat = string(f)
	}

	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	valid := false
	for _, l := range logLevels {
		if c.LogLevel == l {
			valid = true
		}
	}
	if !valid {
		return fmt.Errorf("log_level %q (valid: %s)", c.LogLevel, strings.Join(logLevels, ", "))
	}

	if c.MaxInputBytes <= 0 {
		return fmt.Errorf("max_input_bytes must be positive, got %d", c.MaxInputBytes)
	}
	return nil
}

// Format returns the configured default format, or "" for detection.
func (c *Config) Format() model.FormatID {
	return model.FormatID(c.DefaultFormat)
}
