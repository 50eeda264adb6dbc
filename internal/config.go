package internal

import (
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Converter modes.
const (
	ConverterNative   = "native"
	ConverterJupytext = "jupytext"
)

// Config represents the application configuration.
type Config struct {
	App       ApplicationConfig `yaml:"app"`
	Kaggle    KaggleConfig      `yaml:"kaggle"`
	Formatter FormatterConfig   `yaml:"formatter"`
	Converter ConverterConfig   `yaml:"converter"`
	Staging   StagingConfig     `yaml:"staging"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.Kaggle.Validate(); err != nil {
		return fmt.Errorf("kaggle: %w", err)
	}
	if err := c.Formatter.Validate(); err != nil {
		return fmt.Errorf("formatter: %w", err)
	}
	if err := c.Converter.Validate(); err != nil {
		return fmt.Errorf("converter: %w", err)
	}
	return nil
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
}

// KaggleConfig holds the kaggle CLI invocation.
type KaggleConfig struct {
	Command string `yaml:"command"`
}

// Validate validates the kaggle configuration.
func (c *KaggleConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Command, validation.Required),
	)
}

// FormatterConfig holds the code formatter invocation. Args come before any
// arguments passed through on the command line.
type FormatterConfig struct {
	Command string   `yaml:"command"`
	Args    []string `yaml:"args"`
}

// Validate validates the formatter configuration.
func (c *FormatterConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Command, validation.Required),
	)
}

// ConverterConfig selects how notebooks are turned into scripts and back.
//
// Mode is one of:
//   - "native" (default): built-in percent-format converter.
//   - "jupytext": the jupytext CLI named by Command.
type ConverterConfig struct {
	Mode    string `yaml:"mode"`
	Command string `yaml:"command"`
}

// Validate validates the converter configuration.
func (c *ConverterConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = ConverterNative
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(ConverterNative, ConverterJupytext)),
	); err != nil {
		return err
	}
	if c.Mode == ConverterJupytext && c.Command == "" {
		return fmt.Errorf("mode is %q but command is empty", ConverterJupytext)
	}
	return nil
}

// StagingConfig holds where temporary staging directories are created.
// An empty Dir means the system temp directory.
type StagingConfig struct {
	Dir string `yaml:"dir"`
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
		},
		Kaggle: KaggleConfig{
			Command: "kaggle",
		},
		Formatter: FormatterConfig{
			Command: "black",
		},
		Converter: ConverterConfig{
			Mode:    ConverterNative,
			Command: "jupytext",
		},
	}
}
