// Package config loads runtime settings from defaults, an optional YAML file,
// a .env file, TASKFEATURES_* environment variables and command line flags,
// in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable read by Load
const EnvPrefix = "TASKFEATURES"

// Config is the full runtime configuration
type Config struct {
	DatabaseURL   string         `mapstructure:"database_url"`
	SnapshotPath  string         `mapstructure:"snapshot_path"`
	Organizations []string       `mapstructure:"organizations" validate:"dive,required"`
	Output        OutputConfig   `mapstructure:"output"`
	HTTP          HTTPConfig     `mapstructure:"http"`
	Metrics       MetricsConfig  `mapstructure:"metrics"`
	Temporal      TemporalConfig `mapstructure:"temporal"`
	OpenAI        OpenAIConfig   `mapstructure:"openai"`
	Classify      ClassifyConfig `mapstructure:"classify"`
	Log           LogConfig      `mapstructure:"log"`
}

// OutputConfig controls where exports are written
type OutputConfig struct {
	// Path of the export file, "-" for stdout
	Path   string `mapstructure:"path" validate:"required"`
	Format string `mapstructure:"format" validate:"oneof=json jsonl"`
}

// HTTPConfig configures the REST listener
type HTTPConfig struct {
	Addr string `mapstructure:"addr" validate:"required"`
}

// MetricsConfig toggles the Prometheus endpoint
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// TemporalConfig locates the Temporal frontend
type TemporalConfig struct {
	Address   string `mapstructure:"address" validate:"required"`
	Namespace string `mapstructure:"namespace" validate:"required"`
	TaskQueue string `mapstructure:"task_queue" validate:"required"`
}

// OpenAIConfig configures the classifier model
type OpenAIConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

// ClassifyConfig toggles task classification
type ClassifyConfig struct {
	Enabled  bool `mapstructure:"enabled"`
	CodeOnly bool `mapstructure:"code_only"`
}

// LogConfig configures the zap logger
type LogConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=json console"`
}

// Options selects the sources Load reads on top of defaults and the environment
type Options struct {
	// ConfigFile is an optional YAML file; empty skips it
	ConfigFile string
	// EnvFile is loaded into the process environment when it exists
	EnvFile string
	// Flags maps config keys to command line flags overriding them
	Flags map[string]*pflag.Flag
}

var defaults = map[string]any{
	"database_url":        "",
	"snapshot_path":       "",
	"organizations":       []string{},
	"output.path":         "-",
	"output.format":       "json",
	"http.addr":           ":8080",
	"metrics.enabled":     true,
	"temporal.address":    "localhost:7233",
	"temporal.namespace":  "default",
	"temporal.task_queue": "feature-extraction",
	"openai.api_key":      "",
	"openai.model":        "",
	"classify.enabled":    false,
	"classify.code_only":  false,
	"log.level":           "info",
	"log.format":          "json",
}

// Load reads and validates the configuration
func Load(opts Options) (*Config, error) {
	if opts.EnvFile != "" {
		if err := godotenv.Load(opts.EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read env file: %w", err)
		}
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, flag := range opts.Flags {
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return nil, fmt.Errorf("failed to bind flag %s: %w", flag.Name, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks struct constraints and the rules spanning sections
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.Classify.Enabled && c.OpenAI.APIKey == "" {
		return errors.New("invalid config: openai.api_key is required when classify.enabled is set")
	}
	return nil
}

// StoreConfigured reports whether a task source is set
func (c *Config) StoreConfigured() bool {
	return c.DatabaseURL != "" || c.SnapshotPath != ""
}
