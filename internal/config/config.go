// Package config handles configuration loading for agentos.
// It supports XDG config paths, project-level overrides, and environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/paulcedrick/agentos/internal/invoke"
)

// Config holds all configuration for agentos.
type Config struct {
	Anthropic AnthropicConfig `mapstructure:"anthropic"`
	Stages    StagesConfig    `mapstructure:"stages"`
	Execute   ExecuteConfig   `mapstructure:"execute"`
	Store     StoreConfig     `mapstructure:"store"`
	Roster    RosterConfig    `mapstructure:"roster"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	APIKey        string `mapstructure:"api_key"`
	UseAWSBedrock bool   `mapstructure:"use_aws_bedrock"`
	AWSRegion     string `mapstructure:"aws_region"`
	AWSProfile    string `mapstructure:"aws_profile"`
}

// StageConfig holds model selection and resilience settings for one
// pipeline stage.
type StageConfig struct {
	// Model is the primary model for this stage.
	Model string `mapstructure:"model"`
	// Fallback is tried after the primary exhausts its retries.
	Fallback string `mapstructure:"fallback"`
	// Timeout bounds a single attempt.
	Timeout time.Duration `mapstructure:"timeout"`
	// MaxRetries is the number of additional attempts per model.
	MaxRetries int `mapstructure:"max_retries"`
}

// StagesConfig holds per-stage settings.
type StagesConfig struct {
	Parse     StageConfig `mapstructure:"parse"`
	Clarify   StageConfig `mapstructure:"clarify"`
	Decompose StageConfig `mapstructure:"decompose"`
	Execute   StageConfig `mapstructure:"execute"`
}

// ExecuteConfig holds execute-stage model routing.
type ExecuteConfig struct {
	// DefaultModel is used when no task-type mapping applies.
	DefaultModel string `mapstructure:"default_model"`
	// TaskTypeModels maps task type tags to models.
	TaskTypeModels map[string]string `mapstructure:"task_type_models"`
}

// StoreConfig holds goal-store settings.
type StoreConfig struct {
	// Path is the SQLite database location. Empty means the XDG default.
	Path string `mapstructure:"path"`
	// DropDir is the directory watched for dropped goal files.
	DropDir string `mapstructure:"drop_dir"`
	// PollInterval is the pause between processing cycles.
	PollInterval time.Duration `mapstructure:"poll_interval"`
}

// RosterConfig locates the teams and workers definition.
type RosterConfig struct {
	Path string `mapstructure:"path"`
}

// Default stage models. Dated ids, so they resolve in both the pricing
// table and the Bedrock inference-profile translation.
const (
	defaultFastModel  = "claude-haiku-4-5-20251001"
	defaultSmartModel = "claude-sonnet-4-5-20250929"
)

// Load loads configuration from XDG paths, project overrides, and environment variables.
// Precedence (highest to lowest):
// 1. Environment variables (ANTHROPIC_API_KEY)
// 2. Project config (.agentos.yaml in current directory or parent)
// 3. User config (~/.config/agentos/config.yaml)
// 4. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	userConfigDir := getUserConfigDir()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(userConfigDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading user config: %w", err)
		}
	}

	// Project config takes precedence over the user config.
	projectConfig := findProjectConfig()
	if projectConfig != "" {
		projectViper := viper.New()
		projectViper.SetConfigFile(projectConfig)
		if err := projectViper.ReadInConfig(); err == nil {
			if err := v.MergeConfigMap(projectViper.AllSettings()); err != nil {
				return nil, fmt.Errorf("merging project config: %w", err)
			}
		}
	}

	v.AutomaticEnv()
	v.BindEnv("anthropic.api_key", "ANTHROPIC_API_KEY")
	v.BindEnv("anthropic.use_aws_bedrock", "AGENTOS_USE_BEDROCK")
	v.BindEnv("anthropic.aws_region", "AWS_REGION")

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.Anthropic.APIKey = expandEnv(cfg.Anthropic.APIKey)
	return cfg, nil
}

// LoadFromPath loads configuration from a specific path (for testing).
func LoadFromPath(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.Anthropic.APIKey = expandEnv(cfg.Anthropic.APIKey)
	return cfg, nil
}

// Save writes the current configuration to the user config file.
func Save(cfg *Config) error {
	userConfigDir := getUserConfigDir()
	if err := os.MkdirAll(userConfigDir, 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	configPath := filepath.Join(userConfigDir, "config.yaml")

	v := viper.New()
	v.SetConfigFile(configPath)

	v.Set("anthropic.api_key", cfg.Anthropic.APIKey)
	v.Set("anthropic.use_aws_bedrock", cfg.Anthropic.UseAWSBedrock)
	v.Set("anthropic.aws_region", cfg.Anthropic.AWSRegion)
	v.Set("anthropic.aws_profile", cfg.Anthropic.AWSProfile)

	for name, sc := range map[string]StageConfig{
		"parse":     cfg.Stages.Parse,
		"clarify":   cfg.Stages.Clarify,
		"decompose": cfg.Stages.Decompose,
		"execute":   cfg.Stages.Execute,
	} {
		v.Set("stages."+name+".model", sc.Model)
		v.Set("stages."+name+".fallback", sc.Fallback)
		v.Set("stages."+name+".timeout", sc.Timeout.String())
		v.Set("stages."+name+".max_retries", sc.MaxRetries)
	}

	v.Set("execute.default_model", cfg.Execute.DefaultModel)
	v.Set("execute.task_type_models", cfg.Execute.TaskTypeModels)
	v.Set("store.path", cfg.Store.Path)
	v.Set("store.drop_dir", cfg.Store.DropDir)
	v.Set("store.poll_interval", cfg.Store.PollInterval.String())
	v.Set("roster.path", cfg.Roster.Path)

	return v.WriteConfig()
}

// GetUserConfigPath returns the path to the user config file.
func GetUserConfigPath() string {
	return filepath.Join(getUserConfigDir(), "config.yaml")
}

// GetProjectConfigPath returns the path to the project config file if it exists.
func GetProjectConfigPath() string {
	return findProjectConfig()
}

// StageConfigs converts the per-stage settings into the invoker's shape.
func (c *Config) StageConfigs() map[invoke.Stage]invoke.StageConfig {
	return map[invoke.Stage]invoke.StageConfig{
		invoke.StageParse:     stageConfig(c.Stages.Parse),
		invoke.StageClarify:   stageConfig(c.Stages.Clarify),
		invoke.StageDecompose: stageConfig(c.Stages.Decompose),
		invoke.StageExecute:   stageConfig(c.Stages.Execute),
	}
}

// ExecuteInvokeConfig converts the execute-stage routing into the
// invoker's shape.
func (c *Config) ExecuteInvokeConfig() invoke.ExecuteConfig {
	return invoke.ExecuteConfig{
		StageConfig:    stageConfig(c.Stages.Execute),
		DefaultModel:   c.Execute.DefaultModel,
		TaskTypeModels: c.Execute.TaskTypeModels,
	}
}

func stageConfig(sc StageConfig) invoke.StageConfig {
	return invoke.StageConfig{
		Primary:    sc.Model,
		Fallback:   sc.Fallback,
		Timeout:    sc.Timeout,
		MaxRetries: sc.MaxRetries,
	}
}

// StorePath returns the configured database path or the XDG default.
func (c *Config) StorePath(defaultPath string) string {
	if c.Store.Path != "" {
		return c.Store.Path
	}
	return defaultPath
}

// setDefaults configures default values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("anthropic.api_key", "")
	v.SetDefault("anthropic.use_aws_bedrock", false)
	v.SetDefault("anthropic.aws_region", "us-east-1")

	v.SetDefault("stages.parse.model", defaultFastModel)
	v.SetDefault("stages.parse.timeout", "1m")
	v.SetDefault("stages.parse.max_retries", 1)

	v.SetDefault("stages.clarify.model", defaultFastModel)
	v.SetDefault("stages.clarify.timeout", "1m")
	v.SetDefault("stages.clarify.max_retries", 1)

	v.SetDefault("stages.decompose.model", defaultSmartModel)
	v.SetDefault("stages.decompose.fallback", defaultFastModel)
	v.SetDefault("stages.decompose.timeout", "2m")
	v.SetDefault("stages.decompose.max_retries", 1)

	v.SetDefault("stages.execute.model", defaultSmartModel)
	v.SetDefault("stages.execute.fallback", defaultFastModel)
	v.SetDefault("stages.execute.timeout", "5m")
	v.SetDefault("stages.execute.max_retries", 2)

	v.SetDefault("execute.default_model", defaultSmartModel)

	v.SetDefault("store.path", "")
	v.SetDefault("store.drop_dir", "goals")
	v.SetDefault("store.poll_interval", "30s")

	v.SetDefault("roster.path", "teams.yaml")
}

// getUserConfigDir returns the XDG config directory for agentos.
func getUserConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "agentos")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", "agentos")
	}
	return filepath.Join(home, ".config", "agentos")
}

// findProjectConfig searches for .agentos.yaml in the current directory and parents.
func findProjectConfig() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		configPath := filepath.Join(cwd, ".agentos.yaml")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(cwd)
		if parent == cwd {
			break
		}
		cwd = parent
	}

	return ""
}

// expandEnv expands ${VAR} references in a string.
func expandEnv(s string) string {
	return os.ExpandEnv(s)
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Anthropic: AnthropicConfig{
			AWSRegion: "us-east-1",
		},
		Stages: StagesConfig{
			Parse:     StageConfig{Model: defaultFastModel, Timeout: time.Minute, MaxRetries: 1},
			Clarify:   StageConfig{Model: defaultFastModel, Timeout: time.Minute, MaxRetries: 1},
			Decompose: StageConfig{Model: defaultSmartModel, Fallback: defaultFastModel, Timeout: 2 * time.Minute, MaxRetries: 1},
			Execute:   StageConfig{Model: defaultSmartModel, Fallback: defaultFastModel, Timeout: 5 * time.Minute, MaxRetries: 2},
		},
		Execute: ExecuteConfig{
			DefaultModel: defaultSmartModel,
		},
		Store: StoreConfig{
			DropDir:      "goals",
			PollInterval: 30 * time.Second,
		},
		Roster: RosterConfig{
			Path: "teams.yaml",
		},
	}
}
