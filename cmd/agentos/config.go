package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/paulcedrick/agentos/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "Manage configuration",
	Long: `View or modify agentos configuration.

Without arguments, displays current configuration.
With one argument (key), displays the value for that key.
With two arguments (key value), sets the configuration value.

Configuration is stored at ~/.config/agentos/config.yaml
Project-specific overrides can be placed in .agentos.yaml`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}

		switch len(args) {
		case 0:
			displayAllConfig(cfg)
		case 1:
			displayConfigKey(cfg, args[0])
		default:
			setConfigKey(cfg, args[0], args[1])
		}
	},
}

// displayAllConfig prints all configuration values.
func displayAllConfig(cfg *config.Config) {
	fmt.Printf("anthropic.api_key: %s (%s)\n",
		config.MaskAPIKey(cfg.Anthropic.APIKey), config.GetAPIKeySource(cfg))
	fmt.Printf("anthropic.use_aws_bedrock: %t\n", cfg.Anthropic.UseAWSBedrock)
	fmt.Printf("anthropic.aws_region: %s\n", cfg.Anthropic.AWSRegion)

	for name, sc := range stageEntries(cfg) {
		fmt.Printf("stages.%s.model: %s\n", name, sc.Model)
		fmt.Printf("stages.%s.fallback: %s\n", name, sc.Fallback)
		fmt.Printf("stages.%s.timeout: %s\n", name, sc.Timeout)
		fmt.Printf("stages.%s.max_retries: %d\n", name, sc.MaxRetries)
	}

	fmt.Printf("execute.default_model: %s\n", cfg.Execute.DefaultModel)
	for taskType, model := range cfg.Execute.TaskTypeModels {
		fmt.Printf("execute.task_type_models.%s: %s\n", taskType, model)
	}
	fmt.Printf("store.path: %s\n", cfg.Store.Path)
	fmt.Printf("store.drop_dir: %s\n", cfg.Store.DropDir)
	fmt.Printf("store.poll_interval: %s\n", cfg.Store.PollInterval)
	fmt.Printf("roster.path: %s\n", cfg.Roster.Path)
}

// displayConfigKey prints a single configuration value.
func displayConfigKey(cfg *config.Config, key string) {
	value, err := getConfigValue(cfg, key)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(value)
}

// setConfigKey sets a configuration value and saves the config.
func setConfigKey(cfg *config.Config, key, value string) {
	if err := setConfigValue(cfg, key, value); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := config.Save(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving config: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Set %s = %s\n", key, value)
}

func stageEntries(cfg *config.Config) map[string]*config.StageConfig {
	return map[string]*config.StageConfig{
		"parse":     &cfg.Stages.Parse,
		"clarify":   &cfg.Stages.Clarify,
		"decompose": &cfg.Stages.Decompose,
		"execute":   &cfg.Stages.Execute,
	}
}

// getConfigValue retrieves a configuration value by dot-notation key.
func getConfigValue(cfg *config.Config, key string) (string, error) {
	switch strings.ToLower(key) {
	case "anthropic.api_key":
		return config.MaskAPIKey(cfg.Anthropic.APIKey), nil
	case "anthropic.use_aws_bedrock":
		return strconv.FormatBool(cfg.Anthropic.UseAWSBedrock), nil
	case "anthropic.aws_region":
		return cfg.Anthropic.AWSRegion, nil
	case "execute.default_model":
		return cfg.Execute.DefaultModel, nil
	case "store.path":
		return cfg.Store.Path, nil
	case "store.drop_dir":
		return cfg.Store.DropDir, nil
	case "store.poll_interval":
		return cfg.Store.PollInterval.String(), nil
	case "roster.path":
		return cfg.Roster.Path, nil
	}

	if sc, field, ok := stageField(cfg, key); ok {
		switch field {
		case "model":
			return sc.Model, nil
		case "fallback":
			return sc.Fallback, nil
		case "timeout":
			return sc.Timeout.String(), nil
		case "max_retries":
			return strconv.Itoa(sc.MaxRetries), nil
		}
	}
	return "", fmt.Errorf("unknown configuration key: %s", key)
}

// setConfigValue sets a configuration value by dot-notation key.
func setConfigValue(cfg *config.Config, key, value string) error {
	switch strings.ToLower(key) {
	case "anthropic.api_key":
		if err := config.ValidateAPIKey(value); err != nil {
			return err
		}
		cfg.Anthropic.APIKey = value
		return nil
	case "anthropic.use_aws_bedrock":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean for use_aws_bedrock: %w", err)
		}
		cfg.Anthropic.UseAWSBedrock = b
		return nil
	case "anthropic.aws_region":
		cfg.Anthropic.AWSRegion = value
		return nil
	case "execute.default_model":
		cfg.Execute.DefaultModel = value
		return nil
	case "store.path":
		cfg.Store.Path = value
		return nil
	case "store.drop_dir":
		cfg.Store.DropDir = value
		return nil
	case "store.poll_interval":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration for poll_interval: %w", err)
		}
		cfg.Store.PollInterval = d
		return nil
	case "roster.path":
		cfg.Roster.Path = value
		return nil
	}

	if sc, field, ok := stageField(cfg, key); ok {
		switch field {
		case "model":
			sc.Model = value
			return nil
		case "fallback":
			sc.Fallback = value
			return nil
		case "timeout":
			d, err := time.ParseDuration(value)
			if err != nil {
				return fmt.Errorf("invalid duration for %s: %w", key, err)
			}
			sc.Timeout = d
			return nil
		case "max_retries":
			n, err := strconv.Atoi(value)
			if err != nil {
				return fmt.Errorf("invalid value for %s: %w", key, err)
			}
			sc.MaxRetries = n
			return nil
		}
	}
	return fmt.Errorf("unknown configuration key: %s", key)
}

// stageField resolves keys like "stages.execute.timeout".
func stageField(cfg *config.Config, key string) (*config.StageConfig, string, bool) {
	parts := strings.Split(strings.ToLower(key), ".")
	if len(parts) != 3 || parts[0] != "stages" {
		return nil, "", false
	}
	sc, ok := stageEntries(cfg)[parts[1]]
	if !ok {
		return nil, "", false
	}
	return sc, parts[2], true
}
