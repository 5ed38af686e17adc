package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/paulcedrick/agentos/internal/invoke"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Stages.Parse.Model != "claude-haiku-4-5-20251001" {
		t.Errorf("expected parse model 'claude-haiku-4-5-20251001', got %q", cfg.Stages.Parse.Model)
	}

	if cfg.Stages.Execute.Model != "claude-sonnet-4-5-20250929" {
		t.Errorf("expected execute model 'claude-sonnet-4-5-20250929', got %q", cfg.Stages.Execute.Model)
	}

	if cfg.Stages.Execute.Fallback != "claude-haiku-4-5-20251001" {
		t.Errorf("expected execute fallback 'claude-haiku-4-5-20251001', got %q", cfg.Stages.Execute.Fallback)
	}

	if cfg.Stages.Execute.Timeout != 5*time.Minute {
		t.Errorf("expected execute timeout 5m, got %v", cfg.Stages.Execute.Timeout)
	}

	if cfg.Store.PollInterval != 30*time.Second {
		t.Errorf("expected poll interval 30s, got %v", cfg.Store.PollInterval)
	}

	if cfg.Store.DropDir != "goals" {
		t.Errorf("expected drop dir 'goals', got %q", cfg.Store.DropDir)
	}

	if cfg.Roster.Path != "teams.yaml" {
		t.Errorf("expected roster path 'teams.yaml', got %q", cfg.Roster.Path)
	}
}

// Every default model must resolve in the pricing table, otherwise
// default installs log every call as unpriced and ledger $0.
func TestDefaultModelsArePriced(t *testing.T) {
	cfg := Default()
	pricing := invoke.DefaultPricing()

	models := map[string]string{
		"parse model":        cfg.Stages.Parse.Model,
		"clarify model":      cfg.Stages.Clarify.Model,
		"decompose model":    cfg.Stages.Decompose.Model,
		"decompose fallback": cfg.Stages.Decompose.Fallback,
		"execute model":      cfg.Stages.Execute.Model,
		"execute fallback":   cfg.Stages.Execute.Fallback,
		"execute default":    cfg.Execute.DefaultModel,
	}
	for name, model := range models {
		if model == "" {
			continue
		}
		if _, ok := pricing[model]; !ok {
			t.Errorf("%s %q has no pricing entry", name, model)
		}
	}
}

func TestLoadFromPath(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
anthropic:
  api_key: test-key
  use_aws_bedrock: true
  aws_region: eu-west-1
stages:
  parse:
    model: claude-haiku-4-5-20251001
    timeout: 30s
  execute:
    model: claude-opus-4-5-20251101
    fallback: claude-sonnet-4-5-20250929
    timeout: 10m
    max_retries: 3
execute:
  default_model: claude-opus-4-5-20251101
  task_type_models:
    research: claude-haiku-4-5-20251001
store:
  drop_dir: /var/agentos/goals
  poll_interval: 5s
roster:
  path: /etc/agentos/teams.yaml
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := LoadFromPath(configPath)
	if err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}

	if cfg.Anthropic.APIKey != "test-key" {
		t.Errorf("expected api_key 'test-key', got %q", cfg.Anthropic.APIKey)
	}
	if !cfg.Anthropic.UseAWSBedrock {
		t.Error("expected use_aws_bedrock to be true")
	}
	if cfg.Anthropic.AWSRegion != "eu-west-1" {
		t.Errorf("expected aws_region 'eu-west-1', got %q", cfg.Anthropic.AWSRegion)
	}

	if cfg.Stages.Parse.Timeout != 30*time.Second {
		t.Errorf("expected parse timeout 30s, got %v", cfg.Stages.Parse.Timeout)
	}
	if cfg.Stages.Execute.Model != "claude-opus-4-5-20251101" {
		t.Errorf("expected execute model 'claude-opus-4-5-20251101', got %q", cfg.Stages.Execute.Model)
	}
	if cfg.Stages.Execute.MaxRetries != 3 {
		t.Errorf("expected execute max_retries 3, got %d", cfg.Stages.Execute.MaxRetries)
	}

	// Defaults survive for settings the file does not mention.
	if cfg.Stages.Clarify.Model != "claude-haiku-4-5-20251001" {
		t.Errorf("expected clarify model default, got %q", cfg.Stages.Clarify.Model)
	}

	if cfg.Execute.TaskTypeModels["research"] != "claude-haiku-4-5-20251001" {
		t.Errorf("task_type_models = %v", cfg.Execute.TaskTypeModels)
	}
	if cfg.Store.DropDir != "/var/agentos/goals" {
		t.Errorf("expected drop dir override, got %q", cfg.Store.DropDir)
	}
	if cfg.Store.PollInterval != 5*time.Second {
		t.Errorf("expected poll interval 5s, got %v", cfg.Store.PollInterval)
	}
	if cfg.Roster.Path != "/etc/agentos/teams.yaml" {
		t.Errorf("expected roster path override, got %q", cfg.Roster.Path)
	}
}

func TestLoadBedrockEnvOverride(t *testing.T) {
	// Point the user config at an empty directory so only defaults and
	// the environment apply.
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("AGENTOS_USE_BEDROCK", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.Anthropic.UseAWSBedrock {
		t.Error("AGENTOS_USE_BEDROCK=true did not enable bedrock")
	}
}

func TestStageConfigsConversion(t *testing.T) {
	cfg := Default()
	cfg.Execute.TaskTypeModels = map[string]string{"research": "claude-haiku-4-5-20251001"}

	stages := cfg.StageConfigs()
	if len(stages) != 4 {
		t.Fatalf("expected 4 stage configs, got %d", len(stages))
	}

	parse := stages[invoke.StageParse]
	if parse.Primary != cfg.Stages.Parse.Model {
		t.Errorf("parse primary = %q, want %q", parse.Primary, cfg.Stages.Parse.Model)
	}

	exec := cfg.ExecuteInvokeConfig()
	if exec.DefaultModel != "claude-sonnet-4-5-20250929" {
		t.Errorf("execute default model = %q", exec.DefaultModel)
	}
	if exec.TaskTypeModels["research"] != "claude-haiku-4-5-20251001" {
		t.Errorf("TaskTypeModels = %v", exec.TaskTypeModels)
	}
	if exec.Primary != cfg.Stages.Execute.Model {
		t.Errorf("execute primary = %q", exec.Primary)
	}
}

func TestStorePath(t *testing.T) {
	cfg := Default()
	if got := cfg.StorePath("/default/db"); got != "/default/db" {
		t.Errorf("StorePath fallback = %q", got)
	}
	cfg.Store.Path = "/custom/db"
	if got := cfg.StorePath("/default/db"); got != "/custom/db" {
		t.Errorf("StorePath override = %q", got)
	}
}

func TestExpandEnv(t *testing.T) {
	os.Setenv("TEST_VAR", "expanded-value")
	defer os.Unsetenv("TEST_VAR")

	result := expandEnv("${TEST_VAR}")
	if result != "expanded-value" {
		t.Errorf("expected 'expanded-value', got %q", result)
	}

	result = expandEnv("prefix-${TEST_VAR}-suffix")
	if result != "prefix-expanded-value-suffix" {
		t.Errorf("expected 'prefix-expanded-value-suffix', got %q", result)
	}
}

func TestGetUserConfigDir(t *testing.T) {
	os.Setenv("XDG_CONFIG_HOME", "/custom/config")
	defer os.Unsetenv("XDG_CONFIG_HOME")

	dir := getUserConfigDir()
	expected := "/custom/config/agentos"
	if dir != expected {
		t.Errorf("expected %q, got %q", expected, dir)
	}
}
