package llm

import (
	"os"
	"strings"
	"testing"
)

func TestNewClient_RequiresAPIKey(t *testing.T) {
	original := os.Getenv("ANTHROPIC_API_KEY")
	defer os.Setenv("ANTHROPIC_API_KEY", original)
	os.Unsetenv("ANTHROPIC_API_KEY")

	_, err := NewClient(ClientConfig{})
	if err == nil {
		t.Fatal("expected error without an API key")
	}
}

func TestTranslateModel(t *testing.T) {
	direct := &Client{bedrock: false}
	if got := direct.TranslateModel("claude-sonnet-4-5-20250929"); got != "claude-sonnet-4-5-20250929" {
		t.Errorf("direct client must not translate, got %q", got)
	}

	br := &Client{bedrock: true}
	got := br.TranslateModel("claude-sonnet-4-5-20250929")
	if !strings.HasPrefix(got, "us.anthropic.") {
		t.Errorf("bedrock client should translate to inference profile, got %q", got)
	}

	// Already-translated names pass through.
	already := "us.anthropic.claude-sonnet-4-5-20250929-v1:0"
	if got := br.TranslateModel(already); got != already {
		t.Errorf("translated name changed: %q", got)
	}

	// Unknown models pass through untouched.
	if got := br.TranslateModel("custom-model"); got != "custom-model" {
		t.Errorf("unknown model changed: %q", got)
	}
}
