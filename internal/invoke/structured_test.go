package invoke

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

// claritySchema mirrors the camelCase convention used by the clarify stage.
type claritySchema struct {
	IsClearEnough *bool `json:"isClearEnough"`
	Confidence    *int  `json:"confidence"`
}

func (s *claritySchema) Validate() error {
	if s.IsClearEnough == nil {
		return fmt.Errorf("missing isClearEnough")
	}
	if s.Confidence == nil {
		return fmt.Errorf("missing confidence")
	}
	return nil
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
		ok   bool
	}{
		{"bare object", `{"a":1}`, `{"a":1}`, true},
		{"fenced", "```json\n{\"a\":1}\n```", `{"a":1}`, true},
		{"prose around array", `Here are the tasks: [1,2] done`, `[1,2]`, true},
		{"no json", "nothing here", "", false},
		{"unterminated", `{"a":1`, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractJSON(tt.text)
			if tt.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tt.ok && err == nil {
				t.Fatal("expected error")
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNormalizeKeysToCamel(t *testing.T) {
	in := `{"is_clear_enough":true,"nested":{"some-key":1},"list":[{"other key":2}]}`
	out, err := NormalizeKeys(in, CamelCase)
	if err != nil {
		t.Fatalf("NormalizeKeys: %v", err)
	}
	for _, want := range []string{`"isClearEnough"`, `"someKey"`, `"otherKey"`} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %s in %s", want, out)
		}
	}
}

func TestNormalizeKeysToSnake(t *testing.T) {
	in := `{"taskType":"code","RequiredCapabilities":["x"]}`
	out, err := NormalizeKeys(in, SnakeCase)
	if err != nil {
		t.Fatalf("NormalizeKeys: %v", err)
	}
	for _, want := range []string{`"task_type"`, `"required_capabilities"`} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %s in %s", want, out)
		}
	}
}

func TestDecodeJSONHappyPath(t *testing.T) {
	var out claritySchema
	text := `Sure! {"isClearEnough": true, "confidence": 90}`
	if err := DecodeJSON(text, CamelCase, &out); err != nil {
		t.Fatalf("DecodeJSON: %v", err)
	}
	if out.Confidence == nil || *out.Confidence != 90 {
		t.Error("confidence not decoded")
	}
}

func TestDecodeJSONKeyCasingRepair(t *testing.T) {
	// Shape is correct but the key convention is snake_case; phase two
	// normalization must recover it.
	var out claritySchema
	text := `{"is_clear_enough": false, "confidence": 40}`
	if err := DecodeJSON(text, CamelCase, &out); err != nil {
		t.Fatalf("expected key-casing repair to recover: %v", err)
	}
	if out.IsClearEnough == nil || *out.IsClearEnough != false {
		t.Error("isClearEnough not recovered")
	}
}

func TestDecodeJSONRepairsBrokenJSON(t *testing.T) {
	// Trailing comma is invalid JSON; the jsonrepair pass should fix it.
	var out claritySchema
	text := `{"isClearEnough": true, "confidence": 75,}`
	if err := DecodeJSON(text, CamelCase, &out); err != nil {
		t.Fatalf("expected jsonrepair to recover: %v", err)
	}
}

func TestDecodeJSONPropagatesOriginalValidationError(t *testing.T) {
	// Normalization cannot invent a missing field; the original
	// validation error must come back, wrapped in a *ParseError.
	var out claritySchema
	text := `{"confidence": 75}`
	err := DecodeJSON(text, CamelCase, &out)
	if err == nil {
		t.Fatal("expected validation failure")
	}

	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("expected *ParseError, got %T", err)
	}
	if !strings.Contains(perr.Err.Error(), "isClearEnough") {
		t.Errorf("expected original validation error, got %v", perr.Err)
	}
}

func TestParseErrorTruncatesFragment(t *testing.T) {
	long := strings.Repeat("x", 500)
	err := DecodeJSON(long, CamelCase, &claritySchema{})

	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("expected *ParseError, got %T", err)
	}
	if len(perr.Fragment) != 200 {
		t.Errorf("expected 200-char fragment, got %d", len(perr.Fragment))
	}
}
